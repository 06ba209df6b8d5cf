package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/anxun-security/guard-roster/backend/internal/domain"
)

// ValidateShiftTemplate 校验模板自身的业务约束，字段格式的校验在 handler 层已经做过
func ValidateShiftTemplate(tpl *domain.ShiftTemplate) error {
	startTime, err := time.Parse("15:04:05", tpl.StartTime)
	if err != nil {
		return errors.New("开始时间格式错误，应为 15:04:05")
	}
	endTime, err := time.Parse("15:04:05", tpl.EndTime)
	if err != nil {
		return errors.New("结束时间格式错误，应为 15:04:05")
	}
	// 结束时间早于等于开始时间表示跨天班次，这是允许的，
	// 但两个时间不能完全相同，否则班次时长为 0 或 24 小时，没有意义
	if startTime.Equal(endTime) {
		return errors.New("开始时间和结束时间不能相同")
	}

	switch tpl.RepeatType {
	case domain.RepeatWeekly:
		if len(tpl.Weekdays) == 0 {
			return errors.New("按星期重复的模板必须指定至少一个星期")
		}
		seen := make(map[int32]bool)
		for _, weekday := range tpl.Weekdays {
			if weekday < 1 || weekday > 7 {
				return fmt.Errorf("星期 %d 无效，应为 1 到 7", weekday)
			}
			if seen[weekday] {
				return fmt.Errorf("星期 %d 重复", weekday)
			}
			seen[weekday] = true
		}
	case domain.RepeatFixedDates:
		if len(tpl.FixedDates) == 0 {
			return errors.New("指定日期的模板必须指定至少一个日期")
		}
	default:
		return fmt.Errorf("重复类型 %s 无效", tpl.RepeatType)
	}

	if tpl.EffectiveTo != nil && tpl.EffectiveTo.Before(tpl.EffectiveFrom) {
		return errors.New("生效结束日期不能早于生效开始日期")
	}

	if tpl.MinGuards < 1 {
		return errors.New("最少保安人数不能小于 1")
	}
	if tpl.MaxGuards < tpl.MinGuards {
		return errors.New("最多保安人数不能小于最少保安人数")
	}

	return nil
}
