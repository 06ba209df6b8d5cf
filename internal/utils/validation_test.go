package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/anxun-security/guard-roster/backend/internal/domain"
)

func validWeeklyTemplate() *domain.ShiftTemplate {
	return &domain.ShiftTemplate{
		Name:          "白班",
		RepeatType:    domain.RepeatWeekly,
		Weekdays:      []int32{1, 3, 5},
		StartTime:     "08:00:00",
		EndTime:       "16:00:00",
		EffectiveFrom: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		MinGuards:     1,
		MaxGuards:     2,
	}
}

func TestValidateShiftTemplate(t *testing.T) {
	t.Run("合法的周重复模板", func(t *testing.T) {
		require.NoError(t, ValidateShiftTemplate(validWeeklyTemplate()))
	})

	t.Run("跨天班次是允许的", func(t *testing.T) {
		tpl := validWeeklyTemplate()
		tpl.StartTime = "22:00:00"
		tpl.EndTime = "06:00:00"
		require.NoError(t, ValidateShiftTemplate(tpl))
	})

	t.Run("开始时间和结束时间不能相同", func(t *testing.T) {
		tpl := validWeeklyTemplate()
		tpl.EndTime = tpl.StartTime
		require.Error(t, ValidateShiftTemplate(tpl))
	})

	t.Run("时间格式错误", func(t *testing.T) {
		tpl := validWeeklyTemplate()
		tpl.StartTime = "8:00"
		require.Error(t, ValidateShiftTemplate(tpl))
	})

	t.Run("周重复模板必须指定星期", func(t *testing.T) {
		tpl := validWeeklyTemplate()
		tpl.Weekdays = nil
		require.Error(t, ValidateShiftTemplate(tpl))
	})

	t.Run("星期超出范围", func(t *testing.T) {
		tpl := validWeeklyTemplate()
		tpl.Weekdays = []int32{0, 1}
		require.Error(t, ValidateShiftTemplate(tpl))

		tpl.Weekdays = []int32{7, 8}
		require.Error(t, ValidateShiftTemplate(tpl))
	})

	t.Run("星期重复", func(t *testing.T) {
		tpl := validWeeklyTemplate()
		tpl.Weekdays = []int32{1, 1}
		require.Error(t, ValidateShiftTemplate(tpl))
	})

	t.Run("指定日期模板必须指定日期", func(t *testing.T) {
		tpl := validWeeklyTemplate()
		tpl.RepeatType = domain.RepeatFixedDates
		tpl.Weekdays = nil
		require.Error(t, ValidateShiftTemplate(tpl))

		tpl.FixedDates = []time.Time{time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)}
		require.NoError(t, ValidateShiftTemplate(tpl))
	})

	t.Run("生效结束日期不能早于生效开始日期", func(t *testing.T) {
		tpl := validWeeklyTemplate()
		effectiveTo := tpl.EffectiveFrom.AddDate(0, 0, -1)
		tpl.EffectiveTo = &effectiveTo
		require.Error(t, ValidateShiftTemplate(tpl))
	})

	t.Run("人数约束", func(t *testing.T) {
		tpl := validWeeklyTemplate()
		tpl.MinGuards = 0
		require.Error(t, ValidateShiftTemplate(tpl))

		tpl.MinGuards = 3
		tpl.MaxGuards = 2
		require.Error(t, ValidateShiftTemplate(tpl))
	})
}
