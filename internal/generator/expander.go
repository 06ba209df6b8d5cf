package generator

import (
	"time"

	"github.com/anxun-security/guard-roster/backend/internal/domain"
)

// Expand 计算模板在 [from, to) 内的所有触发日期，结果按日期升序。
// from 和 to 必须是业务时区的零点时刻；模板的有效期窗口与请求范围取交集，
// 交集为空、重复规则为空或者重复类型无法识别时返回空结果，这不是错误。
// 是否启用、是否已删除由调用方过滤，这里只负责展开规则。
func Expand(tpl *domain.ShiftTemplate, from, to time.Time) []time.Time {
	loc := from.Location()

	lo := from
	if eff := civilDate(tpl.EffectiveFrom, loc); eff.After(lo) {
		lo = eff
	}

	hi := to
	if tpl.EffectiveTo != nil {
		// 有效期的结束日期是闭区间，换算成开区间再取交集
		if end := civilDate(*tpl.EffectiveTo, loc).AddDate(0, 0, 1); end.Before(hi) {
			hi = end
		}
	}

	if !lo.Before(hi) {
		return nil
	}

	dates := make([]time.Time, 0)

	switch tpl.RepeatType {
	case domain.RepeatFixedDates:
		fixed := make(map[string]struct{}, len(tpl.FixedDates))
		for _, d := range tpl.FixedDates {
			fixed[dateKey(d)] = struct{}{}
		}
		for d := lo; d.Before(hi); d = d.AddDate(0, 0, 1) {
			if _, ok := fixed[dateKey(d)]; ok {
				dates = append(dates, d)
			}
		}
	case domain.RepeatWeekly:
		pattern := make(map[int32]struct{}, len(tpl.Weekdays))
		for _, wd := range tpl.Weekdays {
			pattern[wd] = struct{}{}
		}
		for d := lo; d.Before(hi); d = d.AddDate(0, 0, 1) {
			if _, ok := pattern[isoWeekday(d)]; ok {
				dates = append(dates, d)
			}
		}
	}

	return dates
}

// isoWeekday 将 time.Weekday 换算成 1-7（周一为 1），和模板的 Weekdays 约定一致
func isoWeekday(t time.Time) int32 {
	wd := int32(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// civilDate 取 t 的年月日，在 loc 时区重建当天零点。
// 数据库返回的日期列时区不一定和业务时区一致，比较前必须先归一化。
func civilDate(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func dateKey(t time.Time) string {
	return t.Format(time.DateOnly)
}
