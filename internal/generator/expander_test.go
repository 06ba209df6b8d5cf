package generator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/anxun-security/guard-roster/backend/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExpand(t *testing.T) {
	t.Run("按星期展开并与有效期取交集", func(t *testing.T) {
		effectiveTo := date(2025, 1, 20)
		tpl := &domain.ShiftTemplate{
			RepeatType:    domain.RepeatWeekly,
			Weekdays:      []int32{1, 3}, // 周一和周三
			EffectiveFrom: date(2025, 1, 10),
			EffectiveTo:   &effectiveTo,
		}

		// 请求范围比有效期更宽，展开结果只能落在交集内
		got := Expand(tpl, date(2025, 1, 1), date(2025, 2, 1))

		want := []time.Time{
			date(2025, 1, 13), // 周一
			date(2025, 1, 15), // 周三
			date(2025, 1, 20), // 周一，有效期最后一天是闭区间
		}
		require.Equal(t, want, got)
	})

	t.Run("请求范围的右端点是开区间", func(t *testing.T) {
		tpl := &domain.ShiftTemplate{
			RepeatType:    domain.RepeatWeekly,
			Weekdays:      []int32{1, 2, 3, 4, 5, 6, 7},
			EffectiveFrom: date(2025, 1, 1),
		}

		got := Expand(tpl, date(2025, 1, 13), date(2025, 1, 15))

		require.Equal(t, []time.Time{date(2025, 1, 13), date(2025, 1, 14)}, got)
	})

	t.Run("指定日期展开", func(t *testing.T) {
		tpl := &domain.ShiftTemplate{
			RepeatType:    domain.RepeatFixedDates,
			FixedDates:    []time.Time{date(2025, 1, 14), date(2025, 1, 31), date(2025, 3, 1)},
			EffectiveFrom: date(2025, 1, 1),
		}

		got := Expand(tpl, date(2025, 1, 10), date(2025, 2, 1))

		require.Equal(t, []time.Time{date(2025, 1, 14), date(2025, 1, 31)}, got)
	})

	t.Run("空的重复规则返回空结果", func(t *testing.T) {
		tpl := &domain.ShiftTemplate{
			RepeatType:    domain.RepeatWeekly,
			EffectiveFrom: date(2025, 1, 1),
		}

		require.Empty(t, Expand(tpl, date(2025, 1, 1), date(2025, 2, 1)))
	})

	t.Run("无法识别的重复类型不产生日期", func(t *testing.T) {
		// 库里的脏数据不走写入路径的校验，不能悄悄按周重复展开
		tpl := &domain.ShiftTemplate{
			RepeatType:    domain.RepeatType("MONTHLY"),
			Weekdays:      []int32{1, 2, 3, 4, 5, 6, 7},
			EffectiveFrom: date(2025, 1, 1),
		}

		require.Empty(t, Expand(tpl, date(2025, 1, 1), date(2025, 2, 1)))
	})

	t.Run("范围为空返回空结果", func(t *testing.T) {
		tpl := &domain.ShiftTemplate{
			RepeatType:    domain.RepeatWeekly,
			Weekdays:      []int32{1},
			EffectiveFrom: date(2025, 1, 1),
		}

		require.Empty(t, Expand(tpl, date(2025, 1, 13), date(2025, 1, 13)))
	})

	t.Run("有效期与请求范围无交集", func(t *testing.T) {
		effectiveTo := date(2024, 12, 31)
		tpl := &domain.ShiftTemplate{
			RepeatType:    domain.RepeatWeekly,
			Weekdays:      []int32{1, 2, 3, 4, 5, 6, 7},
			EffectiveFrom: date(2024, 1, 1),
			EffectiveTo:   &effectiveTo,
		}

		require.Empty(t, Expand(tpl, date(2025, 1, 1), date(2025, 2, 1)))
	})
}

func TestIsoWeekday(t *testing.T) {
	require.Equal(t, int32(1), isoWeekday(date(2025, 1, 13))) // 周一
	require.Equal(t, int32(3), isoWeekday(date(2025, 1, 15))) // 周三
	require.Equal(t, int32(6), isoWeekday(date(2025, 1, 18))) // 周六
	require.Equal(t, int32(7), isoWeekday(date(2025, 1, 19))) // 周日
}
