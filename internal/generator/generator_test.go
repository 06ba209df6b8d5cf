package generator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/anxun-security/guard-roster/backend/internal/domain"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

type fakeStore struct {
	templates map[int64]*domain.ShiftTemplate
	existing  map[string]bool
	created   []*domain.ShiftInstance
	nextID    int64

	loadErr       error
	failTemplates map[int64]error // CreateShiftInstances 对指定模板返回错误
}

func newFakeStore(templates ...*domain.ShiftTemplate) *fakeStore {
	s := &fakeStore{
		templates:     make(map[int64]*domain.ShiftTemplate),
		existing:      make(map[string]bool),
		failTemplates: make(map[int64]error),
	}
	for _, tpl := range templates {
		s.templates[tpl.ID] = tpl
	}
	return s
}

func (s *fakeStore) GetActiveTemplates(_ context.Context, ids []int64) ([]*domain.ShiftTemplate, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	templates := make([]*domain.ShiftTemplate, 0, len(ids))
	for _, id := range ids {
		if tpl, ok := s.templates[id]; ok {
			templates = append(templates, tpl)
		}
	}
	return templates, nil
}

func (s *fakeStore) ShiftInstanceExists(_ context.Context, templateID int64, date time.Time) (bool, error) {
	return s.existing[exceptionKey(templateID, date)], nil
}

func (s *fakeStore) CreateShiftInstances(_ context.Context, instances []*domain.ShiftInstance) ([]int64, error) {
	if len(instances) > 0 {
		if err, ok := s.failTemplates[instances[0].TemplateID]; ok {
			return nil, err
		}
	}

	createdIDs := make([]int64, 0, len(instances))
	for _, instance := range instances {
		key := exceptionKey(instance.TemplateID, instance.Date)
		if s.existing[key] {
			continue
		}
		s.nextID++
		instance.ID = s.nextID
		s.existing[key] = true
		s.created = append(s.created, instance)
		createdIDs = append(createdIDs, instance.ID)
	}
	return createdIDs, nil
}

func weeklyTemplate(id int64, weekdays ...int32) *domain.ShiftTemplate {
	return &domain.ShiftTemplate{
		ID:            id,
		Name:          "测试模板",
		LocationID:    100 + id,
		LocationName:  "测试驻点",
		RepeatType:    domain.RepeatWeekly,
		Weekdays:      weekdays,
		StartTime:     "08:00:00",
		EndTime:       "16:00:00",
		EffectiveFrom: date(2025, 1, 1),
		IsActive:      true,
	}
}

func newTestGenerator(store *fakeStore, src ExceptionSource) *Generator {
	if src == nil {
		src = newFakeSource()
	}
	clock := &fixedClock{now: time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC)}
	return New(store, src, clock, 365)
}

func generateRequest(days int, ids ...int64) *domain.GenerationRequest {
	from := date(2025, 1, 10)
	return &domain.GenerationRequest{
		ManagerID:        1,
		TemplateIDs:      ids,
		GenerateFromDate: &from,
		GenerateDays:     days,
	}
}

func createdDates(store *fakeStore) []string {
	dates := make([]string, 0, len(store.created))
	for _, instance := range store.created {
		dates = append(dates, dateKey(instance.Date))
	}
	return dates
}

func TestGenerate(t *testing.T) {
	t.Run("按模板和有效期生成正确的日期", func(t *testing.T) {
		tpl := weeklyTemplate(1, 1, 3)
		effectiveTo := date(2025, 1, 20)
		tpl.EffectiveTo = &effectiveTo
		store := newFakeStore(tpl)

		result, err := newTestGenerator(store, nil).Generate(context.Background(), generateRequest(14, 1))

		require.NoError(t, err)
		require.Empty(t, result.Errors)
		require.Equal(t, date(2025, 1, 10), result.GeneratedFrom)
		require.Equal(t, date(2025, 1, 24), result.GeneratedTo)
		require.Equal(t, []string{"2025-01-13", "2025-01-15", "2025-01-20"}, createdDates(store))
		require.Equal(t, 3, result.ShiftsCreatedCount)
		require.Len(t, result.CreatedShiftIDs, 3)
		require.Zero(t, result.ShiftsSkippedCount)
	})

	t.Run("未传开始日期时从今天开始", func(t *testing.T) {
		store := newFakeStore(weeklyTemplate(1, 1, 2, 3, 4, 5, 6, 7))
		req := generateRequest(3, 1)
		req.GenerateFromDate = nil

		result, err := newTestGenerator(store, nil).Generate(context.Background(), req)

		require.NoError(t, err)
		// 时钟固定在 2025-01-10 09:30，开始日期取当天零点
		require.Equal(t, date(2025, 1, 10), result.GeneratedFrom)
		require.Equal(t, []string{"2025-01-10", "2025-01-11", "2025-01-12"}, createdDates(store))
	})

	t.Run("重复生成是幂等的", func(t *testing.T) {
		store := newFakeStore(weeklyTemplate(1, 1, 3))
		gen := newTestGenerator(store, nil)

		first, err := gen.Generate(context.Background(), generateRequest(14, 1))
		require.NoError(t, err)
		require.Equal(t, 4, first.ShiftsCreatedCount)

		second, err := gen.Generate(context.Background(), generateRequest(14, 1))
		require.NoError(t, err)
		require.Zero(t, second.ShiftsCreatedCount)
		require.Zero(t, second.ShiftsSkippedCount)
		require.Empty(t, second.Errors)
		require.Len(t, store.created, 4)
	})

	t.Run("已存在的班次静默跳过不产生跳过原因", func(t *testing.T) {
		tpl := weeklyTemplate(1, 1, 3)
		store := newFakeStore(tpl)
		store.existing[exceptionKey(1, date(2025, 1, 13))] = true

		result, err := newTestGenerator(store, nil).Generate(context.Background(), generateRequest(7, 1))

		require.NoError(t, err)
		require.Equal(t, []string{"2025-01-15"}, createdDates(store))
		require.Empty(t, result.SkipReasons)
	})

	t.Run("节假日跳过并记录原因", func(t *testing.T) {
		tpl := weeklyTemplate(1, 1, 3)
		src := newFakeSource()
		src.holidays[exceptionKey(tpl.LocationID, date(2025, 1, 15))] = true
		store := newFakeStore(tpl)

		result, err := newTestGenerator(store, src).Generate(context.Background(), generateRequest(7, 1))

		require.NoError(t, err)
		require.Equal(t, []string{"2025-01-13"}, createdDates(store))
		require.Len(t, result.SkipReasons, 1)
		require.Equal(t, domain.SkipReason{
			Date:         "2025-01-15",
			LocationID:   tpl.LocationID,
			LocationName: tpl.LocationName,
			TemplateName: tpl.Name,
			Reason:       ReasonHoliday,
			Message:      "节假日停班",
		}, result.SkipReasons[0])
		require.Equal(t, 1, result.ShiftsSkippedCount)
	})

	t.Run("单个模板缺失不影响其余模板", func(t *testing.T) {
		store := newFakeStore(weeklyTemplate(2, 3))

		result, err := newTestGenerator(store, nil).Generate(context.Background(), generateRequest(7, 1, 2))

		require.NoError(t, err)
		require.Equal(t, []string{"2025-01-15"}, createdDates(store))
		require.Equal(t, []string{"模板 1 不存在或未启用"}, result.Errors)
	})

	t.Run("写入失败时中断并返回已提交的部分", func(t *testing.T) {
		tplA := weeklyTemplate(1, 1)
		tplB := weeklyTemplate(2, 3)
		store := newFakeStore(tplA, tplB)
		store.failTemplates[2] = errors.New("连接中断")

		result, err := newTestGenerator(store, nil).Generate(context.Background(), generateRequest(7, 1, 2))

		require.Error(t, err)
		// 模板 1 的班次已经提交，结果里必须保留
		require.Equal(t, []string{"2025-01-13"}, createdDates(store))
		require.Equal(t, 1, result.ShiftsCreatedCount)
		require.Contains(t, result.Errors, "模板 2 写入班次失败")
	})

	t.Run("加载模板失败", func(t *testing.T) {
		store := newFakeStore()
		store.loadErr = errors.New("数据库不可用")

		result, err := newTestGenerator(store, nil).Generate(context.Background(), generateRequest(7, 1))

		require.Error(t, err)
		require.Contains(t, result.Errors, "加载排班模板失败")
	})

	t.Run("结果顺序与请求顺序一致且日期升序", func(t *testing.T) {
		tplA := weeklyTemplate(1, 1, 3)
		tplB := weeklyTemplate(2, 2, 4)
		store := newFakeStore(tplA, tplB)

		result, err := newTestGenerator(store, nil).Generate(context.Background(), generateRequest(7, 2, 1))

		require.NoError(t, err)
		// 先是模板 2 的周二周四，再是模板 1 的周一周三
		require.Equal(t, []string{"2025-01-14", "2025-01-16", "2025-01-13", "2025-01-15"}, createdDates(store))
		require.Equal(t, []int64{1, 2, 3, 4}, result.CreatedShiftIDs)
	})

	t.Run("重复的模板 ID 只处理一次", func(t *testing.T) {
		store := newFakeStore(weeklyTemplate(1, 1))

		result, err := newTestGenerator(store, nil).Generate(context.Background(), generateRequest(7, 1, 1, 1))

		require.NoError(t, err)
		require.Equal(t, 1, result.ShiftsCreatedCount)
	})

	t.Run("生成天数为 0 是合法的空跑", func(t *testing.T) {
		store := newFakeStore(weeklyTemplate(1, 1))

		result, err := newTestGenerator(store, nil).Generate(context.Background(), generateRequest(0, 1))

		require.NoError(t, err)
		require.Empty(t, result.Errors)
		require.Zero(t, result.ShiftsCreatedCount)
		require.Equal(t, result.GeneratedFrom, result.GeneratedTo)
	})

	t.Run("生成天数不能为负数", func(t *testing.T) {
		store := newFakeStore(weeklyTemplate(1, 1))

		result, err := newTestGenerator(store, nil).Generate(context.Background(), generateRequest(-1, 1))

		require.NoError(t, err)
		require.Equal(t, []string{"生成天数不能为负数"}, result.Errors)
		require.Empty(t, store.created)
	})

	t.Run("生成天数不能超过上限", func(t *testing.T) {
		store := newFakeStore(weeklyTemplate(1, 1))

		result, err := newTestGenerator(store, nil).Generate(context.Background(), generateRequest(366, 1))

		require.NoError(t, err)
		require.Equal(t, []string{"生成天数不能超过 365 天"}, result.Errors)
		require.Empty(t, store.created)
	})

	t.Run("必须指定至少一个模板", func(t *testing.T) {
		store := newFakeStore()

		result, err := newTestGenerator(store, nil).Generate(context.Background(), generateRequest(7))

		require.NoError(t, err)
		require.Equal(t, []string{"未指定任何排班模板"}, result.Errors)
	})

	t.Run("跨天班次的结束时间顺延到第二天", func(t *testing.T) {
		tpl := weeklyTemplate(1, 1)
		tpl.StartTime = "22:00:00"
		tpl.EndTime = "06:00:00"
		store := newFakeStore(tpl)

		_, err := newTestGenerator(store, nil).Generate(context.Background(), generateRequest(7, 1))

		require.NoError(t, err)
		require.Len(t, store.created, 1)
		instance := store.created[0]
		require.Equal(t, date(2025, 1, 13), instance.Date)
		require.Equal(t, time.Date(2025, 1, 13, 22, 0, 0, 0, time.UTC), instance.StartTime)
		require.Equal(t, time.Date(2025, 1, 14, 6, 0, 0, 0, time.UTC), instance.EndTime)
		require.Equal(t, domain.ShiftStatusPending, instance.Status)
	})

	t.Run("模板时间格式错误时放弃该模板但继续其余模板", func(t *testing.T) {
		broken := weeklyTemplate(1, 1)
		broken.StartTime = "8:00"
		store := newFakeStore(broken, weeklyTemplate(2, 3))

		result, err := newTestGenerator(store, nil).Generate(context.Background(), generateRequest(7, 1, 2))

		require.NoError(t, err)
		require.Equal(t, []string{"2025-01-15"}, createdDates(store))
		require.Equal(t, []string{"模板 1 的开始时间格式错误"}, result.Errors)
	})

	t.Run("上下文取消时中断生成", func(t *testing.T) {
		store := newFakeStore(weeklyTemplate(1, 1))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := newTestGenerator(store, nil).Generate(ctx, generateRequest(7, 1))

		require.Error(t, err)
		require.Contains(t, result.Errors, "本次生成被取消")
	})
}
