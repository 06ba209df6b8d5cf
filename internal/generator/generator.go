package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/anxun-security/guard-roster/backend/internal/domain"
)

// Generator 负责把排班模板展开成具体班次并落库。
// 引擎本身无状态，同一个实例可以被并发调用；重复生成靠
// (template_id, date) 唯一约束和写入前的存在性检查保证幂等。
type Generator struct {
	store    Store
	resolver *Resolver
	clock    Clock
	maxDays  int
}

func New(store Store, src ExceptionSource, clock Clock, maxDays int) *Generator {
	return &Generator{
		store:    store,
		resolver: NewResolver(src),
		clock:    clock,
		maxDays:  maxDays,
	}
}

// Generate 执行一次生成。业务层面的问题（模板不存在、范围为空、例外跳过）
// 全部记录在返回结果里，不作为 error 返回；只有基础设施故障（存储不可用、
// ctx 被取消）才返回非空 error，此时结果中仍然带有已经提交的部分。
func (g *Generator) Generate(ctx context.Context, req *domain.GenerationRequest) (*domain.GenerationResult, error) {
	result := &domain.GenerationResult{
		CreatedShiftIDs: make([]int64, 0),
		SkipReasons:     make([]domain.SkipReason, 0),
		Errors:          make([]string, 0),
	}

	// 计数只是对列表长度的汇总，统一在返回前做
	defer func() {
		result.ShiftsCreatedCount = len(result.CreatedShiftIDs)
		result.ShiftsSkippedCount = len(result.SkipReasons)
	}()

	// 校验请求
	if len(req.TemplateIDs) == 0 {
		result.Errors = append(result.Errors, "未指定任何排班模板")
	}
	if req.GenerateDays < 0 {
		result.Errors = append(result.Errors, "生成天数不能为负数")
	}
	if req.GenerateDays > g.maxDays {
		result.Errors = append(result.Errors, fmt.Sprintf("生成天数不能超过 %d 天", g.maxDays))
	}
	if len(result.Errors) > 0 {
		return result, nil
	}

	// 解析生成范围，左闭右开
	var from time.Time
	if req.GenerateFromDate != nil {
		from = civilDate(*req.GenerateFromDate, g.clock.Now().Location())
	} else {
		from = civilDate(g.clock.Now(), g.clock.Now().Location())
	}
	to := from.AddDate(0, 0, req.GenerateDays)
	result.GeneratedFrom = from
	result.GeneratedTo = to

	if !from.Before(to) {
		// 生成天数为 0，空跑一次
		return result, nil
	}

	// 去掉重复的模板 ID，保持请求顺序，结果的顺序依赖这一点
	ids := make([]int64, 0, len(req.TemplateIDs))
	seen := make(map[int64]struct{}, len(req.TemplateIDs))
	for _, id := range req.TemplateIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	// 每次生成都重新加载模板，不做缓存，避免用过期数据生成错误班次
	templates, err := g.store.GetActiveTemplates(ctx, ids)
	if err != nil {
		result.Errors = append(result.Errors, "加载排班模板失败")
		return result, fmt.Errorf("加载排班模板: %w", err)
	}

	byID := make(map[int64]*domain.ShiftTemplate, len(templates))
	for _, tpl := range templates {
		byID[tpl.ID] = tpl
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, "本次生成被取消")
			return result, err
		}

		tpl, ok := byID[id]
		if !ok {
			// 单个模板有问题不影响其余模板
			result.Errors = append(result.Errors, fmt.Sprintf("模板 %d 不存在或未启用", id))
			continue
		}

		if err := g.generateForTemplate(ctx, tpl, from, to, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("模板 %d 写入班次失败", id))
			return result, fmt.Errorf("模板 %d: %w", id, err)
		}
	}

	return result, nil
}

// generateForTemplate 处理单个模板：展开日期、逐日裁决、一个事务写入。
// 返回非空 error 表示存储故障，整个生成中断；模板自身的数据问题只
// 记录到 result.Errors 并放弃该模板。
func (g *Generator) generateForTemplate(ctx context.Context, tpl *domain.ShiftTemplate, from, to time.Time, result *domain.GenerationResult) error {
	startClock, err := time.Parse("15:04:05", tpl.StartTime)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("模板 %d 的开始时间格式错误", tpl.ID))
		return nil
	}
	endClock, err := time.Parse("15:04:05", tpl.EndTime)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("模板 %d 的结束时间格式错误", tpl.ID))
		return nil
	}

	pending := make([]*domain.ShiftInstance, 0)

	for _, date := range Expand(tpl, from, to) {
		verdict := g.resolver.Resolve(ctx, tpl.LocationID, tpl.ID, date)
		if verdict.Skip {
			result.SkipReasons = append(result.SkipReasons, domain.SkipReason{
				Date:         dateKey(date),
				LocationID:   tpl.LocationID,
				LocationName: tpl.LocationName,
				TemplateName: tpl.Name,
				Reason:       verdict.Reason,
				Message:      verdict.Message,
			})
			continue
		}

		exists, err := g.store.ShiftInstanceExists(ctx, tpl.ID, date)
		if err != nil {
			return err
		}
		if exists {
			// 已经生成过的班次静默跳过，既不计入创建也不算跳过原因
			continue
		}

		startAt := time.Date(date.Year(), date.Month(), date.Day(),
			startClock.Hour(), startClock.Minute(), startClock.Second(), 0, date.Location())
		endAt := time.Date(date.Year(), date.Month(), date.Day(),
			endClock.Hour(), endClock.Minute(), endClock.Second(), 0, date.Location())
		if !endAt.After(startAt) {
			// 结束时间不晚于开始时间，说明班次跨天，班次日期取开始日期
			endAt = endAt.AddDate(0, 0, 1)
		}

		pending = append(pending, &domain.ShiftInstance{
			TemplateID: tpl.ID,
			LocationID: tpl.LocationID,
			Date:       date,
			StartTime:  startAt,
			EndTime:    endAt,
			Status:     domain.ShiftStatusPending,
		})
	}

	if len(pending) == 0 {
		return nil
	}

	createdIDs, err := g.store.CreateShiftInstances(ctx, pending)
	if err != nil {
		return err
	}

	result.CreatedShiftIDs = append(result.CreatedShiftIDs, createdIDs...)
	return nil
}
