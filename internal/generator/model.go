package generator

import (
	"context"
	"time"

	"github.com/anxun-security/guard-roster/backend/internal/domain"
)

// Store 是生成引擎依赖的持久化接口，由 repository 实现。
// 三个方法都必须尊重调用方传入的 ctx，取消后尽快返回。
type Store interface {
	// GetActiveTemplates 只返回启用且未删除的模板，未命中的 ID 不报错
	GetActiveTemplates(ctx context.Context, ids []int64) ([]*domain.ShiftTemplate, error)
	ShiftInstanceExists(ctx context.Context, templateID int64, date time.Time) (bool, error)
	// CreateShiftInstances 在同一个事务中写入一个模板的全部新班次，
	// 返回实际创建的班次 ID（与传入顺序一致，撞唯一约束的条目被静默丢弃）
	CreateShiftInstances(ctx context.Context, instances []*domain.ShiftInstance) ([]int64, error)
}

// ExceptionSource 提供节假日、驻点关闭和请假/取消记录的只读查询
type ExceptionSource interface {
	IsHoliday(ctx context.Context, locationID int64, date time.Time) (bool, error)
	IsClosed(ctx context.Context, locationID int64, date time.Time) (bool, error)
	// FindIssue 没有命中记录时返回 (nil, nil)
	FindIssue(ctx context.Context, templateID int64, date time.Time) (*domain.ShiftIssue, error)
}

// Verdict 表示某个 (模板, 日期) 是否需要跳过生成
type Verdict struct {
	Skip    bool
	Reason  string
	Message string
}

const (
	ReasonHoliday        = "HOLIDAY"
	ReasonLocationClosed = "LOCATION_CLOSED"
)
