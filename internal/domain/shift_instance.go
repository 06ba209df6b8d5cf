package domain

import "time"

type ShiftStatus string

const (
	ShiftStatusPending   ShiftStatus = "待分配"
	ShiftStatusAssigned  ShiftStatus = "已分配"
	ShiftStatusCancelled ShiftStatus = "已取消"
)

type ShiftInstance struct {
	ID         int64       `json:"id"`
	TemplateID int64       `json:"templateID"`
	LocationID int64       `json:"locationID"`
	Date       time.Time   `json:"date"` // 班次所属日期（跨天班次取开始日期）
	StartTime  time.Time   `json:"startTime"`
	EndTime    time.Time   `json:"endTime"`
	Status     ShiftStatus `json:"status"`
	CreatedAt  time.Time   `json:"createdAt"`
	Version    int32       `json:"-"`
}

// ShiftInstanceFilter 列表查询的可选过滤条件，由 repository 翻译成参数化的 WHERE 子句
type ShiftInstanceFilter struct {
	TemplateID *int64
	LocationID *int64
	Status     *ShiftStatus
	From       *time.Time
	To         *time.Time
}
