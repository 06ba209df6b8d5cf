package domain

import "time"

type Holiday struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	LocationID *int64    `json:"locationID"` // 为空表示适用于所有驻点
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	CreatedAt  time.Time `json:"createdAt"`
	Version    int32     `json:"-"`
}

type LocationClosure struct {
	ID         int64     `json:"id"`
	LocationID int64     `json:"locationID"`
	Reason     string    `json:"reason"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	CreatedAt  time.Time `json:"createdAt"`
	Version    int32     `json:"-"`
}

type IssueType string

const (
	IssueSickLeave     IssueType = "SICK_LEAVE"
	IssuePersonalLeave IssueType = "PERSONAL_LEAVE"
	IssueBulkCancel    IssueType = "BULK_CANCEL"
)

// ShiftIssue 针对某个 (模板, 日期) 的请假或取消记录
type ShiftIssue struct {
	ID         int64     `json:"id"`
	TemplateID int64     `json:"templateID"`
	Date       time.Time `json:"date"`
	Type       IssueType `json:"type"`
	Reason     string    `json:"reason"`
	CreatedBy  int64     `json:"createdBy"`
	CreatedAt  time.Time `json:"createdAt"`
}
