package domain

import "time"

type GenerationRequest struct {
	ManagerID        int64
	TemplateIDs      []int64
	GenerateFromDate *time.Time // 为空表示从今天开始
	GenerateDays     int
}

type SkipReason struct {
	Date         string `json:"date"` // 2006-01-02
	LocationID   int64  `json:"locationID"`
	LocationName string `json:"locationName"`
	TemplateName string `json:"templateName"`
	Reason       string `json:"reason"`
	Message      string `json:"message"`
}

type GenerationResult struct {
	GeneratedFrom      time.Time    `json:"generatedFrom"`
	GeneratedTo        time.Time    `json:"generatedTo"` // 左闭右开
	ShiftsCreatedCount int          `json:"shiftsCreatedCount"`
	ShiftsSkippedCount int          `json:"shiftsSkippedCount"`
	CreatedShiftIDs    []int64      `json:"createdShiftIDs"`
	SkipReasons        []SkipReason `json:"skipReasons"`
	Errors             []string     `json:"errors"`
}
