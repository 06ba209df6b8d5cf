package domain

import (
	"time"
)

type RepeatType string

const (
	RepeatWeekly     RepeatType = "WEEKLY"      // 按星期重复，使用 Weekdays
	RepeatFixedDates RepeatType = "FIXED_DATES" // 指定日期，使用 FixedDates
)

type ShiftTemplate struct {
	ID            int64       `json:"id"`
	Name          string      `json:"name"`
	ManagerID     int64       `json:"managerID"`
	LocationID    int64       `json:"locationID"`
	LocationName  string      `json:"locationName"`
	RepeatType    RepeatType  `json:"repeatType"`
	Weekdays      []int32     `json:"weekdays"`   // 1-7，周一为 1
	FixedDates    []time.Time `json:"fixedDates"` // 仅日期部分有意义
	StartTime     string      `json:"startTime"`  // 15:04:05 格式
	EndTime       string      `json:"endTime"`    // 结束时间早于开始时间表示跨天
	EffectiveFrom time.Time   `json:"effectiveFrom"`
	EffectiveTo   *time.Time  `json:"effectiveTo"` // 为空表示长期有效
	MinGuards     int32       `json:"minGuards"`
	MaxGuards     int32       `json:"maxGuards"`
	IsActive      bool        `json:"isActive"`
	DeletedAt     *time.Time  `json:"-"`
	CreatedAt     time.Time   `json:"createdAt"`
	Version       int32       `json:"-"`
}
