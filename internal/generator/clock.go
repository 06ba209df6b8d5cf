package generator

import "time"

// Clock 由外部注入，测试时可以使用固定时间
type Clock interface {
	Now() time.Time
}

type systemClock struct {
	loc *time.Location
}

// NewSystemClock 返回固定在业务时区的系统时钟
func NewSystemClock(loc *time.Location) Clock {
	return &systemClock{loc: loc}
}

func (c *systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}
