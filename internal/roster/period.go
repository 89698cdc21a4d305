package roster

import (
	"fmt"
	"time"
)

// SchedulingPeriod: 排班周期，由起始日期和连续的天数构成
type SchedulingPeriod struct {
	startDate time.Time
	size      int
}

func NewSchedulingPeriod(startDate time.Time, size int) (*SchedulingPeriod, error) {
	if size < 1 {
		return nil, fmt.Errorf("排班周期的天数必须大于 0")
	}
	return &SchedulingPeriod{
		startDate: startDate,
		size:      size,
	}, nil
}

func (p *SchedulingPeriod) Size() int {
	return p.size
}

// Date 返回周期内第 dayIndex 天对应的日期
func (p *SchedulingPeriod) Date(dayIndex int) time.Time {
	return p.startDate.AddDate(0, 0, dayIndex)
}

func (p *SchedulingPeriod) DayOfWeek(dayIndex int) time.Weekday {
	return p.Date(dayIndex).Weekday()
}
