package pricing

import (
	"fmt"
	"strconv"
	"time"

	"github.com/sangkips/salon-api/internal/domain/entity"
)

// Weekday bits for Promotion.DaysOfWeek. A zero mask means every day.
const (
	Sunday = 1 << iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday

	EveryDay = Sunday | Monday | Tuesday | Wednesday | Thursday | Friday | Saturday
)

// ParseClock parses an "HH:MM" time of day into minutes after midnight.
func ParseClock(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' || !isDigits(s[:2]) || !isDigits(s[3:]) {
		return 0, fmt.Errorf("invalid time of day %q, expected HH:MM", s)
	}
	h, err := strconv.Atoi(s[:2])
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	m, err := strconv.Atoi(s[3:])
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time of day %q out of range", s)
	}
	return h*60 + m, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func dateKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// inDateRange compares calendar dates only; both bounds are inclusive.
// Bounds are read as stored, at is read in its own location.
func inDateRange(p *entity.Promotion, at time.Time) bool {
	k := dateKey(at)
	return k >= dateKey(p.StartDate) && k <= dateKey(p.EndDate)
}

func onAllowedDay(p *entity.Promotion, at time.Time) bool {
	if p.DaysOfWeek == 0 {
		return true
	}
	return p.DaysOfWeek&(1<<uint(at.Weekday())) != 0
}

// inTimeWindow checks [start, end). A window whose end is before its start
// wraps past midnight, e.g. 22:00-02:00.
func inTimeWindow(p *entity.Promotion, at time.Time) bool {
	if p.StartTime == nil && p.EndTime == nil {
		return true
	}
	now := at.Hour()*60 + at.Minute()

	start, end := 0, 24*60
	var err error
	if p.StartTime != nil {
		if start, err = ParseClock(*p.StartTime); err != nil {
			return false
		}
	}
	if p.EndTime != nil {
		if end, err = ParseClock(*p.EndTime); err != nil {
			return false
		}
	}

	if start <= end {
		return now >= start && now < end
	}
	return now >= start || now < end
}
