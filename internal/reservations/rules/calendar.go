package rules

import (
	"context"
	"fmt"
	"time"
)

const ReasonWeeklyRestDay = "weekly rest day"

// HolidaySource names the holiday falling on a normalized date, or returns "" when there is none.
type HolidaySource interface {
	HolidayName(ctx context.Context, date string) (string, error)
}

// OpeningPolicy holds the daily window in minutes since midnight.
// CloseMin 0 means the restaurant stays open through the end of the day.
type OpeningPolicy struct {
	OpenMin   int
	CloseMin  int
	ClosedDay time.Weekday
}

func NewOpeningPolicy(open, close string, closedDay time.Weekday) (OpeningPolicy, error) {
	openMin, err := ParseTime(open)
	if err != nil {
		return OpeningPolicy{}, fmt.Errorf("open time: %w", err)
	}
	closeMin, err := ParseTime(close)
	if err != nil {
		return OpeningPolicy{}, fmt.Errorf("close time: %w", err)
	}
	if closeMin != 0 && closeMin <= openMin {
		return OpeningPolicy{}, fmt.Errorf("close time %s must be after open time %s", close, open)
	}
	return OpeningPolicy{OpenMin: openMin, CloseMin: closeMin, ClosedDay: closedDay}, nil
}

func (p OpeningPolicy) OpenTime() string {
	return FormatMinutes(p.OpenMin)
}

func (p OpeningPolicy) CloseTime() string {
	return FormatMinutes(p.CloseMin)
}

// WithinHours checks both bounds inclusively; a midnight close has no upper bound.
func (p OpeningPolicy) WithinHours(minute int) bool {
	if minute < p.OpenMin {
		return false
	}
	return p.CloseMin == 0 || minute <= p.CloseMin
}

type Calendar struct {
	policy   OpeningPolicy
	holidays HolidaySource
}

func NewCalendar(policy OpeningPolicy, holidays HolidaySource) *Calendar {
	return &Calendar{policy: policy, holidays: holidays}
}

func (c *Calendar) Policy() OpeningPolicy {
	return c.policy
}

// IsOpen decides whether a booking may start at rawDate/rawTime. When it may not,
// the reason of the first failing check is returned: weekly closed day, then
// holiday, then opening window.
func (c *Calendar) IsOpen(ctx context.Context, rawDate, rawTime string) (bool, string, error) {
	day, err := ParseDate(rawDate)
	if err != nil {
		return false, "", err
	}
	minute, err := ParseTime(rawTime)
	if err != nil {
		return false, "", err
	}

	if day.Weekday() == c.policy.ClosedDay {
		return false, ReasonWeeklyRestDay, nil
	}

	if c.holidays != nil {
		name, err := c.holidays.HolidayName(ctx, day.Format("2006-01-02"))
		if err != nil {
			return false, "", fmt.Errorf("holiday lookup: %w", err)
		}
		if name != "" {
			return false, name, nil
		}
	}

	if !c.policy.WithinHours(minute) {
		return false, c.hoursReason(), nil
	}
	return true, "", nil
}

func (c *Calendar) hoursReason() string {
	if c.policy.CloseMin == 0 {
		return fmt.Sprintf("outside opening hours (from %s until midnight)", c.policy.OpenTime())
	}
	return fmt.Sprintf("outside opening hours (%s to %s)", c.policy.OpenTime(), c.policy.CloseTime())
}
