package rules

import (
	"fmt"
	"strings"
	"time"

	reservationserrors "restobook/internal/reservations/errors"
	"restobook/pkg/model"
)

// dateLayouts are tried in order. Single-digit days and months are accepted.
var dateLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2006/1/2",
	"2006-1-2",
}

// ParseDate reads a calendar date written day-first or year-first with '/' or '-'.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", reservationserrors.ErrInvalidDateFormat, raw)
}

// NormalizeDate returns the canonical YYYY-MM-DD key for raw.
// It is idempotent: NormalizeDate of a normalized date returns it unchanged.
func NormalizeDate(raw string) (string, error) {
	d, err := ParseDate(raw)
	if err != nil {
		return "", err
	}
	return d.Format(model.DateLayout), nil
}

// ParseTime returns the minutes since midnight for an HH:MM time of day.
func ParseTime(raw string) (int, error) {
	t, err := time.Parse(model.TimeLayout, strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", reservationserrors.ErrInvalidTime, raw)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// NormalizeTime returns raw as zero-padded HH:MM.
func NormalizeTime(raw string) (string, error) {
	m, err := ParseTime(raw)
	if err != nil {
		return "", err
	}
	return FormatMinutes(m), nil
}

func FormatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday accepts full English weekday names or their three-letter prefix.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) >= 3 {
		for name, day := range weekdays {
			if name == s || name[:3] == s {
				return day, nil
			}
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}
