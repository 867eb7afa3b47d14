package shared

import (
	"fmt"
	"time"
)

// MonthKeyLayout is the calendar-month key format used on rent payments.
const MonthKeyLayout = "2006-01"

// MonthKey returns the calendar-month key (YYYY-MM) for t.
func MonthKey(t time.Time) string {
	return t.Format(MonthKeyLayout)
}

// ParseMonthKey parses a YYYY-MM key into the first instant of that month (UTC).
func ParseMonthKey(key string) (time.Time, error) {
	t, err := time.Parse(MonthKeyLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse month key %q: %w", key, err)
	}
	return t, nil
}

// AddMonthsAnchored advances t by the given number of whole calendar months
// while pinning the day of month to anchorDay, clamped to the length of the
// target month. Walking Jan 31 forward therefore yields Feb 28 (or 29) and
// then Mar 31 again, rather than drifting to Mar 28 the way repeated
// time.AddDate calls would.
func AddMonthsAnchored(t time.Time, months, anchorDay int) time.Time {
	if anchorDay < 1 {
		anchorDay = t.Day()
	}
	year, month, _ := t.Date()
	first := time.Date(year, month, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	target := first.AddDate(0, months, 0)
	day := anchorDay
	if last := DaysInMonth(target.Year(), target.Month()); day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DaysUntil returns the whole days from now until end, rounding partial days
// up and flooring at zero.
func DaysUntil(now, end time.Time) int {
	d := end.Sub(now)
	if d <= 0 {
		return 0
	}
	days := int(d.Hours() / 24)
	if d.Hours() > float64(days)*24 {
		days++
	}
	return days
}
