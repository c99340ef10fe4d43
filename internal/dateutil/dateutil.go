// Package dateutil handles the YYYY-MM-DD date keys used everywhere a
// calendar day is persisted or filtered. Keys sort lexicographically in
// chronological order, so string comparison on keys is safe.
package dateutil

import (
	"fmt"
	"regexp"
	"time"
)

// KeyLayout is the canonical wire format for calendar days.
const KeyLayout = "2006-01-02"

var keyPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ToKey formats a time as a date key using its local calendar fields.
func ToKey(t time.Time) string {
	return t.Format(KeyLayout)
}

// FromKey parses a date key into midnight local time. It rejects keys
// that are not zero-padded ("2024-2-5") or not real calendar dates
// ("2024-02-30").
func FromKey(key string) (time.Time, error) {
	if !keyPattern.MatchString(key) {
		return time.Time{}, fmt.Errorf("invalid date key %q", key)
	}
	t, err := time.ParseInLocation(KeyLayout, key, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: %w", key, err)
	}
	return t, nil
}

// AddDays shifts a time by n calendar days, crossing month and year
// boundaries correctly.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// WeekdayMondayZero converts Go's Sunday=0 weekday numbering to
// Monday=0 .. Sunday=6.
func WeekdayMondayZero(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// MonthStart returns midnight on the first day of t's month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// MonthEnd returns midnight on the last day of t's month.
func MonthEnd(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, -1)
}

// DaysInMonth returns the number of calendar days in t's month.
func DaysInMonth(t time.Time) int {
	return MonthEnd(t).Day()
}
