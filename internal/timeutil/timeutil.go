// Package timeutil provides the calendar arithmetic the conversation flows
// rely on: timezone-aware "today", Monday-based week windows, and the date
// and month formats users are allowed to type.
package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// DefaultTimezone is used when no TIMEZONE is configured
const DefaultTimezone = "America/Bogota"

// dateFormats are the accepted spellings for a calendar date, tried in order
var dateFormats = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
}

// LoadLocation resolves a timezone name, falling back to the default when
// name is empty.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", name, err)
	}
	return loc, nil
}

// Today returns the current calendar date in loc, normalized to UTC midnight.
// All stored dates use this normalization so date equality is exact.
func Today(loc *time.Location) time.Time {
	return DateOf(time.Now(), loc)
}

// DateOf returns t's calendar date in loc, normalized to UTC midnight
func DateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a user-supplied date string. Accepted formats:
// YYYY-MM-DD, DD/MM/YYYY and DD-MM-YYYY.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q (use YYYY-MM-DD, DD/MM/YYYY or DD-MM-YYYY)", s)
}

// ParseMonth parses a MM/YYYY month specifier
func ParseMonth(s string) (int, time.Month, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse("01/2006", s)
	if err != nil {
		return 0, 0, fmt.Errorf("unrecognized month %q (use MM/YYYY)", s)
	}
	return t.Year(), t.Month(), nil
}

// WeekStart returns the Monday of the week containing d
func WeekStart(d time.Time) time.Time {
	offset := int(d.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7 // Sunday
	}
	return d.AddDate(0, 0, -offset)
}

// WeekEnd returns the Sunday of the week containing d
func WeekEnd(d time.Time) time.Time {
	return WeekStart(d).AddDate(0, 0, 6)
}

// MonthRange returns the first and last day of the given month
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start, end
}
