package planner

import (
	"fmt"
	"time"
)

// DayKeyLayout is the time layout matching DayKey output.
const DayKeyLayout = "2006-01-02"

// DayKey returns the canonical YYYY-MM-DD key of t's calendar day, read in
// t's own location. Convert with t.In(loc) first to key in another zone.
func DayKey(t time.Time) string {
	y, m, d := t.Date()
	return fmt.Sprintf("%04d-%02d-%02d", y, int(m), d)
}

// ParseDayKey parses a YYYY-MM-DD key into midnight of that day in loc.
func ParseDayKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DayKeyLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("planner: invalid day key %q: %w", key, err)
	}
	return t, nil
}

// StartOfDay truncates t to midnight of its calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = t.Location()
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.Local
	}
	return DayKey(a.In(loc)) == DayKey(b.In(loc))
}
