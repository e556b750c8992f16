package config

import (
	"strings"
	"time"

	"focusplan/internal/planner"
)

// Location resolves c.Timezone. Empty, "Local" and unknown names yield
// time.Local; the error reports an unknown name so callers can log it.
func (c *Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Timezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local, err
	}
	return loc, nil
}

// Weekday returns the configured first weekday of the grid.
func (c *Config) Weekday() time.Weekday {
	return planner.ParseWeekStart(c.WeekStart)
}
