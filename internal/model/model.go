package model

import "time"

// CalendarEvent is a single planner entry bound to one calendar day.
// Only the year/month/day of Date matter for grouping; the time-of-day
// component is kept as supplied.
type CalendarEvent struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Description string    `json:"description,omitempty"`

	// Source is empty for events created locally. Events imported from an
	// ICS subscription carry the subscription ID and are read-only.
	Source string `json:"source,omitempty"`
}

// ReadOnly reports whether the event came from a subscription.
func (e CalendarEvent) ReadOnly() bool {
	return e.Source != ""
}

// Task is an entry of the Focus to-do list.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TopMindItem is an entry of the "Top of Mind" list.
type TopMindItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// FocusSample is one labeled focus duration in whole minutes, as used by
// the distribution chart.
type FocusSample struct {
	ID       string    `json:"id,omitempty"`
	Label    string    `json:"label"`
	Minutes  int       `json:"minutes"`
	Color    string    `json:"color,omitempty"`
	Recorded time.Time `json:"recorded,omitempty"`
}

// TrendPoint is one point of the focus trend series. Label is a short
// date label such as "10/15".
type TrendPoint struct {
	Label   string `json:"label"`
	Minutes int    `json:"minutes"`
}
