package planner

import (
	"time"

	"focusplan/internal/model"
)

// NewEvent holds the caller-supplied fields of an event to add. A nil Date
// means "the selected day".
type NewEvent struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
}

// Observer receives the user-intent notifications the planner issues to its
// presentation layer. Calls happen synchronously on the caller's goroutine.
type Observer interface {
	DayPressed(date time.Time, events []model.CalendarEvent)
	EventPressed(event model.CalendarEvent)
	DeleteRequested(id string)
	AddRequested(ev NewEvent)
}

// NopObserver ignores every notification.
type NopObserver struct{}

func (NopObserver) DayPressed(time.Time, []model.CalendarEvent) {}
func (NopObserver) EventPressed(model.CalendarEvent)            {}
func (NopObserver) DeleteRequested(string)                      {}
func (NopObserver) AddRequested(NewEvent)                       {}

// ObserverFuncs adapts optional functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnDayPressed      func(date time.Time, events []model.CalendarEvent)
	OnEventPressed    func(event model.CalendarEvent)
	OnDeleteRequested func(id string)
	OnAddRequested    func(ev NewEvent)
}

func (o ObserverFuncs) DayPressed(date time.Time, events []model.CalendarEvent) {
	if o.OnDayPressed != nil {
		o.OnDayPressed(date, events)
	}
}

func (o ObserverFuncs) EventPressed(event model.CalendarEvent) {
	if o.OnEventPressed != nil {
		o.OnEventPressed(event)
	}
}

func (o ObserverFuncs) DeleteRequested(id string) {
	if o.OnDeleteRequested != nil {
		o.OnDeleteRequested(id)
	}
}

func (o ObserverFuncs) AddRequested(ev NewEvent) {
	if o.OnAddRequested != nil {
		o.OnAddRequested(ev)
	}
}
