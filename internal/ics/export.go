package ics

import (
	"time"

	ical "github.com/arran4/golang-ical"

	"focusplan/internal/model"
)

// DefaultProductID is the PRODID written by Export.
const DefaultProductID = "-//focusplan//planner//EN"

// ExportOptions controls Export.
type ExportOptions struct {
	ProductID string
	Name      string
	// Now stamps DTSTAMP; defaults to time.Now.
	Now func() time.Time
}

// Export serializes planner events as a VCALENDAR. Each event becomes an
// all-day VEVENT on its calendar day, since planner events carry no
// meaningful time of day.
func Export(events []model.CalendarEvent, opts ExportOptions) string {
	if opts.ProductID == "" {
		opts.ProductID = DefaultProductID
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	stamp := opts.Now().UTC()

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(opts.ProductID)
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}

	for _, ev := range events {
		y, m, d := ev.Date.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

		vev := cal.AddEvent(ev.ID + "@focusplan")
		vev.SetDtStampTime(stamp)
		vev.SetSummary(ev.Title)
		if ev.Description != "" {
			vev.SetDescription(ev.Description)
		}
		vev.SetAllDayStartAt(day)
		vev.SetAllDayEndAt(day.AddDate(0, 0, 1))
	}

	return cal.Serialize()
}
