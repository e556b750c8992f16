package ics

import (
	"fmt"
	"time"

	"focusplan/internal/model"
)

// maxSpanDays bounds how many days a single all-day occurrence is spread
// over when converted to planner events.
const maxSpanDays = 31

// ToCalendarEvents converts occurrences to read-only planner events. Timed
// occurrences land on their start day. All-day occurrences spanning several
// days produce one event per day so every covered day shows it.
func ToCalendarEvents(occs []Occurrence) []model.CalendarEvent {
	out := make([]model.CalendarEvent, 0, len(occs))
	for _, o := range occs {
		title := o.Summary
		if title == "" {
			title = "(untitled)"
		}

		days := 1
		if o.AllDay {
			days = int(o.End.Sub(o.Start).Round(24*time.Hour) / (24 * time.Hour))
			days = min(max(days, 1), maxSpanDays)
		}

		for d := 0; d < days; d++ {
			date := o.Start.AddDate(0, 0, d)
			id := fmt.Sprintf("sub-%s-%s-%s", o.SourceID, o.UID, o.InstanceKey)
			if d > 0 {
				id = fmt.Sprintf("%s+%d", id, d)
			}
			out = append(out, model.CalendarEvent{
				ID:          id,
				Title:       title,
				Description: o.Description,
				Date:        date,
				Source:      o.SourceID,
			})
		}
	}
	return out
}
