package planner

import (
	"time"

	"focusplan/internal/model"
)

// Buckets maps a Day Key to the events on that day, in the order the events
// appeared in the source collection. It is a derived value: rebuild it with
// BucketEvents whenever the source collection changes.
type Buckets struct {
	loc   *time.Location
	byDay map[string][]model.CalendarEvent
	total int
}

// BucketEvents groups events by their calendar day in loc. A nil loc keys
// each event in its own location.
func BucketEvents(events []model.CalendarEvent, loc *time.Location) Buckets {
	b := Buckets{
		loc:   loc,
		byDay: make(map[string][]model.CalendarEvent),
		total: len(events),
	}
	for _, ev := range events {
		key := b.key(ev.Date)
		b.byDay[key] = append(b.byDay[key], ev)
	}
	return b
}

func (b Buckets) key(t time.Time) string {
	if b.loc != nil {
		t = t.In(b.loc)
	}
	return DayKey(t)
}

// Lookup returns the events on t's day. It never returns nil; a day with no
// events yields an empty slice.
func (b Buckets) Lookup(t time.Time) []model.CalendarEvent {
	return b.LookupKey(b.key(t))
}

// LookupKey is Lookup for an already computed Day Key.
func (b Buckets) LookupKey(key string) []model.CalendarEvent {
	evs := b.byDay[key]
	out := make([]model.CalendarEvent, len(evs))
	copy(out, evs)
	return out
}

// Count returns the number of events on t's day.
func (b Buckets) Count(t time.Time) int {
	return len(b.byDay[b.key(t)])
}

// CountKey is Count for an already computed Day Key.
func (b Buckets) CountKey(key string) int {
	return len(b.byDay[key])
}

// Days returns the number of distinct days with at least one event.
func (b Buckets) Days() int {
	return len(b.byDay)
}

// Len returns the number of events bucketed.
func (b Buckets) Len() int {
	return b.total
}
