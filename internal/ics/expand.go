package ics

import (
	"errors"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	appLog "focusplan/internal/log"
)

const defaultMaxOccurrencesPerEvent = 1000

// Window controls recurrence expansion.
type Window struct {
	// Location is the zone occurrences are converted to. If nil,
	// time.Local is used.
	Location *time.Location

	// Start / End bound the occurrences returned (inclusive).
	Start time.Time
	End   time.Time

	// MaxPerEvent caps the occurrences of one recurring event. If zero,
	// defaultMaxOccurrencesPerEvent is used.
	MaxPerEvent int
}

// Occurrence is one concrete instance of an event after recurrence
// expansion and zone normalization.
type Occurrence struct {
	SourceID    string
	UID         string
	InstanceKey string

	Summary     string
	Description string
	AllDay      bool

	Start time.Time
	End   time.Time
}

// ExpandResult holds the occurrences, sorted by start, plus the UIDs whose
// expansion hit the cap.
type ExpandResult struct {
	Occurrences []Occurrence
	Truncated   []string
}

// ExpandOccurrences turns parsed events into concrete occurrences inside w.
// It handles single events, RRULE recurrences, EXDATE exclusions and
// RECURRENCE-ID overrides.
func ExpandOccurrences(events []ParsedEvent, w Window) (ExpandResult, error) {
	var res ExpandResult

	if w.End.Before(w.Start) {
		return res, errors.New("expand: window end is before start")
	}
	if w.Location == nil {
		w.Location = time.Local
	}
	if w.MaxPerEvent <= 0 {
		w.MaxPerEvent = defaultMaxOccurrencesPerEvent
	}

	// Group base events and overrides by UID.
	bases := make(map[string][]ParsedEvent)
	overrides := make(map[string][]ParsedEvent)
	var order []string
	for _, ev := range events {
		if ev.IsOverride() {
			overrides[ev.UID] = append(overrides[ev.UID], ev)
			continue
		}
		if _, seen := bases[ev.UID]; !seen {
			order = append(order, ev.UID)
		}
		bases[ev.UID] = append(bases[ev.UID], ev)
	}

	for _, uid := range order {
		truncated := false
		for _, ev := range bases[uid] {
			occs, hitCap := expandEvent(ev, overrides[uid], w)
			truncated = truncated || hitCap
			res.Occurrences = append(res.Occurrences, occs...)
		}
		if truncated {
			res.Truncated = append(res.Truncated, uid)
			appLog.Warn("expand: occurrences truncated", "uid", uid, "cap", w.MaxPerEvent)
		}
	}

	sort.SliceStable(res.Occurrences, func(i, j int) bool {
		return res.Occurrences[i].Start.Before(res.Occurrences[j].Start)
	})
	return res, nil
}

func expandEvent(ev ParsedEvent, overrides []ParsedEvent, w Window) ([]Occurrence, bool) {
	if ev.RawRRule == "" {
		if !overlaps(ev.Start, ev.End, w.Start, w.End) {
			return nil, false
		}
		return []Occurrence{makeOccurrence(applyOverride(ev, overrides, ev.Start), w.Location)}, false
	}
	return expandRecurring(ev, overrides, w)
}

func expandRecurring(ev ParsedEvent, overrides []ParsedEvent, w Window) ([]Occurrence, bool) {
	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("expand: failed to parse RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return nil, false
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	// Widen the lower bound by the event length so instances that started
	// before the window but are still running are kept.
	dur := ev.End.Sub(ev.Start)
	loc := ev.Start.Location()
	starts := set.Between(w.Start.Add(-dur).In(loc), w.End.In(loc), true)

	hitCap := false
	if len(starts) > w.MaxPerEvent {
		starts = starts[:w.MaxPerEvent]
		hitCap = true
	}

	out := make([]Occurrence, 0, len(starts))
	for _, s := range starts {
		inst := ev
		inst.Start = s
		if ev.AllDay {
			// Keep whole days for all-day events, regardless of DST shifts.
			days := int(dur.Round(24*time.Hour) / (24 * time.Hour))
			if days < 1 {
				days = 1
			}
			inst.End = s.AddDate(0, 0, days)
		} else {
			inst.End = s.Add(dur)
		}
		out = append(out, makeOccurrence(applyOverride(inst, overrides, s), w.Location))
	}
	return out, hitCap
}

// applyOverride returns the override whose RECURRENCE-ID equals start, or
// inst unchanged.
func applyOverride(inst ParsedEvent, overrides []ParsedEvent, start time.Time) ParsedEvent {
	for _, ov := range overrides {
		if ov.RecurrenceID != nil && ov.RecurrenceID.Equal(start) {
			return ov
		}
	}
	return inst
}

func makeOccurrence(ev ParsedEvent, loc *time.Location) Occurrence {
	start := ev.Start.In(loc)
	end := ev.End.In(loc)
	if ev.AllDay {
		// All-day dates are calendar dates; keep the wall date, not the instant.
		start = time.Date(ev.Start.Year(), ev.Start.Month(), ev.Start.Day(), 0, 0, 0, 0, loc)
		end = time.Date(ev.End.Year(), ev.End.Month(), ev.End.Day(), 0, 0, 0, 0, loc)
	}
	return Occurrence{
		SourceID:    ev.SourceID,
		UID:         ev.UID,
		InstanceKey: start.Format(time.RFC3339),
		Summary:     ev.Summary,
		Description: ev.Description,
		AllDay:      ev.AllDay,
		Start:       start,
		End:         end,
	}
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}
