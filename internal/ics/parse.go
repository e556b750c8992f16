package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "focusplan/internal/log"
)

// ParsedEvent is the normalized representation of a VEVENT. Recurrence
// expansion operates on this type.
type ParsedEvent struct {
	SourceID string

	UID         string
	Summary     string
	Description string

	Start  time.Time
	End    time.Time
	AllDay bool

	RawRRule string
	ExDates  []time.Time

	// RecurrenceID is set on VEVENTs that override one instance of a
	// recurring event.
	RecurrenceID *time.Time
}

// IsOverride reports whether the event replaces one recurring instance.
func (e ParsedEvent) IsOverride() bool {
	return e.RecurrenceID != nil
}

// ParseICS parses a single ICS payload. VEVENTs that cannot be read are
// logged and skipped; only a payload that is not a calendar at all fails.
//
// Date-only DTSTART values (VALUE=DATE) become all-day events at midnight
// in loc. Timed values keep the zone the library resolved from TZID.
func ParseICS(src Source, body []byte, loc *time.Location) ([]ParsedEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}
	if loc == nil {
		loc = time.Local
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err, "id", src.ID, "url", redactURL(src.URL))
		return nil, err
	}

	events := make([]ParsedEvent, 0, len(cal.Events()))
	for _, ve := range cal.Events() {
		ev, perr := parseVEvent(src.ID, ve, loc)
		if perr != nil {
			appLog.Warn("ics vevent skipped", "err", perr, "id", src.ID)
			continue
		}
		events = append(events, ev)
	}

	appLog.Info("ics parse completed", "id", src.ID, "event_count", len(events))
	return events, nil
}

func parseVEvent(sourceID string, ve *ical.VEvent, loc *time.Location) (ParsedEvent, error) {
	out := ParsedEvent{SourceID: sourceID}

	out.UID = propValue(ve, ical.ComponentPropertyUniqueId)
	if out.UID == "" {
		return out, errors.New("missing UID")
	}
	out.Summary = propValue(ve, ical.ComponentPropertySummary)
	out.Description = propValue(ve, ical.ComponentPropertyDescription)

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return out, errors.New("missing DTSTART")
	}
	out.AllDay = isDateValue(dtStart)

	if out.AllDay {
		start, err := parseICSTime(dtStart.Value, loc)
		if err != nil {
			return out, err
		}
		out.Start = start
		out.End = start.AddDate(0, 0, 1)
		if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil {
			if end, err := parseICSTime(dtEnd.Value, loc); err == nil && end.After(start) {
				out.End = end
			}
		}
	} else {
		start, err := ve.GetStartAt()
		if err != nil {
			return out, err
		}
		out.Start = start
		out.End = start
		if end, err := ve.GetEndAt(); err == nil && !end.Before(start) {
			out.End = end
		}
	}

	out.RawRRule = propValue(ve, ical.ComponentPropertyRrule)

	// EXDATE can repeat and can hold comma separated values.
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			if t, err := parseICSTime(part, out.Start.Location()); err == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	if rid := ve.GetProperty("RECURRENCE-ID"); rid != nil {
		if t, err := parseICSTime(rid.Value, out.Start.Location()); err == nil {
			out.RecurrenceID = &t
		}
	}

	return out, nil
}

func propValue(ve *ical.VEvent, name ical.ComponentProperty) string {
	if p := ve.GetProperty(name); p != nil {
		return strings.TrimSpace(p.Value)
	}
	return ""
}

// isDateValue reports whether a DTSTART carries a date without time,
// either through VALUE=DATE or a bare YYYYMMDD value.
func isDateValue(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// parseICSTime parses the basic ICS date and date-time forms. Floating
// and date-only values are read in loc.
func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}
	if loc == nil {
		loc = time.Local
	}

	switch {
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, loc)
	default:
		return time.ParseInLocation("20060102", v, loc)
	}
}
