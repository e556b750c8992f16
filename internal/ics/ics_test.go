package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focusplan/internal/model"
)

const sampleICS = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:holiday-1\r\n" +
	"DTSTAMP:20260101T000000Z\r\n" +
	"DTSTART;VALUE=DATE:20261009\r\n" +
	"DTEND;VALUE=DATE:20261010\r\n" +
	"SUMMARY:Hangul Day\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:standup\r\n" +
	"DTSTAMP:20260101T000000Z\r\n" +
	"DTSTART:20261005T090000Z\r\n" +
	"DTEND:20261005T091500Z\r\n" +
	"RRULE:FREQ=DAILY;COUNT=5\r\n" +
	"EXDATE:20261007T090000Z\r\n" +
	"SUMMARY:Stand-up\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:standup\r\n" +
	"DTSTAMP:20260101T000000Z\r\n" +
	"RECURRENCE-ID:20261008T090000Z\r\n" +
	"DTSTART:20261008T140000Z\r\n" +
	"DTEND:20261008T141500Z\r\n" +
	"SUMMARY:Stand-up (moved)\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"DTSTAMP:20260101T000000Z\r\n" +
	"DTSTART:20261005T090000Z\r\n" +
	"SUMMARY:No UID\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestParseICS(t *testing.T) {
	events, err := ParseICS(Source{ID: "team", URL: "https://example.com/a.ics"}, []byte(sampleICS), time.UTC)
	require.NoError(t, err)
	require.Len(t, events, 3, "event without UID is skipped")

	holiday := events[0]
	assert.True(t, holiday.AllDay)
	assert.Equal(t, "Hangul Day", holiday.Summary)
	assert.Equal(t, time.Date(2026, time.October, 9, 0, 0, 0, 0, time.UTC), holiday.Start)
	assert.Equal(t, time.Date(2026, time.October, 10, 0, 0, 0, 0, time.UTC), holiday.End)

	standup := events[1]
	assert.False(t, standup.AllDay)
	assert.Equal(t, "FREQ=DAILY;COUNT=5", standup.RawRRule)
	require.Len(t, standup.ExDates, 1)
	assert.False(t, standup.IsOverride())

	assert.True(t, events[2].IsOverride())
	assert.Equal(t, "team", events[2].SourceID)
}

func TestParseICSRejectsEmptyBody(t *testing.T) {
	_, err := ParseICS(Source{ID: "x"}, nil, time.UTC)
	assert.Error(t, err)
}

func TestExpandOccurrences(t *testing.T) {
	events, err := ParseICS(Source{ID: "team"}, []byte(sampleICS), time.UTC)
	require.NoError(t, err)

	res, err := ExpandOccurrences(events, Window{
		Location: time.UTC,
		Start:    time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2026, time.October, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	var summaries []string
	for _, o := range res.Occurrences {
		summaries = append(summaries, o.Start.Format("01-02 15:04")+" "+o.Summary)
	}
	assert.Equal(t, []string{
		"10-05 09:00 Stand-up",
		"10-06 09:00 Stand-up",
		"10-08 14:00 Stand-up (moved)",
		"10-09 00:00 Hangul Day",
		"10-09 09:00 Stand-up",
	}, summaries)
	assert.Empty(t, res.Truncated)
}

func TestExpandOccurrencesCap(t *testing.T) {
	events := []ParsedEvent{{
		SourceID: "s",
		UID:      "daily",
		Summary:  "daily",
		Start:    time.Date(2026, time.January, 1, 8, 0, 0, 0, time.UTC),
		End:      time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC),
		RawRRule: "FREQ=DAILY",
	}}
	res, err := ExpandOccurrences(events, Window{
		Location:    time.UTC,
		Start:       time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC),
		MaxPerEvent: 10,
	})
	require.NoError(t, err)
	assert.Len(t, res.Occurrences, 10)
	assert.Equal(t, []string{"daily"}, res.Truncated)
}

func TestExpandOccurrencesRejectsInvertedWindow(t *testing.T) {
	now := time.Now()
	_, err := ExpandOccurrences(nil, Window{Start: now, End: now.Add(-time.Hour)})
	assert.Error(t, err)
}

func TestToCalendarEventsSpreadsMultiDay(t *testing.T) {
	start := time.Date(2026, time.October, 3, 0, 0, 0, 0, time.UTC)
	occs := []Occurrence{
		{SourceID: "kr", UID: "chuseok", InstanceKey: "k", Summary: "Chuseok", AllDay: true, Start: start, End: start.AddDate(0, 0, 3)},
		{SourceID: "kr", UID: "timed", InstanceKey: "t", Start: start.Add(10 * time.Hour), End: start.Add(30 * time.Hour)},
	}

	evs := ToCalendarEvents(occs)
	require.Len(t, evs, 4)
	assert.Equal(t, "2026-10-05", evs[2].Date.Format("2006-01-02"))
	assert.Equal(t, "(untitled)", evs[3].Title)
	for _, ev := range evs {
		assert.Equal(t, "kr", ev.Source)
	}
	assert.NotEqual(t, evs[0].ID, evs[1].ID)
}

func TestExportRoundTrip(t *testing.T) {
	stamp := time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC)
	out := Export([]model.CalendarEvent{
		{ID: "event-1", Title: "Dentist", Description: "bring forms", Date: time.Date(2026, time.October, 20, 15, 0, 0, 0, time.UTC)},
		{ID: "event-2", Title: "Review", Date: time.Date(2026, time.October, 21, 0, 0, 0, 0, time.UTC)},
	}, ExportOptions{Name: "Planner", Now: func() time.Time { return stamp }})

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))
	assert.Contains(t, out, "PRODID:"+DefaultProductID)
	assert.Contains(t, out, "SUMMARY:Dentist")

	parsed, err := ParseICS(Source{ID: "export"}, []byte(out), time.UTC)
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.True(t, parsed[0].AllDay)
	assert.Equal(t, "2026-10-20", parsed[0].Start.Format("2006-01-02"))
	assert.Equal(t, "bring forms", parsed[0].Description)
	assert.Equal(t, "event-2@focusplan", parsed[1].UID)
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://example.com/...(redacted)", redactURL("https://example.com/private/cal.ics?token=abc"))
	assert.Equal(t, "https://example.com/...(redacted)", redactURL("https://example.com?token=abc"))
	assert.Equal(t, "ics://...(redacted)", redactURL("not a url"))
}
