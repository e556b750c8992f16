package planner

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focusplan/internal/model"
)

func TestDayKeyIgnoresTimeOfDay(t *testing.T) {
	morning := time.Date(2026, time.March, 5, 0, 0, 1, 0, time.UTC)
	night := time.Date(2026, time.March, 5, 23, 59, 59, 0, time.UTC)

	assert.Equal(t, "2026-03-05", DayKey(morning))
	assert.Equal(t, DayKey(morning), DayKey(night))
	assert.NotEqual(t, DayKey(night), DayKey(night.Add(time.Second)))
}

func TestDayKeyUsesLocalDay(t *testing.T) {
	seoul := time.FixedZone("KST", 9*3600)
	// 20:00 UTC on the 5th is already the 6th in Seoul.
	ts := time.Date(2026, time.March, 5, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, "2026-03-05", DayKey(ts))
	assert.Equal(t, "2026-03-06", DayKey(ts.In(seoul)))
	assert.True(t, SameDay(ts, time.Date(2026, time.March, 6, 1, 0, 0, 0, seoul), seoul))
}

func TestParseDayKey(t *testing.T) {
	d, err := ParseDayKey("2026-10-15", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDayKey("2026-13-01", time.UTC)
	assert.Error(t, err)
}

func TestBucketEventsPreservesOrder(t *testing.T) {
	day := time.Date(2026, time.May, 18, 9, 0, 0, 0, time.UTC)
	events := []model.CalendarEvent{
		{ID: "a", Title: "first", Date: day},
		{ID: "b", Title: "other day", Date: day.AddDate(0, 0, 1)},
		{ID: "c", Title: "second", Date: day.Add(5 * time.Hour)},
	}

	b := BucketEvents(events, time.UTC)

	got := b.Lookup(day)
	want := []model.CalendarEvent{events[0], events[2]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Lookup mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, b.Count(day))
	assert.Equal(t, 1, b.CountKey("2026-05-19"))
	assert.Equal(t, 2, b.Days())
	assert.Equal(t, 3, b.Len())
}

func TestBucketLookupEmptyDayIsNotNil(t *testing.T) {
	b := BucketEvents(nil, time.UTC)
	got := b.Lookup(time.Now())
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, 0, b.Count(time.Now()))
}

func TestBucketLookupReturnsCopy(t *testing.T) {
	day := time.Date(2026, time.May, 18, 0, 0, 0, 0, time.UTC)
	b := BucketEvents([]model.CalendarEvent{{ID: "a", Title: "x", Date: day}}, time.UTC)

	got := b.Lookup(day)
	got[0].Title = "mutated"
	assert.Equal(t, "x", b.Lookup(day)[0].Title)
}
