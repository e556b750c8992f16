package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focusplan/internal/confirm"
	"focusplan/internal/model"
)

var fixedNow = time.Date(2026, time.October, 15, 10, 30, 0, 0, time.UTC)

func newTestPlanner(t *testing.T, obs Observer, events ...model.CalendarEvent) *Planner {
	t.Helper()
	return New(Config{
		Location: time.UTC,
		Now:      func() time.Time { return fixedNow },
		Observer: obs,
	}, events...)
}

func TestNewSelectsToday(t *testing.T) {
	p := newTestPlanner(t, nil)

	y, m := p.Month()
	assert.Equal(t, 2026, y)
	assert.Equal(t, time.October, m)

	sel, ok := p.Selected()
	require.True(t, ok)
	assert.Equal(t, "2026-10-15", DayKey(sel))
}

func TestAddEventAppendsAfterExisting(t *testing.T) {
	day := time.Date(2026, time.October, 20, 0, 0, 0, 0, time.UTC)
	existing := model.CalendarEvent{ID: "pre", Title: "dentist", Date: day.Add(9 * time.Hour)}
	p := newTestPlanner(t, nil, existing)

	ev, err := p.AddEvent(NewEvent{Title: "  review  ", Date: &day})
	require.NoError(t, err)
	assert.Equal(t, "review", ev.Title)
	assert.NotEmpty(t, ev.ID)

	got := p.EventsOn(day)
	require.Len(t, got, 2)
	assert.Equal(t, "pre", got[0].ID)
	assert.Equal(t, ev.ID, got[1].ID)

	count := 0
	for _, e := range got {
		if e.ID == ev.ID {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestAddEventDefaultsToSelectedDay(t *testing.T) {
	p := newTestPlanner(t, nil)
	p.SelectDay(time.Date(2026, time.October, 3, 18, 0, 0, 0, time.UTC))

	ev, err := p.AddEvent(NewEvent{Title: "call mom"})
	require.NoError(t, err)
	assert.Equal(t, "2026-10-03", DayKey(ev.Date))
}

func TestAddEventDefaultsToTodayWithoutSelection(t *testing.T) {
	p := newTestPlanner(t, nil)
	p.ClearSelection()

	ev, err := p.AddEvent(NewEvent{Title: "stand-up"})
	require.NoError(t, err)
	assert.Equal(t, "2026-10-15", DayKey(ev.Date))
}

func TestAddEventRejectsBlankTitle(t *testing.T) {
	added := 0
	p := newTestPlanner(t, ObserverFuncs{OnAddRequested: func(NewEvent) { added++ }})

	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := p.AddEvent(NewEvent{Title: title})
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrValidation)
	}
	assert.Empty(t, p.Events())
	assert.Equal(t, 0, added)
}

func TestDeleteEvent(t *testing.T) {
	day := time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC)
	p := newTestPlanner(t, nil,
		model.CalendarEvent{ID: "a", Title: "a", Date: day},
		model.CalendarEvent{ID: "b", Title: "b", Date: day},
	)

	removed, err := p.DeleteEvent("a")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Len(t, p.Events(), 1)
	for _, ev := range p.EventsOn(day) {
		assert.NotEqual(t, "a", ev.ID)
	}

	removed, err = p.DeleteEvent("unknown")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Len(t, p.Events(), 1)
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	day := time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC)
	var requested []string
	p := newTestPlanner(t, ObserverFuncs{OnDeleteRequested: func(id string) { requested = append(requested, id) }},
		model.CalendarEvent{ID: "a", Title: "gym", Date: day},
	)

	ticket, err := p.RequestDeleteEvent("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, requested)
	assert.Contains(t, ticket.Prompt, "gym")
	assert.Len(t, p.Events(), 1, "request alone must not delete")

	require.NoError(t, p.ConfirmDelete(ticket.ID))
	assert.Empty(t, p.Events())

	assert.ErrorIs(t, p.ConfirmDelete(ticket.ID), confirm.ErrUnknownTicket)
}

func TestConfirmDeleteIgnoresOtherActions(t *testing.T) {
	gate := confirm.NewGate()
	p := New(Config{Location: time.UTC, Now: func() time.Time { return fixedNow }, Gate: gate})

	reset := false
	ticket := gate.Request("reset_records", "", "erase all records?", func() error {
		reset = true
		return nil
	})

	assert.ErrorIs(t, p.ConfirmDelete(ticket.ID), confirm.ErrUnknownTicket)
	assert.False(t, reset)
	assert.Equal(t, 1, gate.Pending(), "ticket stays with its owner")
}

func TestCancelDeleteKeepsEvent(t *testing.T) {
	day := time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC)
	p := newTestPlanner(t, nil, model.CalendarEvent{ID: "a", Title: "gym", Date: day})

	ticket, err := p.RequestDeleteEvent("a")
	require.NoError(t, err)
	p.CancelDelete(ticket.ID)

	assert.ErrorIs(t, p.ConfirmDelete(ticket.ID), confirm.ErrUnknownTicket)
	assert.Len(t, p.Events(), 1)
}

func TestSubscriptionEventsAreReadOnly(t *testing.T) {
	day := time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC)
	p := newTestPlanner(t, nil, model.CalendarEvent{ID: "local", Title: "mine", Date: day})
	p.SetExternal("holidays", []model.CalendarEvent{{ID: "h1", Title: "holiday", Date: day}})

	got := p.EventsOn(day)
	require.Len(t, got, 2)
	assert.Equal(t, "local", got[0].ID)
	assert.Equal(t, "holidays", got[1].Source)

	_, err := p.DeleteEvent("h1")
	assert.ErrorIs(t, err, ErrReadOnly)
	_, err = p.RequestDeleteEvent("h1")
	assert.ErrorIs(t, err, ErrReadOnly)

	p.SetExternal("holidays", nil)
	assert.Len(t, p.EventsOn(day), 1)
}

func TestNavigationClearsSelection(t *testing.T) {
	p := newTestPlanner(t, nil)
	p.SelectDay(time.Date(2026, time.October, 20, 0, 0, 0, 0, time.UTC))

	p.NextMonth()
	_, ok := p.Selected()
	assert.False(t, ok)
	y, m := p.Month()
	assert.Equal(t, 2026, y)
	assert.Equal(t, time.November, m)

	p.SelectDay(time.Date(2026, time.November, 2, 0, 0, 0, 0, time.UTC))
	p.PrevMonth()
	p.PrevMonth()
	_, ok = p.Selected()
	assert.False(t, ok)
	y, m = p.Month()
	assert.Equal(t, 2026, y)
	assert.Equal(t, time.September, m)
}

func TestNavigationAcrossYearBoundary(t *testing.T) {
	p := newTestPlanner(t, nil)
	p.ShowMonth(2026, time.December)
	p.NextMonth()
	y, m := p.Month()
	assert.Equal(t, 2027, y)
	assert.Equal(t, time.January, m)

	p.PrevMonth()
	p.PrevMonth()
	y, m = p.Month()
	assert.Equal(t, 2026, y)
	assert.Equal(t, time.November, m)
}

func TestSelectAdjacentMonthDayKeepsDisplayedMonth(t *testing.T) {
	var pressedDay time.Time
	var pressedEvents []model.CalendarEvent
	lead := time.Date(2026, time.September, 28, 0, 0, 0, 0, time.UTC)
	p := newTestPlanner(t, ObserverFuncs{OnDayPressed: func(d time.Time, evs []model.CalendarEvent) {
		pressedDay, pressedEvents = d, evs
	}}, model.CalendarEvent{ID: "x", Title: "x", Date: lead})

	p.SelectDay(lead.Add(13 * time.Hour))

	_, m := p.Month()
	assert.Equal(t, time.October, m)
	assert.Equal(t, "2026-09-28", DayKey(pressedDay))
	require.Len(t, pressedEvents, 1)
}

func TestGoToToday(t *testing.T) {
	p := newTestPlanner(t, nil)
	p.NextMonth()
	p.NextMonth()
	p.GoToToday()

	_, m := p.Month()
	assert.Equal(t, time.October, m)
	sel, ok := p.Selected()
	require.True(t, ok)
	assert.Equal(t, "2026-10-15", DayKey(sel))
}

func TestPressEvent(t *testing.T) {
	var pressed model.CalendarEvent
	p := newTestPlanner(t, ObserverFuncs{OnEventPressed: func(ev model.CalendarEvent) { pressed = ev }},
		model.CalendarEvent{ID: "a", Title: "gym", Date: fixedNow})

	_, ok := p.PressEvent("a")
	assert.True(t, ok)
	assert.Equal(t, "gym", pressed.Title)

	_, ok = p.PressEvent("missing")
	assert.False(t, ok)
}

func TestViewFlags(t *testing.T) {
	day := time.Date(2026, time.October, 20, 0, 0, 0, 0, time.UTC)
	p := newTestPlanner(t, nil,
		model.CalendarEvent{ID: "a", Title: "a", Date: day},
		model.CalendarEvent{ID: "b", Title: "b", Date: day.Add(time.Hour)},
	)
	p.SelectDay(day)

	v := p.View()
	assert.Equal(t, "October 2026", v.Title)
	require.Len(t, v.Grid.Cells, GridCells)

	var today, selected int
	for _, c := range v.Grid.Cells {
		if c.IsToday {
			today++
			assert.Equal(t, "2026-10-15", c.Key)
		}
		if c.IsSelected {
			selected++
			assert.Equal(t, 2, c.EventCount)
		}
	}
	assert.Equal(t, 1, today)
	assert.Equal(t, 1, selected)
	assert.Equal(t, "2026-10-20", v.SelectedKey)
	assert.Len(t, v.SelectedEvents, 2)
}

func TestViewWithoutSelection(t *testing.T) {
	p := newTestPlanner(t, nil)
	p.NextMonth()

	v := p.View()
	assert.Nil(t, v.Selected)
	assert.NotNil(t, v.SelectedEvents)
	assert.Empty(t, v.SelectedEvents)
}

func TestClearEvents(t *testing.T) {
	p := newTestPlanner(t, nil, model.CalendarEvent{ID: "a", Title: "a", Date: fixedNow})
	p.SetExternal("feed", []model.CalendarEvent{{ID: "f", Title: "f", Date: fixedNow}})

	p.ClearEvents()
	assert.Empty(t, p.LocalEvents())
	assert.Len(t, p.Events(), 1)
}
