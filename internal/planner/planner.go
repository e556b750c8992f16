package planner

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"focusplan/internal/confirm"
	appLog "focusplan/internal/log"
	"focusplan/internal/model"
)

// ErrReadOnly is returned when deleting an event that belongs to an ICS
// subscription.
var ErrReadOnly = errors.New("planner: event is read-only")

const actionDeleteEvent = "delete_event"

// Config controls a Planner. Zero values get sensible defaults.
type Config struct {
	// Location is the zone whose calendar days are used for grouping.
	// If nil, time.Local is used.
	Location *time.Location

	// WeekStart is the weekday of the first grid column (default Sunday).
	WeekStart time.Weekday

	// Now returns the current time; defaults to time.Now.
	Now func() time.Time

	// Observer receives user-intent notifications; defaults to NopObserver.
	Observer Observer

	// Gate holds pending delete confirmations. A private gate is created
	// when nil.
	Gate *confirm.Gate
}

// Planner owns the calendar screen state: the flat event collection, the
// displayed month and the selected day. It is not safe for concurrent use;
// callers serialize access.
type Planner struct {
	loc       *time.Location
	weekStart time.Weekday
	now       func() time.Time
	observer  Observer
	gate      *confirm.Gate

	year     int
	month    time.Month
	selected *time.Time

	events   []model.CalendarEvent
	external map[string][]model.CalendarEvent
	buckets  Buckets
}

// New creates a Planner showing the current month with today selected.
func New(cfg Config, events ...model.CalendarEvent) *Planner {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Observer == nil {
		cfg.Observer = NopObserver{}
	}
	if cfg.Gate == nil {
		cfg.Gate = confirm.NewGate()
	}

	p := &Planner{
		loc:       cfg.Location,
		weekStart: cfg.WeekStart % 7,
		now:       cfg.Now,
		observer:  cfg.Observer,
		gate:      cfg.Gate,
		external:  make(map[string][]model.CalendarEvent),
	}

	today := p.today()
	p.year, p.month = today.Year(), today.Month()
	p.selected = &today
	p.SetEvents(events)
	return p
}

func (p *Planner) today() time.Time {
	return StartOfDay(p.now(), p.loc)
}

// Location returns the zone used for day grouping.
func (p *Planner) Location() *time.Location { return p.loc }

// WeekStart returns the first weekday of the grid.
func (p *Planner) WeekStart() time.Weekday { return p.weekStart }

// SetWeekStart changes the first grid column. Selection is kept.
func (p *Planner) SetWeekStart(w time.Weekday) {
	p.weekStart = w % 7
}

// SetObserver replaces the observer; nil installs NopObserver.
func (p *Planner) SetObserver(o Observer) {
	if o == nil {
		o = NopObserver{}
	}
	p.observer = o
}

// Month returns the displayed year and month.
func (p *Planner) Month() (int, time.Month) {
	return p.year, p.month
}

// Selected returns the selected day, if any.
func (p *Planner) Selected() (time.Time, bool) {
	if p.selected == nil {
		return time.Time{}, false
	}
	return *p.selected, true
}

// SetEvents replaces the local event collection.
func (p *Planner) SetEvents(events []model.CalendarEvent) {
	p.events = slices.Clone(events)
	p.rebuild()
}

// LocalEvents returns a copy of the locally created events.
func (p *Planner) LocalEvents() []model.CalendarEvent {
	return slices.Clone(p.events)
}

// Events returns every event: local ones first, then subscription events
// ordered by source ID.
func (p *Planner) Events() []model.CalendarEvent {
	out := make([]model.CalendarEvent, 0, p.buckets.Len())
	out = append(out, p.events...)
	for _, src := range p.sources() {
		out = append(out, p.external[src]...)
	}
	return out
}

// SetExternal replaces the events of one subscription source. An empty
// slice removes the source.
func (p *Planner) SetExternal(source string, events []model.CalendarEvent) {
	if len(events) == 0 {
		delete(p.external, source)
	} else {
		evs := make([]model.CalendarEvent, len(events))
		for i, ev := range events {
			ev.Source = source
			evs[i] = ev
		}
		p.external[source] = evs
	}
	p.rebuild()
}

func (p *Planner) sources() []string {
	srcs := make([]string, 0, len(p.external))
	for s := range p.external {
		srcs = append(srcs, s)
	}
	sort.Strings(srcs)
	return srcs
}

// rebuild re-derives the day buckets from the full collection.
func (p *Planner) rebuild() {
	p.buckets = BucketEvents(p.Events(), p.loc)
}

// EventsOn returns the events on t's day; never nil.
func (p *Planner) EventsOn(t time.Time) []model.CalendarEvent {
	return p.buckets.Lookup(t)
}

// Event looks up an event by ID.
func (p *Planner) Event(id string) (model.CalendarEvent, bool) {
	for _, ev := range p.Events() {
		if ev.ID == id {
			return ev, true
		}
	}
	return model.CalendarEvent{}, false
}

// AddEvent validates and appends a new event. The title must be non-blank
// after trimming. The date defaults to the selected day, or today when no
// day is selected.
func (p *Planner) AddEvent(in NewEvent) (model.CalendarEvent, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return model.CalendarEvent{}, model.Invalid("title", "please enter an event title")
	}

	var date time.Time
	switch {
	case in.Date != nil:
		date = in.Date.In(p.loc)
	case p.selected != nil:
		date = *p.selected
	default:
		date = p.today()
	}

	req := NewEvent{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Date:        &date,
	}
	p.observer.AddRequested(req)

	ev := model.CalendarEvent{
		ID:          model.NewID("event", p.now()),
		Title:       req.Title,
		Description: req.Description,
		Date:        date,
	}
	// Copy-on-write: never mutate a slice a previous reader may hold.
	p.events = append(slices.Clip(p.events), ev)
	p.rebuild()

	appLog.Debug("planner event added", "id", ev.ID, "day", DayKey(date))
	return ev, nil
}

// DeleteEvent removes the local event with the given ID. It reports whether
// anything was removed; an unknown ID is a no-op.
func (p *Planner) DeleteEvent(id string) (bool, error) {
	if ev, ok := p.Event(id); ok && ev.ReadOnly() {
		return false, fmt.Errorf("delete %s: %w", id, ErrReadOnly)
	}

	next := make([]model.CalendarEvent, 0, len(p.events))
	for _, ev := range p.events {
		if ev.ID != id {
			next = append(next, ev)
		}
	}
	removed := len(next) != len(p.events)
	p.events = next
	p.rebuild()

	if removed {
		appLog.Debug("planner event deleted", "id", id)
	}
	return removed, nil
}

// RequestDeleteEvent starts the two-step delete. The event is removed only
// when the returned ticket is confirmed.
func (p *Planner) RequestDeleteEvent(id string) (confirm.Ticket, error) {
	prompt := "delete this event?"
	if ev, ok := p.Event(id); ok {
		if ev.ReadOnly() {
			return confirm.Ticket{}, fmt.Errorf("delete %s: %w", id, ErrReadOnly)
		}
		prompt = fmt.Sprintf("delete %q?", ev.Title)
	}

	p.observer.DeleteRequested(id)
	return p.gate.Request(actionDeleteEvent, id, prompt, func() error {
		_, err := p.DeleteEvent(id)
		return err
	}), nil
}

// ConfirmDelete runs a pending delete.
func (p *Planner) ConfirmDelete(ticketID string) error {
	_, err := p.gate.ConfirmAction(ticketID, actionDeleteEvent)
	return err
}

// CancelDelete abandons a pending delete.
func (p *Planner) CancelDelete(ticketID string) {
	p.gate.Cancel(ticketID)
}

// ClearEvents drops every local event. Subscription events stay.
func (p *Planner) ClearEvents() {
	p.events = nil
	p.rebuild()
}

// NextMonth shows the following month and clears the selection.
func (p *Planner) NextMonth() {
	p.shiftMonth(1)
}

// PrevMonth shows the preceding month and clears the selection.
func (p *Planner) PrevMonth() {
	p.shiftMonth(-1)
}

func (p *Planner) shiftMonth(delta int) {
	first := time.Date(p.year, p.month+time.Month(delta), 1, 0, 0, 0, 0, p.loc)
	p.year, p.month = first.Year(), first.Month()
	p.selected = nil
}

// ShowMonth jumps to an arbitrary month and clears the selection.
func (p *Planner) ShowMonth(year int, month time.Month) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, p.loc)
	p.year, p.month = first.Year(), first.Month()
	p.selected = nil
}

// GoToToday shows the current month with today selected.
func (p *Planner) GoToToday() {
	today := p.today()
	p.year, p.month = today.Year(), today.Month()
	p.selected = &today
}

// SelectDay selects t's day and notifies the observer with that day's
// events. The displayed month does not change, even for days that belong
// to an adjacent month.
func (p *Planner) SelectDay(t time.Time) []model.CalendarEvent {
	day := StartOfDay(t, p.loc)
	p.selected = &day
	events := p.buckets.Lookup(day)
	p.observer.DayPressed(day, events)
	return events
}

// ClearSelection removes the selected day.
func (p *Planner) ClearSelection() {
	p.selected = nil
}

// PressEvent notifies the observer that an event was pressed.
func (p *Planner) PressEvent(id string) (model.CalendarEvent, bool) {
	ev, ok := p.Event(id)
	if ok {
		p.observer.EventPressed(ev)
	}
	return ev, ok
}

// MonthView is the derived state needed to render the calendar page.
type MonthView struct {
	Year           int                   `json:"year"`
	Month          time.Month            `json:"month"`
	Title          string                `json:"title"`
	Weekdays       []string              `json:"weekdays"`
	Grid           MonthGrid             `json:"grid"`
	Selected       *time.Time            `json:"selected,omitempty"`
	SelectedKey    string                `json:"selected_key,omitempty"`
	SelectedEvents []model.CalendarEvent `json:"selected_events"`
}

// View derives the month page from the current state.
func (p *Planner) View() MonthView {
	grid := BuildMonthGrid(p.year, p.month, p.weekStart, p.loc)
	todayKey := DayKey(p.today())

	var selectedKey string
	if p.selected != nil {
		selectedKey = DayKey(*p.selected)
	}

	for i := range grid.Cells {
		c := &grid.Cells[i]
		c.IsToday = c.Key == todayKey
		c.IsSelected = c.Key == selectedKey
		c.EventCount = p.buckets.CountKey(c.Key)
	}

	v := MonthView{
		Year:           p.year,
		Month:          p.month,
		Title:          fmt.Sprintf("%s %d", p.month, p.year),
		Weekdays:       WeekdayLabels(p.weekStart),
		Grid:           grid,
		SelectedEvents: []model.CalendarEvent{},
	}
	if p.selected != nil {
		sel := *p.selected
		v.Selected = &sel
		v.SelectedKey = selectedKey
		v.SelectedEvents = p.buckets.LookupKey(selectedKey)
	}
	return v
}
