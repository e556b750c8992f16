// Package app wires every screen's state into one owner. Each screen's
// logic stays single-threaded; App serializes callers (HTTP handlers, the
// refresh scheduler) behind one mutex.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"focusplan/internal/config"
	"focusplan/internal/confirm"
	"focusplan/internal/focus"
	"focusplan/internal/ics"
	appLog "focusplan/internal/log"
	"focusplan/internal/model"
	"focusplan/internal/planner"
	"focusplan/internal/profile"
	"focusplan/internal/stats"
	"focusplan/internal/topmind"
)

// Options configures an App.
type Options struct {
	Location  *time.Location
	WeekStart time.Weekday
	Now       func() time.Time
	Observer  planner.Observer

	Username string
	Theme    string

	// SeedExamples loads the example tasks and focus samples.
	SeedExamples bool

	TrendDays     int
	Subscriptions []ics.Source
	CacheDir      string
	HTTPClient    *http.Client
}

// OptionsFromConfig maps a loaded config onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	loc, err := cfg.Location()
	if err != nil {
		appLog.Error("unknown timezone; falling back to local", err, "name", cfg.Timezone)
	}
	return Options{
		Location:      loc,
		WeekStart:     cfg.Weekday(),
		Username:      cfg.Username,
		Theme:         cfg.ThemeColor,
		SeedExamples:  cfg.SeedExamples,
		TrendDays:     cfg.TrendDays,
		Subscriptions: sourcesFromConfig(cfg.Subscriptions),
	}
}

func sourcesFromConfig(subs []config.SubscriptionConfig) []ics.Source {
	out := make([]ics.Source, 0, len(subs))
	for _, s := range subs {
		if s.URL == "" {
			continue
		}
		out = append(out, ics.Source{ID: s.ID, URL: s.URL})
	}
	return out
}

// State exposes the screens to Update/View callbacks. It must not be
// retained after the callback returns.
type State struct {
	Planner *planner.Planner
	Tasks   *focus.List
	TopMind *topmind.List
	Profile *profile.Profile

	app *App
}

// Samples returns the recorded focus samples.
func (s *State) Samples() []model.FocusSample {
	return slices.Clone(s.app.samples)
}

// RecordSample appends a finished focus sample.
func (s *State) RecordSample(sample model.FocusSample) {
	s.app.samples = append(slices.Clip(s.app.samples), sample)
}

// FinishSession closes a focus session and records its sample.
func (s *State) FinishSession(sessionID string) (model.FocusSample, error) {
	sample, err := s.Tasks.Finish(sessionID)
	if err != nil {
		return model.FocusSample{}, err
	}
	s.RecordSample(sample)
	return sample, nil
}

// Distribution aggregates recorded samples by label.
func (s *State) Distribution() stats.DistributionResult {
	return stats.Distribution(stats.GroupByLabel(s.app.samples))
}

// Trend summarizes the last days of recorded focus time. days <= 0 uses
// the configured window.
func (s *State) Trend(days int) stats.TrendSummary {
	if days <= 0 {
		days = s.app.opts.TrendDays
	}
	byDay := stats.MinutesByDay(s.app.samples, s.app.opts.Location)
	return stats.Trend(stats.LastNDays(byDay, s.app.now().In(s.app.opts.Location), days))
}

// App owns all user state for one process.
type App struct {
	mu    sync.Mutex
	opts  Options
	gate  *confirm.Gate
	state State

	samples []model.FocusSample

	fetcher *ics.Fetcher
	// feeds keeps the parsed events of each subscription so that they can
	// be expanded again when the displayed month changes.
	feeds         map[string][]ics.ParsedEvent
	expandedYear  int
	expandedMonth time.Month
}

// New builds an App from opts.
func New(opts Options) *App {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TrendDays <= 0 {
		opts.TrendDays = 30
	}

	a := &App{
		opts:    opts,
		gate:    confirm.NewGate(),
		fetcher: ics.NewFetcher(opts.CacheDir, opts.HTTPClient),
		feeds:   make(map[string][]ics.ParsedEvent),
	}

	var seedTasks []model.Task
	if opts.SeedExamples {
		seedTasks = focus.SeedTasks(opts.Location)
		a.samples = seedSamples(opts.Now())
	}

	a.state = State{
		Planner: planner.New(planner.Config{
			Location:  opts.Location,
			WeekStart: opts.WeekStart,
			Now:       opts.Now,
			Observer:  opts.Observer,
			Gate:      a.gate,
		}),
		Tasks:   focus.NewList(opts.Now, a.gate, seedTasks...),
		TopMind: topmind.NewList(opts.Now, a.gate),
		app:     a,
	}
	a.state.Profile = profile.New(opts.Username, opts.Theme, profile.ResetFunc(a.resetRecords), a.gate)
	return a
}

func seedSamples(now time.Time) []model.FocusSample {
	return []model.FocusSample{
		{ID: "1", Label: "Project work", Minutes: 120, Recorded: now},
		{ID: "2", Label: "Study", Minutes: 90, Recorded: now},
		{ID: "3", Label: "Meetings", Minutes: 60, Recorded: now},
	}
}

func (a *App) now() time.Time { return a.opts.Now() }

// Location returns the zone used for calendar days.
func (a *App) Location() *time.Location { return a.opts.Location }

// Update runs fn with exclusive access to the state. Subscription events
// follow the displayed month afterwards.
func (a *App) Update(fn func(s *State) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	err := fn(&a.state)
	if y, m := a.state.Planner.Month(); y != a.expandedYear || m != a.expandedMonth {
		a.expandFeedsLocked()
	}
	return err
}

// View is Update for read-only callers.
func (a *App) View(fn func(s *State)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn(&a.state)
}

// Confirm runs any pending confirmation: event, task and top-of-mind
// deletes as well as the profile reset share one ticket space.
func (a *App) Confirm(ticketID string) (confirm.Ticket, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gate.Confirm(ticketID)
}

// Cancel abandons a pending confirmation.
func (a *App) Cancel(ticketID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.gate.Cancel(ticketID)
}

// resetRecords erases every user record. It runs from a confirmed ticket,
// so a.mu is already held.
func (a *App) resetRecords() error {
	a.state.Planner.ClearEvents()
	a.state.Tasks.Reset()
	a.state.TopMind.Reset()
	a.samples = nil
	a.gate.Clear()
	return nil
}

// ApplyConfig applies the settings that can change at runtime.
func (a *App) ApplyConfig(cfg *config.Config) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.state.Planner.SetWeekStart(cfg.Weekday())
	if cfg.TrendDays > 0 {
		a.opts.TrendDays = cfg.TrendDays
	}
	a.opts.Subscriptions = sourcesFromConfig(cfg.Subscriptions)
	a.dropRemovedFeedsLocked()
	appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))
}

// Subscriptions returns the configured ICS sources.
func (a *App) Subscriptions() []ics.Source {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.opts.Subscriptions)
}

// RefreshSubscriptions fetches every subscription and replaces its events
// in the planner. Network work happens without holding the state lock.
func (a *App) RefreshSubscriptions(ctx context.Context) error {
	a.mu.Lock()
	sources := slices.Clone(a.opts.Subscriptions)
	a.dropRemovedFeedsLocked()
	a.mu.Unlock()

	if len(sources) == 0 {
		return nil
	}

	results, errs := a.fetcher.FetchAll(ctx, sources)
	parsed := make(map[string][]ics.ParsedEvent, len(results))
	for _, res := range results {
		evs, err := ics.ParseICS(res.Source, res.Body, a.opts.Location)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		parsed[res.Source.ID] = evs
	}

	a.mu.Lock()
	for id, evs := range parsed {
		a.feeds[id] = evs
	}
	// The config may have changed while fetching.
	a.dropRemovedFeedsLocked()
	errs = append(errs, a.expandFeedsLocked()...)
	a.mu.Unlock()

	appLog.Info("subscriptions refreshed", "sources", len(sources), "updated", len(parsed), "errors", len(errs))
	return errors.Join(errs...)
}

// dropRemovedFeedsLocked forgets feeds whose source is no longer configured
// and removes their events from the planner.
func (a *App) dropRemovedFeedsLocked() {
	for id := range a.feeds {
		if !slices.ContainsFunc(a.opts.Subscriptions, func(s ics.Source) bool { return s.ID == id }) {
			delete(a.feeds, id)
			a.state.Planner.SetExternal(id, nil)
			appLog.Info("subscription removed", "id", id)
		}
	}
}

// expandFeedsLocked expands every feed over the displayed month plus one
// month on each side.
func (a *App) expandFeedsLocked() []error {
	year, month := a.state.Planner.Month()
	a.expandedYear, a.expandedMonth = year, month

	loc := a.opts.Location
	window := ics.Window{
		Location: loc,
		Start:    time.Date(year, month-1, 1, 0, 0, 0, 0, loc),
		End:      time.Date(year, month+2, 1, 0, 0, 0, 0, loc),
	}

	var errs []error
	for id, evs := range a.feeds {
		res, err := ics.ExpandOccurrences(evs, window)
		if err != nil {
			errs = append(errs, fmt.Errorf("expand %s: %w", id, err))
			continue
		}
		if len(res.Truncated) > 0 {
			appLog.Warn("subscription occurrences truncated", "id", id, "uids", res.Truncated)
		}
		a.state.Planner.SetExternal(id, ics.ToCalendarEvents(res.Occurrences))
	}
	return errs
}
