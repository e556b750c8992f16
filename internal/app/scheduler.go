package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	appLog "focusplan/internal/log"
)

const refreshTimeout = 2 * time.Minute

// Scheduler refreshes subscriptions on a cron schedule.
type Scheduler struct {
	app  *App
	cron *cron.Cron

	mu       sync.Mutex
	entry    cron.EntryID
	schedule string
}

// NewScheduler registers the refresh job on schedule (standard 5-field cron or @every).
func NewScheduler(a *App, schedule string) (*Scheduler, error) {
	s := &Scheduler{app: a, cron: cron.New()}
	if err := s.Reschedule(schedule); err != nil {
		return nil, err
	}
	return s, nil
}

// Reschedule replaces the refresh job's schedule. It may be called while
// the scheduler runs; an invalid schedule keeps the current one.
func (s *Scheduler) Reschedule(schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entry != 0 && schedule == s.schedule {
		return nil
	}

	id, err := s.cron.AddFunc(schedule, s.refresh)
	if err != nil {
		return fmt.Errorf("refresh schedule %q: %w", schedule, err)
	}
	if s.entry != 0 {
		s.cron.Remove(s.entry)
		appLog.Info("refresh schedule changed", "from", s.schedule, "to", schedule)
	}
	s.entry, s.schedule = id, schedule
	return nil
}

// Schedule returns the active schedule.
func (s *Scheduler) Schedule() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schedule
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	if err := s.app.RefreshSubscriptions(ctx); err != nil {
		appLog.Error("scheduled refresh failed", err)
	}
}

// Run refreshes once, then follows the schedule until ctx is done. It waits
// for a running job to finish before returning.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.app.RefreshSubscriptions(ctx); err != nil {
		appLog.Error("initial refresh failed", err)
	}

	s.cron.Start()
	appLog.Info("refresh scheduler started", "jobs", len(s.cron.Entries()))

	<-ctx.Done()
	<-s.cron.Stop().Done()
	appLog.Info("refresh scheduler stopped")
	return nil
}
