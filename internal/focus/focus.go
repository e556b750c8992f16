// Package focus holds the Focus to-do list: tasks that can be added,
// edited, deleted after confirmation, and started as timed focus sessions.
package focus

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"focusplan/internal/confirm"
	appLog "focusplan/internal/log"
	"focusplan/internal/model"
)

const actionDeleteTask = "delete_task"

// Session is a running focus session on one task.
type Session struct {
	ID        string     `json:"id"`
	Task      model.Task `json:"task"`
	StartedAt time.Time  `json:"started_at"`
}

// List owns the task collection. It is not safe for concurrent use.
type List struct {
	now      func() time.Time
	gate     *confirm.Gate
	tasks    []model.Task
	sessions map[string]Session
}

// NewList creates a list holding tasks. now and gate may be nil.
func NewList(now func() time.Time, gate *confirm.Gate, tasks ...model.Task) *List {
	if now == nil {
		now = time.Now
	}
	if gate == nil {
		gate = confirm.NewGate()
	}
	return &List{
		now:      now,
		gate:     gate,
		tasks:    slices.Clone(tasks),
		sessions: make(map[string]Session),
	}
}

// SeedTasks returns the example tasks a fresh install starts with.
func SeedTasks(loc *time.Location) []model.Task {
	if loc == nil {
		loc = time.Local
	}
	return []model.Task{
		{ID: "1", Title: "Finish project report", Description: "Summarize this week's progress and next week's plan", CreatedAt: time.Date(2024, time.May, 18, 0, 0, 0, 0, loc)},
		{ID: "2", Title: "Work out for 30 minutes", Description: "Cardio and strength training", CreatedAt: time.Date(2024, time.May, 18, 0, 0, 0, 0, loc)},
		{ID: "3", Title: "Learn React Native", Description: "Component lifecycle and state management", CreatedAt: time.Date(2024, time.May, 17, 0, 0, 0, 0, loc)},
	}
}

// Tasks returns a copy of the task list in insertion order.
func (l *List) Tasks() []model.Task {
	return append([]model.Task{}, l.tasks...)
}

// Get looks a task up by ID.
func (l *List) Get(id string) (model.Task, bool) {
	i := l.index(id)
	if i < 0 {
		return model.Task{}, false
	}
	return l.tasks[i], true
}

func (l *List) index(id string) int {
	return slices.IndexFunc(l.tasks, func(t model.Task) bool { return t.ID == id })
}

// Add appends a task. The title is required.
func (l *List) Add(title, description string) (model.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Task{}, model.Invalid("title", "please enter a task title")
	}
	now := l.now()
	t := model.Task{
		ID:          model.NewID("task", now),
		Title:       title,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
	}
	l.tasks = append(slices.Clip(l.tasks), t)
	appLog.Debug("focus task added", "id", t.ID)
	return t, nil
}

// Edit replaces a task's title and description.
func (l *List) Edit(id, title, description string) (model.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Task{}, model.Invalid("title", "please enter a task title")
	}
	i := l.index(id)
	if i < 0 {
		return model.Task{}, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}

	next := slices.Clone(l.tasks)
	next[i].Title = title
	next[i].Description = strings.TrimSpace(description)
	l.tasks = next
	return next[i], nil
}

// Delete removes a task; an unknown ID is a no-op.
func (l *List) Delete(id string) bool {
	next := make([]model.Task, 0, len(l.tasks))
	for _, t := range l.tasks {
		if t.ID != id {
			next = append(next, t)
		}
	}
	removed := len(next) != len(l.tasks)
	l.tasks = next
	return removed
}

// RequestDelete issues a confirmation ticket for deleting id.
func (l *List) RequestDelete(id string) confirm.Ticket {
	prompt := "delete this task?"
	if t, ok := l.Get(id); ok {
		prompt = fmt.Sprintf("delete %q?", t.Title)
	}
	return l.gate.Request(actionDeleteTask, id, prompt, func() error {
		l.Delete(id)
		return nil
	})
}

// ConfirmDelete runs a pending delete.
func (l *List) ConfirmDelete(ticketID string) error {
	_, err := l.gate.ConfirmAction(ticketID, actionDeleteTask)
	return err
}

// Start opens a focus session on a task.
func (l *List) Start(id string) (Session, error) {
	t, ok := l.Get(id)
	if !ok {
		return Session{}, fmt.Errorf("start task %s: %w", id, model.ErrNotFound)
	}
	now := l.now()
	s := Session{
		ID:        model.NewID("session", now),
		Task:      t,
		StartedAt: now,
	}
	l.sessions[s.ID] = s
	appLog.Info("focus session started", "session", s.ID, "task", t.Title)
	return s, nil
}

// Sessions returns the running sessions, oldest first.
func (l *List) Sessions() []Session {
	out := make([]Session, 0, len(l.sessions))
	for _, s := range l.sessions {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b Session) int { return a.StartedAt.Compare(b.StartedAt) })
	return out
}

// Finish closes a session and returns the focus sample it produced,
// rounded down to whole minutes.
func (l *List) Finish(sessionID string) (model.FocusSample, error) {
	s, ok := l.sessions[sessionID]
	if !ok {
		return model.FocusSample{}, fmt.Errorf("session %s: %w", sessionID, model.ErrNotFound)
	}
	delete(l.sessions, sessionID)

	end := l.now()
	minutes := int(end.Sub(s.StartedAt) / time.Minute)
	if minutes < 0 {
		minutes = 0
	}
	appLog.Info("focus session finished", "session", s.ID, "minutes", minutes)
	return model.FocusSample{
		ID:       s.ID,
		Label:    s.Task.Title,
		Minutes:  minutes,
		Recorded: s.StartedAt,
	}, nil
}

// Reset drops every task and running session.
func (l *List) Reset() {
	l.tasks = nil
	l.sessions = make(map[string]Session)
}
