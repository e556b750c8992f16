package topmind

import (
	"fmt"
	"strings"
	"time"

	"focusplan/internal/confirm"
	"focusplan/internal/model"
)

const actionDeleteItem = "delete_topmind"

// List is the "Top of Mind" collection: the few things that matter most
// right now. Newest items come first.
type List struct {
	now   func() time.Time
	gate  *confirm.Gate
	items []model.TopMindItem
}

func NewList(now func() time.Time, gate *confirm.Gate) *List {
	if now == nil {
		now = time.Now
	}
	if gate == nil {
		gate = confirm.NewGate()
	}
	return &List{now: now, gate: gate}
}

// Items returns the items, newest first.
func (l *List) Items() []model.TopMindItem {
	return append([]model.TopMindItem{}, l.items...)
}

// Add puts a new item at the top of the list.
func (l *List) Add(title, description string) (model.TopMindItem, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.TopMindItem{}, model.Invalid("title", "please enter a title")
	}
	now := l.now()
	it := model.TopMindItem{
		ID:          model.NewID("topmind", now),
		Title:       title,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
	}
	next := make([]model.TopMindItem, 0, len(l.items)+1)
	next = append(next, it)
	l.items = append(next, l.items...)
	return it, nil
}

// Detail returns one item.
func (l *List) Detail(id string) (model.TopMindItem, error) {
	for _, it := range l.items {
		if it.ID == id {
			return it, nil
		}
	}
	return model.TopMindItem{}, fmt.Errorf("top of mind %s: %w", id, model.ErrNotFound)
}

// Delete removes an item; unknown IDs are ignored.
func (l *List) Delete(id string) bool {
	next := make([]model.TopMindItem, 0, len(l.items))
	for _, it := range l.items {
		if it.ID != id {
			next = append(next, it)
		}
	}
	removed := len(next) != len(l.items)
	l.items = next
	return removed
}

func (l *List) RequestDelete(id string) confirm.Ticket {
	return l.gate.Request(actionDeleteItem, id, "delete this item?", func() error {
		l.Delete(id)
		return nil
	})
}

func (l *List) ConfirmDelete(ticketID string) error {
	_, err := l.gate.ConfirmAction(ticketID, actionDeleteItem)
	return err
}

func (l *List) Reset() {
	l.items = nil
}
