// Package confirm implements the two-step "are you sure?" contract used by
// destructive actions: a request issues a Ticket, and only confirming that
// ticket runs the action.
package confirm

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long an unconfirmed ticket stays valid.
const DefaultTTL = 10 * time.Minute

// ErrUnknownTicket is returned for tickets that were never issued, were
// already used, were cancelled, have expired, or belong to another action.
var ErrUnknownTicket = errors.New("confirm: unknown or expired ticket")

// Ticket identifies one pending confirmation.
type Ticket struct {
	ID     string `json:"ticket"`
	Action string `json:"action"`
	Target string `json:"target"`
	Prompt string `json:"prompt"`
}

type pending struct {
	ticket  Ticket
	run     func() error
	expires time.Time
}

// Option configures a Gate.
type Option func(*Gate)

// WithTTL sets how long tickets stay valid. ttl <= 0 keeps DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(g *Gate) {
		if ttl > 0 {
			g.ttl = ttl
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
	}
}

// Gate holds pending confirmations. The zero value is not usable; use NewGate.
type Gate struct {
	mu      sync.Mutex
	pending map[string]pending
	ttl     time.Duration
	now     func() time.Time
}

func NewGate(opts ...Option) *Gate {
	g := &Gate{
		pending: make(map[string]pending),
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Request registers run under a fresh ticket. Nothing happens until
// Confirm is called with the ticket ID. Expired tickets are dropped here.
func (g *Gate) Request(action, target, prompt string, run func() error) Ticket {
	t := Ticket{
		ID:     uuid.NewString(),
		Action: action,
		Target: target,
		Prompt: prompt,
	}
	g.mu.Lock()
	now := g.now()
	g.pruneLocked(now)
	g.pending[t.ID] = pending{ticket: t, run: run, expires: now.Add(g.ttl)}
	g.mu.Unlock()
	return t
}

// Confirm runs the action behind id exactly once.
func (g *Gate) Confirm(id string) (Ticket, error) {
	return g.confirm(id, "")
}

// ConfirmAction is Confirm restricted to tickets issued for action. A ticket
// of another action is left pending.
func (g *Gate) ConfirmAction(id, action string) (Ticket, error) {
	return g.confirm(id, action)
}

func (g *Gate) confirm(id, action string) (Ticket, error) {
	g.mu.Lock()
	p, ok := g.pending[id]
	if ok && action != "" && p.ticket.Action != action {
		g.mu.Unlock()
		return Ticket{}, ErrUnknownTicket
	}
	delete(g.pending, id)
	g.mu.Unlock()

	if !ok || !g.now().Before(p.expires) {
		return Ticket{}, ErrUnknownTicket
	}
	return p.ticket, p.run()
}

func (g *Gate) pruneLocked(now time.Time) {
	for id, p := range g.pending {
		if !now.Before(p.expires) {
			delete(g.pending, id)
		}
	}
}

// Cancel discards a pending ticket. Cancelling an unknown ticket is a no-op.
func (g *Gate) Cancel(id string) {
	g.mu.Lock()
	delete(g.pending, id)
	g.mu.Unlock()
}

// Pending returns the number of outstanding, unexpired tickets.
func (g *Gate) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pruneLocked(g.now())
	return len(g.pending)
}

// Clear drops every outstanding ticket.
func (g *Gate) Clear() {
	g.mu.Lock()
	g.pending = make(map[string]pending)
	g.mu.Unlock()
}
