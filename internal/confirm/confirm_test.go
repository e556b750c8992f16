package confirm

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmRunsOnce(t *testing.T) {
	g := NewGate()
	calls := 0
	ticket := g.Request("delete_event", "event-1", "delete this event?", func() error {
		calls++
		return nil
	})

	assert.Equal(t, 0, calls, "request must not run the action")
	assert.Equal(t, 1, g.Pending())

	got, err := g.Confirm(ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "event-1", got.Target)
	assert.Equal(t, 1, calls)

	_, err = g.Confirm(ticket.ID)
	assert.ErrorIs(t, err, ErrUnknownTicket)
	assert.Equal(t, 1, calls)
}

func TestCancelDiscards(t *testing.T) {
	g := NewGate()
	ran := false
	ticket := g.Request("reset", "", "erase all records?", func() error {
		ran = true
		return nil
	})

	g.Cancel(ticket.ID)
	g.Cancel("never-issued")

	_, err := g.Confirm(ticket.ID)
	assert.ErrorIs(t, err, ErrUnknownTicket)
	assert.False(t, ran)
	assert.Equal(t, 0, g.Pending())
}

func TestConfirmPropagatesActionError(t *testing.T) {
	g := NewGate()
	boom := errors.New("boom")
	ticket := g.Request("delete_task", "task-1", "", func() error { return boom })

	_, err := g.Confirm(ticket.ID)
	assert.ErrorIs(t, err, boom)
}

func TestClear(t *testing.T) {
	g := NewGate()
	g.Request("a", "1", "", func() error { return nil })
	g.Request("b", "2", "", func() error { return nil })
	g.Clear()
	assert.Equal(t, 0, g.Pending())
}

func TestExpiredTicketsAreRejectedAndPruned(t *testing.T) {
	now := time.Date(2026, time.October, 15, 10, 0, 0, 0, time.UTC)
	g := NewGate(WithTTL(time.Minute), WithClock(func() time.Time { return now }))

	ran := false
	stale := g.Request("delete_event", "event-1", "", func() error {
		ran = true
		return nil
	})
	now = now.Add(time.Minute)

	_, err := g.Confirm(stale.ID)
	assert.ErrorIs(t, err, ErrUnknownTicket)
	assert.False(t, ran)

	for i := 0; i < 5; i++ {
		g.Request("delete_task", "task", "", func() error { return nil })
	}
	now = now.Add(2 * time.Minute)
	assert.Equal(t, 0, g.Pending())

	fresh := g.Request("delete_task", "task", "", func() error { return nil })
	assert.Equal(t, 1, g.Pending())
	_, err = g.Confirm(fresh.ID)
	assert.NoError(t, err)
}

func TestConfirmActionKeepsForeignTickets(t *testing.T) {
	g := NewGate()
	ran := false
	reset := g.Request("reset_records", "", "", func() error {
		ran = true
		return nil
	})

	_, err := g.ConfirmAction(reset.ID, "delete_event")
	assert.ErrorIs(t, err, ErrUnknownTicket)
	assert.False(t, ran)
	assert.Equal(t, 1, g.Pending())

	_, err = g.ConfirmAction(reset.ID, "reset_records")
	require.NoError(t, err)
	assert.True(t, ran)
}
