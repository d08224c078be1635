package session

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/generator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSessionCachesDataset(t *testing.T) {
	m := NewManager(123, testLogger(), nil)
	s := m.Create(context.Background())

	// The dataset is generated once at session start and the same
	// instance is returned on every read
	first := s.Dataset()
	second := s.Dataset()
	assert.Same(t, first, second)
	assert.Equal(t, generator.Generate(123), first)
	assert.Equal(t, uint64(123), s.Seed())
}

func TestSessionRestart(t *testing.T) {
	m := NewManager(123, testLogger(), nil)
	s := m.Create(context.Background())

	before := s.Dataset()
	s.Restart(42)
	after := s.Dataset()

	assert.NotSame(t, before, after)
	assert.Equal(t, uint64(42), s.Seed())
	assert.Equal(t, generator.Generate(42), after)
}

func TestSessionObservers(t *testing.T) {
	m := NewManager(1, testLogger(), nil)
	s := m.Create(context.Background())

	var events []string
	unsubscribe := s.Subscribe(func(event string) {
		events = append(events, event)
	})

	s.Restart(2)
	require.Equal(t, []string{EventDatasetRefresh}, events)

	// After unsubscribe the callback no longer fires
	unsubscribe()
	s.Restart(3)
	assert.Len(t, events, 1)
}

func TestManagerGet(t *testing.T) {
	m := NewManager(1, testLogger(), nil)
	s := m.Create(context.Background())

	got, err := m.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = m.Get("missing")
	assert.Error(t, err)
}

func TestManagerSessionsAreIsolated(t *testing.T) {
	m := NewManager(9, testLogger(), nil)
	a := m.Create(context.Background())
	b := m.Create(context.Background())

	require.NotEqual(t, a.ID(), b.ID())

	// Restarting one session never touches the other
	bBefore := b.Dataset()
	a.Restart(100)
	assert.Same(t, bBefore, b.Dataset())
	assert.Equal(t, uint64(9), b.Seed())
}

func TestManagerRemove(t *testing.T) {
	m := NewManager(1, testLogger(), nil)
	s := m.Create(context.Background())
	require.Equal(t, 1, m.Count())

	m.Remove(context.Background(), s.ID())
	assert.Equal(t, 0, m.Count())
	_, err := m.Get(s.ID())
	assert.Error(t, err)
}
