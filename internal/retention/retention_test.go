package retention

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/quizwise/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEvents struct {
	store.EventRepo

	mu      sync.Mutex
	cutoffs []time.Time
	err     error
}

func (f *fakeEvents) PruneLLMEvents(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, before)
	return 3, f.err
}

func (f *fakeEvents) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cutoffs)
}

func TestPrune_Cutoff(t *testing.T) {
	events := &fakeEvents{}
	p := NewPruner(events, 30, nil)
	now := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	n, err := p.Prune(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, []time.Time{time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}, events.cutoffs)
}

func TestPrune_Error(t *testing.T) {
	p := NewPruner(&fakeEvents{err: errors.New("locked")}, 1, nil)
	_, err := p.Prune(t.Context())
	assert.ErrorContains(t, err, "locked")
}

func TestStart_RunsImmediately(t *testing.T) {
	events := &fakeEvents{}
	s, err := Start(NewPruner(events, 7, nil), time.Hour)
	require.NoError(t, err)
	defer s.Stop()

	assert.Eventually(t, func() bool { return events.calls() >= 1 }, 2*time.Second, 10*time.Millisecond)
}
