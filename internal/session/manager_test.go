package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/advert-optimiser/internal/types"
)

func newTestManager(idle time.Duration) *Manager {
	return NewManager(Deps{Structurer: &fakeStructurer{payload: policyAdvisorPayload}, Rewriter: &fakeRewriter{}}, idle)
}

func TestManager_CreateGetDelete(t *testing.T) {
	m := newTestManager(0)

	s := m.Create()
	got, err := m.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, 1, m.Len())

	assert.True(t, m.Delete(s.ID()))
	assert.False(t, m.Delete(s.ID()))

	_, err = m.Get(s.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_SessionsAreIsolated(t *testing.T) {
	m := newTestManager(0)
	a := m.Create()
	b := m.Create()
	require.NotEqual(t, a.ID(), b.ID())

	_, err := a.Extract(t.Context(), "advert")
	require.NoError(t, err)

	assert.False(t, a.Record().IsEmpty())
	assert.True(t, b.Record().IsEmpty())
}

func TestManager_Reap(t *testing.T) {
	m := newTestManager(time.Hour)
	old := m.Create()
	fresh := m.Create()

	old.mu.Lock()
	old.lastActive = time.Now().Add(-2 * time.Hour)
	old.mu.Unlock()

	assert.Equal(t, 1, m.Reap(time.Now()))
	_, err := m.Get(old.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Get(fresh.ID())
	assert.NoError(t, err)

	assert.Equal(t, 0, m.Reap(time.Now()))
}

func TestManager_ReapSparesSessionUsedAfterCollection(t *testing.T) {
	m := newTestManager(time.Hour)
	s := m.Create()

	s.mu.Lock()
	s.lastActive = time.Now().Add(-2 * time.Hour)
	s.mu.Unlock()

	cutoff := time.Now().Add(-time.Hour)
	candidates := m.idleBefore(cutoff)
	require.Equal(t, []uuid.UUID{s.ID()}, candidates)

	// A request lands between collection and removal
	s.mu.Lock()
	s.touch()
	s.mu.Unlock()

	assert.Equal(t, 0, m.removeIdle(candidates, cutoff))
	_, err := m.Get(s.ID())
	assert.NoError(t, err)

	// Already-deleted candidates are skipped
	require.True(t, m.Delete(s.ID()))
	assert.Equal(t, 0, m.removeIdle(candidates, time.Now().Add(time.Hour)))
}

func TestManager_RunReaperStopsOnCancel(t *testing.T) {
	m := newTestManager(time.Millisecond)
	m.Create()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.RunReaper(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return m.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop")
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	m := newTestManager(0)

	var wg sync.WaitGroup
	ids := make([]uuid.UUID, 20)
	for i := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := m.Create()
			ids[i] = s.ID()
			s.ReplaceAll(context.Background(), types.RecordFromMap(map[string]string{types.FieldGrade: "EO"}))
		}()
	}
	wg.Wait()

	assert.Equal(t, len(ids), m.Len())
	for _, id := range ids {
		s, err := m.Get(id)
		require.NoError(t, err)
		assert.Equal(t, "EO", s.Record().Get(types.FieldGrade))
	}
}
