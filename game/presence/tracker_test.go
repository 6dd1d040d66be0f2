package presence

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridstrike/battleship/game/service"
)

// evictRecorder collects eviction callbacks so tests can assert on
// them without races.
type evictRecorder struct {
	mu      sync.Mutex
	evicted []string
}

func (r *evictRecorder) record(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evicted = append(r.evicted, playerID)
}

func (r *evictRecorder) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.evicted...)
}

func TestReconnectInsideWindow(t *testing.T) {
	rec := &evictRecorder{}
	tr := NewTracker(time.Second)
	defer tr.Stop()
	tr.SetEvictionHandler(rec.record)

	tr.OnDisconnect("a")
	require.True(t, tr.Tracking("a"))

	require.NoError(t, tr.OnReconnect("a"))
	assert.False(t, tr.Tracking("a"))

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, rec.ids(), "cancelled timer must not evict")
}

func TestEvictionAfterGrace(t *testing.T) {
	rec := &evictRecorder{}
	tr := NewTracker(20 * time.Millisecond)
	defer tr.Stop()
	tr.SetEvictionHandler(rec.record)

	tr.OnDisconnect("a")

	assert.Eventually(t, func() bool {
		ids := rec.ids()
		return len(ids) == 1 && ids[0] == "a"
	}, time.Second, 5*time.Millisecond)
	assert.False(t, tr.Tracking("a"))
}

func TestReconnectAfterExpiry(t *testing.T) {
	tr := NewTracker(10 * time.Millisecond)
	defer tr.Stop()
	tr.SetEvictionHandler(func(string) {})

	tr.OnDisconnect("a")
	require.Eventually(t, func() bool {
		return !tr.Tracking("a")
	}, time.Second, 5*time.Millisecond)

	err := tr.OnReconnect("a")
	assert.ErrorIs(t, err, service.ErrReconnectWindowExpired)
}

func TestReconnectNeverTracked(t *testing.T) {
	tr := NewTracker(time.Second)
	defer tr.Stop()

	err := tr.OnReconnect("ghost")
	assert.ErrorIs(t, err, service.ErrReconnectWindowExpired)
}

func TestDuplicateDisconnectKeepsOriginalTimer(t *testing.T) {
	rec := &evictRecorder{}
	tr := NewTracker(30 * time.Millisecond)
	defer tr.Stop()
	tr.SetEvictionHandler(rec.record)

	tr.OnDisconnect("a")
	time.Sleep(15 * time.Millisecond)
	tr.OnDisconnect("a") // must not reset the window

	assert.Eventually(t, func() bool {
		return len(rec.ids()) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestStopCancelsAllTimers(t *testing.T) {
	rec := &evictRecorder{}
	tr := NewTracker(20 * time.Millisecond)
	tr.SetEvictionHandler(rec.record)

	tr.OnDisconnect("a")
	tr.OnDisconnect("b")
	tr.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, rec.ids())
}
