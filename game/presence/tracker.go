// Package presence manages the disconnect grace timers. A disconnected
// player keeps their room slot until the grace period elapses; a
// reconnection inside the window cancels the timer exactly once.
package presence

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gridstrike/battleship/game/service"
)

// Tracker keys one grace timer per disconnected player id. It only
// looks players up by id and never owns player lifetime; eviction is
// delegated to the handler installed by the coordinator.
type Tracker struct {
	mu      sync.Mutex
	grace   time.Duration
	timers  map[string]*time.Timer
	onEvict func(playerID string)
}

// NewTracker returns a tracker with the given grace period.
func NewTracker(grace time.Duration) *Tracker {
	return &Tracker{
		grace:  grace,
		timers: make(map[string]*time.Timer),
	}
}

// SetEvictionHandler installs the callback fired when a grace timer
// expires without reconnection.
func (t *Tracker) SetEvictionHandler(fn func(playerID string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onEvict = fn
}

// OnDisconnect starts the grace timer for the player. If a timer is
// already running for that id this is a no-op.
func (t *Tracker) OnDisconnect(playerID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.timers[playerID]; exists {
		return
	}
	t.timers[playerID] = time.AfterFunc(t.grace, func() {
		t.expire(playerID)
	})
	log.Debug().Str("player", playerID).Dur("grace", t.grace).Msg("grace timer started")
}

// OnReconnect cancels the player's grace timer. If no timer is live
// (the window already expired, or the player was never tracked) it
// returns ErrReconnectWindowExpired and the client must restart via
// matchmaking.
func (t *Tracker) OnReconnect(playerID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	timer, ok := t.timers[playerID]
	if !ok {
		return fmt.Errorf("%w: player %s", service.ErrReconnectWindowExpired, playerID)
	}
	timer.Stop()
	delete(t.timers, playerID)
	log.Debug().Str("player", playerID).Msg("grace timer cancelled")
	return nil
}

// Tracking reports whether a grace timer is live for the player.
func (t *Tracker) Tracking(playerID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.timers[playerID]
	return ok
}

// Stop cancels every live timer. Used on shutdown.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, timer := range t.timers {
		timer.Stop()
		delete(t.timers, id)
	}
}

// expire runs on the timer goroutine. The map entry is re-checked
// because a reconnection may have landed between the timer firing and
// this running; the eviction handler is invoked without the tracker
// lock held, so it can freely call back into OnReconnect or Tracking.
func (t *Tracker) expire(playerID string) {
	t.mu.Lock()
	if _, ok := t.timers[playerID]; !ok {
		t.mu.Unlock()
		return
	}
	delete(t.timers, playerID)
	onEvict := t.onEvict
	t.mu.Unlock()

	log.Info().Str("player", playerID).Msg("grace period expired")
	if onEvict != nil {
		onEvict(playerID)
	}
}
