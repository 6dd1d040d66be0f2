// Package match implements the FIFO matchmaking queue. Players wait in
// arrival order and the two longest-waiting are paired first; enqueueing
// an already-queued player id is a no-op.
package match

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/gridstrike/battleship/game/service"
)

// Queue is a FIFO matchmaking queue with dedup by player id. The
// linear membership scan is fine at expected queue sizes (a handful of
// waiting players).
type Queue struct {
	mu      sync.Mutex
	waiting []*service.Player
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends the player unless already present. Returns false if
// the player was already queued.
func (q *Queue) Enqueue(p *service.Player) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, w := range q.waiting {
		if w.ID == p.ID {
			return false
		}
	}
	q.waiting = append(q.waiting, p)
	return true
}

// Remove takes the player out of the queue. Idempotent; returns false
// if the player was not queued.
func (q *Queue) Remove(playerID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, w := range q.waiting {
		if w.ID == playerID {
			q.waiting = append(q.waiting[:i], q.waiting[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of queued players.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting)
}

// DequeuePair removes and returns the two longest-waiting players.
func (q *Queue) DequeuePair() (*service.Player, *service.Player, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.waiting) < 2 {
		return nil, nil, fmt.Errorf("%w: %d queued", service.ErrInsufficientPlayers, len(q.waiting))
	}
	first, second := q.waiting[0], q.waiting[1]
	q.waiting = append([]*service.Player{}, q.waiting[2:]...)
	log.Debug().Str("first", first.ID).Str("second", second.ID).Msg("pair dequeued")
	return first, second, nil
}

// RequeueFront restores a dequeued pair at the head of the queue in
// their original order.
func (q *Queue) RequeueFront(first, second *service.Player) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.waiting = append([]*service.Player{first, second}, q.waiting...)
}

// Snapshot returns the queued player ids in waiting order.
func (q *Queue) Snapshot() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	ids := make([]string, 0, len(q.waiting))
	for _, w := range q.waiting {
		ids = append(ids, w.ID)
	}
	return ids
}
