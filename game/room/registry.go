// Package room implements the registry that owns room lifetime and the
// player and session indexes over active rooms.
package room

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gridstrike/battleship/game/service"
	"github.com/gridstrike/battleship/game/state"
)

// Registry holds the active rooms. Lookups scan the active set; that
// is O(active rooms) and fine at the target scale of tens of rooms.
//
// Destroyed room ids are quarantined for a cooldown window so an
// in-flight late message referencing a dead room can be told apart
// from a message referencing a room that never existed.
type Registry struct {
	mu       sync.RWMutex
	rooms    map[string]*service.Room
	cooldown map[string]bool
	maxRooms int
	hold     time.Duration
}

// NewRegistry returns an empty registry with the given room ceiling
// and id cooldown window.
func NewRegistry(maxRooms int, cooldown time.Duration) *Registry {
	return &Registry{
		rooms:    make(map[string]*service.Room),
		cooldown: make(map[string]bool),
		maxRooms: maxRooms,
		hold:     cooldown,
	}
}

// Create allocates a fresh room for the pair in the setup phase and
// binds both players' RoomID.
func (r *Registry) Create(a, b *service.Player) (*service.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.rooms) >= r.maxRooms {
		return nil, fmt.Errorf("%w: %d active rooms", service.ErrCapacityExceeded, len(r.rooms))
	}

	room := &service.Room{
		ID:        "room-" + uuid.NewString(),
		Players:   []*service.Player{a, b},
		Phase:     state.RoomSetup,
		CreatedAt: time.Now(),
	}
	a.RoomID = room.ID
	b.RoomID = room.ID
	r.rooms[room.ID] = room

	log.Info().Str("room", room.ID).Msg("room created")
	return room, nil
}

// Get returns the active room with the given id.
func (r *Registry) Get(roomID string) (*service.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", service.ErrRoomNotFound, roomID)
	}
	return room, nil
}

// LookupByPlayer finds the active room holding the player.
func (r *Registry) LookupByPlayer(playerID string) (*service.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, room := range r.rooms {
		if room.Member(playerID) != nil {
			return room, true
		}
	}
	return nil, false
}

// LookupBySession finds the active room holding the transport session.
func (r *Registry) LookupBySession(sessionID string) (*service.Room, *service.Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, room := range r.rooms {
		for _, p := range room.Players {
			if p.SessionID == sessionID {
				return room, p, true
			}
		}
	}
	return nil, nil, false
}

// Destroy removes the room from the active set and quarantines its id.
// Calling it again for the same id is a no-op.
func (r *Registry) Destroy(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.destroyLocked(roomID)
}

func (r *Registry) destroyLocked(roomID string) {
	if _, ok := r.rooms[roomID]; !ok {
		return
	}
	delete(r.rooms, roomID)
	r.cooldown[roomID] = true
	log.Info().Str("room", roomID).Msg("room destroyed")

	// Fire-and-forget cleanup; there is no observable cancellation.
	time.AfterFunc(r.hold, func() {
		r.mu.Lock()
		delete(r.cooldown, roomID)
		r.mu.Unlock()
	})
}

// RemovePlayer takes the player out of their room and destroys it,
// returning the room and the remaining opponent (nil if none).
func (r *Registry) RemovePlayer(playerID string) (*service.Room, *service.Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, room := range r.rooms {
		member := room.Member(playerID)
		if member == nil {
			continue
		}

		remaining := make([]*service.Player, 0, 1)
		for _, p := range room.Players {
			if p.ID != playerID {
				remaining = append(remaining, p)
			}
		}
		room.Players = remaining
		member.RoomID = ""

		var opponent *service.Player
		if len(remaining) == 1 {
			opponent = remaining[0]
		}
		r.destroyLocked(room.ID)
		return room, opponent, true
	}
	return nil, nil, false
}

// InCooldown reports whether the id belongs to a recently destroyed
// room.
func (r *Registry) InCooldown(roomID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cooldown[roomID]
}

// ActiveCount returns the number of active rooms.
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// List returns all active rooms.
func (r *Registry) List() []*service.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]*service.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}
