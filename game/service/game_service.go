package service

import (
	"context"

	"github.com/gridstrike/battleship/game/engine"
)

// GameService defines every inbound intent the transport layer can
// deliver, plus the read-only snapshots the HTTP API serves.
type GameService interface {
	// Join registers the player, queues them for matchmaking, and
	// starts a match when two players are queued and capacity allows.
	Join(ctx context.Context, sessionID, playerID, name string) error

	// PlaceShips validates and records a player's fleet. When both
	// players are ready the room advances to playing.
	PlaceShips(ctx context.Context, sessionID string, placements []ShipPlacement) error

	// Attack resolves an attack by the session's player against their
	// opponent. Only accepted while the room is playing and it is the
	// attacker's turn.
	Attack(ctx context.Context, sessionID string, target engine.Coordinate) (*AttackOutcome, error)

	// Disconnect handles a dropped connection: queued players are
	// removed outright, in-room players get a grace period.
	Disconnect(sessionID string)

	// Reconnect rebinds a player to a new transport session within the
	// grace period.
	Reconnect(ctx context.Context, newSessionID, playerID string) error

	// SendMessage relays a direct message to another player.
	SendMessage(ctx context.Context, sessionID, recipientID, message string) error

	// Broadcast relays a message to every connected client.
	Broadcast(ctx context.Context, sessionID, message string) error

	// Rooms returns snapshots of all active rooms.
	Rooms() []*RoomInfo

	// Queue returns a snapshot of the matchmaking queue.
	Queue() *QueueInfo
}

// MatchQueue holds waiting players in arrival order.
type MatchQueue interface {
	// Enqueue appends the player unless already queued (dedup by id).
	// Returns false if the player was already present.
	Enqueue(p *Player) bool

	// Remove is an idempotent removal by player id.
	Remove(playerID string) bool

	// Len returns the number of queued players.
	Len() int

	// DequeuePair removes and returns the two longest-waiting players,
	// or ErrInsufficientPlayers if fewer than two are queued.
	DequeuePair() (*Player, *Player, error)

	// RequeueFront restores a dequeued pair at the head of the queue in
	// their original order, used when room creation fails after the
	// pair was removed.
	RequeueFront(first, second *Player)

	// Snapshot returns the queued player ids in waiting order.
	Snapshot() []string
}

// RoomRegistry owns room lifetime and the player/session indexes.
type RoomRegistry interface {
	// Create allocates a room for the pair, binding both players'
	// RoomID. Returns ErrCapacityExceeded at the configured ceiling.
	Create(a, b *Player) (*Room, error)

	// Get returns the active room, or ErrRoomNotFound.
	Get(roomID string) (*Room, error)

	// LookupByPlayer finds the active room holding the player.
	LookupByPlayer(playerID string) (*Room, bool)

	// LookupBySession finds the active room holding the session.
	LookupBySession(sessionID string) (*Room, *Player, bool)

	// Destroy removes the room from the active set and quarantines its
	// id for the cooldown window. Idempotent.
	Destroy(roomID string)

	// RemovePlayer takes the player out of their room and destroys it,
	// returning the room and the remaining opponent (nil if none).
	RemovePlayer(playerID string) (*Room, *Player, bool)

	// InCooldown reports whether the id belongs to a recently
	// destroyed room.
	InCooldown(roomID string) bool

	// ActiveCount returns the number of active rooms.
	ActiveCount() int

	// List returns all active rooms.
	List() []*Room
}

// PresenceTracker owns the per-player disconnect grace timers. It only
// ever looks players up by id; it does not own player lifetime.
type PresenceTracker interface {
	// OnDisconnect starts the grace timer for the player unless one is
	// already running.
	OnDisconnect(playerID string)

	// OnReconnect cancels a live grace timer. Returns
	// ErrReconnectWindowExpired if no timer exists.
	OnReconnect(playerID string) error

	// Tracking reports whether a grace timer is live for the player.
	Tracking(playerID string) bool

	// SetEvictionHandler installs the callback fired when a grace
	// timer expires. Must be called before any OnDisconnect.
	SetEvictionHandler(fn func(playerID string))

	// Stop cancels all timers.
	Stop()
}
