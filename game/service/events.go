package service

import "github.com/gridstrike/battleship/game/engine"

// Event names on the wire. These match the original client protocol.
const (
	EventAttackResult       = "attack_result"
	EventGameStateUpdate    = "game-state-update"
	EventGameOver           = "game-over"
	EventError              = "error"
	EventNotification       = "notification"
	EventMessage            = "message"
	EventBroadcast          = "broadcast"
	EventMatchFound         = "match-found"
	EventWaitingForOpponent = "waiting-for-opponent"
	EventTurnTimeout        = "turn-timeout"
)

// Emitter is the transport boundary the coordinator emits through. The
// session layer (WebSocket hub) implements it; the core never touches
// connections directly.
type Emitter interface {
	// ToSession sends an event to one connection. Unknown session ids
	// are dropped silently; the peer may already be gone.
	ToSession(sessionID, event string, payload any)

	// ToRoom sends an event to every player in the room.
	ToRoom(room *Room, event string, payload any)

	// BroadcastAll sends an event to every connected client.
	BroadcastAll(event string, payload any)
}

// GameStatePayload is sent to each room member after any room state
// change. YourBoard carries only the recipient's own grid.
type GameStatePayload struct {
	Room      *RoomInfo     `json:"room"`
	YourID    string        `json:"yourId"`
	YourBoard *engine.Board `json:"yourBoard,omitempty"`
}

// GameOverPayload announces the match winner.
type GameOverPayload struct {
	WinnerID string `json:"winnerId"`
}

// ErrorPayload reports a request-scoped failure to one connection.
type ErrorPayload struct {
	Message string `json:"message"`
}

// NotificationPayload is a one-way informational message.
type NotificationPayload struct {
	Message string `json:"message"`
}

// MessagePayload is a direct player-to-player chat message.
type MessagePayload struct {
	SenderID string `json:"senderId"`
	Message  string `json:"message"`
}

// BroadcastPayload is a message fanned out to every connection.
type BroadcastPayload struct {
	Message string `json:"message"`
}

// TurnTimeoutPayload reports that the turn passed because the current
// player ran out of time.
type TurnTimeoutPayload struct {
	PlayerID string `json:"playerId"`
	NextTurn string `json:"nextTurn"`
}
