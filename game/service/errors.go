package service

import "errors"

// Every error here is recoverable at the single-request scope: it is
// reported back to the originating connection and affects no other
// room, the queue, or the gate.
var (
	ErrPlayerNotFound         = errors.New("player not found")
	ErrOpponentNotFound       = errors.New("opponent not found")
	ErrRoomNotFound           = errors.New("game room not found")
	ErrInvalidShipPlacement   = errors.New("invalid ship placement")
	ErrInvalidCoordinates     = errors.New("invalid coordinates provided")
	ErrNotInProgress          = errors.New("action not allowed in current phase")
	ErrAlreadyInRoom          = errors.New("player is already in an active room")
	ErrNotYourTurn            = errors.New("it is not your turn")
	ErrInsufficientPlayers    = errors.New("not enough players queued")
	ErrCapacityExceeded       = errors.New("server is at room capacity")
	ErrReconnectWindowExpired = errors.New("reconnect window expired")
)
