package service

import (
	"time"

	"github.com/gridstrike/battleship/game/engine"
	"github.com/gridstrike/battleship/game/state"
)

// Player is a connected participant. The ID is stable across
// reconnects; SessionID is transport-scoped and rebound whenever the
// player reconnects.
type Player struct {
	ID        string         `json:"id"`
	SessionID string         `json:"-"`
	Name      string         `json:"name"`
	RoomID    string         `json:"roomId"`
	Board     *engine.Board  `json:"-"`
	Ships     []*engine.Ship `json:"-"`
	IsReady   bool           `json:"isReady"`
	IsAlive   bool           `json:"isAlive"`
}

// ShipsRemaining counts the player's unsunk ships.
func (p *Player) ShipsRemaining() int {
	n := 0
	for _, s := range p.Ships {
		if !s.IsSunk {
			n++
		}
	}
	return n
}

// Room is the paired, isolated context for exactly two players playing
// one match.
type Room struct {
	ID          string
	Players     []*Player
	Phase       state.RoomPhase
	CurrentTurn string
	WinnerID    string
	CreatedAt   time.Time

	turnTimer *time.Timer
}

// Opponent returns the other player in the room, or nil if the room
// does not hold exactly two distinct players.
func (r *Room) Opponent(playerID string) *Player {
	if len(r.Players) != 2 || r.Players[0].ID == r.Players[1].ID {
		return nil
	}
	for _, p := range r.Players {
		if p.ID != playerID {
			return p
		}
	}
	return nil
}

// Member returns the room member with the given id, or nil.
func (r *Room) Member(playerID string) *Player {
	for _, p := range r.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// ShipPlacement is a client-submitted ship: the class plus the cells it
// covers. Sizes and damage state are never taken from the client.
type ShipPlacement struct {
	Type      engine.ShipType     `json:"type"`
	Positions []engine.Coordinate `json:"positions"`
}

// PlayerInfo is the serializable view of a room member. Boards and
// ship positions are never included; each player only ever receives
// their own board.
type PlayerInfo struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	IsReady        bool   `json:"isReady"`
	IsAlive        bool   `json:"isAlive"`
	ShipsRemaining int    `json:"shipsRemaining"`
}

// RoomInfo is the serializable snapshot of a room.
type RoomInfo struct {
	ID          string       `json:"id"`
	Players     []PlayerInfo `json:"players"`
	Phase       string       `json:"phase"`
	CurrentTurn string       `json:"currentTurn"`
	WinnerID    string       `json:"winnerId,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// QueueInfo is the serializable snapshot of the matchmaking queue.
type QueueInfo struct {
	Length  int      `json:"length"`
	Players []string `json:"players"`
}

// AttackOutcome is what an accepted attack resolved to.
type AttackOutcome struct {
	AttackerID  string              `json:"attackerId"`
	Coordinates engine.Coordinate   `json:"coordinates"`
	Result      engine.AttackResult `json:"result"`
}
