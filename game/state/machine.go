package state

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrInvalidTransition is returned for any requested edge not in the
// fixed transition tables. The state is left unchanged.
var ErrInvalidTransition = errors.New("invalid state transition")

// GatePhase is the system-wide matchmaking gate.
type GatePhase string

const (
	GateWaiting    GatePhase = "waiting"
	GateInProgress GatePhase = "in-progress"
	GateFinished   GatePhase = "finished"
)

// RoomPhase is the lifecycle phase of a single room.
type RoomPhase string

const (
	RoomSetup    RoomPhase = "setup"
	RoomPlaying  RoomPhase = "playing"
	RoomFinished RoomPhase = "finished"
)

// Transition describes an attempted state change, accepted or not.
// Rejected transitions are a primary signal of protocol misuse by a
// client, so observers see those too.
type Transition struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Accepted bool   `json:"accepted"`
}

// The only legal gate edges. Anything else is rejected and logged.
var gateEdges = map[GatePhase]GatePhase{
	GateWaiting:    GateInProgress,
	GateInProgress: GateFinished,
	GateFinished:   GateWaiting,
}

// Gate serializes "start a new match" attempts across the whole
// process. While the gate is not waiting, no new matches may be
// created.
type Gate struct {
	mu        sync.Mutex
	phase     GatePhase
	observers []func(Transition)
}

// NewGate returns a gate in the waiting phase.
func NewGate() *Gate {
	return &Gate{phase: GateWaiting}
}

// Phase returns the current gate phase.
func (g *Gate) Phase() GatePhase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

// OnTransition registers an observer that is invoked for every
// attempted transition, including rejected ones.
func (g *Gate) OnTransition(fn func(Transition)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.observers = append(g.observers, fn)
}

// Transition requests a gate phase change. Illegal edges leave the
// phase unchanged and return ErrInvalidTransition.
func (g *Gate) Transition(to GatePhase) error {
	g.mu.Lock()
	from := g.phase
	accepted := gateEdges[from] == to
	if accepted {
		g.phase = to
	}
	observers := make([]func(Transition), len(g.observers))
	copy(observers, g.observers)
	g.mu.Unlock()

	t := Transition{From: string(from), To: string(to), Accepted: accepted}
	if accepted {
		log.Info().Str("from", t.From).Str("to", t.To).Msg("gate transition")
	} else {
		log.Warn().Str("from", t.From).Str("to", t.To).Msg("gate transition rejected")
	}
	for _, fn := range observers {
		fn(t)
	}

	if !accepted {
		return fmt.Errorf("%w: gate %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// The only legal room phase edges. No transition leaves finished.
var roomEdges = map[RoomPhase]RoomPhase{
	RoomSetup:   RoomPlaying,
	RoomPlaying: RoomFinished,
}

// ValidRoomTransition reports whether a room may move between the two
// phases.
func ValidRoomTransition(from, to RoomPhase) bool {
	return roomEdges[from] == to
}
