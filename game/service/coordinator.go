package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gridstrike/battleship/game/config"
	"github.com/gridstrike/battleship/game/engine"
	"github.com/gridstrike/battleship/game/state"
)

// coordinator implements GameService. A single mutex serializes every
// inbound event, so no two mutations of the same room or queue ever
// interleave; timer callbacks take the same mutex and re-validate state
// before acting.
type coordinator struct {
	mu       sync.Mutex
	cfg      *config.Config
	queue    MatchQueue
	rooms    RoomRegistry
	presence PresenceTracker
	gate     *state.Gate
	emitter  Emitter

	players  map[string]*Player // player id -> player
	sessions map[string]string  // session id -> player id

	// evicted quarantines recently evicted player ids for one grace
	// period, so a late reconnect is told apart from a player that
	// never existed.
	evicted map[string]bool
}

// NewGameService wires the coordinator with its collaborators. The
// presence tracker's eviction handler is installed here, so the tracker
// must not receive disconnects before this returns.
func NewGameService(cfg *config.Config, queue MatchQueue, rooms RoomRegistry, presence PresenceTracker, gate *state.Gate, emitter Emitter) GameService {
	c := &coordinator{
		cfg:      cfg,
		queue:    queue,
		rooms:    rooms,
		presence: presence,
		gate:     gate,
		emitter:  emitter,
		players:  make(map[string]*Player),
		sessions: make(map[string]string),
		evicted:  make(map[string]bool),
	}
	presence.SetEvictionHandler(c.evictPlayer)
	return c
}

// Join registers the player, queues them, and attempts a match.
func (c *coordinator) Join(ctx context.Context, sessionID, playerID, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if playerID == "" {
		playerID = uuid.NewString()
	}
	if name == "" {
		name = "Player"
	}

	player, exists := c.players[playerID]
	if exists {
		if player.RoomID != "" {
			return fmt.Errorf("%w: %s", ErrAlreadyInRoom, playerID)
		}
		if player.SessionID != "" && player.SessionID != sessionID {
			// The previous connection is superseded; drop its binding so
			// its eventual close cannot touch this player.
			delete(c.sessions, player.SessionID)
		}
		player.SessionID = sessionID
		player.Name = name
	} else {
		player = &Player{
			ID:        playerID,
			SessionID: sessionID,
			Name:      name,
			Board:     engine.NewBoard(),
			IsAlive:   true,
		}
		c.players[playerID] = player
	}
	c.sessions[sessionID] = playerID

	if c.queue.Enqueue(player) {
		log.Info().Str("player", playerID).Msg("player queued")
	}
	c.emitter.ToSession(sessionID, EventWaitingForOpponent, NotificationPayload{
		Message: "Waiting for an opponent",
	})

	c.tryCreateMatchLocked()
	return nil
}

// tryCreateMatchLocked pairs the two longest-waiting players when the
// gate is open and capacity allows. Capacity is checked strictly before
// dequeuing, and a pair whose room creation fails is requeued at the
// front in original order, so no queued player is ever silently lost.
func (c *coordinator) tryCreateMatchLocked() {
	if c.gate.Phase() != state.GateWaiting {
		log.Debug().Str("gate", string(c.gate.Phase())).Msg("matchmaking refused: gate not waiting")
		return
	}
	if c.queue.Len() < 2 {
		return
	}
	if c.rooms.ActiveCount() >= c.cfg.MaxConcurrentRooms {
		log.Warn().Int("active", c.rooms.ActiveCount()).Msg("matchmaking refused: room capacity reached")
		return
	}

	a, b, err := c.queue.DequeuePair()
	if err != nil {
		return
	}

	room, err := c.rooms.Create(a, b)
	if err != nil {
		c.queue.RequeueFront(a, b)
		log.Warn().Err(err).Msg("room creation failed, pair requeued")
		return
	}

	for _, p := range room.Players {
		p.Board = engine.NewBoard()
		p.Ships = nil
		p.IsReady = false
		p.IsAlive = true
	}

	if err := c.gate.Transition(state.GateInProgress); err != nil {
		// The gate was checked above under the same lock; an error here
		// means a transition table bug.
		log.Error().Err(err).Msg("gate refused in-progress after match")
	}

	log.Info().Str("room", room.ID).Str("playerA", a.ID).Str("playerB", b.ID).Msg("match created")
	c.emitter.ToRoom(room, EventMatchFound, c.roomInfo(room))
	c.pushRoomState(room)
}

// PlaceShips validates and records the player's fleet.
func (c *coordinator) PlaceShips(ctx context.Context, sessionID string, placements []ShipPlacement) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	player, room, err := c.resolveSessionLocked(sessionID)
	if err != nil {
		return err
	}
	if room.Phase != state.RoomSetup {
		return fmt.Errorf("%w: ships may only be placed during setup, room is %s", ErrNotInProgress, room.Phase)
	}

	ships := make([]*engine.Ship, 0, len(placements))
	for _, p := range placements {
		ships = append(ships, engine.NewShip(p.Type, p.Positions))
	}
	if err := engine.ValidateFleet(ships); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidShipPlacement, err)
	}

	player.Ships = ships
	player.Board = engine.NewBoard()
	player.Board.PlaceFleet(ships)
	player.IsReady = true
	log.Info().Str("player", player.ID).Str("room", room.ID).Msg("fleet placed")

	if c.bothReady(room) {
		if err := c.setRoomPhaseLocked(room, state.RoomPlaying); err == nil {
			// The longer-waiting player of the pair opens the match.
			room.CurrentTurn = room.Players[0].ID
			c.armTurnTimerLocked(room)
		}
	}

	c.pushRoomState(room)
	return nil
}

// Attack resolves one attack and advances or ends the match.
func (c *coordinator) Attack(ctx context.Context, sessionID string, target engine.Coordinate) (*AttackOutcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	player, room, err := c.resolveSessionLocked(sessionID)
	if err != nil {
		return nil, err
	}
	if room.Phase != state.RoomPlaying {
		return nil, fmt.Errorf("%w: room is %s", ErrNotInProgress, room.Phase)
	}
	if room.CurrentTurn != player.ID {
		return nil, ErrNotYourTurn
	}
	if !target.InBounds() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCoordinates, target)
	}

	opponent := room.Opponent(player.ID)
	if opponent == nil {
		return nil, ErrOpponentNotFound
	}

	result, ship, err := engine.ResolveAttack(opponent.Ships, target)
	if err != nil {
		return nil, err
	}

	switch result {
	case engine.ResultMiss:
		opponent.Board.MarkMiss(target)
	case engine.ResultHit:
		opponent.Board.MarkHit(target)
	case engine.ResultSunk, engine.ResultWin:
		opponent.Board.MarkSunk(ship)
	}

	outcome := &AttackOutcome{AttackerID: player.ID, Coordinates: target, Result: result}
	c.emitter.ToRoom(room, EventAttackResult, outcome)
	log.Info().Str("room", room.ID).Str("attacker", player.ID).
		Stringer("target", target).Str("result", string(result)).Msg("attack resolved")

	if result == engine.ResultWin {
		c.finishGameLocked(room, player, opponent)
	} else {
		room.CurrentTurn = opponent.ID
		c.armTurnTimerLocked(room)
		c.pushRoomState(room)
	}

	return outcome, nil
}

// finishGameLocked performs the game-over bookkeeping: winner and
// phases are recorded immediately, the room itself is torn down after
// the cooldown so late messages still resolve to a known (finished)
// room.
func (c *coordinator) finishGameLocked(room *Room, winner, loser *Player) {
	loser.IsAlive = false
	room.WinnerID = winner.ID
	c.stopTurnTimerLocked(room)

	if err := c.setRoomPhaseLocked(room, state.RoomFinished); err != nil {
		return
	}
	if err := c.gate.Transition(state.GateFinished); err != nil {
		log.Warn().Err(err).Msg("gate refused finished on game over")
	}

	c.emitter.ToRoom(room, EventGameOver, GameOverPayload{WinnerID: winner.ID})
	c.pushRoomState(room)

	roomID := room.ID
	time.AfterFunc(c.cfg.RoomCooldown, func() { c.finalizeRoom(roomID) })
}

// finalizeRoom runs after the cooldown that follows game over. It
// re-validates that the room still exists and is still finished, since
// an eviction may already have torn it down.
func (c *coordinator) finalizeRoom(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, err := c.rooms.Get(roomID)
	if err != nil || room.Phase != state.RoomFinished {
		return
	}

	for _, p := range room.Players {
		p.RoomID = ""
		p.IsReady = false
	}
	c.rooms.Destroy(roomID)

	if c.gate.Phase() == state.GateFinished {
		if err := c.gate.Transition(state.GateWaiting); err != nil {
			log.Warn().Err(err).Msg("gate refused waiting after cleanup")
		}
	}
	c.tryCreateMatchLocked()
}

// Disconnect handles a dropped transport session.
func (c *coordinator) Disconnect(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	playerID, ok := c.sessions[sessionID]
	if !ok {
		return
	}
	delete(c.sessions, sessionID)

	player, ok := c.players[playerID]
	if !ok {
		return
	}
	if player.SessionID != sessionID {
		// Close of a superseded connection; the player lives on the
		// session that replaced it.
		return
	}

	if player.RoomID == "" {
		// Queued or idle players have nothing to come back to.
		c.queue.Remove(playerID)
		delete(c.players, playerID)
		log.Info().Str("player", playerID).Msg("queued player disconnected")
		return
	}

	log.Info().Str("player", playerID).Dur("grace", c.cfg.GracePeriod).Msg("player disconnected, grace period started")
	c.presence.OnDisconnect(playerID)

	if room, ok := c.rooms.LookupByPlayer(playerID); ok {
		if opp := room.Opponent(playerID); opp != nil {
			c.emitter.ToSession(opp.SessionID, EventNotification, NotificationPayload{
				Message: "Your opponent disconnected. Waiting for them to reconnect.",
			})
		}
	}
}

// Reconnect rebinds a player to a new transport session within the
// grace period. The player's room, ships, and ready state survive
// unchanged.
func (c *coordinator) Reconnect(ctx context.Context, newSessionID, playerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	player, ok := c.players[playerID]
	if !ok {
		if c.evicted[playerID] {
			return fmt.Errorf("%w: player %s", ErrReconnectWindowExpired, playerID)
		}
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}
	if err := c.presence.OnReconnect(playerID); err != nil {
		return err
	}

	if player.SessionID != "" && player.SessionID != newSessionID {
		delete(c.sessions, player.SessionID)
	}
	player.SessionID = newSessionID
	c.sessions[newSessionID] = playerID
	log.Info().Str("player", playerID).Msg("player reconnected")

	c.emitter.ToSession(newSessionID, EventNotification, NotificationPayload{
		Message: "Reconnected to the game.",
	})

	if room, ok := c.rooms.LookupByPlayer(playerID); ok {
		if opp := room.Opponent(playerID); opp != nil {
			c.emitter.ToSession(opp.SessionID, EventNotification, NotificationPayload{
				Message: "Your opponent reconnected.",
			})
		}
		c.pushRoomState(room)
	}
	return nil
}

// evictPlayer fires when a grace period expires without reconnection.
// State may have changed since the timer was scheduled, so everything
// is re-validated under the lock.
func (c *coordinator) evictPlayer(playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	player, ok := c.players[playerID]
	if !ok {
		return
	}

	log.Info().Str("player", playerID).Msg("grace period expired, evicting player")

	room, opponent, removed := c.rooms.RemovePlayer(playerID)
	if removed {
		c.stopTurnTimerLocked(room)
		if opponent != nil {
			opponent.RoomID = ""
			opponent.IsReady = false
			c.emitter.ToSession(opponent.SessionID, EventNotification, NotificationPayload{
				Message: "Your opponent left the game.",
			})
		}

		// The room this gate was serving is gone; reopen matchmaking.
		switch c.gate.Phase() {
		case state.GateInProgress:
			c.gate.Transition(state.GateFinished)
			c.gate.Transition(state.GateWaiting)
		case state.GateFinished:
			c.gate.Transition(state.GateWaiting)
		}
	}

	c.queue.Remove(playerID)
	delete(c.sessions, player.SessionID)
	delete(c.players, playerID)

	c.evicted[playerID] = true
	time.AfterFunc(c.cfg.GracePeriod, func() {
		c.mu.Lock()
		delete(c.evicted, playerID)
		c.mu.Unlock()
	})

	c.tryCreateMatchLocked()
}

// SendMessage relays a direct message to another player.
func (c *coordinator) SendMessage(ctx context.Context, sessionID, recipientID, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	senderID, ok := c.sessions[sessionID]
	if !ok {
		return fmt.Errorf("%w: unknown session", ErrPlayerNotFound)
	}
	recipient, ok := c.players[recipientID]
	if !ok {
		return fmt.Errorf("%w: recipient %s", ErrPlayerNotFound, recipientID)
	}

	c.emitter.ToSession(recipient.SessionID, EventMessage, MessagePayload{
		SenderID: senderID,
		Message:  message,
	})
	return nil
}

// Broadcast relays a message to every connected client.
func (c *coordinator) Broadcast(ctx context.Context, sessionID, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.sessions[sessionID]; !ok {
		return fmt.Errorf("%w: unknown session", ErrPlayerNotFound)
	}
	c.emitter.BroadcastAll(EventBroadcast, BroadcastPayload{Message: message})
	return nil
}

// Rooms returns snapshots of all active rooms.
func (c *coordinator) Rooms() []*RoomInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	rooms := c.rooms.List()
	infos := make([]*RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		infos = append(infos, c.roomInfo(r))
	}
	return infos
}

// Queue returns a snapshot of the matchmaking queue.
func (c *coordinator) Queue() *QueueInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := c.queue.Snapshot()
	return &QueueInfo{Length: len(ids), Players: ids}
}

// onTurnTimeout passes the turn when the current player idles too
// long. The room phase and expected turn are re-validated because the
// attack that this timer was armed for may have landed meanwhile.
func (c *coordinator) onTurnTimeout(roomID, expectedTurn string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, err := c.rooms.Get(roomID)
	if err != nil || room.Phase != state.RoomPlaying || room.CurrentTurn != expectedTurn {
		return
	}
	next := room.Opponent(expectedTurn)
	if next == nil {
		return
	}

	room.CurrentTurn = next.ID
	log.Info().Str("room", roomID).Str("player", expectedTurn).Msg("turn timed out")
	c.emitter.ToRoom(room, EventTurnTimeout, TurnTimeoutPayload{
		PlayerID: expectedTurn,
		NextTurn: next.ID,
	})
	c.armTurnTimerLocked(room)
	c.pushRoomState(room)
}

func (c *coordinator) armTurnTimerLocked(room *Room) {
	c.stopTurnTimerLocked(room)
	roomID, turn := room.ID, room.CurrentTurn
	room.turnTimer = time.AfterFunc(c.cfg.TurnTimeout, func() {
		c.onTurnTimeout(roomID, turn)
	})
}

func (c *coordinator) stopTurnTimerLocked(room *Room) {
	if room.turnTimer != nil {
		room.turnTimer.Stop()
		room.turnTimer = nil
	}
}

// setRoomPhaseLocked applies a room phase transition, logging rejected
// edges and leaving the phase unchanged on rejection.
func (c *coordinator) setRoomPhaseLocked(room *Room, to state.RoomPhase) error {
	if !state.ValidRoomTransition(room.Phase, to) {
		log.Warn().Str("room", room.ID).Str("from", string(room.Phase)).
			Str("to", string(to)).Msg("room transition rejected")
		return fmt.Errorf("%w: room %s -> %s", state.ErrInvalidTransition, room.Phase, to)
	}
	log.Info().Str("room", room.ID).Str("from", string(room.Phase)).
		Str("to", string(to)).Msg("room transition")
	room.Phase = to
	return nil
}

// resolveSessionLocked maps a transport session to its player and
// active room. Late messages referencing a cooling-down room are
// distinguished from truly unknown rooms in the log.
func (c *coordinator) resolveSessionLocked(sessionID string) (*Player, *Room, error) {
	playerID, ok := c.sessions[sessionID]
	if !ok {
		return nil, nil, fmt.Errorf("%w: unknown session", ErrPlayerNotFound)
	}
	player, ok := c.players[playerID]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}
	if player.RoomID == "" {
		return nil, nil, fmt.Errorf("%w: player %s is not in a room", ErrRoomNotFound, playerID)
	}
	room, err := c.rooms.Get(player.RoomID)
	if err != nil {
		if c.rooms.InCooldown(player.RoomID) {
			log.Debug().Str("room", player.RoomID).Msg("late message for cooling-down room")
		}
		return nil, nil, fmt.Errorf("%w: %s", ErrRoomNotFound, player.RoomID)
	}
	return player, room, nil
}

func (c *coordinator) bothReady(room *Room) bool {
	if len(room.Players) != 2 {
		return false
	}
	return room.Players[0].IsReady && room.Players[1].IsReady
}

// pushRoomState sends each room member the shared room snapshot plus
// their own board. Boards are cloned under the lock: the emitter
// marshals on its own goroutine, after this mutex is released.
func (c *coordinator) pushRoomState(room *Room) {
	info := c.roomInfo(room)
	for _, p := range room.Players {
		c.emitter.ToSession(p.SessionID, EventGameStateUpdate, GameStatePayload{
			Room:      info,
			YourID:    p.ID,
			YourBoard: p.Board.Clone(),
		})
	}
}

func (c *coordinator) roomInfo(room *Room) *RoomInfo {
	players := make([]PlayerInfo, 0, len(room.Players))
	for _, p := range room.Players {
		players = append(players, PlayerInfo{
			ID:             p.ID,
			Name:           p.Name,
			IsReady:        p.IsReady,
			IsAlive:        p.IsAlive,
			ShipsRemaining: p.ShipsRemaining(),
		})
	}
	return &RoomInfo{
		ID:          room.ID,
		Players:     players,
		Phase:       string(room.Phase),
		CurrentTurn: room.CurrentTurn,
		WinnerID:    room.WinnerID,
		CreatedAt:   room.CreatedAt,
	}
}
