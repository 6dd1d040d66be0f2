package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridstrike/battleship/game/config"
	"github.com/gridstrike/battleship/game/engine"
	"github.com/gridstrike/battleship/game/match"
	"github.com/gridstrike/battleship/game/presence"
	"github.com/gridstrike/battleship/game/room"
	"github.com/gridstrike/battleship/game/service"
	"github.com/gridstrike/battleship/game/state"
)

// newTestServer boots a hub wired to a real coordinator behind an
// httptest server.
func newTestServer(t *testing.T) (*httptest.Server, service.GameService) {
	t.Helper()

	cfg := config.Default()
	cfg.RoomCooldown = 25 * time.Millisecond

	hub := NewHub()
	tracker := presence.NewTracker(cfg.GracePeriod)
	t.Cleanup(tracker.Stop)

	svc := service.NewGameService(cfg, match.NewQueue(),
		room.NewRegistry(cfg.MaxConcurrentRooms, cfg.RoomCooldown),
		tracker, state.NewGate(), hub)
	hub.Bind(svc)
	go hub.Run()

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(srv.Close)
	return srv, svc
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendIntent(t *testing.T, conn *websocket.Conn, event string, payload any) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(Envelope{Event: event, Data: data}))
}

// waitForEvent reads frames until one with the given event name
// arrives, skipping everything else.
func waitForEvent(t *testing.T, conn *websocket.Conn, event string) json.RawMessage {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	require.NoError(t, conn.SetReadDeadline(deadline))

	for time.Now().Before(deadline) {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			t.Fatalf("waiting for %q: %v", event, err)
		}
		if env.Event == event {
			return env.Data
		}
	}
	t.Fatalf("event %q never arrived", event)
	return nil
}

func fleetPlacements() []service.ShipPlacement {
	mk := func(tp engine.ShipType, y, n int) service.ShipPlacement {
		positions := make([]engine.Coordinate, n)
		for i := range positions {
			positions[i] = engine.Coordinate{X: i, Y: y}
		}
		return service.ShipPlacement{Type: tp, Positions: positions}
	}
	return []service.ShipPlacement{
		mk(engine.Carrier, 0, 5),
		mk(engine.Battleship, 1, 4),
		mk(engine.Cruiser, 2, 3),
		mk(engine.Submarine, 3, 3),
		mk(engine.Destroyer, 4, 2),
	}
}

func TestMatchOverWebSocket(t *testing.T) {
	srv, _ := newTestServer(t)
	alice := dial(t, srv)
	bob := dial(t, srv)

	sendIntent(t, alice, IntentJoin, map[string]string{"id": "alice", "name": "Alice"})
	waitForEvent(t, alice, service.EventWaitingForOpponent)

	sendIntent(t, bob, IntentJoin, map[string]string{"id": "bob", "name": "Bob"})

	var foundRoom service.RoomInfo
	require.NoError(t, json.Unmarshal(waitForEvent(t, alice, service.EventMatchFound), &foundRoom))
	waitForEvent(t, bob, service.EventMatchFound)
	assert.Len(t, foundRoom.Players, 2)
	assert.Equal(t, "setup", foundRoom.Phase)

	sendIntent(t, alice, IntentPlace, map[string]any{"ships": fleetPlacements()})
	sendIntent(t, bob, IntentPlace, map[string]any{"ships": fleetPlacements()})

	// Both fleets placed; the next state push shows the match playing
	// with alice (the longer-waiting player) to move.
	var gs service.GameStatePayload
	for {
		require.NoError(t, json.Unmarshal(waitForEvent(t, bob, service.EventGameStateUpdate), &gs))
		if gs.Room.Phase == "playing" {
			break
		}
	}
	assert.Equal(t, "alice", gs.Room.CurrentTurn)
	assert.Equal(t, "bob", gs.YourID)
	require.NotNil(t, gs.YourBoard, "each player receives their own board")

	// Out-of-turn attack comes back as an error to bob only.
	sendIntent(t, bob, IntentAttack, map[string]any{"coordinates": engine.Coordinate{X: 0, Y: 0}})
	var errPayload service.ErrorPayload
	require.NoError(t, json.Unmarshal(waitForEvent(t, bob, service.EventError), &errPayload))
	assert.Contains(t, errPayload.Message, "not your turn")

	// Alice attacks; both players see the result.
	sendIntent(t, alice, IntentAttack, map[string]any{"coordinates": engine.Coordinate{X: 0, Y: 0}})
	var outcome service.AttackOutcome
	require.NoError(t, json.Unmarshal(waitForEvent(t, bob, service.EventAttackResult), &outcome))
	assert.Equal(t, "alice", outcome.AttackerID)
	assert.Equal(t, engine.ResultHit, outcome.Result)
}

func TestMalformedFrameReportsError(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	var errPayload service.ErrorPayload
	require.NoError(t, json.Unmarshal(waitForEvent(t, conn, service.EventError), &errPayload))
	assert.Equal(t, "malformed message", errPayload.Message)
}

func TestUnknownIntentReportsError(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv)

	sendIntent(t, conn, "self-destruct", map[string]string{})

	var errPayload service.ErrorPayload
	require.NoError(t, json.Unmarshal(waitForEvent(t, conn, service.EventError), &errPayload))
	assert.Contains(t, errPayload.Message, "unknown event")
}

func TestDisconnectRemovesQueuedPlayer(t *testing.T) {
	srv, svc := newTestServer(t)
	conn := dial(t, srv)

	sendIntent(t, conn, IntentJoin, map[string]string{"id": "solo", "name": "Solo"})
	waitForEvent(t, conn, service.EventWaitingForOpponent)
	conn.Close()

	require.Eventually(t, func() bool {
		return svc.Queue().Length == 0
	}, 2*time.Second, 10*time.Millisecond, "closed connection should leave the queue")

	// With the stale entry gone, a fresh pair matches with each other.
	a := dial(t, srv)
	b := dial(t, srv)
	sendIntent(t, a, IntentJoin, map[string]string{"id": "a", "name": "A"})
	waitForEvent(t, a, service.EventWaitingForOpponent)
	sendIntent(t, b, IntentJoin, map[string]string{"id": "b", "name": "B"})

	var foundRoom service.RoomInfo
	require.NoError(t, json.Unmarshal(waitForEvent(t, a, service.EventMatchFound), &foundRoom))
	assert.Equal(t, "a", foundRoom.Players[0].ID)
}
