package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridstrike/battleship/game/engine"
	"github.com/gridstrike/battleship/game/service"
)

// stubService serves canned snapshots; the HTTP layer never exercises
// the mutating operations.
type stubService struct {
	rooms []*service.RoomInfo
	queue *service.QueueInfo
}

func (s *stubService) Join(context.Context, string, string, string) error        { return nil }
func (s *stubService) PlaceShips(context.Context, string, []service.ShipPlacement) error {
	return nil
}
func (s *stubService) Attack(context.Context, string, engine.Coordinate) (*service.AttackOutcome, error) {
	return nil, nil
}
func (s *stubService) Disconnect(string)                                  {}
func (s *stubService) Reconnect(context.Context, string, string) error    { return nil }
func (s *stubService) SendMessage(context.Context, string, string, string) error { return nil }
func (s *stubService) Broadcast(context.Context, string, string) error    { return nil }
func (s *stubService) Rooms() []*service.RoomInfo                         { return s.rooms }
func (s *stubService) Queue() *service.QueueInfo                          { return s.queue }

func newTestServer(stub *stubService) *Server {
	return NewServer(stub, nil)
}

func doGet(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(&stubService{})
	rec := doGet(t, srv, "/healthz")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestListRooms(t *testing.T) {
	stub := &stubService{
		rooms: []*service.RoomInfo{
			{
				ID:          "room-1",
				Phase:       "playing",
				CurrentTurn: "a",
				CreatedAt:   time.Now(),
				Players: []service.PlayerInfo{
					{ID: "a", Name: "Alice", IsReady: true, IsAlive: true, ShipsRemaining: 5},
					{ID: "b", Name: "Bob", IsReady: true, IsAlive: true, ShipsRemaining: 4},
				},
			},
		},
	}
	rec := doGet(t, newTestServer(stub), "/api/rooms")

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count int                 `json:"count"`
		Rooms []*service.RoomInfo `json:"rooms"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Rooms, 1)
	assert.Equal(t, "room-1", body.Rooms[0].ID)
	assert.Equal(t, 4, body.Rooms[0].Players[1].ShipsRemaining)
}

func TestQueueSnapshot(t *testing.T) {
	stub := &stubService{
		queue: &service.QueueInfo{Length: 2, Players: []string{"a", "b"}},
	}
	rec := doGet(t, newTestServer(stub), "/api/queue")

	require.Equal(t, http.StatusOK, rec.Code)

	var got service.QueueInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Length)
	assert.Equal(t, []string{"a", "b"}, got.Players)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(&stubService{})
	req := httptest.NewRequest(http.MethodPost, "/api/rooms", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestUnknownPath(t *testing.T) {
	srv := newTestServer(&stubService{})
	rec := doGet(t, srv, "/api/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
