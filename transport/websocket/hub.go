package websocket

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/gridstrike/battleship/game/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Fleet placements are the
	// largest inbound payload and fit comfortably.
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Configure this for production
		return true
	},
}

// Envelope is the wire frame in both directions: an event name plus an
// event-specific payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// outbound is an event addressed to a set of sessions (nil targets
// means every connected client).
type outbound struct {
	targets []string
	event   string
	payload any
}

// Client represents one WebSocket connection. Each connection owns a
// transport session id; the coordinator addresses clients by it.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

// Hub maintains the set of active clients and routes traffic both
// ways: inbound intents are dispatched to the game service, outbound
// events from the coordinator are fanned out to their target sessions.
type Hub struct {
	// Registered clients by session ID.
	clients map[string]*Client

	// Outbound events from the coordinator.
	emit chan *outbound

	// Register requests from clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	svc service.GameService
}

// NewHub creates a hub. Bind must be called before serving clients.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		emit:       make(chan *outbound, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Bind attaches the game service the hub dispatches inbound intents
// to. Separate from NewHub because the coordinator needs the hub as
// its emitter first.
func (h *Hub) Bind(svc service.GameService) {
	h.svc = svc
}

// Run starts the hub's event loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client.sessionID] = client
			log.Debug().Str("session", client.sessionID).Int("total", len(h.clients)).Msg("client registered")

		case client := <-h.unregister:
			h.dropClient(client)

		case msg := <-h.emit:
			h.deliver(msg)
		}
	}
}

// ServeWS upgrades the request and starts the client pumps. Every
// connection gets a fresh transport session id; player identity is
// established later by the join-request or reconnect intent.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, 256),
		sessionID: uuid.NewString(),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// ToSession sends an event to one connection. Part of service.Emitter.
func (h *Hub) ToSession(sessionID, event string, payload any) {
	h.send(&outbound{targets: []string{sessionID}, event: event, payload: payload})
}

// ToRoom sends an event to every player in the room. Part of
// service.Emitter.
func (h *Hub) ToRoom(room *service.Room, event string, payload any) {
	targets := make([]string, 0, len(room.Players))
	for _, p := range room.Players {
		targets = append(targets, p.SessionID)
	}
	h.send(&outbound{targets: targets, event: event, payload: payload})
}

// BroadcastAll sends an event to every connected client. Part of
// service.Emitter.
func (h *Hub) BroadcastAll(event string, payload any) {
	h.send(&outbound{event: event, payload: payload})
}

// send hands an event to the hub loop without blocking: the
// coordinator emits while holding its lock, so a slow hub must never
// stall it. A full emit queue drops the event.
func (h *Hub) send(msg *outbound) {
	select {
	case h.emit <- msg:
	default:
		log.Warn().Str("event", msg.event).Msg("emit queue full, event dropped")
	}
}

func (h *Hub) dropClient(client *Client) {
	if current, ok := h.clients[client.sessionID]; ok && current == client {
		delete(h.clients, client.sessionID)
		close(client.send)
		log.Debug().Str("session", client.sessionID).Int("total", len(h.clients)).Msg("client unregistered")
	}
}

// deliver marshals the envelope once and queues it on each target
// client. Unknown sessions are skipped; the peer may already be gone.
func (h *Hub) deliver(msg *outbound) {
	data, err := json.Marshal(msg.payload)
	if err != nil {
		log.Error().Err(err).Str("event", msg.event).Msg("failed to marshal event payload")
		return
	}
	frame, err := json.Marshal(Envelope{Event: msg.event, Data: data})
	if err != nil {
		log.Error().Err(err).Str("event", msg.event).Msg("failed to marshal envelope")
		return
	}

	targets := msg.targets
	if targets == nil {
		targets = make([]string, 0, len(h.clients))
		for id := range h.clients {
			targets = append(targets, id)
		}
	}
	for _, id := range targets {
		client, ok := h.clients[id]
		if !ok {
			continue
		}
		select {
		case client.send <- frame:
		default:
			// Client's send channel is full, close it.
			h.dropClient(client)
		}
	}
}

// readPump pumps intents from the WebSocket connection to the game
// service.
func (c *Client) readPump() {
	defer func() {
		if c.hub.svc != nil {
			c.hub.svc.Disconnect(c.sessionID)
		}
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("session", c.sessionID).Msg("websocket read error")
			}
			break
		}
		c.dispatch(raw)
	}
}

// writePump pumps events from the hub to the WebSocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
