package websocket

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/gridstrike/battleship/game/engine"
	"github.com/gridstrike/battleship/game/service"
)

// Inbound intent names. These match the original client protocol.
const (
	IntentJoin      = "join-request"
	IntentPlace     = "place-ships"
	IntentAttack    = "attack"
	IntentReconnect = "reconnect"
	IntentMessage   = "message"
	IntentBroadcast = "broadcast"
)

type joinPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type placePayload struct {
	Ships []service.ShipPlacement `json:"ships"`
}

type attackPayload struct {
	Coordinates engine.Coordinate `json:"coordinates"`
}

type reconnectPayload struct {
	PlayerID string `json:"playerId"`
}

type messagePayload struct {
	RecipientID string `json:"recipientId"`
	Message     string `json:"message"`
}

type broadcastPayload struct {
	Message string `json:"message"`
}

// dispatch decodes one inbound frame and routes it to the game
// service. Any failure is reported back to this connection only.
func (c *Client) dispatch(raw []byte) {
	if c.hub.svc == nil {
		return
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.sendError("malformed message")
		return
	}

	ctx := context.Background()
	var err error

	switch env.Event {
	case IntentJoin:
		var p joinPayload
		if err = json.Unmarshal(env.Data, &p); err == nil {
			err = c.hub.svc.Join(ctx, c.sessionID, p.ID, p.Name)
		}

	case IntentPlace:
		var p placePayload
		if err = json.Unmarshal(env.Data, &p); err == nil {
			err = c.hub.svc.PlaceShips(ctx, c.sessionID, p.Ships)
		}

	case IntentAttack:
		var p attackPayload
		if err = json.Unmarshal(env.Data, &p); err == nil {
			_, err = c.hub.svc.Attack(ctx, c.sessionID, p.Coordinates)
		}

	case IntentReconnect:
		var p reconnectPayload
		if err = json.Unmarshal(env.Data, &p); err == nil {
			err = c.hub.svc.Reconnect(ctx, c.sessionID, p.PlayerID)
		}

	case IntentMessage:
		var p messagePayload
		if err = json.Unmarshal(env.Data, &p); err == nil {
			err = c.hub.svc.SendMessage(ctx, c.sessionID, p.RecipientID, p.Message)
		}

	case IntentBroadcast:
		var p broadcastPayload
		if err = json.Unmarshal(env.Data, &p); err == nil {
			err = c.hub.svc.Broadcast(ctx, c.sessionID, p.Message)
		}

	default:
		c.sendError("unknown event: " + env.Event)
		return
	}

	if err != nil {
		log.Debug().Err(err).Str("session", c.sessionID).Str("event", env.Event).Msg("intent rejected")
		c.sendError(err.Error())
	}
}

// sendError reports a request-scoped failure to this connection.
func (c *Client) sendError(message string) {
	c.hub.ToSession(c.sessionID, service.EventError, service.ErrorPayload{Message: message})
}
