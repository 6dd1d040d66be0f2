// Package websocket provides the WebSocket transport for the
// battleship coordinator.
//
// The websocket package implements:
//   - Session-scoped bidirectional communication
//   - Inbound intent decoding and dispatch to the game service
//   - Outbound event fan-out (per session, per room, broadcast)
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages
// all connections. Each connection is assigned a fresh transport
// session id at upgrade time; player identity is bound to it by a
// join-request or reconnect intent. The hub's Run loop serializes all
// access to the client map, and the coordinator emits through the hub
// without ever blocking on it.
//
// Message Protocol:
//
// Frames in both directions are JSON envelopes {event, data}. Inbound
// events are join-request, place-ships, attack, reconnect, message,
// and broadcast; a closed connection is the disconnect signal.
// Outbound events include attack_result, game-state-update, game-over,
// error, notification, message, and broadcast.
//
// Usage:
//
//	hub := websocket.NewHub()
//	svc := service.NewGameService(cfg, queue, rooms, presence, gate, hub)
//	hub.Bind(svc)
//	go hub.Run()
//	http.HandleFunc("/ws", hub.ServeWS)
package websocket
