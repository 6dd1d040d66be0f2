// Package api provides the HTTP surface of the battleship server.
//
// The game itself is played entirely over the /ws WebSocket endpoint;
// the JSON endpoints are read-only observability views:
//
//	GET /healthz     liveness check
//	GET /api/rooms   snapshots of all active rooms
//	GET /api/queue   snapshot of the matchmaking queue
//
// Routing uses gorilla/mux with a request-logging middleware. None of
// these endpoints mutate game state; every mutation flows through the
// WebSocket intents.
package api
