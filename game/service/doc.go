// Package service provides the match coordination layer for the
// battleship server.
//
// The service package implements:
//   - Matchmaking orchestration (queue draining, capacity, the global
//     gate that serializes match creation)
//   - Room lifecycle through the setup, playing, and finished phases
//   - Ship placement, turn-ordered attack resolution, and win handling
//   - Disconnect grace periods and reconnection
//
// Core Interfaces:
//
// GameService is the main entry point for inbound intents from the
// transport layer. MatchQueue, RoomRegistry, and PresenceTracker are
// the storage collaborators, implemented by the match, room, and
// presence packages and injected at construction; no hidden shared
// instances exist. Emitter is the outbound transport boundary,
// implemented by the WebSocket hub.
//
// Concurrency:
//
// The coordinator serializes every inbound event behind one mutex, so
// handlers run to completion without interleaving. Timers (disconnect
// grace, turn timeout, post-game cleanup) fire as independent events
// that re-validate state under the same mutex before acting.
//
// Usage:
//
//	gate := state.NewGate()
//	svc := service.NewGameService(cfg,
//		match.NewQueue(),
//		room.NewRegistry(cfg.MaxConcurrentRooms, cfg.RoomCooldown),
//		presence.NewTracker(cfg.GracePeriod),
//		gate, hub)
//
//	err := svc.Join(ctx, sessionID, playerID, name)
package service
