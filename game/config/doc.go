// Package config holds the server's operational configuration.
//
// All values are resolved once at process start: defaults, then any
// environment overrides (HOST, PORT, MAX_CONCURRENT_ROOMS,
// ROOM_COOLDOWN, GRACE_PERIOD, TURN_TIMEOUT). Durations use Go
// duration syntax, e.g. "30s". Game rules themselves (grid size, ship
// classes and lengths) are not configuration; they are constants in
// the engine package.
package config
