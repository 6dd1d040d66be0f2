// Package engine provides the pure board and ship model for the
// battleship coordinator.
//
// The engine package implements:
//   - Coordinates, ship classes, and per-cell board state
//   - Full geometric fleet placement validation
//   - Attack resolution (miss / hit / sunk / win) with a per-ship
//     guard against double-counting repeated attacks
//
// Core Types:
//
// Ship tracks a placed ship and its damage; Board tracks a player's
// 10x10 grid of cell states. ResolveAttack is the single entry point
// for combat: it mutates only the struck ship and reports the
// classified outcome. Everything else about a match (rooms, turns,
// phases) lives above this package.
package engine
