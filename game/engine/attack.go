package engine

import "errors"

// ErrAlreadyAttacked is returned when an attack targets a coordinate
// that already registered a hit on the same ship.
var ErrAlreadyAttacked = errors.New("coordinate already attacked")

// ResolveAttack applies an attack against the defending fleet and
// classifies the outcome. On a hit it increments the ship's hit count;
// if that sinks the ship and every other ship is already sunk the
// result is a win. The returned ship is the one that was struck, nil on
// a miss. The fleet is not mutated on a miss or an error.
func ResolveAttack(fleet []*Ship, target Coordinate) (AttackResult, *Ship, error) {
	for _, ship := range fleet {
		if !ship.occupies(target) {
			continue
		}
		if ship.struck[target] {
			return "", ship, ErrAlreadyAttacked
		}

		ship.struck[target] = true
		ship.Hits++
		if ship.Hits >= ship.Size {
			ship.IsSunk = true
			if AllSunk(fleet) {
				return ResultWin, ship, nil
			}
			return ResultSunk, ship, nil
		}
		return ResultHit, ship, nil
	}
	return ResultMiss, nil, nil
}

// AllSunk reports whether every ship in the fleet is sunk.
func AllSunk(fleet []*Ship) bool {
	for _, s := range fleet {
		if !s.IsSunk {
			return false
		}
	}
	return true
}
