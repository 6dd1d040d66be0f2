package engine

import (
	"errors"
	"fmt"
)

var (
	ErrFleetComposition = errors.New("fleet must contain exactly one ship of each class")
	ErrPositionCount    = errors.New("ship position count does not match its size")
	ErrOutOfBounds      = errors.New("ship position outside the board")
	ErrOverlap          = errors.New("ships overlap")
	ErrNotInLine        = errors.New("ship positions must form a straight contiguous line")
)

// ValidateFleet checks a complete five-ship placement. It enforces the
// full geometric contract: exact fleet composition, per-ship position
// counts matching canonical sizes, all positions on the board, no two
// ships sharing a coordinate, and every ship lying in a single straight
// contiguous line (horizontal or vertical).
func ValidateFleet(ships []*Ship) error {
	if len(ships) != FleetSize {
		return fmt.Errorf("%w: got %d ships", ErrFleetComposition, len(ships))
	}

	seen := make(map[ShipType]int)
	occupied := make(map[Coordinate]bool)

	for _, s := range ships {
		size, known := ShipSizes[s.Type]
		if !known {
			return fmt.Errorf("%w: unknown class %q", ErrFleetComposition, s.Type)
		}
		seen[s.Type]++

		if len(s.Positions) != size {
			return fmt.Errorf("%w: %s has %d positions, needs %d",
				ErrPositionCount, s.Type, len(s.Positions), size)
		}

		for _, p := range s.Positions {
			if !p.InBounds() {
				return fmt.Errorf("%w: %s at %s", ErrOutOfBounds, s.Type, p)
			}
			if occupied[p] {
				return fmt.Errorf("%w: %s at %s", ErrOverlap, s.Type, p)
			}
			occupied[p] = true
		}

		if err := validateShape(s); err != nil {
			return err
		}
	}

	// The two size-3 classes are distinct, so each class appears once.
	for t := range ShipSizes {
		if seen[t] != 1 {
			return fmt.Errorf("%w: %d of %s", ErrFleetComposition, seen[t], t)
		}
	}

	return nil
}

// validateShape enforces the straight contiguous line rule: all
// positions share one axis and the values on the other axis form an
// unbroken run.
func validateShape(s *Ship) error {
	horizontal, vertical := true, true
	minX, maxX := s.Positions[0].X, s.Positions[0].X
	minY, maxY := s.Positions[0].Y, s.Positions[0].Y

	for _, p := range s.Positions[1:] {
		if p.Y != s.Positions[0].Y {
			horizontal = false
		}
		if p.X != s.Positions[0].X {
			vertical = false
		}
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	// Positions are already known distinct, so a span equal to count-1
	// on the shared axis means the run has no gaps.
	switch {
	case horizontal && maxX-minX == len(s.Positions)-1:
		return nil
	case vertical && maxY-minY == len(s.Positions)-1:
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotInLine, s.Type)
}
