package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validFleet lays the five ships out on consecutive rows starting at
// the left edge. Tests mutate individual ships to trigger violations.
func validFleet() []*Ship {
	return []*Ship{
		NewShip(Carrier, row(0, 0, 5)),
		NewShip(Battleship, row(0, 1, 4)),
		NewShip(Cruiser, row(0, 2, 3)),
		NewShip(Submarine, row(0, 3, 3)),
		NewShip(Destroyer, row(0, 4, 2)),
	}
}

// row returns n horizontal positions starting at (x,y).
func row(x, y, n int) []Coordinate {
	out := make([]Coordinate, n)
	for i := range out {
		out[i] = Coordinate{X: x + i, Y: y}
	}
	return out
}

// column returns n vertical positions starting at (x,y).
func column(x, y, n int) []Coordinate {
	out := make([]Coordinate, n)
	for i := range out {
		out[i] = Coordinate{X: x, Y: y + i}
	}
	return out
}

func TestValidateFleetAcceptsStandardLayout(t *testing.T) {
	require.NoError(t, ValidateFleet(validFleet()))
}

func TestValidateFleetAcceptsVerticalShips(t *testing.T) {
	fleet := []*Ship{
		NewShip(Carrier, column(0, 0, 5)),
		NewShip(Battleship, column(2, 0, 4)),
		NewShip(Cruiser, column(4, 0, 3)),
		NewShip(Submarine, column(6, 0, 3)),
		NewShip(Destroyer, column(8, 0, 2)),
	}
	require.NoError(t, ValidateFleet(fleet))
}

func TestValidateFleetComposition(t *testing.T) {
	t.Run("too few ships", func(t *testing.T) {
		fleet := validFleet()[:4]
		assert.ErrorIs(t, ValidateFleet(fleet), ErrFleetComposition)
	})

	t.Run("duplicate class", func(t *testing.T) {
		fleet := validFleet()
		// Replace the destroyer with a second cruiser.
		fleet[4] = NewShip(Cruiser, row(0, 5, 3))
		assert.ErrorIs(t, ValidateFleet(fleet), ErrFleetComposition)
	})

	t.Run("unknown class", func(t *testing.T) {
		fleet := validFleet()
		fleet[4].Type = ShipType("dinghy")
		assert.ErrorIs(t, ValidateFleet(fleet), ErrFleetComposition)
	})
}

func TestValidateFleetPositionCount(t *testing.T) {
	fleet := validFleet()
	fleet[0].Positions = row(0, 0, 4) // carrier needs 5
	assert.ErrorIs(t, ValidateFleet(fleet), ErrPositionCount)
}

func TestValidateFleetOutOfBounds(t *testing.T) {
	tests := []struct {
		name      string
		positions []Coordinate
	}{
		{"off right edge", row(7, 0, 5)},
		{"off bottom edge", column(0, 7, 5)},
		{"negative x", row(-1, 0, 5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fleet := validFleet()
			fleet[0].Positions = tt.positions
			assert.ErrorIs(t, ValidateFleet(fleet), ErrOutOfBounds)
		})
	}
}

func TestValidateFleetOverlap(t *testing.T) {
	fleet := validFleet()
	// Battleship shares (0,0) with the carrier.
	fleet[1].Positions = column(0, 0, 4)
	assert.ErrorIs(t, ValidateFleet(fleet), ErrOverlap)
}

func TestValidateFleetShape(t *testing.T) {
	tests := []struct {
		name      string
		positions []Coordinate
	}{
		{"diagonal", []Coordinate{{5, 5}, {6, 6}, {7, 7}}},
		{"bent", []Coordinate{{5, 5}, {6, 5}, {6, 6}}},
		{"gap in run", []Coordinate{{5, 5}, {6, 5}, {8, 5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fleet := validFleet()
			fleet[2].Positions = tt.positions // cruiser, size 3
			assert.ErrorIs(t, ValidateFleet(fleet), ErrNotInLine)
		})
	}
}

func TestCoordinateInBounds(t *testing.T) {
	assert.True(t, Coordinate{0, 0}.InBounds())
	assert.True(t, Coordinate{9, 9}.InBounds())
	assert.False(t, Coordinate{10, 0}.InBounds())
	assert.False(t, Coordinate{0, -1}.InBounds())
}

func TestNewShipAppliesCanonicalSize(t *testing.T) {
	s := NewShip(Carrier, row(0, 0, 5))
	assert.Equal(t, 5, s.Size)
	assert.Equal(t, 2, NewShip(Destroyer, nil).Size)
}
