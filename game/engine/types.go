package engine

import "fmt"

const (
	// GridSize is the width and height of every board. Coordinates run
	// from 0 to GridSize-1 inclusive on both axes.
	GridSize = 10

	// FleetSize is the number of ships every player must place.
	FleetSize = 5
)

// ShipType identifies one of the five standard ship classes.
type ShipType string

const (
	Carrier    ShipType = "carrier"
	Battleship ShipType = "battleship"
	Cruiser    ShipType = "cruiser"
	Submarine  ShipType = "submarine"
	Destroyer  ShipType = "destroyer"
)

// ShipSizes maps each ship class to its canonical length.
var ShipSizes = map[ShipType]int{
	Carrier:    5,
	Battleship: 4,
	Cruiser:    3,
	Submarine:  3,
	Destroyer:  2,
}

// Coordinate represents an x,y position on the board.
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// InBounds reports whether the coordinate lies on the board.
func (c Coordinate) InBounds() bool {
	return c.X >= 0 && c.X < GridSize && c.Y >= 0 && c.Y < GridSize
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Ship is a placed ship and its damage state. Hits only ever increases,
// and IsSunk is updated in the same step that makes Hits reach Size.
type Ship struct {
	Type      ShipType     `json:"type"`
	Size      int          `json:"size"`
	Positions []Coordinate `json:"positions"`
	Hits      int          `json:"hits"`
	IsSunk    bool         `json:"isSunk"`

	// struck records coordinates that already registered a hit, so a
	// repeated attack on the same cell cannot increment Hits twice.
	struck map[Coordinate]bool
}

// NewShip builds a ship of the given class at the given positions. The
// canonical size for the class is applied regardless of what a client
// claims.
func NewShip(t ShipType, positions []Coordinate) *Ship {
	return &Ship{
		Type:      t,
		Size:      ShipSizes[t],
		Positions: positions,
		struck:    make(map[Coordinate]bool),
	}
}

// occupies reports whether the ship covers the given coordinate.
func (s *Ship) occupies(c Coordinate) bool {
	for _, p := range s.Positions {
		if p == c {
			return true
		}
	}
	return false
}

// StruckAt reports whether the coordinate has already registered a hit
// on this ship.
func (s *Ship) StruckAt(c Coordinate) bool {
	return s.struck[c]
}

// CellState describes what a board cell currently holds.
type CellState string

const (
	CellEmpty CellState = "empty"
	CellShip  CellState = "ship"
	CellHit   CellState = "hit"
	CellMiss  CellState = "miss"
	CellSunk  CellState = "sunk"
)

// Board is a player's 10x10 grid of cell states.
type Board struct {
	Grid [][]CellState `json:"grid"`
}

// NewBoard returns an all-empty board.
func NewBoard() *Board {
	grid := make([][]CellState, GridSize)
	for y := range grid {
		grid[y] = make([]CellState, GridSize)
		for x := range grid[y] {
			grid[y][x] = CellEmpty
		}
	}
	return &Board{Grid: grid}
}

// Clone returns a deep copy of the board. Snapshots handed to the
// transport layer must not alias the live grid, which keeps mutating
// after the snapshot is queued for delivery.
func (b *Board) Clone() *Board {
	if b == nil {
		return nil
	}
	grid := make([][]CellState, len(b.Grid))
	for y, row := range b.Grid {
		grid[y] = append([]CellState(nil), row...)
	}
	return &Board{Grid: grid}
}

// PlaceFleet marks every ship position as occupied. Callers must have
// validated the fleet first.
func (b *Board) PlaceFleet(ships []*Ship) {
	for _, s := range ships {
		for _, p := range s.Positions {
			b.Grid[p.Y][p.X] = CellShip
		}
	}
}

// MarkHit records a successful attack on the board.
func (b *Board) MarkHit(c Coordinate) {
	b.Grid[c.Y][c.X] = CellHit
}

// MarkMiss records a missed attack on the board.
func (b *Board) MarkMiss(c Coordinate) {
	b.Grid[c.Y][c.X] = CellMiss
}

// MarkSunk flips every cell of a sunk ship from hit to sunk.
func (b *Board) MarkSunk(s *Ship) {
	for _, p := range s.Positions {
		b.Grid[p.Y][p.X] = CellSunk
	}
}

// AttackResult classifies the outcome of a resolved attack.
type AttackResult string

const (
	ResultMiss AttackResult = "miss"
	ResultHit  AttackResult = "hit"
	ResultSunk AttackResult = "sunk"
	ResultWin  AttackResult = "win"
)
