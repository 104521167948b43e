// Package game contains the value types shared by the puzzle, cell, match, and lobby packages.
package game

import "fmt"

type (
	// Direction is the orientation of a word on the board.
	Direction int

	// Position identifies a square on the board by zero-indexed row and column.
	Position struct {
		Row int
		Col int
	}
)

const (
	// Across words read left to right.
	Across Direction = iota
	// Down words read top to bottom.
	Down
)

// String returns the wire form of the direction.
func (d Direction) String() string {
	switch d {
	case Across:
		return "ACROSS"
	case Down:
		return "DOWN"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// ParseDirection converts the wire form of a direction back to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "ACROSS":
		return Across, nil
	case "DOWN":
		return Down, nil
	}
	return 0, fmt.Errorf("unknown direction: %q", s)
}
