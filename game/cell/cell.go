// Package cell models one square of a match board as an immutable value.
package cell

import (
	"strconv"
	"strings"

	"github.com/jacobpatterson1549/crossword-extravaganza/game"
	"github.com/jacobpatterson1549/crossword-extravaganza/game/puzzle"
)

// Cell is the state of one board square.  Gap cells are not covered by any
// word.  Letter cells hold a guessed letter (blank until guessed), the player
// controlling it in each direction, a confirmed flag, and the words starting
// there.  The zero letter (' ') means no guess; a blank cell has no owners
// and is never confirmed.  Cells are value types: transitions return new
// cells, and Equal detects whether a transition changed anything.
type Cell struct {
	gap         bool
	letter      byte
	confirmed   bool
	ownerAcross string
	ownerDown   string
	starts      []puzzle.Start
}

// blank is the letter of a cell with no guess.
const blank = ' '

// Gap creates the cell for a position not covered by any word.
func Gap() Cell {
	return Cell{gap: true}
}

// Blank creates a letter cell with no guess and the words starting at it.
func Blank(starts []puzzle.Start) Cell {
	return Cell{
		letter: blank,
		starts: append([]puzzle.Start{}, starts...),
	}
}

// IsGap determines if the cell is not covered by any word.
func (c Cell) IsGap() bool {
	return c.gap
}

// HasGuess determines if the cell holds a guessed letter.
func (c Cell) HasGuess() bool {
	return !c.gap && c.letter != blank
}

// IsConfirmed determines if the cell's letter was frozen by a challenge or
// end-of-game finalization.
func (c Cell) IsConfirmed() bool {
	return !c.gap && c.confirmed
}

// Letter returns the guessed letter, or ' ' if the cell is blank.
func (c Cell) Letter() byte {
	return c.letter
}

// Owner returns the player controlling the cell in the direction, or "".
func (c Cell) Owner(d game.Direction) string {
	if d == game.Across {
		return c.ownerAcross
	}
	return c.ownerDown
}

// WithGuess returns the cell with the letter guessed by the player in the
// direction.  The cell must not be a gap, and a confirmed cell only accepts
// its existing letter.
func (c Cell) WithGuess(letter byte, player string, d game.Direction) Cell {
	c2 := c
	c2.letter = letter
	if d == game.Across {
		c2.ownerAcross = player
	} else {
		c2.ownerDown = player
	}
	return c2
}

// Confirm returns the cell with its letter frozen.  The cell must have a
// guess and at least one owner.
func (c Cell) Confirm() Cell {
	c2 := c
	c2.confirmed = true
	return c2
}

// ClearDirection returns the cell without an owner in the direction.  If the
// other direction has no owner either, the letter resets to blank.  The
// confirmed flag is kept; callers must not clear the direction of a
// confirmed word.
func (c Cell) ClearDirection(d game.Direction) Cell {
	c2 := c
	if d == game.Across {
		c2.ownerAcross = ""
		if c2.ownerDown == "" {
			c2.letter = blank
		}
	} else {
		c2.ownerDown = ""
		if c2.ownerAcross == "" {
			c2.letter = blank
		}
	}
	return c2
}

// ConsistentWith determines if the player could write the letter here: the
// letter matches the current guess, the cell is blank, or every direction's
// owner is either empty or the player.
func (c Cell) ConsistentWith(letter byte, player string) bool {
	if letter == c.letter || c.letter == blank {
		return true
	}
	return (c.ownerAcross == "" || c.ownerAcross == player) &&
		(c.ownerDown == "" || c.ownerDown == player)
}

// Equal determines if two cells have the same state.  Start tags are fixed
// when the board is built, so they are not compared.
func (c Cell) Equal(o Cell) bool {
	if c.gap || o.gap {
		return c.gap == o.gap
	}
	return c.letter == o.letter && c.confirmed == o.confirmed &&
		c.ownerAcross == o.ownerAcross && c.ownerDown == o.ownerDown
}

// View renders the cell for the viewer in the match-view SQUARE grammar:
// "EMPTY" for gaps, otherwise an optional "+" for confirmed, the letter or
// "_" if blank, then each word starting here as ` >?<wordId> <direction>`,
// with ">" when the viewer owns the cell in that word's direction.
func (c Cell) View(viewer string) string {
	if c.gap {
		return "EMPTY"
	}
	var sb strings.Builder
	if c.confirmed {
		sb.WriteByte('+')
	}
	if c.letter == blank {
		sb.WriteByte('_')
	} else {
		sb.WriteByte(c.letter)
	}
	for _, s := range c.starts {
		sb.WriteByte(' ')
		if viewer != "" && c.Owner(s.Direction) == viewer {
			sb.WriteByte('>')
		}
		sb.WriteString(strconv.Itoa(s.WordID))
		sb.WriteByte(' ')
		sb.WriteString(s.Direction.String())
	}
	return sb.String()
}
