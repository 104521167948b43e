// Package puzzle models the immutable solution of a crossword puzzle.
package puzzle

import (
	"fmt"
	"strings"

	"github.com/jacobpatterson1549/crossword-extravaganza/game"
)

type (
	// Entry is one solution word: the answer, the clue shown to players, and
	// where the word sits on the board.  Entries are value types; the word id
	// of an entry is its 1-based index in the puzzle's entry list.
	Entry struct {
		Answer    string
		Clue      string
		Direction game.Direction
		Row       int
		Col       int
	}

	// Puzzle is a consistent set of entries with an id, display name, and
	// description.  Puzzles are immutable after creation.
	Puzzle struct {
		id          string
		name        string
		description string
		entries     []Entry
	}

	// Start tags a position as the first cell of a word.
	Start struct {
		WordID    int
		Direction game.Direction
	}
)

// NewEntry creates an entry, upper-casing the answer.
func NewEntry(answer, clue string, direction game.Direction, row, col int) (*Entry, error) {
	if err := validateEntry(answer, clue, row, col); err != nil {
		return nil, fmt.Errorf("creating entry: %w", err)
	}
	e := Entry{
		Answer:    strings.ToUpper(answer),
		Clue:      clue,
		Direction: direction,
		Row:       row,
		Col:       col,
	}
	return &e, nil
}

// validateEntry ensures the answer and clue follow the entry rules.
func validateEntry(answer, clue string, row, col int) error {
	switch {
	case len(answer) == 0:
		return fmt.Errorf("answer required")
	case strings.ContainsAny(answer, " \t\r\n"):
		return fmt.Errorf("answer must not contain whitespace")
	case len(clue) == 0:
		return fmt.Errorf("clue required")
	case strings.ContainsAny(clue, "\r\n"):
		return fmt.Errorf("clue must not contain newlines")
	case row < 0 || col < 0:
		return fmt.Errorf("row and column must not be negative")
	}
	return nil
}

// End returns the row (DOWN) or column (ACROSS) of the last letter.
func (e Entry) End() int {
	if e.Direction == game.Across {
		return e.Col + len(e.Answer) - 1
	}
	return e.Row + len(e.Answer) - 1
}

// Positions lists the board positions the entry covers, first letter first.
func (e Entry) Positions() []game.Position {
	positions := make([]game.Position, len(e.Answer))
	for i := range positions {
		switch e.Direction {
		case game.Across:
			positions[i] = game.Position{Row: e.Row, Col: e.Col + i}
		case game.Down:
			positions[i] = game.Position{Row: e.Row + i, Col: e.Col}
		}
	}
	return positions
}

// Covers determines if the entry occupies the position.
func (e Entry) Covers(pos game.Position) bool {
	switch e.Direction {
	case game.Across:
		return pos.Row == e.Row && pos.Col >= e.Col && pos.Col <= e.End()
	case game.Down:
		return pos.Col == e.Col && pos.Row >= e.Row && pos.Row <= e.End()
	}
	return false
}

// New creates a puzzle after checking that the entries are consistent.
func New(id, name, description string, entries []Entry) (*Puzzle, error) {
	if err := validate(id, name, entries); err != nil {
		return nil, fmt.Errorf("creating puzzle: validation: %w", err)
	}
	p := Puzzle{
		id:          id,
		name:        name,
		description: description,
		entries:     append([]Entry{}, entries...),
	}
	return &p, nil
}

// validate ensures the id and name are set and the entries are consistent.
func validate(id, name string, entries []Entry) error {
	switch {
	case len(id) == 0:
		return fmt.Errorf("id required")
	case strings.ContainsRune(id, '/') || strings.ContainsRune(id, '\\'):
		return fmt.Errorf("id must not contain a path separator")
	case strings.HasSuffix(id, ".puzzle"):
		return fmt.Errorf("id must not have a .puzzle suffix")
	case len(name) == 0:
		return fmt.Errorf("name required")
	}
	return consistent(entries)
}

// consistent checks the puzzle invariant: answers are unique, words in the
// same direction never share a cell, and words in different directions agree
// on the letter where they cross.
func consistent(entries []Entry) error {
	for i := 0; i < len(entries)-1; i++ {
		for j := i + 1; j < len(entries); j++ {
			e1, e2 := entries[i], entries[j]
			if e1.Answer == e2.Answer {
				return fmt.Errorf("duplicate answer: %v", e1.Answer)
			}
			if e1.Direction == e2.Direction {
				if sameDirectionOverlap(e1, e2) {
					return fmt.Errorf("entries %v and %v overlap in the same direction", i+1, j+1)
				}
				continue
			}
			if err := crossingAgrees(e1, e2); err != nil {
				return err
			}
		}
	}
	return nil
}

// sameDirectionOverlap determines if two entries in the same direction share a cell.
func sameDirectionOverlap(e1, e2 Entry) bool {
	switch {
	case e1.Direction == game.Across && e1.Row == e2.Row:
		return e2.Col <= e1.End() && e1.Col <= e2.End()
	case e1.Direction == game.Down && e1.Col == e2.Col:
		return e2.Row <= e1.End() && e1.Row <= e2.End()
	}
	return false
}

// crossingAgrees checks that two entries in different directions which share
// a cell have the same letter there.
func crossingAgrees(e1, e2 Entry) error {
	across, down := e1, e2
	if across.Direction == game.Down {
		across, down = e2, e1
	}
	i := down.Col - across.Col // index into the across answer
	if i < 0 || i >= len(across.Answer) {
		return nil
	}
	j := across.Row - down.Row // index into the down answer
	if j < 0 || j >= len(down.Answer) {
		return nil
	}
	if across.Answer[i] != down.Answer[j] {
		return fmt.Errorf("answers %v and %v cross with different letters", across.Answer, down.Answer)
	}
	return nil
}

// ID returns the puzzle id.
func (p *Puzzle) ID() string {
	return p.id
}

// Name returns the display name.
func (p *Puzzle) Name() string {
	return p.name
}

// Description returns the description.
func (p *Puzzle) Description() string {
	return p.description
}

// Entries returns a copy of the entry list.  Word ids are the 1-based indexes
// into this list.
func (p *Puzzle) Entries() []Entry {
	return append([]Entry{}, p.entries...)
}

// Entry returns the entry with the 1-based word id.
func (p *Puzzle) Entry(wordID int) (*Entry, error) {
	if wordID < 1 || wordID > len(p.entries) {
		return nil, fmt.Errorf("word ID %v not in puzzle", wordID)
	}
	e := p.entries[wordID-1]
	return &e, nil
}

// NumEntries returns the number of entries.
func (p *Puzzle) NumEntries() int {
	return len(p.entries)
}

// Size returns the dimensions of the minimum bounding grid.
func (p *Puzzle) Size() (rows, cols int) {
	maxRowEnd, maxColEnd := -1, -1
	for _, e := range p.entries {
		switch {
		case e.Direction == game.Across && e.End() > maxColEnd:
			maxColEnd = e.End()
		case e.Direction == game.Down && e.End() > maxRowEnd:
			maxRowEnd = e.End()
		}
	}
	return maxRowEnd + 1, maxColEnd + 1
}

// Contains determines if any entry covers the position.  Positions not in any
// entry are the gap squares of the board.
func (p *Puzzle) Contains(pos game.Position) bool {
	for _, e := range p.entries {
		if e.Covers(pos) {
			return true
		}
	}
	return false
}

// StartsAt lists the words whose first letter is at the position.
func (p *Puzzle) StartsAt(pos game.Position) []Start {
	var starts []Start
	for i, e := range p.entries {
		if e.Row == pos.Row && e.Col == pos.Col {
			starts = append(starts, Start{WordID: i + 1, Direction: e.Direction})
		}
	}
	return starts
}

// Questions returns the clue list in the match-view QUESTIONS format: one
// line per entry, `<wordId> "<clue>"`.  Clues keep the backslash escapes of
// the puzzle-file grammar, so quoting them does not re-escape.
func (p *Puzzle) Questions() string {
	var sb strings.Builder
	for i, e := range p.entries {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%d \"%s\"", i+1, e.Clue)
	}
	return sb.String()
}
