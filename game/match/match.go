// Package match runs the board state machine for one two-player game.
package match

import (
	"fmt"
	"strings"
	"sync"

	"github.com/jacobpatterson1549/crossword-extravaganza/game"
	"github.com/jacobpatterson1549/crossword-extravaganza/game/cell"
	"github.com/jacobpatterson1549/crossword-extravaganza/game/listener"
	"github.com/jacobpatterson1549/crossword-extravaganza/game/puzzle"
)

// Feedback strings for guesses and challenges.  These are sent to clients
// verbatim as the TRY and CHALLENGE reply bodies.
const (
	FeedbackValidGuess        = "Valid guess"
	FeedbackGuessWrongLength  = "Invalid guess, wrong word length"
	FeedbackGuessSame         = "Invalid guess, same as existing guess"
	FeedbackGuessInconsistent = "Invalid guess, inconsistent with current board"

	FeedbackChallengeWon            = "Successful challenge!"
	FeedbackChallengeTargetCorrect  = "Failed challenge, target word was already correct"
	FeedbackChallengeBothWrong      = "Failed challenge, target word and your guess both incorrect"
	FeedbackChallengeWrongLength    = "Invalid challenge, wrong length"
	FeedbackChallengeBlankSquares   = "Invalid challenge, not all squares have guesses"
	FeedbackChallengeOwnWord        = "Invalid challenge, you control this word"
	FeedbackChallengeAllConfirmed   = "Invalid challenge, all spaces already confirmed"
	FeedbackChallengeSameAsExisting = "Invalid challenge, same as existing word"
)

// Match is the mutable, thread-safe state of one game on one puzzle.  All
// exported methods take the match lock; listener fan-out always runs after
// the lock is released so a listener may call back into the match.
type Match struct {
	id          string
	description string
	puzzle      *puzzle.Puzzle
	mu          sync.Mutex
	players     []string
	scores      map[string]int
	cells       map[game.Position]cell.Cell
	finalized   bool
	listeners   listener.Registry
}

// New creates a match with the first player seated and a blank board covering
// the puzzle's bounding grid.
func New(id, description string, pz *puzzle.Puzzle, firstPlayer string) (*Match, error) {
	if err := validate(id, description, firstPlayer); err != nil {
		return nil, fmt.Errorf("creating match: validation: %w", err)
	}
	m := Match{
		id:          id,
		description: description,
		puzzle:      pz,
		players:     []string{firstPlayer},
		scores:      map[string]int{firstPlayer: 0},
		cells:       blankBoard(pz),
	}
	return &m, nil
}

// validate ensures the match id, description, and first player are usable.
func validate(id, description, firstPlayer string) error {
	switch {
	case len(id) == 0:
		return fmt.Errorf("id required")
	case strings.ContainsAny(id, " \t\r\n"):
		return fmt.Errorf("id must not contain whitespace")
	case len(description) == 0:
		return fmt.Errorf("description required")
	case len(firstPlayer) == 0:
		return fmt.Errorf("first player required")
	}
	return nil
}

// blankBoard builds the position to cell map for the puzzle's bounding grid.
func blankBoard(pz *puzzle.Puzzle) map[game.Position]cell.Cell {
	rows, cols := pz.Size()
	cells := make(map[game.Position]cell.Cell, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			pos := game.Position{Row: r, Col: c}
			if pz.Contains(pos) {
				cells[pos] = cell.Blank(pz.StartsAt(pos))
			} else {
				cells[pos] = cell.Gap()
			}
		}
	}
	return cells
}

// ID returns the match id.
func (m *Match) ID() string {
	return m.id
}

// Description returns the match description.
func (m *Match) Description() string {
	return m.description
}

// Players returns a copy of the seated player list, in seating order.
func (m *Match) Players() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.players...)
}

// HasPlayer determines if the player is seated in the match.
func (m *Match) HasPlayer(player string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seatLocked(player) >= 0
}

// Finalized determines if the match has ended.  Unlike IsFinished, it never
// mutates the match.
func (m *Match) Finalized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.finalized
}

// AddListener registers a callback run after every board change and returns a
// function that removes it.
func (m *Match) AddListener(l listener.Func) (remove func()) {
	return m.listeners.Add(l)
}

// AddPlayer seats the second player and notifies listeners.
func (m *Match) AddPlayer(player string) error {
	m.mu.Lock()
	err := m.addPlayerLocked(player)
	m.mu.Unlock()
	if err != nil {
		return err
	}
	m.listeners.Notify()
	return nil
}

func (m *Match) addPlayerLocked(player string) error {
	switch {
	case m.finalized:
		return fmt.Errorf("match already over")
	case len(m.players) >= 2:
		return fmt.Errorf("Match already has two players")
	case m.seatLocked(player) >= 0:
		return fmt.Errorf("player %v already in match", player)
	case len(player) == 0 || strings.ContainsAny(player, " \t\r\n"):
		return fmt.Errorf("invalid player name")
	}
	m.players = append(m.players, player)
	m.scores[player] = 0
	return nil
}

// seatLocked returns the player's seat index, or -1.
func (m *Match) seatLocked(player string) int {
	for i, p := range m.players {
		if p == player {
			return i
		}
	}
	return -1
}

// TryGuess writes the player's guess for the word and returns the feedback to
// send back.  A non-nil error means the request violated a precondition and
// should be answered with INVALID_REQUEST instead of feedback.
func (m *Match) TryGuess(player string, wordID int, rawGuess string) (string, error) {
	m.mu.Lock()
	feedback, changed, err := m.tryGuessLocked(player, wordID, rawGuess)
	if changed {
		m.isFinishedLocked()
	}
	m.mu.Unlock()
	if changed {
		m.listeners.Notify()
	}
	return feedback, err
}

func (m *Match) tryGuessLocked(player string, wordID int, rawGuess string) (feedback string, changed bool, err error) {
	entry, guess, err := m.moveLocked(player, wordID, rawGuess)
	if err != nil {
		return "", false, err
	}
	if len(guess) != len(entry.Answer) {
		return FeedbackGuessWrongLength, false, nil
	}
	positions := entry.Positions()
	clears := make(map[int]struct{})
	allSame := true
	for i, pos := range positions {
		c := m.cells[pos]
		letter := guess[i]
		switch {
		case c.Letter() == letter:
			continue
		case !c.HasGuess():
			allSame = false
		case c.IsConfirmed(), !c.ConsistentWith(letter, player):
			return FeedbackGuessInconsistent, false, nil
		default:
			// The player's own crossing word conflicts here, so every
			// other word through this cell gets cleared.
			allSame = false
			m.crossingWordsLocked(pos, wordID, clears)
		}
	}
	if allSame {
		return FeedbackGuessSame, false, nil
	}
	for i, pos := range positions {
		m.writeCellLocked(pos, m.cells[pos].WithGuess(guess[i], player, entry.Direction), &changed)
	}
	m.clearWordsLocked(clears, &changed)
	return FeedbackValidGuess, changed, nil
}

// Challenge resolves the player's challenge of the word and returns the
// feedback to send back.  A non-nil error means the request violated a
// precondition and should be answered with INVALID_REQUEST.
func (m *Match) Challenge(player string, wordID int, rawGuess string) (string, error) {
	m.mu.Lock()
	feedback, changed, err := m.challengeLocked(player, wordID, rawGuess)
	if changed {
		m.isFinishedLocked()
	}
	m.mu.Unlock()
	if changed {
		m.listeners.Notify()
	}
	return feedback, err
}

func (m *Match) challengeLocked(player string, wordID int, rawGuess string) (feedback string, changed bool, err error) {
	entry, guess, err := m.moveLocked(player, wordID, rawGuess)
	if err != nil {
		return "", false, err
	}
	if len(guess) != len(entry.Answer) {
		return FeedbackChallengeWrongLength, false, nil
	}
	positions := entry.Positions()
	allConfirmed, allSame := true, true
	for i, pos := range positions {
		c := m.cells[pos]
		switch {
		case !c.HasGuess():
			return FeedbackChallengeBlankSquares, false, nil
		case c.Owner(entry.Direction) == player:
			return FeedbackChallengeOwnWord, false, nil
		}
		allConfirmed = allConfirmed && c.IsConfirmed()
		allSame = allSame && c.Letter() == guess[i]
	}
	switch {
	case allConfirmed:
		return FeedbackChallengeAllConfirmed, false, nil
	case allSame:
		return FeedbackChallengeSameAsExisting, false, nil
	case m.entryCorrectLocked(*entry):
		m.scores[player]--
		for _, pos := range positions {
			m.writeCellLocked(pos, m.cells[pos].Confirm(), &changed)
		}
		return FeedbackChallengeTargetCorrect, changed, nil
	case guess == entry.Answer:
		m.scores[player] += 2
		clears := make(map[int]struct{})
		for i, pos := range positions {
			c := m.cells[pos]
			if c.Letter() != guess[i] {
				m.crossingWordsLocked(pos, wordID, clears)
			}
			c = c.ClearDirection(entry.Direction).WithGuess(guess[i], player, entry.Direction).Confirm()
			m.writeCellLocked(pos, c, &changed)
		}
		m.clearWordsLocked(clears, &changed)
		return FeedbackChallengeWon, changed, nil
	default:
		m.scores[player]--
		clears := map[int]struct{}{wordID: {}}
		m.clearWordsLocked(clears, &changed)
		return FeedbackChallengeBothWrong, changed, nil
	}
}

// moveLocked checks the preconditions shared by guesses and challenges and
// returns the target entry and the upper-cased guess.
func (m *Match) moveLocked(player string, wordID int, rawGuess string) (*puzzle.Entry, string, error) {
	switch {
	case m.finalized:
		return nil, "", fmt.Errorf("match already over")
	case m.seatLocked(player) < 0:
		return nil, "", fmt.Errorf("player %v not in match", player)
	case len(m.players) != 2:
		return nil, "", fmt.Errorf("match does not have two players")
	case len(rawGuess) == 0 || strings.ContainsAny(rawGuess, " \t\r\n"):
		return nil, "", fmt.Errorf("guess must be a single word")
	}
	entry, err := m.puzzle.Entry(wordID)
	if err != nil {
		return nil, "", err
	}
	return entry, strings.ToUpper(rawGuess), nil
}

// crossingWordsLocked adds to clears the ids of words other than wordID that
// cover the position.
func (m *Match) crossingWordsLocked(pos game.Position, wordID int, clears map[int]struct{}) {
	for i, e := range m.puzzle.Entries() {
		if i+1 != wordID && e.Covers(pos) {
			clears[i+1] = struct{}{}
		}
	}
}

// clearWordsLocked drops ownership of each word in clears along its whole
// length, blanking the letters no other direction still owns.
func (m *Match) clearWordsLocked(clears map[int]struct{}, changed *bool) {
	for id := range clears {
		entry, err := m.puzzle.Entry(id)
		if err != nil {
			continue
		}
		for _, pos := range entry.Positions() {
			m.writeCellLocked(pos, m.cells[pos].ClearDirection(entry.Direction), changed)
		}
	}
}

// writeCellLocked replaces the cell at the position, noting whether its state
// actually changed.
func (m *Match) writeCellLocked(pos game.Position, c cell.Cell, changed *bool) {
	if !m.cells[pos].Equal(c) {
		*changed = true
	}
	m.cells[pos] = c
}

// entryCorrectLocked determines if the board spells the entry's answer.
func (m *Match) entryCorrectLocked(e puzzle.Entry) bool {
	for i, pos := range e.Positions() {
		if m.cells[pos].Letter() != e.Answer[i] {
			return false
		}
	}
	return true
}

// IsFinished reports whether the match has ended, finalizing it first if the
// whole board is correct.  The finalization awards the end-of-game points, so
// callers must treat this as a mutator.
func (m *Match) IsFinished() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isFinishedLocked()
}

func (m *Match) isFinishedLocked() bool {
	if m.finalized {
		return true
	}
	for _, e := range m.puzzle.Entries() {
		if !m.entryCorrectLocked(e) {
			return false
		}
	}
	m.finalizeLocked("")
	return true
}

// Finalize ends the match, awarding a point for each correctly guessed word
// to its owner.  With no forfeiting player, the correct words' cells are also
// confirmed.  A seated forfeiting player's score resets to zero and listeners
// are notified.  Finalizing twice has no further effect.
func (m *Match) Finalize(forfeitingPlayer string) {
	m.mu.Lock()
	finalized := m.finalizeLocked(forfeitingPlayer)
	m.mu.Unlock()
	if finalized && forfeitingPlayer != "" {
		m.listeners.Notify()
	}
}

func (m *Match) finalizeLocked(forfeitingPlayer string) bool {
	if m.finalized {
		return false
	}
	m.finalized = true
	for _, e := range m.puzzle.Entries() {
		if !m.entryCorrectLocked(e) {
			continue
		}
		if owner := m.cells[e.Positions()[0]].Owner(e.Direction); owner != "" {
			m.scores[owner]++
		}
		if forfeitingPlayer == "" {
			for _, pos := range e.Positions() {
				m.cells[pos] = m.cells[pos].Confirm()
			}
		}
	}
	if m.seatLocked(forfeitingPlayer) >= 0 {
		m.scores[forfeitingPlayer] = 0
	}
	return true
}

// View renders the board for the viewer: dimensions, squares in row-major
// order, scores in seating order, and the clue list.
func (m *Match) View(viewer string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, cols := m.puzzle.Size()
	var sb strings.Builder
	fmt.Fprintf(&sb, "%dx%d\n", rows, cols)
	sb.WriteString("Squares:\n")
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			sb.WriteString(m.cells[game.Position{Row: r, Col: c}].View(viewer))
			sb.WriteByte('\n')
		}
	}
	sb.WriteString("Scores:\n")
	for _, p := range m.players {
		fmt.Fprintf(&sb, "%v %d\n", p, m.scores[p])
	}
	sb.WriteString("Questions:\n")
	sb.WriteString(m.puzzle.Questions())
	return sb.String()
}
