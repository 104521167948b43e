// Package lobby tracks the puzzles, users, and matches of a running server.
package lobby

import (
	"fmt"
	"strings"
	"sync"

	"github.com/jacobpatterson1549/crossword-extravaganza/game/listener"
	"github.com/jacobpatterson1549/crossword-extravaganza/game/match"
	"github.com/jacobpatterson1549/crossword-extravaganza/game/puzzle"
)

// Lobby is the thread-safe set of loaded puzzles, active users, and live
// matches.  The lobby lock guards only the lobby's own collections; match
// methods are always called after it is released, so a match fan-out may call
// back into the lobby.
type Lobby struct {
	mu           sync.Mutex
	puzzles      []*puzzle.Puzzle
	users        map[string]struct{}
	matches      []*match.Match
	availability listener.Registry
}

// New creates an empty lobby.
func New() *Lobby {
	return &Lobby{
		users: make(map[string]struct{}),
	}
}

// AddPuzzle loads a puzzle into the lobby.  Puzzles are loaded at startup,
// before any user connects.
func (l *Lobby) AddPuzzle(pz *puzzle.Puzzle) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.puzzles {
		if p.ID() == pz.ID() {
			return fmt.Errorf("puzzle ID %v already in system", pz.ID())
		}
	}
	l.puzzles = append(l.puzzles, pz)
	return nil
}

// NumPuzzles returns the number of loaded puzzles.
func (l *Lobby) NumPuzzles() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.puzzles)
}

// AddUser joins a user and returns the reply body: Success, or an explanation
// of why the user id is taken.
func (l *Lobby) AddUser(user string) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.users[user]; ok {
		return fmt.Sprintf("User ID %v already in use", user)
	}
	l.users[user] = struct{}{}
	return "Success"
}

// HasUser determines if the user is joined.
func (l *Lobby) HasUser(user string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.users[user]
	return ok
}

// Puzzles returns the GET_PUZZLES reply body: one line per loaded puzzle.
func (l *Lobby) Puzzles() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var lines []string
	for _, p := range l.puzzles {
		lines = append(lines, fmt.Sprintf("%v \"%v\" \"%v\"", p.ID(), p.Name(), p.Description()))
	}
	return strings.Join(lines, "\n")
}

// AvailableMatches returns the GET_MATCHES reply body: one line per match
// still waiting for a second player.
func (l *Lobby) AvailableMatches() string {
	l.mu.Lock()
	matches := append([]*match.Match{}, l.matches...)
	l.mu.Unlock()
	var lines []string
	for _, m := range matches {
		if m.Finalized() || len(m.Players()) >= 2 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%v \"%v\"", m.ID(), m.Description()))
	}
	return strings.Join(lines, "\n")
}

// NewMatch creates a match on the puzzle with the user seated first and
// returns the reply body: Success, or Fail with the reason.
func (l *Lobby) NewMatch(user, matchID, puzzleID, description string) string {
	l.mu.Lock()
	pz := l.puzzleLocked(puzzleID)
	duplicate := l.matchLocked(matchID) != nil
	_, joined := l.users[user]
	l.mu.Unlock()
	switch {
	case !joined:
		return fmt.Sprintf("Fail User ID %v is not available in game", user)
	case duplicate:
		return fmt.Sprintf("Fail Match ID %v already in system", matchID)
	case pz == nil:
		return fmt.Sprintf("Fail Puzzle id %v is not available in game", puzzleID)
	}
	m, err := match.New(matchID, description, pz, user)
	if err != nil {
		return fmt.Sprintf("Fail %v", err)
	}
	l.mu.Lock()
	// Re-check under the lock in case a racing NEW_MATCH claimed the id.
	if l.matchLocked(matchID) != nil {
		l.mu.Unlock()
		return fmt.Sprintf("Fail Match ID %v already in system", matchID)
	}
	l.matches = append(l.matches, m)
	l.mu.Unlock()
	l.availability.Notify()
	return "Success"
}

// PlayMatch seats the user as the match's second player.
func (l *Lobby) PlayMatch(user, matchID string) error {
	l.mu.Lock()
	m := l.matchLocked(matchID)
	_, joined := l.users[user]
	l.mu.Unlock()
	switch {
	case !joined:
		return fmt.Errorf("User ID %v is not available in game", user)
	case m == nil:
		return fmt.Errorf("Match id %v is not available in game", matchID)
	}
	if err := m.AddPlayer(user); err != nil {
		return err
	}
	l.availability.Notify()
	return nil
}

// ExitMatch forfeits the match for the player, ending it.  If the match was
// still waiting for a second player it drops off the available list, so the
// availability listeners are notified.
func (l *Lobby) ExitMatch(matchID, player string) error {
	l.mu.Lock()
	m := l.matchLocked(matchID)
	l.mu.Unlock()
	if m == nil {
		return fmt.Errorf("Match id %v is not available in game", matchID)
	}
	if !m.HasPlayer(player) {
		return fmt.Errorf("player %v not in match %v", player, matchID)
	}
	waiting := len(m.Players()) == 1 && !m.Finalized()
	m.Finalize(player)
	if waiting {
		l.availability.Notify()
	}
	return nil
}

// Quit removes the user.  Matches whose seated players have all quit are
// finalized and removed from the lobby.
func (l *Lobby) Quit(user string) {
	l.mu.Lock()
	delete(l.users, user)
	matches := append([]*match.Match{}, l.matches...)
	l.mu.Unlock()
	removedWaiting := false
	for _, m := range matches {
		if !m.HasPlayer(user) {
			continue
		}
		departed := true
		for _, p := range m.Players() {
			if l.HasUser(p) {
				departed = false
				break
			}
		}
		if !departed {
			continue
		}
		if len(m.Players()) == 1 && !m.Finalized() {
			removedWaiting = true
		}
		m.Finalize("")
		l.removeMatch(m.ID())
	}
	if removedWaiting {
		l.availability.Notify()
	}
}

// removeMatch drops the match with the id from the lobby.
func (l *Lobby) removeMatch(matchID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, m := range l.matches {
		if m.ID() == matchID {
			l.matches = append(l.matches[:i], l.matches[i+1:]...)
			return
		}
	}
}

// TryGuess forwards a guess to the match.
func (l *Lobby) TryGuess(matchID, player string, wordID int, guess string) (string, error) {
	m, err := l.Match(matchID)
	if err != nil {
		return "", err
	}
	return m.TryGuess(player, wordID, guess)
}

// Challenge forwards a challenge to the match.
func (l *Lobby) Challenge(matchID, player string, wordID int, guess string) (string, error) {
	m, err := l.Match(matchID)
	if err != nil {
		return "", err
	}
	return m.Challenge(player, wordID, guess)
}

// MatchView renders the match's board for the viewer.
func (l *Lobby) MatchView(matchID, viewer string) (string, error) {
	m, err := l.Match(matchID)
	if err != nil {
		return "", err
	}
	return m.View(viewer), nil
}

// IsMatchOver determines if the match has ended.  Unknown matches count as
// over; they were removed after finalizing.
func (l *Lobby) IsMatchOver(matchID string) bool {
	m, err := l.Match(matchID)
	if err != nil {
		return true
	}
	return m.Finalized()
}

// Match returns the live match with the id.
func (l *Lobby) Match(matchID string) (*match.Match, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if m := l.matchLocked(matchID); m != nil {
		return m, nil
	}
	return nil, fmt.Errorf("Match id %v is not available in game", matchID)
}

func (l *Lobby) matchLocked(matchID string) *match.Match {
	for _, m := range l.matches {
		if m.ID() == matchID {
			return m
		}
	}
	return nil
}

func (l *Lobby) puzzleLocked(puzzleID string) *puzzle.Puzzle {
	for _, p := range l.puzzles {
		if p.ID() == puzzleID {
			return p
		}
	}
	return nil
}

// AddMatchListener registers a callback for the match's board changes.
func (l *Lobby) AddMatchListener(matchID string, f listener.Func) (remove func(), err error) {
	m, err := l.Match(matchID)
	if err != nil {
		return nil, err
	}
	return m.AddListener(f), nil
}

// AddAvailableMatchesListener registers a callback run when the available
// match list changes and returns a function that removes it.
func (l *Lobby) AddAvailableMatchesListener(f listener.Func) (remove func()) {
	return l.availability.Add(f)
}
