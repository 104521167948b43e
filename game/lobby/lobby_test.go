package lobby_test

import (
	"strings"
	"testing"

	"github.com/jacobpatterson1549/crossword-extravaganza/game/lobby"
	"github.com/jacobpatterson1549/crossword-extravaganza/game/puzzle"
)

const minimalText = `>> "Minimal" "a small puzzle"

(cat, "feline", DOWN, 0, 1)
(mat, "lies under things", ACROSS, 1, 0)
(car, "vehicle", ACROSS, 0, 1)
(tax, "collected in april", ACROSS, 2, 1)
`

func newLobby(t *testing.T) *lobby.Lobby {
	t.Helper()
	l := lobby.New()
	p, err := puzzle.Parse("minimal", minimalText)
	if err != nil {
		t.Fatalf("parsing puzzle: %v", err)
	}
	if err := l.AddPuzzle(p); err != nil {
		t.Fatalf("adding puzzle: %v", err)
	}
	return l
}

func TestAddUser(t *testing.T) {
	l := newLobby(t)
	if got := l.AddUser("gzlin"); got != "Success" {
		t.Errorf("wanted Success, got %v", got)
	}
	if got := l.AddUser("gzlin"); got != "User ID gzlin already in use" {
		t.Errorf("wanted duplicate user message, got %v", got)
	}
	if !l.HasUser("gzlin") {
		t.Error("wanted gzlin to be joined")
	}
	l.Quit("gzlin")
	if l.HasUser("gzlin") {
		t.Error("did not want gzlin to be joined after quitting")
	}
	if got := l.AddUser("gzlin"); got != "Success" {
		t.Errorf("wanted the name to be reusable after quitting, got %v", got)
	}
}

func TestAddPuzzle(t *testing.T) {
	l := newLobby(t)
	p, err := puzzle.Parse("minimal", minimalText)
	if err != nil {
		t.Fatalf("parsing puzzle: %v", err)
	}
	if err := l.AddPuzzle(p); err == nil {
		t.Error("wanted error adding a puzzle with a duplicate id")
	}
	if l.NumPuzzles() != 1 {
		t.Errorf("wanted 1 puzzle, got %v", l.NumPuzzles())
	}
}

func TestPuzzles(t *testing.T) {
	l := newLobby(t)
	want := `minimal "Minimal" "a small puzzle"`
	if got := l.Puzzles(); got != want {
		t.Errorf("wanted %q, got %q", want, got)
	}
}

func TestNewMatch(t *testing.T) {
	l := newLobby(t)
	l.AddUser("gzlin")
	newMatchTests := []struct {
		user     string
		matchID  string
		puzzleID string
		want     string
	}{
		{"nobody", "m1", "minimal", "Fail User ID nobody is not available in game"},
		{"gzlin", "m1", "missing", "Fail Puzzle id missing is not available in game"},
		{"gzlin", "m1", "minimal", "Success"},
		{"gzlin", "m1", "minimal", "Fail Match ID m1 already in system"},
	}
	for i, test := range newMatchTests {
		if got := l.NewMatch(test.user, test.matchID, test.puzzleID, "the first match"); got != test.want {
			t.Errorf("Test %v: wanted %q, got %q", i, test.want, got)
		}
	}
}

func TestAvailableMatches(t *testing.T) {
	l := newLobby(t)
	l.AddUser("gzlin")
	l.AddUser("lconboy")
	if got := l.AvailableMatches(); got != "" {
		t.Errorf("wanted no available matches, got %q", got)
	}
	notifications := 0
	remove := l.AddAvailableMatchesListener(func() { notifications++ })
	defer remove()
	if got := l.NewMatch("gzlin", "m1", "minimal", "the first match"); got != "Success" {
		t.Fatalf("creating match: %v", got)
	}
	if notifications != 1 {
		t.Errorf("wanted a notification for the new match, got %v", notifications)
	}
	want := `m1 "the first match"`
	if got := l.AvailableMatches(); got != want {
		t.Errorf("wanted %q, got %q", want, got)
	}
	if err := l.PlayMatch("lconboy", "m1"); err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	if notifications != 2 {
		t.Errorf("wanted a notification for the filled match, got %v", notifications)
	}
	if got := l.AvailableMatches(); got != "" {
		t.Errorf("wanted the full match off the list, got %q", got)
	}
}

func TestPlayMatch(t *testing.T) {
	l := newLobby(t)
	l.AddUser("gzlin")
	l.AddUser("lconboy")
	l.AddUser("intruder")
	if got := l.NewMatch("gzlin", "m1", "minimal", "the first match"); got != "Success" {
		t.Fatalf("creating match: %v", got)
	}
	if err := l.PlayMatch("nobody", "m1"); err == nil {
		t.Error("wanted error for an unjoined user")
	}
	if err := l.PlayMatch("lconboy", "m9"); err == nil {
		t.Error("wanted error for a missing match")
	}
	if err := l.PlayMatch("lconboy", "m1"); err != nil {
		t.Errorf("unwanted error: %v", err)
	}
	if err := l.PlayMatch("intruder", "m1"); err == nil {
		t.Error("wanted error for a full match")
	}
}

func TestExitMatch(t *testing.T) {
	l := newLobby(t)
	l.AddUser("gzlin")
	if got := l.NewMatch("gzlin", "m1", "minimal", "the first match"); got != "Success" {
		t.Fatalf("creating match: %v", got)
	}
	notifications := 0
	remove := l.AddAvailableMatchesListener(func() { notifications++ })
	defer remove()
	if err := l.ExitMatch("m9", "gzlin"); err == nil {
		t.Error("wanted error exiting a missing match")
	}
	if err := l.ExitMatch("m1", "nobody"); err == nil {
		t.Error("wanted error exiting a match the player is not in")
	}
	if err := l.ExitMatch("m1", "gzlin"); err != nil {
		t.Errorf("unwanted error: %v", err)
	}
	if notifications != 1 {
		t.Errorf("wanted a notification when the waiting match ended, got %v", notifications)
	}
	if !l.IsMatchOver("m1") {
		t.Error("wanted the match to be over after the exit")
	}
	if got := l.AvailableMatches(); got != "" {
		t.Errorf("wanted the finished match off the list, got %q", got)
	}
}

func TestQuitFinalizesDepartedMatches(t *testing.T) {
	l := newLobby(t)
	l.AddUser("gzlin")
	if got := l.NewMatch("gzlin", "m1", "minimal", "the first match"); got != "Success" {
		t.Fatalf("creating match: %v", got)
	}
	l.Quit("gzlin")
	if _, err := l.Match("m1"); err == nil {
		t.Error("wanted the match removed after its only player quit")
	}
	if !l.IsMatchOver("m1") {
		t.Error("wanted the removed match to count as over")
	}
}

func TestTryGuessAndChallenge(t *testing.T) {
	l := newLobby(t)
	l.AddUser("gzlin")
	l.AddUser("lconboy")
	if got := l.NewMatch("gzlin", "m1", "minimal", "the first match"); got != "Success" {
		t.Fatalf("creating match: %v", got)
	}
	if err := l.PlayMatch("lconboy", "m1"); err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	feedback, err := l.TryGuess("m1", "gzlin", 1, "CAT")
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	if feedback != "Valid guess" {
		t.Errorf("wanted Valid guess, got %v", feedback)
	}
	feedback, err = l.Challenge("m1", "lconboy", 1, "CUT")
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	if feedback != "Failed challenge, target word was already correct" {
		t.Errorf("unwanted challenge feedback: %v", feedback)
	}
	view, err := l.MatchView("m1", "gzlin")
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	if !strings.Contains(view, "+C >1 DOWN 3 ACROSS") {
		t.Errorf("wanted the confirmed C in gzlin's view:\n%v", view)
	}
	if _, err := l.TryGuess("m9", "gzlin", 1, "CAT"); err == nil {
		t.Error("wanted error guessing in a missing match")
	}
}
