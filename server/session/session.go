// Package session services one client connection: reading requests, running
// them against the lobby, and writing framed replies and pushes in an order
// the client can rely on.
package session

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/jacobpatterson1549/crossword-extravaganza/game/lobby"
	"github.com/jacobpatterson1549/crossword-extravaganza/game/match"
	"github.com/jacobpatterson1549/crossword-extravaganza/game/message"
	"github.com/jacobpatterson1549/crossword-extravaganza/server/runner"
)

type (
	// Conn reads request lines from a client and writes framed responses.
	Conn interface {
		ReadLine() (string, error)
		WriteFrame(frame string) error
		Close() error
	}

	// Session owns one connection.  A reader goroutine decodes and dispatches
	// requests; a writer goroutine drains the message queue to the socket.
	// Listener callbacks from matches and the lobby enqueue onto the same
	// queue from other goroutines.
	Session struct {
		debug       bool
		log         *log.Logger
		lobby       *lobby.Lobby
		conn        Conn
		queue       chan message.Message
		user        string
		availRemove func()
		matchRemove func()
		runner.Runner
	}

	// Config contains commonly shared Session properties.
	Config struct {
		// Debug is a flag that causes the session to log the requests it reads and the frames it writes.
		Debug bool
		// Log is used to log errors and other information.
		Log *log.Logger
		// Lobby runs the requests.
		Lobby *lobby.Lobby
		// QueueSize is the capacity of the outbound message queue.
		QueueSize int
	}
)

// NewSession creates a session for the connection.
func (cfg Config) NewSession(conn Conn) (*Session, error) {
	if err := cfg.validate(conn); err != nil {
		return nil, fmt.Errorf("creating session: validation: %w", err)
	}
	s := Session{
		debug: cfg.Debug,
		log:   cfg.Log,
		lobby: cfg.Lobby,
		conn:  conn,
		queue: make(chan message.Message, cfg.QueueSize),
	}
	return &s, nil
}

func (cfg Config) validate(conn Conn) error {
	switch {
	case cfg.Log == nil:
		return fmt.Errorf("log required")
	case cfg.Lobby == nil:
		return fmt.Errorf("lobby required")
	case conn == nil:
		return fmt.Errorf("connection required")
	case cfg.QueueSize <= 0:
		return fmt.Errorf("positive queue size required")
	}
	return nil
}

// Run services the connection until the client quits, the socket fails, or
// the context is cancelled.  It blocks until both goroutines finish and the
// session's listeners are deregistered.
func (s *Session) Run(ctx context.Context) {
	if err := s.Runner.Run(); err != nil {
		s.log.Printf("running session: %v", err)
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.readRequests(ctx)
	}()
	go func() {
		defer wg.Done()
		s.writeMessages(ctx, cancel)
	}()
	wg.Wait()
	s.removeListeners()
	s.Runner.Finish()
}

// readRequests decodes one request per line and dispatches it until the
// client quits or the read fails.  Both exits enqueue the quit sentinel so
// the writer drains everything already queued, then closes the socket.
func (s *Session) readRequests(ctx context.Context) {
	for {
		line, err := s.conn.ReadLine()
		if err != nil {
			select {
			case <-ctx.Done():
			default:
				s.log.Printf("reading session requests stopped: %v", err)
			}
			s.enqueue(ctx, message.Message{Type: message.Quit})
			return
		}
		if s.debug {
			s.log.Printf("request: %v", line)
		}
		if quit := s.handleRequest(ctx, line); quit {
			return
		}
	}
}

// handleRequest runs one request line, enqueueing the reply, and reports
// whether the client quit.  Anything malformed is answered with
// INVALID_REQUEST echoing the offending input.
func (s *Session) handleRequest(ctx context.Context, line string) (quit bool) {
	tokens := strings.Fields(line)
	invalid := message.Message{Type: message.InvalidRequest, Body: line}
	if len(tokens) == 0 {
		s.enqueue(ctx, invalid)
		return false
	}
	t, ok := message.ParseRequestType(tokens[0])
	if !ok {
		s.enqueue(ctx, invalid)
		return false
	}
	switch t {
	case message.AddUser:
		if len(tokens) != 2 {
			break
		}
		s.handleAddUser(ctx, tokens[1])
		return false
	case message.GetPuzzles:
		if len(tokens) != 1 {
			break
		}
		s.enqueue(ctx, message.Message{Type: message.GetPuzzles, Body: s.lobby.Puzzles()})
		return false
	case message.GetMatches:
		if len(tokens) != 1 {
			break
		}
		s.enqueue(ctx, message.Message{Type: message.GetMatches, Body: s.lobby.AvailableMatches()})
		return false
	case message.NewMatch:
		if ok := s.handleNewMatch(ctx, line); ok {
			return false
		}
	case message.PlayMatch:
		if len(tokens) != 3 {
			break
		}
		s.handlePlayMatch(ctx, tokens[1], tokens[2])
		return false
	case message.Try, message.Challenge:
		if len(tokens) != 5 {
			break
		}
		wordID, err := strconv.Atoi(tokens[3])
		if err != nil {
			break
		}
		s.handleMove(ctx, t, tokens[1], tokens[2], wordID, tokens[4], line)
		return false
	case message.ExitMatch:
		if len(tokens) != 3 {
			break
		}
		s.handleExitMatch(ctx, tokens[1], tokens[2], line)
		return false
	case message.Quit:
		if len(tokens) != 2 {
			break
		}
		s.lobby.Quit(tokens[1])
		s.enqueue(ctx, message.Message{Type: message.Quit})
		return true
	}
	s.enqueue(ctx, invalid)
	return false
}

// handleAddUser joins the user and starts watching match availability for
// pushes once the first join succeeds.
func (s *Session) handleAddUser(ctx context.Context, user string) {
	body := s.lobby.AddUser(user)
	if body == "Success" {
		s.user = user
		if s.availRemove == nil {
			s.availRemove = s.lobby.AddAvailableMatchesListener(func() {
				s.enqueue(ctx, message.Message{Type: message.AvailableMatches, Body: s.lobby.AvailableMatches()})
			})
		}
	}
	s.enqueue(ctx, message.Message{Type: message.AddUser, Body: body})
}

// handleNewMatch parses the quoted description from the raw line, creates the
// match, and watches it on success.  It reports whether the line was well
// formed; a malformed line is answered by the caller.
func (s *Session) handleNewMatch(ctx context.Context, line string) bool {
	i := strings.Index(line, `"`)
	j := strings.LastIndex(line, `"`)
	if i < 0 || j <= i {
		return false
	}
	tokens := strings.Fields(line[:i])
	description := line[i+1 : j]
	if len(tokens) != 4 || len(description) == 0 {
		return false
	}
	user, matchID, puzzleID := tokens[1], tokens[2], tokens[3]
	s.enqueue(ctx, message.Message{Type: message.Dispose})
	body := s.lobby.NewMatch(user, matchID, puzzleID, description)
	if body == "Success" {
		s.watchMatch(ctx, matchID, user)
	}
	s.enqueue(ctx, message.Message{Type: message.NewMatch, Body: body})
	return true
}

// handlePlayMatch seats the user in the match.  The success reply is the
// board view; failures reply on the request type.
func (s *Session) handlePlayMatch(ctx context.Context, user, matchID string) {
	s.enqueue(ctx, message.Message{Type: message.Dispose})
	if err := s.lobby.PlayMatch(user, matchID); err != nil {
		s.enqueue(ctx, message.Message{Type: message.PlayMatch, Body: fmt.Sprintf("Fail %v", err)})
		return
	}
	s.watchMatch(ctx, matchID, user)
	view, err := s.lobby.MatchView(matchID, user)
	if err != nil {
		s.enqueue(ctx, message.Message{Type: message.PlayMatch, Body: fmt.Sprintf("Fail %v", err)})
		return
	}
	s.enqueue(ctx, message.Message{Type: message.BoardChanged, Body: view})
}

// handleMove runs a guess or challenge.  The hold marker makes the writer
// deliver the feedback reply before the board push the move causes.
func (s *Session) handleMove(ctx context.Context, t message.Type, user, matchID string, wordID int, word, line string) {
	s.enqueue(ctx, message.Message{Type: message.Hold})
	var feedback string
	var err error
	switch t {
	case message.Try:
		feedback, err = s.lobby.TryGuess(matchID, user, wordID, word)
	default:
		feedback, err = s.lobby.Challenge(matchID, user, wordID, word)
	}
	if err != nil {
		s.enqueue(ctx, message.Message{Type: message.InvalidRequest, Body: line})
		return
	}
	s.enqueue(ctx, message.Message{Type: t, Body: feedback})
}

// handleExitMatch forfeits the match.  There is no direct reply; the game
// over push from the forfeit is the only response the client sees.
func (s *Session) handleExitMatch(ctx context.Context, user, matchID, line string) {
	s.enqueue(ctx, message.Message{Type: message.Dispose})
	if err := s.lobby.ExitMatch(matchID, user); err != nil {
		s.enqueue(ctx, message.Message{Type: message.InvalidRequest, Body: line})
		return
	}
	if s.matchRemove != nil {
		s.matchRemove()
		s.matchRemove = nil
	}
}

// watchMatch registers a board-change listener that pushes the viewer's board
// to this session, as GAME_OVER once the match has ended.
func (s *Session) watchMatch(ctx context.Context, matchID, viewer string) {
	m, err := s.lobby.Match(matchID)
	if err != nil {
		s.log.Printf("watching match %v: %v", matchID, err)
		return
	}
	if s.matchRemove != nil {
		s.matchRemove()
	}
	s.matchRemove = m.AddListener(func() {
		s.enqueue(ctx, boardMessage(m, viewer))
	})
}

// boardMessage renders the match for the viewer as a board change, or as game
// over if the match has ended.
func boardMessage(m *match.Match, viewer string) message.Message {
	t := message.BoardChanged
	if m.Finalized() {
		t = message.GameOver
	}
	return message.Message{Type: t, Body: m.View(viewer)}
}

// enqueue adds the message to the outbound queue, giving up if the session is
// tearing down.
func (s *Session) enqueue(ctx context.Context, m message.Message) {
	select {
	case s.queue <- m:
	case <-ctx.Done():
	}
}

// writeMessages drains the queue to the socket, applying the ordering
// discipline, until the quit sentinel arrives or a write fails.  It closes
// the socket on the way out, which also stops the reader.
func (s *Session) writeMessages(ctx context.Context, cancel context.CancelFunc) {
	defer func() {
		cancel()
		s.conn.Close()
	}()
	holding := false
	var held []message.Message
	dispose := false
	for {
		var m message.Message
		select {
		case <-ctx.Done():
			return
		case m = <-s.queue:
		}
		switch m.Type {
		case message.Hold:
			holding = true
			continue
		case message.Dispose:
			dispose = true
			continue
		case message.Quit:
			return
		case message.BoardChanged:
			if holding {
				held = append(held, m)
				continue
			}
		case message.AvailableMatches:
			if dispose {
				dispose = false
				continue
			}
		case message.GetMatches, message.GetPuzzles:
			dispose = false
		}
		if err := s.write(m); err != nil {
			return
		}
		if holding && (m.Type == message.Try || m.Type == message.Challenge || m.Type == message.InvalidRequest) {
			holding = false
			for _, h := range held {
				if err := s.write(h); err != nil {
					return
				}
			}
			held = nil
		}
	}
}

// removeListeners deregisters the session from the lobby and any watched match.
func (s *Session) removeListeners() {
	if s.availRemove != nil {
		s.availRemove()
		s.availRemove = nil
	}
	if s.matchRemove != nil {
		s.matchRemove()
		s.matchRemove = nil
	}
}

// write frames and sends one message.
func (s *Session) write(m message.Message) error {
	frame := m.Frame()
	if s.debug {
		s.log.Printf("response: %q", frame)
	}
	if err := s.conn.WriteFrame(frame); err != nil {
		s.log.Printf("writing session message stopped: %v", err)
		return err
	}
	return nil
}
