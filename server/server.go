// Package server accepts client connections and hands each one to a session.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/jacobpatterson1549/crossword-extravaganza/game/lobby"
	"github.com/jacobpatterson1549/crossword-extravaganza/server/session"
	"github.com/jacobpatterson1549/crossword-extravaganza/server/session/gorilla"
)

type (
	// Server listens for game clients.  Native clients connect over TCP; if an
	// HTTP port is configured, browser clients can connect over a websocket at
	// /lobby, speaking the same line protocol.
	Server struct {
		Config
		listener   net.Listener
		httpServer *http.Server
		upgrader   *websocket.Upgrader
		wg         sync.WaitGroup
	}

	// Config contains commonly shared Server properties.
	Config struct {
		// Debug is a flag that causes sessions to log the messages they read and write.
		Debug bool
		// Log is used to log errors and other information.
		Log *log.Logger
		// Lobby runs the requests of every session.
		Lobby *lobby.Lobby
		// TCPPort is the port the TCP listener binds to.
		TCPPort int
		// HTTPPort is the port the websocket listener binds to.  Zero disables it.
		HTTPPort int
		// QueueSize is the outbound queue capacity of each session.
		QueueSize int
		// StopDur is how long to wait for sessions to finish when stopping.
		StopDur time.Duration
	}
)

// NewServer creates a server from the config.
func (cfg Config) NewServer() (*Server, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("creating server: validation: %w", err)
	}
	s := Server{
		Config: cfg,
	}
	if cfg.HTTPPort > 0 {
		r := mux.NewRouter()
		r.HandleFunc("/lobby", s.handleLobbyConnect)
		s.httpServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
			Handler: r,
		}
		s.upgrader = new(websocket.Upgrader)
	}
	return &s, nil
}

func (cfg Config) validate() error {
	switch {
	case cfg.Log == nil:
		return fmt.Errorf("log required")
	case cfg.Lobby == nil:
		return fmt.Errorf("lobby required")
	case cfg.TCPPort < 0:
		return fmt.Errorf("tcp port must not be negative")
	case cfg.HTTPPort < 0:
		return fmt.Errorf("http port must not be negative")
	case cfg.QueueSize <= 0:
		return fmt.Errorf("positive queue size required")
	case cfg.StopDur <= 0:
		return fmt.Errorf("positive stop duration required")
	}
	return nil
}

// Run binds the listeners and accepts connections until the server is
// stopped.  The returned channel reports the errors that end each listener.
func (s *Server) Run(ctx context.Context) (<-chan error, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.TCPPort))
	if err != nil {
		return nil, fmt.Errorf("binding port %v: %w", s.TCPPort, err)
	}
	s.listener = listener
	errC := make(chan error, 2)
	go s.acceptConnections(ctx, errC)
	if s.httpServer != nil {
		go func() {
			errC <- s.httpServer.ListenAndServe()
		}()
	}
	s.Log.Printf("accepting clients on %v", listener.Addr())
	return errC, nil
}

// Addr returns the address of the TCP listener.  Run must have been called.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// acceptConnections runs a session for each accepted connection until the
// listener closes.
func (s *Server) acceptConnections(ctx context.Context, errC chan<- error) {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			errC <- err
			return
		}
		go s.runSession(ctx, session.NewNetConn(conn))
	}
}

// handleLobbyConnect upgrades a browser connection to a websocket session.
// It blocks for the life of the session so the request context stays valid.
func (s *Server) handleLobbyConnect(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Log.Printf("upgrading websocket: %v", err)
		return
	}
	s.runSession(r.Context(), gorilla.NewConn(ws))
}

// runSession services the connection until it closes.
func (s *Server) runSession(ctx context.Context, conn session.Conn) {
	s.wg.Add(1)
	defer s.wg.Done()
	cfg := session.Config{
		Debug:     s.Debug,
		Log:       s.Log,
		Lobby:     s.Lobby,
		QueueSize: s.QueueSize,
	}
	sn, err := cfg.NewSession(conn)
	if err != nil {
		s.Log.Printf("running session: %v", err)
		conn.Close()
		return
	}
	sn.Run(ctx)
}

// Stop closes the listeners and waits up to the stop duration for the
// running sessions to finish.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancelFunc := context.WithTimeout(ctx, s.StopDur)
	defer cancelFunc()
	var listenErr, httpErr error
	if s.listener != nil {
		listenErr = s.listener.Close()
	}
	if s.httpServer != nil {
		httpErr = s.httpServer.Shutdown(ctx)
	}
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
	switch {
	case listenErr != nil:
		return listenErr
	case httpErr != nil:
		return httpErr
	}
	return nil
}
