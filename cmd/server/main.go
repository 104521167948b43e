// Package main starts the server after loading the puzzles it will host.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/jacobpatterson1549/crossword-extravaganza/game/lobby"
	"github.com/jacobpatterson1549/crossword-extravaganza/game/puzzle"
	"github.com/jacobpatterson1549/crossword-extravaganza/server"
)

// main configures and runs the server.
func main() {
	logFlags := log.Ldate | log.Ltime | log.LUTC | log.Lshortfile | log.Lmsgprefix
	log := log.New(os.Stdout, "", logFlags)
	cmd := cli.Command{
		Name:      "crossword-extravaganza",
		Usage:     "host two-player competitive crossword matches",
		ArgsUsage: "<puzzle-folder>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Usage:   "port to accept game clients on",
				Value:   4949,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.IntFlag{
				Name:    "http-port",
				Usage:   "port to accept websocket clients on, 0 to disable",
				Sources: cli.EnvVars("HTTP_PORT"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "log the requests and responses of every session",
				Sources: cli.EnvVars("DEBUG"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runServer(ctx, cmd, log)
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("running server: %v", err)
	}
	log.Println("server run stopped successfully")
}

// runServer loads the puzzles and runs the server until it is interrupted or
// terminated.
func runServer(ctx context.Context, cmd *cli.Command, log *log.Logger) error {
	l := lobby.New()
	if err := loadPuzzles(cmd.Args().First(), l, log); err != nil {
		return err
	}
	cfg := server.Config{
		Debug:     cmd.Bool("debug"),
		Log:       log,
		Lobby:     l,
		TCPPort:   int(cmd.Int("port")),
		HTTPPort:  int(cmd.Int("http-port")),
		QueueSize: 200,
		StopDur:   5 * time.Second,
	}
	s, err := cfg.NewServer()
	if err != nil {
		return err
	}
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	errC, err := s.Run(ctx)
	if err != nil {
		return err
	}
	done := make(chan os.Signal, 2)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)
	select { // BLOCKING
	case err := <-errC:
		log.Printf("server stopped unexpectedly: %v", err)
	case signal := <-done:
		log.Printf("handled signal: %v", signal)
	}
	cancelFunc()
	if err := s.Stop(context.Background()); err != nil {
		return fmt.Errorf("stopping server: %v", err)
	}
	return nil
}

// loadPuzzles parses every .puzzle file in the folder into the lobby,
// logging and skipping files that fail to parse.  A missing or unreadable
// folder is fatal.
func loadPuzzles(folder string, l *lobby.Lobby, log *log.Logger) error {
	if len(folder) == 0 {
		return fmt.Errorf("puzzle folder argument required")
	}
	filenames, err := filepath.Glob(filepath.Join(folder, "*.puzzle"))
	if err != nil {
		return fmt.Errorf("listing puzzle folder: %w", err)
	}
	if info, err := os.Stat(folder); err != nil || !info.IsDir() {
		return fmt.Errorf("puzzle folder %v is not a directory", folder)
	}
	for _, filename := range filenames {
		pz, err := puzzle.ParseFile(filename)
		if err != nil {
			log.Printf("skipping %v: %v", filename, err)
			continue
		}
		if err := l.AddPuzzle(pz); err != nil {
			log.Printf("skipping %v: %v", filename, err)
		}
	}
	log.Printf("loaded %v puzzles from %v", l.NumPuzzles(), folder)
	return nil
}
