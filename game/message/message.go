// Package message defines the framed messages sent between server and client.
package message

import (
	"fmt"
	"strings"
)

type (
	// Type identifies what a message is for.
	Type int

	// Message is one framed protocol message.  The body is zero or more
	// LF-separated content lines; an empty body frames as zero lines.
	Message struct {
		Type Type
		Body string
	}
)

const (
	// Client requests.
	AddUser Type = iota
	GetPuzzles
	GetMatches
	NewMatch
	PlayMatch
	Try
	Challenge
	ExitMatch
	Quit
	// Server replies and pushes.
	BoardChanged
	GameOver
	AvailableMatches
	InvalidRequest
	// Writer control markers, never transmitted.
	Hold
	Dispose
)

var typeNames = map[Type]string{
	AddUser:          "ADD_USER",
	GetPuzzles:       "GET_PUZZLES",
	GetMatches:       "GET_MATCHES",
	NewMatch:         "NEW_MATCH",
	PlayMatch:        "PLAY_MATCH",
	Try:              "TRY",
	Challenge:        "CHALLENGE",
	ExitMatch:        "EXIT_MATCH",
	Quit:             "QUIT",
	BoardChanged:     "BOARD_CHANGED",
	GameOver:         "GAME_OVER",
	AvailableMatches: "AVAILABLE_MATCHES",
	InvalidRequest:   "INVALID_REQUEST",
	Hold:             "HOLD",
	Dispose:          "DISPOSE",
}

// String returns the wire name of the message type.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseRequestType converts a client command word, case-insensitively, to its
// request type.
func ParseRequestType(s string) (Type, bool) {
	s = strings.ToUpper(s)
	for t := AddUser; t <= Quit; t++ {
		if typeNames[t] == s {
			return t, true
		}
	}
	return 0, false
}

// Frame encodes the message as `<TYPE> <N>\n` followed by the N body lines.
func (m Message) Frame() string {
	if len(m.Body) == 0 {
		return fmt.Sprintf("%v 0\n", m.Type)
	}
	n := strings.Count(m.Body, "\n") + 1
	return fmt.Sprintf("%v %d\n%v\n", m.Type, n, m.Body)
}
