package puzzle

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jacobpatterson1549/crossword-extravaganza/game"
)

// ParseFile reads a .puzzle file and parses it.  The puzzle id is the file
// name without its directory or .puzzle suffix.
func ParseFile(filename string) (*Puzzle, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading puzzle file: %w", err)
	}
	id := strings.TrimSuffix(filepath.Base(filename), ".puzzle")
	return Parse(id, string(b))
}

// Parse parses puzzle-file text:
//
//	file        ::= ">>" name description "\n"+ entry*
//	entry       ::= "(" wordName "," clue "," direction "," row "," col ")"
//	name        ::= string
//	description ::= string
//	wordName    ::= [a-z\-]+
//	direction   ::= "DOWN" | "ACROSS"
//	row, col    ::= [0-9]+
//	string      ::= '"' ( [^"\r\n\\] | '\\' [\\nrt] )* '"'
//	comment     ::= "//" [^\r\n]*
//
// Spaces, tabs, carriage returns, and comments separate tokens anywhere;
// newlines separate tokens only after the header and inside entries.  String
// contents are kept verbatim, escapes included, so they round-trip into the
// match view unchanged.
func Parse(id, text string) (*Puzzle, error) {
	p := parser{text: text}
	pz, err := p.file(id)
	if err != nil {
		return nil, fmt.Errorf("parsing puzzle %v: %w", id, err)
	}
	return pz, nil
}

// parser scans puzzle-file text by byte offset.
type parser struct {
	text string
	pos  int
}

// file parses the whole input and builds the puzzle.
func (p *parser) file(id string) (*Puzzle, error) {
	p.skipSpace(false)
	if !p.accept(">>") {
		return nil, p.errorf("want '>>'")
	}
	p.skipSpace(false)
	name, err := p.string()
	if err != nil {
		return nil, err
	}
	p.skipSpace(false)
	description, err := p.string()
	if err != nil {
		return nil, err
	}
	p.skipSpace(false)
	if !p.accept("\n") {
		return nil, p.errorf("want newline after description")
	}
	var entries []Entry
	for {
		p.skipSpace(true)
		if p.pos >= len(p.text) {
			break
		}
		e, err := p.entry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return New(id, name, description, entries)
}

// entry parses one parenthesized entry.
func (p *parser) entry() (*Entry, error) {
	if !p.accept("(") {
		return nil, p.errorf("want '('")
	}
	p.skipSpace(true)
	answer := p.wordName()
	if len(answer) == 0 {
		return nil, p.errorf("want word name")
	}
	clue, err := entryField(p, (*parser).string)
	if err != nil {
		return nil, err
	}
	direction, err := entryField(p, (*parser).direction)
	if err != nil {
		return nil, err
	}
	row, err := entryField(p, (*parser).int)
	if err != nil {
		return nil, err
	}
	col, err := entryField(p, (*parser).int)
	if err != nil {
		return nil, err
	}
	p.skipSpace(true)
	if !p.accept(")") {
		return nil, p.errorf("want ')'")
	}
	return NewEntry(answer, clue, direction, row, col)
}

// entryField skips the comma before an entry field and parses it.
func entryField[T any](p *parser, parse func(*parser) (T, error)) (T, error) {
	var zero T
	p.skipSpace(true)
	if !p.accept(",") {
		return zero, p.errorf("want ','")
	}
	p.skipSpace(true)
	return parse(p)
}

// string parses a double-quoted string, returning its contents verbatim.
func (p *parser) string() (string, error) {
	if !p.accept(`"`) {
		return "", p.errorf("want '\"'")
	}
	start := p.pos
	for p.pos < len(p.text) {
		switch c := p.text[p.pos]; c {
		case '"':
			s := p.text[start:p.pos]
			p.pos++
			return s, nil
		case '\r', '\n':
			return "", p.errorf("newline in string")
		case '\\':
			if p.pos+1 >= len(p.text) || !strings.ContainsRune(`\nrt`, rune(p.text[p.pos+1])) {
				return "", p.errorf("bad escape in string")
			}
			p.pos += 2
		default:
			p.pos++
		}
	}
	return "", p.errorf("unterminated string")
}

// wordName scans a run of lower-case letters and hyphens.
func (p *parser) wordName() string {
	start := p.pos
	for p.pos < len(p.text) {
		c := p.text[p.pos]
		if (c < 'a' || c > 'z') && c != '-' {
			break
		}
		p.pos++
	}
	return p.text[start:p.pos]
}

// direction parses DOWN or ACROSS.
func (p *parser) direction() (game.Direction, error) {
	for _, d := range []game.Direction{game.Down, game.Across} {
		if p.accept(d.String()) {
			return d, nil
		}
	}
	return 0, p.errorf("want DOWN or ACROSS")
}

// int parses an unsigned decimal integer.
func (p *parser) int() (int, error) {
	start := p.pos
	for p.pos < len(p.text) && p.text[p.pos] >= '0' && p.text[p.pos] <= '9' {
		p.pos++
	}
	if start == p.pos {
		return 0, p.errorf("want integer")
	}
	n, err := strconv.Atoi(p.text[start:p.pos])
	if err != nil {
		return 0, p.errorf("bad integer: %v", err)
	}
	return n, nil
}

// accept consumes the literal s if it is next in the input.
func (p *parser) accept(s string) bool {
	if strings.HasPrefix(p.text[p.pos:], s) {
		p.pos += len(s)
		return true
	}
	return false
}

// skipSpace consumes spaces, tabs, carriage returns, and comments, plus
// newlines when allowNewline is set.
func (p *parser) skipSpace(allowNewline bool) {
	for p.pos < len(p.text) {
		switch c := p.text[p.pos]; {
		case c == ' ' || c == '\t' || c == '\r':
			p.pos++
		case c == '\n' && allowNewline:
			p.pos++
		case strings.HasPrefix(p.text[p.pos:], "//"):
			for p.pos < len(p.text) && p.text[p.pos] != '\n' {
				p.pos++
			}
		default:
			return
		}
	}
}

// errorf creates an error naming the line the parser stopped on.
func (p *parser) errorf(format string, v ...interface{}) error {
	line := 1 + strings.Count(p.text[:p.pos], "\n")
	return fmt.Errorf("line %d: "+format, append([]interface{}{line}, v...)...)
}
