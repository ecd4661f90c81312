package termio

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// RawTerminal holds a tty in raw mode so that every key press reaches the
// input source unbuffered and unechoed.
type RawTerminal struct {
	fd    int
	state *term.State
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// MakeRaw switches f into raw mode. Call Restore to undo it.
func MakeRaw(f *os.File) (*RawTerminal, error) {
	fd := int(f.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("make raw %s: %w", f.Name(), err)
	}
	return &RawTerminal{fd: fd, state: state}, nil
}

// Restore returns the terminal to the mode it had before MakeRaw. It is
// safe to call more than once.
func (t *RawTerminal) Restore() error {
	if t == nil || t.state == nil {
		return nil
	}
	err := term.Restore(t.fd, t.state)
	t.state = nil
	if err != nil {
		return fmt.Errorf("restore terminal: %w", err)
	}
	return nil
}
