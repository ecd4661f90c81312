package tree

import (
	"fmt"
	"strings"
)

// Mode is the selection discipline a node applies to its children.
type Mode int

const (
	// ModeNone leaves children's selected flags inert and hidden.
	ModeNone Mode = iota

	// ModeExclusive keeps at most one child selected (radio semantics).
	ModeExclusive

	// ModeMulti lets each child be toggled independently (checkbox semantics).
	ModeMulti
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeExclusive:
		return "exclusive"
	case ModeMulti:
		return "multi"
	default:
		return "none"
	}
}

// ParseMode parses a mode name. The empty string maps to ModeNone.
// "single" and "radio" are accepted as aliases for exclusive, "checkbox" for multi.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "simple":
		return ModeNone, nil
	case "exclusive", "single", "radio":
		return ModeExclusive, nil
	case "multi", "checkbox":
		return ModeMulti, nil
	default:
		return ModeNone, fmt.Errorf("unknown selection mode %q", s)
	}
}
