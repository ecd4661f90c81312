// Package keys defines the five navigation actions and the key codes bound
// to them.
package keys

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Code is one opaque input unit. Byte-oriented sources use the byte value;
// other sources translate their events into the bound codes.
type Code uint32

// Action is a navigation action.
type Action int

const (
	ActionNone Action = iota
	ActionUp
	ActionDown
	ActionSelect
	ActionBack
	ActionHome
)

// String returns the string representation of the action.
func (a Action) String() string {
	switch a {
	case ActionUp:
		return "up"
	case ActionDown:
		return "down"
	case ActionSelect:
		return "select"
	case ActionBack:
		return "back"
	case ActionHome:
		return "home"
	default:
		return "none"
	}
}

// Actions lists the bindable actions in legend order.
var Actions = []Action{ActionUp, ActionDown, ActionSelect, ActionBack, ActionHome}

// ParseAction converts an action name to an Action.
func ParseAction(s string) (Action, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, a := range Actions {
		if a.String() == name {
			return a, nil
		}
	}
	return ActionNone, fmt.Errorf("unknown action %q", s)
}

// Bindings maps each action to one input code.
type Bindings struct {
	Up     Code
	Down   Code
	Select Code
	Back   Code
	Home   Code
}

// Default returns the vi-style bindings k, j, l, h and g.
func Default() *Bindings {
	return &Bindings{
		Up:     'k',
		Down:   'j',
		Select: 'l',
		Back:   'h',
		Home:   'g',
	}
}

// Lookup returns the action bound to code, or ActionNone.
func (b *Bindings) Lookup(code Code) Action {
	if b == nil {
		return ActionNone
	}
	switch code {
	case b.Up:
		return ActionUp
	case b.Down:
		return ActionDown
	case b.Select:
		return ActionSelect
	case b.Back:
		return ActionBack
	case b.Home:
		return ActionHome
	}
	return ActionNone
}

// Code returns the code bound to action.
func (b *Bindings) Code(action Action) (Code, bool) {
	if b == nil {
		return 0, false
	}
	switch action {
	case ActionUp:
		return b.Up, true
	case ActionDown:
		return b.Down, true
	case ActionSelect:
		return b.Select, true
	case ActionBack:
		return b.Back, true
	case ActionHome:
		return b.Home, true
	}
	return 0, false
}

// Set rebinds action to code. It reports false for ActionNone.
func (b *Bindings) Set(action Action, code Code) bool {
	switch action {
	case ActionUp:
		b.Up = code
	case ActionDown:
		b.Down = code
	case ActionSelect:
		b.Select = code
	case ActionBack:
		b.Back = code
	case ActionHome:
		b.Home = code
	default:
		return false
	}
	return true
}

// ErrInvalidBindings is returned by Validate.
var ErrInvalidBindings = errors.New("invalid key bindings")

// Validate checks that every action has a distinct, non-zero code.
func (b *Bindings) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: no bindings", ErrInvalidBindings)
	}
	seen := make(map[Code]Action, 5)
	for _, a := range Actions {
		c, _ := b.Code(a)
		if c == 0 {
			return fmt.Errorf("%w: %s is unbound", ErrInvalidBindings, a)
		}
		if prev, dup := seen[c]; dup {
			return fmt.Errorf("%w: %s and %s share %s", ErrInvalidBindings, prev, a, Label(c))
		}
		seen[c] = a
	}
	return nil
}

// Legend renders the key-binding line shown at the bottom of every frame.
func (b *Bindings) Legend() string {
	return fmt.Sprintf("KEY BINDINGS => UP:[%s]  DOWN:[%s]  SELECT:[%s]  BACK:[%s]  HOME:[%s]",
		Label(b.Up), Label(b.Down), Label(b.Select), Label(b.Back), Label(b.Home))
}

var namedCodes = map[string]Code{
	"enter":     '\r',
	"return":    '\r',
	"newline":   '\n',
	"space":     ' ',
	"tab":       '\t',
	"esc":       0x1b,
	"escape":    0x1b,
	"backspace": 0x7f,
}

// ParseCode parses a binding from configuration. It accepts a single
// character ("k"), a named key ("enter", "space", "tab", "esc",
// "backspace") or a number ("0x1b", "27").
func ParseCode(s string) (Code, error) {
	if s == "" {
		return 0, fmt.Errorf("empty key")
	}
	if r := []rune(s); len(r) == 1 {
		return Code(r[0]), nil
	}
	if c, ok := namedCodes[strings.ToLower(s)]; ok {
		return c, nil
	}
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("unknown key %q", s)
	}
	return Code(n), nil
}

// Label returns a short printable name for code.
func Label(c Code) string {
	switch c {
	case '\r':
		return "enter"
	case '\n':
		return "newline"
	case ' ':
		return "space"
	case '\t':
		return "tab"
	case 0x1b:
		return "esc"
	case 0x7f:
		return "backspace"
	}
	if c > 0x20 && c < 0x7f || c > 0xa0 && c <= 0x10ffff {
		return string(rune(c))
	}
	return fmt.Sprintf("0x%02x", uint32(c))
}
