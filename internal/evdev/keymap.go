// Package evdev reads navigation keys from a Linux input device
// (/dev/input/event*) such as a keypad, a rotary encoder or a gamepad.
//
// Key events are translated into the codes bound in keys.Bindings so the
// engine sees the same input as from a serial line.
package evdev

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pengelbrecht/apptree/internal/keys"
)

// KeyMap maps evdev key names (KEY_UP, BTN_SOUTH) to bound codes.
type KeyMap map[string]keys.Code

// DefaultKeyMap maps arrow keys, enter, escape and home onto b.
func DefaultKeyMap(b *keys.Bindings) KeyMap {
	return KeyMap{
		"KEY_UP":        b.Up,
		"KEY_DOWN":      b.Down,
		"KEY_RIGHT":     b.Select,
		"KEY_ENTER":     b.Select,
		"KEY_LEFT":      b.Back,
		"KEY_ESC":       b.Back,
		"KEY_BACKSPACE": b.Back,
		"KEY_HOME":      b.Home,
	}
}

// FromActions builds a KeyMap from per-action key name lists, as found in
// configuration files:
//
//	up = ["KEY_UP", "BTN_DPAD_UP"]
//	select = ["enter"]
func FromActions(b *keys.Bindings, actions map[string][]string) (KeyMap, error) {
	km := KeyMap{}
	names := make([]string, 0, len(actions))
	for name := range actions {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		action, err := keys.ParseAction(name)
		if err != nil {
			return nil, err
		}
		code, _ := b.Code(action)
		for _, key := range actions[name] {
			key = NormalizeName(key)
			if prev, dup := km[key]; dup && prev != code {
				return nil, fmt.Errorf("key %s bound to more than one action", key)
			}
			km[key] = code
		}
	}
	return km, nil
}

// NormalizeName upper-cases a key name and adds the KEY_ prefix when no
// known prefix is present, so "enter" becomes KEY_ENTER.
func NormalizeName(name string) string {
	name = strings.ToUpper(strings.TrimSpace(name))
	if strings.HasPrefix(name, "KEY_") || strings.HasPrefix(name, "BTN_") {
		return name
	}
	return "KEY_" + name
}
