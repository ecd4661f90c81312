package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/pengelbrecht/apptree/internal/keys"
)

// KeyMap defines the key bindings for the TUI. The five navigation bindings
// carry the engine's bound key plus the usual terminal aliases.
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Back   key.Binding
	Home   key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// NewKeyMap builds the TUI bindings around the engine bindings b. An alias
// is dropped when another action is bound to that key, so a bound key
// always runs its own action.
func NewKeyMap(b *keys.Bindings) KeyMap {
	bound := make(map[string]bool, len(keys.Actions))
	for _, a := range keys.Actions {
		if code, ok := b.Code(a); ok {
			bound[keyName(code)] = true
		}
	}

	km := KeyMap{
		Up:     navBinding(b.Up, "up", bound, "up"),
		Down:   navBinding(b.Down, "down", bound, "down"),
		Select: navBinding(b.Select, "select", bound, "right", "enter"),
		Back:   navBinding(b.Back, "back", bound, "left", "esc"),
		Home:   navBinding(b.Home, "home", bound, "home"),
	}

	helpKey := "?"
	if bound[helpKey] {
		helpKey = "f1"
	}
	km.Help = key.NewBinding(
		key.WithKeys(helpKey),
		key.WithHelp(helpKey, "help"),
	)

	quitKeys := []string{"ctrl+c"}
	if !bound["q"] {
		quitKeys = append(quitKeys, "q")
	}
	km.Quit = key.NewBinding(
		key.WithKeys(quitKeys...),
		key.WithHelp(quitKeys[len(quitKeys)-1], "quit"),
	)
	return km
}

// navBinding binds the engine key plus the aliases no action is bound to.
func navBinding(code keys.Code, desc string, bound map[string]bool, aliases ...string) key.Binding {
	ks := []string{keyName(code)}
	for _, a := range aliases {
		if !bound[a] {
			ks = append(ks, a)
		}
	}
	return key.NewBinding(
		key.WithKeys(ks...),
		key.WithHelp(keys.Label(code), desc),
	)
}

// keyName returns the tea.KeyMsg string for a bound code.
func keyName(code keys.Code) string {
	switch code {
	case '\r', '\n':
		return "enter"
	case ' ':
		return " "
	case '\t':
		return "tab"
	case 0x1b:
		return "esc"
	case 0x7f:
		return "backspace"
	}
	return string(rune(code))
}

// ShortHelp returns a short help string for the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Back, k.Home, k.Quit}
}

// FullHelp returns all key bindings for the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Select, k.Back, k.Home},
		{k.Help, k.Quit},
	}
}
