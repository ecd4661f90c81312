// Package tui hosts the menu engine inside a Bubble Tea program.
//
// The engine renders into an in-memory screen; every key press is queued,
// handled by the engine, and the captured frame becomes the view.
package tui

import (
	"bytes"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pengelbrecht/apptree/internal/engine"
	"github.com/pengelbrecht/apptree/internal/keys"
	"github.com/pengelbrecht/apptree/internal/render"
	"github.com/pengelbrecht/apptree/internal/termio"
	"github.com/pengelbrecht/apptree/internal/tree"
)

func init() {
	// Force TrueColor for terminals that misreport capabilities (e.g., TERM=screen in tmux)
	os.Setenv("COLORTERM", "truecolor")
}

// Config holds TUI configuration.
type Config struct {
	// FrameHeight is the number of menu rows (0 = engine default).
	FrameHeight int

	// Bindings are the engine key bindings (nil = keys.Default()).
	Bindings *keys.Bindings

	// Engine passes hooks and a logger through to the engine.
	Engine engine.Config

	// Status returns a line shown above the footer, e.g. the last action
	// run. Nil hides the line.
	Status func() string

	// Done ends the program once closed; activation callbacks use it to
	// quit. It is checked after every handled key.
	Done <-chan struct{}
}

// StatusMsg replaces the status line until the next one arrives.
type StatusMsg string

// Model is the Bubble Tea model hosting one engine.
type Model struct {
	engine *engine.Engine
	queue  *termio.Queue
	screen *bytes.Buffer
	codes  *keys.Bindings
	lines  []string

	keys     KeyMap
	help     help.Model
	showHelp bool
	status   func() string
	done     <-chan struct{}
	message  string
	quitting bool
	err      error

	width  int
	height int
}

// New activates an engine over store and returns the model showing its
// first frame.
func New(store *tree.Store, cfg Config) (Model, error) {
	b := cfg.Bindings
	if b == nil {
		b = keys.Default()
	}

	m := Model{
		queue:  termio.NewQueue(),
		screen: &bytes.Buffer{},
		codes:  b,
		keys:   NewKeyMap(b),
		help:   help.New(),
		status: cfg.Status,
		done:   cfg.Done,
	}
	m.help.Styles.ShortKey = keyStyle
	m.help.Styles.ShortDesc = descStyle
	m.help.Styles.ShortSeparator = descStyle

	ec := cfg.Engine
	ec.FrameHeight = cfg.FrameHeight
	ec.Bindings = b
	ec.Input = m.queue
	ec.Output = m.screen
	ec.LineEnding = render.LF
	m.engine = engine.New(store, ec)

	if err := m.engine.Activate(); err != nil {
		return Model{}, err
	}
	m.capture()
	return m, nil
}

// capture moves the last rendered frame out of the screen buffer.
func (m *Model) capture() {
	if m.screen.Len() == 0 {
		return
	}
	m.lines = strings.Split(strings.TrimSuffix(m.screen.String(), render.LF), render.LF)
	m.screen.Reset()
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case StatusMsg:
		m.message = string(msg)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		}

		action := m.actionFor(msg)
		if action == keys.ActionNone {
			return m, nil
		}
		code, _ := m.codes.Code(action)
		m.queue.Push(code)
		if err := m.engine.HandleInput(); err != nil && !engine.IsNoInput(err) {
			m.err = err
			return m, tea.Quit
		}
		m.capture()
		if m.finished() {
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) finished() bool {
	if m.done == nil {
		return false
	}
	select {
	case <-m.done:
		return true
	default:
		return false
	}
}

func (m Model) actionFor(msg tea.KeyMsg) keys.Action {
	switch {
	case key.Matches(msg, m.keys.Up):
		return keys.ActionUp
	case key.Matches(msg, m.keys.Down):
		return keys.ActionDown
	case key.Matches(msg, m.keys.Select):
		return keys.ActionSelect
	case key.Matches(msg, m.keys.Back):
		return keys.ActionBack
	case key.Matches(msg, m.keys.Home):
		return keys.ActionHome
	}
	return keys.ActionNone
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	view := m.renderFrame()
	if m.showHelp {
		return m.renderHelpOverlay(view)
	}
	return view
}

// Snapshot returns the engine's navigation state.
func (m Model) Snapshot() engine.Snapshot {
	return m.engine.Snapshot()
}

// Lines returns the last frame exactly as the engine rendered it.
func (m Model) Lines() []string {
	return append([]string(nil), m.lines...)
}

// Err returns the error that stopped the program, if any.
func (m Model) Err() error {
	return m.err
}
