// Package engine drives menu navigation: it owns the viewport over a frozen
// tree, translates key codes into cursor moves, level changes and
// activations, and repaints the frame after every handled input.
//
// An Engine is single-threaded. The host owns the control loop and calls
// HandleInput (or Run) from one goroutine.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/pengelbrecht/apptree/internal/keys"
	"github.com/pengelbrecht/apptree/internal/render"
	"github.com/pengelbrecht/apptree/internal/tree"
	"github.com/pengelbrecht/apptree/internal/viewport"
)

// Sentinel errors returned by Activate and HandleInput.
var (
	// ErrNotActivated indicates navigation was attempted before Activate.
	ErrNotActivated = errors.New("engine not activated")

	// ErrMissingBindings indicates Activate was called without usable key
	// bindings or without an output sink.
	ErrMissingBindings = errors.New("missing key bindings or output")

	// ErrNoRoot indicates the engine was built without a tree.
	ErrNoRoot = errors.New("no root node")

	// ErrAlreadyActive indicates Activate was called twice.
	ErrAlreadyActive = errors.New("engine already active")

	// ErrNoInput is the normal outcome of a poll with nothing pending.
	ErrNoInput = errors.New("no input available")
)

// IsNoInput reports whether err only means nothing was pending.
func IsNoInput(err error) bool {
	return errors.Is(err, ErrNoInput)
}

// InputSource is a non-blocking probe for the next input unit.
type InputSource interface {
	// Poll returns the next pending code, or false if none is available.
	Poll() (keys.Code, bool)
}

// State is the engine's lifecycle state.
type State int

const (
	StateInactive State = iota
	StateActive
)

// String returns the string representation of the state.
func (s State) String() string {
	if s == StateActive {
		return "active"
	}
	return "inactive"
}

// Config configures an Engine.
type Config struct {
	// FrameHeight is the number of child rows shown at once (0 = DefaultFrameHeight).
	FrameHeight int

	// Bindings maps the five navigation actions to input codes. Required.
	Bindings *keys.Bindings

	// Input is polled by HandleInput. It may be nil for hosts that only use Dispatch.
	Input InputSource

	// Output receives every rendered line. Required.
	Output io.Writer

	// LineEnding terminates each line ("" = render.CRLF).
	LineEnding string

	// Logger receives debug events (nil = discard).
	Logger *slog.Logger
}

// DefaultFrameHeight fits an 80x24 terminal.
const DefaultFrameHeight = viewport.DefaultHeight

// Snapshot is a read-only view of the navigation state.
type Snapshot struct {
	State      State
	Active     tree.NodeID
	Cursor     int
	FrameStart int
	Children   int
	Depth      int
	Path       []string // Titles from the root to the active node
}

// Engine is the navigation state machine.
type Engine struct {
	store  *tree.Store
	view   *viewport.Viewport
	keys   *keys.Bindings
	input  InputSource
	output io.Writer
	eol    string
	log    *slog.Logger
	state  State

	// OnNavigate is called after every handled input that changed the frame.
	OnNavigate func(snap Snapshot)

	// OnRenderError is called when writing a frame to the output fails.
	// Rendering errors never abort navigation.
	OnRenderError func(err error)
}

// New creates an inactive engine over store.
func New(store *tree.Store, cfg Config) *Engine {
	if cfg.FrameHeight <= 0 {
		cfg.FrameHeight = DefaultFrameHeight
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		store:  store,
		view:   viewport.New(cfg.FrameHeight),
		keys:   cfg.Bindings,
		input:  cfg.Input,
		output: cfg.Output,
		eol:    cfg.LineEnding,
		log:    logger,
	}
}

// Activate freezes the tree, shows the root's children and renders once.
func (e *Engine) Activate() error {
	if e.state == StateActive {
		return ErrAlreadyActive
	}
	if e.store == nil {
		return ErrNoRoot
	}
	if e.output == nil {
		return fmt.Errorf("%w: no output", ErrMissingBindings)
	}
	if err := e.keys.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrMissingBindings, err)
	}

	e.store.Freeze()
	e.state = StateActive
	e.enter(e.store.Root())
	e.log.Debug("engine activated",
		"root", e.store.Title(e.store.Root()),
		"nodes", e.store.Len(),
		"frame_height", e.view.Height())
	e.render()
	return nil
}

// State returns the lifecycle state.
func (e *Engine) State() State {
	return e.state
}

// HandleInput polls the input source once and dispatches what it returns.
// It never blocks: with nothing pending it returns ErrNoInput.
func (e *Engine) HandleInput() error {
	if e.state != StateActive {
		return ErrNotActivated
	}
	if e.input == nil {
		return ErrNoInput
	}
	code, ok := e.input.Poll()
	if !ok {
		return ErrNoInput
	}
	return e.Dispatch(code)
}

// Dispatch applies one input code. Codes not bound to an action are ignored.
func (e *Engine) Dispatch(code keys.Code) error {
	if e.state != StateActive {
		return ErrNotActivated
	}

	action := e.keys.Lookup(code)
	var changed bool
	switch action {
	case keys.ActionUp:
		changed = e.move(-1)
	case keys.ActionDown:
		changed = e.move(1)
	case keys.ActionSelect:
		changed = e.selectCurrent()
	case keys.ActionBack:
		changed = e.back()
	case keys.ActionHome:
		changed = e.home()
	default:
		e.log.Debug("ignored input", "code", keys.Label(code))
		return nil
	}

	if changed {
		e.render()
		if e.OnNavigate != nil {
			e.OnNavigate(e.Snapshot())
		}
	}
	return nil
}

func (e *Engine) move(delta int) bool {
	e.view.MoveCursor(delta)
	e.view.Reframe()
	return true
}

func (e *Engine) selectCurrent() bool {
	active := e.view.Active()
	index := e.view.Cursor()
	child := e.store.Child(active, index)
	if child == tree.NoNode {
		return false
	}

	if e.store.ChildCount(child) > 0 {
		e.log.Debug("descend", "node", e.store.Title(child))
		e.enter(child)
		return true
	}

	fn := e.store.Activation(child)
	if fn == nil {
		return false
	}
	e.log.Debug("activate", "node", e.store.Title(child), "index", index)
	fn(active, index)
	e.store.ApplyActivation(active, index)
	if e.store.Mode(active) != tree.ModeNone {
		e.log.Debug("selection updated",
			"parent", e.store.Title(active),
			"mode", e.store.Mode(active).String(),
			"selected", e.store.SelectedIndices(active))
	}
	return true
}

func (e *Engine) back() bool {
	active := e.view.Active()
	if active == e.store.Root() {
		return false
	}
	e.log.Debug("back", "from", e.store.Title(active))
	e.enter(e.store.Parent(active))
	return true
}

func (e *Engine) home() bool {
	if e.view.Active() == e.store.Root() {
		return false
	}
	e.log.Debug("home")
	e.enter(e.store.Root())
	return true
}

func (e *Engine) enter(node tree.NodeID) {
	e.view.Enter(node, e.store.Titles(node))
}

// Frame returns the frame the next render would emit.
func (e *Engine) Frame() render.Frame {
	active := e.view.Active()
	f := render.Frame{
		Title: e.store.Title(active),
		Mode:  e.store.Mode(active),
	}
	if e.keys != nil {
		f.Legend = e.keys.Legend()
	}
	for _, r := range e.view.Rows() {
		row := render.Row{Index: r.Index, Title: r.Title, Cursor: r.Cursor}
		if !r.Blank() {
			row.Selected = e.store.Selected(e.store.Child(active, r.Index))
		}
		f.Rows = append(f.Rows, row)
	}
	if cur := e.store.Child(active, e.view.Cursor()); cur != tree.NoNode {
		f.Info = e.store.Info(cur)
	}
	return f
}

func (e *Engine) render() {
	if err := render.Emit(e.output, render.Build(e.Frame()), e.eol); err != nil {
		e.log.Error("render failed", "error", err)
		if e.OnRenderError != nil {
			e.OnRenderError(err)
		}
	}
}

// Snapshot returns the current navigation state.
func (e *Engine) Snapshot() Snapshot {
	active := e.view.Active()
	snap := Snapshot{
		State:      e.state,
		Active:     active,
		Cursor:     e.view.Cursor(),
		FrameStart: e.view.FrameStart(),
		Children:   e.view.Len(),
	}
	if active == tree.NoNode {
		return snap
	}
	snap.Depth = e.store.Depth(active)
	for cur := active; cur != tree.NoNode; cur = e.store.Parent(cur) {
		snap.Path = append([]string{e.store.Title(cur)}, snap.Path...)
	}
	return snap
}

// DefaultPollInterval is how often Run polls an idle input source.
const DefaultPollInterval = 10 * time.Millisecond

// Run is a host control loop: it drains the input source, then sleeps for
// interval (0 = DefaultPollInterval) whenever nothing is pending. It returns
// when ctx ends.
func (e *Engine) Run(ctx context.Context, interval time.Duration) error {
	if e.state != StateActive {
		return ErrNotActivated
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := e.HandleInput()
		if err == nil {
			continue
		}
		if !IsNoInput(err) {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
