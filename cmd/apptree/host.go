package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/pengelbrecht/apptree/internal/config"
	"github.com/pengelbrecht/apptree/internal/engine"
	"github.com/pengelbrecht/apptree/internal/evdev"
	"github.com/pengelbrecht/apptree/internal/keys"
	"github.com/pengelbrecht/apptree/internal/logging"
	"github.com/pengelbrecht/apptree/internal/menufile"
	"github.com/pengelbrecht/apptree/internal/termio"
	"github.com/pengelbrecht/apptree/internal/tree"
	"github.com/pengelbrecht/apptree/internal/tui"
	"github.com/pengelbrecht/apptree/internal/update"
)

// menusDir holds menu files offered by the run command's picker.
const menusDir = "menus"

// settings is the merged result of the config file and command-line flags.
type settings struct {
	dir      string
	cfg      *config.Config
	height   int
	eol      string
	bindings *keys.Bindings
	log      *logging.Logger
}

func loadSettings(cmd *cobra.Command) (*settings, error) {
	flags := cmd.Flags()
	dir, _ := flags.GetString("dir")
	cfgPath, _ := flags.GetString("config")

	var cfg *config.Config
	var err error
	if cfgPath != "" {
		cfg, err = config.LoadFile(cfgPath)
	} else {
		cfg, err = config.Load(dir)
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	s := &settings{dir: dir, cfg: cfg, height: cfg.Height()}
	if h, _ := flags.GetInt("frame-height"); h > 0 {
		s.height = h
	}

	s.eol, err = cfg.EOL()
	if err != nil {
		return nil, err
	}
	if le, _ := flags.GetString("line-ending"); le != "" {
		if s.eol, err = (&config.Config{LineEnding: le}).EOL(); err != nil {
			return nil, fmt.Errorf("--line-ending: %w", err)
		}
	}

	if s.bindings, err = cfg.Bindings(); err != nil {
		return nil, err
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	if l, _ := flags.GetString("log-level"); l != "" {
		level = l
	}
	logPath := cfg.LogPath()
	if cfg == nil {
		logPath = filepath.Join(dir, config.Dir, config.DefaultLogFile)
	}
	if lf, _ := flags.GetString("log-file"); lf == "-" {
		logPath = ""
	} else if lf != "" {
		logPath = lf
	}
	s.log = logging.New(logging.Options{Path: logPath, Level: level})
	return s, nil
}

// menuPath resolves the menu file from the argument or the config. An empty
// result means the built-in demo.
func (s *settings) menuPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	if p := s.cfg.MenuPath(); p != "" {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(s.dir, p)
	}
	return ""
}

func loadMenu(path string) (*menufile.Menu, error) {
	if path == "" {
		return demoMenu(), nil
	}
	return menufile.Load(path)
}

func describe(path string) string {
	if path == "" {
		return "built-in demo"
	}
	return path
}

// host owns the store and the actions menu files can name.
type host struct {
	store  *tree.Store
	log    *logging.Logger
	cancel context.CancelFunc

	mu     sync.Mutex
	status string
}

func newHost(log *logging.Logger, cancel context.CancelFunc) *host {
	return &host{log: log, cancel: cancel}
}

func (h *host) actions() menufile.Actions {
	a := menufile.Actions{}
	a.Register("noop", func(tree.NodeID, int) {})
	a.Register("log", h.logActivation)
	a.Register("quit", func(parent tree.NodeID, index int) {
		h.log.Info("quit selected")
		h.cancel()
	})
	return a
}

func (h *host) logActivation(parent tree.NodeID, index int) {
	item := h.store.Title(h.store.Child(parent, index))
	menu := h.store.Title(parent)
	h.log.Info("item activated", "menu", menu, "item", item, "index", index)
	h.setStatus(fmt.Sprintf("%s: %s", menu, item))
}

func (h *host) setStatus(s string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status = s
}

func (h *host) lastStatus() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

func (h *host) build(m *menufile.Menu) (*tree.Store, error) {
	store, err := menufile.Build(m, h.actions())
	if err != nil {
		return nil, err
	}
	h.store = store
	return store, nil
}

// finiteSource is an input source whose reader can stop.
type finiteSource interface {
	engine.InputSource
	Done() <-chan struct{}
}

// sessionSource ends the session once its source has stopped and every
// buffered code was handled. With interrupts set it also ends on ctrl+c or
// ctrl+d, which a raw terminal delivers as bytes instead of signals.
type sessionSource struct {
	src        finiteSource
	cancel     context.CancelFunc
	interrupts bool
}

func (s sessionSource) Poll() (keys.Code, bool) {
	finished := closed(s.src.Done())
	c, ok := s.src.Poll()
	switch {
	case !ok:
		if finished {
			s.cancel()
		}
		return 0, false
	case s.interrupts && (c == 0x03 || c == 0x04):
		s.cancel()
		return 0, false
	}
	return c, true
}

func closed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	defer s.log.Close()

	path := s.menuPath(args)
	if path == "" {
		files, errs := tui.FindMenus(filepath.Join(s.dir, config.Dir, menusDir))
		for _, e := range errs {
			if !errors.Is(e, os.ErrNotExist) {
				s.log.Warn("skipping menu file", "error", e)
			}
		}
		switch {
		case len(files) == 1:
			path = files[0].Path
		case len(files) > 1:
			path, err = tui.PickMenu(files)
			if err != nil {
				return err
			}
			if path == "" {
				return nil
			}
		}
	}

	menu, err := loadMenu(path)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	h := newHost(s.log, cancel)
	store, err := h.build(menu)
	if err != nil {
		return err
	}
	s.log.Info("starting tui", "menu", describe(path), "nodes", store.Len())

	return tui.Run(store, tui.Config{
		FrameHeight: s.height,
		Bindings:    s.bindings,
		Engine:      engine.Config{Logger: s.log.Logger},
		Status:      h.lastStatus,
		Done:        ctx.Done(),
	})
}

func runSerial(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	defer s.log.Close()

	menu, err := loadMenu(s.menuPath(args))
	if err != nil {
		return err
	}

	device, _ := cmd.Flags().GetString("device")
	if device == "" {
		device = s.cfg.SerialDevice()
	}
	backlog, _ := cmd.Flags().GetInt("backlog")

	in, out := io.Reader(os.Stdin), io.Writer(os.Stdout)
	tty := os.Stdin
	if device != "" {
		f, err := os.OpenFile(device, os.O_RDWR, 0)
		if err != nil {
			return fmt.Errorf("open serial device: %w", err)
		}
		defer f.Close()
		in, out, tty = f, f, f
	}
	if termio.IsTerminal(tty) {
		raw, err := termio.MakeRaw(tty)
		if err != nil {
			return err
		}
		defer raw.Restore()
	}

	source := "stdio"
	if device != "" {
		source = filepath.Base(device)
	}
	trace, closeTrace, err := openTrace(cmd, source)
	if err != nil {
		return err
	}
	defer closeTrace()

	return serveSerial(cmd.Context(), s, menu, in, out, backlog, trace)
}

// openTrace opens the --trace destination. A nil trace means tracing is off.
func openTrace(cmd *cobra.Command, source string) (*engine.Trace, func(), error) {
	path, _ := cmd.Flags().GetString("trace")
	jsonl, _ := cmd.Flags().GetBool("trace-json")
	switch path {
	case "":
		return nil, func() {}, nil
	case "-":
		return engine.NewTrace(cmd.ErrOrStderr(), jsonl, source), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open trace: %w", err)
	}
	return engine.NewTrace(f, jsonl, source), func() { f.Close() }, nil
}

// traceSession wires trace into eng's hooks. It returns the function that
// records the end of the session.
func traceSession(eng *engine.Engine, trace *engine.Trace, height int) func(reason string, dropped int64) {
	if trace == nil {
		return func(string, int64) {}
	}
	eng.OnNavigate = trace.Navigate
	eng.OnRenderError = trace.Error
	trace.Start(eng.Snapshot(), height)
	return trace.End
}

// endReason names why a session loop returned.
func endReason(ctx context.Context, err error) string {
	switch {
	case err == nil || errors.Is(err, context.Canceled):
		if ctx.Err() != nil {
			return "interrupted"
		}
		return "finished"
	default:
		return err.Error()
	}
}

// serveSerial runs one session until the input ends, a quit action runs or
// ctx is cancelled.
func serveSerial(ctx context.Context, s *settings, menu *menufile.Menu, in io.Reader, out io.Writer, backlog int, trace *engine.Trace) error {
	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	h := newHost(s.log, cancel)
	store, err := h.build(menu)
	if err != nil {
		return err
	}

	reader := termio.NewReader(in, backlog)
	defer reader.Close()

	eng := engine.New(store, engine.Config{
		FrameHeight: s.height,
		Bindings:    s.bindings,
		Input:       sessionSource{src: reader, cancel: cancel, interrupts: true},
		Output:      out,
		LineEnding:  s.eol,
		Logger:      s.log.Logger,
	})
	if err := eng.Activate(); err != nil {
		return fmt.Errorf("activate menu: %w", err)
	}
	s.log.Info("serial session started", "nodes", store.Len())
	end := traceSession(eng, trace, s.height)

	err = eng.Run(ctx, 0)
	end(endReason(parent, err), reader.Dropped())
	s.log.Info("serial session ended", "dropped", reader.Dropped())
	if rerr := reader.Err(); rerr != nil {
		return fmt.Errorf("serial input: %w", rerr)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runEvdev(cmd *cobra.Command, args []string) error {
	if list, _ := cmd.Flags().GetBool("list"); list {
		devices, err := evdev.Devices()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, d := range devices {
			fmt.Fprintf(out, "%s\t%s\n", d.Path, d.Name)
		}
		return nil
	}

	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	defer s.log.Close()

	device, _ := cmd.Flags().GetString("device")
	if device == "" {
		device = s.cfg.EvdevDevice()
	}
	if device == "" {
		return fmt.Errorf("no input device: pass --device or set evdev.device (see --list)")
	}

	km := evdev.DefaultKeyMap(s.bindings)
	if names := s.cfg.EvdevKeys(); len(names) > 0 {
		if km, err = evdev.FromActions(s.bindings, names); err != nil {
			return fmt.Errorf("evdev.keys: %w", err)
		}
	}

	menu, err := loadMenu(s.menuPath(args))
	if err != nil {
		return err
	}
	grab, _ := cmd.Flags().GetBool("grab")
	src, err := evdev.Open(device, km, evdev.Options{Backlog: s.cfg.EvdevBacklog(), Grab: grab})
	if err != nil {
		return err
	}
	defer src.Close()
	s.log.Info("input device opened", "device", device, "name", src.Name(), "keys", len(km))

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	h := newHost(s.log, cancel)
	store, err := h.build(menu)
	if err != nil {
		return err
	}
	eng := engine.New(store, engine.Config{
		FrameHeight: s.height,
		Bindings:    s.bindings,
		Input:       sessionSource{src: src, cancel: cancel},
		Output:      cmd.OutOrStdout(),
		LineEnding:  s.eol,
		Logger:      s.log.Logger,
	})
	if err := eng.Activate(); err != nil {
		return fmt.Errorf("activate menu: %w", err)
	}
	trace, closeTrace, err := openTrace(cmd, src.Name())
	if err != nil {
		return err
	}
	defer closeTrace()
	end := traceSession(eng, trace, s.height)

	err = eng.Run(ctx, 0)
	end(endReason(cmd.Context(), err), src.Dropped())
	s.log.Info("input session ended", "dropped", src.Dropped())
	if serr := src.Err(); serr != nil {
		return serr
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runCheck(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	defer s.log.Close()

	path := s.menuPath(args)
	menu, err := loadMenu(path)
	if err != nil {
		return err
	}
	h := newHost(s.log, func() {})
	store, err := h.build(menu)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if dump, _ := cmd.Flags().GetString("dump"); dump != "" {
		format, err := menufile.FormatFor("menu." + dump)
		if err != nil {
			return fmt.Errorf("--dump: %w", err)
		}
		names := actionNames(store, store.Root(), menu.Items, map[tree.NodeID]string{})
		data, err := menufile.Marshal(menufile.FromStore(store, func(id tree.NodeID) string { return names[id] }), format)
		if err != nil {
			return fmt.Errorf("encode menu: %w", err)
		}
		_, err = out.Write(data)
		return err
	}

	fmt.Fprintf(out, "Menu: %s (%s)\n", store.Title(store.Root()), describe(path))
	fmt.Fprintf(out, "Nodes: %d, frame height %d, bindings: %s\n", store.Len(), s.height, s.bindings.Legend())
	store.Walk(func(id tree.NodeID, depth int) bool {
		if id == store.Root() {
			return true
		}
		fmt.Fprintf(out, "%s%s\n", strings.Repeat("  ", depth), nodeLine(store, id))
		return true
	})

	if skip, _ := cmd.Flags().GetBool("no-update-check"); !skip && s.cfg.UpdateCheck() {
		u, err := newUpdater(s)
		if err != nil {
			return err
		}
		if notice := u.Notice(cmd.Context()); notice != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), notice)
		}
	}
	return nil
}

// newUpdater builds the release checker for this binary, logging to the
// session log.
func newUpdater(s *settings) (*update.Updater, error) {
	interval, err := s.cfg.UpdateInterval()
	if err != nil {
		return nil, err
	}
	return update.New(update.Options{
		Version:  version,
		Interval: interval,
		Logger:   s.log.Logger,
	}), nil
}

// nodeLine describes one node: its title, the selection marker when its
// parent selects, its own mode when it has one, and whether it acts.
func nodeLine(store *tree.Store, id tree.NodeID) string {
	var b strings.Builder
	if store.IsEnd(id) {
		if store.Selected(id) {
			b.WriteString("[*] ")
		} else {
			b.WriteString("[ ] ")
		}
	}
	b.WriteString(store.Title(id))
	if n := store.ChildCount(id); n > 0 {
		fmt.Fprintf(&b, " (%d", n)
		if mode := store.Mode(id); mode != tree.ModeNone {
			fmt.Fprintf(&b, ", %s", mode)
		}
		b.WriteString(")")
	} else if store.Activation(id) == nil {
		b.WriteString(" (no action)")
	}
	return b.String()
}

// actionNames pairs each built node with the action its definition named.
// Build creates children in definition order, so the walk is positional.
func actionNames(store *tree.Store, parent tree.NodeID, items []menufile.Item, names map[tree.NodeID]string) map[tree.NodeID]string {
	for i, id := range store.Children(parent) {
		if i >= len(items) {
			break
		}
		if items[i].Action != "" {
			names[id] = items[i].Action
		}
		actionNames(store, id, items[i].Items, names)
	}
	return names
}
