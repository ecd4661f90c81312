package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pengelbrecht/apptree/internal/config"
	"github.com/pengelbrecht/apptree/internal/engine"
	"github.com/pengelbrecht/apptree/internal/keys"
	"github.com/pengelbrecht/apptree/internal/logging"
	"github.com/pengelbrecht/apptree/internal/menufile"
	"github.com/pengelbrecht/apptree/internal/render"
	"github.com/pengelbrecht/apptree/internal/tree"
)

// resetFlags restores every flag to its default between executions of the
// shared command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--log-file", filepath.Join(t.TempDir(), "test.log")))
	err := rootCmd.Execute()
	return out.String(), err
}

// TestFlagParsing tests that the CLI flags are correctly defined.
func TestFlagParsing(t *testing.T) {
	tests := []struct {
		cmd  *cobra.Command
		name string
		def  string
	}{
		{rootCmd, "dir", "."},
		{rootCmd, "frame-height", "0"},
		{rootCmd, "line-ending", ""},
		{serialCmd, "device", ""},
		{serialCmd, "backlog", "0"},
		{evdevCmd, "list", "false"},
		{evdevCmd, "grab", "false"},
		{checkCmd, "dump", ""},
		{serialCmd, "trace", ""},
		{evdevCmd, "trace-json", "false"},
	}

	for _, tt := range tests {
		flag := tt.cmd.Flags().Lookup(tt.name)
		if flag == nil {
			flag = tt.cmd.PersistentFlags().Lookup(tt.name)
		}
		if flag == nil {
			t.Errorf("--%s flag not registered on %s", tt.name, tt.cmd.Name())
			continue
		}
		if flag.DefValue != tt.def {
			t.Errorf("--%s default value = %q, want %q", tt.name, flag.DefValue, tt.def)
		}
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{"run": false, "serial": false, "evdev": false, "check": false, "upgrade": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestDemoMenuBuilds(t *testing.T) {
	h := newHost(logging.Discard(), func() {})
	store, err := h.build(demoMenu())
	if err != nil {
		t.Fatalf("demo menu failed to build: %v", err)
	}
	baud := store.Child(store.Child(store.Root(), 0), 0)
	if store.Mode(baud) != tree.ModeExclusive || len(store.SelectedIndices(baud)) != 1 {
		t.Errorf("expected exclusive baud menu with one selection")
	}
}

func TestCheck_Demo(t *testing.T) {
	out, err := execute(t, "check", "--dir", t.TempDir(), "--no-update-check")
	if err != nil {
		t.Fatalf("check failed: %v\n%s", err, out)
	}
	for _, want := range []string{"Menu: Main Menu (built-in demo)", "Baud Rate (4, exclusive)", "[*] 115200", "Local Echo (no action)"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestCheck_UpdateNotice(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	cache, _ := json.Marshal(map[string]any{
		"last_check":       time.Now(),
		"latest_version":   "v99.0.0",
		"update_available": true,
	})
	if err := os.MkdirAll(filepath.Join(xdg, "apptree"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(xdg, "apptree", "update-cache.json"), cache, 0o644); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	out, err := execute(t, "check", "--dir", dir)
	if err != nil {
		t.Fatalf("check failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Update available: "+version+" -> v99.0.0") {
		t.Errorf("expected cached update notice, got:\n%s", out)
	}

	if err := os.MkdirAll(filepath.Join(dir, config.Dir), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(config.Path(dir), []byte("[update]\ncheck = false\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err = execute(t, "check", "--dir", dir)
	if err != nil {
		t.Fatalf("check failed: %v\n%s", err, out)
	}
	if strings.Contains(out, "Update available") {
		t.Errorf("expected no notice with update.check = false, got:\n%s", out)
	}
}

func TestCheck_MenuFileAndDump(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "menu.toml")
	content := "title = \"Panel\"\n\n[[items]]\ntitle = \"Restart\"\naction = \"log\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "check", path, "--dir", dir, "--dump", "yaml")
	if err != nil {
		t.Fatalf("check --dump failed: %v\n%s", err, out)
	}
	m, err := menufile.Parse([]byte(out), menufile.FormatYAML)
	if err != nil {
		t.Fatalf("dump is not a valid menu: %v\n%s", err, out)
	}
	if m.Title != "Panel" || len(m.Items) != 1 || m.Items[0].Action != "log" {
		t.Errorf("unexpected dumped menu %+v", m)
	}
}

func TestCheck_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("title: X\nitems:\n  - title: Go\n    action: launch\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown action", []string{"check", bad, "--dir", dir}, "unknown action"},
		{"bad dump format", []string{"check", "--dir", dir, "--dump", "json", "--no-update-check"}, "unknown menu file format"},
		{"bad line ending", []string{"check", "--dir", dir, "--line-ending", "cr"}, "line-ending"},
		{"missing config", []string{"check", "--config", filepath.Join(dir, "nope.toml")}, "load config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestEvdev_RequiresDevice(t *testing.T) {
	_, err := execute(t, "evdev", "--dir", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "no input device") {
		t.Errorf("expected missing device error, got %v", err)
	}
}

func testSettings(t *testing.T, height int) *settings {
	t.Helper()
	return &settings{
		dir:      t.TempDir(),
		height:   height,
		eol:      render.LF,
		bindings: keys.Default(),
		log:      logging.Discard(),
	}
}

func TestServeSerial_DrainsInputThenEnds(t *testing.T) {
	var out bytes.Buffer
	menu := &menufile.Menu{
		Title: "Panel",
		Items: []menufile.Item{
			{Title: "Mode", Mode: "exclusive", Items: []menufile.Item{
				{Title: "Auto", Action: "log", Selected: true},
				{Title: "Manual", Action: "log"},
			}},
		},
	}

	err := serveSerial(context.Background(), testSettings(t, 3), menu, strings.NewReader("ljl"), &out, 0, nil)
	if err != nil {
		t.Fatalf("serveSerial failed: %v", err)
	}

	frames := strings.Split(out.String(), "KEY BINDINGS")
	if len(frames) != 5 {
		t.Fatalf("expected 4 frames, got %d:\n%s", len(frames)-1, out.String())
	}
	last := frames[3]
	if !strings.Contains(last, "    [ ]  1. Auto") || !strings.Contains(last, " -> [*]  2. Manual") {
		t.Errorf("expected Manual to be selected in the last frame, got:\n%s", last)
	}
}

func TestServeSerial_CtrlCEnds(t *testing.T) {
	var out bytes.Buffer
	pr, pw := io.Pipe()
	defer pw.Close()

	s := testSettings(t, 3)
	done := make(chan error, 1)
	go func() {
		done <- serveSerial(context.Background(), s, demoMenu(), pr, &out, 0, nil)
	}()
	if _, err := pw.Write([]byte{'j', 0x03}); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if err := <-done; err != nil {
		t.Errorf("expected clean exit on ctrl+c, got %v", err)
	}
}

func TestServeSerial_QuitAction(t *testing.T) {
	var out bytes.Buffer
	pr, pw := io.Pipe()
	defer pw.Close()

	s := testSettings(t, 19)
	done := make(chan error, 1)
	go func() {
		done <- serveSerial(context.Background(), s, demoMenu(), pr, &out, 0, nil)
	}()
	// Quit is the last top-level item: wrap upward and select it.
	if _, err := pw.Write([]byte("kl")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if err := <-done; err != nil {
		t.Errorf("expected clean exit from quit action, got %v", err)
	}
}

func TestSessionSource(t *testing.T) {
	done := make(chan struct{})
	src := &fakeFinite{codes: []keys.Code{'j', 0x03}, done: done}
	cancelled := 0
	s := sessionSource{src: src, cancel: func() { cancelled++ }, interrupts: true}

	if c, ok := s.Poll(); !ok || c != 'j' {
		t.Errorf("expected 'j', got %q (ok=%v)", rune(c), ok)
	}
	if _, ok := s.Poll(); ok || cancelled != 1 {
		t.Errorf("expected ctrl+c to cancel, cancelled=%d", cancelled)
	}
	if _, ok := s.Poll(); ok || cancelled != 1 {
		t.Error("expected empty poll on a running source not to cancel")
	}

	close(done)
	if _, ok := s.Poll(); ok || cancelled != 2 {
		t.Errorf("expected finished source to cancel, cancelled=%d", cancelled)
	}
}

type fakeFinite struct {
	codes []keys.Code
	done  chan struct{}
}

func (f *fakeFinite) Poll() (keys.Code, bool) {
	if len(f.codes) == 0 {
		return 0, false
	}
	c := f.codes[0]
	f.codes = f.codes[1:]
	return c, true
}

func (f *fakeFinite) Done() <-chan struct{} { return f.done }

func TestServeSerial_Trace(t *testing.T) {
	var out, trace bytes.Buffer
	tr := engine.NewTrace(&trace, false, "test")

	err := serveSerial(context.Background(), testSettings(t, 3), demoMenu(), strings.NewReader("jl"), &out, 0, tr)
	if err != nil {
		t.Fatalf("serveSerial failed: %v", err)
	}

	for _, want := range []string{
		"[test] [START] Main Menu: 5 items, 3 rows",
		"[test] [NAV] Main Menu cursor=1 frame=0",
		"[test] [NAV] Main Menu/Display cursor=0 frame=0",
		"[test] [END] finished (dropped 0)",
	} {
		if !strings.Contains(trace.String(), want) {
			t.Errorf("expected trace to contain %q, got:\n%s", want, trace.String())
		}
	}
}

func TestEndReason(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		ctx  context.Context
		err  error
		want string
	}{
		{context.Background(), nil, "finished"},
		{context.Background(), context.Canceled, "finished"},
		{cancelled, context.Canceled, "interrupted"},
		{context.Background(), errors.New("boom"), "boom"},
	}

	for _, tt := range tests {
		if got := endReason(tt.ctx, tt.err); got != tt.want {
			t.Errorf("endReason(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
