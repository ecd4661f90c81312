package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestTrace_Text(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTrace(&buf, false, "ttyS0")

	tr.Start(Snapshot{Path: []string{"Main"}, Children: 4}, 19)
	tr.Navigate(Snapshot{Path: []string{"Main", "Display"}, Cursor: 2, FrameStart: 1})
	tr.Error(errors.New("write line: broken pipe"))
	tr.End("input closed", 3)

	want := strings.Join([]string{
		"[ttyS0] [START] Main: 4 items, 19 rows",
		"[ttyS0] [NAV] Main/Display cursor=2 frame=1",
		"[ttyS0] [ERROR] write line: broken pipe",
		"[ttyS0] [END] input closed (dropped 3)",
		"",
	}, "\n")
	if buf.String() != want {
		t.Errorf("unexpected trace:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestTrace_JSONL(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTrace(&buf, true, "")

	tr.Navigate(Snapshot{Path: []string{"Main", "Display"}, Depth: 1, Cursor: 2, Children: 3})
	tr.End("quit", 0)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var ev map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &ev); err != nil {
		t.Fatalf("invalid JSON line %q: %v", lines[0], err)
	}
	if ev["type"] != "navigate" || ev["cursor"] != float64(2) || ev["depth"] != float64(1) {
		t.Errorf("unexpected event %v", ev)
	}
	if _, ok := ev["source"]; ok {
		t.Error("expected no source for an unnamed trace")
	}
}

func TestTrace_AsEngineHooks(t *testing.T) {
	var trace bytes.Buffer
	h := newHarness(t, flatStore(t, 3), 3)
	tr := NewTrace(&trace, false, "")
	h.engine.OnNavigate = tr.Navigate
	h.activate(t)

	h.press(t, down, down)

	if got := strings.Count(trace.String(), "[NAV]"); got != 2 {
		t.Errorf("expected 2 navigation events, got %d:\n%s", got, trace.String())
	}
	if !strings.Contains(trace.String(), "Main cursor=2 frame=0") {
		t.Errorf("unexpected trace %q", trace.String())
	}
}
