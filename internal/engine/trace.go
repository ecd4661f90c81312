package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Trace writes a session's navigation events for headless hosts, either
// human-readable with [TAG] prefixes or as JSON Lines.
type Trace struct {
	jsonl  bool
	writer io.Writer
	source string // Input source name, prefixed to every event when set
}

// NewTrace creates a trace writing to w.
func NewTrace(w io.Writer, jsonl bool, source string) *Trace {
	return &Trace{jsonl: jsonl, writer: w, source: source}
}

// prefix returns the source prefix, or empty string when unnamed.
func (t *Trace) prefix() string {
	if t.source != "" {
		return fmt.Sprintf("[%s] ", t.source)
	}
	return ""
}

// Start records the start of a session.
func (t *Trace) Start(snap Snapshot, height int) {
	if t.jsonl {
		t.writeJSON(map[string]interface{}{
			"type":         "start",
			"root":         strings.Join(snap.Path, "/"),
			"children":     snap.Children,
			"frame_height": height,
		})
		return
	}
	fmt.Fprintf(t.writer, "%s[START] %s: %d items, %d rows\n", t.prefix(), strings.Join(snap.Path, "/"), snap.Children, height)
}

// Navigate records the state after a handled input. It matches the
// Engine.OnNavigate signature.
func (t *Trace) Navigate(snap Snapshot) {
	if t.jsonl {
		t.writeJSON(map[string]interface{}{
			"type":        "navigate",
			"path":        snap.Path,
			"depth":       snap.Depth,
			"cursor":      snap.Cursor,
			"frame_start": snap.FrameStart,
			"children":    snap.Children,
		})
		return
	}
	fmt.Fprintf(t.writer, "%s[NAV] %s cursor=%d frame=%d\n", t.prefix(), strings.Join(snap.Path, "/"), snap.Cursor, snap.FrameStart)
}

// Error records a render or input failure. It matches the
// Engine.OnRenderError signature.
func (t *Trace) Error(err error) {
	if t.jsonl {
		t.writeJSON(map[string]interface{}{
			"type":  "error",
			"error": err.Error(),
		})
		return
	}
	fmt.Fprintf(t.writer, "%s[ERROR] %v\n", t.prefix(), err)
}

// End records the end of a session.
func (t *Trace) End(reason string, dropped int64) {
	if t.jsonl {
		t.writeJSON(map[string]interface{}{
			"type":    "end",
			"reason":  reason,
			"dropped": dropped,
		})
		return
	}
	fmt.Fprintf(t.writer, "%s[END] %s (dropped %d)\n", t.prefix(), reason, dropped)
}

// writeJSON writes a JSON object as a single line.
func (t *Trace) writeJSON(data map[string]interface{}) {
	if t.source != "" {
		data["source"] = t.source
	}
	b, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintln(t.writer, string(b))
}
