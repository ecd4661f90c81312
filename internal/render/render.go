// Package render projects the engine state onto display lines and hands
// them to an output sink. Every render is a full repaint.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/pengelbrecht/apptree/internal/tree"
)

// Width limits for an 80-column display.
const (
	MaxTitleWidth = 74
	MaxInfoWidth  = 78
)

// Line endings understood by Emit.
const (
	CRLF = "\r\n"
	LF   = "\n"
)

// Row is one frame row. Index is -1 for padding rows.
type Row struct {
	Index    int
	Title    string
	Cursor   bool
	Selected bool
}

// Frame is everything one repaint needs.
type Frame struct {
	Title  string    // Title of the active node
	Mode   tree.Mode // Selection mode of the active node
	Rows   []Row     // Exactly the frame height, padding included
	Info   string    // Info of the child under the cursor
	Legend string    // Key-binding legend
}

// Build returns the lines of a frame in display order: blank, title, blank,
// the frame rows, blank, info, blank, legend.
func Build(f Frame) []string {
	lines := make([]string, 0, len(f.Rows)+7)
	lines = append(lines, "", Truncate(f.Title, MaxTitleWidth), "")
	for _, r := range f.Rows {
		lines = append(lines, rowLine(r, f.Mode))
	}
	lines = append(lines,
		"",
		"< "+Truncate(f.Info, MaxInfoWidth)+" >",
		"",
		f.Legend,
	)
	return lines
}

func rowLine(r Row, mode tree.Mode) string {
	if r.Index < 0 {
		return ""
	}
	var b strings.Builder
	if r.Cursor {
		b.WriteString(" -> ")
	} else {
		b.WriteString("    ")
	}
	if mode != tree.ModeNone {
		if r.Selected {
			b.WriteString("[*] ")
		} else {
			b.WriteString("[ ] ")
		}
	}
	fmt.Fprintf(&b, "%2d. %s", r.Index+1, Truncate(r.Title, MaxTitleWidth))
	return b.String()
}

// Truncate cuts s to at most width display cells.
func Truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "")
}

// Emit writes each line followed by lineEnding to w, one write per line.
func Emit(w io.Writer, lines []string, lineEnding string) error {
	if lineEnding == "" {
		lineEnding = CRLF
	}
	for _, line := range lines {
		if _, err := io.WriteString(w, line+lineEnding); err != nil {
			return fmt.Errorf("write line: %w", err)
		}
	}
	return nil
}
