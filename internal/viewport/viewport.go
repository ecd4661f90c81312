// Package viewport maps the children of the active node onto a fixed-height
// frame and tracks the cursor within the full child list.
package viewport

import "github.com/pengelbrecht/apptree/internal/tree"

// DefaultHeight fits the frame, title, info and legend on an 80x24 terminal.
const DefaultHeight = 19

// Row is one line of the frame. Index is -1 for padding rows.
type Row struct {
	Index  int
	Title  string
	Cursor bool
}

// Blank reports whether the row pads a short list.
func (r Row) Blank() bool {
	return r.Index < 0
}

// Viewport is the visible window over the active node's children.
type Viewport struct {
	height     int
	active     tree.NodeID
	picture    []string
	frameStart int
	cursor     int
}

// New creates a viewport showing height rows. Heights below 1 are clamped to 1.
func New(height int) *Viewport {
	if height < 1 {
		height = 1
	}
	return &Viewport{height: height, active: tree.NoNode}
}

// Enter makes node the active node with picture as its child titles and
// resets the cursor and frame to the top.
func (v *Viewport) Enter(node tree.NodeID, picture []string) {
	v.active = node
	v.picture = append(v.picture[:0], picture...)
	v.cursor = 0
	v.frameStart = 0
}

// MoveCursor moves the cursor by delta, wrapping at both ends of the list.
func (v *Viewport) MoveCursor(delta int) {
	n := len(v.picture)
	if n == 0 {
		return
	}
	v.cursor = ((v.cursor+delta)%n + n) % n
}

// Reframe repositions the frame after a cursor move.
//
// The cursor snaps the frame to the top at index 0 and to the bottom at the
// last index; otherwise the frame follows it one row at a time.
func (v *Viewport) Reframe() {
	n := len(v.picture)
	last := n - 1
	switch {
	case v.cursor == 0:
		v.frameStart = 0
	case v.cursor == last:
		v.frameStart = v.maxFrameStart()
	case v.cursor >= v.frameStart+v.height:
		v.frameStart++
	case v.cursor < v.frameStart:
		v.frameStart--
	}

	if v.frameStart > v.maxFrameStart() {
		v.frameStart = v.maxFrameStart()
	}
	if v.frameStart < 0 {
		v.frameStart = 0
	}
}

func (v *Viewport) maxFrameStart() int {
	if m := len(v.picture) - v.height; m > 0 {
		return m
	}
	return 0
}

// Visible returns the half-open range of child indexes inside the frame.
func (v *Viewport) Visible() (start, end int) {
	start = v.frameStart
	end = start + v.height
	if end > len(v.picture) {
		end = len(v.picture)
	}
	return start, end
}

// Rows returns exactly Height rows: the visible children followed by blank
// padding when the list is shorter than the frame.
func (v *Viewport) Rows() []Row {
	rows := make([]Row, 0, v.height)
	start, end := v.Visible()
	for i := start; i < end; i++ {
		rows = append(rows, Row{Index: i, Title: v.picture[i], Cursor: i == v.cursor})
	}
	for len(rows) < v.height {
		rows = append(rows, Row{Index: -1})
	}
	return rows
}

// Active returns the node whose children are shown.
func (v *Viewport) Active() tree.NodeID { return v.active }

// Cursor returns the highlighted index within the full child list.
func (v *Viewport) Cursor() int { return v.cursor }

// FrameStart returns the index of the first visible child.
func (v *Viewport) FrameStart() int { return v.frameStart }

// Height returns the number of rows in the frame.
func (v *Viewport) Height() int { return v.height }

// Len returns the number of children of the active node.
func (v *Viewport) Len() int { return len(v.picture) }

// Picture returns a copy of the active node's child titles.
func (v *Viewport) Picture() []string {
	out := make([]string, len(v.picture))
	copy(out, v.picture)
	return out
}
