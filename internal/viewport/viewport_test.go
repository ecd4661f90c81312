package viewport

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"
)

func titles(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("Item %d", i+1)
	}
	return out
}

func step(v *Viewport, delta int) {
	v.MoveCursor(delta)
	v.Reframe()
}

func TestNew_ClampsHeight(t *testing.T) {
	if got := New(0).Height(); got != 1 {
		t.Errorf("expected height 1, got %d", got)
	}
	if got := New(5).Height(); got != 5 {
		t.Errorf("expected height 5, got %d", got)
	}
}

func TestEnter_Resets(t *testing.T) {
	v := New(3)
	v.Enter(1, titles(10))
	for i := 0; i < 6; i++ {
		step(v, 1)
	}

	v.Enter(2, titles(4))

	if v.Active() != 2 {
		t.Errorf("expected active 2, got %d", v.Active())
	}
	if v.Cursor() != 0 || v.FrameStart() != 0 {
		t.Errorf("expected cursor 0 frame 0, got cursor %d frame %d", v.Cursor(), v.FrameStart())
	}
	if v.Len() != 4 {
		t.Errorf("expected 4 children, got %d", v.Len())
	}
}

func TestScrollScenario(t *testing.T) {
	// Five children in a three-row frame.
	v := New(3)
	v.Enter(0, titles(5))

	tests := []struct {
		name       string
		delta      int
		wantCursor int
		wantFrame  int
	}{
		{"down to 1", 1, 1, 0},
		{"down to 2", 1, 2, 0},
		{"down past frame scrolls one row", 1, 3, 1},
		{"down to last snaps to bottom", 1, 4, 2},
		{"down wraps and snaps to top", 1, 0, 0},
		{"up wraps to last", -1, 4, 2},
		{"up to 3", -1, 3, 2},
		{"up to 2", -1, 2, 2},
		{"up past frame scrolls one row", -1, 1, 1},
		{"up to first snaps to top", -1, 0, 0},
	}

	for _, tt := range tests {
		step(v, tt.delta)
		if v.Cursor() != tt.wantCursor || v.FrameStart() != tt.wantFrame {
			t.Errorf("%s: expected cursor %d frame %d, got cursor %d frame %d",
				tt.name, tt.wantCursor, tt.wantFrame, v.Cursor(), v.FrameStart())
		}
	}
}

func TestMoveCursor_Empty(t *testing.T) {
	v := New(3)
	v.Enter(0, nil)
	step(v, 1)
	step(v, -1)

	if v.Cursor() != 0 || v.FrameStart() != 0 {
		t.Errorf("expected cursor and frame to stay 0, got %d and %d", v.Cursor(), v.FrameStart())
	}
	rows := v.Rows()
	if len(rows) != 3 {
		t.Fatalf("expected 3 padding rows, got %d", len(rows))
	}
	for i, r := range rows {
		if !r.Blank() {
			t.Errorf("row %d: expected blank row, got %+v", i, r)
		}
	}
}

func TestRows_PadsShortList(t *testing.T) {
	v := New(4)
	v.Enter(0, titles(2))
	step(v, 1)

	rows := v.Rows()
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[0].Index != 0 || rows[0].Cursor {
		t.Errorf("unexpected first row %+v", rows[0])
	}
	if rows[1].Index != 1 || !rows[1].Cursor || rows[1].Title != "Item 2" {
		t.Errorf("unexpected second row %+v", rows[1])
	}
	if !rows[2].Blank() || !rows[3].Blank() {
		t.Error("expected rows 2 and 3 to be padding")
	}
}

func TestRows_WindowOverLongList(t *testing.T) {
	v := New(3)
	v.Enter(0, titles(6))
	for i := 0; i < 4; i++ {
		step(v, 1)
	}

	start, end := v.Visible()
	if start != 2 || end != 5 {
		t.Fatalf("expected visible [2,5), got [%d,%d)", start, end)
	}
	rows := v.Rows()
	if rows[2].Index != 4 || !rows[2].Cursor {
		t.Errorf("expected cursor on last visible row, got %+v", rows[2])
	}
}

func TestPicture_IsCopy(t *testing.T) {
	v := New(3)
	src := titles(2)
	v.Enter(0, src)
	src[0] = "mutated"

	p := v.Picture()
	if p[0] != "Item 1" {
		t.Errorf("expected viewport to keep its own titles, got %q", p[0])
	}
	p[1] = "mutated"
	if v.Picture()[1] != "Item 2" {
		t.Error("expected Picture to return a copy")
	}
}

func TestWrapClosure(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 40).Draw(rt, "children")
		h := rapid.IntRange(1, 10).Draw(rt, "height")
		pre := rapid.IntRange(0, 2*n).Draw(rt, "pre")
		delta := rapid.SampledFrom([]int{1, -1}).Draw(rt, "delta")

		v := New(h)
		v.Enter(0, titles(n))
		for i := 0; i < pre; i++ {
			step(v, 1)
		}
		start := v.Cursor()
		for i := 0; i < n; i++ {
			step(v, delta)
		}
		if v.Cursor() != start {
			rt.Fatalf("expected cursor to return to %d after %d moves, got %d", start, n, v.Cursor())
		}
	})
}

func TestFrameInvariants(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 40).Draw(rt, "children")
		h := rapid.IntRange(1, 10).Draw(rt, "height")
		moves := rapid.SliceOf(rapid.SampledFrom([]int{1, -1})).Draw(rt, "moves")

		v := New(h)
		v.Enter(0, titles(n))
		maxStart := n - h
		if maxStart < 0 {
			maxStart = 0
		}

		for _, d := range moves {
			step(v, d)

			if v.FrameStart() < 0 || v.FrameStart() > maxStart {
				rt.Fatalf("frame start %d outside [0,%d]", v.FrameStart(), maxStart)
			}
			if n <= h && v.FrameStart() != 0 {
				rt.Fatalf("expected frame start 0 for a list that fits, got %d", v.FrameStart())
			}
			if n > 0 {
				if v.Cursor() < 0 || v.Cursor() >= n {
					rt.Fatalf("cursor %d outside [0,%d)", v.Cursor(), n)
				}
				start, end := v.Visible()
				if v.Cursor() < start || v.Cursor() >= end {
					rt.Fatalf("cursor %d not inside visible [%d,%d)", v.Cursor(), start, end)
				}
			}
			if len(v.Rows()) != h {
				rt.Fatalf("expected %d rows, got %d", h, len(v.Rows()))
			}
		}
	})
}
