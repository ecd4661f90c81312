//go:build linux

package evdev

import (
	"testing"

	goevdev "github.com/holoplot/go-evdev"

	"github.com/pengelbrecht/apptree/internal/keys"
)

func TestResolve(t *testing.T) {
	codes, err := resolve(KeyMap{"up": 'k', "KEY_ENTER": 'l'})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if codes[goevdev.KEY_UP] != 'k' || codes[goevdev.KEY_ENTER] != 'l' {
		t.Errorf("unexpected resolved codes %v", codes)
	}

	if _, err := resolve(KeyMap{"KEY_NOPE": 'x'}); err == nil {
		t.Error("expected unknown key name to fail")
	}
	if _, err := resolve(nil); err == nil {
		t.Error("expected empty key map to fail")
	}
}

func TestTranslate(t *testing.T) {
	codes := map[goevdev.EvCode]keys.Code{goevdev.KEY_DOWN: 'j'}

	tests := []struct {
		name string
		ev   *goevdev.InputEvent
		want bool
	}{
		{"press", &goevdev.InputEvent{Type: goevdev.EV_KEY, Code: goevdev.KEY_DOWN, Value: 1}, true},
		{"repeat", &goevdev.InputEvent{Type: goevdev.EV_KEY, Code: goevdev.KEY_DOWN, Value: 2}, true},
		{"release", &goevdev.InputEvent{Type: goevdev.EV_KEY, Code: goevdev.KEY_DOWN, Value: 0}, false},
		{"unmapped", &goevdev.InputEvent{Type: goevdev.EV_KEY, Code: goevdev.KEY_UP, Value: 1}, false},
		{"sync", &goevdev.InputEvent{Type: goevdev.EV_SYN}, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := translate(tt.ev, codes)
			if ok != tt.want {
				t.Errorf("expected ok=%v, got %v", tt.want, ok)
			}
			if ok && code != 'j' {
				t.Errorf("expected 'j', got %q", rune(code))
			}
		})
	}
}

func TestOpen_MissingDevice(t *testing.T) {
	if _, err := Open("/nonexistent/event99", KeyMap{"KEY_UP": 'k'}, Options{}); err == nil {
		t.Error("expected Open to fail for a missing device")
	}
}
