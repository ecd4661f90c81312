package evdev

import (
	"testing"

	"github.com/pengelbrecht/apptree/internal/keys"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"enter", "KEY_ENTER"},
		{" key_up ", "KEY_UP"},
		{"BTN_SOUTH", "BTN_SOUTH"},
		{"btn_dpad_up", "BTN_DPAD_UP"},
	}

	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}

func TestDefaultKeyMap(t *testing.T) {
	b := keys.Default()
	km := DefaultKeyMap(b)

	if km["KEY_UP"] != b.Up || km["KEY_ENTER"] != b.Select || km["KEY_ESC"] != b.Back || km["KEY_HOME"] != b.Home {
		t.Errorf("unexpected default key map %v", km)
	}
}

func TestFromActions(t *testing.T) {
	b := keys.Default()

	km, err := FromActions(b, map[string][]string{
		"up":     {"up", "BTN_DPAD_UP"},
		"select": {"enter", "btn_south"},
	})
	if err != nil {
		t.Fatalf("FromActions failed: %v", err)
	}
	if km["KEY_UP"] != b.Up || km["BTN_DPAD_UP"] != b.Up {
		t.Errorf("expected up keys to map to %q, got %v", rune(b.Up), km)
	}
	if km["KEY_ENTER"] != b.Select || km["BTN_SOUTH"] != b.Select {
		t.Errorf("expected select keys to map to %q, got %v", rune(b.Select), km)
	}
}

func TestFromActions_Errors(t *testing.T) {
	tests := []struct {
		name    string
		actions map[string][]string
	}{
		{"unknown action", map[string][]string{"jump": {"KEY_SPACE"}}},
		{"shared key", map[string][]string{"up": {"KEY_UP"}, "down": {"up"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromActions(keys.Default(), tt.actions); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSource_PollAndDrop(t *testing.T) {
	closed := 0
	s := newSource("keypad", 2, func() error { closed++; return nil })

	s.deliver('j')
	s.deliver('k')
	s.deliver('l')

	if s.Dropped() != 1 {
		t.Errorf("expected 1 dropped press, got %d", s.Dropped())
	}
	if c, ok := s.Poll(); !ok || c != 'j' {
		t.Errorf("expected 'j', got %q (ok=%v)", rune(c), ok)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	if closed != 1 {
		t.Errorf("expected device to be closed once, got %d", closed)
	}
	if _, ok := s.Poll(); ok {
		t.Error("expected no input after Close")
	}
	if s.Name() != "keypad" {
		t.Errorf("expected name keypad, got %q", s.Name())
	}
}
