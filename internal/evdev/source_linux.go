//go:build linux

package evdev

import (
	"fmt"

	goevdev "github.com/holoplot/go-evdev"

	"github.com/pengelbrecht/apptree/internal/keys"
)

// Open starts reading key events from the device at path. Only key names
// present in km produce input; everything else is ignored.
func Open(path string, km KeyMap, opts Options) (*Source, error) {
	codes, err := resolve(km)
	if err != nil {
		return nil, err
	}

	dev, err := goevdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if opts.Grab {
		if err := dev.Grab(); err != nil {
			dev.Close()
			return nil, fmt.Errorf("grab %s: %w", path, err)
		}
	}
	name, err := dev.Name()
	if err != nil {
		name = path
	}

	s := newSource(name, opts.Backlog, dev.Close)
	go s.readLoop(dev, codes)
	return s, nil
}

func (s *Source) readLoop(dev *goevdev.InputDevice, codes map[goevdev.EvCode]keys.Code) {
	defer close(s.done)
	for {
		ev, err := dev.ReadOne()
		if err != nil {
			if !s.closed.Load() {
				s.err.Store(fmt.Errorf("read %s: %w", s.name, err))
			}
			return
		}
		if code, ok := translate(ev, codes); ok {
			s.deliver(code)
		}
	}
}

// translate keeps key presses and auto-repeats and drops releases.
func translate(ev *goevdev.InputEvent, codes map[goevdev.EvCode]keys.Code) (keys.Code, bool) {
	if ev == nil || ev.Type != goevdev.EV_KEY {
		return 0, false
	}
	if ev.Value != 1 && ev.Value != 2 {
		return 0, false
	}
	code, ok := codes[ev.Code]
	return code, ok
}

func resolve(km KeyMap) (map[goevdev.EvCode]keys.Code, error) {
	if len(km) == 0 {
		return nil, fmt.Errorf("empty key map")
	}
	codes := make(map[goevdev.EvCode]keys.Code, len(km))
	for name, code := range km {
		ev, ok := goevdev.KEYFromString[NormalizeName(name)]
		if !ok {
			return nil, fmt.Errorf("unknown key name %q", name)
		}
		codes[ev] = code
	}
	return codes, nil
}

// Devices lists the input devices the current user can open.
func Devices() ([]Device, error) {
	paths, err := goevdev.ListDevicePaths()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	devices := make([]Device, 0, len(paths))
	for _, p := range paths {
		devices = append(devices, Device{Path: p.Path, Name: p.Name})
	}
	return devices, nil
}
