package evdev

import (
	"errors"

	"go.uber.org/atomic"

	"github.com/pengelbrecht/apptree/internal/keys"
)

// ErrUnsupported is returned by Open on platforms without evdev.
var ErrUnsupported = errors.New("evdev input is only supported on linux")

// DefaultBacklog is the number of unread key presses buffered per device.
const DefaultBacklog = 32

// Options configures Open.
type Options struct {
	// Backlog is the number of buffered key presses (0 = DefaultBacklog).
	Backlog int

	// Grab takes exclusive access so the console and other programs do not
	// also receive the keys.
	Grab bool
}

// Device describes an input device found under /dev/input.
type Device struct {
	Path string
	Name string
}

// Source is a non-blocking input source fed by one reader goroutine.
type Source struct {
	name    string
	codes   chan keys.Code
	done    chan struct{}
	closed  *atomic.Bool
	dropped *atomic.Int64
	err     *atomic.Error
	closeFn func() error
}

func newSource(name string, backlog int, closeFn func() error) *Source {
	if backlog <= 0 {
		backlog = DefaultBacklog
	}
	return &Source{
		name:    name,
		codes:   make(chan keys.Code, backlog),
		done:    make(chan struct{}),
		closed:  atomic.NewBool(false),
		dropped: atomic.NewInt64(0),
		err:     atomic.NewError(nil),
		closeFn: closeFn,
	}
}

// deliver queues code without blocking the reader.
func (s *Source) deliver(code keys.Code) {
	select {
	case s.codes <- code:
	default:
		s.dropped.Inc()
	}
}

// Name returns the device name reported by the kernel.
func (s *Source) Name() string {
	return s.name
}

// Poll returns the next translated key press, or false if none is pending.
func (s *Source) Poll() (keys.Code, bool) {
	if s.closed.Load() {
		return 0, false
	}
	select {
	case c := <-s.codes:
		return c, true
	default:
		return 0, false
	}
}

// Done is closed when the reader goroutine exits.
func (s *Source) Done() <-chan struct{} {
	return s.done
}

// Err returns the error that stopped the reader, if any.
func (s *Source) Err() error {
	return s.err.Load()
}

// Dropped returns how many key presses were discarded because the backlog
// was full.
func (s *Source) Dropped() int64 {
	return s.dropped.Load()
}

// Close stops the reader and releases the device.
func (s *Source) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if s.closeFn != nil {
		return s.closeFn()
	}
	return nil
}
