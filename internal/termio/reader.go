package termio

import (
	"errors"
	"io"

	"go.uber.org/atomic"

	"github.com/pengelbrecht/apptree/internal/keys"
)

// DefaultBacklog is the number of unread codes a Reader buffers before it
// starts dropping input.
const DefaultBacklog = 64

// Reader is a non-blocking input source over a blocking io.Reader such as a
// serial port or stdin. Every byte read is one code.
//
// A single goroutine reads from the underlying reader and feeds a buffered
// channel; Poll never blocks.
type Reader struct {
	codes   chan keys.Code
	done    chan struct{}
	closed  *atomic.Bool
	dropped *atomic.Int64
	err     *atomic.Error
}

// NewReader starts reading r in the background. backlog <= 0 uses
// DefaultBacklog.
func NewReader(r io.Reader, backlog int) *Reader {
	if backlog <= 0 {
		backlog = DefaultBacklog
	}
	rd := &Reader{
		codes:   make(chan keys.Code, backlog),
		done:    make(chan struct{}),
		closed:  atomic.NewBool(false),
		dropped: atomic.NewInt64(0),
		err:     atomic.NewError(nil),
	}
	go rd.loop(r)
	return rd
}

func (rd *Reader) loop(r io.Reader) {
	defer close(rd.done)

	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			if rd.closed.Load() {
				return
			}
			select {
			case rd.codes <- keys.Code(b):
			default:
				rd.dropped.Inc()
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				rd.err.Store(err)
			}
			return
		}
		if rd.closed.Load() {
			return
		}
	}
}

// Poll returns the next buffered code, or false if none is pending or the
// reader has been closed.
func (rd *Reader) Poll() (keys.Code, bool) {
	if rd.closed.Load() {
		return 0, false
	}
	select {
	case c := <-rd.codes:
		return c, true
	default:
		return 0, false
	}
}

// Done is closed when the background reader stops, either on EOF, on a read
// error or after Close once the pending read returns.
func (rd *Reader) Done() <-chan struct{} {
	return rd.done
}

// Err returns the read error that stopped the reader, if any. EOF is not an
// error.
func (rd *Reader) Err() error {
	return rd.err.Load()
}

// Dropped returns how many codes were discarded because the backlog was full.
func (rd *Reader) Dropped() int64 {
	return rd.dropped.Load()
}

// Close stops delivering input. The underlying reader is not closed; the
// background goroutine exits after its current Read returns.
func (rd *Reader) Close() error {
	rd.closed.Store(true)
	return nil
}
