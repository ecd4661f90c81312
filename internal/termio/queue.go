// Package termio provides the input sources and output sinks that connect
// an engine to a physical or emulated terminal.
package termio

import (
	"sync"

	"github.com/pengelbrecht/apptree/internal/keys"
)

// Queue is an in-memory FIFO input source. Hosts that receive input as
// events (a TUI, a test) push codes and let the engine poll them.
type Queue struct {
	mu    sync.Mutex
	codes []keys.Code
}

// NewQueue returns a queue preloaded with codes.
func NewQueue(codes ...keys.Code) *Queue {
	return &Queue{codes: append([]keys.Code(nil), codes...)}
}

// Push appends codes to the queue.
func (q *Queue) Push(codes ...keys.Code) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.codes = append(q.codes, codes...)
}

// Poll removes and returns the oldest code, or false if the queue is empty.
func (q *Queue) Poll() (keys.Code, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.codes) == 0 {
		return 0, false
	}
	c := q.codes[0]
	q.codes = q.codes[1:]
	return c, true
}

// Len returns the number of pending codes.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.codes)
}
