package glgpu

import (
	"sync"

	"mygrid/internal/gpu"
)

// call is one function waiting to run on the GL thread.
type call struct {
	fn   func()
	done chan struct{} // nil for posted calls
	ran  bool
}

// queue marshals work onto the thread that owns the GL context. Any
// goroutine may submit; only the GL thread drains.
type queue struct {
	mu     sync.Mutex
	calls  []*call
	closed bool
}

// do runs fn on the GL thread and waits for it. It must not be called from
// the GL thread itself. It returns gpu.ErrDeviceLost if the queue is closed
// before fn runs.
func (q *queue) do(fn func()) error {
	c := &call{fn: fn, done: make(chan struct{})}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return gpu.ErrDeviceLost
	}
	q.calls = append(q.calls, c)
	q.mu.Unlock()

	<-c.done
	if !c.ran {
		return gpu.ErrDeviceLost
	}
	return nil
}

// post queues fn without waiting. It reports false if the queue is closed.
func (q *queue) post(fn func()) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.calls = append(q.calls, &call{fn: fn})
	return true
}

// drain runs every queued call in submission order and returns how many ran.
// Calls queued while draining wait for the next drain.
func (q *queue) drain() int {
	q.mu.Lock()
	calls := q.calls
	q.calls = nil
	q.mu.Unlock()

	for _, c := range calls {
		c.fn()
		c.ran = true
		if c.done != nil {
			close(c.done)
		}
	}
	return len(calls)
}

// close rejects new calls and fails every waiting one.
func (q *queue) close() {
	q.mu.Lock()
	calls := q.calls
	q.calls = nil
	q.closed = true
	q.mu.Unlock()

	for _, c := range calls {
		if c.done != nil {
			close(c.done)
		}
	}
}

func (q *queue) pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.calls)
}
