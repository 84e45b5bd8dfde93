package modesync

import (
	"fmt"
	"sync"
)

// Sender hands mutation requests to the transport. Enqueue must not wait on
// the network; it either accepts the request for in-order delivery or fails.
type Sender interface {
	Enqueue(req MutationRequest) error
}

const defaultQueueSize = 64

// Queue is a bounded FIFO of outbound requests. The transport drains it from
// a single goroutine, which keeps delivery in enqueue order.
type Queue struct {
	mu     sync.Mutex
	ch     chan MutationRequest
	closed bool
}

var _ Sender = (*Queue)(nil)

// NewQueue creates a queue holding up to size pending requests.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = defaultQueueSize
	}
	return &Queue{ch: make(chan MutationRequest, size)}
}

// Enqueue adds req without blocking. A full or closed queue yields
// ErrChannelUnavailable.
func (q *Queue) Enqueue(req MutationRequest) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return fmt.Errorf("%w: queue closed", ErrChannelUnavailable)
	}
	select {
	case q.ch <- req:
		return nil
	default:
		return fmt.Errorf("%w: queue full (%d pending)", ErrChannelUnavailable, cap(q.ch))
	}
}

// Requests is the receive side for the transport.
func (q *Queue) Requests() <-chan MutationRequest {
	return q.ch
}

// Len reports the number of requests waiting to be sent.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Close stops accepting requests. Already queued requests stay readable.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}
