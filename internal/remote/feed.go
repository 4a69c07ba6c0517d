package remote

import (
	"context"
	"sync"
)

// Feed delivers row changes from the store to subscribers.
type Feed interface {
	Publish(ctx context.Context, c Change) error
	// Subscribe opens one subscription covering all topics. It stays open
	// until Close is called or ctx ends. Every matching change is delivered
	// in publish order; a slow reader delays delivery but loses nothing.
	Subscribe(ctx context.Context, topics ...Topic) (*Subscription, error)
}

// Subscription is a live feed registration. C is closed after Close.
type Subscription struct {
	C <-chan Change

	once  sync.Once
	close func()
}

func (s *Subscription) Close() {
	s.once.Do(s.close)
}

// queue is an unbounded FIFO between a publisher that must not block and a
// subscriber reading out. Changes still queued at stop are discarded.
type queue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending []Change
	stopped bool

	out  chan Change
	done chan struct{}
}

func newQueue() *queue {
	q := &queue{
		out:  make(chan Change),
		done: make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

func (q *queue) put(c Change) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return
	}
	q.pending = append(q.pending, c)
	q.cond.Signal()
}

// len returns the number of changes not yet handed to the reader.
func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *queue) stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return
	}
	q.stopped = true
	q.pending = nil
	close(q.done)
	q.cond.Broadcast()
}

func (q *queue) run() {
	defer close(q.out)
	for {
		q.mu.Lock()
		for len(q.pending) == 0 && !q.stopped {
			q.cond.Wait()
		}
		if q.stopped {
			q.mu.Unlock()
			return
		}
		c := q.pending[0]
		q.pending[0] = Change{}
		q.pending = q.pending[1:]
		q.mu.Unlock()

		select {
		case q.out <- c:
		case <-q.done:
			return
		}
	}
}
