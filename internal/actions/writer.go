package actions

import (
	"context"
	"log/slog"
	"sync"
)

type job struct {
	op string
	fn func(ctx context.Context) error
}

// writer sends remote writes one at a time in the order they were queued.
// A failed write is logged and dropped; the optimistic cache change stays.
type writer struct {
	logger *slog.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []job
	busy    bool
	closed  bool
	stopped chan struct{}
}

func newWriter(logger *slog.Logger) *writer {
	w := &writer{logger: logger, stopped: make(chan struct{})}
	w.cond = sync.NewCond(&w.mu)
	go w.run()
	return w
}

func (w *writer) enqueue(op string, fn func(ctx context.Context) error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		w.logger.Warn("remote write dropped after close", "op", op)
		return
	}
	w.queue = append(w.queue, job{op: op, fn: fn})
	w.cond.Broadcast()
}

func (w *writer) run() {
	defer close(w.stopped)
	ctx := context.Background()

	for {
		w.mu.Lock()
		for len(w.queue) == 0 && !w.closed {
			w.cond.Wait()
		}
		if len(w.queue) == 0 {
			w.mu.Unlock()
			return
		}
		j := w.queue[0]
		w.queue = w.queue[1:]
		w.busy = true
		w.mu.Unlock()

		if err := j.fn(ctx); err != nil {
			w.logger.Warn("remote write failed", "op", j.op, "error", err)
		}

		w.mu.Lock()
		w.busy = false
		w.cond.Broadcast()
		w.mu.Unlock()
	}
}

// flush blocks until every queued write has been attempted.
func (w *writer) flush() {
	w.mu.Lock()
	for len(w.queue) > 0 || w.busy {
		w.cond.Wait()
	}
	w.mu.Unlock()
}

// close drains the queue and stops the writer.
func (w *writer) close() {
	w.mu.Lock()
	w.closed = true
	w.cond.Broadcast()
	w.mu.Unlock()
	<-w.stopped
}
