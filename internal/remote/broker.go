package remote

import (
	"context"
	"log/slog"
	"sync"
)

type brokerSub struct {
	topics []Topic
	q      *queue
}

// Broker is an in-process Feed. Each subscriber has its own unbounded queue,
// so a slow subscriber neither blocks the publisher nor loses changes.
type Broker struct {
	logger *slog.Logger

	mu   sync.RWMutex
	subs map[*brokerSub]struct{}
}

func NewBroker(logger *slog.Logger) *Broker {
	return &Broker{
		logger: logger,
		subs:   make(map[*brokerSub]struct{}),
	}
}

func (b *Broker) Subscribe(ctx context.Context, topics ...Topic) (*Subscription, error) {
	sub := &brokerSub{
		topics: topics,
		q:      newQueue(),
	}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	b.logger.Debug("feed subscription opened", "topics", len(topics))

	s := &Subscription{
		C: sub.q.out,
		close: func() {
			b.mu.Lock()
			delete(b.subs, sub)
			b.mu.Unlock()
			sub.q.stop()
		},
	}
	context.AfterFunc(ctx, s.Close)
	return s, nil
}

func (b *Broker) Publish(_ context.Context, c Change) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs {
		if !matchAny(sub.topics, c) {
			continue
		}
		sub.q.put(c)
	}
	return nil
}

// Backlog returns the number of changes queued for subscribers and not yet
// received.
func (b *Broker) Backlog() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for sub := range b.subs {
		n += sub.q.len()
	}
	return n
}

// Subscribers returns the number of open subscriptions.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Subscribed reports whether an open subscription includes topic.
func (b *Broker) Subscribed(topic Topic) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subs {
		for _, t := range sub.topics {
			if t == topic {
				return true
			}
		}
	}
	return false
}
