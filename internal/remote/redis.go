package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "scoreboard:"

// RedisFeed carries changes over Redis pub/sub, one channel per table, so
// several server processes observe the same store.
type RedisFeed struct {
	rdb    *redis.Client
	logger *slog.Logger
}

func NewRedisFeed(rdb *redis.Client, logger *slog.Logger) *RedisFeed {
	return &RedisFeed{rdb: rdb, logger: logger}
}

func (f *RedisFeed) Publish(ctx context.Context, c Change) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding change: %w", err)
	}
	if err := f.rdb.Publish(ctx, channelPrefix+c.Table, data).Err(); err != nil {
		return fmt.Errorf("publishing %s change: %w", c.Table, err)
	}
	return nil
}

func (f *RedisFeed) Subscribe(ctx context.Context, topics ...Topic) (*Subscription, error) {
	ps := f.rdb.Subscribe(ctx, channelsFor(topics)...)
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("subscribing to feed: %w", err)
	}

	q := newQueue()

	go func() {
		msgs := ps.Channel()
		for {
			select {
			case <-q.done:
				return
			case msg, ok := <-msgs:
				if !ok {
					q.stop()
					return
				}
				var c Change
				if err := json.Unmarshal([]byte(msg.Payload), &c); err != nil {
					f.logger.Warn("discarding malformed change", "channel", msg.Channel, "error", err)
					continue
				}
				if !matchAny(topics, c) {
					continue
				}
				q.put(c)
			}
		}
	}()

	s := &Subscription{
		C: q.out,
		close: func() {
			q.stop()
			ps.Close()
		},
	}
	context.AfterFunc(ctx, s.Close)
	return s, nil
}

func channelsFor(topics []Topic) []string {
	seen := make(map[string]bool, len(topics))
	var chans []string
	for _, t := range topics {
		ch := channelPrefix + t.Table
		if !seen[ch] {
			seen[ch] = true
			chans = append(chans, ch)
		}
	}
	return chans
}
