package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/paaskampf/scoreboard/internal/scoreboard"
	"github.com/paaskampf/scoreboard/internal/state"
	"github.com/paaskampf/scoreboard/internal/views"
)

// Stream channels. The control channel carries the full controller state,
// the live channel only the public board.
const (
	channelControl = "control"
	channelLive    = "live"
)

// SSEEvent is one server-sent event with a JSON payload.
type SSEEvent struct {
	Type string
	Data []byte
}

// Celebration announces a new overall leader.
type Celebration struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Score    int    `json:"score"`
}

// Broker is an in-process pub/sub for SSE events, keyed by channel.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan SSEEvent]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan SSEEvent]struct{}),
	}
}

// Subscribe returns a channel that receives the events published on channel.
func (b *Broker) Subscribe(channel string) chan SSEEvent {
	ch := make(chan SSEEvent, 16)
	b.mu.Lock()
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[chan SSEEvent]struct{})
	}
	b.subs[channel][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes ch from the channel's subscribers.
func (b *Broker) Unsubscribe(channel string, ch chan SSEEvent) {
	b.mu.Lock()
	delete(b.subs[channel], ch)
	if len(b.subs[channel]) == 0 {
		delete(b.subs, channel)
	}
	b.mu.Unlock()
}

// Publish sends v to every subscriber of channel. Slow subscribers miss it;
// the next state event supersedes it.
func (b *Broker) Publish(channel, typ string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ev := SSEEvent{Type: typ, Data: data}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs[channel] {
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}

// Relay publishes the state after every cache change, and a celebrate event
// when the overall leader changes, until ctx ends.
func (b *Broker) Relay(ctx context.Context, cache *state.Cache, logger *slog.Logger) error {
	watch, stop := cache.Watch()
	defer stop()

	var leader views.LeaderWatcher
	for {
		s := cache.Snapshot()
		p, changed := leader.Observe(s.Players)
		if err := b.Publish(channelControl, "state", newStateResponse(s)); err != nil {
			logger.Error("encoding state event", "error", err)
		}
		if err := b.Publish(channelLive, "state", views.NewBoard(s)); err != nil {
			logger.Error("encoding live event", "error", err)
		}
		if changed {
			b.celebrate(p, logger)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-watch:
		}
	}
}

func (b *Broker) celebrate(p scoreboard.Player, logger *slog.Logger) {
	logger.Info("new leader", "player_id", p.ID, "name", p.Name, "score", p.Score)
	c := Celebration{PlayerID: p.ID, Name: p.Name, Color: p.Color, Score: p.Score}
	for _, channel := range []string{channelControl, channelLive} {
		if err := b.Publish(channel, "celebrate", c); err != nil {
			logger.Error("encoding celebrate event", "error", err)
		}
	}
}
