// Package realtime merges change notifications from the remote store into
// the cache.
package realtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/paaskampf/scoreboard/internal/remote"
	"github.com/paaskampf/scoreboard/internal/scoreboard"
	"github.com/paaskampf/scoreboard/internal/state"
)

// Refresher reloads the teams and scores of the current selection. It is
// called after a remote delete cleared the active event.
type Refresher interface {
	RefreshSelection(ctx context.Context) error
}

// Reconciler owns two subscriptions: players, teams and events of the loaded
// weekend, and the score rows of the active event. Each is replaced exactly
// when its scope changes in the cache.
type Reconciler struct {
	cache     *state.Cache
	feed      remote.Feed
	refresher Refresher
	logger    *slog.Logger
}

// New creates a Reconciler. refresher may be nil.
func New(cache *state.Cache, feed remote.Feed, refresher Refresher, logger *slog.Logger) *Reconciler {
	return &Reconciler{cache: cache, feed: feed, refresher: refresher, logger: logger}
}

// subscription is one open feed registration and the scope it was opened for.
type subscription struct {
	scope string
	sub   *remote.Subscription
}

func (s *subscription) changes() <-chan remote.Change {
	if s.sub == nil {
		return nil
	}
	return s.sub.C
}

func (s *subscription) close() {
	if s.sub != nil {
		s.sub.Close()
	}
	s.sub = nil
	s.scope = ""
}

// Run merges changes until ctx ends, then closes both subscriptions.
func (r *Reconciler) Run(ctx context.Context) error {
	watch, stop := r.cache.Watch()
	defer stop()

	var weekend, event subscription
	defer weekend.close()
	defer event.close()

	for {
		if ctx.Err() != nil {
			return nil
		}
		weekendID, eventID := r.cache.Selection()
		if err := r.resubscribe(ctx, &weekend, weekendID, weekendTopics); err != nil {
			return err
		}
		if err := r.resubscribe(ctx, &event, eventID, eventTopics); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-watch:
		case c, ok := <-weekend.changes():
			if !ok {
				weekend.sub = nil
				continue
			}
			r.apply(ctx, c, weekendID)
		case c, ok := <-event.changes():
			if !ok {
				event.sub = nil
				continue
			}
			r.apply(ctx, c, weekendID)
		}
	}
}

func weekendTopics(weekendID string) []remote.Topic {
	return []remote.Topic{
		{Table: remote.TablePlayers, Column: "weekend_id", Value: weekendID},
		{Table: remote.TableTeams},
		{Table: remote.TableEvents, Column: "weekend_id", Value: weekendID},
	}
}

func eventTopics(eventID string) []remote.Topic {
	return []remote.Topic{
		{Table: remote.TableEventScores, Column: "event_id", Value: eventID},
	}
}

// resubscribe points s at scope, closing the old registration when the scope
// changed. An empty scope leaves s closed.
func (r *Reconciler) resubscribe(ctx context.Context, s *subscription, scope string, topics func(string) []remote.Topic) error {
	if s.scope == scope && (s.sub != nil || scope == "") {
		return nil
	}
	s.close()
	if scope == "" {
		return nil
	}

	sub, err := r.feed.Subscribe(ctx, topics(scope)...)
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", topics(scope)[0], err)
	}
	s.sub, s.scope = sub, scope
	r.logger.Debug("subscribed", "scope", scope)
	return nil
}

func (r *Reconciler) apply(ctx context.Context, c remote.Change, weekendID string) {
	var (
		cleared bool
		err     error
	)
	switch c.Table {
	case remote.TablePlayers:
		var p scoreboard.Player
		if err = c.Decode(&p); err == nil {
			r.cache.Update(func(d *state.Data) bool {
				return mergePlayer(d, c.Op, p)
			})
		}
	case remote.TableTeams:
		var t scoreboard.Team
		if err = c.Decode(&t); err == nil {
			r.cache.Update(func(d *state.Data) bool {
				return mergeTeam(d, c.Op, t)
			})
		}
	case remote.TableEvents:
		var e scoreboard.Event
		if err = c.Decode(&e); err == nil {
			r.cache.Update(func(d *state.Data) bool {
				var changed bool
				changed, cleared = mergeEvent(d, c.Op, e)
				return changed
			})
		}
	case remote.TableEventScores:
		var es scoreboard.EventScore
		if err = c.Decode(&es); err == nil {
			r.cache.Update(func(d *state.Data) bool {
				return mergeEventScore(d, c.Op, es)
			})
		}
	}
	if err != nil {
		r.logger.Warn("skipping malformed change", "table", c.Table, "op", c.Op, "error", err)
		return
	}

	if cleared && r.refresher != nil {
		if err := r.refresher.RefreshSelection(ctx); err != nil {
			r.logger.Warn("refreshing selection failed", "weekend_id", weekendID, "error", err)
		}
	}
}
