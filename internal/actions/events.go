package actions

import (
	"context"
	"fmt"

	"github.com/paaskampf/scoreboard/internal/scoreboard"
	"github.com/paaskampf/scoreboard/internal/state"
	"github.com/paaskampf/scoreboard/internal/views"
)

// EventOptions are the flags of a new event.
type EventOptions struct {
	CountsForTotal bool
	ReverseScoring bool
}

// CreateEvent adds an event with a zero score row for every current player.
// Players added later get no row for it.
func (s *Service) CreateEvent(ctx context.Context, name string, opts EventOptions) (scoreboard.Event, error) {
	name, err := cleanName(name)
	if err != nil {
		return scoreboard.Event{}, err
	}

	var (
		e         scoreboard.Event
		playerIDs []string
	)
	s.view(func(d *state.Data) {
		if d.Weekend == nil {
			err = ErrNoWeekend
			return
		}
		e = scoreboard.Event{
			WeekendID:      d.Weekend.ID,
			Name:           name,
			CountsForTotal: opts.CountsForTotal,
			ReverseScoring: opts.ReverseScoring,
			SortOrder:      d.Events.Len(),
		}
		playerIDs = d.PlayerIDs()
	})
	if err != nil {
		return scoreboard.Event{}, err
	}

	created, err := s.store.CreateEvent(ctx, e, playerIDs)
	if err != nil {
		return scoreboard.Event{}, fmt.Errorf("creating event: %w", err)
	}
	s.cache.Update(func(d *state.Data) bool {
		if d.WeekendID() != created.WeekendID {
			return false
		}
		d.UpsertEvent(created)
		return true
	})
	s.logger.Info("event created", "event_id", created.ID, "name", created.Name, "players", len(playerIDs))
	return created, nil
}

// RemoveEvent deletes an event with its scores and teams. Removing the active
// event falls back to no event and reloads the default teams.
func (s *Service) RemoveEvent(ctx context.Context, id string) error {
	var (
		wasActive bool
		weekendID string
		seq       uint64
	)
	s.cache.Update(func(d *state.Data) bool {
		if !d.Events.Has(id) {
			return false
		}
		wasActive = d.DeleteEvent(id)
		if wasActive {
			s.selection++
			seq = s.selection
			s.loading = true
		}
		weekendID = d.WeekendID()
		s.w.enqueue("delete event", func(ctx context.Context) error {
			return s.store.DeleteEvent(ctx, id)
		})
		return true
	})
	if !wasActive {
		return nil
	}
	return s.refresh(ctx, weekendID, "", seq)
}

func (s *Service) ToggleCountsForTotal() {
	s.toggle("toggle counts for total", func(e *scoreboard.Event) {
		e.CountsForTotal = !e.CountsForTotal
	})
}

func (s *Service) ToggleReverseScoring() {
	s.toggle("toggle reverse scoring", func(e *scoreboard.Event) {
		e.ReverseScoring = !e.ReverseScoring
	})
}

func (s *Service) toggle(op string, flip func(e *scoreboard.Event)) {
	s.mutate(op, func(d *state.Data) bool {
		e, ok := d.ActiveEvent()
		if !ok {
			return false
		}
		flip(&e)
		d.UpsertEvent(e)
		s.w.enqueue(op, func(ctx context.Context) error {
			return s.store.UpdateEventFlags(ctx, e.ID, e.CountsForTotal, e.ReverseScoring)
		})
		return true
	})
}

// EventOverview fetches the score rows of every event of the weekend and
// summarises each event's top three.
func (s *Service) EventOverview(ctx context.Context) ([]views.EventSummary, error) {
	var (
		events  []scoreboard.Event
		players []scoreboard.Player
	)
	s.view(func(d *state.Data) {
		events = d.Events.Values()
		players = d.Players.Values()
	})
	if len(events) == 0 {
		return []views.EventSummary{}, nil
	}

	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	scores, err := s.store.ListEventScores(ctx, ids...)
	if err != nil {
		return nil, fmt.Errorf("loading event scores: %w", err)
	}
	return views.TopThree(events, players, scores), nil
}
