// Package actions implements every user-facing mutation of the scoreboard.
//
// A mutation validates against the cache, applies its change to the cache
// immediately and queues the matching remote write. Remote writes run in
// issue order on a single writer; a failure is logged and never rolled back,
// so the cache and the store can diverge until the next change notification
// or Load. Creations are the exception: the store assigns ids, so they wait
// for the remote insert before touching the cache.
package actions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/paaskampf/scoreboard/internal/remote"
	"github.com/paaskampf/scoreboard/internal/scoreboard"
	"github.com/paaskampf/scoreboard/internal/state"
)

var (
	ErrEmptyName        = errors.New("name is required")
	ErrNoWeekend        = errors.New("no active weekend")
	ErrNotEnoughPlayers = errors.New("add at least 2 players")
	ErrUnknownEvent     = errors.New("unknown event")
)

const minPlayers = 2

type Service struct {
	cache  *state.Cache
	store  remote.Store
	logger *slog.Logger
	w      *writer

	// Guarded by the cache lock. selection counts event selections. loading
	// is set while the rows of a new selection are fetched; mutations issued
	// meanwhile are held and replayed once the rows are installed.
	selection uint64
	loading   bool
	held      []heldAction
}

// heldAction is a mutation issued while its selection was loading.
type heldAction struct {
	op        string
	weekendID string
	eventID   string
	fn        func(d *state.Data) bool
}

func New(cache *state.Cache, store remote.Store, logger *slog.Logger) *Service {
	return &Service{
		cache:  cache,
		store:  store,
		logger: logger,
		w:      newWriter(logger),
	}
}

// Flush waits until every queued remote write has been attempted.
func (s *Service) Flush() { s.w.flush() }

// Close drains the remote write queue and stops the writer.
func (s *Service) Close() { s.w.close() }

// view runs fn under the cache lock without signalling a change.
func (s *Service) view(fn func(d *state.Data)) {
	s.cache.Update(func(d *state.Data) bool {
		fn(d)
		return false
	})
}

// mutate applies fn to the cache, or holds it while the selection's rows are
// still loading.
func (s *Service) mutate(op string, fn func(d *state.Data) bool) {
	s.cache.Update(func(d *state.Data) bool {
		if s.loading {
			s.held = append(s.held, heldAction{
				op:        op,
				weekendID: d.WeekendID(),
				eventID:   d.ActiveEventID,
				fn:        fn,
			})
			return false
		}
		return fn(d)
	})
}

// release ends loading and replays, in issue order, the held mutations of
// the selection now in d. Mutations of an abandoned selection are dropped.
// It runs under the cache lock and reports whether any replay changed d.
func (s *Service) release(d *state.Data) bool {
	held := s.held
	s.loading, s.held = false, nil

	changed := false
	for _, a := range held {
		if a.weekendID != d.WeekendID() || a.eventID != d.ActiveEventID {
			s.logger.Warn("dropping action of abandoned selection", "op", a.op, "event_id", a.eventID)
			continue
		}
		if a.fn(d) {
			changed = true
		}
	}
	return changed
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}

// Load replaces the cache with the active weekend from the store. Without an
// active weekend the cache is left empty. An event selection survives when
// the event still exists in the same weekend.
func (s *Service) Load(ctx context.Context) error {
	w, err := s.store.ActiveWeekend(ctx)
	if errors.Is(err, remote.ErrNotFound) {
		s.cache.Update(func(d *state.Data) bool {
			d.Reset(nil)
			s.selection++
			s.release(d)
			return true
		})
		s.logger.Info("no active weekend")
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading active weekend: %w", err)
	}

	var (
		players []scoreboard.Player
		events  []scoreboard.Event
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		players, err = s.store.ListPlayers(gctx, w.ID)
		return err
	})
	g.Go(func() error {
		var err error
		events, err = s.store.ListEvents(gctx, w.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("loading weekend %s: %w", w.ID, err)
	}

	prevWeekend, activeID := s.cache.Selection()
	if prevWeekend != w.ID || !hasEvent(events, activeID) {
		activeID = ""
	}
	teams, scores, err := s.fetchSelection(ctx, w.ID, activeID)
	if err != nil {
		return err
	}

	s.cache.Update(func(d *state.Data) bool {
		d.Reset(&w)
		for _, p := range players {
			d.UpsertPlayer(p)
		}
		for _, e := range events {
			d.UpsertEvent(e)
		}
		d.Select(activeID)
		for _, t := range teams {
			d.UpsertTeam(t)
		}
		for _, es := range scores {
			d.UpsertEventScore(es)
		}
		s.selection++
		s.release(d)
		return true
	})
	s.logger.Info("weekend loaded",
		"weekend_id", w.ID,
		"players", len(players),
		"events", len(events),
		"active_event", activeID,
	)
	return nil
}

func hasEvent(events []scoreboard.Event, id string) bool {
	for _, e := range events {
		if e.ID == id {
			return true
		}
	}
	return false
}

// fetchSelection loads the rows made visible by selecting eventID, or the
// default teams when eventID is empty.
func (s *Service) fetchSelection(ctx context.Context, weekendID, eventID string) ([]scoreboard.Team, []scoreboard.EventScore, error) {
	if eventID == "" {
		teams, err := s.store.ListDefaultTeams(ctx, weekendID)
		if err != nil {
			return nil, nil, fmt.Errorf("loading default teams: %w", err)
		}
		return teams, nil, nil
	}

	var (
		teams  []scoreboard.Team
		scores []scoreboard.EventScore
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		teams, err = s.store.ListEventTeams(gctx, eventID)
		return err
	})
	g.Go(func() error {
		var err error
		scores, err = s.store.ListEventScores(gctx, eventID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("loading event %s: %w", eventID, err)
	}
	return teams, scores, nil
}

// refresh fetches the rows of a selection and installs them unless the
// selection changed while loading.
func (s *Service) refresh(ctx context.Context, weekendID, eventID string, seq uint64) error {
	teams, scores, err := s.fetchSelection(ctx, weekendID, eventID)
	if err != nil {
		s.cache.Update(func(d *state.Data) bool {
			return s.selection == seq && s.release(d)
		})
		return err
	}

	stale := false
	s.cache.Update(func(d *state.Data) bool {
		if s.selection != seq {
			stale = true
			return false
		}
		if d.ActiveEventID != eventID || d.WeekendID() != weekendID {
			stale = true
			return s.release(d)
		}
		for _, t := range teams {
			d.UpsertTeam(t)
		}
		for _, es := range scores {
			d.UpsertEventScore(es)
		}
		s.release(d)
		return true
	})
	if stale {
		s.logger.Debug("discarded stale selection", "event_id", eventID)
	}
	return nil
}

// SetActiveEvent selects eventID, or no event when it is empty. The previous
// selection's teams and scores are dropped at once; the new ones are fetched
// from the store.
func (s *Service) SetActiveEvent(ctx context.Context, eventID string) error {
	var (
		err       error
		weekendID string
		seq       uint64
	)
	s.cache.Update(func(d *state.Data) bool {
		if d.Weekend == nil {
			err = ErrNoWeekend
			return false
		}
		if eventID != "" && !d.Events.Has(eventID) {
			err = ErrUnknownEvent
			return false
		}
		weekendID = d.WeekendID()
		d.Select(eventID)
		s.selection++
		seq = s.selection
		s.loading = true
		return true
	})
	if err != nil {
		return err
	}
	return s.refresh(ctx, weekendID, eventID, seq)
}

// RefreshSelection re-fetches the teams and scores of the current selection.
func (s *Service) RefreshSelection(ctx context.Context) error {
	var weekendID, eventID string
	var seq uint64
	s.view(func(d *state.Data) {
		weekendID, eventID = d.WeekendID(), d.ActiveEventID
		s.selection++
		seq = s.selection
		if weekendID != "" {
			s.loading = true
		}
	})
	if weekendID == "" {
		return nil
	}
	return s.refresh(ctx, weekendID, eventID, seq)
}

// ValidateStart checks that the scoreboard can be started.
func (s *Service) ValidateStart() error {
	var err error
	s.view(func(d *state.Data) {
		switch {
		case d.Weekend == nil:
			err = ErrNoWeekend
		case d.Players.Len() < minPlayers:
			err = ErrNotEnoughPlayers
		}
	})
	return err
}
