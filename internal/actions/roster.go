package actions

import (
	"context"
	"fmt"

	"github.com/paaskampf/scoreboard/internal/scoreboard"
	"github.com/paaskampf/scoreboard/internal/state"
)

// CreateWeekend makes a new weekend the only active one and points the cache
// at it.
func (s *Service) CreateWeekend(ctx context.Context, name string) (scoreboard.Weekend, error) {
	name, err := cleanName(name)
	if err != nil {
		return scoreboard.Weekend{}, err
	}

	w, err := s.store.CreateWeekend(ctx, name)
	if err != nil {
		return scoreboard.Weekend{}, fmt.Errorf("creating weekend: %w", err)
	}

	s.cache.Update(func(d *state.Data) bool {
		d.Reset(&w)
		s.selection++
		s.release(d)
		return true
	})
	s.logger.Info("weekend created", "weekend_id", w.ID, "name", w.Name)
	return w, nil
}

// AddPlayer appends a player to the loaded weekend. An empty color picks the
// first unused palette colour.
func (s *Service) AddPlayer(ctx context.Context, name, color string) (scoreboard.Player, error) {
	name, err := cleanName(name)
	if err != nil {
		return scoreboard.Player{}, err
	}

	var p scoreboard.Player
	s.view(func(d *state.Data) {
		if d.Weekend == nil {
			err = ErrNoWeekend
			return
		}
		if color == "" {
			color = scoreboard.NextColor(scoreboard.PlayerColors, d.PlayerColors())
		}
		p = scoreboard.Player{
			WeekendID: d.Weekend.ID,
			Name:      name,
			Color:     color,
			SortOrder: d.Players.Len(),
		}
	})
	if err != nil {
		return scoreboard.Player{}, err
	}

	created, err := s.store.InsertPlayer(ctx, p)
	if err != nil {
		return scoreboard.Player{}, fmt.Errorf("adding player: %w", err)
	}
	s.cache.Update(func(d *state.Data) bool {
		if d.WeekendID() != created.WeekendID {
			return false
		}
		d.UpsertPlayer(created)
		return true
	})
	return created, nil
}

func (s *Service) RemovePlayer(id string) {
	s.mutate("delete player", func(d *state.Data) bool {
		if !d.Players.Has(id) {
			return false
		}
		d.DeletePlayer(id)
		s.w.enqueue("delete player", func(ctx context.Context) error {
			return s.store.DeletePlayer(ctx, id)
		})
		return true
	})
}

// AssignTeam moves a player to teamID, or out of every team when teamID is
// empty. With an event active the player's team within that event changes;
// otherwise the player's own team does.
func (s *Service) AssignTeam(playerID, teamID string) {
	s.mutate("assign team", func(d *state.Data) bool {
		if teamID != "" && !d.Teams.Has(teamID) {
			return false
		}
		ref := scoreboard.Ref(teamID)

		if eventID := d.ActiveEventID; eventID != "" {
			es, ok := d.EventScoreFor(playerID)
			if !ok {
				return false
			}
			es.TeamID = ref
			d.UpsertEventScore(es)
			s.w.enqueue("set event team", func(ctx context.Context) error {
				return s.store.SetEventScoreTeam(ctx, eventID, playerID, ref)
			})
			return true
		}

		p, ok := d.Players.Get(playerID)
		if !ok {
			return false
		}
		p.TeamID = ref
		d.UpsertPlayer(p)
		s.w.enqueue("set player team", func(ctx context.Context) error {
			return s.store.SetPlayerTeam(ctx, playerID, ref)
		})
		return true
	})
}

// AddTeam creates a team in the current selection: scoped to the active
// event, or a default team when no event is active.
func (s *Service) AddTeam(ctx context.Context, name, color string) (scoreboard.Team, error) {
	name, err := cleanName(name)
	if err != nil {
		return scoreboard.Team{}, err
	}

	var t scoreboard.Team
	s.view(func(d *state.Data) {
		if d.Weekend == nil {
			err = ErrNoWeekend
			return
		}
		if color == "" {
			color = scoreboard.NextColor(scoreboard.TeamColors, d.TeamColors())
		}
		t = scoreboard.Team{
			WeekendID: d.Weekend.ID,
			EventID:   scoreboard.Ref(d.ActiveEventID),
			Name:      name,
			Color:     color,
			SortOrder: d.Teams.Len(),
		}
	})
	if err != nil {
		return scoreboard.Team{}, err
	}

	created, err := s.store.InsertTeam(ctx, t)
	if err != nil {
		return scoreboard.Team{}, fmt.Errorf("adding team: %w", err)
	}
	s.cache.Update(func(d *state.Data) bool {
		if d.WeekendID() != created.WeekendID || !created.InEvent(d.ActiveEventID) {
			return false
		}
		d.UpsertTeam(created)
		return true
	})
	return created, nil
}

// RemoveTeam deletes a team. Its members stay, without a team.
func (s *Service) RemoveTeam(id string) {
	s.mutate("delete team", func(d *state.Data) bool {
		if !d.Teams.Has(id) {
			return false
		}
		d.DeleteTeam(id)
		s.w.enqueue("delete team", func(ctx context.Context) error {
			return s.store.DeleteTeam(ctx, id)
		})
		return true
	})
}
