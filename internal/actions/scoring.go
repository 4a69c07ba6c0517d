package actions

import (
	"context"
	"fmt"

	"github.com/paaskampf/scoreboard/internal/scoreboard"
	"github.com/paaskampf/scoreboard/internal/state"
)

// ScorePlayer adds points to a player. With an event active the player's
// event row changes, and the global score only when the event counts for
// the total. A player without a row in the active event is left alone.
func (s *Service) ScorePlayer(playerID string, points int) {
	s.mutate("score player", func(d *state.Data) bool {
		p, ok := d.Players.Get(playerID)
		if !ok {
			return false
		}
		ids := []string{playerID}

		if e, ok := d.ActiveEvent(); ok {
			es, ok := d.EventScoreFor(playerID)
			if !ok {
				return false
			}
			es.Score += points
			d.UpsertEventScore(es)
			if e.CountsForTotal {
				p.Score += points
				d.UpsertPlayer(p)
			}
			s.w.enqueue("score in event", func(ctx context.Context) error {
				return s.store.ScoreInEvent(ctx, e.ID, ids, points, e.CountsForTotal)
			})
			return true
		}

		p.Score += points
		d.UpsertPlayer(p)
		s.w.enqueue("add score", func(ctx context.Context) error {
			return s.store.AddScore(ctx, ids, points)
		})
		return true
	})
}

// ScoreTeam adds points to every member of a team and to the team's own
// score in one cache update. A team without members is left alone.
func (s *Service) ScoreTeam(teamID string, points int) {
	s.mutate("score team", func(d *state.Data) bool {
		t, ok := d.Teams.Get(teamID)
		if !ok {
			return false
		}
		members := d.Members(teamID)
		if len(members) == 0 {
			return false
		}

		e, inEvent := d.ActiveEvent()
		for _, id := range members {
			if inEvent {
				if es, ok := d.EventScoreFor(id); ok {
					es.Score += points
					d.UpsertEventScore(es)
				}
				if !e.CountsForTotal {
					continue
				}
			}
			if p, ok := d.Players.Get(id); ok {
				p.Score += points
				d.UpsertPlayer(p)
			}
		}
		t.Score += points
		d.UpsertTeam(t)

		s.w.enqueue("score team", func(ctx context.Context) error {
			var err error
			if inEvent {
				err = s.store.ScoreInEvent(ctx, e.ID, members, points, e.CountsForTotal)
			} else {
				err = s.store.AddScore(ctx, members, points)
			}
			if err != nil {
				return fmt.Errorf("scoring members: %w", err)
			}
			return s.store.AddTeamScore(ctx, teamID, points)
		})
		return true
	})
}

// ResetScores zeroes the active event's rows and teams, or with no event
// active every player, team and event row of the weekend.
func (s *Service) ResetScores() {
	s.mutate("reset scores", func(d *state.Data) bool {
		if d.Weekend == nil {
			return false
		}

		d.EventScores.Update(func(es scoreboard.EventScore) scoreboard.EventScore {
			es.Score = 0
			return es
		})
		d.Teams.Update(func(t scoreboard.Team) scoreboard.Team {
			t.Score = 0
			return t
		})

		if e, ok := d.ActiveEvent(); ok {
			s.w.enqueue("reset event scores", func(ctx context.Context) error {
				return s.store.ResetEventScores(ctx, e.ID)
			})
			return true
		}

		d.Players.Update(func(p scoreboard.Player) scoreboard.Player {
			p.Score = 0
			return p
		})
		weekendID := d.Weekend.ID
		s.w.enqueue("reset weekend scores", func(ctx context.Context) error {
			return s.store.ResetWeekendScores(ctx, weekendID)
		})
		return true
	})
}
