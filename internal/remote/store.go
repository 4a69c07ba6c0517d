package remote

import (
	"context"
	"errors"

	"github.com/paaskampf/scoreboard/internal/scoreboard"
)

var ErrNotFound = errors.New("not found")

// Store is the remote source of truth. Every write publishes the affected
// rows on the feed after it commits.
type Store interface {
	ActiveWeekend(ctx context.Context) (scoreboard.Weekend, error)
	CreateWeekend(ctx context.Context, name string) (scoreboard.Weekend, error)

	ListPlayers(ctx context.Context, weekendID string) ([]scoreboard.Player, error)
	ListDefaultTeams(ctx context.Context, weekendID string) ([]scoreboard.Team, error)
	ListEventTeams(ctx context.Context, eventID string) ([]scoreboard.Team, error)
	ListEvents(ctx context.Context, weekendID string) ([]scoreboard.Event, error)
	ListEventScores(ctx context.Context, eventIDs ...string) ([]scoreboard.EventScore, error)

	InsertPlayer(ctx context.Context, p scoreboard.Player) (scoreboard.Player, error)
	DeletePlayer(ctx context.Context, id string) error
	SetPlayerTeam(ctx context.Context, playerID string, teamID *string) error

	InsertTeam(ctx context.Context, t scoreboard.Team) (scoreboard.Team, error)
	DeleteTeam(ctx context.Context, id string) error
	AddTeamScore(ctx context.Context, teamID string, points int) error

	// CreateEvent inserts the event together with a zero EventScore for every
	// given player.
	CreateEvent(ctx context.Context, e scoreboard.Event, playerIDs []string) (scoreboard.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	UpdateEventFlags(ctx context.Context, id string, countsForTotal, reverseScoring bool) error
	SetEventScoreTeam(ctx context.Context, eventID, playerID string, teamID *string) error

	// AddScore is add_score: increments every player's global score.
	AddScore(ctx context.Context, playerIDs []string, points int) error
	// ScoreInEvent is score_in_event: increments the players' EventScore rows
	// and, when countsForTotal, their global scores too.
	ScoreInEvent(ctx context.Context, eventID string, playerIDs []string, points int, countsForTotal bool) error

	ResetWeekendScores(ctx context.Context, weekendID string) error
	ResetEventScores(ctx context.Context, eventID string) error
}
