package remote

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/paaskampf/scoreboard/internal/scoreboard"
)

const (
	weekendCols    = `id, name, is_active, created_at`
	playerCols     = `id, weekend_id, name, score, color, team_id, sort_order, created_at`
	teamCols       = `id, weekend_id, event_id, name, score, color, sort_order, created_at`
	eventCols      = `id, weekend_id, name, is_active, counts_for_total, reverse_scoring, sort_order, created_at`
	eventScoreCols = `id, event_id, player_id, team_id, score`
)

type scanner interface {
	Scan(dest ...any) error
}

// SQLiteStore implements Store on the migrated libSQL schema.
type SQLiteStore struct {
	db     *sql.DB
	feed   Feed
	logger *slog.Logger
}

func NewSQLiteStore(db *sql.DB, feed Feed, logger *slog.Logger) *SQLiteStore {
	return &SQLiteStore{db: db, feed: feed, logger: logger}
}

// changeSet collects the changes of one write so they are published only
// after the transaction commits.
type changeSet struct {
	changes []Change
	err     error
}

func (cs *changeSet) add(table string, op Op, row any) {
	if cs.err != nil {
		return
	}
	c, err := newChange(table, op, row)
	if err != nil {
		cs.err = err
		return
	}
	cs.changes = append(cs.changes, c)
}

func (s *SQLiteStore) write(ctx context.Context, fn func(tx *sql.Tx, cs *changeSet) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var cs changeSet
	if err := fn(tx, &cs); err != nil {
		return err
	}
	if cs.err != nil {
		return cs.err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}

	for _, c := range cs.changes {
		if err := s.feed.Publish(ctx, c); err != nil {
			s.logger.Warn("publishing change failed", "table", c.Table, "op", c.Op, "error", err)
		}
	}
	return nil
}

// --- scanning ---

func scanWeekend(sc scanner) (scoreboard.Weekend, error) {
	var w scoreboard.Weekend
	err := sc.Scan(&w.ID, &w.Name, &w.IsActive, &w.CreatedAt)
	return w, err
}

func scanPlayer(sc scanner) (scoreboard.Player, error) {
	var p scoreboard.Player
	err := sc.Scan(&p.ID, &p.WeekendID, &p.Name, &p.Score, &p.Color, &p.TeamID, &p.SortOrder, &p.CreatedAt)
	return p, err
}

func scanTeam(sc scanner) (scoreboard.Team, error) {
	var t scoreboard.Team
	err := sc.Scan(&t.ID, &t.WeekendID, &t.EventID, &t.Name, &t.Score, &t.Color, &t.SortOrder, &t.CreatedAt)
	return t, err
}

func scanEvent(sc scanner) (scoreboard.Event, error) {
	var e scoreboard.Event
	err := sc.Scan(&e.ID, &e.WeekendID, &e.Name, &e.IsActive, &e.CountsForTotal, &e.ReverseScoring, &e.SortOrder, &e.CreatedAt)
	return e, err
}

func scanEventScore(sc scanner) (scoreboard.EventScore, error) {
	var es scoreboard.EventScore
	err := sc.Scan(&es.ID, &es.EventID, &es.PlayerID, &es.TeamID, &es.Score)
	return es, err
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryAll[T any](ctx context.Context, q querier, scan func(scanner) (T, error), query string, args ...any) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// placeholders returns "?, ?, ?" for n values and the ids as args.
func placeholders(ids []string) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", "), args
}

// boolInt stores booleans as 0/1; libSQL does not bind Go bools.
func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullable(id *string) any {
	if id == nil {
		return nil
	}
	return *id
}

// --- reads ---

func (s *SQLiteStore) ActiveWeekend(ctx context.Context) (scoreboard.Weekend, error) {
	w, err := scanWeekend(s.db.QueryRowContext(ctx, `
		SELECT `+weekendCols+` FROM weekend
		WHERE is_active = 1
		ORDER BY created_at DESC
		LIMIT 1
	`))
	if errors.Is(err, sql.ErrNoRows) {
		return w, ErrNotFound
	}
	return w, err
}

func (s *SQLiteStore) ListPlayers(ctx context.Context, weekendID string) ([]scoreboard.Player, error) {
	return queryAll(ctx, s.db, scanPlayer, `
		SELECT `+playerCols+` FROM players
		WHERE weekend_id = ?
		ORDER BY sort_order, created_at
	`, weekendID)
}

func (s *SQLiteStore) ListDefaultTeams(ctx context.Context, weekendID string) ([]scoreboard.Team, error) {
	return queryAll(ctx, s.db, scanTeam, `
		SELECT `+teamCols+` FROM teams
		WHERE weekend_id = ? AND event_id IS NULL
		ORDER BY sort_order, created_at
	`, weekendID)
}

func (s *SQLiteStore) ListEventTeams(ctx context.Context, eventID string) ([]scoreboard.Team, error) {
	return queryAll(ctx, s.db, scanTeam, `
		SELECT `+teamCols+` FROM teams
		WHERE event_id = ?
		ORDER BY sort_order, created_at
	`, eventID)
}

func (s *SQLiteStore) ListEvents(ctx context.Context, weekendID string) ([]scoreboard.Event, error) {
	return queryAll(ctx, s.db, scanEvent, `
		SELECT `+eventCols+` FROM events
		WHERE weekend_id = ?
		ORDER BY sort_order, created_at
	`, weekendID)
}

func (s *SQLiteStore) ListEventScores(ctx context.Context, eventIDs ...string) ([]scoreboard.EventScore, error) {
	if len(eventIDs) == 0 {
		return nil, nil
	}
	in, args := placeholders(eventIDs)
	return queryAll(ctx, s.db, scanEventScore, `
		SELECT es.id, es.event_id, es.player_id, es.team_id, es.score
		FROM event_scores es
		JOIN players p ON p.id = es.player_id
		WHERE es.event_id IN (`+in+`)
		ORDER BY p.sort_order, p.created_at
	`, args...)
}

// --- weekend ---

func (s *SQLiteStore) CreateWeekend(ctx context.Context, name string) (scoreboard.Weekend, error) {
	var w scoreboard.Weekend
	err := s.write(ctx, func(tx *sql.Tx, cs *changeSet) error {
		prev, err := queryAll(ctx, tx, scanWeekend, `
			UPDATE weekend SET is_active = 0 WHERE is_active = 1
			RETURNING `+weekendCols)
		if err != nil {
			return fmt.Errorf("deactivating weekends: %w", err)
		}
		for _, p := range prev {
			cs.add(TableWeekend, OpUpdate, p)
		}

		w, err = scanWeekend(tx.QueryRowContext(ctx, `
			INSERT INTO weekend (id, name, is_active) VALUES (?, ?, 1)
			RETURNING `+weekendCols, uuid.NewString(), name))
		if err != nil {
			return fmt.Errorf("inserting weekend: %w", err)
		}
		cs.add(TableWeekend, OpInsert, w)
		return nil
	})
	return w, err
}

// --- players ---

func (s *SQLiteStore) InsertPlayer(ctx context.Context, p scoreboard.Player) (scoreboard.Player, error) {
	var out scoreboard.Player
	err := s.write(ctx, func(tx *sql.Tx, cs *changeSet) error {
		var err error
		out, err = scanPlayer(tx.QueryRowContext(ctx, `
			INSERT INTO players (id, weekend_id, name, color, team_id, sort_order)
			VALUES (?, ?, ?, ?, ?, ?)
			RETURNING `+playerCols,
			uuid.NewString(), p.WeekendID, p.Name, p.Color, nullable(p.TeamID), p.SortOrder))
		if err != nil {
			return fmt.Errorf("inserting player: %w", err)
		}
		cs.add(TablePlayers, OpInsert, out)
		return nil
	})
	return out, err
}

func (s *SQLiteStore) DeletePlayer(ctx context.Context, id string) error {
	return s.write(ctx, func(tx *sql.Tx, cs *changeSet) error {
		scores, err := queryAll(ctx, tx, scanEventScore, `
			DELETE FROM event_scores WHERE player_id = ?
			RETURNING `+eventScoreCols, id)
		if err != nil {
			return fmt.Errorf("deleting player scores: %w", err)
		}
		for _, es := range scores {
			cs.add(TableEventScores, OpDelete, es)
		}

		p, err := scanPlayer(tx.QueryRowContext(ctx, `
			DELETE FROM players WHERE id = ?
			RETURNING `+playerCols, id))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("deleting player: %w", err)
		}
		cs.add(TablePlayers, OpDelete, p)
		return nil
	})
}

func (s *SQLiteStore) SetPlayerTeam(ctx context.Context, playerID string, teamID *string) error {
	return s.write(ctx, func(tx *sql.Tx, cs *changeSet) error {
		p, err := scanPlayer(tx.QueryRowContext(ctx, `
			UPDATE players SET team_id = ? WHERE id = ?
			RETURNING `+playerCols, nullable(teamID), playerID))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("updating player team: %w", err)
		}
		cs.add(TablePlayers, OpUpdate, p)
		return nil
	})
}

func (s *SQLiteStore) AddScore(ctx context.Context, playerIDs []string, points int) error {
	if len(playerIDs) == 0 {
		return nil
	}
	return s.write(ctx, func(tx *sql.Tx, cs *changeSet) error {
		return addPlayerScores(ctx, tx, cs, playerIDs, points)
	})
}

func addPlayerScores(ctx context.Context, tx *sql.Tx, cs *changeSet, playerIDs []string, points int) error {
	in, args := placeholders(playerIDs)
	players, err := queryAll(ctx, tx, scanPlayer, `
		UPDATE players SET score = score + ?
		WHERE id IN (`+in+`)
		RETURNING `+playerCols, append([]any{points}, args...)...)
	if err != nil {
		return fmt.Errorf("adding player scores: %w", err)
	}
	for _, p := range players {
		cs.add(TablePlayers, OpUpdate, p)
	}
	return nil
}

// --- teams ---

func (s *SQLiteStore) InsertTeam(ctx context.Context, t scoreboard.Team) (scoreboard.Team, error) {
	var out scoreboard.Team
	err := s.write(ctx, func(tx *sql.Tx, cs *changeSet) error {
		var err error
		out, err = scanTeam(tx.QueryRowContext(ctx, `
			INSERT INTO teams (id, weekend_id, event_id, name, color, sort_order)
			VALUES (?, ?, ?, ?, ?, ?)
			RETURNING `+teamCols,
			uuid.NewString(), t.WeekendID, nullable(t.EventID), t.Name, t.Color, t.SortOrder))
		if err != nil {
			return fmt.Errorf("inserting team: %w", err)
		}
		cs.add(TableTeams, OpInsert, out)
		return nil
	})
	return out, err
}

// DeleteTeam clears every reference to the team before removing it so the
// feed carries the member updates explicitly.
func (s *SQLiteStore) DeleteTeam(ctx context.Context, id string) error {
	return s.write(ctx, func(tx *sql.Tx, cs *changeSet) error {
		players, err := queryAll(ctx, tx, scanPlayer, `
			UPDATE players SET team_id = NULL WHERE team_id = ?
			RETURNING `+playerCols, id)
		if err != nil {
			return fmt.Errorf("clearing player teams: %w", err)
		}
		for _, p := range players {
			cs.add(TablePlayers, OpUpdate, p)
		}

		scores, err := queryAll(ctx, tx, scanEventScore, `
			UPDATE event_scores SET team_id = NULL WHERE team_id = ?
			RETURNING `+eventScoreCols, id)
		if err != nil {
			return fmt.Errorf("clearing event score teams: %w", err)
		}
		for _, es := range scores {
			cs.add(TableEventScores, OpUpdate, es)
		}

		t, err := scanTeam(tx.QueryRowContext(ctx, `
			DELETE FROM teams WHERE id = ?
			RETURNING `+teamCols, id))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("deleting team: %w", err)
		}
		cs.add(TableTeams, OpDelete, t)
		return nil
	})
}

func (s *SQLiteStore) AddTeamScore(ctx context.Context, teamID string, points int) error {
	return s.write(ctx, func(tx *sql.Tx, cs *changeSet) error {
		t, err := scanTeam(tx.QueryRowContext(ctx, `
			UPDATE teams SET score = score + ? WHERE id = ?
			RETURNING `+teamCols, points, teamID))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("adding team score: %w", err)
		}
		cs.add(TableTeams, OpUpdate, t)
		return nil
	})
}

// --- events ---

func (s *SQLiteStore) CreateEvent(ctx context.Context, e scoreboard.Event, playerIDs []string) (scoreboard.Event, error) {
	var out scoreboard.Event
	err := s.write(ctx, func(tx *sql.Tx, cs *changeSet) error {
		var err error
		out, err = scanEvent(tx.QueryRowContext(ctx, `
			INSERT INTO events (id, weekend_id, name, counts_for_total, reverse_scoring, sort_order)
			VALUES (?, ?, ?, ?, ?, ?)
			RETURNING `+eventCols,
			uuid.NewString(), e.WeekendID, e.Name, boolInt(e.CountsForTotal), boolInt(e.ReverseScoring), e.SortOrder))
		if err != nil {
			return fmt.Errorf("inserting event: %w", err)
		}
		cs.add(TableEvents, OpInsert, out)

		for _, pid := range playerIDs {
			es, err := scanEventScore(tx.QueryRowContext(ctx, `
				INSERT INTO event_scores (id, event_id, player_id, score)
				VALUES (?, ?, ?, 0)
				RETURNING `+eventScoreCols, uuid.NewString(), out.ID, pid))
			if err != nil {
				return fmt.Errorf("inserting event score: %w", err)
			}
			cs.add(TableEventScores, OpInsert, es)
		}
		return nil
	})
	return out, err
}

func (s *SQLiteStore) DeleteEvent(ctx context.Context, id string) error {
	return s.write(ctx, func(tx *sql.Tx, cs *changeSet) error {
		scores, err := queryAll(ctx, tx, scanEventScore, `
			DELETE FROM event_scores WHERE event_id = ?
			RETURNING `+eventScoreCols, id)
		if err != nil {
			return fmt.Errorf("deleting event scores: %w", err)
		}
		for _, es := range scores {
			cs.add(TableEventScores, OpDelete, es)
		}

		teams, err := queryAll(ctx, tx, scanTeam, `
			DELETE FROM teams WHERE event_id = ?
			RETURNING `+teamCols, id)
		if err != nil {
			return fmt.Errorf("deleting event teams: %w", err)
		}
		for _, t := range teams {
			cs.add(TableTeams, OpDelete, t)
		}

		e, err := scanEvent(tx.QueryRowContext(ctx, `
			DELETE FROM events WHERE id = ?
			RETURNING `+eventCols, id))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("deleting event: %w", err)
		}
		cs.add(TableEvents, OpDelete, e)
		return nil
	})
}

func (s *SQLiteStore) UpdateEventFlags(ctx context.Context, id string, countsForTotal, reverseScoring bool) error {
	return s.write(ctx, func(tx *sql.Tx, cs *changeSet) error {
		e, err := scanEvent(tx.QueryRowContext(ctx, `
			UPDATE events SET counts_for_total = ?, reverse_scoring = ? WHERE id = ?
			RETURNING `+eventCols, boolInt(countsForTotal), boolInt(reverseScoring), id))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("updating event: %w", err)
		}
		cs.add(TableEvents, OpUpdate, e)
		return nil
	})
}

func (s *SQLiteStore) SetEventScoreTeam(ctx context.Context, eventID, playerID string, teamID *string) error {
	return s.write(ctx, func(tx *sql.Tx, cs *changeSet) error {
		scores, err := queryAll(ctx, tx, scanEventScore, `
			UPDATE event_scores SET team_id = ?
			WHERE event_id = ? AND player_id = ?
			RETURNING `+eventScoreCols, nullable(teamID), eventID, playerID)
		if err != nil {
			return fmt.Errorf("updating event score team: %w", err)
		}
		for _, es := range scores {
			cs.add(TableEventScores, OpUpdate, es)
		}
		return nil
	})
}

func (s *SQLiteStore) ScoreInEvent(ctx context.Context, eventID string, playerIDs []string, points int, countsForTotal bool) error {
	if len(playerIDs) == 0 {
		return nil
	}
	return s.write(ctx, func(tx *sql.Tx, cs *changeSet) error {
		in, args := placeholders(playerIDs)
		scores, err := queryAll(ctx, tx, scanEventScore, `
			UPDATE event_scores SET score = score + ?
			WHERE event_id = ? AND player_id IN (`+in+`)
			RETURNING `+eventScoreCols, append([]any{points, eventID}, args...)...)
		if err != nil {
			return fmt.Errorf("adding event scores: %w", err)
		}
		for _, es := range scores {
			cs.add(TableEventScores, OpUpdate, es)
		}

		if !countsForTotal {
			return nil
		}
		return addPlayerScores(ctx, tx, cs, playerIDs, points)
	})
}

// --- resets ---

func (s *SQLiteStore) ResetWeekendScores(ctx context.Context, weekendID string) error {
	return s.write(ctx, func(tx *sql.Tx, cs *changeSet) error {
		players, err := queryAll(ctx, tx, scanPlayer, `
			UPDATE players SET score = 0 WHERE weekend_id = ?
			RETURNING `+playerCols, weekendID)
		if err != nil {
			return fmt.Errorf("resetting players: %w", err)
		}
		for _, p := range players {
			cs.add(TablePlayers, OpUpdate, p)
		}

		teams, err := queryAll(ctx, tx, scanTeam, `
			UPDATE teams SET score = 0 WHERE weekend_id = ?
			RETURNING `+teamCols, weekendID)
		if err != nil {
			return fmt.Errorf("resetting teams: %w", err)
		}
		for _, t := range teams {
			cs.add(TableTeams, OpUpdate, t)
		}

		scores, err := queryAll(ctx, tx, scanEventScore, `
			UPDATE event_scores SET score = 0
			WHERE event_id IN (SELECT id FROM events WHERE weekend_id = ?)
			RETURNING `+eventScoreCols, weekendID)
		if err != nil {
			return fmt.Errorf("resetting event scores: %w", err)
		}
		for _, es := range scores {
			cs.add(TableEventScores, OpUpdate, es)
		}
		return nil
	})
}

func (s *SQLiteStore) ResetEventScores(ctx context.Context, eventID string) error {
	return s.write(ctx, func(tx *sql.Tx, cs *changeSet) error {
		scores, err := queryAll(ctx, tx, scanEventScore, `
			UPDATE event_scores SET score = 0 WHERE event_id = ?
			RETURNING `+eventScoreCols, eventID)
		if err != nil {
			return fmt.Errorf("resetting event scores: %w", err)
		}
		for _, es := range scores {
			cs.add(TableEventScores, OpUpdate, es)
		}

		teams, err := queryAll(ctx, tx, scanTeam, `
			UPDATE teams SET score = 0 WHERE event_id = ?
			RETURNING `+teamCols, eventID)
		if err != nil {
			return fmt.Errorf("resetting event teams: %w", err)
		}
		for _, t := range teams {
			cs.add(TableTeams, OpUpdate, t)
		}
		return nil
	})
}
