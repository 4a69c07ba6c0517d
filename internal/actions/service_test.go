package actions

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/paaskampf/scoreboard/internal/database"
	"github.com/paaskampf/scoreboard/internal/migrations"
	"github.com/paaskampf/scoreboard/internal/remote"
	"github.com/paaskampf/scoreboard/internal/scoreboard"
	"github.com/paaskampf/scoreboard/internal/state"
)

func setupStore(t *testing.T) *remote.SQLiteStore {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return remote.NewSQLiteStore(db, remote.NewBroker(slog.Default()), slog.Default())
}

func newService(t *testing.T, store remote.Store) *Service {
	t.Helper()
	svc := New(state.New(), store, slog.Default())
	t.Cleanup(svc.Close)
	return svc
}

// setup returns a service with a weekend and the named players loaded.
func setup(t *testing.T, names ...string) (*Service, *remote.SQLiteStore) {
	t.Helper()
	ctx := context.Background()

	store := setupStore(t)
	svc := newService(t, store)
	if _, err := svc.CreateWeekend(ctx, "Paaskampf"); err != nil {
		t.Fatalf("create weekend: %v", err)
	}
	for _, n := range names {
		if _, err := svc.AddPlayer(ctx, n, ""); err != nil {
			t.Fatalf("add player %s: %v", n, err)
		}
	}
	return svc, store
}

func playerNamed(t *testing.T, s state.Snapshot, name string) scoreboard.Player {
	t.Helper()
	for _, p := range s.Players {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("player %s not in cache", name)
	return scoreboard.Player{}
}

// remoteSnapshot loads the store's view into a fresh cache.
func remoteSnapshot(t *testing.T, svc *Service) state.Snapshot {
	t.Helper()
	svc.Flush()
	_, eventID := svc.cache.Selection()

	fresh := newService(t, svc.store)
	if err := fresh.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if eventID != "" {
		if err := fresh.SetActiveEvent(context.Background(), eventID); err != nil {
			t.Fatalf("select: %v", err)
		}
	}
	return fresh.cache.Snapshot()
}

func TestScorePlayerWithoutEvent(t *testing.T) {
	svc, _ := setup(t, "A", "B")
	a := playerNamed(t, svc.cache.Snapshot(), "A")

	svc.ScorePlayer(a.ID, 5)
	svc.ScorePlayer(a.ID, 1)

	if got := playerNamed(t, svc.cache.Snapshot(), "A").Score; got != 6 {
		t.Errorf("cache score = %d, want 6", got)
	}
	if got := playerNamed(t, remoteSnapshot(t, svc), "A").Score; got != 6 {
		t.Errorf("remote score = %d, want 6", got)
	}
}

func TestScorePlayerInEvent(t *testing.T) {
	tests := []struct {
		name           string
		countsForTotal bool
		wantGlobal     int
	}{
		{"event only", false, 6},
		{"counts for total", true, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			svc, _ := setup(t, "A", "B")
			a := playerNamed(t, svc.cache.Snapshot(), "A")
			svc.ScorePlayer(a.ID, 6)

			quiz, err := svc.CreateEvent(ctx, "Quiz", EventOptions{CountsForTotal: tt.countsForTotal})
			if err != nil {
				t.Fatalf("create event: %v", err)
			}
			if err := svc.SetActiveEvent(ctx, quiz.ID); err != nil {
				t.Fatalf("select event: %v", err)
			}
			svc.ScorePlayer(a.ID, 3)

			for label, s := range map[string]state.Snapshot{"cache": svc.cache.Snapshot(), "remote": remoteSnapshot(t, svc)} {
				es, ok := s.EventScoreFor(a.ID)
				if !ok || es.Score != 3 {
					t.Errorf("%s event score = %+v, want 3", label, es)
				}
				if got := playerNamed(t, s, "A").Score; got != tt.wantGlobal {
					t.Errorf("%s global score = %d, want %d", label, got, tt.wantGlobal)
				}
			}
		})
	}
}

func TestScorePlayerWithoutEventRow(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t, "A")

	quiz, _ := svc.CreateEvent(ctx, "Quiz", EventOptions{CountsForTotal: true})
	late, _ := svc.AddPlayer(ctx, "Late", "")
	svc.SetActiveEvent(ctx, quiz.ID)

	before := svc.cache.Snapshot()
	svc.ScorePlayer(late.ID, 4)
	after := svc.cache.Snapshot()

	if after.Version != before.Version {
		t.Error("scoring a player without an event row changed the cache")
	}
	if _, ok := after.EventScoreFor(late.ID); ok {
		t.Error("late player got an event row")
	}
}

func TestScoreTeamMovesMembersAndTeamTogether(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t, "A", "B", "C")
	s := svc.cache.Snapshot()
	a, b, c := playerNamed(t, s, "A"), playerNamed(t, s, "B"), playerNamed(t, s, "C")

	red, err := svc.AddTeam(ctx, "Red", "")
	if err != nil {
		t.Fatalf("add team: %v", err)
	}
	svc.AssignTeam(a.ID, red.ID)
	svc.AssignTeam(b.ID, red.ID)

	svc.ScoreTeam(red.ID, 2)
	svc.ScoreTeam(red.ID, 3)

	for label, s := range map[string]state.Snapshot{"cache": svc.cache.Snapshot(), "remote": remoteSnapshot(t, svc)} {
		team, _ := s.Team(red.ID)
		if team.Score != 5 {
			t.Errorf("%s team score = %d, want 5", label, team.Score)
		}
		for _, p := range []scoreboard.Player{a, b} {
			if got, _ := s.Player(p.ID); got.Score != team.Score {
				t.Errorf("%s member %s = %d, team = %d", label, p.Name, got.Score, team.Score)
			}
		}
		if got, _ := s.Player(c.ID); got.Score != 0 {
			t.Errorf("%s non-member score = %d, want 0", label, got.Score)
		}
	}
}

func TestScoreTeamInEventUsesEventMembership(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t, "A", "B")
	s := svc.cache.Snapshot()
	a, b := playerNamed(t, s, "A"), playerNamed(t, s, "B")

	// A is on the default team; inside the event only B joins the event team.
	def, _ := svc.AddTeam(ctx, "Default", "")
	svc.AssignTeam(a.ID, def.ID)

	quiz, _ := svc.CreateEvent(ctx, "Quiz", EventOptions{})
	svc.SetActiveEvent(ctx, quiz.ID)
	blue, err := svc.AddTeam(ctx, "Blue", "")
	if err != nil {
		t.Fatalf("add event team: %v", err)
	}
	if blue.EventID == nil || *blue.EventID != quiz.ID {
		t.Fatalf("team event = %v, want %s", blue.EventID, quiz.ID)
	}
	svc.AssignTeam(b.ID, blue.ID)
	svc.ScoreTeam(blue.ID, 4)

	for label, s := range map[string]state.Snapshot{"cache": svc.cache.Snapshot(), "remote": remoteSnapshot(t, svc)} {
		if es, _ := s.EventScoreFor(b.ID); es.Score != 4 {
			t.Errorf("%s B event score = %d, want 4", label, es.Score)
		}
		if es, _ := s.EventScoreFor(a.ID); es.Score != 0 {
			t.Errorf("%s A event score = %d, want 0", label, es.Score)
		}
		if p, _ := s.Player(b.ID); p.Score != 0 {
			t.Errorf("%s B global score = %d, want 0", label, p.Score)
		}
		if p, _ := s.Player(a.ID); !p.TeamOf(def.ID) {
			t.Errorf("%s A lost its default team", label)
		}
		if team, _ := s.Team(blue.ID); team.Score != 4 {
			t.Errorf("%s team score = %d, want 4", label, team.Score)
		}
	}
}

func TestScoreTeamWithoutMembersIsNoop(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t, "A")
	red, _ := svc.AddTeam(ctx, "Red", "")

	before := svc.cache.Snapshot().Version
	svc.ScoreTeam(red.ID, 5)
	svc.ScoreTeam("missing", 5)
	svc.ScorePlayer("missing", 5)
	svc.RemovePlayer("missing")
	svc.AssignTeam("missing", red.ID)

	if got := svc.cache.Snapshot().Version; got != before {
		t.Errorf("version moved from %d to %d", before, got)
	}
	if team, _ := svc.cache.Snapshot().Team(red.ID); team.Score != 0 {
		t.Errorf("team score = %d, want 0", team.Score)
	}
}

func TestRemoveTeamKeepsMembers(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t, "A", "B")
	s := svc.cache.Snapshot()
	a, b := playerNamed(t, s, "A"), playerNamed(t, s, "B")

	red, _ := svc.AddTeam(ctx, "Red", "")
	svc.AssignTeam(a.ID, red.ID)
	svc.AssignTeam(b.ID, red.ID)
	svc.ScoreTeam(red.ID, 2)
	svc.RemoveTeam(red.ID)

	for label, s := range map[string]state.Snapshot{"cache": svc.cache.Snapshot(), "remote": remoteSnapshot(t, svc)} {
		if _, ok := s.Team(red.ID); ok {
			t.Errorf("%s still has team Red", label)
		}
		for _, id := range []string{a.ID, b.ID} {
			p, _ := s.Player(id)
			if p.TeamID != nil {
				t.Errorf("%s player %s team = %s, want none", label, p.Name, *p.TeamID)
			}
			if p.Score != 2 {
				t.Errorf("%s player %s score = %d, want 2", label, p.Name, p.Score)
			}
		}
	}
}

func TestAssignTeamInEventLeavesGlobalTeam(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t, "A")
	a := playerNamed(t, svc.cache.Snapshot(), "A")

	quiz, _ := svc.CreateEvent(ctx, "Quiz", EventOptions{})
	svc.SetActiveEvent(ctx, quiz.ID)
	blue, _ := svc.AddTeam(ctx, "Blue", "")
	svc.AssignTeam(a.ID, blue.ID)

	s := svc.cache.Snapshot()
	if es, _ := s.EventScoreFor(a.ID); !es.TeamOf(blue.ID) {
		t.Errorf("event team = %v, want %s", es.TeamID, blue.ID)
	}
	if p, _ := s.Player(a.ID); p.TeamID != nil {
		t.Errorf("global team = %s, want none", *p.TeamID)
	}

	svc.AssignTeam(a.ID, "")
	if es, _ := svc.cache.Snapshot().EventScoreFor(a.ID); es.TeamID != nil {
		t.Errorf("event team after unassign = %s", *es.TeamID)
	}
}

func TestResetScoresWithEventActive(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t, "A", "B")
	a := playerNamed(t, svc.cache.Snapshot(), "A")
	svc.ScorePlayer(a.ID, 10)

	quiz, _ := svc.CreateEvent(ctx, "Quiz", EventOptions{CountsForTotal: true})
	golf, _ := svc.CreateEvent(ctx, "Golf", EventOptions{})
	svc.SetActiveEvent(ctx, golf.ID)
	svc.ScorePlayer(a.ID, 7)

	svc.SetActiveEvent(ctx, quiz.ID)
	red, _ := svc.AddTeam(ctx, "Red", "")
	svc.AssignTeam(a.ID, red.ID)
	svc.ScoreTeam(red.ID, 3)

	svc.ResetScores()

	s := remoteSnapshot(t, svc)
	if es, _ := s.EventScoreFor(a.ID); es.Score != 0 {
		t.Errorf("quiz score = %d, want 0", es.Score)
	}
	if team, _ := s.Team(red.ID); team.Score != 0 {
		t.Errorf("quiz team = %d, want 0", team.Score)
	}
	if p, _ := s.Player(a.ID); p.Score != 13 {
		t.Errorf("global score = %d, want 13", p.Score)
	}

	svc.SetActiveEvent(ctx, golf.ID)
	if es, _ := svc.cache.Snapshot().EventScoreFor(a.ID); es.Score != 7 {
		t.Errorf("golf score = %d, want 7", es.Score)
	}
}

func TestResetScoresWithoutEvent(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t, "A", "B")
	a := playerNamed(t, svc.cache.Snapshot(), "A")

	red, _ := svc.AddTeam(ctx, "Red", "")
	svc.AssignTeam(a.ID, red.ID)
	svc.ScoreTeam(red.ID, 4)

	quiz, _ := svc.CreateEvent(ctx, "Quiz", EventOptions{})
	svc.SetActiveEvent(ctx, quiz.ID)
	svc.ScorePlayer(a.ID, 2)
	svc.SetActiveEvent(ctx, "")

	svc.ResetScores()

	s := remoteSnapshot(t, svc)
	for _, p := range s.Players {
		if p.Score != 0 {
			t.Errorf("player %s = %d, want 0", p.Name, p.Score)
		}
	}
	for _, team := range s.Teams {
		if team.Score != 0 {
			t.Errorf("team %s = %d, want 0", team.Name, team.Score)
		}
	}
	svc.SetActiveEvent(ctx, quiz.ID)
	if es, _ := svc.cache.Snapshot().EventScoreFor(a.ID); es.Score != 0 {
		t.Errorf("event score = %d, want 0", es.Score)
	}
}

func TestSetActiveEventSwitchesTeams(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t, "A", "B")

	svc.AddTeam(ctx, "Default", "")
	quiz, _ := svc.CreateEvent(ctx, "Quiz", EventOptions{})

	if err := svc.SetActiveEvent(ctx, quiz.ID); err != nil {
		t.Fatalf("select: %v", err)
	}
	s := svc.cache.Snapshot()
	if len(s.Teams) != 0 {
		t.Errorf("event teams = %v, want none", s.Teams)
	}
	if len(s.EventScores) != 2 {
		t.Errorf("event scores = %d, want 2", len(s.EventScores))
	}
	svc.AddTeam(ctx, "Quiz team", "")

	if err := svc.SetActiveEvent(ctx, ""); err != nil {
		t.Fatalf("deselect: %v", err)
	}
	s = svc.cache.Snapshot()
	if s.ActiveEvent != nil || len(s.EventScores) != 0 {
		t.Errorf("selection not cleared: %v", s.ActiveEvent)
	}
	if len(s.Teams) != 1 || s.Teams[0].Name != "Default" {
		t.Errorf("default teams = %+v", s.Teams)
	}

	if err := svc.SetActiveEvent(ctx, "nope"); !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("unknown event = %v, want ErrUnknownEvent", err)
	}
}

func TestStaleSelectionIsDiscarded(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t, "A")
	quiz, _ := svc.CreateEvent(ctx, "Quiz", EventOptions{})
	golf, _ := svc.CreateEvent(ctx, "Golf", EventOptions{})

	var seq uint64
	svc.cache.Update(func(d *state.Data) bool {
		d.Select(quiz.ID)
		svc.selection++
		seq = svc.selection
		return true
	})
	if err := svc.SetActiveEvent(ctx, golf.ID); err != nil {
		t.Fatalf("select golf: %v", err)
	}

	// The quiz fetch finishes after golf was selected.
	weekendID, _ := svc.cache.Selection()
	if err := svc.refresh(ctx, weekendID, quiz.ID, seq); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	s := svc.cache.Snapshot()
	if s.ActiveEvent.ID != golf.ID {
		t.Fatalf("active = %s, want golf", s.ActiveEvent.Name)
	}
	for _, es := range s.EventScores {
		if es.EventID != golf.ID {
			t.Errorf("stale row of event %s installed", es.EventID)
		}
	}
}

func TestRemoveActiveEvent(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t, "A")

	svc.AddTeam(ctx, "Default", "")
	quiz, _ := svc.CreateEvent(ctx, "Quiz", EventOptions{})
	svc.SetActiveEvent(ctx, quiz.ID)
	svc.AddTeam(ctx, "Quiz team", "")

	if err := svc.RemoveEvent(ctx, quiz.ID); err != nil {
		t.Fatalf("remove event: %v", err)
	}

	s := svc.cache.Snapshot()
	if s.ActiveEvent != nil || len(s.Events) != 0 || len(s.EventScores) != 0 {
		t.Errorf("event state left: active=%v events=%v scores=%v", s.ActiveEvent, s.Events, s.EventScores)
	}
	if len(s.Teams) != 1 || s.Teams[0].Name != "Default" {
		t.Errorf("teams = %+v, want only Default", s.Teams)
	}

	remoteState := remoteSnapshot(t, svc)
	if len(remoteState.Events) != 0 {
		t.Errorf("remote events = %v", remoteState.Events)
	}
}

func TestToggles(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t, "A")

	svc.ToggleCountsForTotal() // no event: no-op
	quiz, _ := svc.CreateEvent(ctx, "Quiz", EventOptions{})
	svc.SetActiveEvent(ctx, quiz.ID)

	svc.ToggleCountsForTotal()
	svc.ToggleReverseScoring()
	svc.ToggleReverseScoring()
	svc.ToggleReverseScoring()

	for label, s := range map[string]state.Snapshot{"cache": svc.cache.Snapshot(), "remote": remoteSnapshot(t, svc)} {
		if !s.ActiveEvent.CountsForTotal || !s.ActiveEvent.ReverseScoring {
			t.Errorf("%s flags = %+v, want both set", label, s.ActiveEvent)
		}
	}
}

func TestValidation(t *testing.T) {
	ctx := context.Background()
	empty := newService(t, setupStore(t))

	if _, err := empty.AddPlayer(ctx, "A", ""); !errors.Is(err, ErrNoWeekend) {
		t.Errorf("add player without weekend = %v", err)
	}
	if _, err := empty.CreateEvent(ctx, "Quiz", EventOptions{}); !errors.Is(err, ErrNoWeekend) {
		t.Errorf("create event without weekend = %v", err)
	}
	if err := empty.ValidateStart(); !errors.Is(err, ErrNoWeekend) {
		t.Errorf("start without weekend = %v", err)
	}

	svc, _ := setup(t, "A")
	before := svc.cache.Snapshot().Version

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"blank weekend", func() error { _, err := svc.CreateWeekend(ctx, "  "); return err }, ErrEmptyName},
		{"blank player", func() error { _, err := svc.AddPlayer(ctx, "", ""); return err }, ErrEmptyName},
		{"blank team", func() error { _, err := svc.AddTeam(ctx, "\t", ""); return err }, ErrEmptyName},
		{"blank event", func() error { _, err := svc.CreateEvent(ctx, "", EventOptions{}); return err }, ErrEmptyName},
		{"one player", svc.ValidateStart, ErrNotEnoughPlayers},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
	if got := svc.cache.Snapshot().Version; got != before {
		t.Errorf("validation failure changed the cache")
	}

	svc.AddPlayer(ctx, "B", "")
	if err := svc.ValidateStart(); err != nil {
		t.Errorf("start with 2 players = %v", err)
	}
}

func TestDefaultColors(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	first, _ := svc.AddPlayer(ctx, "A", "")
	custom, _ := svc.AddPlayer(ctx, "B", scoreboard.PlayerColors[1])
	third, _ := svc.AddPlayer(ctx, "C", "")

	if first.Color != scoreboard.PlayerColors[0] || custom.Color != scoreboard.PlayerColors[1] {
		t.Errorf("colors = %s, %s", first.Color, custom.Color)
	}
	if third.Color != scoreboard.PlayerColors[2] {
		t.Errorf("third color = %s, want %s", third.Color, scoreboard.PlayerColors[2])
	}
	if third.SortOrder != 2 {
		t.Errorf("sort order = %d, want 2", third.SortOrder)
	}

	team, _ := svc.AddTeam(ctx, "Red", "")
	if team.Color != scoreboard.TeamColors[0] {
		t.Errorf("team color = %s", team.Color)
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	empty := newService(t, store)
	if err := empty.Load(ctx); err != nil {
		t.Fatalf("load without weekend: %v", err)
	}
	if s := empty.cache.Snapshot(); s.Weekend != nil || len(s.Players) != 0 {
		t.Errorf("expected empty cache, got %+v", s)
	}

	svc := newService(t, store)
	svc.CreateWeekend(ctx, "Paaskampf")
	svc.AddPlayer(ctx, "A", "")
	svc.AddPlayer(ctx, "B", "")
	quiz, _ := svc.CreateEvent(ctx, "Quiz", EventOptions{})
	svc.SetActiveEvent(ctx, quiz.ID)

	if err := svc.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	s := svc.cache.Snapshot()
	if s.Weekend == nil || s.Weekend.Name != "Paaskampf" {
		t.Fatalf("weekend = %+v", s.Weekend)
	}
	if len(s.Players) != 2 || s.Players[0].Name != "A" {
		t.Errorf("players = %+v", s.Players)
	}
	if s.ActiveEvent == nil || s.ActiveEvent.ID != quiz.ID {
		t.Errorf("selection not kept across reload: %v", s.ActiveEvent)
	}
	if len(s.EventScores) != 2 {
		t.Errorf("event scores = %d, want 2", len(s.EventScores))
	}
}

func TestRemovePlayer(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t, "A", "B")
	a := playerNamed(t, svc.cache.Snapshot(), "A")
	quiz, _ := svc.CreateEvent(ctx, "Quiz", EventOptions{})
	svc.SetActiveEvent(ctx, quiz.ID)

	svc.RemovePlayer(a.ID)

	for label, s := range map[string]state.Snapshot{"cache": svc.cache.Snapshot(), "remote": remoteSnapshot(t, svc)} {
		if _, ok := s.Player(a.ID); ok {
			t.Errorf("%s still has player A", label)
		}
		if _, ok := s.EventScoreFor(a.ID); ok {
			t.Errorf("%s still has A's event row", label)
		}
	}
}

func TestEventOverview(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t, "A", "B")
	s := svc.cache.Snapshot()
	a, b := playerNamed(t, s, "A"), playerNamed(t, s, "B")

	golf, _ := svc.CreateEvent(ctx, "Golf", EventOptions{ReverseScoring: true})
	svc.SetActiveEvent(ctx, golf.ID)
	svc.ScorePlayer(a.ID, 40)
	svc.ScorePlayer(b.ID, 36)
	svc.Flush()

	got, err := svc.EventOverview(ctx)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if len(got) != 1 || len(got[0].Top) != 2 {
		t.Fatalf("overview = %+v", got)
	}
	if got[0].Top[0].Name != "B" || got[0].Top[0].Score != 36 {
		t.Errorf("golf winner = %+v, want B with 36", got[0].Top[0])
	}
}

// failingStore rejects every score write.
type failingStore struct {
	remote.Store
}

func (failingStore) AddScore(context.Context, []string, int) error {
	return errors.New("backend unavailable")
}

func TestRemoteFailureKeepsOptimisticChange(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)
	svc := newService(t, failingStore{store})
	svc.CreateWeekend(ctx, "Paaskampf")
	p, _ := svc.AddPlayer(ctx, "A", "")

	svc.ScorePlayer(p.ID, 3)
	svc.Flush()

	if got, _ := svc.cache.Snapshot().Player(p.ID); got.Score != 3 {
		t.Errorf("cache score = %d, want 3 (no rollback)", got.Score)
	}
	players, _ := store.ListPlayers(ctx, p.WeekendID)
	if players[0].Score != 0 {
		t.Errorf("remote score = %d, want 0", players[0].Score)
	}
}

// gatedStore holds event score fetches until the gate opens.
type gatedStore struct {
	remote.Store

	mu   sync.Mutex
	gate chan struct{}
}

func (g *gatedStore) block() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gate = make(chan struct{})
}

func (g *gatedStore) open() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gate != nil {
		close(g.gate)
		g.gate = nil
	}
}

func (g *gatedStore) ListEventScores(ctx context.Context, eventIDs ...string) ([]scoreboard.EventScore, error) {
	g.mu.Lock()
	gate := g.gate
	g.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return g.Store.ListEventScores(ctx, eventIDs...)
}

// selectBlocked starts selecting eventID while its rows cannot load and
// returns once the selection is visible in the cache.
func selectBlocked(t *testing.T, svc *Service, store *gatedStore, eventID string) <-chan error {
	t.Helper()
	store.block()
	t.Cleanup(store.open)

	done := make(chan error, 1)
	go func() { done <- svc.SetActiveEvent(context.Background(), eventID) }()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, active := svc.cache.Selection(); active == eventID {
			return done
		}
		if time.Now().After(deadline) {
			t.Fatalf("event %s never selected", eventID)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestActionsWhileSelectionLoadsAreReplayed(t *testing.T) {
	ctx := context.Background()
	store := &gatedStore{Store: setupStore(t)}
	svc := newService(t, store)
	svc.CreateWeekend(ctx, "Paaskampf")
	a, _ := svc.AddPlayer(ctx, "A", "")

	quiz, _ := svc.CreateEvent(ctx, "Quiz", EventOptions{CountsForTotal: true})
	svc.SetActiveEvent(ctx, quiz.ID)
	team, err := svc.AddTeam(ctx, "Quiz team", "")
	if err != nil {
		t.Fatalf("add team: %v", err)
	}
	svc.AssignTeam(a.ID, team.ID)
	svc.SetActiveEvent(ctx, "")
	svc.Flush()

	done := selectBlocked(t, svc, store, quiz.ID)
	svc.ScorePlayer(a.ID, 2)
	svc.ScoreTeam(team.ID, 3)
	store.open()
	if err := <-done; err != nil {
		t.Fatalf("select event: %v", err)
	}

	for label, s := range map[string]state.Snapshot{"cache": svc.cache.Snapshot(), "remote": remoteSnapshot(t, svc)} {
		if es, _ := s.EventScoreFor(a.ID); es.Score != 5 {
			t.Errorf("%s event score = %d, want 5", label, es.Score)
		}
		if p, _ := s.Player(a.ID); p.Score != 5 {
			t.Errorf("%s global score = %d, want 5", label, p.Score)
		}
		if got, _ := s.Team(team.ID); got.Score != 3 {
			t.Errorf("%s team score = %d, want 3", label, got.Score)
		}
	}
}

func TestActionsOfAbandonedSelectionAreDropped(t *testing.T) {
	ctx := context.Background()
	store := &gatedStore{Store: setupStore(t)}
	svc := newService(t, store)
	svc.CreateWeekend(ctx, "Paaskampf")
	a, _ := svc.AddPlayer(ctx, "A", "")
	quiz, _ := svc.CreateEvent(ctx, "Quiz", EventOptions{CountsForTotal: true})

	done := selectBlocked(t, svc, store, quiz.ID)
	svc.ScorePlayer(a.ID, 2)
	if err := svc.SetActiveEvent(ctx, ""); err != nil {
		t.Fatalf("clear selection: %v", err)
	}
	store.open()
	if err := <-done; err != nil {
		t.Fatalf("select event: %v", err)
	}

	s := svc.cache.Snapshot()
	if s.ActiveEvent != nil {
		t.Errorf("active event = %s, want none", s.ActiveEvent.Name)
	}
	for label, s := range map[string]state.Snapshot{"cache": s, "remote": remoteSnapshot(t, svc)} {
		if p, _ := s.Player(a.ID); p.Score != 0 {
			t.Errorf("%s global score = %d, want 0", label, p.Score)
		}
	}
}
