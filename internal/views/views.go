// Package views derives leaderboards, team zones and event summaries from a
// cache snapshot. Everything here is a pure function of its inputs.
package views

import (
	"cmp"
	"slices"

	"github.com/paaskampf/scoreboard/internal/scoreboard"
	"github.com/paaskampf/scoreboard/internal/state"
)

// Entry is a player with the score shown for the current mode.
type Entry struct {
	Player scoreboard.Player `json:"player"`
	Score  int               `json:"score"`
}

// Standings pairs every player with the score to display: the EventScore of
// the active event (0 without a row), or the global score otherwise.
func Standings(s state.Snapshot) []Entry {
	out := make([]Entry, 0, len(s.Players))
	for _, p := range s.Players {
		score := p.Score
		if s.ActiveEvent != nil {
			score = 0
			if es, ok := s.EventScoreFor(p.ID); ok {
				score = es.Score
			}
		}
		out = append(out, Entry{Player: p, Score: score})
	}
	return out
}

// Rank sorts a copy of entries by score, highest first or lowest first when
// reverse is set. Ties keep their input order.
func Rank(entries []Entry, reverse bool) []Entry {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b Entry) int {
		if reverse {
			return cmp.Compare(a.Score, b.Score)
		}
		return cmp.Compare(b.Score, a.Score)
	})
	return out
}

// Leaderboard ranks the current standings using the active event's ordering.
func Leaderboard(s state.Snapshot) []Entry {
	reverse := s.ActiveEvent != nil && s.ActiveEvent.ReverseScoring
	return Rank(Standings(s), reverse)
}

// TeamZone is one team with its members in roster order.
type TeamZone struct {
	Team    scoreboard.Team `json:"team"`
	Members []Entry         `json:"members"`
}

// Membership groups the standings by effective team: the event-scoped team
// when an event is active, else the player's own team. Players whose team is
// unset or not among the visible teams land in unassigned.
func Membership(s state.Snapshot) (zones []TeamZone, unassigned []Entry) {
	zones = make([]TeamZone, len(s.Teams))
	pos := make(map[string]int, len(s.Teams))
	for i, t := range s.Teams {
		zones[i] = TeamZone{Team: t, Members: []Entry{}}
		pos[t.ID] = i
	}
	unassigned = []Entry{}

	for _, e := range Standings(s) {
		teamID := scoreboard.Deref(e.Player.TeamID)
		if s.ActiveEvent != nil {
			teamID = ""
			if es, ok := s.EventScoreFor(e.Player.ID); ok {
				teamID = scoreboard.Deref(es.TeamID)
			}
		}
		if i, ok := pos[teamID]; ok {
			zones[i].Members = append(zones[i].Members, e)
			continue
		}
		unassigned = append(unassigned, e)
	}
	return zones, unassigned
}

// Columns splits a ranking for the TV display; the left column takes the
// extra entry when the count is odd.
func Columns(entries []Entry) (left, right []Entry) {
	mid := (len(entries) + 1) / 2
	return entries[:mid], entries[mid:]
}
