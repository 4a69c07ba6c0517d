// Package scoreboard defines the entities of a games weekend as they are
// stored remotely and held in the client cache.
package scoreboard

type Weekend struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at,omitempty"`
}

type Player struct {
	ID        string  `json:"id"`
	WeekendID string  `json:"weekend_id"`
	Name      string  `json:"name"`
	Score     int     `json:"score"`
	Color     string  `json:"color"`
	TeamID    *string `json:"team_id"`
	SortOrder int     `json:"sort_order"`
	CreatedAt string  `json:"created_at,omitempty"`
}

// Team.Score is stored, not derived from its members.
// A nil EventID marks a default team used outside any event.
type Team struct {
	ID        string  `json:"id"`
	WeekendID string  `json:"weekend_id"`
	EventID   *string `json:"event_id"`
	Name      string  `json:"name"`
	Score     int     `json:"score"`
	Color     string  `json:"color"`
	SortOrder int     `json:"sort_order"`
	CreatedAt string  `json:"created_at,omitempty"`
}

type Event struct {
	ID             string `json:"id"`
	WeekendID      string `json:"weekend_id"`
	Name           string `json:"name"`
	IsActive       bool   `json:"is_active"`
	CountsForTotal bool   `json:"counts_for_total"`
	ReverseScoring bool   `json:"reverse_scoring"`
	SortOrder      int    `json:"sort_order"`
	CreatedAt      string `json:"created_at,omitempty"`
}

// EventScore is a player's ledger for one event. Its TeamID is the player's
// team within that event and is independent of Player.TeamID.
type EventScore struct {
	ID       string  `json:"id"`
	EventID  string  `json:"event_id"`
	PlayerID string  `json:"player_id"`
	TeamID   *string `json:"team_id"`
	Score    int     `json:"score"`
}

// TeamOf reports whether p belongs to teamID.
func (p Player) TeamOf(teamID string) bool {
	return p.TeamID != nil && *p.TeamID == teamID
}

// TeamOf reports whether es belongs to teamID.
func (es EventScore) TeamOf(teamID string) bool {
	return es.TeamID != nil && *es.TeamID == teamID
}

// InEvent reports whether t is scoped to eventID; "" matches default teams.
func (t Team) InEvent(eventID string) bool {
	if t.EventID == nil {
		return eventID == ""
	}
	return *t.EventID == eventID
}

// Ref returns a pointer to a copy of id, or nil for "".
func Ref(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

// Deref returns the id behind p, or "" for nil.
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
