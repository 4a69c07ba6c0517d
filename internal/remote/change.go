package remote

import (
	"encoding/json"
	"fmt"
)

// Op is the kind of row change carried by the feed.
type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
	OpDelete Op = "DELETE"
)

// Table names as they appear in the store and on the feed.
const (
	TableWeekend     = "weekend"
	TablePlayers     = "players"
	TableTeams       = "teams"
	TableEvents      = "events"
	TableEventScores = "event_scores"
)

// Change is one row-level notification. New holds the row after an insert or
// update; Old holds the removed row for a delete.
type Change struct {
	Table string          `json:"table"`
	Op    Op              `json:"op"`
	New   json.RawMessage `json:"new,omitempty"`
	Old   json.RawMessage `json:"old,omitempty"`
}

func newChange(table string, op Op, row any) (Change, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return Change{}, fmt.Errorf("encoding %s row: %w", table, err)
	}
	c := Change{Table: table, Op: op}
	if op == OpDelete {
		c.Old = data
	} else {
		c.New = data
	}
	return c, nil
}

// Record returns the row image the change is about.
func (c Change) Record() json.RawMessage {
	if c.Op == OpDelete {
		return c.Old
	}
	return c.New
}

// Decode unmarshals the row image into v.
func (c Change) Decode(v any) error {
	if err := json.Unmarshal(c.Record(), v); err != nil {
		return fmt.Errorf("decoding %s %s: %w", c.Op, c.Table, err)
	}
	return nil
}

// Field returns a top-level string column of the row image, or "".
func (c Change) Field(column string) string {
	var row map[string]any
	if err := json.Unmarshal(c.Record(), &row); err != nil {
		return ""
	}
	s, _ := row[column].(string)
	return s
}

// Topic selects changes on one table, optionally filtered by Column = Value.
// An empty Column receives every change on the table.
type Topic struct {
	Table  string
	Column string
	Value  string
}

func (t Topic) Matches(c Change) bool {
	if t.Table != c.Table {
		return false
	}
	if t.Column == "" {
		return true
	}
	return c.Field(t.Column) == t.Value
}

func (t Topic) String() string {
	if t.Column == "" {
		return t.Table
	}
	return fmt.Sprintf("%s:%s=eq.%s", t.Table, t.Column, t.Value)
}

func matchAny(topics []Topic, c Change) bool {
	for _, t := range topics {
		if t.Matches(c) {
			return true
		}
	}
	return false
}
