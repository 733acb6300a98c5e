package game

import (
	"strings"
	"time"
)

// Record is the canonical per-game row the whole pipeline revolves
// around. Point fields are nil until an authoritative source reports
// them; zero is a real score, not a default.
type Record struct {
	GameID      int64
	Date        *time.Time
	HomeTeam    string
	AwayTeam    string
	HomePoints  *int
	AwayPoints  *int
	TotalPoints *int
	IsFinal     bool
	StatusText  string
}

// HeaderRow is the raw schedule row as the scoreboard source reports it.
// Team fields may carry numeric IDs or free-form names; Date may be nil
// when the source value did not parse.
type HeaderRow struct {
	GameID     int64
	Date       *time.Time
	StatusText string
	HomeTeamID string
	AwayTeamID string
}

// LineScoreRow is one team's side of a game from the line-score source.
type LineScoreRow struct {
	GameID           int64
	TeamID           string
	TeamAbbreviation string
	Points           *int
}

// ClosingRow is a previously reconciled row used as a fill-only
// fallback, keyed by game id.
type ClosingRow struct {
	GameID      int64
	HomePoints  *int
	AwayPoints  *int
	TotalPoints *int
}

// HasFinalStatus reports whether the source status text marks the game
// as concluded.
func HasFinalStatus(statusText string) bool {
	return strings.Contains(strings.ToLower(statusText), "final")
}

// FullyScored reports whether both sides carry a point value.
func (r Record) FullyScored() bool {
	return r.HomePoints != nil && r.AwayPoints != nil
}

// SameMatchup reports whether the record describes the given matchup on
// the given date. Used for override fallback matching.
func (r Record) SameMatchup(date time.Time, home, away string) bool {
	if r.Date == nil {
		return false
	}
	return r.Date.Equal(date) &&
		strings.EqualFold(r.HomeTeam, home) &&
		strings.EqualFold(r.AwayTeam, away)
}

// Clone returns a deep copy so mutating passes never alias point
// pointers between tables.
func (r Record) Clone() Record {
	out := r
	out.Date = cloneTime(r.Date)
	out.HomePoints = cloneInt(r.HomePoints)
	out.AwayPoints = cloneInt(r.AwayPoints)
	out.TotalPoints = cloneInt(r.TotalPoints)
	return out
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
