package odds

import "time"

// Row carries the totals market for one matchup on one date. Closing
// is filled once the game day has passed; Current tracks the live line.
// Final is a manually confirmed settlement line and is never written
// by the ingest pass.
type Row struct {
	Date        time.Time
	HomeTeam    string
	AwayTeam    string
	CurrentLine *float64
	ClosingLine *float64
	FinalLine   *float64
}

// Key identifies a matchup-date for append-dedupe.
type Key struct {
	Date     string
	HomeTeam string
	AwayTeam string
}

func (r Row) Key() Key {
	return Key{
		Date:     r.Date.Format("2006-01-02"),
		HomeTeam: r.HomeTeam,
		AwayTeam: r.AwayTeam,
	}
}
