package feature

import (
	"time"

	"github.com/lucabrevi/nba-totals/internal/domain/odds"
)

// augmentLines attaches market lines by matchup-date, fill-only, then
// derives a proxy base line from recent team totals for rows with no
// market line at all.
func augmentLines(rows []Row, oddsRows []odds.Row) {
	byKey := make(map[odds.Key]odds.Row, len(oddsRows))
	for _, o := range oddsRows {
		byKey[o.Key()] = o
	}

	for i := range rows {
		row := &rows[i]
		if row.Date == nil {
			continue
		}
		key := odds.Key{
			Date:     row.Date.Format("2006-01-02"),
			HomeTeam: row.HomeTeam,
			AwayTeam: row.AwayTeam,
		}
		o, ok := byKey[key]
		if !ok {
			continue
		}
		if row.CurrentLine == nil && o.CurrentLine != nil {
			v := *o.CurrentLine
			row.CurrentLine = &v
		}
		if row.ClosingLine == nil && o.ClosingLine != nil {
			v := *o.ClosingLine
			row.ClosingLine = &v
		}
	}

	augmentBaseLine(rows)
}

// augmentBaseLine averages each side's recent game totals; when a team
// has no history the league-wide mean of earlier totals stands in.
func augmentBaseLine(rows []Row) {
	h := buildHistory(rows)

	for i := range rows {
		row := &rows[i]
		if row.Date == nil || row.BaseLine != nil {
			continue
		}
		league := leagueMeanTotal(rows, *row.Date)
		home := recentTotalMean(h, row.HomeTeam, *row.Date)
		away := recentTotalMean(h, row.AwayTeam, *row.Date)
		if home == nil {
			home = league
		}
		if away == nil {
			away = league
		}
		if home == nil || away == nil {
			continue
		}
		base := (*home + *away) / 2
		row.BaseLine = &base
	}
}

func recentTotalMean(h *history, team string, cutoff time.Time) *float64 {
	games := h.before(team, cutoff)
	values := make([]float64, 0, BaseLineWindow)
	for i := len(games) - 1; i >= 0 && len(values) < BaseLineWindow; i-- {
		if games[i].total != nil {
			values = append(values, float64(*games[i].total))
		}
	}
	return meanOf(values)
}

func leagueMeanTotal(rows []Row, cutoff time.Time) *float64 {
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		if row.TotalPoints != nil && row.Date != nil && row.Date.Before(cutoff) {
			values = append(values, float64(*row.TotalPoints))
		}
	}
	return meanOf(values)
}
