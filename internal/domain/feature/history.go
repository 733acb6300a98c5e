package feature

import (
	"sort"
	"time"
)

// teamGame is one appearance of a team in the table, viewed from that
// team's side.
type teamGame struct {
	date          time.Time
	home          bool
	pointsFor     *int
	pointsAgainst *int
	total         *int
	won           *bool
	opponent      string
}

// history indexes the table per team in chronological order. All
// augmenters look back through it with a strict date < cutoff, so no
// row ever sees its own game or a later one.
type history struct {
	byTeam map[string][]teamGame
}

func buildHistory(rows []Row) *history {
	h := &history{byTeam: make(map[string][]teamGame)}

	for _, row := range rows {
		if row.Date == nil {
			continue
		}
		date := *row.Date

		var homeWon *bool
		if row.HomePoints != nil && row.AwayPoints != nil {
			w := *row.HomePoints > *row.AwayPoints
			homeWon = &w
		}
		var awayWon *bool
		if homeWon != nil {
			w := !*homeWon
			awayWon = &w
		}

		h.byTeam[row.HomeTeam] = append(h.byTeam[row.HomeTeam], teamGame{
			date:          date,
			home:          true,
			pointsFor:     row.HomePoints,
			pointsAgainst: row.AwayPoints,
			total:         row.TotalPoints,
			won:           homeWon,
			opponent:      row.AwayTeam,
		})
		h.byTeam[row.AwayTeam] = append(h.byTeam[row.AwayTeam], teamGame{
			date:          date,
			home:          false,
			pointsFor:     row.AwayPoints,
			pointsAgainst: row.HomePoints,
			total:         row.TotalPoints,
			won:           awayWon,
			opponent:      row.HomeTeam,
		})
	}

	for team := range h.byTeam {
		games := h.byTeam[team]
		sort.SliceStable(games, func(i, j int) bool {
			return games[i].date.Before(games[j].date)
		})
	}

	return h
}

// before returns the team's games strictly earlier than cutoff, oldest
// first.
func (h *history) before(team string, cutoff time.Time) []teamGame {
	games := h.byTeam[team]
	n := sort.Search(len(games), func(i int) bool {
		return !games[i].date.Before(cutoff)
	})
	return games[:n]
}

// lastN returns up to n most recent games strictly before cutoff,
// newest last.
func (h *history) lastN(team string, cutoff time.Time, n int) []teamGame {
	games := h.before(team, cutoff)
	if len(games) > n {
		games = games[len(games)-n:]
	}
	return games
}

func meanOf(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	m := sum / float64(len(values))
	return &m
}

// rollingMean averages extract(g) over the last window finished games
// before cutoff, skipping games where the value is unknown.
func (h *history) rollingMean(team string, cutoff time.Time, window int, extract func(teamGame) *int) *float64 {
	games := h.before(team, cutoff)
	values := make([]float64, 0, window)
	for i := len(games) - 1; i >= 0 && len(values) < window; i-- {
		if v := extract(games[i]); v != nil {
			values = append(values, float64(*v))
		}
	}
	return meanOf(values)
}
