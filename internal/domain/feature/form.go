package feature

import "time"

// augmentForm fills rolling scoring and defensive means, the five-game
// point differential, the win streak and the pace proxy for both sides.
func augmentForm(rows []Row) {
	h := buildHistory(rows)

	for i := range rows {
		row := &rows[i]
		if row.Date == nil {
			row.Home = clearForm(row.Home)
			row.Away = clearForm(row.Away)
			continue
		}
		date := *row.Date
		row.Home = formForSide(h, row.HomeTeam, date, row.Home)
		row.Away = formForSide(h, row.AwayTeam, date, row.Away)
	}
}

func clearForm(side SideFeatures) SideFeatures {
	side.Form3, side.Form5, side.Form10 = nil, nil, nil
	side.Defense3, side.Defense5, side.Defense10 = nil, nil, nil
	side.PointDiff5 = nil
	side.Pace5 = nil
	side.WinStreak = 0
	return side
}

func formForSide(h *history, team string, date time.Time, side SideFeatures) SideFeatures {
	scored := func(g teamGame) *int { return g.pointsFor }
	allowed := func(g teamGame) *int { return g.pointsAgainst }

	side.Form3 = h.rollingMean(team, date, FormWindowShort, scored)
	side.Form5 = h.rollingMean(team, date, FormWindowMid, scored)
	side.Form10 = h.rollingMean(team, date, FormWindowLong, scored)
	side.Defense3 = h.rollingMean(team, date, FormWindowShort, allowed)
	side.Defense5 = h.rollingMean(team, date, FormWindowMid, allowed)
	side.Defense10 = h.rollingMean(team, date, FormWindowLong, allowed)

	side.PointDiff5 = pointDiff(h, team, date, FormWindowMid)
	side.WinStreak = winStreak(h, team, date)
	side.Pace5 = pace(h, team, date)
	return side
}

func pointDiff(h *history, team string, cutoff time.Time, window int) *float64 {
	games := h.before(team, cutoff)
	values := make([]float64, 0, window)
	for i := len(games) - 1; i >= 0 && len(values) < window; i-- {
		g := games[i]
		if g.pointsFor != nil && g.pointsAgainst != nil {
			values = append(values, float64(*g.pointsFor-*g.pointsAgainst))
		}
	}
	return meanOf(values)
}

func winStreak(h *history, team string, cutoff time.Time) int {
	games := h.before(team, cutoff)
	streak := 0
	for i := len(games) - 1; i >= 0; i-- {
		if games[i].won == nil || !*games[i].won {
			break
		}
		streak++
	}
	return streak
}

// pace averages the team's combined game totals over the pace window;
// nil until the minimum sample size is reached.
func pace(h *history, team string, cutoff time.Time) *float64 {
	games := h.before(team, cutoff)
	values := make([]float64, 0, PaceWindow)
	for i := len(games) - 1; i >= 0 && len(values) < PaceWindow; i-- {
		if games[i].total != nil {
			values = append(values, float64(*games[i].total))
		}
	}
	if len(values) < PaceMinGames {
		return nil
	}
	return meanOf(values)
}
