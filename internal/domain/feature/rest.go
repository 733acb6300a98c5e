package feature

import "time"

// augmentRest fills rest days, schedule-density flags, road-trip length
// and the rest differential for both sides. First game of the season
// leaves RestDays nil; the estimator substitutes the neutral default.
func augmentRest(rows []Row) {
	h := buildHistory(rows)

	for i := range rows {
		row := &rows[i]
		if row.Date == nil {
			row.Home = clearRest(row.Home)
			row.Away = clearRest(row.Away)
			row.RestDiff = nil
			continue
		}
		date := *row.Date

		row.Home = restForSide(h, row.HomeTeam, date, row.Home)
		row.Away = restForSide(h, row.AwayTeam, date, row.Away)
		row.Away.RoadTripLength = roadTripLength(h, row.AwayTeam, date)
		row.Home.RoadTripLength = 0

		if row.Home.RestDays != nil && row.Away.RestDays != nil {
			diff := *row.Home.RestDays - *row.Away.RestDays
			row.RestDiff = &diff
		} else {
			row.RestDiff = nil
		}
	}
}

func clearRest(side SideFeatures) SideFeatures {
	side.RestDays = nil
	side.BackToBack = false
	side.ThreeInFour = false
	side.FourInSix = false
	side.RoadTripLength = 0
	return side
}

func restForSide(h *history, team string, date time.Time, side SideFeatures) SideFeatures {
	games := h.before(team, date)
	if len(games) == 0 {
		return clearRest(side)
	}

	last := games[len(games)-1].date
	rest := int(date.Sub(last).Hours() / 24)
	side.RestDays = &rest

	side.BackToBack = rest == 1
	side.ThreeInFour = countSince(games, date.AddDate(0, 0, -3)) >= 2
	side.FourInSix = countSince(games, date.AddDate(0, 0, -5)) >= 3
	return side
}

// countSince counts games on or after from, walking back from the most
// recent.
func countSince(games []teamGame, from time.Time) int {
	n := 0
	for i := len(games) - 1; i >= 0; i-- {
		if games[i].date.Before(from) {
			break
		}
		n++
	}
	return n
}

// roadTripLength counts consecutive away games immediately preceding
// this one, current game included.
func roadTripLength(h *history, team string, date time.Time) int {
	games := h.before(team, date)
	length := 1
	for i := len(games) - 1; i >= 0; i-- {
		if games[i].home {
			break
		}
		length++
	}
	return length
}
