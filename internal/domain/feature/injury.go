package feature

import (
	"sort"
	"strings"
	"time"

	"github.com/lucabrevi/nba-totals/internal/domain/injury"
)

// topScorerCount limits injury weighting to each team's leading scorers
// by PPG; injuries further down the rotation are ignored.
const topScorerCount = 5

// augmentInjuries fills the per-side injury columns: the weighted count
// of key players on the report and their PPG-weighted scoring impact.
// Both require the player stats table; without it the columns stay
// zero. A game is matched to the report dated on the game day, falling
// back to the day before.
func augmentInjuries(rows []Row, reports []injury.Report, stats []injury.PlayerStat) {
	for i := range rows {
		rows[i].Home.KeyPlayersOut = 0
		rows[i].Home.InjuryImpact = 0
		rows[i].Away.KeyPlayersOut = 0
		rows[i].Away.InjuryImpact = 0
	}
	if len(reports) == 0 || len(stats) == 0 {
		return
	}

	top := topScorersByTeam(stats)
	for i := range rows {
		row := &rows[i]
		if row.Date == nil {
			continue
		}
		row.Home.KeyPlayersOut, row.Home.InjuryImpact = injuryImpact(reports, top, row.HomeTeam, *row.Date)
		row.Away.KeyPlayersOut, row.Away.InjuryImpact = injuryImpact(reports, top, row.AwayTeam, *row.Date)
	}
}

// injuryImpact weighs the team's top scorers against the report for the
// game date, or the previous day when the game day has no report.
func injuryImpact(reports []injury.Report, top map[string][]injury.PlayerStat, team string, gameDate time.Time) (keyOut, impact float64) {
	scorers := top[strings.ToUpper(strings.TrimSpace(team))]
	if len(scorers) == 0 {
		return 0, 0
	}

	status := reportStatuses(reports, team, gameDate)
	if len(status) == 0 {
		status = reportStatuses(reports, team, gameDate.AddDate(0, 0, -1))
	}
	if len(status) == 0 {
		return 0, 0
	}

	for _, p := range scorers {
		st, listed := status[strings.ToLower(p.Player)]
		if !listed {
			continue
		}
		w := injury.StatusWeight(st)
		keyOut += w
		impact += p.PPG * w
	}
	return keyOut, impact
}

// reportStatuses indexes one team's report lines for a single day by
// lower-cased player name.
func reportStatuses(reports []injury.Report, team string, day time.Time) map[string]string {
	var out map[string]string
	for _, r := range reports {
		if !strings.EqualFold(r.Team, team) || !sameDay(r.ReportDate, day) {
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		name := strings.ToLower(strings.TrimSpace(r.PlayerName))
		if _, dup := out[name]; !dup {
			out[name] = r.Status
		}
	}
	return out
}

// topScorersByTeam keeps the topScorerCount highest-PPG players per
// team, ties broken by input order.
func topScorersByTeam(stats []injury.PlayerStat) map[string][]injury.PlayerStat {
	byTeam := make(map[string][]injury.PlayerStat)
	for _, s := range stats {
		team := strings.ToUpper(strings.TrimSpace(s.Team))
		if team == "" || strings.TrimSpace(s.Player) == "" {
			continue
		}
		byTeam[team] = append(byTeam[team], s)
	}
	for team, players := range byTeam {
		sort.SliceStable(players, func(i, j int) bool {
			return players[i].PPG > players[j].PPG
		})
		if len(players) > topScorerCount {
			players = players[:topScorerCount]
		}
		byTeam[team] = players
	}
	return byTeam
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
