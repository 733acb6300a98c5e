package feature

// augmentHeadToHead fills the average combined total of the last
// meetings between the two teams, home/away ignored.
func augmentHeadToHead(rows []Row) {
	h := buildHistory(rows)

	for i := range rows {
		row := &rows[i]
		row.HeadToHeadTotal = nil
		if row.Date == nil {
			continue
		}

		games := h.before(row.HomeTeam, *row.Date)
		values := make([]float64, 0, HeadToHeadWindow)
		for j := len(games) - 1; j >= 0 && len(values) < HeadToHeadWindow; j-- {
			g := games[j]
			if g.opponent == row.AwayTeam && g.total != nil {
				values = append(values, float64(*g.total))
			}
		}
		row.HeadToHeadTotal = meanOf(values)
	}
}
