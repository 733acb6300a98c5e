package feature

import (
	"github.com/lucabrevi/nba-totals/internal/domain/injury"
	"github.com/lucabrevi/nba-totals/internal/domain/odds"
)

// Augment runs every augmenter in its declared order. Fatigue must run
// after rest because it reads the density columns rest produces; the
// rest are independent but keep a fixed order so reruns are
// byte-identical.
func Augment(rows []Row, oddsRows []odds.Row, reports []injury.Report, stats []injury.PlayerStat) []Row {
	augmentRest(rows)
	augmentForm(rows)
	augmentHeadToHead(rows)
	augmentFatigue(rows)
	augmentInjuries(rows, reports, stats)
	augmentLines(rows, oddsRows)
	return rows
}
