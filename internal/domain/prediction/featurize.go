package prediction

import (
	"math"

	"github.com/lucabrevi/nba-totals/internal/domain/feature"
)

// featureNames documents the vector layout; Vectorize must stay in
// the same order.
var featureNames = []string{
	"home_rest_days", "away_rest_days", "rest_diff",
	"home_b2b", "away_b2b", "home_3in4", "away_3in4",
	"home_4in6", "away_4in6", "away_road_trip",
	"home_form3", "home_form5", "home_form10",
	"away_form3", "away_form5", "away_form10",
	"home_def3", "home_def5", "home_def10",
	"away_def3", "away_def5", "away_def10",
	"home_point_diff5", "away_point_diff5",
	"home_win_streak", "away_win_streak",
	"home_pace5", "away_pace5",
	"home_fatigue", "away_fatigue",
	"home_key_out", "away_key_out",
	"home_injury", "away_injury",
	"h2h_total", "current_line", "closing_line", "base_line",
}

// FeatureNames returns the model input columns in vector order.
func FeatureNames() []string {
	return append([]string(nil), featureNames...)
}

// Vectorize flattens one augmented row into the model input vector.
// Missing values become NaN for the imputer, except rest days which
// take the neutral schedule default.
func Vectorize(row feature.Row) []float64 {
	out := make([]float64, 0, len(featureNames))

	out = append(out,
		restOrDefault(row.Home.RestDays),
		restOrDefault(row.Away.RestDays),
		intOrNaN(row.RestDiff),
		boolVal(row.Home.BackToBack), boolVal(row.Away.BackToBack),
		boolVal(row.Home.ThreeInFour), boolVal(row.Away.ThreeInFour),
		boolVal(row.Home.FourInSix), boolVal(row.Away.FourInSix),
		float64(row.Away.RoadTripLength),
		floatOrNaN(row.Home.Form3), floatOrNaN(row.Home.Form5), floatOrNaN(row.Home.Form10),
		floatOrNaN(row.Away.Form3), floatOrNaN(row.Away.Form5), floatOrNaN(row.Away.Form10),
		floatOrNaN(row.Home.Defense3), floatOrNaN(row.Home.Defense5), floatOrNaN(row.Home.Defense10),
		floatOrNaN(row.Away.Defense3), floatOrNaN(row.Away.Defense5), floatOrNaN(row.Away.Defense10),
		floatOrNaN(row.Home.PointDiff5), floatOrNaN(row.Away.PointDiff5),
		float64(row.Home.WinStreak), float64(row.Away.WinStreak),
		floatOrNaN(row.Home.Pace5), floatOrNaN(row.Away.Pace5),
		float64(row.Home.Fatigue), float64(row.Away.Fatigue),
		row.Home.KeyPlayersOut, row.Away.KeyPlayersOut,
		row.Home.InjuryImpact, row.Away.InjuryImpact,
		floatOrNaN(row.HeadToHeadTotal),
		floatOrNaN(row.CurrentLine), floatOrNaN(row.ClosingLine), floatOrNaN(row.BaseLine),
	)

	return out
}

func restOrDefault(v *int) float64 {
	if v == nil {
		return feature.DefaultRestDays
	}
	return float64(*v)
}

func intOrNaN(v *int) float64 {
	if v == nil {
		return math.NaN()
	}
	return float64(*v)
}

func floatOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func boolVal(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
