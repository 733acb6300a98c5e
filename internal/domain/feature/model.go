package feature

import (
	"github.com/lucabrevi/nba-totals/internal/domain/game"
)

// Rolling windows used by the form and defense augmenters.
const (
	FormWindowShort  = 3
	FormWindowMid    = 5
	FormWindowLong   = 10
	HeadToHeadWindow = 5
	PaceWindow       = 5
	PaceMinGames     = 3
	BaseLineWindow   = 10
	DefaultRestDays  = 3
)

// SideFeatures carries per-team derived columns for one side of a game.
type SideFeatures struct {
	RestDays       *int
	BackToBack     bool
	ThreeInFour    bool
	FourInSix      bool
	RoadTripLength int
	WinStreak      int
	Form3          *float64
	Form5          *float64
	Form10         *float64
	Defense3       *float64
	Defense5       *float64
	Defense10      *float64
	PointDiff5     *float64
	Pace5          *float64
	Fatigue        int
	KeyPlayersOut  float64
	InjuryImpact   float64
}

// Row is one canonical game plus every derived column the estimator
// consumes. Augmenters recompute their columns wholesale, so rerunning
// the pipeline on augmented rows yields identical values.
type Row struct {
	game.Record

	Home SideFeatures
	Away SideFeatures

	HeadToHeadTotal *float64
	RestDiff        *int

	CurrentLine *float64
	ClosingLine *float64
	BaseLine    *float64
}

// NewRows wraps canonical records into feature rows, preserving order.
func NewRows(records []game.Record) []Row {
	out := make([]Row, len(records))
	for i, rec := range records {
		out[i] = Row{Record: rec.Clone()}
	}
	return out
}
