package prediction

import "time"

// Row is one model output for an upcoming game.
type Row struct {
	GameID          int64
	GameDate        time.Time
	HomeTeam        string
	AwayTeam        string
	PredictedPoints float64
	BaseLine        *float64
}

// Recommendation is the betting verdict derived from a prediction and
// the best available market line.
type Recommendation struct {
	GameDate        time.Time
	HomeTeam        string
	AwayTeam        string
	PredictedPoints float64
	UsedLine        float64
	LineSource      string
	Verdict         string
	Margin          float64
}

const (
	VerdictOver  = "OVER"
	VerdictUnder = "UNDER"
	VerdictNoBet = "NO BET"
)

// Line sources in priority order.
const (
	LineSourceFinal   = "FINAL"
	LineSourceClosing = "CLOSING"
	LineSourceCurrent = "CURRENT"
	LineSourceBase    = "BASE"
)

// ReportRow is one predicted-vs-actual comparison for a finished game.
type ReportRow struct {
	GameID          int64
	Date            time.Time
	Game            string
	PredictedPoints float64
	TotalPoints     int
	Diff            float64
}

// ErrorStats aggregates prediction error over a set of report rows.
type ErrorStats struct {
	Count int
	MAE   float64
	RMSE  float64
	MAPE  float64
}

// MAEHistoryEntry is one snapshot of season-to-date and trailing-window
// accuracy, appended per run.
type MAEHistoryEntry struct {
	RunDate    time.Time
	SeasonMAE  float64
	Last15MAE  float64
	SeasonN    int
	Last15N    int
}
