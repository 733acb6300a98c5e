package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/lucabrevi/nba-totals/internal/domain/game"
	"github.com/lucabrevi/nba-totals/internal/domain/prediction"
	"github.com/lucabrevi/nba-totals/internal/platform/logging"
)

// accuracyThresholds are the |diff| buckets counted in the stats
// report.
var accuracyThresholds = []int{5, 12, 13, 14, 15}

const maeTrailingWindowDays = 15

type ReportSummary struct {
	Rows           int                   `json:"rows"`
	MissingResults int                   `json:"missing_results"`
	Stats          prediction.ErrorStats `json:"stats"`
}

type ReportService struct {
	canonical   game.Repository
	predictions prediction.Repository
	reports     prediction.ReportRepository
	logger      *logging.Logger
	now         func() time.Time
}

func NewReportService(
	canonical game.Repository,
	predictions prediction.Repository,
	reports prediction.ReportRepository,
	logger *logging.Logger,
) *ReportService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ReportService{
		canonical:   canonical,
		predictions: predictions,
		reports:     reports,
		logger:      logger,
		now:         time.Now,
	}
}

// Report scores saved predictions against finished games, writes the
// predicted-vs-actual table with its threshold summary, and appends to
// the accuracy history.
func (s *ReportService) Report(ctx context.Context) (ReportSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReportService.Report")
	defer span.End()

	if s.canonical == nil || s.predictions == nil || s.reports == nil {
		return ReportSummary{}, fmt.Errorf("%w: reporting is not fully configured", ErrDependencyUnavailable)
	}

	records, err := s.canonical.Load(ctx)
	if err != nil {
		return ReportSummary{}, fmt.Errorf("load games: %w", err)
	}
	preds, err := s.predictions.Load(ctx)
	if err != nil {
		return ReportSummary{}, fmt.Errorf("load predictions: %w", err)
	}

	today := dateOnly(s.now())
	summary := ReportSummary{MissingResults: s.logMissingResults(ctx, records, today)}

	rows := buildReportRows(records, preds)
	summary.Rows = len(rows)
	summary.Stats = computeErrorStats(rows)

	for _, day := range dailyErrorStats(rows) {
		s.logger.DebugContext(ctx, "daily accuracy",
			"date", day.Date.Format("2006-01-02"),
			"games", day.Stats.Count,
			"mae", day.Stats.MAE,
			"rmse", day.Stats.RMSE,
		)
	}

	thresholds := make(map[int]int, len(accuracyThresholds))
	for _, t := range accuracyThresholds {
		count := 0
		for _, row := range rows {
			if math.Abs(row.Diff) < float64(t) {
				count++
			}
		}
		thresholds[t] = count
	}

	if err := s.reports.SaveReport(ctx, rows, thresholds); err != nil {
		return summary, fmt.Errorf("save stats report: %w", err)
	}

	entry := buildMAEHistoryEntry(rows, today)
	if err := s.reports.AppendMAEHistory(ctx, entry); err != nil {
		return summary, fmt.Errorf("append accuracy history: %w", err)
	}

	s.logger.InfoContext(ctx, "report pass complete",
		"rows", summary.Rows,
		"mae", summary.Stats.MAE,
		"rmse", summary.Stats.RMSE,
		"mape", summary.Stats.MAPE,
		"missing_results", summary.MissingResults,
	)
	return summary, nil
}

// buildReportRows joins predictions to finished games on date and
// matchup, keeping the last prediction per game. Predictions reloaded
// from file carry no game id, so the id comes from the canonical side.
func buildReportRows(records []game.Record, preds []prediction.Row) []prediction.ReportRow {
	type matchup struct {
		date string
		home string
		away string
	}

	actual := make(map[matchup]game.Record, len(records))
	for _, r := range records {
		if !r.IsFinal || r.TotalPoints == nil || r.Date == nil {
			continue
		}
		actual[matchup{r.Date.Format("2006-01-02"), r.HomeTeam, r.AwayTeam}] = r
	}

	keys := make([]matchup, len(preds))
	lastPred := make(map[matchup]int, len(preds))
	for i, p := range preds {
		keys[i] = matchup{p.GameDate.Format("2006-01-02"), p.HomeTeam, p.AwayTeam}
		lastPred[keys[i]] = i
	}

	out := make([]prediction.ReportRow, 0, len(preds))
	for i, p := range preds {
		if lastPred[keys[i]] != i {
			continue
		}
		r, ok := actual[keys[i]]
		if !ok {
			continue
		}
		out = append(out, prediction.ReportRow{
			GameID:          r.GameID,
			Date:            p.GameDate,
			Game:            p.AwayTeam + " @ " + p.HomeTeam,
			PredictedPoints: p.PredictedPoints,
			TotalPoints:     *r.TotalPoints,
			Diff:            float64(*r.TotalPoints) - p.PredictedPoints,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].GameID < out[j].GameID
	})
	return out
}

func computeErrorStats(rows []prediction.ReportRow) prediction.ErrorStats {
	stats := prediction.ErrorStats{Count: len(rows)}
	if len(rows) == 0 {
		return stats
	}

	var absSum, sqSum float64
	var pctSum float64
	pctCount := 0
	for _, row := range rows {
		absSum += math.Abs(row.Diff)
		sqSum += row.Diff * row.Diff
		if row.TotalPoints != 0 {
			pctSum += math.Abs(row.Diff) / float64(row.TotalPoints)
			pctCount++
		}
	}

	stats.MAE = absSum / float64(len(rows))
	stats.RMSE = math.Sqrt(sqSum / float64(len(rows)))
	if pctCount > 0 {
		stats.MAPE = 100 * pctSum / float64(pctCount)
	}
	return stats
}

type dayErrorStats struct {
	Date  time.Time
	Stats prediction.ErrorStats
}

// dailyErrorStats breaks the joined rows down per game date. Rows
// arrive sorted by date, so each group is contiguous.
func dailyErrorStats(rows []prediction.ReportRow) []dayErrorStats {
	var out []dayErrorStats
	start := 0
	for i := 1; i <= len(rows); i++ {
		if i < len(rows) && dateOnly(rows[i].Date).Equal(dateOnly(rows[start].Date)) {
			continue
		}
		out = append(out, dayErrorStats{
			Date:  dateOnly(rows[start].Date),
			Stats: computeErrorStats(rows[start:i]),
		})
		start = i
	}
	return out
}

func buildMAEHistoryEntry(rows []prediction.ReportRow, runDate time.Time) prediction.MAEHistoryEntry {
	entry := prediction.MAEHistoryEntry{RunDate: runDate}

	var seasonSum, trailingSum float64
	trailingStart := runDate.AddDate(0, 0, -maeTrailingWindowDays)
	for _, row := range rows {
		seasonSum += math.Abs(row.Diff)
		entry.SeasonN++
		if !dateOnly(row.Date).Before(trailingStart) {
			trailingSum += math.Abs(row.Diff)
			entry.Last15N++
		}
	}
	if entry.SeasonN > 0 {
		entry.SeasonMAE = seasonSum / float64(entry.SeasonN)
	}
	if entry.Last15N > 0 {
		entry.Last15MAE = trailingSum / float64(entry.Last15N)
	}
	return entry
}

func (s *ReportService) logMissingResults(ctx context.Context, records []game.Record, today time.Time) int {
	missing := 0
	for _, r := range records {
		if r.Date == nil || r.TotalPoints != nil {
			continue
		}
		if dateOnly(*r.Date).Before(today) {
			missing++
			s.logger.WarnContext(ctx, "past game has no result",
				"game_id", r.GameID,
				"date", r.Date.Format("2006-01-02"),
				"home", r.HomeTeam,
				"away", r.AwayTeam,
			)
		}
	}
	return missing
}
