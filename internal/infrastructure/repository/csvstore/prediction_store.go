package csvstore

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/lucabrevi/nba-totals/internal/domain/prediction"
)

const (
	PredictionsFile     = "predictions.csv"
	RecommendationsFile = "recommendations.csv"
	ReportFile          = "stats_report.csv"
	MAEHistoryFile      = "mae_history.csv"
)

var predictionHeader = []string{"game_date", "home_team", "away_team", "predicted_points", "base_line"}

// PredictionStore persists model outputs, betting verdicts and the
// accuracy report files.
type PredictionStore struct {
	dir string
}

func NewPredictionStore(dir string) *PredictionStore {
	return &PredictionStore{dir: dir}
}

func (s *PredictionStore) Load(ctx context.Context) ([]prediction.Row, error) {
	rows, err := readTable(filepath.Join(s.dir, PredictionsFile))
	if err != nil {
		return nil, err
	}

	out := make([]prediction.Row, 0, len(rows))
	for _, row := range rows {
		date := parseOptionalDate(field(row, 0))
		pred := parseOptionalFloat(field(row, 3))
		if date == nil || pred == nil {
			continue
		}
		out = append(out, prediction.Row{
			GameDate:        *date,
			HomeTeam:        field(row, 1),
			AwayTeam:        field(row, 2),
			PredictedPoints: *pred,
			BaseLine:        parseOptionalFloat(field(row, 4)),
		})
	}
	return out, nil
}

func (s *PredictionStore) Save(ctx context.Context, items []prediction.Row) error {
	rows := make([][]string, 0, len(items))
	for _, p := range items {
		rows = append(rows, []string{
			p.GameDate.Format(dateLayout),
			p.HomeTeam,
			p.AwayTeam,
			strconv.FormatFloat(p.PredictedPoints, 'f', 2, 64),
			formatOptionalFloat(p.BaseLine),
		})
	}
	return writeTable(filepath.Join(s.dir, PredictionsFile), predictionHeader, rows)
}

func (s *PredictionStore) SaveRecommendations(ctx context.Context, items []prediction.Recommendation) error {
	header := []string{
		"game_date", "home_team", "away_team",
		"predicted_points", "used_line", "line_source", "recommendation", "margin",
	}
	rows := make([][]string, 0, len(items))
	for _, r := range items {
		rows = append(rows, []string{
			r.GameDate.Format(dateLayout),
			r.HomeTeam,
			r.AwayTeam,
			strconv.FormatFloat(r.PredictedPoints, 'f', 2, 64),
			strconv.FormatFloat(r.UsedLine, 'f', 1, 64),
			r.LineSource,
			r.Verdict,
			strconv.FormatFloat(r.Margin, 'f', 2, 64),
		})
	}
	return writeTable(filepath.Join(s.dir, RecommendationsFile), header, rows)
}

// SaveReport writes the predicted-vs-actual table with the threshold
// summary appended as comment lines.
func (s *PredictionStore) SaveReport(ctx context.Context, items []prediction.ReportRow, thresholds map[int]int) error {
	header := []string{"date", "game", "predicted_points", "total_points", "diff", "game_id"}
	rows := make([][]string, 0, len(items))
	for _, r := range items {
		rows = append(rows, []string{
			r.Date.Format(dateLayout),
			r.Game,
			strconv.FormatFloat(r.PredictedPoints, 'f', 2, 64),
			strconv.Itoa(r.TotalPoints),
			strconv.FormatFloat(r.Diff, 'f', 2, 64),
			strconv.FormatInt(r.GameID, 10),
		})
	}

	keys := make([]int, 0, len(thresholds))
	for k := range thresholds {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	trailer := make([]string, 0, len(keys))
	for _, k := range keys {
		trailer = append(trailer, fmt.Sprintf("# within_%d,%d", k, thresholds[k]))
	}

	return writeTable(filepath.Join(s.dir, ReportFile), header, rows, trailer...)
}

// AppendMAEHistory rewrites the history file with the new entry at the
// end; one entry per run date, newest wins.
func (s *PredictionStore) AppendMAEHistory(ctx context.Context, entry prediction.MAEHistoryEntry) error {
	path := filepath.Join(s.dir, MAEHistoryFile)
	existing, err := readTable(path)
	if err != nil {
		return err
	}

	runDate := entry.RunDate.Format(dateLayout)
	rows := make([][]string, 0, len(existing)+1)
	for _, row := range existing {
		if field(row, 0) == runDate {
			continue
		}
		rows = append(rows, row)
	}
	rows = append(rows, []string{
		runDate,
		strconv.FormatFloat(entry.SeasonMAE, 'f', 3, 64),
		strconv.FormatFloat(entry.Last15MAE, 'f', 3, 64),
		strconv.Itoa(entry.SeasonN),
		strconv.Itoa(entry.Last15N),
	})

	header := []string{"run_date", "season_mae", "last15_mae", "season_n", "last15_n"}
	return writeTable(path, header, rows)
}
