package csvstore

import (
	"context"
	"path/filepath"

	"github.com/lucabrevi/nba-totals/internal/domain/odds"
)

const OddsFile = "odds.csv"

var oddsHeader = []string{"date", "home_team", "away_team", "current_line", "closing_line", "final_line"}

// OddsStore persists the odds table accumulated across runs.
type OddsStore struct {
	dir string
}

func NewOddsStore(dir string) *OddsStore {
	return &OddsStore{dir: dir}
}

func (s *OddsStore) Load(ctx context.Context) ([]odds.Row, error) {
	rows, err := readTable(filepath.Join(s.dir, OddsFile))
	if err != nil {
		return nil, err
	}

	out := make([]odds.Row, 0, len(rows))
	for _, row := range rows {
		date := parseOptionalDate(field(row, 0))
		if date == nil {
			continue
		}
		out = append(out, odds.Row{
			Date:        *date,
			HomeTeam:    field(row, 1),
			AwayTeam:    field(row, 2),
			CurrentLine: parseOptionalFloat(field(row, 3)),
			ClosingLine: parseOptionalFloat(field(row, 4)),
			FinalLine:   parseOptionalFloat(field(row, 5)),
		})
	}
	return out, nil
}

func (s *OddsStore) Save(ctx context.Context, items []odds.Row) error {
	rows := make([][]string, 0, len(items))
	for _, o := range items {
		rows = append(rows, []string{
			o.Date.Format(dateLayout),
			o.HomeTeam,
			o.AwayTeam,
			formatOptionalFloat(o.CurrentLine),
			formatOptionalFloat(o.ClosingLine),
			formatOptionalFloat(o.FinalLine),
		})
	}
	return writeTable(filepath.Join(s.dir, OddsFile), oddsHeader, rows)
}
