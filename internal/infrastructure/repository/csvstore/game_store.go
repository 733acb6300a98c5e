package csvstore

import (
	"context"
	"path/filepath"
	"strconv"

	"github.com/lucabrevi/nba-totals/internal/domain/game"
)

// File names inside the data directory.
const (
	CanonicalFile  = "games.csv"
	HeadersFile    = "game_headers.csv"
	LineScoresFile = "line_scores.csv"
	ClosingFile    = "closing_dataset.csv"
)

var canonicalHeader = []string{
	"game_id", "date", "home_team", "away_team",
	"home_points", "away_points", "total_points", "is_final",
}

// GameStore persists the canonical table plus the raw source tables it
// is reconciled from.
type GameStore struct {
	dir string
}

func NewGameStore(dir string) *GameStore {
	return &GameStore{dir: dir}
}

func (s *GameStore) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *GameStore) Load(ctx context.Context) ([]game.Record, error) {
	rows, err := readTable(s.path(CanonicalFile))
	if err != nil {
		return nil, err
	}

	out := make([]game.Record, 0, len(rows))
	for _, row := range rows {
		id := parseOptionalInt64(field(row, 0))
		if id == nil {
			continue
		}
		rec := game.Record{
			GameID:      *id,
			Date:        parseOptionalDate(field(row, 1)),
			HomeTeam:    field(row, 2),
			AwayTeam:    field(row, 3),
			HomePoints:  parseOptionalInt(field(row, 4)),
			AwayPoints:  parseOptionalInt(field(row, 5)),
			TotalPoints: parseOptionalInt(field(row, 6)),
			IsFinal:     field(row, 7) == "true",
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *GameStore) Save(ctx context.Context, records []game.Record) error {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			strconv.FormatInt(rec.GameID, 10),
			formatOptionalDate(rec.Date),
			rec.HomeTeam,
			rec.AwayTeam,
			formatOptionalInt(rec.HomePoints),
			formatOptionalInt(rec.AwayPoints),
			formatOptionalInt(rec.TotalPoints),
			strconv.FormatBool(rec.IsFinal),
		})
	}
	return writeTable(s.path(CanonicalFile), canonicalHeader, rows)
}

func (s *GameStore) LoadHeaders(ctx context.Context) ([]game.HeaderRow, error) {
	rows, err := readTable(s.path(HeadersFile))
	if err != nil {
		return nil, err
	}

	out := make([]game.HeaderRow, 0, len(rows))
	for _, row := range rows {
		id := parseOptionalInt64(field(row, 0))
		if id == nil {
			continue
		}
		out = append(out, game.HeaderRow{
			GameID:     *id,
			Date:       parseOptionalDate(field(row, 1)),
			StatusText: field(row, 2),
			HomeTeamID: field(row, 3),
			AwayTeamID: field(row, 4),
		})
	}
	return out, nil
}

func (s *GameStore) SaveHeaders(ctx context.Context, headers []game.HeaderRow) error {
	rows := make([][]string, 0, len(headers))
	for _, h := range headers {
		rows = append(rows, []string{
			strconv.FormatInt(h.GameID, 10),
			formatOptionalDate(h.Date),
			h.StatusText,
			h.HomeTeamID,
			h.AwayTeamID,
		})
	}
	header := []string{"game_id", "date", "status_text", "home_team_id", "away_team_id"}
	return writeTable(s.path(HeadersFile), header, rows)
}

func (s *GameStore) LoadLineScores(ctx context.Context) ([]game.LineScoreRow, error) {
	rows, err := readTable(s.path(LineScoresFile))
	if err != nil {
		return nil, err
	}

	out := make([]game.LineScoreRow, 0, len(rows))
	for _, row := range rows {
		id := parseOptionalInt64(field(row, 0))
		if id == nil {
			continue
		}
		out = append(out, game.LineScoreRow{
			GameID:           *id,
			TeamID:           field(row, 1),
			TeamAbbreviation: field(row, 2),
			Points:           parseOptionalInt(field(row, 3)),
		})
	}
	return out, nil
}

func (s *GameStore) SaveLineScores(ctx context.Context, lineScores []game.LineScoreRow) error {
	rows := make([][]string, 0, len(lineScores))
	for _, ls := range lineScores {
		rows = append(rows, []string{
			strconv.FormatInt(ls.GameID, 10),
			ls.TeamID,
			ls.TeamAbbreviation,
			formatOptionalInt(ls.Points),
		})
	}
	header := []string{"game_id", "team_id", "team_abbreviation", "points"}
	return writeTable(s.path(LineScoresFile), header, rows)
}

func (s *GameStore) LoadClosing(ctx context.Context) ([]game.ClosingRow, error) {
	rows, err := readTable(s.path(ClosingFile))
	if err != nil {
		return nil, err
	}

	out := make([]game.ClosingRow, 0, len(rows))
	for _, row := range rows {
		id := parseOptionalInt64(field(row, 0))
		if id == nil {
			continue
		}
		out = append(out, game.ClosingRow{
			GameID:      *id,
			HomePoints:  parseOptionalInt(field(row, 1)),
			AwayPoints:  parseOptionalInt(field(row, 2)),
			TotalPoints: parseOptionalInt(field(row, 3)),
		})
	}
	return out, nil
}
