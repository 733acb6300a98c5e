package csvstore

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/lucabrevi/nba-totals/internal/domain/injury"
)

const (
	InjuriesFile    = "injuries.csv"
	PlayerStatsFile = "player_stats.csv"
)

// InjuryStore reads the externally maintained injury report and player
// scoring table, read-only.
type InjuryStore struct {
	dir string
}

func NewInjuryStore(dir string) *InjuryStore {
	return &InjuryStore{dir: dir}
}

func (s *InjuryStore) Load(ctx context.Context) ([]injury.Report, error) {
	rows, err := readTable(filepath.Join(s.dir, InjuriesFile))
	if err != nil {
		return nil, err
	}

	out := make([]injury.Report, 0, len(rows))
	for _, row := range rows {
		date := parseOptionalDate(field(row, 3))
		if date == nil {
			continue
		}
		out = append(out, injury.Report{
			Team:       strings.ToUpper(strings.TrimSpace(field(row, 0))),
			PlayerName: strings.TrimSpace(field(row, 1)),
			Status:     strings.TrimSpace(field(row, 2)),
			ReportDate: *date,
		})
	}
	return out, nil
}

// LoadPlayerStats reads the `player,team,ppg` table. A missing or empty
// file loads as no stats, which zeroes the injury weighting downstream.
func (s *InjuryStore) LoadPlayerStats(ctx context.Context) ([]injury.PlayerStat, error) {
	rows, err := readTable(filepath.Join(s.dir, PlayerStatsFile))
	if err != nil {
		return nil, err
	}

	out := make([]injury.PlayerStat, 0, len(rows))
	for _, row := range rows {
		player := strings.TrimSpace(field(row, 0))
		ppg := parseOptionalFloat(field(row, 2))
		if player == "" || ppg == nil {
			continue
		}
		out = append(out, injury.PlayerStat{
			Player: player,
			Team:   strings.ToUpper(strings.TrimSpace(field(row, 1))),
			PPG:    *ppg,
		})
	}
	return out, nil
}
