package injury

import "context"

// Repository reads the externally maintained injury report.
type Repository interface {
	Load(ctx context.Context) ([]Report, error)
}

// PlayerStatsRepository reads the per-game player scoring table that
// ranks each team's key scorers.
type PlayerStatsRepository interface {
	LoadPlayerStats(ctx context.Context) ([]PlayerStat, error)
}
