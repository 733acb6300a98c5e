package usecase

import (
	"context"
	"fmt"

	"github.com/lucabrevi/nba-totals/internal/domain/feature"
	"github.com/lucabrevi/nba-totals/internal/domain/game"
	"github.com/lucabrevi/nba-totals/internal/domain/injury"
	"github.com/lucabrevi/nba-totals/internal/domain/odds"
	"github.com/lucabrevi/nba-totals/internal/platform/logging"
)

// AugmentService derives the model features from the reconciled games
// plus the odds, injury and player-stats side tables.
type AugmentService struct {
	canonical   game.Repository
	oddsRepo    odds.Repository
	injuries    injury.Repository
	playerStats injury.PlayerStatsRepository
	logger      *logging.Logger
}

func NewAugmentService(
	canonical game.Repository,
	oddsRepo odds.Repository,
	injuries injury.Repository,
	playerStats injury.PlayerStatsRepository,
	logger *logging.Logger,
) *AugmentService {
	if logger == nil {
		logger = logging.Default()
	}
	return &AugmentService{
		canonical:   canonical,
		oddsRepo:    oddsRepo,
		injuries:    injuries,
		playerStats: playerStats,
		logger:      logger,
	}
}

// BuildFeatures loads every input table and runs the augmentation
// chain. The odds and injury repositories are optional; absent side
// tables just leave their features empty.
func (s *AugmentService) BuildFeatures(ctx context.Context) ([]feature.Row, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AugmentService.BuildFeatures")
	defer span.End()

	if s.canonical == nil {
		return nil, fmt.Errorf("%w: augmentation is not fully configured", ErrDependencyUnavailable)
	}

	records, err := s.canonical.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load games: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var oddsRows []odds.Row
	if s.oddsRepo != nil {
		oddsRows, err = s.oddsRepo.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load odds: %w", err)
		}
	}

	var reports []injury.Report
	if s.injuries != nil {
		reports, err = s.injuries.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load injury reports: %w", err)
		}
	}

	var stats []injury.PlayerStat
	if s.playerStats != nil {
		stats, err = s.playerStats.LoadPlayerStats(ctx)
		if err != nil {
			return nil, fmt.Errorf("load player stats: %w", err)
		}
	}

	rows := feature.Augment(feature.NewRows(records), oddsRows, reports, stats)
	s.logger.DebugContext(ctx, "feature augmentation complete",
		"games", len(rows),
		"odds_rows", len(oddsRows),
		"injury_reports", len(reports),
		"player_stats", len(stats),
	)
	return rows, nil
}
