package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/lucabrevi/nba-totals/internal/domain/feature"
	"github.com/lucabrevi/nba-totals/internal/domain/prediction"
	"github.com/lucabrevi/nba-totals/internal/platform/logging"
)

// FeatureSource yields the augmented feature rows for the whole
// dataset.
type FeatureSource interface {
	BuildFeatures(ctx context.Context) ([]feature.Row, error)
}

type PredictInput struct {
	// TargetDate is the first game day to predict for; zero means
	// today.
	TargetDate time.Time
}

type PredictSummary struct {
	TrainingRows int  `json:"training_rows"`
	Predicted    int  `json:"predicted"`
	Trained      bool `json:"trained"`
}

type PredictService struct {
	features    FeatureSource
	predictions prediction.Repository
	logger      *logging.Logger
	now         func() time.Time
}

func NewPredictService(
	features FeatureSource,
	predictions prediction.Repository,
	logger *logging.Logger,
) *PredictService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PredictService{
		features:    features,
		predictions: predictions,
		logger:      logger,
		now:         time.Now,
	}
}

// Predict trains the totals ensemble on every finished game and scores
// the unresolved games on or after the target date. Too little history
// is not an error: the service logs it and saves an empty prediction
// set.
func (s *PredictService) Predict(ctx context.Context, input PredictInput) (PredictSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictService.Predict")
	defer span.End()

	if s.features == nil || s.predictions == nil {
		return PredictSummary{}, fmt.Errorf("%w: prediction is not fully configured", ErrDependencyUnavailable)
	}

	target := dateOnly(input.TargetDate)
	if input.TargetDate.IsZero() {
		target = dateOnly(s.now())
	}

	rows, err := s.features.BuildFeatures(ctx)
	if err != nil {
		return PredictSummary{}, fmt.Errorf("build features: %w", err)
	}

	var trainVectors [][]float64
	var trainTargets []float64
	var upcoming []feature.Row
	for _, row := range rows {
		if row.TotalPoints != nil {
			trainVectors = append(trainVectors, prediction.Vectorize(row))
			trainTargets = append(trainTargets, float64(*row.TotalPoints))
			continue
		}
		if row.Date == nil || dateOnly(*row.Date).Before(target) {
			continue
		}
		upcoming = append(upcoming, row)
	}

	summary := PredictSummary{TrainingRows: len(trainVectors)}

	ensemble, err := prediction.FitEnsemble(trainVectors, trainTargets)
	if err != nil {
		if crerr.Is(err, prediction.ErrInsufficientData) {
			s.logger.WarnContext(ctx, "not enough finished games to train, saving empty prediction set",
				"training_rows", len(trainVectors),
			)
			if saveErr := s.predictions.Save(ctx, nil); saveErr != nil {
				return summary, fmt.Errorf("save predictions: %w", saveErr)
			}
			return summary, nil
		}
		return summary, fmt.Errorf("fit ensemble: %w", err)
	}
	summary.Trained = true

	out := make([]prediction.Row, 0, len(upcoming))
	for _, row := range upcoming {
		out = append(out, prediction.Row{
			GameID:          row.GameID,
			GameDate:        dateOnly(*row.Date),
			HomeTeam:        row.HomeTeam,
			AwayTeam:        row.AwayTeam,
			PredictedPoints: ensemble.Predict(prediction.Vectorize(row)),
			BaseLine:        row.BaseLine,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].GameDate.Equal(out[j].GameDate) {
			return out[i].GameDate.Before(out[j].GameDate)
		}
		return out[i].GameID < out[j].GameID
	})
	summary.Predicted = len(out)

	if err := s.predictions.Save(ctx, out); err != nil {
		return summary, fmt.Errorf("save predictions: %w", err)
	}

	s.logger.InfoContext(ctx, "prediction pass complete",
		"training_rows", summary.TrainingRows,
		"predicted", summary.Predicted,
	)
	return summary, nil
}
