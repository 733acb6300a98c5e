package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/lucabrevi/nba-totals/internal/domain/odds"
	"github.com/lucabrevi/nba-totals/internal/domain/prediction"
	"github.com/lucabrevi/nba-totals/internal/platform/logging"
)

// EdgeThreshold is the minimum distance between the prediction and the
// market line before a verdict is worth betting.
const EdgeThreshold = 5.5

type RecommendSummary struct {
	Considered int `json:"considered"`
	Overs      int `json:"overs"`
	Unders     int `json:"unders"`
	NoBets     int `json:"no_bets"`
	NoLine     int `json:"no_line"`
}

type RecommendService struct {
	predictions     prediction.Repository
	recommendations prediction.RecommendationRepository
	oddsRepo        odds.Repository
	logger          *logging.Logger
}

func NewRecommendService(
	predictions prediction.Repository,
	recommendations prediction.RecommendationRepository,
	oddsRepo odds.Repository,
	logger *logging.Logger,
) *RecommendService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RecommendService{
		predictions:     predictions,
		recommendations: recommendations,
		oddsRepo:        oddsRepo,
		logger:          logger,
	}
}

// Recommend turns each saved prediction into a verdict against the
// most authoritative line on file: confirmed final line, then closing,
// then current, then the model's base-line proxy. Predictions with no
// line at all are skipped.
func (s *RecommendService) Recommend(ctx context.Context) (RecommendSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecommendService.Recommend")
	defer span.End()

	if s.predictions == nil || s.recommendations == nil {
		return RecommendSummary{}, fmt.Errorf("%w: recommendations are not fully configured", ErrDependencyUnavailable)
	}

	preds, err := s.predictions.Load(ctx)
	if err != nil {
		return RecommendSummary{}, fmt.Errorf("load predictions: %w", err)
	}

	var oddsRows []odds.Row
	if s.oddsRepo != nil {
		oddsRows, err = s.oddsRepo.Load(ctx)
		if err != nil {
			return RecommendSummary{}, fmt.Errorf("load odds: %w", err)
		}
	}
	byKey := make(map[odds.Key]odds.Row, len(oddsRows))
	for _, o := range oddsRows {
		byKey[o.Key()] = o
	}

	summary := RecommendSummary{Considered: len(preds)}
	out := make([]prediction.Recommendation, 0, len(preds))
	for _, p := range preds {
		line, source, ok := selectLine(byKey[oddsKeyFor(p)], p.BaseLine)
		if !ok {
			summary.NoLine++
			s.logger.WarnContext(ctx, "no usable line for prediction",
				"date", p.GameDate.Format("2006-01-02"),
				"home", p.HomeTeam,
				"away", p.AwayTeam,
			)
			continue
		}

		margin := p.PredictedPoints - line
		verdict := prediction.VerdictNoBet
		switch {
		case margin >= EdgeThreshold:
			verdict = prediction.VerdictOver
			summary.Overs++
		case margin <= -EdgeThreshold:
			verdict = prediction.VerdictUnder
			summary.Unders++
		default:
			summary.NoBets++
		}

		out = append(out, prediction.Recommendation{
			GameDate:        p.GameDate,
			HomeTeam:        p.HomeTeam,
			AwayTeam:        p.AwayTeam,
			PredictedPoints: p.PredictedPoints,
			UsedLine:        line,
			LineSource:      source,
			Verdict:         verdict,
			Margin:          margin,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Margin) > math.Abs(out[j].Margin)
	})

	if err := s.recommendations.SaveRecommendations(ctx, out); err != nil {
		return summary, fmt.Errorf("save recommendations: %w", err)
	}

	s.logger.InfoContext(ctx, "recommendation pass complete",
		"considered", summary.Considered,
		"overs", summary.Overs,
		"unders", summary.Unders,
		"no_bets", summary.NoBets,
		"no_line", summary.NoLine,
	)
	return summary, nil
}

func oddsKeyFor(p prediction.Row) odds.Key {
	return odds.Key{
		Date:     p.GameDate.Format("2006-01-02"),
		HomeTeam: p.HomeTeam,
		AwayTeam: p.AwayTeam,
	}
}

func selectLine(o odds.Row, baseLine *float64) (float64, string, bool) {
	switch {
	case o.FinalLine != nil:
		return *o.FinalLine, prediction.LineSourceFinal, true
	case o.ClosingLine != nil:
		return *o.ClosingLine, prediction.LineSourceClosing, true
	case o.CurrentLine != nil:
		return *o.CurrentLine, prediction.LineSourceCurrent, true
	case baseLine != nil:
		return *baseLine, prediction.LineSourceBase, true
	default:
		return 0, "", false
	}
}
