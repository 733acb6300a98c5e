package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/lucabrevi/nba-totals/internal/domain/feature"
	"github.com/lucabrevi/nba-totals/internal/domain/game"
	"github.com/lucabrevi/nba-totals/internal/domain/prediction"
	"github.com/lucabrevi/nba-totals/internal/platform/logging"
)

type stubFeatureSource struct {
	rows []feature.Row
	err  error
}

func (s *stubFeatureSource) BuildFeatures(ctx context.Context) ([]feature.Row, error) {
	return s.rows, s.err
}

type stubPredictionStore struct {
	rows  []prediction.Row
	saved [][]prediction.Row
}

func (s *stubPredictionStore) Load(ctx context.Context) ([]prediction.Row, error) {
	return s.rows, nil
}
func (s *stubPredictionStore) Save(ctx context.Context, rows []prediction.Row) error {
	s.saved = append(s.saved, rows)
	s.rows = rows
	return nil
}

// predictFixture builds a linear history where the total tracks the
// current line, plus unresolved games on and after the target date.
func predictFixture(finished, upcoming int) []feature.Row {
	base := *testDate("2025-10-01")
	rows := make([]feature.Row, 0, finished+upcoming)
	for i := 0; i < finished; i++ {
		d := base.AddDate(0, 0, i)
		total := 200 + i%20
		line := float64(total) - 1.5
		rows = append(rows, feature.Row{
			Record: game.Record{
				GameID:      int64(2000 + i),
				Date:        &d,
				HomeTeam:    "BOS",
				AwayTeam:    "NYK",
				TotalPoints: pint(total),
				IsFinal:     true,
			},
			CurrentLine: &line,
		})
	}
	for i := 0; i < upcoming; i++ {
		d := ingestTarget.AddDate(0, 0, i)
		line := 214.5
		rows = append(rows, feature.Row{
			Record: game.Record{
				GameID:   int64(3000 + i),
				Date:     &d,
				HomeTeam: "MIA",
				AwayTeam: "BOS",
			},
			CurrentLine: &line,
			BaseLine:    pfloat(212.0),
		})
	}
	return rows
}

func newTestPredictor(features *stubFeatureSource, store *stubPredictionStore) *PredictService {
	svc := NewPredictService(features, store, logging.NewNop())
	svc.now = func() time.Time { return ingestTarget }
	return svc
}

func TestPredictScoresUpcomingGames(t *testing.T) {
	t.Parallel()

	store := &stubPredictionStore{}
	svc := newTestPredictor(&stubFeatureSource{rows: predictFixture(40, 2)}, store)

	summary, err := svc.Predict(context.Background(), PredictInput{})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if !summary.Trained {
		t.Fatal("expected the ensemble to train")
	}
	if summary.TrainingRows != 40 {
		t.Fatalf("training rows = %d, want 40", summary.TrainingRows)
	}
	if summary.Predicted != 2 || len(store.rows) != 2 {
		t.Fatalf("predicted = %d (saved %d), want 2", summary.Predicted, len(store.rows))
	}

	for _, p := range store.rows {
		if p.PredictedPoints < 150 || p.PredictedPoints > 280 {
			t.Fatalf("prediction %v far outside plausible totals", p.PredictedPoints)
		}
		if p.BaseLine == nil || *p.BaseLine != 212.0 {
			t.Fatalf("base line not carried through: %+v", p)
		}
	}
}

func TestPredictSkipsPastUnresolvedGames(t *testing.T) {
	t.Parallel()

	rows := predictFixture(40, 1)
	// An old game that never got a result must not be scored.
	stale := *testDate("2025-10-15")
	rows = append(rows, feature.Row{
		Record: game.Record{GameID: 4000, Date: &stale, HomeTeam: "MIA", AwayTeam: "NYK"},
	})

	store := &stubPredictionStore{}
	svc := newTestPredictor(&stubFeatureSource{rows: rows}, store)

	summary, err := svc.Predict(context.Background(), PredictInput{})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if summary.Predicted != 1 {
		t.Fatalf("predicted = %d, want only the upcoming game", summary.Predicted)
	}
	if store.rows[0].GameID != 3000 {
		t.Fatalf("scored game = %d, want 3000", store.rows[0].GameID)
	}
}

func TestPredictSavesEmptySetOnThinHistory(t *testing.T) {
	t.Parallel()

	store := &stubPredictionStore{rows: []prediction.Row{{GameID: 1}}}
	svc := newTestPredictor(&stubFeatureSource{rows: predictFixture(5, 1)}, store)

	summary, err := svc.Predict(context.Background(), PredictInput{})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if summary.Trained {
		t.Fatal("five finished games must not be enough to train")
	}
	if len(store.saved) != 1 || len(store.saved[0]) != 0 {
		t.Fatalf("expected one empty save, got %+v", store.saved)
	}
}

func TestPredictPropagatesFeatureErrors(t *testing.T) {
	t.Parallel()

	svc := newTestPredictor(&stubFeatureSource{err: fmt.Errorf("corrupt table")}, &stubPredictionStore{})

	if _, err := svc.Predict(context.Background(), PredictInput{}); err == nil {
		t.Fatal("expected the feature error to propagate")
	}
}
