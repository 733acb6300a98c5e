package prediction

import (
	"errors"
	"math"
	"testing"

	"github.com/lucabrevi/nba-totals/internal/domain/feature"
)

func rowFixture() feature.Row {
	rest := 2
	form := 112.5
	var row feature.Row
	row.Home.RestDays = &rest
	row.Home.Form5 = &form
	row.Away.Fatigue = -2
	return row
}

// synthetic target: linear in two features plus a constant, so a
// boosted stump model should get close.
func syntheticData(n int) ([][]float64, []float64) {
	rows := make([][]float64, n)
	targets := make([]float64, n)
	for i := 0; i < n; i++ {
		a := float64(i % 10)
		b := float64((i * 7) % 13)
		rows[i] = []float64{a, b, 1}
		targets[i] = 200 + 3*a - 2*b
	}
	return rows, targets
}

func TestFitRejectsSmallSamples(t *testing.T) {
	t.Parallel()

	rows, targets := syntheticData(MinTrainingRows - 1)
	_, err := Fit(ShallowConfig, rows, targets)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestFitLearnsSignal(t *testing.T) {
	t.Parallel()

	rows, targets := syntheticData(200)
	est, err := Fit(DeepConfig, rows, targets)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}

	mae := 0.0
	for i, row := range rows {
		mae += math.Abs(est.Predict(row) - targets[i])
	}
	mae /= float64(len(rows))
	if mae > 5 {
		t.Fatalf("training MAE %.2f too high", mae)
	}
}

func TestPredictImputesMissing(t *testing.T) {
	t.Parallel()

	rows, targets := syntheticData(100)
	est, err := Fit(ShallowConfig, rows, targets)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}

	pred := est.Predict([]float64{math.NaN(), math.NaN(), math.NaN()})
	if math.IsNaN(pred) || math.IsInf(pred, 0) {
		t.Fatalf("prediction on all-missing vector must be finite, got %v", pred)
	}
	// All-missing imputes to the column means, i.e. roughly the
	// baseline.
	if math.Abs(pred-mean(targets)) > 25 {
		t.Fatalf("imputed prediction %v too far from baseline %v", pred, mean(targets))
	}
}

func TestEnsembleBlendsMembers(t *testing.T) {
	t.Parallel()

	rows, targets := syntheticData(150)
	ens, err := FitEnsemble(rows, targets)
	if err != nil {
		t.Fatalf("fit ensemble: %v", err)
	}

	row := rows[42]
	want := WeightShallow*ens.shallow.Predict(row) + WeightDeep*ens.deep.Predict(row)
	if got := ens.Predict(row); got != want {
		t.Fatalf("ensemble prediction %v, want weighted blend %v", got, want)
	}
}

func TestVectorizeWidth(t *testing.T) {
	t.Parallel()

	names := FeatureNames()
	vec := Vectorize(rowFixture())
	if len(vec) != len(names) {
		t.Fatalf("vector width %d != %d named columns", len(vec), len(names))
	}
}
