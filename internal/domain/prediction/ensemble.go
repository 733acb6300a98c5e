package prediction

// Ensemble weights for the two estimator configurations. The heavier
// weight goes to the deeper-boosted configuration.
const (
	WeightShallow = 0.3
	WeightDeep    = 0.7
)

// ShallowConfig and DeepConfig are the two fixed ensemble members.
var (
	ShallowConfig = EstimatorConfig{Rounds: 120, LearningRate: 0.1, MinLeafSize: 5, MaxSplits: 16}
	DeepConfig    = EstimatorConfig{Rounds: 400, LearningRate: 0.05, MinLeafSize: 3, MaxSplits: 32}
)

// Ensemble blends the two estimators by fixed weights.
type Ensemble struct {
	shallow *Estimator
	deep    *Estimator
}

// FitEnsemble trains both members on the same matrix.
func FitEnsemble(rows [][]float64, targets []float64) (*Ensemble, error) {
	shallow, err := Fit(ShallowConfig, rows, targets)
	if err != nil {
		return nil, err
	}
	deep, err := Fit(DeepConfig, rows, targets)
	if err != nil {
		return nil, err
	}
	return &Ensemble{shallow: shallow, deep: deep}, nil
}

// Predict scores one raw feature vector.
func (e *Ensemble) Predict(row []float64) float64 {
	return WeightShallow*e.shallow.Predict(row) + WeightDeep*e.deep.Predict(row)
}
