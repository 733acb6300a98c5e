package prediction

import (
	"errors"
	"math"
	"sort"
)

// MinTrainingRows is the smallest usable training set; below it the
// caller emits an empty prediction set instead of a badly fitted model.
const MinTrainingRows = 20

var ErrInsufficientData = errors.New("insufficient training data")

// EstimatorConfig tunes one boosted-stump regressor.
type EstimatorConfig struct {
	Rounds       int
	LearningRate float64
	MinLeafSize  int
	MaxSplits    int
}

type stump struct {
	feature   int
	threshold float64
	left      float64
	right     float64
}

// Estimator is a gradient-boosted ensemble of depth-one regression
// trees over mean-imputed, standardized features.
type Estimator struct {
	cfg      EstimatorConfig
	baseline float64
	stumps   []stump
	means    []float64
	stds     []float64
}

// Fit trains on the given matrix. Rows are feature vectors; NaN marks a
// missing value and is imputed with the column mean.
func Fit(cfg EstimatorConfig, rows [][]float64, targets []float64) (*Estimator, error) {
	if len(rows) != len(targets) {
		return nil, errors.New("feature and target lengths differ")
	}
	if len(rows) < MinTrainingRows {
		return nil, ErrInsufficientData
	}
	if cfg.Rounds <= 0 || cfg.LearningRate <= 0 {
		return nil, errors.New("rounds and learning rate must be positive")
	}
	if cfg.MinLeafSize <= 0 {
		cfg.MinLeafSize = 3
	}
	if cfg.MaxSplits <= 0 {
		cfg.MaxSplits = 32
	}

	width := len(rows[0])
	est := &Estimator{cfg: cfg}
	est.fitScaler(rows, width)

	scaled := make([][]float64, len(rows))
	for i, row := range rows {
		scaled[i] = est.transform(row)
	}

	est.baseline = mean(targets)
	residuals := make([]float64, len(targets))
	for i, t := range targets {
		residuals[i] = t - est.baseline
	}

	for round := 0; round < cfg.Rounds; round++ {
		s, ok := bestStump(scaled, residuals, cfg)
		if !ok {
			break
		}
		est.stumps = append(est.stumps, s)
		for i, row := range scaled {
			residuals[i] -= cfg.LearningRate * s.eval(row)
		}
	}

	return est, nil
}

// Predict scores one raw (unscaled) feature vector.
func (e *Estimator) Predict(row []float64) float64 {
	scaled := e.transform(row)
	out := e.baseline
	for _, s := range e.stumps {
		out += e.cfg.LearningRate * s.eval(scaled)
	}
	return out
}

func (s stump) eval(row []float64) float64 {
	if row[s.feature] <= s.threshold {
		return s.left
	}
	return s.right
}

func (e *Estimator) fitScaler(rows [][]float64, width int) {
	e.means = make([]float64, width)
	e.stds = make([]float64, width)

	for j := 0; j < width; j++ {
		sum, n := 0.0, 0
		for _, row := range rows {
			if !math.IsNaN(row[j]) {
				sum += row[j]
				n++
			}
		}
		if n > 0 {
			e.means[j] = sum / float64(n)
		}

		variance := 0.0
		for _, row := range rows {
			if !math.IsNaN(row[j]) {
				d := row[j] - e.means[j]
				variance += d * d
			}
		}
		if n > 1 {
			e.stds[j] = math.Sqrt(variance / float64(n-1))
		}
		if e.stds[j] == 0 {
			e.stds[j] = 1
		}
	}
}

// transform imputes missing values with the column mean, then
// standardizes.
func (e *Estimator) transform(row []float64) []float64 {
	out := make([]float64, len(e.means))
	for j := range e.means {
		v := e.means[j]
		if j < len(row) && !math.IsNaN(row[j]) {
			v = row[j]
		}
		out[j] = (v - e.means[j]) / e.stds[j]
	}
	return out
}

// bestStump scans every feature for the split minimizing squared error
// against the residuals. Candidate thresholds are midpoints of up to
// MaxSplits evenly spaced sorted values.
func bestStump(rows [][]float64, residuals []float64, cfg EstimatorConfig) (stump, bool) {
	best := stump{}
	bestErr := math.Inf(1)
	found := false
	width := len(rows[0])

	for j := 0; j < width; j++ {
		values := make([]float64, len(rows))
		for i, row := range rows {
			values[i] = row[j]
		}
		for _, threshold := range candidateThresholds(values, cfg.MaxSplits) {
			leftSum, leftN := 0.0, 0
			rightSum, rightN := 0.0, 0
			for i, v := range values {
				if v <= threshold {
					leftSum += residuals[i]
					leftN++
				} else {
					rightSum += residuals[i]
					rightN++
				}
			}
			if leftN < cfg.MinLeafSize || rightN < cfg.MinLeafSize {
				continue
			}
			leftMean := leftSum / float64(leftN)
			rightMean := rightSum / float64(rightN)

			sse := 0.0
			for i, v := range values {
				var d float64
				if v <= threshold {
					d = residuals[i] - leftMean
				} else {
					d = residuals[i] - rightMean
				}
				sse += d * d
			}
			if sse < bestErr {
				bestErr = sse
				best = stump{feature: j, threshold: threshold, left: leftMean, right: rightMean}
				found = true
			}
		}
	}

	return best, found
}

func candidateThresholds(values []float64, maxSplits int) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	unique := sorted[:0]
	for i, v := range sorted {
		if i == 0 || v != unique[len(unique)-1] {
			unique = append(unique, v)
		}
	}
	if len(unique) < 2 {
		return nil
	}

	step := 1
	if len(unique)-1 > maxSplits {
		step = (len(unique) - 1) / maxSplits
	}
	out := make([]float64, 0, maxSplits)
	for i := step; i < len(unique); i += step {
		out = append(out, (unique[i-1]+unique[i])/2)
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
