package ml

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// rankTolerance is the relative cutoff below which singular values are treated
// as zero.
const rankTolerance = 1e-10

// LinearRegression is an ordinary least squares model with an intercept.
type LinearRegression struct {
	Coefficients []float64
	Intercept    float64
}

// FitLinearRegression minimizes the squared error of X·coef + intercept
// against y. The data is centered so the intercept is not penalized, and the
// minimum-norm solution is taken through a thin SVD; a full one-hot design is
// rank deficient and has no unique solution otherwise.
func FitLinearRegression(features [][]float64, targets []float64) (*LinearRegression, error) {
	if len(features) == 0 || len(targets) == 0 {
		return nil, ErrEmptyDataset
	}
	if len(features) != len(targets) {
		return nil, ErrLengthMismatch
	}

	rows := len(features)
	cols := len(features[0])
	means := make([]float64, cols)
	for i, row := range features {
		if len(row) != cols {
			return nil, fmt.Errorf("row %d: %w", i, &DimensionMismatchError{Expected: cols, Actual: len(row)})
		}
		for j, v := range row {
			means[j] += v
		}
	}
	for j := range means {
		means[j] /= float64(rows)
	}
	targetMean := 0.0
	for _, y := range targets {
		targetMean += y
	}
	targetMean /= float64(rows)

	model := &LinearRegression{Coefficients: make([]float64, cols), Intercept: targetMean}
	if cols == 0 {
		return model, nil
	}

	centered := mat.NewDense(rows, cols, nil)
	b := make([]float64, rows)
	for i, row := range features {
		for j, v := range row {
			centered.Set(i, j, v-means[j])
		}
		b[i] = targets[i] - targetMean
	}

	var svd mat.SVD
	if ok := svd.Factorize(centered, mat.SVDThin); !ok {
		return nil, errors.New("svd factorization failed")
	}
	values := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	tol := 0.0
	if len(values) > 0 {
		tol = values[0] * rankTolerance
	}
	for k, sv := range values {
		if sv <= tol {
			continue
		}
		ub := 0.0
		for i := 0; i < rows; i++ {
			ub += u.At(i, k) * b[i]
		}
		w := ub / sv
		for j := 0; j < cols; j++ {
			model.Coefficients[j] += w * v.At(j, k)
		}
	}

	for j, c := range model.Coefficients {
		model.Intercept -= c * means[j]
	}
	return model, nil
}

// Predict returns dot(coefficients, features) + intercept. The result is not
// clamped.
func (m *LinearRegression) Predict(features []float64) (float64, error) {
	if len(features) != len(m.Coefficients) {
		return 0, &DimensionMismatchError{Expected: len(m.Coefficients), Actual: len(features)}
	}
	sum := m.Intercept
	for i, c := range m.Coefficients {
		sum += c * features[i]
	}
	return sum, nil
}

// Evaluate scores the model on held-out data.
func (m *LinearRegression) Evaluate(features [][]float64, targets []float64) (Metrics, error) {
	if len(features) == 0 {
		return Metrics{}, ErrEmptyDataset
	}
	if len(features) != len(targets) {
		return Metrics{}, ErrLengthMismatch
	}
	predictions := make([]float64, len(features))
	for i, row := range features {
		p, err := m.Predict(row)
		if err != nil {
			return Metrics{}, fmt.Errorf("row %d: %w", i, err)
		}
		predictions[i] = p
	}
	return ComputeMetrics(targets, predictions)
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
