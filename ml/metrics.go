package ml

import (
	"math"

	"github.com/montanaflynn/stats"
)

// Metrics are the regression diagnostics reported after training.
type Metrics struct {
	MAE float64 `json:"mae"`
	MSE float64 `json:"mse"`
	R2  float64 `json:"r2"`
}

// ComputeMetrics returns mean absolute error, mean squared error and the
// coefficient of determination. A constant target yields R2 of 1 for a perfect
// fit and 0 otherwise.
func ComputeMetrics(actual, predicted []float64) (Metrics, error) {
	if len(actual) == 0 {
		return Metrics{}, ErrEmptyDataset
	}
	if len(actual) != len(predicted) {
		return Metrics{}, ErrLengthMismatch
	}

	absErrs := make([]float64, len(actual))
	sqErrs := make([]float64, len(actual))
	for i := range actual {
		diff := actual[i] - predicted[i]
		absErrs[i] = math.Abs(diff)
		sqErrs[i] = diff * diff
	}

	mae, err := stats.Mean(absErrs)
	if err != nil {
		return Metrics{}, err
	}
	mse, err := stats.Mean(sqErrs)
	if err != nil {
		return Metrics{}, err
	}
	ssRes, err := stats.Sum(sqErrs)
	if err != nil {
		return Metrics{}, err
	}
	mean, err := stats.Mean(actual)
	if err != nil {
		return Metrics{}, err
	}
	ssTot := 0.0
	for _, y := range actual {
		ssTot += (y - mean) * (y - mean)
	}

	r2 := 0.0
	switch {
	case ssTot != 0:
		r2 = 1 - ssRes/ssTot
	case ssRes == 0:
		r2 = 1
	}
	return Metrics{MAE: mae, MSE: mse, R2: r2}, nil
}
