package ml

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitLinearRegressionRecoversCoefficients(t *testing.T) {
	features := [][]float64{
		{1, 2},
		{2, 1},
		{3, 5},
		{4, 3},
		{5, 8},
		{6, 2},
	}
	targets := make([]float64, len(features))
	for i, row := range features {
		targets[i] = 3*row[0] - 2*row[1] + 5
	}

	model, err := FitLinearRegression(features, targets)
	require.NoError(t, err)
	require.Len(t, model.Coefficients, 2)
	assert.InDelta(t, 3, model.Coefficients[0], 1e-9)
	assert.InDelta(t, -2, model.Coefficients[1], 1e-9)
	assert.InDelta(t, 5, model.Intercept, 1e-9)
}

func TestFitLinearRegressionCollinearOneHot(t *testing.T) {
	examples := syntheticExamples()
	p, err := FitPreprocessor(recordsOf(examples))
	require.NoError(t, err)
	records, targets := splitExamples(examples)
	features, err := p.TransformAll(records)
	require.NoError(t, err)

	model, err := FitLinearRegression(features, targets)
	require.NoError(t, err)
	for i, row := range features {
		got, err := model.Predict(row)
		require.NoError(t, err)
		require.InDelta(t, targets[i], got, 1e-4)
	}
}

func TestFitLinearRegressionInputErrors(t *testing.T) {
	_, err := FitLinearRegression(nil, nil)
	assert.ErrorIs(t, err, ErrEmptyDataset)

	_, err = FitLinearRegression([][]float64{{1}, {2}}, []float64{1})
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = FitLinearRegression([][]float64{{1, 2}, {2}}, []float64{1, 2})
	var mismatch *DimensionMismatchError
	assert.True(t, errors.As(err, &mismatch))
}

func TestPredictIsAffine(t *testing.T) {
	model := &LinearRegression{Coefficients: []float64{2, -1, 0.5}, Intercept: 10}
	v := []float64{3, 4, 8}

	first, err := model.Predict(v)
	require.NoError(t, err)
	second, err := model.Predict(v)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 10+6-4+4.0, first)

	// Doubling one coefficient moves the result by that coefficient's term.
	scaled := &LinearRegression{Coefficients: []float64{4, -1, 0.5}, Intercept: 10}
	got, err := scaled.Predict(v)
	require.NoError(t, err)
	assert.Equal(t, first+2*3, got)
}

func TestPredictDimensionMismatch(t *testing.T) {
	model := &LinearRegression{Coefficients: make([]float64, 10), Intercept: 1}
	_, err := model.Predict([]float64{1, 2, 3})

	var mismatch *DimensionMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 10, mismatch.Expected)
	assert.Equal(t, 3, mismatch.Actual)
}

func TestPredictNoClamping(t *testing.T) {
	model := &LinearRegression{Coefficients: []float64{-1000}, Intercept: 0}
	got, err := model.Predict([]float64{50})
	require.NoError(t, err)
	assert.Equal(t, -50000.0, got)
}

func TestComputeMetrics(t *testing.T) {
	m, err := ComputeMetrics([]float64{1, 2, 3, 4}, []float64{1, 3, 3, 2})
	require.NoError(t, err)
	assert.InDelta(t, 0.75, m.MAE, 1e-12)
	assert.InDelta(t, 1.25, m.MSE, 1e-12)
	// ss_res = 5, ss_tot = 5
	assert.InDelta(t, 0, m.R2, 1e-12)

	perfect, err := ComputeMetrics([]float64{7, 7}, []float64{7, 7})
	require.NoError(t, err)
	assert.Equal(t, 1.0, perfect.R2)

	_, err = ComputeMetrics([]float64{1}, nil)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}
