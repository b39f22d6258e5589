package ml

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelinePredictEndToEnd(t *testing.T) {
	p, err := NewPipeline(fixtureArtifact(t))
	require.NoError(t, err)

	info, ok := p.Info()
	require.True(t, ok)
	require.Equal(t, "education_level=Bachelor's", info.Columns[4])
	require.Equal(t, "years_of_experience", info.Columns[9])

	got, err := p.Predict(fixtureRecord())
	require.NoError(t, err)
	assert.Equal(t, 51500.0, got)
}

func TestPipelineUnknownCategory(t *testing.T) {
	p, err := NewPipeline(fixtureArtifact(t))
	require.NoError(t, err)

	rec := fixtureRecord()
	rec.JobTitle = "Astronaut"
	_, err = p.Predict(rec)

	var unknown *UnknownCategoryError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, FieldJobTitle, unknown.Field)
	assert.Equal(t, "Astronaut", unknown.Value)
}

func TestPipelineDimensionMismatch(t *testing.T) {
	narrow, err := NewPreprocessor([]CategoryVocabulary{
		{Field: FieldGender, Vocabulary: map[string]int{"Female": 0}},
	}, NumericFields())
	require.NoError(t, err)
	require.Equal(t, 3, narrow.Width())

	// A transformer and model from different training runs.
	p := &Pipeline{
		transformer: narrow,
		model:       &LinearRegression{Coefficients: make([]float64, 10)},
	}
	_, err = p.Predict(fixtureRecord())

	var mismatch *DimensionMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 10, mismatch.Expected)
	assert.Equal(t, 3, mismatch.Actual)
}

func TestLoadPipelineMissingArtifact(t *testing.T) {
	p, err := LoadPipeline("/nonexistent")
	require.Error(t, err)
	require.NotNil(t, p)
	assert.False(t, p.Ready())
	assert.Empty(t, p.Version())

	var unavailable *ModelUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	for i := 0; i < 3; i++ {
		got, err := p.Predict(fixtureRecord())
		assert.Zero(t, got)
		require.True(t, errors.As(err, &unavailable))
	}
	_, ok := p.Info()
	assert.False(t, ok)
}

func TestLoadPipelineCorruptArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	p, err := LoadPipeline(path)
	var unavailable *ModelUnavailableError
	require.True(t, errors.As(err, &unavailable))
	_, err = p.Predict(fixtureRecord())
	require.True(t, errors.As(err, &unavailable))
}

func TestLoadPipelineRoundTrip(t *testing.T) {
	a := fixtureArtifact(t)
	path := filepath.Join(t.TempDir(), "models", "salary.json")
	require.NoError(t, SaveArtifact(path, a))

	loaded, err := LoadPipeline(path)
	require.NoError(t, err)
	assert.Equal(t, a.Version, loaded.Version())

	inMemory, err := NewPipeline(a)
	require.NoError(t, err)

	want, err := inMemory.Predict(fixtureRecord())
	require.NoError(t, err)
	got, err := loaded.Predict(fixtureRecord())
	require.NoError(t, err)
	assert.Equal(t, math.Float64bits(want), math.Float64bits(got))
}

func TestTrainedPipelineSurvivesSaveLoad(t *testing.T) {
	examples := syntheticExamples()
	a, err := Train(examples, TrainConfig{TestRatio: 0.2, Seed: 42})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "salary.json")
	require.NoError(t, SaveArtifact(path, a))

	trained, err := NewPipeline(a)
	require.NoError(t, err)
	loaded, err := LoadPipeline(path)
	require.NoError(t, err)

	for _, ex := range examples {
		want, err := trained.Predict(ex.Record)
		require.NoError(t, err)
		got, err := loaded.Predict(ex.Record)
		require.NoError(t, err)
		require.Equal(t, math.Float64bits(want), math.Float64bits(got))
	}
}
