package ml

import (
	"time"
)

// ArtifactInfo describes the artifact a pipeline serves.
type ArtifactInfo struct {
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	Columns   []string  `json:"columns"`
	Intercept float64   `json:"intercept"`
	Metrics   *Metrics  `json:"metrics,omitempty"`
	TrainRows int       `json:"train_rows,omitempty"`
	TestRows  int       `json:"test_rows,omitempty"`
}

// Pipeline applies a preprocessor and a model that were fitted together.
// A Pipeline is immutable; share one value between all request handlers.
type Pipeline struct {
	transformer Transformer
	model       Regressor
	info        ArtifactInfo
	unavailable *ModelUnavailableError
}

// NewPipeline wraps an in-memory artifact.
func NewPipeline(a *Artifact) (*Pipeline, error) {
	p, m, err := a.Build()
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		transformer: p,
		model:       m,
		info: ArtifactInfo{
			Version:   a.Version,
			CreatedAt: a.CreatedAt,
			Columns:   p.Columns(),
			Intercept: m.Intercept,
			Metrics:   a.Metrics,
			TrainRows: a.TrainRows,
			TestRows:  a.TestRows,
		},
	}, nil
}

// LoadPipeline loads the artifact at path. On failure it still returns a
// usable Pipeline in the disabled state together with a
// *ModelUnavailableError; every Predict on it fails with the same error.
func LoadPipeline(path string) (*Pipeline, error) {
	a, err := LoadArtifact(path)
	if err != nil {
		return disabledPipeline(path, err)
	}
	p, err := NewPipeline(a)
	if err != nil {
		return disabledPipeline(path, err)
	}
	return p, nil
}

func disabledPipeline(path string, cause error) (*Pipeline, error) {
	unavailable := &ModelUnavailableError{Path: path, cause: cause}
	return &Pipeline{unavailable: unavailable}, unavailable
}

// Predict scores one record.
func (p *Pipeline) Predict(rec Record) (float64, error) {
	if p.unavailable != nil {
		return 0, p.unavailable
	}
	features, err := p.transformer.Transform(rec)
	if err != nil {
		return 0, err
	}
	return p.model.Predict(features)
}

// Ready reports whether the pipeline holds a loaded artifact.
func (p *Pipeline) Ready() bool {
	return p.unavailable == nil
}

// Info describes the loaded artifact; ok is false for a disabled pipeline.
func (p *Pipeline) Info() (ArtifactInfo, bool) {
	if p.unavailable != nil {
		return ArtifactInfo{}, false
	}
	info := p.info
	info.Columns = append([]string(nil), p.info.Columns...)
	return info, true
}

// Version is the artifact version, or "" when disabled.
func (p *Pipeline) Version() string {
	return p.info.Version
}
