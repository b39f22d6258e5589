package ml

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ArtifactSchemaVersion is the layout written by SaveArtifact.
const ArtifactSchemaVersion = 1

// Artifact bundles a fitted preprocessor and the linear model trained on its
// columns. Both halves live in one file so they are always loaded together.
type Artifact struct {
	SchemaVersion int                  `json:"schema_version"`
	Version       string               `json:"version"`
	CreatedAt     time.Time            `json:"created_at"`
	Categorical   []CategoryVocabulary `json:"categorical"`
	NumericFields []string             `json:"numeric_fields"`
	Coefficients  []float64            `json:"coefficients"`
	Intercept     float64              `json:"intercept"`
	Metrics       *Metrics             `json:"metrics,omitempty"`
	TrainRows     int                  `json:"train_rows,omitempty"`
	TestRows      int                  `json:"test_rows,omitempty"`
}

// NewArtifact snapshots a fitted pair. The version is derived from the fitted
// state, so identical fits share a version.
func NewArtifact(p *Preprocessor, m *LinearRegression, createdAt time.Time) (*Artifact, error) {
	if p == nil || m == nil {
		return nil, ErrNotFitted
	}
	if p.Width() != len(m.Coefficients) {
		return nil, &DimensionMismatchError{Expected: len(m.Coefficients), Actual: p.Width()}
	}
	a := &Artifact{
		SchemaVersion: ArtifactSchemaVersion,
		CreatedAt:     createdAt.UTC(),
		Categorical:   p.Vocabularies(),
		NumericFields: p.NumericColumns(),
		Coefficients:  append([]float64(nil), m.Coefficients...),
		Intercept:     m.Intercept,
	}
	version, err := a.contentHash()
	if err != nil {
		return nil, err
	}
	a.Version = version
	return a, nil
}

func (a *Artifact) contentHash() (string, error) {
	payload, err := json.Marshal(struct {
		Categorical   []CategoryVocabulary `json:"categorical"`
		NumericFields []string             `json:"numeric_fields"`
		Coefficients  []float64            `json:"coefficients"`
		Intercept     float64              `json:"intercept"`
	}{a.Categorical, a.NumericFields, a.Coefficients, a.Intercept})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:6]), nil
}

// Build validates the artifact and reconstructs the preprocessor and model.
func (a *Artifact) Build() (*Preprocessor, *LinearRegression, error) {
	if a.SchemaVersion != ArtifactSchemaVersion {
		return nil, nil, fmt.Errorf("unsupported artifact schema version %d", a.SchemaVersion)
	}
	if !finite(a.Intercept) || !finite(a.Coefficients...) {
		return nil, nil, errors.New("artifact contains non-finite parameters")
	}
	p, err := NewPreprocessor(a.Categorical, a.NumericFields)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid feature schema: %w", err)
	}
	if p.Width() != len(a.Coefficients) {
		return nil, nil, &DimensionMismatchError{Expected: len(a.Coefficients), Actual: p.Width()}
	}
	m := &LinearRegression{
		Coefficients: append([]float64(nil), a.Coefficients...),
		Intercept:    a.Intercept,
	}
	return p, m, nil
}

// SaveArtifact writes the artifact to a temporary file next to path and
// renames it into place, so readers never see a partially written pair.
func SaveArtifact(path string, a *Artifact) error {
	if a == nil {
		return errors.New("artifact is nil")
	}
	payload, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
