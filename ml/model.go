package ml

// Regressor scores a single feature vector.
type Regressor interface {
	Predict(features []float64) (float64, error)
}

// Transformer maps a record into a feature vector.
type Transformer interface {
	Transform(rec Record) ([]float64, error)
	Width() int
}

var (
	_ Regressor   = (*LinearRegression)(nil)
	_ Transformer = (*Preprocessor)(nil)
)
