package ml

import (
	"fmt"
	"time"
)

type TrainConfig struct {
	TestRatio float64
	Seed      int64
	// Now stamps the artifact; defaults to time.Now.
	Now func() time.Time
}

// Train fits the preprocessor on every example, fits the model on the
// training split and evaluates it on the held-out split. Fitting the
// vocabulary on the full dataset keeps held-out rows from failing on
// categories that only occur there.
func Train(examples []Example, cfg TrainConfig) (*Artifact, error) {
	if len(examples) == 0 {
		return nil, ErrEmptyDataset
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	records, _ := splitExamples(examples)
	preprocessor, err := FitPreprocessor(records)
	if err != nil {
		return nil, fmt.Errorf("fit preprocessor: %w", err)
	}

	train, test := SplitDataset(examples, cfg.TestRatio, cfg.Seed)
	trainRecords, trainY := splitExamples(train)
	trainX, err := preprocessor.TransformAll(trainRecords)
	if err != nil {
		return nil, err
	}
	model, err := FitLinearRegression(trainX, trainY)
	if err != nil {
		return nil, fmt.Errorf("fit model: %w", err)
	}

	artifact, err := NewArtifact(preprocessor, model, now())
	if err != nil {
		return nil, err
	}
	artifact.TrainRows = len(train)
	artifact.TestRows = len(test)

	if len(test) > 0 {
		testRecords, testY := splitExamples(test)
		testX, err := preprocessor.TransformAll(testRecords)
		if err != nil {
			return nil, err
		}
		metrics, err := model.Evaluate(testX, testY)
		if err != nil {
			return nil, fmt.Errorf("evaluate: %w", err)
		}
		artifact.Metrics = &metrics
	}
	return artifact, nil
}
