package ml

import (
	"math"
	"math/rand"
)

// Example is a labeled training observation.
type Example struct {
	Record Record
	Salary float64
}

func splitExamples(examples []Example) ([]Record, []float64) {
	records := make([]Record, len(examples))
	salaries := make([]float64, len(examples))
	for i, ex := range examples {
		records[i] = ex.Record
		salaries[i] = ex.Salary
	}
	return records, salaries
}

// SplitDataset shuffles examples with the given seed and holds out
// ceil(n*testRatio) of them. Ratios outside (0, 1) fall back to 0.2. The
// training side always keeps at least one example.
func SplitDataset(examples []Example, testRatio float64, seed int64) (train, test []Example) {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}
	rnd := rand.New(rand.NewSource(seed))
	indices := rnd.Perm(len(examples))

	nTest := int(math.Ceil(float64(len(examples)) * testRatio))
	split := max(len(examples)-nTest, 1)
	for i, idx := range indices {
		if i < split {
			train = append(train, examples[idx])
		} else {
			test = append(test, examples[idx])
		}
	}
	return train, test
}
