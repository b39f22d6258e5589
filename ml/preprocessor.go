package ml

import (
	"errors"
	"fmt"
	"sort"
)

// CategoryVocabulary maps each fitted value of one categorical field to its
// index inside that field's one-hot block.
type CategoryVocabulary struct {
	Field      string         `json:"field"`
	Vocabulary map[string]int `json:"vocabulary"`
}

type categoryBlock struct {
	field  string
	index  map[string]int
	offset int
}

// Preprocessor one-hot encodes the categorical fields of a Record and appends
// the numeric fields unchanged. A fitted Preprocessor is read-only and safe for
// concurrent use.
type Preprocessor struct {
	blocks  []categoryBlock
	numeric []string
	width   int
}

// FitPreprocessor learns the vocabulary of every categorical field. Values are
// indexed in lexicographic order so refitting on the same data reproduces the
// same column layout.
func FitPreprocessor(records []Record) (*Preprocessor, error) {
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}

	vocabs := make([]CategoryVocabulary, 0, len(CategoricalFields()))
	for _, field := range CategoricalFields() {
		seen := make(map[string]struct{})
		for _, rec := range records {
			value, _ := rec.Categorical(field)
			seen[value] = struct{}{}
		}
		values := make([]string, 0, len(seen))
		for value := range seen {
			values = append(values, value)
		}
		sort.Strings(values)

		vocab := make(map[string]int, len(values))
		for i, value := range values {
			vocab[value] = i
		}
		vocabs = append(vocabs, CategoryVocabulary{Field: field, Vocabulary: vocab})
	}
	return NewPreprocessor(vocabs, NumericFields())
}

// NewPreprocessor rebuilds a Preprocessor from a stored schema. Each vocabulary
// must use the indices 0..n-1 exactly once.
func NewPreprocessor(vocabs []CategoryVocabulary, numeric []string) (*Preprocessor, error) {
	if len(vocabs) == 0 && len(numeric) == 0 {
		return nil, errors.New("empty feature schema")
	}

	p := &Preprocessor{}
	seenFields := make(map[string]bool)
	offset := 0
	for _, vocab := range vocabs {
		if _, ok := (Record{}).Categorical(vocab.Field); !ok {
			return nil, fmt.Errorf("unknown categorical field %q", vocab.Field)
		}
		if seenFields[vocab.Field] {
			return nil, fmt.Errorf("duplicate field %q", vocab.Field)
		}
		seenFields[vocab.Field] = true
		if len(vocab.Vocabulary) == 0 {
			return nil, fmt.Errorf("empty vocabulary for field %q", vocab.Field)
		}

		used := make([]bool, len(vocab.Vocabulary))
		index := make(map[string]int, len(vocab.Vocabulary))
		for value, idx := range vocab.Vocabulary {
			if idx < 0 || idx >= len(used) || used[idx] {
				return nil, fmt.Errorf("field %q: invalid index %d for %q", vocab.Field, idx, value)
			}
			used[idx] = true
			index[value] = idx
		}

		p.blocks = append(p.blocks, categoryBlock{field: vocab.Field, index: index, offset: offset})
		offset += len(index)
	}

	for _, field := range numeric {
		if _, ok := (Record{}).Numeric(field); !ok {
			return nil, fmt.Errorf("unknown numeric field %q", field)
		}
		if seenFields[field] {
			return nil, fmt.Errorf("duplicate field %q", field)
		}
		seenFields[field] = true
	}
	p.numeric = append([]string(nil), numeric...)
	p.width = offset + len(numeric)
	return p, nil
}

// Transform maps a record into the fitted feature space. Unseen categorical
// values fail with *UnknownCategoryError.
func (p *Preprocessor) Transform(rec Record) ([]float64, error) {
	if p == nil || p.width == 0 {
		return nil, ErrNotFitted
	}

	vector := make([]float64, p.width)
	for _, block := range p.blocks {
		value, _ := rec.Categorical(block.field)
		idx, ok := block.index[value]
		if !ok {
			return nil, &UnknownCategoryError{Field: block.field, Value: value}
		}
		vector[block.offset+idx] = 1
	}

	col := p.width - len(p.numeric)
	for _, field := range p.numeric {
		vector[col], _ = rec.Numeric(field)
		col++
	}
	return vector, nil
}

// TransformAll transforms records in order and stops at the first error.
func (p *Preprocessor) TransformAll(records []Record) ([][]float64, error) {
	vectors := make([][]float64, len(records))
	for i, rec := range records {
		vector, err := p.Transform(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		vectors[i] = vector
	}
	return vectors, nil
}

// Width is the length of every vector produced by Transform.
func (p *Preprocessor) Width() int {
	return p.width
}

// Columns names every feature column, e.g. "education_level=Bachelor's".
func (p *Preprocessor) Columns() []string {
	columns := make([]string, p.width)
	for _, block := range p.blocks {
		for value, idx := range block.index {
			columns[block.offset+idx] = block.field + "=" + value
		}
	}
	col := p.width - len(p.numeric)
	for _, field := range p.numeric {
		columns[col] = field
		col++
	}
	return columns
}

// Vocabularies returns a copy of the fitted schema in column order.
func (p *Preprocessor) Vocabularies() []CategoryVocabulary {
	vocabs := make([]CategoryVocabulary, len(p.blocks))
	for i, block := range p.blocks {
		vocab := make(map[string]int, len(block.index))
		for value, idx := range block.index {
			vocab[value] = idx
		}
		vocabs[i] = CategoryVocabulary{Field: block.field, Vocabulary: vocab}
	}
	return vocabs
}

// NumericColumns returns the passthrough fields in column order.
func (p *Preprocessor) NumericColumns() []string {
	return append([]string(nil), p.numeric...)
}
