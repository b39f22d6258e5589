package ml

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Field names used in feature schemas, error messages and request payloads.
const (
	FieldAge               = "age"
	FieldGender            = "gender"
	FieldEducationLevel    = "education_level"
	FieldJobTitle          = "job_title"
	FieldYearsOfExperience = "years_of_experience"
)

// CategoricalFields lists the one-hot encoded fields in column order.
func CategoricalFields() []string {
	return []string{FieldGender, FieldEducationLevel, FieldJobTitle}
}

// NumericFields lists the passthrough fields in column order.
func NumericFields() []string {
	return []string{FieldAge, FieldYearsOfExperience}
}

// MaxAge bounds the age accepted by ParseRecord.
const MaxAge = 150

// Record is one observation to be scored.
type Record struct {
	Age               float64 `json:"age"`
	Gender            string  `json:"gender"`
	EducationLevel    string  `json:"education_level"`
	JobTitle          string  `json:"job_title"`
	YearsOfExperience float64 `json:"years_of_experience"`
}

// Categorical returns the value of a categorical field.
func (r Record) Categorical(field string) (string, bool) {
	switch field {
	case FieldGender:
		return r.Gender, true
	case FieldEducationLevel:
		return r.EducationLevel, true
	case FieldJobTitle:
		return r.JobTitle, true
	}
	return "", false
}

// Numeric returns the value of a passthrough field.
func (r Record) Numeric(field string) (float64, bool) {
	switch field {
	case FieldAge:
		return r.Age, true
	case FieldYearsOfExperience:
		return r.YearsOfExperience, true
	}
	return 0, false
}

// RecordInput carries untrusted string values from a form, JSON body or CSV row.
type RecordInput struct {
	Age               string
	Gender            string
	EducationLevel    string
	JobTitle          string
	YearsOfExperience string
}

// ParseRecord validates raw input and builds a Record. Categorical labels are
// trimmed and NFC-normalized so visually identical labels share one column.
func ParseRecord(in RecordInput) (Record, error) {
	age, err := parseNumber(FieldAge, in.Age)
	if err != nil {
		return Record{}, err
	}
	if age <= 0 {
		return Record{}, &ParseError{Field: FieldAge, Value: in.Age, Reason: "must be positive"}
	}
	if age > MaxAge {
		return Record{}, &ParseError{Field: FieldAge, Value: in.Age, Reason: fmt.Sprintf("must not exceed %d", MaxAge)}
	}
	years, err := parseNumber(FieldYearsOfExperience, in.YearsOfExperience)
	if err != nil {
		return Record{}, err
	}
	if years < 0 {
		return Record{}, &ParseError{Field: FieldYearsOfExperience, Value: in.YearsOfExperience, Reason: "must not be negative"}
	}
	if years > age {
		return Record{}, &ParseError{Field: FieldYearsOfExperience, Value: in.YearsOfExperience, Reason: "must not exceed age"}
	}

	rec := Record{Age: age, YearsOfExperience: years}
	if rec.Gender, err = parseLabel(FieldGender, in.Gender); err != nil {
		return Record{}, err
	}
	if rec.EducationLevel, err = parseLabel(FieldEducationLevel, in.EducationLevel); err != nil {
		return Record{}, err
	}
	if rec.JobTitle, err = parseLabel(FieldJobTitle, in.JobTitle); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func parseNumber(field, raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, &ParseError{Field: field, Reason: "is required"}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &ParseError{Field: field, Value: raw, Reason: "not a number"}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ParseError{Field: field, Value: raw, Reason: "must be finite"}
	}
	return v, nil
}

func parseLabel(field, raw string) (string, error) {
	s := NormalizeLabel(raw)
	if s == "" {
		return "", &ParseError{Field: field, Reason: "is required"}
	}
	return s, nil
}

// NormalizeLabel trims surrounding whitespace and applies Unicode NFC.
func NormalizeLabel(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
