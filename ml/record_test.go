package ml

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() RecordInput {
	return RecordInput{
		Age:               "32",
		Gender:            "Male",
		EducationLevel:    "Bachelor's",
		JobTitle:          "Software Engineer",
		YearsOfExperience: "5",
	}
}

func TestParseRecord(t *testing.T) {
	in := validInput()
	in.JobTitle = "  Software Engineer "
	rec, err := ParseRecord(in)
	require.NoError(t, err)
	assert.Equal(t, Record{
		Age:               32,
		Gender:            "Male",
		EducationLevel:    "Bachelor's",
		JobTitle:          "Software Engineer",
		YearsOfExperience: 5,
	}, rec)
}

func TestParseRecordNormalizesUnicode(t *testing.T) {
	in := validInput()
	in.JobTitle = "Cafe\u0301 Manager"
	rec, err := ParseRecord(in)
	require.NoError(t, err)
	assert.Equal(t, "Caf\u00e9 Manager", rec.JobTitle)
}

func TestParseRecordErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *RecordInput)
		field  string
	}{
		{"missing age", func(in *RecordInput) { in.Age = "" }, FieldAge},
		{"age not a number", func(in *RecordInput) { in.Age = "thirty" }, FieldAge},
		{"age zero", func(in *RecordInput) { in.Age = "0" }, FieldAge},
		{"age infinite", func(in *RecordInput) { in.Age = "Inf" }, FieldAge},
		{"age NaN", func(in *RecordInput) { in.Age = "NaN" }, FieldAge},
		{"age overflow", func(in *RecordInput) { in.Age = "1e308" }, FieldAge},
		{"age above bound", func(in *RecordInput) { in.Age = "151" }, FieldAge},
		{"experience above age", func(in *RecordInput) { in.YearsOfExperience = "40" }, FieldYearsOfExperience},
		{"negative experience", func(in *RecordInput) { in.YearsOfExperience = "-1" }, FieldYearsOfExperience},
		{"missing experience", func(in *RecordInput) { in.YearsOfExperience = " " }, FieldYearsOfExperience},
		{"blank gender", func(in *RecordInput) { in.Gender = "   " }, FieldGender},
		{"missing education", func(in *RecordInput) { in.EducationLevel = "" }, FieldEducationLevel},
		{"missing job title", func(in *RecordInput) { in.JobTitle = "" }, FieldJobTitle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := ParseRecord(in)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr), "got %v", err)
			assert.Equal(t, tt.field, parseErr.Field)
		})
	}
}

func TestParseRecordZeroExperienceAllowed(t *testing.T) {
	in := validInput()
	in.YearsOfExperience = "0"
	rec, err := ParseRecord(in)
	require.NoError(t, err)
	assert.Zero(t, rec.YearsOfExperience)
}

func TestParseRecordUpperBounds(t *testing.T) {
	in := validInput()
	in.Age = "150"
	in.YearsOfExperience = "150"
	rec, err := ParseRecord(in)
	require.NoError(t, err)
	assert.Equal(t, float64(MaxAge), rec.Age)
	assert.Equal(t, rec.Age, rec.YearsOfExperience)
}
