package ml

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fixtureArtifact lays out ten columns:
//
//	0-2 gender (Female, Male, Other)
//	3-5 education_level (Associate, Bachelor's, Master's)
//	6-7 job_title (Engineer, Manager)
//	8   age
//	9   years_of_experience
func fixtureArtifact(t *testing.T) *Artifact {
	t.Helper()
	p, err := NewPreprocessor([]CategoryVocabulary{
		{Field: FieldGender, Vocabulary: map[string]int{"Female": 0, "Male": 1, "Other": 2}},
		{Field: FieldEducationLevel, Vocabulary: map[string]int{"Associate": 0, "Bachelor's": 1, "Master's": 2}},
		{Field: FieldJobTitle, Vocabulary: map[string]int{"Engineer": 0, "Manager": 1}},
	}, NumericFields())
	require.NoError(t, err)

	coef := make([]float64, 10)
	coef[4] = 1500
	coef[9] = 2000
	a, err := NewArtifact(p, &LinearRegression{Coefficients: coef, Intercept: 40000}, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)
	return a
}

func fixtureRecord() Record {
	return Record{
		Age:               30,
		Gender:            "Female",
		EducationLevel:    "Bachelor's",
		JobTitle:          "Engineer",
		YearsOfExperience: 5,
	}
}

// syntheticExamples follows an exact linear rule over a full one-hot design.
func syntheticExamples() []Example {
	genders := []string{"Male", "Female"}
	genderEffect := map[string]float64{"Male": 1200, "Female": 0}
	educations := []string{"Bachelor's", "Master's", "PhD"}
	educationEffect := map[string]float64{"Bachelor's": 0, "Master's": 8000, "PhD": 15000}
	jobs := []string{"Analyst", "Engineer", "Manager"}
	jobEffect := map[string]float64{"Analyst": 0, "Engineer": 12000, "Manager": 20000}

	examples := make([]Example, 0, 72)
	for i := 0; i < 72; i++ {
		rec := Record{
			Age:               float64(25 + (i*7)%20),
			Gender:            genders[i%2],
			EducationLevel:    educations[(i/2)%3],
			JobTitle:          jobs[(i/6)%3],
			YearsOfExperience: float64(i % 11),
		}
		salary := 30000 + genderEffect[rec.Gender] + educationEffect[rec.EducationLevel] +
			jobEffect[rec.JobTitle] + 500*rec.Age + 2000*rec.YearsOfExperience
		examples = append(examples, Example{Record: rec, Salary: salary})
	}
	return examples
}
