// Package charts aggregates stored predictions for the dashboard and renders
// them as PNG images.
package charts

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"salarypredict/ml"
)

// DefaultBins is the number of buckets of the salary histogram.
const DefaultBins = 20

// Sample is one stored submission with the salary predicted for it.
type Sample struct {
	Record ml.Record
	Salary float64
}

type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

type GroupMean struct {
	Group string  `json:"group"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

type Point struct {
	YearsOfExperience float64 `json:"years_of_experience"`
	Salary            float64 `json:"salary"`
}

// Summary holds every aggregate shown on the dashboard.
type Summary struct {
	Count        int         `json:"count"`
	MeanSalary   float64     `json:"mean_salary"`
	MedianSalary float64     `json:"median_salary"`
	MinSalary    float64     `json:"min_salary"`
	MaxSalary    float64     `json:"max_salary"`
	Histogram    []Bin       `json:"histogram"`
	ByEducation  []GroupMean `json:"by_education"`
	ByJobTitle   []GroupMean `json:"by_job_title"`
	Experience   []Point     `json:"experience"`
}

// Summarize computes the dashboard aggregates over samples with a finite
// salary. An empty input yields a zero Summary with empty slices.
func Summarize(samples []Sample, bins int) Summary {
	kept := samples[:0:0]
	for _, sample := range samples {
		if !math.IsNaN(sample.Salary) && !math.IsInf(sample.Salary, 0) {
			kept = append(kept, sample)
		}
	}
	samples = kept

	s := Summary{
		Count:       len(samples),
		Histogram:   []Bin{},
		ByEducation: []GroupMean{},
		ByJobTitle:  []GroupMean{},
		Experience:  []Point{},
	}
	if len(samples) == 0 {
		return s
	}

	salaries := make([]float64, len(samples))
	for i, sample := range samples {
		salaries[i] = sample.Salary
		s.Experience = append(s.Experience, Point{
			YearsOfExperience: sample.Record.YearsOfExperience,
			Salary:            sample.Salary,
		})
	}

	s.MeanSalary, _ = stats.Mean(salaries)
	s.MedianSalary, _ = stats.Median(salaries)
	s.MinSalary, _ = stats.Min(salaries)
	s.MaxSalary, _ = stats.Max(salaries)
	s.Histogram = Histogram(salaries, bins)
	s.ByEducation = MeanBy(samples, func(r ml.Record) string { return r.EducationLevel })
	s.ByJobTitle = MeanBy(samples, func(r ml.Record) string { return r.JobTitle })
	return s
}

// Histogram splits values into bins equal-width buckets between their minimum
// and maximum. The last bucket includes the maximum. NaN and infinite values
// are skipped. When every value is the same, or the range is too wide to split,
// a single bucket holds them all.
func Histogram(values []float64, bins int) []Bin {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return []Bin{}
	}
	if bins <= 0 {
		bins = DefaultBins
	}
	lo, _ := stats.Min(finite)
	hi, _ := stats.Max(finite)
	width := (hi - lo) / float64(bins)
	if width == 0 || math.IsInf(width, 0) || math.IsNaN(width) {
		return []Bin{{Lower: lo, Upper: hi, Count: len(finite)}}
	}

	out := make([]Bin, bins)
	for i := range out {
		out[i].Lower = lo + float64(i)*width
		out[i].Upper = lo + float64(i+1)*width
	}
	out[bins-1].Upper = hi

	for _, v := range finite {
		idx := int(math.Floor((v - lo) / width))
		idx = max(0, min(idx, bins-1))
		out[idx].Count++
	}
	return out
}

// MeanBy groups samples by key and returns the mean salary per group, sorted
// ascending by mean and then by group name.
func MeanBy(samples []Sample, key func(ml.Record) string) []GroupMean {
	groups := make(map[string][]float64)
	for _, sample := range samples {
		k := key(sample.Record)
		groups[k] = append(groups[k], sample.Salary)
	}

	out := make([]GroupMean, 0, len(groups))
	for group, salaries := range groups {
		mean, _ := stats.Mean(salaries)
		out = append(out, GroupMean{Group: group, Mean: mean, Count: len(salaries)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Mean != out[j].Mean {
			return out[i].Mean < out[j].Mean
		}
		return out[i].Group < out[j].Group
	})
	return out
}
