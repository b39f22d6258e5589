package pipeline

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"salarypredict/ml"
)

// CleaningRule 清洗规则，返回错误表示丢弃该行
type CleaningRule interface {
	Apply(row *SalaryRow) error
	Name() string
}

// QualityIssue 数据质量问题
type QualityIssue struct {
	Rule    string `json:"rule"`
	Line    int    `json:"line"`
	Message string `json:"message"`
}

type CleaningStats struct {
	TotalProcessed int            `json:"total_processed"`
	Passed         int            `json:"passed"`
	Rejected       int            `json:"rejected"`
	Issues         map[string]int `json:"issues"`
}

// DataCleaner 数据清洗器，把原始行转换为训练样本
type DataCleaner struct {
	rules  []CleaningRule
	stats  CleaningStats
	logger *zap.Logger
}

func NewDataCleaner(logger *zap.Logger) *DataCleaner {
	if logger == nil {
		logger = zap.NewNop()
	}
	cleaner := &DataCleaner{
		stats:  CleaningStats{Issues: make(map[string]int)},
		logger: logger,
	}
	cleaner.AddRule(MissingValueRule{})
	cleaner.AddRule(RecordValidationRule{})
	cleaner.AddRule(SalaryValidationRule{})
	return cleaner
}

func (dc *DataCleaner) AddRule(rule CleaningRule) {
	dc.rules = append(dc.rules, rule)
	dc.logger.Debug("added cleaning rule", zap.String("rule", rule.Name()))
}

// Clean 按顺序应用规则，第一个失败的规则决定丢弃原因
func (dc *DataCleaner) Clean(rows []*SalaryRow) ([]ml.Example, []QualityIssue) {
	examples := make([]ml.Example, 0, len(rows))
	var issues []QualityIssue

	for _, row := range rows {
		dc.stats.TotalProcessed++

		issue, ok := dc.check(row)
		if !ok {
			dc.stats.Rejected++
			dc.stats.Issues[issue.Rule]++
			issues = append(issues, issue)
			continue
		}

		example, err := toExample(row)
		if err != nil {
			issue := QualityIssue{Rule: "conversion", Line: row.Line, Message: err.Error()}
			dc.stats.Rejected++
			dc.stats.Issues[issue.Rule]++
			issues = append(issues, issue)
			continue
		}
		dc.stats.Passed++
		examples = append(examples, example)
	}

	dc.logger.Info("cleaned training rows",
		zap.Int("processed", len(rows)),
		zap.Int("passed", len(examples)),
		zap.Int("rejected", len(issues)),
	)
	return examples, issues
}

func (dc *DataCleaner) check(row *SalaryRow) (QualityIssue, bool) {
	for _, rule := range dc.rules {
		if err := rule.Apply(row); err != nil {
			return QualityIssue{Rule: rule.Name(), Line: row.Line, Message: err.Error()}, false
		}
	}
	return QualityIssue{}, true
}

func (dc *DataCleaner) Stats() CleaningStats {
	stats := dc.stats
	stats.Issues = make(map[string]int, len(dc.stats.Issues))
	for k, v := range dc.stats.Issues {
		stats.Issues[k] = v
	}
	return stats
}

// ============ 清洗规则 ============

// MissingValueRule 缺失值规则
type MissingValueRule struct{}

func (MissingValueRule) Name() string { return "missing_value" }

func (MissingValueRule) Apply(row *SalaryRow) error {
	cells := []struct {
		name  string
		value string
	}{
		{"Age", row.Age},
		{"Gender", row.Gender},
		{"Education Level", row.EducationLevel},
		{"Job Title", row.JobTitle},
		{"Years of Experience", row.YearsOfExperience},
		{"Salary", row.Salary},
	}
	for _, cell := range cells {
		if strings.TrimSpace(cell.value) == "" {
			return fmt.Errorf("missing %s", cell.name)
		}
	}
	return nil
}

// RecordValidationRule 字段校验规则，与预测请求相同
type RecordValidationRule struct{}

func (RecordValidationRule) Name() string { return "record_validation" }

func (RecordValidationRule) Apply(row *SalaryRow) error {
	_, err := ml.ParseRecord(row.input())
	return err
}

// SalaryValidationRule 薪资必须为正的有限数
type SalaryValidationRule struct{}

func (SalaryValidationRule) Name() string { return "salary_validation" }

func (SalaryValidationRule) Apply(row *SalaryRow) error {
	_, err := parseSalary(row.Salary)
	return err
}

func (row *SalaryRow) input() ml.RecordInput {
	return ml.RecordInput{
		Age:               row.Age,
		Gender:            row.Gender,
		EducationLevel:    row.EducationLevel,
		JobTitle:          row.JobTitle,
		YearsOfExperience: row.YearsOfExperience,
	}
}

func parseSalary(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("salary %q is not a number", raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, errors.New("salary must be a positive finite number")
	}
	return v, nil
}

func toExample(row *SalaryRow) (ml.Example, error) {
	rec, err := ml.ParseRecord(row.input())
	if err != nil {
		return ml.Example{}, err
	}
	salary, err := parseSalary(row.Salary)
	if err != nil {
		return ml.Example{}, err
	}
	return ml.Example{Record: rec, Salary: salary}, nil
}
