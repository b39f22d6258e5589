package pipeline

import (
	"strings"
	"testing"
)

const sampleCSV = `Age,Gender,Education Level,Job Title,Years of Experience,Salary
32,Male,Bachelor's,Software Engineer,5,90000
28,Female,Master's,Data Analyst,3,65000
45,Male,PhD,Senior Manager,15,150000
,Female,Bachelor's,Sales Associate,2,40000
36,Female,Master's,,8,80000
29,Male,Bachelor's,Software Engineer,-1,70000
31,Female,Bachelor's,Data Analyst,4,abc
`

func TestReadSalaryCSV(t *testing.T) {
	rows, err := ReadSalaryCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 7 {
		t.Fatalf("expected 7 rows, got %d", len(rows))
	}
	first := rows[0]
	if first.EducationLevel != "Bachelor's" || first.JobTitle != "Software Engineer" {
		t.Fatalf("unexpected first row: %+v", first)
	}
	if first.Line != 2 || rows[6].Line != 8 {
		t.Fatalf("unexpected line numbers: %d, %d", first.Line, rows[6].Line)
	}
}

func TestDataCleanerClean(t *testing.T) {
	rows, err := ReadSalaryCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cleaner := NewDataCleaner(nil)
	examples, issues := cleaner.Clean(rows)
	if len(examples) != 3 {
		t.Fatalf("expected 3 examples, got %d", len(examples))
	}
	if len(issues) != 4 {
		t.Fatalf("expected 4 issues, got %d: %+v", len(issues), issues)
	}

	if examples[2].Salary != 150000 || examples[2].Record.YearsOfExperience != 15 {
		t.Fatalf("unexpected example: %+v", examples[2])
	}

	stats := cleaner.Stats()
	if stats.TotalProcessed != 7 || stats.Passed != 3 || stats.Rejected != 4 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.Issues["missing_value"] != 2 {
		t.Errorf("expected 2 missing_value issues, got %d", stats.Issues["missing_value"])
	}
	if stats.Issues["record_validation"] != 1 {
		t.Errorf("expected 1 record_validation issue, got %d", stats.Issues["record_validation"])
	}
	if stats.Issues["salary_validation"] != 1 {
		t.Errorf("expected 1 salary_validation issue, got %d", stats.Issues["salary_validation"])
	}
}

func TestRules(t *testing.T) {
	valid := SalaryRow{
		Age:               "30",
		Gender:            "Male",
		EducationLevel:    "Bachelor's",
		JobTitle:          "Engineer",
		YearsOfExperience: "4",
		Salary:            "50000",
	}

	tests := []struct {
		name    string
		rule    CleaningRule
		mutate  func(r *SalaryRow)
		wantErr bool
	}{
		{"complete row", MissingValueRule{}, func(r *SalaryRow) {}, false},
		{"blank salary", MissingValueRule{}, func(r *SalaryRow) { r.Salary = " " }, true},
		{"valid record", RecordValidationRule{}, func(r *SalaryRow) {}, false},
		{"age zero", RecordValidationRule{}, func(r *SalaryRow) { r.Age = "0" }, true},
		{"valid salary", SalaryValidationRule{}, func(r *SalaryRow) {}, false},
		{"negative salary", SalaryValidationRule{}, func(r *SalaryRow) { r.Salary = "-10" }, true},
		{"zero salary", SalaryValidationRule{}, func(r *SalaryRow) { r.Salary = "0" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := valid
			tt.mutate(&row)
			err := tt.rule.Apply(&row)
			if (err != nil) != tt.wantErr {
				t.Errorf("Apply() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestReadSalaryCSVStripsBOM(t *testing.T) {
	rows, err := ReadSalaryCSV(strings.NewReader("\ufeff" + sampleCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows[0].Age != "32" {
		t.Fatalf("header not matched after BOM: %+v", rows[0])
	}
}

func TestReadSalaryCSVEncoded(t *testing.T) {
	// GBK编码的"工程师"
	gbk := "Age,Gender,Education Level,Job Title,Years of Experience,Salary\n" +
		"30,Male,Bachelor's,\xb9\xa4\xb3\xcc\xca\xa6,4,50000\n"
	rows, err := ReadSalaryCSVEncoded(strings.NewReader(gbk), "gbk")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows[0].JobTitle != "工程师" {
		t.Fatalf("unexpected job title %q", rows[0].JobTitle)
	}

	if _, err := ReadSalaryCSVEncoded(strings.NewReader(gbk), "klingon"); err == nil {
		t.Fatal("expected error for unknown encoding")
	}
}
