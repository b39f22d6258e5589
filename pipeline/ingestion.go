package pipeline

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// SalaryRow 薪资数据原始行，清洗前保留字符串以区分缺失值和0
type SalaryRow struct {
	Age               string `csv:"Age"`
	Gender            string `csv:"Gender"`
	EducationLevel    string `csv:"Education Level"`
	JobTitle          string `csv:"Job Title"`
	YearsOfExperience string `csv:"Years of Experience"`
	Salary            string `csv:"Salary"`

	// 源文件行号，从1开始
	Line int `csv:"-"`
}

// ReadSalaryCSV 读取带表头的UTF-8 CSV
func ReadSalaryCSV(r io.Reader) ([]*SalaryRow, error) {
	return ReadSalaryCSVEncoded(r, "")
}

// ReadSalaryCSVEncoded 按指定编码读取CSV，如"gbk"、"windows-1252"，为空时使用UTF-8
// 开头的BOM会被去掉
func ReadSalaryCSVEncoded(r io.Reader, charset string) ([]*SalaryRow, error) {
	if charset == "" {
		charset = "utf-8"
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", charset, err)
	}
	utf8Reader := transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder()))

	var rows []*SalaryRow
	if err := gocsv.Unmarshal(utf8Reader, &rows); err != nil {
		return nil, fmt.Errorf("decode salary csv: %w", err)
	}
	for i, row := range rows {
		row.Line = i + 2
	}
	return rows, nil
}

func LoadSalaryCSV(path, charset string) ([]*SalaryRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSalaryCSVEncoded(f, charset)
}
