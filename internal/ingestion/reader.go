package ingestion

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mr1hm/go-climate-risk/internal/table"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported input format")
	ErrEmptyInput        = errors.New("input has no header row")
	ErrUnknownEncoding   = errors.New("unknown input encoding")
)

// ReadFile reads a tabular file into a table. The format follows the extension:
// .csv (decoded from encoding), .xlsx or .xls (first sheet).
func ReadFile(path, encoding string) (table.Table, error) {
	var (
		records [][]string
		err     error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		records, err = readCSV(path, encoding)
	case ".xlsx":
		records, err = readXLSX(path)
	case ".xls":
		records, err = readXLS(path)
	default:
		return table.Table{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return table.Table{}, fmt.Errorf("error reading %s: %w", path, err)
	}

	header := -1
	for i, r := range records {
		if !blank(r) {
			header = i
			break
		}
	}
	if header < 0 {
		return table.Table{}, fmt.Errorf("%w: %s", ErrEmptyInput, path)
	}

	rows := make([][]string, 0, len(records)-header-1)
	for _, r := range records[header+1:] {
		if blank(r) {
			continue
		}
		rows = append(rows, r)
	}

	return table.New(records[header], rows), nil
}

func blank(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
