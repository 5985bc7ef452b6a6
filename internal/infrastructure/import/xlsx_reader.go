package csvimport

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXReader reads the first worksheet of a workbook. The first non-empty row
// is the header.
type XLSXReader struct {
	sheet     string
	headers   []string
	headerMap map[string]int
	rows      [][]string
	headerRow int
}

// NewXLSXReader opens a workbook from bytes
func NewXLSXReader(data []byte, normalize func(string) string) (*XLSXReader, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}

	r := &XLSXReader{sheet: sheet, rows: rows, headerRow: -1}
	for i, row := range rows {
		if !blank(row) {
			r.headerRow = i
			r.headers, r.headerMap = buildHeaders(row, true, normalize)
			break
		}
	}
	if r.headerRow < 0 {
		return nil, ErrMissingHeader
	}
	return r, nil
}

func blank(row []string) bool {
	for _, v := range row {
		if trimSpaces(v) != "" {
			return false
		}
	}
	return true
}

// Sheet returns the name of the worksheet being read
func (r *XLSXReader) Sheet() string {
	return r.sheet
}

// Headers returns the parsed header names
func (r *XLSXReader) Headers() []string {
	return r.headers
}

// HasHeader checks if a header exists
func (r *XLSXReader) HasHeader(name string) bool {
	_, ok := r.headerMap[name]
	return ok
}

// ReadAllRows returns the data rows below the header, skipping empty ones.
// Line numbers match the worksheet row numbers.
func (r *XLSXReader) ReadAllRows() ([]*Row, error) {
	var out []*Row
	for i := r.headerRow + 1; i < len(r.rows); i++ {
		row := newRow(i+1, r.headers, r.rows[i], true)
		if row.IsEmpty() {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}
