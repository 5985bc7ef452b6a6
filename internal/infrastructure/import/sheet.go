package csvimport

import (
	"fmt"
	"path/filepath"
	"strings"
)

// RowReader is the common surface of the CSV and XLSX readers
type RowReader interface {
	Headers() []string
	HasHeader(name string) bool
	ReadAllRows() ([]*Row, error)
}

// Row represents a parsed row with its data and 1-based line number
type Row struct {
	LineNumber int
	Data       map[string]string
	RawFields  []string
}

func newRow(line int, headers, record []string, trim bool) *Row {
	row := &Row{
		LineNumber: line,
		Data:       make(map[string]string, len(headers)),
		RawFields:  record,
	}
	for i, header := range headers {
		if header == "" {
			continue
		}
		if _, seen := row.Data[header]; seen {
			continue
		}
		value := ""
		if i < len(record) {
			value = record[i]
			if trim {
				value = trimSpaces(value)
			}
		}
		row.Data[header] = value
	}
	return row
}

// Get returns the value for a column by header name
func (r *Row) Get(header string) string {
	return r.Data[header]
}

// GetOrDefault returns the value for a column, or default if not present
func (r *Row) GetOrDefault(header, defaultVal string) string {
	if val, ok := r.Data[header]; ok && val != "" {
		return val
	}
	return defaultVal
}

// IsEmpty returns true if the row has no non-empty values
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// Format identifies a sheet file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat returns the format implied by a file name
func DetectFormat(fileName string) (Format, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, fileName)
}

// Open returns a reader positioned after the header row
func Open(fileName string, data []byte, normalize func(string) string) (RowReader, error) {
	format, err := DetectFormat(fileName)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatXLSX:
		return NewXLSXReader(data, normalize)
	default:
		p, err := ParseFromBytes(data, WithHeaderNormalizer(normalize))
		if err != nil {
			return nil, err
		}
		if err := p.ParseHeader(); err != nil {
			return nil, err
		}
		return p, nil
	}
}

// MissingHeaders returns the required headers the reader lacks
func MissingHeaders(r RowReader, required []string) []string {
	var missing []string
	for _, h := range required {
		if !r.HasHeader(h) {
			missing = append(missing, h)
		}
	}
	return missing
}
