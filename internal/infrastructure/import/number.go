package csvimport

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseDecimal parses amounts written with either '.' or ',' as the decimal
// separator, with optional thousands separators and currency symbols.
// "1.234,56", "1,234.56", "R$ 10,5" and "US$12" are all accepted.
func ParseDecimal(value string) (decimal.Decimal, error) {
	s := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',', r == '-':
			return r
		}
		return -1
	}, value)
	if s == "" || s == "-" {
		return decimal.Zero, fmt.Errorf("invalid number: %q", value)
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number: %q", value)
	}
	return d, nil
}

// ParseQuantity parses a whole quantity. Spreadsheet exports such as "5.0" or
// "5,00" are accepted as long as there is no fractional part.
func ParseQuantity(value string) (int64, error) {
	v := trimSpaces(value)
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n, nil
	}
	d, err := ParseDecimal(v)
	if err != nil {
		return 0, err
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("quantity must be a whole number: %q", value)
	}
	return d.IntPart(), nil
}
