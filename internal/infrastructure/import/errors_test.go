package csvimport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowError(t *testing.T) {
	t.Run("Error with column", func(t *testing.T) {
		err := NewRowError(5, "quantity", ErrCodeImportInvalidType, "expected whole number")
		assert.Equal(t, "row 5, column 'quantity': expected whole number", err.Error())
	})

	t.Run("Error without column", func(t *testing.T) {
		err := NewRowError(10, "", ErrCodeImportValidation, "malformed row")
		assert.Equal(t, "row 10: malformed row", err.Error())
	})
}

func TestErrorCollection(t *testing.T) {
	t.Run("Add errors within limit", func(t *testing.T) {
		ec := NewErrorCollection(10)

		ec.AddRequiredError(2, "quantity")
		ec.AddTypeError(3, "unit_price", "number", "abc")
		ec.AddUnknownProductError(4, "sku", "X-1")

		assert.Equal(t, 3, ec.Count())
		assert.True(t, ec.HasErrors())
		assert.False(t, ec.IsTruncated())
		assert.Equal(t, map[string]int{
			ErrCodeImportRequiredField:  1,
			ErrCodeImportInvalidType:    1,
			ErrCodeImportUnknownProduct: 1,
		}, ec.ErrorSummary())
	})

	t.Run("Truncates beyond limit", func(t *testing.T) {
		ec := NewErrorCollection(2)
		for i := 0; i < 5; i++ {
			ec.AddRequiredError(i+2, "sku")
		}

		assert.Equal(t, 2, ec.Count())
		assert.Equal(t, 5, ec.TotalCount())
		assert.True(t, ec.IsTruncated())
		assert.Contains(t, ec.String(), "showing first 2")
	})

	t.Run("Clear", func(t *testing.T) {
		ec := NewErrorCollection(5)
		ec.AddRangeError(2, "quantity", "greater than zero", "0")
		ec.Clear()

		assert.False(t, ec.HasErrors())
		assert.Equal(t, "no errors", ec.String())
	})
}

func TestLengthErrorMessages(t *testing.T) {
	ec := NewErrorCollection(10)
	ec.AddLengthError(1, "description", 0, 500)

	errs := ec.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "length must be at most 500", errs[0].Message)
}
