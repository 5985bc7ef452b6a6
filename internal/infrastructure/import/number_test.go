package csvimport

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"10.5", "10.5"},
		{"10,5", "10.5"},
		{"1.234,56", "1234.56"},
		{"1,234.56", "1234.56"},
		{"1.234.567", "1234567"},
		{"1,234,567", "1234567"},
		{"R$ 12,90", "12.9"},
		{"US$12", "12"},
		{"-3,25", "-3.25"},
		{" 7 ", "7"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDecimal(tt.input)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.expected).Equal(got), "got %s", got)
		})
	}

	t.Run("rejects text", func(t *testing.T) {
		_, err := ParseDecimal("abc")
		assert.Error(t, err)
	})
}

func TestParseQuantity(t *testing.T) {
	n, err := ParseQuantity("12")
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)

	n, err = ParseQuantity("5,00")
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	_, err = ParseQuantity("2.5")
	assert.Error(t, err)

	_, err = ParseQuantity("")
	assert.Error(t, err)
}
