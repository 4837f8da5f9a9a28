package parse

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12", "12"},
		{"1,234.50", "1234.5"},
		{"1.234,50", "1234.5"},
		{"1,234", "1234"},
		{"1,5", "1.5"},
		{"1.5", "1.5"},
		{"$12.00", "12"},
		{"USD 1,200", "1200"},
		{"HK$ 88", "88"},
		{"€ 3,50", "3.5"},
		{"12 EUR", "12"},
		{"1 000", "1000"},
		{"1'000.25", "1000.25"},
		{"1,234,567.89", "1234567.89"},
		{"1.234.567", "1234567"},
		{"-5", "-5"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDecimal(tt.in)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestParseDecimal_Rejects(t *testing.T) {
	for _, in := range []string{"", "abc", "N/A", "1,2,3", "1.234.5", "12..5", "1.234,5.6", "ten"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseDecimal(in)
			assert.Error(t, err)
		})
	}
}
