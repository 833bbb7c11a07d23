package pricing

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatPrice(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{9.72, "9.72"},
		{20, "20.00"},
		{999.9, "999.90"},
		{1234.5, "1 234.50"},
		{123456.78, "123 456.78"},
		{1234567, "1 234 567.00"},
		{-1234.5, "-1 234.50"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatPrice(decimal.NewFromFloat(tc.in)), "input %v", tc.in)
	}
}

func TestFormatFloatInvalidInput(t *testing.T) {
	assert.Equal(t, "0.00", FormatFloat(math.NaN()))
	assert.Equal(t, "0.00", FormatFloat(math.Inf(1)))
	assert.Equal(t, "0.00", FormatFloat(math.Inf(-1)))
	assert.Equal(t, "20.00", FormatFloat(20))
}
