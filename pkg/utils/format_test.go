package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{80, "$80.00"},
		{-80, "-$80.00"},
		{1234.5, "$1,234.50"},
		{-1234.5, "-$1,234.50"},
		{1000000, "$1,000,000.00"},
		{999.999, "$1,000.00"},
		{-0.004, "-$0.00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCurrency(tt.in), "input %f", tt.in)
	}
}

func TestFormatPercent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "20.0%", FormatPercent(0.2))
	assert.Equal(t, "0.0%", FormatPercent(0))
	assert.Equal(t, "100.0%", FormatPercent(1))
	assert.Equal(t, "33.3%", FormatPercent(1.0/3.0))
}

func TestFormatSignedPercent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "+12.5%", FormatSignedPercent(12.5))
	assert.Equal(t, "-3.0%", FormatSignedPercent(-3))
	assert.Equal(t, "0.0%", FormatSignedPercent(0))
}

func TestFormatHour(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "09:00-10:00", FormatHour(9))
	assert.Equal(t, "00:00-01:00", FormatHour(0))
	assert.Equal(t, "23:00-00:00", FormatHour(23))
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "lon...", Truncate("long string", 6))
	assert.Equal(t, "exactly", Truncate("exactly", 7))
}
