package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"100", "100", true},
		{" 0.01 ", "0.01", true},
		{"12abc", "12", true},
		{".5", "0.5", true},
		{"-3", "-3", true},
		{"1e3", "1000", true},
		{"abc", "0", false},
		{"", "0", false},
		{"₹100", "0", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Parse(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestIsPositive(t *testing.T) {
	assert.False(t, IsPositive("0"))
	assert.False(t, IsPositive(""))
	assert.False(t, IsPositive("abc"))
	assert.False(t, IsPositive("-5"))
	assert.True(t, IsPositive("0.01"))
}

func TestSumAvoidsFloatDrift(t *testing.T) {
	got := Sum("0.1", "0.2", "junk")
	require.Equal(t, "0.3", Format(got))
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "₹1000", Display("₹", decimal.NewFromInt(1000)))
	assert.Equal(t, "₹33.33", Display("₹", decimal.RequireFromString("33.3333")))
}
