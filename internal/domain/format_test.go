package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatThousands(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{12, "12"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-1234, "-1,234"},
		{-12, "-12"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatThousands(tt.in), "input %d", tt.in)
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		name        string
		part, whole int64
		want        int64
		ok          bool
	}{
		{"whole", 35, 35, 100, true},
		{"fifth", 7, 35, 20, true},
		{"rounds half up", 1, 8, 13, true},
		{"rounds down", 1, 3, 33, true},
		{"growth above whole", 30, 20, 150, true},
		{"zero part", 0, 10, 0, true},
		{"zero whole", 5, 0, 0, false},
		{"both zero", 0, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Percentage(tt.part, tt.whole)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatPercentage(t *testing.T) {
	assert.Equal(t, "20%", FormatPercentage(7, 35))
	assert.Equal(t, "n/a", FormatPercentage(7, 0))
	assert.Equal(t, "1500%", FormatPercentage(15, 1))
}
