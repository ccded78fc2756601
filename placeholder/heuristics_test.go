package placeholder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGCD(t *testing.T) {
	tests := []struct {
		x, y     int
		expected int
	}{
		{1920, 1080, 120},
		{1080, 1920, 120},
		{800, 600, 200},
		{7, 13, 1},
		{100, 100, 100},
		{42, 0, 42},
		{0, 42, 42},
		{0, 0, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, GCD(tt.x, tt.y), "GCD(%d, %d)", tt.x, tt.y)
	}
}

func TestMinSize(t *testing.T) {
	assert.InDelta(t, 14256.0, MinSize(1920, 1080, 0.055), 0.0001)
	assert.InDelta(t, 100.0, MinSize(100, 80, 0.1), 0.0001)
	assert.Equal(t, 0.0, MinSize(0, 1080, 0.055))
}

func TestReducedDimensions(t *testing.T) {
	tests := []struct {
		name           string
		width, height  int
		expectedWidth  int
		expectedHeight int
	}{
		{"full hd", 1920, 1080, 16, 9},
		{"four by three", 800, 600, 4, 3},
		{"portrait", 600, 900, 2, 3},
		{"square", 512, 512, 1, 1},
		{"coprime", 641, 479, 641, 479},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := ReducedDimensions(tt.width, tt.height)
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedWidth, w)
			assert.Equal(t, tt.expectedHeight, h)
		})
	}
}

func TestReducedDimensions_Empty(t *testing.T) {
	_, _, err := ReducedDimensions(0, 100)
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, _, err = ReducedDimensions(100, 0)
	assert.ErrorIs(t, err, ErrEmptyImage)
}

func TestLQIPDimensions(t *testing.T) {
	tests := []struct {
		name           string
		width, height  int
		divisor        int
		expectedWidth  int
		expectedHeight int
	}{
		{"exact", 800, 600, 8, 100, 75},
		{"round half up", 100, 60, 8, 13, 8},
		{"round down", 99, 57, 8, 12, 7},
		{"tiny clamps to one", 3, 2, 8, 1, 1},
		{"zero divisor treated as one", 40, 30, 0, 40, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := LQIPDimensions(tt.width, tt.height, tt.divisor)
			assert.Equal(t, tt.expectedWidth, w)
			assert.Equal(t, tt.expectedHeight, h)
		})
	}
}
