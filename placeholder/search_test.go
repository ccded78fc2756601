package placeholder

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchQuality_StartsAtZero(t *testing.T) {
	b := NewBackend(noisyImage(16, 16), "jpeg", 85)

	result, err := SearchQuality(b, 0, 5, 90)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Quality)
	assert.Equal(t, 1, result.Attempts)
	assert.True(t, result.Reached)
	assert.Positive(t, result.Size)
}

func TestSearchQuality_StepsUntilMax(t *testing.T) {
	b := NewBackend(flatImage(8, 8, color.RGBA{1, 2, 3, 255}), "jpeg", 85)

	result, err := SearchQuality(b, 1<<20, 5, 90)
	require.NoError(t, err)
	assert.Equal(t, 90, result.Quality)
	// 0, 5, 10, ..., 90
	assert.Equal(t, 19, result.Attempts)
	assert.False(t, result.Reached)
}

func TestSearchQuality_ClampsLastStep(t *testing.T) {
	b := NewBackend(flatImage(8, 8, color.RGBA{1, 2, 3, 255}), "jpeg", 85)

	result, err := SearchQuality(b, 1<<20, 7, 90)
	require.NoError(t, err)
	assert.Equal(t, 90, result.Quality)
	// 0, 7, ..., 84, 90
	assert.Equal(t, 14, result.Attempts)
}

func TestSearchQuality_SizeGrowsWithQuality(t *testing.T) {
	b := NewBackend(noisyImage(48, 48), "jpeg", 85)

	low, err := SearchQuality(b, 0, 5, 90)
	require.NoError(t, err)

	high, err := SearchQuality(b, float64(low.Size+1), 5, 90)
	require.NoError(t, err)

	assert.Greater(t, high.Quality, low.Quality)
	assert.Greater(t, high.Size, low.Size)
	assert.True(t, high.Reached)
}

func TestSearchQuality_InvalidStep(t *testing.T) {
	b := NewBackend(noisyImage(4, 4), "jpeg", 85)

	_, err := SearchQuality(b, 100, 0, 90)
	assert.Error(t, err)
}

func TestSearchQuality_EmptyImage(t *testing.T) {
	_, err := SearchQuality(NewBackend(nil, "jpeg", 85), 100, 5, 90)
	assert.ErrorIs(t, err, ErrEmptyImage)
}

func TestSearchQuality_LosslessEncodesOnce(t *testing.T) {
	b := NewBackend(flatImage(8, 8, color.RGBA{1, 2, 3, 255}), "png", 85)

	result, err := SearchQuality(b, 1<<20, 5, 90)
	require.NoError(t, err)
	assert.Equal(t, 90, result.Quality)
	assert.Equal(t, 1, result.Attempts)
	assert.False(t, result.Reached)

	result, err = SearchQuality(b, 0, 5, 90)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Quality)
	assert.Equal(t, 1, result.Attempts)
	assert.True(t, result.Reached)
}

func TestSearchQuality_UnencodableSourceIsLossless(t *testing.T) {
	// bmp is written as png
	b := NewBackend(flatImage(8, 8, color.RGBA{1, 2, 3, 255}), "bmp", 85)

	result, err := SearchQuality(b, 1<<20, 5, 90)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Attempts)
}
