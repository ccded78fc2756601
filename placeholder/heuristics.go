package placeholder

import "math"

// GCD returns the greatest common divisor of x and y.
func GCD(x, y int) int {
	for y != 0 {
		x, y = y, x%y
	}
	if x < 0 {
		return -x
	}
	return x
}

// MinSize returns the minimum encoded size in bytes for a width x height
// image to reach bitsPerPixel.
func MinSize(width, height int, bitsPerPixel float64) float64 {
	return float64(width) * float64(height) * bitsPerPixel / 8
}

// ReducedDimensions returns the smallest integer dimensions with the same
// aspect ratio, e.g. 1920x1080 -> 16x9.
func ReducedDimensions(width, height int) (int, int, error) {
	if width <= 0 || height <= 0 {
		return 0, 0, ErrEmptyImage
	}
	d := GCD(width, height)
	return width / d, height / d, nil
}

// LQIPDimensions divides both sides by divisor, rounding half away from zero.
// Each side is at least one pixel.
func LQIPDimensions(width, height, divisor int) (int, int) {
	if divisor <= 0 {
		divisor = 1
	}
	w := int(math.Round(float64(width) / float64(divisor)))
	h := int(math.Round(float64(height) / float64(divisor)))
	return max(w, 1), max(h, 1)
}
