package placeholder

import (
	"fmt"
	"image/color"
)

const (
	// DefaultMinBitsPerPixel is the BPP threshold for LCP candidates. Chromium
	// ignores images below 0.05 bits per pixel for LCP; this keeps a 10% margin.
	DefaultMinBitsPerPixel = 0.055

	DefaultLQIPDivisor    = 8
	DefaultLCPQualityStep = 5
	DefaultLCPMaxQuality  = 90
)

// DefaultGIPColor is the light grey used for solid placeholders.
var DefaultGIPColor = color.RGBA{R: 230, G: 230, B: 230, A: 255}

// Settings tunes the placeholder heuristics.
type Settings struct {
	MinBitsPerPixel float64
	LQIPDivisor     int
	GIPColor        color.RGBA
	LCPQualityStep  int
	LCPMaxQuality   int
}

// DefaultSettings returns the stock heuristics.
func DefaultSettings() Settings {
	return Settings{
		MinBitsPerPixel: DefaultMinBitsPerPixel,
		LQIPDivisor:     DefaultLQIPDivisor,
		GIPColor:        DefaultGIPColor,
		LCPQualityStep:  DefaultLCPQualityStep,
		LCPMaxQuality:   DefaultLCPMaxQuality,
	}
}

// WithDefaults fills zero fields from DefaultSettings.
func (s Settings) WithDefaults() Settings {
	d := DefaultSettings()
	if s.MinBitsPerPixel == 0 {
		s.MinBitsPerPixel = d.MinBitsPerPixel
	}
	if s.LQIPDivisor == 0 {
		s.LQIPDivisor = d.LQIPDivisor
	}
	if s.GIPColor == (color.RGBA{}) {
		s.GIPColor = d.GIPColor
	}
	if s.LCPQualityStep == 0 {
		s.LCPQualityStep = d.LCPQualityStep
	}
	if s.LCPMaxQuality == 0 {
		s.LCPMaxQuality = d.LCPMaxQuality
	}
	return s
}

// Validate checks that the settings describe a terminating quality search.
func (s Settings) Validate() error {
	if s.MinBitsPerPixel < 0 {
		return fmt.Errorf("min bits per pixel must not be negative, got %v", s.MinBitsPerPixel)
	}
	if s.LQIPDivisor < 1 {
		return fmt.Errorf("lqip divisor must be at least 1, got %d", s.LQIPDivisor)
	}
	if s.LCPQualityStep < 1 {
		return fmt.Errorf("lcp quality step must be at least 1, got %d", s.LCPQualityStep)
	}
	if s.LCPMaxQuality < 0 || s.LCPMaxQuality > 100 {
		return fmt.Errorf("lcp max quality must be within 0-100, got %d", s.LCPMaxQuality)
	}
	return nil
}
