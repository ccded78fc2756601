package placeholder

import (
	"fmt"
	"image"
	"image/color"

	"github.com/alexander-bruun/placeholders/utils/files"
)

// ApplyLQIP returns a clone of b downsampled by the LQIP divisor and
// flagged for the lowest encode quality. Pair it with a CSS blur, e.g.
// filter: blur(12px); transform: scale(1.15).
func ApplyLQIP(b *Backend, s Settings) (*Backend, error) {
	s = s.WithDefaults()
	if b.Width() == 0 || b.Height() == 0 {
		return nil, ErrEmptyImage
	}

	clone := b.Clone()
	clone.SetQuality(1)

	width, height := LQIPDimensions(b.Width(), b.Height(), s.LQIPDivisor)
	if err := clone.Resize(width, height); err != nil {
		return nil, err
	}
	return clone, nil
}

// ApplyGIP returns a clone of b replaced by a uniform image of fill at the
// smallest dimensions that keep the aspect ratio.
func ApplyGIP(b *Backend, fill color.RGBA) (*Backend, error) {
	width, height, err := ReducedDimensions(b.Width(), b.Height())
	if err != nil {
		return nil, err
	}

	clone := b.Clone()
	clone.SetQuality(1)
	clone.SetImage(uniformImage(width, height, fill))
	return clone, nil
}

// uniformImage builds a single-colour paletted image, which keeps PNG and
// GIF output to a handful of bytes.
func uniformImage(width, height int, fill color.RGBA) image.Image {
	fill.A = 255
	return image.NewPaletted(image.Rect(0, 0, width, height), color.Palette{fill})
}

// ApplyLCPLQIP returns a clone of b carrying the lowest quality at which the
// encoded image reaches the minimum bits-per-pixel size. The pixels are left
// untouched.
func ApplyLCPLQIP(b *Backend, s Settings) (*Backend, error) {
	s = s.WithDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if b.Width() == 0 || b.Height() == 0 {
		return nil, ErrEmptyImage
	}

	minBytes := MinSize(b.Width(), b.Height(), s.MinBitsPerPixel)
	result, err := SearchQuality(b, minBytes, s.LCPQualityStep, s.LCPMaxQuality)
	if err != nil {
		return nil, err
	}

	clone := b.Clone()
	clone.SetQuality(result.Quality)
	return clone, nil
}

// ApplyFormat returns a clone of b that will be encoded as format.
func ApplyFormat(b *Backend, format string) (*Backend, error) {
	if !files.CanEncode(format) {
		return nil, fmt.Errorf("%w: %s", files.ErrUnsupportedFormat, format)
	}
	clone := b.Clone()
	clone.SetFormat(format)
	return clone, nil
}
