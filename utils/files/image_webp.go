//go:build extended
// +build extended

package files

import (
	"image"
	"io"

	"github.com/chai2010/webp"
)

// WebPSupported reports whether this build links the libwebp encoder.
const WebPSupported = true

// encodeWebP encodes lossy WebP, quality 0-100
func encodeWebP(w io.Writer, img image.Image, quality int) error {
	return webp.Encode(w, img, &webp.Options{Quality: float32(quality)})
}
