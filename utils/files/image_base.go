//go:build !extended
// +build !extended

package files

import (
	"image"
	"io"
)

// WebPSupported reports whether this build links the libwebp encoder.
const WebPSupported = false

// encodeWebP is never reached without the extended build
func encodeWebP(w io.Writer, img image.Image, _ int) error {
	return ErrUnsupportedFormat
}
