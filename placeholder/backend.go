package placeholder

import (
	"fmt"
	"image"
	"io"

	"github.com/alexander-bruun/placeholders/utils/files"
	"github.com/nfnt/resize"
)

// DefaultQuality is the encode quality assigned to freshly decoded images.
const DefaultQuality = 85

// Backend is an image handed over by the asset pipeline: the decoded pixels,
// the format they will be encoded to, and the encode quality.
//
// Operations never modify pixel data in place; Resize and Fill swap in a new
// image. A Clone can therefore share the underlying image with its source.
type Backend struct {
	img     image.Image
	format  string
	quality int
}

// NewBackend wraps an already decoded image.
func NewBackend(img image.Image, format string, quality int) *Backend {
	return &Backend{
		img:     img,
		format:  files.NormalizeFormat(format),
		quality: quality,
	}
}

// LoadBackend decodes r into a Backend that keeps the source format.
func LoadBackend(r io.Reader) (*Backend, error) {
	img, format, err := files.DecodeImage(r)
	if err != nil {
		return nil, err
	}
	return NewBackend(img, format, DefaultQuality), nil
}

// Clone returns an independent copy of the backend settings.
func (b *Backend) Clone() *Backend {
	clone := *b
	return &clone
}

// Image returns the current image.
func (b *Backend) Image() image.Image {
	return b.img
}

// SetImage replaces the image resource.
func (b *Backend) SetImage(img image.Image) {
	b.img = img
}

// Width returns the image width in pixels.
func (b *Backend) Width() int {
	if b.img == nil {
		return 0
	}
	return b.img.Bounds().Dx()
}

// Height returns the image height in pixels.
func (b *Backend) Height() int {
	if b.img == nil {
		return 0
	}
	return b.img.Bounds().Dy()
}

func (b *Backend) Format() string {
	return b.format
}

func (b *Backend) SetFormat(format string) {
	b.format = files.NormalizeFormat(format)
}

func (b *Backend) Quality() int {
	return b.quality
}

func (b *Backend) SetQuality(quality int) {
	b.quality = quality
}

// Resize scales the image to exactly width x height.
func (b *Backend) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid resize dimensions %dx%d", width, height)
	}
	if b.img == nil {
		return ErrEmptyImage
	}
	if width == b.Width() && height == b.Height() {
		return nil
	}
	b.img = resize.Resize(uint(width), uint(height), b.img, resize.Lanczos3)
	return nil
}

// Encode encodes the image with the backend's own format and quality.
func (b *Backend) Encode() ([]byte, error) {
	return b.EncodeAs(b.format, b.quality)
}

// EncodeAs encodes the image with an explicit format and quality. Formats
// without an encoder (bmp, tiff) are written as PNG.
func (b *Backend) EncodeAs(format string, quality int) ([]byte, error) {
	if b.img == nil {
		return nil, ErrEmptyImage
	}
	return files.EncodeImageToBytes(b.img, OutputFormat(format), quality)
}

// OutputFormat returns the format an image will actually be written in.
func OutputFormat(format string) string {
	if files.CanEncode(format) {
		return files.NormalizeFormat(format)
	}
	return "png"
}
