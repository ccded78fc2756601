package files

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // Register BMP format
	_ "golang.org/x/image/tiff" // Register TIFF format
	_ "golang.org/x/image/webp" // Register WebP format
)

// ErrUnsupportedFormat is returned when an output format has no encoder.
var ErrUnsupportedFormat = errors.New("unsupported image format")

var mimeTypes = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
}

// NormalizeFormat maps file extensions and aliases onto the format names
// reported by image.Decode ("jpg" -> "jpeg", ".PNG" -> "png").
func NormalizeFormat(format string) string {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	switch format {
	case "jpg", "jpe":
		return "jpeg"
	case "tif":
		return "tiff"
	}
	return format
}

// FormatFromExt returns the normalized image format for a file name, or ""
// when the extension is not a known image type.
func FormatFromExt(fileName string) string {
	format := NormalizeFormat(filepath.Ext(fileName))
	if _, ok := mimeTypes[format]; !ok {
		return ""
	}
	return format
}

// ExtForFormat returns the file extension (without dot) used when storing
// an image encoded in format.
func ExtForFormat(format string) string {
	format = NormalizeFormat(format)
	if format == "jpeg" {
		return "jpg"
	}
	return format
}

// MimeTypeForFormat returns the MIME type for a format, defaulting to
// application/octet-stream.
func MimeTypeForFormat(format string) string {
	if mime, ok := mimeTypes[NormalizeFormat(format)]; ok {
		return mime
	}
	return "application/octet-stream"
}

// IsImageMimeType reports whether mime names an image type.
func IsImageMimeType(mime string) bool {
	return strings.HasPrefix(mime, "image/")
}

// IsImageFile reports whether the file name carries a supported image extension.
func IsImageFile(fileName string) bool {
	return FormatFromExt(fileName) != ""
}

// CanEncode reports whether EncodeImageToBytes accepts format as output.
// WebP needs the extended build.
func CanEncode(format string) bool {
	switch NormalizeFormat(format) {
	case "jpeg", "png", "gif":
		return true
	case "webp":
		return WebPSupported
	}
	return false
}

// DecodeImage decodes an image from r and returns it with its format name.
func DecodeImage(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// DecodeImageBytes decodes an in-memory image.
func DecodeImageBytes(data []byte) (image.Image, string, error) {
	return DecodeImage(bytes.NewReader(data))
}

// OpenImage opens and decodes an image from the given path
func OpenImage(path string) (image.Image, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return DecodeImage(file)
}

// SaveImage saves an image to a file path with the specified format and quality
func SaveImage(filePath string, img image.Image, format string, quality int) error {
	data, err := EncodeImageToBytes(img, format, quality)
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}

// EncodeImageToBytes encodes an image to bytes in the specified format.
// Quality is only meaningful for lossy formats (jpeg, webp).
func EncodeImageToBytes(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	switch NormalizeFormat(format) {
	case "jpeg":
		// Go's jpeg.Encode requires 1-100
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: clampQuality(quality, 1)}); err != nil {
			return nil, err
		}
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	case "gif":
		if err := gif.Encode(&buf, img, nil); err != nil {
			return nil, err
		}
	case "webp":
		if !WebPSupported {
			return nil, fmt.Errorf("%w: webp (build with -tags extended)", ErrUnsupportedFormat)
		}
		if err := encodeWebP(&buf, img, clampQuality(quality, 0)); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return buf.Bytes(), nil
}

// IsLossy reports whether the encoder for format honours the quality setting.
func IsLossy(format string) bool {
	switch NormalizeFormat(format) {
	case "jpeg":
		return true
	case "webp":
		return WebPSupported
	}
	return false
}

func clampQuality(quality, lowest int) int {
	if quality < lowest {
		return lowest
	}
	if quality > 100 {
		return 100
	}
	return quality
}

// DataURI returns a base64 encoded data URI, e.g. "data:image/png;base64,...".
func DataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
