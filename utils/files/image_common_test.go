package files

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 7), uint8(y * 13), uint8((x + y) * 3), 255})
		}
	}
	return img
}

func TestNormalizeFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"jpg", "jpeg"},
		{".JPG", "jpeg"},
		{"jpeg", "jpeg"},
		{".png", "png"},
		{"tif", "tiff"},
		{"WebP", "webp"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeFormat(tt.input))
		})
	}
}

func TestFormatFromExt(t *testing.T) {
	assert.Equal(t, "jpeg", FormatFromExt("photo.JPG"))
	assert.Equal(t, "png", FormatFromExt("/tmp/a/b.png"))
	assert.Equal(t, "webp", FormatFromExt("hero.webp"))
	assert.Equal(t, "", FormatFromExt("notes.txt"))
	assert.Equal(t, "", FormatFromExt("noextension"))
}

func TestIsImageFile(t *testing.T) {
	assert.True(t, IsImageFile("cover.jpeg"))
	assert.True(t, IsImageFile("scan.tiff"))
	assert.False(t, IsImageFile("archive.zip"))
	assert.False(t, IsImageFile(""))
}

func TestMimeTypeForFormat(t *testing.T) {
	assert.Equal(t, "image/jpeg", MimeTypeForFormat("jpg"))
	assert.Equal(t, "image/png", MimeTypeForFormat("png"))
	assert.Equal(t, "image/webp", MimeTypeForFormat("webp"))
	assert.Equal(t, "application/octet-stream", MimeTypeForFormat("pdf"))
}

func TestExtForFormat(t *testing.T) {
	assert.Equal(t, "jpg", ExtForFormat("jpeg"))
	assert.Equal(t, "png", ExtForFormat("PNG"))
	assert.Equal(t, "webp", ExtForFormat("webp"))
}

func TestEncodeImageToBytes_RoundTrip(t *testing.T) {
	img := testImage(16, 8)

	for _, format := range []string{"jpeg", "png", "gif"} {
		t.Run(format, func(t *testing.T) {
			data, err := EncodeImageToBytes(img, format, 80)
			require.NoError(t, err)
			require.NotEmpty(t, data)

			decoded, decodedFormat, err := DecodeImageBytes(data)
			require.NoError(t, err)
			assert.Equal(t, format, decodedFormat)
			assert.Equal(t, 16, decoded.Bounds().Dx())
			assert.Equal(t, 8, decoded.Bounds().Dy())
		})
	}
}

func TestEncodeImageToBytes_JPEGQualityZeroIsClamped(t *testing.T) {
	img := testImage(32, 32)

	low, err := EncodeImageToBytes(img, "jpeg", 0)
	require.NoError(t, err)
	one, err := EncodeImageToBytes(img, "jpeg", 1)
	require.NoError(t, err)

	assert.Equal(t, one, low)
}

func TestEncodeImageToBytes_JPEGQualityAffectsSize(t *testing.T) {
	img := testImage(64, 64)

	low, err := EncodeImageToBytes(img, "jpg", 5)
	require.NoError(t, err)
	high, err := EncodeImageToBytes(img, "jpg", 95)
	require.NoError(t, err)

	assert.Less(t, len(low), len(high))
}

func TestEncodeImageToBytes_Unsupported(t *testing.T) {
	_, err := EncodeImageToBytes(testImage(2, 2), "bmp", 50)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestEncodeImageToBytes_WebP(t *testing.T) {
	data, err := EncodeImageToBytes(testImage(8, 8), "webp", 50)
	if !WebPSupported {
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
		return
	}
	require.NoError(t, err)

	assert.Equal(t, []byte("RIFF"), data[:4])
	_, format, err := DecodeImageBytes(data)
	require.NoError(t, err)
	assert.Equal(t, "webp", format)
}

func TestCanEncode(t *testing.T) {
	assert.True(t, CanEncode("jpg"))
	assert.True(t, CanEncode("png"))
	assert.True(t, CanEncode("gif"))
	assert.Equal(t, WebPSupported, CanEncode("webp"))
	assert.False(t, CanEncode("bmp"))
	assert.False(t, CanEncode("tiff"))
}

func TestIsLossy(t *testing.T) {
	assert.True(t, IsLossy("jpeg"))
	assert.False(t, IsLossy("png"))
	assert.False(t, IsLossy("gif"))
	assert.Equal(t, WebPSupported, IsLossy("webp"))
}

func TestDecodeImage_Invalid(t *testing.T) {
	_, _, err := DecodeImage(strings.NewReader("not an image"))
	assert.Error(t, err)
}

func TestSaveAndOpenImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, SaveImage(path, testImage(5, 3), "png", 100))

	img, format, err := OpenImage(path)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, image.Rect(0, 0, 5, 3), img.Bounds())
}

func TestOpenImage_Missing(t *testing.T) {
	_, _, err := OpenImage(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDataURI(t *testing.T) {
	uri := DataURI("image/png", []byte{0x89, 'P', 'N', 'G'})
	assert.Equal(t, "data:image/png;base64,iVBORw==", uri)
	assert.True(t, bytes.HasPrefix([]byte(uri), []byte("data:image/png;base64,")))
}
