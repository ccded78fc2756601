package handlers

import (
	"bytes"
	"encoding/json"
	"image"
	"strings"
	"testing"

	"github.com/alexander-bruun/placeholders/utils/files"
	fiber "github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeDims(t *testing.T, body []byte) (int, int) {
	t.Helper()
	cfg, _, err := image.DecodeConfig(bytes.NewReader(body))
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestHandleOriginal(t *testing.T) {
	app := setupApp(t)
	asset := uploadAsset(t, app, 20, 10)

	resp, body := get(t, app, assetURL(asset, "/original"))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, int64(len(body)), asset.Size)
}

func TestHandleLQIP(t *testing.T) {
	app := setupApp(t)
	asset := uploadAsset(t, app, 160, 90)

	resp, body := get(t, app, assetURL(asset, "/lqip"))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "public, max-age=31536000, immutable", resp.Header.Get(fiber.HeaderCacheControl))
	assert.Equal(t, "LQIP", resp.Header.Get("X-Placeholder-Variant"))

	w, h := decodeDims(t, body)
	assert.Equal(t, 20, w)
	assert.Equal(t, 11, h)
}

func TestHandleLQIPWithFormat(t *testing.T) {
	app := setupApp(t)
	asset := uploadAsset(t, app, 64, 64)

	resp, _ := get(t, app, assetURL(asset, "/lqip?format=jpg"))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get(fiber.HeaderContentType))
	assert.True(t, strings.HasSuffix(resp.Header.Get("X-Placeholder-Variant"), "_LQIP"))
}

func TestHandleGIP(t *testing.T) {
	app := setupApp(t)
	asset := uploadAsset(t, app, 64, 48)

	resp, body := get(t, app, assetURL(asset, "/gip"))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	w, h := decodeDims(t, body)
	assert.Equal(t, 4, w)
	assert.Equal(t, 3, h)

	img, _, err := files.DecodeImageBytes(body)
	require.NoError(t, err)
	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(230), r>>8)
	assert.Equal(t, uint32(230), g>>8)
	assert.Equal(t, uint32(230), b>>8)
}

func TestHandleGIPCustomColor(t *testing.T) {
	app := setupApp(t)
	asset := uploadAsset(t, app, 30, 20)

	resp, body := get(t, app, assetURL(asset, "/gip?r=255&g=0&b=10"))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	img, _, err := files.DecodeImageBytes(body)
	require.NoError(t, err)
	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(255), r>>8)
	assert.Equal(t, uint32(0), g>>8)
	assert.Equal(t, uint32(10), b>>8)
}

func TestHandleGIPPartialColor(t *testing.T) {
	app := setupApp(t)
	asset := uploadAsset(t, app, 30, 20)

	resp, body := get(t, app, assetURL(asset, "/gip?r=100"))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	img, _, err := files.DecodeImageBytes(body)
	require.NoError(t, err)
	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(100), r>>8)
	assert.Equal(t, uint32(230), g>>8)
	assert.Equal(t, uint32(230), b>>8)
}

func TestHandleGIPInvalidColor(t *testing.T) {
	app := setupApp(t)
	asset := uploadAsset(t, app, 30, 20)

	for _, query := range []string{"?r=256&g=0&b=0", "?g=-5", "?r=a&g=b&b=c"} {
		resp, _ := get(t, app, assetURL(asset, "/gip"+query))
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, query)
		assert.Empty(t, resp.Header.Get(fiber.HeaderCacheControl), query)
	}
}

func TestHandleLCPLQIP(t *testing.T) {
	app := setupApp(t)
	asset := uploadAsset(t, app, 48, 48)

	resp, body := get(t, app, assetURL(asset, "/lcplqip?format=jpeg"))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get(fiber.HeaderContentType))

	w, h := decodeDims(t, body)
	assert.Equal(t, 48, w)
	assert.Equal(t, 48, h)
}

func TestHandleFormat(t *testing.T) {
	app := setupApp(t)
	asset := uploadAsset(t, app, 12, 12)

	resp, _ := get(t, app, assetURL(asset, "/format/gif"))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/gif", resp.Header.Get(fiber.HeaderContentType))

	resp, _ = get(t, app, assetURL(asset, "/format/tiff"))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleFormatWebP(t *testing.T) {
	app := setupApp(t)
	asset := uploadAsset(t, app, 12, 12)

	resp, body := get(t, app, assetURL(asset, "/format/webp"))
	if !files.WebPSupported {
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		return
	}
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/webp", resp.Header.Get(fiber.HeaderContentType))
	assert.True(t, bytes.HasPrefix(body, []byte("RIFF")))
}

func TestHandlePlaceholderUnknownAsset(t *testing.T) {
	app := setupApp(t)

	resp, _ := get(t, app, "/api/assets/42/lqip")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHandleDataURL(t *testing.T) {
	app := setupApp(t)
	asset := uploadAsset(t, app, 40, 40)

	tests := []struct {
		variant string
		prefix  string
	}{
		{"", "data:image/png;base64,"},
		{"original", "data:image/png;base64,"},
		{"lqip", "data:image/png;base64,"},
		{"gip", "data:image/png;base64,"},
		{"lcplqip", "data:image/png;base64,"},
	}
	for _, tt := range tests {
		t.Run("variant="+tt.variant, func(t *testing.T) {
			resp, body := get(t, app, assetURL(asset, "/dataurl?variant="+tt.variant))
			require.Equal(t, fiber.StatusOK, resp.StatusCode)

			var payload struct {
				DataURL string `json:"data_url"`
			}
			require.NoError(t, json.Unmarshal(body, &payload))
			assert.True(t, strings.HasPrefix(payload.DataURL, tt.prefix), payload.DataURL)
		})
	}
}

func TestHandleDataURLInvalidVariant(t *testing.T) {
	app := setupApp(t)
	asset := uploadAsset(t, app, 8, 8)

	resp, _ := get(t, app, assetURL(asset, "/dataurl?variant=thumbnail"))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
