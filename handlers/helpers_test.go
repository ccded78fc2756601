package handlers

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/alexander-bruun/placeholders/assets"
	"github.com/alexander-bruun/placeholders/filestore"
	"github.com/alexander-bruun/placeholders/models"
	"github.com/alexander-bruun/placeholders/placeholder"
	fiber "github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	require.NoError(t, models.Initialize(t.TempDir()))
	t.Cleanup(func() { models.Close() })

	store := assets.NewStore(filestore.NewLocalAdapter(t.TempDir()), models.Registry{})
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	Initialize(app, Options{Store: store, Settings: placeholder.Settings{}})
	return app
}

func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 9), uint8(y * 4), uint8(x + y), 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func uploadRequest(t *testing.T, name string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/assets/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func uploadAsset(t *testing.T, app *fiber.App, width, height int) models.Asset {
	t.Helper()
	resp, err := app.Test(uploadRequest(t, "hero.png", testPNG(t, width, height)), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var asset models.Asset
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&asset))
	return asset
}

func get(t *testing.T, app *fiber.App, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func assetURL(a models.Asset, suffix string) string {
	return "/api/assets/" + strconv.FormatInt(a.ID, 10) + suffix
}
