package handlers

import (
	"strings"
	"testing"

	"github.com/alexander-bruun/placeholders/models"
	fiber "github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleMetrics(t *testing.T) {
	app := setupApp(t)
	asset := uploadAsset(t, app, 32, 32)
	get(t, app, assetURL(asset, "/lcplqip"))

	resp, body := get(t, app, "/metrics")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	metrics := string(body)
	assert.Contains(t, metrics, "placeholders_total_assets 1")
	assert.Contains(t, metrics, "placeholders_total_variants 1")
	assert.Contains(t, metrics, `placeholders_generation_duration_seconds_count{kind="lcplqip"}`)
	assert.True(t, strings.Contains(metrics, "placeholders_lcp_quality_count"))
}

func TestHandleHealthAndReady(t *testing.T) {
	app := setupApp(t)

	for _, path := range []string{"/health", "/ready"} {
		resp, body := get(t, app, path)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, path)
		assert.Equal(t, "OK", string(body), path)
	}
}

func TestHandleReadyWithoutDatabase(t *testing.T) {
	app := setupApp(t)
	require.NoError(t, models.Close())

	resp, body := get(t, app, "/ready")
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "NOT READY", string(body))

	resp, body = get(t, app, "/health")
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "UNHEALTHY", string(body))
}
