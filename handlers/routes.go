package handlers

import (
	"os"

	"github.com/alexander-bruun/placeholders/assets"
	"github.com/alexander-bruun/placeholders/placeholder"
	fiber "github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// Options wires the HTTP surface to the asset pipeline
type Options struct {
	Store    *assets.Store
	Settings placeholder.Settings
	// WarmOnImport generates the default placeholders after each upload.
	WarmOnImport bool
}

var (
	assetStore   *assets.Store
	settings     placeholder.Settings
	warmOnImport bool
)

// Initialize configures all HTTP routes and middleware
func Initialize(app *fiber.App, opts Options) {
	if os.Getenv("FIBER_PREFORK_CHILD") == "" {
		log.Info("Initializing application routes and middleware")
	}

	assetStore = opts.Store
	settings = opts.Settings.WithDefaults()
	warmOnImport = opts.WarmOnImport

	// ========================================
	// Middleware Configuration
	// ========================================
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Content-Type",
	}))

	// ========================================
	// Health and Metrics Endpoints
	// ========================================
	app.Get("/ready", HandleReady)
	app.Get("/health", HandleHealth)
	app.Get("/metrics", HandleMetrics)

	// ========================================
	// Asset Endpoints
	// ========================================
	api := app.Group("/api")
	assetsGroup := api.Group("/assets")

	assetsGroup.Post("/", HandleImportAsset)
	assetsGroup.Get("/", HandleListAssets)
	assetsGroup.Get("/:id", HandleGetAsset)
	assetsGroup.Delete("/:id", HandleDeleteAsset)
	assetsGroup.Delete("/:id/variants", HandleResetVariants)
	assetsGroup.Get("/:id/dataurl", HandleDataURL)

	// ========================================
	// Placeholder Image Routes with Cache Headers
	// ========================================
	assetsGroup.Get("/:id/original", imageCacheMiddleware, HandleOriginal)
	assetsGroup.Get("/:id/lqip", imageCacheMiddleware, HandleLQIP)
	assetsGroup.Get("/:id/gip", imageCacheMiddleware, HandleGIP)
	assetsGroup.Get("/:id/lcplqip", imageCacheMiddleware, HandleLCPLQIP)
	assetsGroup.Get("/:id/format/:format", imageCacheMiddleware, HandleFormat)
}

// imageCacheMiddleware marks variant responses as immutable; variant names
// change whenever their inputs do
func imageCacheMiddleware(c *fiber.Ctx) error {
	if err := c.Next(); err != nil {
		return err
	}
	if c.Response().StatusCode() == fiber.StatusOK {
		c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
	}
	return nil
}
