package handlers

import (
	"github.com/alexander-bruun/placeholders/models"
	"github.com/gofiber/adaptor/v2"
	fiber "github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus metrics
var (
	generationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "placeholders_generation_duration_seconds",
		Help:    "Time spent producing a placeholder variant, cache hits included",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	lcpQuality = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "placeholders_lcp_quality",
		Help:    "Encode quality chosen for LCP placeholders",
		Buckets: prometheus.LinearBuckets(0, 10, 10),
	})

	totalAssets = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "placeholders_total_assets",
		Help: "Total number of registered assets",
	})

	totalVariants = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "placeholders_total_variants",
		Help: "Total number of generated variants",
	})
)

func init() {
	prometheus.MustRegister(generationDuration)
	prometheus.MustRegister(lcpQuality)
	prometheus.MustRegister(totalAssets)
	prometheus.MustRegister(totalVariants)
}

// updateMetrics updates the gauges with current database values
func updateMetrics() {
	if count, err := models.CountAssets(); err == nil {
		totalAssets.Set(float64(count))
	} else {
		log.Warnf("Failed to get total assets for metrics: %v", err)
	}

	if count, err := models.CountVariants(); err == nil {
		totalVariants.Set(float64(count))
	} else {
		log.Warnf("Failed to get total variants for metrics: %v", err)
	}
}

// HandleMetrics serves Prometheus metrics
func HandleMetrics(c *fiber.Ctx) error {
	updateMetrics()
	return adaptor.HTTPHandler(promhttp.Handler())(c)
}

// HandleReady serves the readiness endpoint
func HandleReady(c *fiber.Ctx) error {
	if err := models.PingDB(); err != nil {
		log.Errorf("Database not ready: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).SendString("NOT READY")
	}

	return c.SendString("OK")
}

// HandleHealth serves the health endpoint
func HandleHealth(c *fiber.Ctx) error {
	if err := models.PingDB(); err != nil {
		log.Errorf("Database health check failed: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).SendString("UNHEALTHY")
	}

	if _, err := models.CountAssets(); err != nil {
		log.Errorf("Database query health check failed: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).SendString("UNHEALTHY")
	}

	return c.SendString("OK")
}
