package handlers

import (
	"fmt"
	"image/color"
	"strconv"

	fiber "github.com/gofiber/fiber/v2"
)

// ParseInt64Param parses a route param as int64
func ParseInt64Param(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id < 1 {
		return 0, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}

// parseColorQuery reads the r, g and b query parameters. A missing channel
// keeps its value from defaults; ok is false when none of them are present.
func parseColorQuery(c *fiber.Ctx, defaults color.RGBA) (fill color.RGBA, ok bool, err error) {
	fill = color.RGBA{R: defaults.R, G: defaults.G, B: defaults.B, A: 255}
	channels := []struct {
		key string
		dst *uint8
	}{
		{"r", &fill.R},
		{"g", &fill.G},
		{"b", &fill.B},
	}

	for _, ch := range channels {
		raw := c.Query(ch.key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseUint(raw, 10, 8)
		if err != nil {
			return color.RGBA{}, false, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("%s must be between 0 and 255", ch.key))
		}
		*ch.dst = uint8(v)
		ok = true
	}
	if !ok {
		return color.RGBA{}, false, nil
	}
	return fill, true, nil
}
