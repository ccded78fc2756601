package handlers

import (
	"errors"
	"io"
	"time"

	"github.com/alexander-bruun/placeholders/assets"
	"github.com/alexander-bruun/placeholders/placeholder"
	"github.com/alexander-bruun/placeholders/utils/files"
	fiber "github.com/gofiber/fiber/v2"
)

// generateFunc produces a placeholder of the image the extension is attached to
type generateFunc func(c *fiber.Ctx, ext *placeholder.Extension) (placeholder.Owner, error)

var generators = map[string]generateFunc{
	"lqip": func(c *fiber.Ctx, ext *placeholder.Extension) (placeholder.Owner, error) {
		return ext.LQIP(c.UserContext())
	},
	"gip": func(c *fiber.Ctx, ext *placeholder.Extension) (placeholder.Owner, error) {
		fill, ok, err := parseColorQuery(c, settings.GIPColor)
		if err != nil {
			return nil, err
		}
		if !ok {
			return ext.DefaultGIP(c.UserContext())
		}
		return ext.GIP(c.UserContext(), fill)
	},
	"lcplqip": func(c *fiber.Ctx, ext *placeholder.Extension) (placeholder.Owner, error) {
		return ext.LCPLQIP(c.UserContext())
	},
	"format": func(c *fiber.Ctx, ext *placeholder.Extension) (placeholder.Owner, error) {
		return ext.Format(c.UserContext(), c.Params("format"))
	},
}

// extensionFor attaches the extension to img, converted first when the
// request carries a format query
func extensionFor(c *fiber.Ctx, img *assets.Image) (*placeholder.Extension, error) {
	ext := placeholder.New(img, settings)

	format := c.Query("format")
	if format == "" {
		return ext, nil
	}
	converted, err := ext.Format(c.UserContext(), format)
	if err != nil {
		return nil, err
	}
	if converted == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "No image available")
	}
	return placeholder.New(converted, settings), nil
}

// generate runs the named generator against the :id asset
func generate(c *fiber.Ctx, kind string) (*assets.Image, error) {
	img, err := loadImage(c)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ext, err := extensionFor(c, img)
	if err != nil {
		return nil, generateError(err)
	}
	owner, err := generators[kind](c, ext)
	generationDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, generateError(err)
	}
	if owner == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "No placeholder available")
	}
	return owner.(*assets.Image), nil
}

func generateError(err error) error {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return err
	case errors.Is(err, files.ErrUnsupportedFormat):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, placeholder.ErrEmptyImage), errors.Is(err, placeholder.ErrNotImage):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	return err
}

// sendImage writes the stored bytes of img
func sendImage(c *fiber.Ctx, img *assets.Image) error {
	stream, err := img.Stream(c.UserContext())
	if err != nil {
		return err
	}
	if stream == nil {
		return fiber.NewError(fiber.StatusNotFound, "Image file missing")
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, img.MimeType())
	if v := img.Variant(); v != nil {
		c.Set("X-Placeholder-Variant", v.Name)
	}
	return c.Send(data)
}

func serveGenerated(c *fiber.Ctx, kind string) error {
	img, err := generate(c, kind)
	if err != nil {
		return err
	}
	return sendImage(c, img)
}

// HandleOriginal serves the source image
func HandleOriginal(c *fiber.Ctx) error {
	img, err := loadImage(c)
	if err != nil {
		return err
	}
	return sendImage(c, img)
}

// HandleLQIP serves the low quality image placeholder
func HandleLQIP(c *fiber.Ctx) error {
	return serveGenerated(c, "lqip")
}

// HandleGIP serves the solid colour placeholder; r, g and b pick the colour
func HandleGIP(c *fiber.Ctx) error {
	return serveGenerated(c, "gip")
}

// HandleLCPLQIP serves the smallest encoding that still counts for Largest
// Contentful Paint
func HandleLCPLQIP(c *fiber.Ctx) error {
	img, err := generate(c, "lcplqip")
	if err != nil {
		return err
	}
	if v := img.Variant(); v != nil {
		lcpQuality.Observe(float64(v.Quality))
	}
	return sendImage(c, img)
}

// HandleFormat serves the image converted to :format
func HandleFormat(c *fiber.Ctx) error {
	return serveGenerated(c, "format")
}

// HandleDataURL returns the original or a placeholder as a data URL
func HandleDataURL(c *fiber.Ctx) error {
	kind := c.Query("variant", "original")

	var owner placeholder.Owner
	switch kind {
	case "original":
		img, err := loadImage(c)
		if err != nil {
			return err
		}
		owner = img
	case "lqip", "gip", "lcplqip":
		img, err := generate(c, kind)
		if err != nil {
			return err
		}
		owner = img
	default:
		return SendBadRequestError(c, "variant must be one of original, lqip, gip, lcplqip")
	}

	dataURL, err := placeholder.DataURL(c.UserContext(), owner)
	if err != nil {
		return generateError(err)
	}
	return c.JSON(fiber.Map{
		"variant":  kind,
		"data_url": dataURL,
	})
}
