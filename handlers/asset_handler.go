package handlers

import (
	"context"
	"errors"
	"io"

	"github.com/alexander-bruun/placeholders/assets"
	"github.com/alexander-bruun/placeholders/models"
	"github.com/alexander-bruun/placeholders/placeholder"
	fiber "github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// loadImage resolves the :id route param to the original image of an asset
func loadImage(c *fiber.Ctx) (*assets.Image, error) {
	id, err := ParseInt64Param(c, "id")
	if err != nil {
		return nil, err
	}
	img, err := assetStore.Image(id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "Asset not found")
	}
	return img, err
}

// HandleImportAsset stores an uploaded image
func HandleImportAsset(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return SendBadRequestError(c, "Missing file upload")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return SendInternalServerError(c, "Failed to read upload", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return SendInternalServerError(c, "Failed to read upload", err)
	}

	asset, err := assetStore.Import(c.UserContext(), fileHeader.Filename, data)
	if errors.Is(err, placeholder.ErrNotImage) {
		return SendUnsupportedMediaTypeError(c, "Upload is not a supported image")
	}
	if err != nil {
		return SendInternalServerError(c, "Failed to import image", err)
	}

	if warmOnImport {
		if img, err := assetStore.Image(asset.ID); err == nil {
			go func() {
				if err := assets.Warm(context.Background(), img, settings); err != nil {
					log.Errorf("Failed to warm asset %d: %v", asset.ID, err)
				}
			}()
		}
	}

	return c.Status(fiber.StatusCreated).JSON(asset)
}

// HandleListAssets lists all assets
func HandleListAssets(c *fiber.Ctx) error {
	images, err := assetStore.Images()
	if err != nil {
		return SendInternalServerError(c, "Failed to list assets", err)
	}

	list := make([]*models.Asset, 0, len(images))
	for _, img := range images {
		list = append(list, img.Asset())
	}
	return c.JSON(list)
}

// HandleGetAsset returns an asset and its generated variants
func HandleGetAsset(c *fiber.Ctx) error {
	img, err := loadImage(c)
	if err != nil {
		return err
	}

	variants, err := assetStore.Variants(img.Asset().ID)
	if err != nil {
		return SendInternalServerError(c, "Failed to list variants", err)
	}
	if variants == nil {
		variants = []models.Variant{}
	}

	return c.JSON(fiber.Map{
		"asset":    img.Asset(),
		"variants": variants,
	})
}

// HandleDeleteAsset removes an asset and its variants
func HandleDeleteAsset(c *fiber.Ctx) error {
	id, err := ParseInt64Param(c, "id")
	if err != nil {
		return err
	}

	err = assetStore.Delete(id)
	if errors.Is(err, models.ErrNotFound) {
		return SendNotFoundError(c, "Asset not found")
	}
	if err != nil {
		return SendInternalServerError(c, "Failed to delete asset", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleResetVariants drops the generated placeholders of an asset so they
// are rebuilt on the next request
func HandleResetVariants(c *fiber.Ctx) error {
	id, err := ParseInt64Param(c, "id")
	if err != nil {
		return err
	}

	deleted, err := assetStore.ResetVariants(id)
	if errors.Is(err, models.ErrNotFound) {
		return SendNotFoundError(c, "Asset not found")
	}
	if err != nil {
		return SendInternalServerError(c, "Failed to reset variants", err)
	}
	return c.JSON(fiber.Map{"deleted": deleted})
}
