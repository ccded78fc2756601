// Package assets is the image pipeline the placeholder extension runs on:
// source blobs live in a filestore backend, records in the models registry.
package assets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexander-bruun/placeholders/filestore"
	"github.com/alexander-bruun/placeholders/models"
	"github.com/alexander-bruun/placeholders/placeholder"
	"github.com/alexander-bruun/placeholders/utils"
	"github.com/alexander-bruun/placeholders/utils/files"
	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/sync/singleflight"
)

// Registry persists asset and variant records.
type Registry interface {
	CreateAsset(a *models.Asset) error
	GetAsset(id int64) (*models.Asset, error)
	GetAssetByHash(hash string) (*models.Asset, error)
	ListAssets() ([]models.Asset, error)
	DeleteAsset(id int64) error
	SaveVariant(v *models.Variant) error
	GetVariant(assetID int64, name string) (*models.Variant, error)
	ListVariants(assetID int64) ([]models.Variant, error)
	DeleteVariantsForAsset(assetID int64) (int64, error)
}

// Store imports images and produces their variants.
type Store struct {
	files    filestore.Backend
	registry Registry
	group    singleflight.Group
}

// NewStore creates a store over a blob backend and a registry.
func NewStore(backend filestore.Backend, registry Registry) *Store {
	return &Store{
		files:    backend,
		registry: registry,
	}
}

// Files returns the blob backend.
func (s *Store) Files() filestore.Backend {
	return s.files
}

func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func sanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '-'
		case r < 0x20, r == '/', r == ':':
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "image"
	}
	return name
}

func assetPath(hash, name string) string {
	return path.Join("assets", hash[:10], name)
}

func variantPath(a *models.Asset, variant, ext string) string {
	base := strings.TrimSuffix(path.Base(a.Path), path.Ext(a.Path))
	return path.Join("_variants", a.Hash[:10], fmt.Sprintf("%s__%s.%s", base, variant, ext))
}

// Import stores an image and registers it. Content already in the registry
// returns the existing asset.
func (s *Store) Import(ctx context.Context, name string, data []byte) (*models.Asset, error) {
	start := time.Now()
	defer utils.LogDuration("Import", start, name)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, format, err := files.DecodeImageBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", placeholder.ErrNotImage, name)
	}

	hash := contentHash(data)
	existing, err := s.registry.GetAssetByHash(hash)
	if err == nil {
		log.Debugf("Asset '%s' already imported as %d", name, existing.ID)
		return existing, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("lookup asset: %w", err)
	}

	name = sanitizeName(name)
	asset := &models.Asset{
		Name:     name,
		Hash:     hash,
		Path:     assetPath(hash, name),
		MimeType: files.MimeTypeForFormat(format),
		Format:   format,
		Width:    img.Bounds().Dx(),
		Height:   img.Bounds().Dy(),
		Size:     int64(len(data)),
	}

	if err := s.files.Save(asset.Path, data); err != nil {
		return nil, fmt.Errorf("store asset: %w", err)
	}
	if err := s.registry.CreateAsset(asset); err != nil {
		if delErr := s.files.Delete(asset.Path); delErr != nil {
			log.Warnf("Failed to remove orphaned blob '%s': %v", asset.Path, delErr)
		}
		return nil, fmt.Errorf("register asset: %w", err)
	}

	log.Infof("Imported '%s' as asset %d (%dx%d %s)", asset.Name, asset.ID, asset.Width, asset.Height, asset.Format)
	return asset, nil
}

// ImportFile imports an image from the local filesystem.
func (s *Store) ImportFile(ctx context.Context, filePath string) (*models.Asset, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return s.Import(ctx, filepath.Base(filePath), data)
}

// Image returns the original image of an asset.
func (s *Store) Image(id int64) (*Image, error) {
	asset, err := s.registry.GetAsset(id)
	if err != nil {
		return nil, err
	}
	return &Image{store: s, asset: asset}, nil
}

// Images returns the originals of all registered assets.
func (s *Store) Images() ([]*Image, error) {
	list, err := s.registry.ListAssets()
	if err != nil {
		return nil, err
	}
	images := make([]*Image, 0, len(list))
	for i := range list {
		images = append(images, &Image{store: s, asset: &list[i]})
	}
	return images, nil
}

// Variants returns the generated variants of an asset.
func (s *Store) Variants(id int64) ([]models.Variant, error) {
	return s.registry.ListVariants(id)
}

// Delete removes an asset, its variants and their blobs.
func (s *Store) Delete(id int64) error {
	asset, err := s.registry.GetAsset(id)
	if err != nil {
		return err
	}
	variants, err := s.registry.ListVariants(id)
	if err != nil {
		return err
	}

	for _, v := range variants {
		if err := s.files.Delete(v.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warnf("Failed to delete variant blob '%s': %v", v.Path, err)
		}
	}
	if err := s.files.Delete(asset.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete asset blob: %w", err)
	}
	return s.registry.DeleteAsset(id)
}

// ResetVariants removes the generated variants of an asset and their blobs,
// so the next request regenerates them with the current settings.
func (s *Store) ResetVariants(id int64) (int64, error) {
	if _, err := s.registry.GetAsset(id); err != nil {
		return 0, err
	}
	variants, err := s.registry.ListVariants(id)
	if err != nil {
		return 0, err
	}

	for _, v := range variants {
		if err := s.files.Delete(v.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("delete variant blob: %w", err)
		}
	}
	return s.registry.DeleteVariantsForAsset(id)
}
