package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/alexander-bruun/placeholders/models"
	"github.com/alexander-bruun/placeholders/placeholder"
	"github.com/alexander-bruun/placeholders/utils"
	"github.com/alexander-bruun/placeholders/utils/files"
	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/sync/singleflight"
)

// Image is an asset or one of its variants bound to a store.
type Image struct {
	store   *Store
	asset   *models.Asset
	variant *models.Variant
}

var _ placeholder.Owner = (*Image)(nil)

// Asset returns the source asset record.
func (i *Image) Asset() *models.Asset {
	return i.asset
}

// Variant returns the variant record, or nil for the original.
func (i *Image) Variant() *models.Variant {
	return i.variant
}

// Path is the blob path of the image in the store.
func (i *Image) Path() string {
	if i.variant != nil {
		return i.variant.Path
	}
	return i.asset.Path
}

func (i *Image) Format() string {
	if i.variant != nil {
		return i.variant.Format
	}
	return i.asset.Format
}

func (i *Image) Width() int {
	if i.variant != nil {
		return i.variant.Width
	}
	return i.asset.Width
}

func (i *Image) Height() int {
	if i.variant != nil {
		return i.variant.Height
	}
	return i.asset.Height
}

// VariantName names a manipulation of this image. Manipulations of a variant
// are chained onto its name.
func (i *Image) VariantName(name string, args ...any) string {
	v := placeholder.VariantName(name, args...)
	if i.variant != nil {
		return i.variant.Name + "_" + v
	}
	return v
}

// ManipulateImage returns the stored variant or generates it with fn.
// Concurrent requests for the same variant share one generation, which is
// detached from any single caller's cancellation; a caller whose ctx ends
// stops waiting without failing the others.
func (i *Image) ManipulateImage(ctx context.Context, variant string, fn placeholder.ManipulateFunc) (placeholder.Owner, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := strconv.FormatInt(i.asset.ID, 10) + "/" + variant
	ch := i.store.group.DoChan(key, func() (any, error) {
		return i.manipulate(context.WithoutCancel(ctx), variant, fn)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	img := res.Val.(*Image)
	if img == nil {
		return nil, nil
	}
	return img, nil
}

func (i *Image) manipulate(ctx context.Context, variant string, fn placeholder.ManipulateFunc) (*Image, error) {
	start := time.Now()
	defer utils.LogDuration("ManipulateImage", start, i.asset.ID, variant)

	s := i.store
	cached, err := s.registry.GetVariant(i.asset.ID, variant)
	switch {
	case err == nil:
		exists, existsErr := s.files.Exists(cached.Path)
		if existsErr == nil && exists {
			return &Image{store: s, asset: i.asset, variant: cached}, nil
		}
		log.Debugf("Variant '%s' of asset %d is registered but its blob is missing, regenerating", variant, i.asset.ID)
	case !errors.Is(err, models.ErrNotFound):
		return nil, fmt.Errorf("lookup variant: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := s.files.Load(i.Path())
	if err != nil {
		return nil, fmt.Errorf("load source: %w", err)
	}
	backend, err := placeholder.LoadBackend(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode source: %w", err)
	}

	out, err := fn(backend)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, nil
	}

	encoded, err := out.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode variant: %w", err)
	}

	format := placeholder.OutputFormat(out.Format())
	v := &models.Variant{
		AssetID: i.asset.ID,
		Name:    variant,
		Path:    variantPath(i.asset, variant, files.ExtForFormat(format)),
		Format:  format,
		Quality: out.Quality(),
		Width:   out.Width(),
		Height:  out.Height(),
		Size:    int64(len(encoded)),
	}
	if err := s.files.Save(v.Path, encoded); err != nil {
		return nil, fmt.Errorf("store variant: %w", err)
	}
	if err := s.registry.SaveVariant(v); err != nil {
		return nil, fmt.Errorf("register variant: %w", err)
	}

	log.Debugf("Generated variant '%s' of asset %d (%dx%d %s q%d, %d bytes)",
		variant, i.asset.ID, v.Width, v.Height, v.Format, v.Quality, v.Size)
	return &Image{store: s, asset: i.asset, variant: v}, nil
}

func (i *Image) IsImage() bool {
	return files.IsImageMimeType(i.MimeType())
}

// Exists reports whether the blob is present in the store.
func (i *Image) Exists() bool {
	exists, err := i.store.files.Exists(i.Path())
	if err != nil {
		log.Warnf("Failed to check '%s': %v", i.Path(), err)
		return false
	}
	return exists
}

// Stream opens the blob. A missing blob yields a nil reader.
func (i *Image) Stream(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, err := i.store.files.LoadReader(i.Path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return r, err
}

func (i *Image) MimeType() string {
	if i.variant != nil {
		return files.MimeTypeForFormat(i.variant.Format)
	}
	return i.asset.MimeType
}
