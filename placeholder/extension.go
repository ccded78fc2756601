package placeholder

import (
	"context"
	"fmt"
	"image/color"
	"io"

	"github.com/alexander-bruun/placeholders/utils/files"
)

// ManipulateFunc receives the host's backend for an image and returns the
// backend to store as the variant. Returning a nil backend produces no variant.
type ManipulateFunc func(b *Backend) (*Backend, error)

// Owner is the image record the extension is attached to. The host pipeline
// owns variant naming, caching and persistence.
type Owner interface {
	// VariantName builds the cache key for a manipulation.
	VariantName(name string, args ...any) string
	// ManipulateImage returns the cached variant or produces it with fn.
	ManipulateImage(ctx context.Context, variant string, fn ManipulateFunc) (Owner, error)
	IsImage() bool
	Exists() bool
	// Stream opens the stored file; a nil reader means no content is available.
	Stream(ctx context.Context) (io.ReadCloser, error)
	MimeType() string
}

// Extension adds placeholder renditions to an image record.
type Extension struct {
	owner    Owner
	settings Settings
}

// New attaches the extension to owner. Zero settings fields use the defaults.
func New(owner Owner, settings Settings) *Extension {
	return &Extension{
		owner:    owner,
		settings: settings.WithDefaults(),
	}
}

// Owner returns the record the extension is attached to.
func (e *Extension) Owner() Owner {
	return e.owner
}

// Settings returns the effective heuristics.
func (e *Extension) Settings() Settings {
	return e.settings
}

// LQIP returns a low quality image placeholder, an eighth of the original
// size. Use a CSS blur over it to mask the pixelation.
func (e *Extension) LQIP(ctx context.Context) (Owner, error) {
	variant := e.owner.VariantName(VariantLQIP)
	return e.owner.ManipulateImage(ctx, variant, func(b *Backend) (*Backend, error) {
		return ApplyLQIP(b, e.settings)
	})
}

// GIP returns a solid placeholder filled with c.
func (e *Extension) GIP(ctx context.Context, c color.RGBA) (Owner, error) {
	variant := e.owner.VariantName(VariantGIP, c.R, c.G, c.B)
	return e.owner.ManipulateImage(ctx, variant, func(b *Backend) (*Backend, error) {
		return ApplyGIP(b, c)
	})
}

// DefaultGIP returns a solid placeholder in the configured colour.
func (e *Extension) DefaultGIP(ctx context.Context) (Owner, error) {
	return e.GIP(ctx, e.settings.GIPColor)
}

// LCPLQIP returns the image re-encoded at the lowest quality that still
// counts as contentful for Largest Contentful Paint. Convert the image to its
// final format first (see Format); the size threshold depends on it.
func (e *Extension) LCPLQIP(ctx context.Context) (Owner, error) {
	variant := e.owner.VariantName(VariantLCPLQIP)
	return e.owner.ManipulateImage(ctx, variant, func(b *Backend) (*Backend, error) {
		return ApplyLCPLQIP(b, e.settings)
	})
}

// Format returns the image converted to format.
func (e *Extension) Format(ctx context.Context, format string) (Owner, error) {
	format = files.NormalizeFormat(format)
	if !files.CanEncode(format) {
		return nil, fmt.Errorf("%w: %s", files.ErrUnsupportedFormat, format)
	}
	variant := e.owner.VariantName(VariantFormat, format)
	return e.owner.ManipulateImage(ctx, variant, func(b *Backend) (*Backend, error) {
		return ApplyFormat(b, format)
	})
}

// DataURL returns the image as a base64 data URL, e.g.
// "data:image/png;base64,...". Missing files yield an empty string.
func (e *Extension) DataURL(ctx context.Context) (string, error) {
	return DataURL(ctx, e.owner)
}

// DataURL encodes the stored content of o as a data URL.
func DataURL(ctx context.Context, o Owner) (string, error) {
	if o == nil {
		return "", nil
	}
	if !o.IsImage() {
		return "", ErrNotImage
	}
	if !o.Exists() {
		return "", nil
	}

	stream, err := o.Stream(ctx)
	if err != nil {
		return "", fmt.Errorf("open image stream: %w", err)
	}
	if stream == nil {
		return "", nil
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		return "", fmt.Errorf("read image stream: %w", err)
	}
	return files.DataURI(o.MimeType(), data), nil
}
