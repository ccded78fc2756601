package assets

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexander-bruun/placeholders/placeholder"
	"github.com/gofiber/fiber/v2/log"
)

// Warm generates the LQIP, default GIP and LCPLQIP variants of an image.
func Warm(ctx context.Context, img *Image, settings placeholder.Settings) error {
	ext := placeholder.New(img, settings)
	steps := []struct {
		name string
		run  func(context.Context) (placeholder.Owner, error)
	}{
		{placeholder.VariantLQIP, ext.LQIP},
		{placeholder.VariantGIP, ext.DefaultGIP},
		{placeholder.VariantLCPLQIP, ext.LCPLQIP},
	}

	var errs []error
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := step.run(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
		}
	}
	return errors.Join(errs...)
}

// WarmAll warms every registered asset and returns how many succeeded.
// Failures are logged and do not stop the run.
func (s *Store) WarmAll(ctx context.Context, settings placeholder.Settings) (int, error) {
	images, err := s.Images()
	if err != nil {
		return 0, err
	}

	warmed := 0
	for _, img := range images {
		if err := ctx.Err(); err != nil {
			return warmed, err
		}
		if err := Warm(ctx, img, settings); err != nil {
			log.Errorf("Failed to warm asset %d (%s): %v", img.Asset().ID, img.Asset().Name, err)
			continue
		}
		warmed++
	}
	return warmed, nil
}
