package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/alexander-bruun/placeholders/assets"
	"github.com/alexander-bruun/placeholders/config"
	"github.com/alexander-bruun/placeholders/placeholder"
	"github.com/spf13/cobra"
)

// NewImportCmd creates the import command
func NewImportCmd(flags *Flags) *cobra.Command {
	var warm bool

	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import image files into the registry",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(flags, func(cfg *config.Config, store *assets.Store) error {
				settings, err := cfg.Settings()
				if err != nil {
					return err
				}
				warmImports := warm || cfg.Warm.OnImport

				var failed []error
				for _, path := range args {
					asset, err := store.ImportFile(cmd.Context(), path)
					if err != nil {
						cmd.PrintErrf("Failed to import '%s': %v\n", path, err)
						failed = append(failed, err)
						continue
					}
					cmd.Printf("%d\t%s\t%dx%d\t%s\n", asset.ID, asset.Name, asset.Width, asset.Height, asset.Format)

					if warmImports {
						img, err := store.Image(asset.ID)
						if err == nil {
							err = assets.Warm(cmd.Context(), img, settings)
						}
						if err != nil {
							cmd.PrintErrf("Failed to warm '%s': %v\n", path, err)
						}
					}
				}
				if len(failed) > 0 {
					return fmt.Errorf("%d of %d files failed to import", len(failed), len(args))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&warm, "warm", false, "Generate default placeholders after import")

	return cmd
}

// NewListCmd creates the list command
func NewListCmd(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered assets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(flags, func(cfg *config.Config, store *assets.Store) error {
				images, err := store.Images()
				if err != nil {
					return err
				}
				if len(images) == 0 {
					cmd.Println("No assets found.")
					return nil
				}
				for _, img := range images {
					a := img.Asset()
					cmd.Printf("%d\t%s\t%dx%d\t%s\t%s\n", a.ID, a.Name, a.Width, a.Height, a.Format, formatFileSize(a.Size))
				}
				return nil
			})
		},
	}
}

// NewDataURLCmd creates the dataurl command
func NewDataURLCmd(flags *Flags) *cobra.Command {
	var variant string

	cmd := &cobra.Command{
		Use:   "dataurl [asset-id]",
		Short: "Print an asset or one of its placeholders as a data URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid asset id %q", args[0])
			}

			return withStore(flags, func(cfg *config.Config, store *assets.Store) error {
				settings, err := cfg.Settings()
				if err != nil {
					return err
				}
				img, err := store.Image(id)
				if err != nil {
					return err
				}

				owner, err := pickVariant(cmd.Context(), placeholder.New(img, settings), variant)
				if err != nil {
					return err
				}
				url, err := placeholder.DataURL(cmd.Context(), owner)
				if err != nil {
					return err
				}
				cmd.Println(url)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&variant, "variant", "original", "original, lqip, gip or lcplqip")

	return cmd
}

func pickVariant(ctx context.Context, ext *placeholder.Extension, variant string) (placeholder.Owner, error) {
	switch variant {
	case "", "original":
		return ext.Owner(), nil
	case "lqip":
		return ext.LQIP(ctx)
	case "gip":
		return ext.DefaultGIP(ctx)
	case "lcplqip":
		return ext.LCPLQIP(ctx)
	}
	return nil, errors.New("variant must be one of original, lqip, gip, lcplqip")
}

// NewWarmCmd creates the warm command
func NewWarmCmd(flags *Flags) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "warm",
		Short: "Generate the default placeholders for every asset",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(flags, func(cfg *config.Config, store *assets.Store) error {
				settings, err := cfg.Settings()
				if err != nil {
					return err
				}
				if reset {
					if err := resetAllVariants(cmd, store); err != nil {
						return err
					}
				}
				warmed, err := store.WarmAll(cmd.Context(), settings)
				if err != nil {
					return err
				}
				cmd.Printf("Warmed %d assets\n", warmed)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "Drop existing variants first so they are rebuilt with the current settings")

	return cmd
}

func resetAllVariants(cmd *cobra.Command, store *assets.Store) error {
	images, err := store.Images()
	if err != nil {
		return err
	}
	var total int64
	for _, img := range images {
		n, err := store.ResetVariants(img.Asset().ID)
		if err != nil {
			return fmt.Errorf("reset asset %d: %w", img.Asset().ID, err)
		}
		total += n
	}
	cmd.Printf("Removed %d variants\n", total)
	return nil
}
