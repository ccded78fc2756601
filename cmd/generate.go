package cmd

import (
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/alexander-bruun/placeholders/config"
	"github.com/alexander-bruun/placeholders/placeholder"
	"github.com/alexander-bruun/placeholders/utils/files"
	"github.com/spf13/cobra"
)

// GenerateOptions controls an offline placeholder run
type GenerateOptions struct {
	Kind     string
	Input    string
	Output   string
	Format   string
	Color    string
	Settings placeholder.Settings
}

// NewGenerateCmd creates the generate command
func NewGenerateCmd(flags *Flags) *cobra.Command {
	var format, fill string

	cmd := &cobra.Command{
		Use:   "generate [lqip|gip|lcplqip|format] [input] [output]",
		Short: "Generate a placeholder from an image file without the registry",
		Long: "Generate a placeholder from an image file without the registry.\n" +
			"Use - as output to print a data URL instead of writing a file.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			settings, err := cfg.Settings()
			if err != nil {
				return err
			}

			result, err := Generate(GenerateOptions{
				Kind:     args[0],
				Input:    args[1],
				Output:   args[2],
				Format:   format,
				Color:    fill,
				Settings: settings,
			})
			if err != nil {
				return err
			}
			cmd.Println(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Convert to this format first (jpeg, png, gif, webp)")
	cmd.Flags().StringVar(&fill, "color", "", "GIP fill colour as #rrggbb")

	return cmd
}

// Generate runs one placeholder transform on a file. It returns the data URL
// when Output is "-", otherwise a summary of the written file.
func Generate(opts GenerateOptions) (string, error) {
	if _, err := os.Stat(opts.Input); err != nil {
		return "", err
	}
	img, srcFormat, err := files.OpenImage(opts.Input)
	if err != nil {
		return "", fmt.Errorf("%w: %s", placeholder.ErrNotImage, opts.Input)
	}
	b := placeholder.NewBackend(img, srcFormat, placeholder.DefaultQuality)

	if opts.Format != "" {
		if b, err = placeholder.ApplyFormat(b, files.NormalizeFormat(opts.Format)); err != nil {
			return "", err
		}
	}

	switch strings.ToLower(opts.Kind) {
	case "lqip":
		b, err = placeholder.ApplyLQIP(b, opts.Settings)
	case "gip":
		fill := opts.Settings.WithDefaults().GIPColor
		if opts.Color != "" {
			var parsed color.RGBA
			if parsed, err = config.ParseHexColor(opts.Color); err != nil {
				return "", err
			}
			fill = parsed
		}
		b, err = placeholder.ApplyGIP(b, fill)
	case "lcplqip":
		b, err = placeholder.ApplyLCPLQIP(b, opts.Settings)
	case "format":
		if opts.Format == "" {
			return "", fmt.Errorf("format requires --format")
		}
	default:
		return "", fmt.Errorf("unknown placeholder kind %q", opts.Kind)
	}
	if err != nil {
		return "", err
	}

	format := placeholder.OutputFormat(b.Format())

	if opts.Output == "-" {
		data, err := b.Encode()
		if err != nil {
			return "", err
		}
		return files.DataURI(files.MimeTypeForFormat(format), data), nil
	}
	if err := files.SaveImage(opts.Output, b.Image(), format, b.Quality()); err != nil {
		return "", err
	}
	info, err := os.Stat(opts.Output)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Wrote %s (%dx%d %s q%d, %d bytes)", opts.Output, b.Width(), b.Height(), format, b.Quality(), info.Size()), nil
}
