package cmd

import (
	"fmt"

	"github.com/alexander-bruun/placeholders/assets"
	"github.com/alexander-bruun/placeholders/config"
	"github.com/alexander-bruun/placeholders/filestore"
	"github.com/alexander-bruun/placeholders/models"
	"github.com/gofiber/fiber/v2/log"
)

// Flags holds the persistent flags of the root command
type Flags struct {
	ConfigPath    string
	DataDirectory string
	LogLevel      string
}

// SetLogLevel sets the fiber log level, defaulting to info
func SetLogLevel(level string) {
	switch level {
	case "debug":
		log.SetLevel(log.LevelDebug)
	case "warn":
		log.SetLevel(log.LevelWarn)
	case "error":
		log.SetLevel(log.LevelError)
	default:
		log.SetLevel(log.LevelInfo)
	}
}

func loadConfig(flags *Flags) (*config.Config, error) {
	return config.Load(flags.ConfigPath, config.WithDataDirectory(flags.DataDirectory))
}

// withStore loads the configuration, opens the registry and the blob
// backend, calls fn, and releases both afterward.
func withStore(flags *Flags, fn func(cfg *config.Config, store *assets.Store) error) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	if err := models.Initialize(cfg.DataDirectory); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := models.Close(); err != nil {
			log.Errorf("Failed to close database: %v", err)
		}
	}()

	backend, err := cfg.Store.CreateBackend()
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Store.BackendType, err)
	}
	defer func() {
		if err := filestore.Close(backend); err != nil {
			log.Warnf("Failed to close store: %v", err)
		}
	}()

	return fn(cfg, assets.NewStore(backend, models.Registry{}))
}

func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
