package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alexander-bruun/placeholders/filestore"
	"github.com/alexander-bruun/placeholders/placeholder"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	DataDirectory string            `yaml:"data_directory"`
	Server        ServerConfig      `yaml:"server"`
	Placeholders  PlaceholderConfig `yaml:"placeholders"`
	Store         filestore.Config  `yaml:"store"`
	Warm          WarmConfig        `yaml:"warm"`
	Watch         WatchConfig       `yaml:"watch"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// MaxUploadSize is the request body limit in bytes.
	MaxUploadSize int `yaml:"max_upload_size"`
}

type PlaceholderConfig struct {
	MinBitsPerPixel float64 `yaml:"min_bits_per_pixel"`
	LQIPDivisor     int     `yaml:"lqip_divisor"`
	GIPColor        string  `yaml:"gip_color"`
	LCPQualityStep  int     `yaml:"lcp_quality_step"`
	LCPMaxQuality   int     `yaml:"lcp_max_quality"`
}

type WarmConfig struct {
	// Schedule is a cron expression; empty disables scheduled warming.
	Schedule string `yaml:"schedule"`
	OnImport bool   `yaml:"on_import"`
}

type WatchConfig struct {
	Directory string        `yaml:"directory"`
	Debounce  time.Duration `yaml:"debounce"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		DataDirectory: "./data",
		Server: ServerConfig{
			Host:          "0.0.0.0",
			Port:          3000,
			MaxUploadSize: 32 << 20,
		},
		Placeholders: PlaceholderConfig{
			MinBitsPerPixel: placeholder.DefaultMinBitsPerPixel,
			LQIPDivisor:     placeholder.DefaultLQIPDivisor,
			GIPColor:        "#e6e6e6",
			LCPQualityStep:  placeholder.DefaultLCPQualityStep,
			LCPMaxQuality:   placeholder.DefaultLCPMaxQuality,
		},
		Warm: WarmConfig{
			Schedule: "@daily",
			OnImport: true,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}

// Option adjusts the configuration after environment overrides, e.g. from
// command line flags.
type Option func(*Config)

// WithDataDirectory overrides the data directory when dir is not empty.
func WithDataDirectory(dir string) Option {
	return func(c *Config) {
		if dir != "" {
			c.DataDirectory = dir
		}
	}
}

// Load reads the configuration file at path over the defaults and applies
// environment overrides, then opts. An empty path skips the file.
func Load(path string, opts ...Option) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.resolvePaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields with PLACEHOLDERS_* environment variables.
func (c *Config) ApplyEnv() error {
	c.DataDirectory = getEnvOrDefault("PLACEHOLDERS_DATA_DIRECTORY", c.DataDirectory)
	c.Server.Host = getEnvOrDefault("PLACEHOLDERS_HOST", c.Server.Host)
	if v := os.Getenv("PLACEHOLDERS_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid port: %w", err)
		}
		c.Server.Port = port
	}

	c.Placeholders.GIPColor = getEnvOrDefault("PLACEHOLDERS_GIP_COLOR", c.Placeholders.GIPColor)
	c.Warm.Schedule = getEnvOrDefault("PLACEHOLDERS_WARM_SCHEDULE", c.Warm.Schedule)
	c.Watch.Directory = getEnvOrDefault("PLACEHOLDERS_WATCH_DIRECTORY", c.Watch.Directory)

	return c.Store.ApplyEnv()
}

// resolvePaths derives the paths left empty from the data directory
func (c *Config) resolvePaths() {
	if c.Store.BackendType == "local" && c.Store.LocalBasePath == "" {
		c.Store.LocalBasePath = filepath.Join(c.DataDirectory, "files")
	}
}

// Validate checks the configuration for values the server cannot run with
func (c *Config) Validate() error {
	if c.DataDirectory == "" {
		return errors.New("data_directory is required")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if _, err := c.Settings(); err != nil {
		return err
	}
	if c.Warm.Schedule != "" {
		if _, err := cron.ParseStandard(c.Warm.Schedule); err != nil {
			return fmt.Errorf("warm.schedule: %w", err)
		}
	}
	if c.Watch.Debounce < 0 {
		return errors.New("watch.debounce must not be negative")
	}
	return c.Store.Validate()
}

// Settings returns the placeholder heuristics.
func (c *Config) Settings() (placeholder.Settings, error) {
	fill, err := ParseHexColor(c.Placeholders.GIPColor)
	if err != nil {
		return placeholder.Settings{}, fmt.Errorf("placeholders.gip_color: %w", err)
	}
	s := placeholder.Settings{
		MinBitsPerPixel: c.Placeholders.MinBitsPerPixel,
		LQIPDivisor:     c.Placeholders.LQIPDivisor,
		GIPColor:        fill,
		LCPQualityStep:  c.Placeholders.LCPQualityStep,
		LCPMaxQuality:   c.Placeholders.LCPMaxQuality,
	}.WithDefaults()
	if err := s.Validate(); err != nil {
		return placeholder.Settings{}, err
	}
	return s, nil
}

// ParseHexColor parses "#rgb" or "#rrggbb" into an opaque colour.
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
