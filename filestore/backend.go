package filestore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

//go:generate mockgen -destination=mock_filestore/mock_backend.go -package=mock_filestore github.com/alexander-bruun/placeholders/filestore Backend

// ErrInvalidPath is returned for paths that escape the store root.
var ErrInvalidPath = errors.New("invalid store path")

// Backend stores image blobs: originals and generated variants.
type Backend interface {
	// Save saves data to the specified path
	Save(path string, data []byte) error

	// SaveReader saves data from a reader to the specified path
	SaveReader(path string, reader io.Reader) error

	// Load loads data from the specified path
	Load(path string) ([]byte, error)

	// LoadReader returns a reader for the specified path
	LoadReader(path string) (io.ReadCloser, error)

	// Exists checks if a file exists at the specified path
	Exists(path string) (bool, error)

	// Delete deletes a file at the specified path
	Delete(path string) error

	// CreateDir creates a directory at the specified path
	CreateDir(path string) error

	// List lists files in the specified directory
	List(path string) ([]string, error)
}

// Config selects and configures a storage backend.
type Config struct {
	BackendType string `yaml:"backend"` // "local", "sftp", "s3"

	// Local backend config
	LocalBasePath string `yaml:"local_path"`

	// SFTP backend config
	SFTPHost     string `yaml:"sftp_host"`
	SFTPPort     int    `yaml:"sftp_port"`
	SFTPUsername string `yaml:"sftp_username"`
	SFTPPassword string `yaml:"sftp_password"`
	SFTPKeyFile  string `yaml:"sftp_key_file"`
	SFTPHostKey  string `yaml:"sftp_host_key"`
	SFTPBasePath string `yaml:"sftp_base_path"`

	// S3 backend config
	S3Bucket       string `yaml:"s3_bucket"`
	S3Region       string `yaml:"s3_region"`
	S3Endpoint     string `yaml:"s3_endpoint"`
	S3BasePath     string `yaml:"s3_base_path"`
	S3UsePathStyle bool   `yaml:"s3_use_path_style"`
}

// ApplyEnv overrides fields with PLACEHOLDERS_STORE_* environment variables.
func (c *Config) ApplyEnv() error {
	c.BackendType = getEnvOrDefault("PLACEHOLDERS_STORE_BACKEND", c.BackendType)
	if c.BackendType == "" {
		c.BackendType = "local"
	}

	c.LocalBasePath = getEnvOrDefault("PLACEHOLDERS_STORE_LOCAL_PATH", c.LocalBasePath)

	c.SFTPHost = getEnvOrDefault("PLACEHOLDERS_STORE_SFTP_HOST", c.SFTPHost)
	if portStr := os.Getenv("PLACEHOLDERS_STORE_SFTP_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid SFTP port: %w", err)
		}
		c.SFTPPort = port
	}
	if c.SFTPPort == 0 {
		c.SFTPPort = 22
	}
	c.SFTPUsername = getEnvOrDefault("PLACEHOLDERS_STORE_SFTP_USERNAME", c.SFTPUsername)
	c.SFTPPassword = getEnvOrDefault("PLACEHOLDERS_STORE_SFTP_PASSWORD", c.SFTPPassword)
	c.SFTPKeyFile = getEnvOrDefault("PLACEHOLDERS_STORE_SFTP_KEY_FILE", c.SFTPKeyFile)
	c.SFTPHostKey = getEnvOrDefault("PLACEHOLDERS_STORE_SFTP_HOST_KEY", c.SFTPHostKey)
	c.SFTPBasePath = getEnvOrDefault("PLACEHOLDERS_STORE_SFTP_BASE_PATH", c.SFTPBasePath)

	c.S3Bucket = getEnvOrDefault("PLACEHOLDERS_STORE_S3_BUCKET", c.S3Bucket)
	c.S3Region = getEnvOrDefault("PLACEHOLDERS_STORE_S3_REGION", c.S3Region)
	c.S3Endpoint = getEnvOrDefault("PLACEHOLDERS_STORE_S3_ENDPOINT", c.S3Endpoint)
	c.S3BasePath = getEnvOrDefault("PLACEHOLDERS_STORE_S3_BASE_PATH", c.S3BasePath)
	if v := os.Getenv("PLACEHOLDERS_STORE_S3_USE_PATH_STYLE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid S3 path style flag: %w", err)
		}
		c.S3UsePathStyle = b
	}
	return nil
}

// Validate validates the store configuration
func (c *Config) Validate() error {
	switch c.BackendType {
	case "local":
		if c.LocalBasePath == "" {
			return fmt.Errorf("local base path is required for local backend")
		}
	case "sftp":
		if c.SFTPHost == "" {
			return fmt.Errorf("SFTP host is required")
		}
		if c.SFTPUsername == "" {
			return fmt.Errorf("SFTP username is required")
		}
		if c.SFTPPassword == "" && c.SFTPKeyFile == "" {
			return fmt.Errorf("either SFTP password or key file is required")
		}
	case "s3":
		if c.S3Bucket == "" {
			return fmt.Errorf("S3 bucket is required")
		}
		if c.S3Region == "" {
			return fmt.Errorf("S3 region is required")
		}
	default:
		return fmt.Errorf("unsupported store backend type: %s", c.BackendType)
	}
	return nil
}

// CreateBackend validates the configuration and connects the backend.
func (c *Config) CreateBackend() (Backend, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	switch c.BackendType {
	case "local":
		return NewLocalAdapter(c.LocalBasePath), nil
	case "sftp":
		return NewSFTPAdapter(SFTPConfig{
			Host:     c.SFTPHost,
			Port:     c.SFTPPort,
			Username: c.SFTPUsername,
			Password: c.SFTPPassword,
			KeyFile:  c.SFTPKeyFile,
			HostKey:  c.SFTPHostKey,
			BasePath: c.SFTPBasePath,
		})
	case "s3":
		return NewS3Adapter(S3Config{
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			Endpoint:     c.S3Endpoint,
			BasePath:     c.S3BasePath,
			UsePathStyle: c.S3UsePathStyle,
		})
	default:
		return nil, fmt.Errorf("unsupported store backend type: %s", c.BackendType)
	}
}

// Close releases backend connections when the backend holds any.
func Close(b Backend) error {
	if c, ok := b.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
