package filestore

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// SFTPAdapter implements Backend for SFTP storage
type SFTPAdapter struct {
	client   *sftp.Client
	basePath string
}

// SFTPConfig holds SFTP connection configuration
type SFTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string // or use KeyFile
	KeyFile  string
	HostKey  string // SSH host public key for verification
	BasePath string
}

// sshAuth picks key based authentication over a password when both are set.
func sshAuth(config SFTPConfig) ([]ssh.AuthMethod, error) {
	if config.KeyFile != "" {
		keyBytes, err := os.ReadFile(config.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read private key file: %w", err)
		}
		key, err := ssh.ParsePrivateKey(keyBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		return []ssh.AuthMethod{ssh.PublicKeys(key)}, nil
	}
	if config.Password != "" {
		return []ssh.AuthMethod{ssh.Password(config.Password)}, nil
	}
	return nil, fmt.Errorf("either password or key file must be provided")
}

// hostKeyCallback pins the configured host key, falling back to known_hosts.
func hostKeyCallback(config SFTPConfig) (ssh.HostKeyCallback, error) {
	if config.HostKey != "" {
		hostKey, _, _, _, err := ssh.ParseAuthorizedKey([]byte(config.HostKey))
		if err != nil {
			return nil, fmt.Errorf("failed to parse host key: %w", err)
		}
		return ssh.FixedHostKey(hostKey), nil
	}
	callback, err := knownhosts.New(os.ExpandEnv("$HOME/.ssh/known_hosts"))
	if err != nil {
		return nil, fmt.Errorf("failed to load known_hosts: %w", err)
	}
	return callback, nil
}

// NewSFTPAdapter creates a new SFTP store adapter
func NewSFTPAdapter(config SFTPConfig) (*SFTPAdapter, error) {
	auth, err := sshAuth(config)
	if err != nil {
		return nil, err
	}
	callback, err := hostKeyCallback(config)
	if err != nil {
		return nil, err
	}

	sshConfig := &ssh.ClientConfig{
		User:            config.Username,
		Auth:            auth,
		HostKeyCallback: callback,
		Timeout:         15 * time.Second,
	}

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	sshClient, err := ssh.Dial("tcp", addr, sshConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SSH server: %w", err)
	}

	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, fmt.Errorf("failed to create SFTP client: %w", err)
	}

	return &SFTPAdapter{
		client:   sftpClient,
		basePath: config.BasePath,
	}, nil
}

func (s *SFTPAdapter) fullPath(p string) string {
	return path.Join(s.basePath, p)
}

// Save saves data to the specified path
func (s *SFTPAdapter) Save(path string, data []byte) error {
	return s.SaveReader(path, bytes.NewReader(data))
}

// SaveReader uploads to a temporary name and renames it into place so
// readers never observe a partial variant.
func (s *SFTPAdapter) SaveReader(p string, reader io.Reader) error {
	fullPath := s.fullPath(p)

	dir := path.Dir(fullPath)
	if err := s.client.MkdirAll(dir); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmpPath := path.Join(dir, ".tmp-"+path.Base(fullPath))
	file, err := s.client.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", tmpPath, err)
	}
	if _, err := io.Copy(file, reader); err != nil {
		file.Close()
		s.client.Remove(tmpPath)
		return err
	}
	if err := file.Close(); err != nil {
		s.client.Remove(tmpPath)
		return err
	}
	return s.client.PosixRename(tmpPath, fullPath)
}

// Load loads data from the specified path
func (s *SFTPAdapter) Load(path string) ([]byte, error) {
	reader, err := s.LoadReader(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return io.ReadAll(reader)
}

// LoadReader returns a reader for the specified path
func (s *SFTPAdapter) LoadReader(path string) (io.ReadCloser, error) {
	return s.client.Open(s.fullPath(path))
}

// Exists checks if a file exists at the specified path
func (s *SFTPAdapter) Exists(path string) (bool, error) {
	info, err := s.client.Stat(s.fullPath(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

// Delete deletes a file at the specified path
func (s *SFTPAdapter) Delete(path string) error {
	return s.client.Remove(s.fullPath(path))
}

// CreateDir creates a directory at the specified path
func (s *SFTPAdapter) CreateDir(path string) error {
	return s.client.MkdirAll(s.fullPath(path))
}

// List lists files in the specified directory
func (s *SFTPAdapter) List(path string) ([]string, error) {
	entries, err := s.client.ReadDir(s.fullPath(path))
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}

// Close closes the SFTP connection
func (s *SFTPAdapter) Close() error {
	return s.client.Close()
}
