package filestore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LocalAdapter implements Backend on the local file system
type LocalAdapter struct {
	basePath string
}

// NewLocalAdapter creates a local store rooted at basePath
func NewLocalAdapter(basePath string) *LocalAdapter {
	return &LocalAdapter{
		basePath: basePath,
	}
}

// resolve joins path onto the base path and rejects anything that climbs out of it.
func (l *LocalAdapter) resolve(path string) (string, error) {
	fullPath := filepath.Join(l.basePath, filepath.FromSlash(path))
	rel, err := filepath.Rel(l.basePath, fullPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}
	return fullPath, nil
}

// Save writes data atomically: a temp file in the target directory is
// renamed over the destination.
func (l *LocalAdapter) Save(path string, data []byte) error {
	fullPath, err := l.resolve(path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), fullPath)
}

// SaveReader saves data from a reader to the specified path
func (l *LocalAdapter) SaveReader(path string, reader io.Reader) error {
	fullPath, err := l.resolve(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(file, reader)
	return err
}

// Load loads data from the specified path
func (l *LocalAdapter) Load(path string) ([]byte, error) {
	fullPath, err := l.resolve(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(fullPath)
}

// LoadReader returns a reader for the specified path
func (l *LocalAdapter) LoadReader(path string) (io.ReadCloser, error) {
	fullPath, err := l.resolve(path)
	if err != nil {
		return nil, err
	}
	return os.Open(fullPath)
}

// Exists checks if a file exists at the specified path
func (l *LocalAdapter) Exists(path string) (bool, error) {
	fullPath, err := l.resolve(path)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

// Delete deletes a file at the specified path
func (l *LocalAdapter) Delete(path string) error {
	fullPath, err := l.resolve(path)
	if err != nil {
		return err
	}
	return os.Remove(fullPath)
}

// CreateDir creates a directory at the specified path
func (l *LocalAdapter) CreateDir(path string) error {
	fullPath, err := l.resolve(path)
	if err != nil {
		return err
	}
	return os.MkdirAll(fullPath, 0755)
}

// List lists files in the specified directory, sorted by name
func (l *LocalAdapter) List(path string) ([]string, error) {
	fullPath, err := l.resolve(path)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && !strings.HasPrefix(entry.Name(), ".tmp-") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}
