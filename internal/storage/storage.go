package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ImageStore keeps city images as plain files under a single directory
type ImageStore struct {
	dir string
}

// NewImageStore creates an image store rooted at dir. The directory is created on first write.
func NewImageStore(dir string) *ImageStore {
	return &ImageStore{dir: dir}
}

// Dir returns the root directory of the store
func (s *ImageStore) Dir() string {
	return s.dir
}

// Save writes data to {dir}/{cityName}_{uuid}.jpg and returns the absolute path of the new file
func (s *ImageStore) Save(data []byte, cityName string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}

	fileName := fmt.Sprintf("%s_%s.jpg", sanitizeName(cityName), uuid.NewString())
	path, err := filepath.Abs(filepath.Join(s.dir, fileName))
	if err != nil {
		return "", fmt.Errorf("failed to resolve image path: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image %s: %w", path, err)
	}
	return path, nil
}

// Open opens a stored image for reading
func (s *ImageStore) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// Delete removes a stored image. A missing file is not an error.
func (s *ImageStore) Delete(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete image %s: %w", path, err)
	}
	return nil
}

// Usage reports how many files the store holds and their total size
func (s *ImageStore) Usage() (files int64, bytes int64, err error) {
	err = filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files++
		bytes += info.Size()
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return 0, 0, nil
	}
	return files, bytes, err
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.NewReplacer("/", "_", `\`, "_", string(os.PathSeparator), "_").Replace(name)
	if name == "" || name == "." || name == ".." {
		return "city"
	}
	return name
}
