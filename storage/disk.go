// Package storage persists uploaded listing images on local disk.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// DiskStore writes uploads under a single directory with random filenames,
// keeping the original extension so static file serving gets the content type
// right.
type DiskStore struct {
	dir     string
	newName func() string
}

// NewDiskStore builds a store rooted at dir. The directory is created lazily
// on first save.
func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{
		dir:     dir,
		newName: uuid.NewString,
	}
}

// WithNameGenerator overrides the filename generator, for tests.
func (s *DiskStore) WithNameGenerator(gen func() string) *DiskStore {
	s.newName = gen
	return s
}

// Save streams src to a new file and returns the stored path, relative to the
// process working directory, suitable for persisting on the listing.
func (s *DiskStore) Save(src io.Reader, originalName string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: create upload dir: %w", err)
	}

	name := s.newName() + filepath.Ext(originalName)
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("storage: create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("storage: write file: %w", err)
	}

	return path, nil
}

// Dir returns the root the store writes into.
func (s *DiskStore) Dir() string {
	return s.dir
}
