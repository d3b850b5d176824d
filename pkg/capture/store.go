package capture

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const filePrefix = "file://"

// Store persists captured frames so they have a displayable locator.
type Store struct {
	dir string
}

// NewStore creates the directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("capture store: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the backing directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes data under a fresh name and returns its locator.
func (s *Store) Save(data []byte, ext string) (string, error) {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	path := filepath.Join(s.dir, "iris-"+uuid.NewString()+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("capture store: %w", err)
	}
	return Locator(path), nil
}

// Prune removes stored files older than maxAge and returns how many were removed.
func (s *Store) Prune(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("capture store: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "iris-") {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

// Locator returns the file locator for path.
func Locator(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return filePrefix + filepath.ToSlash(path)
}

// PathOf returns the filesystem path of a file locator.
func PathOf(locator string) (string, bool) {
	if !strings.HasPrefix(locator, filePrefix) {
		return "", false
	}
	return filepath.FromSlash(strings.TrimPrefix(locator, filePrefix)), true
}
