// Package artifact stores finished image products on disk, one PNG per
// command.
package artifact

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrNotFound indicates no artifact exists for the requested command.
var ErrNotFound = errors.New("artifact not found")

// Store keeps one PNG file per command under a single directory.
type Store struct {
	dir string
}

// NewStore creates the backing directory if needed and returns the store.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("artifact directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the backing directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the on-disk location for a command's artifact. The file may
// or may not exist.
func (s *Store) Path(commandID string) string {
	return filepath.Join(s.dir, commandID+".png")
}

// Write stores an artifact atomically. A partially written file is never
// observable under the final name.
func (s *Store) Write(commandID string, data []byte) (string, error) {
	if commandID == "" {
		return "", errors.New("command ID is required")
	}

	tmp, err := os.CreateTemp(s.dir, commandID+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close artifact: %w", err)
	}

	final := s.Path(commandID)
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("publish artifact: %w", err)
	}
	return final, nil
}

// Open returns a reader over the stored artifact.
func (s *Store) Open(commandID string) (io.ReadCloser, error) {
	f, err := os.Open(s.Path(commandID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// Exists reports whether an artifact is present for the command.
func (s *Store) Exists(commandID string) bool {
	info, err := os.Stat(s.Path(commandID))
	return err == nil && info.Mode().IsRegular()
}

// Size returns the artifact size in bytes.
func (s *Store) Size(commandID string) (int64, error) {
	info, err := os.Stat(s.Path(commandID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return info.Size(), nil
}

// Remove deletes a command's artifact. Removing a missing artifact is not
// an error.
func (s *Store) Remove(commandID string) error {
	err := os.Remove(s.Path(commandID))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Clear deletes every stored artifact and returns how many files were
// removed.
func (s *Store) Clear() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read artifact directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".png" {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
