package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	// DirPerm is the permission used for bucket directories.
	DirPerm fs.FileMode = 0o750

	// FilePerm is the permission used for artifacts.
	FilePerm fs.FileMode = 0o644

	tempPattern = ".partial-*"
)

var (
	// ErrWrite is returned when an artifact cannot be persisted.
	ErrWrite = errors.New("write artifact")

	// ErrNotDirectory is returned when a path that must be a directory
	// exists as something else.
	ErrNotDirectory = errors.New("not a directory")
)

// Store is the filesystem capability the materializer needs.
type Store interface {
	// EnsureDir creates dir and its parents if missing. It is idempotent.
	EnsureDir(dir string) error

	// Exists reports whether a file is present at path.
	Exists(path string) (bool, error)

	// WriteAtomic writes data to path so that path either does not exist
	// or holds the full content.
	WriteAtomic(path string, data []byte) error
}

// FileStore implements Store on the local filesystem.
type FileStore struct{}

// NewFileStore creates a FileStore.
func NewFileStore() *FileStore {
	return &FileStore{}
}

// EnsureDir implements Store.
func (s *FileStore) EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %w", dir, ErrNotDirectory)
	}
	return nil
}

// Exists implements Store. Errors other than "not exist" are returned so the
// caller does not mistake an unreadable path for a missing artifact.
func (s *FileStore) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", path, err)
}

// WriteAtomic implements Store. On failure the temporary file is removed and
// nothing is left at path.
func (s *FileStore) WriteAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrWrite, path, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("%w %s: %w", ErrWrite, path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("%w %s: %w", ErrWrite, path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w %s: %w", ErrWrite, path, err)
	}
	if err = os.Chmod(tmpName, FilePerm); err != nil {
		return fmt.Errorf("%w %s: %w", ErrWrite, path, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w %s: %w", ErrWrite, path, err)
	}
	return nil
}

// CleanPartials removes temporary files left behind in dir by an
// interrupted write. It returns the number of files removed.
func CleanPartials(dir string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, tempPattern))
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, m := range matches {
		if rmErr := os.Remove(m); rmErr == nil {
			removed++
		}
	}
	return removed, nil
}
