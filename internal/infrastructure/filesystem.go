package infrastructure

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const (
	dirPerm  = 0755
	filePerm = 0644
)

// LocalFilesystem implements domain.Filesystem on the local disk
type LocalFilesystem struct{}

// NewLocalFilesystem creates a local filesystem
func NewLocalFilesystem() *LocalFilesystem {
	return &LocalFilesystem{}
}

// MkdirAll creates path and any parents
func (LocalFilesystem) MkdirAll(path string) error {
	err := os.MkdirAll(path, dirPerm)
	if err != nil && errors.Is(err, fs.ErrExist) {
		// another writer created it first
		if fi, statErr := os.Stat(path); statErr == nil && fi.IsDir() {
			return nil
		}
	}
	return err
}

// Exists reports whether path exists
func (LocalFilesystem) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// WriteAtomic writes r to a temporary file next to path and renames it into
// place once the stream is fully written.
func (LocalFilesystem) WriteAtomic(path string, r io.Reader) (int64, error) {
	partial := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".partial-"+uuid.New().String())

	f, err := os.OpenFile(partial, os.O_CREATE|os.O_EXCL|os.O_WRONLY, filePerm)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		os.Remove(partial)
		return n, fmt.Errorf("failed to write asset stream: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(partial)
		return n, err
	}
	if err := f.Close(); err != nil {
		os.Remove(partial)
		return n, err
	}

	if err := os.Rename(partial, path); err != nil {
		os.Remove(partial)
		return n, err
	}
	return n, nil
}

// RemoveAll removes path and its children
func (LocalFilesystem) RemoveAll(path string) error {
	return os.RemoveAll(path)
}
