package upload

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by FileStore.Open for unknown names.
var ErrNotFound = errors.New("file not found")

// ErrInvalidName is returned for names that are not plain generated file names.
var ErrInvalidName = errors.New("invalid file name")

// FileInfo describes a stored object.
type FileInfo struct {
	Size        int64
	ContentType string
}

// FileStore persists uploaded files under flat generated names.
type FileStore interface {
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, name string) (io.ReadCloser, *FileInfo, error)
	Delete(ctx context.Context, name string) error
}

// ValidName reports whether name is a single path element without traversal.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return false
	}
	return filepath.Base(name) == name
}
