// Package storage persists uploaded media files. Two backends are
// provided: a local directory tree for the default compose deployment and
// an S3-compatible bucket for hosted setups.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/dropwishes/api/internal/platform"
)

// ErrNotFound is returned when the requested object does not exist.
var ErrNotFound = errors.New("storage: object not found")

// Store reads and writes media objects by key. Keys are slash-separated
// relative paths such as "uploads/product/<id>.jpg".
type Store interface {
	Save(ctx context.Context, key string, r io.Reader, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// ImageKey builds a storage key for an uploaded image. The original
// filename only contributes its extension, so uploads can never collide or
// leak client-side names.
func ImageKey(category, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join("uploads", category, platform.NewID()+ext)
}

// ValidKey reports whether a key is safe to pass to a Store. It rejects
// absolute paths and any traversal outside the media root.
func ValidKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") {
		return false
	}
	clean := path.Clean(key)
	return clean == key && !strings.HasPrefix(clean, "..")
}
