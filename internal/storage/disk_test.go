package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStoreRoundTrip(t *testing.T) {
	store := NewDiskStore(t.TempDir())
	ctx := context.Background()

	key := "uploads/product/test.jpg"
	require.NoError(t, store.Save(ctx, key, strings.NewReader("image bytes"), "image/jpeg"))

	rc, err := store.Open(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, "image bytes", string(data))

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Open(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDiskStoreRejectsTraversal(t *testing.T) {
	root := t.TempDir()
	store := NewDiskStore(filepath.Join(root, "media"))
	ctx := context.Background()

	for _, key := range []string{"../escape.txt", "/etc/passwd", "uploads/../../escape.txt", ""} {
		err := store.Save(ctx, key, strings.NewReader("x"), "text/plain")
		assert.Error(t, err, "key %q", key)
	}
}

func TestDeleteMissingFileIsNoop(t *testing.T) {
	store := NewDiskStore(t.TempDir())
	assert.NoError(t, store.Delete(context.Background(), "uploads/product/gone.png"))
}

func TestImageKey(t *testing.T) {
	key := ImageKey("product", "My Photo.JPG")
	assert.True(t, strings.HasPrefix(key, "uploads/product/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.True(t, ValidKey(key))

	// Two uploads of the same filename never collide.
	assert.NotEqual(t, key, ImageKey("product", "My Photo.JPG"))
}

func TestValidKey(t *testing.T) {
	assert.True(t, ValidKey("uploads/blog/a.png"))
	assert.False(t, ValidKey("/uploads/blog/a.png"))
	assert.False(t, ValidKey("uploads/../secret"))
	assert.False(t, ValidKey("../a.png"))
	assert.False(t, ValidKey(""))
}
