package objectstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "media")
	store, err := NewLocal(root, "https://cdn.example.com/")
	require.NoError(t, err)
	assert.Equal(t, root, store.Root())
	assert.DirExists(t, store.Root())

	t.Run("Upload and Open", func(t *testing.T) {
		err := store.Upload(ctx, "ads-media", "acme.mp4", strings.NewReader("video bytes"), "video/mp4")
		require.NoError(t, err)

		rc, err := store.Open(ctx, "ads-media", "acme.mp4")
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "video bytes", string(data))

		entries, err := os.ReadDir(filepath.Join(root, "ads-media"))
		require.NoError(t, err)
		assert.Len(t, entries, 1, "no temp files left behind")
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Upload(ctx, "ads-media", "a.png", strings.NewReader("one"), "image/png"))
		require.NoError(t, store.Upload(ctx, "ads-media", "a.png", strings.NewReader("two"), "image/png"))

		rc, err := store.Open(ctx, "ads-media", "a.png")
		require.NoError(t, err)
		defer rc.Close()
		data, _ := io.ReadAll(rc)
		assert.Equal(t, "two", string(data))
	})

	t.Run("Open missing", func(t *testing.T) {
		_, err := store.Open(ctx, "ads-media", "missing.png")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("PublicURL", func(t *testing.T) {
		assert.Equal(t, "https://cdn.example.com/media/ads-media/acme.mp4", store.PublicURL("ads-media", "acme.mp4"))
	})

	t.Run("Canceled context", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		err := store.Upload(canceled, "ads-media", "late.png", strings.NewReader("x"), "image/png")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLocalStoreInvalidNames(t *testing.T) {
	t.Parallel()

	store, err := NewLocal(t.TempDir(), "")
	require.NoError(t, err)

	testcases := []struct {
		name   string
		bucket string
		object string
	}{
		{name: "traversal", bucket: "ads-media", object: "../escape.png"},
		{name: "nested", bucket: "ads-media", object: "a/b.png"},
		{name: "hidden", bucket: "ads-media", object: ".upload-1"},
		{name: "empty bucket", bucket: "", object: "a.png"},
		{name: "backslash", bucket: `ads\media`, object: "a.png"},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := store.Upload(context.Background(), tc.bucket, tc.object, strings.NewReader("x"), "")
			assert.ErrorIs(t, err, ErrInvalidName)
		})
	}

	assert.Equal(t, "/media/ads-media/a.png", store.PublicURL("ads-media", "a.png"))
}
