package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageStore_SaveOpenDelete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "images", "cities")
	store := NewImageStore(dir)

	path, err := store.Save([]byte("jpeg-bytes"), "Tallinn")
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "Tallinn_"))
	assert.Equal(t, ".jpg", filepath.Ext(path))

	rc, err := store.Open(path)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "jpeg-bytes", string(data))

	require.NoError(t, store.Delete(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Deleting again is not an error
	assert.NoError(t, store.Delete(path))
}

func TestImageStore_SameNameDoesNotCollide(t *testing.T) {
	store := NewImageStore(t.TempDir())

	first, err := store.Save([]byte("a"), "Springfield")
	require.NoError(t, err)
	second, err := store.Save([]byte("b"), "Springfield")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestImageStore_OpenMissing(t *testing.T) {
	store := NewImageStore(t.TempDir())
	_, err := store.Open(filepath.Join(store.Dir(), "missing.jpg"))
	assert.Error(t, err)
}

func TestImageStore_Usage(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		store := NewImageStore(filepath.Join(t.TempDir(), "not-yet"))
		files, size, err := store.Usage()
		require.NoError(t, err)
		assert.Zero(t, files)
		assert.Zero(t, size)
	})

	t.Run("with files", func(t *testing.T) {
		store := NewImageStore(t.TempDir())
		_, err := store.Save([]byte("12345"), "A")
		require.NoError(t, err)
		_, err = store.Save([]byte("123"), "B")
		require.NoError(t, err)

		files, size, err := store.Usage()
		require.NoError(t, err)
		assert.Equal(t, int64(2), files)
		assert.Equal(t, int64(8), size)
	})
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"Tallinn", "Tallinn"},
		{"New York City", "New York City"},
		{"a/b", "a_b"},
		{`a\b`, "a_b"},
		{"  ", "city"},
		{"..", "city"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, sanitizeName(tt.in), tt.in)
	}
}
