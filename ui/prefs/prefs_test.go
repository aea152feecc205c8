package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "preferences.json")

	p := LoadFrom(path)
	assert.Equal(t, 1024.0, p.FloatWithFallback(KeyWindowWidth, 1024))
	assert.Nil(t, p.Strings(KeyGalleryURLs))

	p.SetFloat(KeyWindowWidth, 1280)
	p.SetString(KeyLastDir, "/home/club/photos")
	p.SetStrings(KeyGalleryURLs, []string{"a.jpg", "https://example.org/b.png"})
	require.NoError(t, p.Save())

	q := LoadFrom(path)
	assert.Equal(t, path, q.Path())
	assert.Equal(t, 1280.0, q.FloatWithFallback(KeyWindowWidth, 0))
	assert.Equal(t, "/home/club/photos", q.String(KeyLastDir))
	assert.Equal(t, []string{"a.jpg", "https://example.org/b.png"}, q.Strings(KeyGalleryURLs))
}

func TestLoadCorruptFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	p := LoadFrom(path)
	assert.Equal(t, 600.0, p.FloatWithFallback(KeyWindowHeight, 600))
	assert.Empty(t, p.String(KeyLastDir))
}
