package services

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRejectsTraversal(t *testing.T) {
	store, err := NewDocumentStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{
		"",
		"../secrets.env",
		"..\\secrets.env",
		"sub/dir.pdf",
		"sub\\dir.pdf",
		"..",
		"a..b/../c.pdf",
	} {
		_, err := store.Resolve(name)
		assert.ErrorIs(t, err, ErrUnsafeFilename, "filename %q should be rejected", name)
	}
}

func TestResolveStaysUnderRoot(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDocumentStore(dir)
	require.NoError(t, err)

	path, err := store.Resolve("0b1c2d3e.pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, dir+string(filepath.Separator)))
	assert.Equal(t, "0b1c2d3e.pdf", filepath.Base(path))
}

func TestAllowedDocumentType(t *testing.T) {
	assert.True(t, AllowedDocumentType("application/pdf"))
	assert.True(t, AllowedDocumentType("image/jpeg"))
	assert.True(t, AllowedDocumentType("image/png"))
	assert.True(t, AllowedDocumentType("image/webp"))
	assert.True(t, AllowedDocumentType("Application/PDF; charset=binary"))

	assert.False(t, AllowedDocumentType("image/gif"))
	assert.False(t, AllowedDocumentType("text/html"))
	assert.False(t, AllowedDocumentType(""))
}

func TestRemoveMissingFileIsNotAnError(t *testing.T) {
	store, err := NewDocumentStore(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, store.Remove("never-stored.pdf"))
}
