package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"docsite/internal/config"
	"docsite/internal/document"
	"docsite/internal/scan"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateNewSite(t *testing.T) {
	dir := t.TempDir()

	created, err := CreateNewSite(dir)
	require.NoError(t, err)
	assert.Len(t, created, 3)

	site, err := config.LoadSite(filepath.Join(dir, config.DefaultSiteFile))
	require.NoError(t, err)
	assert.Equal(t, "My Project", site.Title)

	files, err := scan.Scan(filepath.Join(dir, config.DefaultSource), scan.DefaultExtension)
	require.NoError(t, err)
	require.Len(t, files, 2)

	doc, err := document.Load(filepath.Join(dir, config.DefaultSource), scan.SourceFile{RelativePath: "index.md"})
	require.NoError(t, err)
	assert.Equal(t, "Welcome", doc.Title)
}

func TestCreateNewSiteRefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, config.DefaultSiteFile)
	require.NoError(t, os.WriteFile(existing, []byte("title: Mine\n"), 0644))

	_, err := CreateNewSite(dir)
	assert.ErrorIs(t, err, ErrExists)

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "title: Mine\n", string(data))
	assert.NoDirExists(t, filepath.Join(dir, config.DefaultSource))
}

func TestCreateNewContent(t *testing.T) {
	root := t.TempDir()

	path, err := CreateNewContent(root, "Release Notes 2.0", config.Site{Author: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "release-notes-2-0.md"), path)

	doc, err := document.Load(root, scan.SourceFile{RelativePath: "release-notes-2-0.md"})
	require.NoError(t, err)
	assert.Equal(t, "Release Notes 2.0", doc.Title)
	author, ok := doc.Metadata.Get("author")
	require.True(t, ok)
	assert.Equal(t, "Ada", author)

	_, err = CreateNewContent(root, "Release Notes 2.0", config.Site{})
	assert.ErrorIs(t, err, ErrExists)
}

func TestCreateNewContentRejectsEmptySlug(t *testing.T) {
	_, err := CreateNewContent(t.TempDir(), "!!!", config.Site{})
	assert.Error(t, err)
}
