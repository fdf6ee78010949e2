package scan

import (
	"os"
	"path/filepath"
	"testing"

	derrors "docsite/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func paths(files []SourceFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.RelativePath
	}
	return out
}

func TestScanOrderIsDepthFirstLexical(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"index.md":              "# Home",
		"zeta.md":               "# Zeta",
		"api/reference.md":      "# Reference",
		"api/overview.md":       "# Overview",
		"guides/deep/nested.md": "# Nested",
		"guides/start.md":       "# Start",
		"notes.txt":             "not docs",
		".hidden.md":            "# Hidden",
		".drafts/secret.md":     "# Secret",
		"api/UPPER.MD":          "# Upper",
		"guides/deep/image.png": "png",
	})

	files, err := Scan(root, DefaultExtension)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"api/UPPER.MD",
		"api/overview.md",
		"api/reference.md",
		"guides/deep/nested.md",
		"guides/start.md",
		"index.md",
		"zeta.md",
	}, paths(files))
	for _, f := range files {
		assert.False(t, f.IsDirectory)
	}
}

func TestScanIsDeterministic(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"b.md": "", "a.md": "", "c/d.md": ""})

	first, err := Scan(root, "")
	require.NoError(t, err)
	second, err := Scan(root, "")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestScanEmptyRoot(t *testing.T) {
	files, err := Scan(t.TempDir(), DefaultExtension)
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.NotNil(t, files)
}

func TestScanMissingRoot(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "missing"), DefaultExtension)
	require.Error(t, err)
	assert.ErrorIs(t, err, derrors.ErrScan)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestScanRootIsFile(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "file.md")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := Scan(file, DefaultExtension)
	assert.ErrorIs(t, err, derrors.ErrScan)
}

func TestScanFollowsFileSymlinks(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"real.md": "# Real"})
	if err := os.Symlink(filepath.Join(root, "real.md"), filepath.Join(root, "link.md")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	files, err := Scan(root, DefaultExtension)
	require.NoError(t, err)
	assert.Equal(t, []string{"link.md", "real.md"}, paths(files))
}

func TestSourceFileHelpers(t *testing.T) {
	f := SourceFile{RelativePath: "guides/getting-started.md"}
	assert.Equal(t, "guides/getting-started", f.Stem())
	assert.Equal(t, "getting-started", f.Base())
	assert.Equal(t, "guides/getting-started.html", f.HTMLPath())
}
