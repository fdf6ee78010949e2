package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSiteMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadSite(filepath.Join(t.TempDir(), "site.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSite(), cfg)
}

func TestLoadSiteParsesMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	content := "title: Handbook\nversion: 1.4.0\nhomepage: https://example.com/handbook\ndescription: Team docs\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadSite(path)
	require.NoError(t, err)
	assert.Equal(t, "Handbook", cfg.Title)
	assert.Equal(t, "1.4.0", cfg.Version)
	assert.Equal(t, "https://example.com/handbook", cfg.Homepage)
	assert.Equal(t, "Team docs", cfg.Description)
}

func TestLoadSiteEmptyTitleFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 2.0.0\n"), 0o644))

	cfg, err := LoadSite(path)
	require.NoError(t, err)
	assert.Equal(t, "Documentation", cfg.Title)
	assert.Equal(t, "2.0.0", cfg.Version)
}

func TestLoadSiteMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title: [unclosed\n"), 0o644))

	_, err := LoadSite(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not parse config file")
}

func TestLoadOptionsDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DOCSITE_PORT", "")
	v := NewViper()

	opts, err := LoadOptions(v)
	require.NoError(t, err)
	assert.Equal(t, DefaultSource, opts.Source)
	assert.Equal(t, DefaultOutput, opts.Output)
	assert.Equal(t, DefaultSiteFile, opts.SiteFile)
	assert.Equal(t, DefaultPort, opts.Port)
	assert.False(t, opts.Sanitize)
}

func TestLoadOptionsPortFromEnvironment(t *testing.T) {
	t.Setenv("DOCSITE_PORT", "")
	t.Setenv("PORT", "8080")

	opts, err := LoadOptions(NewViper())
	require.NoError(t, err)
	assert.Equal(t, 8080, opts.Port)
}

func TestLoadOptionsPrefixedEnvironment(t *testing.T) {
	t.Setenv("DOCSITE_SRC", "handbook")
	t.Setenv("DOCSITE_SANITIZE", "true")

	opts, err := LoadOptions(NewViper())
	require.NoError(t, err)
	assert.Equal(t, "handbook", opts.Source)
	assert.True(t, opts.Sanitize)
}

func TestOptionsValidate(t *testing.T) {
	base := Options{Source: "docs", Output: "_site", Port: 3000}
	require.NoError(t, base.Validate())

	bad := base
	bad.Port = 0
	assert.Error(t, bad.Validate())

	bad = base
	bad.Source = " "
	assert.Error(t, bad.Validate())
}
