package nav

import (
	"testing"

	"docsite/internal/render"
	"docsite/internal/scan"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func manifest(paths ...string) []scan.SourceFile {
	files := make([]scan.SourceFile, len(paths))
	for i, p := range paths {
		files[i] = scan.SourceFile{RelativePath: p}
	}
	return files
}

func TestBuildMarksExactlyOneCurrent(t *testing.T) {
	files := manifest("api/reference.md", "guide/setup.md", "index.md", "journal.md")
	headings := []render.Heading{
		{Level: 2, ID: "install", Text: "Install"},
		{Level: 3, ID: "linux", Text: "Linux"},
		{Level: 2, ID: "configure", Text: "Configure"},
	}

	model := Build(files, files[1], headings)

	require.Len(t, model.Entries, 4)
	current := 0
	for _, e := range model.Entries {
		if e.IsCurrent {
			current++
		} else {
			assert.Empty(t, e.Headings)
		}
	}
	assert.Equal(t, 1, current)

	entry, ok := model.Current()
	require.True(t, ok)
	assert.Equal(t, "Setup", entry.DisplayName)
	assert.Equal(t, []Heading{
		{ID: "install", Text: "Install", Href: "guide/setup.html#install"},
		{ID: "configure", Text: "Configure", Href: "guide/setup.html#configure"},
	}, entry.Headings)
}

func TestBuildKeepsManifestOrder(t *testing.T) {
	files := manifest("zeta.md", "alpha.md", "index.md")

	for _, cur := range files {
		model := Build(files, cur, nil)
		names := make([]string, 0, len(model.Entries))
		for _, e := range model.Entries {
			names = append(names, e.DisplayName)
		}
		assert.Equal(t, []string{"Zeta", "Alpha", "Index"}, names)
	}
}

func TestIndexHeadingsUseFragmentOnly(t *testing.T) {
	files := manifest("index.md", "other.md")
	model := Build(files, files[0], []render.Heading{{Level: 2, ID: "welcome", Text: "Welcome"}})

	assert.Equal(t, RootHref, model.Entries[0].Href)
	assert.Equal(t, "#welcome", model.Entries[0].Headings[0].Href)
}

func TestBuildWithCurrentOutsideManifest(t *testing.T) {
	files := manifest("a.md", "b.md")
	model := Build(files, scan.SourceFile{RelativePath: "c.md"}, nil)

	_, ok := model.Current()
	assert.False(t, ok)
}

func TestHref(t *testing.T) {
	cases := map[string]string{
		"index.md":               "/",
		"journal.md":             "journal.html",
		"guide/setup.md":         "guide/setup.html",
		"guide/index.md":         "/guide/",
		"guide/deep/index.md":    "/guide/deep/",
		"reindex.md":             "reindex.html",
		"guide/index-of-apis.md": "guide/index-of-apis.html",
	}
	for in, want := range cases {
		assert.Equal(t, want, Href(scan.SourceFile{RelativePath: in}), in)
	}
}

func TestDisplayName(t *testing.T) {
	cases := map[string]string{
		"journal.md":          "Journal",
		"guide/setup.md":      "Setup",
		"getting-started.md":  "Getting-started",
		"éclair.md":           "Éclair",
		"API.md":              "API",
		"index.md":            "Index",
		"notes/2024-recap.md": "2024-recap",
	}
	for in, want := range cases {
		assert.Equal(t, want, DisplayName(scan.SourceFile{RelativePath: in}), in)
	}
}
