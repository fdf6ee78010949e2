// internal/scaffold/scaffold.go
package scaffold

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"text/template"

	"docsite/internal/config"
	"docsite/internal/render"
)

// ErrExists is returned instead of overwriting a file.
var ErrExists = errors.New("file already exists")

// CreateNewSite writes a starter project into dir: the metadata file and a
// small docs tree. Existing files are never overwritten.
func CreateNewSite(dir string) ([]string, error) {
	files := []struct{ path, content string }{
		{config.DefaultSiteFile, siteYamlContent},
		{filepath.Join(config.DefaultSource, "index.md"), indexMdContent},
		{filepath.Join(config.DefaultSource, "guide", "getting-started.md"), gettingStartedMdContent},
	}
	for _, f := range files {
		if _, err := os.Stat(filepath.Join(dir, f.path)); err == nil {
			return nil, fmt.Errorf("%s: %w", filepath.Join(dir, f.path), ErrExists)
		}
	}

	created := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.path)
		if err := writeNew(path, []byte(f.content)); err != nil {
			return created, err
		}
		created = append(created, path)
	}
	return created, nil
}

// CreateNewContent adds a document named after title to sourceRoot and
// returns its path. The title is stored in the comment metadata block.
func CreateNewContent(sourceRoot, title string, site config.Site) (string, error) {
	slug := render.Slugify(title)
	if slug == "" {
		return "", fmt.Errorf("title %q has no usable file name", title)
	}
	path := filepath.Join(sourceRoot, slug+".md")

	tmpl, err := template.New("archetype").Parse(archetypeContent)
	if err != nil {
		return "", fmt.Errorf("failed to parse archetype: %w", err)
	}
	data := struct {
		Title  string
		Author string
	}{
		Title:  title,
		Author: site.Author,
	}
	var output bytes.Buffer
	if err := tmpl.Execute(&output, data); err != nil {
		return "", fmt.Errorf("failed to execute archetype template: %w", err)
	}

	if err := writeNew(path, output.Bytes()); err != nil {
		return "", err
	}
	return path, nil
}

func writeNew(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%s: %w", path, ErrExists)
	}
	if err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return f.Close()
}

const siteYamlContent = `title: My Project
description: Documentation for My Project.
version: 0.1.0
homepage: https://example.com
author: Your Name
`

const indexMdContent = `<!--
title: Welcome
description: Start page of the documentation.
-->
# Welcome

This site is generated from the Markdown files in this directory.

## Next steps

- Read the [getting started guide](guide/getting-started.md).
- Run "docsite serve" and edit any file.
`

const gettingStartedMdContent = `# Getting started

## Install

Add a Markdown file anywhere below the docs directory.

## Build

Run "docsite build" to write the static site.
`

const archetypeContent = `<!--
title: {{ .Title }}
{{- if .Author }}
author: {{ .Author }}
{{- end }}
-->
# {{ .Title }}

Write something meaningful here.
`
