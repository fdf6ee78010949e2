// Package document splits a documentation source into metadata, title and
// the body handed to the renderer.
package document

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	derrors "docsite/internal/errors"
	"docsite/internal/scan"
)

// FallbackTitle is used when neither metadata nor an H1 names the document.
const FallbackTitle = "Documentation"

const frontMatterDelimiter = "---"

var (
	metadataComment = regexp.MustCompile(`<!--\s*([\s\S]*?)\s*-->`)
	anyComment      = regexp.MustCompile(`<!--[\s\S]*?-->`)
)

// ParsedDocument is a source file after metadata extraction.
type ParsedDocument struct {
	SourcePath string
	Metadata   Metadata
	Title      string
	Body       string
}

// Parse splits raw into metadata and body.
//
// A leading front-matter block is dropped without being interpreted. The
// first HTML comment anywhere in raw supplies `key: value` metadata lines;
// every comment is then removed from the body.
func Parse(sourcePath, raw string) ParsedDocument {
	doc := ParsedDocument{
		SourcePath: sourcePath,
		Metadata:   parseMetadata(raw),
	}
	doc.Body = anyComment.ReplaceAllString(stripFrontMatter(raw), "")
	doc.Title = resolveTitle(doc.Metadata, doc.Body)
	return doc
}

// Load reads f below root and parses it.
func Load(root string, f scan.SourceFile) (ParsedDocument, error) {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(f.RelativePath)))
	if err != nil {
		return ParsedDocument{}, derrors.Read(f.RelativePath, err)
	}
	return Parse(f.RelativePath, string(data)), nil
}

// stripFrontMatter removes a `---` delimited block at the very start of text.
// An unterminated block is left untouched.
func stripFrontMatter(text string) string {
	first, rest, found := strings.Cut(text, "\n")
	if !found || strings.TrimRight(first, " \t\r") != frontMatterDelimiter {
		return text
	}
	offset := len(text) - len(rest)
	for len(rest) > 0 {
		line, next, hasNext := strings.Cut(rest, "\n")
		if strings.TrimRight(line, " \t\r") == frontMatterDelimiter {
			if !hasNext {
				return ""
			}
			return text[offset+len(line)+1:]
		}
		offset += len(line) + 1
		rest = next
	}
	return text
}

func parseMetadata(raw string) Metadata {
	var meta Metadata
	m := metadataComment.FindStringSubmatch(raw)
	if m == nil {
		return meta
	}
	for _, line := range strings.Split(m[1], "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		meta.Set(key, value)
	}
	return meta
}

func resolveTitle(meta Metadata, body string) string {
	if title, ok := meta.Get("title"); ok {
		return title
	}
	if title := firstH1(body); title != "" {
		return title
	}
	return FallbackTitle
}

// firstH1 returns the text of the first ATX level-1 heading outside fenced
// code blocks.
func firstH1(body string) string {
	var fence string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimLeft(line, " ")
		if len(line)-len(trimmed) > 3 {
			continue
		}
		if fence != "" {
			if strings.HasPrefix(trimmed, fence) {
				fence = ""
			}
			continue
		}
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			fence = trimmed[:3]
			continue
		}
		if len(trimmed) < 2 || trimmed[0] != '#' || (trimmed[1] != ' ' && trimmed[1] != '\t') {
			continue
		}
		if text := headingText(trimmed[1:]); text != "" {
			return text
		}
	}
	return ""
}

// headingText trims an ATX heading's content and its optional closing sequence.
func headingText(s string) string {
	s = strings.TrimSpace(s)
	closed := strings.TrimRight(s, "#")
	if closed == "" {
		return ""
	}
	if closed != s {
		if last := closed[len(closed)-1]; last == ' ' || last == '\t' {
			return strings.TrimSpace(closed)
		}
	}
	return s
}
