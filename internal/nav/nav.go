// Package nav builds the per-page navigation model of a site.
//
// A Model is page-relative: only the entry of the page being assembled is
// marked current and carries that page's section headings, so models are
// built fresh for every page and never shared between documents.
package nav

import (
	"path"
	"unicode/utf8"

	"docsite/internal/render"
	"docsite/internal/scan"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RootHref is the href of the root index document.
const RootHref = "/"

const (
	indexName    = "index"
	sectionLevel = 2
)

// Heading is an in-page link of the current entry.
type Heading struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Href string `json:"href"`
}

// Entry is one document in the navigation.
type Entry struct {
	DisplayName string
	Href        string
	IsCurrent   bool
	Headings    []Heading
}

// Model is the ordered navigation of one page.
type Model struct {
	Entries []Entry
}

// Current returns the entry marked current.
func (m Model) Current() (Entry, bool) {
	for _, e := range m.Entries {
		if e.IsCurrent {
			return e, true
		}
	}
	return Entry{}, false
}

// Build returns the navigation for current, in manifest order. The current
// entry lists the level-2 headings of its page.
func Build(manifest []scan.SourceFile, current scan.SourceFile, headings []render.Heading) Model {
	entries := make([]Entry, 0, len(manifest))
	for _, f := range manifest {
		e := Entry{
			DisplayName: DisplayName(f),
			Href:        Href(f),
		}
		if f.RelativePath == current.RelativePath {
			e.IsCurrent = true
			e.Headings = sectionLinks(e.Href, headings)
		}
		entries = append(entries, e)
	}
	return Model{Entries: entries}
}

// DisplayName is the file name without extension, first letter upper-cased.
func DisplayName(f scan.SourceFile) string {
	base := f.Base()
	r, size := utf8.DecodeRuneInString(base)
	if size == 0 {
		return base
	}
	return cases.Upper(language.Und).String(string(r)) + base[size:]
}

// Href is the site-relative link to f's page. Index documents link to their
// directory: the root index is the site root.
func Href(f scan.SourceFile) string {
	stem := f.Stem()
	if path.Base(stem) != indexName {
		return stem + ".html"
	}
	dir := path.Dir(stem)
	if dir == "." {
		return RootHref
	}
	return "/" + dir + "/"
}

func sectionLinks(pageHref string, headings []render.Heading) []Heading {
	if pageHref == RootHref {
		pageHref = ""
	}
	links := make([]Heading, 0, len(headings))
	for _, h := range headings {
		if h.Level != sectionLevel {
			continue
		}
		links = append(links, Heading{ID: h.ID, Text: h.Text, Href: pageHref + "#" + h.ID})
	}
	return links
}
