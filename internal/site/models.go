// internal/site/models.go
package site

import (
	"html/template"
	"time"

	"docsite/internal/config"
	"docsite/internal/document"
	"docsite/internal/nav"

	"go.uber.org/multierr"
)

// PageData is the struct passed to templates.
type PageData struct {
	Title      string
	Metadata   []document.Entry // rendered as <meta> tags, in source order
	Site       config.Site
	Nav        nav.Model
	Sections   []nav.Heading // the current page's section links, exposed as JSON to the client script
	Content    template.HTML
	BaseHref   string
	SourceHref string
	Styles     template.CSS
	Script     template.JS
}

// SkippedFile is a source the build reported and left out.
type SkippedFile struct {
	Path string
	Err  error
}

// Report summarises one whole-tree build.
type Report struct {
	BuildID  string
	Pages    int
	Skipped  []SkippedFile
	Duration time.Duration
}

// Err combines the failures of all skipped files, or returns nil.
func (r Report) Err() error {
	var err error
	for _, s := range r.Skipped {
		err = multierr.Append(err, s.Err)
	}
	return err
}
