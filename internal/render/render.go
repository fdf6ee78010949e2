// internal/render/render.go
package render

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// DefaultHighlightStyle is the chroma style used for fenced code.
const DefaultHighlightStyle = "github"

var (
	ErrInvalidUTF8 = errors.New("content is not valid UTF-8")
	ErrConversion  = errors.New("markdown conversion failed")
)

// Heading is a section heading that received an anchor id.
type Heading struct {
	Level int
	ID    string
	Text  string
}

// RenderedPage is the HTML fragment of one document body.
type RenderedPage struct {
	HTML     string
	Headings []Heading
}

// Options configure a Renderer.
type Options struct {
	// Sanitize runs the rendered HTML through a UGC policy instead of
	// passing embedded raw HTML through.
	Sanitize       bool
	HighlightStyle string
}

// Renderer converts markdown bodies to HTML. It holds no per-document
// state and may be shared.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	style  string
}

// New builds a Renderer: GFM tables, autolinks and strikethrough,
// typographic quotes and dashes, footnotes, hard line breaks, raw HTML
// passthrough and class-based code highlighting.
func New(opts Options) *Renderer {
	style := opts.HighlightStyle
	if style == "" {
		style = DefaultHighlightStyle
	}
	r := &Renderer{
		style: style,
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Typographer,
				extension.Footnote,
				highlighting.NewHighlighting(
					highlighting.WithStyle(style),
					highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
				),
			),
			goldmark.WithParserOptions(
				parser.WithASTTransformers(
					util.Prioritized(newMDLinkTransformer(), 100),
					util.Prioritized(newHeadingAnchorTransformer(), 200),
				),
			),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
				html.WithUnsafe(),
			),
		),
	}
	if opts.Sanitize {
		r.policy = newPolicy()
	}
	return r
}

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("id").OnElements("h2", "h3", "h4", "h5", "h6")
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("pre", "code", "span", "div")
	return p
}

// Render converts body to HTML and lists the anchored headings in document
// order.
func (r *Renderer) Render(body string) (page RenderedPage, err error) {
	if !utf8.ValidString(body) {
		return RenderedPage{}, ErrInvalidUTF8
	}
	defer func() {
		if rec := recover(); rec != nil {
			page, err = RenderedPage{}, fmt.Errorf("%w: %v", ErrConversion, rec)
		}
	}()

	ctx := parser.NewContext()
	var htmlBuffer bytes.Buffer
	if err := r.md.Convert([]byte(body), &htmlBuffer, parser.WithContext(ctx)); err != nil {
		return RenderedPage{}, fmt.Errorf("%w: %v", ErrConversion, err)
	}

	out := htmlBuffer.Bytes()
	if r.policy != nil {
		out = r.policy.SanitizeBytes(out)
	}
	headings, _ := ctx.Get(headingsKey).([]Heading)
	return RenderedPage{HTML: string(out), Headings: headings}, nil
}

// StyleCSS returns the stylesheet matching the highlight classes emitted by
// this renderer.
func (r *Renderer) StyleCSS() (string, error) {
	var buf bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, styles.Get(r.style)); err != nil {
		return "", fmt.Errorf("writing %s highlight css: %w", r.style, err)
	}
	return buf.String(), nil
}
