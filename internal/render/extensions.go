// internal/render/extensions.go
package render

import (
	"bytes"
	"html"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// anchorLevel is the shallowest heading level that receives an id.
// Level 1 is the document title.
const anchorLevel = 2

var headingsKey = parser.NewContextKey()

// mdLinkTransformer rewrites relative links to markdown sources so they
// point at the rendered pages instead.
type mdLinkTransformer struct{}

func newMDLinkTransformer() parser.ASTTransformer {
	return &mdLinkTransformer{}
}

func (t *mdLinkTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}
		link.Destination = rewriteMarkdownLink(link.Destination)
		return ast.WalkContinue, nil
	})
}

// rewriteMarkdownLink swaps a trailing .md for .html, keeping any fragment.
// Absolute URLs are left alone.
func rewriteMarkdownLink(dest []byte) []byte {
	if bytes.Contains(dest, []byte("://")) || bytes.HasPrefix(dest, []byte("mailto:")) {
		return dest
	}
	target, fragment, hasFragment := bytes.Cut(dest, []byte("#"))
	if !bytes.HasSuffix(target, []byte(".md")) {
		return dest
	}
	out := make([]byte, 0, len(dest)+2)
	out = append(out, bytes.TrimSuffix(target, []byte(".md"))...)
	out = append(out, ".html"...)
	if hasFragment {
		out = append(out, '#')
		out = append(out, fragment...)
	}
	return out
}

// headingAnchorTransformer assigns page-unique ids to section headings and
// records them in the parser context for the caller.
type headingAnchorTransformer struct{}

func newHeadingAnchorTransformer() parser.ASTTransformer {
	return &headingAnchorTransformer{}
}

func (t *headingAnchorTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	src := reader.Source()
	slugs := newSlugger()
	headings := make([]Heading, 0)
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok || h.Level < anchorLevel {
			return ast.WalkContinue, nil
		}
		label := plainText(h, src)
		id := slugs.unique(label)
		h.SetAttributeString("id", []byte(id))
		headings = append(headings, Heading{Level: h.Level, ID: id, Text: label})
		return ast.WalkSkipChildren, nil
	})
	pc.Set(headingsKey, headings)
}

// plainText flattens the inline content of n. Typographic substitutions are
// stored as entities by goldmark, so the result is unescaped.
func plainText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := c.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(src))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		case *ast.AutoLink:
			b.Write(v.Label(src))
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(html.UnescapeString(b.String()))
}
