// Package render turns wiki pages into HTML, both for the live server and
// for the single-file static export.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	wikiparser "github.com/starford/wikishell/internal/parser"
)

// LinkFunc maps a page path to the href a wikilink should point at.
type LinkFunc func(pagePath string) string

// Renderer converts Markdown page bodies to HTML.
type Renderer struct {
	md goldmark.Markdown
}

// New creates a Renderer with GitHub-flavoured Markdown enabled.
func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Typographer,
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
	}
}

// Body renders a page body, rewriting [[wikilinks]] through link.
func (r *Renderer) Body(body string, link LinkFunc) (template.HTML, error) {
	src := wikiparser.ReplaceLinks(body, func(target, label string) string {
		return fmt.Sprintf("[%s](<%s>)", escapeLabel(label), link(wikiparser.PagePath(target)))
	})
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render: convert: %w", err)
	}
	return template.HTML(buf.String()), nil //nolint:gosec // goldmark escapes raw HTML by default
}

// ServerLink links to a page on the live server.
func ServerLink(pagePath string) string {
	parts := strings.Split(pagePath, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return "/pages/" + strings.Join(parts, "/")
}

// ExportLink links to a page section inside the static export.
func ExportLink(pagePath string) string {
	return "#" + Anchor(pagePath)
}

// Anchor returns the HTML id used for a page inside the static export.
func Anchor(pagePath string) string {
	p := strings.TrimSuffix(pagePath, ".md")
	var b strings.Builder
	b.WriteString("page-")
	for _, r := range strings.ToLower(p) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r > 127:
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

func escapeLabel(s string) string {
	return strings.NewReplacer("[", `\[`, "]", `\]`).Replace(s)
}
