package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"time"
)

const baseCSS = `
body{font-family:-apple-system,BlinkMacSystemFont,"Segoe UI",sans-serif;margin:0;color:#222}
header{padding:.6rem 1.2rem;background:#f4f4f6;border-bottom:1px solid #ddd}
header a{margin-right:1rem;color:#335;text-decoration:none}
main{max-width:52rem;margin:1.5rem auto;padding:0 1.2rem;line-height:1.55}
section.page{border-bottom:1px solid #eee;padding-bottom:1.5rem;margin-bottom:1.5rem}
.meta{color:#777;font-size:.85rem}
.tags span{background:#eef;border-radius:3px;padding:0 .3rem;margin-right:.3rem}
`

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} · {{.WikiName}}</title>
<style>{{.CSS}}</style>
</head>
<body>
<header><a href="/">{{.WikiName}}</a><a href="/pages">All pages</a></header>
<main>
<h1>{{.Title}}</h1>
{{if .Tags}}<p class="tags">{{range .Tags}}<span>{{.}}</span>{{end}}</p>{{end}}
{{.Body}}
{{if .Backlinks}}<h3>Linked from</h3><ul>{{range .Backlinks}}<li><a href="{{.Href}}">{{.Label}}</a></li>{{end}}</ul>{{end}}
</main>
<script>
(function(){var es=new EventSource("/api/events");
es.addEventListener("page.updated",function(e){var d=JSON.parse(e.data);if(d.path==={{.Path}})location.reload()});})();
</script>
</body>
</html>
`))

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.WikiName}}</title>
<style>{{.CSS}}</style>
</head>
<body>
<header><a href="/">{{.WikiName}}</a><a href="/pages">All pages</a></header>
<main>
<h1>All pages</h1>
<ul>{{range .Pages}}<li><a href="{{.Href}}">{{.Label}}</a></li>{{else}}<li>No pages yet.</li>{{end}}</ul>
</main>
</body>
</html>
`))

var exportTmpl = template.Must(template.New("export").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="generator" content="wikishell">
<title>{{.WikiName}}</title>
<style>{{.CSS}}</style>
</head>
<body>
<header><strong>{{.WikiName}}</strong> <span class="meta">exported {{.Generated}}</span></header>
<main>
<nav><ul>{{range .Pages}}<li><a href="#{{.Anchor}}">{{.Title}}</a></li>{{end}}</ul></nav>
{{range .Pages}}<section class="page" id="{{.Anchor}}">
<h1>{{.Title}}</h1>
{{if .Tags}}<p class="tags">{{range .Tags}}<span>{{.}}</span>{{end}}</p>{{end}}
{{.Body}}
</section>
{{else}}<p>This wiki has no pages.</p>
{{end}}</main>
</body>
</html>
`))

// Link is a labelled hyperlink.
type Link struct {
	Href  string
	Label string
}

// PageView is the data needed to render one page on the live server.
type PageView struct {
	WikiName  string
	Path      string
	Title     string
	Tags      []string
	Body      template.HTML
	Backlinks []Link
}

// ExportPage is one rendered section of the static export.
type ExportPage struct {
	Anchor string
	Title  string
	Tags   []string
	Body   template.HTML
}

// WritePage renders a single page document.
func WritePage(w io.Writer, v PageView) error {
	return pageTmpl.Execute(w, struct {
		PageView
		CSS template.CSS
	}{v, template.CSS(baseCSS)})
}

// WriteIndex renders the page list document.
func WriteIndex(w io.Writer, wikiName string, pages []Link) error {
	return indexTmpl.Execute(w, struct {
		WikiName string
		Pages    []Link
		CSS      template.CSS
	}{wikiName, pages, template.CSS(baseCSS)})
}

// Export renders every page into one self-contained HTML document.
func Export(wikiName string, pages []ExportPage, generated time.Time) ([]byte, error) {
	var buf bytes.Buffer
	err := exportTmpl.Execute(&buf, struct {
		WikiName  string
		Pages     []ExportPage
		Generated string
		CSS       template.CSS
	}{wikiName, pages, generated.Format(time.RFC3339), template.CSS(baseCSS)})
	if err != nil {
		return nil, fmt.Errorf("render: export: %w", err)
	}
	return buf.Bytes(), nil
}
