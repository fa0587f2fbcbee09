package api

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/wikishell/internal/apperr"
	"github.com/starford/wikishell/internal/pageservice"
	"github.com/starford/wikishell/internal/render"
)

// HomePage is rendered at / when it exists.
const HomePage = "Home.md"

// ViewHandler serves rendered HTML pages to the content surface.
type ViewHandler struct {
	svc      *pageservice.Service
	renderer *render.Renderer
	wikiName string
	logger   *slog.Logger
}

// NewViewHandler creates a ViewHandler.
func NewViewHandler(svc *pageservice.Service, renderer *render.Renderer, wikiName string, logger *slog.Logger) *ViewHandler {
	return &ViewHandler{svc: svc, renderer: renderer, wikiName: wikiName, logger: logger}
}

// Home handles GET /. It renders Home.md, or the page list when the wiki
// has no home page.
func (v *ViewHandler) Home(w http.ResponseWriter, r *http.Request) {
	page, err := v.svc.GetPage(r.Context(), HomePage)
	switch {
	case err == nil:
		v.writePage(w, page)
	case errors.Is(err, apperr.ErrNotFound):
		v.Index(w, r)
	default:
		v.fail(w, "render home failed", err)
	}
}

// Index handles GET /pages.
func (v *ViewHandler) Index(w http.ResponseWriter, r *http.Request) {
	items, _, err := v.svc.ListPages(r.Context(), 1000, 0, "", "title")
	if err != nil {
		v.fail(w, "list pages failed", err)
		return
	}
	links := make([]render.Link, len(items))
	for i, it := range items {
		links[i] = render.Link{Href: render.ServerLink(it.Path), Label: labelFor(it.Title, it.Path)}
	}
	var buf bytes.Buffer
	if err := render.WriteIndex(&buf, v.wikiName, links); err != nil {
		v.fail(w, "render index failed", err)
		return
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}

// Page handles GET /pages/*.
func (v *ViewHandler) Page(w http.ResponseWriter, r *http.Request) {
	path := pagePath(r)
	page, err := v.svc.GetPage(r.Context(), path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		v.fail(w, "get page failed", err)
		return
	}
	v.writePage(w, page)
}

func (v *ViewHandler) writePage(w http.ResponseWriter, page *pageservice.PageDetail) {
	body, err := v.renderer.Body(page.Body, render.ServerLink)
	if err != nil {
		v.fail(w, "render page failed", err)
		return
	}
	backlinks := make([]render.Link, len(page.Backlinks))
	for i, b := range page.Backlinks {
		backlinks[i] = render.Link{Href: render.ServerLink(b), Label: b}
	}
	var buf bytes.Buffer
	err = render.WritePage(&buf, render.PageView{
		WikiName:  v.wikiName,
		Path:      page.Path,
		Title:     labelFor(page.Title, page.Path),
		Tags:      page.Tags,
		Body:      body,
		Backlinks: backlinks,
	})
	if err != nil {
		v.fail(w, "render page failed", err)
		return
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}

func (v *ViewHandler) fail(w http.ResponseWriter, msg string, err error) {
	v.logger.Error(msg, slog.String("error", err.Error()))
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func labelFor(title, path string) string {
	if title != "" {
		return title
	}
	return path
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
