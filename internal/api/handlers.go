package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/starford/wikishell/internal/apperr"
	"github.com/starford/wikishell/internal/pageservice"
)

const maxPageBytes = 10 << 20

// Handler holds the JSON page API handlers. Change events reach SSE
// subscribers through the index watcher, not from here.
type Handler struct {
	svc    *pageservice.Service
	logger *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(svc *pageservice.Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// pagePath extracts the page path from the wildcard segment.
// Supports encoded slashes from API clients (e.g. guides%2Fsetup.md).
func pagePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// Error codes carried next to the message in every error body.
const (
	codeInvalid       = "invalid"
	codeUnauthorized  = "unauthorized"
	codeNotFound      = "not_found"
	codeConflict      = "conflict"
	codeAlreadyExists = "already_exists"
	codeInternal      = "internal"
)

type errResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

// writeError writes an error body whose code follows from status.
func writeError(w http.ResponseWriter, status int, msg string) {
	code := codeInternal
	switch status {
	case http.StatusBadRequest:
		code = codeInvalid
	case http.StatusUnauthorized:
		code = codeUnauthorized
	case http.StatusNotFound:
		code = codeNotFound
	case http.StatusConflict:
		code = codeConflict
	}
	writeJSON(w, status, errResponse{Error: msg, Code: code})
}

func (h *Handler) internalError(w http.ResponseWriter, msg string, attrs ...any) {
	h.logger.Error(msg, attrs...)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// pageError maps page service failures onto the API. Anything that is not
// a not-found, conflict or invalid path is logged as msg and reported as an
// internal error.
func (h *Handler) pageError(w http.ResponseWriter, err error, msg string, attrs ...any) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errResponse{Error: "not found", Code: codeNotFound})
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errResponse{Error: "page already exists", Code: codeAlreadyExists})
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errResponse{Error: "checksum mismatch", Code: codeConflict})
	case pageservice.IsInvalidPath(err):
		writeJSON(w, http.StatusBadRequest, errResponse{Error: err.Error(), Code: codeInvalid})
	default:
		h.internalError(w, msg, append(attrs, slog.String("error", err.Error()))...)
	}
}

// ListPages handles GET /api/pages.
//
//	@Summary	List pages with optional pagination and filtering
//	@Tags		pages
//	@Produce	json
//	@Param		limit	query		int		false	"Page size"
//	@Param		offset	query		int		false	"Page offset"
//	@Param		tag		query		string	false	"Filter by tag"
//	@Param		sort	query		string	false	"Sort field"	Enums(updated_at, title, path)
//	@Success	200		{object}	PageListResponse
//	@Router		/pages [get]
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	sort := q.Get("sort")
	switch sort {
	case "", "updated_at", "title", "path":
	default:
		writeError(w, http.StatusBadRequest, "unsupported sort field")
		return
	}

	items, total, err := h.svc.ListPages(r.Context(), limit, offset, q.Get("tag"), sort)
	if err != nil {
		h.internalError(w, "list pages failed", slog.String("error", err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, PageListResponse{Pages: items, Total: total})
}

// GetPage handles GET /api/pages/*.
//
//	@Summary	Get a single page by path
//	@Tags		pages
//	@Produce	json
//	@Param		path	path		string	true	"Page path"
//	@Success	200		{object}	PageDetail
//	@Failure	404		{object}	errResponse
//	@Router		/pages/{path} [get]
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	path := pagePath(r)
	if path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	page, err := h.svc.GetPage(r.Context(), path)
	if err != nil {
		h.pageError(w, err, "get page failed", slog.String("path", path))
		return
	}
	w.Header().Set("ETag", `"`+page.Checksum+`"`)
	writeJSON(w, http.StatusOK, page)
}

// CreatePage handles POST /api/pages.
//
//	@Summary	Create a new page
//	@Tags		pages
//	@Accept		json
//	@Produce	json
//	@Param		body	body		CreatePageRequest	true	"Page to create"
//	@Success	201		{object}	PageDetail
//	@Failure	400		{object}	errResponse
//	@Failure	409		{object}	errResponse
//	@Router		/pages [post]
func (h *Handler) CreatePage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPageBytes)
	var req CreatePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Path == "" || req.Content == "" {
		writeError(w, http.StatusBadRequest, "path and content are required")
		return
	}
	page, err := h.svc.CreatePage(r.Context(), req.Path, []byte(req.Content))
	if err != nil {
		h.pageError(w, err, "create page failed", slog.String("path", req.Path))
		return
	}
	writeJSON(w, http.StatusCreated, page)
}

// UpdatePage handles PUT /api/pages/*.
//
//	@Summary	Update a page with optimistic concurrency
//	@Tags		pages
//	@Accept		json
//	@Produce	json
//	@Param		path		path		string				true	"Page path"
//	@Param		If-Match	header		string				false	"SHA-256 checksum of the current content"
//	@Param		body		body		UpdatePageRequest	true	"Updated content"
//	@Success	200			{object}	PageDetail
//	@Failure	404			{object}	errResponse
//	@Failure	409			{object}	errResponse
//	@Router		/pages/{path} [put]
func (h *Handler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPageBytes)
	path := pagePath(r)
	if path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	var req UpdatePageRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	page, err := h.svc.UpdatePage(r.Context(), path, []byte(req.Content), ifMatch)
	if err != nil {
		h.pageError(w, err, "update page failed", slog.String("path", path))
		return
	}
	w.Header().Set("ETag", `"`+page.Checksum+`"`)
	writeJSON(w, http.StatusOK, page)
}

// DeletePage handles DELETE /api/pages/*.
//
//	@Summary	Delete a page
//	@Tags		pages
//	@Param		path	path	string	true	"Page path"
//	@Success	204		"Page deleted"
//	@Failure	404		{object}	errResponse
//	@Router		/pages/{path} [delete]
func (h *Handler) DeletePage(w http.ResponseWriter, r *http.Request) {
	path := pagePath(r)
	if path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	if err := h.svc.DeletePage(r.Context(), path); err != nil {
		h.pageError(w, err, "delete page failed", slog.String("path", path))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MovePage handles POST /api/move.
//
//	@Summary	Rename a page
//	@Tags		pages
//	@Accept		json
//	@Produce	json
//	@Param		body	body		MovePageRequest	true	"Old and new path"
//	@Success	200		{object}	PageDetail
//	@Failure	400		{object}	errResponse
//	@Failure	404		{object}	errResponse
//	@Failure	409		{object}	errResponse
//	@Router		/move [post]
func (h *Handler) MovePage(w http.ResponseWriter, r *http.Request) {
	var req MovePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.From == "" || req.To == "" {
		writeError(w, http.StatusBadRequest, "from and to are required")
		return
	}
	page, err := h.svc.MovePage(r.Context(), req.From, req.To)
	if err != nil {
		h.pageError(w, err, "move page failed", slog.String("from", req.From), slog.String("to", req.To))
		return
	}
	w.Header().Set("ETag", `"`+page.Checksum+`"`)
	writeJSON(w, http.StatusOK, page)
}

// Search handles GET /api/search.
//
//	@Summary	Full-text search across pages
//	@Tags		search
//	@Produce	json
//	@Param		q		query		string	true	"Search query"
//	@Param		limit	query		int		false	"Max results"
//	@Success	200		{object}	SearchResponse
//	@Failure	400		{object}	errResponse
//	@Router		/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		h.internalError(w, "search failed", slog.String("query", q), slog.String("error", err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Graph handles GET /api/graph.
//
//	@Summary	Get the page link graph
//	@Tags		graph
//	@Produce	json
//	@Success	200	{object}	GraphResponse
//	@Router		/graph [get]
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	nodes, links, err := h.svc.Graph(r.Context())
	if err != nil {
		h.internalError(w, "graph failed", slog.String("error", err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, GraphResponse{Nodes: nodes, Links: links})
}
