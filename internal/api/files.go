package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/starford/wikishell/internal/storage"
)

const (
	// FilesDir holds uploaded attachments inside the wiki folder.
	FilesDir       = "files"
	maxUploadBytes = 50 << 20 // 50 MB
)

// FileHandler serves and accepts attachment files.
type FileHandler struct {
	wikiRoot string
	logger   *slog.Logger
}

// NewFileHandler creates a handler rooted at the wiki folder.
func NewFileHandler(wikiRoot string, logger *slog.Logger) *FileHandler {
	return &FileHandler{wikiRoot: wikiRoot, logger: logger}
}

func (h *FileHandler) dir() string {
	return filepath.Join(h.wikiRoot, FilesDir)
}

// safeName validates that name is a plain file name and returns its
// absolute path under the files dir.
func (h *FileHandler) safeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename is required")
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") || strings.HasPrefix(cleaned, ".") {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	abs := filepath.Join(h.dir(), cleaned)
	if !strings.HasPrefix(abs, h.dir()+string(os.PathSeparator)) {
		return "", fmt.Errorf("path escapes files directory")
	}
	return abs, nil
}

// ServeFile handles GET /files/{filename}.
func (h *FileHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	abs, err := h.safeName(chi.URLParam(r, "filename"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if info, statErr := os.Stat(abs); statErr != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}

// Upload handles POST /api/files (multipart/form-data, field "file").
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or invalid multipart")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing 'file' field in multipart form")
		return
	}
	defer file.Close()

	abs, err := h.safeName(header.Filename)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := os.MkdirAll(h.dir(), 0o755); err != nil {
		h.logger.Error("create files dir failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to create files dir")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	if err := storage.WriteFileAtomic(abs, data); err != nil {
		h.logger.Error("write upload failed", slog.String("file", abs), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to write file")
		return
	}

	name := filepath.Base(abs)
	writeJSON(w, http.StatusCreated, FileUploadResponse{
		Filename: name,
		Size:     int64(len(data)),
		URL:      "/" + FilesDir + "/" + name,
	})
}
