// Package pageservice coordinates wiki storage and the page index.
package pageservice

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/starford/wikishell/internal/apperr"
	"github.com/starford/wikishell/internal/checksum"
	"github.com/starford/wikishell/internal/index"
	"github.com/starford/wikishell/internal/parser"
	"github.com/starford/wikishell/internal/storage"
)

// PageDetail is the full representation of a page.
type PageDetail struct {
	Path        string         `json:"path"`
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	Body        string         `json:"-"`
	Checksum    string         `json:"checksum"`
	Tags        []string       `json:"tags"`
	Frontmatter map[string]any `json:"frontmatter,omitempty"`
	Backlinks   []string       `json:"backlinks"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// PageListItem is a lightweight item in a list response.
type PageListItem struct {
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Checksum  string    `json:"checksum"`
	Tags      []string  `json:"tags"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service coordinates storage and index operations.
type Service struct {
	store storage.Provider
	db    index.PageIndex
}

// NewService creates a new page service.
func NewService(store storage.Provider, db index.PageIndex) *Service {
	return &Service{store: store, db: db}
}

// Store returns the underlying storage provider.
func (s *Service) Store() storage.Provider { return s.store }

// GetPage reads a page from storage, parses it, and enriches it with backlinks.
func (s *Service) GetPage(_ context.Context, path string) (*PageDetail, error) {
	if !storage.IsPage(path) {
		return nil, apperr.ErrNotFound
	}
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return s.buildPageDetail(path, data)
}

// CreatePage writes a new page and indexes it.
func (s *Service) CreatePage(_ context.Context, path string, content []byte) (*PageDetail, error) {
	if !storage.IsPage(path) {
		return nil, errInvalidPath
	}
	if _, err := s.store.Read(path); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := index.IndexPage(s.db, path, content, time.Now()); err != nil {
		return nil, err
	}
	return s.buildPageDetail(path, content)
}

// UpdatePage writes updated content with optimistic concurrency.
// An empty ifMatch skips the checksum comparison.
func (s *Service) UpdatePage(_ context.Context, path string, content []byte, ifMatch string) (*PageDetail, error) {
	existing, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum(existing) {
		return nil, apperr.ErrConflict
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := index.IndexPage(s.db, path, content, time.Now()); err != nil {
		return nil, err
	}
	return s.buildPageDetail(path, content)
}

// DeletePage removes a page from storage and index.
func (s *Service) DeletePage(_ context.Context, path string) error {
	if err := s.store.Delete(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return err
	}
	return s.db.DeletePage(path)
}

// MovePage renames a page and re-indexes it under its new path.
func (s *Service) MovePage(_ context.Context, from, to string) (*PageDetail, error) {
	if !storage.IsPage(to) {
		return nil, errInvalidPath
	}
	data, err := s.store.Read(from)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if _, err := s.store.Read(to); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	if err := s.store.Move(from, to); err != nil {
		return nil, err
	}
	if err := s.db.DeletePage(from); err != nil {
		return nil, err
	}
	if err := index.IndexPage(s.db, to, data, time.Now()); err != nil {
		return nil, err
	}
	return s.buildPageDetail(to, data)
}

// ListPages returns paginated pages with optional tag filter.
func (s *Service) ListPages(_ context.Context, limit, offset int, tag, sort string) ([]PageListItem, int, error) {
	rows, total, err := s.db.ListPages(limit, offset, tag, sort)
	if err != nil {
		return nil, 0, err
	}
	items := make([]PageListItem, len(rows))
	for i, r := range rows {
		items[i] = PageListItem{
			Path:      r.Path,
			Title:     r.Title,
			Checksum:  r.Checksum,
			Tags:      nonNilSlice(r.Tags),
			UpdatedAt: r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	res, err := s.db.Search(query, limit)
	return nonNilSlice(res), err
}

// Graph returns all nodes and links for graph visualization.
func (s *Service) Graph(_ context.Context) ([]index.GraphNode, []index.GraphLink, error) {
	return s.db.Graph()
}

// Backlinks returns all page paths that link to the given target.
func (s *Service) Backlinks(_ context.Context, target string) ([]string, error) {
	bl, err := s.db.Backlinks(target)
	return nonNilSlice(bl), err
}

func (s *Service) buildPageDetail(path string, data []byte) (*PageDetail, error) {
	res, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}
	bl, err := s.db.Backlinks(path)
	if err != nil {
		return nil, err
	}
	updated := time.Now()
	if row, err := s.db.GetPage(path); err == nil && row != nil {
		updated = row.UpdatedAt
	}
	return &PageDetail{
		Path:        path,
		Title:       res.Title,
		Content:     string(data),
		Body:        res.Body,
		Checksum:    checksum.Sum(data),
		Tags:        nonNilSlice(res.Tags),
		Frontmatter: res.Frontmatter,
		Backlinks:   nonNilSlice(bl),
		UpdatedAt:   updated,
	}, nil
}

var errInvalidPath = errors.New("path must name a .md page outside hidden and output folders")

// IsInvalidPath reports whether err was caused by a path that is not a page.
func IsInvalidPath(err error) bool { return errors.Is(err, errInvalidPath) }

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
