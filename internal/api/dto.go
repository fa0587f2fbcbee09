package api

import (
	"github.com/starford/wikishell/internal/index"
	"github.com/starford/wikishell/internal/pageservice"
)

// CreatePageRequest is the request body for creating a page.
type CreatePageRequest struct {
	Path    string `json:"path" example:"Ideas.md"`
	Content string `json:"content" example:"# Ideas\nSee [[Home]]."`
}

// UpdatePageRequest is the request body for updating a page.
type UpdatePageRequest struct {
	Content string `json:"content" example:"# Ideas\nUpdated."`
}

// MovePageRequest is the request body for renaming a page.
type MovePageRequest struct {
	From string `json:"from" example:"Ideas.md"`
	To   string `json:"to" example:"archive/Ideas.md"`
}

// PageDetail is the full page response type.
type PageDetail = pageservice.PageDetail

// PageListItem is a lightweight item in a list response.
type PageListItem = pageservice.PageListItem

// PageListResponse wraps paginated page listings.
type PageListResponse struct {
	Pages []PageListItem `json:"pages"`
	Total int            `json:"total" example:"42"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results"`
}

// GraphResponse wraps the link graph.
type GraphResponse struct {
	Nodes []index.GraphNode `json:"nodes"`
	Links []index.GraphLink `json:"links"`
}

// FileUploadResponse is returned after a successful file upload.
type FileUploadResponse struct {
	Filename string `json:"filename" example:"diagram.png"`
	Size     int64  `json:"size" example:"12345"`
	URL      string `json:"url" example:"/files/diagram.png"`
}
