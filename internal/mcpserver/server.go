// Package mcpserver exposes a wiki folder to LLM clients as an MCP
// (Model Context Protocol) server over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/wikishell/internal/apperr"
	"github.com/starford/wikishell/internal/engine"
	"github.com/starford/wikishell/internal/pageservice"
)

// PageFormatURI is the resource URI of the page format contract.
const PageFormatURI = "wiki://page-format"

// BuildFunc exports a wiki folder and returns the written file path.
type BuildFunc func(ctx context.Context, folder string) (string, error)

// Server wraps the MCP server with wiki tools.
type Server struct {
	mcp   *server.MCPServer
	svc   *pageservice.Service
	build BuildFunc
}

// New creates a new MCP server with all wiki tools registered. A nil build
// disables the build_wiki tool.
func New(svc *pageservice.Service, build BuildFunc) *Server {
	s := &Server{svc: svc, build: build}

	s.mcp = server.NewMCPServer(
		"wikishell",
		engine.Version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_pages",
		mcp.WithDescription("Full-text search through page content and titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchPages)

	s.mcp.AddTool(mcp.NewTool("read_page",
		mcp.WithDescription("Read the raw Markdown of a wiki page."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the page (e.g. Getting Started.md)")),
	), s.readPage)

	s.mcp.AddTool(mcp.NewTool("create_page",
		mcp.WithDescription("Create a new wiki page at the specified path. "+
			"Content should follow the page format (optional YAML frontmatter, Markdown body "+
			"with [[wikilinks]]). Read it first via get_page_contract or the "+PageFormatURI+" resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path for the new page (must end with .md)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown content of the page")),
	), s.createPage)

	s.mcp.AddTool(mcp.NewTool("get_page_contract",
		mcp.WithDescription("Returns the wiki page format. Call this before creating pages."),
	), s.getPageContract)

	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List wiki pages, optionally only those carrying a tag."),
		mcp.WithString("tag", mcp.Description("Optional tag filter")),
	), s.listPages)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("Find all pages that link to the specified page."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the page, with or without .md")),
	), s.getBacklinks)

	s.mcp.AddTool(mcp.NewTool("upload_file",
		mcp.WithDescription("Save an attachment into the wiki's files/ folder from an http(s) URL or a base64 data URI."),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or data:<mime>;base64,<data> URI")),
		mcp.WithString("filename", mcp.Description("Optional file name; derived from the URL when empty")),
	), s.uploadFile)

	if build != nil {
		s.mcp.AddTool(mcp.NewTool("build_wiki",
			mcp.WithDescription("Export the whole wiki to a single static HTML file and return its path."),
		), s.buildWiki)
	}

	s.mcp.AddResource(
		mcp.NewResource(PageFormatURI, "Page Format",
			mcp.WithResourceDescription("Markdown page format understood by the wiki engine."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPageFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) folder() string {
	return s.svc.Store().Root()
}

func (s *Server) searchPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page, err := s.svc.GetPage(ctx, path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(page.Content), nil
}

func (s *Server) createPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if _, err := s.svc.CreatePage(ctx, path, []byte(content)); err != nil {
		switch {
		case errors.Is(err, apperr.ErrAlreadyExists):
			return mcp.NewToolResultError(fmt.Sprintf("page already exists: %s", path)), nil
		case pageservice.IsInvalidPath(err):
			return mcp.NewToolResultError(fmt.Sprintf("invalid page path: %s", path)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", path)), nil
}

func (s *Server) listPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag := ""
	if v, err := req.RequireString("tag"); err == nil {
		tag = v
	}

	items, _, err := s.svc.ListPages(ctx, 1000, 0, tag, "path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	paths := make([]string, 0, len(items))
	for _, it := range items {
		paths = append(paths, it.Path)
	}
	if len(paths) == 0 {
		return mcp.NewToolResultText("no pages found"), nil
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) getPageContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(PageFormatContract), nil
}

func (s *Server) readPageFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      PageFormatURI,
			MIMEType: "text/markdown",
			Text:     PageFormatContract,
		},
	}, nil
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !strings.HasSuffix(path, ".md") {
		path += ".md"
	}
	bl, err := s.svc.Backlinks(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(bl) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	return mcp.NewToolResultText(strings.Join(bl, "\n")), nil
}

func (s *Server) buildWiki(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := s.build(ctx, s.folder())
	if err != nil {
		return mcp.NewToolResultError(apperr.Message(err)), nil
	}
	return mcp.NewToolResultText(out), nil
}
