package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/wikishell/internal/apperr"
	"github.com/starford/wikishell/internal/pageservice"
	"github.com/starford/wikishell/internal/storage"
	"github.com/starford/wikishell/internal/testutil"
	"github.com/starford/wikishell/internal/wikifolder"
)

func testServer(t *testing.T, build BuildFunc) (*Server, storage.Provider) {
	t.Helper()
	_, store := testutil.TestWiki(t, wikifolder.TemplateEmpty)
	svc := pageservice.NewService(store, testutil.TestDB(t))
	return New(svc, build), store
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var (
		result *mcp.CallToolResult
		err    error
	)
	switch name {
	case "search_pages":
		result, err = srv.searchPages(ctx, req)
	case "read_page":
		result, err = srv.readPage(ctx, req)
	case "create_page":
		result, err = srv.createPage(ctx, req)
	case "list_pages":
		result, err = srv.listPages(ctx, req)
	case "get_backlinks":
		result, err = srv.getBacklinks(ctx, req)
	case "get_page_contract":
		result, err = srv.getPageContract(ctx, req)
	case "upload_file":
		result, err = srv.uploadFile(ctx, req)
	case "build_wiki":
		result, err = srv.buildWiki(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestCreateAndReadPage(t *testing.T) {
	srv, _ := testServer(t, nil)

	r := callTool(t, srv, "create_page", map[string]any{
		"path":    "test.md",
		"content": "# Test\nHello",
	})
	if text := resultText(r); text != "created: test.md" {
		t.Errorf("create result = %q", text)
	}

	r = callTool(t, srv, "read_page", map[string]any{"path": "test.md"})
	if text := resultText(r); text != "# Test\nHello" {
		t.Errorf("read result = %q", text)
	}
}

func TestCreatePage_Rejections(t *testing.T) {
	srv, _ := testServer(t, nil)

	r := callTool(t, srv, "create_page", map[string]any{"path": "Home.md", "content": "again"})
	if !r.IsError || !strings.Contains(resultText(r), "already exists") {
		t.Errorf("duplicate: %q", resultText(r))
	}
	r = callTool(t, srv, "create_page", map[string]any{"path": "output/x.md", "content": "x"})
	if !r.IsError || !strings.Contains(resultText(r), "invalid page path") {
		t.Errorf("invalid path: %q", resultText(r))
	}
	r = callTool(t, srv, "create_page", map[string]any{"path": "x.md"})
	if !r.IsError {
		t.Error("expected error for missing content")
	}
}

func TestListPages(t *testing.T) {
	srv, _ := testServer(t, nil)
	callTool(t, srv, "create_page", map[string]any{"path": "b.md", "content": "b #ops"})
	callTool(t, srv, "create_page", map[string]any{"path": "a.md", "content": "a"})

	r := callTool(t, srv, "list_pages", map[string]any{})
	if text := resultText(r); text != "a.md\nb.md" {
		t.Errorf("list = %q", text)
	}

	r = callTool(t, srv, "list_pages", map[string]any{"tag": "ops"})
	if text := resultText(r); text != "b.md" {
		t.Errorf("list by tag = %q", text)
	}

	r = callTool(t, srv, "list_pages", map[string]any{"tag": "none"})
	if text := resultText(r); text != "no pages found" {
		t.Errorf("empty list = %q", text)
	}
}

func TestReadPageMissing(t *testing.T) {
	srv, _ := testServer(t, nil)
	r := callTool(t, srv, "read_page", map[string]any{"path": "nope.md"})
	if !r.IsError {
		t.Error("expected error for missing page")
	}
}

func TestGetBacklinks(t *testing.T) {
	srv, _ := testServer(t, nil)
	callTool(t, srv, "create_page", map[string]any{
		"path":    "a.md",
		"content": "links to [[b]]",
	})

	r := callTool(t, srv, "get_backlinks", map[string]any{"path": "b"})
	if text := resultText(r); text != "a.md" {
		t.Errorf("backlinks = %q, want a.md", text)
	}

	r = callTool(t, srv, "get_backlinks", map[string]any{"path": "a.md"})
	if text := resultText(r); text != "no backlinks found" {
		t.Errorf("backlinks = %q", text)
	}
}

func TestSearchPages(t *testing.T) {
	srv, _ := testServer(t, nil)
	callTool(t, srv, "create_page", map[string]any{"path": "go.md", "content": "# Go\nconcurrency primitives"})

	r := callTool(t, srv, "search_pages", map[string]any{"query": "concurrency"})
	if r.IsError {
		t.Fatalf("search error: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "go.md") {
		t.Errorf("search = %q", resultText(r))
	}
}

func TestPageContract(t *testing.T) {
	srv, _ := testServer(t, nil)
	r := callTool(t, srv, "get_page_contract", nil)
	if resultText(r) != PageFormatContract {
		t.Error("contract tool should return the page format")
	}

	contents, err := srv.readPageFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != PageFormatURI {
		t.Errorf("resource = %+v", contents[0])
	}
}

func TestBuildWiki(t *testing.T) {
	var gotFolder string
	srv, store := testServer(t, func(_ context.Context, folder string) (string, error) {
		gotFolder = folder
		return filepath.Join(folder, "output", "index.html"), nil
	})

	r := callTool(t, srv, "build_wiki", nil)
	if r.IsError {
		t.Fatalf("build error: %s", resultText(r))
	}
	if gotFolder != store.Root() {
		t.Errorf("built %q, want %q", gotFolder, store.Root())
	}
	if want := filepath.Join(store.Root(), "output", "index.html"); resultText(r) != want {
		t.Errorf("result = %q, want %q", resultText(r), want)
	}
}

func TestBuildWiki_Failure(t *testing.T) {
	srv, _ := testServer(t, func(context.Context, string) (string, error) {
		return "", apperr.Engine("build", errors.New("disk full"))
	})
	r := callTool(t, srv, "build_wiki", nil)
	if !r.IsError || resultText(r) != "disk full" {
		t.Errorf("result = %q (error=%v)", resultText(r), r.IsError)
	}
}

// 1x1 transparent PNG.
const pixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

func TestUploadFile_DataURI(t *testing.T) {
	srv, store := testServer(t, nil)

	r := callTool(t, srv, "upload_file", map[string]any{
		"url":      "data:image/png;base64," + pixelPNG,
		"filename": "pixel.png",
	})
	if r.IsError {
		t.Fatalf("upload error: %s", resultText(r))
	}
	var res uploadResult
	if err := json.Unmarshal([]byte(resultText(r)), &res); err != nil {
		t.Fatal(err)
	}
	if res.URL != "/files/pixel.png" || res.Markdown != "![pixel.png](/files/pixel.png)" {
		t.Errorf("result = %+v", res)
	}

	data, err := os.ReadFile(filepath.Join(store.Root(), "files", "pixel.png"))
	if err != nil {
		t.Fatal(err)
	}
	want, _ := base64.StdEncoding.DecodeString(pixelPNG)
	if string(data) != string(want) {
		t.Error("saved bytes differ from upload")
	}

	r = callTool(t, srv, "upload_file", map[string]any{
		"url":      "data:image/png;base64," + pixelPNG,
		"filename": "pixel.png",
	})
	if !r.IsError || !strings.Contains(resultText(r), "already exists") {
		t.Errorf("second upload = %q", resultText(r))
	}
}

func TestUploadFile_GeneratedName(t *testing.T) {
	srv, _ := testServer(t, nil)
	r := callTool(t, srv, "upload_file", map[string]any{"url": "data:image/png;base64," + pixelPNG})
	if r.IsError {
		t.Fatalf("upload error: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), ".png") {
		t.Errorf("result = %q", resultText(r))
	}
}

func TestUploadFile_Rejections(t *testing.T) {
	srv, _ := testServer(t, nil)
	cases := map[string]map[string]any{
		"mismatched content": {"url": "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("plain text")), "filename": "x.png"},
		"bad extension":      {"url": "data:image/png;base64," + pixelPNG, "filename": "x.exe"},
		"not base64":         {"url": "data:image/png,raw"},
		"bad scheme":         {"url": "ftp://example.com/a.png"},
		"loopback":           {"url": "http://127.0.0.1/a.png"},
		"metadata":           {"url": "http://169.254.169.254/latest"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			if r := callTool(t, srv, "upload_file", args); !r.IsError {
				t.Errorf("expected error, got %q", resultText(r))
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"photo 1.png":      "photo_1.png",
		"../../etc/x.png":  "x.png",
		".hidden.png":      "hidden.png",
		"ünïcode-file.pdf": "_n_code-file.pdf",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
