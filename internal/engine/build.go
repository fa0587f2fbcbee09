package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/starford/wikishell/internal/parser"
	"github.com/starford/wikishell/internal/render"
	"github.com/starford/wikishell/internal/storage"
	"github.com/starford/wikishell/internal/wikifolder"
)

// OutputFile is the static export written by build mode, relative to the folder.
const OutputFile = "index.html"

// OutputPath returns where build mode writes the export of folder.
func OutputPath(folder string) string {
	return filepath.Join(folder, storage.OutputDir, OutputFile)
}

// build renders every page into one self-contained HTML file. It reads the
// folder directly and never opens the index, so it can run next to a live
// server on the same folder.
func (h *Handle) build(ctx context.Context) (Ready, error) {
	folder := h.args.Folder
	manifest, err := wikifolder.ReadManifest(folder)
	if err != nil {
		return Ready{}, fmt.Errorf("%s is not an initialized wiki: %w", folder, err)
	}
	store, err := storage.NewFS(folder)
	if err != nil {
		return Ready{}, fmt.Errorf("init storage: %w", err)
	}
	metas, err := store.List("")
	if err != nil {
		return Ready{}, fmt.Errorf("list pages: %w", err)
	}
	sort.Slice(metas, func(i, j int) bool {
		hi, hj := metas[i].Path == "Home.md", metas[j].Path == "Home.md"
		if hi != hj {
			return hi
		}
		return metas[i].Path < metas[j].Path
	})

	renderer := render.New()
	pages := make([]render.ExportPage, 0, len(metas))
	for _, m := range metas {
		if err := ctx.Err(); err != nil {
			return Ready{}, err
		}
		data, err := store.Read(m.Path)
		if err != nil {
			return Ready{}, fmt.Errorf("read %s: %w", m.Path, err)
		}
		res, err := parser.Parse(data)
		if err != nil {
			return Ready{}, fmt.Errorf("parse %s: %w", m.Path, err)
		}
		body, err := renderer.Body(res.Body, render.ExportLink)
		if err != nil {
			return Ready{}, fmt.Errorf("render %s: %w", m.Path, err)
		}
		title := res.Title
		if title == "" {
			title = m.Path
		}
		pages = append(pages, render.ExportPage{
			Anchor: render.Anchor(m.Path),
			Title:  title,
			Tags:   res.Tags,
			Body:   body,
		})
	}

	doc, err := render.Export(manifest.Name, pages, h.now())
	if err != nil {
		return Ready{}, err
	}
	out := OutputPath(folder)
	if err := storage.WriteFileAtomic(out, doc); err != nil {
		return Ready{}, fmt.Errorf("write export: %w", err)
	}
	h.logger.Info("wiki exported",
		slog.String("folder", folder),
		slog.String("output", out),
		slog.Int("pages", len(pages)))
	return Ready{Mode: ModeBuild, OutputPath: out}, nil
}
