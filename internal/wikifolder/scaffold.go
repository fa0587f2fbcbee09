package wikifolder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/starford/wikishell/internal/storage"
)

// Template names accepted by Scaffold.
const (
	TemplateServer = "server"
	TemplateEmpty  = "empty"
)

type scaffoldFile struct {
	path    string
	content string
}

var templates = map[string][]scaffoldFile{
	TemplateServer: {
		{"Home.md", homeServer},
		{"Getting Started.md", gettingStarted},
	},
	TemplateEmpty: {
		{"Home.md", homeEmpty},
	},
}

const homeServer = `---
title: Home
tags: [start]
---
# Home

Welcome to your wiki. Every Markdown file in this folder is a page.

- [[Getting Started]] explains how pages link together.
- Use **Build Wiki** to export everything into ` + "`output/index.html`" + `.
`

const gettingStarted = `# Getting Started

Link pages with double brackets: [[Home]] or [[Home|back to the start]].
Tag a page inline with #tags or in the frontmatter.

Edits made in any editor show up here as soon as the file is saved.
`

const homeEmpty = `# Home
`

func templateNames() []any {
	names := make([]string, 0, len(templates))
	for n := range templates {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]any, len(names))
	for i, n := range names {
		out[i] = n
	}
	return out
}

// HasTemplate reports whether name is a known scaffold template.
func HasTemplate(name string) bool {
	_, ok := templates[name]
	return ok
}

// Scaffold bootstraps folder from template. The folder is created if
// needed, scaffold pages are written unless a file already exists at
// their path, and the manifest is written last so an interrupted run is
// retried on the next start.
func Scaffold(folder, template, engineVersion string, now time.Time) error {
	files, ok := templates[template]
	if !ok {
		return fmt.Errorf("unknown template %q", template)
	}
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return fmt.Errorf("create wiki folder: %w", err)
	}
	for _, f := range files {
		abs := filepath.Join(folder, filepath.FromSlash(f.path))
		if _, err := os.Stat(abs); err == nil {
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat %s: %w", f.path, err)
		}
		if err := storage.WriteFileAtomic(abs, []byte(f.content)); err != nil {
			return fmt.Errorf("write %s: %w", f.path, err)
		}
	}
	return WriteManifest(folder, Manifest{
		Name:          filepath.Base(filepath.Clean(folder)),
		Template:      template,
		Created:       now.UTC(),
		EngineVersion: engineVersion,
	})
}
