package lifecycle

import (
	"context"
	"log/slog"
	"net/url"
	"path/filepath"

	"github.com/starford/wikishell/internal/apperr"
	"github.com/starford/wikishell/internal/shell"
)

// BuildFunc exports folder and returns the path of the written file.
type BuildFunc func(ctx context.Context, folder string) (string, error)

// Choices offered after a successful build.
const (
	ChoicePreview = iota
	ChoiceReveal
	ChoiceClose
)

// Exporter runs one-shot static builds. It never touches the live server.
type Exporter struct {
	build   BuildFunc
	dialogs shell.Dialogs
	desktop shell.Desktop
	logger  *slog.Logger
}

// NewExporter creates an Exporter.
func NewExporter(build BuildFunc, dialogs shell.Dialogs, desktop shell.Desktop, logger *slog.Logger) *Exporter {
	return &Exporter{build: build, dialogs: dialogs, desktop: desktop, logger: logger}
}

// Build exports folder and asks the user whether to preview the result,
// reveal it in the file manager, or close. Failures are shown in an error
// box and returned as EngineFailure.
func (e *Exporter) Build(ctx context.Context, folder string) (string, error) {
	out, err := e.build(ctx, folder)
	if err != nil {
		err = apperr.Engine("build", err)
		e.logger.Error("wiki build failed", slog.String("folder", folder), slog.String("error", err.Error()))
		e.dialogs.ErrorBox("Error", "Failed to build wiki: "+apperr.Message(err))
		return "", err
	}
	e.logger.Info("wiki built", slog.String("folder", folder), slog.String("output", out))

	choice, err := e.dialogs.MessageBox(ctx, shell.MessageBox{
		Type:      shell.BoxInfo,
		Title:     "Build Complete",
		Message:   "The wiki has been built. Preview it in the browser?",
		Buttons:   []string{"Preview", "Show in Folder", "Close"},
		DefaultID: ChoicePreview,
		CancelID:  ChoiceClose,
	})
	if err != nil {
		e.logger.Warn("build dialog failed", slog.String("error", err.Error()))
		return out, nil
	}

	switch choice {
	case ChoicePreview:
		err = e.desktop.OpenExternal(FileURL(out))
	case ChoiceReveal:
		err = e.desktop.ShowItemInFolder(out)
	}
	if err != nil {
		e.logger.Warn("build follow-up failed", slog.Int("choice", choice), slog.String("error", err.Error()))
	}
	return out, nil
}

// FileURL returns a file:// URL for an absolute or relative path.
func FileURL(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	if filepath.VolumeName(abs) != "" {
		u.Path = "/" + u.Path
	}
	return u.String()
}
