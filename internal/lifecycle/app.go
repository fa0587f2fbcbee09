package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/wikishell/internal/apperr"
	"github.com/starford/wikishell/internal/shell"
	"github.com/starford/wikishell/internal/surface"
)

// App is the application context: the lifecycle manager, the exporter and
// the desktop collaborators they report to. It implements shell.Controller.
type App struct {
	manager  *Manager
	exporter *Exporter
	binder   *surface.Binder
	dialogs  shell.Dialogs
	desktop  shell.Desktop
	logger   *slog.Logger
}

// NewApp wires an App.
func NewApp(manager *Manager, exporter *Exporter, binder *surface.Binder, dialogs shell.Dialogs, desktop shell.Desktop, logger *slog.Logger) *App {
	return &App{
		manager:  manager,
		exporter: exporter,
		binder:   binder,
		dialogs:  dialogs,
		desktop:  desktop,
		logger:   logger,
	}
}

// Manager returns the lifecycle manager.
func (a *App) Manager() *Manager { return a.manager }

var errNoServer = errors.New("no wiki is being served")

// OpenWiki implements shell.Controller.
func (a *App) OpenWiki(ctx context.Context, path string) error {
	if path == "" {
		picked, ok, err := a.dialogs.PickFolder(ctx, "Open Wiki", a.manager.Folder())
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		path = picked
	}
	return reported(a.manager.OpenFolder(ctx, path))
}

// BuildWiki implements shell.Controller.
func (a *App) BuildWiki(ctx context.Context) error {
	folder := a.manager.Folder()
	if folder == "" {
		return errors.New("no wiki folder selected")
	}
	_, err := a.exporter.Build(ctx, folder)
	return reported(err)
}

// OpenInBrowser implements shell.Controller.
func (a *App) OpenInBrowser() error {
	url := a.binder.URL()
	if url == "" || a.manager.State() != StateReady {
		return errNoServer
	}
	return a.desktop.OpenExternal(url)
}

// OpenDevTools implements shell.Controller.
func (a *App) OpenDevTools() error {
	if a.manager.State() != StateReady {
		return errNoServer
	}
	return a.desktop.OpenDevTools(a.binder.URL())
}

// Status implements shell.Controller.
func (a *App) Status() string {
	s := fmt.Sprintf("folder: %s\nstate:  %s", a.manager.Folder(), a.manager.State())
	if a.manager.State() == StateReady {
		s += "\nurl:    " + a.binder.URL()
	}
	if err := a.manager.Err(); err != nil {
		s += "\nerror:  " + err.Error()
	}
	return s
}

// Close stops the running server.
func (a *App) Close(ctx context.Context) error {
	return a.manager.Close(ctx)
}

// reported drops classified failures, which the manager and exporter have
// already shown in an error box.
func reported(err error) error {
	if apperr.KindOf(err) != apperr.KindUnknown {
		return nil
	}
	return err
}
