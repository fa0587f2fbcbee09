// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/starford/wikishell/internal/engine"
	"github.com/starford/wikishell/internal/index"
	"github.com/starford/wikishell/internal/lifecycle"
	"github.com/starford/wikishell/internal/mcpserver"
	"github.com/starford/wikishell/internal/metrics"
	"github.com/starford/wikishell/internal/pageservice"
	"github.com/starford/wikishell/internal/shell"
	"github.com/starford/wikishell/internal/storage"
	"github.com/starford/wikishell/internal/surface"
	"github.com/starford/wikishell/internal/wikifolder"
)

const windowTitle = "wikishell"

func newApplication(opts []Option) (*application, *slog.Logger, error) {
	app := &application{
		in:     os.Stdin,
		out:    os.Stdout,
		logOut: os.Stderr,
	}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, nil, fmt.Errorf("config is required")
	}

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOut, &slog.HandlerOptions{
		Level: app.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return app, logger, nil
}

func (a *application) engineOptions(logger *slog.Logger, rec *metrics.Recorder) []engine.Option {
	cfg := a.config
	return []engine.Option{
		engine.WithLogger(logger),
		engine.WithMetrics(rec),
		engine.WithAuth(cfg.Auth.AuthEnabled(), cfg.Auth.Token),
		engine.WithIndexDir(cfg.Wiki.IndexDir),
	}
}

func (a *application) validator(logger *slog.Logger, engineOpts []engine.Option) *wikifolder.Validator {
	initer := wikifolder.InitFunc(func(ctx context.Context, folder, template string) error {
		return engine.Init(ctx, folder, template, engineOpts...)
	})
	return wikifolder.NewValidator(initer, a.config.Wiki.Template, logger)
}

// Run starts the desktop shell: it opens the configured wiki folder, serves
// it and processes menu commands until quit, end of input or a signal.
func Run(ctx context.Context, opts ...Option) error {
	app, logger, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger.Info("Configuration loaded",
		slog.Int("port", cfg.App.HTTP.Port),
		slog.String("wiki_path", cfg.Wiki.Path),
		slog.String("template", cfg.Wiki.Template),
		slog.String("log_level", cfg.App.LogLevel.String()))

	rec := metrics.New("")
	engineOpts := app.engineOptions(logger, rec)

	console := shell.NewConsole(app.in, app.out)
	desktop := shell.NewSystem(logger)

	window := shell.NewWindow(windowTitle, cfg.Window.Width, cfg.Window.Height, app.out, logger)
	binder := surface.NewBinder(surface.Layout{SidebarWidth: cfg.Window.SidebarWidth}, logger)
	binder.Attach(window.View())
	window.OnResize(func(width, height int) { binder.Resize(width, height) })

	newServer := func(argv []string) lifecycle.Server { return engine.New(argv, engineOpts...) }
	manager := lifecycle.NewManager(lifecycle.Config{
		Port:         cfg.App.HTTP.Port,
		ReadyTimeout: cfg.Lifecycle.ReadyTimeout,
		StopTimeout:  cfg.Lifecycle.StopTimeout,
	}, newServer, app.validator(logger, engineOpts), binder, console, logger)

	build := func(ctx context.Context, folder string) (string, error) {
		return engine.Build(ctx, folder, engineOpts...)
	}
	exporter := lifecycle.NewExporter(build, console, desktop, logger)
	wiki := lifecycle.NewApp(manager, exporter, binder, console, desktop, logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	manager.SetFolder(cfg.Wiki.Path)
	if err := manager.StartServer(ctx, manager.Folder()); err != nil {
		// Already shown to the user; the menu can open another folder.
		logger.Warn("initial wiki failed to start", slog.String("error", err.Error()))
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		defer cancel()
		return shell.NewMenu(wiki, console, window, logger).Run(gCtx)
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down...")

		closeCtx, closeCancel := context.WithTimeout(context.Background(), cfg.Lifecycle.StopTimeout)
		defer closeCancel()
		if err := wiki.Close(closeCtx); err != nil {
			logger.Error("wiki server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Stopped successfully")
	return nil
}

// RunInit bootstraps the configured wiki folder. It reports whether the
// folder had to be initialized.
func RunInit(ctx context.Context, opts ...Option) (bool, error) {
	app, logger, err := newApplication(opts)
	if err != nil {
		return false, err
	}
	engineOpts := app.engineOptions(logger, nil)
	return app.validator(logger, engineOpts).Ensure(ctx, app.config.Wiki.Path)
}

// RunBuild exports the configured wiki folder and returns the output file.
func RunBuild(ctx context.Context, opts ...Option) (string, error) {
	app, logger, err := newApplication(opts)
	if err != nil {
		return "", err
	}
	return engine.Build(ctx, app.config.Wiki.Path, app.engineOptions(logger, nil)...)
}

// RunMCP serves the configured wiki folder as an MCP server on stdio until
// the client disconnects. The index is kept current by a file watcher.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, logger, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	folder := cfg.Wiki.Path

	if _, err := wikifolder.ReadManifest(folder); err != nil {
		return fmt.Errorf("%s is not an initialized wiki (run init first): %w", folder, err)
	}
	store, err := storage.NewFS(folder)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	db, err := index.Open(engine.IndexPath(folder, cfg.Wiki.IndexDir))
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	engineOpts := app.engineOptions(logger, nil)
	srv := mcpserver.New(pageservice.NewService(store, db), func(ctx context.Context, folder string) (string, error) {
		return engine.Build(ctx, folder, engineOpts...)
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := index.Watch(gCtx, db, store, logger, nil); err != nil {
			logger.Warn("watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	g.Go(func() error {
		defer cancel()
		logger.Info("Serving MCP on stdio", slog.String("wiki_path", folder))
		return srv.ServeStdio()
	})

	return g.Wait()
}
