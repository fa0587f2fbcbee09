package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/wikishell/internal/api"
	"github.com/starford/wikishell/internal/index"
	"github.com/starford/wikishell/internal/pageservice"
	"github.com/starford/wikishell/internal/render"
	"github.com/starford/wikishell/internal/sse"
	"github.com/starford/wikishell/internal/storage"
	"github.com/starford/wikishell/internal/wikifolder"
)

const graphThrottle = 2 * time.Second

// listen opens the index, binds the listener and serves in the background.
// The port is bound before Ready is returned so conflicts fail the boot.
func (h *Handle) listen(ctx context.Context) (Ready, error) {
	folder := h.args.Folder
	manifest, err := wikifolder.ReadManifest(folder)
	if err != nil {
		return Ready{}, fmt.Errorf("%s is not an initialized wiki: %w", folder, err)
	}
	store, err := storage.NewFS(folder)
	if err != nil {
		return Ready{}, fmt.Errorf("init storage: %w", err)
	}
	db, err := index.Open(IndexPath(folder, h.indexDir))
	if err != nil {
		return Ready{}, fmt.Errorf("init index: %w", err)
	}
	if err := index.Sync(db, store, h.logger); err != nil {
		h.logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}
	if err := ctx.Err(); err != nil {
		db.Close()
		return Ready{}, err
	}

	addr := net.JoinHostPort(h.args.Host, strconv.Itoa(h.args.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		db.Close()
		return Ready{}, fmt.Errorf("listen on %s: %w", addr, err)
	}
	port := ln.Addr().(*net.TCPAddr).Port

	broker := sse.NewBroker(graphThrottle)
	router := api.NewRouter(api.RouterConfig{
		Service:     pageservice.NewService(store, db),
		Renderer:    render.New(),
		WikiName:    manifest.Name,
		WikiRoot:    store.Root(),
		Logger:      h.logger,
		AuthEnabled: h.authEnabled,
		Token:       h.token,
		Events:      broker,
		Metrics:     h.metrics.Handler(),
	})

	serveCtx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return serveCtx },
	}

	g, gCtx := errgroup.WithContext(serveCtx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := index.Watch(gCtx, db, store, h.logger, broker.PublishPageEvent); err != nil {
			h.logger.Warn("watcher disabled", slog.String("error", err.Error()))
		}
		return nil
	})

	teardown := func(ctx context.Context) error {
		broker.Close()
		cancel()
		shutdownErr := srv.Shutdown(ctx)
		if shutdownErr != nil {
			_ = srv.Close()
		}
		waitErr := g.Wait()
		closeErr := db.Close()
		return errors.Join(shutdownErr, waitErr, closeErr)
	}
	if !h.setStop(teardown) {
		_ = teardown(context.Background())
		return Ready{}, errStopped
	}

	h.logger.Info("engine listening",
		slog.String("folder", folder),
		slog.String("address", ln.Addr().String()),
		slog.Int("port", port))
	return Ready{
		Mode: ModeListen,
		Port: port,
		URL:  "http://localhost:" + strconv.Itoa(port),
	}, nil
}
