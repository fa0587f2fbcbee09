// Package engine runs the embedded wiki engine against one folder in init,
// listen or build mode. A Handle is booted once; listen-mode handles keep
// serving in the background until Stop.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/starford/wikishell/internal/apperr"
	"github.com/starford/wikishell/internal/metrics"
)

// Version is written into manifests created by init mode.
const Version = "0.1.0"

// DefaultIndexDir holds the page index inside a wiki folder.
const DefaultIndexDir = ".wiki"

// IndexPath returns the page index database for folder.
func IndexPath(folder, indexDir string) string {
	if indexDir == "" {
		indexDir = DefaultIndexDir
	}
	return filepath.Join(folder, indexDir, "index.db")
}

// Ready is the readiness signal emitted once per boot.
type Ready struct {
	Mode string
	// Port and URL are set in listen mode.
	Port int
	URL  string
	// OutputPath is set in build mode.
	OutputPath string
}

// Result is delivered on the channel returned by Boot. Err, when set, is
// always an EngineFailure.
type Result struct {
	Ready Ready
	Err   error
}

// Option configures a Handle.
type Option func(*Handle)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handle) { h.logger = l }
}

// WithMetrics records boots, builds and server starts on rec.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(h *Handle) { h.metrics = rec }
}

// WithAuth enables Bearer token auth on the listen-mode /api routes.
func WithAuth(enabled bool, token string) Option {
	return func(h *Handle) {
		h.authEnabled = enabled
		h.token = token
	}
}

// WithIndexDir sets the index directory, relative to the wiki folder.
func WithIndexDir(dir string) Option {
	return func(h *Handle) {
		if dir != "" {
			h.indexDir = dir
		}
	}
}

// Handle is one engine instance bound to a folder.
type Handle struct {
	argv    []string
	args    Args
	argsErr error

	logger      *slog.Logger
	metrics     *metrics.Recorder
	authEnabled bool
	token       string
	indexDir    string
	now         func() time.Time

	mu      sync.Mutex
	booted  bool
	stopped bool
	stopFn  func(context.Context) error
}

// New creates a handle for argv. Argument errors are reported by Boot.
func New(argv []string, opts ...Option) *Handle {
	h := &Handle{
		argv:     append([]string(nil), argv...),
		logger:   slog.Default(),
		indexDir: DefaultIndexDir,
		now:      time.Now,
	}
	h.args, h.argsErr = ParseArgs(argv)
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Args returns the parsed argument list.
func (h *Handle) Args() Args { return h.args }

// Argv returns the argument list the handle was created with.
func (h *Handle) Argv() []string { return append([]string(nil), h.argv...) }

var (
	errAlreadyBooted = errors.New("engine already booted")
	errStopped       = errors.New("engine stopped before it became ready")
)

// Boot starts the engine. The returned channel receives exactly one Result
// and is then closed. A handle can only be booted once.
func (h *Handle) Boot(ctx context.Context) <-chan Result {
	out := make(chan Result, 1)

	h.mu.Lock()
	if h.booted {
		h.mu.Unlock()
		out <- Result{Err: apperr.Engine("boot", errAlreadyBooted)}
		close(out)
		return out
	}
	h.booted = true
	h.mu.Unlock()

	go func() {
		defer close(out)
		start := time.Now()
		ready, err := h.boot(ctx)
		mode := h.args.Mode
		if mode == "" {
			mode = "invalid"
		}
		h.metrics.ObserveBoot(mode, time.Since(start))
		if err != nil {
			h.logger.Error("engine boot failed",
				slog.String("mode", h.args.Mode),
				slog.String("folder", h.args.Folder),
				slog.String("error", err.Error()))
		}
		out <- Result{Ready: ready, Err: err}
	}()
	return out
}

func (h *Handle) boot(ctx context.Context) (ready Ready, err error) {
	op := "boot " + h.args.Mode
	defer func() {
		if p := recover(); p != nil {
			err = apperr.Engine(op, fmt.Errorf("panic: %v", p))
		}
	}()

	if h.argsErr != nil {
		return Ready{}, apperr.Engine("parse arguments", h.argsErr)
	}
	if err := ctx.Err(); err != nil {
		return Ready{}, apperr.Engine(op, err)
	}

	switch h.args.Mode {
	case ModeInit:
		err = h.runInit()
		ready = Ready{Mode: ModeInit}
	case ModeListen:
		ready, err = h.listen(ctx)
		h.metrics.ServerStarted(err == nil)
	case ModeBuild:
		ready, err = h.build(ctx)
		h.metrics.BuildFinished(err == nil)
	}
	if err != nil {
		return Ready{}, apperr.Engine(op, err)
	}
	return ready, nil
}

// Stop shuts down a listening engine and releases its port. It is safe to
// call more than once, before Boot, or on handles that never listen. A
// boot still in progress is torn down as soon as it binds.
func (h *Handle) Stop(ctx context.Context) error {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return nil
	}
	h.stopped = true
	stop := h.stopFn
	h.stopFn = nil
	h.mu.Unlock()

	if stop == nil {
		return nil
	}
	if err := stop(ctx); err != nil {
		return apperr.Engine("stop", err)
	}
	h.metrics.ServerStopped()
	h.logger.Info("engine stopped", slog.String("folder", h.args.Folder), slog.Int("port", h.args.Port))
	return nil
}

// setStop registers the teardown of a running server. It reports false
// when Stop already ran, in which case the caller must tear down itself.
func (h *Handle) setStop(fn func(context.Context) error) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return false
	}
	h.stopFn = fn
	return true
}

// Init bootstraps folder from template and waits for it to finish.
func Init(ctx context.Context, folder, template string, opts ...Option) error {
	return (<-New(InitArgv(folder, template), opts...).Boot(ctx)).Err
}

// Build exports folder and returns the path of the written file.
func Build(ctx context.Context, folder string, opts ...Option) (string, error) {
	res := <-New(BuildArgv(folder), opts...).Boot(ctx)
	return res.Ready.OutputPath, res.Err
}
