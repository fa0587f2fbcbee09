// Package lifecycle owns the current wiki folder and the server running
// on it, and sequences validation, teardown, boot and surface binding.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/starford/wikishell/internal/apperr"
	"github.com/starford/wikishell/internal/engine"
	"github.com/starford/wikishell/internal/shell"
	"github.com/starford/wikishell/internal/surface"
)

// State is the manager's position in the start sequence.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	// StateFailed is idle after a failed start with no server running.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateInitializing:
		return "Initializing"
	case StateReady:
		return "Ready"
	case StateFailed:
		return "Failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Server is a bootable, stoppable engine instance.
type Server interface {
	Boot(ctx context.Context) <-chan engine.Result
	Stop(ctx context.Context) error
}

// ServerFactory constructs a server for an engine argument list.
type ServerFactory func(argv []string) Server

// FolderValidator makes sure a folder is initialized before serving it.
type FolderValidator interface {
	Ensure(ctx context.Context, folder string) (bool, error)
}

// Config holds the manager's tunables.
type Config struct {
	// Port is the fixed listen port. 0 lets the OS choose one per start.
	Port         int
	ReadyTimeout time.Duration
	StopTimeout  time.Duration
}

const (
	defaultReadyTimeout = 30 * time.Second
	defaultStopTimeout  = 5 * time.Second
)

// Manager owns the current folder and the current server.
type Manager struct {
	cfg       Config
	newServer ServerFactory
	validator FolderValidator
	binder    *surface.Binder
	dialogs   shell.Dialogs
	logger    *slog.Logger

	// seq serializes start sequences.
	seq sync.Mutex

	mu      sync.Mutex
	folder  string
	current Server
	state   State
	port    int
	lastErr error
}

// NewManager creates a Manager. Zero timeouts take defaults.
func NewManager(cfg Config, newServer ServerFactory, validator FolderValidator, binder *surface.Binder, dialogs shell.Dialogs, logger *slog.Logger) *Manager {
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = defaultReadyTimeout
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = defaultStopTimeout
	}
	return &Manager{
		cfg:       cfg,
		newServer: newServer,
		validator: validator,
		binder:    binder,
		dialogs:   dialogs,
		logger:    logger,
	}
}

// Folder returns the current wiki folder.
func (m *Manager) Folder() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.folder
}

// State returns the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Port returns the port of the running server, or 0.
func (m *Manager) Port() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.port
}

// Err returns the failure that put the manager in StateFailed.
func (m *Manager) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// SetFolder records the folder without starting anything.
func (m *Manager) SetFolder(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.folder = cleanPath(path)
}

// OpenFolder makes path the current folder and restarts the server on it,
// even when path is already current.
func (m *Manager) OpenFolder(ctx context.Context, path string) error {
	path = cleanPath(path)
	m.seq.Lock()
	defer m.seq.Unlock()

	m.mu.Lock()
	m.folder = path
	m.mu.Unlock()
	m.logger.Info("opening wiki folder", slog.String("folder", path))
	return m.start(ctx, path)
}

// StartServer validates folder, stops the previous server, boots a new
// one on the configured port and binds the content surface once it is
// ready. A fresh server is started on every call. Failures are shown in
// an error box and returned.
func (m *Manager) StartServer(ctx context.Context, folder string) error {
	m.seq.Lock()
	defer m.seq.Unlock()
	return m.start(ctx, cleanPath(folder))
}

func (m *Manager) start(ctx context.Context, folder string) error {
	tok := m.binder.Begin()
	m.setState(StateInitializing, nil)

	if _, err := m.validator.Ensure(ctx, folder); err != nil {
		m.retire()
		return m.fail("Failed to initialize wiki", err)
	}

	m.retire()

	srv := m.newServer(engine.ListenArgv(folder, m.cfg.Port))
	m.mu.Lock()
	m.current = srv
	m.mu.Unlock()

	bootCtx, cancel := context.WithTimeout(ctx, m.cfg.ReadyTimeout)
	defer cancel()

	var res engine.Result
	select {
	case res = <-srv.Boot(bootCtx):
	case <-bootCtx.Done():
		res.Err = apperr.Engine("boot", fmt.Errorf("server did not become ready within %s: %w", m.cfg.ReadyTimeout, bootCtx.Err()))
	}
	if res.Err != nil {
		m.retire()
		return m.fail("Failed to start wiki server", res.Err)
	}

	m.mu.Lock()
	m.state = StateReady
	m.port = res.Ready.Port
	m.lastErr = nil
	m.mu.Unlock()
	m.logger.Info("wiki server ready",
		slog.String("folder", folder),
		slog.Int("port", res.Ready.Port))

	if _, err := m.binder.Bind(tok, res.Ready.Port); err != nil {
		m.logger.Error("bind content surface failed", slog.String("error", err.Error()))
		m.dialogs.ErrorBox("Error", err.Error())
	}
	return nil
}

// retire stops the current server, waiting at most StopTimeout.
func (m *Manager) retire() {
	m.mu.Lock()
	prev := m.current
	m.current = nil
	m.port = 0
	m.mu.Unlock()
	if prev == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.StopTimeout)
	defer cancel()
	if err := prev.Stop(ctx); err != nil {
		m.logger.Warn("stopping previous server failed", slog.String("error", err.Error()))
	}
}

func (m *Manager) fail(title string, err error) error {
	if apperr.KindOf(err) == apperr.KindUnknown {
		err = apperr.Engine("start server", err)
	}
	m.setState(StateFailed, err)
	m.logger.Error("wiki server start failed",
		slog.String("kind", apperr.KindOf(err).String()),
		slog.String("error", err.Error()))
	m.dialogs.ErrorBox("Error", title+": "+apperr.Message(err))
	return err
}

func (m *Manager) setState(s State, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
	m.lastErr = err
}

// Close stops the current server. Readiness signals still in flight are
// discarded.
func (m *Manager) Close(ctx context.Context) error {
	m.seq.Lock()
	defer m.seq.Unlock()
	m.binder.Begin()

	m.mu.Lock()
	prev := m.current
	m.current = nil
	m.port = 0
	m.mu.Unlock()
	if prev == nil {
		return nil
	}
	return prev.Stop(ctx)
}

func cleanPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
