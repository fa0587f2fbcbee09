package lifecycle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/wikishell/internal/apperr"
	"github.com/starford/wikishell/internal/engine"
	"github.com/starford/wikishell/internal/surface"
	"github.com/starford/wikishell/internal/testutil"
	"github.com/starford/wikishell/internal/wikifolder"
)

type harness struct {
	manager   *Manager
	factory   *fakeFactory
	validator FolderValidator
	dialogs   *fakeDialogs
	surface   *fakeSurface
	binder    *surface.Binder
}

func newHarness(t *testing.T, validator FolderValidator, cfg Config) *harness {
	t.Helper()
	h := &harness{
		factory:   &fakeFactory{},
		validator: validator,
		dialogs:   &fakeDialogs{},
		surface:   &fakeSurface{},
	}
	if h.validator == nil {
		h.validator = &fakeValidator{}
	}
	h.binder = surface.NewBinder(surface.Layout{}, testutil.Logger())
	h.binder.Attach(h.surface)
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	h.manager = NewManager(cfg, h.factory.New, h.validator, h.binder, h.dialogs, testutil.Logger())
	return h
}

func TestStartServer_BindsSurface(t *testing.T) {
	h := newHarness(t, nil, Config{})
	folder := t.TempDir()

	if err := h.manager.StartServer(context.Background(), folder); err != nil {
		t.Fatalf("StartServer: %v", err)
	}
	if h.manager.State() != StateReady {
		t.Errorf("state = %v", h.manager.State())
	}
	if got := h.surface.last(); got != "http://localhost:8080" {
		t.Errorf("surface url = %q", got)
	}
	servers := h.factory.all()
	if len(servers) != 1 {
		t.Fatalf("servers = %d", len(servers))
	}
	want := engine.ListenArgv(folder, 8080)
	if strings.Join(servers[0].argv, " ") != strings.Join(want, " ") {
		t.Errorf("argv = %v, want %v", servers[0].argv, want)
	}
}

func TestStartServer_InitializesOnlyMissingFolders(t *testing.T) {
	inits := 0
	validator := wikifolder.NewValidator(wikifolder.InitFunc(func(ctx context.Context, folder, template string) error {
		inits++
		return wikifolder.Scaffold(folder, template, "test", time.Now())
	}), wikifolder.TemplateServer, testutil.Logger())
	h := newHarness(t, validator, Config{})

	fresh := filepath.Join(t.TempDir(), "w1")
	if err := h.manager.StartServer(context.Background(), fresh); err != nil {
		t.Fatalf("StartServer: %v", err)
	}
	if ok, _ := wikifolder.IsInitialized(fresh); !ok || inits != 1 {
		t.Fatalf("fresh folder: initialized=%v inits=%d", ok, inits)
	}

	home := filepath.Join(fresh, "Home.md")
	_ = os.WriteFile(home, []byte("edited"), 0o644)
	if err := h.manager.StartServer(context.Background(), fresh); err != nil {
		t.Fatalf("second StartServer: %v", err)
	}
	if inits != 1 {
		t.Errorf("inits = %d, want 1", inits)
	}
	if data, _ := os.ReadFile(home); string(data) != "edited" {
		t.Errorf("scaffold rewritten: %q", data)
	}
}

func TestStartServer_StopsPreviousBeforeBoot(t *testing.T) {
	h := newHarness(t, nil, Config{})
	folder := t.TempDir()
	for i := 0; i < 3; i++ {
		if err := h.manager.StartServer(context.Background(), folder); err != nil {
			t.Fatalf("StartServer %d: %v", i, err)
		}
	}
	servers := h.factory.all()
	if len(servers) != 3 {
		t.Fatalf("servers = %d, want a fresh one per call", len(servers))
	}
	for i, s := range servers {
		if i > 0 && !s.prevStopped {
			t.Errorf("server %d booted before server %d was stopped", i, i-1)
		}
		if stopped := s.isStopped(); stopped != (i < 2) {
			t.Errorf("server %d stopped = %v", i, stopped)
		}
	}
}

func TestStartServer_BootFailure(t *testing.T) {
	h := newHarness(t, nil, Config{})
	h.factory.plan = func(n int, _ []string) *fakeServer {
		if n == 1 {
			return &fakeServer{result: engine.Result{Err: apperr.Engine("boot", errors.New("address already in use"))}}
		}
		return nil
	}
	folder := t.TempDir()
	_ = h.manager.StartServer(context.Background(), folder)

	err := h.manager.StartServer(context.Background(), folder)
	if apperr.KindOf(err) != apperr.KindEngine {
		t.Fatalf("err = %v, want EngineFailure", err)
	}
	if h.manager.State() != StateFailed || h.manager.Port() != 0 {
		t.Errorf("state = %v port = %d", h.manager.State(), h.manager.Port())
	}
	if h.dialogs.errorCount() != 1 || !strings.Contains(h.dialogs.errors[0], "address already in use") {
		t.Errorf("error boxes = %v", h.dialogs.errors)
	}
	servers := h.factory.all()
	if !servers[0].isStopped() || !servers[1].isStopped() {
		t.Error("servers left running after failure")
	}
}

func TestStartServer_ValidationFailure(t *testing.T) {
	h := newHarness(t, &fakeValidator{err: apperr.Validation("validate folder", errors.New("not a directory"))}, Config{})
	err := h.manager.StartServer(context.Background(), t.TempDir())
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("err = %v, want ValidationFailure", err)
	}
	if len(h.factory.all()) != 0 {
		t.Error("server constructed after failed validation")
	}
	if h.dialogs.errorCount() != 1 {
		t.Errorf("error boxes = %v", h.dialogs.errors)
	}
}

func TestStartServer_UnclassifiedErrorBecomesEngineFailure(t *testing.T) {
	h := newHarness(t, &fakeValidator{err: errors.New("disk on fire")}, Config{})
	err := h.manager.StartServer(context.Background(), t.TempDir())
	if apperr.KindOf(err) != apperr.KindEngine {
		t.Errorf("kind = %v, want EngineFailure", apperr.KindOf(err))
	}
}

func TestStartServer_ReadyTimeout(t *testing.T) {
	h := newHarness(t, nil, Config{ReadyTimeout: 50 * time.Millisecond})
	h.factory.plan = func(int, []string) *fakeServer {
		return &fakeServer{release: make(chan struct{})}
	}
	err := h.manager.StartServer(context.Background(), t.TempDir())
	if apperr.KindOf(err) != apperr.KindEngine {
		t.Fatalf("err = %v, want EngineFailure", err)
	}
	if !h.factory.all()[0].isStopped() {
		t.Error("hung server was not stopped")
	}
	if h.surface.last() != "" {
		t.Error("surface navigated after timeout")
	}
}

func TestOpenFolder_LastSelectionWins(t *testing.T) {
	h := newHarness(t, nil, Config{})
	f1, f2 := t.TempDir(), t.TempDir()

	first := &fakeServer{
		release: make(chan struct{}),
		booting: make(chan struct{}),
		result:  engine.Result{Ready: engine.Ready{Port: 9001}},
	}
	h.factory.plan = func(n int, _ []string) *fakeServer {
		if n == 0 {
			return first
		}
		return &fakeServer{result: engine.Result{Ready: engine.Ready{Port: 9002}}}
	}

	done1 := make(chan error, 1)
	go func() { done1 <- h.manager.OpenFolder(context.Background(), f1) }()
	<-first.booting

	done2 := make(chan error, 1)
	go func() { done2 <- h.manager.OpenFolder(context.Background(), f2) }()

	// F1's readiness arrives while F2 is waiting for its turn.
	time.Sleep(20 * time.Millisecond)
	close(first.release)

	if err := <-done1; err != nil {
		t.Fatalf("open f1: %v", err)
	}
	if err := <-done2; err != nil {
		t.Fatalf("open f2: %v", err)
	}
	if got := h.surface.last(); got != "http://localhost:9002" {
		t.Errorf("final surface url = %q, want F2's server", got)
	}
	if h.manager.Folder() != f2 {
		t.Errorf("folder = %q, want %q", h.manager.Folder(), f2)
	}
	if !first.isStopped() {
		t.Error("F1's server still running")
	}
}

func TestOpenFolder_SamePathRestarts(t *testing.T) {
	h := newHarness(t, nil, Config{})
	folder := t.TempDir()
	_ = h.manager.OpenFolder(context.Background(), folder)
	_ = h.manager.OpenFolder(context.Background(), folder)
	if n := len(h.factory.all()); n != 2 {
		t.Errorf("servers = %d, want 2", n)
	}
}

func TestClose(t *testing.T) {
	h := newHarness(t, nil, Config{})
	if err := h.manager.Close(context.Background()); err != nil {
		t.Errorf("Close with nothing running: %v", err)
	}
	_ = h.manager.StartServer(context.Background(), t.TempDir())
	if err := h.manager.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !h.factory.all()[0].isStopped() {
		t.Error("server not stopped")
	}
}

func TestState_String(t *testing.T) {
	for s, want := range map[State]string{
		StateUninitialized: "Uninitialized",
		StateInitializing:  "Initializing",
		StateReady:         "Ready",
		StateFailed:        "Failed",
	} {
		if s.String() != want {
			t.Errorf("%d.String() = %q", int(s), s.String())
		}
	}
}
