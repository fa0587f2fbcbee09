package lifecycle

import (
	"context"
	"errors"
	"sync"

	"github.com/starford/wikishell/internal/engine"
	"github.com/starford/wikishell/internal/shell"
	"github.com/starford/wikishell/internal/surface"
)

type fakeServer struct {
	argv []string

	// release, when non-nil, holds Boot until closed.
	release chan struct{}
	booting chan struct{}
	result  engine.Result

	mu      sync.Mutex
	stopped bool
	// prevStopped records whether the previous server was stopped when
	// this one booted.
	prevStopped bool
}

func (s *fakeServer) Boot(ctx context.Context) <-chan engine.Result {
	out := make(chan engine.Result, 1)
	go func() {
		defer close(out)
		if s.booting != nil {
			close(s.booting)
		}
		if s.release != nil {
			select {
			case <-s.release:
			case <-ctx.Done():
				return
			}
		}
		out <- s.result
	}()
	return out
}

func (s *fakeServer) Stop(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	return nil
}

func (s *fakeServer) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// fakeFactory hands out servers whose results are decided by plan.
type fakeFactory struct {
	mu      sync.Mutex
	servers []*fakeServer
	plan    func(n int, argv []string) *fakeServer
}

func (f *fakeFactory) New(argv []string) Server {
	f.mu.Lock()
	defer f.mu.Unlock()
	var s *fakeServer
	if f.plan != nil {
		s = f.plan(len(f.servers), argv)
	}
	if s == nil {
		s = &fakeServer{result: engine.Result{Ready: engine.Ready{Mode: engine.ModeListen, Port: 8080}}}
	}
	s.argv = argv
	if n := len(f.servers); n > 0 {
		s.prevStopped = f.servers[n-1].isStopped()
	}
	f.servers = append(f.servers, s)
	return s
}

func (f *fakeFactory) all() []*fakeServer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*fakeServer(nil), f.servers...)
}

type fakeValidator struct {
	mu      sync.Mutex
	folders []string
	err     error
}

func (v *fakeValidator) Ensure(_ context.Context, folder string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.folders = append(v.folders, folder)
	return false, v.err
}

type fakeDialogs struct {
	mu      sync.Mutex
	errors  []string
	boxes   []shell.MessageBox
	choice  int
	picked  string
	pickOK  bool
	pickErr error
}

func (d *fakeDialogs) PickFolder(context.Context, string, string) (string, bool, error) {
	return d.picked, d.pickOK, d.pickErr
}

func (d *fakeDialogs) MessageBox(_ context.Context, box shell.MessageBox) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.boxes = append(d.boxes, box)
	return d.choice, nil
}

func (d *fakeDialogs) ErrorBox(title, message string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.errors = append(d.errors, title+": "+message)
}

func (d *fakeDialogs) errorCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.errors)
}

type fakeDesktop struct {
	opened   []string
	revealed []string
	devtools []string
}

func (d *fakeDesktop) OpenExternal(url string) error {
	d.opened = append(d.opened, url)
	return nil
}

func (d *fakeDesktop) ShowItemInFolder(path string) error {
	d.revealed = append(d.revealed, path)
	return nil
}

func (d *fakeDesktop) OpenDevTools(url string) error {
	if url == "" {
		return errors.New("nothing loaded")
	}
	d.devtools = append(d.devtools, url)
	return nil
}

type fakeSurface struct {
	mu   sync.Mutex
	urls []string
}

func (s *fakeSurface) NavigateTo(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.urls = append(s.urls, url)
	return nil
}

func (s *fakeSurface) SetBounds(surface.Rect) {}

func (s *fakeSurface) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.urls) == 0 {
		return ""
	}
	return s.urls[len(s.urls)-1]
}
