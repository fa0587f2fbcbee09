// Package surface binds the content surface of the host window to the
// currently running wiki server.
package surface

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"
)

// Rect is a rectangle in window coordinates.
type Rect struct {
	X, Y, Width, Height int
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d,%d,%d)", r.X, r.Y, r.Width, r.Height)
}

// Surface is the embedded browser view owned by the host window.
type Surface interface {
	NavigateTo(url string) error
	SetBounds(r Rect)
}

// Layout computes content bounds from the host window size.
type Layout struct {
	// SidebarWidth reserves a strip on the left. Zero gives a full-width
	// single pane.
	SidebarWidth int
}

// ContentBounds returns the content surface rectangle for a window of
// the given size.
func (l Layout) ContentBounds(width, height int) Rect {
	side := min(max(l.SidebarWidth, 0), max(width, 0))
	return Rect{X: side, Y: 0, Width: max(width-side, 0), Height: max(height, 0)}
}

// Token identifies one start sequence. Only the newest token may navigate.
type Token uint64

// Binder navigates the surface to a server once it is ready.
type Binder struct {
	logger *slog.Logger
	layout Layout

	mu      sync.Mutex
	surface Surface
	gen     Token
	url     string
}

// NewBinder creates a Binder with no surface attached.
func NewBinder(layout Layout, logger *slog.Logger) *Binder {
	return &Binder{layout: layout, logger: logger}
}

// Attach sets the surface. It must be called by the host window before
// the first server start.
func (b *Binder) Attach(s Surface) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.surface = s
}

// Begin starts a new generation and returns its token. Tokens handed out
// earlier become stale.
func (b *Binder) Begin() Token {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gen++
	return b.gen
}

// Current returns the newest token.
func (b *Binder) Current() Token {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gen
}

// Bind navigates the surface to http://localhost:<port> if tok is still
// current. It reports whether navigation happened. With no surface
// attached the navigation is dropped without retry.
func (b *Binder) Bind(tok Token, port int) (bool, error) {
	url := "http://localhost:" + strconv.Itoa(port)

	b.mu.Lock()
	defer b.mu.Unlock()
	if tok != b.gen {
		b.logger.Info("discarding stale readiness signal",
			slog.Uint64("token", uint64(tok)),
			slog.Uint64("current", uint64(b.gen)),
			slog.Int("port", port))
		return false, nil
	}
	if b.surface == nil {
		b.logger.Warn("server ready before content surface exists", slog.String("url", url))
		return false, nil
	}
	if err := b.surface.NavigateTo(url); err != nil {
		return false, fmt.Errorf("navigate to %s: %w", url, err)
	}
	b.url = url
	b.logger.Info("content surface bound", slog.String("url", url))
	return true, nil
}

// URL returns the address the surface was last navigated to.
func (b *Binder) URL() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.url
}

// Resize recomputes the surface bounds for a host window of width x height.
func (b *Binder) Resize(width, height int) Rect {
	r := b.layout.ContentBounds(width, height)
	b.mu.Lock()
	s := b.surface
	b.mu.Unlock()
	if s != nil {
		s.SetBounds(r)
	}
	return r
}
