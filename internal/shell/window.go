package shell

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/starford/wikishell/internal/surface"
)

// View is the single content surface of a Window.
type View struct {
	out    io.Writer
	logger *slog.Logger

	mu      sync.Mutex
	url     string
	bounds  surface.Rect
	history []string
}

// NavigateTo implements surface.Surface.
func (v *View) NavigateTo(url string) error {
	v.mu.Lock()
	v.url = url
	v.history = append(v.history, url)
	v.mu.Unlock()
	v.logger.Debug("view navigated", slog.String("url", url))
	if v.out != nil {
		fmt.Fprintf(v.out, "Showing %s\n", url)
	}
	return nil
}

// SetBounds implements surface.Surface.
func (v *View) SetBounds(r surface.Rect) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.bounds = r
}

// URL returns the current navigation target.
func (v *View) URL() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.url
}

// Bounds returns the current view rectangle.
func (v *View) Bounds() surface.Rect {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.bounds
}

// History returns every URL the view has navigated to, oldest first.
func (v *View) History() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.history...)
}

// Window is the host window. It owns one content view and tells
// listeners about size changes.
type Window struct {
	title string
	view  *View

	mu       sync.Mutex
	width    int
	height   int
	onResize []func(width, height int)
}

// NewWindow creates a window of the given size with its content view.
func NewWindow(title string, width, height int, out io.Writer, logger *slog.Logger) *Window {
	return &Window{
		title:  title,
		width:  width,
		height: height,
		view:   &View{out: out, logger: logger},
	}
}

// Title returns the window title.
func (w *Window) Title() string { return w.title }

// View returns the content surface.
func (w *Window) View() *View { return w.view }

// Size returns the window's current size.
func (w *Window) Size() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width, w.height
}

// OnResize registers fn to run after every resize. It is called once
// immediately with the current size.
func (w *Window) OnResize(fn func(width, height int)) {
	w.mu.Lock()
	w.onResize = append(w.onResize, fn)
	width, height := w.width, w.height
	w.mu.Unlock()
	fn(width, height)
}

// Resize changes the window size and notifies listeners.
func (w *Window) Resize(width, height int) {
	w.mu.Lock()
	w.width, w.height = width, height
	fns := append([]func(int, int){}, w.onResize...)
	w.mu.Unlock()
	for _, fn := range fns {
		fn(width, height)
	}
}
