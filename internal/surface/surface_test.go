package surface

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

type fakeSurface struct {
	urls   []string
	bounds []Rect
	err    error
}

func (f *fakeSurface) NavigateTo(url string) error {
	if f.err != nil {
		return f.err
	}
	f.urls = append(f.urls, url)
	return nil
}

func (f *fakeSurface) SetBounds(r Rect) { f.bounds = append(f.bounds, r) }

func newBinder(layout Layout) *Binder {
	return NewBinder(layout, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestContentBounds(t *testing.T) {
	cases := []struct {
		layout Layout
		w, h   int
		want   Rect
	}{
		{Layout{}, 1400, 800, Rect{0, 0, 1400, 800}},
		{Layout{}, 0, 0, Rect{0, 0, 0, 0}},
		{Layout{SidebarWidth: 200}, 1400, 800, Rect{200, 0, 1200, 800}},
		{Layout{SidebarWidth: 500}, 300, 100, Rect{300, 0, 0, 100}},
		{Layout{SidebarWidth: -10}, 640, 480, Rect{0, 0, 640, 480}},
	}
	for _, tc := range cases {
		if got := tc.layout.ContentBounds(tc.w, tc.h); got != tc.want {
			t.Errorf("%+v.ContentBounds(%d, %d) = %v, want %v", tc.layout, tc.w, tc.h, got, tc.want)
		}
	}
}

func TestResize_FullWidth(t *testing.T) {
	b := newBinder(Layout{})
	s := &fakeSurface{}
	b.Attach(s)
	for _, size := range [][2]int{{1400, 800}, {1024, 768}, {1, 1}} {
		b.Resize(size[0], size[1])
		got := s.bounds[len(s.bounds)-1]
		if got != (Rect{0, 0, size[0], size[1]}) {
			t.Errorf("resize %v = %v", size, got)
		}
	}
}

func TestResize_WithoutSurface(t *testing.T) {
	if r := newBinder(Layout{}).Resize(10, 20); r != (Rect{0, 0, 10, 20}) {
		t.Errorf("bounds = %v", r)
	}
}

func TestBind_Navigates(t *testing.T) {
	b := newBinder(Layout{})
	s := &fakeSurface{}
	b.Attach(s)

	tok := b.Begin()
	ok, err := b.Bind(tok, 8080)
	if err != nil || !ok {
		t.Fatalf("Bind = %v, %v", ok, err)
	}
	if len(s.urls) != 1 || s.urls[0] != "http://localhost:8080" {
		t.Errorf("urls = %v", s.urls)
	}
	if b.URL() != "http://localhost:8080" {
		t.Errorf("URL = %q", b.URL())
	}
}

func TestBind_StaleTokenDropped(t *testing.T) {
	b := newBinder(Layout{})
	s := &fakeSurface{}
	b.Attach(s)

	first := b.Begin()
	second := b.Begin()

	// The second start is ready first; the first one's signal arrives late.
	if ok, _ := b.Bind(second, 9002); !ok {
		t.Fatal("current token did not bind")
	}
	if ok, _ := b.Bind(first, 9001); ok {
		t.Error("stale token navigated")
	}
	if len(s.urls) != 1 || s.urls[0] != "http://localhost:9002" {
		t.Errorf("urls = %v", s.urls)
	}
	if b.Current() != second {
		t.Errorf("current = %d, want %d", b.Current(), second)
	}
}

func TestBind_NoSurface(t *testing.T) {
	b := newBinder(Layout{})
	ok, err := b.Bind(b.Begin(), 8080)
	if ok || err != nil {
		t.Errorf("Bind without surface = %v, %v", ok, err)
	}
}

func TestBind_NavigateError(t *testing.T) {
	b := newBinder(Layout{})
	b.Attach(&fakeSurface{err: errors.New("view crashed")})
	if _, err := b.Bind(b.Begin(), 8080); err == nil {
		t.Error("expected navigation error")
	}
}
