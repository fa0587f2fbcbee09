// Package testutil provides shared test helpers for wiki folders, indexes
// and asynchronous assertions.
package testutil

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/wikishell/internal/index"
	"github.com/starford/wikishell/internal/storage"
	"github.com/starford/wikishell/internal/wikifolder"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestDB creates a temporary SQLite index that is closed on cleanup.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestWiki creates an initialized wiki folder from template and returns
// its path with a storage.Provider rooted there.
func TestWiki(t *testing.T, template string) (string, storage.Provider) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "wiki")
	if err := wikifolder.Scaffold(dir, template, "test", time.Now()); err != nil {
		t.Fatal(err)
	}
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// Eventually polls fn every tick until it returns true or timeout elapses.
func Eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}
