package shell

import (
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// System implements Desktop with the platform's open command.
type System struct {
	goos   string
	logger *slog.Logger
	run    func(name string, args ...string) error
}

// NewSystem creates a Desktop for the running platform.
func NewSystem(logger *slog.Logger) *System {
	return &System{goos: runtime.GOOS, logger: logger, run: startDetached}
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// OpenExternal opens url in the default browser.
func (s *System) OpenExternal(url string) error {
	name, args := s.openCommand(url)
	s.logger.Info("opening in browser", slog.String("url", url))
	if err := s.run(name, args...); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	return nil
}

// ShowItemInFolder reveals path in the file manager, selecting it where
// the platform supports that.
func (s *System) ShowItemInFolder(path string) error {
	var (
		name string
		args []string
	)
	switch s.goos {
	case "darwin":
		name, args = "open", []string{"-R", path}
	case "windows":
		name, args = "explorer", []string{"/select," + path}
	default:
		name, args = "xdg-open", []string{filepath.Dir(path)}
	}
	s.logger.Info("revealing in file manager", slog.String("path", path))
	if err := s.run(name, args...); err != nil {
		return fmt.Errorf("reveal %s: %w", path, err)
	}
	return nil
}

// OpenDevTools opens the engine's metrics page for url in the browser.
func (s *System) OpenDevTools(url string) error {
	if url == "" {
		return fmt.Errorf("no page loaded")
	}
	return s.OpenExternal(strings.TrimSuffix(url, "/") + "/metrics")
}

func (s *System) openCommand(target string) (string, []string) {
	switch s.goos {
	case "darwin":
		return "open", []string{target}
	case "windows":
		return "cmd", []string{"/c", "start", "", target}
	default:
		return "xdg-open", []string{target}
	}
}
