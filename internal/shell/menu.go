package shell

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Controller carries out menu actions.
type Controller interface {
	// OpenWiki switches to path, asking for a folder when path is empty.
	OpenWiki(ctx context.Context, path string) error
	BuildWiki(ctx context.Context) error
	OpenInBrowser() error
	OpenDevTools() error
	Status() string
}

// Item is one menu entry bound to a console command.
type Item struct {
	Label       string
	Command     string
	Accelerator string
}

// Section is a top-level menu.
type Section struct {
	Label string
	Items []Item
}

// DefaultMenu returns the application menu.
func DefaultMenu() []Section {
	return []Section{
		{Label: "File", Items: []Item{
			{Label: "Open Wiki…", Command: "open [path]", Accelerator: "CmdOrCtrl+O"},
			{Label: "Build Wiki", Command: "build", Accelerator: "CmdOrCtrl+B"},
			{Label: "Open in Browser", Command: "browser"},
			{Label: "Quit", Command: "quit", Accelerator: "CmdOrCtrl+Q"},
		}},
		{Label: "Develop", Items: []Item{
			{Label: "Open Metrics (browser)", Command: "metrics", Accelerator: "Alt+CmdOrCtrl+I"},
		}},
		{Label: "View", Items: []Item{
			{Label: "Resize Window", Command: "resize W H"},
			{Label: "Status", Command: "status"},
		}},
	}
}

// Menu reads commands from the console and dispatches them.
type Menu struct {
	ctrl    Controller
	console *Console
	window  *Window
	logger  *slog.Logger
}

// NewMenu creates a Menu.
func NewMenu(ctrl Controller, console *Console, window *Window, logger *slog.Logger) *Menu {
	return &Menu{ctrl: ctrl, console: console, window: window, logger: logger}
}

var errQuit = errors.New("quit")

// Run processes commands until quit, end of input, or ctx is done.
func (m *Menu) Run(ctx context.Context) error {
	defer m.console.Close()
	m.printHelp()
	for {
		line, err := m.console.ReadLine(ctx, "wikishell> ")
		if errors.Is(err, ErrInputClosed) || errors.Is(err, context.Canceled) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := m.Dispatch(ctx, line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			m.console.Printf("%v\n", err)
		}
	}
}

// Dispatch runs one command line.
func (m *Menu) Dispatch(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := fields[0], fields[1:]
	m.logger.Debug("menu command", slog.String("command", cmd))

	switch cmd {
	case "open":
		return m.ctrl.OpenWiki(ctx, strings.Join(args, " "))
	case "build":
		return m.ctrl.BuildWiki(ctx)
	case "browser":
		return m.ctrl.OpenInBrowser()
	case "metrics", "devtools":
		return m.ctrl.OpenDevTools()
	case "resize":
		if len(args) != 2 {
			return errors.New("usage: resize W H")
		}
		w, errW := strconv.Atoi(args[0])
		h, errH := strconv.Atoi(args[1])
		if errW != nil || errH != nil || w < 0 || h < 0 {
			return errors.New("usage: resize W H")
		}
		m.window.Resize(w, h)
		b := m.window.View().Bounds()
		m.console.Printf("content bounds %s\n", b)
		return nil
	case "status":
		m.console.Printf("%s\n", m.ctrl.Status())
		return nil
	case "help", "?":
		m.printHelp()
		return nil
	case "quit", "exit":
		return errQuit
	}
	return fmt.Errorf("unknown command %q (try help)", cmd)
}

func (m *Menu) printHelp() {
	for _, s := range DefaultMenu() {
		m.console.Printf("%s\n", s.Label)
		for _, it := range s.Items {
			m.console.Printf("  %-16s %s\n", it.Command, it.Label)
		}
	}
}
