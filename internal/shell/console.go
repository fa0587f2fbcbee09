package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// ErrInputClosed is returned once the console input reaches EOF.
var ErrInputClosed = errors.New("console input closed")

// Console implements Dialogs on a terminal. Input is read by a single
// goroutine so the menu loop and dialogs can share it.
type Console struct {
	out io.Writer

	outMu sync.Mutex
	start sync.Once
	stop  sync.Once
	in    io.Reader
	lines chan string
	done  chan struct{}
}

// NewConsole creates a console reading from in and writing to out.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: in, out: out, lines: make(chan string), done: make(chan struct{})}
}

func (c *Console) pump() {
	go func() {
		defer close(c.lines)
		sc := bufio.NewScanner(c.in)
		for sc.Scan() {
			select {
			case <-c.done:
				return
			default:
			}
			select {
			case c.lines <- sc.Text():
			case <-c.done:
				return
			}
		}
	}()
}

// Close stops delivering input. The reader goroutine exits after its
// current read returns; later ReadLine calls report ErrInputClosed.
func (c *Console) Close() {
	c.stop.Do(func() { close(c.done) })
}

// Printf writes to the console output.
func (c *Console) Printf(format string, args ...any) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

// ReadLine prints prompt and waits for one line of input.
func (c *Console) ReadLine(ctx context.Context, prompt string) (string, error) {
	select {
	case <-c.done:
		return "", ErrInputClosed
	default:
	}
	c.start.Do(c.pump)
	if prompt != "" {
		c.Printf("%s", prompt)
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-c.done:
		return "", ErrInputClosed
	case line, ok := <-c.lines:
		if !ok {
			return "", ErrInputClosed
		}
		return strings.TrimSpace(line), nil
	}
}

// PickFolder implements Dialogs. An empty answer accepts defaultPath; a
// single "-" cancels.
func (c *Console) PickFolder(ctx context.Context, title, defaultPath string) (string, bool, error) {
	prompt := title
	if defaultPath != "" {
		prompt += " [" + defaultPath + "]"
	}
	line, err := c.ReadLine(ctx, prompt+": ")
	if errors.Is(err, ErrInputClosed) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	switch line {
	case "-":
		return "", false, nil
	case "":
		if defaultPath == "" {
			return "", false, nil
		}
		return defaultPath, true, nil
	}
	return line, true, nil
}

// MessageBox implements Dialogs. Buttons are chosen by number.
func (c *Console) MessageBox(ctx context.Context, box MessageBox) (int, error) {
	c.Printf("\n[%s] %s\n%s\n", box.Type, box.Title, box.Message)
	for i, b := range box.Buttons {
		marker := " "
		if i == box.DefaultID {
			marker = "*"
		}
		c.Printf(" %s%d) %s\n", marker, i+1, b)
	}
	for {
		line, err := c.ReadLine(ctx, "> ")
		if errors.Is(err, ErrInputClosed) {
			return box.CancelID, nil
		}
		if err != nil {
			return box.CancelID, err
		}
		if line == "" {
			return box.DefaultID, nil
		}
		n, convErr := strconv.Atoi(line)
		if convErr == nil && n >= 1 && n <= len(box.Buttons) {
			return n - 1, nil
		}
		c.Printf("choose 1-%d\n", len(box.Buttons))
	}
}

// ErrorBox implements Dialogs.
func (c *Console) ErrorBox(title, message string) {
	c.Printf("\n[error] %s\n%s\n", title, message)
}
