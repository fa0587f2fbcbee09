// Package shell is the boundary to the host desktop: dialogs, the system
// browser and file manager, the host window with its content view, and
// the application menu.
package shell

import "context"

// BoxType selects the icon of a message box.
type BoxType string

const (
	BoxInfo     BoxType = "info"
	BoxQuestion BoxType = "question"
	BoxWarning  BoxType = "warning"
	BoxError    BoxType = "error"
)

// MessageBox describes a modal prompt with labelled buttons.
type MessageBox struct {
	Type    BoxType
	Title   string
	Message string
	Buttons []string
	// DefaultID is returned when the user accepts without choosing.
	DefaultID int
	// CancelID is returned when the prompt is dismissed.
	CancelID int
}

// Dialogs shows modal prompts. Calls block until the user answers.
type Dialogs interface {
	// PickFolder asks for a directory. ok is false when the user cancels.
	PickFolder(ctx context.Context, title, defaultPath string) (path string, ok bool, err error)
	// MessageBox returns the index of the chosen button.
	MessageBox(ctx context.Context, box MessageBox) (int, error)
	// ErrorBox shows a blocking error notification.
	ErrorBox(title, message string)
}

// Desktop hands things off to the operating system.
type Desktop interface {
	OpenExternal(url string) error
	ShowItemInFolder(path string) error
	// OpenDevTools opens diagnostics for the server at url. The console
	// shell has no inspector, so this is its metrics page.
	OpenDevTools(url string) error
}
