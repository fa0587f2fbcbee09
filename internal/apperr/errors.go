// Package apperr defines the closed set of failure kinds surfaced to the user
// and the sentinel errors used by the page API.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
)

// Kind classifies a user-facing failure.
type Kind int

const (
	// KindUnknown is returned by KindOf for errors that carry no kind.
	KindUnknown Kind = iota
	// KindEngine covers any failure constructing, booting, or building the wiki engine.
	KindEngine
	// KindValidation covers failures inspecting or initializing a wiki folder.
	KindValidation
)

// String returns the human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindEngine:
		return "EngineFailure"
	case KindValidation:
		return "ValidationFailure"
	default:
		return "UnknownFailure"
	}
}

// Error is a classified failure with a one-line message.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Op, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Engine wraps err as an EngineFailure. An error that is already classified
// keeps its original kind.
func Engine(op string, err error) error {
	return classify(KindEngine, op, err)
}

// Validation wraps err as a ValidationFailure. An error that is already
// classified keeps its original kind.
func Validation(op string, err error) error {
	return classify(KindValidation, op, err)
}

func classify(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: kind, Op: op, Msg: err.Error(), Err: err}
}

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}

// Message returns the human-readable message carried by err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Msg
	}
	return err.Error()
}
