package apperr

import (
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestEngineWrapsWithKind(t *testing.T) {
	base := errors.New("port in use")
	err := Engine("listen", base)
	if KindOf(err) != KindEngine {
		t.Fatalf("kind = %v, want %v", KindOf(err), KindEngine)
	}
	if !errors.Is(err, base) {
		t.Error("wrapped error should unwrap to base")
	}
	if Message(err) != "port in use" {
		t.Errorf("message = %q", Message(err))
	}
	if err.Error() != "EngineFailure: listen: port in use" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestClassifiedErrorKeepsKind(t *testing.T) {
	inner := Validation("stat", os.ErrPermission)
	outer := Engine("boot", fmt.Errorf("init: %w", inner))
	if KindOf(outer) != KindValidation {
		t.Errorf("kind = %v, want ValidationFailure", KindOf(outer))
	}
}

func TestNilStaysNil(t *testing.T) {
	if Engine("x", nil) != nil {
		t.Error("Engine(nil) should be nil")
	}
	if KindOf(nil) != KindUnknown {
		t.Error("KindOf(nil) should be unknown")
	}
	if Message(nil) != "" {
		t.Error("Message(nil) should be empty")
	}
}

func TestUnclassifiedMessage(t *testing.T) {
	err := errors.New("boom")
	if KindOf(err) != KindUnknown {
		t.Error("plain error should be unknown kind")
	}
	if Message(err) != "boom" {
		t.Errorf("message = %q", Message(err))
	}
}
