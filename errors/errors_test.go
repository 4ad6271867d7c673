package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestNewIncludesCallerInfo(t *testing.T) {
	err := New("something broke: %s", "disk")
	if !strings.Contains(err.Error(), "errors_test.go") {
		t.Errorf("Expected caller file in message, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "something broke: disk") {
		t.Errorf("Expected formatted message, got %q", err.Error())
	}
}

func TestWrapfNilReturnsNil(t *testing.T) {
	if Wrapf(nil, "context") != nil {
		t.Error("Wrapf(nil) should return nil")
	}
	if WrapKind(nil, KindIO, "context") != nil {
		t.Error("WrapKind(nil) should return nil")
	}
}

func TestKindPropagation(t *testing.T) {
	base := E(KindScopeViolation, "path escapes root")
	if KindOf(base) != KindScopeViolation {
		t.Fatalf("Expected scope_violation, got %q", KindOf(base))
	}

	// Wrapf keeps the cause's kind.
	wrapped := Wrapf(base, "read_file failed")
	if KindOf(wrapped) != KindScopeViolation {
		t.Errorf("Wrapf lost the kind, got %q", KindOf(wrapped))
	}

	// WrapKind overrides it.
	overridden := WrapKind(base, KindIO, "device error")
	if KindOf(overridden) != KindIO {
		t.Errorf("WrapKind did not override, got %q", KindOf(overridden))
	}
}

func TestKindOfUnclassified(t *testing.T) {
	if KindOf(fmt.Errorf("plain")) != KindNone {
		t.Error("Plain errors should report KindNone")
	}
	if KindOf(nil) != KindNone {
		t.Error("nil should report KindNone")
	}
}

func TestIs(t *testing.T) {
	err := Wrapf(E(KindNotFound, "missing"), "outer")
	if !Is(err, KindNotFound) {
		t.Error("Is should match the wrapped kind")
	}
	if Is(err, KindIO) {
		t.Error("Is should not match a different kind")
	}
}
