// errors_test.go
package vkvideo

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorKindMatching(t *testing.T) {
	err := errKindf(ErrSps, "bad field %d", 7)

	if !IsKind(err, ErrSps) {
		t.Error("IsKind must match the error's own kind")
	}
	if IsKind(err, ErrPps) {
		t.Error("IsKind must not match a different kind")
	}
	if !errors.Is(err, &Error{Kind: ErrSps}) {
		t.Error("errors.Is with a bare kind must match")
	}

	// Matching survives wrapping.
	wrapped := fmt.Errorf("feeding unit 3: %w", err)
	if !IsKind(wrapped, ErrSps) {
		t.Error("IsKind must see through wrapping")
	}
	if IsKind(errors.New("plain"), ErrSps) {
		t.Error("foreign errors carry no kind")
	}
}

func TestErrorMessage(t *testing.T) {
	err := errKindf(ErrMissingSps, "pps 3 references unknown sps 7")
	msg := err.Error()
	if !strings.Contains(msg, "unknown sequence parameter set") {
		t.Errorf("kind text missing: %q", msg)
	}
	if !strings.Contains(msg, "pps 3") {
		t.Errorf("detail missing: %q", msg)
	}
}

func TestVulkanErrorUnwrapsResult(t *testing.T) {
	err := errVulkanMsg(DEVICE_LOST, "vkQueueSubmit")
	if !errors.Is(err, DEVICE_LOST) {
		t.Error("driver errors must unwrap to their Result")
	}
	if !strings.Contains(err.Error(), "vkQueueSubmit") {
		t.Errorf("call site missing: %q", err.Error())
	}
}

func TestErrorStack(t *testing.T) {
	err := errKind(ErrNalHeader)
	stack := err.Stack()
	if !strings.Contains(stack, "TestErrorStack") {
		t.Errorf("stack must name the error site, got:\n%s", stack)
	}
}
