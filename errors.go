// errors.go
package vkvideo

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrorKind classifies every failure this library can produce. Driver
// failures carry the raw Result; usage and parse failures carry a kind only.
type ErrorKind int32

const (
	ErrVulkan ErrorKind = iota
	ErrNul
	ErrLoading
	ErrNoVideoDevice
	ErrNoComputePipeline
	ErrNoCommandBuffer
	ErrHeapNotFound
	ErrQueueNotFound
	ErrImageAlreadyBound
	ErrNalHeader
	ErrSps
	ErrPps
	ErrMissingSps
)

func (k ErrorKind) String() string {
	switch k {
	case ErrVulkan:
		return "vulkan"
	case ErrNul:
		return "interior nul byte"
	case ErrLoading:
		return "loading"
	case ErrNoVideoDevice:
		return "no video device"
	case ErrNoComputePipeline:
		return "no compute pipeline"
	case ErrNoCommandBuffer:
		return "no command buffer"
	case ErrHeapNotFound:
		return "heap not found"
	case ErrQueueNotFound:
		return "queue not found"
	case ErrImageAlreadyBound:
		return "image already bound"
	case ErrNalHeader:
		return "malformed nal header"
	case ErrSps:
		return "malformed sequence parameter set"
	case ErrPps:
		return "malformed picture parameter set"
	case ErrMissingSps:
		return "picture parameter set references unknown sequence parameter set"
	default:
		return fmt.Sprintf("error kind %d", int32(k))
	}
}

// Error is the structured error type used everywhere: a kind, an optional
// message, the raw driver result for ErrVulkan, and the call stack captured
// at the error site.
type Error struct {
	Kind    ErrorKind
	Message string
	Result  Result
	stack   []uintptr
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.String())
	if e.Kind == ErrVulkan {
		sb.WriteString(": ")
		sb.WriteString(e.Result.Error())
	}
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	if e.Kind == ErrVulkan {
		return e.Result
	}
	return nil
}

// Is lets callers match on a bare kind: errors.Is(err, &Error{Kind: ErrSps}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Stack formats the captured call stack, innermost frame first.
func (e *Error) Stack() string {
	var sb strings.Builder
	frames := runtime.CallersFrames(e.stack)
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&sb, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return sb.String()
}

func newError(kind ErrorKind, msg string) *Error {
	e := &Error{Kind: kind, Message: msg}
	var pcs [32]uintptr
	// Skip runtime.Callers, newError and the errKind/errVulkan shim.
	n := runtime.Callers(3, pcs[:])
	e.stack = pcs[:n]
	return e
}

func errKind(kind ErrorKind) *Error {
	return newError(kind, "")
}

func errKindf(kind ErrorKind, format string, args ...any) *Error {
	return newError(kind, fmt.Sprintf(format, args...))
}

func errVulkan(result Result) *Error {
	e := newError(ErrVulkan, "")
	e.Result = result
	return e
}

func errVulkanMsg(result Result, msg string) *Error {
	e := newError(ErrVulkan, msg)
	e.Result = result
	return e
}

// IsKind reports whether err is a library error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
