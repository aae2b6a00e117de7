// Package vmerr implements the native error kinds the dispatch loop raises
// and the unwind path propagates.
package vmerr

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Kind identifies one of the native ECMAScript error constructors the VM
// can raise on its own, without help from the host object collaborator.
type Kind string

const (
	TypeErrorKind      Kind = "TypeError"
	ReferenceErrorKind Kind = "ReferenceError"
	SyntaxErrorKind    Kind = "SyntaxError"
	RangeErrorKind     Kind = "RangeError"
	EvalErrorKind      Kind = "EvalError"
	URIErrorKind       Kind = "URIError"
	CommonErrorKind    Kind = "Error"
)

// SourceLocation pins an error to the bytecode position it was raised at.
type SourceLocation struct {
	Unit   string
	Offset int
	Line   int
	Column int
}

// StackFrame is one call-stack entry, appended to a NativeError with
// PushFrame.
type StackFrame struct {
	Function string
	Location SourceLocation
}

// NativeError is a VM-raised error carrying the kind, message, and an
// optional raise site and call-stack trail (set with At and PushFrame;
// the dispatch loop sets neither). The dispatch loop converts a
// NativeError into a thrown Value via the ErrorOps collaborator before it
// reaches script-visible catch code.
type NativeError struct {
	Kind      Kind
	Message   string
	Location  SourceLocation
	CallStack []StackFrame
	cause     error
}

func newError(kind Kind, format string, args ...interface{}) *NativeError {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &NativeError{
		Kind:    kind,
		Message: msg,
		cause:   errors.New(string(kind) + ": " + msg),
	}
}

func TypeError(format string, args ...interface{}) *NativeError {
	return newError(TypeErrorKind, format, args...)
}

func ReferenceError(format string, args ...interface{}) *NativeError {
	return newError(ReferenceErrorKind, format, args...)
}

func SyntaxError(format string, args ...interface{}) *NativeError {
	return newError(SyntaxErrorKind, format, args...)
}

func RangeError(format string, args ...interface{}) *NativeError {
	return newError(RangeErrorKind, format, args...)
}

func EvalError(format string, args ...interface{}) *NativeError {
	return newError(EvalErrorKind, format, args...)
}

func URIError(format string, args ...interface{}) *NativeError {
	return newError(URIErrorKind, format, args...)
}

func CommonError(format string, args ...interface{}) *NativeError {
	return newError(CommonErrorKind, format, args...)
}

// At records where in the bytecode stream the error was raised.
func (e *NativeError) At(loc SourceLocation) *NativeError {
	e.Location = loc
	return e
}

// PushFrame appends one call-stack frame.
func (e *NativeError) PushFrame(f StackFrame) *NativeError {
	e.CallStack = append(e.CallStack, f)
	return e
}

// Cause exposes the pkg/errors-wrapped sentinel so callers can attach a
// stack trace with errors.WithStack or inspect it with errors.Cause.
func (e *NativeError) Cause() error {
	return e.cause
}

func (e *NativeError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s", e.Kind, e.Message))
	if e.Location.Unit != "" {
		sb.WriteString(fmt.Sprintf("\n  at %s:%d:%d", e.Location.Unit, e.Location.Line, e.Location.Column))
	}
	for _, f := range e.CallStack {
		if f.Function != "" {
			sb.WriteString(fmt.Sprintf("\n  at %s (%s:%d)", f.Function, f.Location.Unit, f.Location.Line))
		} else {
			sb.WriteString(fmt.Sprintf("\n  at %s:%d", f.Location.Unit, f.Location.Line))
		}
	}
	return sb.String()
}

// WithStack attaches a pkg/errors stack trace captured at the call site.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// Unwrap lets errors.As/errors.Is see through to the pkg/errors sentinel.
func (e *NativeError) Unwrap() error {
	return e.cause
}
