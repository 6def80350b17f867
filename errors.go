// Package statecore ties a MessageQueue and a StateTransitionTable together
// into one runnable instance, and defines the structured error type the
// rest of this repository wraps its sentinel errors in.
package statecore

import (
	"errors"
	"fmt"

	"github.com/nlowry/go-statecore/mqueue"
	"github.com/nlowry/go-statecore/stt"
)

var (
	errTableExhausted      = stt.ErrTableExhausted
	errDuplicateTransition = stt.ErrDuplicateTransition
	errInvalidState        = stt.ErrInvalidState
	errQueueOverrun        = mqueue.ErrQueueOverrun
	errPayloadTooLarge     = mqueue.ErrPayloadTooLarge
	errNoPendingRecord     = mqueue.ErrNoPendingRecord
)

// Code categorizes an Error for programmatic handling, independent of the
// human-readable Msg.
type Code string

const (
	CodeTableExhausted      Code = "table exhausted"
	CodeDuplicateTransition Code = "duplicate transition"
	CodeQueueOverrun        Code = "queue overrun"
	CodePayloadTooLarge     Code = "payload too large"
	CodeNoPendingRecord     Code = "no pending record"
	CodeInvalidState        Code = "invalid builder phase"
	CodeInvalidConfig       Code = "invalid config"
	CodeUnresolved          Code = "transition not found"
)

// Error is a structured error carrying the failing operation, a category,
// and the underlying cause.
type Error struct {
	Op    string
	Code  Code
	Msg   string
	Inner error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Op != "" {
		return fmt.Sprintf("statecore: %s: %s", e.Op, msg)
	}
	return fmt.Sprintf("statecore: %s", msg)
}

// Unwrap supports errors.Is/errors.As against the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Inner
}

// Is lets errors.Is(err, &Error{Code: X}) match any Error of that Code,
// regardless of Op or Msg.
func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == te.Code
}

// Wrap categorizes inner (typically a mqueue or stt sentinel error) into a
// structured Error tagged with op, preserving it as the wrapped cause.
func Wrap(op string, inner error) *Error {
	if inner == nil {
		return nil
	}
	if se, ok := inner.(*Error); ok {
		return &Error{Op: op, Code: se.Code, Msg: se.Msg, Inner: se.Inner}
	}
	return &Error{Op: op, Code: codeFor(inner), Msg: inner.Error(), Inner: inner}
}

func codeFor(err error) Code {
	switch {
	case errors.Is(err, errTableExhausted):
		return CodeTableExhausted
	case errors.Is(err, errDuplicateTransition):
		return CodeDuplicateTransition
	case errors.Is(err, errQueueOverrun):
		return CodeQueueOverrun
	case errors.Is(err, errPayloadTooLarge):
		return CodePayloadTooLarge
	case errors.Is(err, errNoPendingRecord):
		return CodeNoPendingRecord
	case errors.Is(err, errInvalidState):
		return CodeInvalidState
	default:
		return CodeUnresolved
	}
}

// IsCode reports whether err is (or wraps) a statecore Error of the given
// Code.
func IsCode(err error, code Code) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}
