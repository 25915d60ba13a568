package errors

import (
	"errors"
	"fmt"
	"log/slog"
)

// RuntimeError is an error raised while running a command. It optionally
// carries the underlying cause and a hint for the user about how to fix it.
type RuntimeError struct {
	msg   string
	cause error
	hint  string
}

// NewRuntimeError returns a new RuntimeError. cause and hint are optional.
func NewRuntimeError(msg string, cause error, hint string) *RuntimeError {
	return &RuntimeError{msg: msg, cause: cause, hint: hint}
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return fmt.Sprintf("%s: %s", e.msg, e.cause)
}

// Unwrap returns the cause.
func (e *RuntimeError) Unwrap() error {
	return e.cause
}

// Hint returns the suggestion for the user, if any.
func (e *RuntimeError) Hint() string {
	return e.hint
}

// Errorf logs err with the default logger. RuntimeError causes and hints, and
// StructuredError metadata, are rendered as separate fields.
func Errorf(err error) {
	var rerr *RuntimeError
	if !errors.As(err, &rerr) {
		Log(err)
		return
	}

	var args []any
	if rerr.cause != nil {
		args = append(args, "cause", rerr.cause)
		var serr *StructuredError
		if errors.As(rerr.cause, &serr) {
			args = append(args, serr.fields()...)
		}
	}
	if rerr.hint != "" {
		args = append(args, "hint", rerr.hint)
	}

	slog.Error(rerr.msg, args...)
}
