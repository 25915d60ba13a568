package errors

import (
	"errors"
	"maps"
	"slices"
)

// StructuredError is an error with key/value metadata and an optional cause.
// The metadata is rendered as separate fields when the error is logged.
type StructuredError struct {
	err      error
	metadata map[string]any
	cause    error
}

// Error implements the error interface. The cause isn't part of the message.
func (e StructuredError) Error() string {
	return e.err.Error()
}

// Unwrap allows errors.Is and errors.As to match both the error and its cause.
func (e StructuredError) Unwrap() []error {
	errs := make([]error, 0, 2)
	for _, err := range []error{e.err, e.cause} {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Cause returns the cause error, if any.
func (e StructuredError) Cause() error {
	return e.cause
}

// Metadata returns a copy of the metadata map.
func (e StructuredError) Metadata() map[string]any {
	if e.metadata == nil {
		return nil
	}
	return maps.Clone(e.metadata)
}

// attrs returns the metadata as slog key/value pairs sorted by key, preceded
// by the cause if there is one.
func (e StructuredError) attrs() []any {
	if e.cause == nil {
		return e.fields()
	}
	return append([]any{"cause", e.cause}, e.fields()...)
}

func (e StructuredError) fields() []any {
	args := make([]any, 0, len(e.metadata)*2)
	for _, k := range slices.Sorted(maps.Keys(e.metadata)) {
		args = append(args, k, e.metadata[k])
	}
	return args
}

// NewWith creates a StructuredError from a message with optional metadata.
func NewWith(msg string, fields ...any) *StructuredError {
	return With(errors.New(msg), fields...)
}

// NewWithCause creates a StructuredError from a message with a cause and
// optional metadata.
func NewWithCause(msg string, cause error, fields ...any) *StructuredError {
	return WithCause(errors.New(msg), cause, fields...)
}

// With adds metadata to err. The metadata of a StructuredError is merged, with
// fields taking precedence, and its cause is kept.
func With(err error, fields ...any) *StructuredError {
	serr := extend(err, fields)
	if me, ok := err.(*StructuredError); ok {
		serr.cause = me.cause
	}
	return serr
}

// WithCause is like With, but also sets the cause, replacing any existing one.
func WithCause(err, cause error, fields ...any) *StructuredError {
	serr := extend(err, fields)
	serr.cause = cause
	return serr
}

// extend returns a StructuredError without a cause, wrapping err and carrying
// fields. It panics if fields aren't key/value pairs with string keys.
func extend(err error, fields []any) *StructuredError {
	if len(fields)%2 != 0 {
		panic("an even number of fields is required")
	}

	serr := &StructuredError{err: err}
	var base map[string]any
	if me, ok := err.(*StructuredError); ok {
		serr.err = me.err
		base = me.metadata
	}

	serr.metadata = make(map[string]any, len(base)+len(fields)/2)
	maps.Copy(serr.metadata, base)
	for i := 0; i < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			panic("keys must be strings")
		}
		serr.metadata[key] = fields[i+1]
	}

	return serr
}
