package types

import (
	"fmt"
	"net/http"
	"strings"
)

// Error represents an HTTP error with status code and message.
type Error struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
}

// Error returns the error message string.
func (e Error) Error() string {
	return e.Message
}

// NewError creates a new Error with the specified status code and message.
func NewError(statusCode int, message string) *Error {
	return &Error{
		StatusCode: statusCode,
		Message:    message,
	}
}

// ErrorLevel controls how much error detail is exposed to HTTP clients.
type ErrorLevel string

const (
	// ErrorLevelNone replaces every error message with the status text.
	ErrorLevelNone ErrorLevel = "none"
	// ErrorLevelMinimal hides the messages of server errors (5xx).
	ErrorLevelMinimal ErrorLevel = "minimal"
	// ErrorLevelFull exposes all error messages.
	ErrorLevelFull ErrorLevel = "full"
)

// ErrorLevelFromString parses an ErrorLevel. The comparison is
// case-insensitive.
func ErrorLevelFromString(s string) (ErrorLevel, error) {
	switch lvl := ErrorLevel(strings.ToLower(s)); lvl {
	case ErrorLevelNone, ErrorLevelMinimal, ErrorLevelFull:
		return lvl, nil
	default:
		return "", fmt.Errorf("invalid error level '%s'; valid values: none, minimal, full", s)
	}
}

// Sanitize returns a copy of err with its message reduced according to lvl.
func (lvl ErrorLevel) Sanitize(err *Error) *Error {
	if err == nil {
		return nil
	}

	out := *err
	switch lvl {
	case ErrorLevelFull:
	case ErrorLevelMinimal:
		if out.StatusCode >= http.StatusInternalServerError {
			out.Message = http.StatusText(out.StatusCode)
		}
	default:
		out.Message = http.StatusText(out.StatusCode)
	}

	return &out
}
