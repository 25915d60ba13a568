package errors

import (
	"errors"
	"log/slog"
)

// Log logs err with the default logger. The metadata of a StructuredError is
// rendered as separate fields.
func Log(err error) {
	LogTo(slog.Default(), err)
}

// LogTo is like Log, but uses logger.
func LogTo(logger *slog.Logger, err error) {
	var serr *StructuredError
	if !errors.As(err, &serr) {
		logger.Error(err.Error())
		return
	}

	logger.Error(serr.Error(), serr.attrs()...)
}
