package errors

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuntimeError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     *RuntimeError
		expMsg  string
		expHint string
		expIs   error
	}{
		{
			name:   "ok/no_cause",
			err:    NewRuntimeError("user 'alice' doesn't exist", nil, ""),
			expMsg: "user 'alice' doesn't exist",
		},
		{
			name:    "ok/cause_and_hint",
			err:     NewRuntimeError("failed opening database", fs.ErrNotExist, "run 'vestibule init' first"),
			expMsg:  "failed opening database: file does not exist",
			expHint: "run 'vestibule init' first",
			expIs:   fs.ErrNotExist,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.EqualError(t, tt.err, tt.expMsg)
			assert.Equal(t, tt.expHint, tt.err.Hint())
			if tt.expIs != nil {
				assert.ErrorIs(t, tt.err, tt.expIs)
			}
		})
	}
}

func TestStructuredError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := With(NewWithCause("failed fetching user", cause, "status", 500), "path", "/whoami")

	assert.EqualError(t, err, "failed fetching user")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, map[string]any{"status": 500, "path": "/whoami"}, err.Metadata())
	assert.Equal(t, cause, err.Cause())
	assert.Panics(t, func() { _ = NewWith("odd", "key") })
}

//nolint:paralleltest // Replaces the default logger.
func TestErrorf(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	Errorf(NewRuntimeError("failed fetching user",
		NewWithCause("request failed", errors.New("timeout"), "status", 502), "check the address"))
	out := buf.String()
	assert.Contains(t, out, `msg="failed fetching user"`)
	assert.Contains(t, out, `cause="request failed"`)
	assert.Contains(t, out, "status=502")
	assert.Contains(t, out, `hint="check the address"`)

	buf.Reset()
	Errorf(NewWith("bad input", "field", "name"))
	assert.Contains(t, buf.String(), `msg="bad input" field=name`)
}

func TestLogTo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		expOut string
	}{
		{
			name:   "ok/plain",
			err:    errors.New("boom"),
			expOut: "level=ERROR msg=boom\n",
		},
		{
			name:   "ok/sorted_fields",
			err:    NewWithCause("lookup failed", errors.New("timeout"), "b", 2, "a", 1),
			expOut: "level=ERROR msg=\"lookup failed\" cause=timeout a=1 b=2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}))
			LogTo(logger, tt.err)
			assert.Equal(t, tt.expOut, buf.String())
		})
	}
}
