package effect_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.hackfix.me/vestibule/effect"
)

func TestEffectDeferred(t *testing.T) {
	t.Parallel()

	calls := 0
	e := effect.New(func(context.Context) int {
		calls++
		return 21
	})

	doubled := effect.Map(e, func(n int) int { return n * 2 })
	text := effect.FlatMap(doubled, func(n int) effect.Effect[string] {
		return effect.Pure(strconv.Itoa(n))
	})
	assert.Equal(t, 0, calls)

	assert.Equal(t, "42", text.Run(t.Context()))
	assert.Equal(t, 1, calls)

	// Every Run executes the producer again.
	assert.Equal(t, 42, doubled.Run(t.Context()))
	assert.Equal(t, 2, calls)
}

func TestEffectContext(t *testing.T) {
	t.Parallel()

	type ctxKey struct{}
	ctx := context.WithValue(t.Context(), ctxKey{}, "value")

	e := effect.FlatMap(effect.Pure(1), func(int) effect.Effect[string] {
		return effect.New(func(ctx context.Context) string {
			v, _ := ctx.Value(ctxKey{}).(string)
			return v
		})
	})

	assert.Equal(t, "value", e.Run(ctx))
}

func TestEffectZero(t *testing.T) {
	t.Parallel()

	var e effect.Effect[*int]
	assert.Nil(t, e.Run(t.Context()))
	assert.Equal(t, 0, effect.Map(effect.Effect[int]{}, func(n int) int { return n }).Run(t.Context()))
}

func TestAttempt(t *testing.T) {
	t.Parallel()

	errLookup := errors.New("lookup failed")

	tests := []struct {
		name    string
		value   string
		err     error
		expLeft bool
		expVal  string
	}{
		{name: "ok/value", value: "found", expVal: "found"},
		{name: "ok/zero_value", value: "", expVal: ""},
		{name: "err/failure", err: errLookup, expLeft: true, expVal: "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			calls := 0
			e := effect.Attempt(func(context.Context) (string, error) {
				calls++
				return tt.value, tt.err
			})
			require.Equal(t, 0, calls)

			out := e.Run(t.Context())
			assert.Equal(t, 1, calls)
			assert.Equal(t, tt.expLeft, out.IsLeft())
			if tt.expLeft {
				lerr, ok := out.GetLeft()
				require.True(t, ok)
				assert.ErrorIs(t, lerr, errLookup)
				assert.Equal(t, tt.expVal, effect.RightOr(out, "fallback"))
				return
			}
			assert.Equal(t, tt.expVal, effect.RightOr(out, "fallback"))
		})
	}
}

func TestRightOrNested(t *testing.T) {
	t.Parallel()

	name := "alice"
	tests := []struct {
		name string
		out  effect.Outcome[error, *string]
		exp  *string
	}{
		{name: "ok/right_some", out: effect.Success[error](&name), exp: &name},
		{name: "ok/right_none", out: effect.Success[error, *string](nil), exp: nil},
		{name: "ok/left", out: effect.Failure[error, *string](errors.New("boom")), exp: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.exp, effect.RightOr(tt.out, nil))
		})
	}
}
