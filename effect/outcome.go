package effect

import (
	"context"

	"code.hybscloud.com/kont"
)

// Outcome is the result of a fallible lookup: Left holds the failure, and Right
// the value.
type Outcome[E, A any] = kont.Either[E, A]

// Success returns an Outcome holding the value a.
func Success[E, A any](a A) Outcome[E, A] {
	return kont.Right[E, A](a)
}

// Failure returns an Outcome holding the failure e.
func Failure[E, A any](e E) Outcome[E, A] {
	return kont.Left[E, A](e)
}

// RightOr extracts the success value of o, or returns fallback if o is a
// failure.
func RightOr[E, A any](o Outcome[E, A], fallback A) A {
	if v, ok := o.GetRight(); ok {
		return v
	}
	return fallback
}

// Attempt converts a Go function with an error return into a deferred Effect
// producing an Outcome. fn is only called when the Effect runs.
func Attempt[A any](fn func(context.Context) (A, error)) Effect[Outcome[error, A]] {
	return New(func(ctx context.Context) Outcome[error, A] {
		v, err := fn(ctx)
		if err != nil {
			return Failure[error, A](err)
		}
		return Success[error](v)
	})
}
