package effect

import "context"

// Effect is a deferred computation that produces a value of type A. Building
// or composing an Effect doesn't execute anything; the producer only runs when
// Run is called, and it runs again on every call.
type Effect[A any] struct {
	run func(context.Context) A
}

// New returns an Effect backed by the given producer.
func New[A any](fn func(context.Context) A) Effect[A] {
	return Effect[A]{run: fn}
}

// Pure returns an Effect that yields a without doing any work.
func Pure[A any](a A) Effect[A] {
	return Effect[A]{run: func(context.Context) A { return a }}
}

// Run executes the underlying producer and returns its result. The zero Effect
// yields the zero value of A.
func (e Effect[A]) Run(ctx context.Context) A {
	if e.run == nil {
		var zero A
		return zero
	}

	return e.run(ctx)
}

// Map returns an Effect that applies f to the result of e once it runs.
func Map[A, B any](e Effect[A], f func(A) B) Effect[B] {
	return Effect[B]{run: func(ctx context.Context) B {
		return f(e.Run(ctx))
	}}
}

// FlatMap returns an Effect that runs e, and then the Effect returned by f.
// Both run on the calling goroutine, in that order.
func FlatMap[A, B any](e Effect[A], f func(A) Effect[B]) Effect[B] {
	return Effect[B]{run: func(ctx context.Context) B {
		return f(e.Run(ctx)).Run(ctx)
	}}
}
