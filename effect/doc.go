// Package effect provides a small deferred-computation type and a two-case
// Outcome used to sequence I/O without running it at construction time.
//
// An Effect is a value: it can be stored, mapped and chained, and nothing
// happens until Run is called with a context. There is no scheduler and no
// goroutine is started; Run executes the whole chain on the caller's
// goroutine.
package effect
