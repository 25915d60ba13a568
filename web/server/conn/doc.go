// Package conn provides a typed HTTP connection that tracks at compile time
// whether the response headers were written.
//
// A Conn[HeadersOpen, A] can have its payload replaced with Map, get headers
// set, and be transitioned with WriteStatus into a Conn[HeadersSent, A]. Since
// Go doesn't allow constraining methods on a type parameter, every operation
// that requires open headers is a package function whose parameter is a
// Conn[HeadersOpen, A]. Passing a Conn[HeadersSent, A] is a compile error.
package conn
