package conn

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"go.hackfix.me/vestibule/effect"
)

// State is the phantom marker of a connection's response-header state. It is
// sealed: HeadersOpen and HeadersSent are the only implementations.
type State interface {
	stateName() string
}

// HeadersOpen marks a connection whose status line and headers haven't been
// written yet. Only open connections can be decorated.
type HeadersOpen struct{}

func (HeadersOpen) stateName() string { return "headers_open" }

// HeadersSent marks a connection whose status line and headers were written.
// Only the body can be written from here on.
type HeadersSent struct{}

func (HeadersSent) stateName() string { return "headers_sent" }

// Conn is an HTTP request/response exchange carrying a payload of type A. S
// tracks statically whether the response headers were already sent.
type Conn[S State, A any] struct {
	w    http.ResponseWriter
	r    *http.Request
	data A
}

// Open wraps an incoming exchange into a connection with open headers.
func Open[A any](w http.ResponseWriter, r *http.Request, data A) Conn[HeadersOpen, A] {
	return Conn[HeadersOpen, A]{w: w, r: r, data: data}
}

// Request returns the original HTTP request.
func (c Conn[S, A]) Request() *http.Request {
	return c.r
}

// Data returns the connection payload.
func (c Conn[S, A]) Data() A {
	return c.data
}

// State returns the name of the header state, for logging and inspection.
func (c Conn[S, A]) State() string {
	var s S
	return s.stateName()
}

// Map replaces the payload of an open connection with the result of f. The
// request, response writer and header state are kept.
func Map[A, B any](c Conn[HeadersOpen, A], f func(A) B) Conn[HeadersOpen, B] {
	return Conn[HeadersOpen, B]{w: c.w, r: c.r, data: f(c.data)}
}

// SetHeader sets a response header on an open connection.
func SetHeader[A any](c Conn[HeadersOpen, A], key, value string) Conn[HeadersOpen, A] {
	c.w.Header().Set(key, value)
	return c
}

// AddHeaders adds every value in h to the response headers of an open
// connection.
func AddHeaders[A any](c Conn[HeadersOpen, A], h http.Header) Conn[HeadersOpen, A] {
	dst := c.w.Header()
	for k, vs := range h {
		dst[k] = append(dst[k], vs...)
	}
	return c
}

// WriteStatus writes the status line and headers, which closes the connection
// for further header changes.
func WriteStatus[A any](c Conn[HeadersOpen, A], code int) Conn[HeadersSent, A] {
	c.w.WriteHeader(code)
	return Conn[HeadersSent, A]{w: c.w, r: c.r, data: c.data}
}

// Write writes body data to a connection whose headers were sent.
func Write[A any](c Conn[HeadersSent, A], body []byte) (Conn[HeadersSent, A], error) {
	if _, err := c.w.Write(body); err != nil {
		return c, fmt.Errorf("failed writing response body: %w", err)
	}
	return c, nil
}

// WriteJSON sends v as a JSON response with the given status code.
func WriteJSON[A any](c Conn[HeadersOpen, A], code int, v any) (Conn[HeadersSent, A], error) {
	body, err := json.Marshal(v)
	if err != nil {
		return WriteStatus(c, http.StatusInternalServerError),
			fmt.Errorf("failed marshalling response into JSON: %w", err)
	}

	c = SetHeader(c, "Content-Type", "application/json")
	return Write(WriteStatus(c, code), append(body, '\n'))
}

// Decoration turns an open connection with payload A into a deferred open
// connection with payload B.
type Decoration[A, B any] func(Conn[HeadersOpen, A]) effect.Effect[Conn[HeadersOpen, B]]

// Identity returns a Decoration that leaves the connection untouched.
func Identity[A any]() Decoration[A, A] {
	return func(c Conn[HeadersOpen, A]) effect.Effect[Conn[HeadersOpen, A]] {
		return effect.Pure(c)
	}
}

// Handler responds to an open connection. The returned connection proves that
// the headers were sent.
type Handler[A any] func(Conn[HeadersOpen, A]) (Conn[HeadersSent, A], error)

// Handle adapts a decoration and a handler into an http.Handler. The
// decoration effect is run exactly once per request, to completion, before the
// handler is called.
func Handle[A any](decorate Decoration[struct{}, A], h Handler[A], logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := decorate(Open(w, r, struct{}{})).Run(r.Context())
		if _, err := h(c); err != nil {
			logger.Error("failed handling request",
				"method", r.Method, "path", r.URL.Path, "error", err.Error())
		}
	})
}
