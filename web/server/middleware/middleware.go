package middleware

import (
	"fmt"
	"net/http"
)

// Middleware is a function that wraps an http.Handler to provide additional
// functionality such as logging or identification. It takes a handler and
// returns a new handler.
type Middleware func(http.Handler) http.Handler

// Chain chains middlewares and handlers in the exact order specified. Each
// item wraps the next one, so execution flows from left to right. Items must
// be either a Middleware or an http.Handler. A handler ends the chain: items
// after it are never reached.
func Chain(items ...any) http.Handler {
	var middlewares []Middleware

	for _, item := range items {
		switch v := item.(type) {
		case Middleware:
			middlewares = append(middlewares, v)
		case http.Handler:
			middlewares = append(middlewares, func(http.Handler) http.Handler { return v })
		default:
			panic(fmt.Sprintf("Chain accepts only Middleware or http.Handler, got %T", item))
		}
	}

	var result http.Handler = http.NotFoundHandler()

	// Apply middlewares from right to left to get left-to-right execution.
	for i := len(middlewares) - 1; i >= 0; i-- {
		result = middlewares[i](result)
	}

	return result
}
