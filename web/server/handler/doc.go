// Package handler builds typed HTTP endpoints out of a Pipeline of reusable
// stages: an authenticator that sets the request session, a serializer,
// request processors, response processors and an error level. Endpoint
// functions receive a decoded request and return a response value, and never
// touch the http.ResponseWriter directly.
package handler
