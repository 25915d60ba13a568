package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"
)

// RequestIDHeader is the header carrying the request ID.
const RequestIDHeader = "X-Request-ID"

// Logger logs request details and response metrics. Every request gets an ID,
// which is taken from the X-Request-ID request header if present, and echoed
// in the response.
func Logger(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(RequestIDHeader)
			if _, err := uuid.Parse(reqID); err != nil {
				reqID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, reqID)

			m := httpsnoop.CaptureMetrics(next, w, r)
			logger.Info(
				fmt.Sprintf("%s %s", r.Method, r.URL),
				"request_id", reqID,
				"response_code", m.Code,
				"duration", m.Duration,
				"bytes_sent", m.Written,
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}
