package http

import (
	"net/http"
	"time"

	applog "kakeibo/internal/log"
	"kakeibo/internal/middleware/trace"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// accessLog emits the single completion line for each request and stashes a
// request-scoped logger in the context so handlers can enrich it. The trace
// middleware only opens the trace; logging happens here.
func accessLog(logger *applog.Logger, extractIP func(*http.Request) string) func(http.Handler) http.Handler {
	structured := applog.NewStructuredLogger(logger)
	inject := applog.Middleware(logger)
	withRequestID := applog.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	})

	return func(next http.Handler) http.Handler {
		wrapped := inject(withRequestID(next))
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			wrapped.ServeHTTP(rec, r)
			structured.LogHTTPEnd(r.Context(), r, rec.status, time.Since(start).Milliseconds(), extractIP(r))
		})
	}
}
