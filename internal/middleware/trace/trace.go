// Package trace opens a trace for every request: it assigns a request id,
// stores it in the context and echoes it back in the X-Request-ID header.
// Completion logging lives in the HTTP access log, not here.
package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// ContextKey type for context keys
type ContextKey string

// RequestIDKey is the context key for the request id.
const RequestIDKey ContextKey = "request_id"

// RequestIDHeader is echoed on every response so clients can report the id.
const RequestIDHeader = "X-Request-ID"

// Middleware assigns request ids and counts traffic.
type Middleware struct {
	extractIP func(*http.Request) string
	suspect   func(*http.Request) bool
	metrics   *Metrics
}

// Metrics tracks request counters.
type Metrics struct {
	TotalRequests      int64
	SuspiciousRequests int64
}

// NewMiddleware creates a trace middleware. suspect may be nil; when set,
// requests it flags are logged and counted but still served.
func NewMiddleware(extractIP func(*http.Request) string, suspect func(*http.Request) bool) *Middleware {
	return &Middleware{
		extractIP: extractIP,
		suspect:   suspect,
		metrics:   &Metrics{},
	}
}

// Middleware returns HTTP middleware that opens the request trace.
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}

		requestID := GenerateRequestID()
		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		r = r.WithContext(ctx)
		w.Header().Set(RequestIDHeader, requestID)

		atomic.AddInt64(&m.metrics.TotalRequests, 1)

		if m.suspect != nil && m.suspect(r) {
			atomic.AddInt64(&m.metrics.SuspiciousRequests, 1)
			slog.WarnContext(ctx, "Suspicious request",
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"client_ip", clientIP,
				"user_agent", r.Header.Get("User-Agent"))
		}

		next.ServeHTTP(w, r)
	})
}

// GenerateRequestID creates a unique request id.
func GenerateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// GetRequestID extracts the request id from context.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// GetMetrics returns current counters.
func (m *Middleware) GetMetrics() Metrics {
	return Metrics{
		TotalRequests:      atomic.LoadInt64(&m.metrics.TotalRequests),
		SuspiciousRequests: atomic.LoadInt64(&m.metrics.SuspiciousRequests),
	}
}
