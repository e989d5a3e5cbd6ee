// Package http exposes the ledger engine as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"kakeibo/internal/ledger"
	applog "kakeibo/internal/log"
	"kakeibo/internal/middleware/ratelimit"
	"kakeibo/internal/middleware/security"
	"kakeibo/internal/middleware/trace"
)

type Server struct {
	http.Server

	limiter  *ratelimit.Limiter
	detector *security.Detector

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware around a ledger service.
func NewServer(addr string, svc *ledger.Service) *Server {
	mux := http.NewServeMux()

	detector := security.NewDetector()
	limiter := ratelimit.NewLimiter(ratelimit.DefaultConfig())
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(detector.ExtractClientIP, detector.DetectSuspiciousRequest)

	h := &handlers{ledger: svc}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/transactions", h.listTransactions)
	mux.HandleFunc("POST /api/transactions", h.createTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", h.updateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", h.deleteTransaction)

	mux.HandleFunc("GET /api/categories", h.listCategories)
	mux.HandleFunc("POST /api/categories", h.createCategory)
	mux.HandleFunc("PUT /api/categories/{id}", h.updateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", h.deleteCategory)

	mux.HandleFunc("GET /api/budgets", h.listBudgets)
	mux.HandleFunc("PUT /api/budgets/{category}", h.setBudget)

	mux.HandleFunc("GET /api/notebooks", h.listNotebooks)
	mux.HandleFunc("POST /api/notebooks", h.createNotebook)
	mux.HandleFunc("POST /api/notebooks/{id}/select", h.selectNotebook)

	mux.HandleFunc("GET /api/dashboard", h.dashboard)

	rateLimited := limiter.Middleware(detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
	})

	logged := accessLog(applog.New(applog.Config{Component: applog.ComponentHTTP}), detector.ExtractClientIP)

	handler := tracer.Middleware(headers.Middleware(logged(rateLimited(mux))))

	return &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		limiter:  limiter,
		detector: detector,
	}
}

// Shutdown stops background middleware goroutines and drains the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
