// Package api is the HTTP front of rolo-store: contact CRUD, the append-only
// activity log, health and metrics.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/marcus/rolo/internal/storedb"
)

// Server is the HTTP API server for rolo-store.
type Server struct {
	config      Config
	http        *http.Server
	store       *storedb.DB
	metrics     *Metrics
	rateLimiter *RateLimiter
	addr        string
	cancel      context.CancelFunc
}

// NewServer creates a new Server with the given config and store.
func NewServer(cfg Config, store *storedb.DB) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.MaxActivityPage <= 0 {
		cfg.MaxActivityPage = 1000
	}

	s := &Server{
		config:      cfg,
		store:       store,
		metrics:     NewMetrics(),
		rateLimiter: NewRateLimiter(),
	}

	s.http = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Start begins listening for HTTP requests (non-blocking).
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.addr = ln.Addr().String()

	go func() {
		if err := s.http.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("http server", "err", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.rateLimiter.Run(ctx, 5*time.Minute)

	return nil
}

// Addr returns the address the server is listening on, once started.
func (s *Server) Addr() string {
	return s.addr
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	return s.http.Shutdown(ctx)
}

// routes builds the HTTP handler with all routes and middleware.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health & metrics
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /metricz", s.handleMetrics)
	mux.Handle("GET /metrics", s.metrics.Handler())

	// Contacts
	mux.HandleFunc("GET /contacts", s.handleListContacts)
	mux.HandleFunc("POST /contacts", s.handleCreateContact)
	mux.HandleFunc("GET /contacts/{id}", s.handleGetContact)
	mux.HandleFunc("PUT /contacts/{id}", s.handleUpdateContact)
	mux.HandleFunc("PATCH /contacts/{id}", s.handlePatchContact)
	mux.HandleFunc("DELETE /contacts/{id}", s.handleDeleteContact)

	// Activity log
	mux.HandleFunc("GET /activityLogs", s.handleListActivity)
	mux.HandleFunc("POST /activityLogs", s.handleAppendActivity)

	return chain(mux,
		recoveryMiddleware,
		requestIDMiddleware,
		loggerMiddleware,
		metricsMiddleware(s.metrics),
		loggingMiddleware,
		corsMiddleware(s.config.CORSAllowedOrigins),
		maxBytesMiddleware(1<<20),
		writeRateLimitMiddleware(s.rateLimiter, s.config.RateLimitWrite),
	)
}

// handleHealth returns a health check response, pinging the store DB.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error", "detail": "db unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleMetrics returns a snapshot of server metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}
