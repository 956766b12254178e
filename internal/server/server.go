// Package server provides the HTTP REST API for tailoring sessions.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/jonathan/resume-review/internal/ats"
	"github.com/jonathan/resume-review/internal/server/ratelimit"
	"github.com/jonathan/resume-review/internal/session"
)

// DefaultKeepAlive is the interval between SSE keep-alive comments
const DefaultKeepAlive = 15 * time.Second

// sseRetry is the reconnect delay suggested to event stream clients
const sseRetry = 3 * time.Second

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	sessions    *session.Manager
	snapshots   session.SnapshotStore
	tracker     Tracker
	keywords    *ats.Extractor
	rateLimiter *ratelimit.Limiter
	logger      *slog.Logger
	keepAlive   time.Duration
}

// Config holds server configuration
type Config struct {
	Port int
	// RateLimit defaults to the RATE_LIMIT_* environment configuration when nil.
	RateLimit *ratelimit.Config
	Logger    *slog.Logger
	KeepAlive time.Duration
	// Snapshots persists saved sessions. When nil, saves return the snapshot
	// without storing it and GET /snapshots/{id} is not served.
	Snapshots session.SnapshotStore
	// Tracker serves the /applications endpoints when set.
	Tracker Tracker
	// Keywords picks the scoring keywords of new sessions. When nil they are
	// extracted heuristically.
	Keywords *ats.Extractor
}

// New creates a new server instance over a session manager
func New(cfg Config, sessions *session.Manager) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rlConfig := cfg.RateLimit
	if rlConfig == nil {
		var err error
		if rlConfig, err = ratelimit.LoadConfig(); err != nil {
			logger.Warn("ignoring malformed rate limit settings", "error", err)
		}
	}
	keepAlive := cfg.KeepAlive
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAlive
	}

	s := &Server{
		sessions:    sessions,
		snapshots:   cfg.Snapshots,
		tracker:     cfg.Tracker,
		keywords:    cfg.Keywords,
		rateLimiter: ratelimit.NewLimiter(rlConfig),
		logger:      logger,
		keepAlive:   keepAlive,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Session lifecycle
	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("GET /sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("GET /sessions/{id}/events", s.handleSessionEvents)

	// Role and bullet editing
	mux.HandleFunc("POST /sessions/{id}/roles/activate", s.handleActivateRole)
	mux.HandleFunc("GET /sessions/{id}/roles/{role_key}/candidates", s.handleListCandidates)
	mux.HandleFunc("POST /sessions/{id}/roles/{role_key}/bullets/{index}/toggle", s.handleToggleBullet)
	mux.HandleFunc("PUT /sessions/{id}/roles/{role_key}/bullets/{index}/edit", s.handleEditBullet)
	mux.HandleFunc("DELETE /sessions/{id}/roles/{role_key}/bullets/{index}/edit", s.handleClearEdit)
	mux.HandleFunc("POST /sessions/{id}/roles/{role_key}/reorder", s.handleReorder)

	// Output
	mux.HandleFunc("GET /sessions/{id}/materialize", s.handleMaterialize)
	mux.HandleFunc("GET /sessions/{id}/score", s.handleScore)
	mux.HandleFunc("POST /sessions/{id}/feedback", s.handleFeedback)
	mux.HandleFunc("POST /sessions/{id}/save", s.handleSave)

	if s.snapshots != nil {
		mux.HandleFunc("GET /snapshots/{id}", s.handleGetSnapshot)
	}
	if s.tracker != nil {
		mux.HandleFunc("GET /applications", s.handleListApplications)
		mux.HandleFunc("POST /applications", s.handleAddApplication)
		mux.HandleFunc("PATCH /applications/{id}", s.handleUpdateApplication)
	}

	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout: 30 * time.Second,
		// No WriteTimeout: the events stream stays open for the life of a session.
		IdleTimeout: 60 * time.Second,
	}

	return s
}

// Handler returns the server's root handler with all middleware applied
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully and closes
// every live session.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			s.Close()
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Closing sessions first ends open event streams so Shutdown can drain.
	s.sessions.Close()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.rateLimiter.Stop()
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.rateLimiter.Stop()

	s.logger.Info("server stopped")
	return nil
}

// Close releases the server's background resources without serving
func (s *Server) Close() {
	s.sessions.Close()
	s.rateLimiter.Stop()
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)
		allowed, info := s.rateLimiter.Allow(clientID, r.Method, r.URL.Path)

		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, clientID, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for request logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE streaming working through the logging middleware
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"remote", r.RemoteAddr,
			"duration", time.Since(start),
		)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding JSON response", "error", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// errorFrom maps err to a status and writes it. Server-side failures are
// logged and reported without internal detail.
func (s *Server) errorFrom(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
		s.errorResponse(w, status, "internal error")
		return
	}
	s.errorResponse(w, status, err.Error())
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; X-Forwarded-For is not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, clientID string, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := max(int(info.RetryAfter.Seconds()), 1)
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	s.logger.Warn("rate limit exceeded",
		"client", clientID,
		"limit", info.Limit,
		"reset", info.ResetTime.Format(time.RFC3339),
	)

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
