// Package server provides the HTTP REST API for the advert optimiser.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/advert-optimiser/internal/db"
	"github.com/jonathan/advert-optimiser/internal/interview"
	"github.com/jonathan/advert-optimiser/internal/server/ratelimit"
	"github.com/jonathan/advert-optimiser/internal/session"
)

// AdvertStore persists published adverts. *db.DB implements it.
type AdvertStore interface {
	SaveAdvert(ctx context.Context, input *db.AdvertCreateInput) (*db.Advert, error)
	GetAdvertByID(ctx context.Context, id uuid.UUID) (*db.Advert, error)
	ListAdverts(ctx context.Context, opts db.ListAdvertsOptions) ([]db.Advert, int, error)
	DeleteAdvert(ctx context.Context, id uuid.UUID) (bool, error)
}

// Config holds server configuration
type Config struct {
	Port      int
	Sessions  *session.Manager
	Adverts   AdvertStore         // Optional; publishing and /adverts return 501 without it
	Questions interview.Generator // Optional; /interview/questions returns 501 without it
	RateLimit *ratelimit.Config   // nil uses ratelimit defaults
	ReapEvery time.Duration       // Idle session sweep interval; 0 uses one minute
	MaxUpload int64               // Upload size cap in bytes; 0 uses 10 MB
	Logger    *zap.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	sessions    *session.Manager
	adverts     AdvertStore
	questions   interview.Generator
	rateLimiter *ratelimit.Limiter
	validate    *validator.Validate
	reapEvery   time.Duration
	maxUpload   int64
	logger      *zap.Logger
}

// New creates a new server instance
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		sessions:    cfg.Sessions,
		adverts:     cfg.Adverts,
		questions:   cfg.Questions,
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
		validate:    newValidator(),
		reapEvery:   cfg.ReapEvery,
		maxUpload:   cfg.MaxUpload,
		logger:      logger,
	}
	if s.reapEvery <= 0 {
		s.reapEvery = time.Minute
	}
	if s.maxUpload <= 0 {
		s.maxUpload = 10 << 20
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Optimising every field can take minutes
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the routed handler wrapped in middleware
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Sessions
	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("GET /sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("POST /sessions/{id}/extract", s.handleExtract)
	mux.HandleFunc("POST /sessions/{id}/answer", s.handleAnswer)
	mux.HandleFunc("PUT /sessions/{id}/record", s.handleReplaceRecord)
	mux.HandleFunc("POST /sessions/{id}/optimise", s.handleOptimise)
	mux.HandleFunc("POST /sessions/{id}/optimise/stream", s.handleOptimiseStream)
	mux.HandleFunc("POST /sessions/{id}/suggestions/{field}/apply", s.handleApplySuggestion)
	mux.HandleFunc("DELETE /sessions/{id}/suggestions/{field}", s.handleDiscardSuggestion)
	mux.HandleFunc("GET /sessions/{id}/export", s.handleExport)
	mux.HandleFunc("POST /sessions/{id}/publish", s.handlePublish)

	// Published adverts
	mux.HandleFunc("GET /adverts", s.handleListAdverts)
	mux.HandleFunc("GET /adverts/{id}", s.handleGetAdvert)
	mux.HandleFunc("DELETE /adverts/{id}", s.handleDeleteAdvert)

	mux.HandleFunc("POST /interview/questions", s.handleInterviewQuestions)

	return s.withRateLimit(s.withLogging(s.withCORS(mux)))
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	reapCtx, stopReaper := context.WithCancel(ctx)
	defer stopReaper()
	go s.sessions.RunReaper(reapCtx, s.reapEvery)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.rateLimiter.Stop()
	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects clients that exceed their per-route budget
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientID(r), r.URL.Path, r.Method)
		if info.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
		}
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush keeps SSE streaming working through the recorder
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// withLogging logs each request with a generated request ID
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"sessions":   s.sessions.Len(),
		"publishing": s.adverts != nil,
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("error encoding JSON response", zap.Error(err))
	}
}

// errorResponse writes a plain error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, ErrorBody{Error: message, Code: codeForStatus(status)})
}

// clientID identifies the caller by remote IP
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// rateLimitResponse writes a 429 response
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	if info.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(info.RetryAfter.Seconds())))
	}
	s.logger.Warn("rate limit exceeded",
		zap.String("client", clientID(r)),
		zap.String("path", r.URL.Path),
		zap.Int("limit", info.Limit))

	s.jsonResponse(w, http.StatusTooManyRequests, ErrorBody{
		Error:     "Rate limit exceeded. Please try again later.",
		Code:      "rate_limit_exceeded",
		Retryable: true,
	})
}
