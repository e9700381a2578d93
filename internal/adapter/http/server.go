// Package http exposes the comment board and coat advice API, plus health,
// readiness, and metrics endpoints.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/coatcheck/coatcheck-service/internal/comments"
	"github.com/coatcheck/coatcheck-service/internal/domain"
	"github.com/coatcheck/coatcheck-service/internal/observability"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the application API over HTTP.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// Options bundles the collaborators and settings for NewServer.
type Options struct {
	Addr     string
	Comments *comments.Service
	Weather  domain.WeatherProvider // nil disables the coat advice endpoint
	Ready    ReadinessChecker
	Metrics  *observability.Metrics
	Logger   *slog.Logger

	// Per-IP rate limiting for the application routes. Health, readiness,
	// and metrics are never limited.
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewServer creates an HTTP server with the comment board, coat advice,
// health, readiness, and metrics routes.
func NewServer(opts Options) *Server {
	h := &handlers{
		comments: opts.Comments,
		weather:  opts.Weather,
		logger:   opts.Logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /comment/save", h.handleSaveComment)
	mux.HandleFunc("GET /comment/get/nearby", h.handleNearbyComments)
	mux.HandleFunc("POST /comment/rate", h.handleRateComment)
	mux.HandleFunc("GET /check-coat", h.handleCheckCoat)
	mux.HandleFunc("POST /send-feedback", h.handleSendFeedback)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(opts.Ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	var handler http.Handler = mux
	handler = requestLogging(handler, opts.Metrics, opts.Logger)
	handler = rateLimit(handler, opts.RateLimitRPS, opts.RateLimitBurst, opts.Metrics)
	handler = cors.AllowAll().Handler(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:         opts.Addr,
			Handler:      handler,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: opts.Logger,
	}
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
