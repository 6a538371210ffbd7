// Package server exposes the evaluator over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/unrolled/secure"

	"github.com/njchilds90/gocalc/internal/config"
	"github.com/njchilds90/gocalc/internal/evaluator"
	"github.com/njchilds90/gocalc/internal/metrics"
)

const maxBodyBytes = 64 << 10

// errOverloaded is returned while every evaluation slot is taken.
var errOverloaded = errors.New("too many evaluations in progress, retry later")

// Server is the HTTP front end. Each evaluation request gets its own
// runner, so requests never contend for a shared worker. The inflight
// semaphore bounds how many evaluations run at once, including those
// whose clients have already disconnected.
type Server struct {
	cfg      config.Config
	eval     *evaluator.Evaluator
	metrics  *metrics.Metrics
	log      zerolog.Logger
	limiter  *rateLimiter
	inflight chan struct{}
	now      func() time.Time
	server   *http.Server
}

// New creates a server. m may be nil, in which case /metrics is not
// mounted.
func New(cfg config.Config, eval *evaluator.Evaluator, m *metrics.Metrics, log zerolog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		eval:     eval,
		metrics:  m,
		log:      log.With().Str("component", "server").Logger(),
		inflight: make(chan struct{}, max(cfg.MaxInFlight, 1)),
		now:      time.Now,
	}
	if cfg.RateLimit > 0 {
		s.limiter = newRateLimiter(cfg.RateLimit, cfg.RateBurst, s.log)
	}
	s.server = &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.Handler(),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}
	return s
}

// Handler builds the router with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}
	r.Use(secure.New(secure.Options{
		ContentTypeNosniff: true,
		FrameDeny:          true,
		BrowserXssFilter:   true,
	}).Handler)
	if len(s.cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Origin", "Content-Type"},
			ExposedHeaders: []string{"Content-Disposition"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", s.healthHandler)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/operations", s.operationsHandler)
		r.Group(func(r chi.Router) {
			if s.limiter != nil {
				r.Use(s.limiter.Handler)
			}
			r.Post("/evaluate", s.evaluateHandler)
			r.Post("/render", s.renderHandler)
			r.Post("/report", s.reportHandler)
		})
	})
	return r
}

// Listen starts serving in the background. Serve errors other than a
// normal shutdown arrive on the returned channel.
func (s *Server) Listen() chan error {
	errChan := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.server.Addr).Msg("starting HTTP server")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	return errChan
}

// GracefulShutdown waits up to the configured timeout for in-flight
// requests to finish.
func (s *Server) GracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return nil
}

// Close forcefully shuts down the server.
func (s *Server) Close() error {
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}
