// Package server serves the practice API: problem generation and grading
// backed by the LLM tutor.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/chemthink/chemthink/internal/grading"
	"github.com/chemthink/chemthink/internal/practiceapi"
	"github.com/chemthink/chemthink/internal/problem"
)

// ProblemGenerator produces problems. tutor.Generator implements it.
type ProblemGenerator interface {
	Problem(ctx context.Context, req problem.Request) (*problem.Problem, error)

	// Similar never fails; it falls back to a fixed problem.
	Similar(ctx context.Context, sub grading.Submission) problem.Problem
}

// Options configures a Server.
type Options struct {
	// RateLimit is requests per second per client IP on the LLM endpoints;
	// zero disables limiting.
	RateLimit float64
	RateBurst int

	// SimilarOnMiss attaches a similar problem to incorrect grades.
	SimilarOnMiss bool

	// Model is reported by /health.
	Model string
}

// Deps are the collaborators a Server needs.
type Deps struct {
	Generator ProblemGenerator
	Grader    grading.Strategy

	// Ping reports LLM reachability for /health. Nil means always reachable.
	Ping func(ctx context.Context) error

	Logger *zap.Logger

	// Registry receives the metrics; nil creates a private registry.
	Registry *prometheus.Registry
}

// Server is the practice API HTTP server.
type Server struct {
	deps    Deps
	opts    Options
	log     *zap.Logger
	metrics *Metrics
	router  chi.Router
}

// New builds a Server and its routes.
func New(deps Deps, opts Options) (*Server, error) {
	if deps.Generator == nil {
		return nil, errors.New("server: generator is required")
	}
	if deps.Grader == nil {
		return nil, errors.New("server: grader is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}

	s := &Server{
		deps:    deps,
		opts:    opts,
		log:     deps.Logger,
		metrics: NewMetrics(deps.Registry),
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log, s.metrics))
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get(practiceapi.PathHealth, s.handleHealth)
	r.Get(practiceapi.PathPrimitives, s.handlePrimitives)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.deps.Registry, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		if s.opts.RateLimit > 0 {
			r.Use(newClientLimiter(s.opts.RateLimit, s.opts.RateBurst).middleware(s.metrics))
		}
		r.Post(practiceapi.PathGenerateProblem, s.handleGenerateProblem)
		r.Post(practiceapi.PathGrade, s.handleGrade)
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln, shutdownTimeout)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// LLM calls can take a while; keep the write deadline generous.
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("practice API listening", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down practice API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("practice API stopped")
	return nil
}
