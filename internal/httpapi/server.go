// Package httpapi exposes the valuation pipeline, the history, report
// rendering and address search over HTTP with a uniform JSON envelope.
package httpapi

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/immowert/internal/geocode"
	"github.com/Veraticus/immowert/internal/history"
	"github.com/Veraticus/immowert/internal/report"
	"github.com/Veraticus/immowert/internal/valuation"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 1 << 20

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 10 * time.Second

// Geocoder searches addresses.
type Geocoder interface {
	Search(ctx context.Context, query string) ([]geocode.Candidate, error)
}

// Server wires HTTP routes to the application services.
type Server struct {
	service  *valuation.Service
	history  *history.Store
	geocoder Geocoder
	renderer report.Renderer
	logger   *slog.Logger
	tls      *tls.Config
	now      func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithHistory enables the history and report routes.
func WithHistory(store *history.Store) Option {
	return func(s *Server) {
		s.history = store
	}
}

// WithGeocoder enables the address search route.
func WithGeocoder(g Geocoder) Option {
	return func(s *Server) {
		s.geocoder = g
	}
}

// WithRenderer replaces the report renderer.
func WithRenderer(r report.Renderer) Option {
	return func(s *Server) {
		s.renderer = r
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithClock sets the time source for report dates.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// WithTLS serves HTTPS with cert.
func WithTLS(cert tls.Certificate) Option {
	return func(s *Server) {
		s.tls = &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
	}
}

// New creates a Server.
func New(service *valuation.Service, opts ...Option) (*Server, error) {
	s := &Server{
		service: service,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.renderer == nil {
		r, err := report.NewMarkdownRenderer()
		if err != nil {
			return nil, err
		}
		s.renderer = r
	}
	return s, nil
}

// Handler returns the routed handler with CORS and request logging applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/boris", s.handleLandValue)
	mux.HandleFunc("POST /api/valuation", s.handleValuation)
	mux.HandleFunc("OPTIONS /api/boris", preflight("POST, OPTIONS"))
	mux.HandleFunc("OPTIONS /api/valuation", preflight("POST, OPTIONS"))

	if s.history != nil {
		mux.HandleFunc("GET /api/history", s.handleListHistory)
		mux.HandleFunc("DELETE /api/history", s.handleClearHistory)
		mux.HandleFunc("GET /api/history/{id}", s.handleGetHistory)
		mux.HandleFunc("DELETE /api/history/{id}", s.handleDeleteHistory)
		mux.HandleFunc("GET /api/history/{id}/report", s.handleReport)
	}
	if s.geocoder != nil {
		mux.HandleFunc("GET /api/geocode", s.handleGeocode)
	}
	mux.HandleFunc("OPTIONS /api/", preflight("GET, POST, DELETE, OPTIONS"))

	return s.logRequests(cors(mux))
}

// Serve handles connections on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      3 * time.Minute,
		IdleTimeout:       time.Minute,
	}

	scheme := "http"
	if s.tls != nil {
		ln = tls.NewListener(ln, s.tls)
		scheme = "https"
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String(), "scheme", scheme)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		s.logger.Info("HTTP server stopped")
		return nil
	})

	return g.Wait()
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		next.ServeHTTP(w, r)
	})
}

func preflight(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.WriteHeader(http.StatusOK)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
