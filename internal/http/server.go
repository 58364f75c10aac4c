package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Clark-Hu/movies-service/internal/config"
	"github.com/Clark-Hu/movies-service/internal/domain"
)

// MovieGetter is the aggregation the HTTP layer exposes.
type MovieGetter interface {
	GetMovieByID(ctx context.Context, movieID string) (domain.Movie, error)
}

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg     config.Config
	movies  MovieGetter
	logger  *slog.Logger
	router  chi.Router
	httpSrv *http.Server
}

// New constructs the HTTP server with base middleware and routes.
func New(cfg config.Config, movies MovieGetter, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:    cfg,
		movies: movies,
		logger: logger,
		router: r,
	}
	s.registerRoutes()
	return s
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Handle("/metrics", promhttp.Handler())
	s.router.Route("/v1/movies", func(r chi.Router) {
		r.Get("/{id}", s.handleGetMovie)
	})
}

// shutdownTimeout bounds how long in-flight aggregations may drain after the
// serve context ends. It covers one upstream attempt plus a retry delay.
const shutdownTimeout = 5 * time.Second

// Start listens on the configured port and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+s.cfg.Port)
	if err != nil {
		return fmt.Errorf("listen on port %s: %w", s.cfg.Port, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done or serving fails. On
// cancellation in-flight requests are drained for up to shutdownTimeout and
// ctx.Err() is returned.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpSrv = &http.Server{
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeoutSecs) * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("movies api listening", "addr", ln.Addr().String())
		serveErr <- s.httpSrv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("draining in-flight requests", "timeout", shutdownTimeout)
	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpSrv.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("drain http server: %w", err)
	}
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
