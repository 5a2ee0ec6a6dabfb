package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/tomek7667/nasdash/internal/metrics"
)

const (
	routeTimeout    = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

type Server struct {
	port int
	log  zerolog.Logger
	r    *chi.Mux
}

func New(port int, log zerolog.Logger, m *metrics.Metrics) *Server {
	s := &Server{
		r:    chi.NewRouter(),
		port: port,
		log:  log,
	}
	s.r.Use(middleware.RequestID)
	s.r.Use(middleware.RealIP)
	s.r.Use(newRequestLogger(log, "/ui/state", "/metrics"))
	s.r.Use(middleware.Recoverer)
	if m != nil {
		s.r.Method(http.MethodGet, "/metrics", m.Handler())
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.r
}

// Serve listens until ctx is cancelled and then drains in-flight requests.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", srv.Addr).Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info().Msg("server stopped")
	return nil
}
