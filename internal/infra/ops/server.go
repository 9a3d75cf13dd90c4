package ops

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"cadi-backend/internal/infra/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Pinger is anything readiness depends on (database pool, redis).
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server exposes liveness, readiness and Prometheus metrics on a separate port.
type Server struct {
	deps map[string]Pinger
	log  *zerolog.Logger
	srv  *http.Server
}

func NewServer(deps map[string]Pinger, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "ops").Logger()
	return &Server{deps: deps, log: &l}
}

func (s *Server) Routes() http.Handler {
	metrics.MustRegister()

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", s.ready)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(s.deps))
	for n := range s.deps {
		names = append(names, n)
	}
	sort.Strings(names)

	out := map[string]string{}
	code := http.StatusOK
	for _, n := range names {
		if err := s.deps[n].Ping(ctx); err != nil {
			s.log.Warn().Err(err).Str("dependency", n).Msg("readiness check failed")
			out[n] = err.Error()
			code = http.StatusServiceUnavailable
			continue
		}
		out[n] = "ok"
	}
	writeStatus(w, code, out)
}

func writeStatus(w http.ResponseWriter, code int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) Start(port int) error {
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info().Int("port", port).Msg("ops server listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
