// Package dashboard serves stored backtest runs over HTTP so an external
// plotting or reporting layer can consume them. It never participates in
// a simulation; it only reads what storage holds.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/hamedasgari20/covered-call-strategy/internal/models"
	"github.com/hamedasgari20/covered-call-strategy/internal/storage"
)

// Config holds the server settings.
type Config struct {
	Port      int
	AuthToken string
}

// Server exposes the run history as JSON endpoints.
type Server struct {
	router    *chi.Mux
	server    *http.Server
	store     storage.Interface
	logger    *logrus.Logger
	port      int
	authToken string
}

// curveResponse is the plot-ready view of one run: the two value series
// on their shared date axis.
type curveResponse struct {
	RunID       string      `json:"run_id"`
	Dates       []time.Time `json:"dates"`
	CoveredCall []float64   `json:"covered_call"`
	Baseline    []float64   `json:"baseline"`
}

// NewServer creates a dashboard server over the given store.
func NewServer(cfg Config, store storage.Interface, logger *logrus.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		store:     store,
		logger:    logger,
		port:      cfg.Port,
		authToken: cfg.AuthToken,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(30 * time.Second))

	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		if s.authToken != "" {
			r.Use(s.authMiddleware)
		}
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Get("/runs/{id}/curve", s.handleGetCurve)
	})
}

// Start runs the server until the context is canceled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("port", s.port).Info("dashboard listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token != s.authToken {
			s.writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListRuns(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.ListRuns())
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := s.store.GetRun(id)
	if err != nil {
		if errors.Is(err, storage.ErrRunNotFound) {
			s.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.logger.WithError(err).Error("fetching run")
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetCurve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := s.store.GetRun(id)
	if err != nil {
		if errors.Is(err, storage.ErrRunNotFound) {
			s.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.logger.WithError(err).Error("fetching run")
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.writeJSON(w, http.StatusOK, buildCurve(res.RunID, &res.CoveredCall, &res.Baseline))
}

func buildCurve(id string, cc, base *models.PerformanceRecord) curveResponse {
	return curveResponse{
		RunID:       id,
		Dates:       cc.Dates(),
		CoveredCall: cc.Values(),
		Baseline:    base.Values(),
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("encoding response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
