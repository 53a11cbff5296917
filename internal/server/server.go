// internal/server/server.go
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"driver-onboarding/internal/common/config"
	"driver-onboarding/internal/common/logger"
	"driver-onboarding/internal/onboarding/session"
	"driver-onboarding/internal/onboarding/submit"
)

// Server exposes the onboarding workflow over HTTP. One session per
// authenticated applicant; the applicant id arrives in the X-Applicant-ID
// header set by the gateway.
type Server struct {
	http     *http.Server
	sessions *session.Manager
	submit   *submit.Orchestrator
	logger   logger.Logger
}

// New builds the server and its route tree.
func New(cfg config.ServerConfig, sessions *session.Manager, orch *submit.Orchestrator, log logger.Logger) *Server {
	s := &Server{
		sessions: sessions,
		submit:   orch,
		logger:   log,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/session", func(r chi.Router) {
		r.Use(s.requireApplicant)

		r.Post("/", s.handleStart)
		r.Get("/", s.handleSnapshot)
		r.Patch("/", s.handleUpdate)
		r.Delete("/", s.handleDiscard)

		r.Post("/documents/{type}", s.handleAttachDocument)
		r.Post("/photos/{type}", s.handleAttachPhoto)

		r.Post("/next", s.handleNext)
		r.Post("/back", s.handleBack)
		r.Post("/jump", s.handleJump)

		r.Post("/submit", s.handleSubmit)
	})

	s.http = &http.Server{
		Addr:         cfg.Address,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	}
	return s
}

// ListenAndServe blocks serving requests until Shutdown or a listener error.
func (s *Server) ListenAndServe() error {
	s.logger.Info("HTTP server listening", map[string]interface{}{
		"address": s.http.Addr,
	})
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler exposes the route tree for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestLogger logs one line per request in the structured format the rest
// of the service uses.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("Request handled", map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"durationMs": time.Since(start).Milliseconds(),
			"requestId":  middleware.GetReqID(r.Context()),
		})
	})
}
