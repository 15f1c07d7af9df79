// File: internal/infra/web/server.go
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"care-compass/internal/infra/worker"
	"care-compass/internal/usecase"
)

// RateLimiter gates message handling per client. A nil limiter disables the
// check entirely.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type Server struct {
	chatUC        usecase.ChatUseCase
	clinicUC      usecase.ClinicUseCase
	limiter       RateLimiter
	ratePerMinute int
	modelName     string
	pool          *worker.Pool
	log           *zerolog.Logger
	srv           *http.Server
}

func NewServer(
	chatUC usecase.ChatUseCase,
	clinicUC usecase.ClinicUseCase,
	limiter RateLimiter,
	ratePerMinute int,
	modelName string,
	pool *worker.Pool,
	port int,
	logger *zerolog.Logger,
) *Server {
	s := &Server{
		chatUC:        chatUC,
		clinicUC:      clinicUC,
		limiter:       limiter,
		ratePerMinute: ratePerMinute,
		modelName:     modelName,
		pool:          pool,
		log:           logger,
	}
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Routes builds the router; exposed separately so tests can mount it on an
// httptest server.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.requestLogger)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/chatbot", func(r chi.Router) {
		r.Post("/session", s.handleCreateSession)
		r.With(s.rateLimit).Post("/message", s.handleMessage)
		r.Get("/session/{sessionID}", s.handleSessionSummary)
		r.Delete("/session/{sessionID}", s.handleEndSession)
		r.Get("/health", s.handleChatHealth)
		r.Get("/stats", s.handleChatStats)
		r.Post("/sessions/cleanup", s.handleCleanup)
		r.Route("/quick-actions", func(r chi.Router) {
			r.Post("/find-clinics", s.handleQuickFindClinics)
			r.Post("/emergency-help", s.handleQuickAction("I need emergency help"))
			r.Post("/insurance-help", s.handleQuickAction("I don't have insurance and need help with costs"))
		})
	})

	r.Route("/clinics", func(r chi.Router) {
		r.Get("/", s.handleListClinics)
		r.Post("/", s.handleCreateClinic)
		r.Post("/search", s.handleSearchClinics)
		r.Get("/{clinicID}", s.handleGetClinic)
	})

	return r
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.srv.Addr).Msg("http server listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
