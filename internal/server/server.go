package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/liftlog/internal/workout"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	svc    *workout.Service
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(svc *workout.Service, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		svc:    svc,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Read-side endpoints
		r.Get("/templates", s.handleListTemplates)
		r.Get("/templates/{name}", s.handleGetTemplate)
		r.Get("/splits", s.handleListSplits)
		r.Get("/splits/active", s.handleActiveSplit)
		r.Get("/sessions", s.handleListSessions)
		r.Get("/sessions/current", s.handleCurrentSession)
		r.Get("/progress", s.handleProgress)
		r.Get("/progress/lifts", s.handleTopLifts)
		r.Get("/stats", s.handleStats)

		// Mutations (API key required)
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Put("/templates/{name}", s.handleUpdateTemplate)
			r.Post("/templates/{name}/reset", s.handleResetTemplate)
			r.Post("/splits", s.handleCreateSplit)
			r.Delete("/splits/{id}", s.handleDeleteSplit)
			r.Post("/splits/{id}/activate", s.handleActivateSplit)
			r.Post("/splits/active/skip", s.handleSkipDay)
			r.Post("/sessions", s.handleStartSession)
			r.Post("/sessions/current/sets", s.handleUpdateSet)
			r.Post("/sessions/current/sets/complete", s.handleCompleteSet)
			r.Post("/sessions/current/finalize", s.handleFinalizeSession)
		})
	})
}
