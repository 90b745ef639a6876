// It defines the API server, sets up the routes (endpoints)
// using chi, and links them to the handler functions.

package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"imagedeck/internal/core"
	"imagedeck/internal/store"
)

// Server holds the dependencies for our API.
type Server struct {
	app   *core.App
	db    *sql.DB
	store *store.Store
}

// NewServer creates a new Server instance.
func NewServer(app *core.App) *Server {
	return &Server{
		app:   app,
		db:    app.DB(),
		store: app.Store(),
	}
}

// Router sets up and returns the main router for the application.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)    // Logs requests to the console
	r.Use(middleware.Recoverer) // Recovers from panics
	r.Use(middleware.Timeout(120 * time.Second))

	r.Get("/api/version", s.handleGetVersion)

	r.Route("/api/session", func(r chi.Router) {
		// Gallery state and navigation
		r.Get("/gallery", s.handleGetGallery)
		r.Post("/select", s.handleSelect)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/load-more", s.handleLoadMore)
		r.Get("/filter", s.handleGetFilter)
		r.Post("/filter", s.handleSetFilter)
		r.Get("/filters", s.handleGetFilterOptions)
		r.Get("/queue", s.handleGetQueue)

		// Image access
		r.Get("/metadata", s.handleGetMetadata)
		r.Get("/image/raw", s.handleGetRawImage)
		r.Get("/image/thumb", s.handleGetThumbnail)
		r.Delete("/image", s.handleDeleteImage)

		// Generation parameters and prompt history
		r.Get("/params", s.handleGetParams)
		r.Put("/params", s.handleSaveParams)
		r.Get("/history", s.handleGetHistory)
		r.Post("/history", s.handleAddHistory)
		r.Delete("/history", s.handleClearHistory)

		// Viewer and UI settings
		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handleSaveSettings)
		r.Get("/viewer-options", s.handleGetViewerOptions)

		// Generation control
		r.Get("/comfy/status", s.handleComfyStatus)
		r.Get("/comfy/models", s.handleComfyModels)
		r.Get("/comfy/samplers-schedulers", s.handleSamplersSchedulers)
		r.Post("/generate", s.handleGenerate)
		r.Post("/cancel", s.handleCancel)
		r.Post("/interrupt", s.handleInterrupt)
		r.Post("/optimize", s.handleOptimize)
	})

	// Job Triggers
	r.Get("/api/jobs/status", s.handleGetJobsStatus)
	r.Post("/api/jobs/run", s.handleRunJob)

	// WebSocket route
	r.Get("/ws/progress", func(w http.ResponseWriter, r *http.Request) {
		s.app.WsHub().ServeWs(w, r)
	})

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		if err := s.db.Ping(); err != nil {
			RespondWithError(w, http.StatusServiceUnavailable, "Database connection failed")
			return
		}
		RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"connected": s.app.Gallery().Connected(),
		})
	})

	return r
}

func (s *Server) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{"version": s.app.Version()})
}
