package routes

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/cfjess012/cyber-spm-sub000/app"
	"github.com/cfjess012/cyber-spm-sub000/handlers"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Protected routes pass through the auth middleware only when auth
	// is enabled; disabled auth leaves them open for local development.
	requireAuth := passthrough
	requireAdmin := passthrough
	if deps.Config.Auth.Enabled {
		requireAuth = deps.AuthMiddleware.RequireAuth
		requireAdmin = deps.AuthMiddleware.RequireRole("admin")
	}

	// Handlers
	var db *sql.DB
	if deps.DB != nil {
		db = deps.DB.DB
	}
	healthHandler := handlers.NewHealthHandler(db, deps.Store, deps.Logger)
	objectHandler := handlers.NewObjectHandler(deps.Registry, deps.Logger)
	gapHandler := handlers.NewGapHandler(deps.Pipeline, deps.Logger)
	scoringHandler := handlers.NewScoringHandler(deps.Scoring, deps.Logger)
	suggestionHandler := handlers.NewSuggestionHandler(deps.Suggest, deps.Logger)
	snapshotHandler := handlers.NewSnapshotHandler(deps.Store, deps.Logger)

	// Health check endpoints
	r.Get("/healthz", healthHandler.HandleHealth)
	r.Get("/readyz", healthHandler.HandleReadiness)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Tracked object registry
		r.Route("/objects", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", objectHandler.HandleList)
			r.Post("/", objectHandler.HandleCreate)
			r.Get("/{id}", objectHandler.HandleGet)
			r.Put("/{id}", objectHandler.HandleUpdate)
			r.Delete("/{id}", objectHandler.HandleDelete)

			// Remediation tracking
			r.Post("/{id}/remediation-items", objectHandler.HandleAddRemediationItem)
			r.Post("/{id}/remediation-items/{itemID}/complete", objectHandler.HandleCompleteRemediationItem)

			// Scoring
			r.Get("/{id}/posture", scoringHandler.HandleGetPosture)
			r.Get("/{id}/maturity", scoringHandler.HandleGetMaturity)
			r.Put("/{id}/assessment", scoringHandler.HandleRecordAnswers)

			// AI suggestions
			r.Route("/{id}/suggestions", func(r chi.Router) {
				r.Post("/classification", suggestionHandler.HandleSuggestClassification)
				r.Post("/classification/apply", suggestionHandler.HandleApplyClassification)
				r.Post("/checklist", suggestionHandler.HandleSuggestChecklistAnswers)
				r.Post("/checklist/apply", suggestionHandler.HandleApplyChecklistAnswers)
			})
		})

		// Gap lifecycle pipeline
		r.Route("/gaps", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", gapHandler.HandleList)
			r.Post("/", gapHandler.HandleLog)
			r.Get("/{id}", gapHandler.HandleGet)
			r.Patch("/{id}", gapHandler.HandleEnrich)
			r.Delete("/{id}", gapHandler.HandleDelete)
			r.Post("/{id}/triage", gapHandler.HandleTriage)
			r.Put("/{id}/status", gapHandler.HandleSetStatus)
			r.Post("/{id}/reopen", gapHandler.HandleReopen)
			r.Post("/{id}/promote", gapHandler.HandlePromote)
		})

		// Portfolio rollup and the diagnostic checklist
		r.With(requireAuth).Get("/portfolio", scoringHandler.HandleGetPortfolio)
		r.With(requireAuth).Get("/maturity/checklist", scoringHandler.HandleGetChecklist)

		// Snapshot export and import (require admin role)
		r.Route("/snapshot", func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(requireAdmin)
			r.Get("/export", snapshotHandler.HandleExport)
			r.Post("/import", snapshotHandler.HandleImport)
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}

func passthrough(next http.Handler) http.Handler { return next }
