package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cfjess012/cyber-spm-sub000/auth"
	"github.com/cfjess012/cyber-spm-sub000/config"
	"github.com/cfjess012/cyber-spm-sub000/internal/suggestions"
	"github.com/cfjess012/cyber-spm-sub000/middleware"
	"github.com/cfjess012/cyber-spm-sub000/repositories/postgres"
	"github.com/cfjess012/cyber-spm-sub000/services/pipeline"
	"github.com/cfjess012/cyber-spm-sub000/services/registry"
	"github.com/cfjess012/cyber-spm-sub000/services/scoring"
	"github.com/cfjess012/cyber-spm-sub000/services/suggest"
	"github.com/cfjess012/cyber-spm-sub000/snapshot"
)

// Dependencies holds all application dependencies. This is the central
// wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// State
	Store *snapshot.Store

	// Services
	Registry *registry.Service
	Pipeline *pipeline.Service
	Scoring  *scoring.Service
	Suggest  *suggest.Service

	// Auth
	AuthMiddleware *middleware.AuthMiddleware
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initStore(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize snapshot store: %w", err)
	}

	deps.initServices(cfg)
	deps.initAuth(cfg)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initStore connects PostgreSQL and loads the latest persisted snapshot.
// The in-memory snapshot is authoritative, so a missing database
// degrades to memory-only operation instead of blocking startup.
func (d *Dependencies) initStore(ctx context.Context, cfg *config.Config) error {
	db, err := postgres.NewDB(cfg.Database, d.Logger)
	if err != nil {
		d.Logger.Warn("database unavailable, running memory-only", zap.Error(err))
		d.Store = snapshot.NewStore(memoryOnlyRepository{}, d.Logger)
		return nil
	}

	if err := db.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	d.DB = db
	d.Store = snapshot.NewStore(postgres.NewSnapshotRepository(db, d.Logger), d.Logger)
	d.Store.Open(ctx)
	return nil
}

// initServices wires the domain services over the shared store.
func (d *Dependencies) initServices(cfg *config.Config) {
	d.Registry = registry.NewService(d.Store, d.Logger)
	d.Pipeline = pipeline.NewService(d.Store, d.Logger)
	d.Scoring = scoring.NewService(d.Store, d.Logger)

	if cfg.Suggestions.APIKey == "" {
		d.Logger.Warn("suggestions API key not configured, suggestion endpoints disabled")
		return
	}
	provider := suggestions.NewClient(cfg.Suggestions, d.Logger)
	d.Suggest = suggest.NewService(provider, d.Registry, d.Scoring, d.Logger)
	d.Logger.Info("suggestion provider initialized",
		zap.String("model", cfg.Suggestions.Model))
}

func (d *Dependencies) initAuth(cfg *config.Config) {
	if !cfg.Auth.Enabled {
		d.Logger.Warn("authentication disabled, protected routes are open")
		d.AuthMiddleware = middleware.NewAuthMiddleware(rejectAllValidator{}, d.Logger)
		return
	}
	if cfg.Auth.Secret == "" {
		d.Logger.Warn("auth enabled without a JWT secret, protected routes will reject all requests")
		d.AuthMiddleware = middleware.NewAuthMiddleware(rejectAllValidator{}, d.Logger)
		return
	}
	d.AuthMiddleware = middleware.NewAuthMiddleware(auth.NewValidator(cfg.Auth), d.Logger)
	d.Logger.Info("auth validator initialized", zap.String("issuer", cfg.Auth.Issuer))
}

// memoryOnlyRepository keeps the store functional when no database is
// reachable. Loads find nothing and saves land nowhere.
type memoryOnlyRepository struct{}

func (memoryOnlyRepository) LoadLatest(context.Context) ([]byte, error) { return nil, nil }
func (memoryOnlyRepository) Save(context.Context, int, []byte) error    { return nil }

// rejectAllValidator rejects every token. Route wiring skips the auth
// middleware entirely when auth is disabled, so this only answers when
// auth is enabled without a usable secret.
type rejectAllValidator struct{}

func (rejectAllValidator) ValidateToken(context.Context, string) (*middleware.Claims, error) {
	return nil, fmt.Errorf("authentication not configured")
}

// Close gracefully shuts down all dependencies.
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error
	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}
	return nil
}
