package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/lexora-app/mastery-api/internal/config"
	"github.com/lexora-app/mastery-api/internal/platform/clock"
	"github.com/lexora-app/mastery-api/internal/platform/postgres"
	"github.com/lexora-app/mastery-api/internal/service/achievement"
	"github.com/lexora-app/mastery-api/internal/service/auth"
	"github.com/lexora-app/mastery-api/internal/service/reward"
	"github.com/lexora-app/mastery-api/internal/service/scheduler"
	"github.com/lexora-app/mastery-api/internal/service/session"
	"github.com/lexora-app/mastery-api/internal/service/unlock"
	"github.com/lexora-app/mastery-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	userStore        store.UserStore
	progressStore    store.ProgressStore
	reviewStateStore store.ReviewStateStore
	achievementStore store.AchievementStore
	entityStore      store.EntityStore
	sessionStore     store.SessionStore
	catalogStore     store.CatalogStore

	// Services
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	clock            clock.Clock
	scheduler        *scheduler.Scheduler
	ledger           *reward.Ledger
	gate             *unlock.Gate
	engine           *achievement.Engine
	runner           *session.Runner
}

// newApplication creates a new application instance with all dependencies
// initialized. The reward ledger and the unlock gate reference each other:
// awards re-evaluate point gates, and gem unlocks spend through the ledger.
// The gate is built first and receives the ledger once it exists.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
		clock:  clock.System{},
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	app.passwordVerifier = auth.NewBcryptVerifier()

	bcryptCost := cfg.Auth.BcryptCost
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}

	app.userStore = postgres.NewPostgresUserStore(db, bcryptCost)
	app.progressStore = postgres.NewPostgresProgressStore(db, logger)
	app.reviewStateStore = postgres.NewPostgresReviewStateStore(db, logger)
	app.achievementStore = postgres.NewPostgresAchievementStore(db, logger)
	app.entityStore = postgres.NewPostgresEntityStore(db, logger)
	app.sessionStore = postgres.NewPostgresSessionStore(db, logger)
	app.catalogStore = postgres.NewPostgresCatalogStore(db, logger)

	app.gate = unlock.NewGate(app.entityStore, app.clock, logger)
	app.ledger = reward.NewLedger(app.progressStore, app.entityStore, app.gate, app.clock, logger)
	app.gate.SetLedger(app.ledger)

	app.engine = achievement.NewEngine(app.achievementStore, app.ledger, app.clock, logger)
	app.scheduler = scheduler.New(app.reviewStateStore, app.catalogStore, app.clock, logger)

	app.runner = session.NewRunner(
		db,
		app.scheduler,
		app.ledger,
		app.gate,
		app.engine,
		app.userStore,
		app.reviewStateStore,
		app.sessionStore,
		app.entityStore,
		app.catalogStore,
		app.clock,
		logger,
	)

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("Application shutdown completed")
}
