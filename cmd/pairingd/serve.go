package main

import (
	"context"
	"fmt"

	_ "github.com/nerrad567/pairing-core/migrations"

	"github.com/nerrad567/pairing-core/internal/account"
	"github.com/nerrad567/pairing-core/internal/api"
	"github.com/nerrad567/pairing-core/internal/audit"
	"github.com/nerrad567/pairing-core/internal/auth"
	"github.com/nerrad567/pairing-core/internal/infrastructure/cache"
	"github.com/nerrad567/pairing-core/internal/infrastructure/config"
	"github.com/nerrad567/pairing-core/internal/infrastructure/database"
	"github.com/nerrad567/pairing-core/internal/infrastructure/logging"
	"github.com/nerrad567/pairing-core/internal/mail"
	"github.com/nerrad567/pairing-core/internal/pairing"
)

// run is the service entry point, separated from the command for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - path: Configuration file to load
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, path string) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting pairing service",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", path)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	db, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	cacheClient, err := cache.Connect(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("connecting to cache: %w", err)
	}
	defer func() {
		log.Info("closing cache connection")
		if closeErr := cacheClient.Close(); closeErr != nil {
			log.Error("error closing cache", "error", closeErr)
		}
	}()
	log.Info("cache connected", "address", cacheClient.Address())

	events, err := connectEventSink(ctx, cfg, log.Component("events"))
	if err != nil {
		return err
	}
	defer events.Close()

	issuer := newIssuer(cfg, cacheClient, log)
	events.attach(issuer)

	accounts := auth.NewAccountRepository(db.DB)
	auditRepo := audit.NewSQLiteRepository(db.DB)
	mailer := mail.New(cfg.Mail, log.Component("mail"))
	passwords := account.NewService(accounts, auditRepo, mailer, cfg.Mail.From, log.Component("account"))

	server, err := api.New(api.Deps{
		Config:    cfg.API,
		Security:  cfg.Security,
		Logger:    log.Component("api"),
		Issuer:    issuer,
		Cache:     cacheClient,
		Accounts:  accounts,
		Passwords: passwords,
		Audit:     auditRepo,
		DB:        db,
		MQTT:      events.mqttReporter(),
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	if err := healthCheck(ctx, db, cacheClient, events); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// API server, event sink, cache, database.
	return nil
}

// openDatabase opens the SQLite store and applies pending migrations.
func openDatabase(ctx context.Context, cfg *config.Config, log *logging.Logger) (*database.DB, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	log.Info("database connected", "path", cfg.Database.Path)

	if err := db.Migrate(ctx); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database migrations complete")
	return db, nil
}

// newIssuer builds the pairing issuer with the configured attempt cap.
func newIssuer(cfg *config.Config, c pairing.Cache, log *logging.Logger) *pairing.Issuer {
	issuer := pairing.NewIssuer(c, log.Component("pairing"))
	issuer.SetMaxAttempts(cfg.Pairing.MaxAttempts)
	return issuer
}

// healthCheck verifies all infrastructure connections are healthy.
func healthCheck(ctx context.Context, db *database.DB, c *cache.Client, events *eventSink) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.HealthCheck(ctx); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return events.healthCheck(ctx)
}
