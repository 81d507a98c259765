package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/klipseyuw/INFO-492-Demo-sub000/api"
	"github.com/klipseyuw/INFO-492-Demo-sub000/api/handlers"
	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/auth"
	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/events"
	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/logger"
	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/metrics"
	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/orchestrator"
	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/resilience"
	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/simulator"
	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/source"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/config"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/database"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/database/queries"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	migrate := flag.Bool("migrate", false, "run database migrations and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Setup(cfg.App.LogLevel, cfg.App.Mode, cfg.App.Name)
	logger.Infof("Starting %s in %s mode (source=%s)", cfg.App.Name, cfg.App.Mode, cfg.Source.Type)

	db, err := connect(cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()

		if err := prepareSchema(db, cfg.Database.MigrationTimeout); err != nil {
			return err
		}
	}

	if *migrate {
		if db == nil {
			return errors.New("no database available to migrate")
		}
		return nil
	}

	m := metrics.Get()

	src, err := newSource(cfg, db, m)
	if err != nil {
		return err
	}
	defer src.Close()

	opts := orchestrator.Options{Config: cfg, Source: src, Metrics: m}
	if db != nil {
		opts.Store = events.NewDatabaseStore(db)
	}
	orch, err := orchestrator.New(opts)
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}

	deps, err := dependencies(cfg, db, orch, m)
	if err != nil {
		return err
	}
	server := api.NewServer(cfg, deps)

	if cfg.Prometheus.Enabled {
		metrics.StartServer(cfg.Prometheus.Port)
	}

	if err := orch.Start(); err != nil {
		return fmt.Errorf("failed to start orchestrator: %w", err)
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Infof("API server listening on port %d", cfg.API.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	var runErr error
	select {
	case err := <-errChan:
		runErr = fmt.Errorf("server error: %w", err)
	case sig := <-shutdownChan:
		logger.Infof("Received signal %v, shutting down", sig)
	}

	orch.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("shutdown error: %w", err)
	}

	if runErr == nil {
		logger.Info("Sentinel stopped gracefully")
	}
	return runErr
}

// connect opens the database. It is mandatory for the postgres source.
// With the synthetic source it only backs persistence, so a failure
// downgrades to running without it.
func connect(cfg *config.Config) (*database.DB, error) {
	synthetic := cfg.Source.Type == "synthetic"
	if synthetic && (!cfg.Events.Persist || cfg.Database.Host == "") {
		logger.Info("Running without a database")
		return nil, nil
	}

	db, err := database.Open(context.Background(), cfg.Database.ToDBConfig())
	if err != nil {
		if synthetic {
			logger.Warnf("Database unavailable, running without persistence: %v", err)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("Database connection established")
	return db, nil
}

func prepareSchema(db *database.DB, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := database.NewMigrator(db).Run(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if err := db.VerifySchema(ctx); err != nil {
		return err
	}

	version, err := db.ServerVersion(ctx)
	if err != nil {
		return err
	}
	logger.WithField("version", version).Info("Migrations completed successfully")
	return nil
}

func newSource(cfg *config.Config, db *database.DB, m *metrics.Metrics) (source.DataSource, error) {
	var inner source.DataSource
	switch cfg.Source.Type {
	case "postgres":
		inner = source.NewPostgresSource(db)
	case "synthetic":
		inner = source.NewSyntheticSource(source.SyntheticSourceConfig{
			Simulator: simulator.Config{
				Seed:          cfg.Source.Seed,
				Shipments:     cfg.Source.Shipments,
				Accounts:      cfg.Source.Accounts,
				InjectAttacks: cfg.Source.InjectAttacks,
				Lookback:      cfg.Anomaly.Lookback,
			},
		})
	default:
		return nil, fmt.Errorf("unknown source type %q", cfg.Source.Type)
	}

	m.SetCircuitBreakerState("source", metrics.BreakerClosed)

	return source.NewResilientSource(source.ResilientSourceConfig{
		Source:        inner,
		MaxFailures:   cfg.Scheduler.CircuitBreaker.MaxFailures,
		BreakerWait:   cfg.Scheduler.CircuitBreaker.Timeout,
		RetryAttempts: cfg.Scheduler.RetryAttempts,
		Timeout:       cfg.Scheduler.Timeout,
		OnStateChange: func(name string, from, to resilience.State) {
			m.SetCircuitBreakerState(name, breakerGauge(to))
		},
		OnError: func(operation string, err error) {
			m.IncSourceErrors(operation)
		},
	}), nil
}

func breakerGauge(s resilience.State) int {
	switch s {
	case resilience.StateOpen:
		return metrics.BreakerOpen
	case resilience.StateHalfOpen:
		return metrics.BreakerHalfOpen
	default:
		return metrics.BreakerClosed
	}
}

// dependencies assembles the API collaborators. Persisted stores are only
// set when a database exists so the handlers see nil interfaces, not
// typed nils.
func dependencies(cfg *config.Config, db *database.DB, orch *orchestrator.Orchestrator, m *metrics.Metrics) (api.Dependencies, error) {
	deps := api.Dependencies{Sentinel: orch, Metrics: m}

	if db != nil {
		deps.Users = queries.NewUserRepository(db.DB)
		deps.Anomalies = queries.NewAnomalyRepository(db.DB)
		deps.Predictions = queries.NewPredictionRepository(db.DB)
		deps.Database = db
		return deps, nil
	}

	users, err := staticUsers(cfg.API)
	if err != nil {
		return deps, err
	}
	deps.Users = users
	return deps, nil
}

func staticUsers(cfg config.APIConfig) (handlers.UserStore, error) {
	if cfg.AdminPassword == "" {
		logger.Warn("api.admin_password is not set; dashboard login is disabled")
		return queries.NewStaticUserRepository(), nil
	}

	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}

	users := queries.NewStaticUserRepository(queries.User{
		Username:     cfg.AdminUsername,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	})
	logger.Infof("Dashboard login enabled for %q", cfg.AdminUsername)
	return users, nil
}
