package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/auth"
	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/logger"
	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/simulator"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/config"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/database"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/database/queries"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/validation"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	pattern := flag.String("pattern", "steady", "delay pattern: steady, gradual_rise, weekly, random, sine_wave")
	active := flag.Int("active", 8, "number of in-flight shipments")
	live := flag.Duration("live", 0, "keep appending security traffic at this interval (0 disables)")
	attack := flag.Bool("attack", false, "inject one instance of every detectable attack")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Setup(cfg.App.LogLevel, cfg.App.Mode, "sentinel-simulator")
	logger.Infof("Seeding %s with pattern %s", cfg.Database.Name, *pattern)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := database.Open(ctx, cfg.Database.ToDBConfig())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.NewMigrator(db).Run(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	gen := simulator.New(simulator.Config{
		Seed:            cfg.Source.Seed,
		Shipments:       cfg.Source.Shipments,
		ActiveShipments: *active,
		Accounts:        cfg.Source.Accounts,
		Pattern:         *pattern,
		InjectAttacks:   *attack || cfg.Source.InjectAttacks,
		Lookback:        cfg.Anomaly.Lookback,
	})

	s := &seeder{
		shipments: queries.NewShipmentRepository(db.DB),
		security:  queries.NewSecurityRepository(db.DB),
		users:     queries.NewUserRepository(db.DB),
	}

	asOf := time.Now().UTC()
	if err := s.seed(ctx, gen.Generate(asOf)); err != nil {
		return err
	}

	if err := s.seedAdmin(ctx, cfg.API.AdminUsername, cfg.API.AdminPassword); err != nil {
		return err
	}

	if *live <= 0 {
		return nil
	}
	return s.stream(ctx, gen, asOf, *live)
}

type seeder struct {
	shipments *queries.ShipmentRepository
	security  *queries.SecurityRepository
	users     *queries.UserRepository
}

func (s *seeder) seed(ctx context.Context, ds *simulator.Dataset) error {
	for i := range ds.Shipments {
		if err := s.shipments.Upsert(ctx, &ds.Shipments[i]); err != nil {
			return fmt.Errorf("failed to upsert shipment %s: %w", ds.Shipments[i].ID, err)
		}
	}
	for _, a := range ds.Accounts {
		if err := s.security.UpsertAccount(ctx, a); err != nil {
			return fmt.Errorf("failed to upsert account %s: %w", a.ID, err)
		}
	}
	if err := s.security.InsertLogins(ctx, ds.Logins); err != nil {
		return fmt.Errorf("failed to insert logins: %w", err)
	}
	if err := s.security.InsertAccesses(ctx, ds.Accesses); err != nil {
		return fmt.Errorf("failed to insert accesses: %w", err)
	}

	logger.WithFields(map[string]interface{}{
		"shipments": len(ds.Shipments),
		"accounts":  len(ds.Accounts),
		"logins":    len(ds.Logins),
		"accesses":  len(ds.Accesses),
	}).Info("Dataset seeded")
	return nil
}

func (s *seeder) seedAdmin(ctx context.Context, username, password string) error {
	if password == "" {
		return nil
	}
	if err := validation.ValidateUsername(username); err != nil {
		return fmt.Errorf("invalid admin username: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return fmt.Errorf("invalid admin password: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	if _, err := s.users.Upsert(ctx, username, hash); err != nil {
		return fmt.Errorf("failed to upsert admin user: %w", err)
	}

	logger.Infof("Dashboard user %q ready", username)
	return nil
}

// stream appends fresh security traffic until ctx is cancelled.
func (s *seeder) stream(ctx context.Context, gen *simulator.Generator, from time.Time, interval time.Duration) error {
	logger.Infof("Streaming live traffic every %s", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutting down simulator")
			return nil
		case t := <-ticker.C:
			to := t.UTC()
			logins, accesses := gen.Traffic(from, to)
			if err := s.security.InsertLogins(ctx, logins); err != nil {
				logger.Errorf("Failed to insert logins: %v", err)
				continue
			}
			if err := s.security.InsertAccesses(ctx, accesses); err != nil {
				logger.Errorf("Failed to insert accesses: %v", err)
				continue
			}
			logger.Debugf("Appended %d logins and %d accesses", len(logins), len(accesses))
			from = to
		}
	}
}
