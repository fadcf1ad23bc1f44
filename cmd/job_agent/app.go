package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/job-autopilot/internal/config"
	"github.com/jonathan/job-autopilot/internal/db"
	"github.com/jonathan/job-autopilot/internal/observability"
	"github.com/jonathan/job-autopilot/internal/pipeline"
)

// app bundles what every command needs.
type app struct {
	cfg     *config.Config
	store   *db.DB
	svc     *pipeline.Service
	printer *observability.Printer
	cleanup func()
}

// openApp loads configuration and the profile, opens the store and wires
// the service. Close must be called when done.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	profile, err := config.LoadProfile(cfg.ProfilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	store, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	svc, cleanup, err := pipeline.Build(ctx, cfg, profile, store)
	if err != nil {
		cleanup()
		_ = store.Close()
		return nil, fmt.Errorf("failed to set up services: %w", err)
	}
	return &app{
		cfg:     cfg,
		store:   store,
		svc:     svc,
		printer: observability.NewPrinter(os.Stdout),
		cleanup: cleanup,
	}, nil
}

// Close waits for background work and releases clients and the store.
func (a *app) Close() {
	a.svc.Wait()
	a.cleanup()
	_ = a.store.Close()
}

// withApp runs fn with an opened app.
func withApp(fn func(ctx context.Context, a *app) error) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
