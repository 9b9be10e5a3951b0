package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/devstats-lab/devstats/internal/aggregation"
	"github.com/devstats-lab/devstats/internal/cache"
	coreagg "github.com/devstats-lab/devstats/internal/core/aggregation"
	corecfg "github.com/devstats-lab/devstats/internal/core/config"
	"github.com/devstats-lab/devstats/internal/core/storage"
	"github.com/devstats-lab/devstats/internal/core/storage/memory"
	"github.com/devstats-lab/devstats/internal/core/storage/postgres"
	"github.com/devstats-lab/devstats/internal/migrations"
	"github.com/devstats-lab/devstats/internal/projection"
	"github.com/devstats-lab/devstats/internal/retention"
	"github.com/devstats-lab/devstats/internal/web"
)

// app holds the wired dependencies shared by every subcommand.
type app struct {
	cfg     *corecfg.Config
	events  storage.EventStore
	devices storage.DeviceStore
	health  storage.Pinger
	closers []func() error
}

func newApp(cfg *corecfg.Config) (*app, error) {
	a := &app{cfg: cfg}

	switch cfg.Database.Type {
	case "memory":
		store := memory.NewStore()
		a.events, a.devices, a.health = store, store, store
		slog.Warn("[App] Using in-memory storage; data is lost on exit")

	case "postgres":
		opts := postgres.Options{
			MaxOpenConns: cfg.Database.MaxOpenConns,
			MaxIdleConns: cfg.Database.MaxIdleConns,
			QueryTimeout: cfg.Database.QueryTimeout,
		}

		db, err := postgres.Open(cfg.Database.DSN, opts)
		if err != nil {
			return nil, err
		}
		err = migrations.RunMigrations(db, cfg.Database.AutoMigrate)
		db.Close()
		if err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}

		eventsAdapter, err := postgres.NewAdapter(cfg.Database.DSN, opts)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, eventsAdapter.Close)

		devicesAdapter, err := postgres.NewDeviceStateAdapter(eventsAdapter.DB(), cfg.Database.QueryTimeout)
		if err != nil {
			a.close()
			return nil, err
		}
		// Statements must close before the shared pool.
		a.closers = append([]func() error{devicesAdapter.Close}, a.closers...)

		a.events, a.devices, a.health = eventsAdapter, devicesAdapter, eventsAdapter

	default:
		return nil, fmt.Errorf("unsupported database.type %q", cfg.Database.Type)
	}

	return a, nil
}

// projection builds the cache-fronted query service.
func (a *app) projection() (*projection.Service, error) {
	var store cache.Store
	switch a.cfg.Cache.Backend {
	case "badger":
		bs, err := cache.OpenBadgerStore(cache.BadgerOptions{
			Path:           a.cfg.Cache.Path,
			StaleRetention: a.cfg.Cache.StaleRetention,
			GCInterval:     a.cfg.Cache.CleanupInterval,
		})
		if err != nil {
			return nil, err
		}
		store = bs
	default:
		store = cache.NewMemoryStore(a.cfg.Cache.StaleRetention, a.cfg.Cache.CleanupInterval)
	}
	a.closers = append([]func() error{store.Close}, a.closers...)

	pages, err := web.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	return projection.NewService(coreagg.NewEngine(a.devices), cache.New(store), pages, projection.Options{
		TTL:     a.cfg.Cache.TTL,
		Windows: a.cfg.Aggregation.Windows,
		TopN:    a.cfg.Aggregation.TopN,
	}), nil
}

func (a *app) warmer(svc *projection.Service) *aggregation.Warmer {
	return aggregation.NewWarmer(svc, aggregation.WarmerOptions{
		DetailThreshold: a.cfg.Aggregation.DetailThreshold,
	})
}

func (a *app) sweeper() *retention.Sweeper {
	return retention.NewSweeper(a.events, a.devices,
		a.cfg.Retention.EventHorizonDays,
		a.cfg.Aggregation.MaxWindow(),
	)
}

func (a *app) close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
