package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"dnsmonitor/internal/adapters/db/memory"
	pgrepo "dnsmonitor/internal/adapters/db/postgres"
	"dnsmonitor/internal/adapters/db/sqlite"
	"dnsmonitor/internal/adapters/notify"
	"dnsmonitor/internal/adapters/resolver"
	"dnsmonitor/internal/application/monitor"
	appsnapshot "dnsmonitor/internal/application/snapshot"
	"dnsmonitor/internal/config"
	"dnsmonitor/internal/domain/snapshot"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// App holds the wired components shared by the server and the CLI
type App struct {
	Config  *config.Config
	Store   *appsnapshot.Store
	Monitor *monitor.Service

	closers []func() error
}

// New wires the repository selected by cfg.Database.Driver, the resolver and
// the monitor. Close must be called to release database handles.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	behavior, err := monitor.ParseSnapshotBehavior(cfg.Snapshot.Behavior)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg}
	repo, err := a.openRepository(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	res, err := newResolver(cfg.Monitor)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Store = appsnapshot.NewStore(repo, cfg.Snapshot.Retention)
	a.Monitor = monitor.NewService(monitor.Config{Domain: cfg.Monitor.Domain, Behavior: behavior}, res, a.Store)
	a.Monitor.AddNotifier(notify.NewLogNotifier(log.Logger))

	if cfg.Database.Driver == config.DriverPostgres && cfg.Database.AdvisoryLock {
		locks, err := pgrepo.NewLockManager(ctx, cfg.Database.DSN)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() error { locks.Close(); return nil })
		a.Monitor.SetLocker(locks)
		log.Info().Msg("Checks are serialized with a Postgres advisory lock")
	}

	return a, nil
}

func newResolver(cfg config.MonitorConfig) (monitor.Resolver, error) {
	if cfg.ZoneFile != "" {
		log.Info().Str("zone_file", cfg.ZoneFile).Msg("Resolving from zone file")
		return resolver.NewZoneFile(cfg.ZoneFile), nil
	}
	r, err := resolver.New(resolver.Config{
		Nameserver: cfg.Nameserver,
		QueryTypes: cfg.QueryTypes,
		Timeout:    cfg.QueryTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("init resolver: %w", err)
	}
	log.Info().Str("nameserver", r.Nameserver()).Msg("Resolving over DNS")
	return r, nil
}

func (a *App) openRepository(ctx context.Context) (snapshot.Repository, error) {
	cfg := a.Config.Database
	switch cfg.Driver {
	case config.DriverSQLite:
		log.Info().Str("dsn", cfg.DSN).Msg("Initializing SQLite repository")
		db, err := sqlite.Open(cfg.DSN)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, sqlDB.Close)
		if err := sqlite.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		return sqlite.NewSnapshotRepository(db), nil

	case config.DriverPostgres:
		log.Info().Msg("Initializing Postgres repository")
		db, err := sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)

		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		if err := pgrepo.RunMigrations(pingCtx, db, cfg.Migrations); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		return pgrepo.NewSnapshotRepository(db), nil
	}

	log.Warn().Msg("DB driver is memory - snapshots are lost on exit")
	return memory.NewSnapshotRepository(), nil
}

// Close releases every resource opened by New, newest first
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn().Err(err).Msg("Failed to close resource")
		}
	}
	a.closers = nil
}
