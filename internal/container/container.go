package container

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"prithvipulse/adapters/backend"
	"prithvipulse/adapters/postgres"
	"prithvipulse/app"
	"prithvipulse/internal"
	"prithvipulse/internal/cache/lastgood"
	"prithvipulse/internal/config"
	"prithvipulse/internal/migration"
	"prithvipulse/internal/usage"
	"prithvipulse/ports"
)

// usageRingCapacity bounds the in-memory ledger used without a database
const usageRingCapacity = 4096

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB     *sqlx.DB
	Client *backend.Client

	// Usage ledger
	UsageRepo ports.DispatchUsageRepository
	Usage     *usage.Service

	// Dispatch
	Snapshots  *lastgood.Store
	Dispatcher *app.Dispatcher
	Surfaces   *app.Surfaces
}

// New creates a container backed by the in-memory usage ledger. Call
// InitWithDatabase to move the ledger to postgres.
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		Logger: internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel)),
	}

	c.Client = backend.NewClient(cfg.Backend, backend.WithLogger(c.Logger))

	snapshots, err := lastgood.New(cfg.Cache.SnapshotSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot cache: %w", err)
	}
	c.Snapshots = snapshots
	c.Surfaces = app.NewSurfaces()

	c.initUsage(usage.NewMemoryRepository(usageRingCapacity))

	c.Logger.Info("[Container] initialized backend=%s env=%s ledger=memory", cfg.Backend.BaseURL, cfg.Backend.Environment)
	return c, nil
}

// InitWithDatabase migrates db and routes the usage ledger to it
func (c *Container) InitWithDatabase(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	migrator := migration.NewRunner()
	if err := migrator.Run(ctx, db); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}

	if c.Usage != nil {
		c.Usage.Flush()
	}
	c.DB = db
	c.initUsage(postgres.NewDispatchUsageRepository(db))

	c.Logger.Info("[Container] usage ledger on postgres (schema %s)", migrator.Version())
	return nil
}

// initUsage rebuilds the usage service and the dispatcher around repo
func (c *Container) initUsage(repo ports.DispatchUsageRepository) {
	c.UsageRepo = repo
	c.Usage = usage.NewService(repo, c.Logger)
	c.Dispatcher = app.NewDispatcher(c.Client,
		app.WithRecorder(c.Usage),
		app.WithSnapshotStore(c.Snapshots),
		app.WithDispatchLogger(c.Logger),
		app.WithHealthTimeout(c.Config.Backend.HealthTimeout),
	)
}

// Shutdown drains pending usage writes and releases resources
func (c *Container) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		if c.Usage != nil {
			c.Usage.Flush()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		c.Logger.Warn("[Container] shutdown before usage ledger drained: %v", ctx.Err())
	}

	if c.Client != nil {
		c.Client.Close()
	}
	var err error
	if c.DB != nil {
		err = c.DB.Close()
	}
	_ = c.Logger.Sync()
	return err
}

// ConnectDatabase opens the postgres connection named by url
func ConnectDatabase(url string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}
