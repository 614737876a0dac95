// Package server wires configuration, storage, notification and the REST
// API together and runs them until the process is asked to stop.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/verikeep/internal/logging"
	"github.com/dmitrijs2005/verikeep/internal/server/config"
	"github.com/dmitrijs2005/verikeep/internal/server/notify"
	"github.com/dmitrijs2005/verikeep/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/verikeep/internal/server/rest"
	"github.com/dmitrijs2005/verikeep/internal/server/services"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    repomanager.RepositoryManager
	notifier notify.Notifier
	server   *rest.Server
}

// NewApp builds every component from c. An empty DatabaseDSN selects the
// in-memory store.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(c.LogBackend, c.LogLevel, c.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	repos, err := newRepositoryManager(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	notifier, err := notify.New(ctx, c, logger)
	if err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("notifier init error: %w", err)
	}

	svc, err := services.NewAccountService(repos, notifier, logger, c)
	if err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("service init error: %w", err)
	}

	router := rest.NewRouter(rest.NewHandler(svc, logger), logger, c.CORSOrigins)

	return &App{
		config:   c,
		logger:   logger,
		repos:    repos,
		notifier: notifier,
		server:   rest.NewServer(c.HTTPAddr, router, logger, c.ShutdownTimeout),
	}, nil
}

func newRepositoryManager(ctx context.Context, c *config.Config, logger logging.Logger) (repomanager.RepositoryManager, error) {
	if c.DatabaseDSN == "" {
		logger.Warn(ctx, "DATABASE_DSN not set, using in-memory store")
		return repomanager.NewInMemoryRepositoryManager(), nil
	}

	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return rm, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves the API until ctx is cancelled or a stop signal arrives, then
// releases the store and notifier.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	err := app.server.Run(ctx)
	if err != nil {
		app.logger.Error(ctx, "HTTP server failed", "error", err)
	}

	app.close(ctx)
	return err
}

func (app *App) close(ctx context.Context) {
	if c, ok := app.notifier.(notify.Closer); ok {
		if err := c.Close(); err != nil {
			app.logger.Warn(ctx, "notifier close failed", "error", err)
		}
	}
	if err := app.repos.Close(); err != nil {
		app.logger.Warn(ctx, "store close failed", "error", err)
	}

	app.logger.Info(ctx, "App stopped")

	if s, ok := app.logger.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
}
