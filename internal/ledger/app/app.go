package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/aegis/internal/ledger/chain"
	"github.com/aussiebroadwan/aegis/internal/ledger/feed"
	httpapi "github.com/aussiebroadwan/aegis/internal/ledger/http"
	"github.com/aussiebroadwan/aegis/internal/ledger/service"
	"github.com/aussiebroadwan/aegis/internal/ledger/store"
	"github.com/aussiebroadwan/aegis/internal/ledger/store/drivers/leveldb"
	"github.com/aussiebroadwan/aegis/internal/ledger/store/drivers/sqlite"
	"github.com/aussiebroadwan/aegis/pkg/signx"
	"github.com/aussiebroadwan/aegis/pkg/slogx"
	"golang.org/x/sync/errgroup"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the ledger service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db         store.Store
	sealers    *Sealers
	keyManager *signx.KeyManager
	ledger     *chain.Ledger
	hub        *feed.Hub

	// Services
	totpService        *service.TOTPService
	signerService      *service.SignerService
	auditService       *service.AuditService
	alertService       *service.AlertService
	keyRotationService *service.KeyRotationService
	scheduler          *service.Scheduler

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "aegis",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}
	slog.SetDefault(app.logger)

	ctx := context.Background()

	if err := app.initStore(); err != nil {
		return nil, err
	}

	sealers, err := InitSealers(ctx, app.cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.sealers = sealers

	keyManager, err := InitSigningKeys(ctx, app.cfg, app.db, sealers.Keys, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.keyManager = keyManager

	if err := app.initServices(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until a shutdown signal arrives or
// a component fails.
func (app *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.run(ctx)
}

func (app *Application) run(ctx context.Context) error {
	app.logger.Info("aegis starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"store", app.cfg.StoreDriver,
		"totp_policy", app.cfg.TOTPPolicy,
		"chain_length", app.ledger.Length(),
	)
	if app.cfg.AdminToken == "" {
		app.logger.Warn("AEGIS_ADMIN_TOKEN is not set, admin endpoints are open")
	}

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return app.hub.Run(ctx)
	})

	app.scheduler.Start()

	if app.cfg.ConfigFile != "" {
		watcher := &ConfigWatcher{
			Path:     app.cfg.ConfigFile,
			OnChange: app.applyReload,
			Logger:   app.logger,
		}
		eg.Go(func() error {
			// A broken watcher only loses hot reload.
			if err := watcher.Run(ctx); err != nil {
				app.logger.Error("config watcher stopped", "error", err)
			}
			return nil
		})
	}

	eg.Go(func() error {
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-ctx.Done()
		app.logger.Info("shutdown requested")
		return app.shutdownServer()
	})

	err := eg.Wait()
	app.scheduler.Stop()

	if cerr := app.db.Close(); cerr != nil {
		app.logger.Error("error closing store", "error", cerr)
		err = errors.Join(err, cerr)
	}

	app.logger.Info("aegis stopped")
	return err
}

// shutdownServer gives outstanding requests ShutdownGracePeriod to finish.
func (app *Application) shutdownServer() error {
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// applyReload applies the settings that can change without a restart.
func (app *Application) applyReload(cfg Config) {
	if cfg.LogLevel != app.cfg.LogLevel {
		slogx.SetLevel(cfg.LogLevel)
		app.logger.Info("log level changed", "from", app.cfg.LogLevel, "to", cfg.LogLevel)
	}
	if cfg.Intervals() != app.cfg.Intervals() {
		app.scheduler.SetIntervals(cfg.Intervals())
	}
	app.cfg.LogLevel = cfg.LogLevel
	app.cfg.KeyRotationAge = cfg.KeyRotationAge
	app.cfg.IntegrityInterval = cfg.IntegrityInterval
	app.cfg.StatusInterval = cfg.StatusInterval
}

// initStore opens the configured driver and applies migrations
func (app *Application) initStore() error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.StoreDriver {
	case DriverLevelDB:
		db, err = leveldb.NewStore(app.cfg.LevelDBDir)
	default:
		db, err = sqlite.NewStore(sqlite.DSN(app.cfg.DatabaseFile))
	}
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", app.cfg.StoreDriver, err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply store migrations: %w", err)
	}
	app.db = db

	attrs := []any{"driver", app.cfg.StoreDriver}
	if v, ok := db.(interface{ SchemaVersion() (uint, error) }); ok {
		if version, err := v.SchemaVersion(); err == nil {
			attrs = append(attrs, "schema_version", version)
		}
	}
	app.logger.Info("store ready", attrs...)
	return nil
}

// initServices wires the ledger, its services and the background scheduler.
func (app *Application) initServices(ctx context.Context) error {
	policy, err := service.ParsePolicy(app.cfg.TOTPPolicy)
	if err != nil {
		return err
	}

	app.hub = feed.NewHub(app.logger)

	app.totpService = &service.TOTPService{
		Store:  app.db,
		Sealer: app.sealers.TOTP,
		Issuer: app.cfg.TOTPIssuer,
		Period: uint(app.cfg.TOTPPeriod),
		Digits: app.cfg.TOTPDigits,
		Logger: app.logger,
		Feed:   app.hub,
	}
	if err := app.totpService.Init(ctx); err != nil {
		return err
	}

	app.signerService = &service.SignerService{
		KeyManager: app.keyManager,
		TOTP:       app.totpService,
		SingleUse:  policy == service.PolicySupplied,
	}

	app.ledger = chain.New(chain.Options{
		Store:  app.db,
		Signer: app.signerService,
		Logger: app.logger,
	})
	if err := app.ledger.Open(ctx); err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}

	app.alertService = &service.AlertService{
		Store:  app.db,
		Logger: app.logger,
		Feed:   app.hub,
	}

	app.auditService = &service.AuditService{
		Ledger:          app.ledger,
		TOTP:            app.totpService,
		KeyManager:      app.keyManager,
		Store:           app.db,
		Policy:          policy,
		MaxExportBlocks: app.cfg.MaxExportBlocks,
		Alerts:          app.alertService,
		Logger:          app.logger,
		Feed:            app.hub,
	}

	app.keyRotationService = &service.KeyRotationService{
		Store:      app.db,
		KeyManager: app.keyManager,
		Sealer:     app.sealers.Keys,
		Algorithm:  app.cfg.Algorithm,
		Logger:     app.logger,
		Feed:       app.hub,
		Ledger:     app.ledger,
	}

	app.scheduler = service.NewScheduler(
		app.auditService,
		app.keyRotationService,
		app.totpService,
		app.hub,
		app.logger,
		app.cfg.Intervals(),
	)
	app.scheduler.Alerts = app.alertService
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		BuildVersion,
		app.cfg.AdminToken,
		app.db,
		app.keyManager,
		app.hub,
		app.logger,
	)

	router.AuditService = app.auditService
	router.TOTPService = app.totpService
	router.KeyRotationService = app.keyRotationService
	router.AlertService = app.alertService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
