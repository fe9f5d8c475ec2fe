package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	httpapi "github.com/YassineIdiri/expense-tracker/internal/http"
	"github.com/YassineIdiri/expense-tracker/internal/mail"
	"github.com/YassineIdiri/expense-tracker/internal/service"
	"github.com/YassineIdiri/expense-tracker/internal/store"
	"github.com/YassineIdiri/expense-tracker/internal/store/drivers/sqlite"
	"github.com/YassineIdiri/expense-tracker/pkg/cryptox"
	"github.com/YassineIdiri/expense-tracker/pkg/httpx"
	"github.com/YassineIdiri/expense-tracker/pkg/jwtx"
	"github.com/YassineIdiri/expense-tracker/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db      store.Store
	keypair *jwtx.Keypair

	sessionService      *service.SessionService
	resetService        *service.PasswordResetService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	keypair, err := InitSigningKey(app.cfg.SigningKeyFile, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.keypair = keypair

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.sessionService = &service.SessionService{
		Store:       app.db,
		Credentials: &service.CredentialVerifier{Store: app.db},
		Access: &service.AccessTokenCodec{
			Keypair:   app.keypair,
			Issuer:    app.cfg.Issuer,
			AccessTTL: app.cfg.AccessTTL,
		},
		Refresh: &service.RefreshTokenService{
			Store:               app.db,
			RefreshTTL:          app.cfg.RefreshTTL,
			RememberMeTTL:       app.cfg.RememberMeTTL,
			ExtendOnRotate:      app.cfg.ExtendOnRotate,
			RevokeFamilyOnReuse: app.cfg.RevokeFamilyOnReuse,
		},
	}

	app.resetService = &service.PasswordResetService{
		Store:    app.db,
		Mailer:   app.newMailer(),
		ResetTTL: app.cfg.ResetTTL,
		BaseURL:  app.cfg.BaseURL,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.HousekeepingRetain,
	)
}

// newMailer picks the SMTP relay when one is configured, otherwise outgoing
// mail lands in the log.
func (app *Application) newMailer() mail.Mailer {
	if app.cfg.SMTPAddr == "" {
		app.logger.Warn("no SMTP relay configured, outgoing mail will be logged")
		return mail.LogMailer{}
	}

	host := app.cfg.SMTPAddr
	if i := strings.LastIndex(host, ":"); i >= 0 {
		host = host[:i]
	}
	return &mail.SMTPMailer{
		Addr:     app.cfg.SMTPAddr,
		From:     app.cfg.SMTPFrom,
		Username: app.cfg.SMTPUser,
		Password: app.cfg.SMTPPass,
		Host:     host,
	}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	app.router = httpapi.NewRouter(app.db, app.logger, BuildVersion, httpx.CookieConfig{
		Name:     app.cfg.CookieName,
		Path:     app.cfg.CookiePath,
		Secure:   app.cfg.CookieSecure,
		SameSite: app.cfg.CookieSameSite,
	})
	app.router.Sessions = app.sessionService
	app.router.Resets = app.resetService
	app.router.ApplyRoutes()

	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.Port),
		Handler: app.router,
	}
}
