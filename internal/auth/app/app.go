package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/gatekeeper/internal/auth/http"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/service"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	redisdriver "github.com/aussiebroadwan/gatekeeper/internal/auth/store/drivers/redis"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/gatekeeper/pkg/jwtx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db         *sqlite.Store
	keyManager *jwtx.KeyManager
	attempts   store.AttemptCounter
	redis      *redis.Client // nil unless AUTH_REDIS_URL is set

	// Services
	sessionService      *service.SessionService
	twoFactorService    *service.TwoFactorService
	loginService        *service.LoginService
	accountService      *service.AccountService
	adminService        *service.AdminService
	oauthService        *service.OAuthService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService

	// HTTP server
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

	keyManager, err := InitAuthKeys(app.cfg, app.logger)
	if err != nil {
		return nil, err
	}
	app.keyManager = keyManager

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initAttemptCounter(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

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

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(sqlite.DSN(app.cfg.DatabaseFile))
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

// initAttemptCounter picks where 2FA failures are counted. Redis is used
// when configured so several replicas share one count.
func (app *Application) initAttemptCounter() error {
	if app.cfg.RedisURL == "" {
		app.attempts = sqlite.NewAttemptCounter(app.db, app.cfg.TwoFactorLockout)
		app.logger.Info("2fa attempt counter: sqlite")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rdb, err := redisdriver.NewClient(ctx, app.cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	app.redis = rdb
	app.attempts = redisdriver.NewAttemptCounter(rdb, app.cfg.TwoFactorLockout)
	app.logger.Info("2fa attempt counter: redis")
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.sessionService = &service.SessionService{
		Store: app.db,
		TTL:   app.cfg.SessionTTL,
	}
	app.twoFactorService = &service.TwoFactorService{
		Store:  app.db,
		Issuer: app.cfg.Issuer,
	}
	app.loginService = &service.LoginService{
		Store:       app.db,
		Sessions:    app.sessionService,
		TwoFactor:   app.twoFactorService,
		Keys:        app.keyManager,
		Attempts:    app.attempts,
		TicketTTL:   app.cfg.TwoFactorTicketTTL,
		MaxAttempts: app.cfg.TwoFactorMaxAttempts,
	}
	app.accountService = &service.AccountService{
		Store:         app.db,
		Tokens:        &service.TokenIssuer{Store: app.db},
		Sessions:      app.sessionService,
		Mailer:        service.LogMailer{Logger: app.logger, RevealLinks: app.cfg.Env == "dev"},
		PublicURL:     app.cfg.PublicURL,
		ActivationTTL: app.cfg.ActivationTTL,
		ResetTTL:      app.cfg.ResetTTL,
	}
	app.adminService = &service.AdminService{
		Store:    app.db,
		Sessions: app.sessionService,
	}

	providers := map[string]service.Provider{}
	if oc := app.cfg.OAuth; oc.Enabled() {
		providers[oc.Provider] = &service.OIDCProvider{
			ProviderName: oc.Provider,
			ClientID:     oc.ClientID,
			ClientSecret: oc.ClientSecret,
			AuthURL:      oc.AuthURL,
			TokenURL:     oc.TokenURL,
			RedirectURL:  oc.RedirectURL,
			Issuer:       oc.Issuer,
			HTTPClient:   &http.Client{Timeout: 10 * time.Second},
		}
		app.logger.Info("oauth provider configured", "provider", oc.Provider)
	}
	app.oauthService = &service.OAuthService{
		Store:     app.db,
		Login:     app.loginService,
		Keys:      app.keyManager,
		Providers: providers,
		TicketTTL: app.cfg.OAuthTicketTTL,
	}

	app.bootstrapService = &service.BootstrapService{
		Store: app.db,
		Token: app.cfg.BootstrapToken,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.attempts,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.SessionPurgeAfter,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keyManager,
		BuildVersion,
		app.db,
		httpapi.Cookies{Secure: app.cfg.CookieSecure},
		app.logger,
	)

	router.SessionService = app.sessionService
	router.LoginService = app.loginService
	router.AccountService = app.accountService
	router.TwoFactorService = app.twoFactorService
	router.AdminService = app.adminService
	router.OAuthService = app.oauthService
	router.BootstrapService = app.bootstrapService
	if app.redis != nil {
		rdb := app.redis
		router.CounterPing = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
