package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
	trmcontext "github.com/avito-tech/go-transaction-manager/trm/v2/context"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lisenok-cargo/cargomanager/internal/auth"
	"github.com/lisenok-cargo/cargomanager/internal/config"
	"github.com/lisenok-cargo/cargomanager/internal/currency"
	"github.com/lisenok-cargo/cargomanager/internal/orders"
	"github.com/lisenok-cargo/cargomanager/pkg/accesslog"
	"github.com/lisenok-cargo/cargomanager/pkg/logger"
	"github.com/lisenok-cargo/cargomanager/pkg/unzip"
	"github.com/nanmu42/gzip"
	"github.com/shopspring/decimal"
	sqldblogger "github.com/simukti/sqldb-logger"
)

// Version indicates the current version of the application.
var Version = "1.0.0"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Server run context.
	serverCtx, serverStopCtx := context.WithCancel(context.Background())
	defer serverStopCtx()

	// Monetary values travel as plain JSON numbers, matching the
	// dashboard's wire format.
	decimal.MarshalJSONWithoutQuotes = true

	// Load application configurations.
	cfg := config.MustLoad()

	// Create root logger tagged with server version.
	logger := logger.New(logger.Config{
		Path:       cfg.Logger.Path,
		Level:      cfg.Logger.Level,
		MaxSizeMB:  cfg.Logger.MaxSizeMB,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAgeDays: cfg.Logger.MaxAgeDays,
	}).With(serverCtx, "version", Version)

	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to open the database: %w", err)
	}

	// Log every query to the database.
	db = sqldblogger.OpenDriver(cfg.DSN, db.Driver(), logger)

	// Check connectivity and DSN correctness.
	if err = db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to the database: %w", err)
	}

	// Close connection.
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error(err)
		}
		_ = logger.Sync()
	}()

	// Bring the schema up to date.
	if err = runMigrations(cfg); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create default transaction manager for database/sql package.
	trManager := manager.Must(
		trmsql.NewDefaultFactory(db),
		manager.WithCtxManager(trmcontext.DefaultManager),
	)

	// Init repository and service serving operator accounts.
	authRepo, err := auth.NewRepository(db, trmsql.DefaultCtxGetter, logger)
	if err != nil {
		return fmt.Errorf("failed to init auth repository: %w", err)
	}
	authService, err := auth.NewService(authRepo, logger, cfg)
	if err != nil {
		return fmt.Errorf("failed to init auth service: %w", err)
	}

	// Init repository and service serving currency rates.
	currencyRepo, err := currency.NewRepository(db, logger)
	if err != nil {
		return fmt.Errorf("failed to init currency repository: %w", err)
	}
	currencyService, err := currency.NewService(currencyRepo, logger, cfg)
	if err != nil {
		return fmt.Errorf("failed to init currency service: %w", err)
	}
	if err = currencyService.Load(serverCtx); err != nil {
		return fmt.Errorf("failed to load currency rates: %w", err)
	}

	// Init repository and service serving orders.
	ordersRepo, err := orders.NewRepository(db, trmsql.DefaultCtxGetter, logger)
	if err != nil {
		return fmt.Errorf("failed to init orders repository: %w", err)
	}
	ordersService, err := orders.NewService(ordersRepo, currencyService, trManager, logger, cfg)
	if err != nil {
		return fmt.Errorf("failed to init orders service: %w", err)
	}

	// Create root router.
	router := initRootRouter(logger)

	// Init and group handlers per route domain. Mutating routes require
	// an authenticated operator; read routes stay open for the dashboard.
	_ = auth.HandlerWithOptions(authService, auth.ChiServerOptions{
		BaseURL:          "/api",
		BaseRouter:       router,
		ErrorHandlerFunc: auth.ErrorHandlerFunc,
	})

	_ = orders.HandlerWithOptions(ordersService, orders.ChiServerOptions{
		BaseURL:          "/api",
		BaseRouter:       router,
		Middlewares:      []orders.MiddlewareFunc{authService.Middleware},
		ErrorHandlerFunc: orders.ErrorHandlerFunc,
	})

	_ = currency.HandlerWithOptions(currencyService, currency.ChiServerOptions{
		BaseURL:           "/api",
		BaseRouter:        router,
		UpdateMiddlewares: []currency.MiddlewareFunc{authService.Middleware},
		ErrorHandlerFunc:  currency.ErrorHandlerFunc,
	})

	// Build HTTP server.
	hs := &http.Server{
		Addr:              cfg.HTTPServer.Address,
		ReadHeaderTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:       cfg.HTTPServer.IdleTimeout,
		Handler:           router,
	}

	// Graceful shutdown.
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT,
			syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)

		signal := <-sig

		logger.With(serverCtx, "signal", signal.String()).
			Infof("Shutting down server with %s timeout",
				cfg.HTTPServer.ShutdownTimeout)

		if err = hs.Shutdown(serverCtx); err != nil {
			logger.Errorf("graceful shutdown failed: %s", err)
		}
		serverStopCtx()
	}()

	// Start the HTTP server with graceful shutdown.
	logger.Infof("Server %v is running at %v", Version, cfg.HTTPServer.Address)
	if err = hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("run server failed: %w", err)
	}

	// Wait for server context to be stopped or force exit if timeout exceeded.
	select {
	case <-serverCtx.Done():
	case <-time.After(cfg.HTTPServer.ShutdownTimeout):
		return errors.New("graceful shutdown timed out.. forcing exit")
	}

	return nil
}

func runMigrations(cfg *config.Config) error {
	m, err := migrate.New("file://"+cfg.MigrationsPath, cfg.DSN)
	if err != nil {
		return err
	}
	defer m.Close()

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}

func initRootRouter(logger logger.Logger) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(accesslog.Handler(logger))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
	}))
	router.Use(gzip.DefaultHandler().WrapHandler)
	router.Use(unzip.Middleware(logger))

	return router
}
