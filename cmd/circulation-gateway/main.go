// Command circulation-gateway serves the circulation backend contract on a memory or PostgreSQL store.
//
// Configuration comes from the environment (optionally via a .env file) or the YAML file named by
// CONFIG_PATH. See config.GatewayConfig for all settings.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/AntonStoeckl/circulation-desk/apiclient/oteladapters"
	"github.com/AntonStoeckl/circulation-desk/config"
	"github.com/AntonStoeckl/circulation-desk/gateway"
	"github.com/AntonStoeckl/circulation-desk/gateway/memstore"
	"github.com/AntonStoeckl/circulation-desk/gateway/postgresstore"
)

const telemetryScope = "github.com/AntonStoeckl/circulation-desk/gateway"

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "circulation-gateway: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.LoadGateway()
	if err != nil {
		return err
	}

	logger := config.NewLogger(cfg.Log)
	contextualLogger := oteladapters.NewSlogBridgeLoggerFromSlog(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := config.NewObservabilityProviders(ctx, cfg.Telemetry, version)
	if err != nil {
		return err
	}
	defer shutdownProviders(providers, cfg.Server.ShutdownTimeout, logger)

	directory := memstore.New()

	circulation, closeStore, err := openCirculation(ctx, cfg, directory, logger, contextualLogger)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.Store.SeedDemoData {
		if err := seed(ctx, circulation, directory, logger); err != nil {
			return err
		}
	}

	tokens, err := gateway.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL, nil)
	if err != nil {
		return err
	}

	serverOptions := []gateway.Option{
		gateway.WithLogger(logger),
		gateway.WithContextualLogger(contextualLogger),
		gateway.WithCORS(corsOptions(cfg.CORS)),
	}
	if providers.Enabled() {
		serverOptions = append(serverOptions,
			gateway.WithMetrics(oteladapters.NewMetricsCollector(providers.Meter(telemetryScope))),
			gateway.WithTracing(oteladapters.NewTracingCollector(providers.Tracer(telemetryScope))),
		)
	}

	server, err := gateway.NewServer(circulation, directory, tokens, serverOptions...)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("gateway listening",
			"addr", httpServer.Addr,
			"store", cfg.Store.Driver,
			"telemetry", providers.Enabled(),
			"version", version,
		)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down gateway")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

// openCirculation returns the configured circulation store and a func releasing its connections.
// PostgreSQL schemas are migrated before the store is used.
func openCirculation(
	ctx context.Context,
	cfg *config.GatewayConfig,
	memory *memstore.Store,
	logger *slog.Logger,
	contextualLogger *oteladapters.SlogBridgeLogger,
) (gateway.Circulation, func(), error) {

	storeOptions := []postgresstore.Option{
		postgresstore.WithLogger(logger),
		postgresstore.WithContextualLogger(contextualLogger),
	}

	switch cfg.Store.Driver {
	case config.StoreDriverPGX:
		// goose needs database/sql, so the migration runs on its own short-lived handle.
		if err := migrateWithSQLDB(ctx, cfg.Database, logger); err != nil {
			return nil, nil, err
		}

		pool, err := config.OpenPGXPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}

		store, err := postgresstore.FromPGXPool(pool, storeOptions...)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}

		return store, pool.Close, nil

	case config.StoreDriverSQL:
		db, err := config.OpenSQLDB(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}

		closeDB := func() { _ = db.Close() }

		if err := migrate(ctx, db, logger); err != nil {
			closeDB()
			return nil, nil, err
		}

		store, err := postgresstore.FromSQLDB(db, storeOptions...)
		if err != nil {
			closeDB()
			return nil, nil, err
		}

		return store, closeDB, nil

	case config.StoreDriverSQLX:
		db, err := config.OpenSQLX(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}

		closeDB := func() { _ = db.Close() }

		if err := migrate(ctx, db.DB, logger); err != nil {
			closeDB()
			return nil, nil, err
		}

		store, err := postgresstore.FromSQLX(db, storeOptions...)
		if err != nil {
			closeDB()
			return nil, nil, err
		}

		return store, closeDB, nil

	default:
		return memory, func() {}, nil
	}
}

func migrateWithSQLDB(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) error {
	db, err := config.OpenSQLDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	return migrate(ctx, db, logger)
}

func migrate(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	applied, err := postgresstore.Migrate(ctx, db)
	if err != nil {
		return err
	}

	logger.Info("circulation schema ready", "migrations_applied", applied)

	return nil
}

// seed always fills the in-memory directory. Books are only seeded into an empty catalog,
// so a restarted PostgreSQL gateway keeps its availability.
func seed(ctx context.Context, circulation gateway.Circulation, directory gateway.Directory, logger *slog.Logger) error {
	if err := gateway.SeedDirectory(ctx, directory); err != nil {
		return err
	}

	existing, err := circulation.ListBooks(ctx, gateway.BookFilter{Page: gateway.Page{Number: 1, Size: 1}})
	if err != nil {
		return fmt.Errorf("seed: count books: %w", err)
	}

	if existing.Total > 0 {
		logger.Info("catalog not empty, skipping demo books", "books", existing.Total)
		return nil
	}

	if err := gateway.SeedCatalog(ctx, circulation); err != nil {
		return err
	}

	logger.Info("demo data seeded", "password", gateway.DemoPassword, "member", gateway.DemoMemberEmail)

	return nil
}

func corsOptions(cfg config.CORSConfig) cors.Options {
	return cors.Options{
		AllowedOrigins:   cfg.Origins(),
		AllowedMethods:   cfg.Methods(),
		AllowedHeaders:   cfg.Headers(),
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
}

func shutdownProviders(providers *config.ObservabilityProviders, timeout time.Duration, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := providers.Shutdown(ctx); err != nil {
		logger.Warn("telemetry shutdown failed", "error", err.Error())
	}
}
