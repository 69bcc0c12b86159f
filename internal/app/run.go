package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"climate-server/internal/config"
	db "climate-server/internal/db"
	httpapi "climate-server/internal/httpapi"
	"climate-server/internal/migrate"
	climate "climate-server/internal/modules/climate"
	"climate-server/internal/modules/climate/repository"
)

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"dbDriver", cfg.Driver,
		"sqlitePath", cfg.SQLitePath,
		"dbMaxOpenConns", cfg.MaxOpenConns,
		"dbMaxIdleConns", cfg.MaxIdleConns,
		"dbConnMaxLifetime", cfg.ConnMaxLifetime,
		"dbMigrate", cfg.Migrate,
		"sqlLog", cfg.SQLLog,
	)

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	mux := http.NewServeMux()
	climateService := climate.RegisterFeature(mux, store, slog.Default())
	if err := climateService.Ping(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	slog.Info("database connection successful")

	healthMux := httpapi.NewMux(climateService)
	healthMux.Handle("/", mux)

	srv := httpapi.NewServer(cfg, healthMux)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}

// openStore opens the configured backend and returns the store with its release func.
func openStore(ctx context.Context, cfg config.Config) (repository.Store, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := db.OpenPostgres(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewPostgresStore(pool), pool.Close, nil
	default:
		dbConn, err := db.Open(cfg, slog.Default())
		if err != nil {
			return nil, nil, err
		}
		closeDB := func() {
			if closeErr := db.Close(dbConn); closeErr != nil {
				slog.Error("db close", "error", closeErr)
			}
		}
		if cfg.Migrate {
			if err := migrate.Run(ctx, dbConn); err != nil {
				closeDB()
				return nil, nil, err
			}
		}
		return repository.NewStore(dbConn), closeDB, nil
	}
}
