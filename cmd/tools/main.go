package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"climate-server/internal/config"
	"climate-server/internal/db"
	"climate-server/internal/logging"
	"climate-server/internal/migrate"
	"climate-server/internal/seed"
)

const usage = `usage: %s <command>
  migrate                                   apply pending schema migrations
  seed <measurements.csv> <stations.csv>    load the Hawaii CSV exports
`

var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, usage, os.Args[0])
		} else {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) < 1 {
		return errUsage
	}
	switch args[0] {
	case "migrate":
		if len(args) != 1 {
			return errUsage
		}
	case "seed":
		if len(args) != 3 {
			return errUsage
		}
	default:
		return fmt.Errorf("unknown command: %s", args[0])
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if cfg.Driver != config.DriverSQLite {
		return fmt.Errorf("tools only support DB_DRIVER=%s", config.DriverSQLite)
	}
	cfg.SQLitePath = filepath.Clean(cfg.SQLitePath)
	// The tools create the dataset file, so never open it read-write-only.
	cfg.Migrate = true

	slog.SetDefault(logging.New(os.Stderr, cfg, "dev", "climate-tools"))

	conn, err := db.Open(cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("db open: %w", err)
	}
	defer func() {
		if closeErr := db.Close(conn); closeErr != nil {
			slog.Error("db close", "err", closeErr)
		}
	}()

	ctx := context.Background()
	if err := migrate.Run(ctx, conn); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	if args[0] == "migrate" {
		fmt.Println("migrations applied")
		return nil
	}

	counts, err := seedFiles(ctx, conn, args[1], args[2])
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	fmt.Printf("seeded %d measurements, %d stations\n", counts.Measurements, counts.Stations)
	return nil
}

func seedFiles(ctx context.Context, conn *sql.DB, measurementsPath, stationsPath string) (seed.Counts, error) {
	measurements, err := os.Open(measurementsPath)
	if err != nil {
		return seed.Counts{}, err
	}
	defer measurements.Close()

	stations, err := os.Open(stationsPath)
	if err != nil {
		return seed.Counts{}, err
	}
	defer stations.Close()

	return seed.Load(ctx, conn, measurements, stations)
}
