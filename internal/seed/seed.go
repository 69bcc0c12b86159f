// Package seed loads the Hawaii measurement and station CSV exports into SQLite.
package seed

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"climate-server/internal/modules/climate/types"
)

var (
	measurementColumns = []string{"station", "date", "prcp", "tobs"}
	stationColumns     = []string{"station", "name", "latitude", "longitude", "elevation"}
)

// Counts reports how many rows were inserted per table.
type Counts struct {
	Measurements int
	Stations     int
}

// Load inserts both CSVs inside a single transaction. Nothing is written when either
// file is malformed.
func Load(ctx context.Context, db *sql.DB, measurements, stations io.Reader) (Counts, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Counts{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var counts Counts
	counts.Measurements, err = loadMeasurements(ctx, tx, measurements)
	if err != nil {
		return Counts{}, fmt.Errorf("measurements: %w", err)
	}
	counts.Stations, err = loadStations(ctx, tx, stations)
	if err != nil {
		return Counts{}, fmt.Errorf("stations: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Counts{}, fmt.Errorf("commit: %w", err)
	}
	slog.Info("seed loaded", "measurements", counts.Measurements, "stations", counts.Stations)
	return counts, nil
}

func loadMeasurements(ctx context.Context, tx *sql.Tx, r io.Reader) (int, error) {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO measurement (station, date, prcp, tobs) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	return eachRecord(r, measurementColumns, func(line int, rec map[string]string) error {
		d, err := types.ParseDate(rec["date"])
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		prcp, err := optionalFloat(rec["prcp"])
		if err != nil {
			return fmt.Errorf("line %d: prcp: %w", line, err)
		}
		tobs, err := strconv.Atoi(rec["tobs"])
		if err != nil {
			return fmt.Errorf("line %d: tobs: %w", line, err)
		}
		_, err = stmt.ExecContext(ctx, rec["station"], d, prcp, tobs)
		return err
	})
}

func loadStations(ctx context.Context, tx *sql.Tx, r io.Reader) (int, error) {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO station (station, name, latitude, longitude, elevation) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	return eachRecord(r, stationColumns, func(line int, rec map[string]string) error {
		var coords [3]sql.NullFloat64
		for i, col := range stationColumns[2:] {
			v, err := optionalFloat(rec[col])
			if err != nil {
				return fmt.Errorf("line %d: %s: %w", line, col, err)
			}
			coords[i] = v
		}
		_, err := stmt.ExecContext(ctx, rec["station"], rec["name"], coords[0], coords[1], coords[2])
		return err
	})
}

// eachRecord reads a headed CSV and calls fn with the wanted columns of every row.
// Column order in the file does not matter; extra columns are ignored.
func eachRecord(r io.Reader, want []string, fn func(line int, rec map[string]string) error) (int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, errors.New("missing header")
		}
		return 0, err
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range want {
		if _, ok := index[col]; !ok {
			return 0, fmt.Errorf("missing column %q", col)
		}
	}

	n := 0
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		line, _ := reader.FieldPos(0)
		rec := make(map[string]string, len(want))
		for _, col := range want {
			rec[col] = strings.TrimSpace(fields[index[col]])
		}
		if err := fn(line, rec); err != nil {
			return n, err
		}
		n++
	}
}

func optionalFloat(s string) (sql.NullFloat64, error) {
	if s == "" {
		return sql.NullFloat64{}, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return sql.NullFloat64{}, err
	}
	return sql.NullFloat64{Float64: f, Valid: true}, nil
}
