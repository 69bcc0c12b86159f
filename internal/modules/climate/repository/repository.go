package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"log/slog"

	"climate-server/internal/modules/climate/types"
)

//go:embed sql/max-observation-date.sql
var maxObservationDateSQL string

//go:embed sql/get-observations-in-range.sql
var getObservationsInRangeSQL string

//go:embed sql/get-stations.sql
var getStationsSQL string

//go:embed sql/get-busiest-station.sql
var getBusiestStationSQL string

//go:embed sql/get-station-observations-in-range.sql
var getStationObservationsInRangeSQL string

//go:embed sql/get-temperature-summary.sql
var getTemperatureSummarySQL string

// Store hands out request-scoped sessions over the observation dataset.
type Store interface {
	Open(ctx context.Context) (Session, error)
}

// Session is a read-only view over one dedicated connection. Callers must Close it.
//
// Observation rows come back ordered by date and then by load order (id); station
// rows by load order. The busiest station is the one with the most observation rows,
// ties going to the smallest station id.
type Session interface {
	MaxObservationDate(ctx context.Context) (types.Date, bool, error)
	ObservationsInRange(ctx context.Context, start, end types.Date) ([]types.PrecipitationRow, error)
	Stations(ctx context.Context) ([]types.StationRow, error)
	BusiestStation(ctx context.Context) (string, bool, error)
	StationObservationsInRange(ctx context.Context, station string, start, end types.Date) ([]types.TemperatureRow, error)
	TemperatureSummary(ctx context.Context, start types.Date, end *types.Date) (types.TemperatureSummary, error)
	Ping(ctx context.Context) error
	Close() error
}

type sqliteStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) Store {
	return &sqliteStore{db: db}
}

func (s *sqliteStore) Open(ctx context.Context) (Session, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, types.WrapStorage("open session", err)
	}
	return &sqliteSession{conn: conn}, nil
}

type sqliteSession struct {
	conn *sql.Conn
}

func (s *sqliteSession) Close() error {
	return s.conn.Close()
}

func (s *sqliteSession) Ping(ctx context.Context) error {
	return types.WrapStorage("ping", s.conn.PingContext(ctx))
}

func (s *sqliteSession) MaxObservationDate(ctx context.Context) (types.Date, bool, error) {
	var d types.Date
	if err := s.conn.QueryRowContext(ctx, maxObservationDateSQL).Scan(&d); err != nil {
		return types.Date{}, false, types.WrapStorage("max observation date", err)
	}
	// MAX over an empty table yields a single NULL row.
	return d, !d.IsZero(), nil
}

func (s *sqliteSession) ObservationsInRange(ctx context.Context, start, end types.Date) ([]types.PrecipitationRow, error) {
	rows, err := s.conn.QueryContext(ctx, getObservationsInRangeSQL, start, end)
	if err != nil {
		return nil, types.WrapStorage("observations in range", err)
	}
	defer closeRows(rows, "observations in range")

	var out []types.PrecipitationRow
	for rows.Next() {
		var r types.PrecipitationRow
		var prcp sql.NullFloat64
		if err := rows.Scan(&r.Date, &prcp); err != nil {
			return nil, types.WrapStorage("scan observation", err)
		}
		if prcp.Valid {
			v := prcp.Float64
			r.Precipitation = &v
		}
		out = append(out, r)
	}
	return out, types.WrapStorage("observations in range", rows.Err())
}

func (s *sqliteSession) Stations(ctx context.Context) ([]types.StationRow, error) {
	rows, err := s.conn.QueryContext(ctx, getStationsSQL)
	if err != nil {
		return nil, types.WrapStorage("stations", err)
	}
	defer closeRows(rows, "stations")

	var out []types.StationRow
	for rows.Next() {
		var st types.StationRow
		var name sql.NullString
		if err := rows.Scan(&st.Station, &name); err != nil {
			return nil, types.WrapStorage("scan station", err)
		}
		st.Name = name.String
		out = append(out, st)
	}
	return out, types.WrapStorage("stations", rows.Err())
}

func (s *sqliteSession) BusiestStation(ctx context.Context) (string, bool, error) {
	var station string
	err := s.conn.QueryRowContext(ctx, getBusiestStationSQL).Scan(&station)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, types.WrapStorage("busiest station", err)
	}
	return station, true, nil
}

func (s *sqliteSession) StationObservationsInRange(ctx context.Context, station string, start, end types.Date) ([]types.TemperatureRow, error) {
	rows, err := s.conn.QueryContext(ctx, getStationObservationsInRangeSQL, station, start, end)
	if err != nil {
		return nil, types.WrapStorage("station observations in range", err)
	}
	defer closeRows(rows, "station observations in range")

	var out []types.TemperatureRow
	for rows.Next() {
		var r types.TemperatureRow
		if err := rows.Scan(&r.Date, &r.Temperature); err != nil {
			return nil, types.WrapStorage("scan temperature", err)
		}
		out = append(out, r)
	}
	return out, types.WrapStorage("station observations in range", rows.Err())
}

func (s *sqliteSession) TemperatureSummary(ctx context.Context, start types.Date, end *types.Date) (types.TemperatureSummary, error) {
	var endArg any
	if end != nil {
		endArg = *end
	}
	var lo, avg, hi sql.NullFloat64
	err := s.conn.QueryRowContext(ctx, getTemperatureSummarySQL, start, endArg, endArg).Scan(&lo, &avg, &hi)
	if err != nil {
		return types.TemperatureSummary{}, types.WrapStorage("temperature summary", err)
	}
	return types.TemperatureSummary{
		Min: nullFloat(lo),
		Avg: nullFloat(avg),
		Max: nullFloat(hi),
	}, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func closeRows(rows *sql.Rows, what string) {
	if err := rows.Close(); err != nil {
		slog.Error("close rows", "query", what, "error", err)
	}
}
