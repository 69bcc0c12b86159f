package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"climate-server/internal/modules/climate/types"
)

// PostgreSQL variants of the queries in sql/. The measurement.date column is expected
// to be of type DATE.
const (
	pgMaxObservationDateSQL = `SELECT MAX(date) FROM measurement`

	pgObservationsInRangeSQL = `
		SELECT date, prcp
		FROM measurement
		WHERE date >= $1 AND date <= $2
		ORDER BY date, id`

	pgStationsSQL = `
		SELECT station, COALESCE(name, '')
		FROM station
		ORDER BY id`

	pgBusiestStationSQL = `
		SELECT station
		FROM measurement
		GROUP BY station
		ORDER BY COUNT(*) DESC, station ASC
		LIMIT 1`

	pgStationObservationsInRangeSQL = `
		SELECT date, tobs
		FROM measurement
		WHERE station = $1 AND date >= $2 AND date <= $3
		ORDER BY date, id`

	pgTemperatureSummarySQL = `
		SELECT MIN(tobs)::float8, AVG(tobs)::float8, MAX(tobs)::float8
		FROM measurement
		WHERE date >= $1 AND ($2::date IS NULL OR date <= $2::date)`
)

type postgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore serves the same dataset from PostgreSQL through a pgx pool.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &postgresStore{pool: pool}
}

func (s *postgresStore) Open(ctx context.Context) (Session, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, types.WrapStorage("open session", err)
	}
	return &postgresSession{conn: conn}, nil
}

type postgresSession struct {
	conn *pgxpool.Conn
}

func (s *postgresSession) Close() error {
	s.conn.Release()
	return nil
}

func (s *postgresSession) Ping(ctx context.Context) error {
	return types.WrapStorage("ping", s.conn.Ping(ctx))
}

func (s *postgresSession) MaxObservationDate(ctx context.Context) (types.Date, bool, error) {
	var latest *time.Time
	if err := s.conn.QueryRow(ctx, pgMaxObservationDateSQL).Scan(&latest); err != nil {
		return types.Date{}, false, types.WrapStorage("max observation date", err)
	}
	if latest == nil {
		return types.Date{}, false, nil
	}
	return types.DateOf(*latest), true, nil
}

func (s *postgresSession) ObservationsInRange(ctx context.Context, start, end types.Date) ([]types.PrecipitationRow, error) {
	rows, err := s.conn.Query(ctx, pgObservationsInRangeSQL, start.Time(), end.Time())
	if err != nil {
		return nil, types.WrapStorage("observations in range", err)
	}
	defer rows.Close()

	var out []types.PrecipitationRow
	for rows.Next() {
		var d time.Time
		var prcp *float64
		if err := rows.Scan(&d, &prcp); err != nil {
			return nil, types.WrapStorage("scan observation", err)
		}
		out = append(out, types.PrecipitationRow{Date: types.DateOf(d), Precipitation: prcp})
	}
	return out, types.WrapStorage("observations in range", rows.Err())
}

func (s *postgresSession) Stations(ctx context.Context) ([]types.StationRow, error) {
	rows, err := s.conn.Query(ctx, pgStationsSQL)
	if err != nil {
		return nil, types.WrapStorage("stations", err)
	}
	defer rows.Close()

	var out []types.StationRow
	for rows.Next() {
		var st types.StationRow
		if err := rows.Scan(&st.Station, &st.Name); err != nil {
			return nil, types.WrapStorage("scan station", err)
		}
		out = append(out, st)
	}
	return out, types.WrapStorage("stations", rows.Err())
}

func (s *postgresSession) BusiestStation(ctx context.Context) (string, bool, error) {
	var station string
	err := s.conn.QueryRow(ctx, pgBusiestStationSQL).Scan(&station)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, types.WrapStorage("busiest station", err)
	}
	return station, true, nil
}

func (s *postgresSession) StationObservationsInRange(ctx context.Context, station string, start, end types.Date) ([]types.TemperatureRow, error) {
	rows, err := s.conn.Query(ctx, pgStationObservationsInRangeSQL, station, start.Time(), end.Time())
	if err != nil {
		return nil, types.WrapStorage("station observations in range", err)
	}
	defer rows.Close()

	var out []types.TemperatureRow
	for rows.Next() {
		var d time.Time
		var r types.TemperatureRow
		if err := rows.Scan(&d, &r.Temperature); err != nil {
			return nil, types.WrapStorage("scan temperature", err)
		}
		r.Date = types.DateOf(d)
		out = append(out, r)
	}
	return out, types.WrapStorage("station observations in range", rows.Err())
}

func (s *postgresSession) TemperatureSummary(ctx context.Context, start types.Date, end *types.Date) (types.TemperatureSummary, error) {
	var endArg *time.Time
	if end != nil {
		t := end.Time()
		endArg = &t
	}
	var sum types.TemperatureSummary
	err := s.conn.QueryRow(ctx, pgTemperatureSummarySQL, start.Time(), endArg).Scan(&sum.Min, &sum.Avg, &sum.Max)
	if err != nil {
		return types.TemperatureSummary{}, types.WrapStorage("temperature summary", err)
	}
	return sum, nil
}
