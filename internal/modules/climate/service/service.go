// Package service derives the climate views served over HTTP from raw observation rows.
//
// Every operation opens its own storage session and resolves its own anchor date;
// nothing computed for one request is reused by another.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"climate-server/internal/modules/climate/repository"
	"climate-server/internal/modules/climate/types"
)

type Service struct {
	store  repository.Store
	logger *slog.Logger
}

func NewService(store repository.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// Window is the trailing one-year range ending at the most recent observation.
type Window struct {
	Start types.Date
	End   types.Date
}

// withSession opens a session, runs fn and closes the session on every path.
func (s *Service) withSession(ctx context.Context, op string, fn func(repository.Session) error) error {
	sess, err := s.store.Open(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if closeErr := sess.Close(); closeErr != nil {
			s.logger.Error("close session", "op", op, "error", closeErr)
		}
	}()
	if err := fn(sess); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func lastYearWindow(ctx context.Context, sess repository.Session) (Window, error) {
	latest, ok, err := sess.MaxObservationDate(ctx)
	if err != nil {
		return Window{}, err
	}
	if !ok {
		return Window{}, types.ErrEmptyDataset
	}
	return Window{Start: latest.YearEarlier(), End: latest}, nil
}

// PrecipitationLastYear returns precipitation keyed by date for the trailing year.
// When several rows share a date the last one in storage order wins; values are
// not aggregated.
func (s *Service) PrecipitationLastYear(ctx context.Context) (types.PrecipitationByDate, error) {
	var out types.PrecipitationByDate
	err := s.withSession(ctx, "precipitation last year", func(sess repository.Session) error {
		w, err := lastYearWindow(ctx, sess)
		if err != nil {
			return err
		}
		rows, err := sess.ObservationsInRange(ctx, w.Start, w.End)
		if err != nil {
			return err
		}
		out = make(types.PrecipitationByDate, len(rows))
		for _, r := range rows {
			out[r.Date.String()] = r.Precipitation
		}
		s.logger.Debug("precipitation view built",
			"start", w.Start.String(),
			"end", w.End.String(),
			"rows", len(rows),
			"dates", len(out),
		)
		return nil
	})
	return out, err
}

func (s *Service) ListStations(ctx context.Context) ([]types.StationEntry, error) {
	var out []types.StationEntry
	err := s.withSession(ctx, "list stations", func(sess repository.Session) error {
		rows, err := sess.Stations(ctx)
		if err != nil {
			return err
		}
		out = make([]types.StationEntry, 0, len(rows))
		for _, r := range rows {
			out = append(out, types.StationEntry{Station: r.Station, Name: r.Name})
		}
		return nil
	})
	return out, err
}

// TemperatureLastYearForBusiestStation returns every temperature reading of the
// station with the most observations, within the trailing year.
func (s *Service) TemperatureLastYearForBusiestStation(ctx context.Context) ([]types.TemperatureEntry, error) {
	var out []types.TemperatureEntry
	err := s.withSession(ctx, "temperature last year", func(sess repository.Session) error {
		station, ok, err := sess.BusiestStation(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return types.ErrEmptyDataset
		}
		w, err := lastYearWindow(ctx, sess)
		if err != nil {
			return err
		}
		rows, err := sess.StationObservationsInRange(ctx, station, w.Start, w.End)
		if err != nil {
			return err
		}
		out = make([]types.TemperatureEntry, 0, len(rows))
		for _, r := range rows {
			out = append(out, types.TemperatureEntry{Date: r.Date, Temperature: r.Temperature})
		}
		s.logger.Debug("temperature view built",
			"station", station,
			"start", w.Start.String(),
			"end", w.End.String(),
			"rows", len(rows),
		)
		return nil
	})
	return out, err
}

// TemperatureStats summarises temperatures from start onwards, up to end when given.
func (s *Service) TemperatureStats(ctx context.Context, start types.Date, end *types.Date) (types.TemperatureStats, error) {
	if end != nil && end.Before(start) {
		return types.TemperatureStats{}, types.ErrInvalidRange
	}
	stats := types.TemperatureStats{Start: start, End: end}
	err := s.withSession(ctx, "temperature stats", func(sess repository.Session) error {
		sum, err := sess.TemperatureSummary(ctx, start, end)
		if err != nil {
			return err
		}
		stats.TMIN, stats.TAVG, stats.TMAX = sum.Min, sum.Avg, sum.Max
		return nil
	})
	return stats, err
}

// Ping checks that a session can be opened and the store answers.
func (s *Service) Ping(ctx context.Context) error {
	return s.withSession(ctx, "ping", func(sess repository.Session) error {
		return sess.Ping(ctx)
	})
}
