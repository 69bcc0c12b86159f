package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"climate-server/internal/modules/climate/types"
)

type mockQueries struct {
	precipitation    types.PrecipitationByDate
	precipitationErr error
	stations         []types.StationEntry
	stationsErr      error
	tobs             []types.TemperatureEntry
	tobsErr          error
	stats            types.TemperatureStats
	statsErr         error

	gotStart types.Date
	gotEnd   *types.Date
}

func (m *mockQueries) PrecipitationLastYear(ctx context.Context) (types.PrecipitationByDate, error) {
	return m.precipitation, m.precipitationErr
}

func (m *mockQueries) ListStations(ctx context.Context) ([]types.StationEntry, error) {
	return m.stations, m.stationsErr
}

func (m *mockQueries) TemperatureLastYearForBusiestStation(ctx context.Context) ([]types.TemperatureEntry, error) {
	return m.tobs, m.tobsErr
}

func (m *mockQueries) TemperatureStats(ctx context.Context, start types.Date, end *types.Date) (types.TemperatureStats, error) {
	m.gotStart, m.gotEnd = start, end
	if m.statsErr != nil {
		return types.TemperatureStats{}, m.statsErr
	}
	s := m.stats
	s.Start, s.End = start, end
	return s, nil
}

func newTestMux(q Queries) *http.ServeMux {
	mux := http.NewServeMux()
	NewClimateController(q).RegisterRoutes(mux)
	return mux
}

func serve(t *testing.T, mux *http.ServeMux, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func mustDate(s string) types.Date {
	d, err := types.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func fl(v float64) *float64 { return &v }

func Test_handleIndex(t *testing.T) {
	mux := newTestMux(&mockQueries{})

	t.Run("lists routes as plain text", func(t *testing.T) {
		rec := serve(t, mux, http.MethodGet, "/")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
			t.Errorf("Content-Type = %q; want text/plain", ct)
		}
		body := rec.Body.String()
		for _, route := range []string{"/api/v1.0/precipitation", "/api/v1.0/stations", "/api/v1.0/tobs"} {
			if !strings.Contains(body, route) {
				t.Errorf("body missing %s: %q", route, body)
			}
		}
	})

	t.Run("unknown path is 404", func(t *testing.T) {
		rec := serve(t, mux, http.MethodGet, "/nope")
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d; want %d", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("POST is not allowed", func(t *testing.T) {
		rec := serve(t, mux, http.MethodPost, "/api/v1.0/stations")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d; want %d", rec.Code, http.StatusMethodNotAllowed)
		}
	})
}

func Test_handlePrecipitation(t *testing.T) {
	t.Run("returns date keyed object", func(t *testing.T) {
		mux := newTestMux(&mockQueries{precipitation: types.PrecipitationByDate{
			"2017-08-20": fl(0.5),
			"2016-08-20": fl(0.2),
			"2017-01-01": nil,
		}})
		rec := serve(t, mux, http.MethodGet, "/api/v1.0/precipitation")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
			t.Errorf("Content-Type = %q; want application/json", ct)
		}
		want := `{"2016-08-20":0.2,"2017-01-01":null,"2017-08-20":0.5}`
		if got := strings.TrimSpace(rec.Body.String()); got != want {
			t.Errorf("body = %s; want %s", got, want)
		}
	})

	t.Run("empty dataset is a server error", func(t *testing.T) {
		mux := newTestMux(&mockQueries{precipitationErr: types.ErrEmptyDataset})
		rec := serve(t, mux, http.MethodGet, "/api/v1.0/precipitation")
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d; want %d", rec.Code, http.StatusInternalServerError)
		}
	})

	t.Run("storage error is a server error without driver details", func(t *testing.T) {
		err := &types.StorageError{Op: "max observation date", Err: errors.New("no such table: measurement")}
		mux := newTestMux(&mockQueries{precipitationErr: err})
		rec := serve(t, mux, http.MethodGet, "/api/v1.0/precipitation")
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d; want %d", rec.Code, http.StatusInternalServerError)
		}
		body := rec.Body.String()
		if !strings.Contains(body, "error") {
			t.Errorf("body = %q; expected error JSON", body)
		}
		if strings.Contains(body, "no such table") {
			t.Errorf("body = %q leaks storage details", body)
		}
	})
}

func Test_handleStations(t *testing.T) {
	t.Run("returns stations in order", func(t *testing.T) {
		mux := newTestMux(&mockQueries{stations: []types.StationEntry{
			{Station: "USC00519397", Name: "WAIKIKI 717.2, HI US"},
			{Station: "USC00513117", Name: "KANEOHE 838.1, HI US"},
		}})
		rec := serve(t, mux, http.MethodGet, "/api/v1.0/stations")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		var got []map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(got) != 2 || got[0]["Station"] != "USC00519397" || got[1]["Name"] != "KANEOHE 838.1, HI US" {
			t.Errorf("body = %v", got)
		}
	})

	t.Run("empty list is []", func(t *testing.T) {
		mux := newTestMux(&mockQueries{stations: []types.StationEntry{}})
		rec := serve(t, mux, http.MethodGet, "/api/v1.0/stations")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
			t.Errorf("body = %s; want []", got)
		}
	})

	t.Run("returns 500 when query fails", func(t *testing.T) {
		mux := newTestMux(&mockQueries{stationsErr: errors.New("db error")})
		rec := serve(t, mux, http.MethodGet, "/api/v1.0/stations")
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d; want %d", rec.Code, http.StatusInternalServerError)
		}
	})
}

func Test_handleTobs(t *testing.T) {
	t.Run("returns date/temperature array", func(t *testing.T) {
		mux := newTestMux(&mockQueries{tobs: []types.TemperatureEntry{
			{Date: mustDate("2016-08-23"), Temperature: 77},
			{Date: mustDate("2016-08-24"), Temperature: 77},
		}})
		rec := serve(t, mux, http.MethodGet, "/api/v1.0/tobs")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		want := `[{"Date":"2016-08-23","Temperature":77},{"Date":"2016-08-24","Temperature":77}]`
		if got := strings.TrimSpace(rec.Body.String()); got != want {
			t.Errorf("body = %s; want %s", got, want)
		}
	})

	t.Run("empty dataset is a server error", func(t *testing.T) {
		mux := newTestMux(&mockQueries{tobsErr: types.ErrEmptyDataset})
		rec := serve(t, mux, http.MethodGet, "/api/v1.0/tobs")
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d; want %d", rec.Code, http.StatusInternalServerError)
		}
	})
}

func Test_handleTemperatureStats(t *testing.T) {
	t.Run("start only", func(t *testing.T) {
		q := &mockQueries{stats: types.TemperatureStats{TMIN: fl(56), TAVG: fl(74.5), TMAX: fl(87)}}
		rec := serve(t, newTestMux(q), http.MethodGet, "/api/v1.0/2017-01-01")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		if !q.gotStart.Equal(mustDate("2017-01-01")) || q.gotEnd != nil {
			t.Errorf("query got start=%s end=%v", q.gotStart, q.gotEnd)
		}
		want := `{"Start":"2017-01-01","End":null,"TMIN":56,"TAVG":74.5,"TMAX":87}`
		if got := strings.TrimSpace(rec.Body.String()); got != want {
			t.Errorf("body = %s; want %s", got, want)
		}
	})

	t.Run("start and end", func(t *testing.T) {
		q := &mockQueries{}
		rec := serve(t, newTestMux(q), http.MethodGet, "/api/v1.0/2017-01-01/2017-01-31")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		if q.gotEnd == nil || !q.gotEnd.Equal(mustDate("2017-01-31")) {
			t.Errorf("query got end=%v, want 2017-01-31", q.gotEnd)
		}
	})

	t.Run("fixed routes win over the start pattern", func(t *testing.T) {
		q := &mockQueries{stations: []types.StationEntry{}}
		rec := serve(t, newTestMux(q), http.MethodGet, "/api/v1.0/stations")
		if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
			t.Errorf("status = %d body = %s", rec.Code, rec.Body.String())
		}
	})

	tests := []struct {
		name string
		path string
	}{
		{name: "malformed start", path: "/api/v1.0/yesterday"},
		{name: "malformed end", path: "/api/v1.0/2017-01-01/2017-13-01"},
		{name: "end before start", path: "/api/v1.0/2017-02-01/2017-01-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, newTestMux(&mockQueries{}), http.MethodGet, tt.path)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d; want %d", rec.Code, http.StatusBadRequest)
			}
			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if _, ok := body["error"]; !ok {
				t.Errorf("expected error field, got %v", body)
			}
			if _, ok := body["message"]; !ok {
				t.Errorf("expected message field, got %v", body)
			}
		})
	}

	t.Run("invalid range from queries is 400", func(t *testing.T) {
		q := &mockQueries{statsErr: types.ErrInvalidRange}
		rec := serve(t, newTestMux(q), http.MethodGet, "/api/v1.0/2017-01-01")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d; want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("storage failure is 500", func(t *testing.T) {
		q := &mockQueries{statsErr: &types.StorageError{Op: "temperature summary", Err: errors.New("boom")}}
		rec := serve(t, newTestMux(q), http.MethodGet, "/api/v1.0/2017-01-01")
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d; want %d", rec.Code, http.StatusInternalServerError)
		}
	})
}
