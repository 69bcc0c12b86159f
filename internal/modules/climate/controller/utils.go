package controller

import (
	"fmt"
	"net/http"
	"strings"

	"climate-server/internal/modules/climate/types"
)

// parseStatsRange reads the {start} and optional {end} path segments.
func parseStatsRange(r *http.Request) (start types.Date, end *types.Date, err error) {
	start, err = parsePathDate(r, "start")
	if err != nil {
		return types.Date{}, nil, err
	}
	if strings.TrimSpace(r.PathValue("end")) == "" {
		return start, nil, nil
	}
	e, err := parsePathDate(r, "end")
	if err != nil {
		return types.Date{}, nil, err
	}
	if e.Before(start) {
		return types.Date{}, nil, fmt.Errorf("'end' (%s) must be >= 'start' (%s)", e, start)
	}
	return start, &e, nil
}

func parsePathDate(r *http.Request, name string) (types.Date, error) {
	s := strings.TrimSpace(r.PathValue(name))
	if s == "" {
		return types.Date{}, fmt.Errorf("missing '%s' date", name)
	}
	d, err := types.ParseDate(s)
	if err != nil {
		return types.Date{}, fmt.Errorf("invalid '%s' (expected YYYY-MM-DD)", name)
	}
	return d, nil
}
