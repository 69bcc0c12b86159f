package controller

import (
	"context"
	"net/http"

	"climate-server/internal/modules/climate/types"
)

// Queries is the read side the controller serves. *service.Service satisfies it.
type Queries interface {
	PrecipitationLastYear(ctx context.Context) (types.PrecipitationByDate, error)
	ListStations(ctx context.Context) ([]types.StationEntry, error)
	TemperatureLastYearForBusiestStation(ctx context.Context) ([]types.TemperatureEntry, error)
	TemperatureStats(ctx context.Context, start types.Date, end *types.Date) (types.TemperatureStats, error)
}

type ClimateController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type climateControllerImpl struct {
	queries Queries
}

func NewClimateController(queries Queries) ClimateController {
	return &climateControllerImpl{queries: queries}
}

const (
	routePrecipitation = "/api/v1.0/precipitation"
	routeStations      = "/api/v1.0/stations"
	routeTobs          = "/api/v1.0/tobs"
	routeStart         = "/api/v1.0/{start}"
	routeStartEnd      = "/api/v1.0/{start}/{end}"
)

func (c *climateControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.handleIndex)
	mux.HandleFunc("GET "+routePrecipitation, c.handlePrecipitation)
	mux.HandleFunc("GET "+routeStations, c.handleStations)
	mux.HandleFunc("GET "+routeTobs, c.handleTobs)
	mux.HandleFunc("GET "+routeStart, c.handleTemperatureStats)
	mux.HandleFunc("GET "+routeStartEnd, c.handleTemperatureStats)
}
