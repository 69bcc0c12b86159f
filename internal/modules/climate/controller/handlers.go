package controller

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"climate-server/internal/modules/climate/types"
	"climate-server/internal/utils"
)

var indexText = strings.Join([]string{
	"Available Routes:",
	routePrecipitation,
	routeStations,
	routeTobs,
	"/api/v1.0/<start>",
	"/api/v1.0/<start>/<end>",
	"",
	"Dates use the YYYY-MM-DD format.",
}, "\n") + "\n"

func (c *climateControllerImpl) handleIndex(w http.ResponseWriter, r *http.Request) {
	utils.WriteText(w, http.StatusOK, indexText)
}

func (c *climateControllerImpl) handlePrecipitation(w http.ResponseWriter, r *http.Request) {
	byDate, err := c.queries.PrecipitationLastYear(r.Context())
	if err != nil {
		writeQueryError(w, "precipitation", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, byDate)
}

func (c *climateControllerImpl) handleStations(w http.ResponseWriter, r *http.Request) {
	stations, err := c.queries.ListStations(r.Context())
	if err != nil {
		writeQueryError(w, "stations", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, stations)
}

func (c *climateControllerImpl) handleTobs(w http.ResponseWriter, r *http.Request) {
	entries, err := c.queries.TemperatureLastYearForBusiestStation(r.Context())
	if err != nil {
		writeQueryError(w, "tobs", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, entries)
}

func (c *climateControllerImpl) handleTemperatureStats(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseStatsRange(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	stats, err := c.queries.TemperatureStats(r.Context(), start, end)
	if err != nil {
		writeQueryError(w, "temperature stats", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, stats)
}

// writeQueryError maps query failures to a status. Only a bad range is the caller's
// fault; an empty dataset is reported like any other backend failure.
func writeQueryError(w http.ResponseWriter, route string, err error) {
	if errors.Is(err, types.ErrInvalidRange) {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	slog.Error("query failed", "route", route, "error", err)
	if errors.Is(err, types.ErrEmptyDataset) {
		utils.WriteError(w, http.StatusInternalServerError, "no observations available")
		return
	}
	utils.WriteError(w, http.StatusInternalServerError, "failed to query observations")
}
