package climate

import (
	"log/slog"
	"net/http"

	"climate-server/internal/modules/climate/controller"
	"climate-server/internal/modules/climate/repository"
	"climate-server/internal/modules/climate/service"
)

// RegisterFeature mounts the climate routes on mux and returns the service so the
// caller can reuse it (health checks).
func RegisterFeature(mux *http.ServeMux, store repository.Store, logger *slog.Logger) *service.Service {
	climateService := service.NewService(store, logger)
	climateController := controller.NewClimateController(climateService)
	climateController.RegisterRoutes(mux)
	return climateService
}
