package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/mvhdi/Weather-Station/internal/modules/dashboard/compose"
	"github.com/mvhdi/Weather-Station/internal/modules/dashboard/controller"
	"github.com/mvhdi/Weather-Station/internal/source"
)

func RegisterFeature(mux *http.ServeMux, layout *compose.Layout, fetcher source.Fetcher, catalogs compose.CatalogLoader, logger *slog.Logger) {
	composer := compose.New(fetcher, catalogs, logger)
	dashboardController := controller.NewDashboardController(layout, composer, logger)
	dashboardController.RegisterRoutes(mux)
}
