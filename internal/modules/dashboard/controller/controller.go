package controller

import (
	"log/slog"
	"net/http"

	"github.com/mvhdi/Weather-Station/internal/modules/dashboard/compose"
)

type DashboardController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type dashboardControllerImpl struct {
	layout   *compose.Layout
	composer *compose.Composer
	logger   *slog.Logger
}

func NewDashboardController(layout *compose.Layout, composer *compose.Composer, logger *slog.Logger) DashboardController {
	if logger == nil {
		logger = slog.Default()
	}
	return &dashboardControllerImpl{layout: layout, composer: composer, logger: logger}
}

func (c *dashboardControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.handleIndex)
	mux.HandleFunc("GET /pages/{id}", c.handlePage)
	mux.HandleFunc("GET /partials/pages/{id}", c.handlePagePartial)
	mux.HandleFunc("GET /api/pages", c.handlePageList)
	mux.HandleFunc("GET /api/pages/{id}", c.handlePageJSON)
	mux.HandleFunc("GET /pages/{id}/trends/{trend}", c.handleTrend)
}
