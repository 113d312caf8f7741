package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/mvhdi/Weather-Station/internal/source"
	"github.com/mvhdi/Weather-Station/internal/utils"
)

type healthchecker interface {
	handleHealthz(w http.ResponseWriter, r *http.Request)
}

type healthcheckerImpl struct {
	fetcher source.Fetcher
}

func NewHealthchecker(fetcher source.Fetcher) healthchecker {
	return &healthcheckerImpl{fetcher: fetcher}
}

func (h *healthcheckerImpl) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := h.fetcher.Ping(r.Context()); err != nil {
		slog.Error("failed to check database connectivity", "error", err)
		utils.WriteError(w, http.StatusServiceUnavailable, "failed to check database connectivity")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func registerHealthcheck(mux *http.ServeMux, fetcher source.Fetcher) {
	healthchecker := NewHealthchecker(fetcher)
	mux.HandleFunc("GET /healthz", healthchecker.handleHealthz)
}
