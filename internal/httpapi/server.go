package httpapi

import (
	"net/http"
	"time"

	"github.com/mvhdi/Weather-Station/internal/config"
)

func NewServer(cfg config.Config, mux *http.ServeMux) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           requestLogger(mux),
		ReadHeaderTimeout: 5 * time.Second,
		// a page may wait on several queries, each bounded by QueryTimeout
		WriteTimeout: 30*time.Second + cfg.QueryTimeout,
		IdleTimeout:  60 * time.Second,
	}
}
