package httpapi

import (
	"net/http"

	"github.com/mvhdi/Weather-Station/internal/source"
)

// NewMux returns a mux with the health check and, when staticDir is set, the
// stylesheet and script assets under /static/.
func NewMux(fetcher source.Fetcher, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, fetcher)
	if staticDir != "" {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	}
	return mux
}
