package api

import (
	"net/http"

	"github.com/hollowsphere/core/internal/config"
	"github.com/hollowsphere/core/internal/sim"
	"github.com/hollowsphere/core/internal/ws"
)

// NewRouter creates the HTTP router exposing spec.md §6's command surface.
func NewRouter(driver *sim.Driver, hub *ws.Hub, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	handler := NewHandler(driver, hub, cfg)

	mux.HandleFunc("GET /health", handler.Health)
	mux.HandleFunc("GET /api/tick", handler.TickCount)
	mux.HandleFunc("POST /api/buildings", handler.PlaceBuildings)
	mux.HandleFunc("DELETE /api/buildings", handler.RemoveBuildings)
	mux.HandleFunc("GET /ws", handler.WebSocket)

	if cfg.Dev.Enabled {
		mux.HandleFunc("POST /api/dev/pause", handler.Pause)
		mux.HandleFunc("POST /api/dev/resume", handler.Resume)
	}

	return corsMiddleware(mux)
}

// corsMiddleware adds permissive CORS headers for local/dev viewer clients.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
