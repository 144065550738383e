package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/hollowsphere/core/internal/config"
	"github.com/hollowsphere/core/internal/sim"
	"github.com/hollowsphere/core/internal/ws"
)

// Handler contains the HTTP handler methods exposing spec.md §6's command
// surface over the Tick Driver.
type Handler struct {
	driver    *sim.Driver
	hub       *ws.Hub
	wsHandler *ws.Handler
	cfg       *config.Config
}

// NewHandler creates an API handler wired to a running Driver.
func NewHandler(driver *sim.Driver, hub *ws.Hub, cfg *config.Config) *Handler {
	h := &Handler{driver: driver, hub: hub, cfg: cfg}
	h.wsHandler = ws.NewHandler(hub, &stateAdapter{driver})
	return h
}

// stateAdapter adapts the Driver to ws.StateProvider's initial-snapshot
// contract.
type stateAdapter struct {
	driver *sim.Driver
}

func (a *stateAdapter) FullState() (interface{}, error) {
	return map[string]interface{}{
		"tick":   a.driver.TickCount(),
		"status": a.driver.RunStatus(),
	}, nil
}

// Health returns server health status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// TickCount implements the `tick_count()` read of spec.md §6.
func (h *Handler) TickCount(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tick":   h.driver.TickCount(),
		"status": h.driver.RunStatus(),
	})
}

// placementRequest is the wire shape of one place_building item.
type placementRequest struct {
	Face        int    `json:"face"`
	Row         int    `json:"row"`
	Col         int    `json:"col"`
	Type        string `json:"type"`
	Orientation int    `json:"orientation"`
	Owner       string `json:"owner,omitempty"`
}

// placementResponse is the wire shape of one PlacementResult.
type placementResponse struct {
	Face  int    `json:"face"`
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func ownerOf(s string) (*sim.PlayerID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// PlaceBuildings implements `place_building`/`place_buildings` (spec.md
// §6): one or many items, per-item atomicity.
func (h *Handler) PlaceBuildings(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Placements []placementRequest `json:"placements"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reqs := make([]sim.PlaceRequest, len(body.Placements))
	for i, p := range body.Placements {
		owner, err := ownerOf(p.Owner)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid owner id: "+p.Owner)
			return
		}
		reqs[i] = sim.PlaceRequest{
			Key:         sim.TileKey{Face: p.Face, Row: p.Row, Col: p.Col},
			Type:        sim.BuildingType(p.Type),
			Orientation: sim.Direction(p.Orientation),
			Owner:       owner,
		}
	}

	results := h.driver.PlaceBuildings(reqs)
	writeJSON(w, http.StatusOK, placementResponses(body.Placements, results))
}

func placementResponses(reqs []placementRequest, results []sim.PlacementResult) []placementResponse {
	out := make([]placementResponse, len(results))
	for i, res := range results {
		out[i] = placementResponse{Face: reqs[i].Face, Row: reqs[i].Row, Col: reqs[i].Col, OK: res.Ok()}
		if !res.Ok() {
			out[i].Error = res.Err.Error()
		}
	}
	return out
}

// removalRequest is the wire shape of one remove_building item.
type removalRequest struct {
	Face         int    `json:"face"`
	Row          int    `json:"row"`
	Col          int    `json:"col"`
	ActingPlayer string `json:"acting_player,omitempty"`
}

// RemoveBuildings implements `remove_building`/`remove_buildings`.
func (h *Handler) RemoveBuildings(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Removals []removalRequest `json:"removals"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reqs := make([]sim.RemoveRequest, len(body.Removals))
	for i, rm := range body.Removals {
		actor, err := ownerOf(rm.ActingPlayer)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid acting_player id: "+rm.ActingPlayer)
			return
		}
		reqs[i] = sim.RemoveRequest{
			Key:          sim.TileKey{Face: rm.Face, Row: rm.Row, Col: rm.Col},
			ActingPlayer: actor,
		}
	}

	results := h.driver.RemoveBuildings(reqs)
	out := make([]placementResponse, len(results))
	for i, res := range results {
		out[i] = placementResponse{Face: body.Removals[i].Face, Row: body.Removals[i].Row, Col: body.Removals[i].Col, OK: res.Ok()}
		if !res.Ok() {
			out[i].Error = res.Err.Error()
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// Pause implements a dev-mode pause of tick advancement.
func (h *Handler) Pause(w http.ResponseWriter, r *http.Request) {
	h.driver.Pause()
	writeJSON(w, http.StatusOK, map[string]string{"status": "paused"})
}

// Resume implements a dev-mode resume of tick advancement.
func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	h.driver.Resume()
	writeJSON(w, http.StatusOK, map[string]string{"status": "resumed"})
}

// WebSocket upgrades a connection onto the per-face delta feed. An
// optional `faces` query parameter (comma-separated face indices)
// narrows the subscription; omitted, the client receives every face.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	var faces []int
	if raw := r.URL.Query().Get("faces"); raw != "" {
		for _, part := range splitComma(raw) {
			n, err := strconv.Atoi(part)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid faces parameter")
				return
			}
			faces = append(faces, n)
		}
	}
	h.wsHandler.ServeWS(w, r, faces)
}

func splitComma(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
