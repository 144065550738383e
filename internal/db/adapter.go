package db

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/hollowsphere/core/internal/sim"
)

// saveHeartbeatInterval is the interval passed to SetSaveHeartbeat, which
// sets the key's TTL to twice this value; a saver that misses two
// consecutive periods is observable as stalled.
const saveHeartbeatInterval = 2 * time.Minute

// SimAdapter implements sim.Persistence over Postgres, with a Redis
// heartbeat so an operator can see the saver is alive without querying
// Postgres (spec.md §6 "save_dirty ... invoked periodically and at
// shutdown"). The core only ever sees the narrow sim.Persistence
// interface; this type is the concrete wiring cmd/server builds.
type SimAdapter struct {
	pg      *Postgres
	rdb     *Redis
	worldID string
}

// NewSimAdapter builds the persistence collaborator for one running world.
func NewSimAdapter(pg *Postgres, rdb *Redis, worldID string) *SimAdapter {
	return &SimAdapter{pg: pg, rdb: rdb, worldID: worldID}
}

// SaveDirty implements sim.Persistence. Anomalies are logged and
// swallowed: a failed save must not halt the simulation (spec.md §7
// "failed persistence save ... logged and isolated to the collaborator;
// the core continues ticking").
func (a *SimAdapter) SaveDirty(tiles []*sim.Tile, buildings map[sim.TileKey]*sim.Building, removedKeys []sim.TileKey) {
	ctx := context.Background()

	if len(tiles) > 0 {
		rows := make([]TileKeyRow, 0, len(tiles))
		blobs := make([]json.RawMessage, 0, len(tiles))
		for _, t := range tiles {
			blob, err := json.Marshal(t)
			if err != nil {
				log.Printf("persistence: marshal tile %+v failed: %v", t.Key, err)
				continue
			}
			rows = append(rows, TileKeyRow{WorldID: a.worldID, Face: t.Key.Face, Row: t.Key.Row, Col: t.Key.Col})
			blobs = append(blobs, blob)
		}
		if err := a.pg.SaveDirtyTiles(ctx, rows, blobs); err != nil {
			log.Printf("persistence: save dirty tiles failed: %v", err)
		}
	}

	if len(buildings) > 0 || len(removedKeys) > 0 {
		upserts := make([]BuildingRow, 0, len(buildings))
		for key, b := range buildings {
			blob, err := json.Marshal(b)
			if err != nil {
				log.Printf("persistence: marshal building at %+v failed: %v", key, err)
				continue
			}
			var owner *string
			if b.OwnerID != nil {
				s := b.OwnerID.String()
				owner = &s
			}
			upserts = append(upserts, BuildingRow{
				TileKeyRow:  TileKeyRow{WorldID: a.worldID, Face: key.Face, Row: key.Row, Col: key.Col},
				Type:        string(b.Type),
				Orientation: int(b.Orientation),
				OwnerID:     owner,
				StateBlob:   blob,
			})
		}
		removedRows := make([]TileKeyRow, len(removedKeys))
		for i, k := range removedKeys {
			removedRows[i] = TileKeyRow{WorldID: a.worldID, Face: k.Face, Row: k.Row, Col: k.Col}
		}
		if err := a.pg.SaveDirtyBuildings(ctx, a.worldID, upserts, removedRows); err != nil {
			log.Printf("persistence: save dirty buildings failed: %v", err)
		}
	}

	if err := a.rdb.SetSaveHeartbeat(ctx, a.worldID, saveHeartbeatInterval); err != nil {
		log.Printf("persistence: save heartbeat failed: %v", err)
	}
}
