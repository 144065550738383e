// Package db implements the persistence and cache collaborators described
// in spec.md §6. The simulation core never imports this package back; it
// only calls the narrow sim.Persistence interface sim.Driver accepts.
package db

import (
	"context"
	"encoding/json"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres backs the persisted state layout of spec.md §6: a world record,
// a tile-resource override table, a building table, creature/corruption/
// hiss tables, and research progress, all keyed by (world, face, row, col)
// or (world, player, case_file) as spec.md describes.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres opens a connection pool. An empty connString yields a
// disconnected handle so the caller can run in-memory-only.
func NewPostgres(connString string) (*Postgres, error) {
	if connString == "" {
		return &Postgres{}, nil
	}

	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, err
	}

	log.Println("Connected to PostgreSQL")
	return &Postgres{pool: pool}, nil
}

// Close closes the connection pool
func (p *Postgres) Close() {
	if p != nil && p.pool != nil {
		p.pool.Close()
	}
}

// Pool returns the underlying connection pool
func (p *Postgres) Pool() *pgxpool.Pool {
	return p.pool
}

// IsConnected returns true if the database is connected
func (p *Postgres) IsConnected() bool {
	return p != nil && p.pool != nil
}

// WorldRecord is the row shape of spec.md §6's world record.
type WorldRecord struct {
	WorldID      string
	Name         string
	Seed         int64
	Subdivisions int
}

// LoadWorld fetches the world record by name, or (nil, nil) if absent.
// Mirrors spec.md §6's load_world(name) -> Option<{world_id, seed, subdivisions}>.
func (p *Postgres) LoadWorld(ctx context.Context, name string) (*WorldRecord, error) {
	if !p.IsConnected() {
		return nil, nil
	}

	row := p.pool.QueryRow(ctx,
		`SELECT world_id, name, seed, subdivisions FROM worlds WHERE name = $1`, name)

	var rec WorldRecord
	if err := row.Scan(&rec.WorldID, &rec.Name, &rec.Seed, &rec.Subdivisions); err != nil {
		return nil, nil
	}
	return &rec, nil
}

// DeleteWorld removes a world and all of its overlay tables. Invoked by
// reset_world (spec.md §6).
func (p *Postgres) DeleteWorld(ctx context.Context, worldID string) error {
	if !p.IsConnected() {
		return nil
	}
	_, err := p.pool.Exec(ctx, `DELETE FROM worlds WHERE world_id = $1`, worldID)
	return err
}

// TileKeyRow identifies a persisted row by (world, face, row, col).
type TileKeyRow struct {
	WorldID string
	Face    int
	Row     int
	Col     int
}

// SaveDirtyTiles upserts resource-override rows for the given tile keys.
// The state blob is the schema-free serialized tile overlay (resource
// kind/amount); enum-kinded fields are re-tagged on load by the caller.
func (p *Postgres) SaveDirtyTiles(ctx context.Context, rows []TileKeyRow, states []json.RawMessage) error {
	if !p.IsConnected() {
		return nil
	}
	for i, k := range rows {
		_, err := p.pool.Exec(ctx, `
			INSERT INTO tile_overrides (world_id, face, row, col, state_blob)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (world_id, face, row, col) DO UPDATE SET state_blob = excluded.state_blob`,
			k.WorldID, k.Face, k.Row, k.Col, []byte(states[i]))
		if err != nil {
			return err
		}
	}
	return nil
}

// BuildingRow is the row shape of spec.md §6's building table: keyed the
// same as tiles, storing (type, orientation, state_blob, owner_id).
type BuildingRow struct {
	TileKeyRow
	Type        string
	Orientation int
	OwnerID     *string
	StateBlob   json.RawMessage
}

// SaveDirtyBuildings upserts building rows and deletes removed ones,
// mirroring spec.md §6's save_dirty(world_id, tile_keys, building_keys,
// removed_building_keys).
func (p *Postgres) SaveDirtyBuildings(ctx context.Context, worldID string, upserts []BuildingRow, removed []TileKeyRow) error {
	if !p.IsConnected() {
		return nil
	}
	for _, b := range upserts {
		_, err := p.pool.Exec(ctx, `
			INSERT INTO buildings (world_id, face, row, col, type, orientation, owner_id, state_blob)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (world_id, face, row, col) DO UPDATE SET
				type = excluded.type, orientation = excluded.orientation,
				owner_id = excluded.owner_id, state_blob = excluded.state_blob`,
			worldID, b.Face, b.Row, b.Col, b.Type, b.Orientation, b.OwnerID, []byte(b.StateBlob))
		if err != nil {
			return err
		}
	}
	for _, k := range removed {
		_, err := p.pool.Exec(ctx,
			`DELETE FROM buildings WHERE world_id = $1 AND face = $2 AND row = $3 AND col = $4`,
			worldID, k.Face, k.Row, k.Col)
		if err != nil {
			return err
		}
	}
	return nil
}
