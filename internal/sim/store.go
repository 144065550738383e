package sim

import "sync"

// SpatialStore is the keyed tile/building store of spec.md §4.1: O(1)
// point access, O(tiles-per-face) face iteration, and dirty-set
// accumulation. It is the sole source of dirty bits (spec.md: "Writes mark
// the key dirty; the store is the sole source of dirty bits"). Reads are
// safe from any goroutine; writes are serialized through the Tick Driver
// (spec.md §5), guarded here with an RWMutex the same way the teacher's
// World and WorldObjectManager guard their maps.
type SpatialStore struct {
	mu sync.RWMutex

	subdivisions int
	tiles        map[TileKey]*Tile
	buildings    map[TileKey]*Building

	dirtyTiles       map[TileKey]struct{}
	dirtyBuildings    map[TileKey]struct{}
	removedBuildings  map[TileKey]struct{}

	facesTiles     map[int][]TileKey
	facesBuildings map[int][]TileKey
}

// NewSpatialStore creates an empty store for a world of the given
// per-face subdivision count.
func NewSpatialStore(subdivisions int) *SpatialStore {
	return &SpatialStore{
		subdivisions:     subdivisions,
		tiles:            make(map[TileKey]*Tile),
		buildings:        make(map[TileKey]*Building),
		dirtyTiles:       make(map[TileKey]struct{}),
		dirtyBuildings:   make(map[TileKey]struct{}),
		removedBuildings: make(map[TileKey]struct{}),
		facesTiles:       make(map[int][]TileKey),
		facesBuildings:   make(map[int][]TileKey),
	}
}

// Subdivisions returns the per-face tile-axis count (spec.md §6 `subdivisions`).
func (s *SpatialStore) Subdivisions() int {
	return s.subdivisions
}

// PutTile inserts or overwrites a tile and marks it dirty. World generation
// is the primary caller; extractor kernels call SetResourceAmount instead
// so resource decay routes through the same dirty-tracking path.
func (s *SpatialStore) PutTile(t *Tile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tiles[t.Key]; !exists {
		s.facesTiles[t.Key.Face] = append(s.facesTiles[t.Key.Face], t.Key)
	}
	s.tiles[t.Key] = t
	s.dirtyTiles[t.Key] = struct{}{}
}

// GetTile returns the tile at key, or nil if absent.
func (s *SpatialStore) GetTile(key TileKey) *Tile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tiles[key]
}

// SetResourceAmount mutates a tile's resource amount through the store so
// the dirty bit is recorded (spec.md §4.2: "Tile resource update must
// occur through the Spatial Store"). Clears the resource once it reaches
// zero (spec.md Invariant 8).
func (s *SpatialStore) SetResourceAmount(key TileKey, amount int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tiles[key]
	if !ok || t.Resource == nil {
		return
	}
	if amount <= 0 {
		t.Resource = nil
	} else {
		t.Resource.Amount = amount
	}
	s.dirtyTiles[key] = struct{}{}
}

// GetFaceTiles returns every tile on the given face.
func (s *SpatialStore) GetFaceTiles(face int) []*Tile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := s.facesTiles[face]
	out := make([]*Tile, 0, len(keys))
	for _, k := range keys {
		if t, ok := s.tiles[k]; ok {
			out = append(out, t)
		}
	}
	return out
}

// PutBuilding places or replaces the building at key (spec.md Invariant 1:
// exactly one building per tile). Marks the key dirty as a modified
// building, clearing any pending "removed" mark for the same key (spec.md
// §4.1: "a key appears in at most one of modified building and removed
// building, whichever action occurred last").
func (s *SpatialStore) PutBuilding(key TileKey, b *Building) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.buildings[key]; !exists {
		s.facesBuildings[key.Face] = append(s.facesBuildings[key.Face], key)
	}
	s.buildings[key] = b
	delete(s.removedBuildings, key)
	s.dirtyBuildings[key] = struct{}{}
}

// GetBuilding returns the building at key, or nil if absent.
func (s *SpatialStore) GetBuilding(key TileKey) *Building {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buildings[key]
}

// HasBuilding reports whether a building occupies key.
func (s *SpatialStore) HasBuilding(key TileKey) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.buildings[key]
	return ok
}

// RemoveBuilding clears the tile and marks the key dirty as removed,
// clearing any pending "modified" mark for the same key.
func (s *SpatialStore) RemoveBuilding(key TileKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.buildings[key]; !ok {
		return
	}
	delete(s.buildings, key)
	s.removeFromFaceIndex(key)
	delete(s.dirtyBuildings, key)
	s.removedBuildings[key] = struct{}{}
}

func (s *SpatialStore) removeFromFaceIndex(key TileKey) {
	keys := s.facesBuildings[key.Face]
	for i, k := range keys {
		if k == key {
			s.facesBuildings[key.Face] = append(keys[:i], keys[i+1:]...)
			break
		}
	}
}

// GetFaceBuildings returns every building on the given face, keyed by tile.
func (s *SpatialStore) GetFaceBuildings(face int) map[TileKey]*Building {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := s.facesBuildings[face]
	out := make(map[TileKey]*Building, len(keys))
	for _, k := range keys {
		if b, ok := s.buildings[k]; ok {
			out[k] = b
		}
	}
	return out
}

// AllBuildings returns every building in the store, keyed by tile. Callers
// that need deterministic iteration order must sort the returned keys
// (spec.md §5: "per-class iteration order is stable, sorted by tile key").
func (s *SpatialStore) AllBuildings() map[TileKey]*Building {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[TileKey]*Building, len(s.buildings))
	for k, b := range s.buildings {
		out[k] = b
	}
	return out
}

// DrainDirty returns the three disjoint dirty lists accumulated since the
// last call and clears them (spec.md §4.1).
func (s *SpatialStore) DrainDirty() (modifiedTiles, modifiedBuildings, removedBuildings []TileKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	modifiedTiles = make([]TileKey, 0, len(s.dirtyTiles))
	for k := range s.dirtyTiles {
		modifiedTiles = append(modifiedTiles, k)
	}
	modifiedBuildings = make([]TileKey, 0, len(s.dirtyBuildings))
	for k := range s.dirtyBuildings {
		modifiedBuildings = append(modifiedBuildings, k)
	}
	removedBuildings = make([]TileKey, 0, len(s.removedBuildings))
	for k := range s.removedBuildings {
		removedBuildings = append(removedBuildings, k)
	}

	s.dirtyTiles = make(map[TileKey]struct{})
	s.dirtyBuildings = make(map[TileKey]struct{})
	s.removedBuildings = make(map[TileKey]struct{})

	return modifiedTiles, modifiedBuildings, removedBuildings
}
