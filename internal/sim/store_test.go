package sim

import "testing"

func TestPutTileMarksDirty(t *testing.T) {
	s := NewSpatialStore(8)
	key := TileKey{Face: 1, Row: 2, Col: 3}
	s.PutTile(&Tile{Key: key, Terrain: TerrainGrassland})

	modTiles, modBuildings, removed := s.DrainDirty()
	if len(modTiles) != 1 || modTiles[0] != key {
		t.Fatalf("expected tile %+v dirty, got %+v", key, modTiles)
	}
	if len(modBuildings) != 0 || len(removed) != 0 {
		t.Fatalf("expected no dirty buildings, got %+v/%+v", modBuildings, removed)
	}
}

func TestDrainDirtyClearsState(t *testing.T) {
	s := NewSpatialStore(8)
	key := TileKey{Face: 0, Row: 0, Col: 0}
	s.PutTile(&Tile{Key: key})
	s.DrainDirty()

	modTiles, _, _ := s.DrainDirty()
	if len(modTiles) != 0 {
		t.Fatalf("expected drain to be idempotent after clearing, got %+v", modTiles)
	}
}

func TestPutBuildingClearsPendingRemoved(t *testing.T) {
	s := NewSpatialStore(8)
	key := TileKey{Face: 0, Row: 0, Col: 0}

	s.PutBuilding(key, &Building{Type: TypeConveyorMk1})
	s.RemoveBuilding(key)
	s.PutBuilding(key, &Building{Type: TypeConveyorMk2})

	_, modBuildings, removed := s.DrainDirty()
	if len(removed) != 0 {
		t.Fatalf("key re-placed after removal must not also appear removed, got %+v", removed)
	}
	found := false
	for _, k := range modBuildings {
		if k == key {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %+v in modified buildings, got %+v", key, modBuildings)
	}
}

func TestRemoveBuildingClearsPendingModified(t *testing.T) {
	s := NewSpatialStore(8)
	key := TileKey{Face: 0, Row: 0, Col: 0}

	s.PutBuilding(key, &Building{Type: TypeConveyorMk1})
	s.RemoveBuilding(key)

	_, modBuildings, removed := s.DrainDirty()
	for _, k := range modBuildings {
		if k == key {
			t.Fatalf("removed key %+v must not also appear modified", key)
		}
	}
	if len(removed) != 1 || removed[0] != key {
		t.Fatalf("expected %+v removed, got %+v", key, removed)
	}
}

func TestRemoveBuildingNoOpWhenAbsent(t *testing.T) {
	s := NewSpatialStore(8)
	key := TileKey{Face: 0, Row: 0, Col: 0}
	s.RemoveBuilding(key)

	_, _, removed := s.DrainDirty()
	if len(removed) != 0 {
		t.Fatalf("removing an absent key must not mark it dirty, got %+v", removed)
	}
}

func TestSetResourceAmountClearsResourceAtZero(t *testing.T) {
	s := NewSpatialStore(8)
	key := TileKey{Face: 0, Row: 0, Col: 0}
	s.PutTile(&Tile{Key: key, Resource: &Resource{Kind: ResourceIronOre, Amount: 1}})
	s.DrainDirty()

	s.SetResourceAmount(key, 0)
	tile := s.GetTile(key)
	if tile.Resource != nil {
		t.Fatalf("expected resource cleared at amount 0, got %+v", tile.Resource)
	}
	if tile.HasResource() {
		t.Fatal("HasResource must be false once the resource is cleared")
	}
}

func TestFaceIndexTracksPlacementAndRemoval(t *testing.T) {
	s := NewSpatialStore(8)
	face := 4
	k1 := TileKey{Face: face, Row: 0, Col: 0}
	k2 := TileKey{Face: face, Row: 0, Col: 1}

	s.PutBuilding(k1, &Building{Type: TypeConveyorMk1})
	s.PutBuilding(k2, &Building{Type: TypeConveyorMk1})
	if got := len(s.GetFaceBuildings(face)); got != 2 {
		t.Fatalf("expected 2 buildings on face %d, got %d", face, got)
	}

	s.RemoveBuilding(k1)
	remaining := s.GetFaceBuildings(face)
	if len(remaining) != 1 {
		t.Fatalf("expected 1 building remaining, got %d", len(remaining))
	}
	if _, ok := remaining[k2]; !ok {
		t.Fatalf("expected %+v to remain, got %+v", k2, remaining)
	}
}

func TestAllBuildingsReturnsIndependentCopy(t *testing.T) {
	s := NewSpatialStore(8)
	key := TileKey{Face: 0, Row: 0, Col: 0}
	s.PutBuilding(key, &Building{Type: TypeConveyorMk1})

	snap := s.AllBuildings()
	delete(snap, key)

	if !s.HasBuilding(key) {
		t.Fatal("mutating the snapshot returned by AllBuildings must not affect the store")
	}
}
