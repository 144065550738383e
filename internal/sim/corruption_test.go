package sim

import (
	"testing"

	"github.com/google/uuid"
)

func TestSeedTickSkipsOccupiedAndBeaconProtectedTiles(t *testing.T) {
	store := NewSpatialStore(8)
	occupied := TileKey{Face: 0, Row: 0, Col: 0}
	protected := TileKey{Face: 0, Row: 0, Col: 1}
	open := TileKey{Face: 0, Row: 0, Col: 2}
	store.PutBuilding(occupied, &Building{Type: TypeMiner})

	r := NewCorruptionRegistry()
	beaconAt := func(k TileKey, radius int) bool { return k == protected }
	r.SeedTick(store, []TileKey{occupied, protected, open}, 10, 5, beaconAt)

	if _, ok := r.Cells[occupied]; ok {
		t.Fatal("expected no seeding on an occupied tile")
	}
	if _, ok := r.Cells[protected]; ok {
		t.Fatal("expected no seeding within a beacon's radius")
	}
	cell, ok := r.Cells[open]
	if !ok {
		t.Fatal("expected the open tile to seed")
	}
	if cell.Intensity != 1 || cell.SeededAt != 10 {
		t.Fatalf("expected a freshly seeded cell at intensity 1, got %+v", cell)
	}
}

func TestSeedTickDoesNotReseedExistingCell(t *testing.T) {
	store := NewSpatialStore(8)
	key := TileKey{Face: 0, Row: 0, Col: 0}
	r := NewCorruptionRegistry()
	r.Cells[key] = &CorruptionCell{Intensity: 4, SeededAt: 1}

	r.SeedTick(store, []TileKey{key}, 99, 0, nil)

	if r.Cells[key].Intensity != 4 || r.Cells[key].SeededAt != 1 {
		t.Fatalf("expected an already-corrupted cell untouched, got %+v", r.Cells[key])
	}
}

func TestSpreadTickIncrementsIntensityUpToMax(t *testing.T) {
	store := NewSpatialStore(8)
	key := TileKey{Face: 0, Row: 3, Col: 3}
	r := NewCorruptionRegistry()
	r.Cells[key] = &CorruptionCell{Intensity: 5, SeededAt: 0}

	rng := NewRNG(1, 1, 1)
	r.SpreadTick(store, 8, 5, 3, 1, nil, rng)

	if r.Cells[key].Intensity != 5 {
		t.Fatalf("expected intensity to stay capped at maxIntensity=5, got %d", r.Cells[key].Intensity)
	}
}

func TestSpreadTickSkipsTilesOccupiedByOtherBuildings(t *testing.T) {
	store := NewSpatialStore(8)
	key := TileKey{Face: 0, Row: 3, Col: 3}
	turret := TileKey{Face: 0, Row: 3, Col: 4}
	miner := TileKey{Face: 0, Row: 2, Col: 3}
	store.PutBuilding(turret, &Building{Type: TypeDefenseTurret})
	store.PutBuilding(miner, &Building{Type: TypeMiner})

	r := NewCorruptionRegistry()
	r.Cells[key] = &CorruptionCell{Intensity: 1, SeededAt: 0}

	rng := NewRNG(1, 1, 1)
	r.SpreadTick(store, 8, 10, 0, 1, nil, rng)

	if _, ok := r.Cells[miner]; ok {
		t.Fatal("expected no spread onto a tile occupied by a non-turret/beacon building")
	}
}

func TestSpreadTickRespectsBeaconProtection(t *testing.T) {
	store := NewSpatialStore(8)
	key := TileKey{Face: 0, Row: 3, Col: 3}
	r := NewCorruptionRegistry()
	r.Cells[key] = &CorruptionCell{Intensity: 1, SeededAt: 0}

	rng := NewRNG(1, 1, 1)
	beaconAt := func(TileKey, int) bool { return true }
	r.SpreadTick(store, 8, 10, 5, 1, beaconAt, rng)

	if len(r.Cells) != 1 {
		t.Fatalf("expected no new cells when every neighbor is beacon-protected, got %d cells", len(r.Cells))
	}
}

func TestDamageTickDestroysBuildingAfterThresholdTicks(t *testing.T) {
	store := NewSpatialStore(8)
	key := TileKey{Face: 0, Row: 0, Col: 0}
	store.PutBuilding(key, &Building{Type: TypeMiner})

	r := NewCorruptionRegistry()
	r.Cells[key] = &CorruptionCell{Intensity: 5}

	var destroyed []TileKey
	for i := 0; i < 3; i++ {
		destroyed = r.DamageTick(store, 5, 3)
	}

	if len(destroyed) != 1 || destroyed[0] != key {
		t.Fatalf("expected the building destroyed on the 3rd damage tick, got %+v", destroyed)
	}
	if store.HasBuilding(key) {
		t.Fatal("expected the destroyed building removed from the store")
	}
}

func TestDamageTickSparesDefenseAndBeaconBuildings(t *testing.T) {
	store := NewSpatialStore(8)
	key := TileKey{Face: 0, Row: 0, Col: 0}
	store.PutBuilding(key, &Building{Type: TypeDefenseTurret})

	r := NewCorruptionRegistry()
	r.Cells[key] = &CorruptionCell{Intensity: 10}

	for i := 0; i < 10; i++ {
		r.DamageTick(store, 5, 3)
	}
	if !store.HasBuilding(key) {
		t.Fatal("expected a defense turret never destroyed by corruption damage")
	}
}

func TestDamageTickBelowThresholdDoesNothing(t *testing.T) {
	store := NewSpatialStore(8)
	key := TileKey{Face: 0, Row: 0, Col: 0}
	store.PutBuilding(key, &Building{Type: TypeMiner})

	r := NewCorruptionRegistry()
	r.Cells[key] = &CorruptionCell{Intensity: 2}

	destroyed := r.DamageTick(store, 5, 1)
	if len(destroyed) != 0 || !store.HasBuilding(key) {
		t.Fatal("expected no damage below the intensity threshold")
	}
}

func TestSpawnHissTickStopsAtMaxEntities(t *testing.T) {
	r := NewCorruptionRegistry()
	r.Cells[TileKey{Face: 0, Row: 0, Col: 0}] = &CorruptionCell{Intensity: 10}
	r.Cells[TileKey{Face: 0, Row: 0, Col: 1}] = &CorruptionCell{Intensity: 10}

	r.SpawnHissTick(5, 1, 1)
	if len(r.Hiss) != 1 {
		t.Fatalf("expected spawning to stop at maxEntities=1, got %d", len(r.Hiss))
	}
}

func TestSpawnHissTickRequiresIntensityThreshold(t *testing.T) {
	r := NewCorruptionRegistry()
	r.Cells[TileKey{Face: 0, Row: 0, Col: 0}] = &CorruptionCell{Intensity: 3}

	r.SpawnHissTick(5, 10, 1)
	if len(r.Hiss) != 0 {
		t.Fatal("expected no Hiss spawn below the intensity threshold")
	}
}

func TestMoveHissTickIsDeterministicForSameTick(t *testing.T) {
	id := uuid.New()
	r1 := NewCorruptionRegistry()
	r1.Hiss[id] = &HissEntity{ID: id, Key: TileKey{Face: 0, Row: 4, Col: 4}}
	r2 := NewCorruptionRegistry()
	r2.Hiss[id] = &HissEntity{ID: id, Key: TileKey{Face: 0, Row: 4, Col: 4}}

	r1.MoveHissTick(8, 42)
	r2.MoveHissTick(8, 42)

	if r1.Hiss[id].Key != r2.Hiss[id].Key {
		t.Fatalf("expected identical (tick, id) to move deterministically to the same tile, got %+v vs %+v",
			r1.Hiss[id].Key, r2.Hiss[id].Key)
	}
}

func TestCombatTickTurretKillsHissWithinRadius(t *testing.T) {
	store := NewSpatialStore(16)
	turret := TileKey{Face: 0, Row: 5, Col: 5}
	store.PutBuilding(turret, &Building{Type: TypeDefenseTurret, State: DefenseState{}})

	r := NewCorruptionRegistry()
	id := uuid.New()
	r.Hiss[id] = &HissEntity{ID: id, Key: TileKey{Face: 0, Row: 5, Col: 6}, Health: 34}

	creatures := NewCreatureRegistry()
	kills := r.CombatTick(store, creatures)

	if len(r.Hiss) != 0 {
		t.Fatal("expected the Hiss entity destroyed at health <= 0")
	}
	if len(kills) != 1 || kills[0] != turret {
		t.Fatalf("expected the turret credited with the kill, got %+v", kills)
	}
	st := store.GetBuilding(turret).State.(DefenseState)
	if st.OutputBuffer == nil || *st.OutputBuffer != ItemHissResidue {
		t.Fatalf("expected a Hiss-Residue item dropped into the turret's output buffer, got %+v", st.OutputBuffer)
	}
	if st.Kills != 1 {
		t.Fatalf("expected the turret's kill count incremented, got %d", st.Kills)
	}
}

func TestCombatTickOutOfRangeTurretDoesNoDamage(t *testing.T) {
	store := NewSpatialStore(32)
	turret := TileKey{Face: 0, Row: 5, Col: 5}
	store.PutBuilding(turret, &Building{Type: TypeDefenseTurret, State: DefenseState{}})

	r := NewCorruptionRegistry()
	id := uuid.New()
	r.Hiss[id] = &HissEntity{ID: id, Key: TileKey{Face: 0, Row: 20, Col: 20}, Health: 34}

	r.CombatTick(store, NewCreatureRegistry())

	if _, alive := r.Hiss[id]; !alive {
		t.Fatal("expected a distant Hiss entity to survive an out-of-range turret")
	}
}

func TestCombatTickAssignedCreatureDamagesHiss(t *testing.T) {
	store := NewSpatialStore(16)
	bKey := TileKey{Face: 0, Row: 5, Col: 5}

	creatures := NewCreatureRegistry()
	owner := uuid.New()
	creatureID := uuid.New()
	creatures.Captured[creatureID] = &CapturedCreature{ID: creatureID, Kind: "dune_runner", Owner: owner}
	creatures.ByBuilding[bKey] = creatureID

	r := NewCorruptionRegistry()
	id := uuid.New()
	r.Hiss[id] = &HissEntity{ID: id, Key: TileKey{Face: 0, Row: 5, Col: 6}, Health: 35}

	r.CombatTick(store, creatures)

	if _, alive := r.Hiss[id]; alive {
		t.Fatal("expected dune_runner's 35 damage to kill a 35-health Hiss entity")
	}
}

func TestPurifyTickReducesAndClearsIntensity(t *testing.T) {
	store := NewSpatialStore(16)
	beacon := TileKey{Face: 0, Row: 5, Col: 5}
	store.PutBuilding(beacon, &Building{Type: TypePurificationBeacon})

	near := TileKey{Face: 0, Row: 5, Col: 6}
	far := TileKey{Face: 0, Row: 15, Col: 15}

	r := NewCorruptionRegistry()
	r.Cells[near] = &CorruptionCell{Intensity: 1}
	r.Cells[far] = &CorruptionCell{Intensity: 5}

	PurifyTick(r, store, 3)

	if _, ok := r.Cells[near]; ok {
		t.Fatal("expected a nearby intensity-1 cell fully purified and removed")
	}
	if cell, ok := r.Cells[far]; !ok || cell.Intensity != 5 {
		t.Fatalf("expected an out-of-range cell untouched, got %+v (ok=%v)", cell, ok)
	}
}

func TestPurifyTickOnlyAffectsSameFace(t *testing.T) {
	store := NewSpatialStore(16)
	beacon := TileKey{Face: 0, Row: 5, Col: 5}
	store.PutBuilding(beacon, &Building{Type: TypePurificationBeacon})

	otherFace := TileKey{Face: 1, Row: 5, Col: 5}
	r := NewCorruptionRegistry()
	r.Cells[otherFace] = &CorruptionCell{Intensity: 1}

	PurifyTick(r, store, 10)

	if _, ok := r.Cells[otherFace]; !ok {
		t.Fatal("expected a cell on a different face to never be purified regardless of grid-distance")
	}
}
