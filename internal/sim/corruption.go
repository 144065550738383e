package sim

import (
	"sort"

	"github.com/google/uuid"
)

// CorruptionCell is a corrupted tile's state (spec.md §3).
type CorruptionCell struct {
	Intensity          int
	SeededAt           int
	BuildingDamageTicks int
}

// HissEntity is a mobile hostile entity spawned from a sufficiently
// intense corruption cell (spec.md §3).
type HissEntity struct {
	ID        uuid.UUID
	Key       TileKey
	Health    int
	SpawnedAt int
}

// CorruptionConfig carries the tunables of spec.md §4.6/§6.
type CorruptionConfig struct {
	StartTick            int
	SeedInterval         int
	SpreadInterval       int
	MaxIntensity         int
	EntitySpawnThreshold int
	DamageThreshold      int
	DestroyTicks         int
	BeaconRadius         int
	TurretRadius         int
	MaxEntities          int
	HissMoveInterval     int
}

// CorruptionRegistry owns the corruption field and the Hiss entity set
// (spec.md §3, §4.6). Mutated only within the Corruption/Hiss phase.
type CorruptionRegistry struct {
	Cells map[TileKey]*CorruptionCell
	Hiss  map[uuid.UUID]*HissEntity
}

// NewCorruptionRegistry returns an empty registry.
func NewCorruptionRegistry() *CorruptionRegistry {
	return &CorruptionRegistry{
		Cells: make(map[TileKey]*CorruptionCell),
		Hiss:  make(map[uuid.UUID]*HissEntity),
	}
}

func (r *CorruptionRegistry) sortedCellKeys() []TileKey {
	keys := make([]TileKey, 0, len(r.Cells))
	for k := range r.Cells {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// SeedTick implements spec.md §4.6's seeding rule. candidateTiles supplies
// the random tiles the caller drew; the Driver draws three, from any face,
// with NewRNG(worldSeed, tick, 20).
func (r *CorruptionRegistry) SeedTick(store *SpatialStore, candidateTiles []TileKey, tick int, beaconRadius int, beaconAt func(TileKey, int) bool) {
	for _, key := range candidateTiles {
		if store.HasBuilding(key) {
			continue
		}
		if _, exists := r.Cells[key]; exists {
			continue
		}
		if beaconAt != nil && beaconAt(key, beaconRadius) {
			continue
		}
		r.Cells[key] = &CorruptionCell{Intensity: 1, SeededAt: tick}
	}
}

// SpreadTick implements spec.md §4.6's spread rule. subdivisions bounds
// neighbor lookups; beaconAt reports whether key is within a beacon's
// protection radius; rng drives neighbor selection.
func (r *CorruptionRegistry) SpreadTick(store *SpatialStore, subdivisions, maxIntensity, beaconRadius, tick int, beaconAt func(TileKey, int) bool, rng *RNG) {
	keys := r.sortedCellKeys()
	for _, key := range keys {
		cell := r.Cells[key]
		if cell.Intensity < maxIntensity {
			cell.Intensity++
		}

		var eligible []TileKey
		for _, d := range []Direction{North, East, South, West} {
			n, ok := Neighbor(key, d, subdivisions)
			if !ok {
				continue
			}
			if _, corrupted := r.Cells[n]; corrupted {
				continue
			}
			b := store.GetBuilding(n)
			if b != nil && b.Type != TypePurificationBeacon && b.Type != TypeDefenseTurret {
				continue
			}
			if beaconAt != nil && beaconAt(n, beaconRadius) {
				continue
			}
			eligible = append(eligible, n)
		}
		sort.Slice(eligible, func(i, j int) bool { return eligible[i].Less(eligible[j]) })

		spread := 2
		for spread > 0 && len(eligible) > 0 {
			idx := rng.Intn(len(eligible))
			r.Cells[eligible[idx]] = &CorruptionCell{Intensity: 1, SeededAt: tick}
			eligible = append(eligible[:idx], eligible[idx+1:]...)
			spread--
		}
	}
}

// DamageTick implements spec.md §4.6's building-damage rule, returning the
// keys of buildings destroyed this tick.
func (r *CorruptionRegistry) DamageTick(store *SpatialStore, damageThreshold, destroyTicks int) []TileKey {
	var destroyed []TileKey
	for _, key := range r.sortedCellKeys() {
		cell := r.Cells[key]
		if cell.Intensity < damageThreshold {
			continue
		}
		b := store.GetBuilding(key)
		if b == nil || b.Type == TypePurificationBeacon || b.Type == TypeDefenseTurret {
			continue
		}
		cell.BuildingDamageTicks++
		if cell.BuildingDamageTicks >= destroyTicks {
			store.RemoveBuilding(key)
			destroyed = append(destroyed, key)
		}
	}
	return destroyed
}

// SpawnHissTick implements spec.md §4.6's Hiss-spawn rule.
func (r *CorruptionRegistry) SpawnHissTick(spawnThreshold, maxEntities, tick int) {
	if len(r.Hiss) >= maxEntities {
		return
	}
	for _, key := range r.sortedCellKeys() {
		if len(r.Hiss) >= maxEntities {
			return
		}
		cell := r.Cells[key]
		if cell.Intensity < spawnThreshold {
			continue
		}
		id := uuid.New()
		r.Hiss[id] = &HissEntity{ID: id, Key: key, Health: 100, SpawnedAt: tick}
	}
}

// MoveHissTick implements spec.md §4.6's Hiss movement rule: each entity
// moves in a deterministic direction derived from hash(tick, id) mod 4.
func (r *CorruptionRegistry) MoveHissTick(subdivisions, tick int) {
	ids := make([]uuid.UUID, 0, len(r.Hiss))
	for id := range r.Hiss {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	for _, id := range ids {
		e := r.Hiss[id]
		dir := Direction(hissDirectionHash(tick, id) % 4)
		if n, ok := Neighbor(e.Key, dir, subdivisions); ok {
			e.Key = n
		}
	}
}

// hissDirectionHash derives a deterministic per-tick direction from
// (tick, id) via an FNV-style byte fold followed by the MurmurHash3
// fmix64 finalizer, per spec.md §4.6's
// "hash(tick, id) mod 4".
func hissDirectionHash(tick int, id uuid.UUID) uint64 {
	h := uint64(tick) ^ 0x9E3779B97F4A7C15
	for _, b := range id {
		h = (h ^ uint64(b)) * 0x100000001B3
	}
	h = (h ^ (h >> 33)) * 0xFF51AFD7ED558CCD
	h = (h ^ (h >> 33)) * 0xC4CEB9FE1A85EC53
	return h ^ (h >> 33)
}

// CombatTick implements spec.md §4.6's combat rule: turrets and assigned
// creatures deal damage to nearby Hiss entities; entities at health<=0
// are removed. Returns the keys of turrets that scored a kill, for the
// Hiss-Residue output-buffer drop.
func (r *CorruptionRegistry) CombatTick(store *SpatialStore, creatures *CreatureRegistry) []TileKey {
	all := store.AllBuildings()
	turretKeys := make([]TileKey, 0)
	for _, k := range SortedKeys(all) {
		if all[k].Type == TypeDefenseTurret {
			turretKeys = append(turretKeys, k)
		}
	}

	var kills []TileKey
	hissIDs := make([]uuid.UUID, 0, len(r.Hiss))
	for id := range r.Hiss {
		hissIDs = append(hissIDs, id)
	}
	sort.Slice(hissIDs, func(i, j int) bool { return hissIDs[i].String() < hissIDs[j].String() })

	for _, hid := range hissIDs {
		e := r.Hiss[hid]
		for _, tk := range turretKeys {
			if ChebyshevDistance(tk, e.Key) <= 3 {
				e.Health -= 34
			}
		}
		for key, cid := range creatures.ByBuilding {
			if ChebyshevDistance(key, e.Key) <= 2 {
				if c, ok := creatures.Captured[cid]; ok {
					e.Health -= creatureCombatDamage[c.Kind]
				}
			}
		}
		if e.Health <= 0 {
			delete(r.Hiss, hid)
			for _, tk := range turretKeys {
				if ChebyshevDistance(tk, e.Key) <= 3 {
					kills = append(kills, tk)
					break
				}
			}
		}
	}

	for _, tk := range kills {
		b := store.GetBuilding(tk)
		if b == nil {
			continue
		}
		st, ok := b.State.(DefenseState)
		if !ok {
			continue
		}
		st.Kills++
		if st.OutputBuffer == nil {
			residue := ItemHissResidue
			st.OutputBuffer = &residue
		}
		nb := *b
		nb.State = st
		store.PutBuilding(tk, &nb)
	}
	return kills
}

// PurifyTick implements spec.md §4.6's purification rule.
func PurifyTick(registry *CorruptionRegistry, store *SpatialStore, beaconRadius int) {
	all := store.AllBuildings()
	var beacons []TileKey
	for _, k := range SortedKeys(all) {
		if all[k].Type == TypePurificationBeacon {
			beacons = append(beacons, k)
		}
	}
	for _, bk := range beacons {
		for _, ck := range registry.sortedCellKeys() {
			cell, ok := registry.Cells[ck]
			if !ok || ck.Face != bk.Face || ChebyshevDistance(bk, ck) > beaconRadius {
				continue
			}
			cell.Intensity--
			if cell.Intensity <= 0 {
				delete(registry.Cells, ck)
			}
		}
	}
}
