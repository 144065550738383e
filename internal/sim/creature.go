package sim

import (
	"sort"

	"github.com/google/uuid"
)

// CreatureKind is a wild/captured creature's species, which gates which
// biomes it spawns in and what boost it grants once assigned (spec.md §3,
// §4.5).
type CreatureKind string

// creatureBiomes maps each species to the terrains it may spawn on
// (spec.md §4.5 "pick a creature type whose biomes set contains the
// tile's terrain"), flattened as an immutable compile-time table per
// Design Note §9.
var creatureBiomes = map[CreatureKind][]Terrain{
	"ember_vole":    {TerrainVolcanic, TerrainDesert},
	"frost_hare":    {TerrainTundra},
	"glade_strider": {TerrainGrassland, TerrainForest},
	"dune_runner":   {TerrainDesert},
}

// creatureBoostKind maps each species to the boost it contributes once
// assigned (spec.md §4.5 "supplies boost multipliers").
var creatureBoostKind = map[CreatureKind]CreatureBoostKind{
	"ember_vole":    BoostSpeed,
	"frost_hare":    BoostSpeed,
	"glade_strider": BoostSpeed,
	"dune_runner":   BoostSpeed,
}

// creatureCombatDamage is the type-specific Hiss combat damage dealt by an
// assigned creature within range (spec.md §4.6 "15-35").
var creatureCombatDamage = map[CreatureKind]int{
	"ember_vole":    25,
	"frost_hare":    15,
	"glade_strider": 20,
	"dune_runner":   35,
}

// WildCreature is an unowned creature roaming the world (spec.md §3).
type WildCreature struct {
	ID        uuid.UUID
	Kind      CreatureKind
	Key       TileKey
	SpawnedAt int
}

// CapturedCreature is a creature that has joined a player's roster
// (spec.md §3).
type CapturedCreature struct {
	ID         uuid.UUID
	Kind       CreatureKind
	Owner      PlayerID
	AssignedTo *TileKey
	CapturedAt int
	Evolved    bool
}

// CreatureConfig carries the tunables of spec.md §4.5/§6.
type CreatureConfig struct {
	SpawnInterval           int
	MoveInterval            int
	CaptureRadius           int
	CaptureTime             int
	MaxWild                 int
	EvolutionSeconds        int
	EvolutionCheckInterval  int
	TickIntervalMs          int
}

// CreatureRegistry owns the wild set, the captured roster, the
// building->creature reverse index, and per-trap capture-progress
// tracking (spec.md §3, §4.5). Mutated only within the Creature phase
// (spec.md §5 "Shared-resource policy").
type CreatureRegistry struct {
	Wild      map[uuid.UUID]*WildCreature
	Captured  map[uuid.UUID]*CapturedCreature
	ByBuilding map[TileKey]uuid.UUID // reverse index, assigned creature per building

	trapProgress map[TileKey]trapCapture
}

type trapCapture struct {
	target uuid.UUID
	ticks  int
}

// NewCreatureRegistry returns an empty registry.
func NewCreatureRegistry() *CreatureRegistry {
	return &CreatureRegistry{
		Wild:         make(map[uuid.UUID]*WildCreature),
		Captured:     make(map[uuid.UUID]*CapturedCreature),
		ByBuilding:   make(map[TileKey]uuid.UUID),
		trapProgress: make(map[TileKey]trapCapture),
	}
}

// BoostFor returns the boost an assigned creature contributes to key, or
// the zero value if none is assigned (spec.md §3 "reverse index ...
// for O(1) boost lookup").
func (r *CreatureRegistry) BoostFor(key TileKey) CreatureBoost {
	id, ok := r.ByBuilding[key]
	if !ok {
		return CreatureBoost{}
	}
	c, ok := r.Captured[id]
	if !ok {
		return CreatureBoost{}
	}
	return CreatureBoost{Kind: creatureBoostKind[c.Kind], Evolved: c.Evolved}
}

// Boosts snapshots the full reverse-index as a TickContext input.
func (r *CreatureRegistry) Boosts() map[TileKey]CreatureBoost {
	out := make(map[TileKey]CreatureBoost, len(r.ByBuilding))
	for key := range r.ByBuilding {
		out[key] = r.BoostFor(key)
	}
	return out
}

// SpawnTick implements spec.md §4.5's spawn rule against an explicit
// MaxWild and a concrete set of candidate tiles. candidateTiles supplies
// up to three random tiles (the Driver draws them with
// NewRNG(worldSeed, tick, 10)) so spawn placement stays same-seed
// reproducible.
func (r *CreatureRegistry) SpawnTick(store *SpatialStore, candidateTiles []*Tile, maxWild int, rng *RNG) {
	for _, tile := range candidateTiles {
		if len(r.Wild) >= maxWild {
			return
		}
		if store.HasBuilding(tile.Key) {
			continue
		}
		kind, ok := pickCreatureKind(tile.Terrain, rng)
		if !ok {
			continue
		}
		id := uuid.New()
		r.Wild[id] = &WildCreature{ID: id, Kind: kind, Key: tile.Key}
	}
}

func pickCreatureKind(terrain Terrain, rng *RNG) (CreatureKind, bool) {
	var candidates []CreatureKind
	kinds := make([]CreatureKind, 0, len(creatureBiomes))
	for k := range creatureBiomes {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	for _, k := range kinds {
		for _, t := range creatureBiomes[k] {
			if t == terrain {
				candidates = append(candidates, k)
				break
			}
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	return candidates[rng.Intn(len(candidates))], true
}

// Move implements spec.md §4.5's movement rule, run every MoveInterval
// ticks. attractorAt returns the nearest Gathering Post within Chebyshev 7
// on the same face, if any.
func (r *CreatureRegistry) Move(store *SpatialStore, subdivisions int, attractorAt func(TileKey) (TileKey, bool), rng *RNG) {
	ids := make([]uuid.UUID, 0, len(r.Wild))
	for id := range r.Wild {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	for _, id := range ids {
		c := r.Wild[id]
		var dir Direction
		if target, ok := attractorAt(c.Key); ok && rng.Bool(0.30) {
			dir = directionToward(c.Key, target)
		} else {
			dir = rng.Direction()
		}
		dst, ok := Neighbor(c.Key, dir, subdivisions)
		if !ok {
			continue
		}
		if store.HasBuilding(dst) {
			continue
		}
		c.Key = dst
	}
}

// directionToward picks the cardinal step that most reduces Chebyshev
// distance to target (spec.md §4.5 "choose a direction toward the
// nearest Gathering Post").
func directionToward(from, to TileKey) Direction {
	dr := to.Row - from.Row
	dc := to.Col - from.Col
	if abs(dr) >= abs(dc) {
		if dr < 0 {
			return North
		}
		return South
	}
	if dc < 0 {
		return West
	}
	return East
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// captureRadiusFor applies the Spatial-Distortion / Resonance-Cascade /
// Altered-Resonance multipliers to the base capture radius (spec.md §4.5
// "tripled ... doubled again ... doubled again ... applied
// multiplicatively").
func captureRadiusFor(base int, spatialDistortion, resonanceCascade bool, trinket bool) int {
	r := base
	if spatialDistortion {
		r *= 3
	}
	if resonanceCascade {
		r *= 2
	}
	if trinket {
		r *= 2
	}
	return r
}

// CaptureTick implements spec.md §4.5's Containment Trap capture rule.
// traps lists every Containment Trap key with its radius modifiers
// resolved by the caller (tile altered effect, active world event,
// owner's trinket set).
func (r *CreatureRegistry) CaptureTick(store *SpatialStore, subdivisions int, captureTime int, tick int, traps map[TileKey]int) {
	keys := make([]TileKey, 0, len(traps))
	for k := range traps {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	for _, trapKey := range keys {
		radius := traps[trapKey]
		b := store.GetBuilding(trapKey)
		if b == nil {
			continue
		}
		st, ok := b.State.(ContainmentTrapState)
		if !ok {
			continue
		}

		target := r.nearestWild(trapKey, radius)
		if target == nil {
			st.Capturing = nil
			st.CaptureProgress = 0
		} else if st.Capturing != nil && *st.Capturing == target.ID {
			st.CaptureProgress++
			if st.CaptureProgress >= captureTime {
				r.capture(target, b.OwnerID, tick)
				st.Capturing = nil
				st.CaptureProgress = 0
			}
		} else {
			st.Capturing = &target.ID
			st.CaptureProgress = 1
		}

		nb := *b
		nb.State = st
		store.PutBuilding(trapKey, &nb)
	}
}

func (r *CreatureRegistry) nearestWild(center TileKey, radius int) *WildCreature {
	var best *WildCreature
	bestDist := radius + 1
	ids := make([]uuid.UUID, 0, len(r.Wild))
	for id := range r.Wild {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	for _, id := range ids {
		c := r.Wild[id]
		d := ChebyshevDistance(center, c.Key)
		if d <= radius && d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

func (r *CreatureRegistry) capture(c *WildCreature, owner *PlayerID, tick int) {
	delete(r.Wild, c.ID)
	if owner == nil {
		return
	}
	r.Captured[c.ID] = &CapturedCreature{ID: c.ID, Kind: c.Kind, Owner: *owner, CapturedAt: tick}
}

// Assign implements spec.md §4.5's assignment rule.
func (r *CreatureRegistry) Assign(creatureID uuid.UUID, key TileKey, building *Building, actingPlayer PlayerID) error {
	c, ok := r.Captured[creatureID]
	if !ok {
		return ErrCreatureNotFound
	}
	if c.Owner != actingPlayer {
		return ErrNotOwner
	}
	if building.Type == TypeConveyorMk1 || building.Type == TypeConveyorMk2 ||
		building.Type == TypeConveyorMk3 || building.Type == TypeContainmentTrap ||
		building.Type == TypeSubmissionTerminal {
		return ErrInvalidAssignmentType
	}
	if _, occupied := r.ByBuilding[key]; occupied {
		return ErrAlreadyAssigned
	}
	c.AssignedTo = &key
	r.ByBuilding[key] = creatureID
	return nil
}

// Unassign implements spec.md §4.5's unassignment rule: clears both the
// roster record and the reverse index without resetting CapturedAt (the
// evolution timer keeps counting from original capture, per Design Note
// §9 open question 1 resolved in DESIGN.md).
func (r *CreatureRegistry) Unassign(creatureID uuid.UUID) {
	c, ok := r.Captured[creatureID]
	if !ok {
		return
	}
	if c.AssignedTo != nil {
		delete(r.ByBuilding, *c.AssignedTo)
	}
	c.AssignedTo = nil
}

// EvolutionCheck implements spec.md §4.5's evolution rule, run every
// EvolutionCheckInterval ticks.
func (r *CreatureRegistry) EvolutionCheck(tick int, evolutionTicks int) {
	ids := make([]uuid.UUID, 0, len(r.Captured))
	for id := range r.Captured {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	for _, id := range ids {
		c := r.Captured[id]
		if c.AssignedTo != nil && !c.Evolved && tick-c.CapturedAt >= evolutionTicks {
			c.Evolved = true
		}
	}
}
