package sim

// CreatureBoostKind distinguishes the boost a creature contributes when
// assigned to a building (spec.md §4.2 step 1, §4.5).
type CreatureBoostKind string

const (
	BoostNone  CreatureBoostKind = ""
	BoostSpeed CreatureBoostKind = "speed"
)

// CreatureBoost is the per-building boost contribution looked up via the
// creature reverse index (spec.md §3 "reverse index building_key → creature
// for O(1) boost lookup").
type CreatureBoost struct {
	Kind    CreatureBoostKind
	Evolved bool
}

// PlayerTrinkets is the explicit, passed-in ambient state for a player's
// held Objects of Power (Design Note §9: "runtime state ... is an explicit
// store passed into kernels, never ambient").
type PlayerTrinkets map[TrinketKind]bool

// TickContext is the read-only environment threaded into every Behavior
// Kernel invocation this tick (spec.md §4.2, Design Note §9). It carries
// no mutable ambient globals; every lookup is an explicit field.
type TickContext struct {
	Tick         int
	ShiftPhase   int
	CreatureBoosts map[TileKey]CreatureBoost
	Trinkets     map[PlayerID]PlayerTrinkets
	PowerRatio   map[string]float64 // networkID -> load/capacity, >1 means brownout
	LitTurretAt  func(key TileKey, radius int) bool
	Illumination func(key TileKey) float64
}

func (c *TickContext) trinketsFor(b *Building) PlayerTrinkets {
	if b.OwnerID == nil {
		return nil
	}
	return c.Trinkets[*b.OwnerID]
}

// shiftCycleExtractorModifier is the biome-phase lookup consulted by the
// boost pipeline's step 4 (spec.md §4.2 "shift-cycle biome modifier (table
// per phase)"), grounded on Design Note §9's "flatten into immutable
// compile-time lookup tables" guidance. Indexed by shift phase (0..3) then
// terrain.
var shiftCycleExtractorModifier = [4]map[Terrain]float64{
	0: {TerrainGrassland: 1.0, TerrainDesert: 0.9, TerrainTundra: 0.9, TerrainForest: 1.0, TerrainVolcanic: 0.8},
	1: {TerrainGrassland: 0.9, TerrainDesert: 1.1, TerrainTundra: 0.8, TerrainForest: 0.9, TerrainVolcanic: 1.0},
	2: {TerrainGrassland: 1.0, TerrainDesert: 1.0, TerrainTundra: 1.0, TerrainForest: 1.0, TerrainVolcanic: 1.0},
	3: {TerrainGrassland: 0.8, TerrainDesert: 0.9, TerrainTundra: 1.1, TerrainForest: 0.8, TerrainVolcanic: 0.9},
}

// EffectiveRate applies the boost pipeline (spec.md §4.2 "Boost pipeline")
// to a building's base rate, returning the ticks-per-cycle used this tick
// (floor 1). key identifies the building for the creature reverse-index
// lookup; isExtractor gates step 4; tile is needed for step 4's terrain
// lookup and may be nil for non-extractor classes.
func EffectiveRate(key TileKey, b *Building, tile *Tile, isExtractor bool, ctx *TickContext) int {
	rate := float64(b.Rate)
	if rate <= 0 {
		rate = 1
	}

	boost := ctx.CreatureBoosts[key]
	trinkets := ctx.trinketsFor(b)

	// Step 1: speed-type creature boost.
	if boost.Kind == BoostSpeed {
		if boost.Evolved {
			rate /= 2.0
		}
		if trinkets[TrinketEntityCommunion] {
			rate /= 1.5
		}
	}

	// Step 2: overclock altered effect.
	if b.AlteredEffect == AlteredOverclock {
		rate *= 0.5
	}

	// Step 3: Production-Surge trinket.
	if trinkets[TrinketProductionSurge] {
		rate *= 0.9
	}

	// Step 4: shift-cycle biome modifier, extractors only.
	if isExtractor && tile != nil {
		phaseTable := shiftCycleExtractorModifier[ctx.ShiftPhase%4]
		if mod, ok := phaseTable[tile.Terrain]; ok {
			rate *= mod
		}
	}

	// Step 5: unpowered / brownout penalty.
	tier := b.Type.Tier()
	if tier > 0 {
		if b.NetworkID == "" {
			rate *= float64(tier + 1)
		} else if ratio, ok := ctx.PowerRatio[b.NetworkID]; ok && ratio > 1 {
			rate *= ratio
		}
	}

	// Step 6: Logistics-Mastery trinket, conveyors only.
	if isConveyor(b.Type) && trinkets[TrinketLogisticsMastery] {
		rate *= 0.8
	}

	if rate < 1 {
		rate = 1
	}
	return int(rate + 0.5)
}

func isConveyor(t BuildingType) bool {
	return t == TypeConveyorMk1 || t == TypeConveyorMk2 || t == TypeConveyorMk3
}

// Additional trinket kinds referenced by the boost pipeline beyond the
// rate-multiplier table in tables.go (spec.md §4.2, §4.5).
const (
	TrinketEntityCommunion  TrinketKind = "entity_communion"
	TrinketProductionSurge  TrinketKind = "production_surge"
	TrinketLogisticsMastery TrinketKind = "logistics_mastery"
	TrinketAlteredResonance TrinketKind = "altered_resonance"
)
