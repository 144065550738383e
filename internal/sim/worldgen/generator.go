package worldgen

import (
	"github.com/hollowsphere/core/internal/sim"
)

// NoiseLayerConfig mirrors the teacher's worldgen.NoiseLayerConfig shape,
// trimmed to the three layers this generator drives.
type NoiseLayerConfig struct {
	Octaves     int
	Frequency   float64
	Persistence float64
}

// Config controls terrain/resource/altered-item generation.
type Config struct {
	Elevation   NoiseLayerConfig
	Moisture    NoiseLayerConfig
	Temperature NoiseLayerConfig

	ResourceChance    float64
	AlteredItemChance float64
}

// DefaultConfig returns the generation defaults.
func DefaultConfig() Config {
	return Config{
		Elevation:         NoiseLayerConfig{Octaves: 4, Frequency: 0.04, Persistence: 0.5},
		Moisture:          NoiseLayerConfig{Octaves: 3, Frequency: 0.05, Persistence: 0.45},
		Temperature:       NoiseLayerConfig{Octaves: 3, Frequency: 0.03, Persistence: 0.5},
		ResourceChance:    0.12,
		AlteredItemChance: 0.02,
	}
}

// biomeRule is one row of the elevation/moisture/temperature -> terrain
// classification table, grounded on the teacher's BiomeDistribution
// (priority-ordered range match).
type biomeRule struct {
	elevMin, elevMax   float64
	moistMin, moistMax float64
	tempMin, tempMax   float64
	terrain            sim.Terrain
	priority           int
}

var biomeRules = []biomeRule{
	{0.80, 1.0, 0.0, 1.0, 0.0, 1.0, sim.TerrainTundra, 100},
	{0.0, 1.0, 0.0, 1.0, 0.75, 1.0, sim.TerrainVolcanic, 90},
	{0.0, 1.0, 0.0, 0.30, 0.45, 1.0, sim.TerrainDesert, 80},
	{0.0, 1.0, 0.55, 1.0, 0.0, 0.65, sim.TerrainForest, 70},
	{0.0, 1.0, 0.0, 1.0, 0.0, 1.0, sim.TerrainGrassland, 0},
}

func classifyTerrain(elev, moist, temp float64) sim.Terrain {
	best := biomeRules[len(biomeRules)-1]
	for _, r := range biomeRules {
		if elev >= r.elevMin && elev <= r.elevMax &&
			moist >= r.moistMin && moist <= r.moistMax &&
			temp >= r.tempMin && temp <= r.tempMax &&
			r.priority > best.priority {
			best = r
		}
	}
	return best.terrain
}

// resourcesByTerrain lists which resources may spawn on which terrain,
// grounded on the teacher's per-biome resource-table pattern in
// loot_tables.go.
var resourcesByTerrain = map[sim.Terrain][]sim.ResourceKind{
	sim.TerrainGrassland: {sim.ResourceIronOre, sim.ResourceCopperOre},
	sim.TerrainDesert:    {sim.ResourceCopperOre, sim.ResourceOilSeep},
	sim.TerrainTundra:    {sim.ResourceIronOre, sim.ResourceCrystalVein},
	sim.TerrainForest:    {sim.ResourceCoal, sim.ResourceIronOre},
	sim.TerrainVolcanic:  {sim.ResourceCrystalVein, sim.ResourceOilSeep, sim.ResourceCoal},
}

var alteredItemPool = []sim.AlteredItem{
	sim.AlteredOverclock,
	sim.AlteredDuplication,
	sim.AlteredPurifiedSmelting,
	sim.AlteredTrapRadius,
	sim.AlteredTeleportOutput,
	sim.AlteredThermalAnomaly,
	sim.AlteredSpatialDistortion,
}

// Generate populates store with one Tile per (face, row, col) cell
// (spec.md §3 "Tiles: created at world generation ... never destroyed").
// Each face is offset in noise-space by its index so adjacent faces don't
// repeat an identical pattern, a concrete stand-in for true face-normal
// sampling (the sphere mesh's exact embedding is assumed external, per
// spec.md §1).
func Generate(store *sim.SpatialStore, seed int64, subdivisions int, cfg Config) {
	elevNoise := NewNoiseGenerator(seed)
	moistNoise := NewNoiseGenerator(seed + 1000)
	tempNoise := NewNoiseGenerator(seed + 2000)
	itemNoise := NewNoiseGenerator(seed + 3000)

	for face := 0; face < sim.FaceCount; face++ {
		faceOffsetX := float64(face) * 1000.0
		for row := 0; row < subdivisions; row++ {
			for col := 0; col < subdivisions; col++ {
				x := faceOffsetX + float64(col)
				y := float64(row)

				elev := elevNoise.Octave2D(x, y, cfg.Elevation.Octaves, cfg.Elevation.Frequency, cfg.Elevation.Persistence)
				moist := moistNoise.Octave2D(x, y, cfg.Moisture.Octaves, cfg.Moisture.Frequency, cfg.Moisture.Persistence)
				temp := tempNoise.Octave2D(x, y, cfg.Temperature.Octaves, cfg.Temperature.Frequency, cfg.Temperature.Persistence)

				terrain := classifyTerrain(elev, moist, temp)
				key := sim.TileKey{Face: face, Row: row, Col: col}

				tile := &sim.Tile{Key: key, Terrain: terrain}

				roll := itemNoise.Eval2D(x*0.37, y*0.37)
				if roll < cfg.ResourceChance {
					if kinds := resourcesByTerrain[terrain]; len(kinds) > 0 {
						idx := int(roll / cfg.ResourceChance * float64(len(kinds)))
						if idx >= len(kinds) {
							idx = len(kinds) - 1
						}
						tile.Resource = &sim.Resource{Kind: kinds[idx], Amount: 500 + idx*100}
					}
				} else if roll < cfg.ResourceChance+cfg.AlteredItemChance {
					frac := (roll - cfg.ResourceChance) / cfg.AlteredItemChance
					idx := int(frac * float64(len(alteredItemPool)))
					if idx >= len(alteredItemPool) {
						idx = len(alteredItemPool) - 1
					}
					tile.AlteredItem = alteredItemPool[idx]
				}

				store.PutTile(tile)
			}
		}
	}
}
