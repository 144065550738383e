package sim

// Terrain is a tile's immutable biome classification (spec.md §3).
type Terrain string

const (
	TerrainGrassland Terrain = "grassland"
	TerrainDesert    Terrain = "desert"
	TerrainTundra    Terrain = "tundra"
	TerrainForest    Terrain = "forest"
	TerrainVolcanic  Terrain = "volcanic"
)

// ResourceKind identifies a tile's extractable resource type.
type ResourceKind string

const (
	ResourceIronOre    ResourceKind = "iron_ore"
	ResourceCopperOre  ResourceKind = "copper_ore"
	ResourceCoal       ResourceKind = "coal"
	ResourceCrystalVein ResourceKind = "crystal_vein"
	ResourceOilSeep    ResourceKind = "oil_seep"
)

// Resource is an optional, depletable tile attribute (spec.md §3:
// "optional resource = (kind, amount>0) with amount monotonically
// decreasing").
type Resource struct {
	Kind   ResourceKind
	Amount int
}

// AlteredItem is an immutable tile modifier set at world generation,
// altering the behavior of whatever building is later placed on the tile
// (spec.md §3, §4.2, §4.3).
type AlteredItem string

const (
	AlteredNone             AlteredItem = ""
	AlteredOverclock        AlteredItem = "overclock"
	AlteredDuplication      AlteredItem = "duplication"
	AlteredPurifiedSmelting AlteredItem = "purified_smelting"
	AlteredTrapRadius       AlteredItem = "trap_radius"
	AlteredTeleportOutput   AlteredItem = "teleport_output"
	AlteredThermalAnomaly   AlteredItem = "thermal_anomaly"
	AlteredSpatialDistortion AlteredItem = "spatial_distortion"
)

// Tile is a single cell of the grid (spec.md §3). Terrain is immutable
// after generation; Resource.Amount is mutated only through the Spatial
// Store's SetResourceAmount (so the dirty bit is always recorded);
// AlteredItem is immutable once generated.
type Tile struct {
	Key         TileKey
	Terrain     Terrain
	Resource    *Resource
	AlteredItem AlteredItem
}

// HasResource reports whether the tile currently has a non-empty resource.
func (t *Tile) HasResource() bool {
	return t.Resource != nil && t.Resource.Amount > 0
}
