package sim

// Recipe describes one producer's input requirements and output (spec.md
// §4.2). Inputs are ordered to match a ProducerState's Inputs slice.
type Recipe struct {
	Inputs    []ItemKind
	Output    ItemKind
	OutputQty int
	Ticks     int // processing time in ticks
}

// recipes maps each producer BuildingType to its recipe table, grounded on
// the teacher's crafting.go recipe-registry pattern but keyed directly by
// BuildingType rather than a free-floating item-graph, since spec.md fixes
// one recipe per producer class rather than a player-selectable graph.
var recipes = map[BuildingType]Recipe{
	TypeMiner: {
		Inputs: nil, Output: ItemIronOre, OutputQty: 1, Ticks: 2,
	},
	TypeDistiller: {
		Inputs: []ItemKind{ItemOil}, Output: ItemFuelCell, OutputQty: 1, Ticks: 3,
	},
	TypeProcessor: {
		Inputs: []ItemKind{ItemIronOre}, Output: ItemIronIngot, OutputQty: 1, Ticks: 3,
	},
	TypeAssembler: {
		Inputs: []ItemKind{ItemIronIngot, ItemCopperIngot}, Output: ItemGear, OutputQty: 1, Ticks: 4,
	},
	TypeAdvancedForge: {
		Inputs: []ItemKind{ItemIronIngot, ItemCoal}, Output: ItemFerricIngot, OutputQty: 1, Ticks: 5,
	},
	TypeFabricationPlant: {
		Inputs: []ItemKind{ItemGear, ItemFerricIngot}, Output: ItemCircuit, OutputQty: 1, Ticks: 6,
	},
	TypeParticleCollider: {
		Inputs: []ItemKind{ItemCrystal, ItemCircuit}, Output: ItemAlloyPlate, OutputQty: 1, Ticks: 8,
	},
	TypeNuclearRefinery: {
		Inputs: []ItemKind{ItemFerricIngot, ItemFuelCell, ItemCrystal}, Output: ItemAlloyPlate, OutputQty: 2, Ticks: 10,
	},
	TypeParanaturalSynth: {
		Inputs: []ItemKind{ItemHissResidue, ItemCrystal, ItemCircuit}, Output: ItemAlloyPlate, OutputQty: 3, Ticks: 12,
	},
	TypeBoardInterface: {
		Inputs: []ItemKind{ItemAlloyPlate, ItemCircuit, ItemFuelCell}, Output: ItemCircuit, OutputQty: 4, Ticks: 14,
	},
}

// RecipeFor returns the recipe bound to a producer BuildingType and
// whether one exists.
func RecipeFor(t BuildingType) (Recipe, bool) {
	r, ok := recipes[t]
	return r, ok
}

// resourceYield maps a tile's ResourceKind to the item an Miner on that
// tile extracts (spec.md §3, §4.2).
var resourceYield = map[ResourceKind]ItemKind{
	ResourceIronOre:     ItemIronOre,
	ResourceCopperOre:   ItemCopperOre,
	ResourceCoal:        ItemCoal,
	ResourceCrystalVein: ItemCrystal,
	ResourceOilSeep:     ItemOil,
}

// ItemYieldFor returns the item kind a given tile resource extracts to.
func ItemYieldFor(kind ResourceKind) (ItemKind, bool) {
	item, ok := resourceYield[kind]
	return item, ok
}

// placementCost maps each placeable BuildingType to its construction
// requirement (spec.md §3 "Construction"). The cheapest buildings
// (Conveyor Mk-I, Distributor, Converger, Gathering Post) need a single
// delivered item; the other logistics buildings need two or more, and
// higher-tier producers require progressively more exotic inputs.
var placementCost = map[BuildingType]map[ItemKind]int{
	TypeConveyorMk1:        {ItemIronOre: 1},
	TypeConveyorMk2:        {ItemIronIngot: 2},
	TypeConveyorMk3:        {ItemFerricIngot: 2},
	TypeMiner:              {ItemIronIngot: 2},
	TypeDistiller:          {ItemIronIngot: 3, ItemCircuit: 1},
	TypeProcessor:          {ItemIronIngot: 3},
	TypeAssembler:          {ItemIronIngot: 4, ItemGear: 2},
	TypeAdvancedForge:      {ItemFerricIngot: 4, ItemCircuit: 2},
	TypeFabricationPlant:   {ItemAlloyPlate: 3, ItemCircuit: 4},
	TypeParticleCollider:   {ItemAlloyPlate: 6, ItemCrystal: 4},
	TypeNuclearRefinery:    {ItemAlloyPlate: 10, ItemCircuit: 8},
	TypeParanaturalSynth:   {ItemAlloyPlate: 14, ItemHissResidue: 6},
	TypeBoardInterface:     {ItemAlloyPlate: 20, ItemCircuit: 12},
	TypeDistributor:        {ItemIronIngot: 1},
	TypeLoadEqualizer:      {ItemIronIngot: 2},
	TypeConverger:          {ItemIronIngot: 1},
	TypeTransitInterchange: {ItemIronIngot: 3},
	TypeSubsurfaceLink:     {ItemFerricIngot: 3, ItemCircuit: 1},
	TypeContainmentVault:   {ItemAlloyPlate: 2},
	TypeSubmissionTerminal: {ItemCircuit: 3},
	TypeTradeTerminal:      {ItemCircuit: 3, ItemAlloyPlate: 1},
	TypeBioGenerator:       {ItemIronIngot: 3},
	TypeShadowPanel:        {ItemCircuit: 2, ItemAlloyPlate: 1},
	TypeSubstation:         {ItemCopperIngot: 4},
	TypeTransferStation:    {ItemCopperIngot: 2},
	TypeContainmentTrap:    {ItemCircuit: 2},
	TypeDefenseTurret:      {ItemAlloyPlate: 2, ItemCircuit: 2},
	TypePurificationBeacon: {ItemAlloyPlate: 4, ItemCrystal: 2},
	TypeDimensionalStabilizer: {ItemAlloyPlate: 6, ItemCrystal: 4},
	TypeGatheringPost:      {ItemIronIngot: 1},
}

// NewConstruction returns the Construction gate for a freshly placed
// building of the given type.
func NewConstruction(t BuildingType) *Construction {
	cost, ok := placementCost[t]
	if !ok {
		return &Construction{Complete: true}
	}
	required := make(map[ItemKind]int, len(cost))
	for k, v := range cost {
		required[k] = v
	}
	return &Construction{Required: required, Delivered: make(map[ItemKind]int)}
}

// shiftCyclePeriod is the number of ticks each shift-cycle phase lasts.
// The Driver derives the current phase (0..3) as
// tick / shiftCyclePeriod % 4; that phase feeds the boost pipeline's
// "shift-cycle" multiplier (spec.md §4.2 step 4) and the Shadow Panel
// illumination.
const shiftCyclePeriod = 20

// PowerNetworkCheckInterval is the tick interval at which the Power
// Resolver recomputes connected components (spec.md §4.4: "recomputed
// every 5 ticks").
const PowerNetworkCheckInterval = 5

// TrinketKind enumerates Object-of-Power trinkets a player may hold.
// EffectiveRate does not consult these kinds or TrinketMultiplier; its
// step 3 multiplier reads the trinket kinds declared in boost.go.
type TrinketKind string

const (
	TrinketNone          TrinketKind = ""
	TrinketOverclockCore TrinketKind = "overclock_core"
	TrinketSurgeCrown    TrinketKind = "surge_crown"
)

// TrinketMultiplier returns the rate multiplier contributed by a held
// trinket.
func TrinketMultiplier(k TrinketKind) float64 {
	switch k {
	case TrinketOverclockCore:
		return 1.25
	case TrinketSurgeCrown:
		return 1.5
	default:
		return 1.0
	}
}
