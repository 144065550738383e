package sim

import "github.com/google/uuid"

// PlayerID identifies an owning player. Buildings may outlive a
// disconnected player (spec.md §3: "weak back-reference").
type PlayerID = uuid.UUID

// BuildingType enumerates every placeable building class (spec.md §3, §4.2).
type BuildingType string

const (
	TypeConveyorMk1 BuildingType = "conveyor_mk1"
	TypeConveyorMk2 BuildingType = "conveyor_mk2"
	TypeConveyorMk3 BuildingType = "conveyor_mk3"

	TypeMiner         BuildingType = "miner"
	TypeDistiller     BuildingType = "distiller"
	TypeProcessor     BuildingType = "processor"
	TypeAssembler     BuildingType = "assembler"
	TypeAdvancedForge BuildingType = "advanced_forge"
	TypeFabricationPlant BuildingType = "fabrication_plant"
	TypeParticleCollider BuildingType = "particle_collider"
	TypeNuclearRefinery  BuildingType = "nuclear_refinery"
	TypeParanaturalSynth BuildingType = "paranatural_synthesizer"
	TypeBoardInterface   BuildingType = "board_interface"

	TypeDistributor    BuildingType = "distributor"
	TypeLoadEqualizer   BuildingType = "load_equalizer"
	TypeConverger       BuildingType = "converger"
	TypeTransitInterchange BuildingType = "transit_interchange"
	TypeSubsurfaceLink  BuildingType = "subsurface_link"

	TypeContainmentVault    BuildingType = "containment_vault"
	TypeSubmissionTerminal  BuildingType = "submission_terminal"
	TypeTradeTerminal       BuildingType = "trade_terminal"

	TypeBioGenerator BuildingType = "bio_generator"
	TypeShadowPanel  BuildingType = "shadow_panel"
	TypeSubstation   BuildingType = "substation"
	TypeTransferStation BuildingType = "transfer_station"

	TypeContainmentTrap   BuildingType = "containment_trap"
	TypeDefenseTurret     BuildingType = "defense_turret"
	TypePurificationBeacon BuildingType = "purification_beacon"
	TypeDimensionalStabilizer BuildingType = "dimensional_stabilizer"
	TypeGatheringPost     BuildingType = "gathering_post"
)

// Tier returns the building's power-draw tier, used by the unpowered
// penalty in the boost pipeline (spec.md §4.2 step 5: "tier > 0 and not in
// any network, multiply by tier + 1"). Tier 0 buildings never draw power.
func (t BuildingType) Tier() int {
	switch t {
	case TypeConveyorMk1, TypeConveyorMk2, TypeConveyorMk3, TypeDistributor,
		TypeLoadEqualizer, TypeConverger, TypeTransitInterchange, TypeSubsurfaceLink,
		TypeContainmentVault, TypeGatheringPost, TypeContainmentTrap, TypePurificationBeacon,
		TypeDimensionalStabilizer:
		return 0
	case TypeMiner, TypeDistiller, TypeProcessor:
		return 1
	case TypeAssembler, TypeAdvancedForge, TypeSubmissionTerminal, TypeTradeTerminal,
		TypeDefenseTurret:
		return 2
	case TypeFabricationPlant, TypeParticleCollider:
		return 3
	case TypeNuclearRefinery, TypeParanaturalSynth, TypeBoardInterface:
		return 4
	default:
		return 0
	}
}

// PowerDraw returns the building's load contribution when powered and on
// (spec.md §4.4 step 7).
func (t BuildingType) PowerDraw() int {
	switch t {
	case TypeProcessor:
		return 2
	case TypeDistiller, TypeAssembler, TypeAdvancedForge:
		return 8
	case TypeFabricationPlant:
		return 12
	case TypeParticleCollider:
		return 20
	case TypeNuclearRefinery, TypeParanaturalSynth, TypeBoardInterface:
		return 30
	case TypeDefenseTurret:
		return 4
	default:
		return 0
	}
}

// ItemKind identifies a discrete resource/product unit moved between
// buildings (spec.md's GLOSSARY "Item").
type ItemKind string

const (
	ItemIronOre     ItemKind = "iron_ore"
	ItemCopperOre   ItemKind = "copper_ore"
	ItemCoal        ItemKind = "coal"
	ItemCrystal     ItemKind = "crystal"
	ItemOil         ItemKind = "oil"
	ItemIronIngot   ItemKind = "iron_ingot"
	ItemFerricIngot ItemKind = "ferric_ingot"
	ItemCopperIngot ItemKind = "copper_ingot"
	ItemGear        ItemKind = "gear"
	ItemCircuit     ItemKind = "circuit"
	ItemAlloyPlate  ItemKind = "alloy_plate"
	ItemFuelCell    ItemKind = "fuel_cell"
	ItemHissResidue ItemKind = "hiss_residue"
	ItemBiomass     ItemKind = "biomass"
)

// Side is used by Distributor/Load Equalizer output memory (spec.md §3).
type Side string

const (
	SideLeft  Side = "L"
	SideRight Side = "R"
)

// Construction tracks the delivery of a building's placement cost before
// it becomes production-inert-free (spec.md §3).
type Construction struct {
	Required  map[ItemKind]int
	Delivered map[ItemKind]int
	Complete  bool
}

// NeedsItem reports whether kind is still short of its required count.
func (c *Construction) NeedsItem(kind ItemKind) bool {
	if c == nil {
		return false
	}
	return c.Delivered[kind] < c.Required[kind]
}

// Deliver adds one unit of kind towards the construction cost, marking
// Complete once every requirement is met.
func (c *Construction) Deliver(kind ItemKind) {
	if c == nil || c.Complete {
		return
	}
	if c.Delivered == nil {
		c.Delivered = make(map[ItemKind]int)
	}
	c.Delivered[kind]++
	for k, need := range c.Required {
		if c.Delivered[k] < need {
			return
		}
	}
	c.Complete = true
}

// Building is the invariant record of spec.md §3. State is a tagged union
// held behind the BuildingState interface; the reserved fields below are
// universal across every class.
type Building struct {
	Type        BuildingType
	Orientation Direction
	OwnerID     *PlayerID

	Rate          int
	AlteredEffect AlteredItem
	Construction  *Construction
	PoweredUser   bool // operator on/off flag; independent of network membership

	NetworkID string // power network cache membership, "" if disconnected

	State BuildingState
}

// Operational reports whether a building may produce, draw power, or push
// items this tick (spec.md Invariant 2).
func (b *Building) Operational() bool {
	return b.Construction == nil || b.Construction.Complete
}

// BuildingState is the sum-type payload for class-specific fields (spec.md
// §3; Design Note §9 "Tagged-union state"). Each concrete implementation
// below corresponds to one row of the class-specific field table.
type BuildingState interface {
	isBuildingState()
}

// ConveyorState holds a conveyor's front slot and, for Mk-II/III, rear
// buffer slots.
type ConveyorState struct {
	Item    *ItemKind
	Buffer1 *ItemKind // Mk-II/III only
	Buffer2 *ItemKind // Mk-III only
}

func (ConveyorState) isBuildingState() {}

// Capacity returns how many item slots this conveyor tier has.
func (t BuildingType) Capacity() int {
	switch t {
	case TypeConveyorMk1:
		return 1
	case TypeConveyorMk2:
		return 2
	case TypeConveyorMk3:
		return 3
	default:
		return 0
	}
}

// InputSlot is one accepted-kind input buffer for a dual/triple-input
// producer (spec.md §3).
type InputSlot struct {
	Accepts ItemKind
	Count   int
}

// ProducerState covers single-, dual-, and triple-input producers
// (Extractor, Distiller, Processor, Assembler, Advanced Forge, Fabrication
// Plant, Particle Collider, Nuclear Refinery, Paranatural Synthesizer,
// Board Interface): spec.md §3.
type ProducerState struct {
	Inputs          []InputSlot
	OutputBuffer    *ItemKind
	OutputRemaining int // extra units stashed from a multi-output recipe
	Progress        int
}

func (ProducerState) isBuildingState() {}

// DistributorState is a 1->2 splitter (spec.md §3).
type DistributorState struct {
	Item       *ItemKind
	NextOutput Side
}

func (DistributorState) isBuildingState() {}

// LoadEqualizerState is a 1->2 splitter with fairness memory (spec.md §3).
type LoadEqualizerState struct {
	Item       *ItemKind
	LastOutput Side
}

func (LoadEqualizerState) isBuildingState() {}

// ConvergerState is a 2->1 merger (spec.md §3).
type ConvergerState struct {
	Item *ItemKind
}

func (ConvergerState) isBuildingState() {}

// TransitInterchangeState carries two independent crossing streams
// (spec.md §3, §4.3).
type TransitInterchangeState struct {
	Horizontal *ItemKind
	Vertical   *ItemKind
	HDir       Direction
	VDir       Direction
}

func (TransitInterchangeState) isBuildingState() {}

// SubsurfaceLinkState pairs with exactly one partner tile symmetrically
// (spec.md §3 Invariant 7).
type SubsurfaceLinkState struct {
	Item     *ItemKind
	LinkedTo *TileKey
}

func (SubsurfaceLinkState) isBuildingState() {}

// ContainmentVaultState pins its item kind on first admission (spec.md §3
// Invariant 6).
type ContainmentVaultState struct {
	ItemType *ItemKind
	Count    int
	Capacity int
}

func (ContainmentVaultState) isBuildingState() {}

// TerminalState covers Submission and Trade terminals (spec.md §3).
type TerminalState struct {
	InputBuffer   *ItemKind
	LastSubmitted *ItemKind
}

func (TerminalState) isBuildingState() {}

// BioGeneratorState tracks fuel-burn production (spec.md §3, §4.2).
type BioGeneratorState struct {
	InputBuffer    *ItemKind
	FuelRemaining  int
	Producing      bool
}

func (BioGeneratorState) isBuildingState() {}

// ShadowPanelState tracks sun-floated power output (spec.md §3, §4.2).
type ShadowPanelState struct {
	PowerOutput int
	MaxOutput   int
}

func (ShadowPanelState) isBuildingState() {}

// ContainmentTrapState tracks in-progress creature capture (spec.md §3, §4.5).
type ContainmentTrapState struct {
	Capturing       *uuid.UUID
	CaptureProgress int
}

func (ContainmentTrapState) isBuildingState() {}

// SubstationState and TransferStationState carry no fields beyond the
// common Building record; they exist purely as power-network topology
// nodes (spec.md §4.4) but still need a concrete state so the tagged
// union stays total over every placeable type.
type SubstationState struct{}

func (SubstationState) isBuildingState() {}

type TransferStationState struct{}

func (TransferStationState) isBuildingState() {}

// DefenseState tracks a Defense Turret's lifetime kill count and its
// Hiss-Residue output slot (spec.md §3, §4.6: "on kill, the turret's
// output_buffer receives a Hiss-Residue item (if the slot is free)").
type DefenseState struct {
	Kills        int
	OutputBuffer *ItemKind
}

func (DefenseState) isBuildingState() {}

// BeaconState covers Purification Beacon and Dimensional Stabilizer: both
// are passive area-effect buildings with no mutable per-tick state beyond
// the common Building record.
type BeaconState struct{}

func (BeaconState) isBuildingState() {}

// GatheringPostState is a passive creature attractor (spec.md §4.5).
type GatheringPostState struct{}

func (GatheringPostState) isBuildingState() {}
