package sim

// PlaceBuilding implements spec.md §6's `place_building` command surface
// entry. It is safe to call from any goroutine; the request is serialized
// onto the Driver's command channel and processed between ticks.
func (d *Driver) PlaceBuilding(req PlaceRequest) PlacementResult {
	reply := make(chan any, 1)
	d.commands <- command{kind: "place", place: []PlaceRequest{req}, reply: reply}
	return (<-reply).([]PlacementResult)[0]
}

// PlaceBuildings implements `place_buildings`: atomicity is per-item, not
// whole-batch.
func (d *Driver) PlaceBuildings(reqs []PlaceRequest) []PlacementResult {
	reply := make(chan any, 1)
	d.commands <- command{kind: "place", place: reqs, reply: reply}
	return (<-reply).([]PlacementResult)
}

// RemoveBuilding implements `remove_building`.
func (d *Driver) RemoveBuilding(req RemoveRequest) PlacementResult {
	reply := make(chan any, 1)
	d.commands <- command{kind: "remove", remove: []RemoveRequest{req}, reply: reply}
	return (<-reply).([]PlacementResult)[0]
}

// RemoveBuildings implements `remove_buildings`.
func (d *Driver) RemoveBuildings(reqs []RemoveRequest) []PlacementResult {
	reply := make(chan any, 1)
	d.commands <- command{kind: "remove", remove: reqs, reply: reply}
	return (<-reply).([]PlacementResult)
}

// ResetWorld implements `reset_world`: a heavyweight operation that may
// block for seconds (spec.md §6). The caller's new seed reseeds the
// world; regeneration of terrain is the caller's responsibility (it
// supplies a fresh *SpatialStore) since terrain generation lives in
// internal/sim/worldgen, outside the Driver's concern.
func (d *Driver) ResetWorld(newSeed int64, freshStore *SpatialStore) {
	reply := make(chan any, 1)
	d.commands <- command{kind: "reset", newSeed: newSeed, reply: reply, place: nil}
	<-reply
	d.mu.Lock()
	d.store = freshStore
	d.worldSeed = newSeed
	d.creatures = NewCreatureRegistry()
	d.corruption = NewCorruptionRegistry()
	d.networks = make(map[string]PowerNetwork)
	d.tick.Store(0)
	d.status = StatusRunning
	d.mu.Unlock()
}

func (d *Driver) handleCommand(cmd command) {
	switch cmd.kind {
	case "place":
		results := make([]PlacementResult, len(cmd.place))
		for i, req := range cmd.place {
			results[i] = d.placeOne(req)
		}
		cmd.reply <- results
	case "remove":
		results := make([]PlacementResult, len(cmd.remove))
		for i, req := range cmd.remove {
			results[i] = d.removeOne(req)
		}
		cmd.reply <- results
	case "reset":
		d.mu.Lock()
		d.status = StatusResetting
		d.mu.Unlock()
		cmd.reply <- struct{}{}
	}
}

// placeOne implements spec.md §4.7's placement validation ordering (first
// failure wins): invalid_tile -> invalid_building_type -> tile_occupied ->
// invalid_placement -> not_unlocked -> corrupted_tile -> territory_blocked.
func (d *Driver) placeOne(req PlaceRequest) PlacementResult {
	tile := d.store.GetTile(req.Key)
	if tile == nil {
		return PlacementResult{Err: &PlacementError{Key: req.Key, Err: ErrInvalidTile}}
	}
	if !isValidBuildingType(req.Type) {
		return PlacementResult{Err: &PlacementError{Key: req.Key, Err: ErrInvalidBuildingType}}
	}
	if d.store.HasBuilding(req.Key) {
		return PlacementResult{Err: &PlacementError{Key: req.Key, Err: ErrTileOccupied}}
	}
	if req.Type == TypeMiner && !tile.HasResource() {
		return PlacementResult{Err: &PlacementError{Key: req.Key, Err: ErrInvalidPlacement}}
	}
	if !d.validator.IsUnlocked(req.Owner, req.Type) {
		return PlacementResult{Err: &PlacementError{Key: req.Key, Err: ErrNotUnlocked}}
	}
	if _, corrupted := d.corruption.Cells[req.Key]; corrupted &&
		req.Type != TypePurificationBeacon && req.Type != TypeDefenseTurret && req.Type != TypeDimensionalStabilizer {
		return PlacementResult{Err: &PlacementError{Key: req.Key, Err: ErrCorruptedTile}}
	}
	if d.validator.TerritoryBlocked(req.Owner, req.Key) {
		return PlacementResult{Err: &PlacementError{Key: req.Key, Err: ErrTerritoryBlocked}}
	}

	building := newBuildingOf(req.Type, req.Orientation, req.Owner, tile)
	if d.validator.StarterKitQuota(req.Owner, req.Type) {
		building.Construction = &Construction{Complete: true}
	}
	d.store.PutBuilding(req.Key, building)
	return PlacementResult{}
}

func (d *Driver) removeOne(req RemoveRequest) PlacementResult {
	b := d.store.GetBuilding(req.Key)
	if b == nil {
		return PlacementResult{Err: &PlacementError{Key: req.Key, Err: ErrNoBuilding}}
	}
	if req.ActingPlayer != nil && (b.OwnerID == nil || *b.OwnerID != *req.ActingPlayer) {
		return PlacementResult{Err: &PlacementError{Key: req.Key, Err: ErrNotOwner}}
	}
	d.store.RemoveBuilding(req.Key)
	return PlacementResult{}
}

func isValidBuildingType(t BuildingType) bool {
	_, ok := placementCost[t]
	return ok
}

// newBuildingOf derives a building's initial state from its class
// defaults, merging the tile's altered effect and a fresh construction
// gate (spec.md §4.7 "derive initial state from class defaults, merge
// altered-effect, merge construction cost").
func newBuildingOf(t BuildingType, orientation Direction, owner *PlayerID, tile *Tile) *Building {
	b := &Building{
		Type:          t,
		Orientation:   orientation,
		OwnerID:       owner,
		Rate:          defaultRate(t),
		AlteredEffect: tile.AlteredItem,
		Construction:  NewConstruction(t),
		PoweredUser:   true,
	}
	b.State = defaultStateFor(t)
	return b
}

func defaultRate(t BuildingType) int {
	if t == TypeMiner {
		return 10
	}
	if r, ok := RecipeFor(t); ok {
		return r.Ticks
	}
	return 1
}

func defaultStateFor(t BuildingType) BuildingState {
	switch t {
	case TypeConveyorMk1, TypeConveyorMk2, TypeConveyorMk3:
		return ConveyorState{}
	case TypeMiner:
		return ProducerState{}
	case TypeDistiller, TypeProcessor, TypeAssembler, TypeAdvancedForge,
		TypeFabricationPlant, TypeParticleCollider, TypeNuclearRefinery,
		TypeParanaturalSynth, TypeBoardInterface:
		recipe, _ := RecipeFor(t)
		inputs := make([]InputSlot, len(recipe.Inputs))
		for i, item := range recipe.Inputs {
			inputs[i] = InputSlot{Accepts: item}
		}
		return ProducerState{Inputs: inputs}
	case TypeDistributor:
		return DistributorState{}
	case TypeLoadEqualizer:
		return LoadEqualizerState{}
	case TypeConverger:
		return ConvergerState{}
	case TypeTransitInterchange:
		return TransitInterchangeState{}
	case TypeSubsurfaceLink:
		return SubsurfaceLinkState{}
	case TypeContainmentVault:
		return ContainmentVaultState{Capacity: 100}
	case TypeSubmissionTerminal, TypeTradeTerminal:
		return TerminalState{}
	case TypeBioGenerator:
		return BioGeneratorState{}
	case TypeShadowPanel:
		return ShadowPanelState{MaxOutput: shadowPanelMaxOutput}
	case TypeContainmentTrap:
		return ContainmentTrapState{}
	case TypeSubstation:
		return SubstationState{}
	case TypeTransferStation:
		return TransferStationState{}
	case TypeDefenseTurret:
		return DefenseState{}
	case TypePurificationBeacon, TypeDimensionalStabilizer:
		return BeaconState{}
	case TypeGatheringPost:
		return GatheringPostState{}
	default:
		invariantViolation("no default state registered for building type %q", t)
		return nil
	}
}
