package sim

// TickBuilding dispatches a building to its class's production-phase
// Behavior Kernel (spec.md §4.2). It is the only entry point the Tick
// Driver calls during the kernel phase; the conveyor advance phase runs
// separately afterward via AdvanceConveyors. Classes with no independent
// production-phase behavior (pure logistics routed entirely by the Push
// Resolver, and Vault/Substation/TransferStation/ContainmentTrap/
// Defense/Beacon/GatheringPost, whose state changes in other phases) pass
// through unchanged.
func TickBuilding(key TileKey, b *Building, tile *Tile, store *SpatialStore, ctx *TickContext, rng *RNG, events *[]SubmissionEvent) *Building {
	switch b.Type {
	case TypeMiner, TypeDistiller, TypeProcessor, TypeAssembler, TypeAdvancedForge,
		TypeFabricationPlant, TypeParticleCollider, TypeNuclearRefinery,
		TypeParanaturalSynth, TypeBoardInterface:
		return tickProducer(key, b, tile, store, ctx, rng)
	case TypeSubmissionTerminal, TypeTradeTerminal:
		return tickTerminal(key, b, events)
	case TypeBioGenerator:
		return tickBioGenerator(key, b)
	case TypeShadowPanel:
		return tickShadowPanel(key, b, ctx)
	default:
		return b
	}
}

// AdvanceConveyors runs the Mk-II/III advance phase over every conveyor in
// the store (spec.md §4.2: "executed after behavior kernels and before
// push resolution"), writing back only buildings whose state changed.
func AdvanceConveyors(store *SpatialStore) {
	all := store.AllBuildings()
	for _, key := range SortedKeys(all) {
		b := all[key]
		if !isConveyor(b.Type) {
			continue
		}
		nb := advanceConveyor(b)
		if nb != b {
			store.PutBuilding(key, nb)
		}
	}
}

// RunKernelPhase runs the production-phase kernel over every building in
// the store, committing changed buildings back (spec.md §2 "Behavior
// kernels (by class)"). Returns the submission events collected this
// tick. tiles supplies the Tile for a building's key when one exists.
func RunKernelPhase(store *SpatialStore, tiles func(TileKey) *Tile, ctx *TickContext, rng *RNG) []SubmissionEvent {
	var events []SubmissionEvent
	all := store.AllBuildings()
	for _, key := range SortedKeys(all) {
		b := all[key]
		nb := TickBuilding(key, b, tiles(key), store, ctx, rng, &events)
		if nb != b {
			store.PutBuilding(key, nb)
		}
	}
	return events
}
