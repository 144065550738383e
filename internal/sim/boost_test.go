package sim

import "testing"

func baseCtx() *TickContext {
	return &TickContext{
		CreatureBoosts: map[TileKey]CreatureBoost{},
		Trinkets:       map[PlayerID]PlayerTrinkets{},
		PowerRatio:     map[string]float64{},
	}
}

func TestEffectiveRateBaseline(t *testing.T) {
	b := &Building{Type: TypeConveyorMk1, Rate: 10}
	rate := EffectiveRate(TileKey{}, b, nil, false, baseCtx())
	if rate != 10 {
		t.Fatalf("expected unmodified base rate 10, got %d", rate)
	}
}

func TestEffectiveRateOverclockHalves(t *testing.T) {
	// Tier 0 (conveyor) so the unpowered-tier penalty in step 5 doesn't
	// also kick in and mask the overclock multiplier under test.
	b := &Building{Type: TypeConveyorMk1, Rate: 10, AlteredEffect: AlteredOverclock}
	rate := EffectiveRate(TileKey{}, b, nil, false, baseCtx())
	if rate != 5 {
		t.Fatalf("expected overclock to halve the rate to 5, got %d", rate)
	}
}

func TestEffectiveRateUnpoweredTierPenalty(t *testing.T) {
	b := &Building{Type: TypeProcessor, Rate: 10} // tier 1, NetworkID == ""
	rate := EffectiveRate(TileKey{}, b, nil, false, baseCtx())
	if rate != 20 {
		t.Fatalf("expected tier-1 unpowered penalty to double the rate to 20, got %d", rate)
	}
}

func TestEffectiveRateBrownoutMultipliesByLoadRatio(t *testing.T) {
	b := &Building{Type: TypeProcessor, Rate: 10, NetworkID: "net-a"}
	ctx := baseCtx()
	ctx.PowerRatio["net-a"] = 2.0
	rate := EffectiveRate(TileKey{}, b, nil, false, ctx)
	if rate != 20 {
		t.Fatalf("expected brownout ratio 2.0 to double the rate to 20, got %d", rate)
	}
}

func TestEffectiveRatePoweredWithinCapacityUnaffected(t *testing.T) {
	b := &Building{Type: TypeProcessor, Rate: 10, NetworkID: "net-a"}
	ctx := baseCtx()
	ctx.PowerRatio["net-a"] = 0.5 // under capacity: processTick never puts such a ratio in the map,
	// but EffectiveRate still must not apply a ratio <= 1 even if present.
	rate := EffectiveRate(TileKey{}, b, nil, false, ctx)
	if rate != 10 {
		t.Fatalf("expected a sub-1.0 ratio to have no effect, got %d", rate)
	}
}

func TestEffectiveRateCreatureSpeedBoostEvolved(t *testing.T) {
	key := TileKey{Face: 0, Row: 0, Col: 0}
	b := &Building{Type: TypeConveyorMk1, Rate: 10}
	ctx := baseCtx()
	ctx.CreatureBoosts[key] = CreatureBoost{Kind: BoostSpeed, Evolved: true}
	rate := EffectiveRate(key, b, nil, false, ctx)
	if rate != 5 {
		t.Fatalf("expected an evolved speed-boost creature to halve the rate to 5, got %d", rate)
	}
}

func TestEffectiveRateNeverBelowOne(t *testing.T) {
	b := &Building{Type: TypeConveyorMk1, Rate: 1, AlteredEffect: AlteredOverclock}
	ctx := baseCtx()
	key := TileKey{Face: 0, Row: 0, Col: 0}
	ctx.CreatureBoosts[key] = CreatureBoost{Kind: BoostSpeed, Evolved: true}
	rate := EffectiveRate(key, b, nil, false, ctx)
	if rate < 1 {
		t.Fatalf("effective rate must floor at 1, got %d", rate)
	}
}

func TestEffectiveRateShiftCycleExtractorOnly(t *testing.T) {
	tile := &Tile{Terrain: TerrainVolcanic}
	// NetworkID set (with no matching PowerRatio entry) so the unpowered-tier
	// penalty in step 5 stays inert and doesn't mask the modifier under test.
	b := &Building{Type: TypeMiner, Rate: 10, NetworkID: "net-x"}
	ctx := baseCtx()
	ctx.ShiftPhase = 0 // volcanic modifier at phase 0 is 0.8

	extractorRate := EffectiveRate(TileKey{}, b, tile, true, ctx)
	if extractorRate != 8 {
		t.Fatalf("expected volcanic phase-0 modifier 0.8 applied to an extractor, got %d", extractorRate)
	}

	nonExtractor := &Building{Type: TypeProcessor, Rate: 10, NetworkID: "net-a"}
	ctx.PowerRatio["net-a"] = 0
	nonExtractorRate := EffectiveRate(TileKey{}, nonExtractor, tile, false, ctx)
	if nonExtractorRate != 10 {
		t.Fatalf("shift-cycle modifier must not apply to a non-extractor, got %d", nonExtractorRate)
	}
}
