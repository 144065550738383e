package sim

import "testing"

// fakePersistence records every SaveDirty call for assertion.
type fakePersistence struct {
	calls []saveCall
}

type saveCall struct {
	tiles     []*Tile
	buildings map[TileKey]*Building
	removed   []TileKey
}

func (f *fakePersistence) SaveDirty(tiles []*Tile, buildings map[TileKey]*Building, removedKeys []TileKey) {
	f.calls = append(f.calls, saveCall{tiles: tiles, buildings: buildings, removed: removedKeys})
}

func TestAccumulateSaveDirtyReplicatesModifiedXorRemoved(t *testing.T) {
	d := newTestDriver()
	key := TileKey{Face: 0, Row: 0, Col: 0}

	d.accumulateSaveDirty(nil, []TileKey{key}, nil)
	if _, ok := d.pendingBuildings[key]; !ok {
		t.Fatal("expected key pending as modified")
	}

	d.accumulateSaveDirty(nil, nil, []TileKey{key})
	if _, ok := d.pendingBuildings[key]; ok {
		t.Fatal("expected key cleared from pending-modified once removed")
	}
	if _, ok := d.pendingRemoved[key]; !ok {
		t.Fatal("expected key pending as removed")
	}

	d.accumulateSaveDirty(nil, []TileKey{key}, nil)
	if _, ok := d.pendingRemoved[key]; ok {
		t.Fatal("expected key cleared from pending-removed once re-modified")
	}
	if _, ok := d.pendingBuildings[key]; !ok {
		t.Fatal("expected key pending as modified again")
	}
}

func TestFlushSaveNoOpWithNothingPending(t *testing.T) {
	fp := &fakePersistence{}
	d := newTestDriver()
	d.persistence = fp

	d.flushSave()
	if len(fp.calls) != 0 {
		t.Fatalf("expected no SaveDirty call with nothing pending, got %d", len(fp.calls))
	}
}

func TestFlushSaveHandsAccumulatedStateAndClears(t *testing.T) {
	fp := &fakePersistence{}
	d := newTestDriver()
	d.persistence = fp

	key := TileKey{Face: 0, Row: 0, Col: 0}
	d.store.PutBuilding(key, &Building{Type: TypeConveyorMk1})
	d.store.DrainDirty() // simulate a prior tick's broadcast drain
	d.accumulateSaveDirty(nil, []TileKey{key}, nil)

	d.flushSave()
	if len(fp.calls) != 1 {
		t.Fatalf("expected exactly one SaveDirty call, got %d", len(fp.calls))
	}
	if _, ok := fp.calls[0].buildings[key]; !ok {
		t.Fatalf("expected %+v in the saved buildings, got %+v", key, fp.calls[0].buildings)
	}
	if len(d.pendingBuildings) != 0 {
		t.Fatal("expected pending set cleared after flush")
	}

	d.flushSave()
	if len(fp.calls) != 1 {
		t.Fatal("expected flushSave to no-op a second time with nothing newly pending")
	}
}

func TestFlushSaveNilPersistenceIsSafe(t *testing.T) {
	d := newTestDriver()
	d.accumulateSaveDirty([]TileKey{{Face: 0, Row: 0, Col: 0}}, nil, nil)
	d.flushSave() // must not panic with d.persistence == nil
}

func TestEmitDeltasAccumulatesForLaterSaveAfterDrain(t *testing.T) {
	d := newTestDriver()
	key := TileKey{Face: 1, Row: 0, Col: 0}
	d.store.PutBuilding(key, &Building{Type: TypeConveyorMk1, State: ConveyorState{}})

	d.emitDeltas(0)

	if _, ok := d.pendingBuildings[key]; !ok {
		t.Fatal("expected emitDeltas to fold the tick's drained dirty keys into the save-pending set")
	}

	// A subsequent tick with nothing newly dirty drains an empty set and
	// must leave the pending set untouched.
	d.emitDeltas(1)
	if _, ok := d.pendingBuildings[key]; !ok {
		t.Fatal("expected the pending set to still contain the key from the earlier tick")
	}
}

func TestHeldItemReportsConveyorFrontSlot(t *testing.T) {
	item := ItemIronOre
	b := &Building{Type: TypeConveyorMk1, State: ConveyorState{Item: &item}}
	got, ok := heldItem(b)
	if !ok || got != ItemIronOre {
		t.Fatalf("expected held item %v, got %v (ok=%v)", ItemIronOre, got, ok)
	}
}

func TestHeldItemFalseWhenEmpty(t *testing.T) {
	b := &Building{Type: TypeConveyorMk1, State: ConveyorState{}}
	if _, ok := heldItem(b); ok {
		t.Fatal("expected no held item for an empty conveyor")
	}
}
