package sim

// advanceConveyor implements the Conveyor Mk-II/III advance phase (spec.md
// §4.2): "executed after behavior kernels and before push resolution: if
// the front slot is empty and a rear slot is occupied, shift items one
// step forward (Mk-III: buffer2 -> buffer1 -> front)". Conveyors hold no
// construction gate beyond the universal Operational check; an
// under-construction conveyor still advances nothing since its slots are
// never populated.
func advanceConveyor(b *Building) *Building {
	if !b.Operational() {
		return b
	}
	st, ok := b.State.(ConveyorState)
	if !ok {
		return b
	}

	switch b.Type {
	case TypeConveyorMk2:
		if st.Item == nil && st.Buffer1 != nil {
			st.Item = st.Buffer1
			st.Buffer1 = nil
		}
	case TypeConveyorMk3:
		if st.Item == nil && st.Buffer1 != nil {
			st.Item = st.Buffer1
			st.Buffer1 = nil
			if st.Buffer2 != nil {
				st.Buffer1 = st.Buffer2
				st.Buffer2 = nil
			}
		} else if st.Buffer1 == nil && st.Buffer2 != nil {
			st.Buffer1 = st.Buffer2
			st.Buffer2 = nil
		}
	default:
		return b
	}

	nb := *b
	nb.State = st
	return &nb
}

// conveyorAcceptSlot returns a pointer to the slot a newly-accepted item
// should populate, per Design Note/Open Question §9.4 resolved as
// front-first: "the source puts it in item first" is kept as the
// authoritative behavior, so a Mk-II/III conveyor always fills its front
// slot when empty before ever touching a buffer slot. Slots beyond the
// conveyor's tier capacity (spec.md §4.3 Invariant 3: a Mk-I holds at most
// one item) are never offered. Returns nil if no slot is free.
func conveyorAcceptSlot(t BuildingType, st *ConveyorState) **ItemKind {
	capacity := t.Capacity()
	if capacity >= 1 && st.Item == nil {
		return &st.Item
	}
	if capacity >= 2 && st.Buffer1 == nil {
		return &st.Buffer1
	}
	if capacity >= 3 && st.Buffer2 == nil {
		return &st.Buffer2
	}
	return nil
}
