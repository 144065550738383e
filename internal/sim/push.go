package sim

import "sort"

// PushIntent is a proposed (source, destination, item) movement for the
// current tick (GLOSSARY "Push intent").
type PushIntent struct {
	Src  TileKey
	Dst  TileKey
	Item ItemKind
}

// GeneratePushIntents implements spec.md §4.3 "Push intent generation":
// for each building holding an item to push, zero, one, or two intents
// (Transit Interchange only emits two), stable-ordered by source key so
// downstream grouping is deterministic without a further sort.
func GeneratePushIntents(store *SpatialStore, subdivisions int) []PushIntent {
	all := store.AllBuildings()
	keys := SortedKeys(all)
	var intents []PushIntent

	for _, key := range keys {
		b := all[key]
		if !b.Operational() {
			continue
		}
		switch st := b.State.(type) {
		case ConveyorState:
			if st.Item != nil {
				if dst, ok := Neighbor(key, b.Orientation, subdivisions); ok {
					intents = append(intents, PushIntent{Src: key, Dst: dst, Item: *st.Item})
				}
			}
		case DistributorState:
			if st.Item != nil {
				dir := outputDirection(b.Orientation, st.NextOutput)
				if dst, ok := Neighbor(key, dir, subdivisions); ok {
					intents = append(intents, PushIntent{Src: key, Dst: dst, Item: *st.Item})
				}
			}
		case LoadEqualizerState:
			if st.Item != nil {
				side := SideLeft
				if st.LastOutput == SideLeft {
					side = SideRight
				}
				dir := outputDirection(b.Orientation, side)
				if dst, ok := Neighbor(key, dir, subdivisions); ok {
					intents = append(intents, PushIntent{Src: key, Dst: dst, Item: *st.Item})
				}
			}
		case ConvergerState:
			if st.Item != nil {
				if dst, ok := Neighbor(key, b.Orientation, subdivisions); ok {
					intents = append(intents, PushIntent{Src: key, Dst: dst, Item: *st.Item})
				}
			}
		case TransitInterchangeState:
			if st.Horizontal != nil {
				if dst, ok := Neighbor(key, st.HDir, subdivisions); ok {
					intents = append(intents, PushIntent{Src: key, Dst: dst, Item: *st.Horizontal})
				}
			}
			if st.Vertical != nil {
				if dst, ok := Neighbor(key, st.VDir, subdivisions); ok {
					intents = append(intents, PushIntent{Src: key, Dst: dst, Item: *st.Vertical})
				}
			}
		case ContainmentVaultState:
			if st.Count > 0 && st.ItemType != nil {
				if dst, ok := Neighbor(key, b.Orientation, subdivisions); ok {
					intents = append(intents, PushIntent{Src: key, Dst: dst, Item: *st.ItemType})
				}
			}
		case ProducerState:
			if st.OutputBuffer != nil {
				if dst, ok := Neighbor(key, b.Orientation, subdivisions); ok {
					intents = append(intents, PushIntent{Src: key, Dst: dst, Item: *st.OutputBuffer})
				}
			}
		case BioGeneratorState:
			// Bio Generator has no item output; it feeds the power
			// resolver instead, never the Push Resolver.
		case DefenseState:
			if st.OutputBuffer != nil {
				if dst, ok := Neighbor(key, b.Orientation, subdivisions); ok {
					intents = append(intents, PushIntent{Src: key, Dst: dst, Item: *st.OutputBuffer})
				}
			}
		}
	}
	return intents
}

// outputDirection resolves a Distributor/Load-Equalizer's chosen side
// relative to its orientation: left is orientation-90°, right is
// orientation+90° (spec.md §3, §4.3).
func outputDirection(orientation Direction, side Side) Direction {
	if side == SideLeft {
		return (orientation + 3) % 4
	}
	return (orientation + 1) % 4
}

// rearOf returns the tile directly behind a building given its
// orientation (spec.md §4.3 "rear direction = orientation + 2").
func rearOf(key TileKey, orientation Direction, subdivisions int) (TileKey, bool) {
	return Neighbor(key, orientation.Opposite(), subdivisions)
}

// sideOf returns the tile to the left or right of a building's
// orientation (spec.md §4.3 Converger acceptance rule).
func sideOf(key TileKey, orientation Direction, side Side, subdivisions int) (TileKey, bool) {
	return Neighbor(key, outputDirection(orientation, side), subdivisions)
}

// ResolvePush runs acceptance arbitration and mutation for one tick
// (spec.md §4.3). It does not run the conduit teleport pass or
// post-effects; callers invoke RunConduitTeleport and RunPostEffects
// afterward in the fixed phase order.
func ResolvePush(store *SpatialStore, intents []PushIntent, subdivisions int) {
	byDst := make(map[TileKey][]PushIntent)
	for _, in := range intents {
		byDst[in.Dst] = append(byDst[in.Dst], in)
	}

	dsts := make([]TileKey, 0, len(byDst))
	for d := range byDst {
		dsts = append(dsts, d)
	}
	sort.Slice(dsts, func(i, j int) bool { return dsts[i].Less(dsts[j]) })

	for _, dst := range dsts {
		candidates := byDst[dst]
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].Src.Less(candidates[j].Src) })

		dstBuilding := store.GetBuilding(dst)
		for _, in := range candidates {
			if dstBuilding == nil {
				break
			}
			if !acceptIntent(store, dst, dstBuilding, in, subdivisions) {
				continue
			}
			clearSource(store, in, subdivisions)
			break
		}
	}
}

// acceptIntent applies spec.md §4.3's per-class acceptance table. On
// acceptance it commits the destination mutation and returns true; the
// caller is responsible for clearing the source.
func acceptIntent(store *SpatialStore, dst TileKey, b *Building, in PushIntent, subdivisions int) bool {
	rear, hasRear := rearOf(dst, b.Orientation, subdivisions)
	fromRear := hasRear && rear == in.Src

	if b.Construction != nil && !b.Construction.Complete {
		if !b.Construction.NeedsItem(in.Item) {
			return false
		}
		b.Construction.Deliver(in.Item)
		store.PutBuilding(dst, b)
		return true
	}

	switch st := b.State.(type) {
	case ConveyorState:
		slot := conveyorAcceptSlot(b.Type, &st)
		if slot == nil {
			return false
		}
		item := in.Item
		*slot = &item
		nb := *b
		nb.State = st
		store.PutBuilding(dst, &nb)
		return true

	case ProducerState:
		if !fromRear {
			return false
		}
		for i := range st.Inputs {
			if st.Inputs[i].Accepts == in.Item {
				st.Inputs[i].Count++
				nb := *b
				nb.State = st
				store.PutBuilding(dst, &nb)
				return true
			}
		}
		return false

	case DistributorState:
		if st.Item != nil || !fromRear {
			return false
		}
		item := in.Item
		st.Item = &item
		nb := *b
		nb.State = st
		store.PutBuilding(dst, &nb)
		return true

	case LoadEqualizerState:
		if st.Item != nil || !fromRear {
			return false
		}
		item := in.Item
		st.Item = &item
		nb := *b
		nb.State = st
		store.PutBuilding(dst, &nb)
		return true

	case ConvergerState:
		if st.Item != nil {
			return false
		}
		left, okL := sideOf(dst, b.Orientation, SideLeft, subdivisions)
		right, okR := sideOf(dst, b.Orientation, SideRight, subdivisions)
		if !((okL && left == in.Src) || (okR && right == in.Src)) {
			return false
		}
		item := in.Item
		st.Item = &item
		nb := *b
		nb.State = st
		store.PutBuilding(dst, &nb)
		return true

	case TransitInterchangeState:
		entryDir := directionFrom(in.Src, dst, subdivisions)
		horizontal := entryDir == East || entryDir == West
		if horizontal {
			if st.Horizontal != nil {
				return false
			}
			item := in.Item
			st.Horizontal = &item
			st.HDir = (entryDir + 2) % 4
		} else {
			if st.Vertical != nil {
				return false
			}
			item := in.Item
			st.Vertical = &item
			st.VDir = (entryDir + 2) % 4
		}
		nb := *b
		nb.State = st
		store.PutBuilding(dst, &nb)
		return true

	case ContainmentVaultState:
		if !fromRear || st.Count >= st.Capacity {
			return false
		}
		if st.ItemType != nil && *st.ItemType != in.Item {
			return false
		}
		item := in.Item
		st.ItemType = &item
		st.Count++
		nb := *b
		nb.State = st
		store.PutBuilding(dst, &nb)
		return true

	case TerminalState:
		if st.InputBuffer != nil || !fromRear {
			return false
		}
		item := in.Item
		st.InputBuffer = &item
		nb := *b
		nb.State = st
		store.PutBuilding(dst, &nb)
		return true

	case SubsurfaceLinkState:
		if st.Item != nil || !fromRear {
			return false
		}
		item := in.Item
		st.Item = &item
		nb := *b
		nb.State = st
		store.PutBuilding(dst, &nb)
		return true

	case BioGeneratorState:
		if st.InputBuffer != nil || !fromRear {
			return false
		}
		if _, ok := bioGeneratorBurnDuration[in.Item]; !ok {
			return false
		}
		item := in.Item
		st.InputBuffer = &item
		nb := *b
		nb.State = st
		store.PutBuilding(dst, &nb)
		return true

	default:
		return false
	}
}

// directionFrom returns the direction travelled from src to dst, used by
// the Transit Interchange to classify an incoming intent's axis (spec.md
// §4.3: "Entry dir D -> slot is horizontal if D∈{E,W} else vertical").
func directionFrom(src, dst TileKey, subdivisions int) Direction {
	for _, d := range []Direction{North, East, South, West} {
		if n, ok := Neighbor(src, d, subdivisions); ok && n == dst {
			return d
		}
	}
	return North
}

// clearSource empties the slot a just-accepted intent was pushed from. in
// identifies both the source and the destination the accepted push
// actually travelled to, which a Transit Interchange needs to tell its two
// independent axes apart (spec.md §4.3).
func clearSource(store *SpatialStore, in PushIntent, subdivisions int) {
	src := in.Src
	b := store.GetBuilding(src)
	if b == nil {
		return
	}
	switch st := b.State.(type) {
	case ConveyorState:
		st.Item = nil
		nb := *b
		nb.State = st
		store.PutBuilding(src, &nb)
	case DistributorState:
		st.Item = nil
		if st.NextOutput == SideLeft {
			st.NextOutput = SideRight
		} else {
			st.NextOutput = SideLeft
		}
		nb := *b
		nb.State = st
		store.PutBuilding(src, &nb)
	case LoadEqualizerState:
		st.Item = nil
		if st.LastOutput == SideLeft {
			st.LastOutput = SideRight
		} else {
			st.LastOutput = SideLeft
		}
		nb := *b
		nb.State = st
		store.PutBuilding(src, &nb)
	case ConvergerState:
		st.Item = nil
		nb := *b
		nb.State = st
		store.PutBuilding(src, &nb)
	case TransitInterchangeState:
		// Both axes may have pushed independently this tick, each to its
		// own destination; clear only the axis whose exit direction
		// produced in.Dst so the other axis's item is untouched.
		cleared := false
		if st.Horizontal != nil {
			if dst, ok := Neighbor(src, st.HDir, subdivisions); ok && dst == in.Dst {
				st.Horizontal = nil
				cleared = true
			}
		}
		if !cleared && st.Vertical != nil {
			if dst, ok := Neighbor(src, st.VDir, subdivisions); ok && dst == in.Dst {
				st.Vertical = nil
			}
		}
		nb := *b
		nb.State = st
		store.PutBuilding(src, &nb)
	case ContainmentVaultState:
		st.Count--
		if st.Count <= 0 {
			st.Count = 0
			st.ItemType = nil
		}
		nb := *b
		nb.State = st
		store.PutBuilding(src, &nb)
	case ProducerState:
		if st.OutputRemaining > 0 {
			st.OutputRemaining--
		} else {
			st.OutputBuffer = nil
		}
		nb := *b
		nb.State = st
		store.PutBuilding(src, &nb)
	case DefenseState:
		st.OutputBuffer = nil
		nb := *b
		nb.State = st
		store.PutBuilding(src, &nb)
	}
}

// RunConduitTeleport implements spec.md §4.3's "Conduit teleport pass":
// single-step, non-cascading transfer across Subsurface Link pairs.
func RunConduitTeleport(store *SpatialStore) {
	all := store.AllBuildings()
	for _, key := range SortedKeys(all) {
		b := all[key]
		st, ok := b.State.(SubsurfaceLinkState)
		if !ok || st.Item == nil || st.LinkedTo == nil {
			continue
		}
		partnerB := store.GetBuilding(*st.LinkedTo)
		if partnerB == nil {
			invariantViolation("subsurface link %v points to %v with no building", key, *st.LinkedTo)
		}
		partnerSt, ok := partnerB.State.(SubsurfaceLinkState)
		if !ok || partnerSt.LinkedTo == nil || *partnerSt.LinkedTo != key {
			invariantViolation("subsurface link pairing broken at %v", key)
		}
		if partnerSt.Item != nil {
			continue
		}
		item := *st.Item
		partnerSt.Item = &item
		st.Item = nil

		nb := *b
		nb.State = st
		store.PutBuilding(key, &nb)

		npb := *partnerB
		npb.State = partnerSt
		store.PutBuilding(*st.LinkedTo, &npb)
	}
}

// RunPostEffects implements spec.md §4.3's duplication and output-boost
// post-effects: after a source just pushed and its output slot is now
// empty, refill with the same item at the given probability.
func RunPostEffects(store *SpatialStore, justPushed []TileKey, tileOf func(TileKey) *Tile, rng *RNG) {
	for _, key := range justPushed {
		b := store.GetBuilding(key)
		if b == nil {
			continue
		}
		st, ok := b.State.(ProducerState)
		if !ok || st.OutputBuffer != nil {
			continue
		}
		tile := tileOf(key)
		duplication := tile != nil && tile.AlteredItem == AlteredDuplication
		p := 0.0
		if duplication {
			p = 0.05
		} else {
			p = outputBoostChance(b)
		}
		if !rng.Bool(p) {
			continue
		}
		if recipe, ok := RecipeFor(b.Type); ok {
			out := recipe.Output
			if b.Type == TypeMiner && tile != nil && tile.Resource != nil {
				if y, ok := ItemYieldFor(tile.Resource.Kind); ok {
					out = y
				}
			}
			st.OutputBuffer = &out
			nb := *b
			nb.State = st
			store.PutBuilding(key, &nb)
		}
	}
}
