package sim

// tickProducer implements the common producer algorithm of spec.md §4.2:
// construction gate, output back-pressure, input gate, progress advance,
// consume-with-efficiency-boost, produce-with-output-boost. A Miner
// (isExtractor) extracts its tile's resource directly rather than
// consuming item inputs.
func tickProducer(key TileKey, b *Building, tile *Tile, store *SpatialStore, ctx *TickContext, rng *RNG) *Building {
	if !b.Operational() {
		return b
	}
	st, ok := b.State.(ProducerState)
	if !ok {
		invariantViolation("tickProducer called on building %v with state %T", key, b.State)
	}
	if st.OutputBuffer != nil {
		return b
	}

	recipe, hasRecipe := RecipeFor(b.Type)
	isExtractor := b.Type == TypeMiner
	if isExtractor {
		if tile == nil || !tile.HasResource() {
			return b
		}
	} else if hasRecipe {
		for i, in := range recipe.Inputs {
			if i >= len(st.Inputs) || st.Inputs[i].Accepts != in || st.Inputs[i].Count < 1 {
				return b
			}
		}
	}

	rate := EffectiveRate(key, b, tile, isExtractor, ctx)
	st.Progress++
	if st.Progress < rate {
		nb := *b
		nb.State = st
		return &nb
	}
	st.Progress = 0

	pEff := 0.05 // efficiency boost: skip consumption with this probability
	skipConsume := rng.Bool(pEff)

	if isExtractor {
		if !skipConsume {
			store.SetResourceAmount(tile.Key, tile.Resource.Amount-1)
		}
		item := ItemIronOre
		if y, ok := ItemYieldFor(tile.Resource.Kind); ok {
			item = y
		}
		st.OutputBuffer = &item
	} else if hasRecipe {
		if !skipConsume {
			for i := range st.Inputs {
				st.Inputs[i].Count--
			}
		}
		out := recipe.Output
		qty := recipe.OutputQty
		if tile != nil && tile.AlteredItem == AlteredThermalAnomaly {
			qty *= 2
		}
		pOut := outputBoostChance(b)
		if rng.Bool(pOut) {
			qty *= 2
		}
		st.OutputBuffer = &out
		st.OutputRemaining = qty - 1
	}

	nb := *b
	nb.State = st
	return &nb
}

// outputBoostChance is the per-building probability of doubled yield
// (spec.md §4.2 step 4 "apply output boost: double yield with probability
// P_out"). A Particle Collider's altered spatial-distortion tile raises
// its own odds; otherwise a flat baseline applies.
func outputBoostChance(b *Building) float64 {
	if b.AlteredEffect == AlteredSpatialDistortion {
		return 0.2
	}
	return 0.08
}
