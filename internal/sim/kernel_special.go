package sim

// SubmissionEvent is emitted when a Submission Terminal consumes its input
// buffer (spec.md §4.2 "consumes input_buffer into a per-player submission
// event and clears the slot").
type SubmissionEvent struct {
	Key      TileKey
	Owner    *PlayerID
	Item     ItemKind
}

// tickTerminal implements the Submission/Trade Terminal production phase.
// Submission Terminals consume and emit an event every tick; Trade
// Terminals hold the item as `last_submitted` for the trade-ledger
// collaborator (out of core scope per spec.md §1) to pick up.
func tickTerminal(key TileKey, b *Building, events *[]SubmissionEvent) *Building {
	if !b.Operational() {
		return b
	}
	st, ok := b.State.(TerminalState)
	if !ok {
		invariantViolation("tickTerminal called on building %v with state %T", key, b.State)
	}
	if st.InputBuffer == nil {
		return b
	}

	item := *st.InputBuffer
	if b.Type == TypeSubmissionTerminal {
		if events != nil {
			*events = append(*events, SubmissionEvent{Key: key, Owner: b.OwnerID, Item: item})
		}
		st.InputBuffer = nil
	} else {
		st.LastSubmitted = &item
		st.InputBuffer = nil
	}

	nb := *b
	nb.State = st
	return &nb
}

// bioGeneratorBurnDuration maps a fuel item kind to its burn duration in
// ticks (spec.md §4.2 "sets fuel_remaining to that fuel's burn duration").
var bioGeneratorBurnDuration = map[ItemKind]int{
	ItemFuelCell: 40,
	ItemBiomass:  20,
	ItemCoal:     30,
}

// tickBioGenerator implements spec.md §4.2's Bio Generator rule.
func tickBioGenerator(key TileKey, b *Building) *Building {
	if !b.Operational() {
		return b
	}
	st, ok := b.State.(BioGeneratorState)
	if !ok {
		invariantViolation("tickBioGenerator called on building %v with state %T", key, b.State)
	}

	if st.FuelRemaining > 0 {
		st.FuelRemaining--
	}
	if st.FuelRemaining == 0 && st.InputBuffer != nil {
		if dur, ok := bioGeneratorBurnDuration[*st.InputBuffer]; ok {
			st.FuelRemaining = dur
			st.InputBuffer = nil
		}
	}
	// PoweredUser true means "operator on"; producing requires the
	// operator on and fuel available (spec.md: "fuel_remaining > 0 ∧
	// !powered_user_off").
	st.Producing = st.FuelRemaining > 0 && b.PoweredUser

	nb := *b
	nb.State = st
	return &nb
}

// shadowPanelMaxOutput is the design-default maximum output of a Shadow
// Panel (spec.md §4.2 "output ramps linearly from max ... to 0").
const shadowPanelMaxOutput = 15

// tickShadowPanel implements spec.md §4.2's Shadow Panel illumination rule.
// A Defense Turret within Chebyshev radius 3 (ctx.LitTurretAt, which does
// not check whether the turret is powered) disables the panel entirely;
// there is no Lamp building type.
func tickShadowPanel(key TileKey, b *Building, ctx *TickContext) *Building {
	st, ok := b.State.(ShadowPanelState)
	if !ok {
		invariantViolation("tickShadowPanel called on building %v with state %T", key, b.State)
	}
	st.MaxOutput = shadowPanelMaxOutput

	if ctx.LitTurretAt != nil && ctx.LitTurretAt(key, 3) {
		st.PowerOutput = 0
		nb := *b
		nb.State = st
		return &nb
	}

	illum := 0.0
	if ctx.Illumination != nil {
		illum = ctx.Illumination(key)
	}
	switch {
	case illum <= 0.15:
		st.PowerOutput = shadowPanelMaxOutput
	case illum >= 0.50:
		st.PowerOutput = 0
	default:
		frac := 1.0 - (illum-0.15)/(0.50-0.15)
		st.PowerOutput = int(frac * float64(shadowPanelMaxOutput))
	}

	nb := *b
	nb.State = st
	return &nb
}
