package sim

import (
	"context"
	"log"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hollowsphere/core/internal/config"
)

// PlacementResult is returned synchronously from the command surface
// (spec.md §6).
type PlacementResult struct {
	Err error
}

// Ok reports whether the placement succeeded.
func (r PlacementResult) Ok() bool { return r.Err == nil }

// PlaceRequest is one item of a place_building / place_buildings command
// (spec.md §6).
type PlaceRequest struct {
	Key         TileKey
	Type        BuildingType
	Orientation Direction
	Owner       *PlayerID
}

// RemoveRequest is one item of a remove_building / remove_buildings
// command.
type RemoveRequest struct {
	Key          TileKey
	ActingPlayer *PlayerID
}

// PlacementValidator supplies the external predicates the Tick Driver
// needs to evaluate placement validation ordering (spec.md §4.7): research
// unlocks, territory claims, and starter-kit quotas. A nil validator
// allows everything except the structural checks the Driver itself owns.
type PlacementValidator interface {
	IsUnlocked(owner *PlayerID, t BuildingType) bool
	TerritoryBlocked(owner *PlayerID, key TileKey) bool
	StarterKitQuota(owner *PlayerID, t BuildingType) bool // true: consume quota instead of charging construction cost
}

type allowAllValidator struct{}

func (allowAllValidator) IsUnlocked(*PlayerID, BuildingType) bool       { return true }
func (allowAllValidator) TerritoryBlocked(*PlayerID, TileKey) bool      { return false }
func (allowAllValidator) StarterKitQuota(*PlayerID, BuildingType) bool  { return false }

type command struct {
	kind     string
	place    []PlaceRequest
	remove   []RemoveRequest
	newSeed  int64
	reply    chan any
}

// Status is the Driver's run state.
type Status string

const (
	StatusRunning Status = "running"
	StatusPaused  Status = "paused"
	StatusResetting Status = "resetting"
	StatusStopped Status = "stopped"
)

// Driver is the Tick Driver of spec.md §4.7: a single-threaded logical
// actor owning the authoritative tick counter, serialising placement and
// removal commands between ticks. Grounded on the teacher's
// Engine.runLoop select{ctx.Done(), ticker.C} pattern, generalized from a
// single fixed game loop to the full phase pipeline of spec.md §2.
type Driver struct {
	mu     sync.RWMutex
	status Status
	tick   atomic.Int64

	store      *SpatialStore
	creatures  *CreatureRegistry
	corruption *CorruptionRegistry
	networks   map[string]PowerNetwork

	subdivisions int
	worldSeed    int64
	shiftPhase   int

	trinkets  map[PlayerID]PlayerTrinkets
	validator PlacementValidator

	powerCfg      PowerConfig
	creatureCfg   CreatureConfig
	corruptionCfg CorruptionConfig
	tickInterval  time.Duration

	commands chan command
	events   *EventBus
	submissions []SubmissionEvent

	saveIntervalTicks int
	pendingTiles      map[TileKey]struct{}
	pendingBuildings  map[TileKey]struct{}
	pendingRemoved    map[TileKey]struct{}

	persistence Persistence
	cancel      context.CancelFunc
	done        chan struct{}
}

// Persistence is the persistence collaborator interface of spec.md §6's
// `save_dirty(world_id, tile_keys, building_keys, removed_building_keys)`,
// invoked periodically (save_interval_ms) and once more at shutdown. The
// core hands it live Tile/Building values, not serialized blobs; the
// adapter owns the wire format.
type Persistence interface {
	SaveDirty(tiles []*Tile, buildings map[TileKey]*Building, removedKeys []TileKey)
}

// NewDriver constructs a Driver over a freshly generated or loaded world.
func NewDriver(cfg *config.Config, store *SpatialStore, persistence Persistence) *Driver {
	d := &Driver{
		status:       StatusPaused,
		store:        store,
		creatures:    NewCreatureRegistry(),
		corruption:   NewCorruptionRegistry(),
		networks:     make(map[string]PowerNetwork),
		subdivisions: store.Subdivisions(),
		worldSeed:    cfg.Sim.WorldSeed,
		trinkets:     make(map[PlayerID]PlayerTrinkets),
		validator:    allowAllValidator{},
		powerCfg: PowerConfig{
			GenRadius: cfg.Power.GenRadius,
			SubRadius: cfg.Power.SubRadius,
			TxRadius:  cfg.Power.TxRadius,
		},
		creatureCfg: CreatureConfig{
			SpawnInterval:          cfg.Creatures.SpawnInterval,
			MoveInterval:           cfg.Creatures.MoveInterval,
			CaptureRadius:          cfg.Creatures.CaptureRadius,
			CaptureTime:            cfg.Creatures.CaptureTime,
			MaxWild:                cfg.Creatures.MaxWild,
			EvolutionSeconds:       cfg.Creatures.EvolutionSeconds,
			EvolutionCheckInterval: cfg.Creatures.EvolutionCheckInterval,
			TickIntervalMs:         int(cfg.Sim.TickInterval.Milliseconds()),
		},
		corruptionCfg: CorruptionConfig{
			StartTick:            cfg.Corruption.StartTick,
			SeedInterval:         cfg.Corruption.SeedInterval,
			SpreadInterval:       cfg.Corruption.SpreadInterval,
			MaxIntensity:         cfg.Corruption.MaxIntensity,
			EntitySpawnThreshold: cfg.Corruption.EntitySpawnThresh,
			DamageThreshold:      cfg.Corruption.DamageThreshold,
			DestroyTicks:         cfg.Corruption.DestroyTicks,
			BeaconRadius:         cfg.Corruption.BeaconRadius,
			TurretRadius:         cfg.Corruption.TurretRadius,
			MaxEntities:          cfg.Corruption.MaxEntities,
			HissMoveInterval:     cfg.Corruption.HissMoveInterval,
		},
		tickInterval: cfg.Sim.TickInterval,
		commands:     make(chan command, 64),
		events:       NewEventBus(32),

		saveIntervalTicks: maxInt(int(cfg.Sim.SaveInterval/maxDuration(cfg.Sim.TickInterval, time.Millisecond)), 1),
		pendingTiles:       make(map[TileKey]struct{}),
		pendingBuildings:   make(map[TileKey]struct{}),
		pendingRemoved:     make(map[TileKey]struct{}),

		persistence: persistence,
		done:        make(chan struct{}),
	}
	return d
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}

// SetValidator overrides the default allow-all placement validator.
func (d *Driver) SetValidator(v PlacementValidator) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if v == nil {
		v = allowAllValidator{}
	}
	d.validator = v
}

// Events returns the channel downstream broadcast tasks drain (spec.md
// §4.8).
func (d *Driver) Events() <-chan []Delta {
	return d.events.Drain()
}

// TickCount implements the `tick_count()` command surface entry (spec.md
// §6). Safe from any goroutine.
func (d *Driver) TickCount() int64 {
	return d.tick.Load()
}

// RunStatus returns the Driver's current run state.
func (d *Driver) RunStatus() Status {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.status
}

// Start launches the ticker loop in a new goroutine.
func (d *Driver) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	d.mu.Lock()
	d.cancel = cancel
	d.status = StatusRunning
	d.mu.Unlock()
	go d.run(ctx)
}

// Stop halts the ticker loop and invokes save_dirty once more on the
// persistence collaborator (spec.md §4.7 "On shutdown, calls save_now").
func (d *Driver) Stop() {
	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
	}
	d.mu.Unlock()
	<-d.done
	d.flushSave()
}

// Pause/Resume toggle tick advancement without tearing down the loop.
func (d *Driver) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.status == StatusRunning {
		d.status = StatusPaused
	}
}

func (d *Driver) Resume() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.status == StatusPaused {
		d.status = StatusRunning
	}
}

func (d *Driver) run(ctx context.Context) {
	defer close(d.done)
	ticker := time.NewTicker(d.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-d.commands:
			d.handleCommand(cmd)
		case <-ticker.C:
			d.mu.RLock()
			status := d.status
			d.mu.RUnlock()
			if status != StatusRunning {
				continue
			}
			start := time.Now()
			d.processTick()
			if elapsed := time.Since(start); elapsed > d.tickInterval {
				log.Printf("sim: tick %d overran budget: %s > %s", d.tick.Load(), elapsed, d.tickInterval)
			}
		}
	}
}

// processTick runs the fixed phase order of spec.md §2: Construction
// delivery is folded into the push-resolution phase (acceptance against a
// construction gate IS a delivery), so the remaining ordering is Power
// resolve (conditional) -> Behavior kernels -> Push Resolver -> Conduit
// teleport -> Post-effects -> Creature + Corruption phases -> Delta
// emission.
func (d *Driver) processTick() {
	tick := int(d.tick.Load())

	if tick%PowerNetworkCheckInterval == 0 {
		d.networks = ResolvePower(d.store, d.subdivisions, d.powerCfg)
	}

	ratio := make(map[string]float64, len(d.networks))
	for id, n := range d.networks {
		if r := n.Ratio(); r > 1 {
			ratio[id] = r
		}
	}

	d.shiftPhase = tick / shiftCyclePeriod % 4

	ctx := &TickContext{
		Tick:           tick,
		ShiftPhase:     d.shiftPhase,
		CreatureBoosts: d.creatures.Boosts(),
		Trinkets:       d.trinkets,
		PowerRatio:     ratio,
		LitTurretAt: func(key TileKey, radius int) bool {
			for _, tk := range SortedKeys(d.store.AllBuildings()) {
				if d.store.GetBuilding(tk).Type == TypeDefenseTurret && ChebyshevDistance(key, tk) <= radius {
					return true
				}
			}
			return false
		},
		Illumination: func(key TileKey) float64 { return shiftIllumination(d.shiftPhase, key) },
	}

	tileOf := func(k TileKey) *Tile { return d.store.GetTile(k) }
	rng := NewRNG(d.worldSeed, tick, 1)

	events := RunKernelPhase(d.store, tileOf, ctx, rng)
	d.submissions = append(d.submissions, events...)

	AdvanceConveyors(d.store)

	intents := GeneratePushIntents(d.store, d.subdivisions)
	ResolvePush(d.store, intents, d.subdivisions)
	RunConduitTeleport(d.store)

	justPushed := make([]TileKey, len(intents))
	for i, in := range intents {
		justPushed[i] = in.Src
	}
	RunPostEffects(d.store, justPushed, tileOf, NewRNG(d.worldSeed, tick, 2))

	d.runCreaturePhase(tick)
	d.runCorruptionPhase(tick)

	d.emitDeltas(tick)
	if !d.events.Flush() {
		log.Printf("sim: tick %d delta batch dropped: event queue full (slow consumer)", tick)
	}

	if d.saveIntervalTicks > 0 && tick%d.saveIntervalTicks == 0 {
		d.flushSave()
	}

	d.tick.Add(1)
}

func (d *Driver) runCreaturePhase(tick int) {
	if tick%d.creatureCfg.SpawnInterval == 0 {
		rng := NewRNG(d.worldSeed, tick, 10)
		candidates := d.randomTiles(rng, 3)
		d.creatures.SpawnTick(d.store, candidates, d.creatureCfg.MaxWild, rng)
	}
	if tick%d.creatureCfg.MoveInterval == 0 {
		rng := NewRNG(d.worldSeed, tick, 11)
		d.creatures.Move(d.store, d.subdivisions, d.nearestGatheringPost, rng)
	}

	traps := make(map[TileKey]int)
	for _, key := range SortedKeys(d.store.AllBuildings()) {
		b := d.store.GetBuilding(key)
		if b.Type != TypeContainmentTrap {
			continue
		}
		base := d.creatureCfg.CaptureRadius
		tile := d.store.GetTile(key)
		spatialDistortion := tile != nil && tile.AlteredItem == AlteredTrapRadius
		var trinket bool
		if b.OwnerID != nil {
			trinket = d.trinkets[*b.OwnerID][TrinketAlteredResonance]
		}
		traps[key] = captureRadiusFor(base, spatialDistortion, false, trinket)
	}
	d.creatures.CaptureTick(d.store, d.subdivisions, d.creatureCfg.CaptureTime, tick, traps)

	if d.creatureCfg.EvolutionCheckInterval > 0 && tick%d.creatureCfg.EvolutionCheckInterval == 0 {
		evolutionTicks := d.creatureCfg.EvolutionSeconds * 1000 / maxInt(d.creatureCfg.TickIntervalMs, 1)
		d.creatures.EvolutionCheck(tick, evolutionTicks)
	}
}

func (d *Driver) runCorruptionPhase(tick int) {
	if tick < d.corruptionCfg.StartTick {
		return
	}
	beaconAt := func(key TileKey, radius int) bool {
		for _, k := range SortedKeys(d.store.AllBuildings()) {
			if d.store.GetBuilding(k).Type == TypePurificationBeacon && k.Face == key.Face && ChebyshevDistance(k, key) <= radius {
				return true
			}
		}
		return false
	}

	if d.corruptionCfg.SeedInterval > 0 && tick%d.corruptionCfg.SeedInterval == 0 {
		rng := NewRNG(d.worldSeed, tick, 20)
		candidates := d.randomTiles(rng, 3)
		keys := make([]TileKey, len(candidates))
		for i, t := range candidates {
			keys[i] = t.Key
		}
		d.corruption.SeedTick(d.store, keys, tick, d.corruptionCfg.BeaconRadius, beaconAt)
	}

	if d.corruptionCfg.SpreadInterval > 0 && tick%d.corruptionCfg.SpreadInterval == 0 {
		rng := NewRNG(d.worldSeed, tick, 21)
		d.corruption.SpreadTick(d.store, d.subdivisions, d.corruptionCfg.MaxIntensity, d.corruptionCfg.BeaconRadius, tick, beaconAt, rng)
		d.corruption.SpawnHissTick(d.corruptionCfg.EntitySpawnThreshold, d.corruptionCfg.MaxEntities, tick)
	}

	d.corruption.DamageTick(d.store, d.corruptionCfg.DamageThreshold, d.corruptionCfg.DestroyTicks)

	if d.corruptionCfg.HissMoveInterval > 0 && tick%d.corruptionCfg.HissMoveInterval == 0 {
		d.corruption.MoveHissTick(d.subdivisions, tick)
	}
	d.corruption.CombatTick(d.store, d.creatures)
	PurifyTick(d.corruption, d.store, d.corruptionCfg.BeaconRadius)
}

func (d *Driver) nearestGatheringPost(from TileKey) (TileKey, bool) {
	all := d.store.AllBuildings()
	var best TileKey
	bestDist := 8
	found := false
	for _, k := range SortedKeys(all) {
		if all[k].Type != TypeGatheringPost || k.Face != from.Face {
			continue
		}
		dist := ChebyshevDistance(from, k)
		if dist <= 7 && dist < bestDist {
			best, bestDist, found = k, dist, true
		}
	}
	return best, found
}

func (d *Driver) randomTiles(rng *RNG, n int) []*Tile {
	var out []*Tile
	for i := 0; i < n; i++ {
		face := rng.Intn(FaceCount)
		row := rng.Intn(d.subdivisions)
		col := rng.Intn(d.subdivisions)
		if t := d.store.GetTile(TileKey{Face: face, Row: row, Col: col}); t != nil {
			out = append(out, t)
		}
	}
	return out
}

func (d *Driver) emitDeltas(tick int) {
	modTiles, modBuildings, removed := d.store.DrainDirty()
	d.accumulateSaveDirty(modTiles, modBuildings, removed)

	byFaceBuildings := make(map[int][]TileKey)
	for _, k := range modBuildings {
		byFaceBuildings[k.Face] = append(byFaceBuildings[k.Face], k)
	}

	for face, keys := range byFaceBuildings {
		sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

		var items []ItemMove
		for _, k := range keys {
			b := d.store.GetBuilding(k)
			if b == nil {
				continue
			}
			kk := k
			d.events.Emit(Delta{Kind: DeltaBuildingPlaced, Face: face, Tick: tick, Key: &kk, Building: b})
			if item, ok := heldItem(b); ok {
				items = append(items, ItemMove{Row: k.Row, Col: k.Col, Item: item})
			}
		}
		if len(items) > 0 {
			d.events.Emit(Delta{Kind: DeltaTickUpdate, Face: face, Tick: tick, Items: items})
		}
	}
	for _, k := range removed {
		kk := k
		d.events.Emit(Delta{Kind: DeltaBuildingRemoved, Face: k.Face, Tick: tick, Key: &kk})
	}
}

// accumulateSaveDirty folds one tick's drained dirty keys into the
// since-last-save sets. The store's own mutual-exclusion rule (a key is
// either pending-modified or pending-removed, never both) is replicated
// here across the longer save_interval_ms window, since DrainDirty is
// only ever called once per tick, by emitDeltas, and must feed both the
// broadcast path and the persistence path from that single drain.
func (d *Driver) accumulateSaveDirty(modTiles, modBuildings, removed []TileKey) {
	for _, k := range modTiles {
		d.pendingTiles[k] = struct{}{}
	}
	for _, k := range modBuildings {
		delete(d.pendingRemoved, k)
		d.pendingBuildings[k] = struct{}{}
	}
	for _, k := range removed {
		delete(d.pendingBuildings, k)
		d.pendingRemoved[k] = struct{}{}
	}
}

// flushSave hands the accumulated since-last-save dirty set to the
// persistence collaborator and clears it. Safe to call with nothing
// pending (spec.md §4.7's periodic and shutdown calls both route here).
func (d *Driver) flushSave() {
	if d.persistence == nil {
		return
	}
	if len(d.pendingTiles) == 0 && len(d.pendingBuildings) == 0 && len(d.pendingRemoved) == 0 {
		return
	}

	tiles := make([]*Tile, 0, len(d.pendingTiles))
	for k := range d.pendingTiles {
		if t := d.store.GetTile(k); t != nil {
			tiles = append(tiles, t)
		}
	}
	buildings := make(map[TileKey]*Building, len(d.pendingBuildings))
	for k := range d.pendingBuildings {
		if b := d.store.GetBuilding(k); b != nil {
			buildings[k] = b
		}
	}
	removedKeys := make([]TileKey, 0, len(d.pendingRemoved))
	for k := range d.pendingRemoved {
		removedKeys = append(removedKeys, k)
	}

	d.persistence.SaveDirty(tiles, buildings, removedKeys)

	d.pendingTiles = make(map[TileKey]struct{})
	d.pendingBuildings = make(map[TileKey]struct{})
	d.pendingRemoved = make(map[TileKey]struct{})
}

// heldItem returns the single item currently visible at a building's
// front slot, for the tick_update delta's client-interpolation feed
// (spec.md §6).
func heldItem(b *Building) (ItemKind, bool) {
	switch st := b.State.(type) {
	case ConveyorState:
		if st.Item != nil {
			return *st.Item, true
		}
	case DistributorState:
		if st.Item != nil {
			return *st.Item, true
		}
	case LoadEqualizerState:
		if st.Item != nil {
			return *st.Item, true
		}
	case ConvergerState:
		if st.Item != nil {
			return *st.Item, true
		}
	}
	return "", false
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// shiftIllumination is a deterministic stand-in for "face-normal · sun
// direction" (spec.md §4.2 Shadow Panel rule): a smooth function of the
// shift phase and the tile's row, giving every face a moving terminator
// line without depending on true 3D face-normal geometry (out of scope
// per spec.md §1's sphere-geometry primitive).
func shiftIllumination(shiftPhase int, key TileKey) float64 {
	phaseOffset := float64(shiftPhase) * 0.25
	rowFrac := float64(key.Row%64) / 64.0
	v := rowFrac + phaseOffset
	v -= float64(int(v))
	if v > 0.5 {
		v = 1 - v
	}
	return v * 2
}
