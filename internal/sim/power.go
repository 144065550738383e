package sim

import (
	"fmt"
	"sort"
)

// PowerNetwork is the published result of one connected component's
// resolution (spec.md §3 "power network cache").
type PowerNetwork struct {
	ID       string
	Capacity int
	Load     int
}

// Ratio returns load/capacity, or 0 if capacity is 0 (an empty network
// never brownouts).
func (n PowerNetwork) Ratio() float64 {
	if n.Capacity <= 0 {
		return 0
	}
	return float64(n.Load) / float64(n.Capacity)
}

// PowerConfig carries the Chebyshev radii governing network formation
// (spec.md §4.4 "Constants (design defaults; expose as config)").
type PowerConfig struct {
	GenRadius int
	SubRadius int
	TxRadius  int
}

// ResolvePower implements spec.md §4.4 in full: connected-component
// discovery among substations/transfer-stations, generator seeding,
// capacity/load accounting, and per-building network-id assignment. It
// writes NetworkID directly onto each affected Building via store.PutBuilding
// and returns the resolved networks keyed by id.
func ResolvePower(store *SpatialStore, subdivisions int, cfg PowerConfig) map[string]PowerNetwork {
	all := store.AllBuildings()
	keys := SortedKeys(all)

	var substations, transfers, generators []TileKey
	for _, k := range keys {
		switch all[k].Type {
		case TypeSubstation:
			substations = append(substations, k)
		case TypeTransferStation:
			transfers = append(transfers, k)
		case TypeBioGenerator, TypeShadowPanel:
			generators = append(generators, k)
		}
	}

	nodes := append(append([]TileKey{}, substations...), transfers...)
	isSubstation := make(map[TileKey]bool, len(substations))
	for _, k := range substations {
		isSubstation[k] = true
	}

	components := connectedComponents(nodes, func(a, b TileKey) bool {
		if a.Face != b.Face {
			return false
		}
		if isSubstation[a] && isSubstation[b] {
			return ChebyshevDistance(a, b) <= cfg.SubRadius
		}
		return ChebyshevDistance(a, b) <= cfg.TxRadius
	})

	networks := make(map[string]PowerNetwork)
	poweredTiles := make(map[TileKey]string) // tile -> networkID
	networkSubstations := make(map[string][]TileKey)

	netSeq := 0
	for _, comp := range components {
		var compSubs []TileKey
		for _, k := range comp {
			if isSubstation[k] {
				compSubs = append(compSubs, k)
			}
		}
		if len(compSubs) == 0 {
			continue
		}

		capacity := 0
		seeded := false
		for _, genKey := range generators {
			gb := all[genKey]
			if !generatorProducing(gb) {
				continue
			}
			for _, sub := range compSubs {
				if sub.Face == genKey.Face && ChebyshevDistance(sub, genKey) <= cfg.GenRadius {
					capacity += generatorOutput(gb)
					seeded = true
					break
				}
			}
		}
		if !seeded {
			continue
		}

		netSeq++
		id := networkIDFor(comp, netSeq)
		networkSubstations[id] = compSubs

		for _, sub := range compSubs {
			for _, t := range tilesWithinRadius(sub, cfg.SubRadius, subdivisions) {
				poweredTiles[t] = id
			}
		}

		networks[id] = PowerNetwork{ID: id, Capacity: capacity}
	}

	load := make(map[string]int)
	for _, k := range keys {
		b := all[k]
		id, powered := poweredTiles[k]
		if !powered {
			if b.NetworkID != "" {
				nb := *b
				nb.NetworkID = ""
				store.PutBuilding(k, &nb)
			}
			continue
		}
		if b.NetworkID != id {
			nb := *b
			nb.NetworkID = id
			store.PutBuilding(k, &nb)
		}
		if b.PoweredUser && b.Operational() {
			load[id] += b.Type.PowerDraw()
		}
	}
	for id, n := range networks {
		n.Load = load[id]
		networks[id] = n
	}

	return networks
}

func generatorProducing(b *Building) bool {
	switch st := b.State.(type) {
	case BioGeneratorState:
		return st.Producing
	case ShadowPanelState:
		return st.PowerOutput > 0
	default:
		return false
	}
}

func generatorOutput(b *Building) int {
	switch st := b.State.(type) {
	case BioGeneratorState:
		if st.Producing {
			return gBioOutput
		}
		return 0
	case ShadowPanelState:
		return st.PowerOutput
	default:
		return 0
	}
}

// gBioOutput is the constant Bio Generator capacity contribution while
// producing (spec.md §4.4 "Bio = constant G_bio").
const gBioOutput = 20

// tilesWithinRadius enumerates every same-face tile within Chebyshev
// radius of center, clamped to the grid (spec.md §4.4 step 7).
func tilesWithinRadius(center TileKey, radius, subdivisions int) []TileKey {
	var out []TileKey
	for dr := -radius; dr <= radius; dr++ {
		row := center.Row + dr
		if row < 0 || row >= subdivisions {
			continue
		}
		for dc := -radius; dc <= radius; dc++ {
			col := center.Col + dc
			if col < 0 || col >= subdivisions {
				continue
			}
			out = append(out, TileKey{Face: center.Face, Row: row, Col: col})
		}
	}
	return out
}

// connectedComponents groups nodes under an adjacency predicate via
// union-find, iterating in the caller's stable order so tie-breaking
// (and thus the derived network id) is deterministic.
func connectedComponents(nodes []TileKey, adjacent func(a, b TileKey) bool) [][]TileKey {
	parent := make(map[TileKey]TileKey, len(nodes))
	for _, n := range nodes {
		parent[n] = n
	}
	var find func(TileKey) TileKey
	find = func(k TileKey) TileKey {
		if parent[k] != k {
			parent[k] = find(parent[k])
		}
		return parent[k]
	}
	union := func(a, b TileKey) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		if rb.Less(ra) {
			parent[ra] = rb
		} else {
			parent[rb] = ra
		}
	}

	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			if adjacent(nodes[i], nodes[j]) {
				union(nodes[i], nodes[j])
			}
		}
	}

	groups := make(map[TileKey][]TileKey)
	for _, n := range nodes {
		root := find(n)
		groups[root] = append(groups[root], n)
	}

	var roots []TileKey
	for r := range groups {
		roots = append(roots, r)
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].Less(roots[j]) })

	out := make([][]TileKey, 0, len(roots))
	for _, r := range roots {
		out = append(out, groups[r])
	}
	return out
}

// networkIDFor derives a stable id from the component's lexicographically
// smallest member key alone (seq does not enter the id), so re-resolution
// with an unchanged component reproduces the same id.
func networkIDFor(comp []TileKey, seq int) string {
	min := comp[0]
	for _, k := range comp[1:] {
		if k.Less(min) {
			min = k
		}
	}
	return tileKeyString(min)
}

func tileKeyString(k TileKey) string {
	return fmt.Sprintf("net-%d-%d-%d", k.Face, k.Row, k.Col)
}
