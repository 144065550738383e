package sim

import "sort"

// Less gives TileKey a total order (face, then row, then col), used
// everywhere spec.md §5 requires "per-class iteration order ... stable,
// sorted by tile key" for determinism.
func (k TileKey) Less(other TileKey) bool {
	if k.Face != other.Face {
		return k.Face < other.Face
	}
	if k.Row != other.Row {
		return k.Row < other.Row
	}
	return k.Col < other.Col
}

// SortedKeys returns the keys of a TileKey-keyed building map in stable
// tile-key order.
func SortedKeys(m map[TileKey]*Building) []TileKey {
	keys := make([]TileKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}
