package sim

import (
	"math/rand"
	"sort"
	"testing"
)

func TestTileKeyLessTotalOrder(t *testing.T) {
	keys := []TileKey{
		{Face: 1, Row: 0, Col: 0},
		{Face: 0, Row: 9, Col: 9},
		{Face: 1, Row: 0, Col: 1},
		{Face: 1, Row: 1, Col: 0},
	}
	want := []TileKey{
		{Face: 0, Row: 9, Col: 9},
		{Face: 1, Row: 0, Col: 0},
		{Face: 1, Row: 0, Col: 1},
		{Face: 1, Row: 1, Col: 0},
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("sorted order = %+v, want %+v", keys, want)
		}
	}
}

func TestSortedKeysIsStableAndDeterministic(t *testing.T) {
	m := map[TileKey]*Building{}
	for i := 0; i < 20; i++ {
		m[TileKey{Face: i % 3, Row: i, Col: i * 2 % 5}] = &Building{Type: TypeConveyorMk1}
	}

	first := SortedKeys(m)
	for i := 0; i < 5; i++ {
		again := SortedKeys(m)
		if len(again) != len(first) {
			t.Fatalf("length changed across calls")
		}
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("SortedKeys is not deterministic: call %d differs at index %d", i, j)
			}
		}
	}

	for i := 1; i < len(first); i++ {
		if !first[i-1].Less(first[i]) {
			t.Fatalf("keys not sorted: %+v then %+v", first[i-1], first[i])
		}
	}
}

func TestSortedKeysIndependentOfMapIterationOrder(t *testing.T) {
	rand.New(rand.NewSource(1))
	keys := make([]TileKey, 0, 50)
	for i := 0; i < 50; i++ {
		keys = append(keys, TileKey{Face: i % 30, Row: i, Col: (i * 7) % 13})
	}

	m1 := map[TileKey]*Building{}
	for _, k := range keys {
		m1[k] = &Building{}
	}
	m2 := map[TileKey]*Building{}
	for i := len(keys) - 1; i >= 0; i-- {
		m2[keys[i]] = &Building{}
	}

	got1 := SortedKeys(m1)
	got2 := SortedKeys(m2)
	if len(got1) != len(got2) {
		t.Fatalf("length mismatch")
	}
	for i := range got1 {
		if got1[i] != got2[i] {
			t.Fatalf("order depends on insertion order at index %d: %+v vs %+v", i, got1[i], got2[i])
		}
	}
}
