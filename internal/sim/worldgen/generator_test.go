package worldgen

import (
	"testing"

	"github.com/hollowsphere/core/internal/sim"
)

func TestGeneratePopulatesOneTilePerCell(t *testing.T) {
	store := sim.NewSpatialStore(4)
	Generate(store, 42, 4, DefaultConfig())

	for face := 0; face < sim.FaceCount; face++ {
		for row := 0; row < 4; row++ {
			for col := 0; col < 4; col++ {
				key := sim.TileKey{Face: face, Row: row, Col: col}
				if store.GetTile(key) == nil {
					t.Fatalf("expected a tile at %+v, got none", key)
				}
			}
		}
	}
}

func TestGenerateIsDeterministicForSameSeed(t *testing.T) {
	cfg := DefaultConfig()
	s1 := sim.NewSpatialStore(4)
	Generate(s1, 7, 4, cfg)
	s2 := sim.NewSpatialStore(4)
	Generate(s2, 7, 4, cfg)

	for face := 0; face < sim.FaceCount; face++ {
		for row := 0; row < 4; row++ {
			for col := 0; col < 4; col++ {
				key := sim.TileKey{Face: face, Row: row, Col: col}
				t1, t2 := s1.GetTile(key), s2.GetTile(key)
				if t1.Terrain != t2.Terrain {
					t.Fatalf("expected identical terrain for identical seeds at %+v, got %v vs %v", key, t1.Terrain, t2.Terrain)
				}
			}
		}
	}
}

func TestClassifyTerrainPicksHighestPriorityMatch(t *testing.T) {
	// Elevation 0.9 matches both the tundra rule (priority 100) and the
	// catch-all grassland rule (priority 0); tundra must win.
	if got := classifyTerrain(0.9, 0.5, 0.5); got != sim.TerrainTundra {
		t.Fatalf("expected high elevation to classify as tundra, got %v", got)
	}
}

func TestClassifyTerrainFallsBackToGrassland(t *testing.T) {
	// Low elevation, mid moisture/temperature matches no specialized rule.
	if got := classifyTerrain(0.1, 0.4, 0.4); got != sim.TerrainGrassland {
		t.Fatalf("expected the catch-all rule to classify as grassland, got %v", got)
	}
}

func TestGeneratePlacesOnlyResourcesListedForTerrain(t *testing.T) {
	store := sim.NewSpatialStore(2)
	Generate(store, 1, 2, DefaultConfig())

	for face := 0; face < sim.FaceCount; face++ {
		for row := 0; row < 2; row++ {
			for col := 0; col < 2; col++ {
				tile := store.GetTile(sim.TileKey{Face: face, Row: row, Col: col})
				if tile.Resource != nil {
					kinds := resourcesByTerrain[tile.Terrain]
					found := false
					for _, k := range kinds {
						if k == tile.Resource.Kind {
							found = true
							break
						}
					}
					if !found {
						t.Fatalf("resource %v placed on terrain %v which doesn't list it", tile.Resource.Kind, tile.Terrain)
					}
				}
			}
		}
	}
}
