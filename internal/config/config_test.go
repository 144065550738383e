package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultMatchesDocumentedTunables(t *testing.T) {
	cfg := Default()

	if cfg.Sim.Subdivisions != 64 {
		t.Errorf("expected default subdivisions 64, got %d", cfg.Sim.Subdivisions)
	}
	if cfg.Sim.TickInterval != 200*time.Millisecond {
		t.Errorf("expected default tick interval 200ms, got %v", cfg.Sim.TickInterval)
	}
	if cfg.Power.GenRadius != 3 || cfg.Power.SubRadius != 4 || cfg.Power.TxRadius != 8 {
		t.Errorf("unexpected default power radii: %+v", cfg.Power)
	}
	if cfg.Creatures.MaxWild != 200 {
		t.Errorf("expected default max wild creatures 200, got %d", cfg.Creatures.MaxWild)
	}
	if cfg.Corruption.StartTick != 500 {
		t.Errorf("expected default corruption start tick 500, got %d", cfg.Corruption.StartTick)
	}
}

func TestLoadOverridesDefaultsFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte(`
server:
  port: 9090
  host: 127.0.0.1
sim:
  subdivisions: 16
  world_seed: 7
power:
  gen_radius: 5
`)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("failed to write fixture config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned an error: %v", err)
	}
	if cfg.Server.Port != 9090 || cfg.Server.Host != "127.0.0.1" {
		t.Errorf("expected server overrides applied, got %+v", cfg.Server)
	}
	if cfg.Sim.Subdivisions != 16 || cfg.Sim.WorldSeed != 7 {
		t.Errorf("expected sim overrides applied, got %+v", cfg.Sim)
	}
	if cfg.Power.GenRadius != 5 {
		t.Errorf("expected power override applied, got %+v", cfg.Power)
	}
}

func TestLoadReturnsErrorForMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Fatal("expected an error loading a missing config file")
	}
}

func TestLoadReturnsErrorForMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("sim: [this is not a mapping"), 0o644); err != nil {
		t.Fatalf("failed to write fixture config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for malformed YAML")
	}
}
