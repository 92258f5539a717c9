package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfigManager_LoadDefaultsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "defaults.yaml")
	if err := os.WriteFile(path, []byte("levelingHorizonDays: 90\ndefaultHoursPerDay: 6\n"), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cm := NewConfigManager(nil)
	cfg, err := cm.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LevelingHorizonDays != 90 {
		t.Fatalf("expected horizon 90 from file, got %d", cfg.LevelingHorizonDays)
	}
	if cfg.DefaultHoursPerDay != 6 {
		t.Fatalf("expected hours-per-day 6 from file, got %v", cfg.DefaultHoursPerDay)
	}
	if cfg.EVMRoundingDecimals != 4 {
		t.Fatalf("expected unset field to keep its struct-tag default, got %d", cfg.EVMRoundingDecimals)
	}
	if got := cm.Current(); got != cfg {
		t.Fatalf("expected Current to return the loaded config")
	}
}

func TestConfigManager_MissingFileUsesDefaults(t *testing.T) {
	cm := NewConfigManager(nil)
	cfg, err := cm.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("unexpected error for missing defaults file: %v", err)
	}
	want := DefaultEngineConfig()
	if cfg != want {
		t.Fatalf("expected built-in defaults, got %+v", cfg)
	}
}

func TestConfigManager_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "defaults.yaml")
	if err := os.WriteFile(path, []byte("levelingHorizonDays: 90\n"), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	t.Setenv("SCHED_LEVELING_HORIZON_DAYS", "30")

	cm := NewConfigManager(nil)
	cfg, err := cm.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LevelingHorizonDays != 30 {
		t.Fatalf("expected environment override to win over file default, got %d", cfg.LevelingHorizonDays)
	}
}

func TestConfigManager_RejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "defaults.yaml")
	if err := os.WriteFile(path, []byte("defaultHoursPerDay: 0\n"), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cm := NewConfigManager(nil)
	if _, err := cm.Load(path); err == nil {
		t.Fatalf("expected validation error for non-positive hours per day")
	}
}

func TestConfigManager_HotReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "defaults.yaml")
	if err := os.WriteFile(path, []byte("levelingHorizonDays: 90\n"), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cm := NewConfigManager(nil)
	if _, err := cm.Load(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reloaded := make(chan EngineConfig, 1)
	if err := cm.StartHotReload(func(cfg EngineConfig, err error) {
		if err == nil {
			reloaded <- cfg
		}
	}); err != nil {
		t.Fatalf("unexpected error starting hot-reload: %v", err)
	}
	defer cm.StopHotReload()

	if err := os.WriteFile(path, []byte("levelingHorizonDays: 45\n"), 0644); err != nil {
		t.Fatalf("rewriting fixture: %v", err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.LevelingHorizonDays != 45 {
			t.Fatalf("expected reloaded horizon 45, got %d", cfg.LevelingHorizonDays)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for config hot-reload")
	}
}
