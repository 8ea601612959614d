package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("expected default addr :8080, got %q", cfg.Addr)
	}
	if cfg.World.Cols != 21 || cfg.World.Rows != 21 {
		t.Errorf("expected 21x21 world, got %dx%d", cfg.World.Cols, cfg.World.Rows)
	}
	if cfg.World.TileW != 32 || cfg.World.TileH != 32 {
		t.Errorf("expected 32px tiles, got %vx%v", cfg.World.TileW, cfg.World.TileH)
	}
	if cfg.View.Width != 800 || cfg.View.Height != 600 {
		t.Errorf("expected 800x600 view, got %vx%v", cfg.View.Width, cfg.View.Height)
	}
	if cfg.View.FOV != 60 || cfg.View.RayCount != 60 {
		t.Errorf("expected fov 60 with 60 rays, got %v/%d", cfg.View.FOV, cfg.View.RayCount)
	}
	if cfg.Maze.Algorithm != MazeAlgorithmDFS {
		t.Errorf("expected dfs default, got %q", cfg.Maze.Algorithm)
	}
	if cfg.Gravity != 1.0 {
		t.Errorf("expected gravity 1.0, got %v", cfg.Gravity)
	}
	if cfg.Race.TimeLimit != 0 {
		t.Errorf("race tuning should default to zero, got %v", cfg.Race.TimeLimit)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
addr: ":9999"
db_path: "custom.db"
world:
  cols: 31
  rows: 15
maze:
  algorithm: "prim"
  seed: 12345
race:
  time_limit: 240
  coins: 20
`)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9999" {
		t.Errorf("expected addr :9999, got %q", cfg.Addr)
	}
	if cfg.DBPath != "custom.db" {
		t.Errorf("expected custom.db, got %q", cfg.DBPath)
	}
	if cfg.World.Cols != 31 || cfg.World.Rows != 15 {
		t.Errorf("expected 31x15 world, got %dx%d", cfg.World.Cols, cfg.World.Rows)
	}
	if cfg.Maze.Algorithm != "prim" || cfg.Maze.Seed != 12345 {
		t.Errorf("expected prim/12345, got %q/%d", cfg.Maze.Algorithm, cfg.Maze.Seed)
	}
	if cfg.Race.TimeLimit != 240 || cfg.Race.Coins != 20 {
		t.Errorf("expected race overrides, got %+v", cfg.Race)
	}

	// Untouched fields keep their defaults
	if cfg.View.RayCount != 60 {
		t.Errorf("expected default ray count, got %d", cfg.View.RayCount)
	}
	if cfg.World.TileW != 32 {
		t.Errorf("expected default tile width, got %v", cfg.World.TileW)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("addr: [unclosed"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}
