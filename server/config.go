package main

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the server settings file. Every field has a default so the
// server comes up with no file present.
type Config struct {
	Addr      string `yaml:"addr"`
	ClientDir string `yaml:"client_dir"`
	DBPath    string `yaml:"db_path"`
	JWTSecret string `yaml:"jwt_secret"`

	World   WorldConfig `yaml:"world"`
	View    ViewConfig  `yaml:"view"`
	Maze    MazeConfig  `yaml:"maze"`
	Race    RaceTuning  `yaml:"race"`
	Gravity float64     `yaml:"gravity"`
}

// WorldConfig sizes the tile world
type WorldConfig struct {
	Cols    int     `yaml:"cols"`
	Rows    int     `yaml:"rows"`
	TileW   float64 `yaml:"tile_width"`
	TileH   float64 `yaml:"tile_height"`
	OriginX float64 `yaml:"origin_x"`
	OriginY float64 `yaml:"origin_y"`
}

// ViewConfig shapes the projected first-person view
type ViewConfig struct {
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	FOV      float64 `yaml:"fov"`
	RayCount int     `yaml:"ray_count"`
}

// MazeConfig picks the generator per session
type MazeConfig struct {
	Algorithm string `yaml:"algorithm"`
	Seed      uint64 `yaml:"seed"` // 0 rolls a fresh seed per session
}

// RaceTuning overrides race defaults. Zero values keep the built-ins.
type RaceTuning struct {
	TimeLimit  float64 `yaml:"time_limit"`
	MinRunners int     `yaml:"min_runners"`
	Sentries   int     `yaml:"sentries"`
	Mists      int     `yaml:"mists"`
	Coins      int     `yaml:"coins"`
}

// DefaultConfig returns the built-in settings
func DefaultConfig() *Config {
	return &Config{
		Addr:      ":8080",
		ClientDir: "../client",
		DBPath:    "maze3d.db",
		World: WorldConfig{
			Cols:  21,
			Rows:  21,
			TileW: 32,
			TileH: 32,
		},
		View: ViewConfig{
			Width:    800,
			Height:   600,
			FOV:      60,
			RayCount: 60,
		},
		Maze: MazeConfig{
			Algorithm: MazeAlgorithmDFS,
		},
		Gravity: 1.0,
	}
}

// LoadConfig reads the YAML settings file over the defaults. A missing
// file falls back to defaults; a malformed one is an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("Config %s not found, using defaults", path)
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
