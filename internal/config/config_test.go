package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}

	if cfg.Scene.Mode != "plane" {
		t.Errorf("expected scene mode 'plane', got %s", cfg.Scene.Mode)
	}

	if cfg.Terrain.NumLevels <= cfg.Terrain.MinLevel {
		t.Errorf("default num_levels %d must exceed min_level %d", cfg.Terrain.NumLevels, cfg.Terrain.MinLevel)
	}
	if cfg.Terrain.CamEpsilon != 0 {
		t.Errorf("expected exact camera match by default, got epsilon %v", cfg.Terrain.CamEpsilon)
	}

	if cfg.Worker.WaitTime != 20*time.Millisecond {
		t.Errorf("expected worker wait 20ms, got %v", cfg.Worker.WaitTime)
	}

	if cfg.Cache.Enabled {
		t.Error("expected geometry cache to be disabled by default")
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false

scene:
  mode: planet
  textures: ["grass.png", "rock.png"]

terrain:
  root_cell_size: 1024
  num_side_vertex: 5
  num_levels: 3
  min_level: 1
  dist_multiplier: 4
  rel_dist: 6
  cam_epsilon: 0.5

planet:
  radius: 500
  nucleus: [1, 2, 3]

noise:
  seed: 42
  octaves: 3

worker:
  wait_time: 5ms

cache:
  enabled: true
  path: "/tmp/geometry.db"

logging:
  level: "debug"
  log_file: "terrain.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 || cfg.Graphics.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if !cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Scene.Mode != "planet" || len(cfg.Scene.Textures) != 2 {
		t.Errorf("unexpected scene config %+v", cfg.Scene)
	}
	if cfg.Terrain.RootCellSize != 1024 || cfg.Terrain.NumSideVertex != 5 || cfg.Terrain.NumLevels != 3 {
		t.Errorf("unexpected terrain config %+v", cfg.Terrain)
	}
	if cfg.Terrain.CamEpsilon != 0.5 {
		t.Errorf("expected cam epsilon 0.5, got %v", cfg.Terrain.CamEpsilon)
	}
	if cfg.Planet.Radius != 500 || cfg.Planet.Nucleus != [3]float32{1, 2, 3} {
		t.Errorf("unexpected planet config %+v", cfg.Planet)
	}
	if cfg.Noise.Seed != 42 || cfg.Noise.Octaves != 3 {
		t.Errorf("unexpected noise config %+v", cfg.Noise)
	}
	// Unset fields keep their defaults.
	if cfg.Noise.Lacunarity != 2 {
		t.Errorf("expected default lacunarity 2, got %v", cfg.Noise.Lacunarity)
	}
	if cfg.Worker.WaitTime != 5*time.Millisecond {
		t.Errorf("expected wait 5ms, got %v", cfg.Worker.WaitTime)
	}
	if !cfg.Cache.Enabled || cfg.Cache.Path != "/tmp/geometry.db" {
		t.Errorf("unexpected cache config %+v", cfg.Cache)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "terrain.log" {
		t.Errorf("unexpected logging config %+v", cfg.Logging)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config should validate: %v", err)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero root cell", func(c *Config) { c.Terrain.RootCellSize = 0 }, true},
		{"single vertex", func(c *Config) { c.Terrain.NumSideVertex = 1 }, true},
		{"no levels", func(c *Config) { c.Terrain.NumLevels = 0 }, true},
		{"min level too deep", func(c *Config) { c.Terrain.MinLevel = c.Terrain.NumLevels }, true},
		{"negative multiplier", func(c *Config) { c.Terrain.DistMultiplier = -1 }, true},
		{"unknown mode", func(c *Config) { c.Scene.Mode = "torus" }, true},
		{"planet without radius", func(c *Config) {
			c.Scene.Mode = "planet"
			c.Planet.Radius = 0
		}, true},
		{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"log file without size", func(c *Config) {
			c.Logging.LogFile = "planet.log"
			c.Logging.MaxSizeMB = 0
		}, true},
		{"log file with defaults", func(c *Config) { c.Logging.LogFile = "planet.log" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateFillsCachePath(t *testing.T) {
	cfg := Default()
	cfg.Cache.Enabled = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Cache.Path == "" {
		t.Error("expected a default cache path")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("graphics:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "mode flag",
			setup: func() { *flagMode = "planet" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Scene.Mode != "planet" {
					t.Errorf("expected mode planet, got %s", cfg.Scene.Mode)
				}
			},
			teardown: func() { *flagMode = "" },
		},
		{
			name:  "seed flag",
			setup: func() { *flagSeed = 99 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Noise.Seed != 99 {
					t.Errorf("expected seed 99, got %d", cfg.Noise.Seed)
				}
			},
			teardown: func() { *flagSeed = 0 },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Width != 2560 || cfg.Graphics.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Terrain.NumLevels = 9
	cfg.Scene.Mode = "planet"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile() error = %v", err)
	}
	if loaded.Terrain.NumLevels != 9 || loaded.Scene.Mode != "planet" {
		t.Errorf("saved values not restored: %+v %+v", loaded.Terrain, loaded.Scene)
	}
}
