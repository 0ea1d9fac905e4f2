package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Try to load from file (explicit path takes priority)
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	// Apply CLI flags (highest priority)
	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "PlanetLOD")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "PlanetLOD")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "planetlod")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "planetlod")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate rejects parameter combinations the terrain grids cannot use.
func (c *Config) Validate() error {
	t := c.Terrain
	var errs []error
	if t.RootCellSize <= 0 {
		errs = append(errs, fmt.Errorf("terrain.root_cell_size must be positive, got %v", t.RootCellSize))
	}
	if t.NumSideVertex < 2 {
		errs = append(errs, fmt.Errorf("terrain.num_side_vertex must be at least 2, got %d", t.NumSideVertex))
	}
	if t.NumLevels < 1 {
		errs = append(errs, fmt.Errorf("terrain.num_levels must be at least 1, got %d", t.NumLevels))
	}
	if t.MinLevel < 0 || t.MinLevel >= t.NumLevels {
		errs = append(errs, fmt.Errorf("terrain.min_level must be in [0, num_levels), got %d", t.MinLevel))
	}
	if t.DistMultiplier < 0 {
		errs = append(errs, fmt.Errorf("terrain.dist_multiplier must not be negative, got %v", t.DistMultiplier))
	}
	if c.Scene.Mode != ModePlane && c.Scene.Mode != ModePlanet {
		errs = append(errs, fmt.Errorf("scene.mode must be plane or planet, got %q", c.Scene.Mode))
	}
	if c.Scene.Mode == ModePlanet && c.Planet.Radius <= 0 {
		errs = append(errs, fmt.Errorf("planet.radius must be positive, got %v", c.Planet.Radius))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level))
	}
	if c.Logging.LogFile != "" && c.Logging.MaxSizeMB <= 0 {
		errs = append(errs, fmt.Errorf("logging.max_size_mb must be positive, got %d", c.Logging.MaxSizeMB))
	}
	if c.Cache.Enabled && c.Cache.Path == "" {
		c.Cache.Path = filepath.Join(ConfigDir(), "geometry.db")
	}
	return errors.Join(errs...)
}
