// Package config handles engine configuration loading and management.
package config

import "time"

// Config holds all engine settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Scene    SceneConfig    `yaml:"scene"`
	Terrain  TerrainConfig  `yaml:"terrain"`
	Planet   PlanetConfig   `yaml:"planet"`
	Noise    NoiseConfig    `yaml:"noise"`
	Worker   WorkerConfig   `yaml:"worker"`
	Cache    CacheConfig    `yaml:"cache"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	FPSLimit   int  `yaml:"fps_limit"`
}

// Scene modes.
const (
	ModePlane  = "plane"
	ModePlanet = "planet"
)

// SceneConfig selects what the demo renders.
type SceneConfig struct {
	Mode      string   `yaml:"mode"`       // "plane" or "planet"
	ShaderDir string   `yaml:"shader_dir"` // Overrides built-in shaders when set
	Textures  []string `yaml:"textures"`   // Texture files bound to every chunk
}

// TerrainConfig holds the LOD grid parameters. They are copied into each
// grid at construction and never change afterwards.
type TerrainConfig struct {
	RootCellSize    float32 `yaml:"root_cell_size"`
	NumSideVertex   int     `yaml:"num_side_vertex"`
	NumLevels       int     `yaml:"num_levels"`
	MinLevel        int     `yaml:"min_level"`
	DistMultiplier  float32 `yaml:"dist_multiplier"`
	RelDist         float32 `yaml:"rel_dist"`          // Eviction distance in chunk sides
	CamEpsilon      float32 `yaml:"cam_epsilon"`       // 0 = rebuild on any camera change
	SwapDelayFrames int     `yaml:"swap_delay_frames"` // Extra polls before a swap
}

// PlanetConfig holds the cube-sphere parameters.
type PlanetConfig struct {
	Radius  float32    `yaml:"radius"`
	Nucleus [3]float32 `yaml:"nucleus"`
}

// NoiseConfig holds the fractal noise parameters.
type NoiseConfig struct {
	Seed        int64   `yaml:"seed"`
	Octaves     int     `yaml:"octaves"`
	Frequency   float64 `yaml:"frequency"`
	Lacunarity  float64 `yaml:"lacunarity"`
	Persistence float64 `yaml:"persistence"`
	Amplitude   float64 `yaml:"amplitude"`
}

// WorkerConfig holds loading worker settings.
type WorkerConfig struct {
	WaitTime time.Duration `yaml:"wait_time"` // Sleep between worker iterations
}

// CacheConfig holds the persistent geometry cache settings.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
	JSON       bool   `yaml:"json"` // JSON lines in the log file
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,
		},
		Scene: SceneConfig{
			Mode: ModePlane,
		},
		Terrain: TerrainConfig{
			RootCellSize:    4096,
			NumSideVertex:   33,
			NumLevels:       7,
			MinLevel:        1,
			DistMultiplier:  4,
			RelDist:         8,
			CamEpsilon:      0,
			SwapDelayFrames: 0,
		},
		Planet: PlanetConfig{
			Radius: 2000,
		},
		Noise: NoiseConfig{
			Seed:        1,
			Octaves:     6,
			Frequency:   0.001,
			Lacunarity:  2,
			Persistence: 0.5,
			Amplitude:   150,
		},
		Worker: WorkerConfig{
			WaitTime: 20 * time.Millisecond,
		},
		Cache: CacheConfig{
			Enabled: false,
			Path:    "",
		},
		Logging: LoggingConfig{
			Level:      "info",
			LogFile:    "",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}
