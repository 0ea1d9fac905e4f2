package app

import (
	"github.com/Faultbox/planetlod/internal/config"
	"github.com/Faultbox/planetlod/internal/engine/noise"
	"github.com/Faultbox/planetlod/internal/engine/shader"
	"github.com/Faultbox/planetlod/internal/engine/terrain"
)

const terrainMaxLights = shader.MaxLights

// Shader file names looked up in scene.shader_dir.
const (
	vertexShaderFile   = "terrain.vert"
	fragmentShaderFile = "terrain.frag"
)

// GridConfig copies the terrain section into an immutable grid config.
func GridConfig(c config.TerrainConfig) terrain.GridConfig {
	return terrain.GridConfig{
		RootCellSize:    c.RootCellSize,
		NumSideVertex:   c.NumSideVertex,
		NumLevels:       c.NumLevels,
		MinLevel:        c.MinLevel,
		DistMultiplier:  c.DistMultiplier,
		RelDist:         c.RelDist,
		CamEpsilon:      c.CamEpsilon,
		SwapDelayFrames: c.SwapDelayFrames,
	}
}

// NoiseConfig converts the noise section.
func NoiseConfig(c config.NoiseConfig) noise.Config {
	return noise.Config{
		Seed:        c.Seed,
		Octaves:     c.Octaves,
		Frequency:   c.Frequency,
		Lacunarity:  c.Lacunarity,
		Persistence: c.Persistence,
		Amplitude:   c.Amplitude,
	}
}

// SceneMaterial picks the built-in shaders unless a shader directory is
// configured.
func SceneMaterial(c config.SceneConfig) terrain.Material {
	mat := terrain.Material{
		VertexShader:   shader.TerrainVertex,
		FragmentShader: shader.TerrainFrag,
		Textures:       c.Textures,
		MaxLights:      terrainMaxLights,
	}
	if c.ShaderDir != "" {
		mat.VertexShader = vertexShaderFile
		mat.FragmentShader = fragmentShaderFile
	}
	return mat
}
