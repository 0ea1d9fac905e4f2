package app

import (
	"testing"

	"github.com/Faultbox/planetlod/internal/config"
	"github.com/Faultbox/planetlod/internal/engine/shader"
)

func TestGridConfigCopiesTerrain(t *testing.T) {
	cfg := config.Default()
	cfg.Terrain.CamEpsilon = 0.5
	cfg.Terrain.SwapDelayFrames = 3

	g := GridConfig(cfg.Terrain)
	if g.RootCellSize != cfg.Terrain.RootCellSize || g.NumSideVertex != cfg.Terrain.NumSideVertex {
		t.Errorf("grid config %+v does not match %+v", g, cfg.Terrain)
	}
	if g.CamEpsilon != 0.5 || g.SwapDelayFrames != 3 {
		t.Errorf("epsilon/delay = %v/%d", g.CamEpsilon, g.SwapDelayFrames)
	}

	// The grid keeps its own copy.
	cfg.Terrain.NumLevels = 99
	if g.NumLevels == 99 {
		t.Error("grid config aliases the loaded config")
	}
}

func TestNoiseConfig(t *testing.T) {
	c := config.Default().Noise
	n := NoiseConfig(c)
	if n.Seed != c.Seed || n.Octaves != c.Octaves || n.Amplitude != c.Amplitude {
		t.Errorf("noise config %+v does not match %+v", n, c)
	}
}

func TestSceneMaterial(t *testing.T) {
	tests := []struct {
		name     string
		scene    config.SceneConfig
		wantVert string
		wantFrag string
	}{
		{"builtin", config.SceneConfig{}, shader.TerrainVertex, shader.TerrainFrag},
		{"shader dir", config.SceneConfig{ShaderDir: "shaders"}, vertexShaderFile, fragmentShaderFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mat := SceneMaterial(tt.scene)
			if mat.VertexShader != tt.wantVert || mat.FragmentShader != tt.wantFrag {
				t.Errorf("shaders = %q/%q", mat.VertexShader, mat.FragmentShader)
			}
			if mat.MaxLights != shader.MaxLights {
				t.Errorf("MaxLights = %d", mat.MaxLights)
			}
		})
	}
}

func TestSceneLights(t *testing.T) {
	set := sceneLights()
	if set.Len() != 2 || set.Max() != shader.MaxLights {
		t.Errorf("lights = %d/%d", set.Len(), set.Max())
	}
}
