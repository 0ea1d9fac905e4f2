package terrain

import (
	"github.com/Faultbox/planetlod/internal/engine/lighting"
	"github.com/Faultbox/planetlod/internal/engine/renderer"
	lmath "github.com/Faultbox/planetlod/pkg/math"
)

// Vertex uniform block fields, matching the terrain vertex shader.
const (
	vsModel = iota
	vsView
	vsProj
	vsNormal
)

// Fragment uniform block fields, matching the terrain fragment shader.
const (
	fsCamPos = iota
	fsTime
	fsLights
)

func vertexUBOConfig() renderer.UBOConfig {
	return renderer.UBOConfig{
		Blocks: 1,
		Fields: []int{renderer.Mat4Size, renderer.Mat4Size, renderer.Mat4Size, renderer.Mat4Size},
	}
}

func fragmentUBOConfig(maxLights int) renderer.UBOConfig {
	return renderer.UBOConfig{
		Blocks: 1,
		Fields: []int{renderer.Vec4Size, renderer.Vec4Size, lighting.BlockSize(maxLights)},
	}
}

// UniformFrame carries the per-frame values every chunk writes.
type UniformFrame struct {
	View   lmath.Mat4
	Proj   lmath.Mat4
	CamPos lmath.Vec3
	Lights *lighting.LightSet
	Time   float32
}

// packed is a UniformFrame with the light set already serialized.
type packed struct {
	UniformFrame
	lights []byte
}

func pack(f UniformFrame) packed {
	p := packed{UniformFrame: f}
	if f.Lights != nil {
		p.lights = f.Lights.Std140()
	}
	return p
}
