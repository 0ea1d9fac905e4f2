// Package terrain builds view-dependent LOD terrain: a double-buffered
// quadtree of chunks whose geometry is generated on demand and swapped in
// only once every visible chunk is resident on the GPU.
package terrain

import (
	"github.com/Faultbox/planetlod/internal/engine/renderer"
	"github.com/Faultbox/planetlod/internal/engine/terrain/meshstore"
)

// GridConfig holds the immutable parameters of a DynamicGrid.
type GridConfig struct {
	RootCellSize   float32 // World size of the top-level tile
	NumSideVertex  int     // Samples per chunk side
	NumLevels      int     // Maximum depth + 1
	MinLevel       int     // Depth below which nodes always subdivide
	DistMultiplier float32 // Leaf when dist² > side² * DistMultiplier
	RelDist        float32 // Evict cached chunks farther than RelDist sides
	// CamEpsilon is the camera displacement below which UpdateTree skips
	// a rebuild. Zero means any change rebuilds.
	CamEpsilon float32
	// SwapDelayFrames is how many extra polls a pending tree must stay
	// complete before it is swapped in.
	SwapDelayFrames int
}

// normalized clamps fields to usable values.
func (c GridConfig) normalized() GridConfig {
	if c.RootCellSize <= 0 {
		c.RootCellSize = 1
	}
	if c.NumSideVertex < 2 {
		c.NumSideVertex = 2
	}
	if c.NumLevels < 1 {
		c.NumLevels = 1
	}
	if c.MinLevel < 0 {
		c.MinLevel = 0
	}
	if c.MinLevel > c.NumLevels-1 {
		c.MinLevel = c.NumLevels - 1
	}
	if c.DistMultiplier < 0 {
		c.DistMultiplier = 0
	}
	if c.SwapDelayFrames < 0 {
		c.SwapDelayFrames = 0
	}
	return c
}

// Material names the shaders and textures every chunk of a grid uses.
type Material struct {
	VertexShader   string
	FragmentShader string
	Textures       []string
	MaxLights      int
	RenderPass     int
}

// ModelManager is the part of the renderer a grid depends on.
type ModelManager interface {
	NewModel(info renderer.ModelInfo) (*renderer.Model, error)
	DeleteModel(m *renderer.Model)
	SetRenders(m *renderer.Model, n int)
}

// GridOption customizes a DynamicGrid.
type GridOption func(*DynamicGrid)

// WithName sets the grid name used in logs, model names and cache keys.
func WithName(name string) GridOption {
	return func(g *DynamicGrid) { g.name = name }
}

// WithStore enables the persistent geometry cache. It has no effect when
// the noise source cannot fingerprint itself.
func WithStore(s *meshstore.Store) GridOption {
	return func(g *DynamicGrid) { g.store = s }
}
