package terrain

import (
	"github.com/Faultbox/planetlod/internal/engine/noise"
	lmath "github.com/Faultbox/planetlod/pkg/math"
)

// CubePlanes are the outward normals of the six cube faces.
var CubePlanes = [6]lmath.Vec3{
	{X: 1}, {X: -1},
	{Y: 1}, {Y: -1},
	{Z: 1}, {Z: -1},
}

// Planet is six spherical grids, one per cube face, sharing noise,
// material and renderer.
type Planet struct {
	nucleus lmath.Vec3
	radius  float32
	grids   [6]*DynamicGrid
}

// NewPlanet creates the six face grids of a planet.
func NewPlanet(cfg GridConfig, src noise.Source, mm ModelManager, mat Material,
	nucleus lmath.Vec3, radius float32, opts ...GridOption) *Planet {
	p := &Planet{nucleus: nucleus, radius: radius}
	for i, plane := range CubePlanes {
		p.grids[i] = NewSphereGrid(cfg, src, mm, mat, nucleus, radius, plane, opts...)
	}
	return p
}

// Nucleus returns the planet center.
func (p *Planet) Nucleus() lmath.Vec3 { return p.nucleus }

// Radius returns the undisplaced radius.
func (p *Planet) Radius() float32 { return p.radius }

// Grids returns the face grids in CubePlanes order.
func (p *Planet) Grids() []*DynamicGrid { return p.grids[:] }

// UpdateTree advances every face.
func (p *Planet) UpdateTree(cam lmath.Vec3) {
	for _, g := range p.grids {
		g.UpdateTree(cam)
	}
}

// UpdateUBOs writes per-frame uniforms on every face.
func (p *Planet) UpdateUBOs(f UniformFrame) {
	for _, g := range p.grids {
		g.UpdateUBOs(f)
	}
}

// Altitude returns the camera height above the undisplaced surface.
func (p *Planet) Altitude(cam lmath.Vec3) float32 {
	return cam.Distance(p.nucleus) - p.radius
}

// Stats sums the counters of all faces. ActiveTree is left zero.
func (p *Planet) Stats() GridStats {
	var s GridStats
	for _, g := range p.grids {
		gs := g.Stats()
		s.Nodes += gs.Nodes
		s.Leaves += gs.Leaves
		s.CachedChunks += gs.CachedChunks
		s.Builds += gs.Builds
		s.Swaps += gs.Swaps
		s.Evicted += gs.Evicted
		s.Computed += gs.Computed
		s.StoreHits += gs.StoreHits
		s.Pending = s.Pending || gs.Pending
	}
	return s
}

// Close closes every face.
func (p *Planet) Close() {
	for _, g := range p.grids {
		g.Close()
	}
}
