package terrain

import (
	"math"
	"testing"

	"github.com/Faultbox/planetlod/internal/engine/noise"
	lmath "github.com/Faultbox/planetlod/pkg/math"
)

func TestPlanetFaces(t *testing.T) {
	mm := newManager(t)
	cfg := GridConfig{NumSideVertex: 5, NumLevels: 4, MinLevel: 1, DistMultiplier: 2, RelDist: 8}
	nucleus := lmath.Vec3{X: 5}
	p := NewPlanet(cfg, noise.Flat{}, mm, testMaterial, nucleus, 100)
	defer p.Close()

	cam := lmath.Vec3{X: 5, Z: 130}
	p.UpdateTree(cam)
	mm.Worker().Step()
	p.UpdateTree(cam)

	names := make(map[string]bool)
	for i, g := range p.Grids() {
		if g.Config().RootCellSize != 200 {
			t.Errorf("face %d root size = %v, want 200", i, g.Config().RootCellSize)
		}
		if names[g.Name()] {
			t.Errorf("duplicate grid name %s", g.Name())
		}
		names[g.Name()] = true

		leaves := g.ActiveLeaves()
		if len(leaves) < 4 {
			t.Fatalf("face %v has %d leaves", CubePlanes[i], len(leaves))
		}
		for _, c := range leaves {
			d := c.GroundCenter().Distance(nucleus)
			if math.Abs(float64(d)-100) > 1e-3 {
				t.Errorf("face %v: leaf center at radius %v", CubePlanes[i], d)
			}
		}
	}

	// The face under the camera is refined deeper than the opposite one.
	top, bottom := p.Grids()[4].Stats(), p.Grids()[5].Stats()
	if top.Leaves <= bottom.Leaves {
		t.Errorf("top face leaves %d, bottom %d", top.Leaves, bottom.Leaves)
	}
	if s := p.Stats(); s.Swaps != 6 {
		t.Errorf("swaps = %d, want 6", s.Swaps)
	}
	if got := p.Altitude(cam); got != 30 {
		t.Errorf("altitude = %v", got)
	}
}
