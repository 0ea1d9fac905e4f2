package terrain

import (
	"testing"

	"github.com/Faultbox/planetlod/internal/engine/noise"
	"github.com/Faultbox/planetlod/internal/engine/renderer"
	lmath "github.com/Faultbox/planetlod/pkg/math"
)

// nopBackend builds nothing; it lets a real Renderer drive model state.
type nopBackend struct{}

func (nopBackend) UniformAlignment() int { return 256 }

func (nopBackend) LoadShader(path string, _ renderer.ShaderStage) (any, error) {
	return path, nil
}

func (nopBackend) ReleaseShader(any) {}

func (nopBackend) LoadTexture(path string) (any, error) { return path, nil }

func (nopBackend) ReleaseTexture(any) {}

func (nopBackend) Construct(m *renderer.Model) (any, error) { return m.ID(), nil }

func (nopBackend) Destroy(*renderer.Model) {}

func (nopBackend) Begin() {}

func (nopBackend) WriteUniforms(*renderer.Model) {}

func (nopBackend) Draw([]renderer.DrawCommand) {}

func (nopBackend) End() {}

// countingManager records model requests on top of a real renderer.
type countingManager struct {
	*renderer.Renderer
	created map[string]int
	deleted int
}

func (c *countingManager) NewModel(info renderer.ModelInfo) (*renderer.Model, error) {
	c.created[info.Name]++
	return c.Renderer.NewModel(info)
}

func (c *countingManager) DeleteModel(m *renderer.Model) {
	c.deleted++
	c.Renderer.DeleteModel(m)
}

func newManager(t *testing.T) *countingManager {
	t.Helper()
	r := renderer.New(renderer.Config{OnFatal: func(err error) { t.Errorf("fatal: %v", err) }}, nopBackend{})
	t.Cleanup(r.Close)
	return &countingManager{Renderer: r, created: make(map[string]int)}
}

var testMaterial = Material{
	VertexShader:   "terrain.vert",
	FragmentShader: "terrain.frag",
	MaxLights:      2,
}

// scenarioConfig is the basic planar subdivision setup.
func scenarioConfig() GridConfig {
	return GridConfig{
		RootCellSize:   1024,
		NumSideVertex:  5,
		NumLevels:      3,
		MinLevel:       1,
		DistMultiplier: 4,
		RelDist:        4,
	}
}

func newScenarioGrid(t *testing.T, cfg GridConfig, opts ...GridOption) (*DynamicGrid, *countingManager) {
	t.Helper()
	mm := newManager(t)
	g := NewPlanarGrid(cfg, noise.Flat{}, mm, testMaterial, opts...)
	t.Cleanup(g.Close)
	return g, mm
}

// settle builds a tree for cam, uploads it and swaps it in.
func settle(t *testing.T, g *DynamicGrid, mm *countingManager, cam lmath.Vec3) {
	t.Helper()
	g.UpdateTree(cam)
	mm.Worker().Step()
	g.UpdateTree(cam)
	if g.PendingTree() != nil || g.ActiveTree() == nil {
		t.Fatalf("tree for %v did not swap in", cam)
	}
}

func leafKeys(g *DynamicGrid) map[ChunkKey]bool {
	keys := make(map[ChunkKey]bool)
	for _, c := range g.ActiveLeaves() {
		keys[c.Key()] = true
	}
	return keys
}

func treeKeys(t *QuadTree[*Chunk]) map[ChunkKey]bool {
	keys := make(map[ChunkKey]bool)
	t.Walk(func(_ int32, c *Chunk) { keys[c.Key()] = true })
	return keys
}
