package terrain

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math"

	"go.uber.org/zap"

	"github.com/Faultbox/planetlod/internal/engine/noise"
	"github.com/Faultbox/planetlod/internal/engine/terrain/meshstore"
	"github.com/Faultbox/planetlod/internal/logger"
	lmath "github.com/Faultbox/planetlod/pkg/math"
)

// GridStats is a snapshot of grid counters.
type GridStats struct {
	ActiveTree   int
	Nodes        int
	Leaves       int
	Pending      bool
	CachedChunks int
	Builds       int
	Swaps        int
	Evicted      int
	Computed     int
	StoreHits    int
}

// DynamicGrid owns a double-buffered quadtree over one planar surface or
// one cube face, plus the chunk cache both trees draw from. All methods
// must be called from the same goroutine.
type DynamicGrid struct {
	cfg  GridConfig
	name string
	log  *zap.Logger
	surf *surface
	mm   ModelManager
	mat  Material

	store       *meshstore.Store
	fingerprint uint64

	unit    float32
	indices []uint32
	chunks  map[ChunkKey]*Chunk

	trees  [2]*QuadTree[*Chunk]
	active int

	lastCam    lmath.Vec3
	hasLastCam bool
	readyPolls int

	stats GridStats
}

// NewPlanarGrid creates a grid over the z = 0 plane displaced by
// src.Height2.
func NewPlanarGrid(cfg GridConfig, src noise.Source, mm ModelManager, mat Material, opts ...GridOption) *DynamicGrid {
	surf := planarSurface(src)
	return newGrid(cfg, &surf, mm, mat, "plane", opts)
}

// NewSphereGrid creates a grid over the cube face cubePlane of a sphere
// centered at nucleus, displaced radially by src.Height3. The root cell
// covers the whole face.
func NewSphereGrid(cfg GridConfig, src noise.Source, mm ModelManager, mat Material,
	nucleus lmath.Vec3, radius float32, cubePlane lmath.Vec3, opts ...GridOption) *DynamicGrid {
	surf := sphericalSurface(src, nucleus, radius, cubePlane)
	cfg.RootCellSize = 2 * radius
	return newGrid(cfg, &surf, mm, mat, fmt.Sprintf("face%+g%+g%+g", cubePlane.X, cubePlane.Y, cubePlane.Z), opts)
}

func newGrid(cfg GridConfig, surf *surface, mm ModelManager, mat Material, name string, opts []GridOption) *DynamicGrid {
	cfg = cfg.normalized()
	if mat.MaxLights < 1 {
		mat.MaxLights = 1
	}
	g := &DynamicGrid{
		cfg:     cfg,
		name:    name,
		surf:    surf,
		mm:      mm,
		mat:     mat,
		unit:    keyUnit(cfg),
		indices: ComputeIndices(cfg.NumSideVertex, cfg.NumSideVertex),
		chunks:  make(map[ChunkKey]*Chunk),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.log = logger.Named("terrain").With(zap.String("grid", g.name))
	if g.store != nil {
		fp, ok := g.surfaceFingerprint()
		if !ok {
			g.log.Warn("noise source has no fingerprint, geometry cache disabled")
			g.store = nil
		}
		g.fingerprint = fp
	}
	return g
}

// surfaceFingerprint hashes everything that determines a chunk's vertices
// besides its key.
func (g *DynamicGrid) surfaceFingerprint() (uint64, bool) {
	fp, ok := g.surf.src.(interface{ Fingerprint() string })
	if !ok {
		return 0, false
	}
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%d|%g|%d|%v|%v|%v|%v|%g",
		fp.Fingerprint(), g.surf.kind, g.cfg.RootCellSize, g.cfg.NumLevels,
		g.surf.origin, g.surf.xAxis, g.surf.yAxis, g.surf.nucleus, g.surf.radius)
	return h.Sum64(), true
}

// Name returns the grid name.
func (g *DynamicGrid) Name() string { return g.name }

// Config returns the grid parameters after normalization.
func (g *DynamicGrid) Config() GridConfig { return g.cfg }

// Kind returns the surface kind.
func (g *DynamicGrid) Kind() Kind { return g.surf.kind }

// Indices returns the index buffer shared by every chunk.
func (g *DynamicGrid) Indices() []uint32 { return g.indices }

// UpdateTree advances the tree lifecycle for a camera at cam: start a
// build when none is pending, and swap the pending tree in once every
// leaf's model is fully constructed.
func (g *DynamicGrid) UpdateTree(cam lmath.Vec3) {
	pending := 1 - g.active
	if g.trees[pending] == nil {
		if g.trees[g.active] != nil && g.camUnchanged(cam) {
			return
		}
		g.trees[pending] = g.buildTree(cam)
		g.lastCam = cam
		g.hasLastCam = true
		g.readyPolls = 0
		g.stats.Builds++
	}

	if !g.FullyConstructed() {
		g.readyPolls = 0
		return
	}
	g.readyPolls++
	if g.readyPolls <= g.cfg.SwapDelayFrames {
		return
	}
	g.swap(cam)
}

func (g *DynamicGrid) camUnchanged(cam lmath.Vec3) bool {
	if !g.hasLastCam {
		return false
	}
	if g.cfg.CamEpsilon <= 0 {
		return cam == g.lastCam
	}
	return cam.DistanceSquared(g.lastCam) <= g.cfg.CamEpsilon*g.cfg.CamEpsilon
}

// FullyConstructed reports whether a pending tree exists and every one of
// its leaves has a fully constructed model.
func (g *DynamicGrid) FullyConstructed() bool {
	t := g.trees[1-g.active]
	if t == nil {
		return false
	}
	return fullConstChunks(t)
}

func fullConstChunks(t *QuadTree[*Chunk]) bool {
	return t.AllLeaves(func(c *Chunk) bool {
		return c.model != nil && c.model.FullyConstructed()
	})
}

// rootCenter returns the face coordinates of the root cell. Planar roots
// follow the camera in steps of one MinLevel cell.
func (g *DynamicGrid) rootCenter(cam lmath.Vec3) (float32, float32) {
	if g.surf.kind == Spherical {
		return 0, 0
	}
	size := g.cfg.RootCellSize / float32(uint64(1)<<uint(g.cfg.MinLevel))
	snap := func(x float32) float32 {
		return float32(math.Round(float64(x/size))) * size
	}
	return snap(cam.X - g.surf.origin.X), snap(cam.Y - g.surf.origin.Y)
}

func (g *DynamicGrid) buildTree(cam lmath.Vec3) *QuadTree[*Chunk] {
	u, v := g.rootCenter(cam)
	t := NewQuadTree(g.chunkAt(0, u, v))
	g.createTree(t, t.Root(), 0, cam)
	g.log.Debug("tree built",
		zap.Int("nodes", t.Len()),
		zap.Int("cached", len(g.chunks)),
	)
	return t
}

// chunkAt fetches or creates the cached chunk at depth with center (u, v).
func (g *DynamicGrid) chunkAt(depth int, u, v float32) *Chunk {
	key := makeKey(depth, u, v, g.unit)
	if c, ok := g.chunks[key]; ok {
		return c
	}
	cu, cv := key.center(g.unit)
	side := g.cfg.RootCellSize / float32(uint64(1)<<uint(depth))
	c := newChunk(g.surf, key, cu, cv, side, g.cfg.NumSideVertex, depth)
	g.chunks[key] = c
	return c
}

func (g *DynamicGrid) isLeaf(c *Chunk, depth int, cam lmath.Vec3) bool {
	if depth < g.cfg.MinLevel {
		return false
	}
	if depth >= g.cfg.NumLevels-1 {
		return true
	}
	d2 := cam.DistanceSquared(c.groundCenter)
	return d2 > c.side*c.side*g.cfg.DistMultiplier
}

func (g *DynamicGrid) createTree(t *QuadTree[*Chunk], n int32, depth int, cam lmath.Vec3) {
	c := t.Elem(n)
	if g.isLeaf(c, depth, cam) {
		g.order(c)
		return
	}

	q := c.side / 4
	centers := [4][2]float32{
		{c.u - q, c.v + q},
		{c.u + q, c.v + q},
		{c.u - q, c.v - q},
		{c.u + q, c.v - q},
	}
	var children [4]int32
	for i, ctr := range centers {
		children[i] = t.AddNode(g.chunkAt(depth+1, ctr[0], ctr[1]))
	}
	t.SetChildren(n, children)
	for _, ch := range children {
		g.createTree(t, ch, depth+1, cam)
	}
}

// order computes the chunk's geometry if needed and requests its model.
// It runs at most once per chunk until the model is dropped.
func (g *DynamicGrid) order(c *Chunk) {
	if c.modelOrdered {
		return
	}
	g.ensureGeometry(c)
	name := g.name + "/" + c.key.String()
	if err := c.render(g.mm, g.mat, g.indices, name); err != nil {
		g.log.Error("chunk model request failed", zap.String("chunk", name), zap.Error(err))
	}
}

func (g *DynamicGrid) textureFactor(depth int) float32 {
	return float32(uint64(1) << uint(g.cfg.NumLevels-1-depth))
}

func (g *DynamicGrid) storeKey(c *Chunk) meshstore.Key {
	return meshstore.Key{
		Grid:        g.name,
		Level:       c.key.Level,
		X:           c.key.X,
		Y:           c.key.Y,
		Fingerprint: g.fingerprint,
		NumVertex:   c.NumVertex(),
	}
}

func (g *DynamicGrid) ensureGeometry(c *Chunk) {
	if c.computed {
		return
	}
	if g.store != nil {
		verts, err := g.store.Get(g.storeKey(c))
		switch {
		case err == nil && len(verts) == c.NumVertex()*FloatsPerVertex:
			c.vertices = verts
			c.computed = true
			g.stats.StoreHits++
			return
		case err != nil && !errors.Is(err, meshstore.ErrNotFound):
			g.log.Warn("geometry cache read failed", zap.Error(err))
		}
	}
	c.computeTerrain(g.textureFactor(c.depth))
	g.stats.Computed++
	if g.store != nil {
		g.store.Put(g.storeKey(c), c.vertices)
	}
}

// swap promotes the pending tree. Leaves of the old tree that are not
// leaves of the new one lose their models; new leaves become visible.
func (g *DynamicGrid) swap(cam lmath.Vec3) {
	pending := 1 - g.active
	next := g.trees[pending]

	nextLeaves := make(map[*Chunk]struct{})
	next.Leaves(func(c *Chunk) { nextLeaves[c] = struct{}{} })

	if old := g.trees[g.active]; old != nil {
		old.Leaves(func(c *Chunk) {
			if _, keep := nextLeaves[c]; !keep {
				c.dropModel(g.mm)
			}
		})
	}
	for c := range nextLeaves {
		g.mm.SetRenders(c.model, 1)
	}

	g.trees[g.active] = nil
	g.active = pending
	g.readyPolls = 0
	g.stats.Swaps++
	g.log.Debug("tree swapped",
		zap.Int("active", g.active),
		zap.Int("leaves", len(nextLeaves)),
	)

	g.RemoveFarChunks(cam)
}

// RemoveFarChunks evicts cached chunks that no tree references and whose
// center is farther than RelDist chunk sides from cam.
func (g *DynamicGrid) RemoveFarChunks(cam lmath.Vec3) int {
	live := make(map[*Chunk]struct{})
	for _, t := range g.trees {
		if t != nil {
			t.Walk(func(_ int32, c *Chunk) { live[c] = struct{}{} })
		}
	}

	evicted := 0
	for key, c := range g.chunks {
		if _, ok := live[c]; ok {
			continue
		}
		limit := g.cfg.RelDist * c.side
		if cam.DistanceSquared(c.groundCenter) <= limit*limit {
			continue
		}
		c.dropModel(g.mm)
		delete(g.chunks, key)
		evicted++
	}
	if evicted > 0 {
		g.stats.Evicted += evicted
		g.log.Debug("chunks evicted", zap.Int("count", evicted), zap.Int("cached", len(g.chunks)))
	}
	return evicted
}

// UpdateUBOs writes per-frame uniforms into every leaf of both trees, so
// a freshly swapped tree draws with current matrices.
func (g *DynamicGrid) UpdateUBOs(f UniformFrame) {
	p := pack(f)
	for _, t := range g.trees {
		if t != nil {
			t.Leaves(func(c *Chunk) { c.updateUBOs(&p) })
		}
	}
}

// ActiveLeaves returns the leaves of the active tree.
func (g *DynamicGrid) ActiveLeaves() []*Chunk {
	t := g.trees[g.active]
	if t == nil {
		return nil
	}
	var leaves []*Chunk
	t.Leaves(func(c *Chunk) { leaves = append(leaves, c) })
	return leaves
}

// ActiveTree returns the active tree, or nil before the first swap.
func (g *DynamicGrid) ActiveTree() *QuadTree[*Chunk] { return g.trees[g.active] }

// PendingTree returns the tree being built, or nil.
func (g *DynamicGrid) PendingTree() *QuadTree[*Chunk] { return g.trees[1-g.active] }

// Chunk returns the cached chunk for key.
func (g *DynamicGrid) Chunk(key ChunkKey) (*Chunk, bool) {
	c, ok := g.chunks[key]
	return c, ok
}

// Stats returns current counters.
func (g *DynamicGrid) Stats() GridStats {
	s := g.stats
	s.ActiveTree = g.active
	s.CachedChunks = len(g.chunks)
	s.Pending = g.trees[1-g.active] != nil
	if t := g.trees[g.active]; t != nil {
		s.Nodes = t.Len()
		t.Leaves(func(*Chunk) { s.Leaves++ })
	}
	return s
}

// Close deletes every chunk model and empties the cache and both trees.
func (g *DynamicGrid) Close() {
	for _, c := range g.chunks {
		c.dropModel(g.mm)
	}
	clear(g.chunks)
	g.trees = [2]*QuadTree[*Chunk]{}
	g.active = 0
	g.hasLastCam = false
	g.log.Debug("grid closed")
}
