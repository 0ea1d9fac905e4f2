package terrain

import (
	"github.com/Faultbox/planetlod/internal/engine/renderer"
	lmath "github.com/Faultbox/planetlod/pkg/math"
)

// FloatsPerVertex is the interleaved layout: position, texcoord, normal.
const FloatsPerVertex = 8

// Chunk is one terrain tile: its CPU geometry and the model issued for it.
// Chunks are owned by a grid's cache and shared by every tree that
// references the same key.
type Chunk struct {
	key  ChunkKey
	surf *surface

	u, v         float32 // face coordinates of the center
	baseCenter   lmath.Vec3
	groundCenter lmath.Vec3
	side         float32
	stride       float32
	numHor       int
	numVert      int
	depth        int

	vertices     []float32
	computed     bool
	model        *renderer.Model
	modelOrdered bool
}

func newChunk(surf *surface, key ChunkKey, u, v, side float32, numSideVertex, depth int) *Chunk {
	return &Chunk{
		key:          key,
		surf:         surf,
		u:            u,
		v:            v,
		baseCenter:   surf.base(u, v),
		groundCenter: surf.project(u, v),
		side:         side,
		stride:       side / float32(numSideVertex-1),
		numHor:       numSideVertex,
		numVert:      numSideVertex,
		depth:        depth,
	}
}

// Key returns the chunk's cache key.
func (c *Chunk) Key() ChunkKey { return c.key }

// BaseCenter returns the center before height displacement.
func (c *Chunk) BaseCenter() lmath.Vec3 { return c.baseCenter }

// GroundCenter returns the displaced center used for LOD distances.
func (c *Chunk) GroundCenter() lmath.Vec3 { return c.groundCenter }

// Side returns the chunk side length.
func (c *Chunk) Side() float32 { return c.side }

// Stride returns the distance between adjacent samples.
func (c *Chunk) Stride() float32 { return c.stride }

// Depth returns the tree depth the chunk was created at.
func (c *Chunk) Depth() int { return c.depth }

// Vertices returns the interleaved vertex buffer, nil until computed.
func (c *Chunk) Vertices() []float32 { return c.vertices }

// NumVertex returns the number of grid samples.
func (c *Chunk) NumVertex() int { return c.numHor * c.numVert }

// Model returns the model issued for the chunk, or nil.
func (c *Chunk) Model() *renderer.Model { return c.model }

// ModelOrdered reports whether a model has been requested.
func (c *Chunk) ModelOrdered() bool { return c.modelOrdered }

// Position returns the position of sample (i, j).
func (c *Chunk) Position(i, j int) lmath.Vec3 {
	p := (j*c.numHor + i) * FloatsPerVertex
	return lmath.Vec3{X: c.vertices[p], Y: c.vertices[p+1], Z: c.vertices[p+2]}
}

// Normal returns the normal of sample (i, j).
func (c *Chunk) Normal(i, j int) lmath.Vec3 {
	p := (j*c.numHor+i)*FloatsPerVertex + 5
	return lmath.Vec3{X: c.vertices[p], Y: c.vertices[p+1], Z: c.vertices[p+2]}
}

// sampleUV returns the face coordinates of sample (i, j). Indices outside
// the grid address the neighbouring samples the chunk does not own.
func (c *Chunk) sampleUV(i, j int) (float32, float32) {
	half := c.side / 2
	return c.u - half + float32(i)*c.stride, c.v - half + float32(j)*c.stride
}

// computeTerrain samples positions and texcoords, then normals.
// textureFactor is how many texture repeats span one grid cell.
func (c *Chunk) computeTerrain(textureFactor float32) {
	c.vertices = make([]float32, c.numHor*c.numVert*FloatsPerVertex)
	for j := 0; j < c.numVert; j++ {
		for i := 0; i < c.numHor; i++ {
			p := c.surf.project(c.sampleUV(i, j))
			pos := (j*c.numHor + i) * FloatsPerVertex
			c.vertices[pos+0] = p.X
			c.vertices[pos+1] = p.Y
			c.vertices[pos+2] = p.Z
			c.vertices[pos+3] = float32(i) * textureFactor
			c.vertices[pos+4] = float32(j) * textureFactor
		}
	}
	c.computeGridNormals()
	c.computed = true
}

// computeGridNormals accumulates the face normal of every cell touching a
// sample, then normalizes. The ring of cells just outside the chunk is
// built from extra noise samples so border normals see four cells too.
func (c *Chunk) computeGridNormals() {
	w, h := c.numHor, c.numVert
	at := func(i, j int) lmath.Vec3 {
		if i >= 0 && i < w && j >= 0 && j < h {
			return c.Position(i, j)
		}
		return c.surf.project(c.sampleUV(i, j))
	}

	acc := make([]lmath.Vec3, w*h)
	add := func(i, j int, n lmath.Vec3) {
		if i >= 0 && i < w && j >= 0 && j < h {
			acc[j*w+i] = acc[j*w+i].Add(n)
		}
	}

	for j := -1; j < h; j++ {
		for i := -1; i < w; i++ {
			p00 := at(i, j)
			p10 := at(i+1, j)
			p01 := at(i, j+1)
			p11 := at(i+1, j+1)

			add(i, j, p10.Sub(p00).Cross(p01.Sub(p00)))
			add(i+1, j, p11.Sub(p10).Cross(p00.Sub(p10)))
			add(i+1, j+1, p01.Sub(p11).Cross(p10.Sub(p11)))
			add(i, j+1, p00.Sub(p01).Cross(p11.Sub(p01)))
		}
	}

	for k, n := range acc {
		n = n.Normalize()
		pos := k*FloatsPerVertex + 5
		c.vertices[pos+0] = n.X
		c.vertices[pos+1] = n.Y
		c.vertices[pos+2] = n.Z
	}
}

// ComputeIndices returns the counter-clockwise triangle list for a w × h
// sample grid: two triangles per cell.
func ComputeIndices(w, h int) []uint32 {
	if w < 2 || h < 2 {
		return nil
	}
	indices := make([]uint32, 0, (w-1)*(h-1)*6)
	for j := 0; j < h-1; j++ {
		for i := 0; i < w-1; i++ {
			pos := uint32(j*w + i)
			row := uint32(w)
			indices = append(indices,
				pos, pos+row+1, pos+row,
				pos, pos+1, pos+row+1,
			)
		}
	}
	return indices
}

// render requests a model for the computed geometry. The model is created
// hidden; the grid reveals it when its tree becomes active.
func (c *Chunk) render(mm ModelManager, mat Material, indices []uint32, name string) error {
	m, err := mm.NewModel(renderer.ModelInfo{
		Name: name,
		Mesh: renderer.Mesh{
			Type:     renderer.VertexPNT,
			Vertices: c.vertices,
			Indices:  indices,
		},
		VertexUBO:      vertexUBOConfig(),
		FragmentUBO:    fragmentUBOConfig(mat.MaxLights),
		Textures:       mat.Textures,
		VertexShader:   mat.VertexShader,
		FragmentShader: mat.FragmentShader,
		Topology:       renderer.TopologyTriangles,
		RenderPass:     mat.RenderPass,
		Instances:      0,
	})
	if err != nil {
		return err
	}

	// Vertices are already in world space.
	model := lmath.Identity()
	for b, n := 0, m.VertexUBO.Blocks(); b < n; b++ {
		m.VertexUBO.SetMat4(b, vsModel, model)
		m.VertexUBO.SetMat4(b, vsNormal, model.NormalMatrix())
	}
	c.model = m
	c.modelOrdered = true
	return nil
}

// updateUBOs writes the per-frame uniforms. No-op before render.
func (c *Chunk) updateUBOs(f *packed) {
	if !c.modelOrdered || c.model == nil {
		return
	}
	vs, fs := c.model.VertexUBO, c.model.FragmentUBO
	for b, n := 0, vs.Blocks(); b < n; b++ {
		vs.SetMat4(b, vsView, f.View)
		vs.SetMat4(b, vsProj, f.Proj)
	}
	for b, n := 0, fs.Blocks(); b < n; b++ {
		fs.SetVec4(b, fsCamPos, f.CamPos.Vec4(1))
		fs.SetVec4(b, fsTime, [4]float32{f.Time, 0, 0, 0})
		if f.lights != nil {
			fs.SetBytes(b, fsLights, f.lights)
		}
	}
}

// dropModel deletes the chunk's model and keeps its geometry.
func (c *Chunk) dropModel(mm ModelManager) {
	if c.model != nil {
		mm.SetRenders(c.model, 0)
		mm.DeleteModel(c.model)
	}
	c.model = nil
	c.modelOrdered = false
}
