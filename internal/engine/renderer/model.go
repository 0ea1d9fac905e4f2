package renderer

import (
	"fmt"
	"sync/atomic"
)

// Topology selects the primitive assembly for a model.
type Topology int

const (
	TopologyTriangles Topology = iota
	TopologyLines
	TopologyPoints
)

// VertexType declares which attributes each vertex carries, in the order
// position, color, texcoord, normal.
type VertexType struct {
	Position bool
	Color    bool
	TexCoord bool
	Normal   bool
}

// VertexPNT is position + texcoord + normal, the terrain layout.
var VertexPNT = VertexType{Position: true, TexCoord: true, Normal: true}

// Floats returns the number of float32 values per vertex.
func (t VertexType) Floats() int {
	n := 0
	if t.Position {
		n += 3
	}
	if t.Color {
		n += 3
	}
	if t.TexCoord {
		n += 2
	}
	if t.Normal {
		n += 3
	}
	return n
}

// Mesh is interleaved vertex data plus indices.
type Mesh struct {
	Type     VertexType
	Vertices []float32
	Indices  []uint32
}

// NumVertex returns the number of vertices in the mesh.
func (m Mesh) NumVertex() int {
	f := m.Type.Floats()
	if f == 0 {
		return 0
	}
	return len(m.Vertices) / f
}

// ModelInfo is everything needed to create a model.
type ModelInfo struct {
	Name           string
	Mesh           Mesh
	VertexUBO      UBOConfig
	FragmentUBO    UBOConfig
	Textures       []string
	VertexShader   string
	FragmentShader string
	Topology       Topology
	RenderPass     int
	// Instances is the initial render count. Negative means one per
	// vertex uniform block.
	Instances int
}

func (info *ModelInfo) validate() error {
	if info.Mesh.Type.Floats() == 0 {
		return fmt.Errorf("model %q: empty vertex type", info.Name)
	}
	if len(info.Mesh.Vertices)%info.Mesh.Type.Floats() != 0 {
		return fmt.Errorf("model %q: %d floats is not a multiple of the vertex size %d",
			info.Name, len(info.Mesh.Vertices), info.Mesh.Type.Floats())
	}
	n := uint32(info.Mesh.NumVertex())
	for _, idx := range info.Mesh.Indices {
		if idx >= n {
			return fmt.Errorf("model %q: index %d out of range (%d vertices)", info.Name, idx, n)
		}
	}
	if info.VertexShader == "" || info.FragmentShader == "" {
		return fmt.Errorf("model %q: missing shader", info.Name)
	}
	return nil
}

// ModelState is the lifecycle position of a model.
type ModelState int32

const (
	// StateQueued: in the load queue, nothing allocated on the GPU.
	StateQueued ModelState = iota
	// StateLoading: staged by the worker, GPU objects being built.
	StateLoading
	// StateReady: fully constructed and listed for drawing.
	StateReady
	// StateDeleteRequested: deletion asked for while loading.
	StateDeleteRequested
	// StateDeleting: in the delete queue.
	StateDeleting
	// StateDeleted: GPU objects released.
	StateDeleted
)

func (s ModelState) String() string {
	switch s {
	case StateQueued:
		return "queued"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateDeleteRequested:
		return "delete-requested"
	case StateDeleting:
		return "deleting"
	case StateDeleted:
		return "deleted"
	default:
		return fmt.Sprintf("ModelState(%d)", int32(s))
	}
}

// Model is a renderable: a mesh, its uniform blocks and the GPU objects the
// worker builds for it. The UBOs belong to the main thread; everything else
// is managed by the Renderer.
type Model struct {
	id   uint64
	info ModelInfo

	VertexUBO   *UBO
	FragmentUBO *UBO

	state            atomic.Int32
	fullyConstructed atomic.Bool
	instances        atomic.Int32

	// Set by the worker during construction.
	vs, fs   *Shader
	textures []*Texture
	gpu      any
}

// ID returns the renderer-unique model id.
func (m *Model) ID() uint64 { return m.id }

// Name returns the model's debug name.
func (m *Model) Name() string { return m.info.Name }

// Info returns the creation parameters.
func (m *Model) Info() *ModelInfo { return &m.info }

// State returns the current lifecycle state.
func (m *Model) State() ModelState { return ModelState(m.state.Load()) }

// FullyConstructed reports whether the worker finished building the model.
func (m *Model) FullyConstructed() bool { return m.fullyConstructed.Load() }

// Instances returns the active render count.
func (m *Model) Instances() int { return int(m.instances.Load()) }

// GPU returns the backend object built for the model, or nil.
func (m *Model) GPU() any { return m.gpu }

// Shaders returns the vertex and fragment shader entries.
func (m *Model) Shaders() (*Shader, *Shader) { return m.vs, m.fs }

// Textures returns the texture entries in binding order.
func (m *Model) Textures() []*Texture { return m.textures }

func (m *Model) cas(from, to ModelState) bool {
	return m.state.CompareAndSwap(int32(from), int32(to))
}

func (m *Model) setState(s ModelState) { m.state.Store(int32(s)) }
