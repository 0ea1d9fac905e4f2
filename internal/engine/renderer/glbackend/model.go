package glbackend

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/planetlod/internal/engine/renderer"
	"github.com/Faultbox/planetlod/internal/engine/shader"
)

const uploadTimeout = 5 * time.Second

// Attribute locations used by every shader.
const (
	locPosition = 0
	locTexCoord = 1
	locNormal   = 2
	locColor    = 3
)

type programKey struct{ vs, fs uint32 }

type program struct {
	id   uint32
	refs int
}

// gpuModel holds the GL objects of one model.
type gpuModel struct {
	vbo, ebo     uint32
	vertexUBO    uint32
	fragmentUBO  uint32
	program      programKey
	programID    uint32
	vao          uint32 // main thread only
	indexCount   int32
	vertexCount  int32
	mode         uint32
	vertexType   renderer.VertexType
	vertexBlocks int
}

// attrib is one interleaved vertex attribute.
type attrib struct {
	location uint32
	size     int32
	offset   int
}

// attribLayout returns the attributes of t and the vertex stride in bytes.
func attribLayout(t renderer.VertexType) ([]attrib, int32) {
	var attrs []attrib
	off := 0
	add := func(loc uint32, size int) {
		attrs = append(attrs, attrib{location: loc, size: int32(size), offset: off * 4})
		off += size
	}
	if t.Position {
		add(locPosition, 3)
	}
	if t.Color {
		add(locColor, 3)
	}
	if t.TexCoord {
		add(locTexCoord, 2)
	}
	if t.Normal {
		add(locNormal, 3)
	}
	return attrs, int32(off * 4)
}

func glMode(t renderer.Topology) uint32 {
	switch t {
	case renderer.TopologyLines:
		return gl.LINES
	case renderer.TopologyPoints:
		return gl.POINTS
	default:
		return gl.TRIANGLES
	}
}

// Construct uploads the mesh and uniform storage, links the program and
// waits for the upload context to drain.
func (b *Backend) Construct(m *renderer.Model) (any, error) {
	info := m.Info()
	vs, fs := m.Shaders()
	key := programKey{vs: vs.Handle.(uint32), fs: fs.Handle.(uint32)}
	progID, err := b.acquireProgram(key)
	if err != nil {
		return nil, fmt.Errorf("model %q: %w", info.Name, err)
	}

	g := &gpuModel{
		program:      key,
		programID:    progID,
		indexCount:   int32(len(info.Mesh.Indices)),
		vertexCount:  int32(info.Mesh.NumVertex()),
		mode:         glMode(info.Topology),
		vertexType:   info.Mesh.Type,
		vertexBlocks: m.VertexUBO.Blocks(),
	}

	g.vbo = newBuffer(gl.ARRAY_BUFFER, 4*len(info.Mesh.Vertices), ptrOrNil(info.Mesh.Vertices), gl.STATIC_DRAW)
	if g.indexCount > 0 {
		// Buffers are typeless; staging through ARRAY_BUFFER avoids binding
		// an element buffer with no vertex array bound.
		g.ebo = newBuffer(gl.ARRAY_BUFFER, 4*len(info.Mesh.Indices), gl.Ptr(info.Mesh.Indices), gl.STATIC_DRAW)
	}
	if !m.VertexUBO.Empty() {
		g.vertexUBO = newBuffer(gl.UNIFORM_BUFFER, len(m.VertexUBO.Bytes()), nil, gl.DYNAMIC_DRAW)
	}
	if !m.FragmentUBO.Empty() {
		g.fragmentUBO = newBuffer(gl.UNIFORM_BUFFER, len(m.FragmentUBO.Bytes()), nil, gl.DYNAMIC_DRAW)
	}

	if err := waitIdle(); err != nil {
		b.destroy(g)
		return nil, fmt.Errorf("model %q: %w", info.Name, err)
	}
	return g, nil
}

// Destroy releases the model's buffers. Its VAO, if any, is queued for the
// main thread.
func (b *Backend) Destroy(m *renderer.Model) {
	if g, ok := m.GPU().(*gpuModel); ok && g != nil {
		b.destroy(g)
	}
}

func (b *Backend) destroy(g *gpuModel) {
	for _, id := range []uint32{g.vbo, g.ebo, g.vertexUBO, g.fragmentUBO} {
		if id != 0 {
			gl.DeleteBuffers(1, &id)
		}
	}
	g.vbo, g.ebo, g.vertexUBO, g.fragmentUBO = 0, 0, 0, 0
	b.releaseProgram(g.program)

	b.mu.Lock()
	if g.vao != 0 {
		b.deadArrays = append(b.deadArrays, g.vao)
		g.vao = 0
	}
	b.mu.Unlock()
}

// WriteUniforms copies the model's uniform bytes to its buffers.
func (b *Backend) WriteUniforms(m *renderer.Model) {
	g, ok := m.GPU().(*gpuModel)
	if !ok || g == nil {
		return
	}
	if g.vertexUBO != 0 {
		data := m.VertexUBO.Bytes()
		gl.BindBuffer(gl.UNIFORM_BUFFER, g.vertexUBO)
		gl.BufferSubData(gl.UNIFORM_BUFFER, 0, len(data), gl.Ptr(data))
	}
	if g.fragmentUBO != 0 {
		data := m.FragmentUBO.Bytes()
		gl.BindBuffer(gl.UNIFORM_BUFFER, g.fragmentUBO)
		gl.BufferSubData(gl.UNIFORM_BUFFER, 0, len(data), gl.Ptr(data))
	}
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
}

// Draw issues one draw per instance, binding that instance's uniform
// block ranges.
func (b *Backend) Draw(cmds []renderer.DrawCommand) {
	for _, cmd := range cmds {
		m := cmd.Model
		g, ok := m.GPU().(*gpuModel)
		if !ok || g == nil {
			continue
		}
		b.bindArray(g)
		gl.UseProgram(g.programID)
		b.bindTextures(m)

		for i := 0; i < cmd.Instances; i++ {
			bindBlock(g.vertexUBO, shader.VertexBlockBinding, m.VertexUBO, i)
			bindBlock(g.fragmentUBO, shader.FragmentBlockBinding, m.FragmentUBO, i)
			if g.indexCount > 0 {
				gl.DrawElementsWithOffset(g.mode, g.indexCount, gl.UNSIGNED_INT, 0)
			} else {
				gl.DrawArrays(g.mode, 0, g.vertexCount)
			}
		}
	}
}

// bindBlock binds instance i's block, or the last block when the buffer
// holds fewer, to binding.
func bindBlock(buf, binding uint32, ubo *renderer.UBO, i int) {
	if buf == 0 || ubo.Blocks() == 0 {
		return
	}
	if i >= ubo.Blocks() {
		i = ubo.Blocks() - 1
	}
	gl.BindBufferRange(gl.UNIFORM_BUFFER, binding, buf, i*ubo.Stride(), ubo.BlockSize())
}

func (b *Backend) bindTextures(m *renderer.Model) {
	textures := m.Textures()
	if len(textures) == 0 {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, b.white)
		return
	}
	for unit, tex := range textures {
		gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
		gl.BindTexture(gl.TEXTURE_2D, tex.Handle.(uint32))
	}
}

// bindArray binds the model's VAO, creating it on first use. VAOs are
// per-context, so this only runs on the main thread.
func (b *Backend) bindArray(g *gpuModel) {
	if g.vao != 0 {
		gl.BindVertexArray(g.vao)
		return
	}
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	attrs, stride := attribLayout(g.vertexType)
	for _, a := range attrs {
		gl.EnableVertexAttribArray(a.location)
		gl.VertexAttribPointerWithOffset(a.location, a.size, gl.FLOAT, false, stride, uintptr(a.offset))
	}
	if g.ebo != 0 {
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
	}

	b.mu.Lock()
	g.vao = vao
	b.mu.Unlock()
}

func (b *Backend) acquireProgram(key programKey) (uint32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p, ok := b.programs[key]; ok {
		p.refs++
		return p.id, nil
	}
	id, err := shader.Link(key.vs, key.fs)
	if err != nil {
		return 0, err
	}
	b.programs[key] = &program{id: id, refs: 1}
	return id, nil
}

func (b *Backend) releaseProgram(key programKey) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.programs[key]
	if !ok {
		return
	}
	p.refs--
	if p.refs <= 0 {
		gl.DeleteProgram(p.id)
		delete(b.programs, key)
	}
}

// newBuffer creates a buffer object of size bytes. data may be nil.
func newBuffer(target uint32, size int, data unsafe.Pointer, usage uint32) uint32 {
	var id uint32
	gl.GenBuffers(1, &id)
	gl.BindBuffer(target, id)
	gl.BufferData(target, size, data, usage)
	gl.BindBuffer(target, 0)
	return id
}

func ptrOrNil(v []float32) unsafe.Pointer {
	if len(v) == 0 {
		return nil
	}
	return gl.Ptr(v)
}

// waitIdle fences the current context and blocks until the GPU has
// consumed every command before it.
func waitIdle() error {
	fence := gl.FenceSync(gl.SYNC_GPU_COMMANDS_COMPLETE, 0)
	defer gl.DeleteSync(fence)
	deadline := time.Now().Add(uploadTimeout)
	for {
		switch gl.ClientWaitSync(fence, gl.SYNC_FLUSH_COMMANDS_BIT, uint64(10*time.Millisecond)) {
		case gl.ALREADY_SIGNALED, gl.CONDITION_SATISFIED:
			return nil
		case gl.WAIT_FAILED:
			return fmt.Errorf("fence wait failed")
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("upload did not complete within %s", uploadTimeout)
		}
	}
}
