package renderer

import (
	"fmt"
	"sync"
)

// ShaderStage identifies a pipeline stage.
type ShaderStage int

const (
	StageVertex ShaderStage = iota
	StageFragment
)

// Shader is a compiled shader shared by every model that names the same
// path.
type Shader struct {
	Path    string
	Stage   ShaderStage
	Handle  any
	counter int
}

// Texture is an uploaded texture shared by path.
type Texture struct {
	Path    string
	Handle  any
	counter int
}

// resources holds the shader and texture registries. Entries whose counter
// drops to zero stay until the next sweep.
type resources struct {
	mu       sync.Mutex
	shaders  map[string]*Shader
	textures map[string]*Texture
}

func newResources() *resources {
	return &resources{
		shaders:  make(map[string]*Shader),
		textures: make(map[string]*Texture),
	}
}

// acquire loads or references every resource a model needs. On error all
// references taken so far are released.
func (r *resources) acquire(b Backend, m *Model) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	vs, err := r.shaderLocked(b, m.info.VertexShader, StageVertex)
	if err != nil {
		return err
	}
	fs, err := r.shaderLocked(b, m.info.FragmentShader, StageFragment)
	if err != nil {
		vs.counter--
		return err
	}
	textures := make([]*Texture, 0, len(m.info.Textures))
	for _, path := range m.info.Textures {
		t, err := r.textureLocked(b, path)
		if err != nil {
			vs.counter--
			fs.counter--
			for _, t := range textures {
				t.counter--
			}
			return err
		}
		textures = append(textures, t)
	}
	m.vs, m.fs, m.textures = vs, fs, textures
	return nil
}

func (r *resources) shaderLocked(b Backend, path string, stage ShaderStage) (*Shader, error) {
	if s, ok := r.shaders[path]; ok {
		s.counter++
		return s, nil
	}
	h, err := b.LoadShader(path, stage)
	if err != nil {
		return nil, fmt.Errorf("load shader %s: %w", path, err)
	}
	s := &Shader{Path: path, Stage: stage, Handle: h, counter: 1}
	r.shaders[path] = s
	return s, nil
}

func (r *resources) textureLocked(b Backend, path string) (*Texture, error) {
	if t, ok := r.textures[path]; ok {
		t.counter++
		return t, nil
	}
	h, err := b.LoadTexture(path)
	if err != nil {
		return nil, fmt.Errorf("load texture %s: %w", path, err)
	}
	t := &Texture{Path: path, Handle: h, counter: 1}
	r.textures[path] = t
	return t, nil
}

// release drops the model's references.
func (r *resources) release(m *Model) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.vs != nil {
		m.vs.counter--
	}
	if m.fs != nil {
		m.fs.counter--
	}
	for _, t := range m.textures {
		t.counter--
	}
	m.vs, m.fs, m.textures = nil, nil, nil
}

// sweep frees every unreferenced entry and returns how many were freed.
func (r *resources) sweep(b Backend) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for path, s := range r.shaders {
		if s.counter <= 0 {
			b.ReleaseShader(s.Handle)
			delete(r.shaders, path)
			n++
		}
	}
	for path, t := range r.textures {
		if t.counter <= 0 {
			b.ReleaseTexture(t.Handle)
			delete(r.textures, path)
			n++
		}
	}
	return n
}

func (r *resources) counts() (shaders, textures int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.shaders), len(r.textures)
}

// releaseAll frees every entry regardless of counter.
func (r *resources) releaseAll(b Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for path, s := range r.shaders {
		b.ReleaseShader(s.Handle)
		delete(r.shaders, path)
	}
	for path, t := range r.textures {
		b.ReleaseTexture(t.Handle)
		delete(r.textures, path)
	}
}
