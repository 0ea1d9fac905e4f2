package renderer

import (
	"errors"
	"sync"
)

// fakeBackend records calls instead of touching a GPU.
type fakeBackend struct {
	mu sync.Mutex

	align          int
	constructed    []uint64
	destroyed      []uint64
	shaderLoads    map[string]int
	shaderReleases map[string]int
	textureLoads   map[string]int
	uniformWrites  int
	draws          [][]DrawCommand
	failShader     string

	// onConstruct runs inside Construct, before it returns.
	onConstruct func(m *Model)
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		align:          256,
		shaderLoads:    make(map[string]int),
		shaderReleases: make(map[string]int),
		textureLoads:   make(map[string]int),
	}
}

func (f *fakeBackend) UniformAlignment() int { return f.align }

func (f *fakeBackend) LoadShader(path string, _ ShaderStage) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if path == f.failShader {
		return nil, errors.New("compile failed")
	}
	f.shaderLoads[path]++
	return path, nil
}

func (f *fakeBackend) ReleaseShader(h any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shaderReleases[h.(string)]++
}

func (f *fakeBackend) LoadTexture(path string) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.textureLoads[path]++
	return path, nil
}

func (f *fakeBackend) ReleaseTexture(any) {}

func (f *fakeBackend) Construct(m *Model) (any, error) {
	if f.onConstruct != nil {
		f.onConstruct(m)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.constructed = append(f.constructed, m.ID())
	return m.ID(), nil
}

func (f *fakeBackend) Destroy(m *Model) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyed = append(f.destroyed, m.ID())
}

func (f *fakeBackend) Begin() {}
func (f *fakeBackend) End()   {}

func (f *fakeBackend) WriteUniforms(*Model) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uniformWrites++
}

func (f *fakeBackend) Draw(cmds []DrawCommand) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draws = append(f.draws, append([]DrawCommand(nil), cmds...))
}

func (f *fakeBackend) constructCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.constructed)
}

func (f *fakeBackend) destroyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.destroyed)
}
