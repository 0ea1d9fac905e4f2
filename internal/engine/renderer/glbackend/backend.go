// Package glbackend implements the renderer backend on OpenGL 4.1 core.
//
// Uploads run on the loading worker against a context that shares objects
// with the main one. Vertex array objects are not shared between contexts,
// so they are created lazily, and deleted, on the main thread.
package glbackend

import (
	"fmt"
	"sync"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/planetlod/internal/engine/renderer"
	"github.com/Faultbox/planetlod/internal/engine/texture"
	"github.com/Faultbox/planetlod/internal/logger"
)

// ContextBinder binds the shared upload context to the calling thread.
type ContextBinder interface {
	AttachUploadContext() error
	DetachUploadContext()
}

// Config holds backend configuration.
type Config struct {
	// ShaderDir resolves relative shader paths. Built-in names skip it.
	ShaderDir  string
	ClearColor [4]float32
	Wireframe  bool
}

// Backend drives OpenGL for the renderer.
type Backend struct {
	cfg    Config
	log    *zap.Logger
	binder ContextBinder

	alignment int
	white     uint32

	mu         sync.Mutex
	programs   map[programKey]*program
	deadArrays []uint32 // VAOs of destroyed models, deleted on the main thread
}

var _ renderer.Backend = (*Backend)(nil)
var _ renderer.WorkerContext = (*Backend)(nil)

// New initializes OpenGL on the current (main) context.
// IMPORTANT: Must be called AFTER the OpenGL context is created!
func New(cfg Config, binder ContextBinder) (*Backend, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	b := &Backend{
		cfg:      cfg,
		log:      logger.Named("gl"),
		binder:   binder,
		programs: make(map[programKey]*program),
	}

	var align int32
	gl.GetIntegerv(gl.UNIFORM_BUFFER_OFFSET_ALIGNMENT, &align)
	b.alignment = int(align)

	b.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.Int("uboAlignment", b.alignment),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)
	c := cfg.ClearColor
	gl.ClearColor(c[0], c[1], c[2], c[3])

	b.white = uploadTexture(texture.Solid(255, 255, 255, 255))
	return b, nil
}

// UniformAlignment returns GL_UNIFORM_BUFFER_OFFSET_ALIGNMENT.
func (b *Backend) UniformAlignment() int { return b.alignment }

// AttachWorker binds the upload context on the worker thread.
func (b *Backend) AttachWorker() error {
	if b.binder == nil {
		return fmt.Errorf("no upload context")
	}
	return b.binder.AttachUploadContext()
}

// DetachWorker releases the upload context.
func (b *Backend) DetachWorker() {
	if b.binder != nil {
		b.binder.DetachUploadContext()
	}
}

// SetWireframe toggles line polygon mode.
func (b *Backend) SetWireframe(on bool) {
	b.cfg.Wireframe = on
}

// Wireframe reports whether polygons are drawn as lines.
func (b *Backend) Wireframe() bool { return b.cfg.Wireframe }

// Resize sets the viewport.
func (b *Backend) Resize(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
	b.log.Debug("viewport resized", zap.Int("width", width), zap.Int("height", height))
}

// Begin starts a new frame.
func (b *Backend) Begin() {
	b.mu.Lock()
	dead := b.deadArrays
	b.deadArrays = nil
	b.mu.Unlock()
	if len(dead) > 0 {
		gl.DeleteVertexArrays(int32(len(dead)), &dead[0])
	}

	if b.cfg.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// End finishes the current frame.
func (b *Backend) End() {
	gl.BindVertexArray(0)
	gl.UseProgram(0)
}

// ReadPixels reads the back buffer as bottom-up RGBA rows.
func (b *Backend) ReadPixels(width, height int) []byte {
	pixels := make([]byte, width*height*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels
}

// Close releases objects owned by the backend itself. The renderer must
// be closed first.
func (b *Backend) Close() {
	b.log.Info("closing GL backend")
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.deadArrays) > 0 {
		gl.DeleteVertexArrays(int32(len(b.deadArrays)), &b.deadArrays[0])
		b.deadArrays = nil
	}
	for key, p := range b.programs {
		gl.DeleteProgram(p.id)
		delete(b.programs, key)
	}
	if b.white != 0 {
		gl.DeleteTextures(1, &b.white)
		b.white = 0
	}
}
