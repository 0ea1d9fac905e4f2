package renderer

// Backend is the graphics API the renderer drives. Load*, Release*,
// Construct and Destroy run on the loading worker's goroutine. Begin,
// WriteUniforms, Draw and End run on the main thread.
type Backend interface {
	// UniformAlignment is the minimum offset alignment for uniform ranges.
	UniformAlignment() int

	LoadShader(path string, stage ShaderStage) (any, error)
	ReleaseShader(handle any)
	LoadTexture(path string) (any, error)
	ReleaseTexture(handle any)

	// Construct uploads the model's mesh and uniform storage and links
	// its pipeline. It must not return before the GPU work is complete.
	Construct(m *Model) (any, error)
	Destroy(m *Model)

	Begin()
	WriteUniforms(m *Model)
	Draw(cmds []DrawCommand)
	End()
}

// WorkerContext is implemented by backends that need per-thread setup on
// the worker goroutine, such as binding a shared GL context.
type WorkerContext interface {
	AttachWorker() error
	DetachWorker()
}

// DrawCommand draws Instances instances of a fully constructed model.
type DrawCommand struct {
	Model     *Model
	Instances int
}
