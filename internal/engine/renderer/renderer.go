// Package renderer owns GPU-resident models. Models are built and destroyed
// by a background loading worker; the main thread only writes uniforms and
// records draws for models the worker finished.
package renderer

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/planetlod/internal/logger"
)

// ErrClosed is returned when creating a model on a closed renderer.
var ErrClosed = errors.New("renderer: closed")

// Config holds renderer configuration.
type Config struct {
	RenderPasses int
	// WaitTime is the worker's sleep between iterations.
	WaitTime time.Duration
	// OnFatal is called on construction failures. Defaults to logging at
	// fatal level, which exits.
	OnFatal func(error)
}

// Stats is a snapshot of renderer counters.
type Stats struct {
	Ready           int
	PerPass         []int // Ready models in each render pass
	Queued          int
	PendingDelete   int
	Shaders         int
	Textures        int
	DrawCommands    int
	CommandRebuilds int
	Constructed     int64
	Destroyed       int64
}

// Renderer tracks models across their lifecycle.
//
// Lock order: mutModels, mutLoad, mutDelete, then the resource registry.
type Renderer struct {
	cfg     Config
	backend Backend
	log     *zap.Logger
	worker  *LoadingWorker
	res     *resources
	closed  atomic.Bool
	nextID  atomic.Uint64

	mutModels           sync.Mutex
	passes              [][]*Model
	updateCommandBuffer bool
	commands            []DrawCommand
	rebuilds            int

	mutLoad sync.Mutex
	toLoad  []*Model

	mutDelete sync.Mutex
	toDelete  []*Model

	stats struct {
		constructed atomic.Int64
		destroyed   atomic.Int64
	}
}

// New creates a renderer on top of backend. The worker is not started.
func New(cfg Config, backend Backend) *Renderer {
	if cfg.RenderPasses < 1 {
		cfg.RenderPasses = 1
	}
	if cfg.OnFatal == nil {
		cfg.OnFatal = func(err error) {
			logger.Fatal("renderer failure", zap.Error(err))
		}
	}
	r := &Renderer{
		cfg:     cfg,
		backend: backend,
		log:     logger.Named("renderer"),
		res:     newResources(),
		passes:  make([][]*Model, cfg.RenderPasses),
	}
	r.worker = newLoadingWorker(r, cfg.WaitTime, r.log.Named("worker"))
	return r
}

// Worker returns the loading worker.
func (r *Renderer) Worker() *LoadingWorker { return r.worker }

// Start launches the loading worker.
func (r *Renderer) Start() { r.worker.Start() }

func (r *Renderer) fatal(err error) {
	r.log.Error("model construction failed", zap.Error(err))
	r.cfg.OnFatal(err)
}

// NewModel validates info and queues a model for construction. The model
// is drawn once the worker has built it.
func (r *Renderer) NewModel(info ModelInfo) (*Model, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}
	if err := info.validate(); err != nil {
		return nil, err
	}
	if info.RenderPass < 0 || info.RenderPass >= len(r.passes) {
		return nil, fmt.Errorf("model %q: render pass %d out of range [0,%d)",
			info.Name, info.RenderPass, len(r.passes))
	}

	align := r.backend.UniformAlignment()
	m := &Model{
		id:          r.nextID.Add(1),
		info:        info,
		VertexUBO:   NewUBO(info.VertexUBO, align),
		FragmentUBO: NewUBO(info.FragmentUBO, align),
	}
	n := info.Instances
	if n < 0 || n > m.VertexUBO.Blocks() {
		n = m.VertexUBO.Blocks()
	}
	m.instances.Store(int32(n))
	m.setState(StateQueued)

	r.mutLoad.Lock()
	r.toLoad = append(r.toLoad, m)
	r.mutLoad.Unlock()
	return m, nil
}

// DeleteModel schedules m for destruction. A queued model is never built;
// a model being built is torn down as soon as the worker finishes it.
// Deleting a model twice is a no-op.
func (r *Renderer) DeleteModel(m *Model) {
	if m == nil {
		return
	}
	for {
		switch m.State() {
		case StateQueued:
			if r.deleteQueued(m) {
				return
			}
		case StateLoading:
			if m.cas(StateLoading, StateDeleteRequested) {
				return
			}
		case StateReady:
			if r.deleteReady(m) {
				return
			}
		default:
			return
		}
	}
}

func (r *Renderer) deleteQueued(m *Model) bool {
	r.mutLoad.Lock()
	defer r.mutLoad.Unlock()
	if !m.cas(StateQueued, StateDeleting) {
		return false
	}
	if i := slices.Index(r.toLoad, m); i >= 0 {
		r.toLoad = slices.Delete(r.toLoad, i, i+1)
	}
	r.pushDelete(m)
	return true
}

func (r *Renderer) deleteReady(m *Model) bool {
	r.mutModels.Lock()
	defer r.mutModels.Unlock()
	if !m.cas(StateReady, StateDeleting) {
		return false
	}
	pass := r.passes[m.info.RenderPass]
	if i := slices.Index(pass, m); i >= 0 {
		r.passes[m.info.RenderPass] = slices.Delete(pass, i, i+1)
	}
	r.updateCommandBuffer = true
	r.pushDelete(m)
	return true
}

func (r *Renderer) pushDelete(m *Model) {
	r.mutDelete.Lock()
	r.toDelete = append(r.toDelete, m)
	r.mutDelete.Unlock()
}

// SetRenders sets how many instances of m are drawn. Zero keeps the model
// resident but skips it. Values above the uniform block count are clamped.
func (r *Renderer) SetRenders(m *Model, n int) {
	if n < 0 {
		n = 0
	}
	if limit := m.VertexUBO.Blocks(); n > limit {
		n = limit
	}
	if int(m.instances.Swap(int32(n))) == n {
		return
	}
	r.mutModels.Lock()
	r.updateCommandBuffer = true
	r.mutModels.Unlock()
}

// ToLastDraw moves m to the end of its render pass.
func (r *Renderer) ToLastDraw(m *Model) {
	r.mutModels.Lock()
	defer r.mutModels.Unlock()
	pass := r.passes[m.info.RenderPass]
	i := slices.Index(pass, m)
	if i < 0 || i == len(pass)-1 {
		return
	}
	pass = slices.Delete(pass, i, i+1)
	r.passes[m.info.RenderPass] = append(pass, m)
	r.updateCommandBuffer = true
}

// IsBeingProcessed reports whether the worker currently has m staged.
func (r *Renderer) IsBeingProcessed(m *Model) bool { return r.worker.IsBeingProcessed(m) }

// UpdateStates copies uniforms of every ready model to the GPU and rebuilds
// the draw list if any model was added, removed or re-counted. Main thread.
func (r *Renderer) UpdateStates() {
	r.mutModels.Lock()
	defer r.mutModels.Unlock()

	for _, pass := range r.passes {
		for _, m := range pass {
			r.backend.WriteUniforms(m)
		}
	}
	if !r.updateCommandBuffer {
		return
	}
	r.commands = r.commands[:0]
	for _, pass := range r.passes {
		for _, m := range pass {
			if n := m.Instances(); n > 0 {
				r.commands = append(r.commands, DrawCommand{Model: m, Instances: n})
			}
		}
	}
	r.updateCommandBuffer = false
	r.rebuilds++
}

// Draw records the current draw list. Main thread.
func (r *Renderer) Draw() {
	r.mutModels.Lock()
	defer r.mutModels.Unlock()
	r.backend.Begin()
	r.backend.Draw(r.commands)
	r.backend.End()
}

// Commands returns a copy of the current draw list.
func (r *Renderer) Commands() []DrawCommand {
	r.mutModels.Lock()
	defer r.mutModels.Unlock()
	return slices.Clone(r.commands)
}

// stageNext pops the head of the load queue and marks it loading.
func (r *Renderer) stageNext() *Model {
	r.mutLoad.Lock()
	defer r.mutLoad.Unlock()
	for len(r.toLoad) > 0 {
		m := r.toLoad[0]
		r.toLoad[0] = nil
		r.toLoad = r.toLoad[1:]
		if m.cas(StateQueued, StateLoading) {
			return m
		}
	}
	return nil
}

// publish lists a freshly built model for drawing, or routes it to the
// delete queue when deletion was requested during construction.
func (r *Renderer) publish(m *Model) {
	r.mutModels.Lock()
	if m.cas(StateLoading, StateReady) {
		pass := m.info.RenderPass
		r.passes[pass] = append(r.passes[pass], m)
		r.updateCommandBuffer = true
		r.mutModels.Unlock()
		return
	}
	r.mutModels.Unlock()

	if m.cas(StateDeleteRequested, StateDeleting) {
		r.pushDelete(m)
	}
}

func (r *Renderer) popDelete() *Model {
	r.mutDelete.Lock()
	defer r.mutDelete.Unlock()
	if len(r.toDelete) == 0 {
		return nil
	}
	m := r.toDelete[0]
	r.toDelete[0] = nil
	r.toDelete = r.toDelete[1:]
	return m
}

// destroy frees m's GPU objects. Holding mutModels keeps it from racing a
// draw that still references m.
func (r *Renderer) destroy(m *Model) {
	r.mutModels.Lock()
	defer r.mutModels.Unlock()
	if m.gpu != nil {
		r.backend.Destroy(m)
		m.gpu = nil
	}
	r.res.release(m)
	m.setState(StateDeleted)
	r.stats.destroyed.Add(1)
}

func (r *Renderer) sweep() {
	r.mutModels.Lock()
	defer r.mutModels.Unlock()
	if n := r.res.sweep(r.backend); n > 0 {
		r.log.Debug("released unused resources", zap.Int("count", n))
	}
}

// Stats returns current counters.
func (r *Renderer) Stats() Stats {
	var s Stats
	r.mutModels.Lock()
	s.PerPass = make([]int, len(r.passes))
	for i, pass := range r.passes {
		s.Ready += len(pass)
		s.PerPass[i] = len(pass)
	}
	s.DrawCommands = len(r.commands)
	s.CommandRebuilds = r.rebuilds
	r.mutModels.Unlock()

	r.mutLoad.Lock()
	s.Queued = len(r.toLoad)
	r.mutLoad.Unlock()
	r.mutDelete.Lock()
	s.PendingDelete = len(r.toDelete)
	r.mutDelete.Unlock()

	s.Shaders, s.Textures = r.res.counts()
	s.Constructed = r.stats.constructed.Load()
	s.Destroyed = r.stats.destroyed.Load()
	return s
}

// Close stops the worker and frees every model and resource on the calling
// goroutine. Later NewModel calls return ErrClosed.
func (r *Renderer) Close() {
	if !r.closed.CompareAndSwap(false, true) {
		return
	}
	r.worker.Stop()

	r.mutModels.Lock()
	var all []*Model
	for i, pass := range r.passes {
		all = append(all, pass...)
		r.passes[i] = nil
	}
	r.commands = nil
	r.mutModels.Unlock()

	r.mutLoad.Lock()
	for _, m := range r.toLoad {
		m.setState(StateDeleted)
	}
	r.toLoad = nil
	r.mutLoad.Unlock()

	r.mutDelete.Lock()
	all = append(all, r.toDelete...)
	r.toDelete = nil
	r.mutDelete.Unlock()

	for _, m := range all {
		r.destroy(m)
	}
	r.res.releaseAll(r.backend)
	r.log.Info("renderer closed", zap.Int64("destroyed", r.stats.destroyed.Load()))
}
