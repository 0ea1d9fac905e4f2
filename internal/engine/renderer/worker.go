package renderer

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// LoadingWorker builds queued models and destroys deleted ones on its own
// goroutine. One model is staged at a time.
type LoadingWorker struct {
	r        *Renderer
	waitTime time.Duration
	log      *zap.Logger

	running  atomic.Bool
	inFlight atomic.Pointer[Model]
	wg       sync.WaitGroup
}

func newLoadingWorker(r *Renderer, wait time.Duration, log *zap.Logger) *LoadingWorker {
	return &LoadingWorker{r: r, waitTime: wait, log: log}
}

// Start launches the worker goroutine. Calling Start twice is a no-op.
func (w *LoadingWorker) Start() {
	if !w.running.CompareAndSwap(false, true) {
		return
	}
	w.wg.Add(1)
	go w.loop()
}

// Stop asks the worker to exit and waits for its current iteration and
// sleep to finish.
func (w *LoadingWorker) Stop() {
	if !w.running.CompareAndSwap(true, false) {
		return
	}
	w.wg.Wait()
}

// Running reports whether the worker goroutine is active.
func (w *LoadingWorker) Running() bool { return w.running.Load() }

// IsBeingProcessed reports whether m is the model currently staged.
func (w *LoadingWorker) IsBeingProcessed(m *Model) bool {
	return m != nil && w.inFlight.Load() == m
}

func (w *LoadingWorker) loop() {
	defer w.wg.Done()

	// GL contexts are bound per OS thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if wc, ok := w.r.backend.(WorkerContext); ok {
		if err := wc.AttachWorker(); err != nil {
			w.r.fatal(err)
			return
		}
		defer wc.DetachWorker()
	}

	w.log.Debug("loading worker started", zap.Duration("wait", w.waitTime))
	for w.running.Load() {
		w.Step()
		time.Sleep(w.waitTime)
	}
	w.log.Debug("loading worker stopped")
}

// Step runs one worker iteration: drain the load queue, then the delete
// queue, then sweep unreferenced shaders and textures. Tests drive the
// worker through Step without starting the goroutine.
func (w *LoadingWorker) Step() {
	for {
		m := w.r.stageNext()
		if m == nil {
			break
		}
		w.inFlight.Store(m)
		w.construct(m)
		w.inFlight.Store(nil)
	}

	destroyed := 0
	for {
		m := w.r.popDelete()
		if m == nil {
			break
		}
		w.r.destroy(m)
		destroyed++
	}
	if destroyed > 0 {
		w.r.sweep()
	}
}

func (w *LoadingWorker) construct(m *Model) {
	r := w.r
	if err := r.res.acquire(r.backend, m); err != nil {
		m.setState(StateDeleted)
		r.fatal(err)
		return
	}
	gpu, err := r.backend.Construct(m)
	if err != nil {
		r.res.release(m)
		m.setState(StateDeleted)
		r.fatal(err)
		return
	}
	m.gpu = gpu
	m.fullyConstructed.Store(true)
	r.stats.constructed.Add(1)
	r.publish(m)
}
