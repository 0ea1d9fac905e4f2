// Package app runs the terrain demo: it owns the window, the GL backend,
// the renderer and one terrain scene, and drives them once per frame.
package app

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/planetlod/internal/config"
	"github.com/Faultbox/planetlod/internal/engine/camera"
	"github.com/Faultbox/planetlod/internal/engine/debug"
	"github.com/Faultbox/planetlod/internal/engine/input"
	"github.com/Faultbox/planetlod/internal/engine/lighting"
	"github.com/Faultbox/planetlod/internal/engine/noise"
	"github.com/Faultbox/planetlod/internal/engine/renderer"
	"github.com/Faultbox/planetlod/internal/engine/renderer/glbackend"
	"github.com/Faultbox/planetlod/internal/engine/terrain"
	"github.com/Faultbox/planetlod/internal/engine/terrain/meshstore"
	"github.com/Faultbox/planetlod/internal/engine/window"
	"github.com/Faultbox/planetlod/internal/logger"
	lmath "github.com/Faultbox/planetlod/pkg/math"
)

// Scene is the terrain the app drives: a single planar grid or a planet.
type Scene interface {
	UpdateTree(cam lmath.Vec3)
	UpdateUBOs(f terrain.UniformFrame)
	Stats() terrain.GridStats
	Close()
}

// App is the running demo.
type App struct {
	cfg *config.Config
	log *zap.Logger

	window   *window.Window
	backend  *glbackend.Backend
	renderer *renderer.Renderer
	input    *input.Input
	store    *meshstore.Store

	scene  Scene
	camera camera.Camera
	lens   camera.Lens
	lights *lighting.LightSet

	screenshots *debug.ScreenshotCapture
	wantShot    bool
	running     bool
	start       time.Time
}

// New builds every subsystem. onFatal receives GPU construction failures
// from the loading worker; nil logs them at fatal level.
func New(cfg *config.Config, onFatal func(error)) (*App, error) {
	a := &App{
		cfg:         cfg,
		log:         logger.Named("app"),
		input:       input.New(),
		lens:        camera.DefaultLens(cfg.Graphics.Width, cfg.Graphics.Height),
		screenshots: debug.NewScreenshotCapture("screenshots", "planetlod"),
	}

	var err error
	a.window, err = window.New(window.Config{
		Title:      "PlanetLOD",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The backend needs the GL context the window just made current.
	a.backend, err = glbackend.New(glbackend.Config{
		ShaderDir:  cfg.Scene.ShaderDir,
		ClearColor: [4]float32{0.45, 0.6, 0.8, 1},
	}, a.window)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create GL backend: %w", err)
	}

	a.renderer = renderer.New(renderer.Config{
		RenderPasses: 1,
		WaitTime:     cfg.Worker.WaitTime,
		OnFatal:      onFatal,
	}, a.backend)

	if cfg.Cache.Enabled {
		a.store, err = meshstore.Open(cfg.Cache.Path)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to open geometry cache: %w", err)
		}
	}

	a.lights = sceneLights()
	if err := a.buildScene(); err != nil {
		a.Close()
		return nil, err
	}

	a.renderer.Start()
	a.log.Info("app initialized", zap.String("mode", cfg.Scene.Mode))
	return a, nil
}

func (a *App) buildScene() error {
	src := noise.NewFractal(NoiseConfig(a.cfg.Noise))
	grid := GridConfig(a.cfg.Terrain)
	mat := SceneMaterial(a.cfg.Scene)

	var opts []terrain.GridOption
	if a.store != nil {
		opts = append(opts, terrain.WithStore(a.store))
	}

	switch a.cfg.Scene.Mode {
	case config.ModePlanet:
		nucleus := lmath.Vec3{X: a.cfg.Planet.Nucleus[0], Y: a.cfg.Planet.Nucleus[1], Z: a.cfg.Planet.Nucleus[2]}
		radius := a.cfg.Planet.Radius
		a.scene = terrain.NewPlanet(grid, src, a.renderer, mat, nucleus, radius, opts...)
		orbit := camera.NewOrbitCamera(nucleus, 2.5*radius)
		orbit.MinDistance = radius * 1.05
		orbit.DistanceSpeed = -radius * 0.02
		a.camera = orbit
	case config.ModePlane:
		a.scene = terrain.NewPlanarGrid(grid, src, a.renderer, mat, opts...)
		a.camera = camera.NewFlyCamera(lmath.Vec3{}, lmath.Vec3{X: 1, Y: 0.3}, 120, 60, src.Height2)
	default:
		return fmt.Errorf("unknown scene mode %q", a.cfg.Scene.Mode)
	}
	return nil
}

// sceneLights returns a sun and a dim fill light.
func sceneLights() *lighting.LightSet {
	set := lighting.NewLightSet(terrainMaxLights)
	sun := lighting.NewDirectional(
		lighting.SunDirection(30, 40),
		lmath.Vec3{X: 0.15, Y: 0.15, Z: 0.18},
		lmath.Vec3{X: 0.9, Y: 0.85, Z: 0.75},
		lmath.Vec3{X: 0.2, Y: 0.2, Z: 0.2},
	)
	fill := lighting.NewDirectional(
		lmath.Vec3{X: 0.3, Y: 0.5, Z: -0.4},
		lmath.Vec3{},
		lmath.Vec3{X: 0.15, Y: 0.17, Z: 0.22},
		lmath.Vec3{},
	)
	set.Add(sun)
	set.Add(fill)
	return set
}

// Run starts the main loop and returns when the window is closed.
func (a *App) Run() error {
	a.running = true
	a.start = time.Now()

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	var minFrame time.Duration
	if a.cfg.Graphics.FPSLimit > 0 {
		minFrame = time.Second / time.Duration(a.cfg.Graphics.FPSLimit)
	}

	a.log.Info("starting main loop")

	for a.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		// 1. Process input
		if a.input.Update() {
			a.running = false
			break
		}
		a.handleEvents()

		// 2. Advance camera and terrain
		a.update(dt)

		// 3. Render
		a.render()

		// 4. Present
		a.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			a.logFrameStats(frameCount)
			frameCount = 0
			fpsTimer = time.Now()
		}

		if minFrame > 0 {
			if spare := minFrame - time.Since(now); spare > 0 {
				time.Sleep(spare)
			}
		}
	}
	return nil
}

func (a *App) handleEvents() {
	for _, event := range a.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			a.backend.Resize(event.Width, event.Height)
			a.lens.SetViewport(event.Width, event.Height)
		case input.EventKeyDown:
			switch event.Key {
			case sdl.SCANCODE_F1:
				a.backend.SetWireframe(!a.backend.Wireframe())
			case sdl.SCANCODE_F12:
				a.wantShot = true
			}
		}
	}
}

func (a *App) update(dt float32) {
	a.camera.Update(dt)
	cam := a.camera.Position()

	a.scene.UpdateTree(cam)
	a.scene.UpdateUBOs(terrain.UniformFrame{
		View:   a.camera.ViewMatrix(),
		Proj:   a.lens.Matrix(),
		CamPos: cam,
		Lights: a.lights,
		Time:   float32(time.Since(a.start).Seconds()),
	})
	a.renderer.UpdateStates()
}

func (a *App) render() {
	a.renderer.Draw()

	if a.wantShot {
		a.wantShot = false
		w, h := a.window.GetSize()
		name, err := a.screenshots.CaptureFromPixels(a.backend.ReadPixels(w, h), w, h)
		if err != nil {
			a.log.Warn("screenshot failed", zap.Error(err))
		} else {
			a.log.Info("screenshot saved", zap.String("file", name))
		}
	}
}

func (a *App) logFrameStats(frames int) {
	gs := a.scene.Stats()
	rs := a.renderer.Stats()
	a.log.Debug("frame stats",
		zap.Int("fps", frames),
		zap.Int("leaves", gs.Leaves),
		zap.Int("nodes", gs.Nodes),
		zap.Int("cached", gs.CachedChunks),
		zap.Int("swaps", gs.Swaps),
		zap.Int("ready", rs.Ready),
		zap.Int("queued", rs.Queued),
		zap.Int("pendingDelete", rs.PendingDelete),
	)
	a.window.SetTitle(fmt.Sprintf("PlanetLOD - %d fps - %d chunks", frames, gs.Leaves))
}

// Close tears everything down in reverse order of creation.
func (a *App) Close() {
	a.log.Info("closing app")

	if a.scene != nil {
		a.scene.Close()
	}
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.backend != nil {
		a.backend.Close()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("geometry cache close failed", zap.Error(err))
		}
	}
	if a.window != nil {
		a.window.Close()
	}
}
