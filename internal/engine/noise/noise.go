// Package noise provides the height source sampled by terrain chunks.
package noise

import (
	"fmt"
	"math"

	"github.com/ojrac/opensimplex-go"
)

// Source maps a position to a height displacement. Implementations must be
// deterministic and free of side effects: the same input always yields the
// same output, and calls may come from any goroutine.
type Source interface {
	Height2(x, y float32) float32
	Height3(x, y, z float32) float32
}

// Config holds fractal noise parameters.
type Config struct {
	Seed        int64
	Octaves     int
	Frequency   float64
	Lacunarity  float64
	Persistence float64
	Amplitude   float64
}

// Fractal sums octaves of OpenSimplex noise.
type Fractal struct {
	cfg   Config
	noise opensimplex.Noise
}

// NewFractal creates a fractal noise source.
func NewFractal(cfg Config) *Fractal {
	if cfg.Octaves < 1 {
		cfg.Octaves = 1
	}
	return &Fractal{
		cfg:   cfg,
		noise: opensimplex.New(cfg.Seed),
	}
}

// Height2 samples 2D noise, used by planar chunks.
func (f *Fractal) Height2(x, y float32) float32 {
	var sum, norm float64
	amplitude := 1.0
	frequency := f.cfg.Frequency
	for i := 0; i < f.cfg.Octaves; i++ {
		sum += f.noise.Eval2(float64(x)*frequency, float64(y)*frequency) * amplitude
		norm += amplitude
		amplitude *= f.cfg.Persistence
		frequency *= f.cfg.Lacunarity
	}
	return float32(sum / norm * f.cfg.Amplitude)
}

// Height3 samples 3D noise, used by spherical chunks.
func (f *Fractal) Height3(x, y, z float32) float32 {
	var sum, norm float64
	amplitude := 1.0
	frequency := f.cfg.Frequency
	for i := 0; i < f.cfg.Octaves; i++ {
		sum += f.noise.Eval3(float64(x)*frequency, float64(y)*frequency, float64(z)*frequency) * amplitude
		norm += amplitude
		amplitude *= f.cfg.Persistence
		frequency *= f.cfg.Lacunarity
	}
	return float32(sum / norm * f.cfg.Amplitude)
}

// Fingerprint identifies the parameter set. Cached geometry computed with a
// different fingerprint must not be reused.
func (f *Fractal) Fingerprint() string {
	c := f.cfg
	return fmt.Sprintf("osx:%d:%d:%x:%x:%x:%x", c.Seed, c.Octaves,
		math.Float64bits(c.Frequency), math.Float64bits(c.Lacunarity),
		math.Float64bits(c.Persistence), math.Float64bits(c.Amplitude))
}

// Flat is a constant-height source.
type Flat struct {
	Level float32
}

// Height2 returns the constant level.
func (f Flat) Height2(x, y float32) float32 { return f.Level }

// Height3 returns the constant level.
func (f Flat) Height3(x, y, z float32) float32 { return f.Level }

// Fingerprint identifies the constant level.
func (f Flat) Fingerprint() string {
	return fmt.Sprintf("flat:%x", math.Float32bits(f.Level))
}
