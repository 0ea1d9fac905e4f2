package noise

import (
	"testing"
)

func TestFractalDeterministic(t *testing.T) {
	cfg := Config{Seed: 7, Octaves: 4, Frequency: 0.01, Lacunarity: 2, Persistence: 0.5, Amplitude: 100}
	a := NewFractal(cfg)
	b := NewFractal(cfg)

	for _, p := range [][3]float32{{0, 0, 0}, {12.5, -40, 3}, {1e4, 2e4, -3e4}} {
		if a.Height2(p[0], p[1]) != b.Height2(p[0], p[1]) {
			t.Errorf("Height2%v differs between identical sources", p)
		}
		if a.Height3(p[0], p[1], p[2]) != b.Height3(p[0], p[1], p[2]) {
			t.Errorf("Height3%v differs between identical sources", p)
		}
	}
}

func TestFractalAmplitudeBound(t *testing.T) {
	f := NewFractal(Config{Seed: 3, Octaves: 5, Frequency: 0.05, Lacunarity: 2, Persistence: 0.5, Amplitude: 10})
	for x := float32(-100); x <= 100; x += 7.3 {
		for y := float32(-100); y <= 100; y += 5.1 {
			h := f.Height2(x, y)
			if h < -10.001 || h > 10.001 {
				t.Fatalf("Height2(%v, %v) = %v outside amplitude", x, y, h)
			}
		}
	}
}

func TestFingerprint(t *testing.T) {
	base := Config{Seed: 1, Octaves: 2, Frequency: 0.1, Lacunarity: 2, Persistence: 0.5, Amplitude: 1}
	other := base
	other.Seed = 2

	if NewFractal(base).Fingerprint() != NewFractal(base).Fingerprint() {
		t.Error("same config must share a fingerprint")
	}
	if NewFractal(base).Fingerprint() == NewFractal(other).Fingerprint() {
		t.Error("different seeds must not share a fingerprint")
	}
	if (Flat{}).Fingerprint() == (Flat{Level: 1}).Fingerprint() {
		t.Error("different flat levels must not share a fingerprint")
	}
}

func TestZeroOctavesClamped(t *testing.T) {
	f := NewFractal(Config{Seed: 1, Frequency: 0.1, Amplitude: 1})
	// Would divide by zero without the clamp.
	if h := f.Height2(1, 2); h != h {
		t.Error("Height2 returned NaN")
	}
}
