package lighting

import (
	"encoding/binary"
	"math"
	"testing"

	lmath "github.com/Faultbox/planetlod/pkg/math"
)

func floatAt(b []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
}

func TestLightSetPacking(t *testing.T) {
	set := NewLightSet(2)
	sun := NewDirectional(lmath.Vec3{Z: -2}, lmath.Vec3{X: 0.1}, lmath.Vec3{X: 1}, lmath.Vec3{X: 0.5})
	if _, err := set.Add(sun); err != nil {
		t.Fatal(err)
	}
	lamp := NewPoint(lmath.Vec3{X: 1, Y: 2, Z: 3}, lmath.Vec3{}, lmath.Vec3{Y: 1}, lmath.Vec3{}, 1, 0.09, 0.032)
	if _, err := set.Add(lamp); err != nil {
		t.Fatal(err)
	}
	if _, err := set.Add(lamp); err == nil {
		t.Error("expected error when set is full")
	}

	buf := set.Std140()
	if len(buf) != BlockSize(2) {
		t.Fatalf("len = %d, want %d", len(buf), BlockSize(2))
	}
	if got := floatAt(buf, 0); got != 2 {
		t.Errorf("count = %v", got)
	}
	// first light: type in position.w, normalized direction
	if got := floatAt(buf, 16+12); got != float32(Directional) {
		t.Errorf("type = %v", got)
	}
	if got := floatAt(buf, 16+16+8); got != -1 {
		t.Errorf("direction.z = %v, want -1", got)
	}
	// second light: position and attenuation
	second := 16 + LightStride
	if floatAt(buf, second) != 1 || floatAt(buf, second+4) != 2 || floatAt(buf, second+8) != 3 {
		t.Error("point light position not packed")
	}
	if got := floatAt(buf, second+84); got != 0.09 {
		t.Errorf("linear = %v", got)
	}
}

func TestSpotCutoffs(t *testing.T) {
	l := NewSpot(lmath.Vec3{}, lmath.Vec3{Z: -1}, lmath.Vec3{}, lmath.Vec3{X: 1}, lmath.Vec3{}, 1, 0, 0, 0, 60)
	if l.CutOff != 1 {
		t.Errorf("inner cutoff = %v, want 1", l.CutOff)
	}
	if math.Abs(float64(l.OuterCutOff)-0.5) > 1e-6 {
		t.Errorf("outer cutoff = %v, want 0.5", l.OuterCutOff)
	}
}

func TestSunDirection(t *testing.T) {
	tests := []struct {
		lon, lat float32
		want     lmath.Vec3
	}{
		{0, 90, lmath.Vec3{Z: -1}},
		{0, 0, lmath.Vec3{X: -1}},
		{90, 0, lmath.Vec3{Y: -1}},
	}
	for _, tt := range tests {
		got := SunDirection(tt.lon, tt.lat)
		if got.Sub(tt.want).Length() > 1e-6 {
			t.Errorf("SunDirection(%v, %v) = %v, want %v", tt.lon, tt.lat, got, tt.want)
		}
	}
}
