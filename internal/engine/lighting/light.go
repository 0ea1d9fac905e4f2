package lighting

import (
	"encoding/binary"
	"fmt"
	"math"

	lmath "github.com/Faultbox/planetlod/pkg/math"
)

// LightType matches the integer the fragment shader switches on.
type LightType int32

const (
	Directional LightType = iota + 1
	Point
	Spot
)

func (t LightType) String() string {
	switch t {
	case Directional:
		return "directional"
	case Point:
		return "point"
	case Spot:
		return "spot"
	default:
		return fmt.Sprintf("LightType(%d)", int32(t))
	}
}

// Light is one light source. Cutoffs are cosines of the cone angles.
type Light struct {
	Type      LightType
	Position  lmath.Vec3
	Direction lmath.Vec3
	Ambient   lmath.Vec3
	Diffuse   lmath.Vec3
	Specular  lmath.Vec3

	// Attenuation: 1 / (Constant + Linear*d + Quadratic*d^2)
	Constant  float32
	Linear    float32
	Quadratic float32

	CutOff      float32
	OuterCutOff float32
}

// NewDirectional returns a light with parallel rays along dir.
func NewDirectional(dir, ambient, diffuse, specular lmath.Vec3) Light {
	return Light{
		Type:      Directional,
		Direction: dir.Normalize(),
		Ambient:   ambient,
		Diffuse:   diffuse,
		Specular:  specular,
		Constant:  1,
	}
}

// NewPoint returns an omnidirectional light with distance attenuation.
func NewPoint(pos, ambient, diffuse, specular lmath.Vec3, constant, linear, quadratic float32) Light {
	return Light{
		Type:      Point,
		Position:  pos,
		Ambient:   ambient,
		Diffuse:   diffuse,
		Specular:  specular,
		Constant:  constant,
		Linear:    linear,
		Quadratic: quadratic,
	}
}

// NewSpot returns a cone light. Angles are in degrees.
func NewSpot(pos, dir, ambient, diffuse, specular lmath.Vec3, constant, linear, quadratic, inner, outer float32) Light {
	l := NewPoint(pos, ambient, diffuse, specular, constant, linear, quadratic)
	l.Type = Spot
	l.Direction = dir.Normalize()
	l.CutOff = float32(math.Cos(float64(inner) * math.Pi / 180))
	l.OuterCutOff = float32(math.Cos(float64(outer) * math.Pi / 180))
	return l
}

// LightStride is the std140 size of one packed light: seven vec4s
// (position+type, direction, ambient, diffuse, specular, attenuation,
// cutoffs).
const LightStride = 7 * 16

// BlockSize returns the packed size of a set holding up to max lights:
// a vec4 header whose x is the light count, then the light array.
func BlockSize(max int) int {
	return 16 + max*LightStride
}

// LightSet is a fixed-capacity list of lights.
type LightSet struct {
	lights []Light
	max    int
}

// NewLightSet creates an empty set with room for max lights.
func NewLightSet(max int) *LightSet {
	if max < 1 {
		max = 1
	}
	return &LightSet{lights: make([]Light, 0, max), max: max}
}

// Add appends a light and returns its index.
func (s *LightSet) Add(l Light) (int, error) {
	if len(s.lights) >= s.max {
		return 0, fmt.Errorf("light set full (%d lights)", s.max)
	}
	s.lights = append(s.lights, l)
	return len(s.lights) - 1, nil
}

// Set replaces the light at index i.
func (s *LightSet) Set(i int, l Light) {
	if i >= 0 && i < len(s.lights) {
		s.lights[i] = l
	}
}

// Light returns the light at index i.
func (s *LightSet) Light(i int) Light { return s.lights[i] }

// Len returns the number of lights.
func (s *LightSet) Len() int { return len(s.lights) }

// Max returns the capacity.
func (s *LightSet) Max() int { return s.max }

// Std140 packs the set into a buffer of BlockSize(Max()) bytes.
func (s *LightSet) Std140() []byte {
	buf := make([]byte, BlockSize(s.max))
	s.PackInto(buf)
	return buf
}

// PackInto writes the packed set into dst, which must hold BlockSize(Max())
// bytes.
func (s *LightSet) PackInto(dst []byte) {
	if len(dst) < BlockSize(s.max) {
		return
	}
	clear(dst)
	putVec4(dst[0:], float32(len(s.lights)), 0, 0, 0)
	for i, l := range s.lights {
		b := dst[16+i*LightStride:]
		putVec4(b[0:], l.Position.X, l.Position.Y, l.Position.Z, float32(l.Type))
		putVec4(b[16:], l.Direction.X, l.Direction.Y, l.Direction.Z, 0)
		putVec4(b[32:], l.Ambient.X, l.Ambient.Y, l.Ambient.Z, 0)
		putVec4(b[48:], l.Diffuse.X, l.Diffuse.Y, l.Diffuse.Z, 0)
		putVec4(b[64:], l.Specular.X, l.Specular.Y, l.Specular.Z, 0)
		putVec4(b[80:], l.Constant, l.Linear, l.Quadratic, 0)
		putVec4(b[96:], l.CutOff, l.OuterCutOff, 0, 0)
	}
}

func putVec4(b []byte, x, y, z, w float32) {
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(x))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(y))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(z))
	binary.LittleEndian.PutUint32(b[12:], math.Float32bits(w))
}
