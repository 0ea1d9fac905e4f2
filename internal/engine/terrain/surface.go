package terrain

import (
	"github.com/Faultbox/planetlod/internal/engine/noise"
	lmath "github.com/Faultbox/planetlod/pkg/math"
)

// Kind selects how face coordinates become world positions.
type Kind int

const (
	Planar Kind = iota
	Spherical
)

func (k Kind) String() string {
	if k == Spherical {
		return "spherical"
	}
	return "planar"
}

// surface maps face coordinates (u, v) to displaced world positions. Both
// kinds share the tessellation and normal code; only project differs.
type surface struct {
	kind   Kind
	origin lmath.Vec3
	xAxis  lmath.Vec3
	yAxis  lmath.Vec3
	src    noise.Source

	// Spherical only.
	nucleus lmath.Vec3
	radius  float32
}

func planarSurface(src noise.Source) surface {
	return surface{
		kind:  Planar,
		xAxis: lmath.Vec3{X: 1},
		yAxis: lmath.Vec3{Y: 1},
		src:   src,
	}
}

func sphericalSurface(src noise.Source, nucleus lmath.Vec3, radius float32, cubePlane lmath.Vec3) surface {
	x, y := CubeAxes(cubePlane)
	return surface{
		kind:    Spherical,
		origin:  nucleus.Add(cubePlane.Scale(radius)),
		xAxis:   x,
		yAxis:   y,
		src:     src,
		nucleus: nucleus,
		radius:  radius,
	}
}

// facePoint returns the undisplaced point on the flat face.
func (s *surface) facePoint(u, v float32) lmath.Vec3 {
	return s.origin.Add(s.xAxis.Scale(u)).Add(s.yAxis.Scale(v))
}

// base returns the position before height displacement.
func (s *surface) base(u, v float32) lmath.Vec3 {
	p := s.facePoint(u, v)
	if s.kind == Spherical {
		return s.nucleus.Add(p.Sub(s.nucleus).Normalize().Scale(s.radius))
	}
	return p
}

// project returns the displaced world position.
func (s *surface) project(u, v float32) lmath.Vec3 {
	p := s.facePoint(u, v)
	if s.kind == Spherical {
		dir := p.Sub(s.nucleus).Normalize()
		onSphere := dir.Scale(s.radius)
		h := s.src.Height3(onSphere.X, onSphere.Y, onSphere.Z)
		return s.nucleus.Add(dir.Scale(s.radius + h))
	}
	p.Z += s.src.Height2(p.X, p.Y)
	return p
}

// CubeAxes returns two in-face axes for the cube face whose outward normal
// is cubePlane, one of the six signed unit axes. xAxis × yAxis equals
// cubePlane, so every face winds counter-clockwise seen from outside.
func CubeAxes(cubePlane lmath.Vec3) (xAxis, yAxis lmath.Vec3) {
	e := [3]lmath.Vec3{{X: 1}, {Y: 1}, {Z: 1}}
	c := cubePlane.Array()

	i, sign := 0, float32(1)
	for k := 0; k < 3; k++ {
		if c[k] != 0 {
			i = k
			if c[k] < 0 {
				sign = -1
			}
			break
		}
	}
	return e[(i+1)%3].Scale(sign), e[(i+2)%3]
}
