// Package camera provides the scripted cameras that drive terrain LOD.
// The world is Z-up.
package camera

import (
	gomath "math"

	"github.com/Faultbox/planetlod/pkg/math"
)

var worldUp = math.Vec3{Z: 1}

// Camera is anything that yields a position and view matrix each frame.
type Camera interface {
	Update(dt float32)
	Position() math.Vec3
	ViewMatrix() math.Mat4
}

// Lens holds perspective projection parameters.
type Lens struct {
	FovY   float32 // Vertical field of view, radians
	Aspect float32
	Near   float32
	Far    float32
}

// DefaultLens returns a 45 degree lens for the given viewport.
func DefaultLens(width, height int) Lens {
	l := Lens{FovY: gomath.Pi / 4, Near: 0.5, Far: 100000}
	l.SetViewport(width, height)
	return l
}

// SetViewport updates the aspect ratio.
func (l *Lens) SetViewport(width, height int) {
	if height <= 0 {
		height = 1
	}
	l.Aspect = float32(width) / float32(height)
}

// Matrix returns the projection matrix.
func (l Lens) Matrix() math.Mat4 {
	return math.Perspective(l.FovY, l.Aspect, l.Near, l.Far)
}

// OrbitCamera circles a center point, used to fly around a planet.
type OrbitCamera struct {
	Center math.Vec3

	// Spherical coordinates
	Distance float32 // Distance from center
	Pitch    float32 // Elevation above the XY plane (radians)
	Yaw      float32 // Rotation around Z (radians)

	// Constraints
	MinDistance float32
	MaxDistance float32
	MaxPitch    float32

	// Scripted motion per second
	YawSpeed      float32
	DistanceSpeed float32
}

// NewOrbitCamera creates an orbit camera around center.
func NewOrbitCamera(center math.Vec3, distance float32) *OrbitCamera {
	return &OrbitCamera{
		Center:      center,
		Distance:    distance,
		Pitch:       0.3,
		MinDistance: 1,
		MaxDistance: 1e6,
		MaxPitch:    1.5,
		YawSpeed:    0.05,
	}
}

// Update advances the scripted orbit.
func (c *OrbitCamera) Update(dt float32) {
	c.Yaw += c.YawSpeed * dt
	if c.Yaw > 2*gomath.Pi {
		c.Yaw -= 2 * gomath.Pi
	}
	c.Distance += c.DistanceSpeed * dt
	c.clamp()
}

func (c *OrbitCamera) clamp() {
	if c.Distance < c.MinDistance {
		c.Distance = c.MinDistance
	}
	if c.Distance > c.MaxDistance {
		c.Distance = c.MaxDistance
	}
	if c.Pitch > c.MaxPitch {
		c.Pitch = c.MaxPitch
	}
	if c.Pitch < -c.MaxPitch {
		c.Pitch = -c.MaxPitch
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	cp := gomath.Cos(float64(c.Pitch))
	offset := math.Vec3{
		X: c.Distance * float32(cp*gomath.Cos(float64(c.Yaw))),
		Y: c.Distance * float32(cp*gomath.Sin(float64(c.Yaw))),
		Z: c.Distance * float32(gomath.Sin(float64(c.Pitch))),
	}
	return c.Center.Add(offset)
}

// ViewMatrix returns the view matrix looking at the center.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, worldUp)
}

// HeightFunc returns the ground height at (x, y).
type HeightFunc func(x, y float32) float32

// FlyCamera travels in a straight line above a heightfield, keeping a
// fixed clearance over the ground below it.
type FlyCamera struct {
	Start     math.Vec3
	Direction math.Vec3 // Horizontal travel direction
	Speed     float32   // World units per second
	Clearance float32   // Height above ground
	LookAhead float32   // Distance to the look-at point
	Ground    HeightFunc

	travelled float32
	pos       math.Vec3
}

// NewFlyCamera creates a fly-over camera.
func NewFlyCamera(start, direction math.Vec3, speed, clearance float32, ground HeightFunc) *FlyCamera {
	direction.Z = 0
	c := &FlyCamera{
		Start:     start,
		Direction: direction.Normalize(),
		Speed:     speed,
		Clearance: clearance,
		LookAhead: 4 * clearance,
		Ground:    ground,
	}
	c.Update(0)
	return c
}

func (c *FlyCamera) groundAt(x, y float32) float32 {
	if c.Ground == nil {
		return 0
	}
	return c.Ground(x, y)
}

// Update advances along the path.
func (c *FlyCamera) Update(dt float32) {
	c.travelled += c.Speed * dt
	p := c.Start.Add(c.Direction.Scale(c.travelled))
	p.Z = c.groundAt(p.X, p.Y) + c.Clearance
	c.pos = p
}

// Position returns the camera position in world space.
func (c *FlyCamera) Position() math.Vec3 { return c.pos }

// Travelled returns the distance covered so far.
func (c *FlyCamera) Travelled() float32 { return c.travelled }

// ViewMatrix looks ahead and slightly down along the path.
func (c *FlyCamera) ViewMatrix() math.Mat4 {
	target := c.pos.Add(c.Direction.Scale(c.LookAhead))
	target.Z = c.groundAt(target.X, target.Y)
	return math.LookAt(c.pos, target, worldUp)
}
