// Package lighting provides the light set shared by terrain shaders.
package lighting

import (
	"math"

	lmath "github.com/Faultbox/planetlod/pkg/math"
)

// SunDirection converts longitude/latitude angles in degrees to the
// direction the sunlight travels. Longitude rotates around Z (up),
// latitude is elevation above the horizon.
func SunDirection(longitude, latitude float32) lmath.Vec3 {
	lonRad := float64(longitude) * math.Pi / 180.0
	latRad := float64(latitude) * math.Pi / 180.0

	// Spherical to Cartesian, pointing from the sun towards the ground
	toSun := lmath.Vec3{
		X: float32(math.Cos(latRad) * math.Cos(lonRad)),
		Y: float32(math.Cos(latRad) * math.Sin(lonRad)),
		Z: float32(math.Sin(latRad)),
	}
	return toSun.Neg()
}
