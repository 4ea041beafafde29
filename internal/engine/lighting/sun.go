// Package lighting describes the scene light.
package lighting

import (
	gomath "math"

	"github.com/Faultbox/catenoid/pkg/math"
)

// Light is a single directional light plus ambient fill.
type Light struct {
	Direction math.Vec3 // Direction the light travels
	Color     [3]float32
	Ambient   [3]float32
}

// SunDirection converts longitude/latitude angles in degrees to a unit vector
// pointing towards the sun. Longitude rotates around Y from +Z towards +X;
// latitude is elevation from the horizon.
func SunDirection(longitude, latitude float64) math.Vec3 {
	lon := longitude * gomath.Pi / 180.0
	lat := latitude * gomath.Pi / 180.0

	return math.V3(
		gomath.Cos(lat)*gomath.Sin(lon),
		gomath.Sin(lat),
		gomath.Cos(lat)*gomath.Cos(lon),
	)
}

// FromSun builds a light shining from the sun position given in degrees.
func FromSun(longitude, latitude float64, color, ambient [3]float32) Light {
	return Light{
		Direction: SunDirection(longitude, latitude).Scale(-1),
		Color:     color,
		Ambient:   ambient,
	}
}

// Default lights the surface from the upper left, slightly in front of the camera.
func Default() Light {
	return FromSun(-30, 50, [3]float32{0.9, 0.9, 0.9}, [3]float32{0.25, 0.25, 0.25})
}
