package animation

import "github.com/Faultbox/catenoid/pkg/math"

// Transform places the surface in the scene.
type Transform struct {
	AngleX  float64 // Degrees around X
	AngleY  float64 // Degrees around Y
	OffsetY float64
	Scale   float64
}

// Identity is the transform of the first frame.
func Identity() Transform {
	return Transform{Scale: 1}
}

// Matrix composes the model matrix. Points are rotated about X, then about Y,
// then translated, then scaled uniformly, so the offset is scaled as well.
func (t Transform) Matrix() math.Mat4 {
	s := float32(t.Scale)
	return math.Chain(
		math.RotateX(math.Radians(t.AngleX)),
		math.RotateY(math.Radians(t.AngleY)),
		math.Translate(0, float32(t.OffsetY), 0),
		math.Scale(s, s, s),
	)
}
