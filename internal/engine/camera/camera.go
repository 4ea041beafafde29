// Package camera provides the viewer's fixed look-at camera.
package camera

import (
	gomath "math"

	"github.com/Faultbox/catenoid/pkg/math"
)

// Fixed looks from Eye at Target with a perspective projection.
// It never moves on its own; the scene animates in front of it.
type Fixed struct {
	Eye    math.Vec3
	Target math.Vec3
	Up     math.Vec3

	FovY float32 // Vertical field of view, degrees
	Near float32
	Far  float32
}

// NewFixed creates a camera on the +Z axis looking at the origin.
func NewFixed() *Fixed {
	return &Fixed{
		Eye:    math.Vec3{X: 0, Y: 0, Z: 10},
		Target: math.Vec3{},
		Up:     math.Vec3{X: 0, Y: 1, Z: 0},
		FovY:   45,
		Near:   0.1,
		Far:    100,
	}
}

// Position returns the camera position in world space.
func (c *Fixed) Position() math.Vec3 {
	return c.Eye
}

// ViewMatrix returns the view matrix for this camera.
func (c *Fixed) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Eye, c.Target, c.Up)
}

// ProjectionMatrix returns the perspective projection for a viewport aspect (width/height).
func (c *Fixed) ProjectionMatrix(aspect float32) math.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return math.Perspective(math.Radians(float64(c.FovY)), aspect, c.Near, c.Far)
}

// FitSphere moves the eye along its current viewing direction so a sphere of
// the given radius around center fills the vertical field of view.
// Near and far planes are moved to bracket the sphere.
func (c *Fixed) FitSphere(center math.Vec3, radius float32) {
	if radius <= 0 {
		return
	}

	dir := c.Eye.Sub(c.Target)
	if dir.Length() == 0 {
		dir = math.Vec3{X: 0, Y: 0, Z: 1}
	}
	dir = dir.Normalize()

	half := float64(math.Radians(float64(c.FovY))) / 2
	dist := radius / float32(gomath.Sin(half))

	c.Target = center
	c.Eye = center.Add(dir.Scale(dist))
	c.Near = max(dist-radius*1.5, 0.01)
	c.Far = dist + radius*1.5
}

// Bound returns the radius of a sphere around the origin that contains every
// point of the box [minP, maxP] after a shift of up to maxOffset in any
// direction followed by a scale of up to maxScale. Rotations about the origin
// keep the sphere unchanged.
func Bound(minP, maxP math.Vec3, maxScale, maxOffset float32) float32 {
	r := float32(0)
	for _, x := range [2]float32{minP.X, maxP.X} {
		for _, y := range [2]float32{minP.Y, maxP.Y} {
			for _, z := range [2]float32{minP.Z, maxP.Z} {
				r = max(r, math.Vec3{X: x, Y: y, Z: z}.Length())
			}
		}
	}
	return (r + maxOffset) * maxScale
}
