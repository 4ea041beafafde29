package app

import (
	"github.com/Faultbox/catenoid/internal/animation"
	"github.com/Faultbox/catenoid/internal/engine/camera"
	"github.com/Faultbox/catenoid/internal/surface"
	"github.com/Faultbox/catenoid/pkg/math"
)

// Rotations, scale and offset all pivot on the origin.
func sceneCenter() math.Vec3 {
	return math.Vec3{}
}

// sceneRadius bounds the surface for every morph parameter and transform.
// Morph points blend the two end shapes componentwise, so the union of
// their boxes contains every intermediate mesh.
func sceneRadius(gen *surface.Generator) float32 {
	minA, maxA := gen.Generate(0).Bounds()
	minB, maxB := gen.Generate(1).Bounds()

	minP := math.Vec3{X: min(minA.X, minB.X), Y: min(minA.Y, minB.Y), Z: min(minA.Z, minB.Z)}
	maxP := math.Vec3{X: max(maxA.X, maxB.X), Y: max(maxA.Y, maxB.Y), Z: max(maxA.Z, maxB.Z)}

	return camera.Bound(minP, maxP, animation.MaxScale, animation.MaxOffsetY)
}
