package math

// Vec2 is a 2D vector, used for texture coordinates.
type Vec2 struct {
	X, Y float32
}

// V2 builds a Vec2 from float64 components.
func V2(x, y float64) Vec2 {
	return Vec2{float32(x), float32(y)}
}
