// Package surface builds the catenoid/helicoid morph mesh and its material.
package surface

import (
	"errors"
	gomath "math"

	"github.com/Faultbox/catenoid/pkg/math"
)

// Grid holds the fixed sampling resolution and shape constants.
type Grid struct {
	U      int     // Angular segments
	V      int     // Longitudinal segments
	A      float64 // Catenoid waist radius
	Height float64 // Extent along the symmetry axis
}

// DefaultGrid returns the standard resolution: 72x56 segments, waist 0.6, height 2.4.
func DefaultGrid() Grid {
	return Grid{
		U:      72,
		V:      56,
		A:      0.6,
		Height: 2.4,
	}
}

// Validate reports whether the grid can produce a mesh.
func (g Grid) Validate() error {
	if g.U <= 0 || g.V <= 0 {
		return errors.New("grid segments must be positive")
	}
	if g.A <= 0 {
		return errors.New("waist radius must be positive")
	}
	if g.Height <= 0 {
		return errors.New("height must be positive")
	}
	return nil
}

// VertexCount returns (U+1)*(V+1).
func (g Grid) VertexCount() int {
	return (g.U + 1) * (g.V + 1)
}

// IndexCount returns 6*U*V (two triangles per cell).
func (g Grid) IndexCount() int {
	return 6 * g.U * g.V
}

// Mesh holds the generated surface ready for GPU upload.
// Positions and TexCoords are parallel slices.
type Mesh struct {
	Positions []math.Vec3
	TexCoords []math.Vec2
	Indices   []uint32
}

// Catenoid returns the catenoid point for angle theta at height z.
func Catenoid(theta, z, a float64) (x, y, zz float64) {
	rc := a * gomath.Cosh(z/a)
	return rc * gomath.Cos(theta), rc * gomath.Sin(theta), z
}

// Helicoid returns the helicoid point for angle theta at height z.
// The helicoid pitch is a*0.2 per radian.
func Helicoid(theta, z, a float64) (x, y, zz float64) {
	return z * gomath.Cos(theta), z * gomath.Sin(theta), a * theta * 0.2
}

// MorphPoint blends catenoid (t=0) and helicoid (t=1) componentwise.
func MorphPoint(theta, z, a, t float64) (x, y, zz float64) {
	xc, yc, zc := Catenoid(theta, z, a)
	xh, yh, zh := Helicoid(theta, z, a)

	x = (1-t)*xc + t*xh
	y = (1-t)*yc + t*yh
	zz = (1-t)*zc + t*zh
	return x, y, zz
}

// Triangulate emits two triangles per grid cell with fixed winding
// (i0,i2,i1) and (i1,i2,i3). The seam column is not merged.
func Triangulate(u, v int) []uint32 {
	indices := make([]uint32, 0, 6*u*v)
	stride := uint32(u + 1)

	for row := range v {
		for col := range u {
			i0 := uint32(row)*stride + uint32(col)
			i1 := i0 + 1
			i2 := i0 + stride
			i3 := i2 + 1

			indices = append(indices,
				i0, i2, i1,
				i1, i2, i3,
			)
		}
	}
	return indices
}

// Generator builds meshes for a fixed grid.
type Generator struct {
	grid Grid
}

// NewGenerator creates a generator for the given grid.
func NewGenerator(grid Grid) (*Generator, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	return &Generator{grid: grid}, nil
}

// Grid returns the generator's grid.
func (g *Generator) Grid() Grid {
	return g.grid
}

// Generate builds a fresh mesh for morph parameter t.
// The result depends only on the grid and t.
func (g *Generator) Generate(t float64) *Mesh {
	grid := g.grid
	mesh := &Mesh{
		Positions: make([]math.Vec3, 0, grid.VertexCount()),
		TexCoords: make([]math.Vec2, 0, grid.VertexCount()),
	}

	for v := 0; v <= grid.V; v++ {
		fv := float64(v) / float64(grid.V)
		z := grid.Height * (fv - 0.5)

		for u := 0; u <= grid.U; u++ {
			fu := float64(u) / float64(grid.U)
			theta := 2.0 * gomath.Pi * fu

			mesh.Positions = append(mesh.Positions, math.V3(MorphPoint(theta, z, grid.A, t)))
			mesh.TexCoords = append(mesh.TexCoords, math.V2(fu, fv))
		}
	}

	mesh.Indices = Triangulate(grid.U, grid.V)
	return mesh
}

// Bounds returns the axis-aligned bounding box of the mesh positions.
func (m *Mesh) Bounds() (minP, maxP math.Vec3) {
	if len(m.Positions) == 0 {
		return minP, maxP
	}
	minP, maxP = m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		minP.X = min(minP.X, p.X)
		minP.Y = min(minP.Y, p.Y)
		minP.Z = min(minP.Z, p.Z)
		maxP.X = max(maxP.X, p.X)
		maxP.Y = max(maxP.Y, p.Y)
		maxP.Z = max(maxP.Z, p.Z)
	}
	return minP, maxP
}
