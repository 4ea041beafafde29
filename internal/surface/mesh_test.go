package surface

import (
	"bytes"
	gomath "math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/catenoid/pkg/color"
)

func TestMorphPointEndpoints(t *testing.T) {
	const a = 0.6
	samples := []struct{ theta, z float64 }{
		{0, 0},
		{gomath.Pi / 3, 0.7},
		{gomath.Pi, -1.2},
		{2 * gomath.Pi, 1.2},
	}

	for _, s := range samples {
		rc := a * gomath.Cosh(s.z/a)
		x, y, z := MorphPoint(s.theta, s.z, a, 0)
		assert.InDelta(t, rc*gomath.Cos(s.theta), x, 1e-12)
		assert.InDelta(t, rc*gomath.Sin(s.theta), y, 1e-12)
		assert.InDelta(t, s.z, z, 1e-12)

		x, y, z = MorphPoint(s.theta, s.z, a, 1)
		assert.InDelta(t, s.z*gomath.Cos(s.theta), x, 1e-12)
		assert.InDelta(t, s.z*gomath.Sin(s.theta), y, 1e-12)
		assert.InDelta(t, a*s.theta*0.2, z, 1e-12)
	}
}

func TestMorphPointMidpoint(t *testing.T) {
	const a = 0.6
	theta, z := 1.0, 0.5

	xc, yc, zc := Catenoid(theta, z, a)
	xh, yh, zh := Helicoid(theta, z, a)
	x, y, zz := MorphPoint(theta, z, a, 0.5)

	assert.InDelta(t, (xc+xh)/2, x, 1e-12)
	assert.InDelta(t, (yc+yh)/2, y, 1e-12)
	assert.InDelta(t, (zc+zh)/2, zz, 1e-12)
}

func TestGenerateCounts(t *testing.T) {
	gen, err := NewGenerator(DefaultGrid())
	require.NoError(t, err)

	mesh := gen.Generate(0.5)
	assert.Len(t, mesh.Positions, 73*57)
	assert.Len(t, mesh.TexCoords, len(mesh.Positions))
	assert.Len(t, mesh.Indices, 6*72*56)
	assert.Equal(t, 4161, len(mesh.Positions))
	assert.Equal(t, 8064, len(mesh.Indices)/3)

	for i, idx := range mesh.Indices {
		if int(idx) >= len(mesh.Positions) {
			t.Fatalf("index %d = %d out of range [0,%d)", i, idx, len(mesh.Positions))
		}
	}
}

func TestTriangulateWinding(t *testing.T) {
	const u, v = 5, 4
	indices := Triangulate(u, v)
	require.Len(t, indices, 6*u*v)

	cell := func(col, row int) []uint32 {
		i0 := uint32(row*(u+1) + col)
		i1 := i0 + 1
		i2 := i0 + u + 1
		i3 := i2 + 1
		return []uint32{i0, i2, i1, i1, i2, i3}
	}

	assert.Equal(t, cell(0, 0), indices[0:6])

	last := len(indices) - 6
	assert.Equal(t, cell(u-1, v-1), indices[last:])
}

func TestGenerateTexCoords(t *testing.T) {
	grid := Grid{U: 4, V: 2, A: 0.6, Height: 2.4}
	gen, err := NewGenerator(grid)
	require.NoError(t, err)

	mesh := gen.Generate(0)
	assert.Equal(t, float32(0), mesh.TexCoords[0].X)
	assert.Equal(t, float32(0), mesh.TexCoords[0].Y)

	lastUV := mesh.TexCoords[len(mesh.TexCoords)-1]
	assert.Equal(t, float32(1), lastUV.X)
	assert.Equal(t, float32(1), lastUV.Y)

	// Row 1, column 2 sits at (0.5, 0.5).
	mid := mesh.TexCoords[1*(grid.U+1)+2]
	assert.InDelta(t, 0.5, mid.X, 1e-6)
	assert.InDelta(t, 0.5, mid.Y, 1e-6)
}

func TestGenerateSeamNotMerged(t *testing.T) {
	grid := DefaultGrid()
	gen, err := NewGenerator(grid)
	require.NoError(t, err)

	// On the catenoid the first and last columns coincide in space but stay distinct vertices.
	mesh := gen.Generate(0)
	for row := 0; row <= grid.V; row++ {
		first := mesh.Positions[row*(grid.U+1)]
		last := mesh.Positions[row*(grid.U+1)+grid.U]
		assert.InDelta(t, first.X, last.X, 1e-5)
		assert.InDelta(t, first.Y, last.Y, 1e-5)
		assert.InDelta(t, first.Z, last.Z, 1e-5)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	gen, err := NewGenerator(DefaultGrid())
	require.NoError(t, err)

	a := gen.Generate(0.37)
	b := gen.Generate(0.37)
	assert.Equal(t, a, b)
}

func TestGenerateCatenoidExtent(t *testing.T) {
	grid := DefaultGrid()
	gen, err := NewGenerator(grid)
	require.NoError(t, err)

	mesh := gen.Generate(0)
	minP, maxP := mesh.Bounds()

	assert.InDelta(t, -grid.Height/2, minP.Z, 1e-5)
	assert.InDelta(t, grid.Height/2, maxP.Z, 1e-5)

	rim := grid.A * gomath.Cosh(grid.Height/2/grid.A)
	assert.InDelta(t, rim, maxP.X, 1e-4)
}

func TestGridValidate(t *testing.T) {
	tests := []struct {
		name string
		grid Grid
		ok   bool
	}{
		{"default", DefaultGrid(), true},
		{"zero u", Grid{U: 0, V: 4, A: 1, Height: 1}, false},
		{"negative v", Grid{U: 4, V: -1, A: 1, Height: 1}, false},
		{"zero waist", Grid{U: 4, V: 4, A: 0, Height: 1}, false},
		{"zero height", Grid{U: 4, V: 4, A: 1, Height: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.grid.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}

	_, err := NewGenerator(Grid{})
	assert.Error(t, err)
}

func TestBuildMaterial(t *testing.T) {
	m := BuildMaterial(0, 0)
	require.Len(t, m.Diffuse, 6)
	assert.Equal(t, Rainbow(), m.Diffuse)
	assert.Equal(t, uint8(60), m.Emissive.Alpha)
	assert.Equal(t, color.White, m.Emissive.Color)
	assert.Equal(t, 40.0, m.Specular.Power)

	m = BuildMaterial(0, 1)
	assert.Equal(t, uint8(210), m.Emissive.Alpha)
	assert.Equal(t, 100.0, m.Specular.Power)

	m = BuildMaterial(0, 0.5)
	assert.Equal(t, uint8(135), m.Emissive.Alpha)
	assert.Equal(t, 70.0, m.Specular.Power)
}

func TestBuildMaterialDrift(t *testing.T) {
	// colorPhase 5/3 shifts the first stop by a third of a turn and the last by a sixth.
	m := BuildMaterial(5.0/3, 0)

	first := m.Diffuse[0].Color
	assert.InDelta(t, 255, float64(first.R), 1)
	assert.InDelta(t, 0, float64(first.G), 1)
	assert.InDelta(t, 0, float64(first.B), 1)

	last := m.Diffuse[5].Color
	assert.InDelta(t, 255, float64(last.R), 1)
	assert.InDelta(t, 255, float64(last.G), 1)
	assert.InDelta(t, 0, float64(last.B), 1)

	// Inner stops and offsets never move.
	base := Rainbow()
	for i := 1; i < 5; i++ {
		assert.Equal(t, base[i], m.Diffuse[i])
	}
	for i := range m.Diffuse {
		assert.Equal(t, base[i].Offset, m.Diffuse[i].Offset)
	}
}

func TestWriteOBJ(t *testing.T) {
	gen, err := NewGenerator(Grid{U: 3, V: 2, A: 0.6, Height: 2.4})
	require.NoError(t, err)
	mesh := gen.Generate(0.25)

	var buf bytes.Buffer
	require.NoError(t, WriteOBJ(&buf, mesh))

	var v, vt, f int
	for _, line := range strings.Split(buf.String(), "\n") {
		switch {
		case strings.HasPrefix(line, "v "):
			v++
		case strings.HasPrefix(line, "vt "):
			vt++
		case strings.HasPrefix(line, "f "):
			f++
		}
	}
	assert.Equal(t, 12, v)
	assert.Equal(t, 12, vt)
	assert.Equal(t, 12, f)
	assert.Contains(t, buf.String(), "f 1/1 5/5 2/2\n")
}

func TestWriteOBJBadIndices(t *testing.T) {
	err := WriteOBJ(&bytes.Buffer{}, &Mesh{Indices: []uint32{0, 1}})
	assert.Error(t, err)
}

func BenchmarkGenerate(b *testing.B) {
	gen, err := NewGenerator(DefaultGrid())
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < b.N; i++ {
		gen.Generate(float64(i%100) / 100)
	}
}
