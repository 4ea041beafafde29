package surface

import (
	"bufio"
	"fmt"
	"io"
)

// WriteOBJ writes the mesh as a Wavefront OBJ with positions, texture
// coordinates and triangle faces. OBJ indices are 1-based.
func WriteOBJ(w io.Writer, m *Mesh) error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("index count %d is not a multiple of 3", len(m.Indices))
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# catenoid morph: %d vertices, %d triangles\n", len(m.Positions), len(m.Indices)/3)

	for _, p := range m.Positions {
		fmt.Fprintf(bw, "v %.6f %.6f %.6f\n", p.X, p.Y, p.Z)
	}
	for _, uv := range m.TexCoords {
		fmt.Fprintf(bw, "vt %.6f %.6f\n", uv.X, uv.Y)
	}
	for i := 0; i < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i]+1, m.Indices[i+1]+1, m.Indices[i+2]+1
		fmt.Fprintf(bw, "f %d/%d %d/%d %d/%d\n", a, a, b, b, c, c)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing obj: %w", err)
	}
	return nil
}
