// Package renderer draws the morphing surface with OpenGL.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/catenoid/internal/engine/lighting"
	"github.com/Faultbox/catenoid/internal/engine/renderer/shaders"
	"github.com/Faultbox/catenoid/internal/engine/shader"
	"github.com/Faultbox/catenoid/internal/logger"
	"github.com/Faultbox/catenoid/internal/surface"
	"github.com/Faultbox/catenoid/pkg/color"
	"github.com/Faultbox/catenoid/pkg/math"
)

// MaxStops is the largest gradient the fragment shader accepts.
const MaxStops = 8

// Position (3) followed by texture coordinate (2).
const floatsPerVertex = 5

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	Background color.RGB
}

// View is the camera state for one draw.
type View struct {
	View       math.Mat4
	Projection math.Mat4
	Eye        math.Vec3
}

// Renderer owns the surface program and its buffers.
type Renderer struct {
	config Config
	light  lighting.Light
	log    *zap.Logger

	program  uint32
	uniforms map[string]int32

	vao, vbo, ebo uint32
	vertices      []float32
	vboBytes      int
	indexCount    int32
}

var uniformNames = []string{
	"uModel", "uView", "uProjection",
	"uStopColors", "uStopOffsets", "uStopCount",
	"uEmissive", "uSpecularColor", "uSpecularPower",
	"uLightDir", "uLightColor", "uAmbient", "uEye",
}

// New creates a renderer.
// It must be called after the OpenGL context exists, on the same thread.
func New(cfg Config, light lighting.Light) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
		light:  light,
		log:    logger.Named("renderer"),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	// Both faces are visible and lit, so no culling.
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Disable(gl.CULL_FACE)
	gl.Enable(gl.MULTISAMPLE)
	bg := cfg.Background.Vec3()
	gl.ClearColor(bg[0], bg[1], bg[2], 1.0)

	var err error
	r.program, err = shader.CompileProgram(shaders.SurfaceVertexShader, shaders.SurfaceFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("surface shader: %w", err)
	}
	r.uniforms, err = shader.Uniforms(r.program, uniformNames...)
	if err != nil {
		gl.DeleteProgram(r.program)
		return nil, fmt.Errorf("surface shader: %w", err)
	}

	gl.GenVertexArrays(1, &r.vao)
	gl.GenBuffers(1, &r.vbo)
	gl.GenBuffers(1, &r.ebo)

	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)

	stride := int32(floatsPerVertex * 4)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, stride, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)

	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

// Close releases GPU resources. Safe to call twice.
func (r *Renderer) Close() {
	if r == nil || r.program == 0 {
		return
	}
	r.log.Info("closing renderer")

	gl.DeleteVertexArrays(1, &r.vao)
	gl.DeleteBuffers(1, &r.vbo)
	gl.DeleteBuffers(1, &r.ebo)
	gl.DeleteProgram(r.program)
	r.vao, r.vbo, r.ebo, r.program = 0, 0, 0, 0
}

// Resize sets the viewport to the drawable size in pixels.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Aspect returns width/height of the viewport.
func (r *Renderer) Aspect() float32 {
	if r.config.Height == 0 {
		return 1
	}
	return float32(r.config.Width) / float32(r.config.Height)
}

// Upload replaces the surface geometry. Indices are only resent when their
// count changes since every mesh of a grid shares one triangulation.
func (r *Renderer) Upload(m *surface.Mesh) {
	r.vertices = interleave(r.vertices[:0], m)
	size := len(r.vertices) * 4

	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	if size > r.vboBytes {
		gl.BufferData(gl.ARRAY_BUFFER, size, gl.Ptr(r.vertices), gl.DYNAMIC_DRAW)
		r.vboBytes = size
	} else if size > 0 {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, size, gl.Ptr(r.vertices))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	if n := int32(len(m.Indices)); n != r.indexCount {
		gl.BindVertexArray(r.vao)
		if n > 0 {
			gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, int(n)*4, gl.Ptr(m.Indices), gl.STATIC_DRAW)
		}
		gl.BindVertexArray(0)
		r.indexCount = n
	}
}

// Begin clears the frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Draw renders the uploaded surface with the given material and model matrix.
func (r *Renderer) Draw(mat surface.Material, model math.Mat4, v View) {
	if r.indexCount == 0 {
		return
	}

	gl.UseProgram(r.program)

	gl.UniformMatrix4fv(r.uniforms["uModel"], 1, false, model.Ptr())
	gl.UniformMatrix4fv(r.uniforms["uView"], 1, false, v.View.Ptr())
	gl.UniformMatrix4fv(r.uniforms["uProjection"], 1, false, v.Projection.Ptr())

	u := materialUniforms(mat)
	gl.Uniform3fv(r.uniforms["uStopColors"], MaxStops, &u.stopColors[0])
	gl.Uniform1fv(r.uniforms["uStopOffsets"], MaxStops, &u.stopOffsets[0])
	gl.Uniform1i(r.uniforms["uStopCount"], u.stopCount)
	gl.Uniform3fv(r.uniforms["uEmissive"], 1, &u.emissive[0])
	gl.Uniform3fv(r.uniforms["uSpecularColor"], 1, &u.specular[0])
	gl.Uniform1f(r.uniforms["uSpecularPower"], u.power)

	dir := r.light.Direction.Array()
	eye := v.Eye.Array()
	gl.Uniform3fv(r.uniforms["uLightDir"], 1, &dir[0])
	gl.Uniform3fv(r.uniforms["uLightColor"], 1, &r.light.Color[0])
	gl.Uniform3fv(r.uniforms["uAmbient"], 1, &r.light.Ambient[0])
	gl.Uniform3fv(r.uniforms["uEye"], 1, &eye[0])

	gl.BindVertexArray(r.vao)
	gl.DrawElements(gl.TRIANGLES, r.indexCount, gl.UNSIGNED_INT, gl.PtrOffset(0))
	gl.BindVertexArray(0)
}

// ReadPixels reads the back buffer as tightly packed RGBA rows, bottom row first.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	if len(pixels) == 0 {
		return pixels, w, h
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels, w, h
}

// interleave packs positions and texture coordinates into dst.
func interleave(dst []float32, m *surface.Mesh) []float32 {
	for i, p := range m.Positions {
		var uv math.Vec2
		if i < len(m.TexCoords) {
			uv = m.TexCoords[i]
		}
		dst = append(dst, p.X, p.Y, p.Z, uv.X, uv.Y)
	}
	return dst
}

type shaderMaterial struct {
	stopColors  [MaxStops * 3]float32
	stopOffsets [MaxStops]float32
	stopCount   int32
	emissive    [3]float32
	specular    [3]float32
	power       float32
}

// materialUniforms flattens a material into shader uniform values.
// The emissive color is premultiplied by its alpha. Stops beyond MaxStops are dropped.
func materialUniforms(mat surface.Material) shaderMaterial {
	var u shaderMaterial

	stops := mat.Diffuse
	if len(stops) > MaxStops {
		stops = stops[:MaxStops]
	}
	for i, s := range stops {
		c := s.Color.Vec3()
		copy(u.stopColors[i*3:], c[:])
		u.stopOffsets[i] = float32(s.Offset)
	}
	u.stopCount = int32(len(stops))
	if u.stopCount == 0 {
		// A single black stop keeps the shader's lookups in range.
		u.stopCount = 1
	}

	glow := float32(mat.Emissive.Alpha) / 255
	e := mat.Emissive.Color.Vec3()
	u.emissive = [3]float32{e[0] * glow, e[1] * glow, e[2] * glow}
	u.specular = mat.Specular.Color.Vec3()
	u.power = float32(mat.Specular.Power)
	return u
}
