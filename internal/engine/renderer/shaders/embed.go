// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// SurfaceVertexShader transforms the morphing surface into clip space.
//
//go:embed surface.vert
var SurfaceVertexShader string

// SurfaceFragmentShader shades the surface with the gradient, glow and specular layers.
//
//go:embed surface.frag
var SurfaceFragmentShader string
