package surface

import "github.com/Faultbox/catenoid/pkg/color"

// GradientStop is one color stop of the diffuse gradient.
type GradientStop struct {
	Color  color.RGB
	Offset float64
}

// Emissive is a glow layer. Alpha scales the white light added on top of the diffuse term.
type Emissive struct {
	Color color.RGB
	Alpha uint8
}

// Specular is a highlight layer.
type Specular struct {
	Color color.RGB
	Power float64
}

// Material is the layered surface material, applied identically to front and back faces.
// The gradient runs diagonally across texture space from UV (0,0) to (1,1).
type Material struct {
	Diffuse  []GradientStop
	Emissive Emissive
	Specular Specular
}

// Material layer constants.
const (
	GlowBase      = 60
	GlowRange     = 150
	ShininessBase = 40.0
	ShininessMax  = 60.0

	firstStopDrift = 0.2
	lastStopDrift  = 0.1
)

// Rainbow returns the base six-stop gradient, blue through red.
func Rainbow() []GradientStop {
	return []GradientStop{
		{color.Blue, 0.0},
		{color.Cyan, 0.2},
		{color.Green, 0.4},
		{color.Yellow, 0.6},
		{color.Orange, 0.8},
		{color.Red, 1.0},
	}
}

// BuildMaterial derives the material from the color phase and smoothed beat.
// The end stops drift in hue with colorPhase; glow and shininess grow with beat.
func BuildMaterial(colorPhase, beat float64) Material {
	stops := Rainbow()
	last := len(stops) - 1
	stops[0].Color = color.ShiftHue(stops[0].Color, colorPhase*firstStopDrift)
	stops[last].Color = color.ShiftHue(stops[last].Color, colorPhase*lastStopDrift)

	return Material{
		Diffuse: stops,
		Emissive: Emissive{
			Color: color.White,
			Alpha: glowAlpha(beat),
		},
		Specular: Specular{
			Color: color.White,
			Power: ShininessBase + ShininessMax*beat,
		},
	}
}

// glowAlpha truncates 60+150*beat into a byte.
func glowAlpha(beat float64) uint8 {
	a := GlowBase + GlowRange*beat
	if a <= 0 {
		return 0
	}
	if a >= 255 {
		return 255
	}
	return uint8(a)
}
