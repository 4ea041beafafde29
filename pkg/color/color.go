// Package color provides 8-bit RGB colors and HSV conversion for material gradients.
package color

import "math"

// RGB is an opaque color with 8-bit channels.
type RGB struct {
	R, G, B uint8
}

// Named colors used by the surface gradient.
var (
	Blue   = RGB{0, 0, 255}
	Cyan   = RGB{0, 255, 255}
	Green  = RGB{0, 128, 0}
	Yellow = RGB{255, 255, 0}
	Orange = RGB{255, 165, 0}
	Red    = RGB{255, 0, 0}
	White  = RGB{255, 255, 255}
)

// Vec3 returns the color as normalized float components (0.0 to 1.0).
func (c RGB) Vec3() [3]float32 {
	return [3]float32{
		float32(c.R) / 255.0,
		float32(c.G) / 255.0,
		float32(c.B) / 255.0,
	}
}

// ToHSV converts c to hue, saturation and value, all in [0,1].
// Hue is in [0,1); achromatic colors report hue 0.
func ToHSV(c RGB) (h, s, v float64) {
	r := float64(c.R) / 255.0
	g := float64(c.G) / 255.0
	b := float64(c.B) / 255.0

	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	delta := maxC - minC

	if delta != 0 {
		switch maxC {
		case r:
			h = (g - b) / delta
		case g:
			h = 2 + (b-r)/delta
		default:
			h = 4 + (r-g)/delta
		}
		h /= 6
		if h < 0 {
			h++
		}
	}

	if maxC != 0 {
		s = delta / maxC
	}
	v = maxC
	return h, s, v
}

// FromHSV converts hue, saturation and value back to RGB.
// Channels are truncated, not rounded, when scaled to 0-255.
func FromHSV(h, s, v float64) RGB {
	i := int(math.Floor(h * 6))
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch ((i % 6) + 6) % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	case 5:
		r, g, b = v, p, q
	}

	return RGB{toByte(r), toByte(g), toByte(b)}
}

// ShiftHue rotates the hue of c by shift turns, wrapping into [0,1).
func ShiftHue(c RGB, shift float64) RGB {
	h, s, v := ToHSV(c)
	h = math.Mod(h+shift, 1.0)
	if h < 0 {
		h++
	}
	return FromHSV(h, s, v)
}

func toByte(x float64) uint8 {
	x *= 255
	if x <= 0 {
		return 0
	}
	if x >= 255 {
		return 255
	}
	return uint8(x)
}
