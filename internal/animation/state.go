// Package animation advances the morph, motion and color phases once per tick
// and turns the smoothed audio level into frame parameters.
package animation

import "math"

// Per-tick constants.
const (
	audioGain    = 10.0
	beatKeep     = 0.8
	beatTake     = 0.2
	morphStep    = 0.02
	moveStep     = 0.03
	colorStep    = 0.002
	morphBoost   = 0.12
	moveAmp      = 0.5
	moveBoost    = 0.25
	snapBand     = 0.95
	snapDegrees  = 15.0
	scalePulse   = 0.05
	scaleBoost   = 0.15
	fullTurnDegs = 360.0
)

// Transform envelope over any input, for framing the scene.
const (
	MaxScale   = 1 + scalePulse + scaleBoost
	MaxOffsetY = moveAmp + moveBoost
)

// State is the mutable animation state owned by the tick loop.
// Angles are in degrees and stay within [0,360); phases grow without bound.
type State struct {
	AngleX     float64
	AngleY     float64
	MorphPhase float64
	MovePhase  float64
	ColorPhase float64
	SmoothBeat float64
}

// Params are the values derived from one tick.
type Params struct {
	T          float64 // Morph parameter, 0 = catenoid, 1 = helicoid
	Transform  Transform
	ColorPhase float64
	Beat       float64
	Snapped    bool // The morph-extreme kick fired this tick
}

// Advance runs one tick of the animation for the given raw audio level.
// It is pure: the same state and level always produce the same result.
func Advance(s State, level float32) (State, Params) {
	rawBeat := math.Min(float64(level)*audioGain, 1)
	if !(rawBeat >= 0) {
		rawBeat = 0
	}
	s.SmoothBeat = beatKeep*s.SmoothBeat + beatTake*rawBeat
	beat := s.SmoothBeat

	s.MorphPhase += morphStep
	s.MovePhase += moveStep
	s.ColorPhase += colorStep

	sinMorph := math.Sin(s.MorphPhase)
	t := clamp((sinMorph+1)/2+beat*morphBoost, 0, 1)

	offsetY := moveAmp*math.Sin(s.MovePhase) + beat*moveBoost

	speedX := (0.5 + 2.0*math.Abs(math.Sin(s.MorphPhase*0.5))) * (1 + beat*0.4)
	speedY := (1.0 + 3.0*math.Abs(math.Cos(s.MorphPhase*0.3))) * (1 + beat*0.6)

	s.AngleX = wrapDegrees(s.AngleX + speedX)
	angleY := s.AngleY + speedY

	// Kick on every tick spent near a morph extreme, not once per crossing.
	snapped := math.Abs(sinMorph) > snapBand
	if snapped {
		angleY += snapDegrees * (1 + beat*0.5)
	}
	s.AngleY = wrapDegrees(angleY)

	scale := 1.0 + scalePulse*math.Sin(s.MorphPhase*2) + scaleBoost*beat

	return s, Params{
		T: t,
		Transform: Transform{
			AngleX:  s.AngleX,
			AngleY:  s.AngleY,
			OffsetY: offsetY,
			Scale:   scale,
		},
		ColorPhase: s.ColorPhase,
		Beat:       beat,
		Snapped:    snapped,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func wrapDegrees(a float64) float64 {
	a = math.Mod(a, fullTurnDegs)
	if a < 0 {
		a += fullTurnDegs
	}
	return a
}
