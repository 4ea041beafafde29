package animation

import (
	"context"
	"errors"
	gomath "math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/catenoid/internal/audio"
	"github.com/Faultbox/catenoid/internal/surface"
)

func TestAdvanceFirstTick(t *testing.T) {
	s, p := Advance(State{}, 0)

	assert.InDelta(t, 0.02, s.MorphPhase, 1e-12)
	assert.InDelta(t, 0.03, s.MovePhase, 1e-12)
	assert.InDelta(t, 0.002, s.ColorPhase, 1e-12)
	assert.Equal(t, 0.0, s.SmoothBeat)

	assert.InDelta(t, (gomath.Sin(0.02)+1)/2, p.T, 1e-12)
	assert.InDelta(t, 0.5*gomath.Sin(0.03), p.Transform.OffsetY, 1e-12)
	assert.InDelta(t, 0.5+2*gomath.Abs(gomath.Sin(0.01)), s.AngleX, 1e-12)
	assert.InDelta(t, 1+3*gomath.Abs(gomath.Cos(0.006)), s.AngleY, 1e-12)
	assert.InDelta(t, 1+0.05*gomath.Sin(0.04), p.Transform.Scale, 1e-12)
	assert.False(t, p.Snapped)
}

func TestSmoothBeatConverges(t *testing.T) {
	var s State
	// 0.1 * 10 saturates rawBeat at 1; louder input stays clamped.
	for _, level := range []float32{0.1, 5} {
		s = State{}
		for range 20 {
			s, _ = Advance(s, level)
		}
		assert.Greater(t, s.SmoothBeat, 0.98)
		assert.LessOrEqual(t, s.SmoothBeat, 1.0)
	}
}

func TestSmoothBeatDecays(t *testing.T) {
	s := State{SmoothBeat: 1}
	prev := s.SmoothBeat
	for range 200 {
		s, _ = Advance(s, 0)
		require.GreaterOrEqual(t, s.SmoothBeat, 0.0)
		require.Less(t, s.SmoothBeat, prev)
		prev = s.SmoothBeat
	}
	assert.Less(t, s.SmoothBeat, 1e-6)
}

func TestSmoothBeatIgnoresBadLevels(t *testing.T) {
	for _, level := range []float32{-3, float32(gomath.NaN())} {
		s, p := Advance(State{SmoothBeat: 0.5}, level)
		assert.InDelta(t, 0.4, s.SmoothBeat, 1e-12)
		assert.False(t, gomath.IsNaN(p.T))
	}
}

func TestMorphParameterClamped(t *testing.T) {
	// After the step sin(morphPhase) is 1 and the beat is 1: unclamped t would be 1.12.
	s := State{MorphPhase: gomath.Pi/2 - morphStep, SmoothBeat: 1}
	_, p := Advance(s, 1)
	assert.Equal(t, 1.0, p.T)

	// With silence the trough reaches exactly 0.
	s = State{MorphPhase: 3*gomath.Pi/2 - morphStep}
	_, p = Advance(s, 0)
	assert.InDelta(t, 0.0, p.T, 1e-12)
	assert.GreaterOrEqual(t, p.T, 0.0)
}

func TestMorphParameterAlwaysInRange(t *testing.T) {
	var s State
	var p Params
	levels := []float32{0, 0.02, 0.5, 1, 0.07}
	for i := range 5000 {
		s, p = Advance(s, levels[i%len(levels)])
		require.GreaterOrEqual(t, p.T, 0.0)
		require.LessOrEqual(t, p.T, 1.0)
	}
}

func TestAnglesWrap(t *testing.T) {
	var s State
	var p Params
	for i := range 2000 {
		level := float32(i%7) * 0.03
		s, p = Advance(s, level)
		require.GreaterOrEqual(t, s.AngleX, 0.0)
		require.Less(t, s.AngleX, 360.0)
		require.GreaterOrEqual(t, s.AngleY, 0.0)
		require.Less(t, s.AngleY, 360.0)
		require.Equal(t, s.AngleX, p.Transform.AngleX)
		require.Equal(t, s.AngleY, p.Transform.AngleY)
	}
}

func TestSnapKick(t *testing.T) {
	// Land exactly on the peak: |sin| = 1 > 0.95.
	start := State{MorphPhase: gomath.Pi/2 - morphStep, AngleY: 10, SmoothBeat: 0.5}
	s, p := Advance(start, 0.05)
	require.True(t, p.Snapped)

	beat := 0.8*0.5 + 0.2*0.5
	speedY := (1 + 3*gomath.Abs(gomath.Cos(gomath.Pi/2*0.3))) * (1 + beat*0.6)
	kick := 15 * (1 + beat*0.5)
	assert.InDelta(t, 10+speedY+kick, s.AngleY, 1e-9)
}

func TestSnapKickFiresEveryTickInBand(t *testing.T) {
	// sin stays above 0.95 for roughly +/-0.3 rad around the peak, about 31 ticks.
	s := State{MorphPhase: gomath.Pi / 4}
	var snaps, runs int
	inRun := false
	for range 400 {
		var p Params
		s, p = Advance(s, 0)
		if p.Snapped {
			snaps++
			if !inRun {
				runs++
			}
		}
		inRun = p.Snapped
	}
	assert.Greater(t, snaps, 20*runs)
	assert.GreaterOrEqual(t, runs, 2)
}

func TestAdvanceDeterministic(t *testing.T) {
	a, b := State{}, State{}
	var pa, pb Params
	for i := range 300 {
		level := float32(i%5) * 0.01
		a, pa = Advance(a, level)
		b, pb = Advance(b, level)
	}
	assert.Equal(t, a, b)
	assert.Equal(t, pa, pb)
}

func TestTransformMatrixOrder(t *testing.T) {
	tr := Transform{AngleX: 90, AngleY: 90, OffsetY: 0.5, Scale: 2}
	got := tr.Matrix().TransformPoint([3]float32{0, 1, 0})

	// Rotate X by 90: (0,1,0) -> (0,0,1). Rotate Y by 90: (0,0,1) -> (1,0,0).
	// Translate: (1,0.5,0). Scale: (2,1,0).
	assert.InDelta(t, 2, got[0], 1e-5)
	assert.InDelta(t, 1, got[1], 1e-5)
	assert.InDelta(t, 0, got[2], 1e-5)
}

func TestIdentityTransform(t *testing.T) {
	got := Identity().Matrix().TransformPoint([3]float32{1, 2, 3})
	assert.InDelta(t, 1, got[0], 1e-6)
	assert.InDelta(t, 2, got[1], 1e-6)
	assert.InDelta(t, 3, got[2], 1e-6)
}

type recordingHost struct {
	frames []Frame
	stopAt int
	err    error
}

func (h *recordingHost) Present(f Frame) error {
	h.frames = append(h.frames, f)
	if h.err != nil {
		return h.err
	}
	if h.stopAt > 0 && len(h.frames) >= h.stopAt {
		return ErrStop
	}
	return nil
}

func newTestDriver(t *testing.T, level LevelSource) *Driver {
	t.Helper()
	gen, err := surface.NewGenerator(surface.Grid{U: 8, V: 6, A: 0.6, Height: 2.4})
	require.NoError(t, err)
	return NewDriver(gen, level)
}

func TestDriverInitialFrame(t *testing.T) {
	var level audio.Level
	d := newTestDriver(t, &level)

	f := d.Initial()
	assert.Equal(t, uint64(0), f.Tick)
	assert.Equal(t, 0.0, f.T)
	assert.Equal(t, Identity(), f.Transform)
	assert.Equal(t, uint8(surface.GlowBase), f.Material.Emissive.Alpha)
	assert.Len(t, f.Mesh.Positions, 9*7)
}

func TestDriverReadsLatestLevel(t *testing.T) {
	var level audio.Level
	d := newTestDriver(t, &level)

	d.Tick()
	assert.Equal(t, 0.0, d.State().SmoothBeat)

	level.Store(0.1)
	f := d.Tick()
	assert.InDelta(t, 0.2, d.State().SmoothBeat, 1e-12)
	assert.InDelta(t, 0.2, f.Beat, 1e-12)
	assert.Equal(t, uint64(2), f.Tick)
	assert.Equal(t, uint64(2), d.Ticks())
	assert.Equal(t, surface.BuildMaterial(0.004, 0.2), f.Material)
}

func TestDriverSilentAudio(t *testing.T) {
	var level audio.Level
	d := newTestDriver(t, &level)

	var f Frame
	for range 500 {
		f = d.Tick()
		require.Equal(t, uint8(surface.GlowBase), f.Material.Emissive.Alpha)
		require.Equal(t, surface.ShininessBase, f.Material.Specular.Power)
	}
	assert.InDelta(t, 0.5*gomath.Sin(500*0.03), f.Transform.OffsetY, 1e-9)
}

func TestDriverMatchesAdvance(t *testing.T) {
	var level audio.Level
	level.Store(0.04)
	d := newTestDriver(t, &level)

	var s State
	var p Params
	for range 50 {
		s, p = Advance(s, 0.04)
		f := d.Tick()
		require.Equal(t, p.T, f.T)
		require.Equal(t, p.Transform, f.Transform)
	}
	assert.Equal(t, s, d.State())
}

func TestRunPresentsEveryTick(t *testing.T) {
	var level audio.Level
	d := newTestDriver(t, &level)
	host := &recordingHost{}

	ticks := make(chan time.Time, 3)
	for range 3 {
		ticks <- time.Now()
	}
	close(ticks)

	require.NoError(t, d.Run(context.Background(), ticks, host))
	require.Len(t, host.frames, 4)
	for i, f := range host.frames {
		assert.Equal(t, uint64(i), f.Tick)
	}
}

func TestRunStopsOnErrStop(t *testing.T) {
	var level audio.Level
	d := newTestDriver(t, &level)
	host := &recordingHost{stopAt: 2}

	ticks := make(chan time.Time, 5)
	for range 5 {
		ticks <- time.Now()
	}

	require.NoError(t, d.Run(context.Background(), ticks, host))
	assert.Len(t, host.frames, 2)
	assert.Equal(t, uint64(1), d.Ticks())
}

func TestRunPropagatesHostError(t *testing.T) {
	var level audio.Level
	d := newTestDriver(t, &level)
	boom := errors.New("boom")

	err := d.Run(context.Background(), make(chan time.Time), &recordingHost{err: boom})
	assert.ErrorIs(t, err, boom)
}

func TestRunContextCancel(t *testing.T) {
	var level audio.Level
	d := newTestDriver(t, &level)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.Run(ctx, make(chan time.Time), &recordingHost{})
	assert.ErrorIs(t, err, context.Canceled)
}

func BenchmarkTick(b *testing.B) {
	gen, err := surface.NewGenerator(surface.DefaultGrid())
	if err != nil {
		b.Fatal(err)
	}
	var level audio.Level
	level.Store(0.05)
	d := NewDriver(gen, &level)
	for i := 0; i < b.N; i++ {
		d.Tick()
	}
}
