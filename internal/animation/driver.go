package animation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/catenoid/internal/logger"
	"github.com/Faultbox/catenoid/internal/surface"
)

// DefaultTickPeriod is the fixed tick interval the animation constants are tuned for.
const DefaultTickPeriod = 30 * time.Millisecond

// ErrStop is returned by a Host to end Run without error.
var ErrStop = errors.New("animation: stop requested")

// LevelSource provides the latest raw audio level. Reads never block.
type LevelSource interface {
	Load() float32
}

// Frame is everything the rendering host needs for one tick.
type Frame struct {
	Tick      uint64
	T         float64
	Beat      float64
	Mesh      *surface.Mesh
	Material  surface.Material
	Transform Transform
}

// Host draws frames. Present is called on the tick goroutine.
type Host interface {
	Present(Frame) error
}

// Driver owns the animation state and rebuilds the surface every tick.
// It is not safe for concurrent use; only the level is shared with other goroutines.
type Driver struct {
	state State
	level LevelSource
	gen   *surface.Generator
	ticks uint64
	log   *zap.Logger
}

// NewDriver creates a driver with all phases at zero.
func NewDriver(gen *surface.Generator, level LevelSource) *Driver {
	return &Driver{
		gen:   gen,
		level: level,
		log:   logger.Named("animation"),
	}
}

// State returns a copy of the current animation state.
func (d *Driver) State() State {
	return d.state
}

// Ticks returns how many ticks have run.
func (d *Driver) Ticks() uint64 {
	return d.ticks
}

// Initial builds the frame shown before the first tick: a pure catenoid
// with the identity transform.
func (d *Driver) Initial() Frame {
	return Frame{
		Mesh:      d.gen.Generate(0),
		Material:  surface.BuildMaterial(d.state.ColorPhase, d.state.SmoothBeat),
		Transform: Identity(),
	}
}

// Tick advances one step and returns the rebuilt frame.
func (d *Driver) Tick() Frame {
	level := d.level.Load()

	var p Params
	d.state, p = Advance(d.state, level)
	d.ticks++

	frame := Frame{
		Tick:      d.ticks,
		T:         p.T,
		Beat:      p.Beat,
		Mesh:      d.gen.Generate(p.T),
		Material:  surface.BuildMaterial(p.ColorPhase, p.Beat),
		Transform: p.Transform,
	}

	if d.ticks%100 == 0 {
		d.log.Debug("tick",
			zap.Uint64("tick", d.ticks),
			zap.Float32("level", level),
			zap.Float64("beat", p.Beat),
			zap.Float64("t", p.T),
			zap.Float64("angle_x", p.Transform.AngleX),
			zap.Float64("angle_y", p.Transform.AngleY),
			zap.Float64("scale", p.Transform.Scale),
		)
	}
	return frame
}

// Run presents the initial frame, then one frame per value received on ticks.
// Ticks are handled strictly one at a time; a slow frame delays the next.
// Run returns nil when the host returns ErrStop or ticks is closed, and the
// context error when ctx is cancelled.
func (d *Driver) Run(ctx context.Context, ticks <-chan time.Time, host Host) error {
	if err := d.present(host, d.Initial()); err != nil {
		return done(err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-ticks:
			if !ok {
				return nil
			}
			start := time.Now()
			if err := d.present(host, d.Tick()); err != nil {
				return done(err)
			}
			if elapsed := time.Since(start); elapsed > DefaultTickPeriod {
				d.log.Debug("slow tick", zap.Uint64("tick", d.ticks), zap.Duration("elapsed", elapsed))
			}
		}
	}
}

func (d *Driver) present(host Host, f Frame) error {
	if err := host.Present(f); err != nil {
		return fmt.Errorf("present tick %d: %w", f.Tick, err)
	}
	return nil
}

func done(err error) error {
	if errors.Is(err, ErrStop) {
		return nil
	}
	return err
}
