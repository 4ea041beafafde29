package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/catenoid/internal/animation"
	"github.com/Faultbox/catenoid/internal/audio"
	"github.com/Faultbox/catenoid/internal/surface"
)

// feeder publishes the level for the next tick.
type feeder interface {
	Feed(level *audio.Level, period time.Duration)
}

// constant holds the level at one value.
type constant float32

func (c constant) Feed(level *audio.Level, _ time.Duration) {
	level.Store(float32(c))
}

// replayFeeder advances a WAV by one tick period per tick. The replay
// publishes into the level it was opened with.
type replayFeeder struct {
	replay *audio.Replay
	done   bool
}

func (r *replayFeeder) Feed(_ *audio.Level, period time.Duration) {
	if r.done {
		return
	}
	if !r.replay.Advance(period) {
		r.done = true
	}
}

// dumpHost logs frames and stops after a fixed number of ticks.
type dumpHost struct {
	log    *zap.Logger
	level  *audio.Level
	feed   feeder
	period time.Duration
	limit  uint64
	every  uint64
	last   animation.Frame
}

func (h *dumpHost) Present(f animation.Frame) error {
	h.last = f
	if h.every > 0 && f.Tick%h.every == 0 {
		h.log.Info("tick",
			zap.Uint64("tick", f.Tick),
			zap.Float32("level", h.level.Load()),
			zap.Float64("beat", f.Beat),
			zap.Float64("t", f.T),
			zap.Float64("angle_x", f.Transform.AngleX),
			zap.Float64("angle_y", f.Transform.AngleY),
			zap.Float64("offset_y", f.Transform.OffsetY),
			zap.Float64("scale", f.Transform.Scale),
			zap.Uint8("glow", f.Material.Emissive.Alpha),
		)
	}
	if f.Tick >= h.limit {
		return animation.ErrStop
	}
	h.feed.Feed(h.level, h.period)
	return nil
}

// dumpOptions selects what drives a headless run.
type dumpOptions struct {
	Grid   surface.Grid
	Period time.Duration
	Ticks  uint64
	Every  uint64
	Feed   feeder
	Level  *audio.Level // Shared with the feeder; nil allocates one
}

// dump runs the driver as fast as the host accepts frames and returns the last one.
func dump(ctx context.Context, opts dumpOptions, log *zap.Logger) (animation.Frame, error) {
	gen, err := surface.NewGenerator(opts.Grid)
	if err != nil {
		return animation.Frame{}, err
	}

	level := opts.Level
	if level == nil {
		level = new(audio.Level)
	}
	host := &dumpHost{
		log:    log,
		level:  level,
		feed:   opts.Feed,
		period: opts.Period,
		limit:  opts.Ticks,
		every:  opts.Every,
	}
	// The level for tick 1 is in place before the initial frame is shown.
	opts.Feed.Feed(level, opts.Period)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Never closed: the run ends through the host or the context.
	ticks := make(chan time.Time)
	go func() {
		for {
			select {
			case ticks <- time.Time{}:
			case <-ctx.Done():
				return
			}
		}
	}()

	d := animation.NewDriver(gen, level)
	if err := d.Run(ctx, ticks, host); err != nil {
		return host.last, err
	}
	return host.last, nil
}
