package audio

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"go.uber.org/zap"

	"github.com/Faultbox/catenoid/internal/logger"
)

// Playback plays a WAV file through the default output device and publishes
// the loudness of every buffer the speaker pulls, so what is heard is what
// drives the level. Only one Playback may be started per process.
type Playback struct {
	mu sync.Mutex

	path     string
	streamer beep.StreamSeekCloser
	format   beep.Format
	loop     bool
	meter    *Meter

	ctrl   *beep.Ctrl
	volume *effects.Volume

	speakerReady bool
	interleaved  []float32
}

// OpenPlayback decodes the WAV header at path. Volume is linear, 0 to 1.
func OpenPlayback(path string, level *Level, loop bool, volume float64) (*Playback, error) {
	streamer, format, err := decodeWAV(path)
	if err != nil {
		return nil, err
	}

	p := &Playback{
		path:     path,
		streamer: streamer,
		format:   format,
		loop:     loop,
		meter:    NewMeter(level),
	}

	var src beep.Streamer = streamer
	if loop {
		src = &loopStreamer{streamer: streamer}
	}
	p.ctrl = &beep.Ctrl{Streamer: src}
	p.volume = &effects.Volume{Streamer: p.ctrl, Base: 2}
	p.SetVolume(volume)

	logger.Info("audio playback opened",
		zap.String("file", path),
		zap.Int("sample_rate", int(format.SampleRate)),
		zap.Int("channels", format.NumChannels),
		zap.Bool("loop", loop),
	)
	return p, nil
}

// SetVolume sets the linear output volume, clamped to [0,1].
// The level follows the attenuated signal, as a loopback capture would.
func (p *Playback) SetVolume(vol float64) {
	vol = min(max(vol, 0), 1)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.lockSpeaker()
	defer p.unlockSpeaker()
	if vol == 0 {
		p.volume.Silent = true
		return
	}
	p.volume.Silent = false
	p.volume.Volume = math.Log2(vol)
}

// Start opens the speaker at the file's sample rate and begins playing,
// or resumes after Stop.
func (p *Playback) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.streamer == nil {
		return errors.New("playback: closed")
	}
	if p.speakerReady {
		speaker.Lock()
		p.ctrl.Paused = false
		speaker.Unlock()
		return nil
	}

	if err := speaker.Init(p.format.SampleRate, p.format.SampleRate.N(time.Second/30)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	p.speakerReady = true

	speaker.Play(beep.Seq(&tap{Streamer: p.volume, p: p}, beep.Callback(func() {
		logger.Debug("playback finished", zap.String("file", p.path))
	})))
	return nil
}

// Stop pauses playback. Safe to call more than once.
func (p *Playback) Stop() error {
	if p == nil {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.speakerReady {
		speaker.Lock()
		p.ctrl.Paused = true
		speaker.Unlock()
	}
	return nil
}

// Close stops the speaker and closes the file. Safe to call more than once.
func (p *Playback) Close() error {
	if p == nil {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.speakerReady {
		speaker.Clear()
		speaker.Close()
		p.speakerReady = false
	}

	streamer := p.streamer
	p.streamer = nil
	if streamer == nil {
		return nil
	}
	if err := streamer.Close(); err != nil {
		return fmt.Errorf("close playback: %w", err)
	}
	return nil
}

func (p *Playback) lockSpeaker() {
	if p.speakerReady {
		speaker.Lock()
	}
}

func (p *Playback) unlockSpeaker() {
	if p.speakerReady {
		speaker.Unlock()
	}
}

// tap meters every buffer on its way to the speaker.
// It runs on the speaker goroutine, which is the meter's only user.
type tap struct {
	beep.Streamer
	p *Playback
}

func (t *tap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.Streamer.Stream(samples)
	t.p.interleaved = interleaveFrames(t.p.interleaved[:0], samples[:n], t.p.format.NumChannels)
	t.p.meter.Process(t.p.interleaved)
	return n, ok
}

// loopStreamer restarts its source at EOF.
type loopStreamer struct {
	streamer beep.StreamSeekCloser
}

func (l *loopStreamer) Stream(samples [][2]float64) (int, bool) {
	filled := 0
	for filled < len(samples) {
		n, ok := l.streamer.Stream(samples[filled:])
		filled += n
		if ok {
			continue
		}
		if l.streamer.Len() == 0 || l.streamer.Seek(0) != nil {
			return filled, filled > 0
		}
	}
	return filled, true
}

func (l *loopStreamer) Err() error {
	return l.streamer.Err()
}
