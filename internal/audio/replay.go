package audio

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"go.uber.org/zap"

	"github.com/Faultbox/catenoid/internal/logger"
)

// DefaultReplayPeriod is the buffer period used when none is configured.
const DefaultReplayPeriod = 1024 * time.Second / 44100

// ReplayOptions tunes a Replay.
type ReplayOptions struct {
	Loop   bool          // Seek back to the start at EOF
	Period time.Duration // Buffer period for Start; defaults to DefaultReplayPeriod
}

// Replay publishes loudness from a decoded WAV file instead of a live device.
// Start paces buffers in real time on its own goroutine; Advance steps it
// synchronously for headless runs.
type Replay struct {
	mu sync.Mutex

	path     string
	streamer beep.StreamSeekCloser
	format   beep.Format
	opts     ReplayOptions
	meter    *Meter

	frames      [][2]float64
	interleaved []float32

	stop chan struct{}
	done chan struct{}
}

// OpenReplay decodes the WAV header at path.
func OpenReplay(path string, level *Level, opts ReplayOptions) (*Replay, error) {
	streamer, format, err := decodeWAV(path)
	if err != nil {
		return nil, err
	}

	if opts.Period <= 0 {
		opts.Period = DefaultReplayPeriod
	}

	logger.Info("audio replay opened",
		zap.String("file", path),
		zap.Int("sample_rate", int(format.SampleRate)),
		zap.Int("channels", format.NumChannels),
		zap.Bool("loop", opts.Loop),
	)

	return &Replay{
		path:     path,
		streamer: streamer,
		format:   format,
		opts:     opts,
		meter:    NewMeter(level),
	}, nil
}

// Format returns the decoded stream format.
func (r *Replay) Format() beep.Format {
	return r.format
}

// Advance consumes d worth of frames and publishes their RMS.
// It returns false once the file is exhausted and looping is off.
func (r *Replay) Advance(d time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.advanceLocked(r.format.SampleRate.N(d))
}

func (r *Replay) advanceLocked(n int) bool {
	if r.streamer == nil || n <= 0 {
		return false
	}

	if cap(r.frames) < n {
		r.frames = make([][2]float64, n)
	}
	frames := r.frames[:n]

	filled := 0
	for filled < n {
		got, ok := r.streamer.Stream(frames[filled:])
		filled += got
		if ok {
			continue
		}
		if !r.opts.Loop {
			break
		}
		if err := r.streamer.Seek(0); err != nil {
			logger.Warn("replay seek failed", zap.String("file", r.path), zap.Error(err))
			break
		}
		if got == 0 && r.streamer.Len() == 0 {
			break
		}
	}

	r.meter.Process(r.interleave(frames[:filled]))
	return filled == n
}

func (r *Replay) interleave(frames [][2]float64) []float32 {
	r.interleaved = interleaveFrames(r.interleaved[:0], frames, r.format.NumChannels)
	return r.interleaved
}

// Start begins real-time replay on a background goroutine.
func (r *Replay) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.streamer == nil {
		return errors.New("replay: closed")
	}
	if r.stop != nil {
		return nil
	}

	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	go r.run(r.stop, r.done, r.format.SampleRate.N(r.opts.Period))
	return nil
}

func (r *Replay) run(stop <-chan struct{}, done chan<- struct{}, frames int) {
	defer close(done)

	ticker := time.NewTicker(r.opts.Period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			r.mu.Lock()
			more := r.advanceLocked(frames)
			r.mu.Unlock()
			if !more {
				logger.Debug("replay finished", zap.String("file", r.path))
				return
			}
		}
	}
}

// Stop halts the replay goroutine. Safe to call more than once.
func (r *Replay) Stop() error {
	if r == nil {
		return nil
	}

	r.mu.Lock()
	stop, done := r.stop, r.done
	r.stop, r.done = nil, nil
	r.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
	return nil
}

// Close stops replay and closes the file. Safe to call more than once.
func (r *Replay) Close() error {
	if r == nil {
		return nil
	}
	if err := r.Stop(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	streamer := r.streamer
	r.streamer = nil
	if streamer == nil {
		return nil
	}
	if err := streamer.Close(); err != nil {
		return fmt.Errorf("close replay: %w", err)
	}
	return nil
}

func decodeWAV(path string) (beep.StreamSeekCloser, beep.Format, error) {
	if path == "" {
		return nil, beep.Format{}, errors.New("empty audio file path")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("open audio file: %w", err)
	}

	streamer, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("decode wav %s: %w", path, err)
	}
	return streamer, format, nil
}

// interleaveFrames flattens stereo frames into per-channel samples; mono
// sources use only the first channel.
func interleaveFrames(dst []float32, frames [][2]float64, numChannels int) []float32 {
	channels := 2
	if numChannels == 1 {
		channels = 1
	}
	for _, fr := range frames {
		for ch := range channels {
			dst = append(dst, float32(fr[ch]))
		}
	}
	return dst
}
