package audio

import (
	"fmt"
	"time"
)

// Source is a loudness producer running in its own callback context.
// Stop and Close must be safe to call repeatedly and before Start succeeded.
type Source interface {
	Start() error
	Stop() error
	Close() error
}

// Mode selects the loudness source.
type Mode string

// Supported modes.
const (
	ModeOff      Mode = "off"
	ModeLoopback Mode = "loopback"
	ModeFile     Mode = "file"
)

// Config describes how to open a Source.
type Config struct {
	Mode            Mode
	Device          string // Substring of the capture device name; empty picks a monitor or the default input
	File            string // WAV path for ModeFile
	SampleRate      float64
	FramesPerBuffer int
	Channels        int
	Loop            bool    // Restart the file at EOF
	Audible         bool    // Play the file through the speaker instead of metering it silently
	Volume          float64 // Linear playback volume for audible files, 0 to 1
}

// Open creates the source selected by cfg.Mode, publishing into level.
// The source is not started.
func Open(cfg Config, level *Level) (Source, error) {
	switch cfg.Mode {
	case ModeOff, "":
		return silent{}, nil
	case ModeLoopback:
		return NewCapture(cfg, level), nil
	case ModeFile:
		if cfg.Audible {
			return OpenPlayback(cfg.File, level, cfg.Loop, cfg.Volume)
		}
		period := time.Duration(0)
		if cfg.SampleRate > 0 && cfg.FramesPerBuffer > 0 {
			period = time.Duration(float64(cfg.FramesPerBuffer) / cfg.SampleRate * float64(time.Second))
		}
		return OpenReplay(cfg.File, level, ReplayOptions{Loop: cfg.Loop, Period: period})
	default:
		return nil, fmt.Errorf("unknown audio mode %q", cfg.Mode)
	}
}

// silent never publishes anything, so the level stays at 0.
type silent struct{}

func (silent) Start() error { return nil }
func (silent) Stop() error  { return nil }
func (silent) Close() error { return nil }
