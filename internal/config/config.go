// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/Faultbox/catenoid/internal/animation"
	"github.com/Faultbox/catenoid/internal/audio"
	"github.com/Faultbox/catenoid/internal/surface"
)

// Config holds all viewer settings.
type Config struct {
	Window    WindowConfig    `yaml:"window"`
	Surface   SurfaceConfig   `yaml:"surface"`
	Animation AnimationConfig `yaml:"animation"`
	Audio     AudioConfig     `yaml:"audio"`
	Debug     DebugConfig     `yaml:"debug"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// SurfaceConfig holds the mesh grid. It is fixed for the process lifetime.
type SurfaceConfig struct {
	USegments   int     `yaml:"u_segments"`
	VSegments   int     `yaml:"v_segments"`
	WaistRadius float64 `yaml:"waist_radius"`
	Height      float64 `yaml:"height"`
}

// AnimationConfig holds tick loop settings.
type AnimationConfig struct {
	TickPeriod time.Duration `yaml:"tick_period"`
}

// AudioConfig holds loudness source settings.
type AudioConfig struct {
	Mode            string  `yaml:"mode"`   // off, loopback or file
	Device          string  `yaml:"device"` // Capture device name substring
	File            string  `yaml:"file"`
	Loop            bool    `yaml:"loop"`
	Audible         bool    `yaml:"audible"` // File mode: play through the speaker
	Volume          float64 `yaml:"volume"`  // Playback volume, 0 to 1
	SampleRate      float64 `yaml:"sample_rate"`
	FramesPerBuffer int     `yaml:"frames_per_buffer"`
	Channels        int     `yaml:"channels"`
}

// DebugConfig holds developer settings.
type DebugConfig struct {
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	grid := surface.DefaultGrid()

	return &Config{
		Window: WindowConfig{
			Title:  "Catenoid",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Surface: SurfaceConfig{
			USegments:   grid.U,
			VSegments:   grid.V,
			WaistRadius: grid.A,
			Height:      grid.Height,
		},
		Animation: AnimationConfig{
			TickPeriod: animation.DefaultTickPeriod,
		},
		Audio: AudioConfig{
			Mode:            string(audio.ModeLoopback),
			SampleRate:      44100,
			FramesPerBuffer: 1024,
			Channels:        2,
			Loop:            true,
			Volume:          1,
		},
		Debug: DebugConfig{
			ScreenshotDir: "screenshots",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Grid returns the surface grid described by the config.
func (c *Config) Grid() surface.Grid {
	return surface.Grid{
		U:      c.Surface.USegments,
		V:      c.Surface.VSegments,
		A:      c.Surface.WaistRadius,
		Height: c.Surface.Height,
	}
}

// AudioSource returns the audio source settings.
func (c *Config) AudioSource() audio.Config {
	return audio.Config{
		Mode:            audio.Mode(c.Audio.Mode),
		Device:          c.Audio.Device,
		File:            c.Audio.File,
		Loop:            c.Audio.Loop,
		SampleRate:      c.Audio.SampleRate,
		FramesPerBuffer: c.Audio.FramesPerBuffer,
		Channels:        c.Audio.Channels,
		Audible:         c.Audio.Audible,
		Volume:          c.Audio.Volume,
	}
}

// Validate checks values that would make the viewer unable to run.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Grid().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("surface: %w", err))
	}
	if c.Animation.TickPeriod <= 0 {
		errs = append(errs, errors.New("animation: tick_period must be positive"))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, errors.New("window: width and height must be positive"))
	}

	switch audio.Mode(c.Audio.Mode) {
	case audio.ModeOff, audio.ModeLoopback:
	case audio.ModeFile:
		if c.Audio.File == "" {
			errs = append(errs, errors.New("audio: file mode requires audio.file"))
		}
	default:
		errs = append(errs, fmt.Errorf("audio: unknown mode %q", c.Audio.Mode))
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		errs = append(errs, errors.New("audio: volume must be within [0,1]"))
	}

	return errors.Join(errs...)
}
