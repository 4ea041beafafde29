package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagAudio      = flag.String("audio", "", "Audio source: off, loopback or file")
	flagAudioFile  = flag.String("audio-file", "", "WAV file to drive the animation (implies -audio file)")
	flagAudible    = flag.Bool("audible", false, "Play the audio file through the speaker")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWindowed {
		cfg.Window.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagAudio != "" {
		cfg.Audio.Mode = *flagAudio
	}
	if *flagAudioFile != "" {
		cfg.Audio.Mode = "file"
		cfg.Audio.File = *flagAudioFile
	}
	if *flagAudible {
		cfg.Audio.Audible = true
	}
}
