// Command morphdump runs the animation without a window and writes the final
// surface as a Wavefront OBJ file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/Faultbox/catenoid/internal/audio"
	"github.com/Faultbox/catenoid/internal/config"
	"github.com/Faultbox/catenoid/internal/logger"
	"github.com/Faultbox/catenoid/internal/surface"
)

var (
	flagTicks = flag.Uint64("ticks", 300, "Number of ticks to run")
	flagLevel = flag.Float64("level", 0, "Constant audio level when no WAV file is used")
	flagEvery = flag.Uint64("every", 25, "Log every N ticks (0 disables)")
	flagOBJ   = flag.String("obj", "", "Write the final mesh to this OBJ file")
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Error("morphdump failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	log := logger.Named("morphdump")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var level audio.Level
	var feed feeder = constant(*flagLevel)
	src := cfg.AudioSource()
	if src.Mode == audio.ModeFile {
		// Advanced once per tick by the feeder; the replay is never started.
		replay, err := audio.OpenReplay(src.File, &level, audio.ReplayOptions{Loop: src.Loop})
		if err != nil {
			return err
		}
		defer replay.Close()
		feed = &replayFeeder{replay: replay}
		log.Info("replaying", zap.String("file", src.File), zap.Int("sample_rate", int(replay.Format().SampleRate)))
	}

	last, err := dump(ctx, dumpOptions{
		Grid:   cfg.Grid(),
		Period: cfg.Animation.TickPeriod,
		Ticks:  *flagTicks,
		Every:  *flagEvery,
		Feed:   feed,
		Level:  &level,
	}, log)
	if err != nil {
		return err
	}

	log.Info("finished",
		zap.Uint64("ticks", last.Tick),
		zap.Float64("t", last.T),
		zap.Float64("beat", last.Beat),
	)

	if *flagOBJ == "" {
		return nil
	}
	return writeOBJ(*flagOBJ, last.Mesh)
}

func writeOBJ(path string, m *surface.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := surface.WriteOBJ(f, m); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
