// Package app wires the window, renderer and audio source around the animation driver.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/catenoid/internal/animation"
	"github.com/Faultbox/catenoid/internal/audio"
	"github.com/Faultbox/catenoid/internal/config"
	"github.com/Faultbox/catenoid/internal/engine/camera"
	"github.com/Faultbox/catenoid/internal/engine/debug"
	"github.com/Faultbox/catenoid/internal/engine/input"
	"github.com/Faultbox/catenoid/internal/engine/lighting"
	"github.com/Faultbox/catenoid/internal/engine/renderer"
	"github.com/Faultbox/catenoid/internal/engine/window"
	"github.com/Faultbox/catenoid/internal/logger"
	"github.com/Faultbox/catenoid/internal/surface"
	"github.com/Faultbox/catenoid/pkg/color"
)

var background = color.RGB{R: 12, G: 12, B: 20}

// App is the running viewer. It implements animation.Host.
type App struct {
	cfg *config.Config
	log *zap.Logger

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.Fixed
	shots    *debug.ScreenshotCapture

	level  audio.Level
	source audio.Source
	driver *animation.Driver

	frameCount int
	fpsTimer   time.Time
}

// New opens the window, renderer and audio source.
// An audio source that fails to open or start is logged and replaced by silence.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		cfg: cfg,
		log: logger.Named("app"),
	}

	gen, err := surface.NewGenerator(cfg.Grid())
	if err != nil {
		return nil, fmt.Errorf("surface grid: %w", err)
	}
	a.driver = animation.NewDriver(gen, &a.level)

	a.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The renderer needs the GL context the window just made current.
	width, height := a.window.DrawableSize()
	a.renderer, err = renderer.New(renderer.Config{
		Width:      width,
		Height:     height,
		Background: background,
	}, lighting.Default())
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	a.input = input.New()
	a.camera = camera.NewFixed()
	a.camera.FitSphere(sceneCenter(), sceneRadius(gen))
	a.shots = debug.NewScreenshotCapture(cfg.Debug.ScreenshotDir, "catenoid")
	a.source = openAudio(cfg.AudioSource(), &a.level, a.log)

	a.log.Info("viewer initialized",
		zap.Int("u_segments", gen.Grid().U),
		zap.Int("v_segments", gen.Grid().V),
		zap.Duration("tick", cfg.Animation.TickPeriod),
		zap.String("audio", cfg.Audio.Mode),
	)
	return a, nil
}

// Run drives the animation at the configured tick period until the window
// closes or ctx is cancelled. It must run on the main thread.
func (a *App) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.cfg.Animation.TickPeriod)
	defer ticker.Stop()

	a.fpsTimer = time.Now()
	a.log.Info("starting animation loop")

	err := a.driver.Run(ctx, ticker.C, a)
	if errors.Is(err, context.Canceled) {
		a.log.Info("interrupted", zap.Uint64("ticks", a.driver.Ticks()))
		return nil
	}
	return err
}

// Present handles pending input and draws one frame.
// It returns animation.ErrStop when the user asks to quit.
func (a *App) Present(f animation.Frame) error {
	if a.input.Update() {
		return animation.ErrStop
	}
	if _, _, ok := a.input.Resized(); ok {
		a.renderer.Resize(a.window.DrawableSize())
	}

	a.renderer.Upload(f.Mesh)
	a.renderer.Begin()
	a.renderer.Draw(f.Material, f.Transform.Matrix(), renderer.View{
		View:       a.camera.ViewMatrix(),
		Projection: a.camera.ProjectionMatrix(a.renderer.Aspect()),
		Eye:        a.camera.Position(),
	})

	// Read back before the swap leaves the back buffer undefined.
	if a.input.IsKeyPressed(sdl.SCANCODE_F12) {
		a.screenshot()
	}

	a.window.SwapBuffers()

	a.frameCount++
	if time.Since(a.fpsTimer) >= time.Second {
		a.log.Debug("fps", zap.Int("count", a.frameCount), zap.Float64("beat", f.Beat), zap.Float64("t", f.T))
		a.window.SetTitle(fmt.Sprintf("%s - %d fps", a.cfg.Window.Title, a.frameCount))
		a.frameCount = 0
		a.fpsTimer = time.Now()
	}
	return nil
}

func (a *App) screenshot() {
	pixels, w, h := a.renderer.ReadPixels()
	path, err := a.shots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		a.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	a.log.Info("screenshot saved", zap.String("path", path))
}

// Close stops the audio source and releases the renderer and window.
// Safe to call twice.
func (a *App) Close() {
	a.log.Info("closing viewer")

	if a.source != nil {
		if err := a.source.Close(); err != nil {
			a.log.Warn("audio source close failed", zap.Error(err))
		}
		a.source = nil
	}
	a.renderer.Close()
	a.window.Close()
}

// openAudio opens and starts the configured source. Any failure leaves the
// level at 0 and the animation runs on its idle motion alone.
func openAudio(cfg audio.Config, level *audio.Level, log *zap.Logger) audio.Source {
	src, err := audio.Open(cfg, level)
	if err != nil {
		log.Warn("audio source unavailable, running silent", zap.String("mode", string(cfg.Mode)), zap.Error(err))
		return nil
	}
	if err := src.Start(); err != nil {
		log.Warn("audio source failed to start, running silent", zap.String("mode", string(cfg.Mode)), zap.Error(err))
		if cerr := src.Close(); cerr != nil {
			log.Debug("audio source close failed", zap.Error(cerr))
		}
		level.Reset()
		return nil
	}
	log.Info("audio source started", zap.String("mode", string(cfg.Mode)))
	return src
}
