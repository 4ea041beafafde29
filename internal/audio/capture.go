package audio

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"

	"github.com/Faultbox/catenoid/internal/logger"
)

// ErrNoDevice is returned when no capture device matches the configuration.
var ErrNoDevice = errors.New("no capture device")

// Capture measures system output loudness through a loopback (monitor) input.
type Capture struct {
	mu sync.Mutex

	cfg   Config
	meter *Meter

	initialized bool // portaudio.Initialize succeeded
	stream      *portaudio.Stream
	running     bool
}

// NewCapture creates an unstarted loopback capture publishing into level.
func NewCapture(cfg Config, level *Level) *Capture {
	return &Capture{
		cfg:   cfg,
		meter: NewMeter(level),
	}
}

// Start opens the capture device and begins publishing one RMS value per buffer.
// On failure every partially acquired resource is released.
func (c *Capture) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	if !c.initialized {
		if err := portaudio.Initialize(); err != nil {
			return fmt.Errorf("init portaudio: %w", err)
		}
		c.initialized = true
	}

	if c.stream == nil {
		stream, err := c.open()
		if err != nil {
			c.releaseLocked()
			return err
		}
		c.stream = stream
	}

	if err := c.stream.Start(); err != nil {
		c.releaseLocked()
		return fmt.Errorf("start capture: %w", err)
	}
	c.running = true
	return nil
}

func (c *Capture) open() (*portaudio.Stream, error) {
	dev, err := c.pickDevice()
	if err != nil {
		return nil, err
	}

	params := portaudio.HighLatencyParameters(dev, nil)
	params.Input.Channels = min(max(c.cfg.Channels, 1), dev.MaxInputChannels)
	if c.cfg.SampleRate > 0 {
		params.SampleRate = c.cfg.SampleRate
	}
	if c.cfg.FramesPerBuffer > 0 {
		params.FramesPerBuffer = c.cfg.FramesPerBuffer
	}

	stream, err := portaudio.OpenStream(params, c.meter.Process)
	if err != nil {
		return nil, fmt.Errorf("open capture stream on %q: %w", dev.Name, err)
	}

	logger.Info("audio capture opened",
		zap.String("device", dev.Name),
		zap.Int("channels", params.Input.Channels),
		zap.Float64("sample_rate", params.SampleRate),
		zap.Int("frames_per_buffer", params.FramesPerBuffer),
	)
	return stream, nil
}

// pickDevice prefers an explicit name match, then any monitor source, then the default input.
func (c *Capture) pickDevice() (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}

	if dev := matchDevice(devices, c.cfg.Device); dev != nil {
		return dev, nil
	}
	if c.cfg.Device != "" {
		return nil, fmt.Errorf("%w matching %q", ErrNoDevice, c.cfg.Device)
	}

	dev, err := portaudio.DefaultInputDevice()
	if err != nil || dev == nil || dev.MaxInputChannels == 0 {
		return nil, ErrNoDevice
	}
	return dev, nil
}

// matchDevice returns the first input device whose name contains want
// (case-insensitive). An empty want matches monitor/loopback devices.
func matchDevice(devices []*portaudio.DeviceInfo, want string) *portaudio.DeviceInfo {
	needles := []string{strings.ToLower(want)}
	if want == "" {
		needles = []string{"monitor", "loopback", "stereo mix"}
	}

	for _, needle := range needles {
		for _, d := range devices {
			if d == nil || d.MaxInputChannels == 0 {
				continue
			}
			if strings.Contains(strings.ToLower(d.Name), needle) {
				return d
			}
		}
	}
	return nil
}

// Stop pauses capture. The last published level stays in place.
func (c *Capture) Stop() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.stream == nil {
		return nil
	}
	c.running = false
	if err := c.stream.Stop(); err != nil {
		return fmt.Errorf("stop capture: %w", err)
	}
	return nil
}

// Close stops capture and releases the device. Safe to call more than once.
func (c *Capture) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.releaseLocked()
}

func (c *Capture) releaseLocked() error {
	var errs []error

	stream := c.stream
	c.stream = nil
	if stream != nil {
		if c.running {
			if err := stream.Stop(); err != nil {
				errs = append(errs, fmt.Errorf("stop capture: %w", err))
			}
		}
		if err := stream.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close capture: %w", err))
		}
	}
	c.running = false

	if c.initialized {
		c.initialized = false
		if err := portaudio.Terminate(); err != nil {
			errs = append(errs, fmt.Errorf("terminate portaudio: %w", err))
		}
	}
	return errors.Join(errs...)
}
