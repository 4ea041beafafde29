package audio

import (
	"encoding/binary"
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Meter computes root-mean-square loudness over sample buffers and publishes
// it into a Level. A Meter belongs to a single callback context.
type Meter struct {
	level   *Level
	samples []float64
	squares []float64
}

// NewMeter creates a meter publishing into level.
func NewMeter(level *Level) *Meter {
	return &Meter{level: level}
}

// Process measures one buffer of interleaved samples. Empty buffers leave
// the published level untouched.
func (m *Meter) Process(samples []float32) {
	if rms, ok := m.rms(samples); ok {
		m.level.Store(rms)
	}
}

// ProcessBytes measures the first n bytes of a raw little-endian float32 buffer.
func (m *Meter) ProcessBytes(buf []byte, n int) {
	m.Process(DecodeFloat32(buf, n))
}

func (m *Meter) rms(samples []float32) (float32, bool) {
	n := len(samples)
	if n == 0 {
		return 0, false
	}

	m.samples = grow(m.samples, n)
	m.squares = grow(m.squares, n)
	for i, s := range samples {
		m.samples[i] = float64(s)
	}
	vecmath.MulBlock(m.squares, m.samples, m.samples)

	var sum float64
	for _, sq := range m.squares {
		sum += sq
	}
	return float32(math.Sqrt(sum / float64(n))), true
}

// RMS returns sqrt(mean(s^2)) over samples. ok is false for an empty buffer.
func RMS(samples []float32) (rms float32, ok bool) {
	var m Meter
	return m.rms(samples)
}

// DecodeFloat32 decodes the first n bytes of buf as little-endian float32
// samples. A trailing partial sample is ignored.
func DecodeFloat32(buf []byte, n int) []float32 {
	n = min(n, len(buf))
	count := n / 4
	if count <= 0 {
		return nil
	}

	out := make([]float32, count)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return out
}

func grow(buf []float64, n int) []float64 {
	if cap(buf) < n {
		return make([]float64, n)
	}
	return buf[:n]
}
