// Package audio measures loudness from live capture or a replayed file and
// publishes it as a single lock-free scalar.
package audio

import (
	"math"
	"sync/atomic"
)

// Level is a last-write-wins loudness value shared between the capture
// callback and the tick loop. The zero value reads as 0.
type Level struct {
	bits atomic.Uint32
}

// Store publishes a new raw level.
func (l *Level) Store(v float32) {
	l.bits.Store(math.Float32bits(v))
}

// Load returns the most recently published level.
func (l *Level) Load() float32 {
	return math.Float32frombits(l.bits.Load())
}

// Reset sets the level back to silence.
func (l *Level) Reset() {
	l.bits.Store(0)
}
