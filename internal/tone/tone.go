// Package tone derives the audible cue that accompanies each step and
// delivers it to whatever surface can play it.
//
// sortviz never synthesises audio itself. A Tone describes a short sine
// blip (frequency, length and a gain envelope) and a Sink forwards it: the
// web client plays it through WebAudio, the terminal shows the pitch.
package tone

import (
	"sync"
	"sync/atomic"
	"time"
)

// Defaults: 200 Hz plus 5 Hz per unit of the last value, a 100 ms blip
// starting at gain 0.1 and ramping down to 0.001.
const (
	DefaultBase        = 200.0
	DefaultScale       = 5.0
	DefaultDuration    = 100 * time.Millisecond
	DefaultGain        = 0.1
	DefaultReleaseGain = 0.001
)

// Tone is one blip.
type Tone struct {
	Frequency float64
	Duration  time.Duration
	// Gain is the starting gain; ReleaseGain is the target of the
	// exponential ramp at the end of Duration.
	Gain        float64
	ReleaseGain float64
}

// Params maps a value to a Tone.
type Params struct {
	Base        float64
	Scale       float64
	Duration    time.Duration
	Gain        float64
	ReleaseGain float64
}

// DefaultParams returns the default tone parameters.
func DefaultParams() Params {
	return Params{
		Base:        DefaultBase,
		Scale:       DefaultScale,
		Duration:    DefaultDuration,
		Gain:        DefaultGain,
		ReleaseGain: DefaultReleaseGain,
	}
}

// For returns the tone for a snapshot whose last element is last:
// frequency = Base + last*Scale.
func (p Params) For(last int) Tone {
	return Tone{
		Frequency:   p.Base + float64(last)*p.Scale,
		Duration:    p.Duration,
		Gain:        p.Gain,
		ReleaseGain: p.ReleaseGain,
	}
}

// Sink receives tones. Play must not block for long: it is called on the run
// goroutine between a mutation and the pacing delay.
type Sink interface {
	Play(Tone)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Tone)

// Play calls f(t).
func (f SinkFunc) Play(t Tone) {
	f(t)
}

// Discard drops every tone.
var Discard Sink = SinkFunc(func(Tone) {})

// Fanout plays each tone on a dynamic set of sinks. It is safe for
// concurrent use.
type Fanout struct {
	mu    sync.RWMutex
	sinks []Sink
}

// NewFanout creates a Fanout over the given sinks.
func NewFanout(sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks}
}

// Add registers another sink.
func (f *Fanout) Add(s Sink) {
	f.mu.Lock()
	f.sinks = append(f.sinks, s)
	f.mu.Unlock()
}

// Play forwards t to every registered sink.
func (f *Fanout) Play(t Tone) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, s := range f.sinks {
		s.Play(t)
	}
}

// Mute is the process-wide mute toggle consulted before every tone.
type Mute struct {
	muted atomic.Bool
}

// NewMute returns a Mute in the given state.
func NewMute(muted bool) *Mute {
	m := &Mute{}
	m.muted.Store(muted)
	return m
}

// Muted reports whether tones are suppressed.
func (m *Mute) Muted() bool {
	return m.muted.Load()
}

// Set sets the mute state.
func (m *Mute) Set(muted bool) {
	m.muted.Store(muted)
}

// Toggle flips the mute state and returns the new value.
func (m *Mute) Toggle() bool {
	for {
		old := m.muted.Load()
		if m.muted.CompareAndSwap(old, !old) {
			return !old
		}
	}
}
