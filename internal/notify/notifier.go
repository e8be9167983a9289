// Package notify implements the step notifier: the single point every
// visible mutation passes through on its way to the screen and speakers.
//
// For each mutating step the notifier replaces the displayed snapshot, plays
// a tone keyed to the snapshot's last value unless muted, and then sleeps the
// step delay. The sleep is what paces a run. Merge boundaries only sleep the
// merge delay. Every sleep ends early when the run's token is cancelled.
package notify

import (
	"time"

	"github.com/thruflo/sortviz/internal/array"
	"github.com/thruflo/sortviz/internal/cancel"
	"github.com/thruflo/sortviz/internal/logging"
	"github.com/thruflo/sortviz/internal/sorting"
	"github.com/thruflo/sortviz/internal/tone"
)

// Default pacing.
const (
	DefaultStepDelay  = 50 * time.Millisecond
	DefaultMergeDelay = 50 * time.Millisecond
)

// Config holds pacing and tone settings.
type Config struct {
	StepDelay  time.Duration
	MergeDelay time.Duration
	Tones      tone.Params
}

// DefaultConfig returns the default pacing and tone settings.
func DefaultConfig() Config {
	return Config{
		StepDelay:  DefaultStepDelay,
		MergeDelay: DefaultMergeDelay,
		Tones:      tone.DefaultParams(),
	}
}

// Notifier publishes steps to the store and the tone sink.
type Notifier struct {
	store *array.Store
	sink  tone.Sink
	mute  *tone.Mute
	cfg   Config
	log   *logging.Logger
}

// New creates a Notifier. A nil sink discards tones, a nil mute is never
// muted and a nil logger uses the default logger.
func New(store *array.Store, sink tone.Sink, mute *tone.Mute, cfg Config, logger *logging.Logger) *Notifier {
	if sink == nil {
		sink = tone.Discard
	}
	if mute == nil {
		mute = tone.NewMute(false)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Notifier{
		store: store,
		sink:  sink,
		mute:  mute,
		cfg:   cfg,
		log:   logger.With("component", "notify"),
	}
}

// Config returns the notifier's settings.
func (n *Notifier) Config() Config {
	return n.cfg
}

// Notify publishes snap, plays its tone unless muted, and waits the step
// delay. It returns early, without publishing, if tok is already cancelled.
func (n *Notifier) Notify(tok *cancel.Token, snap array.Snapshot) {
	if !tok.Active() {
		return
	}

	n.store.Replace(snap)
	if !n.mute.Muted() {
		n.sink.Play(n.cfg.Tones.For(snap.Last()))
	}
	wait(tok, n.cfg.StepDelay)
}

// Pause waits the merge delay, or until tok is cancelled.
func (n *Notifier) Pause(tok *cancel.Token) {
	wait(tok, n.cfg.MergeDelay)
}

// Observer returns the sorting.Observer for one run.
func (n *Notifier) Observer(tok *cancel.Token) sorting.Observer {
	return sorting.ObserverFunc(func(s sorting.Step) {
		if s.Kind == sorting.StepBoundary {
			n.Pause(tok)
			return
		}
		if n.log.Enabled(logging.LevelDebug) {
			n.log.Debug("step", "seq", s.Seq, "kind", s.Kind, "i", s.I, "j", s.J)
		}
		n.Notify(tok, s.Snapshot)
	})
}

// wait sleeps for d unless tok is cancelled first. It reports whether the
// full delay elapsed.
func wait(tok *cancel.Token, d time.Duration) bool {
	if d <= 0 {
		return tok.Active()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-tok.Done():
		return false
	}
}
