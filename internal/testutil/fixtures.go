package testutil

import (
	"context"
	"io"
	"log"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thruflo/sortviz/internal/array"
	"github.com/thruflo/sortviz/internal/logging"
	"github.com/thruflo/sortviz/internal/notify"
	"github.com/thruflo/sortviz/internal/run"
	"github.com/thruflo/sortviz/internal/sorting"
	"github.com/thruflo/sortviz/internal/tone"
)

// Fixture describes a controller for tests. Zero fields take small,
// fast defaults.
type Fixture struct {
	Length      int    // default 10
	Seed        uint64 // seeds the array and bogosort; default 1
	StepDelay   time.Duration
	MergeDelay  time.Duration
	Muted       bool
	Algorithm   sorting.Algorithm
	MaxShuffles int
	// Sink receives tones. Default discards them.
	Sink tone.Sink
}

// Env is the result of NewController.
type Env struct {
	Ctrl     *run.Controller
	Store    *array.Store
	Notifier *notify.Notifier
	Mute     *tone.Mute
}

// QuietLogger returns a logger that discards everything.
func QuietLogger() *logging.Logger {
	l := logging.New()
	l.SetOutput(log.New(io.Discard, "", 0))
	return l
}

// NewController wires a store, notifier and controller from f. Any run
// still active when the test ends is stopped and awaited.
func NewController(t *testing.T, f Fixture) *Env {
	t.Helper()

	if f.Length == 0 {
		f.Length = 10
	}
	if f.Seed == 0 {
		f.Seed = 1
	}

	store := array.New(array.Options{
		Length: f.Length,
		Rand:   rand.New(rand.NewPCG(f.Seed, 1)),
	})
	mute := tone.NewMute(f.Muted)
	n := notify.New(store, f.Sink, mute, notify.Config{
		StepDelay:  f.StepDelay,
		MergeDelay: f.MergeDelay,
		Tones:      tone.DefaultParams(),
	}, QuietLogger())

	ctrl, err := run.NewController(run.Options{
		Store:       store,
		Notifier:    n,
		Algorithm:   f.Algorithm,
		MaxShuffles: f.MaxShuffles,
		Rand:        rand.New(rand.NewPCG(f.Seed, 2)),
		Logger:      QuietLogger(),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		ctrl.Stop()
		ctx, cancel := context.WithTimeout(context.Background(), DefaultRunTimeout)
		defer cancel()
		ctrl.Wait(ctx)
	})

	return &Env{Ctrl: ctrl, Store: store, Notifier: n, Mute: mute}
}
