package cli

import (
	"fmt"
	"math/rand/v2"

	"github.com/thruflo/sortviz/internal/array"
	"github.com/thruflo/sortviz/internal/config"
	"github.com/thruflo/sortviz/internal/logging"
	"github.com/thruflo/sortviz/internal/notify"
	"github.com/thruflo/sortviz/internal/run"
	"github.com/thruflo/sortviz/internal/sorting"
	"github.com/thruflo/sortviz/internal/tone"
)

// app holds the core components every surface drives.
type app struct {
	cfg      *config.Config
	store    *array.Store
	mute     *tone.Mute
	tones    *tone.Fanout
	notifier *notify.Notifier
	ctrl     *run.Controller
}

// newApp wires a store, notifier and controller from cfg. With a seed the
// generated arrays and bogosort shuffles are reproducible. Surfaces attach
// their tone sinks to app.tones.
func newApp(cfg *config.Config, logger *logging.Logger, seed *uint64) (*app, error) {
	alg, err := sorting.Parse(cfg.Algorithm)
	if err != nil {
		return nil, err
	}

	// The store and bogosort run on different goroutines, so each gets its
	// own source.
	var storeRand, sortRand *rand.Rand
	if seed != nil {
		storeRand = rand.New(rand.NewPCG(*seed, 1))
		sortRand = rand.New(rand.NewPCG(*seed, 2))
	}

	store := array.New(array.Options{
		Length:   cfg.Array.Length,
		MinValue: cfg.Array.MinValue,
		MaxValue: cfg.Array.MaxValue,
		Rand:     storeRand,
	})
	mute := tone.NewMute(cfg.Sound.Muted)
	tones := tone.NewFanout()
	n := notify.New(store, tones, mute, notifyConfig(cfg), logger)

	ctrl, err := run.NewController(run.Options{
		Store:       store,
		Notifier:    n,
		Algorithm:   alg,
		MaxShuffles: cfg.Bogosort.MaxShuffles,
		Rand:        sortRand,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create controller: %w", err)
	}

	return &app{
		cfg:      cfg,
		store:    store,
		mute:     mute,
		tones:    tones,
		notifier: n,
		ctrl:     ctrl,
	}, nil
}

func notifyConfig(cfg *config.Config) notify.Config {
	return notify.Config{
		StepDelay:  cfg.Pacing.StepDelay,
		MergeDelay: cfg.Pacing.MergeDelay,
		Tones: tone.Params{
			Base:        cfg.Sound.BaseFrequency,
			Scale:       cfg.Sound.FrequencyScale,
			Duration:    cfg.Sound.Duration,
			Gain:        cfg.Sound.Gain,
			ReleaseGain: cfg.Sound.ReleaseGain,
		},
	}
}
