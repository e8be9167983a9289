package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/thruflo/sortviz/internal/config"
	"github.com/thruflo/sortviz/internal/run"
	"github.com/thruflo/sortviz/internal/sorting"
	"github.com/thruflo/sortviz/internal/stream"
	"github.com/thruflo/sortviz/internal/tone"
)

var (
	runJSON        bool
	runSeed        uint64
	runLength      int
	runDelay       time.Duration
	runMaxShuffles int
)

var runCmd = &cobra.Command{
	Use:   "run <algorithm>",
	Short: "Run one sort without a display",
	Long: `Run one sort to its end without a display.

By default a one-line JSON summary is printed when the run ends. With --json
every status, snapshot and tone message is written as a JSON line instead,
in the same format the web client receives.

Example:
  sortviz run quicksort
  sortviz run merge --length 20 --seed 7 --json
  sortviz run bogo --length 6 --max-shuffles 10000`,
	Args: cobra.ExactArgs(1),
	RunE: runHeadlessCmd,
}

func init() {
	f := runCmd.Flags()
	f.BoolVar(&runJSON, "json", false, "stream messages as JSON lines")
	f.Uint64Var(&runSeed, "seed", 0, "seed for the array and bogosort shuffles")
	f.IntVar(&runLength, "length", 0, "array length (default from config)")
	f.DurationVar(&runDelay, "delay", 0, "pause after each step and merge")
	f.IntVar(&runMaxShuffles, "max-shuffles", 0, "bogosort shuffle limit, 0 for unbounded (default from config)")
	rootCmd.AddCommand(runCmd)
}

// Summary is printed when a headless run ends without --json.
type Summary struct {
	Run       run.Info `json:"run"`
	Sorted    bool     `json:"sorted"`
	Length    int      `json:"length"`
	Values    []int    `json:"values"`
	ElapsedMS int64    `json:"elapsed_ms"`
}

func runHeadlessCmd(cmd *cobra.Command, args []string) error {
	alg, err := sorting.Parse(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("length") {
		cfg.Array.Length = runLength
	}
	if flags.Changed("max-shuffles") {
		cfg.Bogosort.MaxShuffles = runMaxShuffles
	}
	cfg.Pacing.StepDelay = runDelay
	cfg.Pacing.MergeDelay = runDelay
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}

	logger, err := setupLogging(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	var seed *uint64
	if flags.Changed("seed") {
		seed = &runSeed
	}
	a, err := newApp(cfg, logger, seed)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return runHeadless(ctx, a, alg, cmd.OutOrStdout(), runJSON)
}

// runHeadless sorts once and reports to out. Cancelling ctx stops the run;
// the partial result is still reported.
func runHeadless(ctx context.Context, a *app, alg sorting.Algorithm, out io.Writer, jsonLines bool) error {
	if jsonLines {
		enc := stream.NewEncoder(out)
		withTones := !a.mute.Muted()
		a.mute.Set(false)

		// The notifier calls the sink right after each publish, so every
		// snapshot is written in order even when no tone is wanted.
		a.tones.Add(tone.SinkFunc(func(t tone.Tone) {
			enc.Encode(stream.SnapshotMessage(a.store.Current()))
			if withTones {
				enc.Encode(stream.ToneMessage(t))
			}
		}))
		unsubscribe := a.ctrl.OnChange(func(info run.Info) {
			enc.Encode(stream.StatusMessage(info))
		})
		defer unsubscribe()

		enc.Encode(stream.StatusMessage(a.ctrl.Info()))
		enc.Encode(stream.SnapshotMessage(a.store.Current()))
	}

	if _, err := a.ctrl.Start(alg); err != nil {
		return err
	}
	if err := a.ctrl.Wait(ctx); err != nil {
		a.ctrl.Stop()
		if err := a.ctrl.Wait(context.Background()); err != nil {
			return err
		}
	}

	if jsonLines {
		return nil
	}

	info := a.ctrl.Info()
	values := a.store.Snapshot()
	return json.NewEncoder(out).Encode(Summary{
		Run:       info,
		Sorted:    sorting.IsSorted(values),
		Length:    len(values),
		Values:    values,
		ElapsedMS: info.EndedAt.Sub(info.StartedAt).Milliseconds(),
	})
}
