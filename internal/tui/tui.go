package tui

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/thruflo/sortviz/internal/logging"
	"github.com/thruflo/sortviz/internal/run"
	"github.com/thruflo/sortviz/internal/sorting"
	"github.com/thruflo/sortviz/internal/tone"
)

// Options configures a TUI.
type Options struct {
	Controller *run.Controller
	// Mute is shared with the notifier. Nil creates an unmuted flag.
	Mute *tone.Mute
	// In and Out default to the process's stdin and stdout.
	In     *os.File
	Out    io.Writer
	Logger *logging.Logger
}

// TUI draws the array as a bar chart and maps key presses onto the
// controller.
type TUI struct {
	terminal *Terminal
	ctrl     *run.Controller
	mute     *tone.Mute
	out      io.Writer
	log      *logging.Logger

	mu     sync.Mutex
	state  ViewState
	belled string // id of the last run the bell rang for
}

// New creates a TUI for opts.Controller.
func New(opts Options) (*TUI, error) {
	if opts.Controller == nil {
		return nil, errors.New("controller is required")
	}
	if opts.Mute == nil {
		opts.Mute = tone.NewMute(false)
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}

	store := opts.Controller.Store()
	return &TUI{
		terminal: NewTerminal(opts.In, opts.Out),
		ctrl:     opts.Controller,
		mute:     opts.Mute,
		out:      opts.Out,
		log:      opts.Logger.With("component", "tui"),
		state: ViewState{
			Algorithm: opts.Controller.Algorithm(),
			Run:       opts.Controller.Info(),
			Muted:     opts.Mute.Muted(),
			Values:    store.Snapshot(),
			MaxValue:  store.MaxValue(),
		},
	}, nil
}

// State returns a copy of the current view state.
func (t *TUI) State() ViewState {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.state
	s.Values = append([]int(nil), s.Values...)
	return s
}

// Run puts the terminal in raw mode and runs the event loop until the user
// quits or ctx is done.
func (t *TUI) Run(ctx context.Context) error {
	if err := t.terminal.EnterRaw(); err != nil {
		return err
	}
	defer t.terminal.ExitRaw()

	return t.loop(ctx, t.terminal)
}

func (t *TUI) loop(ctx context.Context, keys io.Reader) error {
	updates, unsubscribe := t.ctrl.Store().Subscribe()
	defer unsubscribe()

	// Listener calls are serialised, so a single pending slot is enough to
	// keep only the latest info.
	infos := make(chan run.Info, 1)
	stopInfo := t.ctrl.OnChange(func(info run.Info) {
		select {
		case <-infos:
		default:
		}
		infos <- info
	})
	defer stopInfo()

	keyCh := make(chan KeyEvent, 10)
	keyErr := make(chan error, 1)
	go func() {
		reader := NewKeyReader(keys)
		for {
			ev, err := reader.ReadKey()
			if err != nil {
				keyErr <- err
				return
			}
			select {
			case keyCh <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	t.write(ClearScreen + CursorHide)
	defer t.write(CursorShow + Reset + "\r\n")
	t.observe(t.ctrl.Info())
	t.draw()

	for {
		select {
		case <-ctx.Done():
			return nil

		case err := <-keyErr:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err

		case ev := <-keyCh:
			if t.Handle(ParseCommand(ev)) {
				return nil
			}

		case u := <-updates:
			t.mu.Lock()
			t.state.Values = u.Values
			t.mu.Unlock()
			t.observe(t.ctrl.Info())

		case info := <-infos:
			t.observe(info)
		}
		t.draw()
	}
}

// Handle applies a command to the controller. It reports whether the user
// asked to quit. Commands that the controller refuses, such as changing the
// algorithm mid-run, leave the state unchanged.
func (t *TUI) Handle(cmd Command) (quit bool) {
	switch cmd.Action {
	case ActionStart:
		if info, err := t.ctrl.Start(""); err != nil {
			t.log.Debug("start refused", "error", err, "run", info.ID)
		}
	case ActionStop:
		t.ctrl.Stop()
	case ActionReset:
		snap := t.ctrl.Reset()
		t.mu.Lock()
		t.state.Values = snap
		t.mu.Unlock()
	case ActionMute:
		muted := t.mute.Toggle()
		t.mu.Lock()
		t.state.Muted = muted
		t.mu.Unlock()
	case ActionNext:
		t.selectAlgorithm(t.ctrl.Algorithm().Next())
	case ActionPrev:
		t.selectAlgorithm(t.ctrl.Algorithm().Prev())
	case ActionSelect:
		t.selectAlgorithm(cmd.Algorithm)
	case ActionQuit:
		return true
	}

	t.observe(t.ctrl.Info())
	return false
}

func (t *TUI) selectAlgorithm(alg sorting.Algorithm) {
	if err := t.ctrl.SetAlgorithm(alg); err != nil {
		t.log.Debug("algorithm change refused", "algorithm", alg, "error", err)
	}
}

// observe records info and rings the bell once per completed run.
func (t *TUI) observe(info run.Info) {
	t.mu.Lock()
	t.state.Run = info
	t.state.Algorithm = t.ctrl.Algorithm()
	t.state.Muted = t.mute.Muted()
	ring := info.Status == run.StatusCompleted && info.ID != "" && info.ID != t.belled && !t.state.Muted
	if info.Status == run.StatusCompleted {
		t.belled = info.ID
	}
	t.mu.Unlock()

	if ring {
		t.write(Bell)
	}
}

func (t *TUI) draw() {
	width, height := t.terminal.Size()
	lines := t.State().Render(width, height)

	var b strings.Builder
	b.WriteString(CursorHome)
	for i, line := range lines {
		b.WriteString(line)
		b.WriteString(ClearLine)
		if i < len(lines)-1 {
			b.WriteString("\r\n")
		}
	}
	t.write(b.String())
}

func (t *TUI) write(s string) {
	io.WriteString(t.out, s)
}
