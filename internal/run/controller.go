package run

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/thruflo/sortviz/internal/array"
	"github.com/thruflo/sortviz/internal/cancel"
	"github.com/thruflo/sortviz/internal/logging"
	"github.com/thruflo/sortviz/internal/notify"
	"github.com/thruflo/sortviz/internal/sorting"
)

// ErrRunActive is returned when an operation needs an idle controller.
var ErrRunActive = errors.New("a sort is already running")

// Status is the lifecycle state of the current or last run.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusStopping  Status = "stopping"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusExhausted Status = "exhausted"
)

// Active reports whether a run goroutine may still be mutating.
func (s Status) Active() bool {
	return s == StatusRunning || s == StatusStopping
}

// Info describes the current or last run.
type Info struct {
	ID        string            `json:"id,omitempty"`
	Algorithm sorting.Algorithm `json:"algorithm"`
	Status    Status            `json:"status"`
	Steps     int               `json:"steps"`
	Shuffles  int               `json:"shuffles,omitempty"`
	StartedAt time.Time         `json:"started_at,omitzero"`
	EndedAt   time.Time         `json:"ended_at,omitzero"`
}

// Options holds the dependencies of a Controller.
type Options struct {
	Store    *array.Store
	Notifier *notify.Notifier
	// Algorithm is the initial selection. Defaults to quicksort.
	Algorithm sorting.Algorithm
	// MaxShuffles bounds bogosort; zero means unbounded.
	MaxShuffles int
	// Rand drives bogosort. Nil uses the global source.
	Rand   *rand.Rand
	Logger *logging.Logger
	// NewID generates run ids. Defaults to random UUIDs.
	NewID func() string
}

// Controller starts, stops and resets runs. It is safe for concurrent use.
type Controller struct {
	store    *array.Store
	notifier *notify.Notifier
	opts     Options
	log      *logging.Logger

	mu        sync.Mutex
	algorithm sorting.Algorithm
	info      Info
	tok       *cancel.Token
	done      chan struct{}
	steps     atomic.Int64

	listenerMu sync.Mutex
	listeners  map[int]func(Info)
	nextID     int
	emitMu     sync.Mutex
}

// NewController creates an idle Controller.
func NewController(opts Options) (*Controller, error) {
	if opts.Store == nil {
		return nil, errors.New("store is required")
	}
	if opts.Notifier == nil {
		return nil, errors.New("notifier is required")
	}
	if opts.Algorithm == "" {
		opts.Algorithm = sorting.Quicksort
	}
	if !opts.Algorithm.Valid() {
		return nil, fmt.Errorf("%w: %q", sorting.ErrUnknownAlgorithm, string(opts.Algorithm))
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	return &Controller{
		store:     opts.Store,
		notifier:  opts.Notifier,
		opts:      opts,
		log:       opts.Logger.With("component", "run"),
		algorithm: opts.Algorithm,
		info:      Info{Algorithm: opts.Algorithm, Status: StatusIdle},
		listeners: make(map[int]func(Info)),
	}, nil
}

// Store returns the array store the controller sorts.
func (c *Controller) Store() *array.Store {
	return c.store
}

// Algorithm returns the selected algorithm.
func (c *Controller) Algorithm() sorting.Algorithm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.algorithm
}

// SetAlgorithm changes the selection. It fails with ErrRunActive while a run
// is in flight.
func (c *Controller) SetAlgorithm(alg sorting.Algorithm) error {
	if !alg.Valid() {
		return fmt.Errorf("%w: %q", sorting.ErrUnknownAlgorithm, string(alg))
	}

	c.mu.Lock()
	if c.info.Status.Active() {
		c.mu.Unlock()
		return ErrRunActive
	}
	c.algorithm = alg
	c.info.Algorithm = alg
	c.mu.Unlock()

	c.notifyChange()
	return nil
}

// Info returns the state of the current or last run.
func (c *Controller) Info() Info {
	c.mu.Lock()
	defer c.mu.Unlock()
	info := c.info
	if info.Status.Active() {
		info.Steps = int(c.steps.Load())
	}
	return info
}

// Start begins sorting a copy of the store's snapshot with alg, or with the
// selected algorithm when alg is empty. It fails with ErrRunActive while
// another run is running.
func (c *Controller) Start(alg sorting.Algorithm) (Info, error) {
	if alg != "" && !alg.Valid() {
		return Info{}, fmt.Errorf("%w: %q", sorting.ErrUnknownAlgorithm, string(alg))
	}

	c.mu.Lock()
	// A stopped run is still unwinding; it will not mutate any more, so
	// wait for it rather than refusing.
	for c.info.Status == StatusStopping {
		done := c.done
		c.mu.Unlock()
		<-done
		c.mu.Lock()
	}
	if c.info.Status == StatusRunning {
		info := c.info
		c.mu.Unlock()
		return info, ErrRunActive
	}

	if alg == "" {
		alg = c.algorithm
	}
	tok := cancel.New()
	done := make(chan struct{})
	data := c.store.Snapshot()

	c.algorithm = alg
	c.tok = tok
	c.done = done
	c.steps.Store(0)
	c.info = Info{
		ID:        c.opts.NewID(),
		Algorithm: alg,
		Status:    StatusRunning,
		StartedAt: time.Now().UTC(),
	}
	info := c.info
	c.mu.Unlock()

	go c.run(info, data, tok, done)
	c.notifyChange()
	return info, nil
}

// Stop cancels the running sort. It reports whether a run was running; the
// run goroutine unwinds on its own.
func (c *Controller) Stop() bool {
	c.mu.Lock()
	if c.info.Status != StatusRunning {
		c.mu.Unlock()
		return false
	}
	c.tok.Cancel()
	c.info.Status = StatusStopping
	id := c.info.ID
	c.mu.Unlock()

	c.log.Info("stop requested", "run", id)
	c.notifyChange()
	return true
}

// Reset stops any run, waits for it to unwind, clears the run state and
// regenerates the array.
func (c *Controller) Reset() array.Snapshot {
	c.mu.Lock()
	for c.info.Status.Active() {
		c.tok.Cancel()
		c.info.Status = StatusStopping
		done := c.done
		c.mu.Unlock()
		<-done
		c.mu.Lock()
	}
	c.info = Info{Algorithm: c.algorithm, Status: StatusIdle}
	snap := c.store.Reset()
	c.mu.Unlock()

	c.log.Debug("array reset", "length", len(snap))
	c.notifyChange()
	return snap
}

// Wait blocks until no run is active or ctx is done.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	done := c.done
	active := c.info.Status.Active()
	c.mu.Unlock()

	if !active || done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OnChange registers fn to be called after every state change. Calls are
// serialised and always carry the latest Info. The returned function
// unregisters fn.
func (c *Controller) OnChange(fn func(Info)) func() {
	c.listenerMu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.listenerMu.Unlock()

	return func() {
		c.listenerMu.Lock()
		delete(c.listeners, id)
		c.listenerMu.Unlock()
	}
}

func (c *Controller) notifyChange() {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.listenerMu.Lock()
	fns := make([]func(Info), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.listenerMu.Unlock()

	info := c.Info()
	for _, fn := range fns {
		fn(info)
	}
}

// run executes one sort on the run goroutine.
func (c *Controller) run(info Info, data []int, tok *cancel.Token, done chan struct{}) {
	defer close(done)

	log := c.log.WithFields(map[string]any{
		"run":       info.ID,
		"algorithm": info.Algorithm,
	})
	log.Info("run started", "length", len(data))

	inner := c.notifier.Observer(tok)
	obs := sorting.ObserverFunc(func(s sorting.Step) {
		if s.Kind.Mutating() {
			c.steps.Add(1)
		}
		inner.OnStep(s)
	})

	opts := []sorting.Option{sorting.WithMaxShuffles(c.opts.MaxShuffles)}
	if c.opts.Rand != nil {
		opts = append(opts, sorting.WithRand(c.opts.Rand))
	}

	res, err := sorting.Run(info.Algorithm, data, tok, obs, opts...)

	status := StatusCompleted
	switch {
	case err != nil:
		log.Error("run failed", "error", err)
		status = StatusCancelled
	case res.Cancelled:
		status = StatusCancelled
	case res.Exhausted:
		status = StatusExhausted
	}

	c.mu.Lock()
	c.info.Status = status
	c.info.Steps = res.Steps
	c.info.Shuffles = res.Shuffles
	c.info.EndedAt = time.Now().UTC()
	c.tok = nil
	elapsed := c.info.EndedAt.Sub(c.info.StartedAt)
	c.mu.Unlock()

	log.Info("run finished", "status", status, "steps", res.Steps, "elapsed", elapsed.Round(time.Millisecond))
	c.notifyChange()
}
