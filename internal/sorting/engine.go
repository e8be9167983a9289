package sorting

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/thruflo/sortviz/internal/cancel"
)

// Result summarises a finished or cancelled run.
type Result struct {
	Algorithm Algorithm
	// Steps is the number of mutating steps reported.
	Steps int
	// Boundaries is the number of merge boundaries reported.
	Boundaries int
	// Shuffles is the number of bogosort shuffles started.
	Shuffles int
	// Cancelled is set when the run stopped because its token was cancelled.
	Cancelled bool
	// Exhausted is set when bogosort hit its shuffle limit unsorted.
	Exhausted bool
}

// Option configures a run.
type Option func(*options)

type options struct {
	rng         *rand.Rand
	maxShuffles int
}

// WithRand sets the random source used by bogosort.
func WithRand(r *rand.Rand) Option {
	return func(o *options) {
		o.rng = r
	}
}

// WithMaxShuffles bounds the number of bogosort shuffles. Zero or a negative
// value means unbounded.
func WithMaxShuffles(n int) Option {
	return func(o *options) {
		o.maxShuffles = n
	}
}

// Run sorts data in place with the given algorithm, reporting each step to
// obs. It returns when the data is sorted, when tok is cancelled, or when
// bogosort exhausts its shuffle limit. A nil tok never cancels and a nil obs
// discards steps.
func Run(alg Algorithm, data []int, tok *cancel.Token, obs Observer, opts ...Option) (Result, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if obs == nil {
		obs = nopObserver{}
	}

	s := &stepper{
		data: data,
		tok:  tok,
		obs:  obs,
	}

	var res Result
	switch alg {
	case Quicksort:
		quicksort(s)
	case Bubblesort:
		bubblesort(s)
	case Bogosort:
		res.Shuffles, res.Exhausted = bogosort(s, o.rng, o.maxShuffles)
	case Mergesort:
		mergesort(s)
	case Insertionsort:
		insertionsort(s)
	case Selectionsort:
		selectionsort(s)
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, string(alg))
	}

	res.Algorithm = alg
	res.Steps = s.seq
	res.Boundaries = s.boundaries
	res.Cancelled = s.stopped
	return res, nil
}

// IsSorted reports whether values are in non-decreasing order.
func IsSorted(values []int) bool {
	return slices.IsSorted(values)
}

// stepper owns the working slice of a run. Every mutation goes through it so
// that the token check and the observer call cannot be forgotten.
type stepper struct {
	data       []int
	tok        *cancel.Token
	obs        Observer
	seq        int
	boundaries int
	stopped    bool
}

// active checks the token and remembers a cancellation.
func (s *stepper) active() bool {
	if s.stopped {
		return false
	}
	if !s.tok.Active() {
		s.stopped = true
		return false
	}
	return true
}

func (s *stepper) emit(kind StepKind, i, j int) {
	s.seq++
	s.obs.OnStep(Step{
		Seq:      s.seq,
		Kind:     kind,
		I:        i,
		J:        j,
		Snapshot: slices.Clone(s.data),
	})
}

func (s *stepper) swap(i, j int) bool {
	if !s.active() {
		return false
	}
	s.data[i], s.data[j] = s.data[j], s.data[i]
	s.emit(StepSwap, i, j)
	return true
}

func (s *stepper) write(kind StepKind, k, v int) bool {
	if !s.active() {
		return false
	}
	s.data[k] = v
	s.emit(kind, k, k)
	return true
}

func (s *stepper) boundary(left, right int) bool {
	if !s.active() {
		return false
	}
	s.boundaries++
	s.obs.OnStep(Step{
		Seq:  s.seq,
		Kind: StepBoundary,
		I:    left,
		J:    right,
	})
	return true
}
