package sorting

// StepKind identifies the mutation a Step reports.
type StepKind int

const (
	// StepSwap exchanges the values at I and J.
	StepSwap StepKind = iota
	// StepShift copies the value at I-1 into I during insertion sort.
	StepShift
	// StepPlace drops the held key into its final slot I.
	StepPlace
	// StepWrite overwrites slot I during a merge.
	StepWrite
	// StepBoundary marks the start of a merge of [I, J]. It mutates nothing
	// and carries no snapshot.
	StepBoundary
)

// String returns the kind name used in stream messages and logs.
func (k StepKind) String() string {
	switch k {
	case StepSwap:
		return "swap"
	case StepShift:
		return "shift"
	case StepPlace:
		return "place"
	case StepWrite:
		return "write"
	case StepBoundary:
		return "boundary"
	default:
		return "unknown"
	}
}

// Mutating reports whether the step changed the array.
func (k StepKind) Mutating() bool {
	return k != StepBoundary
}

// Step is one observable event of a run.
type Step struct {
	// Seq counts mutating steps from 1. Boundary steps carry the Seq of the
	// last mutation before them.
	Seq  int
	Kind StepKind
	I, J int
	// Snapshot is a copy of the working array after the mutation, owned by
	// the receiver. Nil for boundary steps.
	Snapshot []int
}

// Observer receives the steps of a run, in order, on the run's goroutine.
// Blocking in OnStep paces the run.
type Observer interface {
	OnStep(Step)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Step)

// OnStep calls f(s).
func (f ObserverFunc) OnStep(s Step) {
	f(s)
}

type nopObserver struct{}

func (nopObserver) OnStep(Step) {}
