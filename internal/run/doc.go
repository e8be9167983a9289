// Package run owns the lifecycle of sort runs: which algorithm is selected,
// whether a run is in flight, and how it is started, stopped and reset.
//
// At most one run is active at a time. Start rejects a second run with
// ErrRunActive instead of letting two runs race over the same store; a run
// that has been stopped but is still unwinding is waited for. Stop is
// advisory: it cancels the run's token and returns immediately, and the run
// goroutine notices at its next check or pacing wait.
package run
