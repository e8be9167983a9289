// Package sorting implements the six instrumented sorting algorithms that
// sortviz animates.
//
// Each algorithm works on the slice it is given (callers pass a private copy)
// and reports every visible mutation to an Observer as a Step carrying a copy
// of the array after the change. Before every mutation the algorithm checks
// the run's cancel.Token; once the token is cancelled it returns immediately,
// leaving the slice partially sorted.
//
// The algorithms know nothing about timing, rendering or sound. Pacing is the
// observer's business: sortviz's notifier sleeps inside OnStep, which is what
// makes each step visible.
//
// Quicksort and merge sort run from explicit stacks rather than recursion,
// visiting ranges in the same order a recursive implementation would, so the
// sequence of steps is identical to the textbook versions.
package sorting
