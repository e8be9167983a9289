// Package cancel provides the per-run cancellation token checked by the
// sorting steppers before every mutation.
//
// A Token pairs an atomic flag, which the steppers poll in their inner loops,
// with a channel that is closed on cancellation so that blocking waits (the
// pacing delay between steps) can wake up early.
package cancel

import (
	"sync"
	"sync/atomic"
)

// Token is a one-shot cancellation signal for a single run.
//
// A Token is safe for concurrent use: Active and Done may be called from the
// run goroutine while Cancel is called from a controller goroutine.
type Token struct {
	cancelled atomic.Bool
	once      sync.Once
	done      chan struct{}
}

// New returns an active Token.
func New() *Token {
	return &Token{done: make(chan struct{})}
}

// Active reports whether the run may keep mutating. This is a single atomic
// load so it is cheap enough to call once per inner-loop iteration.
//
// A nil Token is always active.
func (t *Token) Active() bool {
	if t == nil {
		return true
	}
	return !t.cancelled.Load()
}

// Cancel marks the token cancelled. Safe to call multiple times.
func (t *Token) Cancel() {
	if t == nil {
		return
	}
	t.cancelled.Store(true)
	t.once.Do(func() { close(t.done) })
}

// Done returns a channel that is closed once Cancel has been called.
// A nil Token returns a nil channel, which blocks forever.
func (t *Token) Done() <-chan struct{} {
	if t == nil {
		return nil
	}
	return t.done
}
