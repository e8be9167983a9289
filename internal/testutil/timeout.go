package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thruflo/sortviz/internal/run"
)

const (
	// DefaultRunTimeout bounds waiting for an unpaced run to finish.
	DefaultRunTimeout = 5 * time.Second

	// DefaultTestBuffer is subtracted from the test deadline to leave time
	// for cleanup.
	DefaultTestBuffer = 2 * time.Second
)

// ContextWithTestDeadline returns a context that ends DefaultTestBuffer
// before the test's deadline, or after fallback when the test has none.
func ContextWithTestDeadline(t *testing.T, fallback time.Duration) (context.Context, context.CancelFunc) {
	t.Helper()

	if deadline, ok := t.Deadline(); ok {
		adjusted := deadline.Add(-DefaultTestBuffer)
		if remaining := time.Until(adjusted); remaining > 0 && remaining < fallback {
			return context.WithDeadline(context.Background(), adjusted)
		}
	}
	return context.WithTimeout(context.Background(), fallback)
}

// WaitIdle blocks until ctrl has no active run, failing the test after
// DefaultRunTimeout.
func WaitIdle(t *testing.T, ctrl *run.Controller) {
	t.Helper()

	ctx, cancel := ContextWithTestDeadline(t, DefaultRunTimeout)
	defer cancel()
	require.NoError(t, ctrl.Wait(ctx), "run did not finish")
}
