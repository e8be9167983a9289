// Package testutil provides shared test helpers for sortviz.
//
// # Fixtures
//
//   - NewController(t, Fixture{...}) builds a store, notifier and controller
//     with a seeded array and no pacing by default
//   - QuietLogger() returns a logger that discards output
//
// # Environment Helpers
//
//   - SetupTestDir(t, mutate) creates a temp dir holding .sortviz/config.yaml
//   - FindProjectRoot(t) finds the directory containing go.mod
//
// # Timeouts
//
//   - ContextWithTestDeadline(t, fallback) respects the test deadline
//   - WaitIdle(t, ctrl) waits for the current run to finish
//
// # Assertions
//
//   - AssertSorted(t, values), AssertPermutation(t, before, after)
//   - AssertRunStatus(t, info, status)
package testutil
