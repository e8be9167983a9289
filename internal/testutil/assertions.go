package testutil

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thruflo/sortviz/internal/run"
	"github.com/thruflo/sortviz/internal/sorting"
)

// AssertSorted checks that values are in non-decreasing order.
func AssertSorted(t *testing.T, values []int) bool {
	t.Helper()
	return assert.True(t, sorting.IsSorted(values), "not sorted: %v", values)
}

// AssertPermutation checks that after holds exactly the values of before.
func AssertPermutation(t *testing.T, before, after []int) bool {
	t.Helper()
	a, b := slices.Clone(before), slices.Clone(after)
	slices.Sort(a)
	slices.Sort(b)
	return assert.Equal(t, a, b, "values changed, not just their order")
}

// AssertRunStatus checks the status of a run.
func AssertRunStatus(t *testing.T, info run.Info, want run.Status) bool {
	t.Helper()
	return assert.Equal(t, want, info.Status, "run %s (%s) status", info.ID, info.Algorithm)
}
