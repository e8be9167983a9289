package sorting

import "math/rand/v2"

// bogosort shuffles until sorted. Each Fisher-Yates shuffle walks from the
// last index down, swapping with a random index at or below it, and reports
// every swap including self-swaps. maxShuffles <= 0 means no limit.
func bogosort(s *stepper, rng *rand.Rand, maxShuffles int) (shuffles int, exhausted bool) {
	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}

	for !IsSorted(s.data) {
		if !s.active() {
			return shuffles, false
		}
		if maxShuffles > 0 && shuffles >= maxShuffles {
			return shuffles, true
		}
		shuffles++

		for i := len(s.data) - 1; i > 0; i-- {
			if !s.swap(i, intN(i+1)) {
				return shuffles, false
			}
		}
	}
	return shuffles, false
}
