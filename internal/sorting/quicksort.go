package sorting

// span is an inclusive index range still to be partitioned.
type span struct {
	lo, hi int
}

// quicksort is Lomuto quicksort with the last element as pivot. Ranges are
// kept on an explicit stack; the right range is pushed first so the left one
// is partitioned first, matching the recursive order.
func quicksort(s *stepper) {
	stack := []span{{0, len(s.data) - 1}}

	for len(stack) > 0 {
		if !s.active() {
			return
		}
		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if r.lo >= r.hi {
			continue
		}

		p, ok := partition(s, r.lo, r.hi)
		if !ok {
			return
		}
		stack = append(stack, span{p + 1, r.hi}, span{r.lo, p - 1})
	}
}

// partition moves everything smaller than data[hi] to the front of the range
// and returns the pivot's final index. Self-swaps are performed and reported
// like any other swap.
func partition(s *stepper, lo, hi int) (int, bool) {
	pivot := s.data[hi]
	i := lo - 1

	for j := lo; j < hi; j++ {
		if !s.active() {
			return 0, false
		}
		if s.data[j] < pivot {
			i++
			if !s.swap(i, j) {
				return 0, false
			}
		}
	}

	if !s.swap(i+1, hi) {
		return 0, false
	}
	return i + 1, true
}
