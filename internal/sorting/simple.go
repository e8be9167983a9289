package sorting

// bubblesort makes n-1 passes of adjacent compare-and-swap, shrinking the
// unsorted prefix by one each pass. There is no early exit.
func bubblesort(s *stepper) {
	n := len(s.data)
	for i := 0; i < n-1; i++ {
		for j := 0; j < n-i-1; j++ {
			if !s.active() {
				return
			}
			if s.data[j] > s.data[j+1] {
				if !s.swap(j, j+1) {
					return
				}
			}
		}
	}
}

// insertionsort shifts larger elements right one slot at a time, then drops
// the key into the gap. Elements already in place produce no steps.
func insertionsort(s *stepper) {
	for i := 1; i < len(s.data); i++ {
		if !s.active() {
			return
		}
		key := s.data[i]
		j := i - 1

		for j >= 0 && s.data[j] > key {
			if !s.write(StepShift, j+1, s.data[j]) {
				return
			}
			j--
		}

		if j+1 != i {
			if !s.write(StepPlace, j+1, key) {
				return
			}
		}
	}
}

// selectionsort swaps the minimum of the unsorted suffix into place. Passes
// whose minimum is already in place swap nothing.
func selectionsort(s *stepper) {
	n := len(s.data)
	for i := 0; i < n-1; i++ {
		minIdx := i
		for j := i + 1; j < n; j++ {
			if !s.active() {
				return
			}
			if s.data[j] < s.data[minIdx] {
				minIdx = j
			}
		}

		if minIdx != i {
			if !s.swap(i, minIdx) {
				return
			}
		}
	}
}
