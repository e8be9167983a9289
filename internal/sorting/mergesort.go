package sorting

import "slices"

// mergeFrame is one pending top-down merge sort call on [left, right].
// split frames push their children; merge frames do the merge once both
// halves are sorted.
type mergeFrame struct {
	left, right int
	merge       bool
}

// mergesort is top-down merge sort driven by an explicit frame stack in the
// same post-order as the recursive version: left half, right half, merge.
// A boundary step precedes every merge.
func mergesort(s *stepper) {
	stack := []mergeFrame{{left: 0, right: len(s.data) - 1}}

	for len(stack) > 0 {
		if !s.active() {
			return
		}
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.left >= f.right {
			continue
		}

		mid := f.left + (f.right-f.left)/2
		if f.merge {
			if !s.boundary(f.left, f.right) {
				return
			}
			if !merge(s, f.left, mid, f.right) {
				return
			}
			continue
		}

		stack = append(stack,
			mergeFrame{left: f.left, right: f.right, merge: true},
			mergeFrame{left: mid + 1, right: f.right},
			mergeFrame{left: f.left, right: mid},
		)
	}
}

// merge merges the sorted runs [left, mid] and [mid+1, right], reporting
// every placement.
func merge(s *stepper, left, mid, right int) bool {
	l := slices.Clone(s.data[left : mid+1])
	r := slices.Clone(s.data[mid+1 : right+1])

	i, j, k := 0, 0, left
	for i < len(l) && j < len(r) {
		var v int
		if l[i] <= r[j] {
			v = l[i]
			i++
		} else {
			v = r[j]
			j++
		}
		if !s.write(StepWrite, k, v) {
			return false
		}
		k++
	}

	for ; i < len(l); i++ {
		if !s.write(StepWrite, k, l[i]) {
			return false
		}
		k++
	}
	for ; j < len(r); j++ {
		if !s.write(StepWrite, k, r[j]) {
			return false
		}
		k++
	}
	return true
}
