package sorting

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Algorithm names one of the supported sorting algorithms.
type Algorithm string

const (
	Quicksort     Algorithm = "quicksort"
	Bubblesort    Algorithm = "bubblesort"
	Bogosort      Algorithm = "bogosort"
	Mergesort     Algorithm = "mergesort"
	Insertionsort Algorithm = "insertionsort"
	Selectionsort Algorithm = "selectionsort"
)

// ErrUnknownAlgorithm is returned by Parse for names it does not recognise.
var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// algorithms is the selector order shown by every surface.
var algorithms = []Algorithm{
	Quicksort,
	Bubblesort,
	Bogosort,
	Mergesort,
	Insertionsort,
	Selectionsort,
}

var titles = map[Algorithm]string{
	Quicksort:     "QuickSort",
	Bubblesort:    "BubbleSort",
	Bogosort:      "BogoSort",
	Mergesort:     "MergeSort",
	Insertionsort: "InsertionSort",
	Selectionsort: "SelectionSort",
}

// Algorithms returns all algorithms in selector order.
func Algorithms() []Algorithm {
	return slices.Clone(algorithms)
}

// Names returns the algorithm names in selector order.
func Names() []string {
	return lo.Map(algorithms, func(a Algorithm, _ int) string {
		return string(a)
	})
}

// Parse resolves a user-supplied algorithm name. Matching ignores case,
// separators and a missing "sort" suffix, so "Quick", "merge-sort" and
// "insertion_sort" are all accepted.
func Parse(name string) (Algorithm, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.NewReplacer("-", "", "_", "", " ", "").Replace(normalized)
	if normalized != "" && !strings.HasSuffix(normalized, "sort") {
		normalized += "sort"
	}

	a := Algorithm(normalized)
	if !lo.Contains(algorithms, a) {
		return "", fmt.Errorf("%w: %q (want one of %s)", ErrUnknownAlgorithm, name, strings.Join(Names(), ", "))
	}
	return a, nil
}

// Valid reports whether a is a supported algorithm.
func (a Algorithm) Valid() bool {
	return lo.Contains(algorithms, a)
}

// String returns the algorithm name.
func (a Algorithm) String() string {
	return string(a)
}

// Title returns the display label, e.g. "QuickSort".
func (a Algorithm) Title() string {
	if t, ok := titles[a]; ok {
		return t
	}
	return string(a)
}

// Next returns the algorithm after a in selector order, wrapping around.
func (a Algorithm) Next() Algorithm {
	return a.offset(1)
}

// Prev returns the algorithm before a in selector order, wrapping around.
func (a Algorithm) Prev() Algorithm {
	return a.offset(-1)
}

func (a Algorithm) offset(delta int) Algorithm {
	idx := slices.Index(algorithms, a)
	if idx < 0 {
		return algorithms[0]
	}
	n := len(algorithms)
	return algorithms[((idx+delta)%n+n)%n]
}
