package ranking

import (
	"cmp"
	"slices"
)

// Sort orders outcomes by DurationSeconds, then DistanceMeters, both
// ascending. The sort is stable and in place.
func Sort(outcomes []Outcome) {
	slices.SortStableFunc(outcomes, compare)
}

func compare(a, b Outcome) int {
	if c := cmp.Compare(a.DurationSeconds, b.DurationSeconds); c != 0 {
		return c
	}
	return cmp.Compare(a.DistanceMeters, b.DistanceMeters)
}
