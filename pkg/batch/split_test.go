package batch

import (
	"fmt"
	"slices"
	"testing"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestSplit(t *testing.T) {
	tests := []struct {
		n, size   int
		wantSizes []int
	}{
		{0, 25, nil},
		{1, 25, []int{1}},
		{25, 25, []int{25}},
		{26, 25, []int{25, 1}},
		{30, 25, []int{25, 5}},
		{50, 25, []int{25, 25}},
		{7, 3, []int{3, 3, 1}},
		{3, 0, []int{1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d,size=%d", tt.n, tt.size), func(t *testing.T) {
			got := Split(seq(tt.n), tt.size)

			var sizes []int
			for _, b := range got {
				sizes = append(sizes, len(b))
			}
			if !slices.Equal(sizes, tt.wantSizes) {
				t.Errorf("batch sizes = %v, want %v", sizes, tt.wantSizes)
			}
		})
	}
}

func TestSplit_ConcatenationReproducesInput(t *testing.T) {
	for n := 0; n <= 80; n++ {
		for _, size := range []int{1, 2, 7, 24, 25} {
			input := seq(n)
			batches := Split(input, size)

			if len(batches) != Count(n, size) {
				t.Errorf("n=%d size=%d: %d batches, want %d", n, size, len(batches), Count(n, size))
			}

			var joined []int
			for _, b := range batches {
				if len(b) == 0 || len(b) > size {
					t.Errorf("n=%d size=%d: batch length %d out of range", n, size, len(b))
				}
				joined = append(joined, b...)
			}
			if !slices.Equal(joined, input) {
				t.Errorf("n=%d size=%d: concatenation = %v, want %v", n, size, joined, input)
			}
		}
	}
}

func TestSplit_BatchesDoNotGrowIntoNeighbours(t *testing.T) {
	input := seq(6)
	batches := Split(input, 3)

	_ = append(batches[0], 99)

	if input[3] != 3 {
		t.Errorf("append to first batch overwrote input[3] = %d", input[3])
	}
}

func TestCount(t *testing.T) {
	tests := []struct {
		n, size, want int
	}{
		{0, 25, 0},
		{1, 25, 1},
		{25, 25, 1},
		{26, 25, 2},
		{30, 25, 2},
		{75, 25, 3},
		{76, 25, 4},
		{5, 0, 5},
	}

	for _, tt := range tests {
		if got := Count(tt.n, tt.size); got != tt.want {
			t.Errorf("Count(%d, %d) = %d, want %d", tt.n, tt.size, got, tt.want)
		}
	}
}
