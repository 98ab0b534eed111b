package batch

// Split partitions items into contiguous batches of at most size elements.
// Batches share the backing array of items; callers must not append to them.
// A size below 1 is treated as 1.
func Split[T any](items []T, size int) [][]T {
	if size < 1 {
		size = 1
	}
	if len(items) == 0 {
		return nil
	}

	batches := make([][]T, 0, Count(len(items), size))
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		batches = append(batches, items[start:end:end])
	}
	return batches
}

// Count returns the number of batches Split produces for n items, ceil(n/size).
func Count(n, size int) int {
	if size < 1 {
		size = 1
	}
	if n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}
