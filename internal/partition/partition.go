// Package partition splits a contiguous index range into near-equal,
// contiguous sub-ranges, one per worker.
package partition

// Split partitions [0, n) into parts contiguous ranges and returns the
// parts+1 boundaries. Range t is [bounds[t], bounds[t+1]).
//
// Every range holds either n/parts or n/parts+1 elements. The n%parts longer
// ranges are the first ones, so the split is deterministic and independent of
// anything but n and parts. When parts > n the trailing ranges are empty.
//
// Panics if parts < 1 or n < 0.
func Split(n, parts int) []int {
	if parts < 1 {
		panic("partition: parts must be positive")
	}
	if n < 0 {
		panic("partition: negative length")
	}

	quotient := n / parts
	remainder := n % parts

	bounds := make([]int, parts+1)
	for t := range parts {
		size := quotient
		if t < remainder {
			size++
		}
		bounds[t+1] = bounds[t] + size
	}
	return bounds
}

// Range returns the half-open range owned by part t.
func Range(bounds []int, t int) (lo, hi int) {
	return bounds[t], bounds[t+1]
}
