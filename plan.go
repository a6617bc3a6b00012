package radixsort

import (
	"math/bits"

	sorterrors "github.com/tamirms/radixsort/errors"
	"github.com/tamirms/radixsort/internal/partition"
)

// plan is everything fixed for the lifetime of one sort: digit geometry and
// the key and bucket partitions. It is computed once, before any worker
// starts.
type plan struct {
	n        int
	workers  int
	radix    int
	logRadix int
	mask     uint64
	passes   int

	keyBounds    []int // workers+1 boundaries into [0, n)
	bucketBounds []int // workers+1 boundaries into [0, radix)
}

func newPlan(n int, maxKey uint64, workers, radix int) *plan {
	logRadix := bits.TrailingZeros(uint(radix))
	return &plan{
		n:            n,
		workers:      workers,
		radix:        radix,
		logRadix:     logRadix,
		mask:         uint64(radix - 1),
		passes:       digitCount(maxKey, logRadix),
		keyBounds:    partition.Split(n, workers),
		bucketBounds: partition.Split(radix, workers),
	}
}

// shift returns the right shift that brings pass's digit to the low bits.
func (p *plan) shift(pass int) uint {
	return uint(pass * p.logRadix)
}

// finalBuffer reports which buffer holds the result: the buffers swap after
// every pass but the last, so an odd pass count ends in the scratch buffer.
func (p *plan) finalBuffer() Buffer {
	if p.passes%2 == 1 {
		return BufferScratch
	}
	return BufferInput
}

// digitCount returns the number of base-2^logRadix digits in maxKey, and at
// least 1 so that a max key of 0 still runs one pass.
func digitCount(maxKey uint64, logRadix int) int {
	n := 1
	for v := maxKey >> logRadix; v != 0; v >>= logRadix {
		n++
	}
	return n
}

func validRadix(radix int) bool {
	return radix >= 2 && radix <= maxRadix && radix&(radix-1) == 0
}

// Passes returns the number of digit passes a sort with the given maximum key
// and radix performs.
func Passes[K Key](maxKey K, radix int) (int, error) {
	if !validRadix(radix) {
		return 0, sorterrors.ErrInvalidRadix
	}
	return digitCount(uint64(maxKey), bits.TrailingZeros(uint(radix))), nil
}
