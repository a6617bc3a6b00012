// Package verify checks sort results: order, multiset equality with the
// input, and an ordered digest for comparing runs.
package verify

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/xxh3"

	sorterrors "github.com/tamirms/radixsort/errors"
)

// Unsigned is the key type set accepted by the checks.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint
}

// Disorder counts adjacent pairs with keys[i] > keys[i+1] and returns the
// index of the first one, or -1 if keys are sorted.
func Disorder[K Unsigned](keys []K) (mistakes, first int) {
	first = -1
	for i := 0; i+1 < len(keys); i++ {
		if keys[i] > keys[i+1] {
			if first < 0 {
				first = i
			}
			mistakes++
		}
	}
	return mistakes, first
}

// Sorted returns nil if keys are in non-decreasing order, or an error
// wrapping ErrNotSorted that names the first out-of-place pair.
func Sorted[K Unsigned](keys []K) error {
	mistakes, first := Disorder(keys)
	if mistakes == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d keys out of place, first at index %d (%d > %d)",
		sorterrors.ErrNotSorted, mistakes, first, uint64(keys[first]), uint64(keys[first+1]))
}

// Fingerprint is an order-independent hash of a key multiset: the wrapping
// sum of xxhash64 over each key's 8-byte little-endian encoding. Two slices
// that are permutations of each other have equal fingerprints; fingerprints
// of disjoint ranges add.
func Fingerprint[K Unsigned](keys []K) uint64 {
	var buf [8]byte
	var sum uint64
	for _, k := range keys {
		binary.LittleEndian.PutUint64(buf[:], uint64(k))
		sum += xxhash.Sum64(buf[:])
	}
	return sum
}

// Permutation returns an error wrapping ErrNotPermutation unless before and
// after have the same length and multiset fingerprint.
func Permutation(beforeLen int, before uint64, afterLen int, after uint64) error {
	if beforeLen != afterLen {
		return fmt.Errorf("%w: %d keys in, %d keys out", sorterrors.ErrNotPermutation, beforeLen, afterLen)
	}
	if before != after {
		return fmt.Errorf("%w: fingerprint %016x, want %016x", sorterrors.ErrNotPermutation, after, before)
	}
	return nil
}

// Digest is an order-dependent xxh3-128 hash of keys in their 8-byte
// little-endian encoding. Equal digests across runs with different worker
// counts or radixes mean identical output.
func Digest[K Unsigned](keys []K) xxh3.Uint128 {
	h := xxh3.New()
	var buf [8 * 512]byte
	for len(keys) > 0 {
		n := min(len(keys), len(buf)/8)
		for i, k := range keys[:n] {
			binary.LittleEndian.PutUint64(buf[i*8:], uint64(k))
		}
		_, _ = h.Write(buf[:n*8]) // Hasher.Write never fails
		keys = keys[n:]
	}
	return h.Sum128()
}

// FormatDigest renders a digest as 32 hex digits, high half first.
func FormatDigest(d xxh3.Uint128) string {
	return fmt.Sprintf("%016x%016x", d.Hi, d.Lo)
}
