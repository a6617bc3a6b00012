package radixsort

import (
	"context"
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

func newTestRNG(t testing.TB) *rand.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return rand.New(rand.NewPCG(testSeed1^s1, testSeed2^s2))
}

// randomKeys returns n keys drawn uniformly from [0, maxKey].
func randomKeys(rng *rand.Rand, n int, maxKey uint64) []uint64 {
	keys := make([]uint64, n)
	for i := range keys {
		if maxKey == ^uint64(0) {
			keys[i] = rng.Uint64()
		} else {
			keys[i] = rng.Uint64N(maxKey + 1)
		}
	}
	return keys
}

// convertKeys narrows keys to K. Callers keep values within K's range.
func convertKeys[K Key](keys []uint64) []K {
	out := make([]K, len(keys))
	for i, k := range keys {
		out[i] = K(k)
	}
	return out
}

// mustSort sorts a copy of keys and checks the result against slices.Sort.
func mustSort[K Key](t *testing.T, keys []K, maxKey K, opts ...SortOption) *Result[K] {
	t.Helper()
	want := slices.Clone(keys)
	slices.Sort(want)

	res, err := Sort(context.Background(), slices.Clone(keys), maxKey, opts...)
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if diff := cmp.Diff(want, res.Keys); diff != "" {
		t.Fatalf("sorted keys mismatch (-want +got):\n%s", diff)
	}
	return res
}
