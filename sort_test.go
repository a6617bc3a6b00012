package radixsort

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	sorterrors "github.com/tamirms/radixsort/errors"
)

func TestSortScenarios(t *testing.T) {
	tests := []struct {
		name       string
		keys       []uint32
		maxKey     uint32
		radix      int
		workers    int
		want       []uint32
		wantPasses int
		wantFinal  Buffer
	}{
		{
			name:       "radix4_two_workers",
			keys:       []uint32{9, 3, 15, 0, 7, 12, 3},
			maxKey:     15,
			radix:      4,
			workers:    2,
			want:       []uint32{0, 3, 3, 7, 9, 12, 15},
			wantPasses: 2,
			wantFinal:  BufferInput,
		},
		{
			name:       "radix2_three_workers",
			keys:       []uint32{5, 1, 4, 1, 3},
			maxKey:     7,
			radix:      2,
			workers:    3,
			want:       []uint32{1, 1, 3, 4, 5},
			wantPasses: 3,
			wantFinal:  BufferScratch,
		},
		{
			name:       "all_equal",
			keys:       []uint32{6, 6, 6, 6, 6, 6},
			maxKey:     6,
			radix:      4,
			workers:    4,
			want:       []uint32{6, 6, 6, 6, 6, 6},
			wantPasses: 2,
			wantFinal:  BufferInput,
		},
		{
			name:       "max_key_zero",
			keys:       []uint32{0, 0, 0},
			maxKey:     0,
			radix:      1024,
			workers:    2,
			want:       []uint32{0, 0, 0},
			wantPasses: 1,
			wantFinal:  BufferScratch,
		},
		{
			name:       "more_workers_than_keys",
			keys:       []uint32{3, 1, 2},
			maxKey:     3,
			radix:      2,
			workers:    8,
			want:       []uint32{1, 2, 3},
			wantPasses: 2,
			wantFinal:  BufferInput,
		},
		{
			name:       "empty",
			keys:       []uint32{},
			maxKey:     100,
			radix:      16,
			workers:    3,
			want:       []uint32{},
			wantPasses: 2,
			wantFinal:  BufferInput,
		},
		{
			name:       "single",
			keys:       []uint32{42},
			maxKey:     42,
			radix:      4,
			workers:    1,
			want:       []uint32{42},
			wantPasses: 3,
			wantFinal:  BufferScratch,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			keys := slices.Clone(tc.keys)
			res, err := Sort(context.Background(), keys, tc.maxKey,
				WithRadix(tc.radix), WithWorkers(tc.workers), WithOffsetChecks())
			if err != nil {
				t.Fatalf("Sort: %v", err)
			}
			if diff := cmp.Diff(tc.want, res.Keys); diff != "" {
				t.Errorf("keys mismatch (-want +got):\n%s", diff)
			}
			if res.Passes != tc.wantPasses {
				t.Errorf("Passes = %d, want %d", res.Passes, tc.wantPasses)
			}
			if res.Final != tc.wantFinal {
				t.Errorf("Final = %v, want %v", res.Final, tc.wantFinal)
			}
			if res.Final == BufferInput && len(keys) > 0 && &res.Keys[0] != &keys[0] {
				t.Error("Final reports the input buffer but Keys does not alias it")
			}
			if res.Radix != tc.radix || res.Workers != tc.workers {
				t.Errorf("Radix, Workers = %d, %d, want %d, %d", res.Radix, res.Workers, tc.radix, tc.workers)
			}
			if len(res.Stats) != tc.workers {
				t.Fatalf("len(Stats) = %d, want %d", len(res.Stats), tc.workers)
			}
			total := 0
			for w, ws := range res.Stats {
				if ws.Worker != w {
					t.Errorf("Stats[%d].Worker = %d", w, ws.Worker)
				}
				total += ws.Keys
			}
			if total != len(tc.keys) {
				t.Errorf("worker key ranges cover %d keys, want %d", total, len(tc.keys))
			}
		})
	}
}

// TestSortWorkerInvariance sorts the same input with every combination of
// radix and worker count, including worker counts that do not divide N and
// are not powers of two. The output must not depend on either.
func TestSortWorkerInvariance(t *testing.T) {
	rng := newTestRNG(t)
	const maxKey = 1<<20 - 1
	keys := randomKeys(rng, 1009, maxKey)

	want := slices.Clone(keys)
	slices.Sort(want)

	for _, radix := range []int{2, 16, 256, 1024, 1 << 16} {
		for _, workers := range []int{1, 2, 3, 4, 5, 7, 8, 16, 33} {
			t.Run(fmt.Sprintf("r%d_p%d", radix, workers), func(t *testing.T) {
				res, err := Sort(context.Background(), slices.Clone(keys), uint64(maxKey),
					WithRadix(radix), WithWorkers(workers), WithOffsetChecks())
				if err != nil {
					t.Fatalf("Sort: %v", err)
				}
				if diff := cmp.Diff(want, res.Keys); diff != "" {
					t.Fatalf("keys mismatch (-want +got):\n%s", diff)
				}
				wantPasses, _ := Passes(uint64(maxKey), radix)
				if res.Passes != wantPasses {
					t.Errorf("Passes = %d, want %d", res.Passes, wantPasses)
				}
			})
		}
	}
}

type testID uint16

func TestSortKeyTypes(t *testing.T) {
	rng := newTestRNG(t)
	base := randomKeys(rng, 500, math.MaxUint8)

	t.Run("uint8", func(t *testing.T) {
		mustSort(t, convertKeys[uint8](base), math.MaxUint8, WithRadix(16), WithWorkers(3))
	})
	t.Run("uint16", func(t *testing.T) {
		mustSort(t, convertKeys[uint16](randomKeys(rng, 500, math.MaxUint16)), math.MaxUint16, WithRadix(256), WithWorkers(4))
	})
	t.Run("uint32", func(t *testing.T) {
		mustSort(t, convertKeys[uint32](randomKeys(rng, 500, math.MaxUint32)), math.MaxUint32, WithRadix(1024), WithWorkers(5))
	})
	t.Run("uint64_full_range", func(t *testing.T) {
		res := mustSort(t, randomKeys(rng, 500, math.MaxUint64), uint64(math.MaxUint64), WithRadix(1<<16), WithWorkers(6))
		if res.Passes != 4 {
			t.Errorf("Passes = %d, want 4", res.Passes)
		}
	})
	t.Run("uint64_binary_digits", func(t *testing.T) {
		res := mustSort(t, randomKeys(rng, 200, math.MaxUint64), uint64(math.MaxUint64), WithRadix(2), WithWorkers(3))
		if res.Passes != 64 {
			t.Errorf("Passes = %d, want 64", res.Passes)
		}
	})
	t.Run("uint", func(t *testing.T) {
		mustSort(t, convertKeys[uint](randomKeys(rng, 500, 1<<30)), uint(1<<30), WithWorkers(2))
	})
	t.Run("named", func(t *testing.T) {
		mustSort(t, convertKeys[testID](randomKeys(rng, 500, 9999)), testID(9999), WithRadix(8), WithWorkers(7))
	})
}

func TestSortIdempotent(t *testing.T) {
	rng := newTestRNG(t)
	keys := randomKeys(rng, 777, 1<<24)

	first := mustSort(t, keys, uint64(1<<24), WithRadix(64), WithWorkers(5))
	sorted := slices.Clone(first.Keys)
	second := mustSort(t, sorted, uint64(1<<24), WithRadix(64), WithWorkers(3))
	if diff := cmp.Diff(sorted, second.Keys); diff != "" {
		t.Fatalf("re-sorting changed the output (-want +got):\n%s", diff)
	}
}

func TestSortDefaults(t *testing.T) {
	res := mustSort(t, []uint32{4, 2, 9}, 9)
	if res.Radix != defaultRadix {
		t.Errorf("Radix = %d, want %d", res.Radix, defaultRadix)
	}
	if res.Workers != 1 {
		t.Errorf("Workers = %d, want 1", res.Workers)
	}
}

func TestSortConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		opts []SortOption
		want error
	}{
		{name: "radix_not_power_of_two", opts: []SortOption{WithRadix(6)}, want: sorterrors.ErrInvalidRadix},
		{name: "radix_one", opts: []SortOption{WithRadix(1)}, want: sorterrors.ErrInvalidRadix},
		{name: "radix_zero", opts: []SortOption{WithRadix(0)}, want: sorterrors.ErrInvalidRadix},
		{name: "radix_too_large", opts: []SortOption{WithRadix(1 << 17)}, want: sorterrors.ErrInvalidRadix},
		{name: "negative_workers", opts: []SortOption{WithWorkers(-1)}, want: sorterrors.ErrInvalidWorkers},
		{name: "too_many_workers", opts: []SortOption{WithWorkers(maxWorkers + 1)}, want: sorterrors.ErrTooManyWorkers},
		{name: "scratch_wrong_type", opts: []SortOption{WithScratch(make([]uint64, 8))}, want: sorterrors.ErrScratchMismatch},
		{name: "scratch_too_short", opts: []SortOption{WithScratch(make([]uint32, 2))}, want: sorterrors.ErrScratchMismatch},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			keys := []uint32{3, 1, 2}
			_, err := Sort(context.Background(), keys, 3, tc.opts...)
			if !errors.Is(err, tc.want) {
				t.Fatalf("Sort error = %v, want %v", err, tc.want)
			}
			if diff := cmp.Diff([]uint32{3, 1, 2}, keys); diff != "" {
				t.Errorf("rejected config modified keys (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSortMaxWorkers(t *testing.T) {
	rng := newTestRNG(t)
	mustSort(t, randomKeys(rng, 3000, 1<<16), uint64(1<<16), WithRadix(256), WithWorkers(maxWorkers))
}

func TestSortKeyOutOfRange(t *testing.T) {
	for _, workers := range []int{1, 2, 4} {
		t.Run(fmt.Sprintf("p%d", workers), func(t *testing.T) {
			keys := []uint32{1, 2, 3, 4, 5, 6, 20, 7}
			_, err := Sort(context.Background(), keys, 15, WithRadix(4), WithWorkers(workers))
			if !errors.Is(err, sorterrors.ErrKeyOutOfRange) {
				t.Fatalf("Sort error = %v, want ErrKeyOutOfRange", err)
			}
		})
	}
}

func TestSortCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 3, 8} {
		t.Run(fmt.Sprintf("p%d", workers), func(t *testing.T) {
			keys := []uint32{5, 1, 4, 1, 3}
			_, err := Sort(ctx, keys, 7, WithRadix(2), WithWorkers(workers))
			if !errors.Is(err, sorterrors.ErrSortAborted) {
				t.Fatalf("Sort error = %v, want ErrSortAborted", err)
			}
			if !errors.Is(err, context.Canceled) {
				t.Errorf("Sort error = %v, want it to wrap context.Canceled", err)
			}
		})
	}
}

func TestSortWithScratchReuse(t *testing.T) {
	rng := newTestRNG(t)
	scratch := make([]uint64, 600)

	for i, n := range []int{600, 300, 0, 599} {
		keys := randomKeys(rng, n, 255)
		// One pass at radix 256: the result lands in the scratch buffer.
		res := mustSort(t, keys, uint64(255), WithRadix(256), WithWorkers(i+1), WithScratch(scratch))
		if res.Final != BufferScratch {
			t.Fatalf("n=%d: Final = %v, want scratch", n, res.Final)
		}
		if n > 0 && &res.Keys[0] != &scratch[0] {
			t.Fatalf("n=%d: result does not alias the supplied scratch buffer", n)
		}
		if len(res.Keys) != n {
			t.Fatalf("n=%d: len(Keys) = %d", n, len(res.Keys))
		}
	}
}

func TestSortInPlace(t *testing.T) {
	rng := newTestRNG(t)
	for _, radix := range []int{2, 4, 256} {
		t.Run(fmt.Sprintf("r%d", radix), func(t *testing.T) {
			keys := randomKeys(rng, 321, 1000)
			want := slices.Clone(keys)
			slices.Sort(want)

			res, err := SortInPlace(context.Background(), keys, WithRadix(radix), WithWorkers(3))
			if err != nil {
				t.Fatalf("SortInPlace: %v", err)
			}
			if res.Final != BufferInput {
				t.Errorf("Final = %v, want input", res.Final)
			}
			if diff := cmp.Diff(want, keys); diff != "" {
				t.Fatalf("keys not sorted in place (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("empty", func(t *testing.T) {
		res, err := SortInPlace(context.Background(), []uint16(nil))
		if err != nil {
			t.Fatalf("SortInPlace: %v", err)
		}
		if len(res.Keys) != 0 {
			t.Fatalf("len(Keys) = %d, want 0", len(res.Keys))
		}
	})
}

func TestPasses(t *testing.T) {
	tests := []struct {
		maxKey uint64
		radix  int
		want   int
	}{
		{maxKey: 15, radix: 4, want: 2},
		{maxKey: 7, radix: 2, want: 3},
		{maxKey: 0, radix: 1024, want: 1},
		{maxKey: 1023, radix: 1024, want: 1},
		{maxKey: 1024, radix: 1024, want: 2},
		{maxKey: 524288, radix: 1024, want: 2},
		{maxKey: math.MaxUint64, radix: 2, want: 64},
		{maxKey: math.MaxUint64, radix: 1 << 16, want: 4},
	}
	for _, tc := range tests {
		got, err := Passes(tc.maxKey, tc.radix)
		if err != nil {
			t.Fatalf("Passes(%d, %d): %v", tc.maxKey, tc.radix, err)
		}
		if got != tc.want {
			t.Errorf("Passes(%d, %d) = %d, want %d", tc.maxKey, tc.radix, got, tc.want)
		}
	}

	if _, err := Passes(uint32(10), 12); !errors.Is(err, sorterrors.ErrInvalidRadix) {
		t.Errorf("Passes with radix 12 = %v, want ErrInvalidRadix", err)
	}
}

func TestBufferString(t *testing.T) {
	for b, want := range map[Buffer]string{BufferInput: "input", BufferScratch: "scratch", Buffer(7): "Buffer(7)"} {
		if got := b.String(); got != want {
			t.Errorf("Buffer(%d).String() = %q, want %q", uint8(b), got, want)
		}
	}
}

func TestSortLarge(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large sort in short mode")
	}
	rng := newTestRNG(t)
	keys := randomKeys(rng, 262144, 524288)
	for _, workers := range []int{1, 4, 16} {
		t.Run(fmt.Sprintf("p%d", workers), func(t *testing.T) {
			mustSort(t, keys, uint64(524288), WithWorkers(workers), WithLockedThreads())
		})
	}
}
