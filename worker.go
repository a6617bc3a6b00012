package radixsort

import (
	"context"
	"fmt"
	"runtime"
	"time"

	sorterrors "github.com/tamirms/radixsort/errors"
	"github.com/tamirms/radixsort/internal/partition"
)

// worker holds the private, per-pass tables of one worker.
type worker struct {
	id      int
	hist    []int // local histogram of the current digit
	density []int // inclusive prefix sum of hist
	next    []int // next write offset per bucket, advanced during scatter
}

// runWorker is the digit-pass scheduler for one worker. All workers run it
// symmetrically over their own key range.
//
// Per pass:
//
//	histogram + local density -> publish leaf, climb, collect offsets
//	-> pass barrier -> [offset checks] -> scatter -> pass barrier -> swap
//
// The first pass barrier makes every offset table visible before any key
// moves; the second keeps the next pass from reading a buffer that is still
// being written and from overwriting tree nodes still being read.
func (st *sortState[K]) runWorker(ctx context.Context, id int) error {
	if st.lockThreads {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}

	p := st.plan
	keyLo, keyHi := partition.Range(p.keyBounds, id)
	w := &worker{
		id:      id,
		hist:    make([]int, p.radix),
		density: make([]int, p.radix),
		next:    make([]int, p.radix),
	}
	stats := &st.stats[id]
	stats.Worker = id
	stats.Keys = keyHi - keyLo

	if err := st.ready.Wait(); err != nil {
		return err
	}

	began := time.Now()
	from, to := BufferInput, BufferScratch
	for pass := range p.passes {
		if err := ctx.Err(); err != nil {
			return err
		}

		shift := p.shift(pass)
		src := st.keys[from][keyLo:keyHi]
		dst := st.keys[to]

		rankStart := time.Now()
		if pass == 0 {
			if i, ok := countDigitsChecked(src, shift, p.mask, st.maxKey, w.hist); !ok {
				return fmt.Errorf("%w: key %d at index %d, max key %d",
					sorterrors.ErrKeyOutOfRange, uint64(src[i]), keyLo+i, st.maxKey)
			}
		} else {
			countDigits(src, shift, p.mask, w.hist)
		}
		inclusivePrefix(w.hist, w.density)

		st.tree.Publish(id, pass, w.hist, w.density)
		if err := st.tree.Climb(id, pass); err != nil {
			return err
		}
		start := st.starts[id]
		if err := st.tree.Offsets(id, pass, start); err != nil {
			return err
		}
		copy(w.next, start)
		stats.RankTime += time.Since(rankStart)

		if err := st.pass.Wait(); err != nil {
			return err
		}
		if st.offsetChecks {
			if err := st.checkOffsets(id, pass); err != nil {
				return err
			}
		}

		sortStart := time.Now()
		scatter(src, dst, shift, p.mask, w.next)
		stats.SortTime += time.Since(sortStart)

		if pass != p.passes-1 {
			from, to = to, from
		}
		if err := st.pass.Wait(); err != nil {
			return err
		}
	}
	stats.TotalTime = time.Since(began)
	return nil
}

// countDigits builds the histogram of one digit over keys into hist.
func countDigits[K Key](keys []K, shift uint, mask uint64, hist []int) {
	clear(hist)
	for _, k := range keys {
		hist[(uint64(k)>>shift)&mask]++
	}
}

// countDigitsChecked is countDigits that also rejects keys above maxKey,
// returning the index of the first offending key.
func countDigitsChecked[K Key](keys []K, shift uint, mask, maxKey uint64, hist []int) (int, bool) {
	clear(hist)
	for i, k := range keys {
		v := uint64(k)
		if v > maxKey {
			return i, false
		}
		hist[(v>>shift)&mask]++
	}
	return 0, true
}

// inclusivePrefix writes the running sum of hist into density.
func inclusivePrefix(hist, density []int) {
	sum := 0
	for b, c := range hist {
		sum += c
		density[b] = sum
	}
}

// scatter moves every key of src to its slot in dst. next holds the worker's
// write offset per bucket and is advanced in place; the offset ranges of
// different (worker, bucket) pairs are disjoint, so no synchronization is
// needed.
func scatter[K Key](src, dst []K, shift uint, mask uint64, next []int) {
	for _, k := range src {
		d := (uint64(k) >> shift) & mask
		dst[next[d]] = k
		next[d]++
	}
}

// checkOffsets verifies, for the buckets this worker owns in the bucket
// partition, that the offset tables of all workers tile the bucket's
// destination range in worker order: worker 0 starts where the bucket
// starts, each next worker starts where the previous one's keys end, and the
// last one ends where the next bucket starts.
//
// Runs between the two pass barriers, when every offset table and leaf
// histogram of the pass is complete and none is being rewritten.
func (st *sortState[K]) checkOffsets(id, pass int) error {
	p := st.plan
	root := st.tree.Topology().Root()
	totals := st.tree.Densities(root)

	bLo, bHi := partition.Range(p.bucketBounds, id)
	for b := bLo; b < bHi; b++ {
		want := 0
		if b > 0 {
			want = totals[b-1]
		}
		for t := range p.workers {
			if got := st.starts[t][b]; got != want {
				return fmt.Errorf("%w: pass %d bucket %d worker %d: offset %d, want %d",
					sorterrors.ErrOffsetCorrupted, pass, b, t, got, want)
			}
			want += st.tree.Counts(t)[b]
		}
		if want != totals[b] {
			return fmt.Errorf("%w: pass %d bucket %d: range ends at %d, want %d",
				sorterrors.ErrOffsetCorrupted, pass, b, want, totals[b])
		}
	}
	if bHi == p.radix && totals[p.radix-1] != p.n {
		return fmt.Errorf("%w: pass %d: offsets cover %d keys, want %d",
			sorterrors.ErrOffsetCorrupted, pass, totals[p.radix-1], p.n)
	}
	return nil
}
