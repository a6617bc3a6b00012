package radixsort

import (
	"context"
	"fmt"
	"slices"
	"time"

	sorterrors "github.com/tamirms/radixsort/errors"
	"github.com/tamirms/radixsort/internal/barrier"
	"github.com/tamirms/radixsort/internal/scantree"
	"golang.org/x/sync/errgroup"
)

// Key is the set of key types the sort accepts: fixed-width unsigned
// integers and named types over them.
type Key interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint
}

// Buffer identifies one half of the buffer pair.
type Buffer uint8

const (
	// BufferInput is the caller's key slice.
	BufferInput Buffer = iota
	// BufferScratch is the second buffer (allocated, or supplied via WithScratch).
	BufferScratch
)

func (b Buffer) String() string {
	switch b {
	case BufferInput:
		return "input"
	case BufferScratch:
		return "scratch"
	default:
		return fmt.Sprintf("Buffer(%d)", uint8(b))
	}
}

// Result describes a completed sort.
type Result[K Key] struct {
	// Keys is the sorted sequence. It aliases whichever buffer Final names.
	Keys []K

	// Final is the buffer that holds the sorted keys.
	Final Buffer

	Passes  int
	Radix   int
	Workers int

	// Stats holds one entry per worker, indexed by worker id.
	Stats   []WorkerStats
	Elapsed time.Duration
}

// Sort sorts keys with a parallel least-significant-digit radix sort.
//
// Every key must be <= maxKey; maxKey fixes the number of digit passes
// (see Passes). keys is used as the first buffer of the buffer pair and is
// overwritten; the sorted sequence ends up in either keys or the scratch
// buffer, as reported by Result.Final. Use SortInPlace to always get the
// result back in keys.
//
// Usage:
//
//	res, err := radixsort.Sort(ctx, keys, maxKey,
//	    radixsort.WithRadix(256), radixsort.WithWorkers(8))
//	if err != nil { return err }
//	sorted := res.Keys
//
// The sort is not designed to be interrupted, but a canceled ctx or a failing
// worker aborts every worker at its next synchronization point. No partial
// result is returned on error.
func Sort[K Key](ctx context.Context, keys []K, maxKey K, opts ...SortOption) (*Result[K], error) {
	cfg := defaultSortConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if !validRadix(cfg.radix) {
		return nil, sorterrors.ErrInvalidRadix
	}
	if cfg.workers < 0 {
		return nil, sorterrors.ErrInvalidWorkers
	}
	if cfg.workers > maxWorkers {
		return nil, sorterrors.ErrTooManyWorkers
	}

	// Determine worker count
	workers := cfg.workers
	if workers == 0 {
		workers = 1 // Default to single-threaded
	}

	scratch, err := scratchBuffer[K](cfg.scratch, len(keys))
	if err != nil {
		return nil, err
	}

	p := newPlan(len(keys), uint64(maxKey), workers, cfg.radix)
	st := newSortState(p, keys, scratch, maxKey, cfg)

	start := time.Now()
	if err := st.runWorkers(ctx); err != nil {
		if cause := context.Cause(ctx); cause != nil {
			return nil, fmt.Errorf("%w: %w", sorterrors.ErrSortAborted, cause)
		}
		return nil, err
	}

	final := p.finalBuffer()
	return &Result[K]{
		Keys:    st.keys[final],
		Final:   final,
		Passes:  p.passes,
		Radix:   p.radix,
		Workers: p.workers,
		Stats:   st.stats,
		Elapsed: time.Since(start),
	}, nil
}

// SortInPlace sorts keys, deriving the maximum key from the data, and leaves
// the sorted sequence in keys regardless of pass parity.
func SortInPlace[K Key](ctx context.Context, keys []K, opts ...SortOption) (*Result[K], error) {
	var maxKey K
	if len(keys) > 0 {
		maxKey = slices.Max(keys)
	}

	res, err := Sort(ctx, keys, maxKey, opts...)
	if err != nil {
		return nil, err
	}
	if res.Final == BufferScratch {
		copy(keys, res.Keys)
		res.Keys = keys
		res.Final = BufferInput
	}
	return res, nil
}

func scratchBuffer[K Key](supplied any, n int) ([]K, error) {
	if supplied == nil {
		return make([]K, n), nil
	}
	buf, ok := supplied.([]K)
	if !ok {
		return nil, fmt.Errorf("%w: scratch is %T, keys are %T", sorterrors.ErrScratchMismatch, supplied, []K(nil))
	}
	if len(buf) < n {
		return nil, fmt.Errorf("%w: scratch holds %d keys, need %d", sorterrors.ErrScratchMismatch, len(buf), n)
	}
	return buf[:n], nil
}

// sortState is the shared state of one sort. It is built before the workers
// start, handed to each of them by pointer, and dropped when Sort returns.
type sortState[K Key] struct {
	plan   *plan
	keys   [2][]K // indexed by Buffer
	maxKey uint64

	tree  *scantree.Tree
	ready *barrier.Barrier // gates worker initialization
	pass  *barrier.Barrier // before scatter and at pass end, every pass

	// starts[w] is worker w's offset table as computed for the current pass,
	// before scatter advances it. Read by other workers only for offset checks.
	starts [][]int

	stats []WorkerStats

	offsetChecks bool
	lockThreads  bool
}

func newSortState[K Key](p *plan, keys, scratch []K, maxKey K, cfg *sortConfig) *sortState[K] {
	st := &sortState[K]{
		plan:         p,
		keys:         [2][]K{keys, scratch},
		maxKey:       uint64(maxKey),
		tree:         scantree.New(scantree.NewTopology(p.workers), p.radix),
		ready:        barrier.New(p.workers),
		pass:         barrier.New(p.workers),
		starts:       make([][]int, p.workers),
		stats:        make([]WorkerStats, p.workers),
		offsetChecks: cfg.offsetChecks,
		lockThreads:  cfg.lockThreads,
	}
	for w := range st.starts {
		st.starts[w] = make([]int, p.radix)
	}
	return st
}

// runWorkers starts one goroutine per worker and waits for all of them.
//
// A worker that fails cancels the group context; the AfterFunc hook then
// breaks both barriers and the scan tree, so every other worker returns from
// whatever it is blocked on instead of waiting for a peer that will never
// arrive. The group reports the first error, which is the root cause: the
// aborted peers only return after it.
func (st *sortState[K]) runWorkers(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	stop := context.AfterFunc(gctx, st.abort)
	defer stop()

	for w := range st.plan.workers {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: worker %d: %v", sorterrors.ErrWorkerPanic, w, r)
				}
			}()
			return st.runWorker(gctx, w)
		})
	}
	return g.Wait()
}

func (st *sortState[K]) abort() {
	st.ready.Break()
	st.pass.Break()
	st.tree.Break()
}
