package radixsort

const (
	// defaultRadix matches the classic SPLASH-2 RADIX default (-r1024).
	defaultRadix = 1024

	// maxRadix bounds per-node memory: the scan tree holds 2*(2P-1)*R ints.
	maxRadix = 1 << 16

	// maxWorkers is the hard cap on the worker count.
	maxWorkers = 256
)

// SortOption is a functional option for configuring a sort.
type SortOption func(*sortConfig)

type sortConfig struct {
	radix        int
	workers      int
	lockThreads  bool
	offsetChecks bool
	scratch      any // []K supplied through WithScratch; checked against K in Sort
}

func defaultSortConfig() *sortConfig {
	return &sortConfig{
		radix:   defaultRadix,
		workers: 0, // Default to single-threaded; use WithWorkers(n) to parallelize
	}
}

// WithRadix sets the radix (number of buckets per digit). Must be a power of
// two in [2, 65536]. Default is 1024.
func WithRadix(radix int) SortOption {
	return func(c *sortConfig) {
		c.radix = radix
	}
}

// WithWorkers sets the number of worker goroutines. 0 means 1.
func WithWorkers(n int) SortOption {
	return func(c *sortConfig) {
		c.workers = n
	}
}

// WithLockedThreads pins every worker goroutine to its own OS thread for the
// duration of the sort.
func WithLockedThreads() SortOption {
	return func(c *sortConfig) {
		c.lockThreads = true
	}
}

// WithOffsetChecks validates, every pass and before any key moves, that the
// computed write offsets tile [0, N) exactly. Each worker checks the buckets
// it owns across all workers' offset tables. A failure aborts the sort with
// ErrOffsetCorrupted.
func WithOffsetChecks() SortOption {
	return func(c *sortConfig) {
		c.offsetChecks = true
	}
}

// WithScratch supplies the second buffer of the buffer pair. It must have the
// same element type as the keys and at least as many elements. Reusing one
// scratch buffer across sorts avoids an allocation of N keys per call.
func WithScratch[K Key](buf []K) SortOption {
	return func(c *sortConfig) {
		c.scratch = buf
	}
}
