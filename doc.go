// Package radixsort implements a parallel least-significant-digit radix sort
// for unsigned integer keys.
//
// The input is split into one contiguous range per worker. Every pass sorts
// on one base-R digit: each worker builds a histogram of its range, the
// workers combine their histograms in a shared scan tree to get a global
// write offset for every (worker, bucket) pair, and then each worker scatters
// its keys into the other buffer of a buffer pair. Because workers scatter in
// range order and every pass is stable, sorting the digits from least to most
// significant yields a fully sorted sequence.
//
// # Basic Usage
//
//	keys := []uint32{9, 3, 15, 0, 7, 12, 3}
//	res, err := radixsort.Sort(ctx, keys, 15,
//	    radixsort.WithRadix(4), radixsort.WithWorkers(2))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Keys) // [0 3 3 7 9 12 15]
//
// The sorted keys end up in either the input slice or the scratch buffer,
// depending on the parity of the pass count (Result.Final). SortInPlace
// copies them back when needed.
//
// # Package Structure
//
// The implementation is organized as follows:
//
//   - Public API: sort.go (Sort, SortInPlace, Result), plan.go (Passes)
//   - Configuration: sort_options.go (SortOption, With* functions)
//   - Digit passes: worker.go (histogram, scatter, offset checks)
//   - Timing: stats.go (WorkerStats, Summarize)
//   - Synchronization: internal/barrier/, internal/scantree/ (combining tree)
//   - Work split: internal/partition/
//   - Tooling: internal/keygen/, internal/verify/, internal/keyfile/,
//     internal/history/, cmd/radix/
package radixsort
