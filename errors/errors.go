// Package errors defines all exported error sentinels for the radixsort library.
//
// This is the single source of truth for error values. Both the top-level
// radixsort package and internal packages import from here, ensuring
// errors.Is checks work across package boundaries.
package errors

import "errors"

// Configuration errors
var (
	ErrInvalidRadix    = errors.New("radixsort: radix must be a power of two in [2, 65536]")
	ErrInvalidWorkers  = errors.New("radixsort: worker count must be positive")
	ErrTooManyWorkers  = errors.New("radixsort: worker count exceeds maximum (256)")
	ErrScratchMismatch = errors.New("radixsort: scratch buffer does not match the key slice")

	ErrUnknownDistribution = errors.New("radixsort: unknown key distribution")
)

// Sort errors
var (
	ErrKeyOutOfRange   = errors.New("radixsort: key exceeds the declared maximum key")
	ErrSortAborted     = errors.New("radixsort: sort aborted")
	ErrWorkerPanic     = errors.New("radixsort: worker panicked")
	ErrOffsetCorrupted = errors.New("radixsort: write offsets are not a permutation")
)

// Key file errors
var (
	ErrInvalidMagic     = errors.New("radixsort: invalid key file magic number")
	ErrInvalidVersion   = errors.New("radixsort: unsupported key file version")
	ErrTruncatedFile    = errors.New("radixsort: key file is truncated")
	ErrChecksumFailed   = errors.New("radixsort: key file checksum verification failed")
	ErrKeyWidthMismatch = errors.New("radixsort: key file width does not match requested key type")
)

// Verification errors
var (
	ErrNotSorted      = errors.New("radixsort: keys are not sorted")
	ErrNotPermutation = errors.New("radixsort: output is not a permutation of the input")
)
