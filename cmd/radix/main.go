// Radix sorts a generated or loaded key set with the parallel radix sort and
// reports per-worker timings, in the format of the SPLASH-2 RADIX kernel.
//
// Usage:
//
//	go run ./cmd/radix -workers 8 -keys 4194304 -radix 1024 -maxkey 524288 -stats -check
//
// Flags:
//
//	-workers   Number of workers (default: physical cores)
//	-radix     Radix, a power of two (default: 1024)
//	-keys      Number of keys to generate (default: 262144)
//	-maxkey    Maximum key value (default: 524288)
//	-width     Generated key width in bits: 8, 16, 32 or 64 (default: 32)
//	-dist      Key distribution: splash, uniform or hashed (default: splash)
//	-seed      Seed for uniform and hashed keys
//	-stats     Print every worker's timing, plus avg/min/max
//	-check     Verify the output is a sorted permutation of the input
//	-print     Print the sorted keys
//	-in        Read keys from a key file instead of generating them
//	-out       Write the sorted keys to a key file
//	-json      Write a JSON report to this file ("-" for stdout)
//	-history   Append the run to this sqlite database
//	-repeat    Sort this many times, reusing the scratch buffer
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"

	"github.com/klauspost/cpuid/v2"

	"github.com/tamirms/radixsort"
	"github.com/tamirms/radixsort/internal/keyfile"
	"github.com/tamirms/radixsort/internal/keygen"
)

type options struct {
	workers     int
	radix       int
	keys        int
	maxKey      uint64
	width       int
	dist        keygen.Distribution
	seed        uint64
	stats       bool
	check       bool
	print       bool
	in          string
	out         string
	jsonPath    string
	historyPath string
	repeat      int
	lock        bool
	offsetCheck bool
}

func main() {
	os.Exit(realMain())
}

func realMain() int {
	workersFlag := flag.Int("workers", 0, "number of workers (0 = physical cores)")
	radixFlag := flag.Int("radix", 1024, "radix for sorting, a power of two")
	keysFlag := flag.Int("keys", 262144, "number of keys to generate")
	maxKeyFlag := flag.Uint64("maxkey", 524288, "maximum key value")
	widthFlag := flag.Int("width", 32, "generated key width in bits: 8, 16, 32 or 64")
	distFlag := flag.String("dist", "splash", "key distribution: splash, uniform or hashed")
	seedFlag := flag.Uint64("seed", 0x1234, "seed for uniform and hashed keys")
	statsFlag := flag.Bool("stats", false, "print individual worker timing statistics")
	checkFlag := flag.Bool("check", false, "check that all keys are sorted correctly")
	printFlag := flag.Bool("print", false, "print the sorted keys")
	inFlag := flag.String("in", "", "read keys from a key file")
	outFlag := flag.String("out", "", "write sorted keys to a key file")
	jsonFlag := flag.String("json", "", "write a JSON report to file (- for stdout)")
	historyFlag := flag.String("history", "", "append the run to a sqlite database")
	repeatFlag := flag.Int("repeat", 1, "number of sorts to run")
	lockFlag := flag.Bool("lock", false, "lock each worker to an OS thread")
	offsetCheckFlag := flag.Bool("offsetcheck", false, "validate write offsets every pass")
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file (sort phase only)")
	flag.Parse()

	dist, err := keygen.ParseDistribution(*distFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return 2
	}

	opts := options{
		workers:     *workersFlag,
		radix:       *radixFlag,
		keys:        *keysFlag,
		maxKey:      *maxKeyFlag,
		width:       *widthFlag,
		dist:        dist,
		seed:        *seedFlag,
		stats:       *statsFlag,
		check:       *checkFlag,
		print:       *printFlag,
		in:          *inFlag,
		out:         *outFlag,
		jsonPath:    *jsonFlag,
		historyPath: *historyFlag,
		repeat:      max(1, *repeatFlag),
		lock:        *lockFlag,
		offsetCheck: *offsetCheckFlag,
	}
	if opts.workers == 0 {
		opts.workers = defaultWorkers()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not create CPU profile: %v\n", err)
			return 1
		}
		defer func() { _ = f.Close() }()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "could not start CPU profile: %v\n", err)
			return 1
		}
		defer pprof.StopCPUProfile()
	}

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		if errors.Is(err, errCheckFailed) {
			return 3
		}
		return 1
	}
	return 0
}

// defaultWorkers returns the number of physical cores, falling back to the
// scheduler's view of the machine when cpuid cannot tell.
func defaultWorkers() int {
	if n := cpuid.CPU.PhysicalCores; n > 0 {
		return n
	}
	if n := cpuid.CPU.LogicalCores; n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// run dispatches on key width: the file's width with -in, the -width flag
// otherwise.
func run(ctx context.Context, opts options) error {
	width := opts.width / 8
	if opts.in != "" {
		f, err := keyfile.Open(opts.in)
		if err != nil {
			return err
		}
		width = f.Header().KeyWidth
		if err := f.Close(); err != nil {
			return err
		}
	}

	switch width {
	case 1:
		return runSort[uint8](ctx, opts)
	case 2:
		return runSort[uint16](ctx, opts)
	case 4:
		return runSort[uint32](ctx, opts)
	case 8:
		return runSort[uint64](ctx, opts)
	default:
		return fmt.Errorf("unsupported key width %d bits", width*8)
	}
}

var errCheckFailed = errors.New("sorted output failed verification")

func loadKeys[K radixsort.Key](ctx context.Context, opts *options) ([]K, error) {
	if opts.in != "" {
		keys, hdr, err := keyfile.Read[K](opts.in)
		if err != nil {
			return nil, err
		}
		opts.keys = len(keys)
		opts.maxKey = hdr.MaxKey
		return keys, nil
	}

	if limit := uint64(^K(0)); opts.maxKey > limit {
		return nil, fmt.Errorf("max key %d does not fit in %d-bit keys", opts.maxKey, opts.width)
	}
	g, err := keygen.New(opts.dist, opts.maxKey, opts.seed)
	if err != nil {
		return nil, err
	}
	return keygen.Generate[K](ctx, g, opts.keys, opts.workers)
}
