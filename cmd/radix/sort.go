package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/klauspost/cpuid/v2"

	"github.com/tamirms/radixsort"
	"github.com/tamirms/radixsort/internal/history"
	"github.com/tamirms/radixsort/internal/keyfile"
	"github.com/tamirms/radixsort/internal/verify"
)

// outcome is the result of checking one sorted output.
type outcome struct {
	mistakes int
	first    int
	permErr  error
	digest   string
}

func (o outcome) passed() bool {
	return o.mistakes == 0 && o.permErr == nil
}

func runSort[K radixsort.Key](ctx context.Context, opts options) error {
	initStart := time.Now()
	keys, err := loadKeys[K](ctx, &opts)
	if err != nil {
		return err
	}
	printBanner(os.Stdout, opts)

	before := verify.Fingerprint(keys)
	work := make([]K, len(keys))
	scratch := make([]K, len(keys))

	sortOpts := []radixsort.SortOption{
		radixsort.WithRadix(opts.radix),
		radixsort.WithWorkers(opts.workers),
		radixsort.WithScratch(scratch),
	}
	if opts.lock {
		sortOpts = append(sortOpts, radixsort.WithLockedThreads())
	}
	if opts.offsetCheck {
		sortOpts = append(sortOpts, radixsort.WithOffsetChecks())
	}

	sortStart := time.Now()
	var res *radixsort.Result[K]
	for i := range opts.repeat {
		copy(work, keys)
		res, err = radixsort.Sort(ctx, work, K(opts.maxKey), sortOpts...)
		if err != nil {
			return err
		}
		if opts.repeat > 1 {
			fmt.Printf("Run %3d: %10.0f us (%s buffer)\n", i+1, micros(res.Elapsed), res.Final)
		}
	}
	finish := time.Now()

	printStats(os.Stdout, res.Stats, opts.stats)
	printTiming(os.Stdout, initStart, sortStart, finish)

	var out outcome
	if opts.check || opts.historyPath != "" || opts.jsonPath != "" {
		out.mistakes, out.first = verify.Disorder(res.Keys)
		out.permErr = verify.Permutation(len(keys), before, len(res.Keys), verify.Fingerprint(res.Keys))
		out.digest = verify.FormatDigest(verify.Digest(res.Keys))
	}
	if opts.check {
		printTestResults(os.Stdout, os.Stderr, res.Keys, out)
	}
	if opts.print {
		printKeys(os.Stdout, res.Keys)
	}

	if opts.out != "" {
		if err := keyfile.Write(ctx, opts.out, res.Keys,
			keyfile.WithMaxKey(opts.maxKey), keyfile.WithSorted(true), keyfile.WithWorkers(opts.workers)); err != nil {
			return fmt.Errorf("write sorted keys: %w", err)
		}
	}
	if opts.historyPath != "" {
		if err := recordHistory(ctx, opts, res, out); err != nil {
			return err
		}
	}
	if opts.jsonPath != "" {
		if err := writeReport(opts.jsonPath, newReport(opts, res, out)); err != nil {
			return err
		}
	}

	if opts.check && !out.passed() {
		return errCheckFailed
	}
	return nil
}

func recordHistory[K radixsort.Key](ctx context.Context, opts options, res *radixsort.Result[K], out outcome) (err error) {
	db, err := history.Open(ctx, opts.historyPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); err == nil {
			err = cerr
		}
	}()

	summary := radixsort.Summarize(res.Stats)
	run := history.Run{
		At:          time.Now(),
		Host:        cpuid.CPU.BrandName,
		Dist:        distName(opts),
		Keys:        len(res.Keys),
		MaxKey:      opts.maxKey,
		Radix:       res.Radix,
		Workers:     res.Workers,
		Passes:      res.Passes,
		Elapsed:     res.Elapsed,
		MaxRankTime: summary.Max.RankTime,
		MaxSortTime: summary.Max.SortTime,
		Digest:      out.digest,
		Passed:      out.passed(),
	}
	id, err := db.Record(ctx, run)
	if err != nil {
		return err
	}

	best, ok, err := db.Best(ctx, run.Keys, run.Radix, run.Workers)
	if err != nil {
		return err
	}
	fmt.Printf("Recorded run #%d in %s\n", id, opts.historyPath)
	if ok && best.ID != id {
		fmt.Printf("Best for %d keys, radix %d, %d workers: %10.0f us (run #%d, %s)\n",
			best.Keys, best.Radix, best.Workers, micros(best.Elapsed), best.ID, best.At.Format(time.DateTime))
	}
	return nil
}

func distName(opts options) string {
	if opts.in != "" {
		return "file"
	}
	return opts.dist.String()
}

func micros(d time.Duration) float64 {
	return float64(d) / float64(time.Microsecond)
}
