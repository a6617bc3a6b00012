package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/klauspost/cpuid/v2"
	"github.com/sugawarayuuta/sonnet"

	"github.com/tamirms/radixsort"
)

func printBanner(w io.Writer, opts options) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Integer Radix Sort\n")
	fmt.Fprintf(w, "     %d Keys\n", opts.keys)
	fmt.Fprintf(w, "     %d Processors\n", opts.workers)
	fmt.Fprintf(w, "     Radix = %d\n", opts.radix)
	fmt.Fprintf(w, "     Max key = %d\n", opts.maxKey)
	fmt.Fprintf(w, "     CPU = %s (%d physical, %d logical cores", cpuid.CPU.BrandName,
		cpuid.CPU.PhysicalCores, cpuid.CPU.LogicalCores)
	if cpuid.CPU.Cache.L2 > 0 {
		fmt.Fprintf(w, ", %d KB L2", cpuid.CPU.Cache.L2/1024)
	}
	fmt.Fprintf(w, ")\n")
	fmt.Fprintf(w, "\n")
}

// printStats prints the per-worker timing table in microseconds: worker 0
// always, every worker plus avg/min/max with all.
func printStats(w io.Writer, stats []radixsort.WorkerStats, all bool) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "                 PROCESS STATISTICS\n")
	fmt.Fprintf(w, "               Total            Rank            Sort\n")
	fmt.Fprintf(w, " Proc          Time             Time            Time\n")
	if len(stats) == 0 {
		return
	}
	fmt.Fprintf(w, "    0     %10.0f      %10.0f      %10.0f\n",
		micros(stats[0].TotalTime), micros(stats[0].RankTime), micros(stats[0].SortTime))
	if !all {
		return
	}
	for _, ws := range stats[1:] {
		fmt.Fprintf(w, "  %3d     %10.0f      %10.0f      %10.0f\n",
			ws.Worker, micros(ws.TotalTime), micros(ws.RankTime), micros(ws.SortTime))
	}
	s := radixsort.Summarize(stats)
	fmt.Fprintf(w, "  Avg     %10.0f      %10.0f      %10.0f\n", micros(s.Avg.TotalTime), micros(s.Avg.RankTime), micros(s.Avg.SortTime))
	fmt.Fprintf(w, "  Min     %10.0f      %10.0f      %10.0f\n", micros(s.Min.TotalTime), micros(s.Min.RankTime), micros(s.Min.SortTime))
	fmt.Fprintf(w, "  Max     %10.0f      %10.0f      %10.0f\n", micros(s.Max.TotalTime), micros(s.Max.RankTime), micros(s.Max.SortTime))
	fmt.Fprintf(w, "\n")
}

func printTiming(w io.Writer, start, initDone, finish time.Time) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "                 TIMING INFORMATION\n")
	fmt.Fprintf(w, "Start time                        : %16d\n", start.UnixMicro())
	fmt.Fprintf(w, "Initialization finish time        : %16d\n", initDone.UnixMicro())
	fmt.Fprintf(w, "Overall finish time               : %16d\n", finish.UnixMicro())
	fmt.Fprintf(w, "Total time with initialization    : %16.0f\n", micros(finish.Sub(start)))
	fmt.Fprintf(w, "Total time without initialization : %16.0f\n", micros(finish.Sub(initDone)))
	fmt.Fprintf(w, "\n")
}

func printTestResults[K radixsort.Key](w, errw io.Writer, keys []K, out outcome) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "                  TESTING RESULTS\n")
	if out.first >= 0 && out.mistakes > 0 {
		fmt.Fprintf(errw, "error with key %d, value %d %d\n", out.first, uint64(keys[out.first]), uint64(keys[out.first+1]))
	}
	switch {
	case out.mistakes > 0:
		fmt.Fprintf(w, "FAILED: %d keys out of place.\n", out.mistakes)
	case out.permErr != nil:
		fmt.Fprintf(w, "FAILED: %v\n", out.permErr)
	default:
		fmt.Fprintf(w, "PASSED: All keys in place.\n")
	}
	fmt.Fprintf(w, "\n")
}

// printKeys prints keys five per line.
func printKeys[K radixsort.Key](w io.Writer, keys []K) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "                 SORTED KEY VALUES\n")
	for i, k := range keys {
		fmt.Fprintf(w, "%8d ", uint64(k))
		if (i+1)%5 == 0 {
			fmt.Fprintf(w, "\n")
		}
	}
	fmt.Fprintf(w, "\n")
}

type workerReport struct {
	Worker  int     `json:"worker"`
	Keys    int     `json:"keys"`
	TotalUS float64 `json:"total_us"`
	RankUS  float64 `json:"rank_us"`
	SortUS  float64 `json:"sort_us"`
}

type report struct {
	CPU       string         `json:"cpu"`
	Dist      string         `json:"dist"`
	Keys      int            `json:"keys"`
	KeyBits   int            `json:"key_bits"`
	MaxKey    uint64         `json:"max_key"`
	Radix     int            `json:"radix"`
	Workers   int            `json:"workers"`
	Passes    int            `json:"passes"`
	Final     string         `json:"final_buffer"`
	ElapsedUS float64        `json:"elapsed_us"`
	Stats     []workerReport `json:"stats"`
	Mistakes  int            `json:"mistakes"`
	Passed    bool           `json:"passed"`
	Digest    string         `json:"digest"`
}

func newReport[K radixsort.Key](opts options, res *radixsort.Result[K], out outcome) report {
	var zero K
	r := report{
		CPU:       cpuid.CPU.BrandName,
		Dist:      distName(opts),
		Keys:      len(res.Keys),
		KeyBits:   keyBits(^zero),
		MaxKey:    opts.maxKey,
		Radix:     res.Radix,
		Workers:   res.Workers,
		Passes:    res.Passes,
		Final:     res.Final.String(),
		ElapsedUS: micros(res.Elapsed),
		Mistakes:  out.mistakes,
		Passed:    out.passed(),
		Digest:    out.digest,
	}
	for _, ws := range res.Stats {
		r.Stats = append(r.Stats, workerReport{
			Worker:  ws.Worker,
			Keys:    ws.Keys,
			TotalUS: micros(ws.TotalTime),
			RankUS:  micros(ws.RankTime),
			SortUS:  micros(ws.SortTime),
		})
	}
	return r
}

func keyBits[K radixsort.Key](top K) int {
	n := 0
	for v := uint64(top); v != 0; v >>= 1 {
		n++
	}
	return n
}

func writeReport(path string, r report) error {
	data, err := sonnet.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	data = append(data, '\n')
	if path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
