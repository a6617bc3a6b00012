package radixsort

import "time"

// WorkerStats holds the timing of one worker, accumulated over all passes.
type WorkerStats struct {
	Worker int
	Keys   int // size of the worker's key range

	// RankTime covers histogram, local prefix sum and the scan tree
	// (everything before the first pass barrier).
	RankTime time.Duration
	// SortTime covers the scatter stage.
	SortTime time.Duration
	// TotalTime is wall time from the initialization barrier to the end of
	// the last pass.
	TotalTime time.Duration
}

// StatsSummary aggregates WorkerStats across workers.
type StatsSummary struct {
	Avg, Min, Max WorkerStats
}

// Summarize returns the average, minimum and maximum of each timing column.
// Columns are aggregated independently, so Min.RankTime and Min.SortTime may
// come from different workers. Worker and Keys are zero in the summary rows.
func Summarize(stats []WorkerStats) StatsSummary {
	var s StatsSummary
	if len(stats) == 0 {
		return s
	}

	s.Min = WorkerStats{RankTime: stats[0].RankTime, SortTime: stats[0].SortTime, TotalTime: stats[0].TotalTime}
	s.Max = s.Min
	var rank, sortT, total time.Duration
	for _, ws := range stats {
		rank += ws.RankTime
		sortT += ws.SortTime
		total += ws.TotalTime

		s.Min.RankTime = min(s.Min.RankTime, ws.RankTime)
		s.Min.SortTime = min(s.Min.SortTime, ws.SortTime)
		s.Min.TotalTime = min(s.Min.TotalTime, ws.TotalTime)
		s.Max.RankTime = max(s.Max.RankTime, ws.RankTime)
		s.Max.SortTime = max(s.Max.SortTime, ws.SortTime)
		s.Max.TotalTime = max(s.Max.TotalTime, ws.TotalTime)
	}

	n := time.Duration(len(stats))
	s.Avg = WorkerStats{RankTime: rank / n, SortTime: sortT / n, TotalTime: total / n}
	return s
}
