// Package scantree implements the combining tree used by the parallel radix
// sort to turn per-worker digit histograms into global write offsets.
//
// Each digit pass, every worker publishes its local histogram (Counts) and
// its inclusive prefix sum over buckets (Densities) into its leaf. The
// up-sweep merges siblings element-wise into their parent; the merge of a
// node is done by exactly one worker, the owner of the rightmost leaf under
// it, so each node has a single producer per pass. The down-sweep gives
// worker t, for every bucket b:
//
//	offset[t][b] = (# keys with digit < b) + (# keys with digit b held by workers < t)
//
// The first term is the root's Densities[b-1]; the second is the sum of the
// Counts of every left sibling on the path from t's leaf to the root.
//
// Nodes are single-writer, multi-reader cells. Readiness is a pass stamp
// rather than a flag that must be cleared: a node is ready for pass k once
// its producer has published pass k, so stale readiness from pass k-1 can
// never satisfy a waiter of pass k.
package scantree
