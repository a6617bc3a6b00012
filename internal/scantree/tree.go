package scantree

import (
	"sync"
	"sync/atomic"

	sorterrors "github.com/tamirms/radixsort/errors"
)

// node is one cell of the tree. Counts and Densities are written only by the
// node's producer, before it publishes the node for the pass.
type node struct {
	counts    []int
	densities []int

	mu    sync.Mutex
	cond  sync.Cond
	stamp uint64 // pass+1 of the latest publication, 0 if never published
}

// Tree holds the node storage for one sort. Storage is allocated once and
// reused by every pass.
type Tree struct {
	topo      *Topology
	radix     int
	nodes     []node
	leftPaths [][]int // LeftSiblings per leaf, computed once
	broken    atomic.Bool
}

// New allocates a tree for the given topology with radix buckets per node.
func New(topo *Topology, radix int) *Tree {
	t := &Tree{
		topo:      topo,
		radix:     radix,
		nodes:     make([]node, topo.Nodes()),
		leftPaths: make([][]int, topo.Leaves()),
	}
	for i := range t.nodes {
		n := &t.nodes[i]
		n.counts = make([]int, radix)
		n.densities = make([]int, radix)
		n.cond.L = &n.mu
	}
	for leaf := range t.leftPaths {
		t.leftPaths[leaf] = topo.LeftSiblings(leaf)
	}
	return t
}

// Topology returns the tree's shape.
func (t *Tree) Topology() *Topology { return t.topo }

// Radix returns the number of buckets per node.
func (t *Tree) Radix() int { return t.radix }

// Publish copies a worker's local histogram and local density into its leaf
// and marks the leaf ready for pass.
func (t *Tree) Publish(leaf, pass int, counts, densities []int) {
	n := &t.nodes[leaf]
	copy(n.counts, counts)
	copy(n.densities, densities)
	t.signal(leaf, pass)
}

// Climb runs leaf's share of the up-sweep for pass: while the current node is
// a right child, wait for its left sibling, merge both into the parent and
// publish the parent. The worker owning the last leaf ends up producing the
// root. Publish must have been called for leaf first.
func (t *Tree) Climb(leaf, pass int) error {
	for n := leaf; t.topo.IsRight(n); {
		sib := t.topo.Sibling(n)
		if err := t.wait(sib, pass); err != nil {
			return err
		}
		p := t.topo.Parent(n)
		merge(&t.nodes[p], &t.nodes[sib], &t.nodes[n])
		t.signal(p, pass)
		n = p
	}
	return nil
}

// Offsets waits for the root of pass and writes leaf's starting write offset
// for every bucket into dst (len(dst) must be Radix()).
func (t *Tree) Offsets(leaf, pass int, dst []int) error {
	root := t.topo.Root()
	if err := t.wait(root, pass); err != nil {
		return err
	}

	clear(dst)
	for _, s := range t.leftPaths[leaf] {
		counts := t.nodes[s].counts
		for b, c := range counts {
			dst[b] += c
		}
	}

	// Exclusive prefix over buckets from the root's inclusive densities.
	totals := t.nodes[root].densities
	for b := 1; b < len(dst); b++ {
		dst[b] += totals[b-1]
	}
	return nil
}

// Counts returns node n's merged histogram. The slice is only stable between
// the node's publication for a pass and the start of the next pass.
func (t *Tree) Counts(n int) []int { return t.nodes[n].counts }

// Densities returns node n's merged inclusive prefix sums, with the same
// stability rules as Counts.
func (t *Tree) Densities(n int) []int { return t.nodes[n].densities }

// Break wakes every goroutine blocked in Climb or Offsets with
// ErrSortAborted and makes later waits fail immediately.
func (t *Tree) Break() {
	t.broken.Store(true)
	for i := range t.nodes {
		n := &t.nodes[i]
		n.mu.Lock()
		n.cond.Broadcast()
		n.mu.Unlock()
	}
}

func (t *Tree) signal(i, pass int) {
	n := &t.nodes[i]
	n.mu.Lock()
	n.stamp = uint64(pass) + 1
	n.cond.Broadcast()
	n.mu.Unlock()
}

func (t *Tree) wait(i, pass int) error {
	want := uint64(pass) + 1
	n := &t.nodes[i]
	n.mu.Lock()
	for n.stamp < want && !t.broken.Load() {
		n.cond.Wait()
	}
	ready := n.stamp >= want
	n.mu.Unlock()
	if !ready {
		return sorterrors.ErrSortAborted
	}
	return nil
}

// merge sums the children of a node into it. Counts and densities are both
// carried at every level, including the root.
func merge(dst, l, r *node) {
	lc, rc, dc := l.counts, r.counts, dst.counts
	for b := range dc {
		dc[b] = lc[b] + rc[b]
	}
	ld, rd, dd := l.densities, r.densities, dst.densities
	for b := range dd {
		dd[b] = ld[b] + rd[b]
	}
}
