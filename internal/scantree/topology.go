package scantree

// Topology is the shape of a combining tree over a fixed number of leaves.
//
// The tree is built bottom-up: leaves 0..n-1 (one per worker, in worker
// order) form level 0; each level pairs adjacent nodes left to right into a
// new parent, and an odd trailing node is carried to the next level
// unchanged. Every internal node therefore has exactly two children, there
// are n-1 internal nodes numbered n..2n-2 in creation order, and the root is
// always node 2n-2. The leaves under any node form a contiguous range of
// worker ids, which is what lets a left sibling stand for "all lower-numbered
// workers" at that level.
//
// Node layout for n = 5:
//
//	level 0:  0   1   2   3   4
//	level 1:    5       6     4 (carried)
//	level 2:        7         4 (carried)
//	level 3:            8
type Topology struct {
	leaves int
	parent []int // -1 for the root
	left   []int // -1 for leaves
	right  []int // -1 for leaves
	lo     []int // first leaf under the node
	hi     []int // one past the last leaf under the node
	depth  int
}

// NewTopology builds the combining tree over leaves leaves.
// Panics if leaves < 1.
func NewTopology(leaves int) *Topology {
	if leaves < 1 {
		panic("scantree: leaves must be positive")
	}

	nodes := 2*leaves - 1
	t := &Topology{
		leaves: leaves,
		parent: make([]int, nodes),
		left:   make([]int, nodes),
		right:  make([]int, nodes),
		lo:     make([]int, nodes),
		hi:     make([]int, nodes),
	}
	for i := range nodes {
		t.parent[i] = -1
		t.left[i] = -1
		t.right[i] = -1
	}

	level := make([]int, leaves)
	for i := range leaves {
		level[i] = i
		t.lo[i] = i
		t.hi[i] = i + 1
	}

	next := leaves
	for len(level) > 1 {
		up := make([]int, 0, (len(level)+1)/2)
		for i := 0; i+1 < len(level); i += 2 {
			l, r := level[i], level[i+1]
			t.left[next] = l
			t.right[next] = r
			t.parent[l] = next
			t.parent[r] = next
			t.lo[next] = t.lo[l]
			t.hi[next] = t.hi[r]
			up = append(up, next)
			next++
		}
		if len(level)%2 == 1 {
			up = append(up, level[len(level)-1])
		}
		level = up
		t.depth++
	}

	return t
}

// Leaves returns the number of leaves (workers).
func (t *Topology) Leaves() int { return t.leaves }

// Nodes returns the total number of nodes, 2*Leaves()-1.
func (t *Topology) Nodes() int { return len(t.parent) }

// Root returns the index of the root node, 2*Leaves()-2.
func (t *Topology) Root() int { return len(t.parent) - 1 }

// Depth returns the number of merge levels above the leaves.
func (t *Topology) Depth() int { return t.depth }

// Parent returns the parent of node n, or -1 for the root.
func (t *Topology) Parent(n int) int { return t.parent[n] }

// Children returns the left and right children of node n, or (-1, -1) for a
// leaf.
func (t *Topology) Children(n int) (left, right int) { return t.left[n], t.right[n] }

// IsRight reports whether node n is the right child of its parent.
func (t *Topology) IsRight(n int) bool {
	p := t.parent[n]
	return p >= 0 && t.right[p] == n
}

// Sibling returns the other child of n's parent, or -1 for the root.
func (t *Topology) Sibling(n int) int {
	p := t.parent[n]
	if p < 0 {
		return -1
	}
	if t.left[p] == n {
		return t.right[p]
	}
	return t.left[p]
}

// Span returns the half-open range of leaves under node n.
func (t *Topology) Span(n int) (lo, hi int) { return t.lo[n], t.hi[n] }

// Producer returns the leaf whose worker writes node n during the up-sweep:
// the rightmost leaf under n.
func (t *Topology) Producer(n int) int { return t.hi[n] - 1 }

// Produced returns the nodes written by leaf's worker in the up-sweep, from
// the leaf itself upwards. The worker keeps climbing while it is a right
// child; a left child stops because its parent is produced by the worker
// that owns the right subtree.
func (t *Topology) Produced(leaf int) []int {
	nodes := []int{leaf}
	for n := leaf; t.IsRight(n); {
		n = t.parent[n]
		nodes = append(nodes, n)
	}
	return nodes
}

// LeftSiblings returns, from the leaf upwards, every left sibling on the path
// from leaf to the root. Their spans partition [0, leaf) exactly.
func (t *Topology) LeftSiblings(leaf int) []int {
	var nodes []int
	for n := leaf; t.parent[n] >= 0; n = t.parent[n] {
		if t.IsRight(n) {
			nodes = append(nodes, t.left[t.parent[n]])
		}
	}
	return nodes
}
