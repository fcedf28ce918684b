// Package celltree implements the parent-indexed segment tree underlying
// cell morphologies: an ordered sequence of nodes 0..n-1 where every
// non-root node references a strictly smaller parent index, and the root
// references itself.
//
// Key features:
//   - New(parents): validated construction; an empty input normalizes to
//     a single-node tree
//   - NumChildren / Children: precomputed reverse index, insertion order
//   - Walk: depth-first enumeration in insertion order
//   - ChangeRoot(j): rerooting with path reversal and pre-order renumbering
//   - Balance(): reroot at a tree centre to minimize depth
//
// Complexity:
//
//   - Time:   O(n) construction and traversal; O(n) ChangeRoot; O(n) Balance.
//   - Memory: O(n) for the parent array plus the children reverse index.
//
// Errors:
//
//   - ErrInvalidTree        if a non-root entry does not strictly refer to a predecessor.
//   - ErrNodeOutOfRange     if a node index passed to an accessor is out of bounds.
package celltree

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTree indicates a parent array that is not strictly
	// predecessor-referring (parent[i] >= i for some i >= 1, or a
	// non-self-referencing root).
	ErrInvalidTree = errors.New("celltree: invalid parent index array")

	// ErrNodeOutOfRange indicates a node index outside [0, NumNodes).
	ErrNodeOutOfRange = errors.New("celltree: node index out of range")
)

// Tree is an immutable rooted tree over node indices 0..n-1.
// The root is always node 0. Construct with New; the zero value is not
// usable.
type Tree struct {
	parents  []int
	children [][]int
}

// New constructs a Tree from a parent index array. An empty or nil input
// normalizes to a single-node tree. For every i >= 1, parents[i] must be
// strictly less than i; parents[0] must be 0 (the root refers to itself).
// The input slice is copied.
// Complexity: O(n) time and memory.
func New(parents []int) (*Tree, error) {
	// 1. Normalize the empty morphology to a single root node.
	if len(parents) == 0 {
		parents = []int{0}
	}

	// 2. Validate the strict predecessor property.
	if parents[0] != 0 {
		return nil, fmt.Errorf("celltree: root parent %d: %w", parents[0], ErrInvalidTree)
	}
	for i := 1; i < len(parents); i++ {
		if parents[i] < 0 || parents[i] >= i {
			return nil, fmt.Errorf("celltree: parent[%d] = %d: %w", i, parents[i], ErrInvalidTree)
		}
	}

	// 3. Copy and build the children reverse index in insertion order.
	p := make([]int, len(parents))
	copy(p, parents)

	return &Tree{parents: p, children: childIndex(p)}, nil
}

// childIndex builds the per-node child list for a validated parent array.
func childIndex(parents []int) [][]int {
	children := make([][]int, len(parents))
	for i := 1; i < len(parents); i++ {
		children[parents[i]] = append(children[parents[i]], i)
	}

	return children
}

// NumNodes returns the number of nodes in the tree.
func (t *Tree) NumNodes() int { return len(t.parents) }

// Parent returns the parent index of node i; the root returns itself.
func (t *Tree) Parent(i int) (int, error) {
	if i < 0 || i >= len(t.parents) {
		return 0, fmt.Errorf("celltree: Parent(%d): %w", i, ErrNodeOutOfRange)
	}

	return t.parents[i], nil
}

// Parents returns a copy of the underlying parent index array.
func (t *Tree) Parents() []int {
	p := make([]int, len(t.parents))
	copy(p, t.parents)

	return p
}

// NumChildren returns the number of children of node i.
func (t *Tree) NumChildren(i int) (int, error) {
	if i < 0 || i >= len(t.parents) {
		return 0, fmt.Errorf("celltree: NumChildren(%d): %w", i, ErrNodeOutOfRange)
	}

	return len(t.children[i]), nil
}

// Children returns the child indices of node i in insertion order.
// The returned slice must not be mutated.
func (t *Tree) Children(i int) ([]int, error) {
	if i < 0 || i >= len(t.parents) {
		return nil, fmt.Errorf("celltree: Children(%d): %w", i, ErrNodeOutOfRange)
	}

	return t.children[i], nil
}

// Walk calls fn for every node in depth-first pre-order, children in
// insertion order, starting at the root. Returning an error from fn
// aborts the walk with that error.
// Complexity: O(n).
func (t *Tree) Walk(fn func(node, parent int) error) error {
	// Iterative DFS; the stack holds the not-yet-visited siblings along
	// the current path.
	type frame struct{ node, parent int }
	stack := []frame{{0, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if err := fn(f.node, f.parent); err != nil {
			return err
		}
		// Push children in reverse so they pop in insertion order.
		kids := t.children[f.node]
		for k := len(kids) - 1; k >= 0; k-- {
			stack = append(stack, frame{kids[k], f.node})
		}
	}

	return nil
}

// Depths returns the depth of every node (root = 0).
// Complexity: O(n), exploiting the predecessor property.
func (t *Tree) Depths() []int {
	d := make([]int, len(t.parents))
	for i := 1; i < len(t.parents); i++ {
		d[i] = d[t.parents[i]] + 1
	}

	return d
}

// ChangeRoot returns a new tree in which old node j is the root. The
// unique path root→j is reversed — each ex-parent on it becomes a child
// of its ex-child — and the nodes are renumbered by pre-order DFS from j
// with children in stable order and the inverted ex-parent link last.
// The second result maps new index → old index.
// Complexity: O(n) time and memory.
func (t *Tree) ChangeRoot(j int) (*Tree, []int, error) {
	n := len(t.parents)
	if j < 0 || j >= n {
		return nil, nil, fmt.Errorf("celltree: ChangeRoot(%d): %w", j, ErrNodeOutOfRange)
	}

	// 1. Mark the root→j path; these links flip direction.
	onPath := make([]bool, n)
	for v := j; ; v = t.parents[v] {
		onPath[v] = true
		if v == t.parents[v] {
			break
		}
	}

	// 2. Build adjacency in the rerooted orientation: original children
	//    minus the path child, plus the inverted ex-parent appended last.
	adj := make([][]int, n)
	for v := 0; v < n; v++ {
		for _, c := range t.children[v] {
			if !(onPath[v] && onPath[c]) {
				adj[v] = append(adj[v], c)
			}
		}
	}
	for v := j; v != t.parents[v]; v = t.parents[v] {
		adj[v] = append(adj[v], t.parents[v])
	}

	// 3. Pre-order DFS from j assigns the new numbering.
	perm := make([]int, 0, n) // perm[new] = old
	newParents := make([]int, 0, n)
	type frame struct{ old, parentNew int }
	stack := []frame{{j, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		id := len(perm)
		perm = append(perm, f.old)
		newParents = append(newParents, f.parentNew)
		for k := len(adj[f.old]) - 1; k >= 0; k-- {
			stack = append(stack, frame{adj[f.old][k], id})
		}
	}

	return &Tree{parents: newParents, children: childIndex(newParents)}, perm, nil
}
