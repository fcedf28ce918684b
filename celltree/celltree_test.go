package celltree_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/cablecore/celltree"
)

// childCounts collects the child count of every node.
func childCounts(t *testing.T, tr *celltree.Tree) []int {
	t.Helper()
	counts := make([]int, tr.NumNodes())
	for i := range counts {
		n, err := tr.NumChildren(i)
		require.NoError(t, err)
		counts[i] = n
	}

	return counts
}

// TestNew_FromParentIndex mirrors the canonical construction cases: a
// single root, the normalized empty input, and small branching trees.
func TestNew_FromParentIndex(t *testing.T) {
	cases := []struct {
		name    string
		parents []int
		counts  []int
	}{
		{"SingleRoot", []int{0}, []int{0}},
		{"Empty", nil, []int{0}},
		{"TwoOffRoot", []int{0, 0, 0}, []int{2, 0, 0}},
		{"StemThenFork", []int{0, 0, 1, 1}, []int{1, 2, 0, 0}},
		{"TwoLevels", []int{0, 0, 0, 1, 1}, []int{2, 2, 0, 0, 0}},
		{"ThreeLevels", []int{0, 0, 0, 1, 1, 4, 4}, []int{2, 2, 0, 0, 2, 0, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr, err := celltree.New(tc.parents)
			require.NoError(t, err)
			require.Equal(t, len(tc.counts), tr.NumNodes())
			require.Equal(t, tc.counts, childCounts(t, tr))
		})
	}
}

// TestNew_Invalid rejects forward- and self-referring parents.
func TestNew_Invalid(t *testing.T) {
	for _, parents := range [][]int{
		{1},
		{0, 1},
		{0, 0, 3, 1},
		{0, -1},
	} {
		_, err := celltree.New(parents)
		if !errors.Is(err, celltree.ErrInvalidTree) {
			t.Errorf("New(%v) error = %v; want ErrInvalidTree", parents, err)
		}
	}
}

// TestChangeRoot_Line: rerooting a two-child root at one child yields a
// chain.
//
//	    0       0
//	   / \      |
//	  1   2 ->  1
//	            |
//	            2
func TestChangeRoot_Line(t *testing.T) {
	tr, err := celltree.New([]int{0, 0, 0})
	require.NoError(t, err)

	nt, perm, err := tr.ChangeRoot(1)
	require.NoError(t, err)
	require.Equal(t, 3, nt.NumNodes())
	require.Equal(t, []int{1, 1, 0}, childCounts(t, nt))
	require.Equal(t, []int{1, 0, 2}, perm)
}

// TestChangeRoot_TwoLevels:
//
//	    0          0
//	   / \        /|\
//	  1   2  ->  1 2 3
//	 / \             |
//	3   4            4
func TestChangeRoot_TwoLevels(t *testing.T) {
	tr, err := celltree.New([]int{0, 0, 0, 1, 1})
	require.NoError(t, err)

	nt, _, err := tr.ChangeRoot(1)
	require.NoError(t, err)
	require.Equal(t, 5, nt.NumNodes())
	require.Equal(t, []int{3, 0, 0, 1, 0}, childCounts(t, nt))
}

// TestChangeRoot_DepthDecrease: rerooting at node 1 flattens the tree by
// one level and the ex-grandchild keeps its own subtree.
//
//	    0         0
//	   / \       /|\
//	  1   2 ->  1 2 5
//	 / \         / \ \
//	3   4       3   4 6
//	   / \
//	  5   6
func TestChangeRoot_DepthDecrease(t *testing.T) {
	tr, err := celltree.New([]int{0, 0, 0, 1, 1, 4, 4})
	require.NoError(t, err)

	nt, perm, err := tr.ChangeRoot(1)
	require.NoError(t, err)
	require.Equal(t, 7, nt.NumNodes())
	require.Equal(t, []int{3, 0, 2, 0, 0, 1, 0}, childCounts(t, nt))

	// Node count invariant and permutation sanity.
	require.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5, 6}, perm)

	// Depth decreased from 3 to 2.
	maxDepth := func(tr *celltree.Tree) int {
		m := 0
		for _, d := range tr.Depths() {
			if d > m {
				m = d
			}
		}
		return m
	}
	require.Equal(t, 3, maxDepth(tr))
	require.Equal(t, 2, maxDepth(nt))
}

// TestBalance reroots the same topology at its centre (node 1).
func TestBalance(t *testing.T) {
	tr, err := celltree.New([]int{0, 0, 0, 1, 1, 4, 4})
	require.NoError(t, err)

	bt, perm, err := tr.Balance()
	require.NoError(t, err)
	require.Equal(t, 7, bt.NumNodes())
	require.Equal(t, 1, perm[0], "centre of the example tree is old node 1")
	require.Equal(t, []int{3, 0, 2, 0, 0, 1, 0}, childCounts(t, bt))
}

// TestWalk enumerates in pre-order with children in insertion order.
func TestWalk(t *testing.T) {
	tr, err := celltree.New([]int{0, 0, 0, 1, 1, 4, 4})
	require.NoError(t, err)

	var order []int
	require.NoError(t, tr.Walk(func(node, parent int) error {
		order = append(order, node)
		return nil
	}))
	require.Equal(t, []int{0, 1, 3, 4, 5, 6, 2}, order)
}

// TestAccessors_OutOfRange covers the range-checked accessors.
func TestAccessors_OutOfRange(t *testing.T) {
	tr, err := celltree.New([]int{0, 0})
	require.NoError(t, err)

	_, err = tr.NumChildren(2)
	require.ErrorIs(t, err, celltree.ErrNodeOutOfRange)
	_, err = tr.Children(-1)
	require.ErrorIs(t, err, celltree.ErrNodeOutOfRange)
	_, _, err = tr.ChangeRoot(7)
	require.ErrorIs(t, err, celltree.ErrNodeOutOfRange)
}
