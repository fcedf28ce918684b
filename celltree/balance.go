package celltree

// Balance returns the tree rerooted at a centre node — a node minimizing
// the resulting depth — together with the new→old index mapping, as for
// ChangeRoot. Discretizing from a balanced root improves the conditioning
// of the resulting linear systems.
//
// The centre is the midpoint of a longest path (two BFS sweeps); when the
// longest path has an even number of nodes the lower-indexed of the two middle nodes
// is chosen, keeping the operation deterministic.
// Complexity: O(n) time and memory.
func (t *Tree) Balance() (*Tree, []int, error) {
	// 1. Farthest node from the current root.
	u := t.farthest(0, nil)

	// 2. Farthest node from u, tracking the path.
	prev := make([]int, len(t.parents))
	v := t.farthest(u, prev)

	// 3. Reconstruct the u→v path and take its midpoint.
	var path []int
	for x := v; ; x = prev[x] {
		path = append(path, x)
		if x == u {
			break
		}
	}
	a, b := path[(len(path)-1)/2], path[len(path)/2]
	centre := a
	if b < centre {
		centre = b
	}

	return t.ChangeRoot(centre)
}

// farthest runs a BFS over the undirected tree from start and returns the
// node at maximum distance, preferring the smallest index on ties. If
// prev is non-nil it receives the BFS predecessor of every visited node.
func (t *Tree) farthest(start int, prev []int) int {
	n := len(t.parents)
	dist := make([]int, n)
	for i := range dist {
		dist[i] = -1
	}
	dist[start] = 0
	if prev != nil {
		prev[start] = start
	}

	queue := []int{start}
	best := start
	for len(queue) > 0 {
		x := queue[0]
		queue = queue[1:]
		if dist[x] > dist[best] || (dist[x] == dist[best] && x < best) {
			best = x
		}
		// Undirected neighbors: parent plus children.
		visit := func(y int) {
			if dist[y] < 0 {
				dist[y] = dist[x] + 1
				if prev != nil {
					prev[y] = x
				}
				queue = append(queue, y)
			}
		}
		if t.parents[x] != x {
			visit(t.parents[x])
		}
		for _, c := range t.children[x] {
			visit(c)
		}
	}

	return best
}
