package morph

import (
	"errors"
	"fmt"
)

// ErrEmptyMorphology indicates construction from a sample tree with no
// samples, or from a lone root sample without a spherical root.
var ErrEmptyMorphology = errors.New("morph: empty sample tree")

// Branch is a maximal unbranched run of samples, proximal to distal.
// Non-root branches include the fork sample they sprout from as their
// proximal sample, except children of a spherical root, which start at
// their own first sample.
type Branch struct {
	// Samples lists the sample indices of the branch, proximal first.
	Samples []int

	// ParentBranch is the index of the parent branch, or NoParent for a
	// branch rooted at the morphology root.
	ParentBranch int
}

// Morphology is the branch decomposition of a sample tree. Branches are
// numbered in discovery order: the root's child chains first, then the
// chains sprouting from each fork in breadth order. The decomposition is
// deterministic for a given sample tree.
type Morphology struct {
	st        *SampleTree
	spherical bool
	branches  []Branch

	// homeBranch[i] is the canonical branch of sample i: the branch where
	// the sample lies distal or interior, else the first branch containing
	// it (the root sample of a non-spherical morphology).
	homeBranch []int
}

// NewMorphology decomposes a sample tree into branches. When
// sphericalRoot is set, sample 0 stands for a spherical soma: it forms
// branch 0 on its own and is excluded from its child branches.
// Complexity: O(n) time and memory.
func NewMorphology(st *SampleTree, sphericalRoot bool) (*Morphology, error) {
	if st == nil || st.NumSamples() == 0 {
		return nil, ErrEmptyMorphology
	}

	n := st.NumSamples()
	kids := st.children()

	m := &Morphology{st: st, spherical: sphericalRoot}
	m.homeBranch = make([]int, n)
	for i := range m.homeBranch {
		m.homeBranch[i] = -1
	}

	// 1. Seed the branch queue at the root.
	type seed struct {
		from   int // fork sample opening the branch, or NoParent
		first  int // first own sample of the branch
		parent int // parent branch index
	}
	var queue []seed

	if sphericalRoot {
		m.branches = append(m.branches, Branch{Samples: []int{0}, ParentBranch: NoParent})
		m.homeBranch[0] = 0
		for _, c := range kids[0] {
			queue = append(queue, seed{from: NoParent, first: c, parent: 0})
		}
	} else {
		for _, c := range kids[0] {
			queue = append(queue, seed{from: 0, first: c, parent: NoParent})
		}
		if len(kids[0]) == 0 {
			return nil, fmt.Errorf("morph: single-sample morphology without spherical root: %w", ErrEmptyMorphology)
		}
	}

	// 2. Grow each seeded chain until a terminal or fork sample, forking
	//    new seeds breadth-first; this fixes branch numbering.
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]

		b := Branch{ParentBranch: s.parent}
		if s.from != NoParent {
			b.Samples = append(b.Samples, s.from)
		}
		cur := s.first
		for {
			b.Samples = append(b.Samples, cur)
			if m.homeBranch[cur] < 0 {
				m.homeBranch[cur] = len(m.branches)
			}
			if len(kids[cur]) != 1 {
				break
			}
			cur = kids[cur][0]
		}

		id := len(m.branches)
		m.branches = append(m.branches, b)
		for _, c := range kids[cur] {
			queue = append(queue, seed{from: cur, first: c, parent: id})
		}
	}

	// 3. The non-spherical root sample has no interior occurrence; pin it
	//    to its first branch.
	if !sphericalRoot && m.homeBranch[0] < 0 {
		m.homeBranch[0] = 0
	}

	return m, nil
}

// NumBranches returns the number of branches.
func (m *Morphology) NumBranches() int { return len(m.branches) }

// Branch returns branch b.
func (m *Morphology) Branch(b int) (Branch, error) {
	if b < 0 || b >= len(m.branches) {
		return Branch{}, fmt.Errorf("morph: Branch(%d): %w", b, ErrBranchOutOfRange)
	}

	return m.branches[b], nil
}

// SphericalRoot reports whether branch 0 is a spherical soma.
func (m *Morphology) SphericalRoot() bool { return m.spherical }

// SampleTree returns the underlying sample tree.
func (m *Morphology) SampleTree() *SampleTree { return m.st }
