package cable

import (
	"fmt"
	"math"

	"github.com/katalvlaran/cablecore/morph"
)

// NewCellFromMorphology converts a branch-decomposed morphology into a
// cell: a spherical root branch becomes the soma, every other branch a
// cable segment whose radii and lengths come straight from its samples.
// tags maps sample tag numbers to region names (a branch takes the tag
// of its distal sample); unmapped tags yield empty region names.
// Every cable receives ncomp compartments.
//
// The morphology must have a spherical root: the CV layout is anchored
// on a soma segment at the tree root.
func NewCellFromMorphology(m *morph.Morphology, tags map[int]string, ncomp int) (*Cell, error) {
	if !m.SphericalRoot() {
		return nil, fmt.Errorf("cable: morphology without spherical root: %w", ErrInvalidSegment)
	}

	st := m.SampleTree()
	cell := NewCell()

	root, err := m.Branch(0)
	if err != nil {
		return nil, err
	}
	soma, err := st.Sample(root.Samples[0])
	if err != nil {
		return nil, err
	}
	if _, err = cell.AddSoma(soma.Radius); err != nil {
		return nil, err
	}

	// Branch order is parent-before-child, so branch ids map 1:1 onto
	// segment indices.
	for b := 1; b < m.NumBranches(); b++ {
		br, err := m.Branch(b)
		if err != nil {
			return nil, err
		}

		radii := make([]float64, len(br.Samples))
		lengths := make([]float64, len(br.Samples)-1)
		var prev morph.Sample
		for k, sid := range br.Samples {
			s, err := st.Sample(sid)
			if err != nil {
				return nil, err
			}
			radii[k] = s.Radius
			if k > 0 {
				dx, dy, dz := s.X-prev.X, s.Y-prev.Y, s.Z-prev.Z
				lengths[k-1] = math.Sqrt(dx*dx + dy*dy + dz*dz)
			}
			prev = s
		}

		distal, err := st.Sample(br.Samples[len(br.Samples)-1])
		if err != nil {
			return nil, err
		}

		parent := br.ParentBranch
		if parent == morph.NoParent {
			parent = 0
		}
		if _, err := cell.AddCable(parent, radii, lengths, ncomp, tags[distal.Tag]); err != nil {
			return nil, fmt.Errorf("cable: branch %d: %w", b, err)
		}
	}

	return cell, nil
}
