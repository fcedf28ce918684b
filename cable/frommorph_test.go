package cable_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/katalvlaran/cablecore/cable"
	"github.com/katalvlaran/cablecore/morph"
)

// TestNewCellFromMorphology: soma sphere plus a forked dendrite pair.
func TestNewCellFromMorphology(t *testing.T) {
	st := morph.NewSampleTree()
	append_ := func(parent int, s morph.Sample) int {
		id, err := st.Append(parent, s)
		require.NoError(t, err)
		return id
	}

	root := append_(morph.NoParent, morph.Sample{Radius: 6.30785, Tag: 1})
	a := append_(root, morph.Sample{X: 100, Radius: 0.5, Tag: 3})
	b := append_(a, morph.Sample{X: 200, Radius: 0.3, Tag: 3})
	append_(b, morph.Sample{X: 200, Y: 100, Radius: 0.3, Tag: 3})
	append_(b, morph.Sample{X: 200, Y: -50, Radius: 0.3, Tag: 4})

	m, err := morph.NewMorphology(st, true)
	require.NoError(t, err)
	require.Equal(t, 4, m.NumBranches())

	cell, err := cable.NewCellFromMorphology(m, map[int]string{3: "dend", 4: "apic"}, 4)
	require.NoError(t, err)
	require.Equal(t, 4, cell.NumSegments())
	require.Equal(t, []int{0, 0, 1, 1}, cell.Parents())

	soma, err := cell.Segment(0)
	require.NoError(t, err)
	require.Equal(t, cable.SomaKind, soma.Kind)
	require.Equal(t, 6.30785, soma.Radius)

	trunk, err := cell.Segment(1)
	require.NoError(t, err)
	require.Equal(t, cable.CableKind, trunk.Kind)
	require.Equal(t, []float64{0.5, 0.3}, trunk.Radii)
	require.True(t, scalar.EqualWithinRel(100, trunk.Length(), 1e-12))
	require.Equal(t, "dend", trunk.Tag)
	require.Equal(t, 4, trunk.NComp)

	// Child branches include the fork sample as proximal radius.
	left, err := cell.Segment(2)
	require.NoError(t, err)
	require.Equal(t, []float64{0.3, 0.3}, left.Radii)
	require.Equal(t, "dend", left.Tag)

	right, err := cell.Segment(3)
	require.NoError(t, err)
	require.Equal(t, "apic", right.Tag)

	// Non-spherical morphologies cannot anchor a soma-rooted cell.
	flat, err := morph.NewMorphology(st, false)
	require.NoError(t, err)
	_, err = cable.NewCellFromMorphology(flat, nil, 1)
	require.ErrorIs(t, err, cable.ErrInvalidSegment)
}
