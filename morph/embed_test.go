package morph_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/katalvlaran/cablecore/morph"
)

const reltol = 1e-10

// embedFixture: two branches,
//
//	branch 0: samples 0-1-2, radii 10→20→10 over 10+20 µm,
//	branch 1: fork at sample 2, radii 10→5 over 10 µm (plus a sibling).
func embedFixture(t *testing.T) *morph.Embedding {
	st := mk(t,
		[]int{morph.NoParent, 0, 1, 2, 2},
		[]morph.Sample{
			{X: 0, Radius: 10, Tag: 1},
			{X: 10, Radius: 20, Tag: 1},
			{X: 30, Radius: 10, Tag: 1},
			{X: 30, Y: 10, Radius: 5, Tag: 2},
			{X: 30, Z: 50, Radius: 5, Tag: 2},
		})
	m, err := morph.NewMorphology(st, false)
	require.NoError(t, err)

	return morph.NewEmbedding(m)
}

func TestEmbedding_PartialLength(t *testing.T) {
	em := embedFixture(t)

	bl, err := em.BranchLength(0)
	require.NoError(t, err)
	require.Equal(t, 30.0, bl)

	l, err := em.IntegrateLength(morph.Cable{Branch: 0, PosLo: 0, PosHi: 1})
	require.NoError(t, err)
	require.Equal(t, 30.0, l)

	l, err = em.IntegrateLength(morph.Cable{Branch: 0, PosLo: 0.25, PosHi: 0.75})
	require.NoError(t, err)
	require.Equal(t, 15.0, l)

	bl, err = em.BranchLength(1)
	require.NoError(t, err)
	require.Equal(t, 10.0, bl)

	l, err = em.IntegrateLength(morph.Cable{Branch: 1, PosLo: 0.25, PosHi: 1})
	require.NoError(t, err)
	require.Equal(t, 7.5, l)

	// Weighted: 2·|0.25,0.5| + 3·|0.5,1| on the 10 µm branch.
	pw, err := morph.NewPiecewise([]float64{0.25, 0.5, 1}, []float64{2, 3})
	require.NoError(t, err)
	wl, err := em.IntegrateLengthPW(1, pw)
	require.NoError(t, err)
	require.Equal(t, 20.0, wl)
}

func TestEmbedding_PartialArea(t *testing.T) {
	em := embedFixture(t)

	// Branch 1: single truncated cone, length 10, radius 10 → 5.
	// Area = 2πLr̄√(1+m²), m = δr/L, r̄ = 7.5.
	cable1Area := 2 * math.Pi * 10 * 7.5 * math.Sqrt(1.25)
	got, err := em.IntegrateArea(morph.Cable{Branch: 1, PosLo: 0, PosHi: 1})
	require.NoError(t, err)
	require.True(t, scalar.EqualWithinRel(cable1Area, got, reltol), "got %v want %v", got, cable1Area)

	// Radii along branch 0 interpolate linearly in arc length.
	for _, tc := range []struct{ pos, want float64 }{
		{0.1, 13}, {0.3, 19}, {0.9, 11.5},
	} {
		r, err := em.Radius(morph.Location{Branch: 0, Pos: tc.pos})
		require.NoError(t, err)
		require.True(t, scalar.EqualWithinRel(tc.want, r, reltol), "radius(%v) = %v", tc.pos, r)
	}

	// Sub-areas split at the radius breakpoint (arc 10 µm = pos 1/3).
	subArea1 := math.Pi * 6 * (13 + 19) * math.Sqrt2
	subArea2 := math.Pi * 1 * (19 + 20) * math.Sqrt2
	subArea3 := math.Pi * 17 * (20 + 11.5) * math.Sqrt(1.25)

	got, err = em.IntegrateArea(morph.Cable{Branch: 0, PosLo: 0.1, PosHi: 0.3})
	require.NoError(t, err)
	require.True(t, scalar.EqualWithinRel(subArea1, got, reltol))

	got, err = em.IntegrateArea(morph.Cable{Branch: 0, PosLo: 0.3, PosHi: 1. / 3})
	require.NoError(t, err)
	require.True(t, scalar.EqualWithinRel(subArea2, got, reltol))

	got, err = em.IntegrateArea(morph.Cable{Branch: 0, PosLo: 1. / 3, PosHi: 0.9})
	require.NoError(t, err)
	require.True(t, scalar.EqualWithinRel(subArea3, got, reltol))

	// Piecewise weight 5 on [0.1,0.3], 7 on [0.3,0.9].
	pw, err := morph.NewPiecewise([]float64{0.1, 0.3, 0.9}, []float64{5, 7})
	require.NoError(t, err)
	wgot, err := em.IntegrateAreaPW(0, pw)
	require.NoError(t, err)
	want := 5*subArea1 + 7*(subArea2+subArea3)
	require.True(t, scalar.EqualWithinRel(want, wgot, reltol))
}

func TestEmbedding_PartialIxa(t *testing.T) {
	em := embedFixture(t)

	// Branch 1 from 0.1 to 0.4: radii 9.5 → 8 over 3 µm.
	want := 3 / (9.5 * 8) / math.Pi
	got, err := em.IntegrateIxa(morph.Cable{Branch: 1, PosLo: 0.1, PosHi: 0.4})
	require.NoError(t, err)
	require.True(t, scalar.EqualWithinRel(want, got, reltol), "got %v want %v", got, want)
}

func TestEmbedding_CableValidation(t *testing.T) {
	em := embedFixture(t)

	_, err := em.IntegrateArea(morph.Cable{Branch: 9, PosLo: 0, PosHi: 1})
	require.ErrorIs(t, err, morph.ErrBranchOutOfRange)
	_, err = em.IntegrateLength(morph.Cable{Branch: 0, PosLo: 0.5, PosHi: 0.2})
	require.ErrorIs(t, err, morph.ErrBranchOutOfRange)
	_, err = em.IntegrateIxa(morph.Cable{Branch: 0, PosLo: -0.1, PosHi: 0.2})
	require.ErrorIs(t, err, morph.ErrBranchOutOfRange)

	_, err = morph.NewPiecewise([]float64{0.5, 0.25}, []float64{1})
	require.ErrorIs(t, err, morph.ErrBadPiecewise)
	_, err = morph.NewPiecewise([]float64{0, 1}, []float64{1, 2})
	require.ErrorIs(t, err, morph.ErrBadPiecewise)
}
