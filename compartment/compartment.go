// Package compartment splits a tapered cable — a chain of conical frusta
// described by radii r[0..k] and lengths len[0..k-1] — into N
// equal-arc-length compartments, and integrates the surface area and
// volume of each compartment half exactly over the piecewise-conical
// profile.
//
// Adjacent compartments share a dividing plane; the left and right
// halves of a compartment meet at its centre. Summing every half over a
// cable reproduces the closed-form frustum totals to within a few ulps.
//
// Errors:
//
//   - ErrBadGeometry   if the compartment count, radii or lengths are malformed.
package compartment

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/cablecore/geom"
)

// ErrBadGeometry indicates an invalid compartment count or an
// inconsistent radii/lengths description.
var ErrBadGeometry = errors.New("compartment: bad cable geometry")

// Half is one half-compartment: the piece between a compartment boundary
// and the compartment centre.
type Half struct {
	// Length is the arc length of the half in µm.
	Length float64

	// Area is the lateral membrane area in µm².
	Area float64

	// Volume is the enclosed volume in µm³.
	Volume float64

	// RadiusProx and RadiusDist are the interpolated radii at the
	// proximal and distal ends of the half.
	RadiusProx, RadiusDist float64
}

// Divided is one compartment: its index and its two halves. The dividing
// plane between Left and Right sits at the compartment centre; its
// radius is Left.RadiusDist (== Right.RadiusProx).
type Divided struct {
	Index       int
	Left, Right Half
}

// CentreRadius returns the radius at the compartment centre.
func (d Divided) CentreRadius() float64 { return d.Left.RadiusDist }

// Divide splits the cable described by radii and lengths into ncomp
// equal-length compartments. radii has one more entry than lengths; all
// lengths must be positive.
// Complexity: O(ncomp + k) time, O(ncomp) memory.
func Divide(ncomp int, radii, lengths []float64) ([]Divided, error) {
	// 1. Validate the frustum chain.
	if ncomp < 1 {
		return nil, fmt.Errorf("compartment: ncomp %d: %w", ncomp, ErrBadGeometry)
	}
	if len(radii) < 2 || len(lengths) != len(radii)-1 {
		return nil, fmt.Errorf("compartment: %d radii for %d lengths: %w", len(radii), len(lengths), ErrBadGeometry)
	}
	for i, l := range lengths {
		if l <= 0 {
			return nil, fmt.Errorf("compartment: length[%d] = %g: %w", i, l, ErrBadGeometry)
		}
	}

	// 2. Arc-length prefix over the chain breakpoints.
	cum := make([]float64, len(radii))
	floats.CumSum(cum[1:], lengths)
	total := cum[len(cum)-1]

	radiusAt := func(x float64) float64 {
		k := 0
		for k+2 < len(cum) && cum[k+1] <= x {
			k++
		}

		return geom.LerpRadius(radii[k], radii[k+1], (x-cum[k])/(cum[k+1]-cum[k]))
	}

	// integrate accumulates area, volume over [a, b], splitting at chain
	// breakpoints so each piece has a linear radius profile.
	integrate := func(a, b float64) (area, volume float64) {
		lo := a
		for _, x := range cum {
			if x > lo && x < b {
				area += geom.AreaFrustum(x-lo, radiusAt(lo), radiusAt(x))
				volume += geom.VolumeFrustum(x-lo, radiusAt(lo), radiusAt(x))
				lo = x
			}
		}
		area += geom.AreaFrustum(b-lo, radiusAt(lo), radiusAt(b))
		volume += geom.VolumeFrustum(b-lo, radiusAt(lo), radiusAt(b))

		return area, volume
	}

	// 3. Walk the compartments, integrating each half.
	// Boundary positions are computed as i·h, never by accumulation, so
	// adjacent compartments share bit-identical dividing planes.
	h := total / float64(ncomp)
	out := make([]Divided, ncomp)
	for i := 0; i < ncomp; i++ {
		x0 := float64(i) * h
		x1 := float64(i+1) * h
		if i == ncomp-1 {
			x1 = total // absorb rounding in the last boundary
		}
		xm := (x0 + x1) / 2

		la, lv := integrate(x0, xm)
		ra, rv := integrate(xm, x1)
		out[i] = Divided{
			Index: i,
			Left: Half{
				Length:     xm - x0,
				Area:       la,
				Volume:     lv,
				RadiusProx: radiusAt(x0),
				RadiusDist: radiusAt(xm),
			},
			Right: Half{
				Length:     x1 - xm,
				Area:       ra,
				Volume:     rv,
				RadiusProx: radiusAt(xm),
				RadiusDist: radiusAt(x1),
			},
		}
	}

	return out, nil
}
