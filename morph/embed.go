package morph

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/cablecore/geom"
)

// ErrBadPiecewise indicates a piecewise weight whose bounds are not
// strictly increasing inside [0,1] or whose value count does not match.
var ErrBadPiecewise = errors.New("morph: bad piecewise weight")

// Location identifies a point on a morphology: a branch index and a
// relative position along its arc length, 0 (proximal) to 1 (distal).
type Location struct {
	Branch int
	Pos    float64
}

// Cable identifies a sub-interval [PosLo, PosHi] of one branch.
type Cable struct {
	Branch int
	PosLo  float64
	PosHi  float64
}

// Piecewise is a piecewise-constant weight over part of a branch:
// Values[i] applies on [Bounds[i], Bounds[i+1]]. len(Bounds) must equal
// len(Values)+1 and Bounds must be increasing within [0,1].
type Piecewise struct {
	Bounds []float64
	Values []float64
}

// NewPiecewise validates and returns a piecewise weight.
func NewPiecewise(bounds, values []float64) (Piecewise, error) {
	if len(bounds) != len(values)+1 || len(values) == 0 {
		return Piecewise{}, fmt.Errorf("morph: %d bounds for %d values: %w", len(bounds), len(values), ErrBadPiecewise)
	}
	for i := 0; i+1 < len(bounds); i++ {
		if bounds[i] >= bounds[i+1] {
			return Piecewise{}, fmt.Errorf("morph: bounds not increasing at %d: %w", i, ErrBadPiecewise)
		}
	}
	if bounds[0] < 0 || bounds[len(bounds)-1] > 1 {
		return Piecewise{}, fmt.Errorf("morph: bounds outside [0,1]: %w", ErrBadPiecewise)
	}

	return Piecewise{Bounds: bounds, Values: values}, nil
}

// Embedding is the piecewise-linear embedding of a morphology: per
// branch, cumulative arc lengths at each sample and a linear radius
// profile between consecutive samples. Spherical root branches embed as
// a diameter-length interval of constant radius.
type Embedding struct {
	m *Morphology

	// cum[b][k] is the arc length from the branch's proximal end to its
	// k-th sample; cum[b][len-1] is the branch length.
	cum [][]float64
}

// NewEmbedding precomputes arc lengths for every branch.
// Complexity: O(total samples).
func NewEmbedding(m *Morphology) *Embedding {
	e := &Embedding{m: m, cum: make([][]float64, len(m.branches))}
	for b, br := range m.branches {
		if m.spherical && b == 0 {
			// A sphere embeds as a chord through its centre.
			r := m.st.samples[br.Samples[0]].Radius
			e.cum[b] = []float64{0, 2 * r}

			continue
		}
		steps := make([]float64, len(br.Samples)-1)
		for k := 0; k+1 < len(br.Samples); k++ {
			a, z := m.st.samples[br.Samples[k]], m.st.samples[br.Samples[k+1]]
			steps[k] = math.Sqrt((z.X-a.X)*(z.X-a.X) + (z.Y-a.Y)*(z.Y-a.Y) + (z.Z-a.Z)*(z.Z-a.Z))
		}
		cum := make([]float64, len(br.Samples))
		if len(steps) > 0 {
			floats.CumSum(cum[1:], steps)
		}
		e.cum[b] = cum
	}

	return e
}

// BranchLength returns the arc length of branch b in µm.
func (e *Embedding) BranchLength(b int) (float64, error) {
	if b < 0 || b >= len(e.cum) {
		return 0, fmt.Errorf("morph: BranchLength(%d): %w", b, ErrBranchOutOfRange)
	}

	return e.cum[b][len(e.cum[b])-1], nil
}

// SampleLocation returns the canonical location of sample i: its
// relative arc position on its home branch. The root sample of a
// spherical morphology sits at the centre of branch 0.
func (e *Embedding) SampleLocation(i int) (Location, error) {
	if i < 0 || i >= e.m.st.NumSamples() {
		return Location{}, fmt.Errorf("morph: SampleLocation(%d): %w", i, ErrSampleOutOfRange)
	}
	if e.m.spherical && i == 0 {
		return Location{Branch: 0, Pos: 0.5}, nil
	}

	b := e.m.homeBranch[i]
	br := e.m.branches[b]
	length := e.cum[b][len(e.cum[b])-1]
	for k, s := range br.Samples {
		if s == i {
			if length == 0 {
				return Location{Branch: b, Pos: 0}, nil
			}

			return Location{Branch: b, Pos: e.cum[b][k] / length}, nil
		}
	}

	return Location{}, fmt.Errorf("morph: sample %d not on home branch: %w", i, ErrSampleOutOfRange)
}

// Radius returns the interpolated radius at a location.
func (e *Embedding) Radius(loc Location) (float64, error) {
	seg, err := e.split(Cable{loc.Branch, loc.Pos, loc.Pos})
	if err != nil {
		return 0, err
	}

	return seg[0].r0, nil
}

// IntegrateLength returns the arc length of the cable interval.
func (e *Embedding) IntegrateLength(c Cable) (float64, error) {
	segs, err := e.split(c)
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, s := range segs {
		sum += s.l
	}

	return sum, nil
}

// IntegrateArea returns the lateral membrane area of the cable interval,
// integrating the tapered frustum profile piece by piece. On a spherical
// root branch the area is the proportional share of the sphere surface.
func (e *Embedding) IntegrateArea(c Cable) (float64, error) {
	if e.m.spherical && c.Branch == 0 {
		if err := e.checkCable(c); err != nil {
			return 0, err
		}
		r := e.m.st.samples[0].Radius

		return geom.AreaSphere(r) * (c.PosHi - c.PosLo), nil
	}

	segs, err := e.split(c)
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, s := range segs {
		sum += geom.AreaFrustum(s.l, s.r0, s.r1)
	}

	return sum, nil
}

// IntegrateIxa returns the integrated inverse cross-sectional area
// ∫ dx / (πr(x)²) over the cable interval, the quantity axial resistance
// is proportional to. Each linear-radius piece contributes l/(π·r0·r1).
func (e *Embedding) IntegrateIxa(c Cable) (float64, error) {
	segs, err := e.split(c)
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, s := range segs {
		if s.l > 0 {
			sum += s.l / (math.Pi * s.r0 * s.r1)
		}
	}

	return sum, nil
}

// IntegrateLengthPW, IntegrateAreaPW and IntegrateIxaPW integrate the
// respective quantity against a piecewise-constant weight on branch b.

func (e *Embedding) IntegrateLengthPW(b int, pw Piecewise) (float64, error) {
	return e.integratePW(b, pw, e.IntegrateLength)
}

func (e *Embedding) IntegrateAreaPW(b int, pw Piecewise) (float64, error) {
	return e.integratePW(b, pw, e.IntegrateArea)
}

func (e *Embedding) IntegrateIxaPW(b int, pw Piecewise) (float64, error) {
	return e.integratePW(b, pw, e.IntegrateIxa)
}

func (e *Embedding) integratePW(b int, pw Piecewise, f func(Cable) (float64, error)) (float64, error) {
	var sum float64
	for i, v := range pw.Values {
		part, err := f(Cable{b, pw.Bounds[i], pw.Bounds[i+1]})
		if err != nil {
			return 0, err
		}
		sum += v * part
	}

	return sum, nil
}

// piece is one linear-radius sub-interval of a cable.
type piece struct {
	l      float64
	r0, r1 float64
}

func (e *Embedding) checkCable(c Cable) error {
	if c.Branch < 0 || c.Branch >= len(e.cum) ||
		c.PosLo < 0 || c.PosHi > 1 || c.PosLo > c.PosHi {
		return fmt.Errorf("morph: cable (%d, %g, %g): %w", c.Branch, c.PosLo, c.PosHi, ErrBranchOutOfRange)
	}

	return nil
}

// split cuts a cable interval at the sample breakpoints it overlaps,
// returning linear-radius pieces with interpolated end radii. For a
// point interval (PosLo == PosHi) it returns a single zero-length piece
// carrying the radius at that point.
func (e *Embedding) split(c Cable) ([]piece, error) {
	if err := e.checkCable(c); err != nil {
		return nil, err
	}

	br := e.m.branches[c.Branch]
	cum := e.cum[c.Branch]
	length := cum[len(cum)-1]

	radiusAt := func(x float64) float64 {
		if e.m.spherical && c.Branch == 0 {
			return e.m.st.samples[0].Radius
		}
		if len(br.Samples) == 1 {
			return e.m.st.samples[br.Samples[0]].Radius
		}
		// Find the sample interval containing x.
		k := 0
		for k+2 < len(cum) && cum[k+1] <= x {
			k++
		}
		span := cum[k+1] - cum[k]
		ra := e.m.st.samples[br.Samples[k]].Radius
		rb := e.m.st.samples[br.Samples[k+1]].Radius
		if span == 0 {
			return rb
		}

		return geom.LerpRadius(ra, rb, (x-cum[k])/span)
	}

	x0, x1 := c.PosLo*length, c.PosHi*length
	if x0 == x1 {
		r := radiusAt(x0)

		return []piece{{0, r, r}}, nil
	}

	// Collect breakpoints strictly inside (x0, x1).
	cuts := []float64{x0}
	for _, x := range cum {
		if x > x0 && x < x1 {
			cuts = append(cuts, x)
		}
	}
	cuts = append(cuts, x1)

	segs := make([]piece, 0, len(cuts)-1)
	for i := 0; i+1 < len(cuts); i++ {
		a, b := cuts[i], cuts[i+1]
		segs = append(segs, piece{b - a, radiusAt(a), radiusAt(b)})
	}

	return segs, nil
}
