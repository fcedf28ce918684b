// SPDX-License-Identifier: MIT
//
// Package fvm flattens a population of cable cells into a single
// finite-volume discretization — one contiguous control-volume (CV)
// index space with per-CV geometric and electrical coefficients — and
// builds the per-mechanism assignment data the simulator kernels
// consume.
//
// CV layout (per cell, in segment insertion order):
//   - The soma occupies exactly one CV, the root of its cell
//     (parent_cv = self).
//   - A cable with N compartments is centred on its N fence-post nodes
//     x₁..x_N, one CV each. Its proximal node x₀ is a junction CV: a
//     fresh CV right before the cable's own range when the parent is a
//     soma, the parent's distal node CV otherwise. Sibling cables share
//     the junction CV.
//   - Every CV collects the half-compartment areas adjacent to its node;
//     the junction CV absorbs the parent's distal half and each child's
//     proximal half.
//
// Determinism: identical inputs yield byte-identical records. No
// goroutines, no global state; the mechanism catalogue is borrowed
// read-only.
package fvm

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/cablecore/cable"
	"github.com/katalvlaran/cablecore/compartment"
	"github.com/katalvlaran/cablecore/geom"
)

// conductanceScale converts µm²/(µm·Ω·cm) to µS.
const conductanceScale = 100

// SegmentInfo locates one segment inside the CV index space.
type SegmentInfo struct {
	// HasParent is false for soma (root) segments.
	HasParent bool

	// ParentCV is the junction CV the segment hangs off — its x₀ node —
	// excluded from the segment's own range. -1 for root segments.
	ParentCV int

	// CVLo, CVHi delimit the half-open CV range owned by the segment.
	CVLo, CVHi int
}

// CVRange returns the half-open CV range owned by the segment.
func (s SegmentInfo) CVRange() (lo, hi int) { return s.CVLo, s.CVHi }

// segContrib records one segment's half-compartment area contribution to
// a CV; the mechanism build distributes painted values along these.
type segContrib struct {
	seg  int // global segment index
	area float64
}

// Discretization is the FVM record: flat per-CV vectors over the merged
// index space of all cells. It owns its storage and never aliases the
// input cells.
type Discretization struct {
	NCell int
	NCV   int

	// ParentCV[c] is the CV one step proximal; roots refer to themselves.
	ParentCV []int

	// CVToCell[c] is the owning cell index.
	CVToCell []int

	// CVArea [µm²], CVCapacitance [pF], FaceConductance [µS] (to the
	// parent CV; 0 on roots), DiamUM [µm].
	CVArea          []float64
	CVCapacitance   []float64
	FaceConductance []float64
	DiamUM          []float64

	// CellCVBounds and CellSegmentBounds partition CVs and segments by
	// cell; both have NCell+1 entries.
	CellCVBounds      []int
	CellSegmentBounds []int

	// Segments locates every segment (global index) in CV space.
	Segments []SegmentInfo

	// Derived helpers for the mechanism build, keyed by global segment
	// or CV index.
	divs       [][]compartment.Divided // per cable segment; nil for somas
	cvContribs [][]segContrib          // per CV, in contribution order
}

// CellCVPart returns the half-open CV range of cell c.
func (d *Discretization) CellCVPart(c int) (lo, hi int) {
	return d.CellCVBounds[c], d.CellCVBounds[c+1]
}

// CellSegmentPart returns the half-open segment range of cell c.
func (d *Discretization) CellSegmentPart(c int) (lo, hi int) {
	return d.CellSegmentBounds[c], d.CellSegmentBounds[c+1]
}

// segNodeCV maps fence post i (0..ncomp) of cable segment s to its CV.
func (d *Discretization) segNodeCV(s, i int) int {
	if i == 0 {
		return d.Segments[s].ParentCV
	}

	return d.Segments[s].CVLo + i - 1
}

// Discretize builds the finite-volume discretization of cells against
// the global parameter defaults. Cells must be soma-rooted with strictly
// predecessor-referring parent arrays.
// Complexity: O(total compartments) time and memory.
func Discretize(cells []*cable.Cell, defaults cable.ParameterSet) (*Discretization, error) {
	d := &Discretization{
		NCell:             len(cells),
		CellCVBounds:      make([]int, 1, len(cells)+1),
		CellSegmentBounds: make([]int, 1, len(cells)+1),
	}

	alloc := func(cell int) int {
		cv := d.NCV
		d.NCV++
		d.ParentCV = append(d.ParentCV, cv)
		d.CVToCell = append(d.CVToCell, cell)
		d.CVArea = append(d.CVArea, 0)
		d.CVCapacitance = append(d.CVCapacitance, 0)
		d.FaceConductance = append(d.FaceConductance, 0)
		d.DiamUM = append(d.DiamUM, 0)
		d.cvContribs = append(d.cvContribs, nil)

		return cv
	}

	for ci, cell := range cells {
		// 1. Validate the tree shape; the root segment must be a soma.
		if _, err := cell.Tree(); err != nil {
			return nil, fmt.Errorf("fvm: cell %d: %w", ci, err)
		}
		nseg := cell.NumSegments()
		root, err := cell.Segment(0)
		if err != nil {
			return nil, err
		}
		if root.Kind != cable.SomaKind {
			return nil, fmt.Errorf("fvm: cell %d root segment is %s, not soma: %w", ci, root.Kind, cable.ErrInvalidSegment)
		}

		// 2. Resolve per-segment electrical properties.
		cm, rl, err := resolveElectrical(ci, cell, defaults)
		if err != nil {
			return nil, err
		}
		segBase := len(d.Segments)
		parents := cell.Parents()

		// somaJunction is the shared x₀ node of cables hanging off the
		// soma, created by the first such cable.
		somaJunction := -1

		for si := 0; si < nseg; si++ {
			seg, err := cell.Segment(si)
			if err != nil {
				return nil, err
			}
			gsi := segBase + si

			if seg.Kind == cable.SomaKind {
				cv := alloc(ci)
				area := seg.Area()
				d.CVArea[cv] = area
				d.CVCapacitance[cv] = area * cm[si]
				d.DiamUM[cv] = 2 * seg.Radius
				d.cvContribs[cv] = []segContrib{{seg: gsi, area: area}}
				d.Segments = append(d.Segments, SegmentInfo{HasParent: false, ParentCV: -1, CVLo: cv, CVHi: cv + 1})
				d.divs = append(d.divs, nil)

				continue
			}

			// 3. Cable segment: divide into compartments and wire nodes.
			divs, err := compartment.Divide(seg.NComp, seg.Radii, seg.Lengths)
			if err != nil {
				return nil, fmt.Errorf("fvm: cell %d segment %d: %w", ci, si, err)
			}

			pseg, err := cell.Segment(parents[si])
			if err != nil {
				return nil, err
			}

			var x0 int
			if pseg.Kind == cable.SomaKind {
				if somaJunction < 0 {
					somaJunction = alloc(ci)
					somaCV := d.Segments[segBase+parents[si]].CVLo
					d.ParentCV[somaJunction] = somaCV
					d.DiamUM[somaJunction] = 2 * seg.Radii[0]
					// Face to the soma: cross-section at the cable origin
					// over the soma-centre-to-surface distance.
					a := geom.AreaCircle(seg.Radii[0])
					d.FaceConductance[somaJunction] = conductanceScale * a / (pseg.Radius * rl[si])
				}
				x0 = somaJunction
			} else {
				x0 = d.Segments[segBase+parents[si]].CVHi - 1
			}

			lo := d.NCV
			prev := x0
			for i := 0; i < seg.NComp; i++ {
				cv := alloc(ci)
				d.ParentCV[cv] = prev
				d.DiamUM[cv] = 2 * divs[i].Right.RadiusDist

				// Face to the proximal node crosses compartment i at its
				// centre plane.
				h := divs[i].Left.Length + divs[i].Right.Length
				a := geom.AreaCircle(divs[i].CentreRadius())
				d.FaceConductance[cv] = conductanceScale * a / (h * rl[si])

				prev = cv
			}
			d.Segments = append(d.Segments, SegmentInfo{HasParent: true, ParentCV: x0, CVLo: lo, CVHi: d.NCV})
			d.divs = append(d.divs, divs)

			// 4. Spread half-compartment areas over the node CVs.
			for i := 0; i < seg.NComp; i++ {
				left := d.segNodeCV(gsi, i)
				right := d.segNodeCV(gsi, i+1)
				d.addContrib(left, gsi, divs[i].Left.Area, cm[si])
				d.addContrib(right, gsi, divs[i].Right.Area, cm[si])
			}
		}

		d.CellCVBounds = append(d.CellCVBounds, d.NCV)
		d.CellSegmentBounds = append(d.CellSegmentBounds, len(d.Segments))
	}

	return d, nil
}

// addContrib accumulates one half-compartment of segment gsi onto cv.
func (d *Discretization) addContrib(cv, gsi int, area, cm float64) {
	d.CVArea[cv] += area
	d.CVCapacitance[cv] += area * cm
	d.cvContribs[cv] = append(d.cvContribs[cv], segContrib{seg: gsi, area: area})
}

// CellArea returns the summed CV area of cell c, which equals the
// cell's total membrane area up to integration rounding.
func (d *Discretization) CellArea(c int) float64 {
	lo, hi := d.CellCVPart(c)

	return floats.Sum(d.CVArea[lo:hi])
}

// resolveElectrical computes per-segment membrane capacitance and axial
// resistivity: painted overrides (last paint wins) over cell defaults
// over global defaults.
func resolveElectrical(ci int, cell *cable.Cell, defaults cable.ParameterSet) (cm, rl []float64, err error) {
	nseg := cell.NumSegments()

	cmDefault := defaults.MembraneCapacitance
	if cell.Defaults.MembraneCapacitance != 0 {
		cmDefault = cell.Defaults.MembraneCapacitance
	}
	rlDefault := defaults.AxialResistivity
	if cell.Defaults.AxialResistivity != 0 {
		rlDefault = cell.Defaults.AxialResistivity
	}

	cm = make([]float64, nseg)
	rl = make([]float64, nseg)
	for i := range cm {
		cm[i] = cmDefault
		rl[i] = rlDefault
	}

	for _, p := range cell.Paints() {
		v, isCM := p.AsCapacitance()
		r, isRL := p.AsResistivity()
		if !isCM && !isRL {
			continue
		}
		segs := cell.RegionSegments(p.Region)
		if len(segs) == 0 {
			return nil, nil, fmt.Errorf("fvm: cell %d paint %s: %w", ci, p.Region, ErrEmptyRegion)
		}
		for _, s := range segs {
			if isCM {
				cm[s] = v
			} else {
				rl[s] = r
			}
		}
	}

	return cm, rl, nil
}
