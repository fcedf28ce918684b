// Package cable models the high-level cable cell a discretizer consumes:
// a segment tree of somas and tapered cables, painted biophysical
// properties over named regions, placed point items, per-cell parameter
// defaults, the population-wide global properties, and the mechanism
// catalogue the paints and placements are validated against.
//
// Key features:
//   - Segment: a tagged variant (soma sphere | frustum-chain cable)
//   - Cell: AddSoma/AddCable, Paint(region, property), Place(location, item)
//   - MechDesc: mechanism name + ordered parameter overrides
//   - ParameterSet/GlobalProperties: defaults, ion tables, revpot methods
//   - Catalogue: name → MechInfo (kind, parameters, ion dependencies)
//   - CellBuilder: fluent soma-plus-branches construction
//
// The package holds descriptions plus their whole-segment geometry
// (length, area, volume); compartment division and CV numerics happen
// in compartment and fvm.
package cable

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/cablecore/geom"
)

// SegmentKind discriminates the segment variants.
type SegmentKind uint8

const (
	// SomaKind is a spherical soma segment.
	SomaKind SegmentKind = iota

	// CableKind is a chain of conical frusta with a compartment count.
	CableKind
)

// String implements fmt.Stringer for diagnostics.
func (k SegmentKind) String() string {
	if k == SomaKind {
		return "soma"
	}

	return "cable"
}

// Segment is one node of the morphology tree: either a soma with a
// radius, or a cable described by radii r[0..k] and lengths len[0..k-1]
// forming a frustum chain, split into NComp compartments at
// discretization time. Tag names the region the segment belongs to.
type Segment struct {
	Kind SegmentKind

	// Radius is the soma radius in µm (SomaKind only).
	Radius float64

	// Radii and Lengths describe the frustum chain (CableKind only).
	Radii   []float64
	Lengths []float64

	// NComp is the compartment count, >= 1 (CableKind only).
	NComp int

	// Tag is the region name paints select on; may be empty.
	Tag string
}

// Length returns the total arc length of the segment in µm. A soma
// contributes its diameter.
func (s *Segment) Length() float64 {
	if s.Kind == SomaKind {
		return 2 * s.Radius
	}

	return floats.Sum(s.Lengths)
}

// Area returns the membrane surface area of the segment in µm².
func (s *Segment) Area() float64 {
	if s.Kind == SomaKind {
		return geom.AreaSphere(s.Radius)
	}
	a := make([]float64, len(s.Lengths))
	for i, l := range s.Lengths {
		a[i] = geom.AreaFrustum(l, s.Radii[i], s.Radii[i+1])
	}

	return floats.Sum(a)
}

// Volume returns the enclosed volume of the segment in µm³.
func (s *Segment) Volume() float64 {
	if s.Kind == SomaKind {
		return geom.VolumeSphere(s.Radius)
	}
	v := make([]float64, len(s.Lengths))
	for i, l := range s.Lengths {
		v[i] = geom.VolumeFrustum(l, s.Radii[i], s.Radii[i+1])
	}

	return floats.Sum(v)
}

// validate checks the geometric well-formedness of the segment.
func (s *Segment) validate() error {
	switch s.Kind {
	case SomaKind:
		if s.Radius <= 0 {
			return fmt.Errorf("cable: soma radius %g: %w", s.Radius, ErrInvalidSegment)
		}
	case CableKind:
		if len(s.Radii) < 2 || len(s.Lengths) != len(s.Radii)-1 {
			return fmt.Errorf("cable: %d radii for %d lengths: %w", len(s.Radii), len(s.Lengths), ErrInvalidSegment)
		}
		for i, l := range s.Lengths {
			if l <= 0 {
				return fmt.Errorf("cable: cable length[%d] = %g: %w", i, l, ErrInvalidSegment)
			}
		}
		for i, r := range s.Radii {
			if r <= 0 {
				return fmt.Errorf("cable: cable radius[%d] = %g: %w", i, r, ErrInvalidSegment)
			}
		}
		if s.NComp < 1 {
			return fmt.Errorf("cable: compartment count %d: %w", s.NComp, ErrInvalidSegment)
		}
	default:
		return fmt.Errorf("cable: segment kind %d: %w", s.Kind, ErrInvalidSegment)
	}

	return nil
}
