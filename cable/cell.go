// SPDX-License-Identifier: MIT

package cable

import (
	"fmt"

	"github.com/katalvlaran/cablecore/celltree"
)

// regionKind discriminates region selectors.
type regionKind uint8

const (
	regionTag regionKind = iota
	regionBranch
)

// Region selects a set of segments for painting. Construct with Tagged
// or Branch.
type Region struct {
	kind   regionKind
	tag    string
	branch int
}

// Tagged selects every segment whose Tag equals name.
func Tagged(name string) Region {
	return Region{kind: regionTag, tag: name}
}

// Branch selects the single segment with the given index.
func Branch(id int) Region {
	return Region{kind: regionBranch, branch: id}
}

// String renders the selector for error messages.
func (r Region) String() string {
	if r.kind == regionTag {
		return fmt.Sprintf("(tag %q)", r.tag)
	}

	return fmt.Sprintf("(branch %d)", r.branch)
}

// Matches reports whether the region selects segment idx with tag.
func (r Region) Matches(idx int, tag string) bool {
	if r.kind == regionBranch {
		return r.branch == idx
	}

	return r.tag == tag
}

// paintKind discriminates paintable properties.
type paintKind uint8

const (
	paintMech paintKind = iota
	paintCapacitance
	paintResistivity
	paintInitIntConc
	paintInitExtConc
)

// PaintProperty is the value side of a paint: a density mechanism or an
// intrinsic property override. Construct with DensityMech,
// MembraneCapacitance, AxialResistivity, InitIntConcentration or
// InitExtConcentration.
type PaintProperty struct {
	kind  paintKind
	mech  MechDesc
	ion   string
	value float64
}

// DensityMech paints a density mechanism with optional overrides.
func DensityMech(m MechDesc) PaintProperty {
	return PaintProperty{kind: paintMech, mech: m}
}

// MembraneCapacitance overrides the specific membrane capacitance
// [F/m²] on the painted region.
func MembraneCapacitance(v float64) PaintProperty {
	return PaintProperty{kind: paintCapacitance, value: v}
}

// AxialResistivity overrides the axial resistivity [Ω·cm] on the painted
// region.
func AxialResistivity(v float64) PaintProperty {
	return PaintProperty{kind: paintResistivity, value: v}
}

// InitIntConcentration overrides an ion's initial internal concentration
// [mM] on the painted region.
func InitIntConcentration(ion string, v float64) PaintProperty {
	return PaintProperty{kind: paintInitIntConc, ion: ion, value: v}
}

// InitExtConcentration overrides an ion's initial external concentration
// [mM] on the painted region.
func InitExtConcentration(ion string, v float64) PaintProperty {
	return PaintProperty{kind: paintInitExtConc, ion: ion, value: v}
}

// Paint is one (region, property) assignment, in application order.
type Paint struct {
	Region   Region
	Property PaintProperty
}

// IsMech reports whether the paint carries a density mechanism, and
// returns it.
func (p Paint) IsMech() (MechDesc, bool) {
	return p.Property.mech, p.Property.kind == paintMech
}

// AsCapacitance returns the capacitance override, if that is what the
// paint carries.
func (p Paint) AsCapacitance() (float64, bool) {
	return p.Property.value, p.Property.kind == paintCapacitance
}

// AsResistivity returns the axial resistivity override, if present.
func (p Paint) AsResistivity() (float64, bool) {
	return p.Property.value, p.Property.kind == paintResistivity
}

// AsInitIntConc returns the internal-concentration override, if present.
func (p Paint) AsInitIntConc() (ion string, v float64, ok bool) {
	return p.Property.ion, p.Property.value, p.Property.kind == paintInitIntConc
}

// AsInitExtConc returns the external-concentration override, if present.
func (p Paint) AsInitExtConc() (ion string, v float64, ok bool) {
	return p.Property.ion, p.Property.value, p.Property.kind == paintInitExtConc
}

// Location addresses a point on a cell: a branch (segment) index and a
// relative position along its arc length in [0,1].
type Location struct {
	Branch int
	Pos    float64
}

// placeKind discriminates placeable items.
type placeKind uint8

const (
	placeSynapse placeKind = iota
	placeDetector
	placeClamp
)

// Placeable is the value side of a placement. Construct with Synapse,
// ThresholdDetector or CurrentClamp.
type Placeable struct {
	kind      placeKind
	mech      MechDesc
	threshold float64
	clamp     IClamp
}

// IClamp is a current clamp stimulus: onset delay [ms], duration [ms]
// and amplitude [nA].
type IClamp struct {
	Delay, Duration, Amplitude float64
}

// Synapse places a point mechanism.
func Synapse(m MechDesc) Placeable {
	return Placeable{kind: placeSynapse, mech: m}
}

// ThresholdDetector places a spike threshold detector [mV].
func ThresholdDetector(threshold float64) Placeable {
	return Placeable{kind: placeDetector, threshold: threshold}
}

// CurrentClamp places a current clamp stimulus.
func CurrentClamp(c IClamp) Placeable {
	return Placeable{kind: placeClamp, clamp: c}
}

// IsSynapse reports whether the placeable is a point mechanism, and
// returns it.
func (p Placeable) IsSynapse() (MechDesc, bool) {
	return p.mech, p.kind == placeSynapse
}

// IsDetector reports whether the placeable is a threshold detector, and
// returns its threshold.
func (p Placeable) IsDetector() (float64, bool) {
	return p.threshold, p.kind == placeDetector
}

// IsClamp reports whether the placeable is a current clamp, and returns
// its stimulus.
func (p Placeable) IsClamp() (IClamp, bool) {
	return p.clamp, p.kind == placeClamp
}

// Placement is one (location, item) assignment, in placement order. The
// order across a cell's synapse placements defines target indices.
type Placement struct {
	Loc  Location
	Item Placeable
}

// Cell is a high-level cable cell: a segment tree plus paints,
// placements and per-cell parameter defaults.
type Cell struct {
	segments []Segment
	parents  []int

	paints     []Paint
	placements []Placement

	// Defaults overrides the global parameter set field-by-field.
	Defaults ParameterSet
}

// NewCell returns an empty cell. Add a soma first, then cables.
func NewCell() *Cell {
	return &Cell{Defaults: ParameterSet{}}
}

// AddSoma appends the soma segment. The soma must be the first segment
// of the cell and is tagged "soma".
func (c *Cell) AddSoma(radius float64) (int, error) {
	if len(c.segments) != 0 {
		return 0, fmt.Errorf("cable: soma must be the root segment: %w", ErrInvalidSegment)
	}
	s := Segment{Kind: SomaKind, Radius: radius, NComp: 1, Tag: "soma"}
	if err := s.validate(); err != nil {
		return 0, err
	}
	c.segments = append(c.segments, s)
	c.parents = append(c.parents, 0)

	return 0, nil
}

// AddCable appends a cable segment under parent and returns its index.
func (c *Cell) AddCable(parent int, radii, lengths []float64, ncomp int, tag string) (int, error) {
	if parent < 0 || parent >= len(c.segments) {
		return 0, fmt.Errorf("cable: cable parent %d of %d segments: %w", parent, len(c.segments), ErrInvalidSegment)
	}
	s := Segment{Kind: CableKind, Radii: radii, Lengths: lengths, NComp: ncomp, Tag: tag}
	if err := s.validate(); err != nil {
		return 0, err
	}
	c.segments = append(c.segments, s)
	c.parents = append(c.parents, parent)

	return len(c.segments) - 1, nil
}

// NumSegments returns the segment count.
func (c *Cell) NumSegments() int { return len(c.segments) }

// Segment returns segment i; the returned pointer stays valid until the
// next Add call.
func (c *Cell) Segment(i int) (*Segment, error) {
	if i < 0 || i >= len(c.segments) {
		return nil, fmt.Errorf("cable: segment %d of %d: %w", i, len(c.segments), ErrInvalidSegment)
	}

	return &c.segments[i], nil
}

// Parents returns a copy of the segment parent index array.
func (c *Cell) Parents() []int {
	p := make([]int, len(c.parents))
	copy(p, c.parents)

	return p
}

// Tree builds the validated segment tree of the cell.
func (c *Cell) Tree() (*celltree.Tree, error) {
	return celltree.New(c.parents)
}

// NumCompartments returns the total compartment count over all segments.
func (c *Cell) NumCompartments() int {
	n := 0
	for i := range c.segments {
		n += c.segments[i].NComp
	}

	return n
}

// Area returns the total membrane surface area of the cell.
func (c *Cell) Area() float64 {
	var a float64
	for i := range c.segments {
		a += c.segments[i].Area()
	}

	return a
}

// Paint assigns a property to a region. Application order matters: for
// the same property on overlapping regions, the last paint wins.
func (c *Cell) Paint(r Region, p PaintProperty) {
	c.paints = append(c.paints, Paint{Region: r, Property: p})
}

// Place assigns a point item to a location. The position must lie in
// [0,1] and the branch must exist.
func (c *Cell) Place(loc Location, item Placeable) error {
	if loc.Branch < 0 || loc.Branch >= len(c.segments) {
		return fmt.Errorf("cable: placement branch %d of %d: %w", loc.Branch, len(c.segments), ErrLocationOutOfRange)
	}
	if loc.Pos < 0 || loc.Pos > 1 {
		return fmt.Errorf("cable: placement position %g: %w", loc.Pos, ErrLocationOutOfRange)
	}
	c.placements = append(c.placements, Placement{Loc: loc, Item: item})

	return nil
}

// Paints returns the paint list in application order.
func (c *Cell) Paints() []Paint { return c.paints }

// Placements returns the placement list in placement order.
func (c *Cell) Placements() []Placement { return c.placements }

// RegionSegments resolves a region to the segment indices it selects, in
// segment order.
func (c *Cell) RegionSegments(r Region) []int {
	var out []int
	for i := range c.segments {
		if r.Matches(i, c.segments[i].Tag) {
			out = append(out, i)
		}
	}

	return out
}
