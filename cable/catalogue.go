package cable

import (
	"fmt"
	"sort"
)

// MechKind classifies catalogue entries.
type MechKind uint8

const (
	// Density mechanisms are painted over regions and scale with area.
	Density MechKind = iota

	// Point mechanisms are placed at discrete locations (synapses).
	Point

	// RevPot mechanisms compute ion reversal potentials in place of the
	// static table values.
	RevPot
)

// String implements fmt.Stringer for diagnostics.
func (k MechKind) String() string {
	switch k {
	case Density:
		return "density"
	case Point:
		return "point"
	default:
		return "reversal_potential"
	}
}

// ParamSpec declares one mechanism parameter and its default value.
type ParamSpec struct {
	Name    string
	Default float64
}

// IonDep declares how a mechanism touches one ion species.
type IonDep struct {
	// WriteIntConc / WriteExtConc: the mechanism writes the internal /
	// external concentration.
	WriteIntConc bool
	WriteExtConc bool

	// ReadRevPot: the mechanism reads the ion's reversal potential.
	ReadRevPot bool

	// WriteRevPot: the mechanism computes the ion's reversal potential
	// (RevPot kind only).
	WriteRevPot bool

	// ExpectedValence, when VerifyValence is set, must match the global
	// ion species table.
	ExpectedValence int
	VerifyValence   bool
}

// MechInfo is the catalogue record for one mechanism: its kind, its
// declared parameters in declaration order, and its ion dependencies.
type MechInfo struct {
	Kind   MechKind
	Params []ParamSpec
	Ions   map[string]IonDep
}

// Param looks up a declared parameter by name.
func (mi MechInfo) Param(name string) (ParamSpec, bool) {
	for _, p := range mi.Params {
		if p.Name == name {
			return p, true
		}
	}

	return ParamSpec{}, false
}

// IonNames returns the mechanism's ion dependencies in sorted order, for
// deterministic iteration.
func (mi MechInfo) IonNames() []string {
	names := make([]string, 0, len(mi.Ions))
	for n := range mi.Ions {
		names = append(names, n)
	}
	sort.Strings(names)

	return names
}

// Catalogue maps mechanism names to their metadata. The discretizer
// borrows it read-only; Register calls must precede any build.
type Catalogue struct {
	infos map[string]MechInfo
}

// NewCatalogue returns an empty catalogue.
func NewCatalogue() *Catalogue {
	return &Catalogue{infos: map[string]MechInfo{}}
}

// Register adds or replaces a mechanism record.
func (c *Catalogue) Register(name string, info MechInfo) {
	c.infos[name] = info
}

// Has reports whether the catalogue declares name.
func (c *Catalogue) Has(name string) bool {
	_, ok := c.infos[name]

	return ok
}

// Info returns the record for name, or ErrUnknownMechanism.
func (c *Catalogue) Info(name string) (MechInfo, error) {
	info, ok := c.infos[name]
	if !ok {
		return MechInfo{}, fmt.Errorf("cable: mechanism %q: %w", name, ErrUnknownMechanism)
	}

	return info, nil
}

// DefaultCatalogue returns the built-in mechanisms: the hh and pas
// density mechanisms and the expsyn/exp2syn point mechanisms, with their
// canonical parameter defaults.
func DefaultCatalogue() *Catalogue {
	c := NewCatalogue()

	c.Register("hh", MechInfo{
		Kind: Density,
		Params: []ParamSpec{
			{Name: "gnabar", Default: 0.12},
			{Name: "gkbar", Default: 0.036},
			{Name: "gl", Default: 0.0003},
			{Name: "el", Default: -54.3},
		},
		Ions: map[string]IonDep{
			"na": {ReadRevPot: true},
			"k":  {ReadRevPot: true},
		},
	})

	c.Register("pas", MechInfo{
		Kind: Density,
		Params: []ParamSpec{
			{Name: "g", Default: 0.001},
			{Name: "e", Default: -70},
		},
	})

	c.Register("expsyn", MechInfo{
		Kind: Point,
		Params: []ParamSpec{
			{Name: "e", Default: 0},
			{Name: "tau", Default: 2.0},
		},
	})

	c.Register("exp2syn", MechInfo{
		Kind: Point,
		Params: []ParamSpec{
			{Name: "e", Default: 0},
			{Name: "tau1", Default: 0.5},
			{Name: "tau2", Default: 2.0},
		},
	})

	return c
}
