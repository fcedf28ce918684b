package cable

// MechDesc names a mechanism together with an ordered set of parameter
// overrides. The zero value is not useful; construct with NewMech.
// Overrides iterate in insertion order, keeping downstream parameter
// vectors deterministic.
//
// MechDesc has value semantics: Set returns an updated copy, so
// descriptions can be shared and specialized without aliasing.
type MechDesc struct {
	name      string
	overrides []ParamValue
}

// ParamValue is one named parameter override.
type ParamValue struct {
	Name  string
	Value float64
}

// NewMech returns a mechanism description with no overrides.
func NewMech(name string) MechDesc {
	return MechDesc{name: name}
}

// Name returns the mechanism name.
func (m MechDesc) Name() string { return m.name }

// Set returns a copy of the description with the named parameter
// overridden. Setting the same name twice keeps the last value in the
// original position.
func (m MechDesc) Set(name string, value float64) MechDesc {
	out := MechDesc{name: m.name, overrides: make([]ParamValue, len(m.overrides))}
	copy(out.overrides, m.overrides)
	for i := range out.overrides {
		if out.overrides[i].Name == name {
			out.overrides[i].Value = value

			return out
		}
	}
	out.overrides = append(out.overrides, ParamValue{Name: name, Value: value})

	return out
}

// Get returns the override for name, if present.
func (m MechDesc) Get(name string) (float64, bool) {
	for _, p := range m.overrides {
		if p.Name == name {
			return p.Value, true
		}
	}

	return 0, false
}

// Overrides returns the overrides in insertion order. The returned slice
// must not be mutated.
func (m MechDesc) Overrides() []ParamValue { return m.overrides }

// SameAs reports whether two descriptions name the same mechanism with
// identical override sets (order-insensitive, value-exact). Used when
// checking reversal-potential method consistency.
func (m MechDesc) SameAs(o MechDesc) bool {
	if m.name != o.name || len(m.overrides) != len(o.overrides) {
		return false
	}
	for _, p := range m.overrides {
		v, ok := o.Get(p.Name)
		if !ok || v != p.Value {
			return false
		}
	}

	return true
}
