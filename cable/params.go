package cable

// IonData holds the initial state of one ion species: internal and
// external concentrations [mM] and the reversal potential [mV] used when
// no reversal-potential mechanism is configured.
type IonData struct {
	InitIntConc float64
	InitExtConc float64
	InitRevPot  float64
}

// ParameterSet is the overridable parameter bundle shared by cells and
// the global defaults. On a Cell, zero-valued scalar fields and missing
// map entries inherit from the global set.
type ParameterSet struct {
	// MembraneCapacitance is the specific membrane capacitance in F/m².
	MembraneCapacitance float64

	// AxialResistivity is the bulk resistivity in Ω·cm.
	AxialResistivity float64

	// InitMembranePotential is the resting potential in mV.
	InitMembranePotential float64

	// IonData maps ion name to its initial state.
	IonData map[string]IonData

	// ReversalPotentialMethod maps ion name to the mechanism computing
	// its reversal potential; absent ions keep their static InitRevPot.
	ReversalPotentialMethod map[string]MechDesc
}

// Clone returns a deep copy of the parameter set.
func (p ParameterSet) Clone() ParameterSet {
	out := p
	if p.IonData != nil {
		out.IonData = make(map[string]IonData, len(p.IonData))
		for k, v := range p.IonData {
			out.IonData[k] = v
		}
	}
	if p.ReversalPotentialMethod != nil {
		out.ReversalPotentialMethod = make(map[string]MechDesc, len(p.ReversalPotentialMethod))
		for k, v := range p.ReversalPotentialMethod {
			out.ReversalPotentialMethod[k] = v
		}
	}

	return out
}

// NeuronDefaults returns the classic NEURON-compatible parameter set:
// cm 0.01 F/m², rL 35.4 Ω·cm, Vm −65 mV, and the standard na/k/ca
// tables.
func NeuronDefaults() ParameterSet {
	return ParameterSet{
		MembraneCapacitance:   0.01,
		AxialResistivity:      35.4,
		InitMembranePotential: -65,
		IonData: map[string]IonData{
			"na": {InitIntConc: 10, InitExtConc: 140, InitRevPot: 50},
			"k":  {InitIntConc: 54.4, InitExtConc: 2.5, InitRevPot: -77},
			"ca": {InitIntConc: 5e-5, InitExtConc: 2, InitRevPot: 132.458},
		},
		ReversalPotentialMethod: map[string]MechDesc{},
	}
}

// GlobalProperties bundles everything shared across the cell population:
// the mechanism catalogue, the ion species table (name → valence), the
// global parameter defaults, and the synapse coalescing switch.
//
// The catalogue is borrowed for the duration of a build and treated as
// read-only.
type GlobalProperties struct {
	Catalogue         *Catalogue
	IonSpecies        map[string]int
	DefaultParameters ParameterSet
	CoalesceSynapses  bool
}

// DefaultGlobalProperties returns global properties with the default
// catalogue, the na/k/ca species table and NeuronDefaults. Synapse
// coalescing is on by default; identical co-located synapses fold into
// one instance with a multiplicity count.
func DefaultGlobalProperties() GlobalProperties {
	return GlobalProperties{
		Catalogue:         DefaultCatalogue(),
		IonSpecies:        map[string]int{"na": 1, "k": 1, "ca": 2},
		DefaultParameters: NeuronDefaults(),
		CoalesceSynapses:  true,
	}
}

// AddIon registers an ion species with its valence and initial state in
// one step.
func (g *GlobalProperties) AddIon(name string, valence int, iconc, econc, revpot float64) {
	if g.IonSpecies == nil {
		g.IonSpecies = map[string]int{}
	}
	if g.DefaultParameters.IonData == nil {
		g.DefaultParameters.IonData = map[string]IonData{}
	}
	g.IonSpecies[name] = valence
	g.DefaultParameters.IonData[name] = IonData{InitIntConc: iconc, InitExtConc: econc, InitRevPot: revpot}
}
