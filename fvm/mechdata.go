// SPDX-License-Identifier: MIT

package fvm

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/cablecore/cable"
)

// MechConfig is the per-mechanism assignment produced by the build: the
// CVs the mechanism lives on, one value per CV for every declared
// parameter, and — depending on the kind — area fractions or target
// indexing.
type MechConfig struct {
	Kind cable.MechKind

	// CV is strictly increasing for density and reversal-potential
	// mechanisms, non-decreasing for point mechanisms.
	CV []int

	// ParamNames preserves the declared parameter order; ParamValues has
	// one vector per name, indexed like CV.
	ParamNames  []string
	ParamValues map[string][]float64

	// NormArea is the fraction of each CV's area the mechanism occupies
	// (density only).
	NormArea []float64

	// Target holds original placement ordinals (point only). When
	// coalesced, Multiplicity gives the run length per CV entry and
	// Target concatenates the sorted run members.
	Target       []int
	Multiplicity []int
}

// IonConfig is the per-ion support produced by the build.
type IonConfig struct {
	// Charge is the valence from the global ion species table.
	Charge int

	// CV is the sorted union of every CV on which some mechanism reads
	// or writes the ion.
	CV []int

	// InitIntConc and InitExtConc are per-CV area-weighted initial
	// concentrations; sub-areas covered by a mechanism writing the
	// respective concentration contribute zero.
	InitIntConc []float64
	InitExtConc []float64
}

// MechanismData is the full mechanism assignment for a discretized cell
// population.
type MechanismData struct {
	Mechanisms map[string]*MechConfig
	Ions       map[string]*IonConfig

	// TargetDivs[c] is the number of synapse placements on cells before
	// c (exclusive scan); NTarget is the population total.
	TargetDivs []int
	NTarget    int
}

// paramNames returns the declared parameter names in order.
func paramNames(info cable.MechInfo) []string {
	names := make([]string, len(info.Params))
	for i, p := range info.Params {
		names[i] = p.Name
	}

	return names
}

// paramVector expands a mechanism description to the full declared
// parameter vector: overrides where given, defaults elsewhere.
func paramVector(info cable.MechInfo, desc cable.MechDesc) []float64 {
	vals := make([]float64, len(info.Params))
	for i, p := range info.Params {
		if v, ok := desc.Get(p.Name); ok {
			vals[i] = v
		} else {
			vals[i] = p.Default
		}
	}

	return vals
}

// checkOverrides validates that every override names a declared
// parameter.
func checkOverrides(info cable.MechInfo, desc cable.MechDesc) error {
	for _, ov := range desc.Overrides() {
		if _, ok := info.Param(ov.Name); !ok {
			return fmt.Errorf("fvm: mechanism %q parameter %q: %w", desc.Name(), ov.Name, cable.ErrUnknownParameter)
		}
	}

	return nil
}

// BuildMechanismData assembles per-mechanism and per-ion data for a
// discretized population. The discretization d must come from the same
// cells slice. All mechanism names are resolved against gprop.Catalogue
// (the default catalogue when nil).
//
// The build is strictly ordered — cells, then paints/placements in their
// application order, map drains in sorted key order — so identical
// inputs yield identical outputs.
func BuildMechanismData(gprop cable.GlobalProperties, cells []*cable.Cell, d *Discretization) (*MechanismData, error) {
	cat := gprop.Catalogue
	if cat == nil {
		cat = cable.DefaultCatalogue()
	}

	b := &builder{
		gprop:       gprop,
		cat:         cat,
		cells:       cells,
		d:           d,
		assign:      map[string]map[int]cable.MechDesc{},
		paintedInt:  map[string]map[int]float64{},
		paintedExt:  map[string]map[int]float64{},
		out:         &MechanismData{Mechanisms: map[string]*MechConfig{}, Ions: map[string]*IonConfig{}},
		ionCVs:      map[string]map[int]bool{},
		revpotReads: map[string]map[int]bool{},
		writersInt:  map[string]map[int]bool{},
		writersExt:  map[string]map[int]bool{},
	}

	// The stages mirror the dependency order: density paints and point
	// placements first (they define where ions are referenced), then ion
	// validation and initial state, then reversal-potential providers.
	if err := b.collectPaints(); err != nil {
		return nil, err
	}
	if err := b.emitDensity(); err != nil {
		return nil, err
	}
	if err := b.emitPoints(); err != nil {
		return nil, err
	}
	if err := b.emitIons(); err != nil {
		return nil, err
	}
	if err := b.emitRevPots(); err != nil {
		return nil, err
	}

	return b.out, nil
}

// builder carries the intermediate state of one build.
type builder struct {
	gprop cable.GlobalProperties
	cat   *cable.Catalogue
	cells []*cable.Cell
	d     *Discretization
	out   *MechanismData

	// assign[mech][gsi] is the effective density description per global
	// segment (last paint wins).
	assign map[string]map[int]cable.MechDesc

	// paintedInt/paintedExt[ion][gsi] are painted initial concentrations.
	paintedInt map[string]map[int]float64
	paintedExt map[string]map[int]float64

	// ionCVs[ion] is the union of CVs referencing the ion;
	// revpotReads[ion] the CVs where some mechanism reads its reversal
	// potential; writersInt/writersExt[ion] the segments covered by a
	// concentration-writing density mechanism.
	ionCVs      map[string]map[int]bool
	revpotReads map[string]map[int]bool
	writersInt  map[string]map[int]bool
	writersExt  map[string]map[int]bool
}

// collectPaints resolves density-mechanism and ion-concentration paints
// to segment-level assignments, enforcing catalogue and region checks.
func (b *builder) collectPaints() error {
	for ci, cell := range b.cells {
		segBase, _ := b.d.CellSegmentPart(ci)
		for _, p := range cell.Paints() {
			if desc, ok := p.IsMech(); ok {
				info, err := b.cat.Info(desc.Name())
				if err != nil {
					return fmt.Errorf("fvm: cell %d: %w", ci, err)
				}
				if info.Kind != cable.Density {
					return fmt.Errorf("fvm: cell %d: %q is a %s mechanism, cannot paint: %w",
						ci, desc.Name(), info.Kind, cable.ErrUnknownMechanism)
				}
				if err := checkOverrides(info, desc); err != nil {
					return err
				}
				segs := cell.RegionSegments(p.Region)
				if len(segs) == 0 {
					return fmt.Errorf("fvm: cell %d paint %s: %w", ci, p.Region, ErrEmptyRegion)
				}
				m := b.assign[desc.Name()]
				if m == nil {
					m = map[int]cable.MechDesc{}
					b.assign[desc.Name()] = m
				}
				for _, s := range segs {
					m[segBase+s] = desc
				}

				continue
			}

			ion, v, isInt := p.AsInitIntConc()
			ionE, vE, isExt := p.AsInitExtConc()
			if !isInt && !isExt {
				continue
			}
			segs := cell.RegionSegments(p.Region)
			if len(segs) == 0 {
				return fmt.Errorf("fvm: cell %d paint %s: %w", ci, p.Region, ErrEmptyRegion)
			}
			if isInt {
				setPainted(b.paintedInt, ion, segBase, segs, v)
			} else {
				setPainted(b.paintedExt, ionE, segBase, segs, vE)
			}
		}
	}

	return nil
}

func setPainted(dst map[string]map[int]float64, ion string, segBase int, segs []int, v float64) {
	m := dst[ion]
	if m == nil {
		m = map[int]float64{}
		dst[ion] = m
	}
	for _, s := range segs {
		m[segBase+s] = v
	}
}

// densityAccum accumulates area and area-weighted parameter sums per CV.
type densityAccum struct {
	area float64
	wsum []float64
}

// emitDensity turns segment-level density assignments into per-CV
// configs with area-weighted parameter values.
func (b *builder) emitDensity() error {
	for _, name := range sortedKeys(b.assign) {
		info, err := b.cat.Info(name)
		if err != nil {
			return err
		}
		nparam := len(info.Params)

		byCV := map[int]*densityAccum{}
		add := func(cv int, area float64, vals []float64) {
			acc := byCV[cv]
			if acc == nil {
				acc = &densityAccum{wsum: make([]float64, nparam)}
				byCV[cv] = acc
			}
			acc.area += area
			for k, v := range vals {
				acc.wsum[k] += area * v
			}
		}

		segs := sortedIntKeys(b.assign[name])
		for _, gsi := range segs {
			vals := paramVector(info, b.assign[name][gsi])
			if b.d.divs[gsi] == nil {
				// Soma: one whole-sphere contribution to its single CV.
				cv := b.d.Segments[gsi].CVLo
				add(cv, b.d.CVArea[cv], vals)

				continue
			}
			for i, div := range b.d.divs[gsi] {
				add(b.d.segNodeCV(gsi, i), div.Left.Area, vals)
				add(b.d.segNodeCV(gsi, i+1), div.Right.Area, vals)
			}
		}

		cfg := &MechConfig{
			Kind:        cable.Density,
			ParamNames:  paramNames(info),
			ParamValues: map[string][]float64{},
		}
		cvs := sortedIntKeys(byCV)
		cfg.CV = cvs
		cfg.NormArea = make([]float64, len(cvs))
		for _, pn := range cfg.ParamNames {
			cfg.ParamValues[pn] = make([]float64, len(cvs))
		}
		for j, cv := range cvs {
			acc := byCV[cv]
			cfg.NormArea[j] = acc.area / b.d.CVArea[cv]
			for k, pn := range cfg.ParamNames {
				cfg.ParamValues[pn][j] = acc.wsum[k] / acc.area
			}
		}
		b.out.Mechanisms[name] = cfg

		// Track ion coverage for the writer-exclusion rule and the ion
		// CV union.
		b.trackIons(info, cfg.CV, segs)
	}

	return nil
}

// pointInstance is one synapse placement mapped to its CV.
type pointInstance struct {
	cv     int
	target int
	vals   []float64
}

// emitPoints maps synapse placements to CVs, computes target divisions,
// and emits point configs, coalescing identical co-located instances
// when enabled.
func (b *builder) emitPoints() error {
	// 1. Target partition: synapse ordinals count per cell.
	b.out.TargetDivs = make([]int, len(b.cells))
	total := 0
	for ci, cell := range b.cells {
		b.out.TargetDivs[ci] = total
		for _, pl := range cell.Placements() {
			if _, ok := pl.Item.IsSynapse(); ok {
				total++
			}
		}
	}
	b.out.NTarget = total

	// 2. Collect instances per mechanism.
	perMech := map[string][]pointInstance{}
	for ci, cell := range b.cells {
		target := b.out.TargetDivs[ci]
		for _, pl := range cell.Placements() {
			desc, ok := pl.Item.IsSynapse()
			if !ok {
				continue
			}
			info, err := b.cat.Info(desc.Name())
			if err != nil {
				return fmt.Errorf("fvm: cell %d: %w", ci, err)
			}
			if info.Kind != cable.Point {
				return fmt.Errorf("fvm: cell %d: %q is a %s mechanism, cannot place: %w",
					ci, desc.Name(), info.Kind, cable.ErrUnknownMechanism)
			}
			if err := checkOverrides(info, desc); err != nil {
				return err
			}
			cv, err := b.locationCV(ci, pl.Loc)
			if err != nil {
				return err
			}
			perMech[desc.Name()] = append(perMech[desc.Name()], pointInstance{cv: cv, target: target, vals: paramVector(info, desc)})
			target++
		}
	}

	// 3. Emit configs in name order.
	for _, name := range sortedKeys(perMech) {
		info, err := b.cat.Info(name)
		if err != nil {
			return err
		}
		instances := perMech[name]

		cfg := &MechConfig{
			Kind:        cable.Point,
			ParamNames:  paramNames(info),
			ParamValues: map[string][]float64{},
		}

		if b.gprop.CoalesceSynapses {
			coalesce(instances, cfg)
		} else {
			// Stable sort by CV keeps placement order among ties; the
			// target vector follows the final order.
			sort.SliceStable(instances, func(i, j int) bool { return instances[i].cv < instances[j].cv })
			for _, inst := range instances {
				cfg.CV = append(cfg.CV, inst.cv)
				cfg.Target = append(cfg.Target, inst.target)
			}
			for k, pn := range cfg.ParamNames {
				vec := make([]float64, len(instances))
				for j, inst := range instances {
					vec[j] = inst.vals[k]
				}
				cfg.ParamValues[pn] = vec
			}
		}
		b.out.Mechanisms[name] = cfg

		b.trackIons(info, cfg.CV, nil)
	}

	return nil
}

// coalesce groups instances sharing (cv, parameter vector); groups are
// ordered by (cv, parameter vector lexicographic, smallest target) and
// each group's targets are emitted as a sorted run.
func coalesce(instances []pointInstance, cfg *MechConfig) {
	sort.Slice(instances, func(i, j int) bool {
		a, z := instances[i], instances[j]
		if a.cv != z.cv {
			return a.cv < z.cv
		}
		for k := range a.vals {
			if a.vals[k] != z.vals[k] {
				return a.vals[k] < z.vals[k]
			}
		}

		return a.target < z.target
	})

	nparam := len(cfg.ParamNames)
	vecs := make([][]float64, nparam)

	for i := 0; i < len(instances); {
		j := i + 1
		for j < len(instances) && instances[j].cv == instances[i].cv && sameVals(instances[j].vals, instances[i].vals) {
			j++
		}
		cfg.CV = append(cfg.CV, instances[i].cv)
		cfg.Multiplicity = append(cfg.Multiplicity, j-i)
		for _, inst := range instances[i:j] {
			cfg.Target = append(cfg.Target, inst.target)
		}
		for k := 0; k < nparam; k++ {
			vecs[k] = append(vecs[k], instances[i].vals[k])
		}
		i = j
	}

	for k, pn := range cfg.ParamNames {
		cfg.ParamValues[pn] = vecs[k]
	}
}

func sameVals(a, b []float64) bool {
	for k := range a {
		if a[k] != b[k] {
			return false
		}
	}

	return true
}

// locationCV maps a placement location to its CV: the soma CV, or the
// nearest fence-post node of the cable.
func (b *builder) locationCV(ci int, loc cable.Location) (int, error) {
	cell := b.cells[ci]
	if loc.Branch < 0 || loc.Branch >= cell.NumSegments() || loc.Pos < 0 || loc.Pos > 1 {
		return 0, fmt.Errorf("fvm: cell %d location (%d, %g): %w", ci, loc.Branch, loc.Pos, cable.ErrLocationOutOfRange)
	}
	segBase, _ := b.d.CellSegmentPart(ci)
	gsi := segBase + loc.Branch

	seg, err := cell.Segment(loc.Branch)
	if err != nil {
		return 0, err
	}
	if seg.Kind == cable.SomaKind {
		return b.d.Segments[gsi].CVLo, nil
	}

	node := int(loc.Pos*float64(seg.NComp) + 0.5)

	return b.d.segNodeCV(gsi, node), nil
}

// trackIons records ion references of one config: CV membership, revpot
// readers, and (for density mechanisms) writer-covered segments.
func (b *builder) trackIons(info cable.MechInfo, cvs []int, segs []int) {
	for _, ion := range info.IonNames() {
		dep := info.Ions[ion]
		set := b.ionCVs[ion]
		if set == nil {
			set = map[int]bool{}
			b.ionCVs[ion] = set
		}
		for _, cv := range cvs {
			set[cv] = true
		}
		if dep.ReadRevPot {
			rd := b.revpotReads[ion]
			if rd == nil {
				rd = map[int]bool{}
				b.revpotReads[ion] = rd
			}
			for _, cv := range cvs {
				rd[cv] = true
			}
		}
		if dep.WriteIntConc {
			markSegs(b.writersInt, ion, segs)
		}
		if dep.WriteExtConc {
			markSegs(b.writersExt, ion, segs)
		}
	}
}

func markSegs(dst map[string]map[int]bool, ion string, segs []int) {
	if len(segs) == 0 {
		return
	}
	m := dst[ion]
	if m == nil {
		m = map[int]bool{}
		dst[ion] = m
	}
	for _, s := range segs {
		m[s] = true
	}
}

// emitIons validates ion species and valences and builds per-ion CV
// unions and area-weighted initial concentrations.
func (b *builder) emitIons() error {
	// 1. Validate every referenced ion against the species table, in
	//    deterministic (name, mechanism) order.
	for _, name := range sortedKeys(b.out.Mechanisms) {
		info, err := b.cat.Info(name)
		if err != nil {
			return err
		}
		for _, ion := range info.IonNames() {
			valence, ok := b.gprop.IonSpecies[ion]
			if !ok {
				return fmt.Errorf("fvm: mechanism %q ion %q: %w", name, ion, ErrUnknownIon)
			}
			dep := info.Ions[ion]
			if dep.VerifyValence && dep.ExpectedValence != valence {
				return fmt.Errorf("fvm: mechanism %q ion %q valence %d != %d: %w",
					name, ion, dep.ExpectedValence, valence, ErrIonValenceMismatch)
			}
		}
	}

	// 2. Build per-ion configs.
	for _, ion := range sortedKeys(b.ionCVs) {
		cvs := sortedIntKeys(b.ionCVs[ion])
		cfg := &IonConfig{
			Charge:      b.gprop.IonSpecies[ion],
			CV:          cvs,
			InitIntConc: make([]float64, len(cvs)),
			InitExtConc: make([]float64, len(cvs)),
		}
		for j, cv := range cvs {
			ci := b.d.CVToCell[cv]
			def := b.ionDefault(ci, ion)
			cfg.InitIntConc[j] = b.weightedConc(cv, ion, def.InitIntConc, b.paintedInt, b.writersInt)
			cfg.InitExtConc[j] = b.weightedConc(cv, ion, def.InitExtConc, b.paintedExt, b.writersExt)
		}
		b.out.Ions[ion] = cfg
	}

	return nil
}

// ionDefault resolves the ion's default initial state: cell override,
// else global.
func (b *builder) ionDefault(ci int, ion string) cable.IonData {
	if data, ok := b.cells[ci].Defaults.IonData[ion]; ok {
		return data
	}

	return b.gprop.DefaultParameters.IonData[ion]
}

// weightedConc computes the area-weighted initial concentration on a CV:
// painted (or default) values per contributing half, with sub-areas
// covered by a writing mechanism contributing zero.
func (b *builder) weightedConc(cv int, ion string, def float64, painted map[string]map[int]float64, writers map[string]map[int]bool) float64 {
	if b.d.CVArea[cv] == 0 {
		return def
	}
	var x float64
	for _, contrib := range b.d.cvContribs[cv] {
		if writers[ion][contrib.seg] {
			continue
		}
		v := def
		if pv, ok := painted[ion][contrib.seg]; ok {
			v = pv
		}
		x += contrib.area * v
	}

	return x / b.d.CVArea[cv]
}

// emitRevPots validates reversal-potential method assignments and
// instantiates each method only on CVs where another mechanism reads a
// reversal potential it writes.
func (b *builder) emitRevPots() error {
	type pending struct {
		desc cable.MechDesc
		info cable.MechInfo
		cvs  map[int]bool
	}

	// perName accumulates instantiation CVs and catches conflicting
	// parameterizations of the same mechanism name.
	perName := map[string]*pending{}

	for ci := range b.cells {
		methods := b.cellRevPotMethods(ci)
		if len(methods) == 0 {
			continue
		}
		cvLo, cvHi := b.d.CellCVPart(ci)

		for _, ion := range sortedKeys(methods) {
			desc := methods[ion]
			info, err := b.cat.Info(desc.Name())
			if err != nil {
				return fmt.Errorf("fvm: cell %d revpot for %q: %w", ci, ion, err)
			}
			if info.Kind != cable.RevPot {
				return fmt.Errorf("fvm: cell %d: %q is a %s mechanism, not a reversal potential method: %w",
					ci, desc.Name(), info.Kind, ErrRevPotMismatch)
			}
			if err := checkOverrides(info, desc); err != nil {
				return err
			}
			dep, ok := info.Ions[ion]
			if !ok || !dep.WriteRevPot {
				return fmt.Errorf("fvm: cell %d: %q does not write the %q reversal potential: %w",
					ci, desc.Name(), ion, ErrRevPotMismatch)
			}

			// A multi-ion writer must be assigned, identically, for every
			// ion it writes.
			for _, written := range info.IonNames() {
				if !info.Ions[written].WriteRevPot {
					continue
				}
				if _, ok := b.gprop.IonSpecies[written]; !ok {
					return fmt.Errorf("fvm: mechanism %q ion %q: %w", desc.Name(), written, ErrUnknownIon)
				}
				other, ok := methods[written]
				if !ok || !other.SameAs(desc) {
					return fmt.Errorf("fvm: cell %d: %q writes %q reversal potential but is not its method: %w",
						ci, desc.Name(), written, ErrRevPotMismatch)
				}
			}

			// Instantiate only where the written potentials are read.
			p := perName[desc.Name()]
			if p == nil {
				p = &pending{desc: desc, info: info, cvs: map[int]bool{}}
				perName[desc.Name()] = p
			} else if !p.desc.SameAs(desc) {
				return fmt.Errorf("fvm: conflicting parameters for reversal potential method %q: %w",
					desc.Name(), ErrRevPotMismatch)
			}
			for _, written := range info.IonNames() {
				if !info.Ions[written].WriteRevPot {
					continue
				}
				for cv := range b.revpotReads[written] {
					if cv >= cvLo && cv < cvHi {
						p.cvs[cv] = true
					}
				}
			}
		}
	}

	for _, name := range sortedKeys(perName) {
		p := perName[name]
		if len(p.cvs) == 0 {
			continue
		}
		cvs := sortedIntKeys(p.cvs)
		cfg := &MechConfig{
			Kind:        cable.RevPot,
			CV:          cvs,
			ParamNames:  paramNames(p.info),
			ParamValues: map[string][]float64{},
		}
		vals := paramVector(p.info, p.desc)
		for k, pn := range cfg.ParamNames {
			vec := make([]float64, len(cvs))
			for j := range vec {
				vec[j] = vals[k]
			}
			cfg.ParamValues[pn] = vec
		}
		b.out.Mechanisms[name] = cfg
	}

	return nil
}

// cellRevPotMethods merges the global and per-cell reversal-potential
// method maps; the cell's entries win per ion.
func (b *builder) cellRevPotMethods(ci int) map[string]cable.MechDesc {
	out := map[string]cable.MechDesc{}
	for ion, m := range b.gprop.DefaultParameters.ReversalPotentialMethod {
		out[ion] = m
	}
	for ion, m := range b.cells[ci].Defaults.ReversalPotentialMethod {
		out[ion] = m
	}

	return out
}

// sortedKeys drains a string-keyed map deterministically.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// sortedIntKeys drains an int-keyed map deterministically.
func sortedIntKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	return keys
}
