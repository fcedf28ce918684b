package fvm_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/cablecore/cable"
)

// ballAndStick is the canonical test cell: a 500 µm² soma plus one
// 200 µm, 1 µm diameter dendrite of 4 compartments, hh on the soma and
// pas on the dendrite.
func ballAndStick(t *testing.T) *cable.Cell {
	t.Helper()
	b := cable.NewCellBuilder(6.30785)
	_, err := b.AddBranch(0, 200, 0.5, 0.5, 4, "dend")
	require.NoError(t, err)
	cell, err := b.MakeCell()
	require.NoError(t, err)

	cell.Paint(cable.Tagged("soma"), cable.DensityMech(cable.NewMech("hh")))
	cell.Paint(cable.Tagged("dend"), cable.DensityMech(cable.NewMech("pas")))

	return cell
}

// twoCellSystem is the reference population: the ball-and-stick cell
// plus a ball-and-three-sticks cell with heterogeneous membrane
// capacitance and 90 Ω·cm axial resistivity.
func twoCellSystem(t *testing.T) []*cable.Cell {
	t.Helper()

	b := cable.NewCellBuilder(7)
	b1, err := b.AddBranch(0, 200, 0.5, 0.5, 4, "dend")
	require.NoError(t, err)
	b2, err := b.AddBranch(b1, 300, 0.4, 0.4, 4, "dend")
	require.NoError(t, err)
	b3, err := b.AddBranch(b1, 180, 0.35, 0.35, 4, "dend")
	require.NoError(t, err)
	cell, err := b.MakeCell()
	require.NoError(t, err)

	cell.Paint(cable.Tagged("soma"), cable.DensityMech(cable.NewMech("hh")))
	cell.Paint(cable.Tagged("dend"), cable.DensityMech(cable.NewMech("pas")))

	cell.Paint(cable.Branch(b1), cable.MembraneCapacitance(0.017))
	cell.Paint(cable.Branch(b2), cable.MembraneCapacitance(0.013))
	cell.Paint(cable.Branch(b3), cable.MembraneCapacitance(0.018))

	require.NoError(t, cell.Place(cable.Location{Branch: 2, Pos: 1}, cable.CurrentClamp(cable.IClamp{Delay: 5, Duration: 80, Amplitude: 0.45})))
	require.NoError(t, cell.Place(cable.Location{Branch: 3, Pos: 1}, cable.CurrentClamp(cable.IClamp{Delay: 40, Duration: 10, Amplitude: -0.2})))

	cell.Defaults.AxialResistivity = 90

	return []*cable.Cell{ballAndStick(t), cell}
}

// unitTestCatalogue extends the default catalogue with the synthetic
// mechanisms the ion and reversal-potential scenarios need.
func unitTestCatalogue() *cable.Catalogue {
	cat := cable.DefaultCatalogue()

	cat.Register("test_ca", cable.MechInfo{
		Kind: cable.Density,
		Ions: map[string]cable.IonDep{
			"ca": {WriteIntConc: true},
		},
	})

	cat.Register("test_cl_valence", cable.MechInfo{
		Kind: cable.Density,
		Ions: map[string]cable.IonDep{
			"cl": {ExpectedValence: -1, VerifyValence: true},
		},
	})

	for _, ion := range []string{"a", "b", "c"} {
		cat.Register("read_e"+ion, cable.MechInfo{
			Kind: cable.Density,
			Ions: map[string]cable.IonDep{
				ion: {ReadRevPot: true},
			},
		})
		cat.Register("write_e"+ion, cable.MechInfo{
			Kind: cable.RevPot,
			Ions: map[string]cable.IonDep{
				ion: {WriteRevPot: true},
			},
		})
	}

	cat.Register("write_eb_ec", cable.MechInfo{
		Kind: cable.RevPot,
		Ions: map[string]cable.IonDep{
			"b": {WriteRevPot: true},
			"c": {WriteRevPot: true},
		},
	})

	return cat
}
