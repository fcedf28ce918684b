// SPDX-License-Identifier: MIT

package cable

import "fmt"

// CellBuilder assembles a soma-rooted cell from simple branch
// descriptions: each branch is a two-point frustum with end radii, a
// length, a compartment count and a region tag.
//
// Usage:
//
//	b := cable.NewCellBuilder(7)
//	b1, _ := b.AddBranch(0, 200, 0.5, 0.5, 4, "dend")
//	b2, _ := b.AddBranch(b1, 300, 0.4, 0.4, 4, "dend")
//	cell, err := b.MakeCell()
//
// Branch 0 is the soma; AddBranch returns the new branch id. Errors are
// reported by the call that caused them and again by MakeCell, so
// builder chains can defer checking to the end.
type CellBuilder struct {
	cell *Cell
	err  error
}

// NewCellBuilder starts a cell with a soma of the given radius [µm].
func NewCellBuilder(somaRadius float64) *CellBuilder {
	b := &CellBuilder{cell: NewCell()}
	if _, err := b.cell.AddSoma(somaRadius); err != nil {
		b.err = err
	}

	return b
}

// AddBranch appends a cable branch of the given length [µm] under
// parentBranch, tapering linearly from rProx to rDist [µm], split into
// ncomp compartments, tagged tag. Returns the new branch id.
// The first error encountered sticks and poisons MakeCell.
func (b *CellBuilder) AddBranch(parentBranch int, length, rProx, rDist float64, ncomp int, tag string) (int, error) {
	if b.err != nil {
		return 0, b.err
	}
	id, err := b.cell.AddCable(parentBranch, []float64{rProx, rDist}, []float64{length}, ncomp, tag)
	if err != nil {
		b.err = fmt.Errorf("cable: AddBranch(%d): %w", parentBranch, err)

		return 0, b.err
	}

	return id, nil
}

// MakeCell finalizes and returns the cell, or the first construction
// error. The builder must not be reused afterwards.
func (b *CellBuilder) MakeCell() (*Cell, error) {
	if b.err != nil {
		return nil, b.err
	}

	return b.cell, nil
}
