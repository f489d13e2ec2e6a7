package magfield

import (
	"math"

	"github.com/heliodata/sunbox/grid"
)

// Boundary is the Cartesian bottom-boundary condition handed to the
// extrapolation solvers: three co-registered component maps in the box's
// local x (west), y (north), z (radial) axes.
type Boundary struct {
	Bx, By, Bz *grid.Map
}

// BottomBoundary assembles the solver boundary from heliographic components:
// Bz is the radial component, Bx the negated poloidal component and By the
// toroidal component. The input maps are not modified.
func BottomBoundary(f *PTRField) (*Boundary, error) {
	if err := grid.Coregistered(f.Phi, f.Theta, f.Radial); err != nil {
		return nil, err
	}
	bx := derived(f.Theta, "bx")
	for i, v := range f.Theta.Data {
		bx.Data[i] = -v
	}
	by := f.Phi.Clone()
	by.Meta.Quantity = "by"
	bz := f.Radial.Clone()
	bz.Meta.Quantity = "bz"
	return &Boundary{Bx: bx, By: by, Bz: bz}, nil
}

// FillNaN replaces NaN cells in all three components with the given value.
// Solver inputs must be finite; reprojected boundaries carry NaN outside the
// source field of view.
func (b *Boundary) FillNaN(v float64) {
	for _, m := range []*grid.Map{b.Bx, b.By, b.Bz} {
		for i, x := range m.Data {
			if math.IsNaN(x) {
				m.Data[i] = v
			}
		}
	}
}
