package grid

import "fmt"

// Cube is a 3D scalar array, x fastest: Data[(iz*NY+iy)*NX+ix]. Cubes hold
// solved field-volume components and are exchanged with the extrapolation
// solvers.
type Cube struct {
	Data       []float64
	NX, NY, NZ int
}

// NewCube allocates a zero-filled cube.
func NewCube(nx, ny, nz int) *Cube {
	return &Cube{Data: make([]float64, nx*ny*nz), NX: nx, NY: ny, NZ: nz}
}

// FromValues wraps a flat value slice as a cube, checking the length.
func FromValues(nx, ny, nz int, values []float64) (*Cube, error) {
	if len(values) != nx*ny*nz {
		return nil, fmt.Errorf("cube values length %d != %d*%d*%d", len(values), nx, ny, nz)
	}
	return &Cube{Data: values, NX: nx, NY: ny, NZ: nz}, nil
}

// Idx converts 3D indices into the flat data offset.
func (c *Cube) Idx(ix, iy, iz int) int { return (iz*c.NY+iy)*c.NX + ix }

// At returns the value at (ix, iy, iz).
func (c *Cube) At(ix, iy, iz int) float64 { return c.Data[(iz*c.NY+iy)*c.NX+ix] }

// Set writes the value at (ix, iy, iz).
func (c *Cube) Set(ix, iy, iz int, v float64) { c.Data[(iz*c.NY+iy)*c.NX+ix] = v }

// TransposeXY returns a new cube with the first two axes swapped:
// out(x, y, z) = in(y, x, z). The extrapolation solvers exchange volumes in
// (y, x, z) order, so their results pass through here on the way in and
// requests on the way out.
func (c *Cube) TransposeXY() *Cube {
	out := NewCube(c.NY, c.NX, c.NZ)
	for iz := 0; iz < c.NZ; iz++ {
		for iy := 0; iy < c.NY; iy++ {
			for ix := 0; ix < c.NX; ix++ {
				out.Set(iy, ix, iz, c.At(ix, iy, iz))
			}
		}
	}
	return out
}

// SetLayer stamps a map's values into the cube layer at height iz. The map
// shape must match the cube's x/y extent.
func (c *Cube) SetLayer(iz int, m *Map) error {
	if iz < 0 || iz >= c.NZ {
		return fmt.Errorf("layer %d out of range [0,%d)", iz, c.NZ)
	}
	if m.NX != c.NX || m.NY != c.NY {
		return fmt.Errorf("layer shape (%d,%d) != cube face (%d,%d): %w",
			m.NY, m.NX, c.NY, c.NX, ErrShapeMismatch)
	}
	for iy := 0; iy < c.NY; iy++ {
		for ix := 0; ix < c.NX; ix++ {
			c.Set(ix, iy, iz, m.At(iy, ix))
		}
	}
	return nil
}

// Clone returns a deep copy sharing no storage with the receiver.
func (c *Cube) Clone() *Cube {
	out := &Cube{Data: make([]float64, len(c.Data)), NX: c.NX, NY: c.NY, NZ: c.NZ}
	copy(out.Data, c.Data)
	return out
}
