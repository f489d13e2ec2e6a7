package box

import (
	"fmt"

	"github.com/heliodata/sunbox/grid"
)

// ModelKind tags a solved field volume by the extrapolation that produced it.
type ModelKind string

const (
	ModelPotential ModelKind = "pot"
	ModelNLFFF     ModelKind = "nlfff"
)

// ModelKinds lists the supported kinds in their conventional order.
var ModelKinds = []ModelKind{ModelPotential, ModelNLFFF}

// Valid reports whether k is a supported model kind.
func (k ModelKind) Valid() bool {
	return k == ModelPotential || k == ModelNLFFF
}

// VectorCube is one solved vector field volume: three same-shape component
// cubes in the box's local x (west), y (north), z (radial) axes.
type VectorCube struct {
	Bx, By, Bz *grid.Cube
}

// NewVectorCube bundles three component cubes, enforcing a shared shape.
func NewVectorCube(bx, by, bz *grid.Cube) (*VectorCube, error) {
	for name, c := range map[string]*grid.Cube{"by": by, "bz": bz} {
		if c.NX != bx.NX || c.NY != bx.NY || c.NZ != bx.NZ {
			return nil, fmt.Errorf("%s shape (%d,%d,%d) != bx shape (%d,%d,%d): %w",
				name, c.NX, c.NY, c.NZ, bx.NX, bx.NY, bx.NZ, grid.ErrShapeMismatch)
		}
	}
	return &VectorCube{Bx: bx, By: by, Bz: bz}, nil
}

// Shape returns the common (nx, ny, nz) extent.
func (v *VectorCube) Shape() (nx, ny, nz int) {
	return v.Bx.NX, v.Bx.NY, v.Bx.NZ
}

// FieldVolume accumulates the solved model volumes of one box, keyed by kind.
// Entries may be absent; a loaded session can carry any subset.
type FieldVolume struct {
	models map[ModelKind]*VectorCube
}

// NewFieldVolume returns an empty volume holder.
func NewFieldVolume() *FieldVolume {
	return &FieldVolume{models: make(map[ModelKind]*VectorCube)}
}

// Set stores a solved volume under the given kind.
func (f *FieldVolume) Set(kind ModelKind, v *VectorCube) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown model kind %q", kind)
	}
	f.models[kind] = v
	return nil
}

// Model returns the stored volume for a kind, ok=false when absent.
func (f *FieldVolume) Model(kind ModelKind) (*VectorCube, bool) {
	v, ok := f.models[kind]
	return v, ok && v != nil
}

// Kinds lists the kinds with a stored volume, in conventional order.
func (f *FieldVolume) Kinds() []ModelKind {
	var kinds []ModelKind
	for _, k := range ModelKinds {
		if _, ok := f.Model(k); ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Models returns the box's model volume holder.
func (b *Box) Models() *FieldVolume { return b.models }

// SetModel attaches a solved volume to the box. This is the one mutation a
// box supports after construction; callers sharing a box across goroutines
// must serialize it against Model reads themselves.
func (b *Box) SetModel(kind ModelKind, v *VectorCube) error {
	return b.models.Set(kind, v)
}

// Model returns the box's solved volume for a kind, ok=false when absent.
func (b *Box) Model(kind ModelKind) (*VectorCube, bool) {
	return b.models.Model(kind)
}
