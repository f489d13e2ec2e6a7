// Package grid holds the 2D map and 3D cube containers the transforms
// operate on: flat row-major float64 arrays plus a linear pixel-to-world
// mapping and per-grid metadata. Maps are treated as immutable values once
// produced; operations return new maps.
package grid

import (
	"errors"
	"fmt"
	"math"

	"github.com/heliodata/sunbox/frame"
)

// ErrShapeMismatch reports grids that must be co-registered but differ in
// shape or mapping.
var ErrShapeMismatch = errors.New("grids are not co-registered")

// Map is one measured or derived scalar quantity sampled on a 2D pixel grid.
// Data is row-major: Data[iy*NX+ix].
type Map struct {
	Data    []float64
	NY, NX  int
	Mapping Mapping
	Meta    Meta
}

// New allocates a zero-filled map with the given shape and descriptors.
func New(ny, nx int, mapping Mapping, meta Meta) *Map {
	return &Map{
		Data:    make([]float64, ny*nx),
		NY:      ny,
		NX:      nx,
		Mapping: mapping,
		Meta:    meta,
	}
}

// Idx converts 2D pixel indices into the flat data offset.
func (m *Map) Idx(iy, ix int) int { return iy*m.NX + ix }

// At returns the value at pixel (iy, ix).
func (m *Map) At(iy, ix int) float64 { return m.Data[iy*m.NX+ix] }

// Set writes the value at pixel (iy, ix).
func (m *Map) Set(iy, ix int, v float64) { m.Data[iy*m.NX+ix] = v }

// Shape returns (ny, nx).
func (m *Map) Shape() (int, int) { return m.NY, m.NX }

// Clone returns a deep copy sharing no storage with the receiver.
func (m *Map) Clone() *Map {
	out := &Map{
		Data:    make([]float64, len(m.Data)),
		NY:      m.NY,
		NX:      m.NX,
		Mapping: m.Mapping,
		Meta:    m.Meta,
	}
	copy(out.Data, m.Data)
	return out
}

// Observation returns the observation context recorded in the map's
// descriptors.
func (m *Map) Observation() frame.Observation {
	return frame.Observation{Time: m.Mapping.Time, Observer: m.Meta.Observer}
}

// Coregistered verifies that all maps share one shape and pixel-to-world
// mapping. It returns nil for zero or one map and wraps ErrShapeMismatch
// otherwise.
func Coregistered(maps ...*Map) error {
	if len(maps) < 2 {
		return nil
	}
	ref := maps[0]
	for i, m := range maps[1:] {
		if m.NY != ref.NY || m.NX != ref.NX {
			return fmt.Errorf("map %d shape (%d,%d) != (%d,%d): %w",
				i+1, m.NY, m.NX, ref.NY, ref.NX, ErrShapeMismatch)
		}
		if !m.Mapping.Equal(ref.Mapping) {
			return fmt.Errorf("map %d pixel-to-world mapping differs: %w", i+1, ErrShapeMismatch)
		}
	}
	return nil
}

// Synthetic builds an all-NaN placeholder map centered on the given sky
// position, for initialization before real instrument data arrives and for
// tests. The center is promoted into the observation's helioprojective frame
// when given in another frame.
func Synthetic(ny, nx int, scaleArcsec float64, center frame.Point) (*Map, error) {
	obs := center.Frame.Obs
	hpc, err := center.To(frame.HelioprojectiveFrame(obs))
	if err != nil {
		return nil, fmt.Errorf("centering synthetic map: %w", err)
	}
	m := New(ny, nx, Mapping{
		CRPix1: (float64(nx) + 1) / 2,
		CRPix2: (float64(ny) + 1) / 2,
		CRVal1: hpc.TxArcsec(),
		CRVal2: hpc.TyArcsec(),
		CDelt1: scaleArcsec,
		CDelt2: scaleArcsec,
		CType1: CTypeHelioprojectiveLon,
		CType2: CTypeHelioprojectiveLat,
		CUnit1: "arcsec",
		CUnit2: "arcsec",
		Time:   obs.Time,
	}, Meta{Observer: obs.Observer})
	for i := range m.Data {
		m.Data[i] = math.NaN()
	}
	return m, nil
}
