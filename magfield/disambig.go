// Package magfield transforms raw polar magnetic-field measurements: it
// resolves the 180-degree azimuth ambiguity and rotates (field, inclination,
// azimuth) triples into heliographic vector components.
package magfield

import (
	"fmt"
	"math"

	"github.com/heliodata/sunbox/grid"
	"github.com/heliodata/sunbox/internal/monitoring"
	"github.com/heliodata/sunbox/internal/units"
)

// Method selects which bit of the disambiguation code is authoritative.
type Method int

const (
	// MethodPotentialAcute resolves toward the potential-field acute angle
	// (bit 0).
	MethodPotentialAcute Method = 0
	// MethodRandom uses the random-resolution bit (bit 1).
	MethodRandom Method = 1
	// MethodRadialAcute resolves toward the radial acute angle (bit 2). It
	// is the default and the fallback for out-of-range methods.
	MethodRadialAcute Method = 2
)

func (m Method) String() string {
	switch m {
	case MethodPotentialAcute:
		return "potential-acute"
	case MethodRandom:
		return "random"
	case MethodRadialAcute:
		return "radial-acute"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

// Disambiguate resolves the 180-degree azimuth ambiguity using the per-pixel
// disambiguation code grid. Codes are truncated to integers; where the
// method's bit is set the pixel azimuth is flipped by 180 degrees. Every
// output value is reduced into [0, 360). NaN azimuths stay NaN and NaN codes
// flip nothing.
//
// An out-of-range method is clamped to MethodRadialAcute with a diagnostic
// notice; a shape mismatch between the grids is an error.
func Disambiguate(azimuth, code *grid.Map, method Method) (*grid.Map, error) {
	if azimuth.NY != code.NY || azimuth.NX != code.NX {
		return nil, fmt.Errorf("azimuth shape (%d,%d) != code shape (%d,%d): %w",
			azimuth.NY, azimuth.NX, code.NY, code.NX, grid.ErrShapeMismatch)
	}
	if method < MethodPotentialAcute || method > MethodRadialAcute {
		monitoring.Noticef("invalid disambiguation method %d, using %s", int(method), MethodRadialAcute)
		method = MethodRadialAcute
	}

	out := azimuth.Clone()
	for i, v := range out.Data {
		c := code.Data[i]
		if !math.IsNaN(c) && (int(c)>>int(method))&1 != 0 {
			v += 180
		}
		out.Data[i] = units.Mod360(v)
	}
	return out, nil
}
