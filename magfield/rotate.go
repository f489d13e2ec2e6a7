package magfield

import (
	"fmt"
	"math"

	"github.com/heliodata/sunbox/frame"
	"github.com/heliodata/sunbox/grid"
	"github.com/heliodata/sunbox/internal/units"
)

// Geometry supplies the observing geometry for the heliographic rotation:
// per-pixel heliographic angles plus the two grid-wide scalar angles.
type Geometry struct {
	// LonDeg and LatDeg are the per-pixel Stonyhurst longitude and latitude
	// of the pixel's surface position, row-major, NaN for off-disk pixels.
	LonDeg, LatDeg []float64
	NY, NX         int
	// SubObserverLatDeg is b, the heliographic latitude of the sub-observer
	// point at the grid's reference time.
	SubObserverLatDeg float64
	// PDeg is p, the negated roll angle of the observing instrument
	// relative to solar north.
	PDeg float64
}

// GeometryFromMap derives the rotation geometry from a map's descriptors:
// each pixel center is mapped through the pixel-to-world transform and
// intersected with the solar surface at the map's observation time. Off-disk
// pixels get NaN angles and propagate NaN components.
func GeometryFromMap(m *grid.Map) (*Geometry, error) {
	g := &Geometry{
		LonDeg:            make([]float64, m.NY*m.NX),
		LatDeg:            make([]float64, m.NY*m.NX),
		NY:                m.NY,
		NX:                m.NX,
		SubObserverLatDeg: m.Meta.Observer.LatDeg,
		PDeg:              -m.Meta.RollDeg,
	}
	obs := m.Observation()
	for iy := 0; iy < m.NY; iy++ {
		for ix := 0; ix < m.NX; ix++ {
			wx, wy := m.Mapping.PixelToWorld(float64(ix), float64(iy))
			tx, err := worldToArcsec(wx, m.Mapping.CUnit1)
			if err != nil {
				return nil, err
			}
			ty, err := worldToArcsec(wy, m.Mapping.CUnit2)
			if err != nil {
				return nil, err
			}
			i := m.Idx(iy, ix)
			lon, lat, ok := frame.SurfaceLonLat(obs, tx, ty)
			if !ok {
				g.LonDeg[i] = math.NaN()
				g.LatDeg[i] = math.NaN()
				continue
			}
			g.LonDeg[i] = lon
			g.LatDeg[i] = lat
		}
	}
	return g, nil
}

func worldToArcsec(v float64, unit string) (float64, error) {
	switch unit {
	case units.Arcsec, "":
		return v, nil
	case units.Deg:
		return units.Deg2Arcsec(v), nil
	case units.Rad:
		return units.Rad2Arcsec(v), nil
	default:
		return 0, fmt.Errorf("unsupported angular unit %q in pixel mapping", unit)
	}
}

// PTRField is one vector field as three co-registered heliographic component
// maps: Phi (toroidal, westward), Theta (poloidal, southward) and Radial.
type PTRField struct {
	Phi, Theta, Radial *grid.Map
}

// NewPTRField bundles three component maps, enforcing co-registration.
func NewPTRField(phi, theta, radial *grid.Map) (*PTRField, error) {
	if err := grid.Coregistered(phi, theta, radial); err != nil {
		return nil, err
	}
	return &PTRField{Phi: phi, Theta: theta, Radial: radial}, nil
}

// Heliographic rotates per-pixel (field, inclination, azimuth) measurements
// into heliographic components. Inclination and azimuth are in degrees; the
// field map's units carry through. The rotation matrix is evaluated per pixel
// from the geometry's longitude/latitude with the two scalar angles broadcast
// across the grid.
//
// With b = p = 0 at disk center (lon = lat = 0) the rotation reduces to
// Radial = field*cos(gamma), Theta = -field*sin(gamma)*cos(psi) and
// Phi = -field*sin(gamma)*sin(psi).
func Heliographic(field, inclination, azimuth *grid.Map, geom *Geometry) (*PTRField, error) {
	if err := grid.Coregistered(field, inclination, azimuth); err != nil {
		return nil, fmt.Errorf("rotation inputs: %w", err)
	}
	if geom.NY != field.NY || geom.NX != field.NX {
		return nil, fmt.Errorf("geometry shape (%d,%d) != field shape (%d,%d): %w",
			geom.NY, geom.NX, field.NY, field.NX, grid.ErrShapeMismatch)
	}

	sinB, cosB := math.Sincos(units.Deg2Rad(geom.SubObserverLatDeg))
	sinP, cosP := math.Sincos(units.Deg2Rad(geom.PDeg))

	phiOut := derived(field, "bp")
	thetaOut := derived(field, "bt")
	radialOut := derived(field, "br")

	for i, f := range field.Data {
		gamma := units.Deg2Rad(inclination.Data[i])
		psi := units.Deg2Rad(azimuth.Data[i])

		// Local image-plane basis components.
		sinGamma, cosGamma := math.Sincos(gamma)
		sinPsi, cosPsi := math.Sincos(psi)
		bXi := -f * sinGamma * sinPsi
		bEta := f * sinGamma * cosPsi
		bZeta := f * cosGamma

		sinPhi, cosPhi := math.Sincos(units.Deg2Rad(geom.LonDeg[i]))
		sinLam, cosLam := math.Sincos(units.Deg2Rad(geom.LatDeg[i]))

		k11 := cosLam*(sinB*sinP*cosPhi+cosP*sinPhi) - sinLam*cosB*sinP
		k12 := -cosLam*(sinB*cosP*cosPhi-sinP*sinPhi) + sinLam*cosB*cosP
		k13 := cosLam*cosB*cosPhi + sinLam*sinB
		k21 := sinLam*(sinB*sinP*cosPhi+cosP*sinPhi) + cosLam*cosB*sinP
		k22 := -sinLam*(sinB*cosP*cosPhi-sinP*sinPhi) - cosLam*cosB*cosP
		k23 := sinLam*cosB*cosPhi - cosLam*sinB
		k31 := -sinB*sinP*sinPhi + cosP*cosPhi
		k32 := sinB*cosP*sinPhi + sinP*cosPhi
		k33 := -cosB * sinPhi

		phiOut.Data[i] = k31*bXi + k32*bEta + k33*bZeta
		thetaOut.Data[i] = k21*bXi + k22*bEta + k23*bZeta
		radialOut.Data[i] = k11*bXi + k12*bEta + k13*bZeta
	}

	return &PTRField{Phi: phiOut, Theta: thetaOut, Radial: radialOut}, nil
}

// derived allocates an output map carrying the source's mapping and meta with
// a new quantity name.
func derived(src *grid.Map, quantity string) *grid.Map {
	meta := src.Meta
	meta.Quantity = quantity
	return grid.New(src.NY, src.NX, src.Mapping, meta)
}
