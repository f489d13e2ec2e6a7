package frame

import (
	"fmt"
	"math"
)

// Point is a position tagged with the frame it is expressed in. The meaning
// of C1..C3 depends on Frame.Kind; see the Kind constants.
type Point struct {
	Frame      Frame
	C1, C2, C3 float64
}

// NewPoint builds a point with raw coordinates in the given frame.
func NewPoint(f Frame, c1, c2, c3 float64) Point {
	return Point{Frame: f, C1: c1, C2: c2, C3: c3}
}

// NewHelioprojective builds a 2D sky position (distance unknown). Transforms
// of this point assume it lies on the solar surface.
func NewHelioprojective(obs Observation, txArcsec, tyArcsec float64) Point {
	return Point{Frame: HelioprojectiveFrame(obs), C1: txArcsec, C2: tyArcsec, C3: math.NaN()}
}

// NewHelioprojective3 builds a fully determined observer-relative position.
func NewHelioprojective3(obs Observation, txArcsec, tyArcsec, distanceMm float64) Point {
	return Point{Frame: HelioprojectiveFrame(obs), C1: txArcsec, C2: tyArcsec, C3: distanceMm}
}

// NewStonyhurst builds a heliographic Stonyhurst position.
func NewStonyhurst(obs Observation, lonDeg, latDeg, radiusMm float64) Point {
	return Point{Frame: StonyhurstFrame(obs), C1: lonDeg, C2: latDeg, C3: radiusMm}
}

// NewCarrington builds a heliographic Carrington position.
func NewCarrington(obs Observation, lonDeg, latDeg, radiusMm float64) Point {
	return Point{Frame: CarringtonFrame(obs), C1: lonDeg, C2: latDeg, C3: radiusMm}
}

// TxArcsec returns the helioprojective westward angle. Only meaningful for
// helioprojective points.
func (p Point) TxArcsec() float64 { return p.C1 }

// TyArcsec returns the helioprojective northward angle.
func (p Point) TyArcsec() float64 { return p.C2 }

// DistanceMm returns the observer distance of a helioprojective point, NaN
// when the point is 2D.
func (p Point) DistanceMm() float64 { return p.C3 }

// LonDeg returns the heliographic longitude of a Stonyhurst or Carrington
// point.
func (p Point) LonDeg() float64 { return p.C1 }

// LatDeg returns the heliographic latitude.
func (p Point) LatDeg() float64 { return p.C2 }

// RadiusMm returns the distance from sun center of a heliographic point.
func (p Point) RadiusMm() float64 { return p.C3 }

// XMm, YMm and ZMm return the Cartesian components of a heliocentric point.
func (p Point) XMm() float64 { return p.C1 }
func (p Point) YMm() float64 { return p.C2 }
func (p Point) ZMm() float64 { return p.C3 }

// Is2D reports whether a helioprojective point lacks a distance coordinate.
func (p Point) Is2D() bool {
	return p.Frame.Kind == Helioprojective && math.IsNaN(p.C3)
}

func (p Point) String() string {
	switch p.Frame.Kind {
	case Helioprojective:
		if p.Is2D() {
			return fmt.Sprintf("(Tx=%.3f\", Ty=%.3f\") %s", p.C1, p.C2, p.Frame.Kind)
		}
		return fmt.Sprintf("(Tx=%.3f\", Ty=%.3f\", d=%.3f Mm) %s", p.C1, p.C2, p.C3, p.Frame.Kind)
	case Stonyhurst, Carrington:
		return fmt.Sprintf("(lon=%.4f, lat=%.4f, r=%.3f Mm) %s", p.C1, p.C2, p.C3, p.Frame.Kind)
	case Heliocentric:
		return fmt.Sprintf("(x=%.3f, y=%.3f, z=%.3f Mm) %s", p.C1, p.C2, p.C3, p.Frame.Kind)
	default:
		return fmt.Sprintf("(%g, %g, %g) %s", p.C1, p.C2, p.C3, p.Frame.Kind)
	}
}
