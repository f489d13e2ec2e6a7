package frame

import (
	"errors"
	"fmt"
	"math"

	"github.com/heliodata/sunbox/internal/units"
	"github.com/heliodata/sunbox/solar"
)

// ErrOffDisk reports that a 2D helioprojective point's line of sight does not
// intersect the solar sphere, so no surface position exists for it.
var ErrOffDisk = errors.New("line of sight misses the solar disk")

// To converts the point into the destination frame. Conversion routes through
// a sun-centered Stonyhurst Cartesian hub, so any kind pair is supported.
// Converting to the point's own frame returns the point unchanged.
//
// A 2D helioprojective point is promoted to 3D by intersecting its line of
// sight with the solar sphere of radius solar.RadiusMm (nearest root);
// ErrOffDisk is returned when there is no intersection.
func (p Point) To(dst Frame) (Point, error) {
	if p.Frame.Equal(dst) {
		return p, nil
	}
	hx, hy, hz, err := p.toHub()
	if err != nil {
		return Point{}, err
	}
	return pointFromHub(dst, hx, hy, hz), nil
}

// MustTo is To for points known to convert cleanly (3D inputs, on-disk 2D
// inputs). It panics on error and exists for test and example brevity.
func (p Point) MustTo(dst Frame) Point {
	q, err := p.To(dst)
	if err != nil {
		panic(fmt.Sprintf("frame: MustTo %s -> %s: %v", p.Frame.Kind, dst.Kind, err))
	}
	return q
}

// toHub expresses the point in sun-centered Stonyhurst Cartesian coordinates
// (x toward lon=0/lat=0, z toward the north pole, y completing right-handed
// toward lon=+90).
func (p Point) toHub() (hx, hy, hz float64, err error) {
	switch p.Frame.Kind {
	case Stonyhurst:
		hx, hy, hz = sphToCart(p.C1, p.C2, p.C3)
		return hx, hy, hz, nil

	case Carrington:
		lonStony := p.C1 - solar.CarringtonLongitude(p.Frame.Obs.Time)
		hx, hy, hz = sphToCart(lonStony, p.C2, p.C3)
		return hx, hy, hz, nil

	case Heliocentric:
		r := anchorRotation(p.Frame.AnchorLonDeg, p.Frame.AnchorLatDeg)
		// Rows of r map hub to frame axes; transpose applies the inverse.
		hx = r[0]*p.C1 + r[3]*p.C2 + r[6]*p.C3
		hy = r[1]*p.C1 + r[4]*p.C2 + r[7]*p.C3
		hz = r[2]*p.C1 + r[5]*p.C2 + r[8]*p.C3
		return hx, hy, hz, nil

	case Helioprojective:
		obs := p.Frame.Obs.Observer
		tx := units.Arcsec2Rad(p.C1)
		ty := units.Arcsec2Rad(p.C2)
		d := p.C3
		if math.IsNaN(d) {
			d, err = surfaceDistance(tx, ty, obs.DistanceMm)
			if err != nil {
				return 0, 0, 0, err
			}
		}
		// Observer-relative Cartesian, then sun-centered in the frame
		// oriented toward the observer.
		x := d * math.Cos(ty) * math.Sin(tx)
		y := d * math.Sin(ty)
		z := obs.DistanceMm - d*math.Cos(ty)*math.Cos(tx)
		r := anchorRotation(obs.LonDeg, obs.LatDeg)
		hx = r[0]*x + r[3]*y + r[6]*z
		hy = r[1]*x + r[4]*y + r[7]*z
		hz = r[2]*x + r[5]*y + r[8]*z
		return hx, hy, hz, nil

	default:
		return 0, 0, 0, fmt.Errorf("unsupported source frame kind %s", p.Frame.Kind)
	}
}

// pointFromHub expresses hub coordinates in the destination frame.
func pointFromHub(dst Frame, hx, hy, hz float64) Point {
	switch dst.Kind {
	case Stonyhurst:
		lon, lat, rad := cartToSph(hx, hy, hz)
		return Point{Frame: dst, C1: lon, C2: lat, C3: rad}

	case Carrington:
		lon, lat, rad := cartToSph(hx, hy, hz)
		lon = units.Mod360(lon + solar.CarringtonLongitude(dst.Obs.Time))
		return Point{Frame: dst, C1: lon, C2: lat, C3: rad}

	case Heliocentric:
		r := anchorRotation(dst.AnchorLonDeg, dst.AnchorLatDeg)
		x := r[0]*hx + r[1]*hy + r[2]*hz
		y := r[3]*hx + r[4]*hy + r[5]*hz
		z := r[6]*hx + r[7]*hy + r[8]*hz
		return Point{Frame: dst, C1: x, C2: y, C3: z}

	case Helioprojective:
		obs := dst.Obs.Observer
		r := anchorRotation(obs.LonDeg, obs.LatDeg)
		x := r[0]*hx + r[1]*hy + r[2]*hz
		y := r[3]*hx + r[4]*hy + r[5]*hz
		z := r[6]*hx + r[7]*hy + r[8]*hz
		zObs := obs.DistanceMm - z
		d := math.Sqrt(x*x + y*y + zObs*zObs)
		tx := units.Rad2Arcsec(math.Atan2(x, zObs))
		ty := units.Rad2Arcsec(math.Asin(y / d))
		return Point{Frame: dst, C1: tx, C2: ty, C3: d}

	default:
		// Unknown kinds cannot be constructed through the public API.
		return Point{Frame: dst, C1: math.NaN(), C2: math.NaN(), C3: math.NaN()}
	}
}

// OnSolarDisk reports whether the point's line of sight from its observer
// intersects the solar sphere. Non-helioprojective points are projected into
// their observation's helioprojective frame first.
func OnSolarDisk(p Point) (bool, error) {
	if p.Frame.Kind != Helioprojective {
		q, err := p.To(HelioprojectiveFrame(p.Frame.Obs))
		if err != nil {
			return false, err
		}
		p = q
	}
	obs := p.Frame.Obs.Observer
	if obs.DistanceMm <= solar.RadiusMm {
		return false, fmt.Errorf("observer distance %.1f Mm is inside the sun", obs.DistanceMm)
	}
	tx := units.Arcsec2Rad(p.C1)
	ty := units.Arcsec2Rad(p.C2)
	cosAngle := math.Cos(ty) * math.Cos(tx)
	ratio := solar.RadiusMm / obs.DistanceMm
	return cosAngle >= math.Sqrt(1-ratio*ratio), nil
}

// SurfaceLonLat maps a sky position to the Stonyhurst longitude/latitude of
// the point where its line of sight meets the solar surface. ok is false for
// off-disk positions. This is the bulk entry point the per-pixel geometry
// derivation uses.
func SurfaceLonLat(obs Observation, txArcsec, tyArcsec float64) (lonDeg, latDeg float64, ok bool) {
	p := NewHelioprojective(obs, txArcsec, tyArcsec)
	hgs, err := p.To(StonyhurstFrame(obs))
	if err != nil {
		return math.NaN(), math.NaN(), false
	}
	return hgs.C1, hgs.C2, true
}

// surfaceDistance solves for the observer distance of the near intersection
// of a line of sight with the solar sphere. Angles in radians, distances Mm.
func surfaceDistance(tx, ty, observerDistMm float64) (float64, error) {
	c := math.Cos(ty) * math.Cos(tx)
	dc := observerDistMm * c
	disc := dc*dc - (observerDistMm*observerDistMm - solar.RadiusMm*solar.RadiusMm)
	if disc < 0 {
		return 0, fmt.Errorf("Tx=%.1f\" Ty=%.1f\": %w",
			units.Rad2Arcsec(tx), units.Rad2Arcsec(ty), ErrOffDisk)
	}
	return dc - math.Sqrt(disc), nil
}

// anchorRotation builds the hub-to-frame rotation for a Cartesian frame
// oriented toward the (lon, lat) anchor direction. Rows are the frame's
// x, y, z axes expressed in hub coordinates:
//
//	x = (-sin lon, cos lon, 0)                          toward solar west
//	y = (-sin lat cos lon, -sin lat sin lon, cos lat)   toward solar north
//	z = (cos lat cos lon, cos lat sin lon, sin lat)     toward the anchor
func anchorRotation(lonDeg, latDeg float64) [9]float64 {
	lon := units.Deg2Rad(lonDeg)
	lat := units.Deg2Rad(latDeg)
	sinLon, cosLon := math.Sincos(lon)
	sinLat, cosLat := math.Sincos(lat)
	return [9]float64{
		-sinLon, cosLon, 0,
		-sinLat * cosLon, -sinLat * sinLon, cosLat,
		cosLat * cosLon, cosLat * sinLon, sinLat,
	}
}

// sphToCart converts heliographic spherical coordinates to hub Cartesian.
func sphToCart(lonDeg, latDeg, radiusMm float64) (x, y, z float64) {
	lon := units.Deg2Rad(lonDeg)
	lat := units.Deg2Rad(latDeg)
	sinLon, cosLon := math.Sincos(lon)
	sinLat, cosLat := math.Sincos(lat)
	x = radiusMm * cosLat * cosLon
	y = radiusMm * cosLat * sinLon
	z = radiusMm * sinLat
	return
}

// cartToSph converts hub Cartesian coordinates to heliographic spherical.
// The degenerate sun-center point maps to lon=0, lat=0.
func cartToSph(x, y, z float64) (lonDeg, latDeg, radiusMm float64) {
	r := math.Sqrt(x*x + y*y + z*z)
	if r == 0 {
		return 0, 0, 0
	}
	lonDeg = units.Rad2Deg(math.Atan2(y, x))
	latDeg = units.Rad2Deg(math.Asin(z / r))
	return lonDeg, latDeg, r
}
