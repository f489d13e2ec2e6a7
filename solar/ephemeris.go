package solar

import (
	"math"
	"time"

	"github.com/heliodata/sunbox/internal/units"
)

const (
	j2000JD  = 2451545.0
	unixJD   = 2440587.5
	dayNanos = 86400.0 * 1e9
)

// JulianDay converts a time to a Julian day number. The epoch identity
// JD(2000-01-01T12:00Z) = 2451545.0 holds exactly.
func JulianDay(t time.Time) float64 {
	return float64(t.UnixNano())/dayNanos + unixJD
}

// sunState carries the intermediate solar position quantities shared by the
// physical-ephemeris angles. Longitudes in degrees, distance in AU.
type sunState struct {
	trueLonDeg  float64 // geometric true longitude of date
	aberrLonDeg float64 // true longitude corrected for aberration
	appLonDeg   float64 // apparent longitude (aberration and nutation)
	distAU      float64
	oblqDeg     float64 // true obliquity of the ecliptic
}

// sunCoords evaluates the low-accuracy solar position of Meeus ch. 25 at the
// given Julian day. Accuracy is of order 0.01 degree, which is what the
// physical-observation angles of sunCoords' consumers need.
func sunCoords(jd float64) sunState {
	T := (jd - j2000JD) / 36525.0

	meanLon := 280.46646 + T*(36000.76983+T*0.0003032)
	meanAnom := 357.52911 + T*(35999.05029-T*0.0001537)
	ecc := 0.016708634 - T*(0.000042037+T*0.0000001267)

	m := units.Deg2Rad(meanAnom)
	center := (1.914602-T*(0.004817+T*0.000014))*math.Sin(m) +
		(0.019993-T*0.000101)*math.Sin(2*m) +
		0.000289*math.Sin(3*m)

	trueLon := meanLon + center
	trueAnom := meanAnom + center
	dist := 1.000001018 * (1 - ecc*ecc) / (1 + ecc*math.Cos(units.Deg2Rad(trueAnom)))

	node := units.Deg2Rad(125.04 - 1934.136*T)
	aberrLon := trueLon - 0.00569
	appLon := aberrLon - 0.00478*math.Sin(node)

	oblq := 23.439291 - 0.0130042*T + 0.00256*math.Cos(node)

	return sunState{
		trueLonDeg:  trueLon,
		aberrLonDeg: aberrLon,
		appLonDeg:   appLon,
		distAU:      dist,
		oblqDeg:     oblq,
	}
}

// nodeLongitudeDeg is the longitude of the ascending node of the solar
// equator on the ecliptic at the given Julian day.
func nodeLongitudeDeg(jd float64) float64 {
	return 73.6667 + 1.3958333*(jd-nodeEpochJD)/36525.0
}

// rotationPhaseDeg is the accumulated Carrington rotation angle since the
// 1853 reference epoch.
func rotationPhaseDeg(jd float64) float64 {
	return (jd - rotationEpochJD) * 360.0 / CarringtonPeriodDays
}

// SubEarthLatitude returns B0, the heliographic latitude of the sub-Earth
// point, in degrees. Bounded by the axis inclination, +-7.25 degrees.
func SubEarthLatitude(t time.Time) float64 {
	jd := JulianDay(t)
	s := sunCoords(jd)
	diff := units.Deg2Rad(s.aberrLonDeg - nodeLongitudeDeg(jd))
	incl := units.Deg2Rad(axisInclinationDeg)
	return units.Rad2Deg(math.Asin(math.Sin(diff) * math.Sin(incl)))
}

// CarringtonLongitude returns L0, the Carrington longitude of the sub-Earth
// point, in [0, 360) degrees. It decreases by roughly 13.2 degrees per day as
// the co-rotating frame sweeps past Earth.
func CarringtonLongitude(t time.Time) float64 {
	jd := JulianDay(t)
	s := sunCoords(jd)
	diff := units.Deg2Rad(s.aberrLonDeg - nodeLongitudeDeg(jd))
	incl := units.Deg2Rad(axisInclinationDeg)
	eta := units.Rad2Deg(math.Atan2(-math.Sin(diff)*math.Cos(incl), -math.Cos(diff)))
	return units.Mod360(eta - rotationPhaseDeg(jd))
}

// PositionAngle returns P, the position angle of the northern end of the
// solar rotation axis measured eastward from celestial north, in degrees.
// Bounded by +-26.4 degrees over the year.
func PositionAngle(t time.Time) float64 {
	jd := JulianDay(t)
	s := sunCoords(jd)
	diff := units.Deg2Rad(s.aberrLonDeg - nodeLongitudeDeg(jd))
	incl := units.Deg2Rad(axisInclinationDeg)
	x := math.Atan(-math.Cos(units.Deg2Rad(s.appLonDeg)) * math.Tan(units.Deg2Rad(s.oblqDeg)))
	y := math.Atan(-math.Cos(diff) * math.Tan(incl))
	return units.Rad2Deg(x + y)
}

// EarthDistanceMm returns the Sun-Earth distance in megameters.
func EarthDistanceMm(t time.Time) float64 {
	return units.AU2Mm(sunCoords(JulianDay(t)).distAU)
}
