// Package units provides shared constants and conversions for angle and length units
package units

import "math"

// Angle unit identifiers
const (
	Deg    = "deg"
	Rad    = "rad"
	Arcsec = "arcsec"
)

// Length unit identifiers
const (
	Mm = "Mm"
	Km = "km"
	AU = "AU"
)

// Conversion factors
const (
	ArcsecPerDeg = 3600.0
	DegPerArcsec = 1.0 / ArcsecPerDeg
	KmPerMm      = 1000.0
	MmPerAU      = 149597.8707 // astronomical unit in megameters
)

// ValidAngleUnits contains all angle unit values accepted in grid metadata
var ValidAngleUnits = []string{Deg, Rad, Arcsec}

// IsValidAngleUnit checks if the given unit is in the list of valid angle units
func IsValidAngleUnit(unit string) bool {
	for _, validUnit := range ValidAngleUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// Deg2Rad converts degrees to radians
func Deg2Rad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Rad2Deg converts radians to degrees
func Rad2Deg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// Arcsec2Deg converts arcseconds to degrees
func Arcsec2Deg(arcsec float64) float64 {
	return arcsec * DegPerArcsec
}

// Deg2Arcsec converts degrees to arcseconds
func Deg2Arcsec(deg float64) float64 {
	return deg * ArcsecPerDeg
}

// Arcsec2Rad converts arcseconds to radians
func Arcsec2Rad(arcsec float64) float64 {
	return Deg2Rad(arcsec * DegPerArcsec)
}

// Rad2Arcsec converts radians to arcseconds
func Rad2Arcsec(rad float64) float64 {
	return Rad2Deg(rad) * ArcsecPerDeg
}

// Mod360 reduces an angle in degrees into [0, 360). NaN passes through.
func Mod360(deg float64) float64 {
	m := math.Mod(deg, 360.0)
	if m < 0 {
		m += 360.0
	}
	return m
}

// AU2Mm converts astronomical units to megameters
func AU2Mm(au float64) float64 {
	return au * MmPerAU
}

// Km2Mm converts kilometers to megameters
func Km2Mm(km float64) float64 {
	return km / KmPerMm
}
