// Package solar provides physical constants and the low-accuracy solar
// ephemerides (sub-Earth latitude, Carrington longitude, axis position angle,
// Sun-Earth distance) that the coordinate frames depend on.
package solar

// Physical constants.
const (
	// RadiusMm is the photospheric solar radius used by the frame geometry.
	RadiusMm = 695.7

	// RadiusKm is the same radius in kilometers.
	RadiusKm = 695700.0

	// CarringtonPeriodDays is the sidereal rotation period of the Carrington
	// reference frame.
	CarringtonPeriodDays = 25.38

	// SynodicPeriodDays is the mean synodic rotation period seen from Earth.
	SynodicPeriodDays = 27.2753
)

// Rotation-axis elements (Carrington). The node longitude precesses slowly;
// see nodeLongitudeDeg.
const (
	axisInclinationDeg = 7.25
	nodeEpochJD        = 2396758.0 // 1854 Jan 1.5, node longitude epoch
	rotationEpochJD    = 2398220.0 // 1853 Nov 9.5, zero rotation phase
)
