// Package frame implements the solar coordinate frames the box geometry and
// field transforms are expressed in: helioprojective (observer-relative
// angles), heliographic Stonyhurst and Carrington (spherical, sun-fixed), and
// heliocentric Cartesian (sun-centered, oriented toward an anchor direction).
//
// Conventions: angles in degrees (helioprojective Tx/Ty in arcseconds),
// lengths in megameters. Stonyhurst longitude is zero at the sub-Earth
// meridian and increases toward the west limb; latitude is positive north.
package frame

import (
	"fmt"
	"time"

	"github.com/heliodata/sunbox/solar"
)

// Kind identifies a coordinate frame family.
type Kind int

const (
	// Helioprojective is the observer-relative angular frame: C1=Tx (arcsec,
	// positive toward solar west), C2=Ty (arcsec, positive toward solar
	// north), C3=distance from the observer (Mm, NaN when unknown).
	Helioprojective Kind = iota
	// Stonyhurst is the Earth-referenced heliographic frame: C1=longitude
	// (deg), C2=latitude (deg), C3=radius from sun center (Mm).
	Stonyhurst
	// Carrington is the co-rotating heliographic frame; longitude equals
	// Stonyhurst longitude plus the Carrington longitude of the sub-Earth
	// point at the observation time.
	Carrington
	// Heliocentric is the sun-centered Cartesian frame: +z from sun center
	// toward the anchor direction, +y toward solar north in the anchor
	// meridian plane, +x completing right-handed toward solar west. All
	// axes in Mm.
	Heliocentric
)

func (k Kind) String() string {
	switch k {
	case Helioprojective:
		return "helioprojective"
	case Stonyhurst:
		return "heliographic_stonyhurst"
	case Carrington:
		return "heliographic_carrington"
	case Heliocentric:
		return "heliocentric"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Observer is a vantage point given in Stonyhurst coordinates.
type Observer struct {
	LatDeg     float64
	LonDeg     float64
	DistanceMm float64
}

// EarthObserver builds the Earth vantage at time t from the solar
// ephemerides: latitude B0, longitude zero by definition of Stonyhurst, and
// the Sun-Earth distance.
func EarthObserver(t time.Time) Observer {
	return Observer{
		LatDeg:     solar.SubEarthLatitude(t),
		LonDeg:     0,
		DistanceMm: solar.EarthDistanceMm(t),
	}
}

// Observation pairs an instant with the observer watching the Sun at that
// instant. It is constructed once per analysis session and never mutated.
type Observation struct {
	Time     time.Time
	Observer Observer
}

// EarthObservation is shorthand for an Earth-based observation at time t.
func EarthObservation(t time.Time) Observation {
	return Observation{Time: t, Observer: EarthObserver(t)}
}

// Frame is a fully specified coordinate frame: a kind plus the observation
// context and, for heliocentric frames, the orientation anchor direction in
// Stonyhurst degrees.
type Frame struct {
	Kind         Kind
	Obs          Observation
	AnchorLonDeg float64
	AnchorLatDeg float64
}

// HelioprojectiveFrame is the angular frame of the observation's observer.
func HelioprojectiveFrame(obs Observation) Frame {
	return Frame{Kind: Helioprojective, Obs: obs}
}

// StonyhurstFrame is the Earth-referenced heliographic frame at the
// observation time.
func StonyhurstFrame(obs Observation) Frame {
	return Frame{Kind: Stonyhurst, Obs: obs}
}

// CarringtonFrame is the co-rotating heliographic frame at the observation
// time.
func CarringtonFrame(obs Observation) Frame {
	return Frame{Kind: Carrington, Obs: obs}
}

// HeliocentricFrame is the Cartesian frame whose +z axis runs from sun
// center through the anchor point. The anchor is reduced to its Stonyhurst
// direction; a 2D helioprojective anchor is promoted onto the solar surface
// first.
func HeliocentricFrame(obs Observation, anchor Point) (Frame, error) {
	hgs, err := anchor.To(StonyhurstFrame(anchor.Frame.Obs))
	if err != nil {
		return Frame{}, fmt.Errorf("resolving heliocentric anchor: %w", err)
	}
	return Frame{
		Kind:         Heliocentric,
		Obs:          obs,
		AnchorLonDeg: hgs.C1,
		AnchorLatDeg: hgs.C2,
	}, nil
}

// HeliocentricObserverFrame is the heliocentric frame oriented toward the
// observation's own observer.
func HeliocentricObserverFrame(obs Observation) Frame {
	return Frame{
		Kind:         Heliocentric,
		Obs:          obs,
		AnchorLonDeg: obs.Observer.LonDeg,
		AnchorLatDeg: obs.Observer.LatDeg,
	}
}

// Equal reports whether two frames describe the same coordinate system.
func (f Frame) Equal(g Frame) bool {
	return f.Kind == g.Kind &&
		f.Obs.Time.Equal(g.Obs.Time) &&
		f.Obs.Observer == g.Obs.Observer &&
		f.AnchorLonDeg == g.AnchorLonDeg &&
		f.AnchorLatDeg == g.AnchorLatDeg
}
