package grid

import (
	"time"

	"github.com/heliodata/sunbox/frame"
)

// FITS-style axis type labels used by the mapping descriptors this library
// produces or consumes.
const (
	CTypeHelioprojectiveLon = "HPLN-TAN"
	CTypeHelioprojectiveLat = "HPLT-TAN"
	CTypeHeliographicLonCEA = "HGLN-CEA"
	CTypeHeliographicLatCEA = "HGLT-CEA"
)

// Mapping is a linear pixel-to-world coordinate descriptor in the style of a
// FITS WCS: a reference pixel (1-based, FITS convention), the world
// coordinate at that pixel, and a per-pixel world increment. The library's
// methods take 0-based pixel indices.
type Mapping struct {
	CRPix1, CRPix2 float64
	CRVal1, CRVal2 float64
	CDelt1, CDelt2 float64
	CType1, CType2 string
	CUnit1, CUnit2 string
	Time           time.Time
}

// PixelToWorld maps 0-based pixel coordinates to world coordinates in the
// mapping's units. Fractional pixels are valid; (0, 0) is the center of the
// first pixel.
func (w Mapping) PixelToWorld(ix, iy float64) (x, y float64) {
	x = w.CRVal1 + (ix+1-w.CRPix1)*w.CDelt1
	y = w.CRVal2 + (iy+1-w.CRPix2)*w.CDelt2
	return
}

// WorldToPixel maps world coordinates to 0-based fractional pixel
// coordinates.
func (w Mapping) WorldToPixel(x, y float64) (ix, iy float64) {
	ix = (x-w.CRVal1)/w.CDelt1 + w.CRPix1 - 1
	iy = (y-w.CRVal2)/w.CDelt2 + w.CRPix2 - 1
	return
}

// Equal reports whether two mappings describe the same pixel-to-world
// transform.
func (w Mapping) Equal(v Mapping) bool {
	return w.CRPix1 == v.CRPix1 && w.CRPix2 == v.CRPix2 &&
		w.CRVal1 == v.CRVal1 && w.CRVal2 == v.CRVal2 &&
		w.CDelt1 == v.CDelt1 && w.CDelt2 == v.CDelt2 &&
		w.CType1 == v.CType1 && w.CType2 == v.CType2 &&
		w.CUnit1 == v.CUnit1 && w.CUnit2 == v.CUnit2 &&
		w.Time.Equal(v.Time)
}

// Meta carries the per-grid metadata the transforms need beyond the pixel
// mapping: who observed it, the instrument roll, and what the values are.
type Meta struct {
	// Observer is the vantage the grid was recorded from.
	Observer frame.Observer
	// RollDeg is the instrument roll angle relative to solar north (FITS
	// CROTA2). The heliographic rotation uses its negation as the p angle.
	RollDeg float64
	// Quantity names the physical quantity ("field", "inclination",
	// "azimuth", "disambig", or a derived component name).
	Quantity string
	// Unit is the value unit (gauss or degrees for the inputs).
	Unit string
}

// Header describes a target pixel grid for the external reprojection
// service: the bottom-face projection of a box. Naxis1 counts columns (x),
// Naxis2 rows (y).
type Header struct {
	Naxis1, Naxis2 int
	Mapping        Mapping
	Observatory    string
	RSunRefMm      float64
}
