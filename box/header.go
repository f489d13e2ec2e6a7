package box

import (
	"fmt"
	"math"

	"github.com/heliodata/sunbox/frame"
	"github.com/heliodata/sunbox/grid"
	"github.com/heliodata/sunbox/internal/units"
)

// BottomProjectionHeader describes the box's bottom face as a cylindrical
// equal-area pixel grid for the external reprojection service: one pixel per
// resolution step (rounded up), an angular scale of asin(res/rsun) degrees
// per pixel and the reference coordinate at the origin's heliographic
// position. The reference time is the origin's observation time and the
// observatory label is fixed, matching what the reprojection service expects
// for synthetic targets.
func (b *Box) BottomProjectionHeader() (grid.Header, error) {
	hgs, err := b.origin.To(frame.StonyhurstFrame(b.origin.Frame.Obs))
	if err != nil {
		return grid.Header{}, fmt.Errorf("projecting box origin to heliographic: %w", err)
	}
	nx := int(math.Ceil(b.dimsMm[0] / b.resMm))
	ny := int(math.Ceil(b.dimsMm[1] / b.resMm))
	scale := units.Rad2Deg(math.Asin(b.resMm / b.rsunMm))
	return grid.Header{
		Naxis1: nx,
		Naxis2: ny,
		Mapping: grid.Mapping{
			CRPix1: (float64(nx) + 1) / 2,
			CRPix2: (float64(ny) + 1) / 2,
			CRVal1: hgs.LonDeg(),
			CRVal2: hgs.LatDeg(),
			CDelt1: scale,
			CDelt2: scale,
			CType1: grid.CTypeHeliographicLonCEA,
			CType2: grid.CTypeHeliographicLatCEA,
			CUnit1: units.Deg,
			CUnit2: units.Deg,
			Time:   b.origin.Frame.Obs.Time,
		},
		Observatory: "None",
		RSunRefMm:   b.rsunMm,
	}, nil
}
