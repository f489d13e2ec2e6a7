package box

import (
	"errors"
	"fmt"
	"math"

	"github.com/heliodata/sunbox/frame"
)

// Bounds is an axis-aligned rectangle in the observer frame, held as its
// bottom-left and top-right sky positions.
type Bounds struct {
	BL, TR frame.Point
}

// Pair returns the two corner points, bottom-left first.
func (b Bounds) Pair() [2]frame.Point { return [2]frame.Point{b.BL, b.TR} }

// WidthArcsec returns the Tx extent.
func (b Bounds) WidthArcsec() float64 { return b.TR.TxArcsec() - b.BL.TxArcsec() }

// HeightArcsec returns the Ty extent.
func (b Bounds) HeightArcsec() float64 { return b.TR.TyArcsec() - b.BL.TyArcsec() }

// Bounds projects the endpoints of the given edges into the observer frame
// and returns their axis-aligned bounding rectangle. With padFrac > 0 every
// side is expanded by padFrac times the larger of the rectangle's width,
// height and the configured padding floor.
func (b *Box) Bounds(edges []Edge, padFrac float64) (Bounds, error) {
	if len(edges) == 0 {
		return Bounds{}, errors.New("no edges to bound")
	}
	var projected [8]frame.Point
	var seen [8]bool
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, e := range edges {
		for _, idx := range [2]int{e.I, e.J} {
			if !seen[idx] {
				p, err := b.corners[idx].To(b.obsFrame)
				if err != nil {
					return Bounds{}, fmt.Errorf("projecting box corner %d: %w", idx, err)
				}
				projected[idx] = p
				seen[idx] = true
			}
			p := projected[idx]
			minX = math.Min(minX, p.TxArcsec())
			maxX = math.Max(maxX, p.TxArcsec())
			minY = math.Min(minY, p.TyArcsec())
			maxY = math.Max(maxY, p.TyArcsec())
		}
	}
	if padFrac > 0 {
		pad := padFrac * math.Max(maxX-minX, math.Max(maxY-minY, b.padFloor))
		minX -= pad
		maxX += pad
		minY -= pad
		maxY += pad
	}
	return Bounds{
		BL: frame.NewPoint(b.obsFrame, minX, minY, math.NaN()),
		TR: frame.NewPoint(b.obsFrame, maxX, maxY, math.NaN()),
	}, nil
}

// BoundsAll bounds all 12 edges.
func (b *Box) BoundsAll(padFrac float64) (Bounds, error) {
	return b.Bounds(b.AllEdges(), padFrac)
}

// BottomBounds bounds the 4 bottom edges.
func (b *Box) BottomBounds(padFrac float64) (Bounds, error) {
	return b.Bounds(b.BottomEdges(), padFrac)
}

// FOV is the padded field of view used to crop source imagery: all edges
// padded by the configured fraction.
func (b *Box) FOV() (Bounds, error) {
	return b.BoundsAll(b.padFrac)
}
