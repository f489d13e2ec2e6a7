// Package box builds the 3D analysis volume anchored to a point on the solar
// surface: its corners and edges, the observer-frame bounding rectangles used
// to crop source imagery, the regular sampling grid handed to the
// extrapolation solvers and the bottom-face projection header consumed by the
// external reprojection service.
package box

import (
	"errors"
	"fmt"
	"math"

	"github.com/heliodata/sunbox/frame"
	"github.com/heliodata/sunbox/internal/monitoring"
)

// Session defaults. The solar radius here is the analysis-session convention
// for the bottom projection scale, deliberately distinct from the frame
// geometry radius; the padding floor keeps the padded field of view from
// collapsing around degenerate boxes.
const (
	DefaultRSunMm         = 696.0
	DefaultPadFloorArcsec = 20.0
	DefaultPadFrac        = 0.25
)

// Option adjusts the session constants of a box under construction.
type Option func(*options)

type options struct {
	rsunMm   float64
	padFloor float64
	padFrac  float64
}

// WithRSun overrides the solar radius (Mm) used for the bottom projection
// pixel scale.
func WithRSun(mm float64) Option { return func(o *options) { o.rsunMm = mm } }

// WithPadFloor overrides the minimum padding base (arcsec) applied when a
// padded bounding rectangle is requested.
func WithPadFloor(arcsec float64) Option { return func(o *options) { o.padFloor = arcsec } }

// WithPadFrac overrides the fractional padding used by FOV.
func WithPadFrac(f float64) Option { return func(o *options) { o.padFrac = f } }

// Edge joins two box corners by their index in Corners. Bottom marks the four
// edges whose endpoints both sit at the minimum local z.
type Edge struct {
	I, J   int
	Bottom bool
}

// Box is a 3D analysis volume. All derived geometry (corners, edges, bounds
// inputs) is computed at construction; a Box is read-only afterwards except
// for the attached model volumes.
type Box struct {
	obsFrame  frame.Frame
	workFrame frame.Frame
	origin    frame.Point
	center    frame.Point

	dimsPix [3]int
	dimsMm  [3]float64
	resMm   float64

	corners   [8]frame.Point
	offsets   [8][3]float64
	bottom    []Edge
	nonBottom []Edge

	rsunMm   float64
	padFloor float64
	padFrac  float64

	models *FieldVolume
}

// New constructs a box from its working-frame center. The observer frame must
// be helioprojective (bounds are taken in its Tx/Ty axes) and the center must
// be a heliocentric Cartesian point; the origin is the center of the bottom
// face in any frame and is only transformed on demand. Pixel dimensions are
// (x, y, z) with z the height above the surface; the physical dimensions are
// dimsPix*resMm megameters.
func New(obsFrame frame.Frame, origin, center frame.Point, dimsPix [3]int, resMm float64, opts ...Option) (*Box, error) {
	if obsFrame.Kind != frame.Helioprojective {
		return nil, fmt.Errorf("observer frame is %s, need helioprojective", obsFrame.Kind)
	}
	if center.Frame.Kind != frame.Heliocentric {
		return nil, fmt.Errorf("box center is in %s, need a heliocentric frame", center.Frame.Kind)
	}
	for axis, n := range dimsPix {
		if n < 1 {
			return nil, fmt.Errorf("pixel dimension %d on axis %d, need >= 1", n, axis)
		}
	}
	if !(resMm > 0) {
		return nil, fmt.Errorf("resolution %g Mm, need > 0", resMm)
	}

	o := options{rsunMm: DefaultRSunMm, padFloor: DefaultPadFloorArcsec, padFrac: DefaultPadFrac}
	for _, opt := range opts {
		opt(&o)
	}

	b := &Box{
		obsFrame:  obsFrame,
		workFrame: center.Frame,
		origin:    origin,
		center:    center,
		dimsPix:   dimsPix,
		resMm:     resMm,
		rsunMm:    o.rsunMm,
		padFloor:  o.padFloor,
		padFrac:   o.padFrac,
		models:    NewFieldVolume(),
	}
	for axis := range dimsPix {
		b.dimsMm[axis] = float64(dimsPix[axis]) * resMm
	}
	b.buildGeometry()
	return b, nil
}

// NewAnchored constructs a box whose working frame is the heliocentric frame
// anchored at the origin point: the origin becomes the center of the bottom
// face and the box extends radially upward from it. The observer frame is the
// observation's helioprojective frame. A diagnostic is logged when the padded
// field of view reaches off the solar disk.
func NewAnchored(obs frame.Observation, origin frame.Point, dimsPix [3]int, resMm float64, opts ...Option) (*Box, error) {
	work, err := frame.HeliocentricFrame(obs, origin)
	if err != nil {
		return nil, fmt.Errorf("anchoring box frame: %w", err)
	}
	base, err := origin.To(work)
	if err != nil {
		return nil, fmt.Errorf("placing box origin: %w", err)
	}
	dz := float64(dimsPix[2]) * resMm
	center := frame.NewPoint(work, base.XMm(), base.YMm(), base.ZMm()+dz/2)

	b, err := New(frame.HelioprojectiveFrame(obs), origin, center, dimsPix, resMm, opts...)
	if err != nil {
		return nil, err
	}
	fov, err := b.FOV()
	if err != nil {
		return nil, fmt.Errorf("computing box field of view: %w", err)
	}
	for _, p := range fov.Pair() {
		on, err := frame.OnSolarDisk(p)
		if err != nil {
			return nil, fmt.Errorf("checking box field of view: %w", err)
		}
		if !on {
			monitoring.Logf("box field of view extends off the solar disk, check the box dimensions")
			break
		}
	}
	return b, nil
}

// buildGeometry derives the corner arena and the classified edge list. Corner
// order is the sign product over (x, y, z) with z varying fastest; edges are
// corner pairs differing in exactly one axis, scanned in combination order so
// that "first matching edge" selections are deterministic.
func (b *Box) buildGeometry() {
	hx, hy, hz := b.dimsMm[0]/2, b.dimsMm[1]/2, b.dimsMm[2]/2
	signs := [2]float64{-1, 1}
	i := 0
	for _, sx := range signs {
		for _, sy := range signs {
			for _, sz := range signs {
				b.offsets[i] = [3]float64{sx * hx, sy * hy, sz * hz}
				b.corners[i] = frame.NewPoint(b.workFrame,
					b.center.C1+sx*hx,
					b.center.C2+sy*hy,
					b.center.C3+sz*hz)
				i++
			}
		}
	}

	minZ := -hz
	for i := 0; i < len(b.offsets); i++ {
		for j := i + 1; j < len(b.offsets); j++ {
			if axesDiffering(b.offsets[i], b.offsets[j]) != 1 {
				continue
			}
			e := Edge{I: i, J: j}
			if b.offsets[i][2] == minZ && b.offsets[j][2] == minZ {
				e.Bottom = true
				b.bottom = append(b.bottom, e)
			} else {
				b.nonBottom = append(b.nonBottom, e)
			}
		}
	}
}

func axesDiffering(a, c [3]float64) int {
	n := 0
	for axis := range a {
		if a[axis] != c[axis] {
			n++
		}
	}
	return n
}

// Origin returns the center of the box's bottom face in its original frame.
func (b *Box) Origin() frame.Point { return b.origin }

// Center returns the geometric center in the working frame.
func (b *Box) Center() frame.Point { return b.center }

// WorkFrame returns the heliocentric frame the corners, edges and sampling
// grid are expressed in.
func (b *Box) WorkFrame() frame.Frame { return b.workFrame }

// ObserverFrame returns the helioprojective frame bounds are taken in.
func (b *Box) ObserverFrame() frame.Frame { return b.obsFrame }

// DimsPix returns the (x, y, z) pixel dimensions.
func (b *Box) DimsPix() [3]int { return b.dimsPix }

// DimsMm returns the physical dimensions, dimsPix*resolution.
func (b *Box) DimsMm() [3]float64 { return b.dimsMm }

// ResolutionMm returns the voxel edge length.
func (b *Box) ResolutionMm() float64 { return b.resMm }

// RSunMm returns the session solar radius used for the bottom projection.
func (b *Box) RSunMm() float64 { return b.rsunMm }

// PadFrac returns the fractional padding FOV applies.
func (b *Box) PadFrac() float64 { return b.padFrac }

// Corners returns the 8 corner points in the working frame.
func (b *Box) Corners() [8]frame.Point { return b.corners }

// BottomEdges returns the 4 edges whose endpoints both lie at minimum z.
func (b *Box) BottomEdges() []Edge { return append([]Edge(nil), b.bottom...) }

// NonBottomEdges returns the remaining 8 edges.
func (b *Box) NonBottomEdges() []Edge { return append([]Edge(nil), b.nonBottom...) }

// AllEdges returns the 12 edges, bottom edges first.
func (b *Box) AllEdges() []Edge {
	all := make([]Edge, 0, len(b.bottom)+len(b.nonBottom))
	all = append(all, b.bottom...)
	return append(all, b.nonBottom...)
}

// EdgePoints resolves an edge to its two corner points.
func (b *Box) EdgePoints(e Edge) [2]frame.Point {
	return [2]frame.Point{b.corners[e.I], b.corners[e.J]}
}

// ViewUpEdge returns the first bottom edge running along the working y axis
// (endpoints share x; bottom edges share z already). It orients the camera of
// an external renderer. ok is false when no edge qualifies, which only
// happens for degenerate geometry.
func (b *Box) ViewUpEdge() (Edge, bool) {
	for _, e := range b.bottom {
		if sameCoord(b.corners[e.I].C1, b.corners[e.J].C1) &&
			sameCoord(b.corners[e.I].C3, b.corners[e.J].C3) {
			return e, true
		}
	}
	return Edge{}, false
}

// NormalEdge returns the first non-bottom edge running along the working z
// axis (endpoints share x and y).
func (b *Box) NormalEdge() (Edge, bool) {
	for _, e := range b.nonBottom {
		if sameCoord(b.corners[e.I].C1, b.corners[e.J].C1) &&
			sameCoord(b.corners[e.I].C2, b.corners[e.J].C2) {
			return e, true
		}
	}
	return Edge{}, false
}

// ViewUpVector returns the view-up edge direction as a unit vector in the
// heliocentric frame oriented toward the given observation's observer,
// sign-normalized so its y component is non-negative.
func (b *Box) ViewUpVector(obs frame.Observation) ([3]float64, error) {
	e, ok := b.ViewUpEdge()
	if !ok {
		return [3]float64{}, errors.New("box has no view-up edge")
	}
	dst := frame.HeliocentricObserverFrame(obs)
	p, err := b.corners[e.I].To(dst)
	if err != nil {
		return [3]float64{}, fmt.Errorf("projecting view-up edge: %w", err)
	}
	q, err := b.corners[e.J].To(dst)
	if err != nil {
		return [3]float64{}, fmt.Errorf("projecting view-up edge: %w", err)
	}
	v := [3]float64{q.C1 - p.C1, q.C2 - p.C2, q.C3 - p.C3}
	if err := normalize(&v); err != nil {
		return [3]float64{}, fmt.Errorf("view-up edge: %w", err)
	}
	if v[1] < 0 {
		v[0], v[1], v[2] = -v[0], -v[1], -v[2]
	}
	return v, nil
}

// NormalVector returns the unit radial direction through the box origin in
// the heliocentric frame oriented toward the given observation's observer.
func (b *Box) NormalVector(obs frame.Observation) ([3]float64, error) {
	p, err := b.origin.To(frame.HeliocentricObserverFrame(obs))
	if err != nil {
		return [3]float64{}, fmt.Errorf("projecting box origin: %w", err)
	}
	v := [3]float64{p.C1, p.C2, p.C3}
	if err := normalize(&v); err != nil {
		return [3]float64{}, fmt.Errorf("box origin direction: %w", err)
	}
	return v, nil
}

func normalize(v *[3]float64) error {
	n := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if n == 0 || math.IsNaN(n) {
		return errors.New("degenerate direction vector")
	}
	v[0] /= n
	v[1] /= n
	v[2] /= n
	return nil
}

// sameCoord compares coordinates the way the edge selectors need: equal up to
// accumulated rounding in the corner arithmetic.
func sameCoord(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}
