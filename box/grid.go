package box

import (
	"iter"

	"gonum.org/v1/gonum/floats"

	"github.com/heliodata/sunbox/frame"
)

// Axis is one linearly spaced sampling axis: N points from Lo to Hi
// inclusive.
type Axis struct {
	N      int
	Lo, Hi float64
}

// Step returns the spacing between consecutive samples, 0 for a single-point
// axis.
func (a Axis) Step() float64 {
	if a.N < 2 {
		return 0
	}
	return (a.Hi - a.Lo) / float64(a.N-1)
}

// Seq iterates the axis samples in increasing order. The sequence is finite
// and restartable; the final sample is exactly Hi.
func (a Axis) Seq() iter.Seq[float64] {
	return func(yield func(float64) bool) {
		if a.N == 1 {
			yield(a.Lo)
			return
		}
		step := a.Step()
		for i := 0; i < a.N; i++ {
			v := a.Lo + float64(i)*step
			if i == a.N-1 {
				v = a.Hi
			}
			if !yield(v) {
				return
			}
		}
	}
}

// Values materializes the axis samples.
func (a Axis) Values() []float64 {
	if a.N == 1 {
		return []float64{a.Lo}
	}
	return floats.Span(make([]float64, a.N), a.Lo, a.Hi)
}

// SamplingGrid is the box's regular 3D sample lattice: one axis per working
// dimension, each spanning center +- dims/2 with the box's pixel count, plus
// the frame the sample coordinates are expressed in.
type SamplingGrid struct {
	X, Y, Z Axis
	Frame   frame.Frame
}

// SamplingGrid returns the box's sample lattice in the working frame.
func (b *Box) SamplingGrid() SamplingGrid {
	axis := func(i int, center float64) Axis {
		half := b.dimsMm[i] / 2
		return Axis{N: b.dimsPix[i], Lo: center - half, Hi: center + half}
	}
	return SamplingGrid{
		X:     axis(0, b.center.C1),
		Y:     axis(1, b.center.C2),
		Z:     axis(2, b.center.C3),
		Frame: b.workFrame,
	}
}
