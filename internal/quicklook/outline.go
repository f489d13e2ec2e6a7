// Package quicklook renders diagnostic views of boxes and maps: the
// projected box outline as a PNG and map values as a standalone HTML
// heatmap page. Renderers write to the caller's writer and open no files.
package quicklook

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/heliodata/sunbox/box"
)

// BoxOutlinePNG draws the box's edges projected into the observer frame,
// bottom edges dashed, with the padded field of view overlaid as a gray
// rectangle.
func BoxOutlinePNG(w io.Writer, b *box.Box, padFrac float64) error {
	p := plot.New()
	d := b.DimsMm()
	p.Title.Text = fmt.Sprintf("Box %.0fx%.0fx%.0f Mm", d[0], d[1], d[2])
	p.X.Label.Text = "Solar X (arcsec)"
	p.Y.Label.Text = "Solar Y (arcsec)"

	obsFrame := b.ObserverFrame()
	edgeColor := color.RGBA{R: 214, G: 39, B: 40, A: 255}

	var bottomLegend, sideLegend bool
	for _, e := range b.AllEdges() {
		pts := b.EdgePoints(e)
		xy := make(plotter.XYs, 0, 2)
		for _, pt := range pts {
			proj, err := pt.To(obsFrame)
			if err != nil {
				return fmt.Errorf("projecting box edge: %w", err)
			}
			xy = append(xy, plotter.XY{X: proj.TxArcsec(), Y: proj.TyArcsec()})
		}
		line, err := plotter.NewLine(xy)
		if err != nil {
			return fmt.Errorf("drawing box edge: %w", err)
		}
		line.Color = edgeColor
		line.Width = vg.Points(1)
		if e.Bottom {
			line.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		}
		p.Add(line)
		if e.Bottom && !bottomLegend {
			p.Legend.Add("bottom", line)
			bottomLegend = true
		}
		if !e.Bottom && !sideLegend {
			p.Legend.Add("side", line)
			sideLegend = true
		}
	}

	fov, err := b.Bounds(b.AllEdges(), padFrac)
	if err != nil {
		return fmt.Errorf("computing field of view: %w", err)
	}
	x0, y0 := fov.BL.TxArcsec(), fov.BL.TyArcsec()
	x1, y1 := fov.TR.TxArcsec(), fov.TR.TyArcsec()
	rect, err := plotter.NewLine(plotter.XYs{
		{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}, {X: x0, Y: y0},
	})
	if err != nil {
		return fmt.Errorf("drawing field of view: %w", err)
	}
	rect.Color = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	rect.Width = vg.Points(0.5)
	rect.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
	p.Add(rect)
	p.Legend.Add("field of view", rect)
	p.Legend.Top = true

	wt, err := p.WriterTo(6*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("rendering box outline: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("writing box outline: %w", err)
	}
	return nil
}
