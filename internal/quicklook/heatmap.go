package quicklook

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/heliodata/sunbox/grid"
)

// viridisColors matches the matplotlib colormap the instrument pipelines
// default to.
var viridisColors = []string{
	"#440154", "#482777", "#3e4989", "#31688e", "#26828e",
	"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
}

// MapHeatmapHTML renders a map's values as a heatmap on the pixel grid in a
// standalone HTML page. NaN cells are left blank; the color scale spans the
// finite values. An all-NaN map is an error.
func MapHeatmapHTML(w io.Writer, m *grid.Map, title string) error {
	lo, hi := math.Inf(1), math.Inf(-1)
	data := make([]opts.HeatMapData, 0, len(m.Data))
	for iy := 0; iy < m.NY; iy++ {
		for ix := 0; ix < m.NX; ix++ {
			v := m.At(iy, ix)
			if math.IsNaN(v) {
				continue
			}
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
			data = append(data, opts.HeatMapData{Value: []interface{}{ix, iy, v}})
		}
	}
	if len(data) == 0 {
		return fmt.Errorf("map has no finite values")
	}
	if hi == lo {
		hi = lo + 1
	}

	if title == "" {
		title = m.Meta.Quantity
	}
	subtitle := fmt.Sprintf("%dx%d", m.NX, m.NY)
	if m.Meta.Unit != "" {
		subtitle += " unit=" + m.Meta.Unit
	}
	if !m.Mapping.Time.IsZero() {
		subtitle += " " + m.Mapping.Time.UTC().Format("2006-01-02 15:04:05")
	}

	xs := make([]string, m.NX)
	for i := range xs {
		xs[i] = strconv.Itoa(i)
	}
	ys := make([]string, m.NY)
	for i := range ys {
		ys[i] = strconv.Itoa(i)
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     "900px",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			Data:      xs,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "category",
			Data:      ys,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        float32(lo),
			Max:        float32(hi),
			InRange:    &opts.VisualMapInRange{Color: viridisColors},
		}),
	)
	hm.AddSeries(title, data)

	var buf bytes.Buffer
	if err := hm.Render(&buf); err != nil {
		return fmt.Errorf("rendering heatmap: %w", err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("writing heatmap: %w", err)
	}
	return nil
}
