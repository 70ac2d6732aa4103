package figure

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/zalepa/wfhsurvey/aggregate"
)

const (
	pageWidth  = 10 * vg.Inch
	pageHeight = 6 * vg.Inch

	// plotArea approximates the data area width used to size bars and boxes.
	plotArea = 8.5 * vg.Inch
)

var chartBlue = color.RGBA{R: 31, G: 119, B: 180, A: 255}

// Formats lists the file extensions Save understands.
var Formats = []string{".pdf", ".png", ".svg"}

// Plot draws a result as a static chart.
func Plot(res *aggregate.Result) (*plot.Plot, error) {
	f := res.Figure
	p := plot.New()
	// The Liberation fonts used by the PDF backend have no dash glyphs.
	p.Title.Text = strings.NewReplacer("\u2014", "-", "\u2013", "-").Replace(f.Title)
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = f.XLabel
	p.Y.Label.Text = f.YLabel
	p.BackgroundColor = color.White
	p.Legend.Top = true

	var err error
	switch f.Kind {
	case aggregate.Histogram, aggregate.GroupedBar, aggregate.Choropleth:
		err = drawBars(p, f)
	case aggregate.Box:
		err = drawBoxes(p, f)
	case aggregate.Line:
		err = drawLines(p, f)
	default:
		err = fmt.Errorf("figure kind %d not supported", f.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("plotting %s: %w", res.Chart, err)
	}
	p.Add(plotter.NewGrid())
	return p, nil
}

// Save draws res to path. The extension picks the format.
func Save(res *aggregate.Result, path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !supported(ext) {
		return fmt.Errorf("unsupported output format %q (want one of %s)", ext, strings.Join(Formats, ", "))
	}
	p, err := Plot(res)
	if err != nil {
		return err
	}
	return p.Save(pageWidth, pageHeight, path)
}

// WritePNG draws res as a PNG image to w.
func WritePNG(w io.Writer, res *aggregate.Result) error {
	p, err := Plot(res)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(pageWidth, pageHeight, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

func supported(ext string) bool {
	for _, f := range Formats {
		if f == ext {
			return true
		}
	}
	return false
}

func seriesColor(i, n int) color.Color {
	if n == 1 {
		return chartBlue
	}
	return plotutil.Color(i)
}

func drawBars(p *plot.Plot, f aggregate.Figure) error {
	n := len(f.Series)
	if n == 0 || len(f.Categories) == 0 {
		return nil
	}
	width := plotArea / vg.Length(len(f.Categories)*n) * 0.8
	if width > vg.Points(40) {
		width = vg.Points(40)
	}
	for i, s := range f.Series {
		vals := make(plotter.Values, len(s.Values))
		for j, v := range s.Values {
			if !math.IsNaN(v) {
				vals[j] = v
			}
		}
		bars, err := plotter.NewBarChart(vals, width)
		if err != nil {
			return err
		}
		bars.Color = seriesColor(i, n)
		bars.LineStyle.Width = 0
		bars.Offset = vg.Length(float64(i)-float64(n-1)/2) * width
		p.Add(bars)
		if n > 1 {
			p.Legend.Add(s.Name, bars)
		}
	}
	p.NominalX(f.Categories...)
	p.Y.Min = 0
	p.Y.Tick.Marker = numTicks{}
	if len(f.Categories) > 8 {
		rotateX(p)
	}
	return nil
}

func drawBoxes(p *plot.Plot, f aggregate.Figure) error {
	if len(f.Groups) == 0 {
		return nil
	}
	width := plotArea / vg.Length(len(f.Groups)) * 0.6
	if width > vg.Points(60) {
		width = vg.Points(60)
	}
	names := make([]string, len(f.Groups))
	for i, g := range f.Groups {
		names[i] = g.Name
		if len(g.Values) == 0 {
			continue
		}
		box, err := plotter.NewBoxPlot(width, float64(i), plotter.Values(g.Values))
		if err != nil {
			return err
		}
		box.FillColor = seriesColor(i, len(f.Groups))
		p.Add(box)
	}
	p.NominalX(names...)
	if len(names) > 4 {
		rotateX(p)
	}
	return nil
}

func drawLines(p *plot.Plot, f aggregate.Figure) error {
	n := len(f.Series)
	for i, s := range f.Series {
		var first plot.Thumbnailer
		for _, run := range runs(s.Values) {
			line, points, err := plotter.NewLinePoints(run)
			if err != nil {
				return err
			}
			line.Color = seriesColor(i, n)
			line.Width = vg.Points(2)
			points.Color = seriesColor(i, n)
			points.Radius = vg.Points(3)
			points.Shape = draw.CircleGlyph{}
			p.Add(line, points)
			if first == nil {
				first = line
			}
		}
		if first != nil && n > 1 {
			p.Legend.Add(s.Name, first)
		}
	}
	p.X.Tick.Marker = dateTicks(f.Categories)
	p.X.Min = -0.5
	p.X.Max = float64(len(f.Categories)) - 0.5
	rotateX(p)
	p.Y.Tick.Marker = numTicks{}
	return nil
}

// runs splits a series into unbroken stretches of present values.
func runs(values []float64) []plotter.XYs {
	var out []plotter.XYs
	var cur plotter.XYs
	for i, v := range values {
		if math.IsNaN(v) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: float64(i), Y: v})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

func rotateX(p *plot.Plot) {
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
}

type dateTicks []string

func (dt dateTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	n := len(dt)
	if n == 0 {
		return ticks
	}

	step := 1
	if n > 12 {
		step = (n + 11) / 12
	}

	for i := 0; i < n; i++ {
		t := plot.Tick{Value: float64(i)}
		if i%step == 0 {
			t.Label = dt[i]
		}
		ticks = append(ticks, t)
	}
	return ticks
}

type numTicks struct{}

func (numTicks) Ticks(min, max float64) []plot.Tick {
	t := plot.DefaultTicks{}
	ticks := t.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = formatCompact(ticks[i].Value)
		}
	}
	return ticks
}
