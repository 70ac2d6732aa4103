package figure

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/stat"

	"github.com/zalepa/wfhsurvey/aggregate"
)

// missing is how echarts marks an absent point.
const missing = "-"

type chartRenderer interface {
	Render(w io.Writer) error
}

// WriteHTML renders res as a self-contained interactive page.
func WriteHTML(w io.Writer, res *aggregate.Result) error {
	f := res.Figure
	globals := []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: f.Title,
			Width:     "1100px",
			Height:    "620px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    f.Title,
			Subtitle: Subtitle(res.Metrics),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
		charts.WithLegendOpts(opts.Legend{Show: len(f.Series) > 1, Top: "bottom"}),
	}
	axes := []charts.GlobalOpts{
		charts.WithXAxisOpts(opts.XAxis{Name: f.XLabel}),
		charts.WithYAxisOpts(opts.YAxis{Name: f.YLabel}),
	}

	var c chartRenderer
	switch f.Kind {
	case aggregate.Histogram, aggregate.GroupedBar:
		bar := charts.NewBar()
		bar.SetGlobalOptions(append(globals, axes...)...)
		bar.SetXAxis(f.Categories)
		for _, s := range f.Series {
			data := make([]opts.BarData, len(s.Values))
			for i, v := range s.Values {
				data[i] = opts.BarData{Value: value(v)}
			}
			bar.AddSeries(s.Name, data)
		}
		c = bar
	case aggregate.Box:
		box := charts.NewBoxPlot()
		box.SetGlobalOptions(append(globals, axes...)...)
		box.SetXAxis(f.Categories)
		data := make([]opts.BoxPlotData, len(f.Groups))
		for i, g := range f.Groups {
			data[i] = opts.BoxPlotData{Name: g.Name, Value: FiveNumbers(g.Values)}
		}
		box.AddSeries(f.YLabel, data)
		c = box
	case aggregate.Line:
		line := charts.NewLine()
		line.SetGlobalOptions(append(globals, axes...)...)
		line.SetXAxis(f.Categories)
		for _, s := range f.Series {
			data := make([]opts.LineData, len(s.Values))
			for i, v := range s.Values {
				data[i] = opts.LineData{Value: value(v)}
			}
			line.AddSeries(s.Name, data, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: true}))
		}
		c = line
	case aggregate.Choropleth:
		m := charts.NewMap()
		m.RegisterMapType("USA")
		var max float32
		var data []opts.MapData
		if len(f.Series) > 0 {
			s := f.Series[0]
			for i, code := range f.Categories {
				v := s.Values[i]
				if !math.IsNaN(v) && float32(v) > max {
					max = float32(v)
				}
				data = append(data, opts.MapData{Name: StateName(code), Value: value(v)})
			}
		}
		m.SetGlobalOptions(append(globals, charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: true,
			Min:        0,
			Max:        max,
			InRange:    &opts.VisualMapInRange{Color: []string{"#deebf7", "#3182bd", "#08519c"}},
		}))...)
		m.AddSeries(f.YLabel, data)
		c = m
	default:
		return fmt.Errorf("figure kind %d not supported", f.Kind)
	}
	return c.Render(w)
}

// FiveNumbers returns min, lower quartile, median, upper quartile and max.
// Quartiles use stat.LinInterp. It is empty for no values.
func FiveNumbers(values []float64) []float64 {
	if len(values) == 0 {
		return []float64{}
	}
	x := append([]float64(nil), values...)
	sort.Float64s(x)
	return []float64{
		x[0],
		stat.Quantile(0.25, stat.LinInterp, x, nil),
		stat.Quantile(0.5, stat.LinInterp, x, nil),
		stat.Quantile(0.75, stat.LinInterp, x, nil),
		x[len(x)-1],
	}
}

func value(v float64) any {
	if math.IsNaN(v) {
		return missing
	}
	return v
}
