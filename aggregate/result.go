package aggregate

import (
	"encoding/json"
	"math"

	"github.com/zalepa/wfhsurvey/survey"
)

// Result is what one routine hands to the presentation layer.
type Result struct {
	Chart    Chart
	Table    Table
	Metrics  Metrics
	Figure   Figure
	Warnings []*survey.UnmappedCodeWarning
}

// Table is a summary table. Cells are string, int, float64 (NaN when
// undefined) or time.Time.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// MarshalJSON writes NaN cells as null.
func (t Table) MarshalJSON() ([]byte, error) {
	rows := make([][]any, len(t.Rows))
	for i, row := range t.Rows {
		out := make([]any, len(row))
		for j, c := range row {
			if f, ok := c.(float64); ok && math.IsNaN(f) {
				continue
			}
			out[j] = c
		}
		rows[i] = out
	}
	return json.Marshal(struct {
		Columns []string `json:"columns"`
		Rows    [][]any  `json:"rows"`
	}{t.Columns, rows})
}

// Unit tells the presentation layer how to format a metric value.
type Unit string

const (
	UnitNone    Unit = ""
	UnitCount   Unit = "count"
	UnitDays    Unit = "days"
	UnitPercent Unit = "percent"
	UnitPoints  Unit = "points" // percentage-point change
)

// Metric is one headline number. Text carries a categorical answer such as a
// state code, with Value as its supporting figure.
type Metric struct {
	Name  string
	Label string
	Value float64
	Text  string
	Unit  Unit
}

// MarshalJSON writes a NaN value as null.
func (m Metric) MarshalJSON() ([]byte, error) {
	var v *float64
	if !math.IsNaN(m.Value) {
		v = &m.Value
	}
	return json.Marshal(struct {
		Name  string   `json:"name"`
		Label string   `json:"label"`
		Value *float64 `json:"value"`
		Text  string   `json:"text,omitempty"`
		Unit  Unit     `json:"unit,omitempty"`
	}{m.Name, m.Label, v, m.Text, m.Unit})
}

// Metrics keeps display order.
type Metrics []Metric

// Get returns the metric called name.
func (ms Metrics) Get(name string) (Metric, bool) {
	for _, m := range ms {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}

// Value returns the value of the metric called name, or NaN.
func (ms Metrics) Value(name string) float64 {
	m, ok := ms.Get(name)
	if !ok {
		return math.NaN()
	}
	return m.Value
}

// Kind selects how a Figure is drawn.
type Kind int

const (
	Histogram Kind = iota
	GroupedBar
	Box
	Line
	Choropleth
)

// Series is one named run of values aligned with Figure.Categories. NaN is a
// gap.
type Series struct {
	Name   string
	Values []float64
}

// Group is one box of a box plot: raw samples, no NaN.
type Group struct {
	Name   string
	Values []float64
}

// Figure describes a chart independently of the drawing library.
type Figure struct {
	Kind       Kind
	Timeline   bool // Categories are survey months in order
	Title      string
	XLabel     string
	YLabel     string
	Categories []string
	Series     []Series
	Groups     []Group
}
