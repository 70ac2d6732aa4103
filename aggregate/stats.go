package aggregate

import (
	"math"
	"sort"
	"strconv"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/zalepa/wfhsurvey/survey"
)

// numbers fetches several numeric columns, failing on the first one missing.
func numbers(t *survey.Table, cols ...string) ([][]float64, error) {
	out := make([][]float64, len(cols))
	for i, c := range cols {
		v, err := t.Numbers(c)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// present drops NaN values.
func present(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	return out
}

// mean skips NaN and is NaN for no values.
func mean(xs []float64) float64 {
	vals := present(xs)
	if len(vals) == 0 {
		return math.NaN()
	}
	return stat.Mean(vals, nil)
}

// median skips NaN and averages the two middle values of an even-sized set.
func median(xs []float64) float64 {
	vals := present(xs)
	n := len(vals)
	if n == 0 {
		return math.NaN()
	}
	sort.Float64s(vals)
	if n%2 == 1 {
		return vals[n/2]
	}
	return floats.Sum(vals[n/2-1:n/2+1]) / 2
}

// correlation is Pearson's r over rows where both values are present.
func correlation(xs, ys []float64) float64 {
	var x, y []float64
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		x = append(x, xs[i])
		y = append(y, ys[i])
	}
	if len(x) < 2 {
		return math.NaN()
	}
	return stat.Correlation(x, y, nil)
}

// latest returns the most recent date present, or the zero time.
func latest(dates []time.Time) time.Time {
	var max time.Time
	for _, d := range dates {
		if d.After(max) {
			max = d
		}
	}
	return max
}

func sortedDates(set map[time.Time]bool) []time.Time {
	out := make([]time.Time, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func monthLabels(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format("Jan 2006")
	}
	return out
}

// formatCode renders a numeric code the way it appears in the CSV.
func formatCode(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// isCode reports whether v is a whole number usable as a mapping key.
func isCode(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v == math.Trunc(v)
}

// warnings turns code counts into sorted UnmappedCodeWarnings.
func warnings(col string, unmapped map[string]int) []*survey.UnmappedCodeWarning {
	codes := make([]string, 0, len(unmapped))
	for c := range unmapped {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	out := make([]*survey.UnmappedCodeWarning, len(codes))
	for i, c := range codes {
		out[i] = &survey.UnmappedCodeWarning{Column: col, Code: c, Count: unmapped[c]}
	}
	return out
}

func nanSeries(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}
