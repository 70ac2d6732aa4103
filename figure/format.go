package figure

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/zalepa/wfhsurvey/aggregate"
)

// FormatMetric renders a metric for display, e.g. "CA (1,204)" or "42.5%".
func FormatMetric(m aggregate.Metric) string {
	v := formatValue(m.Value, m.Unit)
	if m.Text == "" {
		return v
	}
	if math.IsNaN(m.Value) {
		return m.Text
	}
	return m.Text + " (" + v + ")"
}

func formatValue(v float64, unit aggregate.Unit) string {
	if math.IsNaN(v) {
		return "- -"
	}
	switch unit {
	case aggregate.UnitPercent:
		return strconv.FormatFloat(v, 'f', 1, 64) + "%"
	case aggregate.UnitDays:
		return strconv.FormatFloat(v, 'f', 1, 64) + " days"
	case aggregate.UnitPoints:
		s := strconv.FormatFloat(v, 'f', 1, 64) + " pts"
		if v > 0 {
			s = "+" + s
		}
		return s
	case aggregate.UnitCount:
		return formatNum(v)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatCell renders one summary table cell.
func FormatCell(c any) string {
	switch v := c.(type) {
	case string:
		return v
	case int:
		return formatInt(int64(v))
	case float64:
		return formatNum(v)
	case time.Time:
		return v.Format("Jan 2006")
	case nil:
		return ""
	}
	return ""
}

// Subtitle joins the metrics into one line.
func Subtitle(ms aggregate.Metrics) string {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = m.Label + ": " + FormatMetric(m)
	}
	return strings.Join(parts, " | ")
}

// Sparkline draws values as block characters. NaN is a blank.
func Sparkline(values []float64) string {
	blocks := []rune("▁▂▃▄▅▆▇█")
	n := len(blocks)

	min, max := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if math.IsInf(min, 1) {
		return strings.Repeat(" ", len(values))
	}

	spread := max - min
	var sb strings.Builder
	for _, v := range values {
		if math.IsNaN(v) {
			sb.WriteRune(' ')
			continue
		}
		idx := n / 2
		if spread > 0 {
			idx = int((v - min) / spread * float64(n-1))
			if idx >= n {
				idx = n - 1
			}
		}
		sb.WriteRune(blocks[idx])
	}
	return sb.String()
}

// LastValue returns the last non-NaN value, or NaN.
func LastValue(vals []float64) float64 {
	for i := len(vals) - 1; i >= 0; i-- {
		if !math.IsNaN(vals[i]) {
			return vals[i]
		}
	}
	return math.NaN()
}

func formatNum(v float64) string {
	if math.IsNaN(v) {
		return "- -"
	}
	if v == float64(int64(v)) && math.Abs(v) < 1e15 {
		return formatInt(int64(v))
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func formatInt(v int64) string {
	s := strconv.FormatInt(v, 10)
	if v < 0 {
		return "-" + addCommas(s[1:])
	}
	return addCommas(s)
}

func addCommas(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var sb strings.Builder
	pre := n % 3
	if pre > 0 {
		sb.WriteString(s[:pre])
		sb.WriteByte(',')
	}
	for i := pre; i < n; i += 3 {
		sb.WriteString(s[i : i+3])
		if i+3 < n {
			sb.WriteByte(',')
		}
	}
	return sb.String()
}

func formatCompact(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e6:
		return strconv.FormatFloat(v/1e6, 'f', 1, 64) + "M"
	case abs >= 1e3:
		return strconv.FormatFloat(v/1e3, 'f', 0, 64) + "k"
	case abs > 0 && abs < 10 && v != math.Trunc(v):
		return strconv.FormatFloat(v, 'f', 1, 64)
	default:
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
}
