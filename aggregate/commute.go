package aggregate

import (
	"math"

	"github.com/zalepa/wfhsurvey/survey"
)

var commuteBuckets = []struct {
	label string
	lo    float64
}{
	{"Small (0-30 min)", 0},
	{"Medium (31-60 min)", 31},
	{"Large (61+ min)", 61},
}

// CommuteCategory buckets a one-way commute in minutes. Negative and missing
// values have no bucket.
func CommuteCategory(minutes float64) (string, bool) {
	i := commuteBucket(minutes)
	if i < 0 {
		return "", false
	}
	return commuteBuckets[i].label, true
}

func commuteBucket(minutes float64) int {
	if math.IsNaN(minutes) || minutes < 0 {
		return -1
	}
	for i := len(commuteBuckets) - 1; i >= 0; i-- {
		if minutes >= commuteBuckets[i].lo {
			return i
		}
	}
	return -1
}

// commuteTradeoff relates commute length to the pay change respondents would
// accept to keep working from home.
//
// Table: commute_category, median_pay_change, mean_pay_change, count. Every
// bucket gets a row.
func commuteTradeoff(t *survey.Table) (*Result, error) {
	cols, err := numbers(t, survey.ColCommuteTime, survey.ColPayTradeoff)
	if err != nil {
		return nil, err
	}
	commute, pay := cols[0], cols[1]

	groups := make([][]float64, len(commuteBuckets))
	var xs, ys []float64
	for i, m := range commute {
		b := commuteBucket(m)
		if b < 0 || math.IsNaN(pay[i]) {
			continue
		}
		groups[b] = append(groups[b], pay[i])
		xs = append(xs, m)
		ys = append(ys, pay[i])
	}

	res := &Result{Table: Table{Columns: []string{"commute_category", "median_pay_change", "mean_pay_change", "count"}}}
	paycut := Metric{Name: "highest_paycut_group", Label: "Most Willing to Take a Pay Cut", Value: math.NaN(), Unit: UnitPercent}
	for i, b := range commuteBuckets {
		m := mean(groups[i])
		res.Table.Rows = append(res.Table.Rows, []any{b.label, median(groups[i]), m, len(groups[i])})
		res.Figure.Categories = append(res.Figure.Categories, b.label)
		res.Figure.Groups = append(res.Figure.Groups, Group{Name: b.label, Values: groups[i]})
		if !math.IsNaN(m) && (math.IsNaN(paycut.Value) || m < paycut.Value) {
			paycut.Value, paycut.Text = m, b.label
		}
	}

	res.Metrics = Metrics{
		paycut,
		{Name: "correlation", Label: "Commute vs Pay Change Correlation", Value: correlation(xs, ys)},
		{Name: "total_responses", Label: "Total Responses", Value: float64(len(xs)), Unit: UnitCount},
	}
	res.Figure.Kind = Box
	res.Figure.XLabel = "Daily Commute Duration"
	res.Figure.YLabel = "Acceptable Pay Change for WFH (%)"
	return res, nil
}
