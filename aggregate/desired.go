package aggregate

import (
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/zalepa/wfhsurvey/survey"
)

// dayDividers bound the unit buckets [d, d+1) for d = 0..4. The top bucket
// [5, +Inf) is closed upward.
var dayDividers = []float64{0, 1, 2, 3, 4, 5, math.Inf(1)}

// desiredDays buckets desired WFH days per week.
//
// Table: days, count.
func desiredDays(t *survey.Table) (*Result, error) {
	days, err := t.Numbers(survey.ColDesiredDays)
	if err != nil {
		return nil, err
	}

	var inRange []float64
	for _, d := range days {
		if !math.IsNaN(d) && d >= dayDividers[0] && d < dayDividers[len(dayDividers)-1] {
			inRange = append(inRange, d)
		}
	}
	sort.Float64s(inRange)
	counts := make([]float64, len(dayDividers)-1)
	if len(inRange) > 0 {
		stat.Histogram(counts, dayDividers, inRange, nil)
	}

	res := &Result{Table: Table{Columns: []string{"days", "count"}}}
	categories := make([]string, len(counts))
	mode, modeCount := math.NaN(), 0.0
	for i, c := range counts {
		res.Table.Rows = append(res.Table.Rows, []any{i, int(c)})
		categories[i] = strconv.Itoa(i)
		if c > modeCount {
			mode, modeCount = dayDividers[i], c
		}
	}

	res.Metrics = Metrics{
		{Name: "mean_days", Label: "Average Desired WFH Days", Value: mean(days), Unit: UnitDays},
		{Name: "mode_days", Label: "Most Common Choice", Value: mode, Unit: UnitDays},
		{Name: "total_responses", Label: "Total Responses", Value: float64(t.Len()), Unit: UnitCount},
	}
	res.Figure = Figure{
		Kind:       Histogram,
		XLabel:     "Desired WFH Days per Week",
		YLabel:     "Number of Responses",
		Categories: categories,
		Series:     []Series{{Name: "Responses", Values: counts}},
	}
	return res, nil
}
