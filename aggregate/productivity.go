package aggregate

import (
	"math"
	"sort"
	"time"

	"github.com/zalepa/wfhsurvey/survey"
)

// daysPerWeek maps the categorical WFH-days answer to a numeric midpoint.
var daysPerWeek = map[string]float64{
	"0":   0,
	"1-2": 1.5,
	"3-4": 3.5,
	"5":   5,
}

// DaysPerWeek returns the numeric midpoint for a WFH-days category.
func DaysPerWeek(category string) (float64, bool) {
	v, ok := daysPerWeek[category]
	return v, ok
}

// productivity averages efficiency per wave and WFH-days category. Rows with
// an unmapped category are left out and reported as warnings; groups with no
// efficiency answers are omitted.
//
// Table: date, wfh_days, mean_efficiency.
func productivity(t *survey.Table) (*Result, error) {
	categories, err := t.Texts(survey.ColDesiredDaysCategory)
	if err != nil {
		return nil, err
	}
	eff, err := t.Numbers(survey.ColEfficiency)
	if err != nil {
		return nil, err
	}
	dates := t.Dates()

	type key struct {
		date time.Time
		days float64
	}
	type acc struct {
		sum float64
		n   int
	}
	groups := make(map[key]*acc)
	unmapped := make(map[string]int)
	for i, c := range categories {
		if c == "" {
			continue
		}
		days, ok := daysPerWeek[c]
		if !ok {
			unmapped[c]++
			continue
		}
		if math.IsNaN(eff[i]) {
			continue
		}
		k := key{dates[i], days}
		a := groups[k]
		if a == nil {
			a = &acc{}
			groups[k] = a
		}
		a.sum += eff[i]
		a.n++
	}

	keys := make([]key, 0, len(groups))
	dateSet := make(map[time.Time]bool)
	daySet := make(map[float64]bool)
	for k := range groups {
		keys = append(keys, k)
		dateSet[k.date] = true
		daySet[k.days] = true
	}
	sort.Slice(keys, func(i, j int) bool {
		if !keys[i].date.Equal(keys[j].date) {
			return keys[i].date.Before(keys[j].date)
		}
		return keys[i].days < keys[j].days
	})
	ordered := sortedDates(dateSet)
	dayKeys := make([]float64, 0, len(daySet))
	for d := range daySet {
		dayKeys = append(dayKeys, d)
	}
	sort.Float64s(dayKeys)

	dateIdx := make(map[time.Time]int, len(ordered))
	for i, d := range ordered {
		dateIdx[d] = i
	}
	dayIdx := make(map[float64]int, len(dayKeys))
	series := make([]Series, len(dayKeys))
	for i, d := range dayKeys {
		dayIdx[d] = i
		series[i] = Series{Name: formatCode(d) + " days", Values: nanSeries(len(ordered))}
	}

	res := &Result{
		Table:    Table{Columns: []string{"date", "wfh_days", "mean_efficiency"}},
		Warnings: warnings(survey.ColDesiredDaysCategory, unmapped),
	}
	byDays := make(map[float64][]float64)
	last := latest(ordered)
	var latestMeans []float64
	for _, k := range keys {
		m := groups[k].sum / float64(groups[k].n)
		res.Table.Rows = append(res.Table.Rows, []any{k.date, k.days, m})
		series[dayIdx[k.days]].Values[dateIdx[k.date]] = m
		byDays[k.days] = append(byDays[k.days], m)
		if k.date.Equal(last) {
			latestMeans = append(latestMeans, m)
		}
	}

	bestDays, bestEff := math.NaN(), math.NaN()
	for _, d := range dayKeys {
		m := mean(byDays[d])
		if math.IsNaN(bestEff) || m > bestEff {
			bestDays, bestEff = d, m
		}
	}
	spread := math.NaN()
	if len(latestMeans) > 0 {
		lo, hi := latestMeans[0], latestMeans[0]
		for _, m := range latestMeans[1:] {
			lo, hi = math.Min(lo, m), math.Max(hi, m)
		}
		spread = hi - lo
	}

	res.Metrics = Metrics{
		{Name: "most_productive_days", Label: "Most Productive WFH Schedule", Value: bestDays, Unit: UnitDays},
		{Name: "peak_efficiency", Label: "Peak Efficiency", Value: bestEff, Unit: UnitPercent},
		{Name: "latest_efficiency_range", Label: "Efficiency Range", Value: spread, Unit: UnitPoints},
	}
	res.Figure = Figure{
		Kind:       Line,
		XLabel:     "Date",
		YLabel:     "Efficiency (%)",
		Timeline:   true,
		Categories: monthLabels(ordered),
		Series:     series,
	}
	return res, nil
}
