package aggregate

import (
	"math"
	"sort"
	"strings"

	"github.com/zalepa/wfhsurvey/survey"
)

// regionalPreferences summarises answers per state. Rows without a region
// are left out.
//
// Table: region, counts, avg_wfh_days, avg_efficiency, sorted by region.
func regionalPreferences(t *survey.Table) (*Result, error) {
	regions, err := t.Texts(survey.ColRegion)
	if err != nil {
		return nil, err
	}
	cols, err := numbers(t, survey.ColDesiredDays, survey.ColEfficiency)
	if err != nil {
		return nil, err
	}
	days, eff := cols[0], cols[1]

	dayVals := make(map[string][]float64)
	effVals := make(map[string][]float64)
	for i, r := range regions {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		dayVals[r] = append(dayVals[r], days[i])
		effVals[r] = append(effVals[r], eff[i])
	}
	names := make([]string, 0, len(dayVals))
	for r := range dayVals {
		names = append(names, r)
	}
	sort.Strings(names)

	res := &Result{Table: Table{Columns: []string{"region", "counts", "avg_wfh_days", "avg_efficiency"}}}
	counts := make([]float64, len(names))
	surveyed := Metric{Name: "most_surveyed_state", Label: "Most Surveyed State", Value: math.NaN(), Unit: UnitCount}
	preference := Metric{Name: "highest_wfh_preference", Label: "Highest WFH Preference", Value: math.NaN(), Unit: UnitDays}
	efficient := Metric{Name: "most_efficient_state", Label: "Most Efficient State", Value: math.NaN(), Unit: UnitPercent}
	for i, r := range names {
		n := len(present(dayVals[r]))
		avgDays, avgEff := mean(dayVals[r]), mean(effVals[r])
		res.Table.Rows = append(res.Table.Rows, []any{r, n, avgDays, avgEff})
		counts[i] = float64(n)

		if math.IsNaN(surveyed.Value) || counts[i] > surveyed.Value {
			surveyed.Value, surveyed.Text = counts[i], r
		}
		if !math.IsNaN(avgDays) && (math.IsNaN(preference.Value) || avgDays > preference.Value) {
			preference.Value, preference.Text = avgDays, r
		}
		if !math.IsNaN(avgEff) && (math.IsNaN(efficient.Value) || avgEff > efficient.Value) {
			efficient.Value, efficient.Text = avgEff, r
		}
	}

	res.Metrics = Metrics{
		surveyed,
		{Name: "state_coverage", Label: "State Coverage", Value: float64(len(names)), Unit: UnitCount},
		preference,
		efficient,
	}
	res.Figure = Figure{
		Kind:       Choropleth,
		XLabel:     "State",
		YLabel:     "Number of Respondents",
		Categories: names,
		Series:     []Series{{Name: "Respondents", Values: counts}},
	}
	return res, nil
}
