package aggregate

import (
	"math"
	"sort"

	"github.com/zalepa/wfhsurvey/survey"
)

// UnmappedLabel stands in for a code outside a mapping table.
const UnmappedLabel = "Unknown"

var industryNames = map[int]string{
	1:  "Agriculture",
	2:  "Arts & Entertainment",
	3:  "Finance & Insurance",
	4:  "Construction",
	5:  "Education",
	6:  "Health Care & Social Assistance",
	7:  "Hospitality & Food Services",
	8:  "Information",
	9:  "Manufacturing",
	10: "Mining",
	11: "Professional & Business Services",
	12: "Real Estate",
	13: "Retail Trade",
	14: "Transportation and Warehousing",
	15: "Utilities",
	16: "Wholesale Trade",
	17: "Government",
	18: "Other",
}

// IndustryLabel returns the display name for an industry code, or
// UnmappedLabel and false.
func IndustryLabel(code float64) (string, bool) {
	if isCode(code) {
		if name, ok := industryNames[int(code)]; ok {
			return name, true
		}
	}
	return UnmappedLabel, false
}

// industryEfficiency computes median efficiency per industry. Unmapped codes
// are counted in total_responses but kept out of every per-industry figure.
//
// Table: industry, median_efficiency, count, sorted by median descending.
func industryEfficiency(t *survey.Table) (*Result, error) {
	cols, err := numbers(t, survey.ColIndustry, survey.ColEfficiency)
	if err != nil {
		return nil, err
	}
	codes, eff := cols[0], cols[1]

	samples := make(map[string][]float64)
	respondents := make(map[string]int)
	unmapped := make(map[string]int)
	for i, code := range codes {
		if math.IsNaN(code) {
			continue
		}
		label, ok := IndustryLabel(code)
		if !ok {
			unmapped[formatCode(code)]++
			continue
		}
		respondents[label]++
		if !math.IsNaN(eff[i]) {
			samples[label] = append(samples[label], eff[i])
		}
	}

	type industry struct {
		label  string
		median float64
		mean   float64
	}
	list := make([]industry, 0, len(respondents))
	for label := range respondents {
		list = append(list, industry{label, median(samples[label]), mean(samples[label])})
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if math.IsNaN(a.median) != math.IsNaN(b.median) {
			return !math.IsNaN(a.median)
		}
		if a.median != b.median && !math.IsNaN(a.median) {
			return a.median > b.median
		}
		return a.label < b.label
	})

	res := &Result{
		Table:    Table{Columns: []string{"industry", "median_efficiency", "count"}},
		Warnings: warnings(survey.ColIndustry, unmapped),
	}
	most := Metric{Name: "most_efficient_industry", Label: "Most Efficient Industry", Value: math.NaN(), Unit: UnitPercent}
	least := Metric{Name: "least_efficient_industry", Label: "Least Efficient Industry", Value: math.NaN(), Unit: UnitPercent}
	for _, ind := range list {
		res.Table.Rows = append(res.Table.Rows, []any{ind.label, ind.median, respondents[ind.label]})
		res.Figure.Groups = append(res.Figure.Groups, Group{Name: ind.label, Values: samples[ind.label]})
		if math.IsNaN(ind.mean) {
			continue
		}
		if math.IsNaN(most.Value) || ind.mean > most.Value || (ind.mean == most.Value && ind.label < most.Text) {
			most.Value, most.Text = ind.mean, ind.label
		}
		if math.IsNaN(least.Value) || ind.mean < least.Value || (ind.mean == least.Value && ind.label < least.Text) {
			least.Value, least.Text = ind.mean, ind.label
		}
	}

	unmappedRows := 0
	for _, n := range unmapped {
		unmappedRows += n
	}
	res.Metrics = Metrics{
		most,
		least,
		{Name: "overall_mean_efficiency", Label: "Overall Average Efficiency", Value: mean(eff), Unit: UnitPercent},
		{Name: "total_responses", Label: "Total Responses", Value: float64(t.Len()), Unit: UnitCount},
		{Name: "unmapped_responses", Label: "Unmapped Industry Codes", Value: float64(unmappedRows), Unit: UnitCount},
	}
	res.Figure.Kind = Box
	res.Figure.XLabel = "Industry"
	res.Figure.YLabel = "Efficiency (%)"
	for _, g := range res.Figure.Groups {
		res.Figure.Categories = append(res.Figure.Categories, g.Name)
	}
	return res, nil
}
