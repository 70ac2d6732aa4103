package aggregate

import (
	"math"
	"sort"

	"github.com/zalepa/wfhsurvey/survey"
)

// employerEmployee cross-tabulates desired days against the days the
// employer plans to allow.
//
// Table: desired_days, employer_days, count.
func employerEmployee(t *survey.Table) (*Result, error) {
	cols, err := numbers(t, survey.ColDesiredDays, survey.ColEmployerDays)
	if err != nil {
		return nil, err
	}
	employee, employer := cols[0], cols[1]

	type pair struct{ employee, employer float64 }
	counts := make(map[pair]int)
	matches := 0
	for i := range employee {
		if employee[i] == employer[i] {
			matches++
		}
		if math.IsNaN(employee[i]) || math.IsNaN(employer[i]) {
			continue
		}
		counts[pair{employee[i], employer[i]}]++
	}

	pairs := make([]pair, 0, len(counts))
	for p := range counts {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].employee != pairs[j].employee {
			return pairs[i].employee < pairs[j].employee
		}
		return pairs[i].employer < pairs[j].employer
	})

	res := &Result{Table: Table{Columns: []string{"desired_days", "employer_days", "count"}}}
	var employeeKeys, employerKeys []float64
	seenEmployee := make(map[float64]bool)
	seenEmployer := make(map[float64]bool)
	for _, p := range pairs {
		res.Table.Rows = append(res.Table.Rows, []any{p.employee, p.employer, counts[p]})
		if !seenEmployee[p.employee] {
			seenEmployee[p.employee] = true
			employeeKeys = append(employeeKeys, p.employee)
		}
		if !seenEmployer[p.employer] {
			seenEmployer[p.employer] = true
			employerKeys = append(employerKeys, p.employer)
		}
	}
	sort.Float64s(employerKeys)

	categories := make([]string, len(employeeKeys))
	for i, k := range employeeKeys {
		categories[i] = formatCode(k)
	}
	var series []Series
	for _, b := range employerKeys {
		values := make([]float64, len(employeeKeys))
		for i, e := range employeeKeys {
			values[i] = float64(counts[pair{e, b}])
		}
		series = append(series, Series{Name: formatCode(b) + " days", Values: values})
	}

	alignment := math.NaN()
	if t.Len() > 0 {
		alignment = float64(matches) / float64(t.Len()) * 100
	}
	meanEmployee, meanEmployer := mean(employee), mean(employer)
	res.Metrics = Metrics{
		{Name: "alignment_pct", Label: "Perfect Alignment", Value: alignment, Unit: UnitPercent},
		{Name: "mean_employee_days", Label: "Avg. Employee Desire", Value: meanEmployee, Unit: UnitDays},
		{Name: "mean_employer_days", Label: "Avg. Employer Plan", Value: meanEmployer, Unit: UnitDays},
		{Name: "mean_difference", Label: "Employee vs Employer", Value: meanEmployee - meanEmployer, Unit: UnitDays},
	}
	res.Figure = Figure{
		Kind:       GroupedBar,
		XLabel:     "Employee Desired WFH Days",
		YLabel:     "Number of Respondents",
		Categories: categories,
		Series:     series,
	}
	return res, nil
}
