package aggregate

import (
	"strings"

	"github.com/zalepa/wfhsurvey/survey"
)

// Chart names one of the eight aggregation routines.
type Chart int

const (
	DesiredDays Chart = iota
	EmployerEmployee
	BenefitsChallenges
	Productivity
	Industry
	Regional
	Reactions
	Commute
)

var chartKeys = [...]string{
	DesiredDays:        "desired_days",
	EmployerEmployee:   "employer_employee",
	BenefitsChallenges: "benefits_challenges",
	Productivity:       "productivity",
	Industry:           "industry",
	Regional:           "regional",
	Reactions:          "reactions",
	Commute:            "commute",
}

var chartTitles = [...]string{
	DesiredDays:        "Distribution of Desired WFH Days (Post-COVID)",
	EmployerEmployee:   "Work From Home Days: Alignment Between Employers and Employees",
	BenefitsChallenges: "Evolution of WFH Benefits and Challenges Over Time",
	Productivity:       "Productivity Trends by Desired WFH Days",
	Industry:           "WFH Efficiency Across Industries",
	Regional:           "WFH Survey Responses by State",
	Reactions:          "Employee Reactions to Return-to-Office Mandate",
	Commute:            "WFH Value by Commute Time: Pay Trade-off Analysis",
}

// String returns the selector value for c.
func (c Chart) String() string {
	if c < 0 || int(c) >= len(chartKeys) {
		return "unknown"
	}
	return chartKeys[c]
}

// Title returns the display title for c.
func (c Chart) Title() string {
	if c < 0 || int(c) >= len(chartTitles) {
		return ""
	}
	return chartTitles[c]
}

// All returns every chart in menu order.
func All() []Chart {
	charts := make([]Chart, len(chartKeys))
	for i := range charts {
		charts[i] = Chart(i)
	}
	return charts
}

// Lookup finds the chart for a selector value.
func Lookup(s string) (Chart, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, k := range chartKeys {
		if k == s {
			return Chart(i), true
		}
	}
	return DesiredDays, false
}

// Parse maps any selector value to a chart. Absent or unknown values select
// DesiredDays.
func Parse(s string) Chart {
	c, _ := Lookup(s)
	return c
}

// Run executes the routine for c against t. A missing column fails with
// *survey.SchemaMismatchError; nothing in t is modified.
func Run(t *survey.Table, c Chart) (*Result, error) {
	var (
		res *Result
		err error
	)
	switch c {
	case EmployerEmployee:
		res, err = employerEmployee(t)
	case BenefitsChallenges:
		res, err = benefitsChallenges(t)
	case Productivity:
		res, err = productivity(t)
	case Industry:
		res, err = industryEfficiency(t)
	case Regional:
		res, err = regionalPreferences(t)
	case Reactions:
		res, err = reactions(t)
	case Commute:
		res, err = commuteTradeoff(t)
	default:
		c = DesiredDays
		res, err = desiredDays(t)
	}
	if err != nil {
		return nil, err
	}
	res.Chart = c
	res.Figure.Title = c.Title()
	return res, nil
}
