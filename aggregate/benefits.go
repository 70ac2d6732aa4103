package aggregate

import (
	"math"
	"time"

	"github.com/zalepa/wfhsurvey/survey"
)

type aspect struct {
	column string
	label  string
	metric string
	help   string
}

var aspects = []aspect{
	{survey.ColBenefitCommute, "No Commute", "no_commute", "No Commute Impact"},
	{survey.ColBenefitQuiet, "Quiet Environment", "quiet_environment", "Quiet Environment"},
	{survey.ColBenefitMeetings, "Better Meetings", "better_meetings", "Better Meetings"},
	{survey.ColChallengeInternet, "Internet Issues", "internet_issues", "Internet Challenges"},
}

// benefitsChallenges melts the four indicator columns into (date, aspect)
// pairs and sums them.
//
// Table: date, aspect, count.
func benefitsChallenges(t *survey.Table) (*Result, error) {
	cols := make([]string, len(aspects))
	for i, a := range aspects {
		cols[i] = a.column
	}
	values, err := numbers(t, cols...)
	if err != nil {
		return nil, err
	}
	dates := t.Dates()

	sums := make(map[time.Time][]float64)
	seen := make(map[time.Time]bool)
	for row, d := range dates {
		s, ok := sums[d]
		if !ok {
			s = make([]float64, len(aspects))
			sums[d] = s
			seen[d] = true
		}
		for i := range aspects {
			if v := values[i][row]; !math.IsNaN(v) {
				s[i] += v
			}
		}
	}

	ordered := sortedDates(seen)
	res := &Result{Table: Table{Columns: []string{"date", "aspect", "count"}}}
	series := make([]Series, len(aspects))
	for i, a := range aspects {
		series[i] = Series{Name: a.label, Values: make([]float64, len(ordered))}
	}
	for j, d := range ordered {
		for i, a := range aspects {
			res.Table.Rows = append(res.Table.Rows, []any{d, a.label, sums[d][i]})
			series[i].Values[j] = sums[d][i]
		}
	}

	last := latest(dates)
	for i, a := range aspects {
		v := 0.0
		if s, ok := sums[last]; ok {
			v = s[i]
		}
		res.Metrics = append(res.Metrics, Metric{Name: a.metric, Label: a.help, Value: v, Unit: UnitCount})
	}
	res.Figure = Figure{
		Kind:       GroupedBar,
		XLabel:     "Date",
		YLabel:     "Number of Responses",
		Timeline:   true,
		Categories: monthLabels(ordered),
		Series:     series,
	}
	return res, nil
}
