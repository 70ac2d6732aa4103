package aggregate

import (
	"math"
	"strings"
	"time"

	"github.com/zalepa/wfhsurvey/survey"
)

type reaction struct {
	code   int
	label  string
	metric string
	help   string
}

var reactionCodes = []reaction{
	{1, "Comply and return", "comply_pct", "Would Comply"},
	{2, "Return & start looking for a WFH job", "look_for_wfh_job_pct", "Would Look for WFH Job"},
	{3, "Quit, regardless of getting another job", "quit_pct", "Would Quit Immediately"},
}

// ReactionLabel returns the answer text for a return-to-office reaction code.
func ReactionLabel(code float64) (string, bool) {
	if i := reactionIndex(code); i >= 0 {
		return reactionCodes[i].label, true
	}
	return UnmappedLabel, false
}

func reactionIndex(code float64) int {
	if isCode(code) {
		for i, r := range reactionCodes {
			if r.code == int(code) {
				return i
			}
		}
	}
	return -1
}

// reactions counts return-to-office answers per wave. Unmapped codes are
// dropped and reported as warnings.
//
// Table: date, reaction, count. Labels absent from a wave get no row.
func reactions(t *survey.Table) (*Result, error) {
	codes, err := t.Numbers(survey.ColReaction)
	if err != nil {
		return nil, err
	}
	dates := t.Dates()

	counts := make(map[time.Time][]int)
	unmapped := make(map[string]int)
	for i, code := range codes {
		if math.IsNaN(code) {
			continue
		}
		idx := reactionIndex(code)
		if idx < 0 {
			unmapped[formatCode(code)]++
			continue
		}
		c, ok := counts[dates[i]]
		if !ok {
			c = make([]int, len(reactionCodes))
			counts[dates[i]] = c
		}
		c[idx]++
	}

	seen := make(map[time.Time]bool, len(counts))
	for d := range counts {
		seen[d] = true
	}
	ordered := sortedDates(seen)

	res := &Result{
		Table:    Table{Columns: []string{"date", "reaction", "count"}},
		Warnings: warnings(survey.ColReaction, unmapped),
	}
	series := make([]Series, len(reactionCodes))
	for i, r := range reactionCodes {
		series[i] = Series{Name: r.label, Values: make([]float64, len(ordered))}
	}
	for j, d := range ordered {
		for i, r := range reactionCodes {
			n := counts[d][i]
			series[i].Values[j] = float64(n)
			if n > 0 {
				res.Table.Rows = append(res.Table.Rows, []any{d, r.label, n})
			}
		}
	}

	current := make([]float64, len(reactionCodes))
	var previous []float64
	if n := len(ordered); n > 0 {
		current = shares(counts[ordered[n-1]])
		if n > 1 {
			previous = shares(counts[ordered[n-2]])
		}
	}
	for i, r := range reactionCodes {
		res.Metrics = append(res.Metrics, Metric{Name: r.metric, Label: r.help, Value: current[i], Unit: UnitPercent})
	}
	if previous != nil {
		for i, r := range reactionCodes {
			res.Metrics = append(res.Metrics, Metric{
				Name:  strings.TrimSuffix(r.metric, "_pct") + "_change",
				Label: r.help + " (vs previous month)",
				Value: current[i] - previous[i],
				Unit:  UnitPoints,
			})
		}
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

// shares converts one wave's counts to percentages of that wave.
func shares(counts []int) []float64 {
	total := 0
	for _, n := range counts {
		total += n
	}
	out := make([]float64, len(counts))
	for i, n := range counts {
		out[i] = float64(n) / float64(total) * 100
	}
	return out
}
