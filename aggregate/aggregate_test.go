package aggregate

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zalepa/wfhsurvey/survey"
)

// table builds a survey table from comma-separated lines.
func table(t *testing.T, header string, lines ...string) *survey.Table {
	t.Helper()
	records := make([][]string, len(lines))
	for i, l := range lines {
		records[i] = strings.Split(l, ",")
	}
	tbl, err := survey.Parse(strings.Split(header, ","), records)
	require.NoError(t, err)
	return tbl
}

var (
	may  = time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC)
	june = time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)
)

func metricText(t *testing.T, ms Metrics, name string) string {
	t.Helper()
	m, ok := ms.Get(name)
	require.True(t, ok, "metric %s missing", name)
	return m.Text
}

func TestParseSelector(t *testing.T) {
	tests := []struct {
		input string
		want  Chart
	}{
		{"", DesiredDays},
		{"desired_days", DesiredDays},
		{"employer_employee", EmployerEmployee},
		{"benefits_challenges", BenefitsChallenges},
		{"productivity", Productivity},
		{"industry", Industry},
		{"regional", Regional},
		{"reactions", Reactions},
		{" Commute ", Commute},
		{"pie", DesiredDays},
	}
	for _, tt := range tests {
		if got := Parse(tt.input); got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}

	_, ok := Lookup("pie")
	assert.False(t, ok)
	assert.Len(t, All(), 8)
	for _, c := range All() {
		assert.NotEmpty(t, c.Title())
		assert.Equal(t, c, Parse(c.String()))
	}
}

func TestDesiredDays(t *testing.T) {
	tbl := table(t, "date,wfh_days_postCOVID_ss",
		"2023m05,0", "2023m05,0", "2023m05,1", "2023m05,5", "2023m06,5", "2023m06,5")

	res, err := Run(tbl, DesiredDays)
	require.NoError(t, err)
	assert.Equal(t, DesiredDays, res.Chart)
	assert.InDelta(t, 2.67, res.Metrics.Value("mean_days"), 0.005)
	assert.Equal(t, 5.0, res.Metrics.Value("mode_days"))
	assert.Equal(t, 6.0, res.Metrics.Value("total_responses"))
	assert.Equal(t, [][]any{{0, 2}, {1, 1}, {2, 0}, {3, 0}, {4, 0}, {5, 3}}, res.Table.Rows)
	assert.Equal(t, Histogram, res.Figure.Kind)
	assert.Equal(t, DesiredDays.Title(), res.Figure.Title)
}

func TestDesiredDaysTopBucketIsOpen(t *testing.T) {
	tbl := table(t, "date,wfh_days_postCOVID_ss", "2023m05,5", "2023m05,6", "2023m05,7", "2023m05,-1")

	res, err := Run(tbl, DesiredDays)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0}, {5, 3}}, res.Table.Rows)
	assert.Equal(t, 5.0, res.Metrics.Value("mode_days"))
	assert.Equal(t, 4.0, res.Metrics.Value("total_responses"))
	assert.Equal(t, []float64{0, 0, 0, 0, 0, 3}, res.Figure.Series[0].Values)
}

func TestDesiredDaysModeTie(t *testing.T) {
	tbl := table(t, "date,wfh_days_postCOVID_ss", "2023m05,3", "2023m05,1", "2023m05,3", "2023m05,1", "2023m05,NA")

	res, err := Run(tbl, DesiredDays)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Metrics.Value("mode_days"))
	assert.Equal(t, 2.0, res.Metrics.Value("mean_days"))
	assert.Equal(t, 5.0, res.Metrics.Value("total_responses"))
}

func TestEmployerEmployee(t *testing.T) {
	tbl := table(t, "date,wfh_days_postCOVID_ss,wfh_days_postCOVID_boss_ss",
		"2023m05,5,5", "2023m05,3,2", "2023m05,0,0", "2023m05,5,3")

	res, err := Run(tbl, EmployerEmployee)
	require.NoError(t, err)
	assert.Equal(t, 50.0, res.Metrics.Value("alignment_pct"))
	assert.Equal(t, 3.25, res.Metrics.Value("mean_employee_days"))
	assert.Equal(t, 2.5, res.Metrics.Value("mean_employer_days"))
	assert.Equal(t, 0.75, res.Metrics.Value("mean_difference"))
	assert.Equal(t, [][]any{{0.0, 0.0, 1}, {3.0, 2.0, 1}, {5.0, 3.0, 1}, {5.0, 5.0, 1}}, res.Table.Rows)
	assert.Equal(t, []string{"0", "3", "5"}, res.Figure.Categories)
	require.Len(t, res.Figure.Series, 4)
	assert.Equal(t, "0 days", res.Figure.Series[0].Name)
}

func TestEmployerEmployeeMissingPairs(t *testing.T) {
	tbl := table(t, "date,wfh_days_postCOVID_ss,wfh_days_postCOVID_boss_ss",
		"2023m05,2,2", "2023m05,NA,2", "2023m05,,")

	res, err := Run(tbl, EmployerEmployee)
	require.NoError(t, err)
	assert.Len(t, res.Table.Rows, 1)
	assert.InDelta(t, 33.33, res.Metrics.Value("alignment_pct"), 0.01)
}

func TestBenefitsChallenges(t *testing.T) {
	tbl := table(t, "date,wfh_top3benefits_commute,wfh_top3benefits_quiet,wfh_top3benefits_meetings,lesseff_reasons_internet",
		"2023m05,1,0,1,0",
		"2023m05,1,1,NA,0",
		"2023m06,0,1,1,1",
	)

	res, err := Run(tbl, BenefitsChallenges)
	require.NoError(t, err)
	require.Len(t, res.Table.Rows, 8)
	assert.Equal(t, []any{may, "No Commute", 2.0}, res.Table.Rows[0])
	assert.Equal(t, []any{may, "Better Meetings", 1.0}, res.Table.Rows[2])
	assert.Equal(t, []any{june, "Internet Issues", 1.0}, res.Table.Rows[7])

	assert.Equal(t, 0.0, res.Metrics.Value("no_commute"))
	assert.Equal(t, 1.0, res.Metrics.Value("quiet_environment"))
	assert.Equal(t, 1.0, res.Metrics.Value("better_meetings"))
	assert.Equal(t, 1.0, res.Metrics.Value("internet_issues"))
	assert.Equal(t, []string{"May 2023", "Jun 2023"}, res.Figure.Categories)
}

func TestProductivity(t *testing.T) {
	tbl := table(t, "date,wfh_days_postCOVID_s,wfh_eff_COVID_quant",
		"2023m05,1-2,100",
		"2023m05,1-2,80",
		"2023m05,5,120",
		"2023m06,1-2,110",
		"2023m06,5,100",
		"2023m06,bogus,50",
		"2023m06,0,NA",
		"2023m06,,90",
	)

	res, err := Run(tbl, Productivity)
	require.NoError(t, err)
	assert.Equal(t, [][]any{
		{may, 1.5, 90.0},
		{may, 5.0, 120.0},
		{june, 1.5, 110.0},
		{june, 5.0, 100.0},
	}, res.Table.Rows)
	assert.Equal(t, 5.0, res.Metrics.Value("most_productive_days"))
	assert.Equal(t, 110.0, res.Metrics.Value("peak_efficiency"))
	assert.Equal(t, 10.0, res.Metrics.Value("latest_efficiency_range"))

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, survey.ColDesiredDaysCategory, res.Warnings[0].Column)
	assert.Equal(t, "bogus", res.Warnings[0].Code)
	assert.Equal(t, 1, res.Warnings[0].Count)

	require.Len(t, res.Figure.Series, 2)
	assert.Equal(t, "1.5 days", res.Figure.Series[0].Name)
}

func TestDaysPerWeek(t *testing.T) {
	v, ok := DaysPerWeek("3-4")
	assert.True(t, ok)
	assert.Equal(t, 3.5, v)
	_, ok = DaysPerWeek("6")
	assert.False(t, ok)
}

func TestIndustryLabel(t *testing.T) {
	name, ok := IndustryLabel(6)
	assert.True(t, ok)
	assert.Equal(t, "Health Care & Social Assistance", name)

	for _, code := range []float64{99, 0, 6.5, math.NaN()} {
		name, ok := IndustryLabel(code)
		assert.False(t, ok, "code %v", code)
		assert.Equal(t, UnmappedLabel, name)
	}
}

func TestIndustryEfficiency(t *testing.T) {
	tbl := table(t, "date,work_industry,wfh_eff_COVID_quant",
		"2023m05,6,100",
		"2023m05,6,90",
		"2023m05,3,80",
		"2023m05,99,50",
		"2023m05,,70",
	)

	res, err := Run(tbl, Industry)
	require.NoError(t, err)
	assert.Equal(t, [][]any{
		{"Health Care & Social Assistance", 95.0, 2},
		{"Finance & Insurance", 80.0, 1},
	}, res.Table.Rows)
	assert.Equal(t, "Health Care & Social Assistance", metricText(t, res.Metrics, "most_efficient_industry"))
	assert.Equal(t, 95.0, res.Metrics.Value("most_efficient_industry"))
	assert.Equal(t, "Finance & Insurance", metricText(t, res.Metrics, "least_efficient_industry"))
	assert.Equal(t, 78.0, res.Metrics.Value("overall_mean_efficiency"))
	assert.Equal(t, 5.0, res.Metrics.Value("total_responses"))
	assert.Equal(t, 1.0, res.Metrics.Value("unmapped_responses"))

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, &survey.UnmappedCodeWarning{Column: survey.ColIndustry, Code: "99", Count: 1}, res.Warnings[0])
	assert.Equal(t, Box, res.Figure.Kind)
	assert.Equal(t, []float64{100, 90}, res.Figure.Groups[0].Values)
}

func TestIndustryMedianTiesSortByName(t *testing.T) {
	tbl := table(t, "date,work_industry,wfh_eff_COVID_quant",
		"2023m05,13,90",
		"2023m05,2,90",
		"2023m05,5,NA",
	)

	res, err := Run(tbl, Industry)
	require.NoError(t, err)
	require.Len(t, res.Table.Rows, 3)
	assert.Equal(t, "Arts & Entertainment", res.Table.Rows[0][0])
	assert.Equal(t, "Retail Trade", res.Table.Rows[1][0])
	assert.Equal(t, "Education", res.Table.Rows[2][0])
	assert.True(t, math.IsNaN(res.Table.Rows[2][1].(float64)))
}

func TestRegionalPreferences(t *testing.T) {
	tbl := table(t, "date,region,wfh_days_postCOVID_ss,wfh_eff_COVID_quant",
		"2023m05,CA,5,100",
		"2023m05,CA,NA,80",
		"2023m05,NY,3,120",
		"2023m05,,4,90",
		"2023m05,TX,5,NA",
	)

	res, err := Run(tbl, Regional)
	require.NoError(t, err)
	require.Len(t, res.Table.Rows, 3)
	assert.Equal(t, []any{"CA", 1, 5.0, 90.0}, res.Table.Rows[0])
	assert.Equal(t, []any{"NY", 1, 3.0, 120.0}, res.Table.Rows[1])
	assert.Equal(t, "TX", res.Table.Rows[2][0])
	assert.True(t, math.IsNaN(res.Table.Rows[2][3].(float64)))

	assert.Equal(t, "CA", metricText(t, res.Metrics, "most_surveyed_state"))
	assert.Equal(t, 3.0, res.Metrics.Value("state_coverage"))
	assert.Equal(t, "CA", metricText(t, res.Metrics, "highest_wfh_preference"))
	assert.Equal(t, "NY", metricText(t, res.Metrics, "most_efficient_state"))
	assert.Equal(t, Choropleth, res.Figure.Kind)
	assert.Equal(t, []string{"CA", "NY", "TX"}, res.Figure.Categories)
}

func TestReactions(t *testing.T) {
	tbl := table(t, "date,wbp_react_qual",
		"2023m05,1", "2023m05,1", "2023m05,2", "2023m05,3",
		"2023m06,1", "2023m06,2", "2023m06,2", "2023m06,2", "2023m06,9", "2023m06,NA",
	)

	res, err := Run(tbl, Reactions)
	require.NoError(t, err)
	assert.Equal(t, [][]any{
		{may, "Comply and return", 2},
		{may, "Return & start looking for a WFH job", 1},
		{may, "Quit, regardless of getting another job", 1},
		{june, "Comply and return", 1},
		{june, "Return & start looking for a WFH job", 3},
	}, res.Table.Rows)

	assert.Equal(t, 25.0, res.Metrics.Value("comply_pct"))
	assert.Equal(t, 75.0, res.Metrics.Value("look_for_wfh_job_pct"))
	assert.Equal(t, 0.0, res.Metrics.Value("quit_pct"))
	assert.Equal(t, -25.0, res.Metrics.Value("comply_change"))
	assert.Equal(t, 50.0, res.Metrics.Value("look_for_wfh_job_change"))
	assert.Equal(t, -25.0, res.Metrics.Value("quit_change"))

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "9", res.Warnings[0].Code)
}

func TestReactionsSingleWave(t *testing.T) {
	tbl := table(t, "date,wbp_react_qual", "2023m05,3")

	res, err := Run(tbl, Reactions)
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.Metrics.Value("quit_pct"))
	_, ok := res.Metrics.Get("quit_change")
	assert.False(t, ok, "no previous month to compare against")
}

func TestCommuteCategory(t *testing.T) {
	tests := []struct {
		minutes float64
		want    string
		ok      bool
	}{
		{0, "Small (0-30 min)", true},
		{30, "Small (0-30 min)", true},
		{31, "Medium (31-60 min)", true},
		{60, "Medium (31-60 min)", true},
		{61, "Large (61+ min)", true},
		{120, "Large (61+ min)", true},
		{300, "Large (61+ min)", true},
		{-1, "", false},
		{math.NaN(), "", false},
	}
	for _, tt := range tests {
		got, ok := CommuteCategory(tt.minutes)
		if got != tt.want || ok != tt.ok {
			t.Errorf("CommuteCategory(%v) = %q, %v, want %q, %v", tt.minutes, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCommuteTradeoff(t *testing.T) {
	tbl := table(t, "date,commutetime_quant,wfh_feel_quant",
		"2023m05,10,-5",
		"2023m05,30,-10",
		"2023m05,45,0",
		"2023m05,60,5",
		"2023m05,120,10",
		"2023m05,-3,7",
		"2023m05,NA,1",
		"2023m05,20,NA",
	)

	res, err := Run(tbl, Commute)
	require.NoError(t, err)
	assert.Equal(t, [][]any{
		{"Small (0-30 min)", -7.5, -7.5, 2},
		{"Medium (31-60 min)", 2.5, 2.5, 2},
		{"Large (61+ min)", 10.0, 10.0, 1},
	}, res.Table.Rows)
	assert.Equal(t, "Small (0-30 min)", metricText(t, res.Metrics, "highest_paycut_group"))
	assert.Equal(t, 5.0, res.Metrics.Value("total_responses"))
	assert.Greater(t, res.Metrics.Value("correlation"), 0.0)
}

func TestRunMissingColumn(t *testing.T) {
	tbl := table(t, "date,region", "2023m05,CA")

	for _, c := range All() {
		if c == Regional {
			continue
		}
		_, err := Run(tbl, c)
		var sm *survey.SchemaMismatchError
		require.ErrorAs(t, err, &sm, "chart %s", c)
		assert.NotEmpty(t, sm.Column)
	}

	_, err := Run(tbl, Regional)
	var sm *survey.SchemaMismatchError
	require.ErrorAs(t, err, &sm)
	assert.Equal(t, survey.ColDesiredDays, sm.Column)
}

func TestRunIsIdempotent(t *testing.T) {
	tbl := table(t, "date,wfh_days_postCOVID_ss,wfh_days_postCOVID_boss_ss,wfh_days_postCOVID_s,wfh_eff_COVID_quant,commutetime_quant,work_industry,region,wfh_top3benefits_commute,wfh_top3benefits_quiet,wfh_top3benefits_meetings,lesseff_reasons_internet,wbp_react_qual,wfh_feel_quant",
		"2023m05,5,3,5,110,45,6,CA,1,0,1,0,2,-5",
		"2023m05,2,2,1-2,NA,10,99,NY,0,1,0,1,1,0",
		"2023m06,0,0,0,90,NA,11,,1,1,NA,0,3,10",
		"2023m06,NA,5,3-4,100,70,6,CA,0,0,1,1,7,NA",
	)
	before := snapshot(tbl)

	for _, c := range All() {
		first, err := Run(tbl, c)
		require.NoError(t, err)
		second, err := Run(tbl, c)
		require.NoError(t, err)

		a, err := json.Marshal(first.Table)
		require.NoError(t, err)
		b, err := json.Marshal(second.Table)
		require.NoError(t, err)
		assert.JSONEq(t, string(a), string(b), "chart %s table", c)

		a, err = json.Marshal(first.Metrics)
		require.NoError(t, err)
		b, err = json.Marshal(second.Metrics)
		require.NoError(t, err)
		assert.JSONEq(t, string(a), string(b), "chart %s metrics", c)
	}
	assert.Equal(t, before, snapshot(tbl), "routines must not modify the table")
}

// snapshot renders every column of tbl so two states can be compared.
func snapshot(tbl *survey.Table) string {
	var b strings.Builder
	for _, col := range tbl.Columns() {
		if v, err := tbl.Numbers(col); err == nil {
			fmt.Fprintf(&b, "%s=%v\n", col, v)
		} else if v, err := tbl.Texts(col); err == nil {
			fmt.Fprintf(&b, "%s=%q\n", col, v)
		}
	}
	fmt.Fprintf(&b, "waves=%q dates=%v\n", tbl.Waves(), tbl.Dates())
	return b.String()
}

func TestResultJSONWritesNaNAsNull(t *testing.T) {
	tbl := Table{Columns: []string{"a", "b"}, Rows: [][]any{{"x", math.NaN()}}}
	b, err := json.Marshal(tbl)
	require.NoError(t, err)
	assert.JSONEq(t, `{"columns":["a","b"],"rows":[["x",null]]}`, string(b))

	b, err = json.Marshal(Metric{Name: "m", Label: "M", Value: math.NaN()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"m","label":"M","value":null}`, string(b))
}
