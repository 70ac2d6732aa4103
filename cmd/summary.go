package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/zalepa/wfhsurvey/aggregate"
	"github.com/zalepa/wfhsurvey/figure"
	"github.com/zalepa/wfhsurvey/logger"
	"github.com/zalepa/wfhsurvey/survey"
)

// maxSummaryRows caps the rows printed for long tables.
const maxSummaryRows = 40

// Summary implements the "summary" subcommand.
func Summary(args []string) {
	cfg := mustConfig()
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	cfg.bindFlags(fs)
	chart := fs.String("chart", "", "chart to summarise (default desired_days)")
	all := fs.Bool("all", false, "summarise every chart")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: wfhsurvey summary [chart] [flags]

Print a chart's summary table, trends and headline metrics.

Flags:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Charts: %s

Examples:
  wfhsurvey summary reactions
  wfhsurvey summary --all --data data/WFHdata_October24.zip
`, chartNames())
	}
	setup(fs, args, cfg)
	defer logger.Sync()

	if fs.NArg() > 0 {
		*chart = fs.Arg(0)
	}
	c, ok := aggregate.Lookup(*chart)
	if !ok && *chart != "" {
		fmt.Fprintf(os.Stderr, "invalid chart %q; valid options: %s\n", *chart, chartNames())
		os.Exit(1)
	}
	charts := []aggregate.Chart{c}
	if *all {
		charts = aggregate.All()
	}

	tbl := mustLoad(cfg.Data)
	failed := 0
	for i, c := range charts {
		if i > 0 {
			fmt.Println()
		}
		res, err := runChart(tbl, c)
		if err != nil {
			fmt.Fprintf(os.Stderr, "chart unavailable: %v\n", err)
			failed++
			continue
		}
		printSummary(os.Stdout, tbl, res)
	}
	if failed == len(charts) {
		os.Exit(1)
	}
}

// printSummary writes res as a plain-text report.
func printSummary(w io.Writer, tbl *survey.Table, res *aggregate.Result) {
	first, last := tbl.DateRange()
	fmt.Fprintln(w, res.Figure.Title)
	if tbl.Len() > 0 {
		fmt.Fprintf(w, "Survey: %s to %s (%s responses)\n", first.Format("Jan 2006"), last.Format("Jan 2006"), figure.FormatCell(tbl.Len()))
	}
	fmt.Fprintln(w)

	printTable(w, res.Table)

	if res.Figure.Timeline && len(res.Figure.Categories) > 1 {
		printTrends(w, res.Figure)
	}

	fmt.Fprintln(w)
	width := 0
	for _, m := range res.Metrics {
		width = max(width, utf8.RuneCountInString(m.Label))
	}
	for _, m := range res.Metrics {
		fmt.Fprintf(w, "%-*s  %s\n", width, m.Label, figure.FormatMetric(m))
	}
	for _, wn := range res.Warnings {
		fmt.Fprintf(w, "warning: %v\n", wn)
	}
}

func printTable(w io.Writer, t aggregate.Table) {
	rows := t.Rows
	truncated := 0
	if len(rows) > maxSummaryRows {
		truncated = len(rows) - maxSummaryRows
		rows = rows[:maxSummaryRows]
	}

	text := make([][]string, len(rows))
	widths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = utf8.RuneCountInString(c)
	}
	for i, r := range rows {
		text[i] = make([]string, len(r))
		for j, c := range r {
			text[i][j] = figure.FormatCell(c)
			if j < len(widths) {
				widths[j] = max(widths[j], utf8.RuneCountInString(text[i][j]))
			}
		}
	}

	line := func(cells []string) {
		parts := make([]string, len(cells))
		for j, c := range cells {
			pad := widths[j] - utf8.RuneCountInString(c)
			if j == 0 {
				parts[j] = c + strings.Repeat(" ", pad)
			} else {
				parts[j] = strings.Repeat(" ", pad) + c
			}
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}
	line(t.Columns)
	total := 0
	for _, wd := range widths {
		total += wd + 2
	}
	fmt.Fprintln(w, strings.Repeat("─", max(total-2, 0)))
	for _, r := range text {
		line(r)
	}
	if truncated > 0 {
		fmt.Fprintf(w, "... %d more rows\n", truncated)
	}
}

// printTrends draws one sparkline per series across the figure's categories.
func printTrends(w io.Writer, f aggregate.Figure) {
	nameWidth := 10
	for _, s := range f.Series {
		nameWidth = max(nameWidth, utf8.RuneCountInString(s.Name))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Trend: %s to %s (%d periods)\n", f.Categories[0], f.Categories[len(f.Categories)-1], len(f.Categories))
	rowFmt := fmt.Sprintf("%%-%ds  %%10s   %%s\n", nameWidth)
	fmt.Fprintf(w, rowFmt, "Series", "Latest", "Trend")
	for _, s := range f.Series {
		fmt.Fprintf(w, rowFmt, s.Name, figure.FormatCell(figure.LastValue(s.Values)), figure.Sparkline(s.Values))
	}
}
