package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/zalepa/wfhsurvey/aggregate"
	"github.com/zalepa/wfhsurvey/figure"
	"github.com/zalepa/wfhsurvey/logger"
)

// Render implements the "render" subcommand: draw one chart to a file.
func Render(args []string) {
	cfg := mustConfig()
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	cfg.bindFlags(fs)
	chart := fs.String("chart", "", "chart to draw (default desired_days)")
	out := fs.String("o", "", "output file; .pdf, .png or .svg (default <chart>.png)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: wfhsurvey render [chart] [flags]

Render one chart to a PDF, PNG or SVG file.

Flags:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Charts: %s

Examples:
  wfhsurvey render industry -o industry.pdf
  wfhsurvey render --chart commute --data data/WFHdata_October24.zip
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
	if *out == "" {
		*out = c.String() + ".png"
	}

	tbl := mustLoad(cfg.Data)
	res, err := runChart(tbl, c)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chart unavailable: %v\n", err)
		os.Exit(1)
	}
	if err := figure.Save(res, *out); err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", *out, err)
		os.Exit(1)
	}
	for _, m := range res.Metrics {
		fmt.Printf("%-32s %s\n", m.Label, figure.FormatMetric(m))
	}
	fmt.Printf("wrote %s\n", *out)
}
