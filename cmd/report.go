package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/sync/errgroup"

	"github.com/zalepa/wfhsurvey/aggregate"
	"github.com/zalepa/wfhsurvey/figure"
	"github.com/zalepa/wfhsurvey/logger"
	"github.com/zalepa/wfhsurvey/survey"
)

var errEmptyReport = errors.New("no chart could be rendered")

// Report implements the "report" subcommand: every chart on its own page of
// one PDF.
func Report(args []string) {
	cfg := mustConfig()
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	cfg.bindFlags(fs)
	out := fs.String("o", "wfh-report.pdf", "output PDF file path")
	jobs := fs.Int("jobs", runtime.NumCPU(), "charts drawn in parallel")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: wfhsurvey report [-o wfh-report.pdf] [--jobs N]\n\nRender every chart and merge them into one PDF.\n\nFlags:\n")
		fs.PrintDefaults()
	}
	setup(fs, args, cfg)
	defer logger.Sync()
	if *jobs < 1 {
		*jobs = 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tbl := mustLoad(cfg.Data)
	pages, err := writeReport(ctx, tbl, aggregate.All(), *out, *jobs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error writing report: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s (%d pages)\n", *out, pages)
}

// writeReport draws each chart to a temporary PDF, merges them in chart order
// into out and returns the page count. A chart whose routine fails is left
// out of the report.
func writeReport(ctx context.Context, tbl *survey.Table, charts []aggregate.Chart, out string, jobs int) (int, error) {
	dir, err := os.MkdirTemp("", "wfhsurvey-report-")
	if err != nil {
		return 0, err
	}
	defer os.RemoveAll(dir)

	files := make([]string, len(charts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, c := range charts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := runChart(tbl, c)
			if err != nil {
				logger.Log.Warnw("skipping chart", "chart", c.String(), "error", err)
				return nil
			}
			p := filepath.Join(dir, fmt.Sprintf("%02d-%s.pdf", i, c))
			if err := figure.Save(res, p); err != nil {
				return fmt.Errorf("drawing %s: %w", c, err)
			}
			files[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var pages []string
	for _, f := range files {
		if f != "" {
			pages = append(pages, f)
		}
	}
	if len(pages) == 0 {
		return 0, errEmptyReport
	}

	api.DisableConfigDir()
	if err := api.MergeCreateFile(pages, out, false, nil); err != nil {
		return 0, fmt.Errorf("merging pages: %w", err)
	}
	n, err := api.PageCountFile(out)
	if err != nil {
		return 0, fmt.Errorf("counting pages: %w", err)
	}
	logger.Log.Infow("report written", "path", out, "pages", n, "skipped", len(charts)-len(pages))
	return n, nil
}
