package cmd

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/zalepa/wfhsurvey/aggregate"
	"github.com/zalepa/wfhsurvey/logger"
	"github.com/zalepa/wfhsurvey/survey"
)

const metricsSheet = "Metrics"

var metricsHeader = []any{"chart", "name", "label", "value", "text", "unit"}

// Export implements the "export" subcommand: every summary table and its
// metrics to one workbook.
func Export(args []string) {
	cfg := mustConfig()
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	cfg.bindFlags(fs)
	out := fs.String("o", "wfh-summary.xlsx", "output workbook path")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: wfhsurvey export [-o wfh-summary.xlsx]\n\nWrite every chart's summary table and metrics to an Excel workbook.\n\nFlags:\n")
		fs.PrintDefaults()
	}
	setup(fs, args, cfg)
	defer logger.Sync()

	tbl := mustLoad(cfg.Data)
	sheets, err := writeWorkbook(tbl, aggregate.All(), *out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error writing workbook: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s (%d sheets)\n", *out, len(sheets))
}

// writeWorkbook puts each chart's summary table on a sheet named after the
// chart and all metrics on a final Metrics sheet. Charts whose routine fails
// are skipped. It returns the sheet names in order.
func writeWorkbook(tbl *survey.Table, charts []aggregate.Chart, out string) ([]string, error) {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	var sheets []string
	metricRows := [][]any{metricsHeader}
	for _, c := range charts {
		res, err := runChart(tbl, c)
		if err != nil {
			logger.Log.Warnw("skipping chart", "chart", c.String(), "error", err)
			continue
		}
		rows := make([][]any, 0, len(res.Table.Rows)+1)
		header := make([]any, len(res.Table.Columns))
		for i, col := range res.Table.Columns {
			header[i] = col
		}
		rows = append(rows, header)
		for _, r := range res.Table.Rows {
			rows = append(rows, cells(r))
		}
		if err := writeSheet(f, c.String(), rows, bold); err != nil {
			return nil, fmt.Errorf("sheet %s: %w", c, err)
		}
		sheets = append(sheets, c.String())

		for _, m := range res.Metrics {
			metricRows = append(metricRows, cells([]any{c.String(), m.Name, m.Label, m.Value, m.Text, string(m.Unit)}))
		}
	}
	if len(sheets) == 0 {
		return nil, errEmptyReport
	}
	if err := writeSheet(f, metricsSheet, metricRows, bold); err != nil {
		return nil, fmt.Errorf("sheet %s: %w", metricsSheet, err)
	}
	sheets = append(sheets, metricsSheet)

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	f.SetActiveSheet(0)
	if err := f.SaveAs(out); err != nil {
		return nil, err
	}
	return sheets, nil
}

func writeSheet(f *excelize.File, name string, rows [][]any, headerStyle int) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &r); err != nil {
			return err
		}
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(name, "A1", last, headerStyle)
}

// cells blanks NaN values, which Excel cannot store.
func cells(row []any) []any {
	out := make([]any, len(row))
	for i, c := range row {
		if v, ok := c.(float64); ok && math.IsNaN(v) {
			continue
		}
		out[i] = c
	}
	return out
}
