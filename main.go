package main

import (
	"fmt"
	"os"

	"github.com/zalepa/wfhsurvey/cmd"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "web":
		cmd.Web(os.Args[2:])
	case "render":
		cmd.Render(os.Args[2:])
	case "report":
		cmd.Report(os.Args[2:])
	case "export":
		cmd.Export(os.Args[2:])
	case "summary":
		cmd.Summary(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: wfhsurvey <command>

Commands:
  web       Serve the interactive WFH survey dashboard
  render    Render one chart to PDF, PNG or SVG
  report    Render every chart into one PDF report
  export    Write summary tables and metrics to an Excel workbook
  summary   Print a chart summary on the terminal

Configuration is read from WFH_DATA, WFH_PORT, WFH_LOG_LEVEL,
WFH_READ_TIMEOUT and WFH_WRITE_TIMEOUT; flags override it.
`)
}
