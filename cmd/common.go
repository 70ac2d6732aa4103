package cmd

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/zalepa/wfhsurvey/aggregate"
	"github.com/zalepa/wfhsurvey/logger"
	"github.com/zalepa/wfhsurvey/survey"
)

// store is shared by every command so a process reads the archive once.
var store = survey.NewStore()

// setup parses args into fs on top of the environment config, starts the
// logger and validates. Any failure exits.
func setup(fs *flag.FlagSet, args []string, cfg *Config) {
	fs.Parse(reorderArgs(fs, args))
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid log level: %v\n", err)
		os.Exit(1)
	}
}

// mustConfig reads the environment config or exits.
func mustConfig() *Config {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// mustLoad returns the survey table or exits with "data unavailable".
func mustLoad(path string) *survey.Table {
	tbl, err := store.Table(path)
	if err != nil {
		logger.Log.Errorw("data unavailable", "path", path, "error", err)
		fmt.Fprintf(os.Stderr, "data unavailable: %v\n", err)
		os.Exit(1)
	}
	logger.Log.Infow("survey loaded", "path", path, "rows", tbl.Len())
	return tbl
}

// runChart runs one routine and logs its unmapped-code warnings.
func runChart(tbl *survey.Table, c aggregate.Chart) (*aggregate.Result, error) {
	res, err := aggregate.Run(tbl, c)
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", c, err)
	}
	for _, w := range res.Warnings {
		logger.Log.Warnw("unmapped code", "chart", c.String(), "column", w.Column, "code", w.Code, "count", w.Count)
	}
	return res, nil
}

func chartNames() string {
	names := make([]string, 0, len(aggregate.All()))
	for _, c := range aggregate.All() {
		names = append(names, c.String())
	}
	return strings.Join(names, ", ")
}

// reorderArgs moves positional arguments to the end so that Go's flag package
// can parse all flags regardless of where a positional argument appears.
// Boolean flags registered on fs never consume the next argument.
func reorderArgs(fs *flag.FlagSet, args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if strings.HasPrefix(args[i], "-") {
			flags = append(flags, args[i])
			// Consume the next arg as the flag's value unless it looks like a flag itself.
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") && !strings.Contains(args[i], "=") && !isBoolFlag(fs, args[i]) {
				flags = append(flags, args[i+1])
				i++
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}

func isBoolFlag(fs *flag.FlagSet, arg string) bool {
	f := fs.Lookup(strings.TrimLeft(arg, "-"))
	if f == nil {
		return false
	}
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}
