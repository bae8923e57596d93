package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/FUNGYICHEN/AGG/internal/cli"
	"github.com/FUNGYICHEN/AGG/internal/config"
)

const quickStart = `aggreport - group game launch test failures into a readable report

START HERE:
  aggreport report test-results.json

Useful commands:
  aggreport report results.json --send     Send the report to Telegram
  aggreport report results.json -f table   Show grouped errors as tables
  aggreport probe -o results.json          Run launch API checks
  aggreport view results.json              Browse a report interactively
  aggreport config generate                Print a sample config file
`

// configPathFromArgs finds --config before kong parses, so config values can
// become flag defaults.
func configPathFromArgs(args []string) string {
	for i, arg := range args {
		if v, ok := strings.CutPrefix(arg, "--config="); ok {
			return v
		}
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func main() {
	// Show quick start if no args provided
	if len(os.Args) == 1 {
		fmt.Print(quickStart)
		return
	}

	// Load configuration from files/environment
	var (
		cfg *config.Config
		err error
	)
	if path := configPathFromArgs(os.Args[1:]); path != "" {
		cfg, err = config.LoadFromFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.Default()
	}

	var c cli.CLI

	// Apply config defaults before parsing
	// These will be overridden by CLI flags if specified
	vars := kong.Vars{
		"config_format":            cfg.Format,
		"config_max_length":        strconv.Itoa(cfg.Report.MaxLength),
		"config_widespread_agents": strconv.Itoa(cfg.Report.WidespreadAgents),
		"config_itemize":           strconv.Itoa(cfg.Report.Itemize),
	}

	ctx := kong.Parse(&c,
		kong.Name("aggreport"),
		kong.Description("Aggregate game launch test results into grouped, chunked reports\n\nSTART HERE: aggreport report <results.json>"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		vars,
	)

	// Create globals with config fallbacks
	globals := cli.NewGlobalsWithConfig(&c, cfg)
	defer func() { _ = globals.Logger.Sync() }()

	if err := ctx.Run(globals); err != nil {
		_ = globals.Logger.Sync()
		os.Exit(1)
	}
}
