package cli

import (
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/FUNGYICHEN/AGG/internal/config"
)

// CLI is the root command structure for aggreport
type CLI struct {
	// Global flags
	Format     string `short:"f" default:"${config_format}" enum:"text,ndjson,table" help:"Output format"`
	Quiet      bool   `short:"q" help:"Suppress diagnostics on stderr"`
	Verbose    bool   `short:"v" help:"Show debug output"`
	ConfigPath string `name:"config" type:"path" help:"Configuration file (default: search .aggreport.yaml)"`

	// Commands
	Report  ReportCmd  `cmd:"" help:"Aggregate a test result file into a grouped report"`
	Probe   ProbeCmd   `cmd:"" help:"Call the launch API for configured suites and write a result tree"`
	View    ViewCmd    `cmd:"" help:"Browse a rendered report interactively"`
	Config  ConfigCmd  `cmd:"" help:"Show or manage configuration"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// Globals holds shared state for all commands
type Globals struct {
	Format  string
	Quiet   bool
	Verbose bool
	Stdout  io.Writer
	Stderr  io.Writer
	Config  *config.Config
	Logger  *zap.Logger
}

// NewGlobals creates a new Globals instance from CLI flags
func NewGlobals(cli *CLI) *Globals {
	return NewGlobalsWithConfig(cli, config.Default())
}

// NewGlobalsWithConfig creates a new Globals instance with config fallbacks
func NewGlobalsWithConfig(cli *CLI, cfg *config.Config) *Globals {
	g := &Globals{
		Format:  cli.Format,
		Quiet:   cli.Quiet,
		Verbose: cli.Verbose,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Config:  cfg,
	}

	// Apply config values if CLI flags weren't explicitly set
	if cfg != nil {
		if !cli.Quiet && cfg.Quiet {
			g.Quiet = cfg.Quiet
		}
		if !cli.Verbose && cfg.Verbose {
			g.Verbose = cfg.Verbose
		}
	}

	g.Logger = newLogger(g.Stderr, g.Verbose, g.Quiet)
	return g
}

// Debug logs a debug message when verbose mode is enabled
func (g *Globals) Debug(msg string, fields ...zap.Field) {
	g.logger().Debug(msg, fields...)
}

func (g *Globals) logger() *zap.Logger {
	if g.Logger == nil {
		return zap.NewNop()
	}
	return g.Logger
}

// VersionCmd shows version information
type VersionCmd struct{}

// Run executes the version command
func (v *VersionCmd) Run(globals *Globals) error {
	if globals.Format == "ndjson" {
		io.WriteString(globals.Stdout, `{"type":"version","version":"`+Version+`","commit":"`+Commit+`"}`+"\n")
	} else {
		io.WriteString(globals.Stdout, "aggreport version "+Version+" ("+Commit+")\n")
	}
	return nil
}

// Version information (set at build time)
var (
	Version = "dev"
	Commit  = "none"
)
