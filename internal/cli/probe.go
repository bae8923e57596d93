package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"go.uber.org/zap"

	"github.com/FUNGYICHEN/AGG/internal/config"
	"github.com/FUNGYICHEN/AGG/internal/launch"
	"github.com/FUNGYICHEN/AGG/internal/output"
	"github.com/FUNGYICHEN/AGG/internal/probe"
)

// ProbeCmd runs the configured launch checks
type ProbeCmd struct {
	Output   string   `short:"o" type:"path" help:"Write the result tree to this file (default: stdout)"`
	Brand    []string `short:"b" help:"Only run suites for these brands (can be repeated)"`
	Env      string   `short:"e" help:"Environment recorded in the result tree"`
	Parallel int      `help:"Suites to run at once (default: probe.parallel)"`
	Retries  int      `default:"-1" help:"Retries per launch (default: probe.retries)"`
}

// Run executes the probe command
func (c *ProbeCmd) Run(globals *Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := globals.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return c.outputError(globals, "INVALID_CONFIG", err.Error())
	}
	if cfg.Launch.Endpoint == "" {
		return c.outputError(globals, "INVALID_CONFIG", "launch.endpoint is not configured",
			"Run `aggreport config generate` for a sample launch section")
	}

	suites := c.selectSuites(cfg.Probe.Suites)
	if len(suites) == 0 {
		return c.outputError(globals, "INVALID_CONFIG", "no probe suites selected")
	}

	opts, err := c.runnerOptions(globals, cfg)
	if err != nil {
		return c.outputError(globals, "INVALID_CONFIG", err.Error())
	}

	timeout, _ := config.ParseDuration(cfg.Launch.Timeout)
	client := launch.NewClient(launch.Config{
		Endpoint:        cfg.Launch.Endpoint,
		DepositEndpoint: cfg.Launch.DepositEndpoint,
		Key:             cfg.Launch.Key,
		AccountPrefix:   cfg.Launch.AccountPrefix,
		IP:              cfg.Launch.IP,
		AppURL:          cfg.Launch.AppURL,
		ExitURL:         cfg.Launch.ExitURL,
		Language:        cfg.Launch.Language,
		Platform:        cfg.Launch.Platform,
		Direct:          cfg.Launch.Direct,
		Timestamp:       cfg.Launch.Timestamp,
		Timeout:         timeout,
	}, launch.WithLogger(globals.logger()))

	return c.run(ctx, globals, client, suites, opts)
}

func (c *ProbeCmd) outputError(globals *Globals, code, message string, hint ...string) error {
	return outputErrorCommon(globals, code, message, hint...)
}

func (c *ProbeCmd) selectSuites(all []probe.Suite) []probe.Suite {
	if len(c.Brand) == 0 {
		return all
	}
	var out []probe.Suite
	for _, s := range all {
		if slices.Contains(c.Brand, s.Brand) {
			out = append(out, s)
		}
	}
	return out
}

func (c *ProbeCmd) runnerOptions(globals *Globals, cfg *config.Config) (probe.Options, error) {
	retryDelay, err := config.ParseDuration(cfg.Probe.RetryDelay)
	if err != nil {
		return probe.Options{}, fmt.Errorf("probe.retry_delay: %w", err)
	}
	interval, err := config.ParseDuration(cfg.Probe.Interval)
	if err != nil {
		return probe.Options{}, fmt.Errorf("probe.interval: %w", err)
	}

	opts := probe.Options{
		Retries:    cfg.Probe.Retries,
		RetryDelay: retryDelay,
		Interval:   interval,
		Parallel:   cfg.Probe.Parallel,
		Env:        config.ResolveEnv(c.Env, "", cfg.Env),
		Logger:     globals.logger(),
	}
	if c.Parallel > 0 {
		opts.Parallel = c.Parallel
	}
	if c.Retries >= 0 {
		opts.Retries = c.Retries
	}
	return opts, nil
}

// run executes suites and writes the result tree
func (c *ProbeCmd) run(ctx context.Context, globals *Globals, launcher probe.Launcher, suites []probe.Suite, opts probe.Options) error {
	report, err := probe.NewRunner(launcher, opts).Run(ctx, suites)
	if err != nil {
		return c.outputError(globals, "PROBE_FAILED", err.Error())
	}

	var w io.Writer = globals.Stdout
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return c.outputError(globals, "PROBE_FAILED", fmt.Sprintf("cannot create output: %s", err))
		}
		defer f.Close()
		w = f
	}
	if err := probe.WriteJSON(w, report); err != nil {
		return c.outputError(globals, "PROBE_FAILED", fmt.Sprintf("cannot write results: %s", err))
	}

	globals.logger().Info("probe finished",
		zap.String("run_id", report.RunID),
		zap.Int("suites", len(report.Suites)),
		zap.Int("failed", report.Failed()))

	if c.Output != "" && globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteRaw(map[string]interface{}{
			"type":          "probe",
			"schemaVersion": output.SchemaVersion,
			"run_id":        report.RunID,
			"output":        c.Output,
			"suites":        len(report.Suites),
			"failed":        report.Failed(),
		})
	}
	return nil
}
