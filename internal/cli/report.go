package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/FUNGYICHEN/AGG/internal/aggregate"
	"github.com/FUNGYICHEN/AGG/internal/config"
	"github.com/FUNGYICHEN/AGG/internal/domain"
	"github.com/FUNGYICHEN/AGG/internal/extract"
	"github.com/FUNGYICHEN/AGG/internal/notify"
	"github.com/FUNGYICHEN/AGG/internal/output"
)

// ReportCmd aggregates a results file and prints or sends the report
type ReportCmd struct {
	File             string `arg:"" required:"" type:"path" help:"Test results: JSON result tree or plain-text log"`
	Env              string `short:"e" help:"Environment shown in headers (default: (ENV) in path, config, stg)"`
	Send             bool   `short:"s" help:"Send the report chunks to Telegram"`
	DryRun           bool   `help:"With --send, print the messages instead of sending them"`
	Section          string `default:"all" enum:"all,success,errors" help:"Which report sections to emit"`
	MaxLength        int    `default:"${config_max_length}" help:"Maximum characters per chunk"`
	WidespreadAgents int    `default:"${config_widespread_agents}" help:"Agents on one game that make an error widespread"`
	Itemize          int    `default:"${config_itemize}" help:"Game id count from which per-agent lines show only a count"`
	NoBrandPrefix    bool   `help:"Do not prefix prod error lines with (brand)"`
}

// reportResult is the output of the report pipeline
type reportResult struct {
	runID   string
	env     string
	lines   extract.Lines
	agg     domain.Aggregate
	opts    output.FormatOptions
	report  output.Report
	success []string // chunks
	errors  []string // chunks
}

// Run executes the report command
func (c *ReportCmd) Run(globals *Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := globals.Config
	if cfg == nil {
		cfg = config.Default()
	}
	applyReportDefaults(cfg, c)

	res, err := c.build(cfg)
	if err != nil {
		return c.outputError(globals, inputErrorCode(err), err.Error())
	}
	globals.Debug("report built",
		zap.String("run_id", res.runID),
		zap.String("env", res.env),
		zap.Int("success_lines", len(res.lines.Success)),
		zap.Int("error_lines", len(res.lines.Errors)),
		zap.Int("chunks", len(res.success)+len(res.errors)))

	if err := c.emit(globals, res); err != nil {
		return err
	}

	if c.Send {
		return c.send(ctx, globals, cfg, res)
	}
	return nil
}

func (c *ReportCmd) outputError(globals *Globals, code, message string, hint ...string) error {
	return outputErrorCommon(globals, code, message, hint...)
}

// applyReportDefaults fills unset numeric flags from config
func applyReportDefaults(cfg *config.Config, c *ReportCmd) {
	if c.MaxLength < 1 {
		c.MaxLength = cfg.Report.MaxLength
	}
	if c.WidespreadAgents < 1 {
		c.WidespreadAgents = cfg.Report.WidespreadAgents
	}
	if c.Itemize < 1 {
		c.Itemize = cfg.Report.Itemize
	}
	if c.Section == "" {
		c.Section = "all"
	}
}

func markersFromConfig(cfg *config.Config) domain.Markers {
	markers := domain.DefaultMarkers()
	if len(cfg.Report.SuccessMarkers) > 0 {
		markers.Success = cfg.Report.SuccessMarkers
	}
	if len(cfg.Report.FailureMarkers) > 0 {
		markers.Failure = cfg.Report.FailureMarkers
	}
	return markers
}

// build runs extract, aggregate, format and chunk
func (c *ReportCmd) build(cfg *config.Config) (*reportResult, error) {
	markers := markersFromConfig(cfg)

	lines, err := extract.New(markers).File(c.File)
	if err != nil {
		return nil, err
	}

	res := &reportResult{
		runID: uuid.NewString(),
		env:   config.ResolveEnv(c.Env, c.File, cfg.Env),
		lines: lines,
		agg:   aggregate.Aggregate(lines.Errors, markers),
	}
	res.opts = output.FormatOptions{
		Env:                      res.env,
		WidespreadAgentThreshold: c.WidespreadAgents,
		ItemizeThreshold:         c.Itemize,
		ProdBrandPrefix:          cfg.Report.BrandPrefix && !c.NoBrandPrefix,
	}
	res.report = output.Format(lines.Success, res.agg, res.opts)

	if c.Section != "errors" {
		res.success = output.Chunk(res.report.Success, c.MaxLength)
	}
	if c.Section != "success" {
		res.errors = output.Chunk(res.report.Errors, c.MaxLength)
	}
	return res, nil
}

func (r *reportResult) summary(source string) *domain.ReportSummary {
	s := domain.NewReportSummary(r.runID, r.env)
	s.Timestamp = time.Now()
	s.Source = source
	s.SuccessLines = len(r.lines.Success)
	s.ErrorLines = len(r.lines.Errors)
	s.AgentGroups = len(r.agg.ByAgent)
	s.GameGroups = len(r.agg.ByGame)
	s.Widespread = len(output.Widespread(r.agg, r.opts.WidespreadAgentThreshold))
	s.RawGroups = len(r.agg.Raw)
	s.Chunks = len(r.success) + len(r.errors)
	s.HasErrors = !r.agg.Empty()
	return s
}

func (c *ReportCmd) emit(globals *Globals, res *reportResult) error {
	switch globals.Format {
	case "ndjson":
		w := output.NewNDJSONWriter(globals.Stdout)
		if err := w.WriteSummary(res.summary(c.File)); err != nil {
			return err
		}
		if err := w.WriteGroups(res.runID, res.agg, res.opts); err != nil {
			return err
		}
		if err := w.WriteChunks(res.runID, "success", res.success); err != nil {
			return err
		}
		return w.WriteChunks(res.runID, "errors", res.errors)

	case "table":
		if c.Section != "errors" {
			fmt.Fprintf(globals.Stdout, "%s: %d\n", output.SuccessHeader(res.env), len(res.lines.Success))
		}
		if c.Section == "success" {
			return nil
		}
		fmt.Fprintln(globals.Stdout, output.ErrorHeader(res.env))
		if res.agg.Empty() {
			fmt.Fprintln(globals.Stdout, output.NoErrorText)
			return nil
		}
		return output.WriteTables(globals.Stdout, res.agg, res.opts)

	default:
		styled := stdoutIsTerminal(globals)
		all := append(append([]string{}, res.success...), res.errors...)
		for i, chunk := range all {
			if len(all) > 1 && !globals.Quiet {
				fmt.Fprintln(globals.Stderr, output.Styles.Separator.Render(fmt.Sprintf("--- chunk %d/%d ---", i+1, len(all))))
			}
			if styled {
				chunk = output.StyleText(chunk)
			}
			if _, err := fmt.Fprintln(globals.Stdout, chunk); err != nil {
				return err
			}
		}
		return nil
	}
}

func stdoutIsTerminal(globals *Globals) bool {
	if f, ok := globals.Stdout.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

func (c *ReportCmd) send(ctx context.Context, globals *Globals, cfg *config.Config, res *reportResult) error {
	interval, err := config.ParseDuration(cfg.Telegram.SendInterval)
	if err != nil {
		return c.outputError(globals, "INVALID_CONFIG", fmt.Sprintf("telegram.send_interval: %s", err))
	}

	var sender notify.Sender
	if c.DryRun {
		// keep stdout clean for ndjson records
		out := globals.Stdout
		if globals.Format == "ndjson" {
			out = globals.Stderr
		}
		sender = notify.NewWriter(out)
		interval = 0
	} else {
		timeout, err := config.ParseDuration(cfg.Telegram.Timeout)
		if err != nil {
			return c.outputError(globals, "INVALID_CONFIG", fmt.Sprintf("telegram.timeout: %s", err))
		}
		tg, err := notify.NewTelegram(notify.TelegramConfig{
			Token:     cfg.Telegram.Token,
			ChatID:    cfg.Telegram.ChatID,
			ParseMode: cfg.Telegram.ParseMode,
			Endpoint:  cfg.Telegram.Endpoint,
			Timeout:   timeout,
		})
		if err != nil {
			return c.outputError(globals, "SEND_FAILED", err.Error(), hintForSend(err))
		}
		globals.Debug("telegram bot ready", zap.String("bot", tg.BotName()))
		sender = tg
	}

	chunks := append(append([]string{}, res.success...), res.errors...)
	result, err := notify.Dispatch(ctx, sender, chunks, notify.DispatchOptions{
		Interval: interval,
		Logger:   globals.logger(),
	})

	if globals.Format == "ndjson" {
		if werr := output.NewNDJSONWriter(globals.Stdout).WriteDispatch(res.runID, result.Sent, result.Failed, result.Skipped); werr != nil {
			return werr
		}
	} else {
		globals.logger().Info("report sent",
			zap.Int("sent", result.Sent),
			zap.Int("failed", result.Failed),
			zap.Int("skipped", result.Skipped))
	}

	if err != nil {
		return c.outputError(globals, "SEND_FAILED", fmt.Sprintf("send interrupted: %s", err))
	}
	if result.Failed > 0 {
		return c.outputError(globals, "SEND_FAILED", fmt.Sprintf("%d of %d chunks failed to send", result.Failed, result.Sent+result.Failed))
	}
	return nil
}
