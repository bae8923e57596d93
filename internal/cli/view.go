package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/FUNGYICHEN/AGG/internal/config"
	"github.com/FUNGYICHEN/AGG/internal/output"
	"github.com/FUNGYICHEN/AGG/internal/tui"
)

// ViewCmd launches an interactive viewer for a report
type ViewCmd struct {
	File             string `arg:"" required:"" type:"path" help:"Test results: JSON result tree or plain-text log"`
	Env              string `short:"e" help:"Environment shown in headers"`
	WidespreadAgents int    `default:"${config_widespread_agents}" help:"Agents on one game that make an error widespread"`
	Itemize          int    `default:"${config_itemize}" help:"Game id count from which per-agent lines show only a count"`
	NoBrandPrefix    bool   `help:"Do not prefix prod error lines with (brand)"`
}

// Run executes the view command
func (c *ViewCmd) Run(globals *Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	model, err := c.model(globals)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// model builds the viewer state by running the report pipeline
func (c *ViewCmd) model(globals *Globals) (tui.Model, error) {
	cfg := globals.Config
	if cfg == nil {
		cfg = config.Default()
	}
	rc := &ReportCmd{
		File:             c.File,
		Env:              c.Env,
		WidespreadAgents: c.WidespreadAgents,
		Itemize:          c.Itemize,
		NoBrandPrefix:    c.NoBrandPrefix,
	}
	applyReportDefaults(cfg, rc)

	res, err := rc.build(cfg)
	if err != nil {
		return tui.Model{}, outputErrorCommon(globals, inputErrorCode(err), err.Error())
	}

	return tui.New(res.report, tui.Stats{
		Env:        res.env,
		Source:     c.File,
		ErrorLines: len(res.lines.Errors),
		Success:    len(res.lines.Success),
		Widespread: len(output.Widespread(res.agg, res.opts.WidespreadAgentThreshold)),
	}), nil
}
