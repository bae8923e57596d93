// Package probe runs launch checks and writes their results as a tree the
// report pipeline can read back.
package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/FUNGYICHEN/AGG/internal/domain"
)

// SuccessSuffix follows the suite title in the success line
const SuccessSuffix = " 測試：所有 agent 測試成功，正常取得遊戲 URL"

// Launcher obtains a launch URL for an agent and game
type Launcher interface {
	GameURL(ctx context.Context, agent, gameID int) (string, error)
}

// Options controls retries, pacing and parallelism
type Options struct {
	Retries    int
	RetryDelay time.Duration
	// Interval is the pause after each successful launch within a suite
	Interval time.Duration
	// Parallel bounds how many suites run at once; < 1 means one
	Parallel int
	Env      string
	Clock    clock.Clock
	Logger   *zap.Logger
}

// Runner executes suites against a Launcher
type Runner struct {
	launcher Launcher
	opts     Options
}

// NewRunner creates a probe runner
func NewRunner(launcher Launcher, opts Options) *Runner {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Parallel < 1 {
		opts.Parallel = 1
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	return &Runner{launcher: launcher, opts: opts}
}

// Report is the result tree of one probe run
type Report struct {
	RunID     string        `json:"run_id"`
	Env       string        `json:"env,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Suites    []SuiteReport `json:"suites"`
}

// SuiteReport holds the outcome of one suite
type SuiteReport struct {
	Title   string   `json:"title"`
	Checked int      `json:"checked"`
	Failed  int      `json:"failed"`
	Results []Result `json:"results"`
}

// Result mirrors a test result: stdout lines on success, an error message on failure
type Result struct {
	Status   string       `json:"status"` // "passed" or "failed"
	Duration int64        `json:"duration"`
	Stdout   []StdoutLine `json:"stdout,omitempty"`
	Error    *ResultError `json:"error,omitempty"`
}

// StdoutLine is one captured output line
type StdoutLine struct {
	Text string `json:"text"`
}

// ResultError carries the multi-line failure message
type ResultError struct {
	Message string `json:"message"`
}

// Failed counts failed checks across all suites
func (r *Report) Failed() int {
	n := 0
	for _, s := range r.Suites {
		n += s.Failed
	}
	return n
}

// Run executes all suites and returns the result tree. Suites run
// concurrently up to Options.Parallel; checks inside a suite run in order.
func (r *Runner) Run(ctx context.Context, suites []Suite) (*Report, error) {
	report := &Report{
		RunID:     uuid.NewString(),
		Env:       r.opts.Env,
		StartedAt: r.opts.Clock.Now(),
		Suites:    make([]SuiteReport, len(suites)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Parallel)
	for i, suite := range suites {
		i, suite := i, suite
		g.Go(func() error {
			sr, err := r.runSuite(gctx, suite)
			if err != nil {
				return err
			}
			report.Suites[i] = sr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}

func (r *Runner) runSuite(ctx context.Context, suite Suite) (SuiteReport, error) {
	logger := r.opts.Logger.With(zap.String("suite", suite.Title()))
	start := r.opts.Clock.Now()
	sr := SuiteReport{Title: suite.Title()}

	var failures []string
	for _, agent := range suite.Agents {
		for _, gameID := range suite.GameIDs {
			sr.Checked++
			gameURL, err := r.launch(ctx, agent, gameID)
			if err != nil {
				if ctx.Err() != nil {
					return sr, ctx.Err()
				}
				logger.Debug("launch failed", zap.Int("agent", agent), zap.Int("game_id", gameID), zap.Error(err))
				failures = append(failures, fmt.Sprintf("Agent: %d, GameID: %d 錯誤: %s", agent, gameID, err))
				continue
			}
			if msg := suite.checkURL(gameURL, gameID); msg != "" {
				failures = append(failures, fmt.Sprintf("Agent: %d, GameID: %d %s", agent, gameID, msg))
				continue
			}
			if err := r.sleep(ctx, r.opts.Interval); err != nil {
				return sr, err
			}
		}
	}

	result := Result{Duration: r.opts.Clock.Since(start).Milliseconds()}
	sr.Failed = len(failures)
	if len(failures) > 0 {
		result.Status = "failed"
		result.Error = &ResultError{Message: failureMessage(suite.Title(), failures)}
		logger.Info("suite failed", zap.Int("failed", len(failures)), zap.Int("checked", sr.Checked))
	} else {
		result.Status = "passed"
		result.Stdout = []StdoutLine{{Text: suite.Title() + SuccessSuffix}}
		logger.Info("suite passed", zap.Int("checked", sr.Checked))
	}
	sr.Results = []Result{result}
	return sr, nil
}

// failureMessage joins failure lines under the suite title. Lines without a
// failure marker restate the title so the brand carries to the lines after them.
func failureMessage(title string, failures []string) string {
	markers := domain.DefaultMarkers()
	lines := make([]string, len(failures))
	for i, f := range failures {
		if i == 0 || !markers.IsFailure(f) {
			f = title + ": " + f
		}
		lines[i] = f
	}
	return strings.Join(lines, "\n")
}

// launch calls the launcher, retrying up to Options.Retries times
func (r *Runner) launch(ctx context.Context, agent, gameID int) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.opts.Retries; attempt++ {
		gameURL, err := r.launcher.GameURL(ctx, agent, gameID)
		if err == nil {
			return gameURL, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		lastErr = err
		if attempt < r.opts.Retries {
			if err := r.sleep(ctx, r.opts.RetryDelay); err != nil {
				return "", err
			}
		}
	}
	return "", lastErr
}

func (r *Runner) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := r.opts.Clock.Timer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// WriteJSON writes the report as indented JSON
func WriteJSON(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
