package notify

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// Sender delivers one message to a notification channel
type Sender interface {
	Send(ctx context.Context, text string) error
}

// DispatchOptions controls pacing and diagnostics of Dispatch
type DispatchOptions struct {
	// Interval is the pause between two sends
	Interval time.Duration
	Clock    clock.Clock
	Logger   *zap.Logger
}

// DispatchResult counts the outcome of one Dispatch call
type DispatchResult struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// Dispatch sends chunks in order, one at a time. Blank chunks are skipped.
// A failed send is logged and not retried; the remaining chunks are still sent.
// Dispatch returns early with ctx.Err() when ctx is cancelled.
func Dispatch(ctx context.Context, sender Sender, chunks []string, opts DispatchOptions) (DispatchResult, error) {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var res DispatchResult
	first := true
	for i, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			res.Skipped++
			continue
		}
		if !first && opts.Interval > 0 {
			if err := wait(ctx, opts.Clock, opts.Interval); err != nil {
				return res, err
			}
		}
		first = false

		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := sender.Send(ctx, chunk); err != nil {
			res.Failed++
			logger.Warn("failed to send chunk",
				zap.Int("index", i+1),
				zap.Int("total", len(chunks)),
				zap.Error(err))
			continue
		}
		res.Sent++
		logger.Debug("sent chunk", zap.Int("index", i+1), zap.Int("total", len(chunks)))
	}
	return res, nil
}

func wait(ctx context.Context, clk clock.Clock, d time.Duration) error {
	timer := clk.Timer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Writer is a Sender that prints messages instead of sending them
type Writer struct {
	w io.Writer
	n int
}

// NewWriter creates a dry-run sender writing to w
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Send writes text preceded by a message marker
func (w *Writer) Send(_ context.Context, text string) error {
	w.n++
	_, err := fmt.Fprintf(w.w, "--- message %d ---\n%s\n", w.n, text)
	return err
}
