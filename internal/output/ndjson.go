package output

import (
	"encoding/json"
	"io"

	"github.com/FUNGYICHEN/AGG/internal/domain"
)

// NDJSONWriter writes report records as NDJSON
type NDJSONWriter struct {
	w       io.Writer
	encoder *json.Encoder
}

// NewNDJSONWriter creates a new NDJSON writer
func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false) // report text carries "->" and URLs
	return &NDJSONWriter{
		w:       w,
		encoder: enc,
	}
}

// ChunkOutput is one transport-sized piece of a report section
type ChunkOutput struct {
	Type          string `json:"type"` // Always "chunk"
	SchemaVersion int    `json:"schemaVersion"`
	RunID         string `json:"run_id,omitempty"`
	Section       string `json:"section"` // "success" or "errors"
	Index         int    `json:"index"`   // 1-based
	Total         int    `json:"total"`
	Text          string `json:"text"`
}

// GroupsOutput carries the grouped error views for machine consumers
type GroupsOutput struct {
	Type          string                `json:"type"` // Always "groups"
	SchemaVersion int                   `json:"schemaVersion"`
	RunID         string                `json:"run_id,omitempty"`
	ByAgent       []domain.AgentGroup   `json:"by_agent"`
	Widespread    []domain.GameGroup    `json:"widespread"`
	Raw           []domain.RawLineGroup `json:"raw,omitempty"`
}

// DispatchOutput reports the outcome of sending chunks to the notification channel
type DispatchOutput struct {
	Type          string `json:"type"` // Always "dispatch"
	SchemaVersion int    `json:"schemaVersion"`
	RunID         string `json:"run_id,omitempty"`
	Sent          int    `json:"sent"`
	Failed        int    `json:"failed"`
	Skipped       int    `json:"skipped"`
}

// WarningOutput represents a warning message
type WarningOutput struct {
	Type          string `json:"type"` // Always "warning"
	SchemaVersion int    `json:"schemaVersion"`
	Message       string `json:"message"`
}

// WriteSummary outputs the run summary
func (w *NDJSONWriter) WriteSummary(summary *domain.ReportSummary) error {
	summary.SchemaVersion = SchemaVersion
	return w.encoder.Encode(summary)
}

// WriteChunks outputs one record per chunk of a section
func (w *NDJSONWriter) WriteChunks(runID, section string, chunks []string) error {
	for i, text := range chunks {
		if err := w.encoder.Encode(&ChunkOutput{
			Type:          "chunk",
			SchemaVersion: SchemaVersion,
			RunID:         runID,
			Section:       section,
			Index:         i + 1,
			Total:         len(chunks),
			Text:          text,
		}); err != nil {
			return err
		}
	}
	return nil
}

// WriteGroups outputs the grouped views, listing only widespread by-game groups
func (w *NDJSONWriter) WriteGroups(runID string, agg domain.Aggregate, opts FormatOptions) error {
	opts = opts.normalized()
	return w.encoder.Encode(&GroupsOutput{
		Type:          "groups",
		SchemaVersion: SchemaVersion,
		RunID:         runID,
		ByAgent:       agg.ByAgent,
		Widespread:    Widespread(agg, opts.WidespreadAgentThreshold),
		Raw:           agg.Raw,
	})
}

// WriteDispatch outputs the notification send result
func (w *NDJSONWriter) WriteDispatch(runID string, sent, failed, skipped int) error {
	return w.encoder.Encode(&DispatchOutput{
		Type:          "dispatch",
		SchemaVersion: SchemaVersion,
		RunID:         runID,
		Sent:          sent,
		Failed:        failed,
		Skipped:       skipped,
	})
}

// WriteError outputs an error
func (w *NDJSONWriter) WriteError(code, message string, hint ...string) error {
	err := domain.NewErrorOutput(code, message)
	if len(hint) > 0 {
		err.Hint = hint[0]
	}
	err.SchemaVersion = SchemaVersion
	return w.encoder.Encode(err)
}

// WriteWarning outputs a warning message
func (w *NDJSONWriter) WriteWarning(message string) error {
	return w.encoder.Encode(&WarningOutput{
		Type:          "warning",
		SchemaVersion: SchemaVersion,
		Message:       message,
	})
}

// WriteRaw outputs raw JSON data
func (w *NDJSONWriter) WriteRaw(v interface{}) error {
	return w.encoder.Encode(v)
}
