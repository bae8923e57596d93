package domain

import "time"

// ReportSummary describes one report run for NDJSON consumers
type ReportSummary struct {
	Type          string    `json:"type"`          // Always "report"
	SchemaVersion int       `json:"schemaVersion"` // Schema version for compatibility
	RunID         string    `json:"run_id"`
	Timestamp     time.Time `json:"timestamp"`
	Env           string    `json:"env"`
	Source        string    `json:"source,omitempty"`

	// Counts
	SuccessLines int `json:"success_lines"`
	ErrorLines   int `json:"error_lines"`
	AgentGroups  int `json:"agent_groups"`
	GameGroups   int `json:"game_groups"`
	Widespread   int `json:"widespread"`
	RawGroups    int `json:"raw_groups"`
	Chunks       int `json:"chunks"`

	HasErrors bool `json:"hasErrors"`
}

// NewReportSummary creates a new empty summary
func NewReportSummary(runID, env string) *ReportSummary {
	return &ReportSummary{
		Type:  "report",
		RunID: runID,
		Env:   env,
	}
}

// ErrorOutput represents a structured error for NDJSON output
type ErrorOutput struct {
	Type          string `json:"type"`          // Always "error"
	SchemaVersion int    `json:"schemaVersion"` // Schema version for compatibility
	Code          string `json:"code"`          // Machine-readable error code
	Message       string `json:"message"`       // Human-readable message
	Hint          string `json:"hint,omitempty"`
}

// NewErrorOutput creates a new error output
// Note: SchemaVersion should be set by the caller (output package)
func NewErrorOutput(code, message string) *ErrorOutput {
	return &ErrorOutput{
		Type:    "error",
		Code:    code,
		Message: message,
	}
}
