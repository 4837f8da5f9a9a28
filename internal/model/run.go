package model

import "time"

// Flow names one of the intake pipelines.
type Flow string

const (
	FlowPurchaseOrder Flow = "po"
	FlowPhotometric   Flow = "photometric"
	FlowWeekly        Flow = "weekly"
)

// RunStatus represents the current state of an intake run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusPartial  RunStatus = "partial"
	RunStatusSkipped  RunStatus = "skipped"
	RunStatusFailed   RunStatus = "failed"
)

// Run records one pipeline execution for one uploaded document.
type Run struct {
	ID        string     `json:"id"`
	Flow      Flow       `json:"flow"`
	Filename  string     `json:"filename"`
	Status    RunStatus  `json:"status"`
	Result    *RunResult `json:"result,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RunResult holds the final outcome of a run.
type RunResult struct {
	Stage        string   `json:"stage,omitempty"` // failing stage, empty on success
	Error        string   `json:"error,omitempty"`
	RecordID     int64    `json:"record_id,omitempty"`
	RecordName   string   `json:"record_name,omitempty"`
	RecordURL    string   `json:"record_url,omitempty"`
	AttachmentID int64    `json:"attachment_id,omitempty"`
	ShareURL     string   `json:"share_url,omitempty"`
	Summary      string   `json:"summary,omitempty"`
	Messages     []string `json:"messages,omitempty"`
}
