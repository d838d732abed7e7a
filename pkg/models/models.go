package models

import (
	"time"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Body struct {
		Status  string    `json:"status" example:"healthy" doc:"Service health status"`
		Version string    `json:"version" example:"1.0.0" doc:"API version"`
		Storage bool      `json:"storage" doc:"Whether object storage uploads are enabled"`
		Time    time.Time `json:"time" doc:"Current server time"`
	}
}

// MismatchWarning reports a file whose frequency grid differs from the reference
type MismatchWarning struct {
	File      string `json:"file" doc:"File whose grid differs"`
	Reference string `json:"reference" doc:"File that defined the reference grid"`
}

// FileFailure reports a file that could not be used
type FileFailure struct {
	File  string `json:"file" doc:"Uploaded file name"`
	Error string `json:"error" doc:"Why the file was skipped"`
}

// TableResult is the aligned table and everything the run reported
type TableResult struct {
	RunID         string            `json:"run_id" doc:"Run identifier"`
	Parameter     string            `json:"parameter" example:"S21" doc:"Extracted S-parameter"`
	Mode          string            `json:"mode" example:"log-magnitude-dB" doc:"Display mode"`
	ReferenceFile string            `json:"reference_file" doc:"File that defined the frequency grid"`
	Columns       []string          `json:"columns" doc:"Column names, frequency first"`
	Rows          [][]float64       `json:"rows" doc:"One row per reference frequency"`
	Excluded      []string          `json:"excluded" doc:"Source files dropped for a point-count mismatch"`
	Mismatches    []MismatchWarning `json:"mismatches" doc:"Frequency grid mismatch warnings"`
	FileErrors    []FileFailure     `json:"file_errors" doc:"Files skipped because they failed"`
}
