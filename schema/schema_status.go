package schema

import "time"

// StoreStatus represents the status of the snapshot store.
type StoreStatus struct {
	Backend   string           `json:"backend"`
	Connected bool             `json:"connected"`
	TableRows map[string]int64 `json:"table_rows"`
}

// AuditStatus represents the status of the audit store.
type AuditStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	FailedRuns    int              `json:"failed_runs"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}

// ReportRun describes one finished report invocation, as handed to the audit trail.
type ReportRun struct {
	Report    string
	UserID    string
	Range     string
	ProjectID string
	StartTime time.Time
	EndTime   time.Time
	Outcome   RunOutcome
	Rows      int
	Err       string
}

// ReportRunRecord represents a row from the pmpulse_report_runs table.
type ReportRunRecord struct {
	RunID      int64
	Report     string
	UserID     string
	Range      *string
	ProjectID  *string
	StartTime  time.Time
	EndTime    time.Time
	DurationMs int64
	Outcome    string
	Rows       int32
	Err        *string
}
