// Package parquet provides data structures and functions for exporting pmpulse
// audit runs and profit/loss rows to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/pmpulse/schema"
	"github.com/parquet-go/parquet-go"
)

// ReportRun represents a single audited report invocation.
// This struct maps to the pmpulse_report_runs database table.
type ReportRun struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// Report is the entry point that ran, e.g. profit-loss
	Report string `parquet:"report,snappy"`

	// UserID is the caller the report was computed for
	UserID string `parquet:"user_id,snappy"`

	// Range is the requested range selector (nullable)
	Range *string `parquet:"range,optional,snappy"`

	// ProjectID is the requested project scope (nullable)
	ProjectID *string `parquet:"project_id,optional,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run finished
	EndTime time.Time `parquet:"end_time,snappy"`

	// DurationMs is the duration of the run in milliseconds
	DurationMs int64 `parquet:"duration_ms,snappy"`

	// Outcome is ok, error or fallback
	Outcome string `parquet:"outcome,snappy"`

	// RowCount is the number of table rows the report produced
	RowCount int32 `parquet:"row_count,snappy"`

	// Error is the error text of a failed or degraded run (nullable)
	Error *string `parquet:"error,optional,snappy"`
}

// ProfitLossRow is the columnar form of one P&L row.
// Money columns keep the exact decimal text with two fractional digits.
type ProfitLossRow struct {
	ProjectID            string  `parquet:"project_id,snappy"`
	ProjectName          string  `parquet:"project_name,snappy"`
	Status               string  `parquet:"status,snappy,dict"`
	Budget               string  `parquet:"budget,snappy"`
	ApprovedChangeOrders string  `parquet:"approved_change_orders,snappy"`
	AdjustedBudget       string  `parquet:"adjusted_budget,snappy"`
	EstimatedCost        string  `parquet:"estimated_cost,snappy"`
	ActualCost           string  `parquet:"actual_cost,snappy"`
	GrossProfit          string  `parquet:"gross_profit,snappy"`
	ProfitMargin         float64 `parquet:"profit_margin,snappy"`
	PhaseCount           int32   `parquet:"phase_count,snappy"`
	CompletedPhases      int32   `parquet:"completed_phases,snappy"`
}

// writeRows streams rows of T into w using struct schema inference.
func writeRows[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// writeFile creates outputPath and writes rows of T into it.
func writeFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return writeRows(file, data)
}

// WriteReportRunsParquet writes a slice of ReportRun structs to a Parquet file.
func WriteReportRunsParquet(data []ReportRun, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteProfitLossParquet writes a slice of ProfitLossRow structs to a Parquet file.
func WriteProfitLossParquet(data []ProfitLossRow, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteProfitLoss writes P&L rows as a Parquet stream to w.
func WriteProfitLoss(w io.Writer, data []ProfitLossRow) error {
	return writeRows(w, data)
}

// ConvertReportRunRecords converts schema.ReportRunRecord to ReportRun for Parquet export.
func ConvertReportRunRecords(records []schema.ReportRunRecord) []ReportRun {
	result := make([]ReportRun, len(records))
	for i, record := range records {
		result[i] = ReportRun{
			RunID:      record.RunID,
			Report:     record.Report,
			UserID:     record.UserID,
			Range:      record.Range,
			ProjectID:  record.ProjectID,
			StartTime:  record.StartTime,
			EndTime:    record.EndTime,
			DurationMs: record.DurationMs,
			Outcome:    record.Outcome,
			RowCount:   record.Rows,
			Error:      record.Err,
		}
	}
	return result
}

// ConvertPLRows converts schema.PLRow to ProfitLossRow for Parquet export.
func ConvertPLRows(rows []schema.PLRow) []ProfitLossRow {
	result := make([]ProfitLossRow, len(rows))
	for i, row := range rows {
		result[i] = ProfitLossRow{
			ProjectID:            row.ProjectID,
			ProjectName:          row.ProjectName,
			Status:               string(row.Status),
			Budget:               row.Budget.StringFixed(2),
			ApprovedChangeOrders: row.ApprovedChangeOrders.StringFixed(2),
			AdjustedBudget:       row.AdjustedBudget.StringFixed(2),
			EstimatedCost:        row.EstimatedCost.StringFixed(2),
			ActualCost:           row.ActualCost.StringFixed(2),
			GrossProfit:          row.GrossProfit.StringFixed(2),
			ProfitMargin:         row.ProfitMargin,
			PhaseCount:           int32(row.PhaseCount),
			CompletedPhases:      int32(row.CompletedPhases),
		}
	}
	return result
}

// SampleReportRuns generates sample ReportRun data for demonstration.
func SampleReportRuns(now time.Time) []ReportRun {
	start1 := now.Add(-2 * time.Hour)
	end1 := start1.Add(180 * time.Millisecond)
	range1 := string(schema.Range6Months)

	start2 := now.Add(-time.Hour)
	end2 := start2.Add(95 * time.Millisecond)
	project2 := "p-harbor"

	start3 := now.Add(-10 * time.Minute)
	end3 := start3.Add(12 * time.Millisecond)
	err3 := "aggregation failure: fetch phases: connection reset"

	return []ReportRun{
		{
			RunID:      1,
			Report:     "activity",
			UserID:     "u-owner",
			Range:      &range1,
			StartTime:  start1,
			EndTime:    end1,
			DurationMs: end1.Sub(start1).Milliseconds(),
			Outcome:    string(schema.OutcomeOK),
			RowCount:   6,
		},
		{
			RunID:      2,
			Report:     "curve",
			UserID:     "u-manager",
			ProjectID:  &project2,
			StartTime:  start2,
			EndTime:    end2,
			DurationMs: end2.Sub(start2).Milliseconds(),
			Outcome:    string(schema.OutcomeOK),
			RowCount:   6,
		},
		{
			RunID:      3,
			Report:     "phase-status",
			UserID:     "u-viewer",
			StartTime:  start3,
			EndTime:    end3,
			DurationMs: end3.Sub(start3).Milliseconds(),
			Outcome:    string(schema.OutcomeFallback),
			RowCount:   5,
			Error:      &err3, // nullable field set only on degraded runs
		},
	}
}
